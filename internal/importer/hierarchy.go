package importer

import (
	"go.uber.org/zap"

	"github.com/Faultbox/midgard-ase/pkg/encoding"
	"github.com/Faultbox/midgard-ase/pkg/formats"
	"github.com/Faultbox/midgard-ase/pkg/math"
	"github.com/Faultbox/midgard-ase/pkg/scene"
)

// RootNodeName names the synthetic root when a scene has several top-level nodes.
const RootNodeName = "<root>"

// hierarchyEntry is a source object that becomes a node.
type hierarchyEntry struct {
	raw      *formats.ASEMesh
	meshes   []int // output mesh indices
	attached bool
}

// buildHierarchy rebuilds the node tree from parent names. Geometry is
// moved from world space into the local space of its node. Parent names
// are matched ignoring ASCII case.
func (b *builder) buildHierarchy() (*scene.Node, error) {
	var entries []*hierarchyEntry
	for _, raw := range b.file.Meshes {
		if raw.Skip {
			continue
		}
		e := &hierarchyEntry{raw: raw}
		for i, pm := range b.pending {
			if pm.raw == raw {
				e.meshes = append(e.meshes, i)
			}
		}
		if len(e.meshes) == 0 && !raw.IsHelper {
			continue
		}
		entries = append(entries, e)
	}

	root := scene.NewNode(RootNodeName)
	b.addChildren(root, "", math.Identity(), entries)

	// Parents that name no object get a placeholder node under the root.
	for _, e := range entries {
		if e.attached || e.raw.Parent == "" || hasEntryNamed(entries, e.raw.Parent) {
			continue
		}
		placeholder := scene.NewNode(e.raw.Parent)
		root.AddChild(placeholder)
		b.addChildren(placeholder, e.raw.Parent, math.Identity(), entries)
	}

	// Whatever is left hangs off a parent cycle.
	for _, e := range entries {
		if e.attached {
			continue
		}
		b.warn(WarnCyclicParent, "parent chain loops, attaching to root",
			zap.String("node", e.raw.Name),
			zap.String("parent", e.raw.Parent))
		b.attach(root, math.Identity(), e, entries)
	}

	switch len(root.Children) {
	case 0:
		return nil, ErrEmptyScene
	case 1:
		child := root.Children[0]
		child.Parent = nil
		return child, nil
	}
	return root, nil
}

func (b *builder) addChildren(parent *scene.Node, parentName string, parentAccum math.Mat4, entries []*hierarchyEntry) {
	for _, e := range entries {
		if e.attached {
			continue
		}
		if parentName == "" {
			if e.raw.Parent != "" {
				continue
			}
		} else if !encoding.EqualFoldASCII(e.raw.Parent, parentName) {
			continue
		}
		b.attach(parent, parentAccum, e, entries)
	}
}

// attach creates the node for e under parent, moves its meshes into local
// space and recurses into its children.
func (b *builder) attach(parent *scene.Node, parentAccum math.Mat4, e *hierarchyEntry, entries []*hierarchyEntry) {
	e.attached = true

	node := scene.NewNode(e.raw.Name)
	parent.AddChild(node)
	world := e.raw.Transform
	node.Transform = parentAccum.Inverse().Mul(world)

	toLocal := world.Inverse()
	normalMatrix := toLocal.NormalMatrix()
	for _, i := range e.meshes {
		mesh := b.pending[i].mesh
		for v, p := range mesh.Positions {
			mesh.Positions[v] = toLocal.TransformPoint(p)
		}
		for v, n := range mesh.Normals {
			n = normalMatrix.TransformDirection(n)
			mesh.Normals[v] = math.Vec3{X: n[0], Y: n[1], Z: n[2]}.Normalize().Array()
		}
		node.Meshes = append(node.Meshes, i)
	}

	b.addChildren(node, e.raw.Name, parentAccum.Mul(node.Transform), entries)
}

func hasEntryNamed(entries []*hierarchyEntry, name string) bool {
	for _, e := range entries {
		if encoding.EqualFoldASCII(e.raw.Name, name) {
			return true
		}
	}
	return false
}

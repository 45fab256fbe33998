// Package scene defines the in-memory scene graph produced by the importer:
// meshes, materials, a node hierarchy and skeletal animation tracks.
package scene

import (
	"errors"
	"fmt"

	"github.com/Faultbox/midgard-ase/pkg/encoding"
	"github.com/Faultbox/midgard-ase/pkg/math"
)

// MaxUVChannels is the number of texture coordinate channels a mesh carries.
const MaxUVChannels = 4

// Scene validation errors.
var (
	ErrNoRoot               = errors.New("scene has no root node")
	ErrMaterialOutOfRange   = errors.New("mesh material index out of range")
	ErrMeshRefOutOfRange    = errors.New("node references mesh outside the mesh array")
	ErrMeshUnattached       = errors.New("mesh is not attached to any node")
	ErrMeshAttachedTwice    = errors.New("mesh is attached to more than one node")
	ErrBrokenParentLink     = errors.New("node parent link is inconsistent")
	ErrFaceIndexOutOfBounds = errors.New("face index out of bounds")
)

// Scene is the result of an import.
type Scene struct {
	Meshes     []*Mesh
	Materials  []*Material
	Root       *Node
	Animations []*Animation // at most one entry for ASE input
}

// Face is a triangle referencing three vertices of its mesh.
type Face struct {
	Indices [3]uint32
}

// VertexWeight binds one vertex to a bone.
type VertexWeight struct {
	VertexID uint32
	Weight   float32
}

// Bone lists the vertices of a mesh influenced by a named bone.
type Bone struct {
	Name    string
	Weights []VertexWeight
}

// Mesh is a triangle mesh using a single material.
type Mesh struct {
	Name         string
	Positions    [][3]float32
	Normals      [][3]float32
	UVs          [MaxUVChannels][][3]float32
	UVComponents [MaxUVChannels]int // 2 or 3 for populated channels
	Colors       [][4]float32
	Faces        []Face

	MaterialIndex int
	Bones         []*Bone
}

// HasUVs reports whether channel c carries coordinates.
func (m *Mesh) HasUVs(c int) bool {
	return c >= 0 && c < MaxUVChannels && len(m.UVs[c]) > 0
}

// NumUVChannels returns the number of leading populated UV channels.
func (m *Mesh) NumUVChannels() int {
	n := 0
	for n < MaxUVChannels && len(m.UVs[n]) > 0 {
		n++
	}
	return n
}

// Node is an element of the scene hierarchy.
type Node struct {
	Name      string
	Parent    *Node
	Transform math.Mat4 // relative to Parent
	Children  []*Node
	Meshes    []int // indices into Scene.Meshes
}

// NewNode returns a node with an identity transform.
func NewNode(name string) *Node {
	return &Node{Name: name, Transform: math.Identity()}
}

// AddChild appends child and sets its parent link.
func (n *Node) AddChild(child *Node) {
	child.Parent = n
	n.Children = append(n.Children, child)
}

// AccumulatedTransform returns the product of local transforms from the
// root down to n.
func (n *Node) AccumulatedTransform() math.Mat4 {
	if n.Parent == nil {
		return n.Transform
	}
	return n.Parent.AccumulatedTransform().Mul(n.Transform)
}

// Walk visits n and its descendants depth-first in child order.
// Returning false from fn stops descent below that node.
func (n *Node) Walk(fn func(node *Node, depth int) bool) {
	n.walk(fn, 0)
}

func (n *Node) walk(fn func(*Node, int) bool, depth int) {
	if !fn(n, depth) {
		return
	}
	for _, c := range n.Children {
		c.walk(fn, depth+1)
	}
}

// Find returns the first node in the subtree whose name matches,
// ignoring ASCII case.
func (n *Node) Find(name string) *Node {
	var found *Node
	n.Walk(func(node *Node, _ int) bool {
		if found != nil {
			return false
		}
		if encoding.EqualFoldASCII(node.Name, name) {
			found = node
			return false
		}
		return true
	})
	return found
}

// VectorKey is a timed 3D value.
type VectorKey struct {
	Time  float64
	Value [3]float32
}

// QuatKey is a timed rotation.
type QuatKey struct {
	Time  float64
	Value math.Quat
}

// BoneAnim is the keyframe track of one node.
type BoneAnim struct {
	BoneName     string
	PositionKeys []VectorKey
	RotationKeys []QuatKey
}

// Animation groups node tracks sharing a time base.
type Animation struct {
	Name           string
	Duration       float64 // in ticks
	TicksPerSecond float64
	Channels       []*BoneAnim
}

// NumVertices returns the total vertex count over all meshes.
func (s *Scene) NumVertices() int {
	n := 0
	for _, m := range s.Meshes {
		n += len(m.Positions)
	}
	return n
}

// NumFaces returns the total face count over all meshes.
func (s *Scene) NumFaces() int {
	n := 0
	for _, m := range s.Meshes {
		n += len(m.Faces)
	}
	return n
}

// Validate checks the structural invariants of an assembled scene:
// material indices are in range, every mesh hangs off exactly one node,
// parent links are consistent and face indices address real vertices.
func (s *Scene) Validate() error {
	if s.Root == nil {
		return ErrNoRoot
	}
	if s.Root.Parent != nil {
		return fmt.Errorf("%w: root %q has a parent", ErrBrokenParentLink, s.Root.Name)
	}

	for i, m := range s.Meshes {
		if m.MaterialIndex < 0 || m.MaterialIndex >= len(s.Materials) {
			return fmt.Errorf("%w: mesh %d uses %d of %d", ErrMaterialOutOfRange, i, m.MaterialIndex, len(s.Materials))
		}
		for f, face := range m.Faces {
			for _, idx := range face.Indices {
				if int(idx) >= len(m.Positions) {
					return fmt.Errorf("%w: mesh %d face %d index %d", ErrFaceIndexOutOfBounds, i, f, idx)
				}
			}
		}
	}

	attached := make([]int, len(s.Meshes))
	var err error
	s.Root.Walk(func(n *Node, _ int) bool {
		if err != nil {
			return false
		}
		for _, c := range n.Children {
			if c.Parent != n {
				err = fmt.Errorf("%w: %q under %q", ErrBrokenParentLink, c.Name, n.Name)
				return false
			}
		}
		for _, mi := range n.Meshes {
			if mi < 0 || mi >= len(s.Meshes) {
				err = fmt.Errorf("%w: node %q mesh %d", ErrMeshRefOutOfRange, n.Name, mi)
				return false
			}
			attached[mi]++
		}
		return true
	})
	if err != nil {
		return err
	}

	for i, c := range attached {
		switch {
		case c == 0:
			return fmt.Errorf("%w: mesh %d", ErrMeshUnattached, i)
		case c > 1:
			return fmt.Errorf("%w: mesh %d", ErrMeshAttachedTwice, i)
		}
	}
	return nil
}

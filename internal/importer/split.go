package importer

import (
	"go.uber.org/zap"

	"github.com/Faultbox/midgard-ase/pkg/formats"
	"github.com/Faultbox/midgard-ase/pkg/scene"
)

// pendingMesh links an output mesh to its source while the scene is
// assembled. The side table is dropped once materials and nodes are built.
type pendingMesh struct {
	mesh *scene.Mesh
	raw  *formats.ASEMesh
	top  uint32 // top-level material index
	sub  uint32 // submaterial index, DefaultMaterialIndex when not split
}

// splitMesh emits one output mesh per submaterial used by the expanded
// mesh m, or a single mesh when its material has no submaterials. Meshes
// without faces produce nothing.
func (b *builder) splitMesh(m *formats.ASEMesh) {
	if len(m.Faces) == 0 {
		return
	}
	mats := b.file.Materials
	if int(m.MaterialIndex) >= len(mats) {
		b.warn(WarnMaterialIndexClamped, "material index out of range, using last material",
			zap.String("mesh", m.Name),
			zap.Uint32("index", m.MaterialIndex),
			zap.Int("materials", len(mats)))
		m.MaterialIndex = uint32(len(mats) - 1)
	}
	mat := mats[m.MaterialIndex]

	if len(mat.Submaterials) == 0 {
		out := newOutputMesh(m, len(m.Faces))
		out.Positions = m.Positions
		out.Normals = m.Normals
		out.Colors = m.Colors
		for c := range m.UVs {
			out.UVs[c] = m.UVs[c]
		}
		for f, face := range m.Faces {
			out.Faces[f] = scene.Face{Indices: face.Indices}
		}
		weights := make([][]scene.VertexWeight, len(m.Bones))
		for i, bindings := range m.BoneVertices {
			for _, bw := range bindings {
				if bw.Bone >= 0 && bw.Bone < len(weights) {
					weights[bw.Bone] = append(weights[bw.Bone], scene.VertexWeight{VertexID: uint32(i), Weight: bw.Weight})
				}
			}
		}
		out.Bones = collectBones(m.Bones, weights)
		b.needed[mat] = true
		b.pending = append(b.pending, &pendingMesh{mesh: out, raw: m, top: m.MaterialIndex, sub: formats.DefaultMaterialIndex})
		return
	}

	subs := mat.Submaterials
	buckets := make([][]int, len(subs))
	clamped := 0
	for f, face := range m.Faces {
		id := int(face.Submaterial)
		if id >= len(subs) {
			id = len(subs) - 1
			clamped++
		}
		buckets[id] = append(buckets[id], f)
	}
	if clamped > 0 {
		b.warn(WarnSubmaterialIndexClamped, "submaterial index out of range, using last submaterial",
			zap.String("mesh", m.Name),
			zap.Int("faces", clamped),
			zap.Int("submaterials", len(subs)))
	}

	for p, bucket := range buckets {
		if len(bucket) == 0 {
			continue
		}
		out := newOutputMesh(m, len(bucket))
		n := 3 * len(bucket)
		out.Positions = make([][3]float32, n)
		if m.Normals != nil {
			out.Normals = make([][3]float32, n)
		}
		if m.Colors != nil {
			out.Colors = make([][4]float32, n)
		}
		for c := range m.UVs {
			if m.UVs[c] != nil {
				out.UVs[c] = make([][3]float32, n)
			}
		}
		weights := make([][]scene.VertexWeight, len(m.Bones))

		for q, f := range bucket {
			for k := range 3 {
				src, dst := 3*f+k, 3*q+k
				out.Positions[dst] = m.Positions[src]
				if out.Normals != nil {
					out.Normals[dst] = m.Normals[src]
				}
				if out.Colors != nil {
					out.Colors[dst] = m.Colors[src]
				}
				for c := range m.UVs {
					if out.UVs[c] != nil {
						out.UVs[c][dst] = m.UVs[c][src]
					}
				}
				if src < len(m.BoneVertices) {
					for _, bw := range m.BoneVertices[src] {
						if bw.Bone >= 0 && bw.Bone < len(weights) {
							weights[bw.Bone] = append(weights[bw.Bone], scene.VertexWeight{VertexID: uint32(dst), Weight: bw.Weight})
						}
					}
				}
			}
			base := uint32(3 * q)
			out.Faces[q] = scene.Face{Indices: [3]uint32{base + 2, base + 1, base}}
		}
		out.Bones = collectBones(m.Bones, weights)
		b.needed[subs[p]] = true
		b.pending = append(b.pending, &pendingMesh{mesh: out, raw: m, top: m.MaterialIndex, sub: uint32(p)})
	}
}

func newOutputMesh(m *formats.ASEMesh, faces int) *scene.Mesh {
	return &scene.Mesh{
		Name:         m.Name,
		Faces:        make([]scene.Face, faces),
		UVComponents: m.UVComponents,
	}
}

// collectBones pairs bone names with their weights, dropping unused bones.
func collectBones(bones []formats.ASEBone, weights [][]scene.VertexWeight) []*scene.Bone {
	var out []*scene.Bone
	for i, w := range weights {
		if len(w) == 0 {
			continue
		}
		out = append(out, &scene.Bone{Name: bones[i].Name, Weights: w})
	}
	return out
}

package importer

import "github.com/Faultbox/midgard-ase/pkg/formats"

// expandCorners rewrites m so that every face corner owns its vertex.
// Corner k of face f lands at 3f+k and the face becomes (3f+2, 3f+1, 3f),
// flipping the winding into the output convention. Bone bindings whose
// position index is out of range are dropped.
func expandCorners(m *formats.ASEMesh) {
	n := 3 * len(m.Faces)

	positions := make([][3]float32, n)
	normals := expandedVec3(m.Normals, n)
	colors := expandedVec4(m.Colors, n)
	var uvs [formats.MaxUVChannels][][3]float32
	for c := range uvs {
		uvs[c] = expandedVec3(m.UVs[c], n)
	}
	var boneVertices [][]formats.ASEBoneWeight
	if len(m.BoneVertices) > 0 {
		boneVertices = make([][]formats.ASEBoneWeight, n)
	}

	for f := range m.Faces {
		face := &m.Faces[f]
		for k := range 3 {
			i := 3*f + k
			src := face.Indices[k]
			positions[i] = m.Positions[src]
			if normals != nil {
				normals[i] = m.Normals[src]
			}
			for c := range uvs {
				if uvs[c] != nil {
					uvs[c][i] = m.UVs[c][face.UVIndices[c][k]]
				}
			}
			if colors != nil {
				colors[i] = m.Colors[face.ColorIndices[k]]
			}
			if boneVertices != nil && int(src) < len(m.BoneVertices) {
				boneVertices[i] = m.BoneVertices[src]
			}
		}
		base := uint32(3 * f)
		flat := [3]uint32{base + 2, base + 1, base}
		face.Indices = flat
		face.ColorIndices = flat
		for c := range face.UVIndices {
			face.UVIndices[c] = flat
		}
	}

	m.Positions = positions
	m.Normals = normals
	m.UVs = uvs
	m.Colors = colors
	m.BoneVertices = boneVertices
}

func expandedVec3(src [][3]float32, n int) [][3]float32 {
	if len(src) == 0 {
		return nil
	}
	return make([][3]float32, n)
}

func expandedVec4(src [][4]float32, n int) [][4]float32 {
	if len(src) == 0 {
		return nil
	}
	return make([][4]float32, n)
}

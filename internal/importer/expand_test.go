package importer

import (
	"testing"

	"github.com/Faultbox/midgard-ase/pkg/formats"
	"github.com/Faultbox/midgard-ase/pkg/math"
)

func TestExpandCorners(t *testing.T) {
	m := rawMesh("m", "", math.Identity(),
		[][3]float32{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}, {1, 1, 0}},
		face(0, 1, 2, 1), face(1, 3, 2, 1))
	m.Normals = [][3]float32{{0, 0, 1}, {0, 0, 2}, {0, 0, 3}, {0, 0, 4}}
	m.UVs[0] = [][3]float32{{0, 0, 0}, {1, 1, 0}}
	m.UVComponents[0] = 2
	m.Faces[0].UVIndices[0] = [3]uint32{0, 1, 0}
	m.Faces[1].UVIndices[0] = [3]uint32{1, 1, 1}
	m.Colors = [][4]float32{{1, 0, 0, 1}}
	m.BoneVertices = [][]formats.ASEBoneWeight{{{Bone: 0, Weight: 1}}, nil, nil}

	expandCorners(m)

	if len(m.Positions) != 6 || len(m.Normals) != 6 || len(m.UVs[0]) != 6 || len(m.Colors) != 6 {
		t.Fatalf("streams not expanded: %d %d %d %d", len(m.Positions), len(m.Normals), len(m.UVs[0]), len(m.Colors))
	}
	for f, fc := range m.Faces {
		want := [3]uint32{uint32(3*f + 2), uint32(3*f + 1), uint32(3 * f)}
		if fc.Indices != want {
			t.Errorf("face %d = %v, want %v", f, fc.Indices, want)
		}
	}
	if m.Positions[4] != [3]float32{1, 1, 0} {
		t.Errorf("corner 4 = %v, want vertex 3", m.Positions[4])
	}
	if m.Normals[4] != [3]float32{0, 0, 4} {
		t.Errorf("normals should follow the position index, got %v", m.Normals[4])
	}
	if m.UVs[0][1] != [3]float32{1, 1, 0} || m.UVs[0][2] != [3]float32{0, 0, 0} {
		t.Errorf("UVs should follow the texture face, got %v", m.UVs[0][:3])
	}
	if m.UVs[1] != nil {
		t.Error("unused UV channel should stay empty")
	}
	if len(m.BoneVertices) != 6 || len(m.BoneVertices[0]) != 1 {
		t.Fatalf("bone bindings not expanded")
	}
	// Vertex 3 has no binding entry and is dropped silently.
	if m.BoneVertices[4] != nil {
		t.Errorf("out of range binding should be dropped, got %v", m.BoneVertices[4])
	}
}

func TestExpandCornersNoFaces(t *testing.T) {
	m := rawMesh("m", "", math.Identity(), [][3]float32{{1, 2, 3}})
	expandCorners(m)
	if len(m.Positions) != 0 || m.Normals != nil {
		t.Errorf("mesh without faces should expand to nothing")
	}
}

package formats

import (
	"errors"
	"math"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Faultbox/midgard-ase/pkg/encoding"
)

func approx(a, b float32) bool {
	return math.Abs(float64(a-b)) < 1e-4
}

func loadScene(t *testing.T) *ASEFile {
	t.Helper()
	f, err := ParseASEFile(filepath.Join("testdata", "scene.ase"), nil)
	if err != nil {
		t.Fatalf("ParseASEFile: %v", err)
	}
	return f
}

func TestParseASEHeader(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		wantErr error
	}{
		{"empty", "", ErrInvalidASEHeader},
		{"wrong directive", "*SCENE { }", ErrInvalidASEHeader},
		{"not a directive", "hello", ErrInvalidASEHeader},
		{"minimal", "*3DSMAX_ASCIIEXPORT 200", nil},
		{"unterminated", "*3DSMAX_ASCIIEXPORT 200\n*SCENE {\n*SCENE_FRAMESPEED 30", ErrTruncatedASE},
		{"bad number", "*3DSMAX_ASCIIEXPORT 200\n*SCENE { *SCENE_FRAMESPEED fast }", ErrMalformedASE},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseASE([]byte(tt.data), ASEParseOptions{})
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("got error %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestParseASEErrorLine(t *testing.T) {
	data := "*3DSMAX_ASCIIEXPORT 200\n*SCENE {\n*SCENE_FRAMESPEED fast\n}"
	_, err := ParseASE([]byte(data), ASEParseOptions{})
	if err == nil || !strings.Contains(err.Error(), "line 3") {
		t.Errorf("error should carry the line number, got %v", err)
	}
}

func TestParseASEScene(t *testing.T) {
	f := loadScene(t)

	if f.IsASK {
		t.Error("scene.ase should not be flagged as ASK")
	}
	if f.FrameSpeed != 30 || f.TicksPerFrame != 160 {
		t.Errorf("frame speed %d ticks %d, want 30 and 160", f.FrameSpeed, f.TicksPerFrame)
	}
	if f.LastFrame != 100 {
		t.Errorf("LastFrame = %d, want 100", f.LastFrame)
	}
	if f.Ambient != [3]float32{0.1, 0.1, 0.1} {
		t.Errorf("Ambient = %v", f.Ambient)
	}
	if len(f.Meshes) != 3 {
		t.Fatalf("expected 3 objects (camera skipped), got %d", len(f.Meshes))
	}
	if !f.HasAnimation() {
		t.Error("HasAnimation should be true")
	}
	if got := f.GetTotalFaceCount(); got != 3 {
		t.Errorf("GetTotalFaceCount = %d, want 3", got)
	}
}

func TestParseASEMaterials(t *testing.T) {
	f := loadScene(t)
	if len(f.Materials) != 2 {
		t.Fatalf("expected 2 materials, got %d", len(f.Materials))
	}

	wood := f.Materials[0]
	if wood.Name != "Wood" {
		t.Errorf("Name = %q", wood.Name)
	}
	if wood.Shading != ASEShadingBlinn {
		t.Errorf("Shading = %v, want Blinn", wood.Shading)
	}
	if !approx(wood.SpecularExponent, 3.75) {
		t.Errorf("SpecularExponent = %v, want 0.25*15", wood.SpecularExponent)
	}
	if !approx(wood.Opacity, 0.75) {
		t.Errorf("Opacity = %v, want 1-transparency", wood.Opacity)
	}

	tex := wood.TexDiffuse
	if tex.MapName != `C:\maps\wood.tga` {
		t.Errorf("MapName = %q", tex.MapName)
	}
	if tex.Blend == nil || !approx(*tex.Blend, 0.8) {
		t.Errorf("Blend = %v, want 0.8", tex.Blend)
	}
	if tex.ScaleUV.X != 2 || tex.ScaleUV.Y != 2 || tex.OffsetUV.X != 0.5 {
		t.Errorf("UV transform = scale %v offset %v", tex.ScaleUV, tex.OffsetUV)
	}
	if !tex.HasUVTransform() {
		t.Error("HasUVTransform should be true")
	}
	if wood.TexSpecular.MapName != "" || wood.TexSpecular.HasUVTransform() {
		t.Error("unbound slot should be empty with identity transform")
	}

	multi := f.Materials[1]
	if len(multi.Submaterials) != 2 {
		t.Fatalf("expected 2 submaterials, got %d", len(multi.Submaterials))
	}
	if multi.Submaterials[0].Shading != ASEShadingMetal || multi.Submaterials[1].Shading != ASEShadingWire {
		t.Errorf("submaterial shading = %v, %v", multi.Submaterials[0].Shading, multi.Submaterials[1].Shading)
	}
	if multi.Submaterials[1].TexBump.MapName != "bump.bmp" || multi.Submaterials[1].TexBump.Blend != nil {
		t.Errorf("bump map = %+v", multi.Submaterials[1].TexBump)
	}
}

func TestParseASEGeometry(t *testing.T) {
	f := loadScene(t)

	root := f.GetMeshByName("root")
	if root == nil || !root.IsHelper || root.MaterialIndex != DefaultMaterialIndex {
		t.Fatalf("Root helper = %+v", root)
	}

	plane := f.GetMeshByName("Plane01")
	if plane == nil {
		t.Fatal("Plane01 not found")
	}
	if plane.Parent != "Root" || plane.MaterialIndex != 1 || plane.Skip {
		t.Errorf("Plane01 parent %q material %d skip %v", plane.Parent, plane.MaterialIndex, plane.Skip)
	}
	if kids := f.GetChildMeshes("ROOT"); len(kids) != 1 || kids[0] != plane {
		t.Errorf("GetChildMeshes(ROOT) = %v", kids)
	}

	// TM_ROW3 holds the translation in the last matrix row.
	if plane.Transform.At(3, 0) != 10 {
		t.Errorf("transform row 3 = %v", plane.Transform)
	}
	if tr := plane.Transform.Transpose(); tr[12] != 10 {
		t.Errorf("transposed translation = %v", tr[12:15])
	}

	if len(plane.Positions) != 4 || plane.Positions[3] != [3]float32{11, 1, 0} {
		t.Errorf("Positions = %v", plane.Positions)
	}
	if len(plane.Faces) != 2 {
		t.Fatalf("expected 2 faces, got %d", len(plane.Faces))
	}

	f1 := plane.Faces[1]
	if f1.Indices != [3]uint32{1, 3, 2} {
		t.Errorf("face 1 indices = %v", f1.Indices)
	}
	if f1.SmoothGroup != 0b101 {
		t.Errorf("face 1 smoothing = %b, want groups 1 and 3", f1.SmoothGroup)
	}
	if plane.Faces[0].Submaterial != 0 || f1.Submaterial != 1 {
		t.Errorf("submaterials = %d, %d", plane.Faces[0].Submaterial, f1.Submaterial)
	}
	if f1.UVIndices[0] != [3]uint32{1, 3, 2} {
		t.Errorf("face 1 uv indices = %v", f1.UVIndices[0])
	}

	if len(plane.UVs[0]) != 4 || plane.UVComponents[0] != 2 {
		t.Errorf("channel 0: %d uvs, %d components", len(plane.UVs[0]), plane.UVComponents[0])
	}
	if len(plane.UVs[1]) != 1 || plane.UVComponents[1] != 3 {
		t.Errorf("channel 1: %d uvs, %d components", len(plane.UVs[1]), plane.UVComponents[1])
	}
	if len(plane.Colors) != 1 || plane.Colors[0] != [4]float32{1, 0.5, 0.25, 1} {
		t.Errorf("Colors = %v", plane.Colors)
	}
	if len(plane.Normals) != 4 || plane.Normals[3] != [3]float32{0, 0, 1} {
		t.Errorf("Normals = %v", plane.Normals)
	}
}

func TestParseASEAnimation(t *testing.T) {
	plane := loadScene(t).GetMeshByName("Plane01")

	if n := len(plane.Anim.PositionKeys); n != 3 {
		t.Fatalf("expected 3 position keys, got %d", n)
	}
	if k := plane.Anim.PositionKeys[2]; k.Time != 320 || k.Value[0] != 12 {
		t.Errorf("last position key = %+v", k)
	}
	if n := len(plane.Anim.RotationKeys); n != 2 {
		t.Fatalf("expected 2 rotation keys, got %d", n)
	}
	q := plane.Anim.RotationKeys[1].Value
	if !approx(q.Z, float32(math.Sin(0.7854/2))) || !approx(q.W, float32(math.Cos(0.7854/2))) {
		t.Errorf("second rotation key = %+v", q)
	}
}

func TestParseASEBones(t *testing.T) {
	f := loadScene(t)
	skinned := f.GetMeshByName("Skinned")
	if skinned == nil {
		t.Fatal("Skinned not found")
	}

	if skinned.Faces[0].SmoothGroup != 0 {
		t.Errorf("empty MESH_SMOOTHING should give 0, got %d", skinned.Faces[0].SmoothGroup)
	}
	if len(skinned.Bones) != 2 || skinned.Bones[1].Name != "Bip01 Spine" {
		t.Errorf("Bones = %+v", skinned.Bones)
	}
	if len(skinned.BoneVertices) != 3 {
		t.Fatalf("expected 3 bone vertices, got %d", len(skinned.BoneVertices))
	}
	if got := skinned.BoneVertices[1]; len(got) != 2 || got[1].Bone != 1 || got[1].Weight != 0.5 {
		t.Errorf("bone vertex 1 = %+v", got)
	}
	if got := skinned.BoneVertices[2]; len(got) != 0 {
		t.Errorf("bone -1 and out-of-range bones should be dropped, got %+v", got)
	}

	found := false
	for _, w := range f.Warnings {
		if strings.Contains(w, "bone index 7") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected out-of-range bone warning, got %v", f.Warnings)
	}
}

func TestParseASEInvalidGeometry(t *testing.T) {
	data := `*3DSMAX_ASCIIEXPORT 200
*GEOMOBJECT {
	*NODE_NAME "Broken"
	*MESH {
		*MESH_NUMVERTEX 1
		*MESH_NUMFACES 1
		*MESH_VERTEX_LIST { *MESH_VERTEX 0 0 0 0 }
		*MESH_FACE_LIST { *MESH_FACE 0: A: 0 B: 1 C: 2 }
	}
}
*GEOMOBJECT {
	*NODE_NAME "BadUV"
	*MESH {
		*MESH_NUMVERTEX 3
		*MESH_NUMFACES 1
		*MESH_VERTEX_LIST { *MESH_VERTEX 0 0 0 0 *MESH_VERTEX 1 1 0 0 *MESH_VERTEX 2 0 1 0 }
		*MESH_FACE_LIST { *MESH_FACE 0: A:0 B:1 C:2 }
		*MESH_NUMTVERTEX 1
		*MESH_TVERTLIST { *MESH_TVERT 0 0 0 0 }
		*MESH_TFACELIST { *MESH_TFACE 0 0 1 2 *MESH_TFACE 9 0 0 0 }
	}
}`
	f, err := ParseASE([]byte(data), ASEParseOptions{IsASK: true})
	if err != nil {
		t.Fatalf("ParseASE: %v", err)
	}
	if !f.IsASK {
		t.Error("IsASK option should be carried over")
	}
	if !f.Meshes[0].Skip {
		t.Error("mesh with out-of-range face indices should be skipped")
	}

	bad := f.Meshes[1]
	if bad.Skip {
		t.Error("BadUV should survive")
	}
	if bad.Faces[0].Indices != [3]uint32{0, 1, 2} {
		t.Errorf("glued face labels parsed as %v", bad.Faces[0].Indices)
	}
	if bad.UVs[0] != nil {
		t.Error("out-of-range texture faces should drop the channel")
	}
	if len(f.Warnings) < 3 {
		t.Errorf("expected warnings for skip, stray tface and dropped channel, got %v", f.Warnings)
	}
}

func TestParseASECharset(t *testing.T) {
	dec, err := encoding.Lookup("windows-1252")
	if err != nil {
		t.Fatal(err)
	}
	data := []byte("*3DSMAX_ASCIIEXPORT 200\n*GEOMOBJECT { *NODE_NAME \"Caf\xe9\" }")
	f, err := ParseASE(data, ASEParseOptions{Charset: dec})
	if err != nil {
		t.Fatal(err)
	}
	if f.Meshes[0].Name != "Café" {
		t.Errorf("Name = %q, want decoded cp1252", f.Meshes[0].Name)
	}
}

func TestASEShadingString(t *testing.T) {
	tests := []struct {
		in   string
		want ASEShading
	}{
		{"Flat", ASEShadingFlat},
		{"phong", ASEShadingPhong},
		{"Blinn", ASEShadingBlinn},
		{"Metal", ASEShadingMetal},
		{"Wire", ASEShadingWire},
		{"Anisotropic", ASEShadingGouraud},
	}
	for _, tt := range tests {
		if got := parseShading(tt.in); got != tt.want {
			t.Errorf("parseShading(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestASEFileValidate(t *testing.T) {
	short := NewASEMesh()
	short.Name = "short"
	short.Positions = [][3]float32{{0, 0, 0}, {1, 0, 0}}
	short.Faces = []ASEFace{{Indices: [3]uint32{0, 1, 2}}}

	normals := NewASEMesh()
	normals.Name = "normals"
	normals.Positions = [][3]float32{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}}
	normals.Normals = [][3]float32{{0, 0, 1}}
	normals.Faces = []ASEFace{{Indices: [3]uint32{0, 1, 2}}}

	f := &ASEFile{Meshes: []*ASEMesh{short, normals}}
	if got := f.Validate(); len(got) != 2 {
		t.Fatalf("Validate() = %q, want 2 warnings", got)
	}
	if !short.Skip || normals.Skip || normals.Normals != nil {
		t.Errorf("skip = %v/%v, normals = %v", short.Skip, normals.Skip, normals.Normals)
	}
	if got := f.Validate(); len(got) != 0 || len(f.Warnings) != 2 {
		t.Errorf("second Validate() = %q, %d warnings kept", got, len(f.Warnings))
	}
}

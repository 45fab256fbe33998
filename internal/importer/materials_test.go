package importer

import (
	"testing"

	"go.uber.org/zap"

	"github.com/Faultbox/midgard-ase/pkg/formats"
	"github.com/Faultbox/midgard-ase/pkg/math"
	"github.com/Faultbox/midgard-ase/pkg/scene"
)

func testBuilder(f *formats.ASEFile) *builder {
	return &builder{file: f, log: zap.NewNop(), needed: map[*formats.ASEMaterial]bool{}}
}

func TestConvertMaterialShading(t *testing.T) {
	tests := []struct {
		shading   formats.ASEShading
		shininess bool
		want      scene.ShadingMode
		wireframe bool
	}{
		{formats.ASEShadingFlat, false, scene.ShadingFlat, false},
		{formats.ASEShadingGouraud, false, scene.ShadingGouraud, false},
		{formats.ASEShadingPhong, true, scene.ShadingPhong, false},
		{formats.ASEShadingPhong, false, scene.ShadingGouraud, false},
		{formats.ASEShadingBlinn, true, scene.ShadingBlinn, false},
		{formats.ASEShadingBlinn, false, scene.ShadingGouraud, false},
		{formats.ASEShadingMetal, true, scene.ShadingCookTorrance, false},
		{formats.ASEShadingMetal, false, scene.ShadingGouraud, false},
		{formats.ASEShadingWire, false, scene.ShadingGouraud, true},
	}

	b := testBuilder(&formats.ASEFile{})
	for _, tt := range tests {
		t.Run(tt.shading.String(), func(t *testing.T) {
			m := formats.NewASEMaterial("m")
			m.Shading = tt.shading
			if tt.shininess {
				m.SpecularExponent = 32
				m.ShininessStrength = 0.5
			}
			out := b.convertMaterial(m)
			if out.Shading() != tt.want {
				t.Errorf("shading = %v, want %v", out.Shading(), tt.want)
			}
			_, hasShininess := out.Float(scene.KeyShininess, scene.TextureNone, 0)
			if hasShininess != tt.shininess {
				t.Errorf("shininess stored = %v, want %v", hasShininess, tt.shininess)
			}
			_, wire := out.Int(scene.KeyEnableWireframe, scene.TextureNone, 0)
			if wire != tt.wireframe {
				t.Errorf("wireframe = %v, want %v", wire, tt.wireframe)
			}
		})
	}
}

func TestConvertMaterialProperties(t *testing.T) {
	blend := float32(0.25)
	m := formats.NewASEMaterial("Stone")
	m.Ambient = [3]float32{0.1, 0.2, 0.3}
	m.Diffuse = [3]float32{0.4, 0.5, 0.6}
	m.Opacity = 0.75
	m.TwoSided = true
	m.TexDiffuse.MapName = "stone.tga"
	m.TexShininess.MapName = "gloss.tga"
	m.TexShininess.Blend = &blend
	m.TexBump.MapName = "bump.tga"

	b := testBuilder(&formats.ASEFile{Ambient: [3]float32{0.1, 0.1, 0.1}})
	out := b.convertMaterial(m)

	if out.Name() != "Stone" {
		t.Errorf("name = %q", out.Name())
	}
	if c, _ := out.Color(scene.KeyColorAmbient); !approxVec(c, [3]float32{0.2, 0.3, 0.4}) {
		t.Errorf("ambient should include the scene ambient, got %v", c)
	}
	if o, _ := out.Float(scene.KeyOpacity, scene.TextureNone, 0); o != 0.75 {
		t.Errorf("opacity = %v", o)
	}
	if v, ok := out.Int(scene.KeyTwoSided, scene.TextureNone, 0); !ok || v != 1 {
		t.Error("two sided flag missing")
	}
	if tex, _ := out.Texture(scene.TextureHeight, 0); tex != "bump.tga" {
		t.Errorf("bump map = %q", tex)
	}
	if _, ok := out.Float(scene.KeyTextureBlend, scene.TextureDiffuse, 0); ok {
		t.Error("unset blend should not be stored")
	}
	if v, ok := out.Float(scene.KeyTextureBlend, scene.TextureShininess, 0); !ok || v != 0.25 {
		t.Errorf("shininess blend = %v, %v", v, ok)
	}
	if out.TextureCount(scene.TextureSpecular) != 0 {
		t.Error("empty slot should not produce a texture")
	}
}

func TestInjectDefaultMaterial(t *testing.T) {
	tests := []struct {
		name      string
		materials int
		index     uint32
		skip      bool
		want      bool
	}{
		{"no materials", 0, 0, false, true},
		{"unassigned mesh", 1, formats.DefaultMaterialIndex, false, true},
		{"unassigned but skipped", 1, formats.DefaultMaterialIndex, true, false},
		{"all assigned", 1, 0, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := triangleAt("m", "", 0, 0, 0)
			m.MaterialIndex = tt.index
			m.Skip = tt.skip
			f := newFile(m)
			for range tt.materials {
				f.Materials = append(f.Materials, formats.NewASEMaterial("x"))
			}
			testBuilder(f).injectDefaultMaterial()

			last := f.Materials[len(f.Materials)-1]
			got := last.Name == DefaultMaterialName
			if got != tt.want {
				t.Fatalf("default injected = %v, want %v", got, tt.want)
			}
			if got && !tt.skip && m.MaterialIndex != uint32(len(f.Materials)-1) {
				t.Errorf("mesh not redirected: %d", m.MaterialIndex)
			}
		})
	}
}

func TestTextureTransformBake(t *testing.T) {
	mat := formats.NewASEMaterial("tiled")
	mat.TexDiffuse.MapName = "diffuse.tga"
	mat.TexDiffuse.ScaleUV = math.Vec2{X: 2, Y: 2}
	mat.TexDiffuse.OffsetUV = math.Vec2{X: 0.5}
	mat.TexOpacity.MapName = "alpha.tga"
	mat.TexSpecular.MapName = "spec.tga"
	mat.TexSpecular.ScaleUV = math.Vec2{X: 2, Y: 2}
	mat.TexSpecular.OffsetUV = math.Vec2{X: 0.5}

	m := triangleAt("m", "", 0, 0, 0)
	m.MaterialIndex = 0
	m.UVs[0] = [][3]float32{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}}
	m.UVComponents[0] = 2
	for k := range 3 {
		m.Faces[0].UVIndices[0][k] = uint32(k)
	}
	f := newFile(m)
	f.Materials = []*formats.ASEMaterial{mat}

	s := mustBuild(t, f, Options{})
	out := s.Meshes[0]

	if out.NumUVChannels() != 2 {
		t.Fatalf("expected transformed and identity channels, got %d", out.NumUVChannels())
	}
	// Corner 1 had uv (1,0).
	if got := out.UVs[0][1]; !approxVec(got, [3]float32{2.5, 0, 0}) {
		t.Errorf("channel 0 corner 1 = %v, want (2.5, 0)", got)
	}
	if got := out.UVs[1][1]; !approxVec(got, [3]float32{1, 0, 0}) {
		t.Errorf("channel 1 corner 1 = %v, want (1, 0)", got)
	}
	if out.UVComponents[1] != 2 {
		t.Errorf("channel 1 components = %d", out.UVComponents[1])
	}

	res := s.Materials[0]
	for _, tc := range []struct {
		semantic scene.TextureType
		channel  int
	}{
		{scene.TextureDiffuse, 0},
		{scene.TextureSpecular, 0},
		{scene.TextureOpacity, 1},
	} {
		if ch, ok := res.Int(scene.KeyUVWSource, tc.semantic, 0); !ok || ch != tc.channel {
			t.Errorf("%v samples channel %d (%v), want %d", tc.semantic, ch, ok, tc.channel)
		}
	}
}

func TestTextureTransformRotation(t *testing.T) {
	tr := uvTransform{scale: math.Vec2{X: 1, Y: 1}, rotation: 1.5707963}
	if got := tr.apply([3]float32{1, 0, 0.5}); !approxVec(got, [3]float32{0, 1, 0.5}) {
		t.Errorf("rotated = %v, want (0, 1, 0.5)", got)
	}
}

func TestTextureTransformIdentityLeavesUVs(t *testing.T) {
	mat := formats.NewASEMaterial("plain")
	mat.TexDiffuse.MapName = "plain.tga"
	b := testBuilder(&formats.ASEFile{})
	plan := b.planUVs(mat)

	m := &scene.Mesh{}
	m.UVs[0] = [][3]float32{{0.3, 0.7, 0}}
	plan.bake(m)
	if m.UVs[0][0] != [3]float32{0.3, 0.7, 0} || m.HasUVs(1) {
		t.Errorf("identity transform should not touch UVs: %v", m.UVs)
	}
}

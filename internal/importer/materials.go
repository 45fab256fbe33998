package importer

import (
	"github.com/Faultbox/midgard-ase/pkg/formats"
	"github.com/Faultbox/midgard-ase/pkg/scene"
)

// DefaultMaterialName names the material given to meshes without one.
const DefaultMaterialName = "DefaultMaterial"

// slotSemantics maps ASEMaterial.Textures order to output semantics.
var slotSemantics = [...]scene.TextureType{
	scene.TextureDiffuse,
	scene.TextureSpecular,
	scene.TextureOpacity,
	scene.TextureEmissive,
	scene.TextureAmbient,
	scene.TextureHeight,
	scene.TextureShininess,
}

type materialKey struct {
	top, sub uint32
}

// injectDefaultMaterial appends DefaultMaterial when a geometry mesh has no
// material or the file declares none, and redirects those meshes to it.
func (b *builder) injectDefaultMaterial() {
	needed := len(b.file.Materials) == 0
	for _, m := range b.file.Meshes {
		if !m.Skip && !m.IsHelper && m.MaterialIndex == formats.DefaultMaterialIndex {
			needed = true
		}
	}
	if !needed {
		return
	}

	mat := formats.NewASEMaterial(DefaultMaterialName)
	mat.Diffuse = [3]float32{0.5, 0.5, 0.5}
	mat.Specular = [3]float32{1, 1, 1}
	mat.Ambient = [3]float32{0.05, 0.05, 0.05}
	mat.Shading = formats.ASEShadingGouraud

	index := uint32(len(b.file.Materials))
	b.file.Materials = append(b.file.Materials, mat)
	for _, m := range b.file.Meshes {
		if !m.Skip && !m.IsHelper && m.MaterialIndex == formats.DefaultMaterialIndex {
			m.MaterialIndex = index
		}
	}
}

// flattenMaterials converts every referenced material and submaterial, in
// pre-order, into the output table and points each pending mesh at its
// entry. Texture transforms are baked into the mesh UVs on the way.
func (b *builder) flattenMaterials() []*scene.Material {
	index := make(map[materialKey]int)
	plans := make(map[*formats.ASEMaterial]*uvPlan)
	var out []*scene.Material

	add := func(key materialKey, mat *formats.ASEMaterial) {
		plan := b.planUVs(mat)
		converted := b.convertMaterial(mat)
		plan.setupUVSource(converted)

		index[key] = len(out)
		plans[mat] = plan
		out = append(out, converted)
	}

	for i, mat := range b.file.Materials {
		if b.needed[mat] {
			add(materialKey{uint32(i), formats.DefaultMaterialIndex}, mat)
		}
		for j, sub := range mat.Submaterials {
			if b.needed[sub] {
				add(materialKey{uint32(i), uint32(j)}, sub)
			}
		}
	}

	for _, pm := range b.pending {
		src := b.file.Materials[pm.top]
		if pm.sub != formats.DefaultMaterialIndex {
			src = src.Submaterials[pm.sub]
		}
		plans[src].bake(pm.mesh)
		pm.mesh.MaterialIndex = index[materialKey{pm.top, pm.sub}]
	}
	return out
}

func (b *builder) convertMaterial(m *formats.ASEMaterial) *scene.Material {
	out := scene.NewMaterial(m.Name)

	ambient := m.Ambient
	for k := range ambient {
		ambient[k] += b.file.Ambient[k]
	}
	out.AddColor(scene.KeyColorAmbient, ambient)
	out.AddColor(scene.KeyColorDiffuse, m.Diffuse)
	out.AddColor(scene.KeyColorSpecular, m.Specular)
	out.AddColor(scene.KeyColorEmissive, m.Emissive)
	out.AddFloat(scene.KeyOpacity, m.Opacity, scene.TextureNone, 0)

	shading := m.Shading
	if m.SpecularExponent != 0 && m.ShininessStrength != 0 {
		out.AddFloat(scene.KeyShininess, m.SpecularExponent, scene.TextureNone, 0)
		out.AddFloat(scene.KeyShininessStrength, m.ShininessStrength, scene.TextureNone, 0)
	} else if shading == formats.ASEShadingMetal || shading == formats.ASEShadingPhong || shading == formats.ASEShadingBlinn {
		shading = formats.ASEShadingGouraud
	}

	mode := scene.ShadingGouraud
	switch shading {
	case formats.ASEShadingFlat:
		mode = scene.ShadingFlat
	case formats.ASEShadingPhong:
		mode = scene.ShadingPhong
	case formats.ASEShadingBlinn:
		mode = scene.ShadingBlinn
	case formats.ASEShadingMetal:
		mode = scene.ShadingCookTorrance
	case formats.ASEShadingWire:
		out.AddInt(scene.KeyEnableWireframe, 1, scene.TextureNone, 0)
	}
	out.AddInt(scene.KeyShadingModel, int(mode), scene.TextureNone, 0)

	if m.TwoSided {
		out.AddInt(scene.KeyTwoSided, 1, scene.TextureNone, 0)
	}

	for slot, tex := range m.Textures() {
		if tex.MapName == "" {
			continue
		}
		semantic := slotSemantics[slot]
		out.AddString(scene.KeyTexture, tex.MapName, semantic, 0)
		if tex.Blend != nil {
			out.AddFloat(scene.KeyTextureBlend, *tex.Blend, semantic, 0)
		}
	}
	return out
}

package importer

import (
	"go.uber.org/zap"

	"github.com/Faultbox/midgard-ase/pkg/formats"
	"github.com/Faultbox/midgard-ase/pkg/math"
	"github.com/Faultbox/midgard-ase/pkg/scene"
)

// uvTransform is the scale, rotation and offset a texture slot applies to
// its coordinates: uv' = rotate(uv * scale) + offset.
type uvTransform struct {
	scale    math.Vec2
	offset   math.Vec2
	rotation float32
}

var identityUV = uvTransform{scale: math.Vec2{X: 1, Y: 1}}

func (t uvTransform) apply(uv [3]float32) [3]float32 {
	v := math.Vec2{X: uv[0], Y: uv[1]}.MulComponents(t.scale).Rotate(t.rotation).Add(t.offset)
	return [3]float32{v.X, v.Y, uv[2]}
}

// uvPlan gives every distinct transform used by a material its own UV
// channel. Channel i of a baked mesh holds channel 0 under transforms[i].
type uvPlan struct {
	transforms []uvTransform
	slots      [len(slotSemantics)]int // channel per texture slot, -1 when unused
}

// planUVs collects the distinct texture transforms of mat. Slots beyond
// the channel limit fall back to channel 0.
func (b *builder) planUVs(mat *formats.ASEMaterial) *uvPlan {
	plan := &uvPlan{}
	for slot, tex := range mat.Textures() {
		plan.slots[slot] = -1
		if tex.MapName == "" {
			continue
		}
		t := uvTransform{scale: tex.ScaleUV, offset: tex.OffsetUV, rotation: tex.Rotation}
		ch := -1
		for i, existing := range plan.transforms {
			if existing == t {
				ch = i
				break
			}
		}
		if ch < 0 {
			if len(plan.transforms) == formats.MaxUVChannels {
				b.warn(WarnUVChannelsExhausted, "too many distinct texture transforms, sharing channel 0",
					zap.String("material", mat.Name),
					zap.String("texture", tex.MapName))
				ch = 0
			} else {
				ch = len(plan.transforms)
				plan.transforms = append(plan.transforms, t)
			}
		}
		plan.slots[slot] = ch
	}
	return plan
}

// bake writes the planned transforms into the UV channels of m. Channels
// above 0 are replaced when the material needs more than one transform.
func (p *uvPlan) bake(m *scene.Mesh) {
	if len(p.transforms) == 0 || !m.HasUVs(0) {
		return
	}
	if len(p.transforms) == 1 && p.transforms[0] == identityUV {
		return
	}
	src := m.UVs[0]
	for ch := len(p.transforms) - 1; ch >= 0; ch-- {
		t := p.transforms[ch]
		dst := src
		if ch > 0 {
			dst = make([][3]float32, len(src))
			m.UVComponents[ch] = m.UVComponents[0]
		}
		for i, uv := range src {
			dst[i] = t.apply(uv)
		}
		m.UVs[ch] = dst
	}
}

// setupUVSource records which UV channel each texture slot samples.
func (p *uvPlan) setupUVSource(mat *scene.Material) {
	for slot, ch := range p.slots {
		if ch >= 0 {
			mat.AddInt(scene.KeyUVWSource, ch, slotSemantics[slot], 0)
		}
	}
}

package importer

import (
	"github.com/Faultbox/midgard-ase/pkg/scene"
)

// buildAnimation gathers the keyframe tracks of every object with more
// than one key in a channel into a single animation. Channels with a
// single key are static and left out.
func (b *builder) buildAnimation() *scene.Animation {
	var anim *scene.Animation
	for _, m := range b.file.Meshes {
		if m.Skip || (len(m.Anim.PositionKeys) <= 1 && len(m.Anim.RotationKeys) <= 1) {
			continue
		}
		if anim == nil {
			anim = &scene.Animation{
				TicksPerSecond: float64(b.file.FrameSpeed) * float64(b.file.TicksPerFrame),
			}
		}
		ch := &scene.BoneAnim{BoneName: m.Name}
		if len(m.Anim.PositionKeys) > 1 {
			ch.PositionKeys = make([]scene.VectorKey, len(m.Anim.PositionKeys))
			for i, k := range m.Anim.PositionKeys {
				ch.PositionKeys[i] = scene.VectorKey{Time: k.Time, Value: k.Value}
				anim.Duration = max(anim.Duration, k.Time)
			}
		}
		if len(m.Anim.RotationKeys) > 1 {
			ch.RotationKeys = make([]scene.QuatKey, len(m.Anim.RotationKeys))
			for i, k := range m.Anim.RotationKeys {
				ch.RotationKeys[i] = scene.QuatKey{Time: k.Time, Value: k.Value}
				anim.Duration = max(anim.Duration, k.Time)
			}
		}
		anim.Channels = append(anim.Channels, ch)
	}
	return anim
}

package importer

import (
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/Faultbox/midgard-ase/pkg/formats"
)

// generateNormals computes per-corner normals for an expanded mesh. Each
// corner receives the normalized arithmetic mean of the face normals of all
// coincident, smoothing-compatible corners. Degenerate faces contribute a
// zero normal and a zero mean stays zero.
func generateNormals(m *formats.ASEMesh, kind SpatialIndexKind) {
	seeds := make([]r3.Vec, len(m.Positions))
	groups := make([]uint32, len(m.Positions))
	for _, face := range m.Faces {
		p0 := vec(m.Positions[face.Indices[0]])
		p1 := vec(m.Positions[face.Indices[1]])
		p2 := vec(m.Positions[face.Indices[2]])
		n := r3.Cross(r3.Sub(p1, p2), r3.Sub(p0, p2))
		for _, i := range face.Indices {
			seeds[i] = n
			groups[i] = face.SmoothGroup
		}
	}

	index := newCornerIndex(kind, m.Positions, groups, epsilonFor(m.Positions))

	normals := make([][3]float32, len(m.Positions))
	var near []int
	for i, p := range m.Positions {
		near = index.find(f64(p), groups[i], near[:0])
		var sum r3.Vec
		for _, j := range near {
			sum = r3.Add(sum, seeds[j])
		}
		if len(near) > 0 {
			sum = r3.Scale(1/float64(len(near)), sum)
		}
		if l := r3.Norm(sum); l > 0 {
			sum = r3.Scale(1/l, sum)
		}
		normals[i] = [3]float32{float32(sum.X), float32(sum.Y), float32(sum.Z)}
	}
	m.Normals = normals
}

func vec(p [3]float32) r3.Vec {
	return r3.Vec{X: float64(p[0]), Y: float64(p[1]), Z: float64(p[2])}
}

func f64(p [3]float32) [3]float64 {
	return [3]float64{float64(p[0]), float64(p[1]), float64(p[2])}
}

package importer

import (
	"fmt"
	"math"
	"slices"
	"sort"
)

// SpatialIndexKind selects the structure answering corner proximity queries.
type SpatialIndexKind string

const (
	// SpatialSorted projects corners onto a fixed axis and scans a window.
	SpatialSorted SpatialIndexKind = "sorted"
	// SpatialKDTree uses a k-d tree.
	SpatialKDTree SpatialIndexKind = "kdtree"
)

// ParseSpatialIndexKind validates a configuration value. The empty string
// selects SpatialSorted.
func ParseSpatialIndexKind(s string) (SpatialIndexKind, error) {
	switch SpatialIndexKind(s) {
	case "", SpatialSorted:
		return SpatialSorted, nil
	case SpatialKDTree:
		return SpatialKDTree, nil
	}
	return "", fmt.Errorf("unknown spatial index %q", s)
}

// cornerIndex answers "all corners within eps of p sharing a smoothing group".
type cornerIndex interface {
	find(p [3]float64, group uint32, out []int) []int
}

// smoothingCompatible reports whether corners of two faces may share a normal.
// Group 0 only merges with group 0.
func smoothingCompatible(a, b uint32) bool {
	return a&b != 0 || (a == 0 && b == 0)
}

func newCornerIndex(kind SpatialIndexKind, positions [][3]float32, groups []uint32, eps float64) cornerIndex {
	if kind == SpatialKDTree {
		return newKDCornerIndex(positions, groups, eps)
	}
	return newSortedCornerIndex(positions, groups, eps)
}

// planeNormal is deliberately not axis aligned so grid-aligned vertices
// spread along it.
var planeNormal = [3]float64{0.8523, 0.0912, 0.5156}

type sortedEntry struct {
	pos    [3]float64
	dist   float64 // projection onto planeNormal
	corner int
	group  uint32
}

type sortedCornerIndex struct {
	entries []sortedEntry
	eps     float64
}

func newSortedCornerIndex(positions [][3]float32, groups []uint32, eps float64) *sortedCornerIndex {
	s := &sortedCornerIndex{entries: make([]sortedEntry, len(positions)), eps: eps}
	for i, p := range positions {
		pos := f64(p)
		s.entries[i] = sortedEntry{pos: pos, dist: project(pos), corner: i, group: groups[i]}
	}
	slices.SortStableFunc(s.entries, func(a, b sortedEntry) int {
		switch {
		case a.dist < b.dist:
			return -1
		case a.dist > b.dist:
			return 1
		}
		return 0
	})
	return s
}

func project(p [3]float64) float64 {
	return p[0]*planeNormal[0] + p[1]*planeNormal[1] + p[2]*planeNormal[2]
}

func (s *sortedCornerIndex) find(p [3]float64, group uint32, out []int) []int {
	d := project(p)
	// The projection of a point within eps lies within eps of d.
	lo := sort.Search(len(s.entries), func(i int) bool { return s.entries[i].dist >= d-s.eps })
	eps2 := s.eps * s.eps
	for i := lo; i < len(s.entries) && s.entries[i].dist <= d+s.eps; i++ {
		e := &s.entries[i]
		if !smoothingCompatible(e.group, group) {
			continue
		}
		if squaredDistance(e.pos, p) <= eps2 {
			out = append(out, e.corner)
		}
	}
	return out
}

func squaredDistance(a, b [3]float64) float64 {
	dx, dy, dz := a[0]-b[0], a[1]-b[1], a[2]-b[2]
	return dx*dx + dy*dy + dz*dz
}

// epsilonFor returns the merge tolerance for a corner cloud: the bounding
// box diagonal scaled by 1e-5.
func epsilonFor(positions [][3]float32) float64 {
	if len(positions) == 0 {
		return 0
	}
	lo := [3]float64{math.Inf(1), math.Inf(1), math.Inf(1)}
	hi := [3]float64{math.Inf(-1), math.Inf(-1), math.Inf(-1)}
	for _, p := range positions {
		for k := range 3 {
			v := float64(p[k])
			lo[k] = math.Min(lo[k], v)
			hi[k] = math.Max(hi[k], v)
		}
	}
	return math.Sqrt(squaredDistance(lo, hi)) * 1e-5
}

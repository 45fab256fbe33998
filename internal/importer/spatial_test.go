package importer

import (
	"math/rand"
	"slices"
	"testing"
)

func TestSmoothingCompatible(t *testing.T) {
	tests := []struct {
		a, b uint32
		want bool
	}{
		{0, 0, true},
		{1, 1, true},
		{1, 2, false},
		{0b101, 0b100, true},
		{0, 1, false},
		{1 << 31, 1 << 31, true},
	}
	for _, tt := range tests {
		if got := smoothingCompatible(tt.a, tt.b); got != tt.want {
			t.Errorf("smoothingCompatible(%b, %b) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestParseSpatialIndexKind(t *testing.T) {
	for in, want := range map[string]SpatialIndexKind{"": SpatialSorted, "sorted": SpatialSorted, "kdtree": SpatialKDTree} {
		got, err := ParseSpatialIndexKind(in)
		if err != nil || got != want {
			t.Errorf("ParseSpatialIndexKind(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := ParseSpatialIndexKind("octree"); err == nil {
		t.Error("unknown kind should fail")
	}
}

func TestEpsilonFor(t *testing.T) {
	if eps := epsilonFor(nil); eps != 0 {
		t.Errorf("empty cloud eps = %v", eps)
	}
	eps := epsilonFor([][3]float32{{0, 0, 0}, {3, 4, 0}})
	if eps < 4.99e-5 || eps > 5.01e-5 {
		t.Errorf("eps = %v, want 5e-5", eps)
	}
}

func TestCornerIndexFind(t *testing.T) {
	positions := [][3]float32{
		{0, 0, 0},
		{0, 0, 0},
		{0.5e-5, 0, 0}, // inside eps
		{1, 1, 1},
		{0, 0, 0},
	}
	groups := []uint32{1, 3, 1, 1, 2}
	eps := epsilonFor(positions) // sqrt(3) * 1e-5

	for _, kind := range []SpatialIndexKind{SpatialSorted, SpatialKDTree} {
		t.Run(string(kind), func(t *testing.T) {
			idx := newCornerIndex(kind, positions, groups, eps)
			got := idx.find(f64(positions[0]), 1, nil)
			slices.Sort(got)
			want := []int{0, 1, 2}
			if !slices.Equal(got, want) {
				t.Errorf("find = %v, want %v", got, want)
			}
			got = idx.find(f64(positions[4]), 2, nil)
			slices.Sort(got)
			if !slices.Equal(got, []int{1, 4}) {
				t.Errorf("group 2 find = %v, want [1 4]", got)
			}
		})
	}
}

func TestCornerIndexesAgree(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	positions := make([][3]float32, 600)
	groups := make([]uint32, len(positions))
	for i := range positions {
		// A coarse grid produces many exact duplicates.
		positions[i] = [3]float32{float32(rng.Intn(6)), float32(rng.Intn(6)), float32(rng.Intn(3))}
		groups[i] = uint32(rng.Intn(4))
	}
	eps := epsilonFor(positions)
	sorted := newCornerIndex(SpatialSorted, positions, groups, eps)
	tree := newCornerIndex(SpatialKDTree, positions, groups, eps)

	for i, p := range positions {
		a := sorted.find(f64(p), groups[i], nil)
		b := tree.find(f64(p), groups[i], nil)
		slices.Sort(a)
		slices.Sort(b)
		if !slices.Equal(a, b) {
			t.Fatalf("corner %d: sorted %v, kdtree %v", i, a, b)
		}
		if !slices.Contains(a, i) {
			t.Fatalf("corner %d should find itself", i)
		}
	}
}

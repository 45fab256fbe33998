package importer

import "gonum.org/v1/gonum/spatial/kdtree"

// cornerPoint is a face corner stored in the k-d tree.
type cornerPoint struct {
	pos    [3]float64
	corner int
	group  uint32
}

func (p cornerPoint) Compare(c kdtree.Comparable, d kdtree.Dim) float64 {
	return p.pos[d] - c.(cornerPoint).pos[d]
}

func (p cornerPoint) Dims() int { return 3 }

// Distance returns the squared Euclidean distance, as kdtree.Point does.
func (p cornerPoint) Distance(c kdtree.Comparable) float64 {
	return squaredDistance(p.pos, c.(cornerPoint).pos)
}

type cornerPoints []cornerPoint

func (p cornerPoints) Index(i int) kdtree.Comparable { return p[i] }
func (p cornerPoints) Len() int                      { return len(p) }
func (p cornerPoints) Slice(start, end int) kdtree.Interface {
	return p[start:end]
}
func (p cornerPoints) Pivot(d kdtree.Dim) int {
	return cornerPlane{points: p, dim: d}.Pivot()
}

// cornerPlane sorts corners along one dimension for median selection.
type cornerPlane struct {
	points cornerPoints
	dim    kdtree.Dim
}

func (p cornerPlane) Len() int           { return len(p.points) }
func (p cornerPlane) Less(i, j int) bool { return p.points[i].pos[p.dim] < p.points[j].pos[p.dim] }
func (p cornerPlane) Swap(i, j int)      { p.points[i], p.points[j] = p.points[j], p.points[i] }
func (p cornerPlane) Pivot() int         { return kdtree.Partition(p, kdtree.MedianOfMedians(p)) }
func (p cornerPlane) Slice(start, end int) kdtree.SortSlicer {
	p.points = p.points[start:end]
	return p
}

type kdCornerIndex struct {
	tree *kdtree.Tree
	eps2 float64
}

func newKDCornerIndex(positions [][3]float32, groups []uint32, eps float64) *kdCornerIndex {
	points := make(cornerPoints, len(positions))
	for i, p := range positions {
		points[i] = cornerPoint{
			pos:    f64(p),
			corner: i,
			group:  groups[i],
		}
	}
	return &kdCornerIndex{tree: kdtree.New(points, false), eps2: eps * eps}
}

func (k *kdCornerIndex) find(p [3]float64, group uint32, out []int) []int {
	if k.tree.Root == nil {
		return out
	}
	keeper := kdtree.NewDistKeeper(k.eps2)
	k.tree.NearestSet(keeper, cornerPoint{pos: p})
	for _, c := range keeper.Heap {
		// The keeper seeds its heap with a nil sentinel.
		if c.Comparable == nil {
			continue
		}
		cp := c.Comparable.(cornerPoint)
		if smoothingCompatible(cp.group, group) {
			out = append(out, cp.corner)
		}
	}
	return out
}

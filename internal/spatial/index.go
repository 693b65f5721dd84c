// Package spatial provides a tolerance-bounded nearest-neighbour index over
// points in Euclidean degree space, in two (longitude, latitude) or three
// (longitude, latitude, scaled days) dimensions.
package spatial

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/kdtree"
)

// radiusEpsilon widens every radius check so that distances computed from
// snapped grid coordinates (0.020000000000003126) count as equal to the radius.
const radiusEpsilon = 1e-9

// Point is a location in index space. All points of one index share a dimension.
type Point []float64

// Point2D returns a location-only point.
func Point2D(lon, lat float64) Point {
	return Point{lon, lat}
}

// Point3D returns a spatiotemporal point whose third axis is days * timeScale.
func Point3D(lon, lat float64, days int, timeScale float64) Point {
	return Point{lon, lat, float64(days) * timeScale}
}

// Match is the result of a successful nearest-neighbour query.
type Match struct {
	// Index is the position of the matched point in the slice given to NewIndex.
	Index    int
	Distance float64
}

// Index answers nearest-neighbour queries over a fixed point set.
type Index struct {
	tree *kdtree.Tree
	dims int
	size int
}

// NewIndex builds an index over points. The input slice is not modified.
// Ties between equidistant points resolve by the tree's traversal order,
// which is fixed for a fixed input order.
func NewIndex(points []Point) (*Index, error) {
	idx := &Index{size: len(points)}
	if len(points) == 0 {
		return idx, nil
	}

	idx.dims = len(points[0])
	es := make(entries, len(points))
	for i, p := range points {
		if len(p) != idx.dims {
			return nil, fmt.Errorf("point %d has %d dimensions, want %d", i, len(p), idx.dims)
		}
		es[i] = entry{coords: p, id: i}
	}
	idx.tree = kdtree.New(es, false)
	return idx, nil
}

// Len returns the number of indexed points.
func (idx *Index) Len() int { return idx.size }

// Nearest returns the indexed point closest to q, or false when the index is
// empty or the closest point lies farther than maxRadius.
func (idx *Index) Nearest(q Point, maxRadius float64) (Match, bool) {
	if idx.tree == nil || len(q) != idx.dims {
		return Match{}, false
	}
	got, sqDist := idx.tree.Nearest(entry{coords: q, id: -1})
	if got == nil {
		return Match{}, false
	}
	dist := math.Sqrt(sqDist)
	if dist > maxRadius+radiusEpsilon {
		return Match{}, false
	}
	return Match{Index: got.(entry).id, Distance: dist}, true
}

// Distance returns the Euclidean distance between two points of equal dimension.
func Distance(a, b Point) float64 {
	return math.Sqrt(sqDistance(a, b))
}

func sqDistance(a, b Point) float64 {
	var sum float64
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum
}

// entry is an indexed point carrying its input position.
type entry struct {
	coords Point
	id     int
}

func (e entry) Compare(c kdtree.Comparable, d kdtree.Dim) float64 {
	return e.coords[d] - c.(entry).coords[d]
}

func (e entry) Dims() int { return len(e.coords) }

// Distance returns the squared Euclidean distance, as kdtree expects.
func (e entry) Distance(c kdtree.Comparable) float64 {
	return sqDistance(e.coords, c.(entry).coords)
}

type entries []entry

func (es entries) Index(i int) kdtree.Comparable { return es[i] }
func (es entries) Len() int                      { return len(es) }
func (es entries) Slice(start, end int) kdtree.Interface {
	return es[start:end]
}
func (es entries) Pivot(d kdtree.Dim) int {
	return plane{entries: es, dim: d}.Pivot()
}

// plane sorts entries along one dimension for median partitioning.
type plane struct {
	entries
	dim kdtree.Dim
}

func (p plane) Less(i, j int) bool {
	return p.entries[i].coords[p.dim] < p.entries[j].coords[p.dim]
}
func (p plane) Swap(i, j int) {
	p.entries[i], p.entries[j] = p.entries[j], p.entries[i]
}
func (p plane) Slice(start, end int) kdtree.SortSlicer {
	return plane{entries: p.entries[start:end], dim: p.dim}
}
func (p plane) Pivot() int {
	return kdtree.Partition(p, kdtree.MedianOfMedians(p))
}

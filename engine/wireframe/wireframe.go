package wireframe

import (
	"github.com/Carmen-Shannon/oxy-globe/common"
	"github.com/go-gl/mathgl/mgl64"
)

const (
	// DefaultEpsilon is the default plane-side tolerance, in world units, used when
	// classifying points against a candidate hull face.
	DefaultEpsilon = 1e-10

	// DefaultAreaEpsilon is the default lower bound on the cross-product magnitude of a
	// triple. Triples below it are treated as collinear and skipped.
	DefaultAreaEpsilon = 1e-12
)

// HullWireframeBuilder derives the edges of the convex hull of a point set. For points on
// a sphere this is a geodesic triangulation whose edges do not cross.
//
// The default implementation is a brute-force face search that costs O(n⁴) and is meant
// for tens to low hundreds of points. Hosts with larger item counts should cap the item
// list or provide a different implementation.
type HullWireframeBuilder interface {
	// BuildEdges returns the deduplicated, undirected hull edges in order of first
	// discovery. Fewer than three points yield an empty set.
	//
	// Parameters:
	//   - points: the point set
	//
	// Returns:
	//   - []common.Edge: hull edges, each with I < J
	BuildEdges(points []common.Point) []common.Edge

	// Epsilon returns the plane-side classification tolerance.
	//
	// Returns:
	//   - float64: the tolerance in world units
	Epsilon() float64
}

// bruteForceHull enumerates every triple of points and keeps the ones whose plane has
// all remaining points on one side.
type bruteForceHull struct {
	epsilon     float64
	areaEpsilon float64
}

var _ HullWireframeBuilder = &bruteForceHull{}

// NewHullWireframeBuilder creates the brute-force HullWireframeBuilder.
//
// Parameters:
//   - options: functional options to configure the builder
//
// Returns:
//   - HullWireframeBuilder: the builder
func NewHullWireframeBuilder(options ...HullWireframeBuilderOption) HullWireframeBuilder {
	b := &bruteForceHull{
		epsilon:     DefaultEpsilon,
		areaEpsilon: DefaultAreaEpsilon,
	}
	for _, option := range options {
		option(b)
	}
	return b
}

func (b *bruteForceHull) Epsilon() float64 {
	return b.epsilon
}

func (b *bruteForceHull) BuildEdges(points []common.Point) []common.Edge {
	n := len(points)
	if n < 3 {
		return []common.Edge{}
	}

	seen := make(map[common.Edge]struct{})
	edges := make([]common.Edge, 0, 3*n)
	add := func(a, c int) {
		e := common.NewEdge(a, c)
		if _, ok := seen[e]; ok {
			return
		}
		seen[e] = struct{}{}
		edges = append(edges, e)
	}

	for i := 0; i < n; i++ {
		pi := points[i].Position
		for j := i + 1; j < n; j++ {
			pj := points[j].Position
			for k := j + 1; k < n; k++ {
				pk := points[k].Position

				normal := pj.Sub(pi).Cross(pk.Sub(pi))
				length := normal.Len()
				if length < b.areaEpsilon {
					continue
				}
				normal = normal.Mul(1 / length)

				if !b.isFace(points, normal, i, j, k) {
					continue
				}
				add(i, j)
				add(j, k)
				add(i, k)
			}
		}
	}

	return edges
}

// isFace reports whether every point other than i, j and k lies on the same side of the
// plane through point i with the given unit normal. Points within epsilon of the plane
// count for either side.
func (b *bruteForceHull) isFace(points []common.Point, normal mgl64.Vec3, i, j, k int) bool {
	origin := points[i].Position
	var above, below bool
	for m := range points {
		if m == i || m == j || m == k {
			continue
		}
		d := normal.Dot(points[m].Position.Sub(origin))
		switch {
		case d > b.epsilon:
			above = true
		case d < -b.epsilon:
			below = true
		}
		if above && below {
			return false
		}
	}
	return true
}

package wireframe

import (
	"github.com/Carmen-Shannon/oxy-globe/common"
	"github.com/golang/geo/s2"
)

// CrossingPair names two edges whose great-circle arcs cross in their interiors.
type CrossingPair struct {
	A, B common.Edge
}

// Crossings projects every edge onto the unit sphere as a great-circle arc and returns
// the pairs of edges that properly cross. Edges sharing an endpoint never count. A
// hull over well-separated points yields no pairs; a non-empty result points at
// coplanar ties that the plane-side tolerance let through.
//
// Parameters:
//   - points: the point set the edges index into
//   - edges: the edges to audit
//
// Returns:
//   - []CrossingPair: every crossing pair, in edge order
func Crossings(points []common.Point, edges []common.Edge) []CrossingPair {
	verts := make([]s2.Point, len(points))
	for i, p := range points {
		verts[i] = s2.PointFromCoords(p.Position.X(), p.Position.Y(), p.Position.Z())
	}

	var out []CrossingPair
	for a := 0; a < len(edges); a++ {
		ea := edges[a]
		for b := a + 1; b < len(edges); b++ {
			eb := edges[b]
			if ea.I == eb.I || ea.I == eb.J || ea.J == eb.I || ea.J == eb.J {
				continue
			}
			if s2.CrossingSign(verts[ea.I], verts[ea.J], verts[eb.I], verts[eb.J]) == s2.Cross {
				out = append(out, CrossingPair{A: ea, B: eb})
			}
		}
	}
	return out
}

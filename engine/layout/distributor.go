package layout

import (
	"math"

	"github.com/Carmen-Shannon/oxy-globe/common"
	"github.com/go-gl/mathgl/mgl64"
)

// GoldenAngle is the angular step between consecutive spiral samples, π(3-√5).
var GoldenAngle = math.Pi * (3 - math.Sqrt(5))

// Distributor places items on the surface of a sphere centered at the origin.
type Distributor interface {
	// Distribute assigns one position on a sphere of the given radius to every item.
	// The result is deterministic: the same items in the same order always produce the
	// same positions in the same order.
	//
	// Parameters:
	//   - items: the items to place
	//   - radius: the sphere radius
	//
	// Returns:
	//   - []common.Point: one point per item, in item order
	Distribute(items []common.Item, radius float64) []common.Point
}

// sphereDistributor is the golden-angle spiral implementation of Distributor.
type sphereDistributor struct{}

var _ Distributor = &sphereDistributor{}

// NewSphereDistributor creates a Distributor that walks a golden-angle spiral from the
// +Y pole to the -Y pole. Samples are taken at half-step offsets so no point lands
// exactly on a pole.
//
// Returns:
//   - Distributor: the spiral distributor
func NewSphereDistributor() Distributor {
	return &sphereDistributor{}
}

func (d *sphereDistributor) Distribute(items []common.Item, radius float64) []common.Point {
	n := len(items)
	points := make([]common.Point, n)
	for i := range n {
		points[i] = common.Point{
			Position: SpiralPosition(i, n, radius),
			Index:    i,
			Item:     items[i],
		}
	}
	return points
}

// SpiralPosition returns the i-th of n golden-spiral samples on a sphere of the given
// radius.
//
// Parameters:
//   - i: sample index in [0, n)
//   - n: total sample count
//   - radius: sphere radius
//
// Returns:
//   - mgl64.Vec3: the sample position
func SpiralPosition(i, n int, radius float64) mgl64.Vec3 {
	y := 1 - 2*(float64(i)+0.5)/float64(n)
	r := math.Sqrt(math.Max(0, 1-y*y))
	theta := float64(i) * GoldenAngle
	return mgl64.Vec3{math.Cos(theta) * r, y, math.Sin(theta) * r}.Mul(radius)
}

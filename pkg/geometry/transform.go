package geometry

import (
	"math"

	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Point is a 3-D coordinate in metres.
type Point = v3.Vec

// Tolerance for comparing coordinates.
const Tolerance = 1e-6

// Transform is a rigid transformation (rotation and translation) in homogeneous coordinates.
//
// The zero value is not usable. Start from Identity().
type Transform struct {
	m sdf.M44
}

func Identity() Transform {
	return Transform{m: sdf.Identity3d()}
}

func Translation(offset Point) Transform {
	return Transform{m: sdf.Translate3d(offset)}
}

// RotationZ rotates counterclockwise (seen from +Z) by rad radians.
func RotationZ(rad float64) Transform {
	return Transform{m: sdf.RotateZ(rad)}
}

// Compose returns the transform applying inner first, then outer.
//
// Apply(Compose(A, B), p) == Apply(A, Apply(B, p)).
func Compose(outer Transform, inner Transform, more ...Transform) Transform {
	m := outer.m.Mul(inner.m)
	for _, t := range more {
		m = m.Mul(t.m)
	}
	return Transform{m: m}
}

// Invert returns the inverse of t.
//
// It returns false when t is singular. Rigid transforms never are.
func Invert(t Transform) (Transform, bool) {
	if math.Abs(t.m.Determinant()) < 1e-12 {
		return Transform{}, false
	}
	return Transform{m: t.m.Inverse()}, true
}

func (t Transform) Apply(p Point) Point {
	return t.m.MulPosition(p)
}

func (t Transform) ApplyAll(ps []Point) []Point {
	ret := make([]Point, len(ps))
	for i, p := range ps {
		ret[i] = t.m.MulPosition(p)
	}
	return ret
}

// Equal reports whether every element of the two matrices differs less than tol.
func (t Transform) Equal(other Transform, tol float64) bool {
	return t.m.Equals(other.m, tol)
}

// IsIdentity is Equal(Identity(), Tolerance).
func (t Transform) IsIdentity() bool {
	return t.Equal(Identity(), Tolerance)
}

// Rotation returns t without its translation component.
func (t Transform) Rotation() Transform {
	origin := t.Apply(Point{})
	return Compose(Translation(origin.Neg()), t)
}

func Deg2Rad(deg float64) float64 {
	return deg * math.Pi / 180
}

func Rad2Deg(rad float64) float64 {
	return rad * 180 / math.Pi
}

// BuildingTransformation is the rotation of the building's north axis.
//
// North axis is measured clockwise in degrees, so the rotation is about -Z.
func BuildingTransformation(northAxis float64) Transform {
	return RotationZ(-Deg2Rad(northAxis))
}

// ZoneTransformation is the placement of a zone in building coordinates:
// rotation by relative north (clockwise in degrees), then translation to origin.
func ZoneTransformation(origin Point, relativeNorth float64) Transform {
	return Compose(Translation(origin), RotationZ(-Deg2Rad(relativeNorth)))
}

// PointsEqual compares two point lists with tolerance tol per coordinate.
func PointsEqual(a, b []Point, tol float64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equals(b[i], tol) {
			return false
		}
	}
	return true
}

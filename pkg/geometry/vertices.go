package geometry

import (
	"math"

	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// VerticesForAzimuthTiltXYZLengthWidthOrHeight expands a parametric rectangle to 4 vertices.
//
// azimuth is measured clockwise from North, tilt from horizontal (both in degrees).
// (x0, y0, z0) is the starting corner. The returned vertices start at
// the upper left corner and run counterclockwise seen from outside.
func VerticesForAzimuthTiltXYZLengthWidthOrHeight(
	azimuth, tilt, x0, y0, z0, length, widthOrHeight float64,
) []Point {
	xpts := [4]float64{0, 0, length, length}
	ypts := [4]float64{widthOrHeight, 0, 0, widthOrHeight}

	cosAzimuth := math.Cos(Deg2Rad(azimuth))
	sinAzimuth := math.Sin(Deg2Rad(azimuth))
	cosTilt := math.Cos(Deg2Rad(tilt))
	sinTilt := math.Sin(Deg2Rad(tilt))

	ret := make([]Point, 4)
	for i := range ret {
		ret[i] = Point{
			X: x0 - cosAzimuth*xpts[i] - cosTilt*sinAzimuth*ypts[i],
			Y: y0 + sinAzimuth*xpts[i] - cosTilt*cosAzimuth*ypts[i],
			Z: z0 + sinTilt*ypts[i],
		}
	}
	return ret
}

// OutwardNormal computes the unit normal of a planar polygon by Newell's method.
//
// Counterclockwise vertices (seen from outside) give the outward normal.
// It returns false for polygons with less than 3 vertices or zero area.
func OutwardNormal(vertices []Point) (v3.Vec, bool) {
	if len(vertices) < 3 {
		return v3.Vec{}, false
	}
	n := v3.Vec{}
	for i := range vertices {
		cur := vertices[i]
		next := vertices[(i+1)%len(vertices)]
		n.X += (cur.Y - next.Y) * (cur.Z + next.Z)
		n.Y += (cur.Z - next.Z) * (cur.X + next.X)
		n.Z += (cur.X - next.X) * (cur.Y + next.Y)
	}
	if n.Length() < 1e-12 {
		return v3.Vec{}, false
	}
	return n.Normalize(), true
}

// Centroid is the average of vertices.
func Centroid(vertices []Point) (Point, bool) {
	if len(vertices) == 0 {
		return Point{}, false
	}
	c := Point{}
	for _, v := range vertices {
		c = c.Add(v)
	}
	return c.DivScalar(float64(len(vertices))), true
}

// faceRotation returns the rotation from face axes (x', y', z') to the original axes.
//
// z' is the outward normal. For a non-horizontal face y' is world Z projected onto the face
// and x' = y' x z'. For a horizontal face x' is world X and y' = z' x x'.
//
// Both cases are RotZ(psi) * RotX(theta), where theta is the angle between z' and world Z.
func faceRotation(normal v3.Vec) Transform {
	theta := math.Acos(math.Max(-1, math.Min(1, normal.Z)))
	psi := 0.0
	if 1e-5 < 1-math.Abs(normal.Z) {
		psi = math.Atan2(normal.X, -normal.Y)
	}
	return Transform{m: sdf.RotateZ(psi).Mul(sdf.RotateX(theta))}
}

// AlignFace returns the transform from face coordinates to the coordinates of vertices.
//
// In face coordinates the polygon lies on z = 0, and the origin is
// at the lower left corner of its bounding rectangle.
// To get face coordinates, apply the inverse.
func AlignFace(vertices []Point) (Transform, bool) {
	normal, ok := OutwardNormal(vertices)
	if !ok {
		return Transform{}, false
	}
	rot := faceRotation(normal)
	inv, ok := Invert(rot)
	if !ok {
		return Transform{}, false
	}
	local := inv.ApplyAll(vertices)
	minX, minY := math.Inf(1), math.Inf(1)
	for _, p := range local {
		minX = math.Min(minX, p.X)
		minY = math.Min(minY, p.Y)
	}
	return Compose(rot, Translation(Point{X: minX, Y: minY, Z: local[0].Z})), true
}

// ReorderULC rotates the vertex list so that it starts from the upper left corner
// (seen from outside). Winding is kept.
//
// Vertices which cannot form a face are returned as is.
func ReorderULC(vertices []Point) []Point {
	t, ok := AlignFace(vertices)
	if !ok {
		return vertices
	}
	inv, ok := Invert(t)
	if !ok {
		return vertices
	}
	local := inv.ApplyAll(vertices)

	const tol = 1e-5
	ulc := 0
	for i := 1; i < len(local); i++ {
		p, best := local[i], local[ulc]
		switch {
		case best.Y+tol < p.Y:
			ulc = i
		case math.Abs(best.Y-p.Y) <= tol && p.X < best.X-tol:
			ulc = i
		}
	}
	if ulc == 0 {
		return vertices
	}

	ret := make([]Point, 0, len(vertices))
	ret = append(ret, vertices[ulc:]...)
	ret = append(ret, vertices[:ulc]...)
	return ret
}

// Reverse returns vertices in reversed order, flipping winding.
func Reverse(vertices []Point) []Point {
	ret := make([]Point, len(vertices))
	for i, v := range vertices {
		ret[len(vertices)-1-i] = v
	}
	return ret
}

// Bounds returns the min and max corner of vertices.
func Bounds(vertices []Point) (Point, Point) {
	lo := Point{X: math.Inf(1), Y: math.Inf(1), Z: math.Inf(1)}
	hi := Point{X: math.Inf(-1), Y: math.Inf(-1), Z: math.Inf(-1)}
	for _, v := range vertices {
		lo = lo.Min(v)
		hi = hi.Max(v)
	}
	return lo, hi
}

package geometry_test

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/opst/knitsim/pkg/geometry"
)

func pointsApprox(tol float64) cmp.Option {
	return cmpopts.EquateApprox(0, tol)
}

func TestVerticesForAzimuthTiltXYZLengthWidthOrHeight(t *testing.T) {
	type When struct {
		azimuth, tilt, x0, y0, z0, length, widthOrHeight float64
	}
	type Then struct {
		vertices []geometry.Point
	}

	theory := func(when When, then Then) func(t *testing.T) {
		return func(t *testing.T) {
			actual := geometry.VerticesForAzimuthTiltXYZLengthWidthOrHeight(
				when.azimuth, when.tilt, when.x0, when.y0, when.z0, when.length, when.widthOrHeight,
			)
			if diff := cmp.Diff(then.vertices, actual, pointsApprox(0.01)); diff != "" {
				t.Errorf("vertices (-expect, +actual):\n%s", diff)
			}
		}
	}

	t.Run("a floor (tilt = 180) gives rectangle on horizontal plane", theory(
		When{azimuth: 0, tilt: 180, x0: 73, y0: 14, z0: 0, length: 25, widthOrHeight: 20},
		Then{vertices: []geometry.Point{
			{X: 73, Y: 34, Z: 0},
			{X: 73, Y: 14, Z: 0},
			{X: 48, Y: 14, Z: 0},
			{X: 48, Y: 34, Z: 0},
		}},
	))

	t.Run("a wall facing north (tilt = 90) gives vertical rectangle", theory(
		When{azimuth: 0, tilt: 90, x0: 73, y0: 14, z0: 0, length: 20, widthOrHeight: 4},
		Then{vertices: []geometry.Point{
			{X: 73, Y: 14, Z: 4},
			{X: 73, Y: 14, Z: 0},
			{X: 53, Y: 14, Z: 0},
			{X: 53, Y: 14, Z: 4},
		}},
	))

	t.Run("a wall facing east starts from its upper left corner", theory(
		When{azimuth: 90, tilt: 90, x0: 10, y0: 0, z0: 0, length: 5, widthOrHeight: 3},
		Then{vertices: []geometry.Point{
			{X: 10, Y: 0, Z: 3},
			{X: 10, Y: 0, Z: 0},
			{X: 10, Y: 5, Z: 0},
			{X: 10, Y: 5, Z: 3},
		}},
	))
}

func TestTransform(t *testing.T) {
	building := geometry.BuildingTransformation(30)
	zone := geometry.ZoneTransformation(geometry.Point{X: 10, Y: 5, Z: 1}, 30)
	points := []geometry.Point{
		{X: 0, Y: 0, Z: 1}, {X: 0, Y: 0, Z: 0}, {X: 10, Y: 0, Z: 0}, {X: 10, Y: 0, Z: 1},
		{X: -3.5, Y: 7, Z: 12}, {X: 1e3, Y: -2e2, Z: 0.25},
	}

	t.Run("composing with identity gives the same transform", func(t *testing.T) {
		if !geometry.Compose(zone, geometry.Identity()).Equal(zone, 1e-12) {
			t.Error("compose(T, identity) != T")
		}
		if !geometry.Compose(geometry.Identity(), zone).Equal(zone, 1e-12) {
			t.Error("compose(identity, T) != T")
		}
	})

	t.Run("applying composition equals applying one by one", func(t *testing.T) {
		composed := geometry.Compose(building, zone)
		for _, p := range points {
			actual := composed.Apply(p)
			expect := building.Apply(zone.Apply(p))
			if !actual.Equals(expect, geometry.Tolerance) {
				t.Errorf("actual=%+v, expect=%+v", actual, expect)
			}
		}
	})

	t.Run("composition is not commutative", func(t *testing.T) {
		if geometry.Compose(building, zone).Equal(geometry.Compose(zone, building), geometry.Tolerance) {
			t.Error("compose(B, Z) == compose(Z, B)")
		}
	})

	t.Run("composing with inverse gives identity", func(t *testing.T) {
		for _, tr := range []geometry.Transform{
			building, zone, geometry.Compose(building, zone),
			geometry.Translation(geometry.Point{X: -7, Y: 3, Z: 100}),
		} {
			inv, ok := geometry.Invert(tr)
			if !ok {
				t.Fatal("it should be invertible")
			}
			for _, p := range points {
				actual := geometry.Compose(tr, inv).Apply(p)
				if !actual.Equals(p, geometry.Tolerance) {
					t.Errorf("actual=%+v, expect=%+v", actual, p)
				}
			}
		}
	})

	t.Run("relative coordinates of a rotated zone in a rotated building are placed absolute", func(t *testing.T) {
		relative := []geometry.Point{
			{X: 0, Y: 0, Z: 1}, {X: 0, Y: 0, Z: 0}, {X: 10, Y: 0, Z: 0}, {X: 10, Y: 0, Z: 1},
		}
		expect := []geometry.Point{
			{X: 11.160254037844386, Y: -0.669872981077807, Z: 2},
			{X: 11.160254037844386, Y: -0.669872981077807, Z: 1},
			{X: 16.160254037844386, Y: -9.330127018922193, Z: 1},
			{X: 16.160254037844386, Y: -9.330127018922193, Z: 2},
		}
		actual := geometry.Compose(building, zone).ApplyAll(relative)
		if !geometry.PointsEqual(actual, expect, geometry.Tolerance) {
			t.Errorf("actual=%+v, expect=%+v", actual, expect)
		}

		inv, _ := geometry.Invert(geometry.Compose(building, zone))
		back := inv.ApplyAll(actual)
		if !geometry.PointsEqual(back, relative, geometry.Tolerance) {
			t.Errorf("round trip: actual=%+v, expect=%+v", back, relative)
		}
	})

	t.Run("Rotation drops translation", func(t *testing.T) {
		r := zone.Rotation()
		if p := r.Apply(geometry.Point{}); !p.Equals(geometry.Point{}, geometry.Tolerance) {
			t.Errorf("origin is moved: %+v", p)
		}
		expect := geometry.RotationZ(geometry.Deg2Rad(-30))
		if !r.Equal(expect, geometry.Tolerance) {
			t.Errorf("rotation is changed")
		}
	})
}

func TestOutwardNormal(t *testing.T) {
	t.Run("counterclockwise wall facing south has normal -Y", func(t *testing.T) {
		n, ok := geometry.OutwardNormal([]geometry.Point{
			{X: 0, Y: 0, Z: 1}, {X: 0, Y: 0, Z: 0}, {X: 1, Y: 0, Z: 0}, {X: 1, Y: 0, Z: 1},
		})
		if !ok {
			t.Fatal("no normal")
		}
		if !n.Equals(geometry.Point{X: 0, Y: -1, Z: 0}, geometry.Tolerance) {
			t.Errorf("actual=%+v, expect=(0,-1,0)", n)
		}
	})

	t.Run("degenerated polygon has no normal", func(t *testing.T) {
		_, ok := geometry.OutwardNormal([]geometry.Point{
			{X: 0, Y: 0, Z: 0}, {X: 1, Y: 1, Z: 1}, {X: 2, Y: 2, Z: 2},
		})
		if ok {
			t.Error("it should have no normal")
		}
		if _, ok := geometry.OutwardNormal(nil); ok {
			t.Error("it should have no normal")
		}
	})
}

func TestAlignFace(t *testing.T) {
	t.Run("face coordinates of a wall start at its lower left corner", func(t *testing.T) {
		wall := []geometry.Point{
			{X: 10, Y: 0, Z: 3}, {X: 10, Y: 0, Z: 0}, {X: 10, Y: 5, Z: 0}, {X: 10, Y: 5, Z: 3},
		}
		tr, ok := geometry.AlignFace(wall)
		if !ok {
			t.Fatal("it should be aligned")
		}
		inv, _ := geometry.Invert(tr)
		actual := inv.ApplyAll(wall)
		expect := []geometry.Point{
			{X: 0, Y: 3, Z: 0}, {X: 0, Y: 0, Z: 0}, {X: 5, Y: 0, Z: 0}, {X: 5, Y: 3, Z: 0},
		}
		if !geometry.PointsEqual(actual, expect, geometry.Tolerance) {
			t.Errorf("actual=%+v, expect=%+v", actual, expect)
		}
	})

	t.Run("a floor facing down has face x along world X", func(t *testing.T) {
		floor := geometry.VerticesForAzimuthTiltXYZLengthWidthOrHeight(0, 180, 73, 14, 0, 25, 20)
		tr, ok := geometry.AlignFace(floor)
		if !ok {
			t.Fatal("it should be aligned")
		}
		inv, _ := geometry.Invert(tr)
		for _, p := range inv.ApplyAll(floor) {
			if math.Abs(p.Z) > geometry.Tolerance {
				t.Errorf("vertex is not on face: %+v", p)
			}
		}
		dx := tr.Apply(geometry.Point{X: 1}).Sub(tr.Apply(geometry.Point{}))
		if !dx.Equals(geometry.Point{X: 1}, geometry.Tolerance) {
			t.Errorf("x' = %+v, expect=(1,0,0)", dx)
		}
	})
}

func TestReorderULC(t *testing.T) {
	expect := []geometry.Point{
		{X: 0, Y: 0, Z: 1}, {X: 0, Y: 0, Z: 0}, {X: 1, Y: 0, Z: 0}, {X: 1, Y: 0, Z: 1},
	}

	for shift := 0; shift < len(expect); shift++ {
		given := append(append([]geometry.Point{}, expect[shift:]...), expect[:shift]...)
		t.Run("it starts from the upper left corner for any rotation of vertices", func(t *testing.T) {
			actual := geometry.ReorderULC(given)
			if !geometry.PointsEqual(actual, expect, 0) {
				t.Errorf("shift %d: actual=%+v, expect=%+v", shift, actual, expect)
			}
		})
	}

	t.Run("it leaves degenerated polygon as is", func(t *testing.T) {
		given := []geometry.Point{{X: 1}, {X: 2}}
		if actual := geometry.ReorderULC(given); !geometry.PointsEqual(actual, given, 0) {
			t.Errorf("actual=%+v, expect=%+v", actual, given)
		}
	})

	t.Run("Reverse flips winding", func(t *testing.T) {
		n, _ := geometry.OutwardNormal(geometry.Reverse(expect))
		if !n.Equals(geometry.Point{X: 0, Y: 1, Z: 0}, geometry.Tolerance) {
			t.Errorf("actual=%+v, expect=(0,1,0)", n)
		}
	})
}

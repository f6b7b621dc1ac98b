package geometry

import (
	"strings"
	"testing"

	geom "github.com/opst/knitsim/pkg/geometry"
	"github.com/opst/knitsim/pkg/idf"
)

func TestSetVertices(t *testing.T) {
	square := []geom.Point{
		{X: 0, Y: 1, Z: 0}, {X: 0, Y: 0, Z: 0}, {X: 1, Y: 0, Z: 0}, {X: 1, Y: 1, Z: 0},
	}

	t.Run("When vertices are set on a polygon, Then they are replaced", func(t *testing.T) {
		testee := New(idf.NewWorkspace(), nil)
		rec := idf.MustRecord(idf.ShadingSiteDetailed, "Fence", "", "4")

		if !testee.setVertices(rec, square) {
			t.Fatalf("setVertices failed: %+v", testee.Errors())
		}
		actual, err := idf.Vertices(rec)
		if err != nil {
			t.Fatal(err)
		}
		if !geom.PointsEqual(actual, square, geom.Tolerance) {
			t.Errorf("actual=%+v, expect=%+v", actual, square)
		}
		if errs := testee.Errors(); len(errs) != 0 {
			t.Errorf("errors: actual=%+v, expect=none", errs)
		}
	})

	t.Run("When vertices cannot be set, Then the failure is logged and false is returned", func(t *testing.T) {
		testee := New(idf.NewWorkspace(), nil)
		rec := idf.MustRecord(idf.Zone, "Core")

		if testee.setVertices(rec, square) {
			t.Errorf("setVertices should fail for %s", rec)
		}
		errs := testee.Errors()
		if len(errs) != 1 {
			t.Fatalf("errors: actual=%+v, expect=1 message", errs)
		}
		if !strings.Contains(errs[0].Message, "not a polygon") {
			t.Errorf("message: actual=%s, expect=containing 'not a polygon'", errs[0].Message)
		}
	})
}

package forward_test

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/opst/knitsim/pkg/geometry"
	"github.com/opst/knitsim/pkg/idf"
	"github.com/opst/knitsim/pkg/model"
	"github.com/opst/knitsim/pkg/translator/forward"
)

func field(t *testing.T, r *idf.Record, i int) string {
	t.Helper()
	v, _ := r.GetString(i)
	return v
}

func only(t *testing.T, ws *idf.Workspace, typ idf.ObjectType) *idf.Record {
	t.Helper()
	rs := ws.ObjectsByType(typ)
	if len(rs) != 1 {
		t.Fatalf("%s: actual=%d records, expect=1", typ, len(rs))
	}
	return rs[0]
}

func indexOf(ws *idf.Workspace, r *idf.Record) int {
	for i, x := range ws.Objects() {
		if x.Handle() == r.Handle() {
			return i
		}
	}
	return -1
}

func TestTranslateModel_Defaults(t *testing.T) {
	type When struct {
		set func(m *model.Material)
	}
	type Then struct {
		thermal string
		solar   string
	}

	theory := func(when When, then Then) func(t *testing.T) {
		return func(t *testing.T) {
			m := model.New()
			mat := model.NewMaterial(m)
			mat.SetName("Brick")
			when.set(mat)

			ws := forward.New(nil).TranslateModel(m)

			r := only(t, ws, idf.Material)
			if actual := field(t, r, idf.MaterialThermalAbsorptance); actual != then.thermal {
				t.Errorf("thermal absorptance: actual=%+v, expect=%+v", actual, then.thermal)
			}
			if actual := field(t, r, idf.MaterialSolarAbsorptance); actual != then.solar {
				t.Errorf("solar absorptance: actual=%+v, expect=%+v", actual, then.solar)
			}
			// no defaults in schema: always written.
			if actual := field(t, r, idf.MaterialThickness); actual != "0.1" {
				t.Errorf("thickness: actual=%+v, expect=%+v", actual, "0.1")
			}
		}
	}

	t.Run("defaulted fields are omitted", theory(
		When{set: func(*model.Material) {}},
		Then{thermal: "", solar: ""},
	))

	t.Run("explicit values are written even if they equal the default", theory(
		When{set: func(m *model.Material) { m.SetThermalAbsorptance(0.9) }},
		Then{thermal: "0.9", solar: ""},
	))

	t.Run("explicit values are written", theory(
		When{set: func(m *model.Material) {
			m.SetThermalAbsorptance(0.85)
			m.SetSolarAbsorptance(0.6)
		}},
		Then{thermal: "0.85", solar: "0.6"},
	))
}

func TestTranslateModel_SharedObjectIsEmittedOnce(t *testing.T) {
	m := model.New()
	sch := model.NewScheduleConstant(m)
	sch.SetName("Always On")
	sch.SetValue(1)
	c1 := model.NewCoilCoolingDXMultiSpeed(m)
	c1.SetName("Coil 1")
	c1.SetAvailabilitySchedule(sch)
	c2 := model.NewCoilCoolingDXMultiSpeed(m)
	c2.SetName("Coil 2")
	c2.SetAvailabilitySchedule(sch)

	ws := forward.New(nil).TranslateModel(m)

	r := only(t, ws, idf.ScheduleConstant)
	if name, _ := r.Name(); name != "Always On" {
		t.Errorf("actual=%+v, expect=%+v", name, "Always On")
	}
	coils := ws.ObjectsByType(idf.CoilCoolingDXMultiSpeed)
	if len(coils) != 2 {
		t.Fatalf("actual=%d coils, expect=2", len(coils))
	}
	for _, c := range coils {
		if actual := field(t, c, idf.CoilCoolingDXMultiSpeedAvailabilityScheduleName); actual != "Always On" {
			t.Errorf("%s: actual=%+v, expect=%+v", c, actual, "Always On")
		}
	}
	if err := ws.Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestTranslateModel_StageOrder(t *testing.T) {
	m := model.New()
	coil := model.NewCoilCoolingDXMultiSpeed(m)
	coil.SetName("DX")
	cops := []float64{3.1, 3.2, 3.3}
	for _, cop := range cops {
		s := model.NewCoilCoolingDXMultiSpeedStageData(m)
		s.SetGrossRatedCoolingCOP(cop)
		coil.AddStage(s)
	}
	coil.Stages()[1].SetGrossRatedTotalCoolingCapacity(12000)

	tr := forward.New(nil)
	ws := tr.TranslateModel(m)

	r := only(t, ws, idf.CoilCoolingDXMultiSpeed)
	if n := r.NumExtensibleGroups(); n != 3 {
		t.Fatalf("actual=%d groups, expect=3", n)
	}
	if actual := field(t, r, idf.CoilCoolingDXMultiSpeedNumberOfSpeeds); actual != "3" {
		t.Errorf("number of speeds: actual=%+v, expect=%+v", actual, "3")
	}

	actualCOP := []string{}
	actualCapacity := []string{}
	for k := range 3 {
		g, _ := r.ExtensibleGroup(k)
		actualCOP = append(actualCOP, g[idf.SpeedGrossRatedCoolingCOP])
		actualCapacity = append(actualCapacity, g[idf.SpeedGrossRatedTotalCoolingCapacity])
	}
	if diff := cmp.Diff([]string{"3.1", "3.2", "3.3"}, actualCOP); diff != "" {
		t.Errorf("COP (-expect, +actual):\n%s", diff)
	}
	if diff := cmp.Diff([]string{idf.Autosize, "12000", idf.Autosize}, actualCapacity); diff != "" {
		t.Errorf("capacity (-expect, +actual):\n%s", diff)
	}
	if len(tr.Errors()) != 0 {
		t.Errorf("unexpected errors: %+v", tr.Errors())
	}
}

func TestTranslateModel_MissingName(t *testing.T) {
	m := model.New()
	sch := model.NewScheduleConstant(m)
	coil := model.NewCoilCoolingDXMultiSpeed(m)
	coil.SetName("DX")
	coil.SetAvailabilitySchedule(sch)

	tr := forward.New(nil)
	ws := tr.TranslateModel(m)

	r := only(t, ws, idf.CoilCoolingDXMultiSpeed)
	if actual := field(t, r, idf.CoilCoolingDXMultiSpeedAvailabilityScheduleName); actual != "" {
		t.Errorf("actual=%+v, expect blank", actual)
	}
	if len(tr.Errors()) == 0 {
		t.Error("missing name should be logged")
	}
}

func TestTranslateModel_Geometry(t *testing.T) {
	m := model.New()
	b := model.NewBuilding(m)
	b.SetNorthAxis(30)

	zone := model.NewThermalZone(m)
	zone.SetName("Core")
	space := model.NewSpace(m)
	space.SetThermalZone(zone)
	space.SetOrigin(geometry.Point{X: 10, Y: 5, Z: 1})

	other := model.NewSpace(m)
	other.SetThermalZone(zone)
	other.SetOrigin(geometry.Point{X: 20, Y: 5, Z: 1})

	mat := model.NewMaterial(m)
	mat.SetName("Concrete")
	constr := model.NewConstruction(m)
	constr.SetName("Floor")
	constr.SetLayers(mat)

	wall := []geometry.Point{{X: 0, Y: 0, Z: 1}, {X: 0, Y: 0, Z: 0}, {X: 10, Y: 0, Z: 0}, {X: 10, Y: 0, Z: 1}}
	a := model.NewSurface(m, wall)
	a.SetName("A")
	a.SetSpace(space)
	a.SetConstruction(constr)
	bs := model.NewSurface(m, geometry.Reverse(wall))
	bs.SetName("B")
	bs.SetSpace(other)
	model.Link(a, bs)

	dl := model.NewDaylightingControl(m)
	dl.SetSpace(other)
	dl.SetPosition(geometry.Point{X: 1, Y: 1, Z: 0.8})

	tr := forward.New(nil)
	ws := tr.TranslateModel(m)

	t.Run("building and zone carry their transformations", func(t *testing.T) {
		if actual := field(t, only(t, ws, idf.Building), idf.BuildingNorthAxis); actual != "30" {
			t.Errorf("north axis: actual=%+v, expect=%+v", actual, "30")
		}
		z := only(t, ws, idf.Zone)
		actual := []string{field(t, z, idf.ZoneXOrigin), field(t, z, idf.ZoneYOrigin), field(t, z, idf.ZoneZOrigin)}
		if diff := cmp.Diff([]string{"10", "5", "1"}, actual); diff != "" {
			t.Errorf("origin (-expect, +actual):\n%s", diff)
		}
		if actual := field(t, z, idf.ZoneDirectionOfRelativeNorth); actual != "" {
			t.Errorf("defaulted north should be omitted: actual=%+v", actual)
		}
	})

	t.Run("surfaces refer to each other", func(t *testing.T) {
		ra, _ := ws.ObjectByTypeAndName(idf.BuildingSurfaceDetailed, "A")
		rb, _ := ws.ObjectByTypeAndName(idf.BuildingSurfaceDetailed, "B")
		if ra == nil || rb == nil {
			t.Fatalf("surfaces are not translated: A=%v, B=%v", ra, rb)
		}
		for _, c := range []struct {
			r      *idf.Record
			expect string
		}{{ra, "B"}, {rb, "A"}} {
			if actual := field(t, c.r, idf.BuildingSurfaceDetailedOutsideBoundaryCondition); actual != "Surface" {
				t.Errorf("%s: actual=%+v, expect=%+v", c.r, actual, "Surface")
			}
			if actual := field(t, c.r, idf.BuildingSurfaceDetailedOutsideBoundaryConditionObject); actual != c.expect {
				t.Errorf("%s: actual=%+v, expect=%+v", c.r, actual, c.expect)
			}
			if actual := field(t, c.r, idf.BuildingSurfaceDetailedZoneName); actual != "Core" {
				t.Errorf("%s: actual=%+v, expect=%+v", c.r, actual, "Core")
			}
		}
		if actual := field(t, ra, idf.BuildingSurfaceDetailedSurfaceType); actual != "Wall" {
			t.Errorf("actual=%+v, expect=%+v", actual, "Wall")
		}
	})

	t.Run("vertices of other spaces are in zone coordinates", func(t *testing.T) {
		ra, _ := ws.ObjectByTypeAndName(idf.BuildingSurfaceDetailed, "A")
		rb, _ := ws.ObjectByTypeAndName(idf.BuildingSurfaceDetailed, "B")
		va, err := idf.Vertices(ra)
		if err != nil {
			t.Fatal(err)
		}
		if !geometry.PointsEqual(wall, va, 1e-9) {
			t.Errorf("A: actual=%+v, expect=%+v", va, wall)
		}
		vb, err := idf.Vertices(rb)
		if err != nil {
			t.Fatal(err)
		}
		expect := geometry.Translation(geometry.Point{X: 10}).ApplyAll(geometry.Reverse(wall))
		if !geometry.PointsEqual(expect, vb, 1e-9) {
			t.Errorf("B: actual=%+v, expect=%+v", vb, expect)
		}

		d := only(t, ws, idf.DaylightingControls)
		x, _ := d.GetDouble(idf.DaylightingControlsFirstX)
		if math.Abs(x-11) > 1e-9 {
			t.Errorf("daylighting x: actual=%+v, expect=%+v", x, 11)
		}
		if actual := field(t, d, idf.DaylightingControlsZoneName); actual != "Core" {
			t.Errorf("actual=%+v, expect=%+v", actual, "Core")
		}
	})

	t.Run("a referenced object is emitted right after its first referrer", func(t *testing.T) {
		ra, _ := ws.ObjectByTypeAndName(idf.BuildingSurfaceDetailed, "A")
		rc := only(t, ws, idf.Construction)
		rm := only(t, ws, idf.Material)
		if !(indexOf(ws, ra)+1 == indexOf(ws, rc) && indexOf(ws, rc)+1 == indexOf(ws, rm)) {
			t.Errorf(
				"order: surface=%d, construction=%d, material=%d",
				indexOf(ws, ra), indexOf(ws, rc), indexOf(ws, rm),
			)
		}
		if actual := field(t, rc, idf.ConstructionFirstLayer); actual != "Concrete" {
			t.Errorf("actual=%+v, expect=%+v", actual, "Concrete")
		}
	})

	t.Run("the workspace has no dangling pointers", func(t *testing.T) {
		if err := ws.Validate(); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
		if len(tr.Errors()) != 0 {
			t.Errorf("unexpected errors: %+v", tr.Errors())
		}
	})
}

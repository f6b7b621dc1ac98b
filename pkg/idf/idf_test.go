package idf_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/opst/knitsim/pkg/geometry"
	"github.com/opst/knitsim/pkg/idf"
)

func TestRecord(t *testing.T) {
	t.Run("absent field falls back to default", func(t *testing.T) {
		zone := idf.MustRecord(idf.Zone, "Core")

		if _, ok := zone.GetDouble(idf.ZoneXOrigin); ok {
			t.Error("raw value should be absent")
		}
		actual, ok := zone.GetDoubleOrDefault(idf.ZoneXOrigin)
		if !ok || actual != 0 {
			t.Errorf("actual=%+v (%v), expect=0", actual, ok)
		}
		if !zone.IsAutocalculate(idf.ZoneVolume) {
			t.Error("volume should be autocalculated by default")
		}
	})

	t.Run("sentinel is not a number", func(t *testing.T) {
		coil := idf.MustRecord(idf.CoilCoolingDXMultiSpeed, "Coil")
		if err := coil.PushExtensibleGroup(); err != nil {
			t.Fatal(err)
		}
		i := coil.ExtensibleIndex(0, idf.SpeedGrossRatedTotalCoolingCapacity)
		if !coil.IsAutosize(i) {
			t.Error("capacity should be autosized by default")
		}
		if _, ok := coil.GetDoubleOrDefault(i); ok {
			t.Error("Autosize should not be read as number")
		}
		if err := coil.SetDouble(i, 12000); err != nil {
			t.Fatal(err)
		}
		if coil.IsAutosize(i) {
			t.Error("capacity should not be autosized")
		}
		if v, _ := coil.GetDouble(i); v != 12000 {
			t.Errorf("actual=%+v, expect=%+v", v, 12000)
		}
	})

	t.Run("extensible groups can be pushed and erased", func(t *testing.T) {
		c := idf.MustRecord(idf.Construction, "Wall", "Brick", "Insulation", "Gypsum")
		if n := c.NumExtensibleGroups(); n != 3 {
			t.Fatalf("actual=%+v, expect=%+v", n, 3)
		}
		g, ok := c.EraseExtensibleGroup(1)
		if !ok || g[0] != "Insulation" {
			t.Errorf("erased: actual=%+v, expect=[Insulation]", g)
		}
		if diff := cmp.Diff([]string{"Wall", "Brick", "Gypsum"}, c.Fields()); diff != "" {
			t.Errorf("fields (-expect, +actual):\n%s", diff)
		}
	})

	t.Run("fields out of schema are rejected", func(t *testing.T) {
		_, err := idf.NewRecord("NoSuchType")
		if !errors.Is(err, idf.ErrUnknownType) {
			t.Errorf("actual=%+v, expect=%+v", err, idf.ErrUnknownType)
		}
		v, _ := idf.NewRecord(idf.Version)
		if err := v.SetFields("8.0", "extra"); !errors.Is(err, idf.ErrFieldOutOfRange) {
			t.Errorf("actual=%+v, expect=%+v", err, idf.ErrFieldOutOfRange)
		}
		s, _ := idf.NewRecord(idf.ShadingSiteDetailed)
		if err := s.SetFields("S", "", "", "1", "2"); !errors.Is(err, idf.ErrIncompleteGroups) {
			t.Errorf("actual=%+v, expect=%+v", err, idf.ErrIncompleteGroups)
		}
	})
}

func TestWorkspace(t *testing.T) {
	t.Run("names are unique in type, case-insensitively", func(t *testing.T) {
		ws := idf.NewWorkspace()
		if _, err := ws.AddObject(idf.Zone, "Core"); err != nil {
			t.Fatal(err)
		}
		_, err := ws.AddObject(idf.Zone, "CORE")
		if !errors.Is(err, idf.ErrDuplicatedName) {
			t.Errorf("actual=%+v, expect=%+v", err, idf.ErrDuplicatedName)
		}
		if _, err := ws.AddObject(idf.OutputIlluminanceMap, "Core"); err != nil {
			t.Errorf("other type can have the same name: %+v", err)
		}
	})

	t.Run("unique type can be added once", func(t *testing.T) {
		ws := idf.NewWorkspace()
		if _, err := ws.AddObject(idf.Building, "B"); err != nil {
			t.Fatal(err)
		}
		if _, err := ws.AddObject(idf.Building, "C"); !errors.Is(err, idf.ErrUniqueObject) {
			t.Errorf("actual=%+v, expect=%+v", err, idf.ErrUniqueObject)
		}
	})

	t.Run("swap keeps handle and position", func(t *testing.T) {
		ws := idf.NewWorkspace()
		first, _ := ws.AddObject(idf.Zone, "Core")
		old, _ := ws.AddObject(idf.WallExterior, "Wall 1", "Ext", "Core", "180", "90", "0", "0", "0", "10", "3")
		last, _ := ws.AddObject(idf.Zone, "Plenum")

		replacement := idf.MustRecord(idf.BuildingSurfaceDetailed, "Wall 1", "Wall", "Ext", "Core")
		if err := ws.Swap(old, replacement); err != nil {
			t.Fatal(err)
		}
		if replacement.Handle() != old.Handle() {
			t.Errorf("handle: actual=%+v, expect=%+v", replacement.Handle(), old.Handle())
		}
		objs := ws.Objects()
		if objs[0] != first || objs[1] != replacement || objs[2] != last {
			t.Errorf("order is changed: %+v", objs)
		}
		if r, ok := ws.ObjectByHandle(old.Handle()); !ok || r.Type() != idf.BuildingSurfaceDetailed {
			t.Errorf("actual=%+v, expect=%s", r, idf.BuildingSurfaceDetailed)
		}
	})

	t.Run("pointers resolve by name and dangle after removal", func(t *testing.T) {
		ws := idf.NewWorkspace()
		zone, _ := ws.AddObject(idf.Zone, "Core")
		surface, _ := ws.AddObject(idf.BuildingSurfaceDetailed, "Floor", "Floor", "", "core")

		target, ok := ws.PointerTarget(surface, idf.BuildingSurfaceDetailedZoneName)
		if !ok || target != zone {
			t.Errorf("actual=%+v, expect=%+v", target, zone)
		}
		if srcs := ws.Sources(zone); len(srcs) != 1 || srcs[0] != surface {
			t.Errorf("sources: actual=%+v", srcs)
		}
		if err := ws.Validate(); err != nil {
			t.Errorf("unexpected error: %+v", err)
		}

		ws.Remove(zone.Handle())
		if err := ws.Validate(); !errors.Is(err, idf.ErrDanglingPointer) {
			t.Errorf("actual=%+v, expect=%+v", err, idf.ErrDanglingPointer)
		}
	})

	t.Run("When a zone and a surface share a name, Then the boundary condition chooses the target", func(t *testing.T) {
		ws := idf.NewWorkspace()
		surface, _ := ws.AddObject(idf.BuildingSurfaceDetailed, "Core", "Wall", "", "Plenum")
		zone, _ := ws.AddObject(idf.Zone, "Core")
		toZone, _ := ws.AddObject(idf.BuildingSurfaceDetailed, "Wall 1", "Wall", "", "Plenum", "Zone", "Core")
		toSurface, _ := ws.AddObject(idf.BuildingSurfaceDetailed, "Wall 2", "Wall", "", "Plenum", "Surface", "core")

		for _, c := range []struct {
			source *idf.Record
			expect *idf.Record
		}{
			{source: toZone, expect: zone},
			{source: toSurface, expect: surface},
		} {
			actual, ok := ws.PointerTarget(c.source, idf.BuildingSurfaceDetailedOutsideBoundaryConditionObject)
			if !ok || actual != c.expect {
				t.Errorf("%s: actual=%+v, expect=%+v", c.source, actual, c.expect)
			}
		}
		if actual := ws.Sources(zone); len(actual) != 1 || actual[0] != toZone {
			t.Errorf("sources of zone: actual=%+v, expect=%+v", actual, []*idf.Record{toZone})
		}
		if actual := ws.Sources(surface); len(actual) != 1 || actual[0] != toSurface {
			t.Errorf("sources of surface: actual=%+v, expect=%+v", actual, []*idf.Record{toSurface})
		}
	})

	t.Run("When the boundary condition names no type, Then types are tried in schema order", func(t *testing.T) {
		ws := idf.NewWorkspace()
		zone, _ := ws.AddObject(idf.Zone, "Core")
		surface, _ := ws.AddObject(idf.BuildingSurfaceDetailed, "Core", "Wall", "", "Core")
		source, _ := ws.AddObject(idf.BuildingSurfaceDetailed, "Wall 1", "Wall", "", "Core", "Outdoors", "Core")

		actual, ok := ws.PointerTarget(source, idf.BuildingSurfaceDetailedOutsideBoundaryConditionObject)
		if !ok || actual != surface {
			t.Errorf("actual=%+v, expect=%+v (not %+v)", actual, surface, zone)
		}
	})
}

func TestText(t *testing.T) {
	text := `
! sample
Version,8.0;

Zone,
  Core,          !- Name
  30,            !- Direction of Relative North {deg}
  10, 5, 1;      !- Origin

Shading:Site:Detailed,
  Tree,,
  3,
  0,0,0, 1,0,0,
  1,1,0;
`

	ws, err := idf.ReadString(text)
	if err != nil {
		t.Fatal(err)
	}
	if ws.Len() != 3 {
		t.Fatalf("actual=%+v, expect=%+v", ws.Len(), 3)
	}
	zone, ok := ws.ObjectByTypeAndName(idf.Zone, "core")
	if !ok {
		t.Fatal("zone is not found")
	}
	if v, _ := zone.GetDouble(idf.ZoneYOrigin); v != 5 {
		t.Errorf("actual=%+v, expect=%+v", v, 5)
	}

	tree, _ := ws.ObjectByTypeAndName(idf.ShadingSiteDetailed, "Tree")
	vs, err := idf.Vertices(tree)
	if err != nil {
		t.Fatal(err)
	}
	expect := []geometry.Point{{X: 0, Y: 0, Z: 0}, {X: 1, Y: 0, Z: 0}, {X: 1, Y: 1, Z: 0}}
	if !geometry.PointsEqual(vs, expect, 0) {
		t.Errorf("actual=%+v, expect=%+v", vs, expect)
	}

	t.Run("written text is read back", func(t *testing.T) {
		written := idf.String(ws)
		if !strings.Contains(written, "!- Vertex X-coordinate 3") {
			t.Errorf("field name is not annotated:\n%s", written)
		}
		again, err := idf.ReadString(written)
		if err != nil {
			t.Fatal(err)
		}
		if diff := cmp.Diff(fieldsOf(ws), fieldsOf(again)); diff != "" {
			t.Errorf("records (-expect, +actual):\n%s", diff)
		}
	})

	t.Run("unterminated record is syntax error", func(t *testing.T) {
		if _, err := idf.ReadString("Zone, Core"); !errors.Is(err, idf.ErrSyntax) {
			t.Errorf("actual=%+v, expect=%+v", err, idf.ErrSyntax)
		}
	})

	t.Run("unknown type is error", func(t *testing.T) {
		if _, err := idf.ReadString("Nonsense, x;"); !errors.Is(err, idf.ErrUnknownType) {
			t.Errorf("actual=%+v, expect=%+v", err, idf.ErrUnknownType)
		}
	})
}

func fieldsOf(ws *idf.Workspace) [][]string {
	ret := [][]string{}
	for _, r := range ws.Objects() {
		fs := r.Fields()
		for len(fs) > 1 && fs[len(fs)-1] == "" && r.NumExtensibleGroups() == 0 {
			fs = fs[:len(fs)-1]
		}
		ret = append(ret, append([]string{string(r.Type())}, fs...))
	}
	return ret
}

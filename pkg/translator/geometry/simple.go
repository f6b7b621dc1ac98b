package geometry

import (
	"math"

	geom "github.com/opst/knitsim/pkg/geometry"
	"github.com/opst/knitsim/pkg/idf"
)

type boundary struct {
	surfaceType string
	condition   string
	sun         string
	wind        string
}

var (
	exposed   = func(t string) boundary { return boundary{t, "Outdoors", "SunExposed", "WindExposed"} }
	adiabatic = func(t string) boundary { return boundary{t, "Adiabatic", "NoSun", "NoWind"} }
	ground    = func(t string) boundary { return boundary{t, "Ground", "NoSun", "NoWind"} }
	interzone = func(t string) boundary { return boundary{t, "Zone", "NoSun", "NoWind"} }
)

// simpleSurfaces in conversion order.
var simpleSurfaces = []struct {
	typ       idf.ObjectType
	boundary  boundary
	interzone bool
}{
	{typ: idf.WallExterior, boundary: exposed("Wall")},
	{typ: idf.WallAdiabatic, boundary: adiabatic("Wall")},
	{typ: idf.WallUnderground, boundary: ground("Wall")},
	{typ: idf.WallInterzone, boundary: interzone("Wall"), interzone: true},
	{typ: idf.Roof, boundary: exposed("Roof")},
	{typ: idf.CeilingAdiabatic, boundary: adiabatic("Ceiling")},
	{typ: idf.CeilingInterzone, boundary: interzone("Ceiling"), interzone: true},
	{typ: idf.FloorGroundContact, boundary: ground("Floor")},
	{typ: idf.FloorAdiabatic, boundary: adiabatic("Floor")},
	{typ: idf.FloorInterzone, boundary: interzone("Floor"), interzone: true},
}

// detailedSurfaces are polygon surfaces with implicit surface type.
var detailedSurfaces = []struct {
	typ         idf.ObjectType
	surfaceType string
}{
	{typ: idf.WallDetailed, surfaceType: "Wall"},
	{typ: idf.RoofCeilingDetailed, surfaceType: "Roof"},
	{typ: idf.FloorDetailed, surfaceType: "Floor"},
}

// doubles reads numeric fields with defaults. It returns false if any of them is missing.
func doubles(rec *idf.Record, indices ...int) ([]float64, bool) {
	ret := make([]float64, len(indices))
	for n, i := range indices {
		v, ok := rec.GetDoubleOrDefault(i)
		if !ok {
			return nil, false
		}
		ret[n] = v
	}
	return ret, true
}

func str(rec *idf.Record, i int) string {
	v, _ := rec.GetString(i)
	return v
}

func (c *Converter) swap(old, replacement *idf.Record) bool {
	if err := c.ws.Swap(old, replacement); err != nil {
		c.log.Errorf("%s: cannot replace: %s", old, err)
		return false
	}
	return true
}

func (c *Converter) convertSimpleSurfaces(detailedChange, rectangularChange coordinateChange, building geom.Transform) bool {
	ok := true

	for _, d := range detailedSurfaces {
		for _, old := range c.ws.ObjectsByType(d.typ) {
			zone, found := c.ws.PointerTarget(old, idf.DetailedSurfaceZoneName)
			if !found && detailedChange != noChange {
				c.log.Errorf("%s: could not find zone", old)
				ok = false
				continue
			}
			vs, err := idf.Vertices(old)
			if err != nil {
				c.log.Errorf("%s: %s", old, err)
				ok = false
				continue
			}
			if detailedChange != noChange {
				vs = c.zoneChange(detailedChange, building, zone).ApplyAll(vs)
			}

			replacement := idf.MustRecord(
				idf.BuildingSurfaceDetailed,
				str(old, idf.DetailedSurfaceName),
				d.surfaceType,
				str(old, idf.DetailedSurfaceConstructionName),
				str(old, idf.DetailedSurfaceZoneName),
				str(old, idf.DetailedSurfaceOutsideBoundaryCondition),
				str(old, idf.DetailedSurfaceOutsideBoundaryConditionObject),
				str(old, idf.DetailedSurfaceSunExposure),
				str(old, idf.DetailedSurfaceWindExposure),
				str(old, idf.DetailedSurfaceViewFactorToGround),
				idf.Autocalculate,
			)
			if !c.setVertices(replacement, vs) {
				ok = false
				continue
			}
			ok = c.swap(old, replacement) && ok
		}
	}

	for _, s := range simpleSurfaces {
		name, construction, zoneName, params := idf.SimpleSurfaceName, idf.SimpleSurfaceConstructionName, idf.SimpleSurfaceZoneName, []int{
			idf.SimpleSurfaceAzimuthAngle, idf.SimpleSurfaceTiltAngle,
			idf.SimpleSurfaceStartingXCoordinate, idf.SimpleSurfaceStartingYCoordinate, idf.SimpleSurfaceStartingZCoordinate,
			idf.SimpleSurfaceLength, idf.SimpleSurfaceWidthOrHeight,
		}
		if s.interzone {
			name, construction, zoneName, params = idf.InterzoneSurfaceName, idf.InterzoneSurfaceConstructionName, idf.InterzoneSurfaceZoneName, []int{
				idf.InterzoneSurfaceAzimuthAngle, idf.InterzoneSurfaceTiltAngle,
				idf.InterzoneSurfaceStartingXCoordinate, idf.InterzoneSurfaceStartingYCoordinate, idf.InterzoneSurfaceStartingZCoordinate,
				idf.InterzoneSurfaceLength, idf.InterzoneSurfaceWidthOrHeight,
			}
		}

		for _, old := range c.ws.ObjectsByType(s.typ) {
			zone, found := c.ws.PointerTarget(old, zoneName)
			if !found {
				c.log.Errorf("%s: could not find zone", old)
				ok = false
				continue
			}
			p, found := doubles(old, params...)
			if !found {
				c.log.Errorf("%s: %s", old, ErrMissingField)
				ok = false
				continue
			}
			vs := geom.VerticesForAzimuthTiltXYZLengthWidthOrHeight(p[0], p[1], p[2], p[3], p[4], p[5], p[6])
			vs = c.zoneChange(rectangularChange, building, zone).ApplyAll(vs)

			object := ""
			if s.interzone {
				object = str(old, idf.InterzoneSurfaceOutsideBoundaryConditionObject)
			}
			replacement := idf.MustRecord(
				idf.BuildingSurfaceDetailed,
				str(old, name),
				s.boundary.surfaceType,
				str(old, construction),
				str(old, zoneName),
				s.boundary.condition,
				object,
				s.boundary.sun,
				s.boundary.wind,
				"",
				"4",
			)
			if !c.setVertices(replacement, vs) {
				ok = false
				continue
			}
			ok = c.swap(old, replacement) && ok
		}
	}

	return ok
}

// simpleSubSurfaces in conversion order.
var simpleSubSurfaces = []struct {
	typ         idf.ObjectType
	surfaceType string
}{
	{typ: idf.Window, surfaceType: "Window"},
	{typ: idf.Door, surfaceType: "Door"},
	{typ: idf.GlazedDoor, surfaceType: "GlassDoor"},
	{typ: idf.WindowInterzone, surfaceType: "Window"},
	{typ: idf.DoorInterzone, surfaceType: "Door"},
	{typ: idf.GlazedDoorInterzone, surfaceType: "GlassDoor"},
}

// subSurfaceFields are indices of a simple subsurface type. -1 means the type does not have it.
type subSurfaceFields struct {
	name           int
	construction   int
	base           int
	object         int
	shadingControl int
	frame          int
	multiplier     int
	x              int
	z              int
	length         int
	height         int
}

func subSurfaceFieldsOf(t idf.ObjectType) subSurfaceFields {
	switch t {
	case idf.Window, idf.GlazedDoor:
		return subSurfaceFields{
			name:           idf.GlazingName,
			construction:   idf.GlazingConstructionName,
			base:           idf.GlazingBuildingSurfaceName,
			object:         -1,
			shadingControl: idf.GlazingShadingControlName,
			frame:          idf.GlazingFrameAndDividerName,
			multiplier:     idf.GlazingMultiplier,
			x:              idf.GlazingStartingXCoordinate,
			z:              idf.GlazingStartingZCoordinate,
			length:         idf.GlazingLength,
			height:         idf.GlazingHeight,
		}
	case idf.Door:
		return subSurfaceFields{
			name:           idf.DoorName,
			construction:   idf.DoorConstructionName,
			base:           idf.DoorBuildingSurfaceName,
			object:         -1,
			shadingControl: -1,
			frame:          -1,
			multiplier:     idf.DoorMultiplier,
			x:              idf.DoorStartingXCoordinate,
			z:              idf.DoorStartingZCoordinate,
			length:         idf.DoorLength,
			height:         idf.DoorHeight,
		}
	default:
		return subSurfaceFields{
			name:           idf.InterzoneSubSurfaceName,
			construction:   idf.InterzoneSubSurfaceConstructionName,
			base:           idf.InterzoneSubSurfaceBuildingSurfaceName,
			object:         idf.InterzoneSubSurfaceOutsideBoundaryConditionObject,
			shadingControl: -1,
			frame:          -1,
			multiplier:     idf.InterzoneSubSurfaceMultiplier,
			x:              idf.InterzoneSubSurfaceStartingXCoordinate,
			z:              idf.InterzoneSubSurfaceStartingZCoordinate,
			length:         idf.InterzoneSubSurfaceLength,
			height:         idf.InterzoneSubSurfaceHeight,
		}
	}
}

// optional reads the i-th field. Negative index gives absent.
func optional(rec *idf.Record, i int) string {
	if i < 0 {
		return ""
	}
	return str(rec, i)
}

func (c *Converter) convertSimpleSubSurfaces() bool {
	ok := true

	for _, s := range simpleSubSurfaces {
		f := subSurfaceFieldsOf(s.typ)
		for _, old := range c.ws.ObjectsByType(s.typ) {
			base, found := c.ws.PointerTarget(old, f.base)
			if !found {
				c.log.Errorf("%s: could not find base surface", old)
				ok = false
				continue
			}
			baseVertices, err := idf.Vertices(base)
			if err != nil {
				c.log.Errorf("%s: base surface %s: %s", old, base, err)
				ok = false
				continue
			}
			t, aligned := geom.AlignFace(baseVertices)
			if !aligned {
				c.log.Errorf("%s: base surface %s is degenerated", old, base)
				ok = false
				continue
			}
			p, found := doubles(old, f.x, f.z, f.length, f.height)
			if !found {
				c.log.Errorf("%s: %s", old, ErrMissingField)
				ok = false
				continue
			}
			x, z, length, height := p[0], p[1], p[2], p[3]
			vs := t.ApplyAll([]geom.Point{
				{X: x, Y: z + height},
				{X: x, Y: z},
				{X: x + length, Y: z},
				{X: x + length, Y: z + height},
			})

			replacement := idf.MustRecord(
				idf.FenestrationSurfaceDetailed,
				str(old, f.name),
				s.surfaceType,
				str(old, f.construction),
				str(old, f.base),
				optional(old, f.object),
				"",
				optional(old, f.shadingControl),
				optional(old, f.frame),
				optional(old, f.multiplier),
				"4",
			)
			if !c.setVertices(replacement, vs) {
				ok = false
				continue
			}
			ok = c.swap(old, replacement) && ok
		}
	}

	return ok
}

// faceOf returns the face alignment of a subsurface and its bounds in face coordinates.
func (c *Converter) faceOf(subSurface *idf.Record) (geom.Transform, geom.Point, geom.Point, bool) {
	vs, err := idf.Vertices(subSurface)
	if err != nil {
		c.log.Errorf("%s: %s", subSurface, err)
		return geom.Transform{}, geom.Point{}, geom.Point{}, false
	}
	t, ok := geom.AlignFace(vs)
	if !ok {
		c.log.Errorf("%s: degenerated", subSurface)
		return geom.Transform{}, geom.Point{}, geom.Point{}, false
	}
	inv, ok := geom.Invert(t)
	if !ok {
		return geom.Transform{}, geom.Point{}, geom.Point{}, false
	}
	lo, hi := geom.Bounds(inv.ApplyAll(vs))
	return t, lo, hi, true
}

// windowAndSurface resolves the subsurface named in the i-th field of shading, and its base surface.
func (c *Converter) windowAndSurface(shading *idf.Record, i int) (*idf.Record, *idf.Record, bool) {
	window, ok := c.ws.PointerTarget(shading, i)
	if !ok || window.Type() != idf.FenestrationSurfaceDetailed {
		c.log.Errorf("%s: could not find subsurface", shading)
		return nil, nil, false
	}
	surface, ok := c.ws.PointerTarget(window, idf.FenestrationSurfaceDetailedBuildingSurfaceName)
	if !ok {
		c.log.Errorf("%s: could not find surface", shading)
		return nil, nil, false
	}
	return window, surface, true
}

func (c *Converter) zoneShading(name string, surface *idf.Record, vs []geom.Point) (*idf.Record, bool) {
	surfaceName, _ := surface.Name()
	r := idf.MustRecord(idf.ShadingZoneDetailed, name, surfaceName, "", "4")
	return r, c.setVertices(r, vs)
}

func (c *Converter) convertSimpleShadings(rectangularChange coordinateChange, building geom.Transform) bool {
	ok := true

	params := []int{
		idf.SimpleShadingAzimuthAngle, idf.SimpleShadingTiltAngle,
		idf.SimpleShadingStartingXCoordinate, idf.SimpleShadingStartingYCoordinate, idf.SimpleShadingStartingZCoordinate,
		idf.SimpleShadingLength, idf.SimpleShadingHeight,
	}
	for _, s := range []struct {
		from, to idf.ObjectType
		t        geom.Transform
	}{
		{from: idf.ShadingSite, to: idf.ShadingSiteDetailed, t: geom.Identity()},
		{from: idf.ShadingBuilding, to: idf.ShadingBuildingDetailed, t: buildingChange(rectangularChange, building)},
	} {
		for _, old := range c.ws.ObjectsByType(s.from) {
			p, found := doubles(old, params...)
			if !found {
				c.log.Errorf("%s: %s", old, ErrMissingField)
				ok = false
				continue
			}
			vs := geom.VerticesForAzimuthTiltXYZLengthWidthOrHeight(p[0], p[1], p[2], p[3], p[4], p[5], p[6])
			replacement := idf.MustRecord(s.to, str(old, idf.SimpleShadingName), "", "4")
			if !c.setVertices(replacement, s.t.ApplyAll(vs)) {
				ok = false
				continue
			}
			ok = c.swap(old, replacement) && ok
		}
	}

	for _, typ := range []idf.ObjectType{idf.ShadingOverhang, idf.ShadingOverhangProjection} {
		for _, old := range c.ws.ObjectsByType(typ) {
			window, surface, found := c.windowAndSurface(old, idf.OverhangWindowOrDoorName)
			if !found {
				ok = false
				continue
			}
			t, lo, hi, found := c.faceOf(window)
			if !found {
				ok = false
				continue
			}
			p, found := doubles(old,
				idf.OverhangHeightAboveWindowOrDoor, idf.OverhangTiltAngle,
				idf.OverhangLeftExtension, idf.OverhangRightExtension, idf.OverhangDepth,
			)
			if !found {
				c.log.Errorf("%s: %s", old, ErrMissingField)
				ok = false
				continue
			}
			height, tilt, left, right, depth := p[0], geom.Deg2Rad(p[1]), p[2], p[3], p[4]
			if typ == idf.ShadingOverhangProjection {
				depth *= hi.Y - lo.Y
			}
			if depth == 0 {
				c.log.Errorf("%s: zero depth is not allowed", old)
				ok = false
				continue
			}

			top := hi.Y + height
			vs := t.ApplyAll([]geom.Point{
				{X: hi.X + right, Y: top + depth*math.Cos(tilt), Z: depth * math.Sin(tilt)},
				{X: hi.X + right, Y: top},
				{X: lo.X - left, Y: top},
				{X: lo.X - left, Y: top + depth*math.Cos(tilt), Z: depth * math.Sin(tilt)},
			})
			overhang, made := c.zoneShading(str(old, idf.OverhangName), surface, vs)
			if !made {
				ok = false
				continue
			}
			ok = c.swap(old, overhang) && ok
		}
	}

	for _, typ := range []idf.ObjectType{idf.ShadingFin, idf.ShadingFinProjection} {
		for _, old := range c.ws.ObjectsByType(typ) {
			window, surface, found := c.windowAndSurface(old, idf.FinWindowOrDoorName)
			if !found {
				ok = false
				continue
			}
			t, lo, hi, found := c.faceOf(window)
			if !found {
				ok = false
				continue
			}
			l, found := doubles(old,
				idf.FinLeftExtension, idf.FinLeftDistanceAboveTop, idf.FinLeftDistanceBelowBottom,
				idf.FinLeftTiltAngle, idf.FinLeftDepth,
			)
			r, found2 := doubles(old,
				idf.FinRightExtension, idf.FinRightDistanceAboveTop, idf.FinRightDistanceBelowBottom,
				idf.FinRightTiltAngle, idf.FinRightDepth,
			)
			if !found || !found2 {
				c.log.Errorf("%s: %s", old, ErrMissingField)
				ok = false
				continue
			}
			leftDepth, rightDepth := l[4], r[4]
			if typ == idf.ShadingFinProjection {
				leftDepth *= hi.X - lo.X
				rightDepth *= hi.X - lo.X
			}
			if leftDepth == 0 || rightDepth == 0 {
				c.log.Errorf("%s: zero depth is not allowed", old)
				ok = false
				continue
			}

			fin := func(x, above, below, tilt, depth float64) []geom.Point {
				tilt = geom.Deg2Rad(tilt)
				outer := x + depth*math.Cos(tilt)
				z := depth * math.Sin(tilt)
				return t.ApplyAll([]geom.Point{
					{X: outer, Y: hi.Y + above, Z: z},
					{X: outer, Y: lo.Y - below, Z: z},
					{X: x, Y: lo.Y - below},
					{X: x, Y: hi.Y + above},
				})
			}
			name := str(old, idf.FinName)
			leftFin, leftMade := c.zoneShading(name+" Left", surface, fin(lo.X-l[0], l[1], l[2], l[3], leftDepth))
			rightFin, rightMade := c.zoneShading(name+" Right", surface, fin(hi.X+r[0], r[1], r[2], r[3], rightDepth))
			if !leftMade || !rightMade {
				ok = false
				continue
			}

			if !c.swap(old, leftFin) {
				ok = false
				continue
			}
			if err := c.ws.Add(rightFin); err != nil {
				c.log.Errorf("%s: cannot add right fin: %s", old, err)
				ok = false
			}
		}
	}

	return ok
}

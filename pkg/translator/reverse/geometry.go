package reverse

import (
	"strings"

	"github.com/opst/knitsim/pkg/geometry"
	"github.com/opst/knitsim/pkg/idf"
	"github.com/opst/knitsim/pkg/model"
)

// mirrorSuffix is appended to names of surfaces made for zone-to-zone boundaries.
const mirrorSuffix = " Reversed"

func translateBuilding(t *Translator, r *idf.Record) model.Object {
	b := model.NewBuilding(t.m)
	setName(b, r)
	if v, ok := doubleOf(r, idf.BuildingNorthAxis); ok {
		b.SetNorthAxis(v)
	}
	return b
}

// translateZone makes a thermal zone and a space of the same name.
// The space carries the coordinate system of the zone.
func translateZone(t *Translator, r *idf.Record) model.Object {
	z := model.NewThermalZone(t.m)
	setName(z, r)
	s := model.NewSpace(t.m)
	setName(s, r)
	s.SetThermalZone(z)
	t.spaces[r.Handle()] = s

	if v, ok := doubleOf(r, idf.ZoneDirectionOfRelativeNorth); ok {
		s.SetDirectionOfRelativeNorth(v)
	}
	x, okx := doubleOf(r, idf.ZoneXOrigin)
	y, oky := doubleOf(r, idf.ZoneYOrigin)
	zo, okz := doubleOf(r, idf.ZoneZOrigin)
	if okx || oky || okz {
		s.SetOrigin(geometry.Point{X: x, Y: y, Z: zo})
	}
	if v, ok := doubleOf(r, idf.ZoneMultiplier); ok {
		if 1 <= v && v == float64(int(v)) {
			z.SetMultiplier(int(v))
		} else {
			t.log.Warnf("%s: multiplier %s is not a positive integer. ignored", r, idf.FormatDouble(v))
		}
	}
	return z
}

// spaceOf resolves the zone referred by the i-th field of r to its space.
func (t *Translator) spaceOf(r *idf.Record, i int) (*model.Space, bool) {
	_, zr, ok := t.target(r, i)
	if !ok {
		return nil, false
	}
	s, ok := t.spaces[zr.Handle()]
	return s, ok
}

func (t *Translator) vertices(r *idf.Record) ([]geometry.Point, bool) {
	vs, err := idf.Vertices(r)
	if err != nil {
		t.log.Errorf("%s: %s", r, err)
		return nil, false
	}
	if len(vs) < 3 {
		t.log.Errorf("%s: has %d vertices", r, len(vs))
		return nil, false
	}
	return vs, true
}

func translateBuildingSurfaceDetailed(t *Translator, r *idf.Record) model.Object {
	vs, ok := t.vertices(r)
	if !ok {
		return nil
	}
	s := model.NewSurface(t.m, vs)
	setName(s, r)
	t.mapped(r, s)

	if v, ok := r.GetString(idf.BuildingSurfaceDetailedSurfaceType); ok {
		s.SetSurfaceType(v)
	}
	if c, ok := as[model.ConstructionBase](t, r, idf.BuildingSurfaceDetailedConstructionName); ok {
		s.SetConstruction(c)
	}
	if sp, ok := t.spaceOf(r, idf.BuildingSurfaceDetailedZoneName); ok {
		s.SetSpace(sp)
	} else {
		t.log.Warnf("%s: not in any zone", r)
	}
	if v, ok := r.GetString(idf.BuildingSurfaceDetailedSunExposure); ok {
		s.SetSunExposure(v)
	}
	if v, ok := r.GetString(idf.BuildingSurfaceDetailedWindExposure); ok {
		s.SetWindExposure(v)
	}

	t.resolveBoundary(r, s)
	return s
}

// resolveBoundary sets the outside boundary condition of s, linking adjacent surfaces.
func (t *Translator) resolveBoundary(r *idf.Record, s *model.Surface) {
	cond, ok := r.GetString(idf.BuildingSurfaceDetailedOutsideBoundaryCondition)
	if !ok {
		return
	}
	if !strings.EqualFold(cond, model.AdjacentSurface) && !strings.EqualFold(cond, "Zone") {
		s.SetOutsideBoundaryCondition(cond)
		return
	}

	name, ok := r.GetString(idf.BuildingSurfaceDetailedOutsideBoundaryConditionObject)
	if !ok {
		t.log.Warnf("%s: boundary condition is %s, but no object is given", r, cond)
		return
	}
	other, ok := t.ws.PointerTarget(r, idf.BuildingSurfaceDetailedOutsideBoundaryConditionObject)
	if !ok {
		t.log.Warnf("%s: '%s' is not found", r, name)
		return
	}
	if other.Handle() == r.Handle() {
		s.SetOutsideBoundaryCondition(model.Adiabatic)
		return
	}

	switch other.Type() {
	case idf.BuildingSurfaceDetailed:
		adj, ok := t.translateAndMap(other).(*model.Surface)
		if !ok {
			t.log.Warnf("%s: adjacent surface '%s' is not translated", r, name)
			return
		}
		model.Link(s, adj)
	case idf.Zone:
		t.mirror(r, s, other)
	default:
		t.log.Warnf("%s: %s cannot be an adjacent surface", r, other)
	}
}

// mirror makes the other side of s in the space of zone, and links them.
//
// Subsurfaces of s are translated first so that they are mirrored as well.
func (t *Translator) mirror(r *idf.Record, s *model.Surface, zone *idf.Record) {
	subs := []*model.SubSurface{}
	for _, src := range t.ws.Sources(r) {
		if src.Type() != idf.FenestrationSurfaceDetailed {
			continue
		}
		base, ok := t.ws.PointerTarget(src, idf.FenestrationSurfaceDetailedBuildingSurfaceName)
		if !ok || base.Handle() != r.Handle() {
			continue
		}
		sub, ok := t.translateAndMap(src).(*model.SubSurface)
		if !ok {
			continue
		}
		sub.SetSurface(s)
		subs = append(subs, sub)
	}

	if t.translateAndMap(zone) == nil {
		return
	}
	adjSpace, ok := t.spaces[zone.Handle()]
	if !ok {
		return
	}

	tr := geometry.Identity()
	if inv, ok := geometry.Invert(adjSpace.Transformation()); ok {
		tr = inv
		if sp, ok := s.Space(); ok {
			tr = geometry.Compose(inv, sp.Transformation())
		}
	}
	flip := func(vs []geometry.Point) []geometry.Point {
		return geometry.ReorderULC(geometry.Reverse(tr.ApplyAll(vs)))
	}

	m := model.NewSurface(t.m, flip(s.Vertices()))
	if name, ok := s.Name(); ok {
		m.SetName(name + mirrorSuffix)
	}
	m.SetSpace(adjSpace)
	if c, ok := s.Construction(); ok {
		m.SetConstruction(c)
	}
	model.Link(s, m)

	for _, sub := range subs {
		ms := model.NewSubSurface(t.m, flip(sub.Vertices()))
		if name, ok := sub.Name(); ok {
			ms.SetName(name + mirrorSuffix)
		}
		ms.SetSurface(m)
		ms.SetSubSurfaceType(sub.SubSurfaceType())
		if c, ok := sub.Construction(); ok {
			ms.SetConstruction(c)
		}
		if !sub.IsMultiplierDefaulted() {
			ms.SetMultiplier(sub.Multiplier())
		}
		model.LinkSubSurfaces(sub, ms)
	}
}

func translateFenestrationSurfaceDetailed(t *Translator, r *idf.Record) model.Object {
	vs, ok := t.vertices(r)
	if !ok {
		return nil
	}
	s := model.NewSubSurface(t.m, vs)
	setName(s, r)
	t.mapped(r, s)

	if v, ok := r.GetString(idf.FenestrationSurfaceDetailedSurfaceType); ok {
		s.SetSubSurfaceType(v)
	}
	if c, ok := as[model.ConstructionBase](t, r, idf.FenestrationSurfaceDetailedConstructionName); ok {
		s.SetConstruction(c)
	}
	if base, ok := as[*model.Surface](t, r, idf.FenestrationSurfaceDetailedBuildingSurfaceName); ok {
		s.SetSurface(base)
	} else {
		t.log.Warnf("%s: has no base surface", r)
	}
	if v, ok := doubleOf(r, idf.FenestrationSurfaceDetailedMultiplier); ok {
		s.SetMultiplier(v)
	}

	other, ok := t.ws.PointerTarget(r, idf.FenestrationSurfaceDetailedOutsideBoundaryConditionObject)
	if ok && other.Type() == idf.FenestrationSurfaceDetailed && other.Handle() != r.Handle() {
		if adj, ok := t.translateAndMap(other).(*model.SubSurface); ok {
			model.LinkSubSurfaces(s, adj)
		}
	}
	return s
}

// group returns the shading surface group of the type, creating it on the first call in a pass.
func (t *Translator) group(shadingType string, space *model.Space) *model.ShadingSurfaceGroup {
	if space != nil {
		if g, ok := t.spaceGroups[space.Handle()]; ok {
			return g
		}
		g := model.NewShadingSurfaceGroup(t.m, model.ShadingSpace)
		if name, ok := space.Name(); ok {
			g.SetName(name + " Shading Surfaces")
		}
		g.SetSpace(space)
		t.spaceGroups[space.Handle()] = g
		return g
	}
	if g, ok := t.groups[shadingType]; ok {
		return g
	}
	g := model.NewShadingSurfaceGroup(t.m, shadingType)
	g.SetName(shadingType + " Shading Surfaces")
	t.groups[shadingType] = g
	return g
}

func translateShading(shadingType string) translateFunc {
	return func(t *Translator, r *idf.Record) model.Object {
		scheduleField := idf.DetailedShadingTransmittanceScheduleName
		var base *model.Surface
		var space *model.Space
		if shadingType == model.ShadingSpace {
			scheduleField = idf.ShadingZoneDetailedTransmittanceScheduleName
			b, ok := as[*model.Surface](t, r, idf.ShadingZoneDetailedBaseSurfaceName)
			if !ok {
				t.log.Errorf("%s: zone shading without base surface", r)
				return nil
			}
			sp, ok := b.Space()
			if !ok {
				t.log.Errorf("%s: base surface is not in any zone", r)
				return nil
			}
			base, space = b, sp
		}

		vs, ok := t.vertices(r)
		if !ok {
			return nil
		}
		s := model.NewShadingSurface(t.m, vs)
		setName(s, r)
		s.SetShadingSurfaceGroup(t.group(shadingType, space))
		if base != nil {
			s.SetBaseSurface(base)
		}
		if sch, ok := as[model.Schedule](t, r, scheduleField); ok {
			s.SetTransmittanceSchedule(sch)
		}
		return s
	}
}

// translateDaylightingControls makes one control per reference point.
// The record maps to the control of the first point.
func translateDaylightingControls(t *Translator, r *idf.Record) model.Object {
	space, ok := t.spaceOf(r, idf.DaylightingControlsZoneName)
	if !ok {
		t.log.Errorf("%s: zone is not found", r)
		return nil
	}

	n := 1
	if v, ok := r.GetDoubleOrDefault(idf.DaylightingControlsTotalReferencePoints); ok {
		n = int(v)
	}
	if n < 1 || 2 < n {
		t.log.Warnf("%s: %d reference points. assuming 1", r, n)
		n = 1
	}

	points := []struct{ x, y, z, setpoint int }{
		{idf.DaylightingControlsFirstX, idf.DaylightingControlsFirstY, idf.DaylightingControlsFirstZ, idf.DaylightingControlsFirstSetpoint},
		{idf.DaylightingControlsSecondX, idf.DaylightingControlsSecondY, idf.DaylightingControlsSecondZ, idf.DaylightingControlsSecondSetpoint},
	}

	var first model.Object
	for _, p := range points[:n] {
		x, okx := doubleOf(r, p.x)
		y, oky := doubleOf(r, p.y)
		z, okz := doubleOf(r, p.z)
		if !okx || !oky || !okz {
			t.log.Warnf("%s: reference point has missing coordinates. skipped", r)
			continue
		}
		d := model.NewDaylightingControl(t.m)
		d.SetSpace(space)
		d.SetPosition(geometry.Point{X: x, Y: y, Z: z})
		if v, ok := doubleOf(r, p.setpoint); ok {
			d.SetIlluminanceSetpoint(v)
		}
		if first == nil {
			first = d
		}
	}
	return first
}

package forward

import (
	"github.com/opst/knitsim/pkg/geometry"
	"github.com/opst/knitsim/pkg/idf"
	"github.com/opst/knitsim/pkg/model"
)

func translateBuilding(t *Translator, o model.Object) *idf.Record {
	b := o.(*model.Building)
	r := t.create(b, idf.Building)
	t.setDefaultable(r, idf.BuildingNorthAxis, b.NorthAxis(), b.IsNorthAxisDefaulted())
	return r
}

// referenceSpace is the space whose coordinate system is used as the coordinate system of the zone.
func referenceSpace(z *model.ThermalZone) (*model.Space, bool) {
	ss := z.Spaces()
	if len(ss) == 0 {
		return nil, false
	}
	return ss[0], true
}

// spaceToZone maps coordinates of the space to coordinates of its zone.
func spaceToZone(s *model.Space) geometry.Transform {
	z, ok := s.ThermalZone()
	if !ok {
		return geometry.Identity()
	}
	ref, ok := referenceSpace(z)
	if !ok || ref.Handle() == s.Handle() {
		return geometry.Identity()
	}
	inv, ok := geometry.Invert(ref.Transformation())
	if !ok {
		return geometry.Identity()
	}
	return geometry.Compose(inv, s.Transformation())
}

func translateThermalZone(t *Translator, o model.Object) *idf.Record {
	z := o.(*model.ThermalZone)
	r := t.create(z, idf.Zone)

	if ref, ok := referenceSpace(z); ok {
		t.setDefaultable(r, idf.ZoneDirectionOfRelativeNorth, ref.DirectionOfRelativeNorth(), ref.IsDirectionOfRelativeNorthDefaulted())
		if !ref.IsOriginDefaulted() {
			p := ref.Origin()
			t.setDouble(r, idf.ZoneXOrigin, p.X)
			t.setDouble(r, idf.ZoneYOrigin, p.Y)
			t.setDouble(r, idf.ZoneZOrigin, p.Z)
		}
	} else {
		t.log.Warnf("%s: has no spaces", describe(z))
	}
	if !z.IsMultiplierDefaulted() {
		t.set(r, idf.ZoneMultiplier, idf.FormatDouble(float64(z.Multiplier())))
	}

	t.translateDaylightingControls(z, r)
	return r
}

// translateDaylightingControls emits one Daylighting:Controls for the zone, having at most two reference points.
func (t *Translator) translateDaylightingControls(z *model.ThermalZone, zone *idf.Record) {
	controls := []*model.DaylightingControl{}
	for _, s := range z.Spaces() {
		controls = append(controls, s.DaylightingControls()...)
	}
	if len(controls) == 0 {
		return
	}
	if 2 < len(controls) {
		t.log.Warnf("%s: has %d daylighting controls. only the first 2 are translated", describe(z), len(controls))
		controls = controls[:2]
	}
	zoneName, ok := zone.Name()
	if !ok {
		t.log.Errorf("%s: daylighting controls are not translated because the zone has no name", describe(z))
		return
	}

	r := idf.MustRecord(idf.DaylightingControls, zoneName)
	t.add(r)
	for _, d := range controls {
		t.memo[d.Handle()] = r
	}

	point := func(d *model.DaylightingControl) geometry.Point {
		s, ok := d.Space()
		if !ok {
			return d.Position()
		}
		return spaceToZone(s).Apply(d.Position())
	}

	p := point(controls[0])
	t.setDouble(r, idf.DaylightingControlsFirstX, p.X)
	t.setDouble(r, idf.DaylightingControlsFirstY, p.Y)
	t.setDouble(r, idf.DaylightingControlsFirstZ, p.Z)
	t.setDefaultable(r, idf.DaylightingControlsFirstSetpoint, controls[0].IlluminanceSetpoint(), controls[0].IsIlluminanceSetpointDefaulted())
	if len(controls) == 2 {
		p := point(controls[1])
		t.set(r, idf.DaylightingControlsTotalReferencePoints, "2")
		t.setDouble(r, idf.DaylightingControlsSecondX, p.X)
		t.setDouble(r, idf.DaylightingControlsSecondY, p.Y)
		t.setDouble(r, idf.DaylightingControlsSecondZ, p.Z)
		t.setDouble(r, idf.DaylightingControlsFirstFraction, 0.5)
		t.setDouble(r, idf.DaylightingControlsSecondFraction, 0.5)
		t.setDefaultable(r, idf.DaylightingControlsSecondSetpoint, controls[1].IlluminanceSetpoint(), controls[1].IsIlluminanceSetpointDefaulted())
	}
}

func (t *Translator) setVertices(r *idf.Record, vs []geometry.Point, tr geometry.Transform) {
	if len(vs) < 3 {
		t.log.Errorf("%s: has %d vertices", r, len(vs))
		return
	}
	if err := idf.SetVertices(r, tr.ApplyAll(vs)); err != nil {
		t.log.Errorf("%s: %s", r, err)
	}
}

// zoneOf resolves the zone of the space and its transformation to zone coordinates.
func zoneOf(s *model.Space, present bool) (*model.ThermalZone, geometry.Transform, bool) {
	if !present {
		return nil, geometry.Identity(), false
	}
	z, ok := s.ThermalZone()
	if !ok {
		return nil, geometry.Identity(), false
	}
	return z, spaceToZone(s), true
}

func translateSurface(t *Translator, o model.Object) *idf.Record {
	s := o.(*model.Surface)
	r := t.create(s, idf.BuildingSurfaceDetailed)

	t.set(r, idf.BuildingSurfaceDetailedSurfaceType, s.SurfaceType())
	c, ok := s.Construction()
	t.setPointer(r, idf.BuildingSurfaceDetailedConstructionName, c, ok)

	z, tr, ok := zoneOf(s.Space())
	if ok {
		t.setPointer(r, idf.BuildingSurfaceDetailedZoneName, z, true)
	} else {
		t.log.Errorf("%s: not in any thermal zone", describe(s))
	}

	t.set(r, idf.BuildingSurfaceDetailedOutsideBoundaryCondition, s.OutsideBoundaryCondition())
	adj, ok := s.AdjacentSurface()
	t.setPointer(r, idf.BuildingSurfaceDetailedOutsideBoundaryConditionObject, adj, ok)

	t.setDefaultableString(r, idf.BuildingSurfaceDetailedSunExposure, s.SunExposure(), s.IsSunExposureDefaulted())
	t.setDefaultableString(r, idf.BuildingSurfaceDetailedWindExposure, s.WindExposure(), s.IsWindExposureDefaulted())
	t.setVertices(r, s.Vertices(), tr)
	return r
}

func translateSubSurface(t *Translator, o model.Object) *idf.Record {
	s := o.(*model.SubSurface)
	r := t.create(s, idf.FenestrationSurfaceDetailed)

	t.set(r, idf.FenestrationSurfaceDetailedSurfaceType, s.SubSurfaceType())
	c, ok := s.Construction()
	t.setPointer(r, idf.FenestrationSurfaceDetailedConstructionName, c, ok)

	tr := geometry.Identity()
	if base, ok := s.Surface(); ok {
		t.setPointer(r, idf.FenestrationSurfaceDetailedBuildingSurfaceName, base, true)
		if _, t2, ok := zoneOf(base.Space()); ok {
			tr = t2
		}
	} else {
		t.log.Errorf("%s: has no base surface", describe(s))
	}

	adj, ok := s.AdjacentSubSurface()
	t.setPointer(r, idf.FenestrationSurfaceDetailedOutsideBoundaryConditionObject, adj, ok)
	t.setDefaultable(r, idf.FenestrationSurfaceDetailedMultiplier, s.Multiplier(), s.IsMultiplierDefaulted())
	t.setVertices(r, s.Vertices(), tr)
	return r
}

func translateShadingSurface(t *Translator, o model.Object) *idf.Record {
	s := o.(*model.ShadingSurface)
	g, ok := s.ShadingSurfaceGroup()
	if !ok {
		t.log.Errorf("%s: not in any shading surface group", describe(s))
		return nil
	}

	var r *idf.Record
	tr := geometry.Identity()
	schedule := idf.DetailedShadingTransmittanceScheduleName
	switch g.ShadingSurfaceType() {
	case model.ShadingSite:
		r = t.create(s, idf.ShadingSiteDetailed)
	case model.ShadingBuilding:
		r = t.create(s, idf.ShadingBuildingDetailed)
	case model.ShadingSpace:
		r = t.create(s, idf.ShadingZoneDetailed)
		schedule = idf.ShadingZoneDetailedTransmittanceScheduleName
		if _, t2, ok := zoneOf(g.Space()); ok {
			tr = t2
		}
		base, ok := s.BaseSurface()
		if !ok {
			t.log.Errorf("%s: zone shading without base surface", describe(s))
		}
		t.setPointer(r, idf.ShadingZoneDetailedBaseSurfaceName, base, ok)
	default:
		t.log.Errorf("%s: unknown shading surface type '%s'", describe(s), g.ShadingSurfaceType())
		return nil
	}

	sch, ok := s.TransmittanceSchedule()
	t.setPointer(r, schedule, sch, ok)
	t.setVertices(r, s.Vertices(), tr)
	return r
}

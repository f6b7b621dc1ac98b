package geometry

import (
	"strings"

	"github.com/labstack/gommon/log"
	geom "github.com/opst/knitsim/pkg/geometry"
	"github.com/opst/knitsim/pkg/idf"
	"github.com/opst/knitsim/pkg/translator"
)

// Converter rewrites geometry of a workspace in place.
type Converter struct {
	ws  *idf.Workspace
	log *translator.Log
}

// New creates Converter for ws. nil logger is allowed.
func New(ws *idf.Workspace, logger *log.Logger) *Converter {
	return &Converter{ws: ws, log: translator.NewLog("geometry", logger)}
}

func (c *Converter) Warnings() []translator.LogMessage {
	return c.log.Warnings()
}

func (c *Converter) Errors() []translator.LogMessage {
	return c.log.Errors()
}

// Convert expresses all geometry in the detailed and daylighting coordinate systems given.
//
// After conversion:
//
// - simple surfaces, subsurfaces and shadings are replaced with detailed ones,
//
// - every polygon starts from its upper left corner and runs counterclockwise,
//
// - GlobalGeometryRules tells the new systems.
//
// Surfaces which cannot be converted are left untouched and logged.
// Other surfaces are converted anyway, and Convert returns false.
// Converting twice to the same systems changes nothing the second time.
func (c *Converter) Convert(detailed, daylighting CoordinateSystem) bool {
	c.log.Reset()
	ok := true

	r := c.readRules()
	if strings.EqualFold(r.vertexEntryDirection, Clockwise) {
		for _, t := range polygonTypes {
			for _, rec := range c.ws.ObjectsByType(t) {
				vs, err := idf.Vertices(rec)
				if err != nil {
					c.log.Errorf("%s: %s", rec, err)
					ok = false
					continue
				}
				if !c.setVertices(rec, geom.Reverse(vs)) {
					ok = false
				}
			}
		}
	}

	building := c.buildingTransformation()
	detailedChange := changeOf(r.detailed, detailed)
	daylightingChange := changeOf(r.daylighting, daylighting)
	rectangularChange := changeOf(r.rectangular, detailed)

	ok = c.convertDetailed(detailedChange, building) && ok
	ok = c.convertDaylighting(daylightingChange, building) && ok
	ok = c.convertSimpleSurfaces(detailedChange, rectangularChange, building) && ok
	ok = c.convertSimpleSubSurfaces() && ok
	ok = c.convertSimpleShadings(rectangularChange, building) && ok
	ok = c.applyUpperLeftCornerRule() && ok
	c.writeRules(detailed, daylighting)

	return ok
}

// transformVertices applies t to vertices of rec. It returns false when rec has bad vertices.
func (c *Converter) transformVertices(rec *idf.Record, t geom.Transform) bool {
	vs, err := idf.Vertices(rec)
	if err != nil {
		c.log.Errorf("%s: %s", rec, err)
		return false
	}
	return c.setVertices(rec, t.ApplyAll(vs))
}

// setVertices replaces vertices of rec. Failures are logged, and it returns false.
func (c *Converter) setVertices(rec *idf.Record, vs []geom.Point) bool {
	if err := idf.SetVertices(rec, vs); err != nil {
		c.log.Errorf("%s: %s", rec, err)
		return false
	}
	return true
}

func (c *Converter) convertDetailed(change coordinateChange, building geom.Transform) bool {
	ok := true

	for _, s := range c.ws.ObjectsByType(idf.BuildingSurfaceDetailed) {
		s.SetString(idf.BuildingSurfaceDetailedNumberOfVertices, idf.Autocalculate)
		if change == noChange {
			continue
		}
		zone, found := c.ws.PointerTarget(s, idf.BuildingSurfaceDetailedZoneName)
		if !found {
			c.log.Errorf("%s: could not find zone", s)
			ok = false
			continue
		}
		ok = c.transformVertices(s, c.zoneChange(change, building, zone)) && ok
	}

	for _, s := range c.ws.ObjectsByType(idf.FenestrationSurfaceDetailed) {
		s.SetString(idf.FenestrationSurfaceDetailedNumberOfVertices, idf.Autocalculate)
		if change == noChange {
			continue
		}
		base, found := c.ws.PointerTarget(s, idf.FenestrationSurfaceDetailedBuildingSurfaceName)
		if !found {
			c.log.Errorf("%s: could not find base surface", s)
			ok = false
			continue
		}
		zone, found := c.zoneOfSurface(base)
		if !found {
			c.log.Errorf("%s: could not find zone", s)
			ok = false
			continue
		}
		ok = c.transformVertices(s, c.zoneChange(change, building, zone)) && ok
	}

	for _, s := range c.ws.ObjectsByType(idf.ShadingZoneDetailed) {
		s.SetString(idf.ShadingZoneDetailedNumberOfVertices, idf.Autocalculate)
		if change == noChange {
			continue
		}
		base, found := c.ws.PointerTarget(s, idf.ShadingZoneDetailedBaseSurfaceName)
		if !found {
			c.log.Errorf("%s: could not find base surface", s)
			ok = false
			continue
		}
		zone, found := c.zoneOfSurface(base)
		if !found {
			c.log.Errorf("%s: could not find zone", s)
			ok = false
			continue
		}
		ok = c.transformVertices(s, c.zoneChange(change, building, zone)) && ok
	}

	for _, s := range c.ws.ObjectsByType(idf.ShadingBuildingDetailed) {
		s.SetString(idf.DetailedShadingNumberOfVertices, idf.Autocalculate)
		if change == noChange {
			continue
		}
		ok = c.transformVertices(s, buildingChange(change, building)) && ok
	}

	// site shadings are always in world coordinates.
	for _, s := range c.ws.ObjectsByType(idf.ShadingSiteDetailed) {
		s.SetString(idf.DetailedShadingNumberOfVertices, idf.Autocalculate)
	}

	return ok
}

func (c *Converter) convertDaylighting(change coordinateChange, building geom.Transform) bool {
	if change == noChange {
		return true
	}
	ok := true

	for _, d := range c.ws.ObjectsByType(idf.DaylightingControls) {
		zone, found := c.ws.PointerTarget(d, idf.DaylightingControlsZoneName)
		if !found {
			c.log.Errorf("%s: could not find zone", d)
			ok = false
			continue
		}
		t := c.zoneChange(change, building, zone)
		for _, xyz := range [][3]int{
			{idf.DaylightingControlsFirstX, idf.DaylightingControlsFirstY, idf.DaylightingControlsFirstZ},
			{idf.DaylightingControlsSecondX, idf.DaylightingControlsSecondY, idf.DaylightingControlsSecondZ},
		} {
			x, okx := d.GetDoubleOrDefault(xyz[0])
			y, oky := d.GetDoubleOrDefault(xyz[1])
			z, okz := d.GetDoubleOrDefault(xyz[2])
			if !okx || !oky || !okz {
				continue
			}
			p := t.Apply(geom.Point{X: x, Y: y, Z: z})
			d.SetDouble(xyz[0], p.X)
			d.SetDouble(xyz[1], p.Y)
			d.SetDouble(xyz[2], p.Z)
		}
	}

	for _, m := range c.ws.ObjectsByType(idf.OutputIlluminanceMap) {
		zone, found := c.ws.PointerTarget(m, idf.OutputIlluminanceMapZoneName)
		if !found {
			c.log.Errorf("%s: could not find zone", m)
			ok = false
			continue
		}
		t := c.zoneChange(change, building, zone)

		xmin, ok1 := m.GetDoubleOrDefault(idf.OutputIlluminanceMapXMinimum)
		xmax, ok2 := m.GetDoubleOrDefault(idf.OutputIlluminanceMapXMaximum)
		ymin, ok3 := m.GetDoubleOrDefault(idf.OutputIlluminanceMapYMinimum)
		ymax, ok4 := m.GetDoubleOrDefault(idf.OutputIlluminanceMapYMaximum)
		z, ok5 := m.GetDoubleOrDefault(idf.OutputIlluminanceMapZHeight)
		if !(ok1 && ok2 && ok3 && ok4 && ok5) {
			c.log.Errorf("%s: %s", m, ErrMissingField)
			ok = false
			continue
		}

		// min and max can swap in the new system.
		corners := t.ApplyAll([]geom.Point{
			{X: xmin, Y: ymin, Z: z},
			{X: xmax, Y: ymin, Z: z},
			{X: xmin, Y: ymax, Z: z},
			{X: xmax, Y: ymax, Z: z},
		})
		lo, hi := geom.Bounds(corners)
		m.SetDouble(idf.OutputIlluminanceMapXMinimum, lo.X)
		m.SetDouble(idf.OutputIlluminanceMapYMinimum, lo.Y)
		m.SetDouble(idf.OutputIlluminanceMapXMaximum, hi.X)
		m.SetDouble(idf.OutputIlluminanceMapYMaximum, hi.Y)
		m.SetDouble(idf.OutputIlluminanceMapZHeight, corners[0].Z)
	}

	return ok
}

func (c *Converter) applyUpperLeftCornerRule() bool {
	ok := true
	for _, t := range polygonTypes {
		for _, rec := range c.ws.ObjectsByType(t) {
			vs, err := idf.Vertices(rec)
			if err != nil {
				continue
			}
			if !c.setVertices(rec, geom.ReorderULC(vs)) {
				ok = false
			}
		}
	}
	return ok
}

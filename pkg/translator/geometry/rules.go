// Package geometry converts surface geometry of a workspace between coordinate systems
// and from simple (parametric) to detailed (polygon) representations.
package geometry

import (
	"errors"
	"fmt"
	"strings"

	geom "github.com/opst/knitsim/pkg/geometry"
	"github.com/opst/knitsim/pkg/idf"
)

var ErrMissingField = errors.New("missing required field")

type CoordinateSystem string

const (
	Relative CoordinateSystem = "Relative"
	World    CoordinateSystem = "World"
	Absolute CoordinateSystem = "Absolute"
)

// AsCoordinateSystem parses a coordinate system case-insensitively.
func AsCoordinateSystem(s string) (CoordinateSystem, error) {
	for _, c := range []CoordinateSystem{Relative, World, Absolute} {
		if strings.EqualFold(strings.TrimSpace(s), string(c)) {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown coordinate system: %s", s)
}

// isAbsolute reports World or Absolute. These are the same frame.
func (c CoordinateSystem) isAbsolute() bool {
	return c == World || c == Absolute
}

const (
	UpperLeftCorner  = "UpperLeftCorner"
	Counterclockwise = "Counterclockwise"
	Clockwise        = "Clockwise"
)

type coordinateChange int

const (
	noChange coordinateChange = iota
	relativeToAbsolute
	absoluteToRelative
)

func changeOf(from, to CoordinateSystem) coordinateChange {
	switch {
	case from == Relative && to.isAbsolute():
		return relativeToAbsolute
	case from.isAbsolute() && to == Relative:
		return absoluteToRelative
	default:
		return noChange
	}
}

// rules is the content of GlobalGeometryRules.
type rules struct {
	startingVertexPosition string
	vertexEntryDirection   string
	detailed               CoordinateSystem
	daylighting            CoordinateSystem
	rectangular            CoordinateSystem
}

func (c *Converter) readRules() rules {
	ret := rules{
		startingVertexPosition: UpperLeftCorner,
		vertexEntryDirection:   Counterclockwise,
		detailed:               Relative,
		daylighting:            Relative,
		rectangular:            Relative,
	}

	r, ok := c.ws.UniqueObject(idf.GlobalGeometryRules)
	if !ok {
		c.log.Warnf("no %s; assuming %s, %s and %s coordinates", idf.GlobalGeometryRules, UpperLeftCorner, Counterclockwise, Relative)
		return ret
	}

	if v, ok := r.GetString(idf.GlobalGeometryRulesStartingVertexPosition); ok {
		ret.startingVertexPosition = v
	}
	if v, ok := r.GetString(idf.GlobalGeometryRulesVertexEntryDirection); ok {
		ret.vertexEntryDirection = v
	}
	for _, f := range []struct {
		index int
		dest  *CoordinateSystem
	}{
		{index: idf.GlobalGeometryRulesCoordinateSystem, dest: &ret.detailed},
		{index: idf.GlobalGeometryRulesDaylightingReferencePointCoordinateSystem, dest: &ret.daylighting},
		{index: idf.GlobalGeometryRulesRectangularSurfaceCoordinateSystem, dest: &ret.rectangular},
	} {
		v, ok := r.GetStringOrDefault(f.index)
		if !ok {
			continue
		}
		cs, err := AsCoordinateSystem(v)
		if err != nil {
			c.log.Warnf("%s: %s; assuming %s", idf.GlobalGeometryRules, err, Relative)
			continue
		}
		*f.dest = cs
	}
	return ret
}

func (c *Converter) writeRules(detailed, daylighting CoordinateSystem) {
	r, ok := c.ws.UniqueObject(idf.GlobalGeometryRules)
	if !ok {
		r = idf.MustRecord(idf.GlobalGeometryRules)
		if err := c.ws.Add(r); err != nil {
			c.log.Errorf("cannot add %s: %s", idf.GlobalGeometryRules, err)
			return
		}
	}
	r.SetFields(
		UpperLeftCorner,
		Counterclockwise,
		string(detailed),
		string(daylighting),
		string(detailed),
	)
}

// buildingTransformation is the rotation by the north axis of Building.
func (c *Converter) buildingTransformation() geom.Transform {
	b, ok := c.ws.UniqueObject(idf.Building)
	if !ok {
		c.log.Warnf("no %s; assuming north axis is 0", idf.Building)
		return geom.Identity()
	}
	north, ok := b.GetDoubleOrDefault(idf.BuildingNorthAxis)
	if !ok {
		c.log.Errorf("%s: north axis is not a number; assuming 0", b)
		north = 0
	}
	return geom.BuildingTransformation(north)
}

// zoneTransformation is the placement of zone in building coordinates.
func (c *Converter) zoneTransformation(zone *idf.Record) geom.Transform {
	get := func(i int) float64 {
		v, ok := zone.GetDoubleOrDefault(i)
		if !ok {
			f, _ := zone.Schema().FieldAt(i)
			c.log.Errorf("%s: %s is not a number; assuming 0", zone, f.Name)
			return 0
		}
		return v
	}
	origin := geom.Point{X: get(idf.ZoneXOrigin), Y: get(idf.ZoneYOrigin), Z: get(idf.ZoneZOrigin)}
	return geom.ZoneTransformation(origin, get(idf.ZoneDirectionOfRelativeNorth))
}

// zoneChange is the transform of change for geometries in zone.
func (c *Converter) zoneChange(change coordinateChange, building geom.Transform, zone *idf.Record) geom.Transform {
	switch change {
	case relativeToAbsolute:
		return geom.Compose(building, c.zoneTransformation(zone))
	case absoluteToRelative:
		inv, _ := geom.Invert(geom.Compose(building, c.zoneTransformation(zone)))
		return inv
	default:
		return geom.Identity()
	}
}

// buildingChange is the transform of change for geometries attached to building.
func buildingChange(change coordinateChange, building geom.Transform) geom.Transform {
	switch change {
	case relativeToAbsolute:
		return building
	case absoluteToRelative:
		inv, _ := geom.Invert(building)
		return inv
	default:
		return geom.Identity()
	}
}

// zoneOfSurface finds the zone of any surface type.
func (c *Converter) zoneOfSurface(surface *idf.Record) (*idf.Record, bool) {
	i, ok := surface.Schema().FieldIndex("Zone Name")
	if !ok {
		return nil, false
	}
	return c.ws.PointerTarget(surface, i)
}

// polygonTypes have vertices as extensible groups.
var polygonTypes = []idf.ObjectType{
	idf.BuildingSurfaceDetailed,
	idf.WallDetailed,
	idf.RoofCeilingDetailed,
	idf.FloorDetailed,
	idf.FenestrationSurfaceDetailed,
	idf.ShadingSiteDetailed,
	idf.ShadingBuildingDetailed,
	idf.ShadingZoneDetailed,
}

package model

import (
	"github.com/google/uuid"
	"github.com/opst/knitsim/pkg/geometry"
)

// Building is unique in a model.
type Building struct {
	base
	northAxis optional
}

// NewBuilding returns the building of m, creating it if m has none.
func NewBuilding(m *Model) *Building {
	if b, ok := m.Building(); ok {
		return b
	}
	b := &Building{base: newBase(m, KindBuilding), northAxis: opt(0)}
	m.add(b)
	return b
}

func (m *Model) Building() (*Building, bool) {
	bs := All[*Building](m)
	if len(bs) == 0 {
		return nil, false
	}
	return bs[0], true
}

func (b *Building) NorthAxis() float64 {
	return b.northAxis.get()
}

func (b *Building) IsNorthAxisDefaulted() bool {
	return b.northAxis.defaulted()
}

func (b *Building) SetNorthAxis(deg float64) {
	b.northAxis.set(deg)
}

func (b *Building) ResetNorthAxis() {
	b.northAxis.reset()
}

// Transformation rotates building coordinates to world coordinates.
func (b *Building) Transformation() geometry.Transform {
	return geometry.BuildingTransformation(b.NorthAxis())
}

type ThermalZone struct {
	base
	multiplier optional
}

func NewThermalZone(m *Model) *ThermalZone {
	z := &ThermalZone{base: newBase(m, KindThermalZone), multiplier: opt(1)}
	m.add(z)
	return z
}

func (z *ThermalZone) Multiplier() int {
	return int(z.multiplier.get())
}

func (z *ThermalZone) IsMultiplierDefaulted() bool {
	return z.multiplier.defaulted()
}

func (z *ThermalZone) SetMultiplier(v int) {
	z.multiplier.set(float64(v))
}

// Spaces returns spaces in the zone.
func (z *ThermalZone) Spaces() []*Space {
	ret := []*Space{}
	for _, s := range All[*Space](z.model) {
		if s.thermalZone == z.handle {
			ret = append(ret, s)
		}
	}
	return ret
}

// Space is a part of a thermal zone with its own coordinate system.
type Space struct {
	base
	thermalZone Handle
	xOrigin     optional
	yOrigin     optional
	zOrigin     optional
	north       optional
}

func NewSpace(m *Model) *Space {
	s := &Space{
		base:    newBase(m, KindSpace),
		xOrigin: opt(0), yOrigin: opt(0), zOrigin: opt(0), north: opt(0),
	}
	m.add(s)
	return s
}

func (s *Space) ThermalZone() (*ThermalZone, bool) {
	return Get[*ThermalZone](s.model, s.thermalZone)
}

func (s *Space) SetThermalZone(z *ThermalZone) {
	s.thermalZone = z.Handle()
}

func (s *Space) ResetThermalZone() {
	s.thermalZone = uuid.Nil
}

func (s *Space) Origin() geometry.Point {
	return geometry.Point{X: s.xOrigin.get(), Y: s.yOrigin.get(), Z: s.zOrigin.get()}
}

func (s *Space) IsOriginDefaulted() bool {
	return s.xOrigin.defaulted() && s.yOrigin.defaulted() && s.zOrigin.defaulted()
}

func (s *Space) SetOrigin(p geometry.Point) {
	s.xOrigin.set(p.X)
	s.yOrigin.set(p.Y)
	s.zOrigin.set(p.Z)
}

func (s *Space) DirectionOfRelativeNorth() float64 {
	return s.north.get()
}

func (s *Space) IsDirectionOfRelativeNorthDefaulted() bool {
	return s.north.defaulted()
}

func (s *Space) SetDirectionOfRelativeNorth(deg float64) {
	s.north.set(deg)
}

// Transformation places space coordinates in building coordinates.
func (s *Space) Transformation() geometry.Transform {
	return geometry.ZoneTransformation(s.Origin(), s.DirectionOfRelativeNorth())
}

func (s *Space) Surfaces() []*Surface {
	ret := []*Surface{}
	for _, x := range All[*Surface](s.model) {
		if x.space == s.handle {
			ret = append(ret, x)
		}
	}
	return ret
}

func (s *Space) ShadingSurfaceGroups() []*ShadingSurfaceGroup {
	ret := []*ShadingSurfaceGroup{}
	for _, g := range All[*ShadingSurfaceGroup](s.model) {
		if g.space == s.handle {
			ret = append(ret, g)
		}
	}
	return ret
}

func (s *Space) DaylightingControls() []*DaylightingControl {
	ret := []*DaylightingControl{}
	for _, d := range All[*DaylightingControl](s.model) {
		if d.space == s.handle {
			ret = append(ret, d)
		}
	}
	return ret
}

func (s *Space) Children() []Object {
	ret := []Object{}
	for _, x := range s.Surfaces() {
		ret = append(ret, x)
	}
	for _, g := range s.ShadingSurfaceGroups() {
		ret = append(ret, g)
	}
	for _, d := range s.DaylightingControls() {
		ret = append(ret, d)
	}
	return ret
}

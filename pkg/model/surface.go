package model

import (
	"github.com/google/uuid"
	"github.com/opst/knitsim/pkg/geometry"
)

// PlanarSurface is an object with a polygon.
type PlanarSurface interface {
	Object
	Vertices() []geometry.Point
	SetVertices([]geometry.Point)
	Construction() (ConstructionBase, bool)
}

// Outside boundary conditions of surfaces.
const (
	Outdoors  = "Outdoors"
	Ground    = "Ground"
	Adiabatic = "Adiabatic"
	// AdjacentSurface is the condition of linked surfaces.
	AdjacentSurface = "Surface"
)

type polygon struct {
	vertices []geometry.Point
}

func (p *polygon) Vertices() []geometry.Point {
	return append([]geometry.Point{}, p.vertices...)
}

func (p *polygon) SetVertices(vs []geometry.Point) {
	p.vertices = append([]geometry.Point{}, vs...)
}

type Surface struct {
	base
	polygon
	space             Handle
	construction      Handle
	adjacent          Handle
	surfaceType       string
	boundaryCondition string
	sunExposure       *string
	windExposure      *string
}

func NewSurface(m *Model, vertices []geometry.Point) *Surface {
	s := &Surface{base: newBase(m, KindSurface), boundaryCondition: Outdoors}
	s.SetVertices(vertices)
	m.add(s)
	return s
}

func (s *Surface) Space() (*Space, bool) {
	return Get[*Space](s.model, s.space)
}

func (s *Surface) SetSpace(sp *Space) {
	s.space = sp.Handle()
}

// SurfaceType is "Wall", "Floor" or "RoofCeiling".
//
// Unless set, it is derived from the outward normal.
func (s *Surface) SurfaceType() string {
	if s.surfaceType != "" {
		return s.surfaceType
	}
	n, ok := geometry.OutwardNormal(s.vertices)
	switch {
	case !ok:
		return "Wall"
	case n.Z < -0.5:
		return "Floor"
	case 0.5 < n.Z:
		return "RoofCeiling"
	}
	return "Wall"
}

func (s *Surface) IsSurfaceTypeDefaulted() bool {
	return s.surfaceType == ""
}

func (s *Surface) SetSurfaceType(t string) {
	s.surfaceType = t
}

func (s *Surface) Construction() (ConstructionBase, bool) {
	return Get[ConstructionBase](s.model, s.construction)
}

func (s *Surface) SetConstruction(c ConstructionBase) {
	s.construction = c.Handle()
}

func (s *Surface) OutsideBoundaryCondition() string {
	return s.boundaryCondition
}

// SetOutsideBoundaryCondition sets a condition other than AdjacentSurface. Use Link for that.
//
// Setting a condition unlinks the adjacent surface, if any.
func (s *Surface) SetOutsideBoundaryCondition(c string) bool {
	if c == AdjacentSurface {
		return false
	}
	s.unlink()
	s.boundaryCondition = c
	return true
}

func (s *Surface) SunExposure() string {
	if s.sunExposure == nil {
		return "SunExposed"
	}
	return *s.sunExposure
}

func (s *Surface) IsSunExposureDefaulted() bool {
	return s.sunExposure == nil
}

func (s *Surface) SetSunExposure(v string) {
	s.sunExposure = &v
}

func (s *Surface) WindExposure() string {
	if s.windExposure == nil {
		return "WindExposed"
	}
	return *s.windExposure
}

func (s *Surface) IsWindExposureDefaulted() bool {
	return s.windExposure == nil
}

func (s *Surface) SetWindExposure(v string) {
	s.windExposure = &v
}

func (s *Surface) AdjacentSurface() (*Surface, bool) {
	return Get[*Surface](s.model, s.adjacent)
}

// SetAdjacentSurface is Link(s, other).
func (s *Surface) SetAdjacentSurface(other *Surface) bool {
	return Link(s, other)
}

// ResetAdjacentSurface unlinks both sides.
func (s *Surface) ResetAdjacentSurface() {
	s.unlink()
}

func (s *Surface) unlink() {
	if other, ok := s.AdjacentSurface(); ok && other.adjacent == s.handle {
		other.adjacent = uuid.Nil
		other.boundaryCondition = Outdoors
	}
	if s.adjacent != uuid.Nil {
		s.adjacent = uuid.Nil
		s.boundaryCondition = Outdoors
	}
}

// Link makes a and b adjacent to each other.
//
// Previous partners of a and b are unlinked. A surface cannot be adjacent to itself.
func Link(a, b *Surface) bool {
	if a == nil || b == nil || a.handle == b.handle || a.model != b.model {
		return false
	}
	a.unlink()
	b.unlink()
	a.adjacent, b.adjacent = b.handle, a.handle
	a.boundaryCondition, b.boundaryCondition = AdjacentSurface, AdjacentSurface
	return true
}

func (s *Surface) SubSurfaces() []*SubSurface {
	ret := []*SubSurface{}
	for _, x := range All[*SubSurface](s.model) {
		if x.surface == s.handle {
			ret = append(ret, x)
		}
	}
	return ret
}

func (s *Surface) Children() []Object {
	ret := []Object{}
	for _, x := range s.SubSurfaces() {
		ret = append(ret, x)
	}
	return ret
}

func (s *Surface) beforeRemove() {
	s.unlink()
}

type SubSurface struct {
	base
	polygon
	surface        Handle
	construction   Handle
	adjacent       Handle
	subSurfaceType string
	multiplier     optional
}

func NewSubSurface(m *Model, vertices []geometry.Point) *SubSurface {
	s := &SubSurface{base: newBase(m, KindSubSurface), subSurfaceType: "FixedWindow", multiplier: opt(1)}
	s.SetVertices(vertices)
	m.add(s)
	return s
}

func (s *SubSurface) Surface() (*Surface, bool) {
	return Get[*Surface](s.model, s.surface)
}

func (s *SubSurface) SetSurface(x *Surface) {
	s.surface = x.Handle()
}

func (s *SubSurface) SubSurfaceType() string {
	return s.subSurfaceType
}

func (s *SubSurface) SetSubSurfaceType(t string) {
	s.subSurfaceType = t
}

func (s *SubSurface) Construction() (ConstructionBase, bool) {
	return Get[ConstructionBase](s.model, s.construction)
}

func (s *SubSurface) SetConstruction(c ConstructionBase) {
	s.construction = c.Handle()
}

func (s *SubSurface) Multiplier() float64 {
	return s.multiplier.get()
}

func (s *SubSurface) IsMultiplierDefaulted() bool {
	return s.multiplier.defaulted()
}

func (s *SubSurface) SetMultiplier(v float64) {
	s.multiplier.set(v)
}

func (s *SubSurface) AdjacentSubSurface() (*SubSurface, bool) {
	return Get[*SubSurface](s.model, s.adjacent)
}

// LinkSubSurfaces makes a and b adjacent to each other, unlinking previous partners.
func LinkSubSurfaces(a, b *SubSurface) bool {
	if a == nil || b == nil || a.handle == b.handle || a.model != b.model {
		return false
	}
	a.unlink()
	b.unlink()
	a.adjacent, b.adjacent = b.handle, a.handle
	return true
}

func (s *SubSurface) unlink() {
	if other, ok := s.AdjacentSubSurface(); ok && other.adjacent == s.handle {
		other.adjacent = uuid.Nil
	}
	s.adjacent = uuid.Nil
}

func (s *SubSurface) beforeRemove() {
	s.unlink()
}

// Types of shading surface groups.
const (
	ShadingSite     = "Site"
	ShadingBuilding = "Building"
	ShadingSpace    = "Space"
)

type ShadingSurfaceGroup struct {
	base
	shadingType string
	space       Handle
}

func NewShadingSurfaceGroup(m *Model, shadingType string) *ShadingSurfaceGroup {
	g := &ShadingSurfaceGroup{base: newBase(m, KindShadingSurfaceGroup), shadingType: shadingType}
	m.add(g)
	return g
}

func (g *ShadingSurfaceGroup) ShadingSurfaceType() string {
	return g.shadingType
}

func (g *ShadingSurfaceGroup) Space() (*Space, bool) {
	return Get[*Space](g.model, g.space)
}

// SetSpace attaches the group to a space. The type becomes Space.
func (g *ShadingSurfaceGroup) SetSpace(s *Space) {
	g.space = s.Handle()
	g.shadingType = ShadingSpace
}

func (g *ShadingSurfaceGroup) ShadingSurfaces() []*ShadingSurface {
	ret := []*ShadingSurface{}
	for _, x := range All[*ShadingSurface](g.model) {
		if x.group == g.handle {
			ret = append(ret, x)
		}
	}
	return ret
}

func (g *ShadingSurfaceGroup) Children() []Object {
	ret := []Object{}
	for _, x := range g.ShadingSurfaces() {
		ret = append(ret, x)
	}
	return ret
}

type ShadingSurface struct {
	base
	polygon
	group         Handle
	baseSurface   Handle
	construction  Handle
	transmittance Handle
}

func NewShadingSurface(m *Model, vertices []geometry.Point) *ShadingSurface {
	s := &ShadingSurface{base: newBase(m, KindShadingSurface)}
	s.SetVertices(vertices)
	m.add(s)
	return s
}

func (s *ShadingSurface) ShadingSurfaceGroup() (*ShadingSurfaceGroup, bool) {
	return Get[*ShadingSurfaceGroup](s.model, s.group)
}

func (s *ShadingSurface) SetShadingSurfaceGroup(g *ShadingSurfaceGroup) {
	s.group = g.Handle()
}

// BaseSurface is the surface which a space shading is attached to.
func (s *ShadingSurface) BaseSurface() (*Surface, bool) {
	return Get[*Surface](s.model, s.baseSurface)
}

func (s *ShadingSurface) SetBaseSurface(x *Surface) {
	s.baseSurface = x.Handle()
}

func (s *ShadingSurface) Construction() (ConstructionBase, bool) {
	return Get[ConstructionBase](s.model, s.construction)
}

func (s *ShadingSurface) SetConstruction(c ConstructionBase) {
	s.construction = c.Handle()
}

func (s *ShadingSurface) TransmittanceSchedule() (Schedule, bool) {
	return Get[Schedule](s.model, s.transmittance)
}

func (s *ShadingSurface) SetTransmittanceSchedule(sc Schedule) {
	s.transmittance = sc.Handle()
}

package model

import "slices"

// ConstructionBase is an object usable as a construction of surfaces.
type ConstructionBase interface {
	Object
	Layers() []*Material
}

type Material struct {
	base
	roughness    string
	thickness    float64
	conductivity float64
	density      float64
	specificHeat float64

	thermalAbsorptance optional
	solarAbsorptance   optional
	visibleAbsorptance optional
}

func NewMaterial(m *Model) *Material {
	x := &Material{
		base:               newBase(m, KindMaterial),
		roughness:          "MediumRough",
		thickness:          0.1,
		conductivity:       0.1,
		density:            0.1,
		specificHeat:       1400,
		thermalAbsorptance: opt(0.9),
		solarAbsorptance:   opt(0.7),
		visibleAbsorptance: opt(0.7),
	}
	m.add(x)
	return x
}

func (x *Material) Roughness() string {
	return x.roughness
}

func (x *Material) SetRoughness(v string) {
	x.roughness = v
}

func (x *Material) Thickness() float64 {
	return x.thickness
}

func (x *Material) SetThickness(v float64) {
	x.thickness = v
}

func (x *Material) Conductivity() float64 {
	return x.conductivity
}

func (x *Material) SetConductivity(v float64) {
	x.conductivity = v
}

func (x *Material) Density() float64 {
	return x.density
}

func (x *Material) SetDensity(v float64) {
	x.density = v
}

func (x *Material) SpecificHeat() float64 {
	return x.specificHeat
}

func (x *Material) SetSpecificHeat(v float64) {
	x.specificHeat = v
}

func (x *Material) ThermalAbsorptance() float64 {
	return x.thermalAbsorptance.get()
}

func (x *Material) IsThermalAbsorptanceDefaulted() bool {
	return x.thermalAbsorptance.defaulted()
}

func (x *Material) SetThermalAbsorptance(v float64) {
	x.thermalAbsorptance.set(v)
}

func (x *Material) SolarAbsorptance() float64 {
	return x.solarAbsorptance.get()
}

func (x *Material) IsSolarAbsorptanceDefaulted() bool {
	return x.solarAbsorptance.defaulted()
}

func (x *Material) SetSolarAbsorptance(v float64) {
	x.solarAbsorptance.set(v)
}

func (x *Material) VisibleAbsorptance() float64 {
	return x.visibleAbsorptance.get()
}

func (x *Material) IsVisibleAbsorptanceDefaulted() bool {
	return x.visibleAbsorptance.defaulted()
}

func (x *Material) SetVisibleAbsorptance(v float64) {
	x.visibleAbsorptance.set(v)
}

// Construction is layers of materials, from outside to inside.
type Construction struct {
	base
	layers []Handle
}

func NewConstruction(m *Model) *Construction {
	c := &Construction{base: newBase(m, KindConstruction)}
	m.add(c)
	return c
}

// Layers returns existing materials in order. Removed materials are skipped.
func (c *Construction) Layers() []*Material {
	ret := []*Material{}
	for _, h := range c.layers {
		if x, ok := Get[*Material](c.model, h); ok {
			ret = append(ret, x)
		}
	}
	return ret
}

func (c *Construction) SetLayers(ms ...*Material) bool {
	hs := make([]Handle, 0, len(ms))
	for _, x := range ms {
		if x == nil || x.model != c.model {
			return false
		}
		hs = append(hs, x.handle)
	}
	c.layers = hs
	return true
}

// InsertLayer puts the material at i. i = len(layers) appends.
func (c *Construction) InsertLayer(i int, x *Material) bool {
	if x == nil || x.model != c.model || i < 0 || len(c.layers) < i {
		return false
	}
	c.layers = slices.Insert(c.layers, i, x.handle)
	return true
}

func (c *Construction) EraseLayer(i int) bool {
	if i < 0 || len(c.layers) <= i {
		return false
	}
	c.layers = slices.Delete(c.layers, i, i+1)
	return true
}

package model

import (
	"slices"
	"strings"

	"github.com/opst/knitsim/pkg/geometry"
)

type attribute struct {
	get func() (float64, bool)
	set func(float64) bool
}

func always(f func() float64) func() (float64, bool) {
	return func() (float64, bool) { return f(), true }
}

func setter(f func(float64)) func(float64) bool {
	return func(v float64) bool {
		f(v)
		return true
	}
}

func attributesOf(o Object) map[string]attribute {
	switch x := o.(type) {
	case *Building:
		return map[string]attribute{
			"northaxis": {get: always(x.NorthAxis), set: setter(x.SetNorthAxis)},
		}
	case *ThermalZone:
		return map[string]attribute{
			"multiplier": {
				get: func() (float64, bool) { return float64(x.Multiplier()), true },
				set: func(v float64) bool {
					if v < 1 || v != float64(int(v)) {
						return false
					}
					x.SetMultiplier(int(v))
					return true
				},
			},
		}
	case *Space:
		origin := func(f func(*geometry.Point) *float64) attribute {
			return attribute{
				get: func() (float64, bool) { p := x.Origin(); return *f(&p), true },
				set: func(v float64) bool {
					p := x.Origin()
					*f(&p) = v
					x.SetOrigin(p)
					return true
				},
			}
		}
		return map[string]attribute{
			"xorigin":                  origin(func(p *geometry.Point) *float64 { return &p.X }),
			"yorigin":                  origin(func(p *geometry.Point) *float64 { return &p.Y }),
			"zorigin":                  origin(func(p *geometry.Point) *float64 { return &p.Z }),
			"directionofrelativenorth": {get: always(x.DirectionOfRelativeNorth), set: setter(x.SetDirectionOfRelativeNorth)},
		}
	case *SubSurface:
		return map[string]attribute{
			"multiplier": {get: always(x.Multiplier), set: setter(x.SetMultiplier)},
		}
	case *ScheduleConstant:
		return map[string]attribute{
			"value": {get: always(x.Value), set: setter(x.SetValue)},
		}
	case *Material:
		return map[string]attribute{
			"thickness":          {get: always(x.Thickness), set: setter(x.SetThickness)},
			"conductivity":       {get: always(x.Conductivity), set: setter(x.SetConductivity)},
			"density":            {get: always(x.Density), set: setter(x.SetDensity)},
			"specificheat":       {get: always(x.SpecificHeat), set: setter(x.SetSpecificHeat)},
			"thermalabsorptance": {get: always(x.ThermalAbsorptance), set: setter(x.SetThermalAbsorptance)},
			"solarabsorptance":   {get: always(x.SolarAbsorptance), set: setter(x.SetSolarAbsorptance)},
			"visibleabsorptance": {get: always(x.VisibleAbsorptance), set: setter(x.SetVisibleAbsorptance)},
		}
	case *CoilCoolingDXMultiSpeed:
		return map[string]attribute{
			"crankcaseheatercapacity": {get: always(x.CrankcaseHeaterCapacity), set: setter(x.SetCrankcaseHeaterCapacity)},
		}
	case *CoilCoolingDXMultiSpeedStageData:
		return map[string]attribute{
			"grossratedtotalcoolingcapacity": {get: x.GrossRatedTotalCoolingCapacity, set: setter(x.SetGrossRatedTotalCoolingCapacity)},
			"grossratedsensibleheatratio":    {get: x.GrossRatedSensibleHeatRatio, set: setter(x.SetGrossRatedSensibleHeatRatio)},
			"grossratedcoolingcop":           {get: always(x.GrossRatedCoolingCOP), set: setter(x.SetGrossRatedCoolingCOP)},
			"ratedairflowrate":               {get: x.RatedAirFlowRate, set: setter(x.SetRatedAirFlowRate)},
		}
	case *DaylightingControl:
		return map[string]attribute{
			"illuminancesetpoint": {get: always(x.IlluminanceSetpoint), set: setter(x.SetIlluminanceSetpoint)},
		}
	}
	return nil
}

func normalizeAttributeName(name string) string {
	return strings.ToLower(strings.NewReplacer(" ", "", "_", "", "-", "").Replace(name))
}

// Attribute reads a numeric attribute of the object.
//
// Names are matched ignoring case, spaces, underscores and hyphens:
// "North Axis", "northAxis" and "north_axis" are the same attribute.
// It returns false when the object does not have the attribute, or the value is unset (e.g. autosized).
func Attribute(o Object, name string) (float64, bool) {
	a, ok := attributesOf(o)[normalizeAttributeName(name)]
	if !ok {
		return 0, false
	}
	return a.get()
}

// SetAttribute writes a numeric attribute of the object.
func SetAttribute(o Object, name string, value float64) bool {
	a, ok := attributesOf(o)[normalizeAttributeName(name)]
	if !ok {
		return false
	}
	return a.set(value)
}

// AttributeNames lists attributes of the object, sorted.
func AttributeNames(o Object) []string {
	ret := []string{}
	for k := range attributesOf(o) {
		ret = append(ret, k)
	}
	slices.Sort(ret)
	return ret
}

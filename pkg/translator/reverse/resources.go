package reverse

import (
	"strings"

	"github.com/opst/knitsim/pkg/idf"
	"github.com/opst/knitsim/pkg/model"
)

func translateScheduleTypeLimits(t *Translator, r *idf.Record) model.Object {
	l := model.NewScheduleTypeLimits(t.m)
	setName(l, r)
	if v, ok := doubleOf(r, idf.ScheduleTypeLimitsLowerLimit); ok {
		l.SetLowerLimitValue(v)
	}
	if v, ok := doubleOf(r, idf.ScheduleTypeLimitsUpperLimit); ok {
		l.SetUpperLimitValue(v)
	}
	if v, ok := r.GetString(idf.ScheduleTypeLimitsNumericType); ok {
		l.SetNumericType(v)
	}
	if v, ok := r.GetString(idf.ScheduleTypeLimitsUnitType); ok {
		l.SetUnitType(v)
	}
	return l
}

func translateScheduleConstant(t *Translator, r *idf.Record) model.Object {
	s := model.NewScheduleConstant(t.m)
	setName(s, r)
	if l, ok := as[*model.ScheduleTypeLimits](t, r, idf.ScheduleConstantTypeLimitsName); ok {
		s.SetScheduleTypeLimits(l)
	}
	if v, ok := doubleOf(r, idf.ScheduleConstantHourlyValue); ok {
		s.SetValue(v)
	}
	return s
}

// curveBounds are fields of curve bounds by name. Not all curves have all of them.
var curveBounds = []struct {
	name string
	dest func(*model.CurveBounds) **float64
}{
	{"Minimum Value of x", func(b *model.CurveBounds) **float64 { return &b.MinimumX }},
	{"Maximum Value of x", func(b *model.CurveBounds) **float64 { return &b.MaximumX }},
	{"Minimum Value of y", func(b *model.CurveBounds) **float64 { return &b.MinimumY }},
	{"Maximum Value of y", func(b *model.CurveBounds) **float64 { return &b.MaximumY }},
	{"Minimum Curve Output", func(b *model.CurveBounds) **float64 { return &b.MinimumOutput }},
	{"Maximum Curve Output", func(b *model.CurveBounds) **float64 { return &b.MaximumOutput }},
}

func translateCurve(t *Translator, r *idf.Record) model.Object {
	var c model.Curve
	switch r.Type() {
	case idf.CurveQuadratic:
		c = model.NewCurveQuadratic(t.m)
	case idf.CurveCubic:
		c = model.NewCurveCubic(t.m)
	case idf.CurveBiquadratic:
		c = model.NewCurveBiquadratic(t.m)
	default:
		t.log.Errorf("%s: not a curve", r)
		return nil
	}
	setName(c, r)

	coefficients := c.Coefficients()
	for i := range coefficients {
		v, ok := r.GetDoubleOrDefault(idf.CurveCoefficient1 + i)
		if !ok {
			t.log.Warnf("%s: coefficient %d is missing. assuming 0", r, i+1)
			v = 0
		}
		coefficients[i] = v
	}
	c.SetCoefficients(coefficients...)

	b := model.CurveBounds{}
	for _, f := range curveBounds {
		i, ok := r.Schema().FieldIndex(f.name)
		if !ok {
			continue
		}
		if v, ok := doubleOf(r, i); ok {
			*f.dest(&b) = &v
		}
	}
	c.SetBounds(b)
	return c
}

func translateMaterial(t *Translator, r *idf.Record) model.Object {
	m := model.NewMaterial(t.m)
	setName(m, r)
	if v, ok := r.GetString(idf.MaterialRoughness); ok {
		m.SetRoughness(v)
	}
	for _, f := range []struct {
		field int
		set   func(float64)
	}{
		{idf.MaterialThickness, m.SetThickness},
		{idf.MaterialConductivity, m.SetConductivity},
		{idf.MaterialDensity, m.SetDensity},
		{idf.MaterialSpecificHeat, m.SetSpecificHeat},
		{idf.MaterialThermalAbsorptance, m.SetThermalAbsorptance},
		{idf.MaterialSolarAbsorptance, m.SetSolarAbsorptance},
		{idf.MaterialVisibleAbsorptance, m.SetVisibleAbsorptance},
	} {
		if v, ok := doubleOf(r, f.field); ok {
			f.set(v)
		}
	}
	return m
}

func translateConstruction(t *Translator, r *idf.Record) model.Object {
	c := model.NewConstruction(t.m)
	setName(c, r)
	layers := []*model.Material{}
	for k := 0; k < r.NumExtensibleGroups(); k++ {
		if m, ok := as[*model.Material](t, r, r.ExtensibleIndex(k, 0)); ok {
			layers = append(layers, m)
		}
	}
	c.SetLayers(layers...)
	return c
}

func translateCoilCoolingDXMultiSpeed(t *Translator, r *idf.Record) model.Object {
	c := model.NewCoilCoolingDXMultiSpeed(t.m)
	setName(c, r)

	if s, ok := as[model.Schedule](t, r, idf.CoilCoolingDXMultiSpeedAvailabilityScheduleName); ok {
		c.SetAvailabilitySchedule(s)
	}
	if v, ok := r.GetString(idf.CoilCoolingDXMultiSpeedCondenserType); ok {
		c.SetCondenserType(v)
	}
	if v, ok := r.GetString(idf.CoilCoolingDXMultiSpeedApplyPartLoadFraction); ok {
		c.SetApplyPartLoadFractionToSpeedsGreaterThan1(strings.EqualFold(v, "Yes"))
	}
	if v, ok := doubleOf(r, idf.CoilCoolingDXMultiSpeedCrankcaseHeaterCapacity); ok {
		c.SetCrankcaseHeaterCapacity(v)
	}
	if v, ok := doubleOf(r, idf.CoilCoolingDXMultiSpeedMaximumOutdoorTemperatureForCrankcaseHeater); ok {
		c.SetMaximumOutdoorDryBulbTemperatureForCrankcaseHeaterOperation(v)
	}
	if v, ok := r.GetString(idf.CoilCoolingDXMultiSpeedFuelType); ok {
		c.SetFuelType(v)
	}

	n := r.NumExtensibleGroups()
	if v, ok := doubleOf(r, idf.CoilCoolingDXMultiSpeedNumberOfSpeeds); ok && int(v) != n {
		t.log.Warnf("%s: number of speeds is %s, but %d speeds are given", r, idf.FormatDouble(v), n)
	}
	for k := 0; k < n; k++ {
		s := model.NewCoilCoolingDXMultiSpeedStageData(t.m)
		t.translateStage(r, k, s)
		c.AddStage(s)
	}
	return c
}

// translateStage reads the k-th speed group of the coil record into s.
func (t *Translator) translateStage(r *idf.Record, k int, s *model.CoilCoolingDXMultiSpeedStageData) {
	at := func(j int) int { return r.ExtensibleIndex(k, j) }

	for _, f := range []struct {
		field    int
		set      func(float64)
		autosize func()
	}{
		{idf.SpeedGrossRatedTotalCoolingCapacity, s.SetGrossRatedTotalCoolingCapacity, s.AutosizeGrossRatedTotalCoolingCapacity},
		{idf.SpeedGrossRatedSensibleHeatRatio, s.SetGrossRatedSensibleHeatRatio, s.AutosizeGrossRatedSensibleHeatRatio},
		{idf.SpeedRatedAirFlowRate, s.SetRatedAirFlowRate, s.AutosizeRatedAirFlowRate},
		{idf.SpeedEvaporativeCondenserAirFlowRate, s.SetEvaporativeCondenserAirFlowRate, s.AutosizeEvaporativeCondenserAirFlowRate},
		{idf.SpeedRatedEvaporativeCondenserPumpPowerConsumption, s.SetRatedEvaporativeCondenserPumpPowerConsumption, s.AutosizeRatedEvaporativeCondenserPumpPowerConsumption},
	} {
		i := at(f.field)
		if r.IsAutosize(i) || r.IsAutocalculate(i) {
			f.autosize()
		} else if v, ok := doubleOf(r, i); ok {
			f.set(v)
		}
	}

	for _, f := range []struct {
		field int
		set   func(float64)
	}{
		{idf.SpeedGrossRatedCoolingCOP, s.SetGrossRatedCoolingCOP},
		{idf.SpeedRatedWasteHeatFractionOfPowerInput, s.SetRatedWasteHeatFractionOfPowerInput},
		{idf.SpeedEvaporativeCondenserEffectiveness, s.SetEvaporativeCondenserEffectiveness},
	} {
		if v, ok := doubleOf(r, at(f.field)); ok {
			f.set(v)
		}
	}

	for _, f := range []struct {
		field int
		set   func(model.Curve)
	}{
		{idf.SpeedTotalCoolingCapacityFunctionOfTemperatureCurveName, s.SetTotalCoolingCapacityFunctionOfTemperatureCurve},
		{idf.SpeedTotalCoolingCapacityFunctionOfFlowFractionCurveName, s.SetTotalCoolingCapacityFunctionOfFlowFractionCurve},
		{idf.SpeedEnergyInputRatioFunctionOfTemperatureCurveName, s.SetEnergyInputRatioFunctionOfTemperatureCurve},
		{idf.SpeedEnergyInputRatioFunctionOfFlowFractionCurveName, s.SetEnergyInputRatioFunctionOfFlowFractionCurve},
		{idf.SpeedPartLoadFractionCorrelationCurveName, s.SetPartLoadFractionCorrelationCurve},
	} {
		if c, ok := as[model.Curve](t, r, at(f.field)); ok {
			f.set(c)
		}
	}
}

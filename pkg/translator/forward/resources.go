package forward

import (
	"github.com/opst/knitsim/pkg/idf"
	"github.com/opst/knitsim/pkg/model"
)

func translateScheduleTypeLimits(t *Translator, o model.Object) *idf.Record {
	l := o.(*model.ScheduleTypeLimits)
	r := t.create(l, idf.ScheduleTypeLimits)
	if v, ok := l.LowerLimitValue(); ok {
		t.setDouble(r, idf.ScheduleTypeLimitsLowerLimit, v)
	}
	if v, ok := l.UpperLimitValue(); ok {
		t.setDouble(r, idf.ScheduleTypeLimitsUpperLimit, v)
	}
	if v := l.NumericType(); v != "" {
		t.set(r, idf.ScheduleTypeLimitsNumericType, v)
	}
	t.setDefaultableString(r, idf.ScheduleTypeLimitsUnitType, l.UnitType(), l.IsUnitTypeDefaulted())
	return r
}

func translateScheduleConstant(t *Translator, o model.Object) *idf.Record {
	s := o.(*model.ScheduleConstant)
	r := t.create(s, idf.ScheduleConstant)
	l, ok := s.ScheduleTypeLimits()
	t.setPointer(r, idf.ScheduleConstantTypeLimitsName, l, ok)
	t.setDefaultable(r, idf.ScheduleConstantHourlyValue, s.Value(), s.IsValueDefaulted())
	return r
}

func translateCurve(typ idf.ObjectType) translateFunc {
	return func(t *Translator, o model.Object) *idf.Record {
		c := o.(model.Curve)
		r := t.create(c, typ)
		for i, v := range c.Coefficients() {
			t.setDouble(r, idf.CurveCoefficient1+i, v)
		}

		b := c.Bounds()
		for _, f := range []struct {
			name  string
			value *float64
		}{
			{"Minimum Value of x", b.MinimumX},
			{"Maximum Value of x", b.MaximumX},
			{"Minimum Value of y", b.MinimumY},
			{"Maximum Value of y", b.MaximumY},
			{"Minimum Curve Output", b.MinimumOutput},
			{"Maximum Curve Output", b.MaximumOutput},
		} {
			if f.value == nil {
				continue
			}
			i, ok := r.Schema().FieldIndex(f.name)
			if !ok {
				t.log.Warnf("%s: has no field '%s'. ignored", r, f.name)
				continue
			}
			t.setDouble(r, i, *f.value)
		}
		return r
	}
}

func translateMaterial(t *Translator, o model.Object) *idf.Record {
	m := o.(*model.Material)
	r := t.create(m, idf.Material)
	t.set(r, idf.MaterialRoughness, m.Roughness())
	t.setDouble(r, idf.MaterialThickness, m.Thickness())
	t.setDouble(r, idf.MaterialConductivity, m.Conductivity())
	t.setDouble(r, idf.MaterialDensity, m.Density())
	t.setDouble(r, idf.MaterialSpecificHeat, m.SpecificHeat())
	t.setDefaultable(r, idf.MaterialThermalAbsorptance, m.ThermalAbsorptance(), m.IsThermalAbsorptanceDefaulted())
	t.setDefaultable(r, idf.MaterialSolarAbsorptance, m.SolarAbsorptance(), m.IsSolarAbsorptanceDefaulted())
	t.setDefaultable(r, idf.MaterialVisibleAbsorptance, m.VisibleAbsorptance(), m.IsVisibleAbsorptanceDefaulted())
	return r
}

func translateConstruction(t *Translator, o model.Object) *idf.Record {
	c := o.(*model.Construction)
	r := t.create(c, idf.Construction)
	for _, m := range c.Layers() {
		if err := r.PushExtensibleGroup(); err != nil {
			t.log.Errorf("%s: %s", r, err)
			return r
		}
		k := r.NumExtensibleGroups() - 1
		t.setPointer(r, r.ExtensibleIndex(k, 0), m, true)
		if v, _ := r.GetString(r.ExtensibleIndex(k, 0)); v == "" {
			r.EraseExtensibleGroup(k)
		}
	}
	if r.NumExtensibleGroups() == 0 {
		t.log.Warnf("%s: has no layers", r)
	}
	return r
}

func translateCoilCoolingDXMultiSpeed(t *Translator, o model.Object) *idf.Record {
	c := o.(*model.CoilCoolingDXMultiSpeed)
	r := t.create(c, idf.CoilCoolingDXMultiSpeed)

	sch, ok := c.AvailabilitySchedule()
	t.setPointer(r, idf.CoilCoolingDXMultiSpeedAvailabilityScheduleName, sch, ok)
	t.setDefaultableString(r, idf.CoilCoolingDXMultiSpeedCondenserType, c.CondenserType(), c.IsCondenserTypeDefaulted())
	if c.ApplyPartLoadFractionToSpeedsGreaterThan1() {
		t.set(r, idf.CoilCoolingDXMultiSpeedApplyPartLoadFraction, "Yes")
	}
	t.setDefaultable(r, idf.CoilCoolingDXMultiSpeedCrankcaseHeaterCapacity, c.CrankcaseHeaterCapacity(), c.IsCrankcaseHeaterCapacityDefaulted())
	t.setDefaultable(
		r, idf.CoilCoolingDXMultiSpeedMaximumOutdoorTemperatureForCrankcaseHeater,
		c.MaximumOutdoorDryBulbTemperatureForCrankcaseHeaterOperation(),
		c.IsMaximumOutdoorDryBulbTemperatureForCrankcaseHeaterOperationDefaulted(),
	)
	t.setDefaultableString(r, idf.CoilCoolingDXMultiSpeedFuelType, c.FuelType(), c.IsFuelTypeDefaulted())

	stages := c.Stages()
	t.set(r, idf.CoilCoolingDXMultiSpeedNumberOfSpeeds, idf.FormatDouble(float64(len(stages))))
	for _, s := range stages {
		if err := r.PushExtensibleGroup(); err != nil {
			t.log.Errorf("%s: %s", r, err)
			return r
		}
		t.memo[s.Handle()] = r
		t.translateStage(r, r.NumExtensibleGroups()-1, s)
	}
	return r
}

// translateStage fills the k-th speed group of the coil record.
func (t *Translator) translateStage(r *idf.Record, k int, s *model.CoilCoolingDXMultiSpeedStageData) {
	at := func(j int) int { return r.ExtensibleIndex(k, j) }

	v, ok := s.GrossRatedTotalCoolingCapacity()
	t.setAutosizable(r, at(idf.SpeedGrossRatedTotalCoolingCapacity), v, ok, s.IsGrossRatedTotalCoolingCapacityAutosized())
	v, ok = s.GrossRatedSensibleHeatRatio()
	t.setAutosizable(r, at(idf.SpeedGrossRatedSensibleHeatRatio), v, ok, s.IsGrossRatedSensibleHeatRatioAutosized())
	t.setDefaultable(r, at(idf.SpeedGrossRatedCoolingCOP), s.GrossRatedCoolingCOP(), s.IsGrossRatedCoolingCOPDefaulted())
	v, ok = s.RatedAirFlowRate()
	t.setAutosizable(r, at(idf.SpeedRatedAirFlowRate), v, ok, s.IsRatedAirFlowRateAutosized())

	for _, f := range []struct {
		field int
		get   func() (model.Curve, bool)
	}{
		{idf.SpeedTotalCoolingCapacityFunctionOfTemperatureCurveName, s.TotalCoolingCapacityFunctionOfTemperatureCurve},
		{idf.SpeedTotalCoolingCapacityFunctionOfFlowFractionCurveName, s.TotalCoolingCapacityFunctionOfFlowFractionCurve},
		{idf.SpeedEnergyInputRatioFunctionOfTemperatureCurveName, s.EnergyInputRatioFunctionOfTemperatureCurve},
		{idf.SpeedEnergyInputRatioFunctionOfFlowFractionCurveName, s.EnergyInputRatioFunctionOfFlowFractionCurve},
		{idf.SpeedPartLoadFractionCorrelationCurveName, s.PartLoadFractionCorrelationCurve},
	} {
		c, ok := f.get()
		t.setPointer(r, at(f.field), c, ok)
	}

	t.setDefaultable(r, at(idf.SpeedRatedWasteHeatFractionOfPowerInput), s.RatedWasteHeatFractionOfPowerInput(), s.IsRatedWasteHeatFractionOfPowerInputDefaulted())
	t.setDefaultable(r, at(idf.SpeedEvaporativeCondenserEffectiveness), s.EvaporativeCondenserEffectiveness(), s.IsEvaporativeCondenserEffectivenessDefaulted())
	v, ok = s.EvaporativeCondenserAirFlowRate()
	t.setAutosizable(r, at(idf.SpeedEvaporativeCondenserAirFlowRate), v, ok, s.IsEvaporativeCondenserAirFlowRateAutosized())
	v, ok = s.RatedEvaporativeCondenserPumpPowerConsumption()
	t.setAutosizable(r, at(idf.SpeedRatedEvaporativeCondenserPumpPowerConsumption), v, ok, s.IsRatedEvaporativeCondenserPumpPowerConsumptionAutosized())
}

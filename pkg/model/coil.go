package model

import (
	"slices"

	"github.com/google/uuid"
)

// CoilCoolingDXMultiSpeed is a DX cooling coil with ordered speed stages.
//
// The order of stages is the order of speeds, from the lowest.
type CoilCoolingDXMultiSpeed struct {
	base
	availability Handle
	stages       []Handle

	condenserType         *string
	applyPartLoadFraction bool
	crankcaseCapacity     optional
	crankcaseMaxOutdoor   optional
	fuelType              *string
}

func NewCoilCoolingDXMultiSpeed(m *Model) *CoilCoolingDXMultiSpeed {
	c := &CoilCoolingDXMultiSpeed{
		base:                newBase(m, KindCoilCoolingDXMultiSpeed),
		crankcaseCapacity:   opt(0),
		crankcaseMaxOutdoor: opt(10),
	}
	m.add(c)
	return c
}

func (c *CoilCoolingDXMultiSpeed) AvailabilitySchedule() (Schedule, bool) {
	return Get[Schedule](c.model, c.availability)
}

func (c *CoilCoolingDXMultiSpeed) SetAvailabilitySchedule(s Schedule) {
	c.availability = s.Handle()
}

func (c *CoilCoolingDXMultiSpeed) ResetAvailabilitySchedule() {
	c.availability = uuid.Nil
}

func (c *CoilCoolingDXMultiSpeed) CondenserType() string {
	if c.condenserType == nil {
		return "AirCooled"
	}
	return *c.condenserType
}

func (c *CoilCoolingDXMultiSpeed) IsCondenserTypeDefaulted() bool {
	return c.condenserType == nil
}

func (c *CoilCoolingDXMultiSpeed) SetCondenserType(v string) {
	c.condenserType = &v
}

func (c *CoilCoolingDXMultiSpeed) ApplyPartLoadFractionToSpeedsGreaterThan1() bool {
	return c.applyPartLoadFraction
}

func (c *CoilCoolingDXMultiSpeed) SetApplyPartLoadFractionToSpeedsGreaterThan1(v bool) {
	c.applyPartLoadFraction = v
}

func (c *CoilCoolingDXMultiSpeed) CrankcaseHeaterCapacity() float64 {
	return c.crankcaseCapacity.get()
}

func (c *CoilCoolingDXMultiSpeed) IsCrankcaseHeaterCapacityDefaulted() bool {
	return c.crankcaseCapacity.defaulted()
}

func (c *CoilCoolingDXMultiSpeed) SetCrankcaseHeaterCapacity(v float64) {
	c.crankcaseCapacity.set(v)
}

func (c *CoilCoolingDXMultiSpeed) MaximumOutdoorDryBulbTemperatureForCrankcaseHeaterOperation() float64 {
	return c.crankcaseMaxOutdoor.get()
}

func (c *CoilCoolingDXMultiSpeed) IsMaximumOutdoorDryBulbTemperatureForCrankcaseHeaterOperationDefaulted() bool {
	return c.crankcaseMaxOutdoor.defaulted()
}

func (c *CoilCoolingDXMultiSpeed) SetMaximumOutdoorDryBulbTemperatureForCrankcaseHeaterOperation(v float64) {
	c.crankcaseMaxOutdoor.set(v)
}

func (c *CoilCoolingDXMultiSpeed) FuelType() string {
	if c.fuelType == nil {
		return "Electricity"
	}
	return *c.fuelType
}

func (c *CoilCoolingDXMultiSpeed) IsFuelTypeDefaulted() bool {
	return c.fuelType == nil
}

func (c *CoilCoolingDXMultiSpeed) SetFuelType(v string) {
	c.fuelType = &v
}

// Stages returns stages in speed order.
func (c *CoilCoolingDXMultiSpeed) Stages() []*CoilCoolingDXMultiSpeedStageData {
	ret := []*CoilCoolingDXMultiSpeedStageData{}
	for _, h := range c.stages {
		if s, ok := Get[*CoilCoolingDXMultiSpeedStageData](c.model, h); ok {
			ret = append(ret, s)
		}
	}
	return ret
}

// AddStage appends the stage as the highest speed.
//
// A stage belongs to at most one coil; a stage of another coil is rejected.
func (c *CoilCoolingDXMultiSpeed) AddStage(s *CoilCoolingDXMultiSpeedStageData) bool {
	if s == nil || s.model != c.model {
		return false
	}
	if p, ok := s.ParentCoil(); ok {
		return p.handle == c.handle && slices.Contains(c.stages, s.handle)
	}
	c.stages = append(c.stages, s.handle)
	s.coil = c.handle
	return true
}

// RemoveStage detaches the stage from the coil. The stage stays in the model.
func (c *CoilCoolingDXMultiSpeed) RemoveStage(s *CoilCoolingDXMultiSpeedStageData) bool {
	i := slices.Index(c.stages, s.Handle())
	if i < 0 {
		return false
	}
	c.stages = slices.Delete(c.stages, i, i+1)
	s.coil = uuid.Nil
	return true
}

func (c *CoilCoolingDXMultiSpeed) Children() []Object {
	ret := []Object{}
	for _, s := range c.Stages() {
		ret = append(ret, s)
	}
	return ret
}

// CoilCoolingDXMultiSpeedStageData is the performance of one speed.
type CoilCoolingDXMultiSpeedStageData struct {
	base
	coil Handle

	grossRatedTotalCoolingCapacity autosizable
	grossRatedSensibleHeatRatio    autosizable
	grossRatedCoolingCOP           optional
	ratedAirFlowRate               autosizable

	totalCoolingCapacityFunctionOfTemperature  Handle
	totalCoolingCapacityFunctionOfFlowFraction Handle
	energyInputRatioFunctionOfTemperature      Handle
	energyInputRatioFunctionOfFlowFraction     Handle
	partLoadFractionCorrelation                Handle

	ratedWasteHeatFractionOfPowerInput      optional
	evaporativeCondenserEffectiveness       optional
	evaporativeCondenserAirFlowRate         autosizable
	ratedEvaporativeCondenserPumpPowerUsage autosizable
}

func NewCoilCoolingDXMultiSpeedStageData(m *Model) *CoilCoolingDXMultiSpeedStageData {
	s := &CoilCoolingDXMultiSpeedStageData{
		base:                                    newBase(m, KindCoilCoolingDXMultiSpeedStageData),
		grossRatedTotalCoolingCapacity:          autosizable{autosized: true},
		grossRatedSensibleHeatRatio:             autosizable{autosized: true},
		grossRatedCoolingCOP:                    opt(3),
		ratedAirFlowRate:                        autosizable{autosized: true},
		ratedWasteHeatFractionOfPowerInput:      opt(0.2),
		evaporativeCondenserEffectiveness:       opt(0.9),
		evaporativeCondenserAirFlowRate:         autosizable{autosized: true},
		ratedEvaporativeCondenserPumpPowerUsage: autosizable{autosized: true},
	}
	m.add(s)
	return s
}

// ParentCoil is the coil which has this stage in its stage list.
func (s *CoilCoolingDXMultiSpeedStageData) ParentCoil() (*CoilCoolingDXMultiSpeed, bool) {
	return Get[*CoilCoolingDXMultiSpeed](s.model, s.coil)
}

func (s *CoilCoolingDXMultiSpeedStageData) beforeRemove() {
	if c, ok := s.ParentCoil(); ok {
		c.RemoveStage(s)
	}
}

func (s *CoilCoolingDXMultiSpeedStageData) GrossRatedTotalCoolingCapacity() (float64, bool) {
	return s.grossRatedTotalCoolingCapacity.get()
}

func (s *CoilCoolingDXMultiSpeedStageData) IsGrossRatedTotalCoolingCapacityAutosized() bool {
	return s.grossRatedTotalCoolingCapacity.autosized
}

func (s *CoilCoolingDXMultiSpeedStageData) SetGrossRatedTotalCoolingCapacity(v float64) {
	s.grossRatedTotalCoolingCapacity.set(v)
}

func (s *CoilCoolingDXMultiSpeedStageData) AutosizeGrossRatedTotalCoolingCapacity() {
	s.grossRatedTotalCoolingCapacity.autosize()
}

func (s *CoilCoolingDXMultiSpeedStageData) GrossRatedSensibleHeatRatio() (float64, bool) {
	return s.grossRatedSensibleHeatRatio.get()
}

func (s *CoilCoolingDXMultiSpeedStageData) IsGrossRatedSensibleHeatRatioAutosized() bool {
	return s.grossRatedSensibleHeatRatio.autosized
}

func (s *CoilCoolingDXMultiSpeedStageData) SetGrossRatedSensibleHeatRatio(v float64) {
	s.grossRatedSensibleHeatRatio.set(v)
}

func (s *CoilCoolingDXMultiSpeedStageData) AutosizeGrossRatedSensibleHeatRatio() {
	s.grossRatedSensibleHeatRatio.autosize()
}

func (s *CoilCoolingDXMultiSpeedStageData) GrossRatedCoolingCOP() float64 {
	return s.grossRatedCoolingCOP.get()
}

func (s *CoilCoolingDXMultiSpeedStageData) IsGrossRatedCoolingCOPDefaulted() bool {
	return s.grossRatedCoolingCOP.defaulted()
}

func (s *CoilCoolingDXMultiSpeedStageData) SetGrossRatedCoolingCOP(v float64) {
	s.grossRatedCoolingCOP.set(v)
}

func (s *CoilCoolingDXMultiSpeedStageData) RatedAirFlowRate() (float64, bool) {
	return s.ratedAirFlowRate.get()
}

func (s *CoilCoolingDXMultiSpeedStageData) IsRatedAirFlowRateAutosized() bool {
	return s.ratedAirFlowRate.autosized
}

func (s *CoilCoolingDXMultiSpeedStageData) SetRatedAirFlowRate(v float64) {
	s.ratedAirFlowRate.set(v)
}

func (s *CoilCoolingDXMultiSpeedStageData) AutosizeRatedAirFlowRate() {
	s.ratedAirFlowRate.autosize()
}

func (s *CoilCoolingDXMultiSpeedStageData) TotalCoolingCapacityFunctionOfTemperatureCurve() (Curve, bool) {
	return Get[Curve](s.model, s.totalCoolingCapacityFunctionOfTemperature)
}

func (s *CoilCoolingDXMultiSpeedStageData) SetTotalCoolingCapacityFunctionOfTemperatureCurve(c Curve) {
	s.totalCoolingCapacityFunctionOfTemperature = c.Handle()
}

func (s *CoilCoolingDXMultiSpeedStageData) TotalCoolingCapacityFunctionOfFlowFractionCurve() (Curve, bool) {
	return Get[Curve](s.model, s.totalCoolingCapacityFunctionOfFlowFraction)
}

func (s *CoilCoolingDXMultiSpeedStageData) SetTotalCoolingCapacityFunctionOfFlowFractionCurve(c Curve) {
	s.totalCoolingCapacityFunctionOfFlowFraction = c.Handle()
}

func (s *CoilCoolingDXMultiSpeedStageData) EnergyInputRatioFunctionOfTemperatureCurve() (Curve, bool) {
	return Get[Curve](s.model, s.energyInputRatioFunctionOfTemperature)
}

func (s *CoilCoolingDXMultiSpeedStageData) SetEnergyInputRatioFunctionOfTemperatureCurve(c Curve) {
	s.energyInputRatioFunctionOfTemperature = c.Handle()
}

func (s *CoilCoolingDXMultiSpeedStageData) EnergyInputRatioFunctionOfFlowFractionCurve() (Curve, bool) {
	return Get[Curve](s.model, s.energyInputRatioFunctionOfFlowFraction)
}

func (s *CoilCoolingDXMultiSpeedStageData) SetEnergyInputRatioFunctionOfFlowFractionCurve(c Curve) {
	s.energyInputRatioFunctionOfFlowFraction = c.Handle()
}

func (s *CoilCoolingDXMultiSpeedStageData) PartLoadFractionCorrelationCurve() (Curve, bool) {
	return Get[Curve](s.model, s.partLoadFractionCorrelation)
}

func (s *CoilCoolingDXMultiSpeedStageData) SetPartLoadFractionCorrelationCurve(c Curve) {
	s.partLoadFractionCorrelation = c.Handle()
}

func (s *CoilCoolingDXMultiSpeedStageData) RatedWasteHeatFractionOfPowerInput() float64 {
	return s.ratedWasteHeatFractionOfPowerInput.get()
}

func (s *CoilCoolingDXMultiSpeedStageData) IsRatedWasteHeatFractionOfPowerInputDefaulted() bool {
	return s.ratedWasteHeatFractionOfPowerInput.defaulted()
}

func (s *CoilCoolingDXMultiSpeedStageData) SetRatedWasteHeatFractionOfPowerInput(v float64) {
	s.ratedWasteHeatFractionOfPowerInput.set(v)
}

func (s *CoilCoolingDXMultiSpeedStageData) EvaporativeCondenserEffectiveness() float64 {
	return s.evaporativeCondenserEffectiveness.get()
}

func (s *CoilCoolingDXMultiSpeedStageData) IsEvaporativeCondenserEffectivenessDefaulted() bool {
	return s.evaporativeCondenserEffectiveness.defaulted()
}

func (s *CoilCoolingDXMultiSpeedStageData) SetEvaporativeCondenserEffectiveness(v float64) {
	s.evaporativeCondenserEffectiveness.set(v)
}

func (s *CoilCoolingDXMultiSpeedStageData) EvaporativeCondenserAirFlowRate() (float64, bool) {
	return s.evaporativeCondenserAirFlowRate.get()
}

func (s *CoilCoolingDXMultiSpeedStageData) IsEvaporativeCondenserAirFlowRateAutosized() bool {
	return s.evaporativeCondenserAirFlowRate.autosized
}

func (s *CoilCoolingDXMultiSpeedStageData) SetEvaporativeCondenserAirFlowRate(v float64) {
	s.evaporativeCondenserAirFlowRate.set(v)
}

func (s *CoilCoolingDXMultiSpeedStageData) AutosizeEvaporativeCondenserAirFlowRate() {
	s.evaporativeCondenserAirFlowRate.autosize()
}

func (s *CoilCoolingDXMultiSpeedStageData) RatedEvaporativeCondenserPumpPowerConsumption() (float64, bool) {
	return s.ratedEvaporativeCondenserPumpPowerUsage.get()
}

func (s *CoilCoolingDXMultiSpeedStageData) IsRatedEvaporativeCondenserPumpPowerConsumptionAutosized() bool {
	return s.ratedEvaporativeCondenserPumpPowerUsage.autosized
}

func (s *CoilCoolingDXMultiSpeedStageData) SetRatedEvaporativeCondenserPumpPowerConsumption(v float64) {
	s.ratedEvaporativeCondenserPumpPowerUsage.set(v)
}

func (s *CoilCoolingDXMultiSpeedStageData) AutosizeRatedEvaporativeCondenserPumpPowerConsumption() {
	s.ratedEvaporativeCondenserPumpPowerUsage.autosize()
}

package idf

// Field indices of records. Names follow "<Type><Field>".

const (
	BuildingName = iota
	BuildingNorthAxis
	BuildingTerrain
)

const (
	GlobalGeometryRulesStartingVertexPosition = iota
	GlobalGeometryRulesVertexEntryDirection
	GlobalGeometryRulesCoordinateSystem
	GlobalGeometryRulesDaylightingReferencePointCoordinateSystem
	GlobalGeometryRulesRectangularSurfaceCoordinateSystem
)

const (
	ZoneName = iota
	ZoneDirectionOfRelativeNorth
	ZoneXOrigin
	ZoneYOrigin
	ZoneZOrigin
	ZoneType
	ZoneMultiplier
	ZoneCeilingHeight
	ZoneVolume
	ZoneFloorArea
)

const (
	BuildingSurfaceDetailedName = iota
	BuildingSurfaceDetailedSurfaceType
	BuildingSurfaceDetailedConstructionName
	BuildingSurfaceDetailedZoneName
	BuildingSurfaceDetailedOutsideBoundaryCondition
	BuildingSurfaceDetailedOutsideBoundaryConditionObject
	BuildingSurfaceDetailedSunExposure
	BuildingSurfaceDetailedWindExposure
	BuildingSurfaceDetailedViewFactorToGround
	BuildingSurfaceDetailedNumberOfVertices
	BuildingSurfaceDetailedFirstVertex
)

// Wall:Detailed, RoofCeiling:Detailed and Floor:Detailed.
const (
	DetailedSurfaceName = iota
	DetailedSurfaceConstructionName
	DetailedSurfaceZoneName
	DetailedSurfaceOutsideBoundaryCondition
	DetailedSurfaceOutsideBoundaryConditionObject
	DetailedSurfaceSunExposure
	DetailedSurfaceWindExposure
	DetailedSurfaceViewFactorToGround
	DetailedSurfaceNumberOfVertices
	DetailedSurfaceFirstVertex
)

// Wall:Exterior, Wall:Adiabatic, Wall:Underground, Roof, Ceiling:Adiabatic,
// Floor:GroundContact and Floor:Adiabatic.
const (
	SimpleSurfaceName = iota
	SimpleSurfaceConstructionName
	SimpleSurfaceZoneName
	SimpleSurfaceAzimuthAngle
	SimpleSurfaceTiltAngle
	SimpleSurfaceStartingXCoordinate
	SimpleSurfaceStartingYCoordinate
	SimpleSurfaceStartingZCoordinate
	SimpleSurfaceLength
	SimpleSurfaceWidthOrHeight
)

// Wall:Interzone, Ceiling:Interzone and Floor:Interzone.
const (
	InterzoneSurfaceName = iota
	InterzoneSurfaceConstructionName
	InterzoneSurfaceZoneName
	InterzoneSurfaceOutsideBoundaryConditionObject
	InterzoneSurfaceAzimuthAngle
	InterzoneSurfaceTiltAngle
	InterzoneSurfaceStartingXCoordinate
	InterzoneSurfaceStartingYCoordinate
	InterzoneSurfaceStartingZCoordinate
	InterzoneSurfaceLength
	InterzoneSurfaceWidthOrHeight
)

const (
	FenestrationSurfaceDetailedName = iota
	FenestrationSurfaceDetailedSurfaceType
	FenestrationSurfaceDetailedConstructionName
	FenestrationSurfaceDetailedBuildingSurfaceName
	FenestrationSurfaceDetailedOutsideBoundaryConditionObject
	FenestrationSurfaceDetailedViewFactorToGround
	FenestrationSurfaceDetailedShadingControlName
	FenestrationSurfaceDetailedFrameAndDividerName
	FenestrationSurfaceDetailedMultiplier
	FenestrationSurfaceDetailedNumberOfVertices
	FenestrationSurfaceDetailedFirstVertex
)

// Window and GlazedDoor.
const (
	GlazingName = iota
	GlazingConstructionName
	GlazingBuildingSurfaceName
	GlazingShadingControlName
	GlazingFrameAndDividerName
	GlazingMultiplier
	GlazingStartingXCoordinate
	GlazingStartingZCoordinate
	GlazingLength
	GlazingHeight
)

const (
	DoorName = iota
	DoorConstructionName
	DoorBuildingSurfaceName
	DoorMultiplier
	DoorStartingXCoordinate
	DoorStartingZCoordinate
	DoorLength
	DoorHeight
)

// Window:Interzone, Door:Interzone and GlazedDoor:Interzone.
const (
	InterzoneSubSurfaceName = iota
	InterzoneSubSurfaceConstructionName
	InterzoneSubSurfaceBuildingSurfaceName
	InterzoneSubSurfaceOutsideBoundaryConditionObject
	InterzoneSubSurfaceMultiplier
	InterzoneSubSurfaceStartingXCoordinate
	InterzoneSubSurfaceStartingZCoordinate
	InterzoneSubSurfaceLength
	InterzoneSubSurfaceHeight
)

// Shading:Site and Shading:Building.
const (
	SimpleShadingName = iota
	SimpleShadingAzimuthAngle
	SimpleShadingTiltAngle
	SimpleShadingStartingXCoordinate
	SimpleShadingStartingYCoordinate
	SimpleShadingStartingZCoordinate
	SimpleShadingLength
	SimpleShadingHeight
)

// Shading:Site:Detailed and Shading:Building:Detailed.
const (
	DetailedShadingName = iota
	DetailedShadingTransmittanceScheduleName
	DetailedShadingNumberOfVertices
	DetailedShadingFirstVertex
)

const (
	ShadingZoneDetailedName = iota
	ShadingZoneDetailedBaseSurfaceName
	ShadingZoneDetailedTransmittanceScheduleName
	ShadingZoneDetailedNumberOfVertices
	ShadingZoneDetailedFirstVertex
)

// Shading:Overhang and Shading:Overhang:Projection.
const (
	OverhangName = iota
	OverhangWindowOrDoorName
	OverhangHeightAboveWindowOrDoor
	OverhangTiltAngle
	OverhangLeftExtension
	OverhangRightExtension
	OverhangDepth
)

// Shading:Fin and Shading:Fin:Projection.
const (
	FinName = iota
	FinWindowOrDoorName
	FinLeftExtension
	FinLeftDistanceAboveTop
	FinLeftDistanceBelowBottom
	FinLeftTiltAngle
	FinLeftDepth
	FinRightExtension
	FinRightDistanceAboveTop
	FinRightDistanceBelowBottom
	FinRightTiltAngle
	FinRightDepth
)

const (
	DaylightingControlsZoneName = iota
	DaylightingControlsTotalReferencePoints
	DaylightingControlsFirstX
	DaylightingControlsFirstY
	DaylightingControlsFirstZ
	DaylightingControlsSecondX
	DaylightingControlsSecondY
	DaylightingControlsSecondZ
	DaylightingControlsFirstFraction
	DaylightingControlsSecondFraction
	DaylightingControlsFirstSetpoint
	DaylightingControlsSecondSetpoint
	DaylightingControlsLightingControlType
)

const (
	OutputIlluminanceMapName = iota
	OutputIlluminanceMapZoneName
	OutputIlluminanceMapZHeight
	OutputIlluminanceMapXMinimum
	OutputIlluminanceMapXMaximum
	OutputIlluminanceMapXGridPoints
	OutputIlluminanceMapYMinimum
	OutputIlluminanceMapYMaximum
	OutputIlluminanceMapYGridPoints
)

const (
	ScheduleTypeLimitsName = iota
	ScheduleTypeLimitsLowerLimit
	ScheduleTypeLimitsUpperLimit
	ScheduleTypeLimitsNumericType
	ScheduleTypeLimitsUnitType
)

const (
	ScheduleConstantName = iota
	ScheduleConstantTypeLimitsName
	ScheduleConstantHourlyValue
)

// Curve:Quadratic, Curve:Cubic and Curve:Biquadratic share the leading name and
// coefficients. Curves have (number of coefficients) fields from CurveCoefficient1.
const (
	CurveName = iota
	CurveCoefficient1
)

const (
	MaterialName = iota
	MaterialRoughness
	MaterialThickness
	MaterialConductivity
	MaterialDensity
	MaterialSpecificHeat
	MaterialThermalAbsorptance
	MaterialSolarAbsorptance
	MaterialVisibleAbsorptance
)

const (
	ConstructionName = iota
	ConstructionFirstLayer
)

const (
	CoilCoolingDXMultiSpeedName = iota
	CoilCoolingDXMultiSpeedAvailabilityScheduleName
	CoilCoolingDXMultiSpeedAirInletNodeName
	CoilCoolingDXMultiSpeedAirOutletNodeName
	CoilCoolingDXMultiSpeedCondenserType
	CoilCoolingDXMultiSpeedApplyPartLoadFraction
	CoilCoolingDXMultiSpeedCrankcaseHeaterCapacity
	CoilCoolingDXMultiSpeedMaximumOutdoorTemperatureForCrankcaseHeater
	CoilCoolingDXMultiSpeedFuelType
	CoilCoolingDXMultiSpeedNumberOfSpeeds
	CoilCoolingDXMultiSpeedFirstSpeed
)

// Fields in a speed group of Coil:Cooling:DX:MultiSpeed.
const (
	SpeedGrossRatedTotalCoolingCapacity = iota
	SpeedGrossRatedSensibleHeatRatio
	SpeedGrossRatedCoolingCOP
	SpeedRatedAirFlowRate
	SpeedTotalCoolingCapacityFunctionOfTemperatureCurveName
	SpeedTotalCoolingCapacityFunctionOfFlowFractionCurveName
	SpeedEnergyInputRatioFunctionOfTemperatureCurveName
	SpeedEnergyInputRatioFunctionOfFlowFractionCurveName
	SpeedPartLoadFractionCorrelationCurveName
	SpeedRatedWasteHeatFractionOfPowerInput
	SpeedEvaporativeCondenserEffectiveness
	SpeedEvaporativeCondenserAirFlowRate
	SpeedRatedEvaporativeCondenserPumpPowerConsumption
)

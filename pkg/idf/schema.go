package idf

import "strings"

// ObjectType is a type tag of records.
type ObjectType string

func (t ObjectType) String() string {
	return string(t)
}

// AsObjectType finds a known ObjectType by case-insensitive name.
func AsObjectType(name string) (ObjectType, bool) {
	t, ok := typesByLowerName[strings.ToLower(strings.TrimSpace(name))]
	return t, ok
}

const (
	Version             ObjectType = "Version"
	Building            ObjectType = "Building"
	GlobalGeometryRules ObjectType = "GlobalGeometryRules"
	Zone                ObjectType = "Zone"

	BuildingSurfaceDetailed     ObjectType = "BuildingSurface:Detailed"
	WallDetailed                ObjectType = "Wall:Detailed"
	RoofCeilingDetailed         ObjectType = "RoofCeiling:Detailed"
	FloorDetailed               ObjectType = "Floor:Detailed"
	WallExterior                ObjectType = "Wall:Exterior"
	WallAdiabatic               ObjectType = "Wall:Adiabatic"
	WallUnderground             ObjectType = "Wall:Underground"
	WallInterzone               ObjectType = "Wall:Interzone"
	Roof                        ObjectType = "Roof"
	CeilingAdiabatic            ObjectType = "Ceiling:Adiabatic"
	CeilingInterzone            ObjectType = "Ceiling:Interzone"
	FloorGroundContact          ObjectType = "Floor:GroundContact"
	FloorAdiabatic              ObjectType = "Floor:Adiabatic"
	FloorInterzone              ObjectType = "Floor:Interzone"
	FenestrationSurfaceDetailed ObjectType = "FenestrationSurface:Detailed"
	Window                      ObjectType = "Window"
	Door                        ObjectType = "Door"
	GlazedDoor                  ObjectType = "GlazedDoor"
	WindowInterzone             ObjectType = "Window:Interzone"
	DoorInterzone               ObjectType = "Door:Interzone"
	GlazedDoorInterzone         ObjectType = "GlazedDoor:Interzone"

	ShadingSite               ObjectType = "Shading:Site"
	ShadingBuilding           ObjectType = "Shading:Building"
	ShadingSiteDetailed       ObjectType = "Shading:Site:Detailed"
	ShadingBuildingDetailed   ObjectType = "Shading:Building:Detailed"
	ShadingZoneDetailed       ObjectType = "Shading:Zone:Detailed"
	ShadingOverhang           ObjectType = "Shading:Overhang"
	ShadingOverhangProjection ObjectType = "Shading:Overhang:Projection"
	ShadingFin                ObjectType = "Shading:Fin"
	ShadingFinProjection      ObjectType = "Shading:Fin:Projection"

	DaylightingControls  ObjectType = "Daylighting:Controls"
	OutputIlluminanceMap ObjectType = "Output:IlluminanceMap"

	ScheduleTypeLimits ObjectType = "ScheduleTypeLimits"
	ScheduleConstant   ObjectType = "Schedule:Constant"

	CurveQuadratic   ObjectType = "Curve:Quadratic"
	CurveCubic       ObjectType = "Curve:Cubic"
	CurveBiquadratic ObjectType = "Curve:Biquadratic"

	Material     ObjectType = "Material"
	Construction ObjectType = "Construction"

	CoilCoolingDXMultiSpeed ObjectType = "Coil:Cooling:DX:MultiSpeed"
)

// Literal sentinels which can be set to numeric fields.
const (
	Autosize      = "Autosize"
	Autocalculate = "Autocalculate"
)

type FieldKind int

const (
	Alpha FieldKind = iota
	Real
	Integer
	Pointer
)

// FieldSchema describes one field of records.
type FieldSchema struct {
	Name string
	Kind FieldKind

	// Default is the value used when the field is absent. Empty means no default.
	Default string

	// Refs are candidate types of the record which the pointer field references.
	Refs []ObjectType

	// RefsBy names another field of the same record. Types in RefsByValue for its value are tried first.
	RefsBy      string
	RefsByValue map[string][]ObjectType

	Autosizable      bool
	Autocalculatable bool
}

func (f FieldSchema) HasDefault() bool {
	return f.Default != ""
}

func (f FieldSchema) IsPointer() bool {
	return f.Kind == Pointer
}

// ObjectSchema describes a record type.
type ObjectSchema struct {
	Type ObjectType

	// If true, the first field is the name of the record.
	HasName bool

	// If true, a workspace can have at most one record of this type.
	Unique bool

	// Fields are fixed fields, including the name field.
	Fields []FieldSchema

	// Extensible is the field group repeated after the fixed fields.
	Extensible []FieldSchema
}

// FieldAt returns the schema of the i-th field, taking extensible groups into account.
func (s *ObjectSchema) FieldAt(i int) (FieldSchema, bool) {
	if i < 0 {
		return FieldSchema{}, false
	}
	if i < len(s.Fields) {
		return s.Fields[i], true
	}
	if len(s.Extensible) == 0 {
		return FieldSchema{}, false
	}
	return s.Extensible[(i-len(s.Fields))%len(s.Extensible)], true
}

// FieldIndex finds the index of a fixed field by case-insensitive name.
func (s *ObjectSchema) FieldIndex(name string) (int, bool) {
	for i, f := range s.Fields {
		if strings.EqualFold(f.Name, name) {
			return i, true
		}
	}
	return -1, false
}

// IsExtensible reports whether records of the type have extensible groups.
func (s *ObjectSchema) IsExtensible() bool {
	return len(s.Extensible) != 0
}

// SchemaOf returns the schema of a known type.
func SchemaOf(t ObjectType) (*ObjectSchema, bool) {
	s, ok := schemas[t]
	return s, ok
}

// Types returns all known types.
func Types() []ObjectType {
	ret := make([]ObjectType, 0, len(schemas))
	for _, s := range schemaList {
		ret = append(ret, s.Type)
	}
	return ret
}

func alpha(name string) FieldSchema {
	return FieldSchema{Name: name, Kind: Alpha}
}

func alphaD(name, def string) FieldSchema {
	return FieldSchema{Name: name, Kind: Alpha, Default: def}
}

func number(name string) FieldSchema {
	return FieldSchema{Name: name, Kind: Real}
}

func numberD(name, def string) FieldSchema {
	return FieldSchema{Name: name, Kind: Real, Default: def}
}

func autosizable(name string) FieldSchema {
	return FieldSchema{Name: name, Kind: Real, Autosizable: true}
}

func autosizableD(name, def string) FieldSchema {
	return FieldSchema{Name: name, Kind: Real, Default: def, Autosizable: true}
}

func autocalculatable(name string) FieldSchema {
	return FieldSchema{Name: name, Kind: Real, Default: Autocalculate, Autocalculatable: true}
}

func integerD(name, def string) FieldSchema {
	return FieldSchema{Name: name, Kind: Integer, Default: def}
}

func ref(name string, refs ...ObjectType) FieldSchema {
	return FieldSchema{Name: name, Kind: Pointer, Refs: refs}
}

// refBy prefers types of f by the value of another field. Keys of byValue are lower case.
func refBy(f FieldSchema, field string, byValue map[string][]ObjectType) FieldSchema {
	f.RefsBy = field
	f.RefsByValue = byValue
	return f
}

var (
	zoneRefs     = []ObjectType{Zone}
	scheduleRefs = []ObjectType{ScheduleConstant}
	curveRefs    = []ObjectType{CurveQuadratic, CurveCubic, CurveBiquadratic}
	materialRefs = []ObjectType{Material}
	constrRefs   = []ObjectType{Construction}

	surfaceRefs = []ObjectType{
		BuildingSurfaceDetailed, WallDetailed, RoofCeilingDetailed, FloorDetailed,
		WallExterior, WallAdiabatic, WallUnderground, WallInterzone,
		Roof, CeilingAdiabatic, CeilingInterzone,
		FloorGroundContact, FloorAdiabatic, FloorInterzone,
	}
	subSurfaceRefs = []ObjectType{
		FenestrationSurfaceDetailed, Window, Door, GlazedDoor,
		WindowInterzone, DoorInterzone, GlazedDoorInterzone,
	}
	outFaceRefs    = append(append([]ObjectType{}, surfaceRefs...), Zone)
	outFaceByCond  = map[string][]ObjectType{"surface": surfaceRefs, "zone": zoneRefs}
	subOutFaceRefs = append(append([]ObjectType{}, subSurfaceRefs...), Zone)
	vertexGroup    = []FieldSchema{number("Vertex X-coordinate"), number("Vertex Y-coordinate"), number("Vertex Z-coordinate")}
)

func detailedSurfaceFields() []FieldSchema {
	return []FieldSchema{
		alpha("Name"),
		ref("Construction Name", constrRefs...),
		ref("Zone Name", zoneRefs...),
		alpha("Outside Boundary Condition"),
		refBy(ref("Outside Boundary Condition Object", outFaceRefs...), "Outside Boundary Condition", outFaceByCond),
		alphaD("Sun Exposure", "SunExposed"),
		alphaD("Wind Exposure", "WindExposed"),
		autocalculatable("View Factor to Ground"),
		autocalculatable("Number of Vertices"),
	}
}

func simpleSurfaceFields(tilt string, lastName string) []FieldSchema {
	return []FieldSchema{
		alpha("Name"),
		ref("Construction Name", constrRefs...),
		ref("Zone Name", zoneRefs...),
		number("Azimuth Angle"),
		numberD("Tilt Angle", tilt),
		number("Starting X Coordinate"),
		number("Starting Y Coordinate"),
		number("Starting Z Coordinate"),
		number("Length"),
		number(lastName),
	}
}

func interzoneSurfaceFields(tilt string, lastName string) []FieldSchema {
	return []FieldSchema{
		alpha("Name"),
		ref("Construction Name", constrRefs...),
		ref("Zone Name", zoneRefs...),
		ref("Outside Boundary Condition Object", outFaceRefs...),
		number("Azimuth Angle"),
		numberD("Tilt Angle", tilt),
		number("Starting X Coordinate"),
		number("Starting Y Coordinate"),
		number("Starting Z Coordinate"),
		number("Length"),
		number(lastName),
	}
}

func glazingFields() []FieldSchema {
	return []FieldSchema{
		alpha("Name"),
		ref("Construction Name", constrRefs...),
		ref("Building Surface Name", surfaceRefs...),
		alpha("Shading Control Name"),
		alpha("Frame and Divider Name"),
		numberD("Multiplier", "1"),
		number("Starting X Coordinate"),
		number("Starting Z Coordinate"),
		number("Length"),
		number("Height"),
	}
}

func interzoneSubSurfaceFields() []FieldSchema {
	return []FieldSchema{
		alpha("Name"),
		ref("Construction Name", constrRefs...),
		ref("Building Surface Name", surfaceRefs...),
		ref("Outside Boundary Condition Object", subOutFaceRefs...),
		numberD("Multiplier", "1"),
		number("Starting X Coordinate"),
		number("Starting Z Coordinate"),
		number("Length"),
		number("Height"),
	}
}

func simpleShadingFields() []FieldSchema {
	return []FieldSchema{
		alpha("Name"),
		number("Azimuth Angle"),
		numberD("Tilt Angle", "90"),
		number("Starting X Coordinate"),
		number("Starting Y Coordinate"),
		number("Starting Z Coordinate"),
		number("Length"),
		number("Height"),
	}
}

func finFields(depthName string) []FieldSchema {
	return []FieldSchema{
		alpha("Name"),
		ref("Window or Door Name", subSurfaceRefs...),
		number("Left Extension from Window/Door"),
		number("Left Distance Above Top of Window"),
		number("Left Distance Below Bottom of Window"),
		numberD("Left Tilt Angle from Window/Door", "90"),
		number("Left " + depthName),
		number("Right Extension from Window/Door"),
		number("Right Distance Above Top of Window"),
		number("Right Distance Below Bottom of Window"),
		numberD("Right Tilt Angle from Window/Door", "90"),
		number("Right " + depthName),
	}
}

func overhangFields(depthName string) []FieldSchema {
	return []FieldSchema{
		alpha("Name"),
		ref("Window or Door Name", subSurfaceRefs...),
		number("Height above Window or Door"),
		numberD("Tilt Angle from Window/Door", "90"),
		number("Left extension from Window/Door Width"),
		number("Right extension from Window/Door Width"),
		number(depthName),
	}
}

var schemaList = []*ObjectSchema{
	{
		Type: Version, Unique: true,
		Fields: []FieldSchema{alphaD("Version Identifier", "8.0")},
	},
	{
		Type: Building, HasName: true, Unique: true,
		Fields: []FieldSchema{
			alphaD("Name", "NONE"),
			numberD("North Axis", "0"),
			alphaD("Terrain", "Suburbs"),
			numberD("Loads Convergence Tolerance Value", "0.04"),
			numberD("Temperature Convergence Tolerance Value", "0.4"),
			alphaD("Solar Distribution", "FullExterior"),
			integerD("Maximum Number of Warmup Days", "25"),
			integerD("Minimum Number of Warmup Days", "6"),
		},
	},
	{
		Type: GlobalGeometryRules, Unique: true,
		Fields: []FieldSchema{
			alpha("Starting Vertex Position"),
			alpha("Vertex Entry Direction"),
			alphaD("Coordinate System", "Relative"),
			alphaD("Daylighting Reference Point Coordinate System", "Relative"),
			alphaD("Rectangular Surface Coordinate System", "Relative"),
		},
	},
	{
		Type: Zone, HasName: true,
		Fields: []FieldSchema{
			alpha("Name"),
			numberD("Direction of Relative North", "0"),
			numberD("X Origin", "0"),
			numberD("Y Origin", "0"),
			numberD("Z Origin", "0"),
			integerD("Type", "1"),
			integerD("Multiplier", "1"),
			autocalculatable("Ceiling Height"),
			autocalculatable("Volume"),
			autocalculatable("Floor Area"),
			alpha("Zone Inside Convection Algorithm"),
			alpha("Zone Outside Convection Algorithm"),
			alphaD("Part of Total Floor Area", "Yes"),
		},
	},
	{
		Type: BuildingSurfaceDetailed, HasName: true,
		Fields: func() []FieldSchema {
			fs := detailedSurfaceFields()
			// Surface Type comes right after Name.
			return append([]FieldSchema{fs[0], alpha("Surface Type")}, fs[1:]...)
		}(),
		Extensible: vertexGroup,
	},
	{Type: WallDetailed, HasName: true, Fields: detailedSurfaceFields(), Extensible: vertexGroup},
	{Type: RoofCeilingDetailed, HasName: true, Fields: detailedSurfaceFields(), Extensible: vertexGroup},
	{Type: FloorDetailed, HasName: true, Fields: detailedSurfaceFields(), Extensible: vertexGroup},
	{Type: WallExterior, HasName: true, Fields: simpleSurfaceFields("90", "Height")},
	{Type: WallAdiabatic, HasName: true, Fields: simpleSurfaceFields("90", "Height")},
	{Type: WallUnderground, HasName: true, Fields: simpleSurfaceFields("90", "Height")},
	{Type: WallInterzone, HasName: true, Fields: interzoneSurfaceFields("90", "Height")},
	{Type: Roof, HasName: true, Fields: simpleSurfaceFields("0", "Width")},
	{Type: CeilingAdiabatic, HasName: true, Fields: simpleSurfaceFields("0", "Width")},
	{Type: CeilingInterzone, HasName: true, Fields: interzoneSurfaceFields("0", "Width")},
	{Type: FloorGroundContact, HasName: true, Fields: simpleSurfaceFields("180", "Width")},
	{Type: FloorAdiabatic, HasName: true, Fields: simpleSurfaceFields("180", "Width")},
	{Type: FloorInterzone, HasName: true, Fields: interzoneSurfaceFields("180", "Width")},
	{
		Type: FenestrationSurfaceDetailed, HasName: true,
		Fields: []FieldSchema{
			alpha("Name"),
			alpha("Surface Type"),
			ref("Construction Name", constrRefs...),
			ref("Building Surface Name", surfaceRefs...),
			ref("Outside Boundary Condition Object", subSurfaceRefs...),
			autocalculatable("View Factor to Ground"),
			alpha("Shading Control Name"),
			alpha("Frame and Divider Name"),
			numberD("Multiplier", "1"),
			autocalculatable("Number of Vertices"),
		},
		Extensible: vertexGroup,
	},
	{Type: Window, HasName: true, Fields: glazingFields()},
	{Type: GlazedDoor, HasName: true, Fields: glazingFields()},
	{
		Type: Door, HasName: true,
		Fields: []FieldSchema{
			alpha("Name"),
			ref("Construction Name", constrRefs...),
			ref("Building Surface Name", surfaceRefs...),
			numberD("Multiplier", "1"),
			number("Starting X Coordinate"),
			number("Starting Z Coordinate"),
			number("Length"),
			number("Height"),
		},
	},
	{Type: WindowInterzone, HasName: true, Fields: interzoneSubSurfaceFields()},
	{Type: DoorInterzone, HasName: true, Fields: interzoneSubSurfaceFields()},
	{Type: GlazedDoorInterzone, HasName: true, Fields: interzoneSubSurfaceFields()},
	{Type: ShadingSite, HasName: true, Fields: simpleShadingFields()},
	{Type: ShadingBuilding, HasName: true, Fields: simpleShadingFields()},
	{
		Type: ShadingSiteDetailed, HasName: true,
		Fields: []FieldSchema{
			alpha("Name"),
			ref("Transmittance Schedule Name", scheduleRefs...),
			autocalculatable("Number of Vertices"),
		},
		Extensible: vertexGroup,
	},
	{
		Type: ShadingBuildingDetailed, HasName: true,
		Fields: []FieldSchema{
			alpha("Name"),
			ref("Transmittance Schedule Name", scheduleRefs...),
			autocalculatable("Number of Vertices"),
		},
		Extensible: vertexGroup,
	},
	{
		Type: ShadingZoneDetailed, HasName: true,
		Fields: []FieldSchema{
			alpha("Name"),
			ref("Base Surface Name", surfaceRefs...),
			ref("Transmittance Schedule Name", scheduleRefs...),
			autocalculatable("Number of Vertices"),
		},
		Extensible: vertexGroup,
	},
	{Type: ShadingOverhang, HasName: true, Fields: overhangFields("Depth")},
	{Type: ShadingOverhangProjection, HasName: true, Fields: overhangFields("Depth as Fraction of Window/Door Height")},
	{Type: ShadingFin, HasName: true, Fields: finFields("Depth")},
	{Type: ShadingFinProjection, HasName: true, Fields: finFields("Depth as Fraction of Window/Door Width")},
	{
		Type: DaylightingControls,
		Fields: []FieldSchema{
			ref("Zone Name", zoneRefs...),
			integerD("Total Daylighting Reference Points", "1"),
			number("X-Coordinate of First Reference Point"),
			number("Y-Coordinate of First Reference Point"),
			numberD("Z-Coordinate of First Reference Point", "0.8"),
			number("X-Coordinate of Second Reference Point"),
			number("Y-Coordinate of Second Reference Point"),
			numberD("Z-Coordinate of Second Reference Point", "0.8"),
			numberD("Fraction of Zone Controlled by First Reference Point", "1"),
			numberD("Fraction of Zone Controlled by Second Reference Point", "0"),
			numberD("Illuminance Setpoint at First Reference Point", "500"),
			numberD("Illuminance Setpoint at Second Reference Point", "500"),
			integerD("Lighting Control Type", "1"),
		},
	},
	{
		Type: OutputIlluminanceMap, HasName: true,
		Fields: []FieldSchema{
			alpha("Name"),
			ref("Zone Name", zoneRefs...),
			numberD("Z height", "0"),
			numberD("X Minimum Coordinate", "0"),
			numberD("X Maximum Coordinate", "1"),
			integerD("Number of X Grid Points", "2"),
			numberD("Y Minimum Coordinate", "0"),
			numberD("Y Maximum Coordinate", "1"),
			integerD("Number of Y Grid Points", "2"),
		},
	},
	{
		Type: ScheduleTypeLimits, HasName: true,
		Fields: []FieldSchema{
			alpha("Name"),
			number("Lower Limit Value"),
			number("Upper Limit Value"),
			alpha("Numeric Type"),
			alphaD("Unit Type", "Dimensionless"),
		},
	},
	{
		Type: ScheduleConstant, HasName: true,
		Fields: []FieldSchema{
			alpha("Name"),
			ref("Schedule Type Limits Name", ScheduleTypeLimits),
			numberD("Hourly Value", "0"),
		},
	},
	{
		Type: CurveQuadratic, HasName: true,
		Fields: []FieldSchema{
			alpha("Name"),
			number("Coefficient1 Constant"),
			number("Coefficient2 x"),
			number("Coefficient3 x**2"),
			number("Minimum Value of x"),
			number("Maximum Value of x"),
			number("Minimum Curve Output"),
			number("Maximum Curve Output"),
			alphaD("Input Unit Type for X", "Dimensionless"),
			alphaD("Output Unit Type", "Dimensionless"),
		},
	},
	{
		Type: CurveCubic, HasName: true,
		Fields: []FieldSchema{
			alpha("Name"),
			number("Coefficient1 Constant"),
			number("Coefficient2 x"),
			number("Coefficient3 x**2"),
			number("Coefficient4 x**3"),
			number("Minimum Value of x"),
			number("Maximum Value of x"),
			number("Minimum Curve Output"),
			number("Maximum Curve Output"),
			alphaD("Input Unit Type for X", "Dimensionless"),
			alphaD("Output Unit Type", "Dimensionless"),
		},
	},
	{
		Type: CurveBiquadratic, HasName: true,
		Fields: []FieldSchema{
			alpha("Name"),
			number("Coefficient1 Constant"),
			number("Coefficient2 x"),
			number("Coefficient3 x**2"),
			number("Coefficient4 y"),
			number("Coefficient5 y**2"),
			number("Coefficient6 x*y"),
			number("Minimum Value of x"),
			number("Maximum Value of x"),
			number("Minimum Value of y"),
			number("Maximum Value of y"),
			number("Minimum Curve Output"),
			number("Maximum Curve Output"),
			alphaD("Input Unit Type for X", "Dimensionless"),
			alphaD("Input Unit Type for Y", "Dimensionless"),
			alphaD("Output Unit Type", "Dimensionless"),
		},
	},
	{
		Type: Material, HasName: true,
		Fields: []FieldSchema{
			alpha("Name"),
			alpha("Roughness"),
			number("Thickness"),
			number("Conductivity"),
			number("Density"),
			number("Specific Heat"),
			numberD("Thermal Absorptance", "0.9"),
			numberD("Solar Absorptance", "0.7"),
			numberD("Visible Absorptance", "0.7"),
		},
	},
	{
		Type: Construction, HasName: true,
		Fields: []FieldSchema{
			alpha("Name"),
		},
		Extensible: []FieldSchema{ref("Layer", materialRefs...)},
	},
	{
		Type: CoilCoolingDXMultiSpeed, HasName: true,
		Fields: []FieldSchema{
			alpha("Name"),
			ref("Availability Schedule Name", scheduleRefs...),
			alpha("Air Inlet Node Name"),
			alpha("Air Outlet Node Name"),
			alphaD("Condenser Type", "AirCooled"),
			alphaD("Apply Part Load Fraction to Speeds Greater than 1", "No"),
			numberD("Crankcase Heater Capacity", "0"),
			numberD("Maximum Outdoor Dry-Bulb Temperature for Crankcase Heater Operation", "10"),
			alphaD("Fuel Type", "Electricity"),
			integerD("Number of Speeds", "2"),
		},
		Extensible: []FieldSchema{
			autosizableD("Speed Gross Rated Total Cooling Capacity", Autosize),
			autosizableD("Speed Gross Rated Sensible Heat Ratio", Autosize),
			numberD("Speed Gross Rated Cooling COP", "3"),
			autosizableD("Speed Rated Air Flow Rate", Autosize),
			ref("Speed Total Cooling Capacity Function of Temperature Curve Name", curveRefs...),
			ref("Speed Total Cooling Capacity Function of Flow Fraction Curve Name", curveRefs...),
			ref("Speed Energy Input Ratio Function of Temperature Curve Name", curveRefs...),
			ref("Speed Energy Input Ratio Function of Flow Fraction Curve Name", curveRefs...),
			ref("Speed Part Load Fraction Correlation Curve Name", curveRefs...),
			numberD("Speed Rated Waste Heat Fraction of Power Input", "0.2"),
			numberD("Speed Evaporative Condenser Effectiveness", "0.9"),
			autosizable("Speed Evaporative Condenser Air Flow Rate"),
			autosizable("Speed Rated Evaporative Condenser Pump Power Consumption"),
		},
	},
}

var schemas, typesByLowerName = func() (map[ObjectType]*ObjectSchema, map[string]ObjectType) {
	s := map[ObjectType]*ObjectSchema{}
	l := map[string]ObjectType{}
	for _, o := range schemaList {
		s[o.Type] = o
		l[strings.ToLower(string(o.Type))] = o.Type
	}
	return s, l
}()

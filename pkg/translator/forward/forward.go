// Package forward translates a model into a workspace of records.
package forward

import (
	"github.com/labstack/gommon/log"
	"github.com/opst/knitsim/pkg/idf"
	"github.com/opst/knitsim/pkg/model"
	"github.com/opst/knitsim/pkg/translator"
)

// Version is the version identifier of workspaces produced.
const Version = "8.0"

type translateFunc func(t *Translator, o model.Object) *idf.Record

// dispatch maps kinds of objects to their translation.
//
// Kinds not here are soft failures: nothing is emitted and the referrer leaves the field blank.
var dispatch map[model.Kind]translateFunc

func init() {
	dispatch = map[model.Kind]translateFunc{
		model.KindBuilding:                translateBuilding,
		model.KindThermalZone:             translateThermalZone,
		model.KindSurface:                 translateSurface,
		model.KindSubSurface:              translateSubSurface,
		model.KindShadingSurface:          translateShadingSurface,
		model.KindScheduleTypeLimits:      translateScheduleTypeLimits,
		model.KindScheduleConstant:        translateScheduleConstant,
		model.KindCurveQuadratic:          translateCurve(idf.CurveQuadratic),
		model.KindCurveCubic:              translateCurve(idf.CurveCubic),
		model.KindCurveBiquadratic:        translateCurve(idf.CurveBiquadratic),
		model.KindMaterial:                translateMaterial,
		model.KindConstruction:            translateConstruction,
		model.KindCoilCoolingDXMultiSpeed: translateCoilCoolingDXMultiSpeed,
	}
}

// order is the order of kinds to be walked in TranslateModel.
//
// Objects not reached from these kinds (stages, spaces, daylighting controls...)
// are translated as parts of their owners.
var order = []model.Kind{
	model.KindThermalZone,
	model.KindSurface,
	model.KindSubSurface,
	model.KindShadingSurface,
	model.KindConstruction,
	model.KindMaterial,
	model.KindScheduleTypeLimits,
	model.KindScheduleConstant,
	model.KindCurveQuadratic,
	model.KindCurveCubic,
	model.KindCurveBiquadratic,
	model.KindCoilCoolingDXMultiSpeed,
}

// Translator is the forward translator.
//
// A Translator is not safe for concurrent use. Each call of TranslateModel is one pass.
type Translator struct {
	log   *translator.Log
	funcs map[model.Kind]translateFunc

	ws   *idf.Workspace
	memo map[model.Handle]*idf.Record
}

// New creates Translator. nil logger is allowed.
func New(logger *log.Logger) *Translator {
	return &Translator{
		log:   translator.NewLog("forward", logger),
		funcs: dispatch,
	}
}

func (t *Translator) Warnings() []translator.LogMessage {
	return t.log.Warnings()
}

func (t *Translator) Errors() []translator.LogMessage {
	return t.log.Errors()
}

// TranslateModel emits records of m into a new workspace.
//
// Records are in creation order: an object referenced for the first time
// is emitted right after its referrer.
func (t *Translator) TranslateModel(m *model.Model) *idf.Workspace {
	t.log.Reset()
	t.ws = idf.NewWorkspace()
	t.memo = map[model.Handle]*idf.Record{}

	t.add(idf.MustRecord(idf.Version, Version))
	t.add(idf.MustRecord(
		idf.GlobalGeometryRules,
		"UpperLeftCorner", "Counterclockwise", "Relative", "Relative", "Relative",
	))

	if b, ok := m.Building(); ok {
		t.translateAndMap(b)
	}
	for _, k := range order {
		for _, o := range m.ObjectsByKind(k) {
			t.translateAndMap(o)
		}
	}
	for _, s := range model.All[*model.CoilCoolingDXMultiSpeedStageData](m) {
		if _, ok := s.ParentCoil(); !ok {
			t.log.Warnf("%s: not a stage of any coil. skipped", describe(s))
		}
	}

	ws := t.ws
	t.ws, t.memo = nil, nil
	return ws
}

// translateAndMap returns the record of o, translating o when it is not translated yet in this pass.
//
// It returns nil when o cannot be translated.
func (t *Translator) translateAndMap(o model.Object) *idf.Record {
	if r, ok := t.memo[o.Handle()]; ok {
		return r
	}
	f, ok := t.funcs[o.Kind()]
	if !ok {
		t.log.Errorf("%s: no translation for %s", describe(o), o.Kind())
		return nil
	}
	return f(t, o)
}

// create starts the record of o. The record is mapped and emitted before its relations are resolved.
func (t *Translator) create(o model.Object, typ idf.ObjectType) *idf.Record {
	r := idf.MustRecord(typ)
	if name, ok := o.Name(); ok && r.Schema().HasName {
		t.set(r, 0, name)
	}
	t.memo[o.Handle()] = r
	t.add(r)
	return r
}

func (t *Translator) add(r *idf.Record) {
	if err := t.ws.Add(r); err != nil {
		t.log.Errorf("%s: %s", r, err)
	}
}

func (t *Translator) set(r *idf.Record, i int, v string) {
	if err := r.SetString(i, v); err != nil {
		t.log.Errorf("%s: %s", r, err)
	}
}

func (t *Translator) setDouble(r *idf.Record, i int, v float64) {
	t.set(r, i, idf.FormatDouble(v))
}

// setDefaultable writes v unless it is defaulted. Fields without default in the schema are always written.
func (t *Translator) setDefaultable(r *idf.Record, i int, v float64, defaulted bool) {
	if f, ok := r.Schema().FieldAt(i); defaulted && ok && f.HasDefault() {
		return
	}
	t.setDouble(r, i, v)
}

func (t *Translator) setDefaultableString(r *idf.Record, i int, v string, defaulted bool) {
	if f, ok := r.Schema().FieldAt(i); defaulted && ok && f.HasDefault() {
		return
	}
	t.set(r, i, v)
}

// setAutosizable writes the sentinel when the value is autosized.
func (t *Translator) setAutosizable(r *idf.Record, i int, v float64, hasValue bool, autosized bool) {
	f, _ := r.Schema().FieldAt(i)
	switch {
	case autosized && f.Autocalculatable:
		t.set(r, i, idf.Autocalculate)
	case autosized:
		t.set(r, i, idf.Autosize)
	case hasValue:
		t.setDouble(r, i, v)
	}
}

// setPointer writes the name of the record of target.
//
// Absent targets leave the field blank. Targets which cannot be translated or have no name
// are logged, and the field is left blank.
func (t *Translator) setPointer(r *idf.Record, i int, target model.Object, present bool) {
	if !present {
		return
	}
	tr := t.translateAndMap(target)
	if tr == nil {
		return
	}
	name, ok := tr.Name()
	if !ok {
		t.log.Errorf("%s: field %d is left blank because %s has no name", r, i, tr)
		return
	}
	t.set(r, i, name)
}

func describe(o model.Object) string {
	if name, ok := o.Name(); ok {
		return string(o.Kind()) + " '" + name + "'"
	}
	return string(o.Kind()) + " <" + o.Handle().String() + ">"
}

// Package reverse translates a workspace of records into a model.
package reverse

import (
	"fmt"

	"github.com/labstack/gommon/log"
	"github.com/opst/knitsim/pkg/idf"
	"github.com/opst/knitsim/pkg/model"
	"github.com/opst/knitsim/pkg/translator"
	gt "github.com/opst/knitsim/pkg/translator/geometry"
)

type translateFunc func(t *Translator, r *idf.Record) model.Object

var dispatch map[idf.ObjectType]translateFunc

func init() {
	dispatch = map[idf.ObjectType]translateFunc{
		idf.Building:                    translateBuilding,
		idf.Zone:                        translateZone,
		idf.BuildingSurfaceDetailed:     translateBuildingSurfaceDetailed,
		idf.FenestrationSurfaceDetailed: translateFenestrationSurfaceDetailed,
		idf.ShadingSiteDetailed:         translateShading(model.ShadingSite),
		idf.ShadingBuildingDetailed:     translateShading(model.ShadingBuilding),
		idf.ShadingZoneDetailed:         translateShading(model.ShadingSpace),
		idf.DaylightingControls:         translateDaylightingControls,
		idf.ScheduleTypeLimits:          translateScheduleTypeLimits,
		idf.ScheduleConstant:            translateScheduleConstant,
		idf.CurveQuadratic:              translateCurve,
		idf.CurveCubic:                  translateCurve,
		idf.CurveBiquadratic:            translateCurve,
		idf.Material:                    translateMaterial,
		idf.Construction:                translateConstruction,
		idf.CoilCoolingDXMultiSpeed:     translateCoilCoolingDXMultiSpeed,
	}
}

// order is the order of types walked in TranslateWorkspace.
var order = []idf.ObjectType{
	idf.Building,
	idf.Zone,
	idf.BuildingSurfaceDetailed,
	idf.FenestrationSurfaceDetailed,
	idf.ShadingSiteDetailed,
	idf.ShadingBuildingDetailed,
	idf.ShadingZoneDetailed,
	idf.DaylightingControls,
	idf.ScheduleTypeLimits,
	idf.ScheduleConstant,
	idf.CurveQuadratic,
	idf.CurveCubic,
	idf.CurveBiquadratic,
	idf.Material,
	idf.Construction,
	idf.CoilCoolingDXMultiSpeed,
}

// Translator is the reverse translator.
//
// A Translator is not safe for concurrent use. Each call of TranslateWorkspace or TranslateRecord is one pass.
type Translator struct {
	log   *translator.Log
	funcs map[idf.ObjectType]translateFunc

	ws   *idf.Workspace
	m    *model.Model
	memo map[idf.Handle]model.Object

	// spaces of zone records.
	spaces map[idf.Handle]*model.Space

	// shading surface groups by type, and by space for space shadings.
	groups      map[string]*model.ShadingSurfaceGroup
	spaceGroups map[model.Handle]*model.ShadingSurfaceGroup
}

// New creates Translator. nil logger is allowed.
func New(logger *log.Logger) *Translator {
	return &Translator{
		log:   translator.NewLog("reverse", logger),
		funcs: dispatch,
	}
}

func (t *Translator) Warnings() []translator.LogMessage {
	return t.log.Warnings()
}

func (t *Translator) Errors() []translator.LogMessage {
	return t.log.Errors()
}

// begin starts a pass on a copy of ws, with geometry in relative coordinates.
func (t *Translator) begin(ws *idf.Workspace) {
	t.log.Reset()

	t.ws = ws.Clone()
	conv := gt.New(t.ws, t.log.Logger())
	if !conv.Convert(gt.Relative, gt.Relative) {
		t.log.Append(conv.Errors()...)
	}
	t.log.Append(conv.Warnings()...)

	t.m = model.New()
	t.memo = map[idf.Handle]model.Object{}
	t.spaces = map[idf.Handle]*model.Space{}
	t.groups = map[string]*model.ShadingSurfaceGroup{}
	t.spaceGroups = map[model.Handle]*model.ShadingSurfaceGroup{}
}

func (t *Translator) end() *model.Model {
	m := t.m
	t.ws, t.m, t.memo, t.spaces, t.groups, t.spaceGroups = nil, nil, nil, nil, nil, nil
	return m
}

// TranslateWorkspace builds a new model from ws.
//
// ws is not modified. Simple geometry is expanded and coordinates are made relative
// on a copy before translation.
func (t *Translator) TranslateWorkspace(ws *idf.Workspace) *model.Model {
	t.begin(ws)
	for _, typ := range order {
		for _, r := range t.ws.ObjectsByType(typ) {
			t.translateAndMap(r)
		}
	}
	return t.end()
}

// TranslateRecord translates one record of ws, and records it refers to, into a new model.
//
// It returns nil when the record is not of the type want, or cannot be translated.
// The model is available from the object returned.
func (t *Translator) TranslateRecord(ws *idf.Workspace, rec *idf.Record, want idf.ObjectType) model.Object {
	if rec.Type() != want {
		t.log.Reset()
		t.log.Errorf("%s: expected %s", rec, want)
		return nil
	}
	t.begin(ws)
	defer t.end()

	r, ok := t.ws.ObjectByHandle(rec.Handle())
	if !ok {
		// simple geometry has been replaced by detailed one with the same handle.
		t.log.Errorf("%s: not in the workspace", rec)
		return nil
	}
	return t.translateAndMap(r)
}

// translateAndMap returns the object of r, translating r when it is not translated yet in this pass.
//
// It returns nil when r cannot be translated.
func (t *Translator) translateAndMap(r *idf.Record) model.Object {
	if o, ok := t.memo[r.Handle()]; ok {
		return o
	}
	f, ok := t.funcs[r.Type()]
	if !ok {
		t.log.Errorf("%s: no translation for %s", r, r.Type())
		return nil
	}
	o := f(t, r)
	if o != nil {
		t.memo[r.Handle()] = o
	}
	return o
}

// mapped registers o as the object of r before r is translated completely.
//
// Records which can be reached again while their relations are resolved (e.g. adjacent surfaces)
// should be mapped as soon as their objects are created.
func (t *Translator) mapped(r *idf.Record, o model.Object) {
	t.memo[r.Handle()] = o
}

// target translates the record referred by the i-th field of r.
func (t *Translator) target(r *idf.Record, i int) (model.Object, *idf.Record, bool) {
	name, ok := r.GetString(i)
	if !ok {
		return nil, nil, false
	}
	tr, ok := t.ws.PointerTarget(r, i)
	if !ok {
		t.log.Warnf("%s: '%s' is not found", r, name)
		return nil, nil, false
	}
	o := t.translateAndMap(tr)
	if o == nil {
		return nil, tr, false
	}
	return o, tr, true
}

// as translates the record referred by the i-th field of r, and casts it to T.
//
// A failed cast is logged and gives false.
func as[T any](t *Translator, r *idf.Record, i int) (T, bool) {
	var zero T
	o, _, ok := t.target(r, i)
	if !ok {
		return zero, false
	}
	v, ok := o.(T)
	if !ok {
		t.log.Warnf("%s: %s cannot be used as %s", r, describe(o), typeName[T]())
		return zero, false
	}
	return v, true
}

func typeName[T any]() string {
	var p *T
	return fmt.Sprintf("%T", p)[1:]
}

func describe(o model.Object) string {
	if name, ok := o.Name(); ok {
		return string(o.Kind()) + " '" + name + "'"
	}
	return string(o.Kind()) + " <" + o.Handle().String() + ">"
}

func setName(o model.Object, r *idf.Record) {
	if name, ok := r.Name(); ok {
		o.SetName(name)
	}
}

func doubleOf(r *idf.Record, i int) (float64, bool) {
	return r.GetDouble(i)
}

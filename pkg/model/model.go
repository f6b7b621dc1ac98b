// Package model is the in-memory building model.
//
// Model owns all objects. Objects refer to each other by Handle and
// resolve them through the model; a removed object is simply not found.
package model

import (
	"fmt"
	"slices"
	"strings"

	"github.com/google/uuid"
)

type Handle = uuid.UUID

// Kind is the concrete type of objects.
type Kind string

const (
	KindBuilding                         Kind = "Building"
	KindThermalZone                      Kind = "ThermalZone"
	KindSpace                            Kind = "Space"
	KindSurface                          Kind = "Surface"
	KindSubSurface                       Kind = "SubSurface"
	KindShadingSurfaceGroup              Kind = "ShadingSurfaceGroup"
	KindShadingSurface                   Kind = "ShadingSurface"
	KindScheduleTypeLimits               Kind = "ScheduleTypeLimits"
	KindScheduleConstant                 Kind = "ScheduleConstant"
	KindCurveQuadratic                   Kind = "CurveQuadratic"
	KindCurveCubic                       Kind = "CurveCubic"
	KindCurveBiquadratic                 Kind = "CurveBiquadratic"
	KindMaterial                         Kind = "Material"
	KindConstruction                     Kind = "Construction"
	KindCoilCoolingDXMultiSpeed          Kind = "CoilCoolingDXMultiSpeed"
	KindCoilCoolingDXMultiSpeedStageData Kind = "CoilCoolingDXMultiSpeedStageData"
	KindDaylightingControl               Kind = "DaylightingControl"
)

// Object is a node of the model.
type Object interface {
	Handle() Handle
	Kind() Kind

	// Name returns the name. false if it is not named.
	Name() (string, bool)

	// SetName names the object. The name is made unique within its kind;
	// the name actually set is returned.
	SetName(string) string

	Model() *Model
}

// ParentObject has children which are removed together.
type ParentObject interface {
	Object
	Children() []Object
}

// removalHook is called before the object leaves the model.
type removalHook interface {
	beforeRemove()
}

type Model struct {
	objects map[Handle]Object
	order   []Handle
}

func New() *Model {
	return &Model{objects: map[Handle]Object{}}
}

func (m *Model) add(o Object) {
	m.objects[o.Handle()] = o
	m.order = append(m.order, o.Handle())
}

// Object finds the object with the handle.
func (m *Model) Object(h Handle) (Object, bool) {
	o, ok := m.objects[h]
	return o, ok
}

// Objects returns all objects in creation order.
func (m *Model) Objects() []Object {
	ret := make([]Object, 0, len(m.order))
	for _, h := range m.order {
		ret = append(ret, m.objects[h])
	}
	return ret
}

// ObjectsByKind returns objects of the kind in creation order.
func (m *Model) ObjectsByKind(k Kind) []Object {
	ret := []Object{}
	for _, h := range m.order {
		if o := m.objects[h]; o.Kind() == k {
			ret = append(ret, o)
		}
	}
	return ret
}

// Len counts objects.
func (m *Model) Len() int {
	return len(m.order)
}

// Remove removes the object and its children.
//
// Relations to the removed objects from others are left as handles, and do not resolve anymore.
func (m *Model) Remove(h Handle) bool {
	o, ok := m.objects[h]
	if !ok {
		return false
	}
	if p, ok := o.(ParentObject); ok {
		for _, c := range p.Children() {
			m.Remove(c.Handle())
		}
	}
	if r, ok := o.(removalHook); ok {
		r.beforeRemove()
	}
	delete(m.objects, h)
	m.order = slices.DeleteFunc(m.order, func(x Handle) bool { return x == h })
	return true
}

// Get resolves h as T.
func Get[T Object](m *Model, h Handle) (T, bool) {
	var zero T
	if m == nil || h == uuid.Nil {
		return zero, false
	}
	o, ok := m.objects[h]
	if !ok {
		return zero, false
	}
	t, ok := o.(T)
	return t, ok
}

// All returns objects of type T in creation order.
func All[T Object](m *Model) []T {
	ret := []T{}
	for _, h := range m.order {
		if t, ok := m.objects[h].(T); ok {
			ret = append(ret, t)
		}
	}
	return ret
}

// ByName finds an object of the kind by case-insensitive name.
func (m *Model) ByName(k Kind, name string) (Object, bool) {
	for _, h := range m.order {
		o := m.objects[h]
		if o.Kind() != k {
			continue
		}
		if n, ok := o.Name(); ok && strings.EqualFold(n, name) {
			return o, true
		}
	}
	return nil, false
}

func (m *Model) uniqueName(k Kind, name string, self Handle) string {
	taken := func(n string) bool {
		o, ok := m.ByName(k, n)
		return ok && o.Handle() != self
	}
	if !taken(name) {
		return name
	}
	for i := 1; ; i++ {
		if n := fmt.Sprintf("%s %d", name, i); !taken(n) {
			return n
		}
	}
}

// base is embedded in every object.
type base struct {
	handle Handle
	kind   Kind
	model  *Model
	name   *string
}

func newBase(m *Model, k Kind) base {
	return base{handle: uuid.New(), kind: k, model: m}
}

func (b *base) Handle() Handle {
	return b.handle
}

func (b *base) Kind() Kind {
	return b.kind
}

func (b *base) Model() *Model {
	return b.model
}

func (b *base) Name() (string, bool) {
	if b.name == nil {
		return "", false
	}
	return *b.name, true
}

func (b *base) SetName(name string) string {
	n := b.model.uniqueName(b.kind, name, b.handle)
	b.name = &n
	return n
}

// ResetName makes the object unnamed.
func (b *base) ResetName() {
	b.name = nil
}

// optional is a scalar falling back to its default when unset.
type optional struct {
	value *float64
	def   float64
}

func opt(def float64) optional {
	return optional{def: def}
}

func (o optional) get() float64 {
	if o.value == nil {
		return o.def
	}
	return *o.value
}

func (o optional) defaulted() bool {
	return o.value == nil
}

func (o *optional) set(v float64) {
	o.value = &v
}

func (o *optional) reset() {
	o.value = nil
}

// autosizable is a scalar which can be left to the simulation to size.
type autosizable struct {
	value     *float64
	autosized bool
}

func (a autosizable) get() (float64, bool) {
	if a.autosized || a.value == nil {
		return 0, false
	}
	return *a.value, true
}

func (a *autosizable) set(v float64) {
	a.value = &v
	a.autosized = false
}

func (a *autosizable) autosize() {
	a.value = nil
	a.autosized = true
}

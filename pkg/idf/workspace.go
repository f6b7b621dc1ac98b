package idf

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	xe "github.com/opst/knitsim/pkg/errors"
)

var (
	ErrDuplicatedName  = errors.New("duplicated name")
	ErrUniqueObject    = errors.New("unique object exists")
	ErrDanglingPointer = errors.New("dangling pointer")
	ErrNotInWorkspace  = errors.New("record is not in workspace")
)

// Workspace is an ordered collection of records.
//
// Names are unique within a type, compared case-insensitively.
type Workspace struct {
	records  []*Record
	byHandle map[Handle]int
}

func NewWorkspace() *Workspace {
	return &Workspace{byHandle: map[Handle]int{}}
}

// Len counts records.
func (w *Workspace) Len() int {
	return len(w.records)
}

// Objects returns records in insertion order.
func (w *Workspace) Objects() []*Record {
	return append([]*Record{}, w.records...)
}

// ObjectsByType returns records of any of types, in insertion order.
func (w *Workspace) ObjectsByType(types ...ObjectType) []*Record {
	ret := []*Record{}
	for _, r := range w.records {
		for _, t := range types {
			if r.Type() == t {
				ret = append(ret, r)
				break
			}
		}
	}
	return ret
}

// ObjectByHandle finds the record with the handle.
func (w *Workspace) ObjectByHandle(h Handle) (*Record, bool) {
	i, ok := w.byHandle[h]
	if !ok {
		return nil, false
	}
	return w.records[i], true
}

// ObjectByTypeAndName finds the record of type t named name.
func (w *Workspace) ObjectByTypeAndName(t ObjectType, name string) (*Record, bool) {
	for _, r := range w.records {
		if r.Type() != t {
			continue
		}
		if n, ok := r.Name(); ok && strings.EqualFold(n, name) {
			return r, true
		}
	}
	return nil, false
}

// ObjectByName finds a record named name, trying types in the given order.
func (w *Workspace) ObjectByName(name string, types ...ObjectType) (*Record, bool) {
	for _, t := range types {
		if r, ok := w.ObjectByTypeAndName(t, name); ok {
			return r, true
		}
	}
	return nil, false
}

// UniqueObject returns the record of a unique type, if any.
func (w *Workspace) UniqueObject(t ObjectType) (*Record, bool) {
	for _, r := range w.records {
		if r.Type() == t {
			return r, true
		}
	}
	return nil, false
}

func (w *Workspace) checkAddable(r *Record, except *Record) error {
	if r.schema.Unique {
		if u, ok := w.UniqueObject(r.Type()); ok && u != except {
			return xe.WrapWithNote(string(r.Type()), ErrUniqueObject)
		}
	}
	if name, ok := r.Name(); ok {
		if o, ok := w.ObjectByTypeAndName(r.Type(), name); ok && o != except {
			return xe.WrapWithNote(fmt.Sprintf("%s '%s'", r.Type(), name), ErrDuplicatedName)
		}
	}
	return nil
}

// Add appends a record.
//
// # Returns
//
// - error: ErrDuplicatedName if a record of the same type has the same name.
// ErrUniqueObject if the type is unique and already exists.
func (w *Workspace) Add(r *Record) error {
	if _, ok := w.byHandle[r.handle]; ok {
		return nil
	}
	if err := w.checkAddable(r, nil); err != nil {
		return err
	}
	w.byHandle[r.handle] = len(w.records)
	w.records = append(w.records, r)
	return nil
}

// AddObject creates and appends a record of type t.
func (w *Workspace) AddObject(t ObjectType, fields ...string) (*Record, error) {
	r, err := NewRecord(t)
	if err != nil {
		return nil, err
	}
	if err := r.SetFields(fields...); err != nil {
		return nil, err
	}
	if err := w.Add(r); err != nil {
		return nil, err
	}
	return r, nil
}

// Remove removes the record with the handle. Pointers to it become dangling.
func (w *Workspace) Remove(h Handle) bool {
	i, ok := w.byHandle[h]
	if !ok {
		return false
	}
	w.records = append(w.records[:i], w.records[i+1:]...)
	delete(w.byHandle, h)
	for j := i; j < len(w.records); j++ {
		w.byHandle[w.records[j].handle] = j
	}
	return true
}

// Swap replaces old with replacement in place.
//
// replacement takes over the handle and the position of old.
// Pointers by name keep resolving if names are the same.
func (w *Workspace) Swap(old *Record, replacement *Record) error {
	i, ok := w.byHandle[old.handle]
	if !ok {
		return xe.WrapWithNote(old.String(), ErrNotInWorkspace)
	}
	if err := w.checkAddable(replacement, old); err != nil {
		return err
	}
	replacement.handle = old.handle
	w.records[i] = replacement
	return nil
}

// PointerTarget resolves the i-th field of r as a pointer.
func (w *Workspace) PointerTarget(r *Record, i int) (*Record, bool) {
	f, ok := r.schema.FieldAt(i)
	if !ok || !f.IsPointer() {
		return nil, false
	}
	name, ok := r.GetString(i)
	if !ok {
		return nil, false
	}
	return w.ObjectByName(name, refsOf(r, f)...)
}

// refsOf orders candidate types of the pointer field f of r, preferred ones first.
func refsOf(r *Record, f FieldSchema) []ObjectType {
	if f.RefsBy == "" {
		return f.Refs
	}
	j, ok := r.schema.FieldIndex(f.RefsBy)
	if !ok {
		return f.Refs
	}
	v, ok := r.GetString(j)
	if !ok {
		return f.Refs
	}
	preferred, ok := f.RefsByValue[strings.ToLower(v)]
	if !ok {
		return f.Refs
	}
	ret := append([]ObjectType{}, preferred...)
	for _, t := range f.Refs {
		if !slices.Contains(preferred, t) {
			ret = append(ret, t)
		}
	}
	return ret
}

// Sources returns records having a pointer to target, in insertion order.
func (w *Workspace) Sources(target *Record) []*Record {
	name, ok := target.Name()
	if !ok {
		return nil
	}
	ret := []*Record{}
	for _, r := range w.records {
		for i := 0; i < r.NumFields(); i++ {
			f, ok := r.schema.FieldAt(i)
			if !ok || !f.IsPointer() || !refersTo(f, target.Type()) {
				continue
			}
			v, ok := r.GetString(i)
			if !ok || !strings.EqualFold(v, name) {
				continue
			}
			if to, ok := w.PointerTarget(r, i); ok && to.Handle() == target.Handle() {
				ret = append(ret, r)
				break
			}
		}
	}
	return ret
}

func refersTo(f FieldSchema, t ObjectType) bool {
	for _, r := range f.Refs {
		if r == t {
			return true
		}
	}
	return false
}

// Validate checks that every pointer field resolves.
//
// # Returns
//
// - error: joined errors, each of them is ErrDanglingPointer. nil if all pointers resolve.
func (w *Workspace) Validate() error {
	var errs []error
	for _, r := range w.records {
		for i := 0; i < r.NumFields(); i++ {
			f, ok := r.schema.FieldAt(i)
			if !ok || !f.IsPointer() {
				continue
			}
			v, ok := r.GetString(i)
			if !ok {
				continue
			}
			if _, ok := w.PointerTarget(r, i); !ok {
				errs = append(errs, fmt.Errorf(
					"%w: %s field '%s' = '%s'", ErrDanglingPointer, r, f.Name, v,
				))
			}
		}
	}
	return errors.Join(errs...)
}

// Clone copies the workspace and all records, keeping handles.
func (w *Workspace) Clone() *Workspace {
	ret := NewWorkspace()
	for i, r := range w.records {
		ret.records = append(ret.records, r.Clone())
		ret.byHandle[r.handle] = i
	}
	return ret
}

package idf

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	xe "github.com/opst/knitsim/pkg/errors"
)

// Handle identifies a record for its lifetime. It survives Workspace.Swap.
type Handle = uuid.UUID

var (
	ErrFieldOutOfRange  = errors.New("field index out of range")
	ErrNotExtensible    = errors.New("object type is not extensible")
	ErrUnknownType      = errors.New("unknown object type")
	ErrIncompleteGroups = errors.New("number of extensible fields is not a multiple of group width")
)

// Record is a typed, ordered list of fields.
//
// A field is absent when its value is empty.
type Record struct {
	handle Handle
	schema *ObjectSchema
	fields []string
}

// NewRecord creates a record of type t with all fixed fields absent.
func NewRecord(t ObjectType) (*Record, error) {
	s, ok := SchemaOf(t)
	if !ok {
		return nil, xe.WrapWithNote(string(t), ErrUnknownType)
	}
	return &Record{
		handle: uuid.New(),
		schema: s,
		fields: make([]string, len(s.Fields)),
	}, nil
}

// MustRecord is NewRecord for known types. It panics on unknown types.
func MustRecord(t ObjectType, fields ...string) *Record {
	r, err := NewRecord(t)
	if err != nil {
		panic(err)
	}
	if err := r.SetFields(fields...); err != nil {
		panic(err)
	}
	return r
}

func (r *Record) Handle() Handle {
	return r.handle
}

func (r *Record) Type() ObjectType {
	return r.schema.Type
}

func (r *Record) Schema() *ObjectSchema {
	return r.schema
}

// NumFields returns the count of fixed and extensible fields.
func (r *Record) NumFields() int {
	return len(r.fields)
}

// Fields returns a copy of the field values.
func (r *Record) Fields() []string {
	return append([]string{}, r.fields...)
}

// SetFields overwrites fields from the first one.
//
// Values beyond the fixed fields are taken as extensible groups.
// If only fixed fields are given, extensible groups are kept.
func (r *Record) SetFields(values ...string) error {
	nfixed := len(r.schema.Fields)
	if nfixed < len(values) {
		if !r.schema.IsExtensible() {
			return xe.WrapWithNote(
				fmt.Sprintf("%s has %d fields, but given %d", r.Type(), nfixed, len(values)),
				ErrFieldOutOfRange,
			)
		}
		if (len(values)-nfixed)%len(r.schema.Extensible) != 0 {
			return xe.WrapWithNote(string(r.Type()), ErrIncompleteGroups)
		}
	}

	fields := make([]string, max(nfixed, len(values)))
	for i, v := range values {
		fields[i] = strings.TrimSpace(v)
	}
	if len(values) <= nfixed {
		fields = append(fields, r.fields[nfixed:]...)
	}
	r.fields = fields
	return nil
}

// Name returns the name of the record. Unnamed types have no name.
func (r *Record) Name() (string, bool) {
	if !r.schema.HasName {
		return "", false
	}
	return r.GetString(0)
}

func (r *Record) SetName(name string) error {
	if !r.schema.HasName {
		return xe.WrapWithNote(string(r.Type())+" has no name", ErrFieldOutOfRange)
	}
	return r.SetString(0, name)
}

// GetString returns the raw value of the i-th field. Absent fields give false.
func (r *Record) GetString(i int) (string, bool) {
	if i < 0 || len(r.fields) <= i {
		return "", false
	}
	v := r.fields[i]
	return v, v != ""
}

// GetStringOrDefault is GetString falling back to the schema default.
func (r *Record) GetStringOrDefault(i int) (string, bool) {
	if v, ok := r.GetString(i); ok {
		return v, true
	}
	f, ok := r.schema.FieldAt(i)
	if !ok || !f.HasDefault() {
		return "", false
	}
	return f.Default, true
}

// GetDouble returns the numeric value of the i-th field.
//
// Absent fields, sentinels and non-numeric text give false.
func (r *Record) GetDouble(i int) (float64, bool) {
	v, ok := r.GetString(i)
	if !ok {
		return 0, false
	}
	return parseDouble(v)
}

// GetDoubleOrDefault is GetDouble falling back to the schema default.
func (r *Record) GetDoubleOrDefault(i int) (float64, bool) {
	v, ok := r.GetStringOrDefault(i)
	if !ok {
		return 0, false
	}
	return parseDouble(v)
}

func parseDouble(v string) (float64, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// IsAutosize reports whether the i-th field (or its default) is the Autosize sentinel.
func (r *Record) IsAutosize(i int) bool {
	v, ok := r.GetStringOrDefault(i)
	return ok && strings.EqualFold(v, Autosize)
}

// IsAutocalculate reports whether the i-th field (or its default) is the Autocalculate sentinel.
func (r *Record) IsAutocalculate(i int) bool {
	v, ok := r.GetStringOrDefault(i)
	return ok && strings.EqualFold(v, Autocalculate)
}

// SetString sets the i-th field. Empty value makes the field absent.
//
// For extensible types, i can point one group past the last; the group is added.
func (r *Record) SetString(i int, value string) error {
	if i < 0 {
		return xe.WrapWithNote(fmt.Sprintf("%s: %d", r.Type(), i), ErrFieldOutOfRange)
	}
	if len(r.fields) <= i {
		if !r.schema.IsExtensible() || i < len(r.schema.Fields) {
			return xe.WrapWithNote(fmt.Sprintf("%s: %d", r.Type(), i), ErrFieldOutOfRange)
		}
		w := len(r.schema.Extensible)
		for len(r.fields) <= i {
			r.fields = append(r.fields, make([]string, w)...)
		}
	}
	r.fields[i] = strings.TrimSpace(value)
	return nil
}

// SetDouble sets a numeric value to the i-th field.
func (r *Record) SetDouble(i int, value float64) error {
	return r.SetString(i, FormatDouble(value))
}

// Clear makes the i-th field absent.
func (r *Record) Clear(i int) error {
	return r.SetString(i, "")
}

// FormatDouble formats numbers as written in records.
func FormatDouble(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// NumExtensibleGroups counts extensible groups.
func (r *Record) NumExtensibleGroups() int {
	if !r.schema.IsExtensible() {
		return 0
	}
	return (len(r.fields) - len(r.schema.Fields)) / len(r.schema.Extensible)
}

// ExtensibleIndex returns the field index of field j in group k.
func (r *Record) ExtensibleIndex(k, j int) int {
	return len(r.schema.Fields) + k*len(r.schema.Extensible) + j
}

// ExtensibleGroup returns a copy of the k-th group.
func (r *Record) ExtensibleGroup(k int) ([]string, bool) {
	if k < 0 || r.NumExtensibleGroups() <= k {
		return nil, false
	}
	from := r.ExtensibleIndex(k, 0)
	return append([]string{}, r.fields[from:from+len(r.schema.Extensible)]...), true
}

// PushExtensibleGroup appends a group. Short groups are padded with absent fields.
func (r *Record) PushExtensibleGroup(values ...string) error {
	if !r.schema.IsExtensible() {
		return xe.WrapWithNote(string(r.Type()), ErrNotExtensible)
	}
	w := len(r.schema.Extensible)
	if w < len(values) {
		return xe.WrapWithNote(
			fmt.Sprintf("%s: group has %d fields, but given %d", r.Type(), w, len(values)),
			ErrFieldOutOfRange,
		)
	}
	g := make([]string, w)
	for i, v := range values {
		g[i] = strings.TrimSpace(v)
	}
	r.fields = append(r.fields, g...)
	return nil
}

// EraseExtensibleGroup removes the k-th group, shifting later groups.
func (r *Record) EraseExtensibleGroup(k int) ([]string, bool) {
	g, ok := r.ExtensibleGroup(k)
	if !ok {
		return nil, false
	}
	from := r.ExtensibleIndex(k, 0)
	to := from + len(r.schema.Extensible)
	r.fields = append(r.fields[:from], r.fields[to:]...)
	return g, true
}

// ClearExtensibleGroups removes all groups.
func (r *Record) ClearExtensibleGroups() {
	r.fields = r.fields[:len(r.schema.Fields)]
}

// Clone copies the record keeping its handle.
func (r *Record) Clone() *Record {
	return &Record{
		handle: r.handle,
		schema: r.schema,
		fields: append([]string{}, r.fields...),
	}
}

func (r *Record) String() string {
	if name, ok := r.Name(); ok {
		return fmt.Sprintf("%s '%s'", r.Type(), name)
	}
	return fmt.Sprintf("%s <%s>", r.Type(), r.handle)
}

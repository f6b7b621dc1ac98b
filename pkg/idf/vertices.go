package idf

import (
	"errors"
	"fmt"

	xe "github.com/opst/knitsim/pkg/errors"
	"github.com/opst/knitsim/pkg/geometry"
)

var ErrBadVertices = errors.New("bad vertices")

// IsPolygon reports whether records of the type hold vertices as extensible groups.
func IsPolygon(t ObjectType) bool {
	s, ok := SchemaOf(t)
	if !ok || len(s.Extensible) != 3 {
		return false
	}
	return s.Extensible[0].Name == "Vertex X-coordinate"
}

// Vertices reads vertices of a polygon record.
//
// # Returns
//
// - error: ErrBadVertices if less than 3 vertices or some coordinates are not numeric.
func Vertices(r *Record) ([]geometry.Point, error) {
	if !IsPolygon(r.Type()) {
		return nil, xe.WrapWithNote(string(r.Type())+" is not a polygon", ErrBadVertices)
	}
	n := r.NumExtensibleGroups()
	if n < 3 {
		return nil, xe.WrapWithNote(fmt.Sprintf("%s has %d vertices", r, n), ErrBadVertices)
	}
	ret := make([]geometry.Point, n)
	for k := range ret {
		var xyz [3]float64
		for j := range xyz {
			v, ok := r.GetDouble(r.ExtensibleIndex(k, j))
			if !ok {
				return nil, xe.WrapWithNote(fmt.Sprintf("%s vertex %d", r, k+1), ErrBadVertices)
			}
			xyz[j] = v
		}
		ret[k] = geometry.Point{X: xyz[0], Y: xyz[1], Z: xyz[2]}
	}
	return ret, nil
}

// SetVertices replaces vertices of a polygon record.
func SetVertices(r *Record, vertices []geometry.Point) error {
	if !IsPolygon(r.Type()) {
		return xe.WrapWithNote(string(r.Type())+" is not a polygon", ErrBadVertices)
	}
	r.ClearExtensibleGroups()
	for _, v := range vertices {
		if err := r.PushExtensibleGroup(FormatDouble(v.X), FormatDouble(v.Y), FormatDouble(v.Z)); err != nil {
			return err
		}
	}
	return nil
}

package model

import "github.com/opst/knitsim/pkg/geometry"

// DaylightingControl is a reference point of daylighting in a space.
type DaylightingControl struct {
	base
	space    Handle
	position geometry.Point
	setpoint optional
}

func NewDaylightingControl(m *Model) *DaylightingControl {
	d := &DaylightingControl{base: newBase(m, KindDaylightingControl), setpoint: opt(500)}
	m.add(d)
	return d
}

func (d *DaylightingControl) Space() (*Space, bool) {
	return Get[*Space](d.model, d.space)
}

func (d *DaylightingControl) SetSpace(s *Space) {
	d.space = s.Handle()
}

// Position is in the coordinates of the space.
func (d *DaylightingControl) Position() geometry.Point {
	return d.position
}

func (d *DaylightingControl) SetPosition(p geometry.Point) {
	d.position = p
}

func (d *DaylightingControl) IlluminanceSetpoint() float64 {
	return d.setpoint.get()
}

func (d *DaylightingControl) IsIlluminanceSetpointDefaulted() bool {
	return d.setpoint.defaulted()
}

func (d *DaylightingControl) SetIlluminanceSetpoint(v float64) {
	d.setpoint.set(v)
}

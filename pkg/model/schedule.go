package model

// Schedule is an object usable as a schedule.
type Schedule interface {
	Object
	ScheduleTypeLimits() (*ScheduleTypeLimits, bool)
}

type ScheduleTypeLimits struct {
	base
	lowerLimit  *float64
	upperLimit  *float64
	numericType string
	unitType    *string
}

func NewScheduleTypeLimits(m *Model) *ScheduleTypeLimits {
	l := &ScheduleTypeLimits{base: newBase(m, KindScheduleTypeLimits)}
	m.add(l)
	return l
}

func (l *ScheduleTypeLimits) LowerLimitValue() (float64, bool) {
	if l.lowerLimit == nil {
		return 0, false
	}
	return *l.lowerLimit, true
}

func (l *ScheduleTypeLimits) SetLowerLimitValue(v float64) {
	l.lowerLimit = &v
}

func (l *ScheduleTypeLimits) UpperLimitValue() (float64, bool) {
	if l.upperLimit == nil {
		return 0, false
	}
	return *l.upperLimit, true
}

func (l *ScheduleTypeLimits) SetUpperLimitValue(v float64) {
	l.upperLimit = &v
}

// NumericType is "Continuous" or "Discrete". Empty if unset.
func (l *ScheduleTypeLimits) NumericType() string {
	return l.numericType
}

func (l *ScheduleTypeLimits) SetNumericType(v string) {
	l.numericType = v
}

func (l *ScheduleTypeLimits) UnitType() string {
	if l.unitType == nil {
		return "Dimensionless"
	}
	return *l.unitType
}

func (l *ScheduleTypeLimits) IsUnitTypeDefaulted() bool {
	return l.unitType == nil
}

func (l *ScheduleTypeLimits) SetUnitType(v string) {
	l.unitType = &v
}

// ScheduleConstant has the same value all the time.
type ScheduleConstant struct {
	base
	typeLimits Handle
	value      optional
}

func NewScheduleConstant(m *Model) *ScheduleConstant {
	s := &ScheduleConstant{base: newBase(m, KindScheduleConstant), value: opt(0)}
	m.add(s)
	return s
}

func (s *ScheduleConstant) ScheduleTypeLimits() (*ScheduleTypeLimits, bool) {
	return Get[*ScheduleTypeLimits](s.model, s.typeLimits)
}

func (s *ScheduleConstant) SetScheduleTypeLimits(l *ScheduleTypeLimits) {
	s.typeLimits = l.Handle()
}

func (s *ScheduleConstant) Value() float64 {
	return s.value.get()
}

func (s *ScheduleConstant) IsValueDefaulted() bool {
	return s.value.defaulted()
}

func (s *ScheduleConstant) SetValue(v float64) {
	s.value.set(v)
}

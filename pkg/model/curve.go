package model

// Curve is a performance curve.
type Curve interface {
	Object

	// Coefficients are in order of the record fields: constant term first.
	Coefficients() []float64
	SetCoefficients(...float64) bool

	Bounds() CurveBounds
	SetBounds(CurveBounds)

	// Evaluate computes the curve at x (and y for curves of two variables).
	Evaluate(x, y float64) float64
}

// Bounds of curve variables and outputs. Unset bounds are nil.
type CurveBounds struct {
	MinimumX, MaximumX *float64
	MinimumY, MaximumY *float64

	MinimumOutput, MaximumOutput *float64
}

type curve struct {
	base
	coefficients []float64
	bounds       CurveBounds
}

func newCurve(m *Model, k Kind, n int) curve {
	return curve{base: newBase(m, k), coefficients: make([]float64, n)}
}

func (c *curve) Coefficients() []float64 {
	return append([]float64{}, c.coefficients...)
}

// SetCoefficients sets all coefficients. It fails when the count does not match.
func (c *curve) SetCoefficients(vs ...float64) bool {
	if len(vs) != len(c.coefficients) {
		return false
	}
	copy(c.coefficients, vs)
	return true
}

func (c *curve) Bounds() CurveBounds {
	return c.bounds
}

func (c *curve) SetBounds(b CurveBounds) {
	c.bounds = b
}

func (c *curve) clamp(out float64) float64 {
	if b := c.bounds.MinimumOutput; b != nil && out < *b {
		out = *b
	}
	if b := c.bounds.MaximumOutput; b != nil && *b < out {
		out = *b
	}
	return out
}

func clampVar(v float64, lo, hi *float64) float64 {
	if lo != nil && v < *lo {
		v = *lo
	}
	if hi != nil && *hi < v {
		v = *hi
	}
	return v
}

type CurveQuadratic struct {
	curve
}

func NewCurveQuadratic(m *Model) *CurveQuadratic {
	c := &CurveQuadratic{curve: newCurve(m, KindCurveQuadratic, 3)}
	m.add(c)
	return c
}

func (c *CurveQuadratic) Evaluate(x, _ float64) float64 {
	x = clampVar(x, c.bounds.MinimumX, c.bounds.MaximumX)
	k := c.coefficients
	return c.clamp(k[0]+k[1]*x+k[2]*x*x)
}

type CurveCubic struct {
	curve
}

func NewCurveCubic(m *Model) *CurveCubic {
	c := &CurveCubic{curve: newCurve(m, KindCurveCubic, 4)}
	m.add(c)
	return c
}

func (c *CurveCubic) Evaluate(x, _ float64) float64 {
	x = clampVar(x, c.bounds.MinimumX, c.bounds.MaximumX)
	k := c.coefficients
	return c.clamp(k[0]+k[1]*x+k[2]*x*x+k[3]*x*x*x)
}

type CurveBiquadratic struct {
	curve
}

func NewCurveBiquadratic(m *Model) *CurveBiquadratic {
	c := &CurveBiquadratic{curve: newCurve(m, KindCurveBiquadratic, 6)}
	m.add(c)
	return c
}

func (c *CurveBiquadratic) Evaluate(x, y float64) float64 {
	x = clampVar(x, c.bounds.MinimumX, c.bounds.MaximumX)
	y = clampVar(y, c.bounds.MinimumY, c.bounds.MaximumY)
	k := c.coefficients
	return c.clamp(k[0]+k[1]*x+k[2]*x*x+k[3]*y+k[4]*y*y+k[5]*x*y)
}

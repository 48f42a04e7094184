// Package distribution turns uniform random inputs into emission parameters.
//
// A distribution is evaluated with a random input in [0, 1) (a scalar, or one
// input per axis for vectors) and returns the concrete parameter value. The
// variant set is closed: constant, uniform range and piecewise-linear curve.
package distribution

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"gonum.org/v1/gonum/interp"
)

// Scalar evaluates a float parameter from a random input.
type Scalar interface {
	Evaluate(t float32) float32
}

// Vector evaluates a vector parameter from a per-axis random input.
type Vector interface {
	Evaluate(t mgl32.Vec3) mgl32.Vec3
}

// Constant always returns the same value.
type Constant float32

// Evaluate returns c regardless of t.
func (c Constant) Evaluate(float32) float32 {
	return float32(c)
}

// Range interpolates linearly between Min and Max.
type Range struct {
	Min, Max float32
}

// Evaluate returns Min + (Max-Min)*t.
func (r Range) Evaluate(t float32) float32 {
	return r.Min + (r.Max-r.Min)*t
}

// Key is a curve keyframe.
type Key struct {
	T     float32
	Value float32
}

// Curve is a piecewise-linear curve over its keyframes. Inputs outside the
// keyed range clamp to the first or last key.
type Curve struct {
	fit interp.PiecewiseLinear
}

// NewCurve fits a curve through keys. Keys must be sorted by strictly
// increasing T. A single key yields a flat curve.
func NewCurve(keys []Key) (*Curve, error) {
	if len(keys) == 0 {
		return nil, fmt.Errorf("%w: curve needs at least one key", ErrInvalidSpec)
	}
	if len(keys) == 1 {
		// interp needs two points; duplicate the key one unit to the right
		keys = []Key{keys[0], {T: keys[0].T + 1, Value: keys[0].Value}}
	}
	xs := make([]float64, len(keys))
	ys := make([]float64, len(keys))
	for i, k := range keys {
		if i > 0 && k.T <= keys[i-1].T {
			return nil, fmt.Errorf("%w: curve keys must have increasing t (key %d)", ErrInvalidSpec, i)
		}
		xs[i] = float64(k.T)
		ys[i] = float64(k.Value)
	}
	c := &Curve{}
	if err := c.fit.Fit(xs, ys); err != nil {
		return nil, fmt.Errorf("fitting curve: %w", err)
	}
	return c, nil
}

// Evaluate samples the curve at t.
func (c *Curve) Evaluate(t float32) float32 {
	return float32(c.fit.Predict(float64(t)))
}

// ConstantVector always returns the same vector.
type ConstantVector mgl32.Vec3

// Evaluate returns v regardless of t.
func (v ConstantVector) Evaluate(mgl32.Vec3) mgl32.Vec3 {
	return mgl32.Vec3(v)
}

// RangeVector interpolates each axis independently between Min and Max.
type RangeVector struct {
	Min, Max mgl32.Vec3
}

// Evaluate returns Min + (Max-Min)*t per axis.
func (r RangeVector) Evaluate(t mgl32.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{
		r.Min[0] + (r.Max[0]-r.Min[0])*t[0],
		r.Min[1] + (r.Max[1]-r.Min[1])*t[1],
		r.Min[2] + (r.Max[2]-r.Min[2])*t[2],
	}
}

// CurveVector holds one curve per axis; axis i is sampled with t[i].
type CurveVector struct {
	Axes [3]*Curve
}

// Evaluate samples each axis curve with its own input.
func (c CurveVector) Evaluate(t mgl32.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{
		c.Axes[0].Evaluate(t[0]),
		c.Axes[1].Evaluate(t[1]),
		c.Axes[2].Evaluate(t[2]),
	}
}

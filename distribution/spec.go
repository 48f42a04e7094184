package distribution

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

// ErrInvalidSpec is returned when a distribution spec cannot be built.
var ErrInvalidSpec = errors.New("invalid distribution spec")

// Kind names a distribution variant in config files.
type Kind string

const (
	KindConstant Kind = "constant"
	KindRange    Kind = "range"
	KindCurve    Kind = "curve"
)

// ScalarSpec is the config form of a Scalar distribution.
// An empty Kind means constant.
type ScalarSpec struct {
	Kind  Kind        `yaml:"kind,omitempty" toml:"kind"`
	Value float32     `yaml:"value,omitempty" toml:"value"`
	Min   float32     `yaml:"min,omitempty" toml:"min"`
	Max   float32     `yaml:"max,omitempty" toml:"max"`
	Keys  []ScalarKey `yaml:"keys,omitempty" toml:"keys"`
}

// Scale returns a copy of s with every value multiplied by k.
// Curve key times are unchanged.
func (s ScalarSpec) Scale(k float32) ScalarSpec {
	s.Value *= k
	s.Min *= k
	s.Max *= k
	if s.Keys != nil {
		keys := make([]ScalarKey, len(s.Keys))
		for i, key := range s.Keys {
			keys[i] = ScalarKey{T: key.T, Value: key.Value * k}
		}
		s.Keys = keys
	}
	return s
}

// ScalarKey is a config curve keyframe.
type ScalarKey struct {
	T     float32 `yaml:"t" toml:"t"`
	Value float32 `yaml:"value" toml:"value"`
}

// Build constructs the distribution described by s.
func (s ScalarSpec) Build() (Scalar, error) {
	switch s.Kind {
	case "", KindConstant:
		return Constant(s.Value), nil
	case KindRange:
		return Range{Min: s.Min, Max: s.Max}, nil
	case KindCurve:
		keys := make([]Key, len(s.Keys))
		for i, k := range s.Keys {
			keys[i] = Key{T: k.T, Value: k.Value}
		}
		return NewCurve(keys)
	default:
		return nil, fmt.Errorf("%w: unknown kind %q", ErrInvalidSpec, s.Kind)
	}
}

// Positive reports whether every value the distribution can produce for an
// input in [0, 1] is strictly positive.
func (s ScalarSpec) Positive() bool {
	switch s.Kind {
	case "", KindConstant:
		return s.Value > 0
	case KindRange:
		return s.Min > 0 && s.Max > 0
	case KindCurve:
		if len(s.Keys) == 0 {
			return false
		}
		for _, k := range s.Keys {
			if k.Value <= 0 {
				return false
			}
		}
		return true
	}
	return false
}

// VectorSpec is the config form of a Vector distribution.
// Curve keys carry one value per axis.
type VectorSpec struct {
	Kind  Kind        `yaml:"kind,omitempty" toml:"kind"`
	Value [3]float32  `yaml:"value,flow,omitempty" toml:"value"`
	Min   [3]float32  `yaml:"min,flow,omitempty" toml:"min"`
	Max   [3]float32  `yaml:"max,flow,omitempty" toml:"max"`
	Keys  []VectorKey `yaml:"keys,omitempty" toml:"keys"`
}

// VectorKey is a config curve keyframe for all three axes.
type VectorKey struct {
	T     float32    `yaml:"t" toml:"t"`
	Value [3]float32 `yaml:"value,flow" toml:"value"`
}

// Build constructs the distribution described by s.
func (s VectorSpec) Build() (Vector, error) {
	switch s.Kind {
	case "", KindConstant:
		return ConstantVector(s.Value), nil
	case KindRange:
		return RangeVector{Min: mgl32.Vec3(s.Min), Max: mgl32.Vec3(s.Max)}, nil
	case KindCurve:
		var cv CurveVector
		for axis := 0; axis < 3; axis++ {
			keys := make([]Key, len(s.Keys))
			for i, k := range s.Keys {
				keys[i] = Key{T: k.T, Value: k.Value[axis]}
			}
			c, err := NewCurve(keys)
			if err != nil {
				return nil, fmt.Errorf("axis %d: %w", axis, err)
			}
			cv.Axes[axis] = c
		}
		return cv, nil
	default:
		return nil, fmt.Errorf("%w: unknown kind %q", ErrInvalidSpec, s.Kind)
	}
}

package main

import (
	"github.com/simulation-tree/particle-systems/config"
)

// ParamSpec defines a single optimizable parameter.
type ParamSpec struct {
	Name    string  // Human-readable name
	Min     float64 // Lower bound
	Max     float64 // Upper bound
	Default float64 // Default value
}

// ParamVector holds the set of all optimizable parameters.
type ParamVector struct {
	Specs []ParamSpec
}

// NewParamVector creates the standard set of optimizable parameters.
// Both are multipliers applied to every configured emitter.
func NewParamVector() *ParamVector {
	return &ParamVector{
		Specs: []ParamSpec{
			{Name: "interval_scale", Min: 0.1, Max: 10, Default: 1},
			{Name: "lifetime_scale", Min: 0.1, Max: 10, Default: 1},
		},
	}
}

// Dim returns the number of parameters.
func (pv *ParamVector) Dim() int {
	return len(pv.Specs)
}

// DefaultVector returns the default parameter values as a slice.
func (pv *ParamVector) DefaultVector() []float64 {
	v := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		v[i] = spec.Default
	}
	return v
}

// Normalize converts raw parameter values to [0,1] range.
func (pv *ParamVector) Normalize(raw []float64) []float64 {
	normalized := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		normalized[i] = (raw[i] - spec.Min) / (spec.Max - spec.Min)
	}
	return normalized
}

// Denormalize converts [0,1] values back to raw parameter values.
func (pv *ParamVector) Denormalize(normalized []float64) []float64 {
	raw := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		raw[i] = spec.Min + normalized[i]*(spec.Max-spec.Min)
	}
	return raw
}

// Clamp ensures all values are within bounds.
func (pv *ParamVector) Clamp(v []float64) []float64 {
	clamped := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		clamped[i] = min(max(v[i], spec.Min), spec.Max)
	}
	return clamped
}

// ApplyToConfig returns a copy of base with the parameter values applied.
// The base config is not modified.
func (pv *ParamVector) ApplyToConfig(base *config.Config, values []float64) *config.Config {
	clamped := pv.Clamp(values)
	intervalScale := float32(clamped[0])
	lifetimeScale := float32(clamped[1])

	cfg := *base
	cfg.Emitters = make([]config.EmitterConfig, len(base.Emitters))
	for i, em := range base.Emitters {
		em.Interval = em.Interval.Scale(intervalScale)
		em.Lifetime = em.Lifetime.Scale(lifetimeScale)
		cfg.Emitters[i] = em
	}
	return &cfg
}

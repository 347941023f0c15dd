package main

import (
	"github.com/pthm-cable/silentrun/config"
)

// ParamSpec defines a single tunable parameter.
type ParamSpec struct {
	Name    string  // Human-readable name
	Path    string  // Config path for logging
	Min     float64 // Lower bound
	Max     float64 // Upper bound
	Default float64 // Default value
	apply   func(cfg *config.Config, v float64)
	extract func(cfg *config.Config) float64
}

// ParamVector holds the set of all tunable parameters.
type ParamVector struct {
	Specs []ParamSpec
}

// NewParamVector creates the standard set of tunables: shared AI controller
// parameters plus the hostile classes' aggression.
func NewParamVector() *ParamVector {
	return &ParamVector{
		Specs: []ParamSpec{
			{Name: "retreat_health", Path: "ai.retreat_health", Min: 0.1, Max: 0.6, Default: 0.3,
				apply:   func(c *config.Config, v float64) { c.AI.RetreatHealth = v },
				extract: func(c *config.Config) float64 { return c.AI.RetreatHealth }},
			{Name: "engage_speed", Path: "ai.engage_speed", Min: 0.3, Max: 1.0, Default: 0.7,
				apply:   func(c *config.Config, v float64) { c.AI.EngageSpeed = v },
				extract: func(c *config.Config) float64 { return c.AI.EngageSpeed }},
			{Name: "weapon_range", Path: "ai.weapon_range", Min: 1000, Max: 6000, Default: 3000,
				apply:   func(c *config.Config, v float64) { c.AI.WeaponRange = v },
				extract: func(c *config.Config) float64 { return c.AI.WeaponRange }},
			{Name: "max_engagement_time", Path: "ai.max_engagement_time", Min: 30, Max: 300, Default: 60,
				apply:   func(c *config.Config, v float64) { c.AI.MaxEngagementTime = v },
				extract: func(c *config.Config) float64 { return c.AI.MaxEngagementTime }},
			classParam("hunter", "aggressiveness", 0.2, 1.0, 0.9,
				func(t *config.AITunables) *float64 { return &t.Aggressiveness }),
			classParam("hunter", "reaction_latency", 0.5, 10, 1,
				func(t *config.AITunables) *float64 { return &t.ReactionLatency }),
			classParam("attack", "aggressiveness", 0.2, 1.0, 0.7,
				func(t *config.AITunables) *float64 { return &t.Aggressiveness }),
			classParam("escort", "evasion_skill", 0, 1, 0.7,
				func(t *config.AITunables) *float64 { return &t.EvasionSkill }),
		},
	}
}

// classParam builds a spec for one class's AI tunable. Both the YAML form and
// the derived spec are written so the run and the saved config agree.
func classParam(class, field string, lo, hi, def float64, pick func(*config.AITunables) *float64) ParamSpec {
	return ParamSpec{
		Name:    class + "_" + field,
		Path:    "classes." + class + ".ai." + field,
		Min:     lo,
		Max:     hi,
		Default: def,
		apply: func(c *config.Config, v float64) {
			for i := range c.Classes {
				if c.Classes[i].Name == class {
					*pick(&c.Classes[i].AI) = v
				}
			}
			if idx, ok := c.Derived.ClassIndex[class]; ok {
				*pick(&c.Derived.Classes[idx].AI) = v
			}
		},
		extract: func(c *config.Config) float64 {
			if idx, ok := c.Derived.ClassIndex[class]; ok {
				return *pick(&c.Derived.Classes[idx].AI)
			}
			return def
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
		clamped[i] = max(spec.Min, min(spec.Max, v[i]))
	}
	return clamped
}

// ApplyToConfig applies clamped parameter values to a Config.
func (pv *ParamVector) ApplyToConfig(cfg *config.Config, values []float64) {
	for i, v := range pv.Clamp(values) {
		pv.Specs[i].apply(cfg, v)
	}
}

// ExtractFromConfig reads the current parameter values from a Config.
func (pv *ParamVector) ExtractFromConfig(cfg *config.Config) []float64 {
	out := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		out[i] = spec.extract(cfg)
	}
	return out
}

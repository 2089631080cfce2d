// Package montecarlo prices European calls and puts by simulating
// Geometric Brownian Motion paths under the risk-neutral measure.
//
// The pipeline is Params -> Simulator -> Evaluate -> Discount. Each stage
// is a plain function of its inputs; nothing is kept between runs.
package montecarlo

import (
	"math"
)

// Params is the immutable input of one pricing run. It is passed by value
// into every stage.
type Params struct {
	Spot         float64 `json:"spot" yaml:"spot"`
	Strike       float64 `json:"strike" yaml:"strike"`
	RiskFreeRate float64 `json:"risk_free_rate" yaml:"risk_free_rate"`
	Volatility   float64 `json:"volatility" yaml:"volatility"`
	Horizon      float64 `json:"horizon" yaml:"horizon"` // years
	Steps        int     `json:"steps" yaml:"steps"`
	Paths        int     `json:"paths" yaml:"paths"`
}

// Validate checks every constraint and names the first offending field.
func (p Params) Validate() error {
	floats := []struct {
		name string
		v    float64
	}{
		{"spot", p.Spot},
		{"strike", p.Strike},
		{"risk_free_rate", p.RiskFreeRate},
		{"volatility", p.Volatility},
		{"horizon", p.Horizon},
	}
	for _, f := range floats {
		if math.IsNaN(f.v) || math.IsInf(f.v, 0) {
			return &ParameterError{Field: f.name, Value: f.v, Reason: "must be finite"}
		}
	}

	switch {
	case p.Spot <= 0:
		return &ParameterError{Field: "spot", Value: p.Spot, Reason: "must be > 0"}
	case p.Strike <= 0:
		return &ParameterError{Field: "strike", Value: p.Strike, Reason: "must be > 0"}
	case p.Volatility < 0:
		return &ParameterError{Field: "volatility", Value: p.Volatility, Reason: "must be >= 0"}
	case p.Horizon <= 0:
		return &ParameterError{Field: "horizon", Value: p.Horizon, Reason: "must be > 0"}
	case p.Steps < 1:
		return &ParameterError{Field: "steps", Value: p.Steps, Reason: "must be >= 1"}
	case p.Paths < 1:
		return &ParameterError{Field: "paths", Value: p.Paths, Reason: "must be >= 1"}
	}
	return nil
}

// Dt is the length of one time step in years.
func (p Params) Dt() float64 {
	return p.Horizon / float64(p.Steps)
}

// Drift is the constant log-space increment per step, (r - σ²/2)·dt.
func (p Params) Drift() float64 {
	return (p.RiskFreeRate - p.Volatility*p.Volatility/2) * p.Dt()
}

// DiffusionScale multiplies each standard-normal shock, σ·sqrt(dt).
func (p Params) DiffusionScale() float64 {
	return p.Volatility * math.Sqrt(p.Dt())
}

// DiscountFactor is exp(-r·horizon).
func (p Params) DiscountFactor() float64 {
	return math.Exp(-p.RiskFreeRate * p.Horizon)
}

// TerminalTime is the time of the last simulated column. Column 0 sits at
// t=0, so the last column is at (Steps-1)·dt.
func (p Params) TerminalTime() float64 {
	return float64(p.Steps-1) * p.Dt()
}

// coefficients returns drift and diffusion scale, or a NumericError when
// either cannot be represented.
func (p Params) coefficients() (drift, scale float64, err error) {
	drift, scale = p.Drift(), p.DiffusionScale()
	if math.IsNaN(drift) || math.IsInf(drift, 0) {
		return 0, 0, &NumericError{Stage: "drift", Value: drift, Path: -1, Step: -1}
	}
	if math.IsNaN(scale) || math.IsInf(scale, 0) {
		return 0, 0, &NumericError{Stage: "diffusion_scale", Value: scale, Path: -1, Step: -1}
	}
	return drift, scale, nil
}

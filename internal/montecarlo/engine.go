package montecarlo

import (
	"context"
	"fmt"
	"time"

	"github.com/contactkeval/option-mc/internal/logger"
	"github.com/contactkeval/option-mc/internal/pricing"
)

// Engine runs the full pricing pipeline.
type Engine struct {
	sim *Simulator
}

// Result is a PriceResult plus run diagnostics. The diagnostics never
// change the two prices.
type Result struct {
	PriceResult
	CallStdErr float64   `json:"call_std_err"`
	PutStdErr  float64   `json:"put_std_err"`
	Reference  Reference `json:"reference"`
	Params     Params    `json:"params"`
	Seed       uint64    `json:"seed"`
	Elapsed    Duration  `json:"elapsed"`
}

// Reference holds the closed-form Black-Scholes prices for the same inputs.
type Reference struct {
	CallPrice float64 `json:"call_price"`
	PutPrice  float64 `json:"put_price"`
}

// Duration marshals as a Go duration string, e.g. "1.2s".
type Duration time.Duration

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// NewEngine returns an Engine whose Simulator is built from opts.
func NewEngine(opts ...Option) *Engine {
	return &Engine{sim: NewSimulator(opts...)}
}

// Run validates p, simulates terminal prices, evaluates payoffs and
// discounts them.
func (e *Engine) Run(ctx context.Context, p Params, seed uint64) (*Result, error) {
	if err := p.Validate(); err != nil {
		logger.Errorf("rejected parameters: %v", err)
		return nil, err
	}

	start := time.Now()
	logger.Infof(
		"pricing run started spot=%.4f strike=%.4f r=%.4f vol=%.4f T=%.4f steps=%d paths=%d seed=%d",
		p.Spot, p.Strike, p.RiskFreeRate, p.Volatility, p.Horizon, p.Steps, p.Paths, seed,
	)

	terminal, err := e.sim.SimulateTerminal(ctx, p, seed)
	if err != nil {
		return nil, fmt.Errorf("simulate: %w", err)
	}

	call, put := Evaluate(terminal, p.Strike)

	prices, err := Discount(call, put, p.RiskFreeRate, p.Horizon)
	if err != nil {
		return nil, fmt.Errorf("discount: %w", err)
	}

	df := p.DiscountFactor()
	refCall, refPut := pricing.Prices(p.Spot, p.Strike, p.Horizon, p.RiskFreeRate, p.Volatility)

	res := &Result{
		PriceResult: prices,
		CallStdErr:  StandardError(call, df),
		PutStdErr:   StandardError(put, df),
		Reference:   Reference{CallPrice: refCall, PutPrice: refPut},
		Params:      p,
		Seed:        seed,
		Elapsed:     Duration(time.Since(start)),
	}

	logger.Infof(
		"pricing run finished call=%.4f (±%.4f, bs %.4f) put=%.4f (±%.4f, bs %.4f) in %v",
		res.CallPrice, res.CallStdErr, refCall, res.PutPrice, res.PutStdErr, refPut, time.Duration(res.Elapsed),
	)
	return res, nil
}

package montecarlo

import (
	"context"
	"errors"
	"math"
	"testing"

	"gonum.org/v1/gonum/stat"

	"github.com/contactkeval/option-mc/internal/pricing"
)

// gridReference is the closed-form value of what the simulation estimates:
// the terminal column sits at (Steps-1)·dt while discounting uses Horizon.
func gridReference(p Params) (call, put float64) {
	te := p.TerminalTime()
	carry := math.Exp(-p.RiskFreeRate * (p.Horizon - te))
	c, q := pricing.Prices(p.Spot, p.Strike, te, p.RiskFreeRate, p.Volatility)
	return carry * c, carry * q
}

func TestEngineExampleScenario(t *testing.T) {
	if testing.Short() {
		t.Skip("100k path scenario")
	}
	p := Params{Spot: 100, Strike: 100, RiskFreeRate: 0.07, Volatility: 0.2, Horizon: 1, Steps: 250, Paths: 100000}

	res, err := NewEngine().Run(context.Background(), p, 42)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	wantCall, wantPut := gridReference(p)
	if math.Abs(res.CallPrice-wantCall) > 4*res.CallStdErr {
		t.Fatalf("call %v outside 4 std errs (%v) of %v", res.CallPrice, res.CallStdErr, wantCall)
	}
	if math.Abs(res.PutPrice-wantPut) > 4*res.PutStdErr {
		t.Fatalf("put %v outside 4 std errs (%v) of %v", res.PutPrice, res.PutStdErr, wantPut)
	}
	if math.Abs(res.Reference.CallPrice-11.5415) > 1e-3 || math.Abs(res.Reference.PutPrice-4.7809) > 1e-3 {
		t.Fatalf("unexpected closed-form reference %+v", res.Reference)
	}
}

func TestEnginePricesAreNonNegative(t *testing.T) {
	cases := []Params{
		{Spot: 100, Strike: 300, RiskFreeRate: 0.01, Volatility: 0.1, Horizon: 0.25, Steps: 10, Paths: 500},
		{Spot: 100, Strike: 10, RiskFreeRate: -0.02, Volatility: 0.5, Horizon: 2, Steps: 5, Paths: 500},
		{Spot: 50, Strike: 50, RiskFreeRate: 0, Volatility: 0, Horizon: 1, Steps: 1, Paths: 1},
	}
	for _, p := range cases {
		res, err := NewEngine().Run(context.Background(), p, 11)
		if err != nil {
			t.Fatalf("%+v: unexpected error: %v", p, err)
		}
		if res.CallPrice < 0 || res.PutPrice < 0 {
			t.Fatalf("%+v: negative price %+v", p, res.PriceResult)
		}
	}
}

func TestEnginePutCallParity(t *testing.T) {
	p := baseParams()
	p.Paths = 20000
	p.Steps = 50
	seed := uint64(2024)
	sim := NewSimulator()

	res, err := NewEngine().Run(context.Background(), p, seed)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	terminal, err := sim.SimulateTerminal(context.Background(), p, seed)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// call - put discounts (S_T - K) per path
	df := p.DiscountFactor()
	se := df * stat.StdDev(terminal, nil) / math.Sqrt(float64(p.Paths))
	expected := p.Spot*math.Exp(-p.RiskFreeRate*(p.Horizon-p.TerminalTime())) - p.Strike*df

	if gap := math.Abs(res.CallPrice - res.PutPrice - expected); gap > 4*se {
		t.Fatalf("parity gap %v exceeds 4 std errs %v", gap, 4*se)
	}
}

func TestEngineDeterministic(t *testing.T) {
	p := baseParams()
	p.Paths = 3000
	p.Steps = 40

	a, err := NewEngine(WithWorkers(1)).Run(context.Background(), p, 42)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := NewEngine(WithWorkers(6)).Run(context.Background(), p, 42)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.PriceResult != b.PriceResult {
		t.Fatalf("same seed gave %+v and %+v", a.PriceResult, b.PriceResult)
	}
	if a.CallStdErr != b.CallStdErr || a.PutStdErr != b.PutStdErr {
		t.Fatalf("standard errors differ between runs")
	}
}

func TestEngineZeroVolatility(t *testing.T) {
	for _, strike := range []float64{90, 100, 120} {
		p := Params{Spot: 100, Strike: strike, RiskFreeRate: 0.07, Volatility: 0, Horizon: 1, Steps: 250, Paths: 200}

		res, err := NewEngine().Run(context.Background(), p, 1)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		forward := p.Spot * math.Exp(p.RiskFreeRate*p.TerminalTime())
		df := p.DiscountFactor()
		wantCall := math.Max(forward-strike, 0) * df
		wantPut := math.Max(strike-forward, 0) * df

		if math.Abs(res.CallPrice-wantCall) > 1e-9 {
			t.Fatalf("K=%v call: got %v want %v", strike, res.CallPrice, wantCall)
		}
		if math.Abs(res.PutPrice-wantPut) > 1e-9 {
			t.Fatalf("K=%v put: got %v want %v", strike, res.PutPrice, wantPut)
		}
		if res.CallStdErr > 1e-9 || res.PutStdErr > 1e-9 {
			t.Fatalf("K=%v: deterministic paths should have zero standard error", strike)
		}
	}
}

func TestEngineMonotoneInStrike(t *testing.T) {
	p := baseParams()
	p.Paths = 4000
	p.Steps = 20

	prevCall, prevPut := math.Inf(1), math.Inf(-1)
	for _, strike := range []float64{80, 90, 100, 110, 120} {
		p.Strike = strike
		res, err := NewEngine().Run(context.Background(), p, 77)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if res.CallPrice > prevCall {
			t.Fatalf("call rose with strike %v: %v > %v", strike, res.CallPrice, prevCall)
		}
		if res.PutPrice < prevPut {
			t.Fatalf("put fell with strike %v: %v < %v", strike, res.PutPrice, prevPut)
		}
		prevCall, prevPut = res.CallPrice, res.PutPrice
	}
}

func TestEngineConvergence(t *testing.T) {
	if testing.Short() {
		t.Skip("100k path convergence")
	}
	p := baseParams()
	p.Steps = 50
	wantCall, wantPut := gridReference(p)

	var prevSE float64
	for i, paths := range []int{1000, 100000} {
		p.Paths = paths
		res, err := NewEngine().Run(context.Background(), p, 9)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if math.Abs(res.CallPrice-wantCall) > 4*res.CallStdErr {
			t.Fatalf("paths=%d call %v not within 4 std errs of %v", paths, res.CallPrice, wantCall)
		}
		if math.Abs(res.PutPrice-wantPut) > 4*res.PutStdErr {
			t.Fatalf("paths=%d put %v not within 4 std errs of %v", paths, res.PutPrice, wantPut)
		}
		if i > 0 && res.CallStdErr >= prevSE/5 {
			t.Fatalf("standard error did not shrink: %v -> %v", prevSE, res.CallStdErr)
		}
		prevSE = res.CallStdErr
	}
}

func TestEngineRejectsInvalidParams(t *testing.T) {
	p := baseParams()
	p.Horizon = -1

	_, err := NewEngine().Run(context.Background(), p, 1)
	if !errors.Is(err, ErrInvalidParameter) {
		t.Fatalf("expected ErrInvalidParameter, got %v", err)
	}
}

func TestEngineWrapsNumericErrors(t *testing.T) {
	p := baseParams()
	p.Volatility = 1e200

	_, err := NewEngine().Run(context.Background(), p, 1)
	if !errors.Is(err, ErrNumericOverflow) {
		t.Fatalf("expected ErrNumericOverflow, got %v", err)
	}
}

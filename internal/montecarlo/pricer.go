package montecarlo

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// PriceResult is the discounted expected payoff of the call and the put.
type PriceResult struct {
	CallPrice float64 `json:"call_price"`
	PutPrice  float64 `json:"put_price"`
}

// Discount averages both payoff vectors and discounts them by
// exp(-r·horizon).
func Discount(call, put []float64, riskFreeRate, horizon float64) (PriceResult, error) {
	if len(call) == 0 || len(call) != len(put) {
		return PriceResult{}, &ParameterError{Field: "payoffs", Value: len(call), Reason: "must be non-empty and of equal length"}
	}
	df := math.Exp(-riskFreeRate * horizon)
	res := PriceResult{
		CallPrice: mean(call) * df,
		PutPrice:  mean(put) * df,
	}
	for _, v := range []struct {
		stage string
		x     float64
	}{{"call_price", res.CallPrice}, {"put_price", res.PutPrice}} {
		if math.IsNaN(v.x) || math.IsInf(v.x, 0) {
			return PriceResult{}, &NumericError{Stage: v.stage, Value: v.x, Path: -1, Step: -1}
		}
	}
	return res, nil
}

// StandardError is the Monte Carlo standard error of a discounted mean
// payoff. It is 0 for fewer than two samples.
func StandardError(payoffs []float64, discountFactor float64) float64 {
	n := len(payoffs)
	if n < 2 {
		return 0
	}
	return discountFactor * stat.StdDev(payoffs, nil) / math.Sqrt(float64(n))
}

// mean uses Neumaier compensated summation so that the result does not
// drift with path count.
func mean(xs []float64) float64 {
	var sum, c float64
	for _, x := range xs {
		t := sum + x
		if math.Abs(sum) >= math.Abs(x) {
			c += (sum - t) + x
		} else {
			c += (x - t) + sum
		}
		sum = t
	}
	return (sum + c) / float64(len(xs))
}

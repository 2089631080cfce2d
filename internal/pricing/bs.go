// Package pricing holds closed-form Black-Scholes prices used as the
// reference for Monte Carlo estimates.
package pricing

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

// BlackScholesPrice calculates the price of a European option using the Black-Scholes model.
//
// Parameters:
//   - isCall: true for call option, false for put option
//   - S: spot price of the underlying asset
//   - K: strike price of the option
//   - T: time to expiry in years
//   - r: risk-free interest rate (annual, continuously compounded)
//   - sigma: volatility of the underlying asset (annual, as a decimal)
//
// Returns:
//
//	The theoretical price of the option. With T <= 0 the intrinsic value
//	max(±(S-K), 0) is returned. With sigma <= 0 the underlying grows
//	deterministically at r and the discounted forward intrinsic value
//	max(±(S - K·e^(-rT)), 0) is returned.
func BlackScholesPrice(
	isCall bool,
	S float64, // spot
	K float64, // strike
	T float64, // time to expiry in years
	r float64, // risk-free rate
	sigma float64, // volatility
) float64 {

	sign := 1.0
	if !isCall {
		sign = -1.0
	}

	if T <= 0 {
		return math.Max(0, sign*(S-K))
	}
	if sigma <= 0 {
		return math.Max(0, sign*(S-K*math.Exp(-r*T)))
	}

	d1 := (math.Log(S/K) + (r+0.5*sigma*sigma)*T) / (sigma * math.Sqrt(T))
	d2 := d1 - sigma*math.Sqrt(T)

	if isCall {
		return S*normCDF(d1) - K*math.Exp(-r*T)*normCDF(d2)
	}
	return K*math.Exp(-r*T)*normCDF(-d2) - S*normCDF(-d1)
}

// Prices returns the closed-form call and put together.
func Prices(S, K, T, r, sigma float64) (call, put float64) {
	return BlackScholesPrice(true, S, K, T, r, sigma), BlackScholesPrice(false, S, K, T, r, sigma)
}

// normCDF is the standard normal cumulative distribution function.
func normCDF(x float64) float64 {
	return distuv.UnitNormal.CDF(x)
}

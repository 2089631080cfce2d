package montecarlo

// Floor writes max(sign·(src[i] - strike), 0) into dst. sign is +1 for a
// call and -1 for a put. dst and src must have the same length.
func Floor(dst, src []float64, sign, strike float64) {
	for i, s := range src {
		dst[i] = max(sign*(s-strike), 0)
	}
}

// Evaluate returns per-path call and put payoffs for the terminal prices.
func Evaluate(terminal []float64, strike float64) (call, put []float64) {
	call = make([]float64, len(terminal))
	put = make([]float64, len(terminal))
	Floor(call, terminal, 1, strike)
	Floor(put, terminal, -1, strike)
	return call, put
}

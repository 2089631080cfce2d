// Package marketdata resolves pricing inputs (spot and historical
// volatility) for an underlying from a market data provider.
package marketdata

import (
	"context"
	"fmt"
	"math"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/contactkeval/option-mc/internal/logger"
)

// TradingDaysPerYear annualizes daily log-return volatility.
const TradingDaysPerYear = 252.0

// Provider supplies market data
type Provider interface {
	Name() string
	Secondary() Provider
	Spot(ctx context.Context, ticker string) (float64, error)
	DailyCloses(ctx context.Context, ticker string, from, to time.Time) ([]Bar, error)
}

// Bar is one daily close.
type Bar struct {
	Date  time.Time
	Close float64
}

// NewProvider returns the Massive provider when an API key is configured
// and the synthetic provider otherwise. The synthetic provider always
// backs the Massive one as secondary.
func NewProvider(apiKey string) Provider {
	synth := NewSyntheticProvider(100, 0.25)
	if apiKey == "" {
		logger.Infof("synthetic market data provider enabled")
		return synth
	}
	logger.Infof("massive market data provider enabled")
	return NewMassiveProvider(apiKey, synth)
}

// HistoricalVolatility returns the annualized sample standard deviation
// of daily log returns.
func HistoricalVolatility(closes []float64) (float64, error) {
	if len(closes) < 3 {
		return 0, fmt.Errorf("need at least 3 closes, got %d", len(closes))
	}
	rets := make([]float64, 0, len(closes)-1)
	for i := 1; i < len(closes); i++ {
		if closes[i-1] <= 0 || closes[i] <= 0 {
			return 0, fmt.Errorf("non-positive close at index %d", i)
		}
		rets = append(rets, math.Log(closes[i]/closes[i-1]))
	}
	return stat.StdDev(rets, nil) * math.Sqrt(TradingDaysPerYear), nil
}

// Resolve fetches the spot price of ticker and estimates volatility from
// the closes of the lookbackDays calendar days before asOf. Spot is the
// provider's latest price, so it is the last close of the window only
// when asOf is today.
func Resolve(ctx context.Context, prov Provider, ticker string, lookbackDays int, asOf time.Time) (spot, vol float64, err error) {
	if lookbackDays < 5 {
		return 0, 0, fmt.Errorf("lookback of %d days is too short", lookbackDays)
	}

	logger.Debugf(
		"resolving %s via %s lookback=%dd asOf=%s",
		ticker, prov.Name(), lookbackDays, asOf.Format("2006-01-02"),
	)

	spot, err = prov.Spot(ctx, ticker)
	if err != nil {
		return 0, 0, fmt.Errorf("spot %s: %w", ticker, err)
	}

	bars, err := prov.DailyCloses(ctx, ticker, asOf.AddDate(0, 0, -lookbackDays), asOf)
	if err != nil {
		return 0, 0, fmt.Errorf("closes %s: %w", ticker, err)
	}
	closes := make([]float64, 0, len(bars))
	for _, b := range bars {
		closes = append(closes, b.Close)
	}

	vol, err = HistoricalVolatility(closes)
	if err != nil {
		return 0, 0, fmt.Errorf("volatility %s: %w", ticker, err)
	}

	logger.Infof("resolved %s spot=%.4f hist vol=%.2f%% from %d closes", ticker, spot, vol*100, len(closes))
	return spot, vol, nil
}

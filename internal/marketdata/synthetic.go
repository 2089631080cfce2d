package marketdata

import (
	"context"
	"fmt"
	"hash/fnv"
	"time"

	"github.com/contactkeval/option-mc/internal/montecarlo"
)

// seriesStart is the first close of every synthetic series. Windows are
// slices of one series per ticker, so overlapping windows agree.
var seriesStart = time.Date(2000, 1, 3, 0, 0, 0, 0, time.UTC)

// synthProvider generates a reproducible GBM close series per ticker.
type synthProvider struct {
	base      float64
	vol       float64
	now       func() time.Time
	secondary Provider
}

// NewSyntheticProvider returns a provider whose closes follow a GBM path
// starting at base on seriesStart with annual volatility vol, seeded from
// the ticker.
func NewSyntheticProvider(base, vol float64) Provider {
	return &synthProvider{base: base, vol: vol, now: time.Now}
}

func (s *synthProvider) Name() string { return "synthetic" }

func (s *synthProvider) Secondary() Provider { return s.secondary }

// Spot is the close of the most recent weekday up to today.
func (s *synthProvider) Spot(ctx context.Context, ticker string) (float64, error) {
	to := s.now().UTC().Truncate(24 * time.Hour)
	bars, err := s.DailyCloses(ctx, ticker, to.AddDate(0, 0, -7), to)
	if err != nil {
		return 0, err
	}
	return bars[len(bars)-1].Close, nil
}

// DailyCloses returns the closes of the weekdays in [from, to].
func (s *synthProvider) DailyCloses(ctx context.Context, ticker string, from, to time.Time) ([]Bar, error) {
	from = from.UTC().Truncate(24 * time.Hour)
	if to.Before(from) {
		return nil, fmt.Errorf("empty range %s..%s", from.Format("2006-01-02"), to.Format("2006-01-02"))
	}
	if from.Before(seriesStart) {
		return nil, fmt.Errorf("synthetic series starts %s, got %s", seriesStart.Format("2006-01-02"), from.Format("2006-01-02"))
	}

	var dates []time.Time
	for d := seriesStart; !d.After(to); d = d.AddDate(0, 0, 1) {
		if d.Weekday() != time.Saturday && d.Weekday() != time.Sunday {
			dates = append(dates, d)
		}
	}

	// one path over the whole series, one step per trading day
	p := montecarlo.Params{
		Spot:         s.base,
		Strike:       s.base,
		RiskFreeRate: 0,
		Volatility:   s.vol,
		Horizon:      float64(len(dates)) / TradingDaysPerYear,
		Steps:        len(dates),
		Paths:        1,
	}
	m, err := montecarlo.NewSimulator(montecarlo.WithWorkers(1)).Simulate(ctx, p, tickerSeed(ticker))
	if err != nil {
		return nil, fmt.Errorf("synthetic closes: %w", err)
	}

	row := m.Row(0)
	var out []Bar
	for i, d := range dates {
		if !d.Before(from) {
			out = append(out, Bar{Date: d, Close: row[i]})
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no weekdays in %s..%s", from.Format("2006-01-02"), to.Format("2006-01-02"))
	}
	return out, nil
}

func tickerSeed(ticker string) uint64 {
	h := fnv.New64a()
	h.Write([]byte(ticker))
	return h.Sum64()
}

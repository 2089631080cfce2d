package marketdata

import (
	"context"
	"fmt"
	"sort"
	"time"

	massive "github.com/massive-com/client-go/v2/rest"
	"github.com/massive-com/client-go/v2/rest/models"

	"github.com/contactkeval/option-mc/internal/logger"
)

// aggsClient is the subset of the Massive REST client used here.
type aggsClient interface {
	GetPreviousCloseAgg(ctx context.Context, params *models.GetPreviousCloseAggParams, options ...models.RequestOption) (*models.GetPreviousCloseAggResponse, error)
	GetAggs(ctx context.Context, params *models.GetAggsParams, options ...models.RequestOption) (*models.GetAggsResponse, error)
}

// massiveProvider implements Provider using the Massive aggregates API.
type massiveProvider struct {
	client aggsClient

	// secondary is an optional fallback provider.
	secondary Provider
}

// NewMassiveProvider constructs a Massive-backed provider. Failed requests
// are delegated to secondary when it is not nil.
func NewMassiveProvider(apiKey string, secondary Provider) Provider {
	logger.Infof("initializing Massive data provider")
	return &massiveProvider{client: massive.New(apiKey), secondary: secondary}
}

func (p *massiveProvider) Name() string { return "massive" }

// Secondary returns the configured secondary Provider, if any.
func (p *massiveProvider) Secondary() Provider { return p.secondary }

// Spot returns the previous session close.
func (p *massiveProvider) Spot(ctx context.Context, ticker string) (float64, error) {
	logger.Debugf("previous close request: %s", ticker)

	res, err := p.client.GetPreviousCloseAgg(ctx, &models.GetPreviousCloseAggParams{Ticker: ticker})
	if err == nil && (res == nil || len(res.Results) == 0) {
		err = fmt.Errorf("no previous close for %s", ticker)
	}
	if err != nil {
		if p.secondary != nil {
			logger.Infof("massive previous close failed (%v), delegating to %s", err, p.secondary.Name())
			return p.secondary.Spot(ctx, ticker)
		}
		return 0, fmt.Errorf("massive previous close: %w", err)
	}

	spot := res.Results[0].Close
	logger.Tracef("previous close %s=%.4f", ticker, spot)
	return spot, nil
}

// DailyCloses returns daily closes in ascending date order.
func (p *massiveProvider) DailyCloses(ctx context.Context, ticker string, from, to time.Time) ([]Bar, error) {
	logger.Debugf(
		"fetching daily aggs: %s from=%s to=%s",
		ticker, from.Format("2006-01-02"), to.Format("2006-01-02"),
	)

	res, err := p.client.GetAggs(ctx, &models.GetAggsParams{
		Ticker:     ticker,
		Multiplier: 1,
		Timespan:   models.Day,
		From:       models.Millis(from),
		To:         models.Millis(to),
	})
	if err != nil {
		if p.secondary != nil {
			logger.Infof("massive aggs failed (%v), delegating to %s", err, p.secondary.Name())
			return p.secondary.DailyCloses(ctx, ticker, from, to)
		}
		return nil, fmt.Errorf("massive aggs: %w", err)
	}

	out := make([]Bar, 0, len(res.Results))
	for _, agg := range res.Results {
		out = append(out, Bar{Date: time.Time(agg.Timestamp).UTC(), Close: agg.Close})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })

	logger.Tracef("aggs received: %d records", len(out))
	return out, nil
}

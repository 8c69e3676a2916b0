package shipping

import (
	"context"
	"sort"

	"github.com/reviveshine/lib2usexpress/internal/apperrors"
	"github.com/reviveshine/lib2usexpress/internal/logger"
	"github.com/reviveshine/lib2usexpress/internal/models"
)

type quoter interface {
	GetQuotes(ctx context.Context, query models.ShippingQuery) ([]models.ShippingRate, error)
}

// Aggregator fans a rate query out to every configured carrier in parallel
// Failed carriers are logged and skipped, successes are merged and sorted by
// price. The whole aggregation fails only when nobody answered
type Aggregator struct {
	carriers []quoter
	logger   logger.Logger
}

// NewAggregator builds the fan-out over carrier rate endpoints
// carriers: carrier name mapped to base URL of its quote API
func NewAggregator(carriers map[string]string, l logger.Logger) *Aggregator {
	if l == nil {
		l = logger.NewNoOpLogger()
	}

	a := &Aggregator{logger: l}
	for name, addr := range carriers {
		a.carriers = append(a.carriers, NewClient(name, addr, l))
	}

	return a
}

func (a *Aggregator) GetRates(ctx context.Context, query models.ShippingQuery) ([]models.ShippingRate, error) {
	type result struct {
		rates []models.ShippingRate
		err   error
	}

	results := make(chan result, len(a.carriers))

	for _, carrier := range a.carriers {
		go func() {
			rates, err := carrier.GetQuotes(ctx, query)
			results <- result{rates: rates, err: err}
		}()
	}

	var rates []models.ShippingRate
	for range a.carriers {
		res := <-results
		if res.err != nil {
			a.logger.Warn("carrier quote failed", "error", res.err)
			continue
		}
		rates = append(rates, res.rates...)
	}

	if len(rates) == 0 {
		return nil, apperrors.ErrNoShippingRates
	}

	sort.Slice(rates, func(i, j int) bool {
		return rates[i].CostUSD.LessThan(rates[j].CostUSD)
	})

	return rates, nil
}

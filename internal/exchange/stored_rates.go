package exchange

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"gitlab.com/afonsoc/finance-tracker/internal/models"
	"gitlab.com/afonsoc/finance-tracker/internal/repository"
)

var one = decimal.NewFromInt(1)

// StoredRates converts using rates persisted in the exchange_rates table,
// taking the most recent rate at or before the requested date. Identical
// currencies convert at rate 1 without touching storage.
type StoredRates struct {
	rates *repository.ExchangeRateRepository
}

// NewStoredRates creates a converter backed by the rate repository.
func NewStoredRates(rates *repository.ExchangeRateRepository) *StoredRates {
	return &StoredRates{rates: rates}
}

// NewConverter builds the production conversion stack: stored rates behind
// the in-memory TTL cache.
func NewConverter(rates *repository.ExchangeRateRepository, ttl time.Duration) Converter {
	return NewCachedService(NewStoredRates(rates), ttl)
}

// Convert converts amount from one currency to another as of a date.
func (s *StoredRates) Convert(
	ctx context.Context,
	amount decimal.Decimal,
	from, to models.Currency,
	on time.Time,
) (ConversionResult, error) {
	if from == to {
		return ConversionResult{
			Amount:   amount.Round(2),
			Rate:     one,
			RateDate: models.DateOnly(on),
		}, nil
	}

	rate, err := s.rates.Lookup(ctx, from, to, on)
	if err != nil {
		return ConversionResult{}, err
	}
	if err := validateConversionRate(rate.Rate); err != nil {
		return ConversionResult{}, err
	}

	return ConversionResult{
		Amount:   amount.Mul(rate.Rate).Round(2),
		Rate:     rate.Rate,
		RateDate: rate.Date,
	}, nil
}

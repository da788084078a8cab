// Package exchange converts amounts between currencies using stored rates.
package exchange

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"gitlab.com/afonsoc/finance-tracker/internal/models"
)

// ConversionResult contains converted amount details.
type ConversionResult struct {
	Amount   decimal.Decimal
	Rate     decimal.Decimal
	RateDate time.Time
}

// Converter converts an amount between currencies as of a date.
type Converter interface {
	Convert(ctx context.Context, amount decimal.Decimal, from, to models.Currency, on time.Time) (ConversionResult, error)
}

// validateConversionRate guards against nonsensical stored or cached rates.
func validateConversionRate(rate decimal.Decimal) error {
	if !rate.IsPositive() {
		return fmt.Errorf("%w: conversion rate must be positive, got %s", models.ErrValidation, rate)
	}
	return nil
}

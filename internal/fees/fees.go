// Package fees computes credit card surcharges for a charge.
//
// Two surcharges exist: the FX conversion fee an issuer charges when the
// transaction currency differs from the card's billing currency, and IOF,
// a Brazilian tax on foreign-currency transactions. IOF keys off the
// payment's country, not the card's issuer country.
package fees

import (
	"github.com/shopspring/decimal"

	"gitlab.com/afonsoc/finance-tracker/internal/models"
)

var hundred = decimal.NewFromInt(100)

// Compute returns the FX and IOF surcharges for a charge against the given
// card. It is pure: no rounding happens here, so repeated recalculation
// cannot compound rounding error. Storage rounds to 2 decimals.
func Compute(
	amount decimal.Decimal,
	chargeCurrency models.Currency,
	chargeCountry models.Country,
	card *models.CreditCard,
) (fxFee, iofFee decimal.Decimal) {
	fxFee = decimal.Zero
	iofFee = decimal.Zero
	if card == nil {
		return fxFee, iofFee
	}

	if chargeCurrency != card.Currency {
		fxFee = amount.Mul(card.FXFeePercent).Div(hundred)
	}

	if chargeCountry == models.CountryBrazil && chargeCurrency != models.CurrencyBRL {
		iofFee = amount.Mul(card.IOFPercent).Div(hundred)
	}

	return fxFee, iofFee
}

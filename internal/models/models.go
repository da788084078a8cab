// Package models defines the domain entities for the finance tracker.
package models

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Currency is an ISO 4217 currency code supported by the tracker.
type Currency string

// Supported currencies.
const (
	CurrencyBRL Currency = "BRL"
	CurrencyEUR Currency = "EUR"
	CurrencyUSD Currency = "USD"
)

// Valid reports whether the currency is one of the supported codes.
func (c Currency) Valid() bool {
	switch c {
	case CurrencyBRL, CurrencyEUR, CurrencyUSD:
		return true
	}
	return false
}

// Country is a country where payments are made or cards are issued.
type Country string

// Supported countries.
const (
	CountryBrazil   Country = "Brazil"
	CountryPortugal Country = "Portugal"
)

// Valid reports whether the country is supported.
func (c Country) Valid() bool {
	return c == CountryBrazil || c == CountryPortugal
}

// Category classifies a variable payment.
type Category string

// Variable payment categories.
const (
	CategoryFood          Category = "food"
	CategoryTransport     Category = "transport"
	CategoryEntertainment Category = "entertainment"
	CategoryHealth        Category = "health"
	CategoryEducation     Category = "education"
	CategoryShopping      Category = "shopping"
	CategoryBills         Category = "bills"
	CategoryOther         Category = "other"
)

// Valid reports whether the category is a known one.
func (c Category) Valid() bool {
	switch c {
	case CategoryFood, CategoryTransport, CategoryEntertainment, CategoryHealth,
		CategoryEducation, CategoryShopping, CategoryBills, CategoryOther:
		return true
	}
	return false
}

// Frequency is how often a fixed payment recurs.
type Frequency string

// Fixed payment frequencies.
const (
	FrequencyMonthly Frequency = "monthly"
	FrequencyYearly  Frequency = "yearly"
)

// Valid reports whether the frequency is supported.
func (f Frequency) Valid() bool {
	return f == FrequencyMonthly || f == FrequencyYearly
}

// Status is the tracking state of a payment status row.
type Status string

// Payment status values. Cancelled is never derived automatically; it is
// only ever assigned explicitly by a caller.
const (
	StatusPending   Status = "pending"
	StatusPaid      Status = "paid"
	StatusOverdue   Status = "overdue"
	StatusCancelled Status = "cancelled"
)

// Valid reports whether the status is a known one.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusPaid, StatusOverdue, StatusCancelled:
		return true
	}
	return false
}

// Profile holds a person's financial profile: base currency and monthly
// income per currency. Profiles are always addressed by ID; there is no
// implicit "current" profile.
type Profile struct {
	ID               int
	Name             string
	BaseCurrency     Currency
	MonthlyIncomeBRL decimal.Decimal
	MonthlyIncomeEUR decimal.Decimal
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// TotalMonthlyIncomeBaseCurrency returns the monthly income in the profile's
// base currency.
func (p *Profile) TotalMonthlyIncomeBaseCurrency() decimal.Decimal {
	if p.BaseCurrency == CurrencyEUR {
		return p.MonthlyIncomeEUR
	}
	return p.MonthlyIncomeBRL
}

// Validate checks profile fields.
func (p *Profile) Validate() error {
	if p.Name == "" {
		return fmt.Errorf("%w: profile name is required", ErrValidation)
	}
	if p.BaseCurrency != CurrencyBRL && p.BaseCurrency != CurrencyEUR {
		return fmt.Errorf("%w: base currency must be BRL or EUR, got %q", ErrValidation, p.BaseCurrency)
	}
	return nil
}

// CreditCard is a credit card with its fee profile. Cards own invoices
// (deleted with the card) and are weakly referenced by variable payments
// (nulled when the card is deleted).
type CreditCard struct {
	ID             int
	IssuerCountry  Country
	Currency       Currency
	FXFeePercent   decimal.Decimal
	IOFPercent     decimal.Decimal
	CardholderName string
	FinalDigits    string
	IsActive       bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Validate checks card fields.
func (c *CreditCard) Validate() error {
	if !c.IssuerCountry.Valid() {
		return fmt.Errorf("%w: invalid issuer country %q", ErrValidation, c.IssuerCountry)
	}
	if !c.Currency.Valid() {
		return fmt.Errorf("%w: invalid currency %q", ErrValidation, c.Currency)
	}
	if c.FXFeePercent.IsNegative() {
		return fmt.Errorf("%w: fx fee percent must not be negative", ErrValidation)
	}
	if c.IOFPercent.IsNegative() {
		return fmt.Errorf("%w: iof percent must not be negative", ErrValidation)
	}
	if c.CardholderName == "" {
		return fmt.Errorf("%w: cardholder name is required", ErrValidation)
	}
	if len(c.FinalDigits) != 4 {
		return fmt.Errorf("%w: final digits must be exactly 4 characters", ErrValidation)
	}
	for _, r := range c.FinalDigits {
		if r < '0' || r > '9' {
			return fmt.Errorf("%w: final digits must be numeric", ErrValidation)
		}
	}
	return nil
}

// ExchangeRate is a stored conversion rate for a currency pair on a date.
// Rates carry 6 fractional digits.
type ExchangeRate struct {
	ID           int
	FromCurrency Currency
	ToCurrency   Currency
	Rate         decimal.Decimal
	Date         time.Time
	CreatedAt    time.Time
}

// Validate checks rate fields. A pair with identical currencies must carry
// rate 1.
func (e *ExchangeRate) Validate() error {
	if !e.FromCurrency.Valid() {
		return fmt.Errorf("%w: invalid from currency %q", ErrValidation, e.FromCurrency)
	}
	if !e.ToCurrency.Valid() {
		return fmt.Errorf("%w: invalid to currency %q", ErrValidation, e.ToCurrency)
	}
	if !e.Rate.IsPositive() {
		return fmt.Errorf("%w: rate must be positive", ErrValidation)
	}
	if e.FromCurrency == e.ToCurrency && !e.Rate.Equal(decimal.NewFromInt(1)) {
		return fmt.Errorf("%w: rate for identical currencies must be 1", ErrValidation)
	}
	return nil
}

// FixedPayment is a recurring obligation (rent, subscriptions).
type FixedPayment struct {
	ID          int
	Description string
	Amount      decimal.Decimal
	Currency    Currency
	Country     Country
	Frequency   Frequency
	StartDate   time.Time
	EndDate     *time.Time
	IsActive    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// IsCurrentlyActive reports whether the payment is active on the given day:
// the active flag is set and the day falls inside [StartDate, EndDate].
func (p *FixedPayment) IsCurrentlyActive(today time.Time) bool {
	if !p.IsActive {
		return false
	}
	day := DateOnly(today)
	if day.Before(DateOnly(p.StartDate)) {
		return false
	}
	if p.EndDate != nil && day.After(DateOnly(*p.EndDate)) {
		return false
	}
	return true
}

// Validate checks fixed payment fields.
func (p *FixedPayment) Validate() error {
	if p.Description == "" {
		return fmt.Errorf("%w: description is required", ErrValidation)
	}
	if !p.Amount.IsPositive() {
		return fmt.Errorf("%w: amount must be positive", ErrValidation)
	}
	if !p.Currency.Valid() {
		return fmt.Errorf("%w: invalid currency %q", ErrValidation, p.Currency)
	}
	if !p.Country.Valid() {
		return fmt.Errorf("%w: invalid country %q", ErrValidation, p.Country)
	}
	if !p.Frequency.Valid() {
		return fmt.Errorf("%w: invalid frequency %q", ErrValidation, p.Frequency)
	}
	if p.StartDate.IsZero() {
		return fmt.Errorf("%w: start date is required", ErrValidation)
	}
	return nil
}

// VariablePayment is a one-off expense, optionally charged to a credit card.
// FXFeeAmount and IOFAmount are never set by callers; the write path derives
// them from the amount and the linked card's fee profile on every save.
type VariablePayment struct {
	ID               int
	Date             time.Time
	Description      string
	Amount           decimal.Decimal
	Currency         Currency
	Country          Country
	Category         Category
	LinkedCreditCard bool
	CreditCardID     *int
	FXFeeAmount      decimal.Decimal
	IOFAmount        decimal.Decimal
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// TotalWithFees is the charge amount plus FX and IOF surcharges.
func (p *VariablePayment) TotalWithFees() decimal.Decimal {
	return p.Amount.Add(p.FXFeeAmount).Add(p.IOFAmount)
}

// Validate checks variable payment fields.
func (p *VariablePayment) Validate() error {
	if p.Date.IsZero() {
		return fmt.Errorf("%w: date is required", ErrValidation)
	}
	if p.Description == "" {
		return fmt.Errorf("%w: description is required", ErrValidation)
	}
	if !p.Amount.IsPositive() {
		return fmt.Errorf("%w: amount must be positive", ErrValidation)
	}
	if !p.Currency.Valid() {
		return fmt.Errorf("%w: invalid currency %q", ErrValidation, p.Currency)
	}
	if !p.Country.Valid() {
		return fmt.Errorf("%w: invalid country %q", ErrValidation, p.Country)
	}
	if !p.Category.Valid() {
		return fmt.Errorf("%w: invalid category %q", ErrValidation, p.Category)
	}
	return nil
}

// CreditCardInvoice is one billing cycle of a credit card. An invoice is
// created open and closes exactly once; closing spawns the next cycle.
type CreditCardInvoice struct {
	ID           int
	CreditCardID int
	StartDate    time.Time
	EndDate      time.Time
	IsClosed     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// BillingPeriodDays is the inclusive length of the billing period in days.
func (inv *CreditCardInvoice) BillingPeriodDays() int {
	start := DateOnly(inv.StartDate)
	end := DateOnly(inv.EndDate)
	return int(end.Sub(start).Hours()/24) + 1
}

// Validate checks invoice fields.
func (inv *CreditCardInvoice) Validate() error {
	if inv.CreditCardID == 0 {
		return fmt.Errorf("%w: credit card is required", ErrValidation)
	}
	if inv.StartDate.IsZero() || inv.EndDate.IsZero() {
		return fmt.Errorf("%w: start and end dates are required", ErrValidation)
	}
	if DateOnly(inv.EndDate).Before(DateOnly(inv.StartDate)) {
		return fmt.Errorf("%w: end date must not precede start date", ErrValidation)
	}
	return nil
}

// InvoiceTotals are the read-side aggregates of an invoice. They are computed
// from attached payment status rows on every read and never stored.
type InvoiceTotals struct {
	TotalAmount    decimal.Decimal
	PurchasesCount int
}

// TotalWithFees returns the invoice total. Fees are already folded into each
// attached status row's expected amount, so this equals TotalAmount.
func (t InvoiceTotals) TotalWithFees() decimal.Decimal {
	return t.TotalAmount
}

// PaymentStatus is one row of the monthly payment checklist: did obligation X
// get paid in month Y. The referenced obligation is carried as a PaymentRef.
type PaymentStatus struct {
	ID             int
	Ref            PaymentRef
	MonthYear      time.Time
	DueDate        time.Time
	Status         Status
	IsPaid         bool
	PaidDate       *time.Time
	ExpectedAmount decimal.Decimal
	ActualAmount   *decimal.Decimal
	Currency       Currency
	Notes          string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// PaymentType is the tag of the referenced obligation kind.
func (s *PaymentStatus) PaymentType() PaymentRefKind {
	return s.Ref.Kind()
}

// IsOverdue reports whether the payment is past due and still unpaid.
func (s *PaymentStatus) IsOverdue(today time.Time) bool {
	return DateOnly(s.DueDate).Before(DateOnly(today)) && !s.IsPaid
}

// Validate checks payment status fields. The reference itself is validated
// by the PaymentRef constructor.
func (s *PaymentStatus) Validate() error {
	if !s.Ref.IsSet() {
		return fmt.Errorf("%w: exactly one payment reference must be set", ErrInvalidRef)
	}
	if s.MonthYear.IsZero() {
		return fmt.Errorf("%w: month bucket is required", ErrValidation)
	}
	if s.DueDate.IsZero() {
		return fmt.Errorf("%w: due date is required", ErrValidation)
	}
	if s.Status != "" && !s.Status.Valid() {
		return fmt.Errorf("%w: invalid status %q", ErrValidation, s.Status)
	}
	return nil
}

// DateOnly truncates a timestamp to a calendar date in UTC.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// MonthBucket normalizes a date to the first day of its month, the key used
// for monthly checklist uniqueness.
func MonthBucket(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// MonthEnd returns the last calendar day of the month containing t.
func MonthEnd(t time.Time) time.Time {
	return MonthBucket(t).AddDate(0, 1, -1)
}

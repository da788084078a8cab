package models

import "fmt"

// PaymentRefKind tags which obligation kind a payment status tracks.
type PaymentRefKind string

// Obligation kinds.
const (
	RefFixed    PaymentRefKind = "fixed"
	RefVariable PaymentRefKind = "variable"
	RefInvoice  PaymentRefKind = "credit_card"
)

// PaymentRef identifies exactly one obligation: a fixed payment, a variable
// payment, or a credit card invoice. The zero value references nothing and
// fails validation, so a status row can never point at zero or several
// obligations at once.
type PaymentRef struct {
	kind PaymentRefKind
	id   int
}

// FixedRef references a fixed payment.
func FixedRef(id int) PaymentRef { return PaymentRef{kind: RefFixed, id: id} }

// VariableRef references a variable payment.
func VariableRef(id int) PaymentRef { return PaymentRef{kind: RefVariable, id: id} }

// InvoiceRef references a credit card invoice.
func InvoiceRef(id int) PaymentRef { return PaymentRef{kind: RefInvoice, id: id} }

// NewPaymentRef builds a reference from a kind tag and an ID, rejecting
// unknown kinds and non-positive IDs.
func NewPaymentRef(kind PaymentRefKind, id int) (PaymentRef, error) {
	if id <= 0 {
		return PaymentRef{}, fmt.Errorf("%w: obligation id must be positive", ErrInvalidRef)
	}
	switch kind {
	case RefFixed, RefVariable, RefInvoice:
		return PaymentRef{kind: kind, id: id}, nil
	}
	return PaymentRef{}, fmt.Errorf("%w: unknown payment kind %q", ErrInvalidRef, kind)
}

// Kind returns the obligation kind tag.
func (r PaymentRef) Kind() PaymentRefKind { return r.kind }

// ID returns the referenced obligation's ID.
func (r PaymentRef) ID() int { return r.id }

// IsSet reports whether the reference points at an obligation.
func (r PaymentRef) IsSet() bool { return r.kind != "" && r.id > 0 }

func (r PaymentRef) String() string {
	if !r.IsSet() {
		return "unset"
	}
	return fmt.Sprintf("%s/%d", r.kind, r.id)
}

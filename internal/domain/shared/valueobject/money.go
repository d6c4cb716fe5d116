package valueobject

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Currency represents an ISO 4217 currency code
type Currency string

const (
	MXN Currency = "MXN"
	USD Currency = "USD"
)

// DefaultCurrency is the currency used when none is specified
const DefaultCurrency = MXN

// Money represents a monetary amount in a specific currency.
// It is an immutable value object.
type Money struct {
	amount   decimal.Decimal
	currency Currency
}

// NewMoney creates a new Money value object
func NewMoney(amount decimal.Decimal, currency Currency) (Money, error) {
	if currency == "" {
		return Money{}, fmt.Errorf("currency cannot be empty")
	}
	return Money{amount: amount, currency: currency}, nil
}

// NewMoneyFromFloat creates Money from a float64 amount
func NewMoneyFromFloat(amount float64, currency Currency) (Money, error) {
	return NewMoney(decimal.NewFromFloat(amount), currency)
}

// NewMoneyFromString creates Money from a string amount
func NewMoneyFromString(amount string, currency Currency) (Money, error) {
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return Money{}, fmt.Errorf("invalid amount: %w", err)
	}
	return NewMoney(d, currency)
}

// NewMoneyMXN creates Money in the default currency
func NewMoneyMXN(amount decimal.Decimal) Money {
	return Money{amount: amount, currency: MXN}
}

// NewMoneyMXNFromFloat creates Money in the default currency from a float64
func NewMoneyMXNFromFloat(amount float64) Money {
	return Money{amount: decimal.NewFromFloat(amount), currency: MXN}
}

// Zero returns a zero-valued Money in the given currency
func Zero(currency Currency) Money {
	return Money{amount: decimal.Zero, currency: currency}
}

// ZeroMXN returns a zero-valued Money in the default currency
func ZeroMXN() Money {
	return Zero(MXN)
}

// Amount returns the decimal amount
func (m Money) Amount() decimal.Decimal {
	return m.amount
}

// Currency returns the currency code
func (m Money) Currency() Currency {
	return m.currency
}

// IsZero returns true if the amount is zero
func (m Money) IsZero() bool {
	return m.amount.IsZero()
}

// IsPositive returns true if the amount is greater than zero
func (m Money) IsPositive() bool {
	return m.amount.IsPositive()
}

// IsNegative returns true if the amount is less than zero
func (m Money) IsNegative() bool {
	return m.amount.IsNegative()
}

// Add returns the sum of two Money values
// Returns an error if the currencies differ
func (m Money) Add(other Money) (Money, error) {
	if m.currency != other.currency {
		return Money{}, fmt.Errorf("cannot add %s to %s", other.currency, m.currency)
	}
	return Money{amount: m.amount.Add(other.amount), currency: m.currency}, nil
}

// Subtract returns the difference of two Money values
// Returns an error if the currencies differ
func (m Money) Subtract(other Money) (Money, error) {
	if m.currency != other.currency {
		return Money{}, fmt.Errorf("cannot subtract %s from %s", other.currency, m.currency)
	}
	return Money{amount: m.amount.Sub(other.amount), currency: m.currency}, nil
}

// Multiply returns the Money multiplied by a decimal factor
func (m Money) Multiply(factor decimal.Decimal) Money {
	return Money{amount: m.amount.Mul(factor), currency: m.currency}
}

// MultiplyByInt returns the Money multiplied by an integer factor
func (m Money) MultiplyByInt(factor int64) Money {
	return m.Multiply(decimal.NewFromInt(factor))
}

// Round returns the Money rounded to the given number of decimal places
func (m Money) Round(places int32) Money {
	return Money{amount: m.amount.Round(places), currency: m.currency}
}

// Equals returns true if both amount and currency match
func (m Money) Equals(other Money) bool {
	return m.currency == other.currency && m.amount.Equal(other.amount)
}

// LessThan compares two Money values
// Returns an error if the currencies differ
func (m Money) LessThan(other Money) (bool, error) {
	if m.currency != other.currency {
		return false, fmt.Errorf("cannot compare %s with %s", m.currency, other.currency)
	}
	return m.amount.LessThan(other.amount), nil
}

// GreaterThan compares two Money values
// Returns an error if the currencies differ
func (m Money) GreaterThan(other Money) (bool, error) {
	if m.currency != other.currency {
		return false, fmt.Errorf("cannot compare %s with %s", m.currency, other.currency)
	}
	return m.amount.GreaterThan(other.amount), nil
}

// String returns a human-readable representation like "150.5 MXN"
func (m Money) String() string {
	return fmt.Sprintf("%s %s", m.amount.String(), m.currency)
}

// StringFixed returns the amount with a fixed number of decimal places
func (m Money) StringFixed(places int32) string {
	return fmt.Sprintf("%s %s", m.amount.StringFixed(places), m.currency)
}

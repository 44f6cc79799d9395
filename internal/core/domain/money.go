package domain

import (
	"fmt"
	"strings"

	"paybridge/pkg/apperror"

	"github.com/shopspring/decimal"
)

// Currency is an ISO 4217 code from the supported set.
type Currency string

const (
	CurrencyNGN Currency = "NGN"
	CurrencyGHS Currency = "GHS"
	CurrencyZAR Currency = "ZAR"
	CurrencyKES Currency = "KES"
	CurrencyUSD Currency = "USD"
)

var supportedCurrencies = map[Currency]struct{}{
	CurrencyNGN: {},
	CurrencyGHS: {},
	CurrencyZAR: {},
	CurrencyKES: {},
	CurrencyUSD: {},
}

// ParseCurrency validates a currency code (case-insensitive).
func ParseCurrency(code string) (Currency, error) {
	c := Currency(strings.ToUpper(strings.TrimSpace(code)))
	if _, ok := supportedCurrencies[c]; !ok {
		return "", apperror.ErrUnsupportedCurrency(code)
	}
	return c, nil
}

// maxAmount is the single-payment ceiling in major units.
var maxAmount = decimal.NewFromInt(10_000_000)

// SetMaxAmount configures the single-payment ceiling in major units.
// Call once at startup, before any request handling.
func SetMaxAmount(limit float64) {
	if limit > 0 {
		maxAmount = decimal.NewFromFloat(limit).Round(2)
	}
}

// Money is an immutable amount in a single currency, held at exactly
// two decimal places.
type Money struct {
	amount   decimal.Decimal
	currency Currency
}

// NewMoney constructs Money from a major-unit amount. The amount is
// rounded to two decimal places before validation.
func NewMoney(amount float64, currency string) (Money, error) {
	cur, err := ParseCurrency(currency)
	if err != nil {
		return Money{}, err
	}
	return newMoney(decimal.NewFromFloat(amount), cur)
}

// NewMoneyFromMinorUnits constructs Money from an amount expressed in
// the currency's minor unit (e.g., kobo, cents).
func NewMoneyFromMinorUnits(units int64, currency string) (Money, error) {
	cur, err := ParseCurrency(currency)
	if err != nil {
		return Money{}, err
	}
	return newMoney(decimal.NewFromInt(units).Div(decimal.NewFromInt(100)), cur)
}

func newMoney(amount decimal.Decimal, currency Currency) (Money, error) {
	amount = amount.Round(2)
	if amount.Sign() <= 0 {
		return Money{}, apperror.ErrAmountNotPositive()
	}
	if amount.GreaterThan(maxAmount) {
		return Money{}, apperror.ErrAmountTooLarge(maxAmount.StringFixed(2))
	}
	return Money{amount: amount, currency: currency}, nil
}

// RehydrateMoney rebuilds Money from persisted state. For use by the
// storage adapter only; it performs no validation, so rows written
// under an earlier amount ceiling still load.
func RehydrateMoney(amount decimal.Decimal, currency Currency) Money {
	return Money{amount: amount.Round(2), currency: currency}
}

// Amount returns the major-unit amount.
func (m Money) Amount() decimal.Decimal { return m.amount }

// Currency returns the currency code.
func (m Money) Currency() Currency { return m.currency }

// MinorUnits returns the amount in the currency's minor unit.
func (m Money) MinorUnits() int64 {
	return m.amount.Mul(decimal.NewFromInt(100)).IntPart()
}

// Equals reports value equality. Amounts in different currencies are
// never equal.
func (m Money) Equals(other Money) bool {
	return m.currency == other.currency && m.amount.Equal(other.amount)
}

// Add returns m + other. Fails on cross-currency operands or if the
// result breaks the Money invariants.
func (m Money) Add(other Money) (Money, error) {
	if m.currency != other.currency {
		return Money{}, apperror.ErrCurrencyMismatch()
	}
	return newMoney(m.amount.Add(other.amount), m.currency)
}

// Subtract returns m - other. Fails on cross-currency operands or if
// the result is not positive.
func (m Money) Subtract(other Money) (Money, error) {
	if m.currency != other.currency {
		return Money{}, apperror.ErrCurrencyMismatch()
	}
	return newMoney(m.amount.Sub(other.amount), m.currency)
}

// Multiply returns m scaled by factor, rounded to two places.
func (m Money) Multiply(factor float64) (Money, error) {
	return newMoney(m.amount.Mul(decimal.NewFromFloat(factor)), m.currency)
}

func (m Money) String() string {
	return fmt.Sprintf("%s %s", m.amount.StringFixed(2), m.currency)
}

/**
 * Copyright 2025-present Coinbase Global, Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *  http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package money implements fixed-point currency amounts stored as int64 minor units.
package money

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	ErrCurrencyMismatch = errors.New("currency mismatch")
	ErrUnknownCurrency  = errors.New("unknown currency")
	ErrFractionalAmount = errors.New("minor unit amount must be a whole number")
	ErrOverflow         = errors.New("amount out of range")
	ErrInvalidAmount    = errors.New("invalid amount")
)

var (
	maxInt64 = decimal.NewFromInt(math.MaxInt64)
	minInt64 = decimal.NewFromInt(math.MinInt64)
)

// Money is an immutable amount of a single currency. The zero value has no currency.
type Money struct {
	amount   int64
	currency Currency
}

// New builds a Money from trusted minor units (e.g. cents read back from storage).
func New(amount int64, currency Currency) Money {
	return Money{amount: amount, currency: currency}
}

// Zero returns an empty amount of currency.
func Zero(currency Currency) Money {
	return Money{currency: currency}
}

// Cast builds a Money from a decimal. With convert set the value is read as major units and rounded
// half away from zero to the currency precision; otherwise it must already be whole minor units.
func Cast(value decimal.Decimal, currency Currency, convert bool) (Money, error) {
	if convert {
		value = value.Shift(currency.Precision).Round(0)
	} else if !value.IsInteger() {
		return Money{}, fmt.Errorf("%w: %s", ErrFractionalAmount, value.String())
	}

	if value.GreaterThan(maxInt64) || value.LessThan(minInt64) {
		return Money{}, fmt.Errorf("%w: %s %s", ErrOverflow, value.String(), currency.Code)
	}

	return Money{amount: value.IntPart(), currency: currency}, nil
}

// Parse reads untrusted major-unit input such as "12.50".
func Parse(input string, currency Currency) (Money, error) {
	value, err := decimal.NewFromString(strings.TrimSpace(input))
	if err != nil {
		return Money{}, fmt.Errorf("%w: %q", ErrInvalidAmount, input)
	}
	return Cast(value, currency, true)
}

// Amount returns the value in minor units.
func (m Money) Amount() int64 {
	return m.amount
}

// Currency returns the currency of the amount.
func (m Money) Currency() Currency {
	return m.currency
}

// Value returns the amount in major units.
func (m Money) Value() decimal.Decimal {
	return decimal.New(m.amount, -m.currency.Precision)
}

func (m Money) IsZero() bool {
	return m.amount == 0
}

func (m Money) IsNegative() bool {
	return m.amount < 0
}

func (m Money) IsPositive() bool {
	return m.amount > 0
}

// SameCurrency reports whether m and other can be combined.
func (m Money) SameCurrency(other Money) bool {
	return m.currency.Equal(other.currency)
}

func (m Money) assertSameCurrency(other Money) error {
	if !m.SameCurrency(other) {
		return fmt.Errorf("%w: %s and %s", ErrCurrencyMismatch, m.currency.Code, other.currency.Code)
	}
	return nil
}

func (m Money) Add(other Money) (Money, error) {
	if err := m.assertSameCurrency(other); err != nil {
		return Money{}, err
	}
	if (other.amount > 0 && m.amount > math.MaxInt64-other.amount) ||
		(other.amount < 0 && m.amount < math.MinInt64-other.amount) {
		return Money{}, fmt.Errorf("%w: %d + %d", ErrOverflow, m.amount, other.amount)
	}
	return Money{amount: m.amount + other.amount, currency: m.currency}, nil
}

func (m Money) Subtract(other Money) (Money, error) {
	if other.amount == math.MinInt64 {
		return Money{}, fmt.Errorf("%w: %d - %d", ErrOverflow, m.amount, other.amount)
	}
	return m.Add(other.Negate())
}

// Negate flips the sign of the amount.
func (m Money) Negate() Money {
	return Money{amount: -m.amount, currency: m.currency}
}

// Compare returns -1, 0 or 1 as m is less than, equal to or greater than other.
func (m Money) Compare(other Money) (int, error) {
	if err := m.assertSameCurrency(other); err != nil {
		return 0, err
	}
	switch {
	case m.amount < other.amount:
		return -1, nil
	case m.amount > other.amount:
		return 1, nil
	default:
		return 0, nil
	}
}

func (m Money) LessThan(other Money) (bool, error) {
	cmp, err := m.Compare(other)
	return cmp < 0, err
}

func (m Money) Equal(other Money) bool {
	return m.SameCurrency(other) && m.amount == other.amount
}

// Sum adds values of one currency, starting from zero of that currency.
func Sum(currency Currency, values ...Money) (Money, error) {
	total := Zero(currency)
	for _, v := range values {
		var err error
		if total, err = total.Add(v); err != nil {
			return Money{}, err
		}
	}
	return total, nil
}

// String renders the amount as "12.50 USD".
func (m Money) String() string {
	return m.Value().StringFixed(m.currency.Precision) + " " + m.currency.Code
}

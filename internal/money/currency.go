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

package money

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// maxPrecision keeps one whole unit representable in int64 minor units.
const maxPrecision = 18

// Currency describes a fiat currency or coin and how many minor units make up one major unit.
type Currency struct {
	Code      string `yaml:"code"`
	Name      string `yaml:"name"`
	Symbol    string `yaml:"symbol"`
	Precision int32  `yaml:"precision"`
}

// Equal reports whether both values denote the same currency code.
func (c Currency) Equal(other Currency) bool {
	return c.Code == other.Code
}

func (c Currency) String() string {
	return c.Code
}

var (
	registryMu sync.RWMutex
	registry   = map[string]Currency{
		"USD":  {Code: "USD", Name: "US Dollar", Symbol: "$", Precision: 2},
		"EUR":  {Code: "EUR", Name: "Euro", Symbol: "€", Precision: 2},
		"GBP":  {Code: "GBP", Name: "British Pound", Symbol: "£", Precision: 2},
		"NGN":  {Code: "NGN", Name: "Nigerian Naira", Symbol: "₦", Precision: 2},
		"JPY":  {Code: "JPY", Name: "Japanese Yen", Symbol: "¥", Precision: 0},
		"USDC": {Code: "USDC", Name: "USD Coin", Symbol: "USDC ", Precision: 6},
		"USDT": {Code: "USDT", Name: "Tether", Symbol: "USDT ", Precision: 6},
		"BTC":  {Code: "BTC", Name: "Bitcoin", Symbol: "₿", Precision: 8},
		"SOL":  {Code: "SOL", Name: "Solana", Symbol: "SOL ", Precision: 9},
	}
)

// Lookup returns the registered currency for code (case-insensitive).
func Lookup(code string) (Currency, error) {
	registryMu.RLock()
	defer registryMu.RUnlock()

	c, ok := registry[strings.ToUpper(strings.TrimSpace(code))]
	if !ok {
		return Currency{}, fmt.Errorf("%w: %q", ErrUnknownCurrency, code)
	}
	return c, nil
}

// MustLookup is Lookup for codes known at compile time.
func MustLookup(code string) Currency {
	c, err := Lookup(code)
	if err != nil {
		panic(err)
	}
	return c
}

// Register adds or replaces a currency definition.
func Register(c Currency) error {
	c.Code = strings.ToUpper(strings.TrimSpace(c.Code))
	if c.Code == "" {
		return fmt.Errorf("currency code cannot be empty")
	}
	if c.Precision < 0 || c.Precision > maxPrecision {
		return fmt.Errorf("currency %s: precision must be between 0 and %d, got %d", c.Code, maxPrecision, c.Precision)
	}
	if c.Symbol == "" {
		c.Symbol = c.Code + " "
	}

	registryMu.Lock()
	registry[c.Code] = c
	registryMu.Unlock()
	return nil
}

// Codes lists every registered currency code in alphabetical order.
func Codes() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	codes := make([]string, 0, len(registry))
	for code := range registry {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

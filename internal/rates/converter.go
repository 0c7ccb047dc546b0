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

package rates

import (
	"context"
	"encoding/json"
	"fmt"
	"maps"
	"net/http"
	"strings"
	"sync"
	"time"

	"wallet-ledger-go/internal/ledger"
	"wallet-ledger-go/internal/models"
	"wallet-ledger-go/internal/money"
	"wallet-ledger-go/internal/transport"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const base = "USD"

// Converter converts money between currencies through USD using rates expressed as units of a
// currency per one USD. The table starts from the settings file and can be refreshed from a feed.
type Converter struct {
	url    string
	client *http.Client

	mu        sync.RWMutex
	rates     map[string]decimal.Decimal
	updatedAt time.Time
}

// Compile-time check: *Converter must satisfy ledger.RateConverter.
var _ ledger.RateConverter = (*Converter)(nil)

// feed is the document served by the rates endpoint.
type feed struct {
	Base  string                     `json:"base"`
	Rates map[string]decimal.Decimal `json:"rates"`
}

func NewConverter(static map[string]decimal.Decimal, cfg models.RatesConfig) (*Converter, error) {
	c := &Converter{
		url:   cfg.Url,
		rates: map[string]decimal.Decimal{base: decimal.NewFromInt(1)},
	}
	if err := c.merge(static); err != nil {
		return nil, err
	}

	if cfg.Url != "" {
		client, err := transport.NewHttpClient(cfg.Timeout)
		if err != nil {
			return nil, fmt.Errorf("unable to create rates http client: %w", err)
		}
		c.client = client
	}
	return c, nil
}

func (c *Converter) merge(rates map[string]decimal.Decimal) error {
	clean := make(map[string]decimal.Decimal, len(rates))
	for code, rate := range rates {
		code = strings.ToUpper(code)
		if _, err := money.Lookup(code); err != nil {
			return fmt.Errorf("rate for %s: %w", code, err)
		}
		if !rate.IsPositive() {
			return fmt.Errorf("rate for %s must be positive, got %s", code, rate)
		}
		clean[code] = rate
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	maps.Copy(c.rates, clean)
	c.rates[base] = decimal.NewFromInt(1)
	c.updatedAt = time.Now().UTC()
	return nil
}

// Rate returns how many units of code one USD buys.
func (c *Converter) Rate(code string) (decimal.Decimal, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	rate, ok := c.rates[strings.ToUpper(code)]
	return rate, ok
}

func (c *Converter) UpdatedAt() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.updatedAt
}

// Convert expresses value in the currency code, rounded half away from zero to its precision.
func (c *Converter) Convert(_ context.Context, value money.Money, code string) (money.Money, error) {
	target, err := money.Lookup(code)
	if err != nil {
		return money.Money{}, err
	}
	from := value.Currency()
	if from.Equal(target) {
		return value, nil
	}

	fromRate, ok := c.Rate(from.Code)
	if !ok {
		return money.Money{}, fmt.Errorf("%w: no rate for %s", ledger.ErrRateUnavailable, from.Code)
	}
	toRate, ok := c.Rate(target.Code)
	if !ok {
		return money.Money{}, fmt.Errorf("%w: no rate for %s", ledger.ErrRateUnavailable, target.Code)
	}

	converted := value.Value().Mul(toRate).Div(fromRate)
	return money.Cast(converted, target, true)
}

// Refresh loads the latest rates from the configured feed. Currencies missing from the feed keep
// their previous rate.
func (c *Converter) Refresh(ctx context.Context) error {
	if c.url == "" {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return fmt.Errorf("unable to build rates request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ledger.ErrRateUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: rates feed answered %s", ledger.ErrRateUnavailable, resp.Status)
	}

	var doc feed
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return fmt.Errorf("%w: unable to decode rates feed: %v", ledger.ErrRateUnavailable, err)
	}
	if !strings.EqualFold(doc.Base, base) {
		return fmt.Errorf("%w: rates feed is based on %q, expected %s", ledger.ErrRateUnavailable, doc.Base, base)
	}

	// unknown currencies in the feed are skipped rather than failing the refresh
	known := make(map[string]decimal.Decimal, len(doc.Rates))
	for code, rate := range doc.Rates {
		if _, err := money.Lookup(strings.ToUpper(code)); err != nil {
			zap.L().Debug("Skipping rate for unregistered currency", zap.String("code", code))
			continue
		}
		known[code] = rate
	}
	if err := c.merge(known); err != nil {
		return fmt.Errorf("%w: %v", ledger.ErrRateUnavailable, err)
	}

	zap.L().Info("Exchange rates refreshed", zap.Int("count", len(known)), zap.String("url", c.url))
	return nil
}

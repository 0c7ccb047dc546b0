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

package limits

import (
	"context"
	"fmt"
	"sync"
	"time"

	"wallet-ledger-go/internal/ledger"
	"wallet-ledger-go/internal/money"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var usd = money.MustLookup("USD")

var knownFeatures = map[ledger.Feature]struct{}{
	ledger.FeaturePaymentsDeposit:    {},
	ledger.FeaturePaymentsWithdrawal: {},
	ledger.FeatureWalletExchange:     {},
}

type usageKey struct {
	userId  string
	feature ledger.Feature
}

// Limiter tracks per user, per feature usage in USD minor units for the current UTC day and refuses
// any usage that would cross the configured daily cap. Features without a cap are tracked but never refused.
type Limiter struct {
	rates ledger.RateConverter
	caps  map[ledger.Feature]int64
	now   func() time.Time

	mu    sync.Mutex
	day   string
	usage map[usageKey]int64
}

// Compile-time check: *Limiter must satisfy ledger.FeatureLimiter.
var _ ledger.FeatureLimiter = (*Limiter)(nil)

// NewLimiter builds a limiter from caps expressed in USD major units, keyed by feature name.
// rates converts non-USD usage and may be nil when every account is in USD.
func NewLimiter(caps map[string]decimal.Decimal, rates ledger.RateConverter) (*Limiter, error) {
	l := &Limiter{
		rates: rates,
		caps:  make(map[ledger.Feature]int64, len(caps)),
		now:   func() time.Time { return time.Now().UTC() },
		usage: make(map[usageKey]int64),
	}

	for name, value := range caps {
		feature := ledger.Feature(name)
		if _, ok := knownFeatures[feature]; !ok {
			return nil, fmt.Errorf("unknown feature %q in usage limits", name)
		}
		capValue, err := money.Cast(value, usd, true)
		if err != nil {
			return nil, fmt.Errorf("invalid %s limit: %w", name, err)
		}
		if capValue.IsNegative() {
			return nil, fmt.Errorf("invalid %s limit: must not be negative", name)
		}
		l.caps[feature] = capValue.Amount()
	}
	return l, nil
}

func (l *Limiter) SetUsage(ctx context.Context, feature ledger.Feature, value money.Money, userId string) error {
	if _, ok := knownFeatures[feature]; !ok {
		return fmt.Errorf("unknown feature %q", feature)
	}

	dollars, err := l.toUSD(ctx, value)
	if err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	l.rollover()
	key := usageKey{userId: userId, feature: feature}
	total := l.usage[key] + dollars.Amount()
	if limit, ok := l.caps[feature]; ok && total > limit {
		zap.L().Warn("Feature usage limit reached",
			zap.String("user_id", userId),
			zap.String("feature", string(feature)),
			zap.String("requested", dollars.String()),
			zap.String("limit", money.New(limit, usd).String()))
		return fmt.Errorf("%w: %s would reach %s of a %s daily limit", ledger.ErrUsageLimitExceeded,
			feature, money.New(total, usd).Format(), money.New(limit, usd).Format())
	}
	l.usage[key] = total

	zap.L().Debug("Feature usage recorded",
		zap.String("user_id", userId),
		zap.String("feature", string(feature)),
		zap.String("total", money.New(total, usd).String()))
	return nil
}

// Usage returns what the user consumed of feature today, in USD.
func (l *Limiter) Usage(userId string, feature ledger.Feature) money.Money {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.rollover()
	return money.New(l.usage[usageKey{userId: userId, feature: feature}], usd)
}

// rollover forgets the previous day's usage. Callers hold mu.
func (l *Limiter) rollover() {
	today := l.now().UTC().Format(time.DateOnly)
	if today != l.day {
		l.day = today
		clear(l.usage)
	}
}

func (l *Limiter) toUSD(ctx context.Context, value money.Money) (money.Money, error) {
	if !value.IsPositive() {
		return money.Money{}, ledger.ErrInvalidAmount
	}
	if value.Currency().Code == usd.Code {
		return value, nil
	}
	if l.rates == nil {
		return money.Money{}, fmt.Errorf("%w: cannot price %s usage", ledger.ErrRateUnavailable, value.Currency().Code)
	}
	return l.rates.Convert(ctx, value, usd.Code)
}

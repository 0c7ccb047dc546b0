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

package models

import (
	"fmt"
	"time"

	"wallet-ledger-go/internal/money"

	"github.com/shopspring/decimal"
)

type TradeType string

const (
	TradeBuy  TradeType = "buy"
	TradeSell TradeType = "sell"
)

func (t TradeType) Valid() bool {
	return t == TradeBuy || t == TradeSell
}

type TradeStatus string

const (
	TradePending   TradeStatus = "pending"
	TradeCompleted TradeStatus = "completed"
	TradeCanceled  TradeStatus = "canceled"
)

// ParseTradeStatus converts a stored status string into the closed set of trade statuses.
func ParseTradeStatus(s string) (TradeStatus, error) {
	switch status := TradeStatus(s); status {
	case TradePending, TradeCompleted, TradeCanceled:
		return status, nil
	default:
		return "", fmt.Errorf("unknown trade status %q", s)
	}
}

// CanTransitionTo reports whether next is a legal successor of s. Only pending trades move.
func (s TradeStatus) CanTransitionTo(next TradeStatus) bool {
	return s == TradePending && (next == TradeCompleted || next == TradeCanceled)
}

// ExchangeTrade converts value between a coin wallet account and a fiat payment account.
// WalletValue and FeeValue are denominated in the wallet account's coin.
type ExchangeTrade struct {
	Id               string
	Type             TradeType
	Status           TradeStatus
	WalletAccountId  string
	PaymentAccountId string
	TraderId         string
	PaymentValue     money.Money
	WalletValue      money.Money
	FeeValue         money.Money
	DollarPrice      decimal.Decimal
	CreatedAt        time.Time
	CompletedAt      *time.Time
}

func (t *ExchangeTrade) IsPending() bool {
	return t.Status == TradePending
}

// Description is shared by every record written when the trade settles.
func (t *ExchangeTrade) Description() string {
	coin := t.WalletValue.Currency()
	name := coin.Name
	if name == "" {
		name = coin.Code
	}
	return fmt.Sprintf("Exchange %s of %s: %s", t.Type, name, t.PaymentValue.Format())
}

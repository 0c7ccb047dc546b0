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

import "wallet-ledger-go/internal/money"

// BalanceSnapshot is the raw aggregate state of an account as read from storage, in minor units.
type BalanceSnapshot struct {
	Currency            money.Currency
	TotalReceived       int64
	TotalSent           int64
	OnTrade             int64
	PendingReceive      int64
	PendingReceiveCount int
}

// Balances are the derived balances of an account.
type Balances struct {
	TotalReceived       money.Money
	TotalSent           money.Money
	Balance             money.Money
	BalanceOnTrade      money.Money
	Available           money.Money
	TotalPendingReceive money.Money
	PendingReceiveCount int
}

// Balances derives every balance figure from the snapshot. It has no side effects.
func (s BalanceSnapshot) Balances() Balances {
	balance := s.TotalReceived - s.TotalSent
	return Balances{
		TotalReceived:       money.New(s.TotalReceived, s.Currency),
		TotalSent:           money.New(s.TotalSent, s.Currency),
		Balance:             money.New(balance, s.Currency),
		BalanceOnTrade:      money.New(s.OnTrade, s.Currency),
		Available:           money.New(balance-s.OnTrade, s.Currency),
		TotalPendingReceive: money.New(s.PendingReceive, s.Currency),
		PendingReceiveCount: s.PendingReceiveCount,
	}
}

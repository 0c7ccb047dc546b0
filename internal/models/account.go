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
	"time"

	"wallet-ledger-go/internal/money"

	"github.com/shopspring/decimal"
)

// User owns payment and wallet accounts
type User struct {
	Id        string
	Name      string
	Email     string
	CreatedAt time.Time
}

// PaymentAccount is a fiat ledger account, one per currency per user
type PaymentAccount struct {
	Id        string
	UserId    string
	Currency  money.Currency
	Reference string
	CreatedAt time.Time
}

// WalletAccount is a coin ledger account, one per coin per user
type WalletAccount struct {
	Id        string
	UserId    string
	Coin      money.Currency
	Reference string
	CreatedAt time.Time
}

// TransferRecord is a coin movement on a wallet account
type TransferRecord struct {
	Id              string
	WalletAccountId string
	Type            TransactionType
	Value           money.Money
	DollarPrice     decimal.Decimal
	Description     string
	CreatedAt       time.Time
}

// Earning is a fee collected when an exchange trade completes
type Earning struct {
	Id          string
	UserId      string
	Value       money.Money
	Description string
	CreatedAt   time.Time
}

// DailyTotal holds the received and sent totals of one calendar day
type DailyTotal struct {
	Date          time.Time
	TotalReceived money.Money
	TotalSent     money.Money
}

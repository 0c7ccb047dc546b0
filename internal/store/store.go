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

package store

import (
	"context"
	"errors"
	"time"

	"wallet-ledger-go/internal/lock"
	"wallet-ledger-go/internal/models"
	"wallet-ledger-go/internal/money"
)

// Sentinel errors shared across all backend implementations.
var (
	ErrNotFound      = errors.New("record not found")
	ErrDuplicate     = errors.New("duplicate record")
	ErrStatusChanged = errors.New("record status changed concurrently")
)

// Reader is the read side of the ledger, available both on the pool and inside an atomic unit.
type Reader interface {
	// --- Users ---
	GetUsers(ctx context.Context) ([]models.User, error)
	GetUserById(ctx context.Context, userId string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)

	// --- Payment accounts ---
	GetPaymentAccount(ctx context.Context, id string) (*models.PaymentAccount, error)
	FindPaymentAccount(ctx context.Context, userId, currency string) (*models.PaymentAccount, error)
	ListPaymentAccounts(ctx context.Context, userId string) ([]models.PaymentAccount, error)
	PaymentSnapshot(ctx context.Context, account models.PaymentAccount) (models.BalanceSnapshot, error)
	ReferenceExists(ctx context.Context, reference string) (bool, error)

	// --- Payment transactions ---
	GetPaymentTransaction(ctx context.Context, id string) (*models.PaymentTransaction, error)
	ListPaymentTransactions(ctx context.Context, accountId string, limit, offset int) ([]models.PaymentTransaction, error)
	ListPaymentTransactionsBetween(ctx context.Context, accountId string, from, to time.Time) ([]models.PaymentTransaction, error)
	ListPendingTransactions(ctx context.Context, limit int) ([]models.PaymentTransaction, error)

	// --- Wallet accounts ---
	GetWalletAccount(ctx context.Context, id string) (*models.WalletAccount, error)
	FindWalletAccount(ctx context.Context, userId, coin string) (*models.WalletAccount, error)
	ListWalletAccounts(ctx context.Context, userId string) ([]models.WalletAccount, error)
	WalletSnapshot(ctx context.Context, account models.WalletAccount) (models.BalanceSnapshot, error)
	ListTransferRecords(ctx context.Context, walletAccountId string, limit, offset int) ([]models.TransferRecord, error)

	// --- Exchange trades ---
	GetExchangeTrade(ctx context.Context, id string) (*models.ExchangeTrade, error)
	ListEarnings(ctx context.Context, userId string) ([]models.Earning, error)
}

// Tx is one atomic unit. Writes commit or roll back together; row locks are held until it ends.
type Tx interface {
	Reader
	lock.Locker

	// Lock acquires every key not already held, in lock order.
	Lock(ctx context.Context, keys ...lock.Key) error
	// AfterCommit registers fn to run once the unit has committed. It never runs on rollback.
	AfterCommit(fn func(ctx context.Context))

	CreateUser(ctx context.Context, user *models.User) error
	CreatePaymentAccount(ctx context.Context, account *models.PaymentAccount) error
	CreatePaymentTransaction(ctx context.Context, txn *models.PaymentTransaction) error
	// UpdateTransactionStatus moves a transaction from one status to another, or fails with ErrStatusChanged.
	UpdateTransactionStatus(ctx context.Context, id string, from, to models.TransactionStatus, at time.Time) error
	// SetTransactionBalance records the running balance only if none is recorded yet.
	SetTransactionBalance(ctx context.Context, id string, balance money.Money) (bool, error)

	CreateWalletAccount(ctx context.Context, account *models.WalletAccount) error
	CreateTransferRecord(ctx context.Context, record *models.TransferRecord) error

	CreateExchangeTrade(ctx context.Context, trade *models.ExchangeTrade) error
	// UpdateTradeStatus moves a trade from one status to another, or fails with ErrStatusChanged.
	UpdateTradeStatus(ctx context.Context, id string, from, to models.TradeStatus, at time.Time) error
	CreateEarning(ctx context.Context, earning *models.Earning) error
}

// Store is the contract every backend (SQLite, PostgreSQL) must satisfy.
type Store interface {
	Reader

	// Atomic runs fn inside one atomic unit. A call made while ctx already carries a unit joins it.
	Atomic(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error

	// --- Lifecycle ---
	Close()
}

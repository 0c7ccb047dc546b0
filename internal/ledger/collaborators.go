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

package ledger

//go:generate mockgen -destination=mocks/collaborators.go -package=mocks wallet-ledger-go/internal/ledger RateConverter,GatewayVerifier,FeatureLimiter,Notifier,Mirror

import (
	"context"
	"time"

	"wallet-ledger-go/internal/models"
	"wallet-ledger-go/internal/money"
)

// RateConverter converts a value into another currency. Failures wrap ErrRateUnavailable.
type RateConverter interface {
	Convert(ctx context.Context, value money.Money, code string) (money.Money, error)
}

// GatewayVerifier asks a payment gateway whether the deposit behind ref has settled.
// Transport failures wrap ErrGatewayUnreachable.
type GatewayVerifier interface {
	Verify(ctx context.Context, gatewayName, ref string) (bool, error)
}

// Feature is a quota tracked per user by the FeatureLimiter.
type Feature string

const (
	FeaturePaymentsDeposit    Feature = "payments_deposit"
	FeaturePaymentsWithdrawal Feature = "payments_withdrawal"
	FeatureWalletExchange     Feature = "wallet_exchange"
)

// FeatureLimiter records usage against a user's quota. It fails with ErrUsageLimitExceeded when the
// quota would be exceeded.
type FeatureLimiter interface {
	SetUsage(ctx context.Context, feature Feature, value money.Money, userId string) error
}

type EventKind string

const (
	EventPaymentCredit EventKind = "payment.credit"
	EventPaymentDebit  EventKind = "payment.debit"
)

// Event is what a Notifier receives once a payment transaction it concerns has been committed.
type Event struct {
	Kind        EventKind
	UserId      string
	Account     models.PaymentAccount
	Transaction models.PaymentTransaction
	OccurredAt  time.Time
}

type Notifier interface {
	Notify(ctx context.Context, event Event) error
}

// Mirror copies completed movements into an external ledger. It is optional.
type Mirror interface {
	RecordPayment(ctx context.Context, account models.PaymentAccount, txn models.PaymentTransaction) error
	RecordTransfer(ctx context.Context, account models.WalletAccount, record models.TransferRecord) error
}

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

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"wallet-ledger-go/internal/lock"
	"wallet-ledger-go/internal/models"
	"wallet-ledger-go/internal/money"
	"wallet-ledger-go/internal/store"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// maxPendingReceives is how many pending deposits an account may hold before HasMaximumPending reports true.
const maxPendingReceives = 2

// OpenPaymentAccount returns the user's account in currency, creating it with a fresh reference when missing.
func (s *Service) OpenPaymentAccount(ctx context.Context, userId, currency string) (*models.PaymentAccount, error) {
	cur, err := money.Lookup(currency)
	if err != nil {
		return nil, err
	}

	for attempt := 1; ; attempt++ {
		var account *models.PaymentAccount
		err := s.store.Atomic(ctx, func(ctx context.Context, tx store.Tx) error {
			var err error
			account, err = openPaymentAccount(ctx, tx, userId, cur, s.now())
			return err
		})
		// a concurrent open of the same account or reference: the next attempt sees the winner
		if errors.Is(err, store.ErrDuplicate) && attempt < maxOpenAttempts {
			zap.L().Debug("Retrying payment account creation", zap.String("user_id", userId), zap.Int("attempt", attempt))
			continue
		}
		if err != nil {
			return nil, err
		}
		return account, nil
	}
}

func openPaymentAccount(ctx context.Context, tx store.Tx, userId string, cur money.Currency, now time.Time) (*models.PaymentAccount, error) {
	existing, err := tx.FindPaymentAccount(ctx, userId, cur.Code)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	if _, err := tx.GetUserById(ctx, userId); err != nil {
		return nil, err
	}

	ref, err := uniqueReference(ctx, tx)
	if err != nil {
		return nil, err
	}

	account := &models.PaymentAccount{
		Id:        uuid.New().String(),
		UserId:    userId,
		Currency:  cur,
		Reference: ref,
		CreatedAt: now,
	}
	if err := tx.CreatePaymentAccount(ctx, account); err != nil {
		return nil, err
	}

	zap.L().Info("Payment account opened",
		zap.String("user_id", userId),
		zap.String("currency", cur.Code),
		zap.String("reference", ref))
	return account, nil
}

func (s *Service) GetPaymentAccount(ctx context.Context, accountId string) (*models.PaymentAccount, error) {
	return s.store.GetPaymentAccount(ctx, accountId)
}

// PaymentBalances derives every balance figure of the account from a fresh snapshot.
func (s *Service) PaymentBalances(ctx context.Context, accountId string) (models.Balances, error) {
	account, err := s.store.GetPaymentAccount(ctx, accountId)
	if err != nil {
		return models.Balances{}, err
	}
	snapshot, err := s.store.PaymentSnapshot(ctx, *account)
	if err != nil {
		return models.Balances{}, err
	}
	return snapshot.Balances(), nil
}

// HasMaximumPending reports whether the account already holds more pending deposits than allowed.
func (s *Service) HasMaximumPending(ctx context.Context, accountId string) (bool, error) {
	balances, err := s.PaymentBalances(ctx, accountId)
	if err != nil {
		return false, err
	}
	return balances.PendingReceiveCount > maxPendingReceives, nil
}

func (s *Service) ListTransactions(ctx context.Context, accountId string, limit, offset int) ([]models.PaymentTransaction, error) {
	if limit <= 0 {
		limit = 50
	}
	return s.store.ListPaymentTransactions(ctx, accountId, limit, offset)
}

// MinTransferable is the configured minimum payment, expressed in the account's currency.
func (s *Service) MinTransferable(ctx context.Context, accountId string) (money.Money, error) {
	return s.transferable(ctx, accountId, s.settings.MinPayment)
}

// MaxTransferable is the configured maximum payment, expressed in the account's currency.
func (s *Service) MaxTransferable(ctx context.Context, accountId string) (money.Money, error) {
	return s.transferable(ctx, accountId, s.settings.MaxPayment)
}

func (s *Service) transferable(ctx context.Context, accountId string, usd decimal.Decimal) (money.Money, error) {
	account, err := s.store.GetPaymentAccount(ctx, accountId)
	if err != nil {
		return money.Money{}, err
	}

	value, err := money.Cast(usd, money.MustLookup("USD"), true)
	if err != nil {
		return money.Money{}, err
	}
	if account.Currency.Code == "USD" {
		return value, nil
	}
	if s.rates == nil {
		return money.Money{}, fmt.Errorf("%w: no rate converter configured", ErrRateUnavailable)
	}

	converted, err := s.rates.Convert(ctx, value, account.Currency.Code)
	if err != nil {
		if !errors.Is(err, ErrRateUnavailable) {
			err = fmt.Errorf("%w: %v", ErrRateUnavailable, err)
		}
		return money.Money{}, err
	}
	return converted, nil
}

// Credit records a completed receive. Credits only raise the balance, so no lock is taken.
func (s *Service) Credit(ctx context.Context, accountId string, amount money.Money, description string) (*models.PaymentTransaction, error) {
	return s.record(ctx, accountId, amount, models.TransactionReceive, description)
}

// Debit records a completed send. It does not check the available balance; callers that need the
// check hold the account lock and verify it themselves.
func (s *Service) Debit(ctx context.Context, accountId string, amount money.Money, description string) (*models.PaymentTransaction, error) {
	return s.record(ctx, accountId, amount, models.TransactionSend, description)
}

func (s *Service) record(ctx context.Context, accountId string, amount money.Money, txnType models.TransactionType, description string) (*models.PaymentTransaction, error) {
	if !amount.IsPositive() {
		return nil, ErrInvalidAmount
	}

	var txn *models.PaymentTransaction
	err := s.store.Atomic(ctx, func(ctx context.Context, tx store.Tx) error {
		account, err := tx.GetPaymentAccount(ctx, accountId)
		if err != nil {
			return err
		}
		txn, err = s.writeCompleted(ctx, tx, *account, amount, txnType, description)
		return err
	})
	if err != nil {
		return nil, err
	}
	return txn, nil
}

// writeCompleted writes a completed transaction in tx and registers its post-commit hooks.
func (s *Service) writeCompleted(ctx context.Context, tx store.Tx, account models.PaymentAccount, amount money.Money, txnType models.TransactionType, description string) (*models.PaymentTransaction, error) {
	if err := checkCurrency(account.Currency, amount); err != nil {
		return nil, err
	}

	txn := s.newTransaction(account, amount, txnType, models.StatusCompleted, description)
	if err := tx.CreatePaymentTransaction(ctx, txn); err != nil {
		return nil, err
	}

	kind := EventPaymentCredit
	if txnType == models.TransactionSend {
		kind = EventPaymentDebit
	}
	s.afterPayment(tx, account, *txn, kind)
	return txn, nil
}

func checkCurrency(cur money.Currency, amount money.Money) error {
	if !cur.Equal(amount.Currency()) {
		return fmt.Errorf("%w: %s account, %s amount", ErrCurrencyMismatch, cur.Code, amount.Currency().Code)
	}
	return nil
}

func (s *Service) newTransaction(account models.PaymentAccount, amount money.Money, txnType models.TransactionType, status models.TransactionStatus, description string) *models.PaymentTransaction {
	now := s.now()
	return &models.PaymentTransaction{
		Id:               uuid.New().String(),
		PaymentAccountId: account.Id,
		Type:             txnType,
		Status:           status,
		Value:            amount,
		Description:      description,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
}

// SendViaTransfer queues a bank withdrawal. The account is locked while the available balance is checked.
func (s *Service) SendViaTransfer(ctx context.Context, accountId string, amount money.Money, bank models.BankAccount) (*models.PaymentTransaction, error) {
	if !amount.IsPositive() {
		return nil, ErrInvalidAmount
	}

	var txn *models.PaymentTransaction
	err := s.store.Atomic(ctx, func(ctx context.Context, tx store.Tx) error {
		if err := tx.Lock(ctx, lock.PaymentAccountKey(accountId)); err != nil {
			return err
		}

		account, err := tx.GetPaymentAccount(ctx, accountId)
		if err != nil {
			return err
		}
		if err := checkCurrency(account.Currency, amount); err != nil {
			return err
		}

		snapshot, err := tx.PaymentSnapshot(ctx, *account)
		if err != nil {
			return err
		}
		if available := snapshot.Balances().Available; available.Amount() < amount.Amount() {
			return fmt.Errorf("%w: available %s, requested %s", ErrInsufficientBalance, available, amount)
		}

		txn = s.newTransaction(*account, amount, models.TransactionSend, models.StatusPendingTransfer, bank.TransferDescription())
		txn.Transfer = bank.TransferData()
		if err := tx.CreatePaymentTransaction(ctx, txn); err != nil {
			return err
		}
		s.afterPayment(tx, *account, *txn, "")
		return nil
	})
	if err != nil {
		return nil, err
	}

	zap.L().Info("Transfer withdrawal queued",
		zap.String("account_id", accountId),
		zap.String("transaction_id", txn.Id),
		zap.String("amount", amount.String()))
	return txn, nil
}

// ReceiveViaTransfer records a bank deposit awaiting manual confirmation.
func (s *Service) ReceiveViaTransfer(ctx context.Context, accountId string, amount money.Money, bank models.BankAccount) (*models.PaymentTransaction, error) {
	if !amount.IsPositive() {
		return nil, ErrInvalidAmount
	}

	var txn *models.PaymentTransaction
	err := s.store.Atomic(ctx, func(ctx context.Context, tx store.Tx) error {
		account, err := tx.GetPaymentAccount(ctx, accountId)
		if err != nil {
			return err
		}
		if err := checkCurrency(account.Currency, amount); err != nil {
			return err
		}

		txn = s.newTransaction(*account, amount, models.TransactionReceive, models.StatusPendingTransfer, bank.TransferDescription())
		txn.Transfer = bank.TransferData()
		if err := tx.CreatePaymentTransaction(ctx, txn); err != nil {
			return err
		}
		s.afterPayment(tx, *account, *txn, EventPaymentCredit)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return txn, nil
}

// GatewayPayload is what a payment gateway hands back when a deposit is initiated.
// Uuid, when present, is the idempotency key and becomes the transaction id.
type GatewayPayload struct {
	Uuid string `validate:"omitempty,uuid"`
	Ref  string `validate:"required"`
	Name string `validate:"required"`
	Url  string `validate:"required,url"`
}

// ReceiveViaGateway records a gateway deposit awaiting verification. Replaying a payload with the same
// Uuid returns the transaction created the first time.
func (s *Service) ReceiveViaGateway(ctx context.Context, accountId string, amount money.Money, payload GatewayPayload) (*models.PaymentTransaction, error) {
	// keys are matched case-insensitively
	payload.Uuid = strings.ToLower(payload.Uuid)
	if err := s.validate.StructCtx(ctx, payload); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidGatewayPayload, err)
	}
	if !amount.IsPositive() {
		return nil, ErrInvalidAmount
	}

	id := uuid.New().String()
	if payload.Uuid != "" {
		id = uuid.MustParse(payload.Uuid).String()
		if existing, err := s.replayGateway(ctx, accountId, id); existing != nil || err != nil {
			return existing, err
		}
	}

	var txn *models.PaymentTransaction
	err := s.store.Atomic(ctx, func(ctx context.Context, tx store.Tx) error {
		account, err := tx.GetPaymentAccount(ctx, accountId)
		if err != nil {
			return err
		}
		if err := checkCurrency(account.Currency, amount); err != nil {
			return err
		}

		txn = s.newTransaction(*account, amount, models.TransactionReceive, models.StatusPendingGateway,
			fmt.Sprintf("%s: %s", payload.Name, payload.Ref))
		txn.Id = id
		txn.Gateway = &models.GatewayData{Ref: payload.Ref, Name: payload.Name, Url: payload.Url}
		if err := tx.CreatePaymentTransaction(ctx, txn); err != nil {
			return err
		}
		s.afterPayment(tx, *account, *txn, EventPaymentCredit)
		return nil
	})
	if errors.Is(err, store.ErrDuplicate) && payload.Uuid != "" {
		// lost a race against a concurrent replay
		existing, replayErr := s.replayGateway(ctx, accountId, id)
		if existing != nil || replayErr != nil {
			return existing, replayErr
		}
	}
	if err != nil {
		return nil, err
	}

	zap.L().Info("Gateway deposit recorded",
		zap.String("account_id", accountId),
		zap.String("transaction_id", txn.Id),
		zap.String("gateway", payload.Name))
	return txn, nil
}

// replayGateway returns the transaction already stored under an idempotency key, or nil when there is none.
func (s *Service) replayGateway(ctx context.Context, accountId, id string) (*models.PaymentTransaction, error) {
	existing, err := s.store.GetPaymentTransaction(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if existing.PaymentAccountId != accountId || existing.Gateway == nil {
		return nil, fmt.Errorf("%w: idempotency key %s belongs to another transaction", ErrInvalidGatewayPayload, id)
	}

	zap.L().Info("Gateway deposit replayed", zap.String("transaction_id", id))
	return existing, nil
}

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

	"wallet-ledger-go/internal/models"
	"wallet-ledger-go/internal/store"

	"go.uber.org/zap"
)

func (s *Service) GetTransaction(ctx context.Context, id string) (*models.PaymentTransaction, error) {
	return s.store.GetPaymentTransaction(ctx, id)
}

// ListPending returns the oldest pending transactions across every account.
func (s *Service) ListPending(ctx context.Context, limit int) ([]models.PaymentTransaction, error) {
	return s.store.ListPendingTransactions(ctx, limit)
}

// CompleteTransfer confirms a pending bank transfer and reports the movement to the usage limiter.
func (s *Service) CompleteTransfer(ctx context.Context, id string) (*models.PaymentTransaction, error) {
	var txn *models.PaymentTransaction
	err := s.store.Atomic(ctx, func(ctx context.Context, tx store.Tx) error {
		var err error
		if txn, err = tx.GetPaymentTransaction(ctx, id); err != nil {
			return err
		}
		if txn.Status != models.StatusPendingTransfer {
			return fmt.Errorf("%w: %s is %s", ErrNotPending, id, txn.Status)
		}

		account, err := tx.GetPaymentAccount(ctx, txn.PaymentAccountId)
		if err != nil {
			return err
		}

		feature := FeaturePaymentsDeposit
		if txn.Type == models.TransactionSend {
			feature = FeaturePaymentsWithdrawal
		}
		if err := s.complete(ctx, tx, txn, models.StatusPendingTransfer, ErrNotPending); err != nil {
			return err
		}
		if err := s.limiter.SetUsage(ctx, feature, txn.Value, account.UserId); err != nil {
			return err
		}

		var kind EventKind
		if txn.Type == models.TransactionSend {
			kind = EventPaymentDebit
		}
		s.afterPayment(tx, *account, *txn, kind)
		return nil
	})
	if err != nil {
		return nil, err
	}

	zap.L().Info("Transfer completed",
		zap.String("transaction_id", id),
		zap.String("type", string(txn.Type)),
		zap.String("amount", txn.Value.String()))
	return txn, nil
}

// CompleteGateway asks the gateway whether the deposit settled and, if so, completes it. An unverified
// deposit is returned unchanged and stays pending.
func (s *Service) CompleteGateway(ctx context.Context, id string) (*models.PaymentTransaction, error) {
	txn, err := s.store.GetPaymentTransaction(ctx, id)
	if err != nil {
		return nil, err
	}
	if !isPendingGatewayReceive(txn) {
		return nil, fmt.Errorf("%w: %s", ErrNotPendingGateway, id)
	}
	if s.verifier == nil {
		return nil, fmt.Errorf("%w: no verifier configured", ErrGatewayUnreachable)
	}

	// no lock or unit is held while the gateway answers
	verified, err := s.verifier.Verify(ctx, txn.Gateway.Name, txn.Gateway.Ref)
	if err != nil {
		if !errors.Is(err, ErrGatewayUnreachable) {
			err = fmt.Errorf("%w: %v", ErrGatewayUnreachable, err)
		}
		return nil, err
	}
	if !verified {
		zap.L().Debug("Gateway deposit not verified yet", zap.String("transaction_id", id), zap.String("gateway", txn.Gateway.Name))
		return txn, nil
	}

	err = s.store.Atomic(ctx, func(ctx context.Context, tx store.Tx) error {
		var err error
		if txn, err = tx.GetPaymentTransaction(ctx, id); err != nil {
			return err
		}
		if !isPendingGatewayReceive(txn) {
			return fmt.Errorf("%w: %s", ErrNotPendingGateway, id)
		}

		account, err := tx.GetPaymentAccount(ctx, txn.PaymentAccountId)
		if err != nil {
			return err
		}
		if err := s.complete(ctx, tx, txn, models.StatusPendingGateway, ErrNotPendingGateway); err != nil {
			return err
		}
		if err := s.limiter.SetUsage(ctx, FeaturePaymentsDeposit, txn.Value, account.UserId); err != nil {
			return err
		}
		s.afterPayment(tx, *account, *txn, "")
		return nil
	})
	if err != nil {
		return nil, err
	}

	zap.L().Info("Gateway deposit completed",
		zap.String("transaction_id", id),
		zap.String("gateway", txn.Gateway.Name),
		zap.String("amount", txn.Value.String()))
	return txn, nil
}

func isPendingGatewayReceive(txn *models.PaymentTransaction) bool {
	return txn.Type == models.TransactionReceive && txn.Status == models.StatusPendingGateway && txn.Gateway != nil
}

// complete moves txn from one pending status to completed. Losing a race against another transition
// is reported as notPending.
func (s *Service) complete(ctx context.Context, tx store.Tx, txn *models.PaymentTransaction, from models.TransactionStatus, notPending error) error {
	now := s.now()
	if err := tx.UpdateTransactionStatus(ctx, txn.Id, from, models.StatusCompleted, now); err != nil {
		if errors.Is(err, store.ErrStatusChanged) {
			return fmt.Errorf("%w: %v", notPending, err)
		}
		return err
	}
	txn.Status = models.StatusCompleted
	txn.UpdatedAt = now
	return nil
}

// CancelPending cancels a pending transaction. Transactions already completed or canceled are returned as they are.
func (s *Service) CancelPending(ctx context.Context, id string) (*models.PaymentTransaction, error) {
	var txn *models.PaymentTransaction
	err := s.store.Atomic(ctx, func(ctx context.Context, tx store.Tx) error {
		var err error
		if txn, err = tx.GetPaymentTransaction(ctx, id); err != nil {
			return err
		}
		if !txn.IsPending() {
			return nil
		}

		now := s.now()
		if err := tx.UpdateTransactionStatus(ctx, id, txn.Status, models.StatusCanceled, now); err != nil {
			return err
		}
		txn.Status = models.StatusCanceled
		txn.UpdatedAt = now
		return nil
	})
	if errors.Is(err, store.ErrStatusChanged) {
		// settled concurrently: report the state that won
		return s.store.GetPaymentTransaction(ctx, id)
	}
	if err != nil {
		return nil, err
	}
	return txn, nil
}

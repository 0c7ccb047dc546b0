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
	"fmt"

	"wallet-ledger-go/internal/models"
	"wallet-ledger-go/internal/store"

	"go.uber.org/zap"
)

// afterPayment registers the post-commit side effects of a payment transaction written in tx.
// An empty kind sends no notification.
func (s *Service) afterPayment(tx store.Tx, account models.PaymentAccount, txn models.PaymentTransaction, kind EventKind) {
	if txn.Status == models.StatusCompleted {
		tx.AfterCommit(func(ctx context.Context) {
			s.snapshotBalance(ctx, account, txn.Id)
		})
	}

	if kind != "" && s.notifier != nil {
		tx.AfterCommit(func(ctx context.Context) {
			event := Event{
				Kind:        kind,
				UserId:      account.UserId,
				Account:     account,
				Transaction: txn,
				OccurredAt:  s.now(),
			}
			if err := s.notifier.Notify(ctx, event); err != nil {
				zap.L().Warn("Failed to send payment notification",
					zap.String("kind", string(kind)),
					zap.String("transaction_id", txn.Id),
					zap.String("user_id", account.UserId),
					zap.Error(err))
			}
		})
	}

	if txn.Status == models.StatusCompleted && s.mirror != nil {
		tx.AfterCommit(func(ctx context.Context) {
			if err := s.mirror.RecordPayment(ctx, account, txn); err != nil {
				zap.L().Error("Failed to mirror payment transaction",
					zap.String("transaction_id", txn.Id),
					zap.String("account_id", account.Id),
					zap.Error(err))
			}
		})
	}
}

// afterTransfer mirrors a committed transfer record.
func (s *Service) afterTransfer(tx store.Tx, account models.WalletAccount, record models.TransferRecord) {
	if s.mirror == nil {
		return
	}
	tx.AfterCommit(func(ctx context.Context) {
		if err := s.mirror.RecordTransfer(ctx, account, record); err != nil {
			zap.L().Error("Failed to mirror transfer record",
				zap.String("record_id", record.Id),
				zap.String("wallet_account_id", account.Id),
				zap.Error(err))
		}
	})
}

// snapshotBalance stores the account's current balance on a completed transaction that has none yet.
func (s *Service) snapshotBalance(ctx context.Context, account models.PaymentAccount, txnId string) {
	err := s.store.Atomic(ctx, func(ctx context.Context, tx store.Tx) error {
		txn, err := tx.GetPaymentTransaction(ctx, txnId)
		if err != nil {
			return err
		}
		if !txn.NeedsBalanceSnapshot() {
			return nil
		}

		snapshot, err := tx.PaymentSnapshot(ctx, account)
		if err != nil {
			return err
		}
		if _, err := tx.SetTransactionBalance(ctx, txnId, snapshot.Balances().Balance); err != nil {
			return fmt.Errorf("unable to store balance snapshot: %w", err)
		}
		return nil
	})
	if err != nil {
		zap.L().Error("Failed to snapshot balance",
			zap.String("transaction_id", txnId),
			zap.String("account_id", account.Id),
			zap.Error(err))
	}
}

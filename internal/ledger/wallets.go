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
	"time"

	"wallet-ledger-go/internal/lock"
	"wallet-ledger-go/internal/models"
	"wallet-ledger-go/internal/money"
	"wallet-ledger-go/internal/store"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// OpenWalletAccount returns the user's account for coin, creating it with a fresh reference when missing.
func (s *Service) OpenWalletAccount(ctx context.Context, userId, coin string) (*models.WalletAccount, error) {
	cur, err := money.Lookup(coin)
	if err != nil {
		return nil, err
	}

	for attempt := 1; ; attempt++ {
		var account *models.WalletAccount
		err := s.store.Atomic(ctx, func(ctx context.Context, tx store.Tx) error {
			var err error
			account, err = openWalletAccount(ctx, tx, userId, cur, s.now())
			return err
		})
		if errors.Is(err, store.ErrDuplicate) && attempt < maxOpenAttempts {
			continue
		}
		if err != nil {
			return nil, err
		}
		return account, nil
	}
}

func openWalletAccount(ctx context.Context, tx store.Tx, userId string, coin money.Currency, now time.Time) (*models.WalletAccount, error) {
	existing, err := tx.FindWalletAccount(ctx, userId, coin.Code)
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

	account := &models.WalletAccount{
		Id:        uuid.New().String(),
		UserId:    userId,
		Coin:      coin,
		Reference: ref,
		CreatedAt: now,
	}
	if err := tx.CreateWalletAccount(ctx, account); err != nil {
		return nil, err
	}

	zap.L().Info("Wallet account opened",
		zap.String("user_id", userId),
		zap.String("coin", coin.Code),
		zap.String("reference", ref))
	return account, nil
}

func (s *Service) GetWalletAccount(ctx context.Context, accountId string) (*models.WalletAccount, error) {
	return s.store.GetWalletAccount(ctx, accountId)
}

func (s *Service) WalletBalances(ctx context.Context, accountId string) (models.Balances, error) {
	account, err := s.store.GetWalletAccount(ctx, accountId)
	if err != nil {
		return models.Balances{}, err
	}
	snapshot, err := s.store.WalletSnapshot(ctx, *account)
	if err != nil {
		return models.Balances{}, err
	}
	return snapshot.Balances(), nil
}

func (s *Service) ListTransferRecords(ctx context.Context, accountId string, limit, offset int) ([]models.TransferRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	return s.store.ListTransferRecords(ctx, accountId, limit, offset)
}

// ReceiveCoin records coin arriving on the wallet account. Like payment credits it takes no lock.
func (s *Service) ReceiveCoin(ctx context.Context, accountId string, amount money.Money, dollarPrice decimal.Decimal, description string) (*models.TransferRecord, error) {
	if !amount.IsPositive() {
		return nil, ErrInvalidAmount
	}

	var record *models.TransferRecord
	err := s.store.Atomic(ctx, func(ctx context.Context, tx store.Tx) error {
		account, err := tx.GetWalletAccount(ctx, accountId)
		if err != nil {
			return err
		}
		record, err = s.writeTransfer(ctx, tx, *account, models.TransactionReceive, amount, dollarPrice, description)
		return err
	})
	if err != nil {
		return nil, err
	}
	return record, nil
}

// SendCoin records coin leaving the wallet account, holding the account lock while the available
// balance is checked.
func (s *Service) SendCoin(ctx context.Context, accountId string, amount money.Money, dollarPrice decimal.Decimal, description string) (*models.TransferRecord, error) {
	if !amount.IsPositive() {
		return nil, ErrInvalidAmount
	}

	var record *models.TransferRecord
	err := s.store.Atomic(ctx, func(ctx context.Context, tx store.Tx) error {
		if err := tx.Lock(ctx, lock.WalletAccountKey(accountId)); err != nil {
			return err
		}
		account, err := tx.GetWalletAccount(ctx, accountId)
		if err != nil {
			return err
		}
		if err := checkCurrency(account.Coin, amount); err != nil {
			return err
		}

		snapshot, err := tx.WalletSnapshot(ctx, *account)
		if err != nil {
			return err
		}
		if available := snapshot.Balances().Available; available.Amount() < amount.Amount() {
			return fmt.Errorf("%w: available %s, requested %s", ErrInsufficientBalance, available, amount)
		}

		record, err = s.writeTransfer(ctx, tx, *account, models.TransactionSend, amount, dollarPrice, description)
		return err
	})
	if err != nil {
		return nil, err
	}
	return record, nil
}

func (s *Service) writeTransfer(ctx context.Context, tx store.Tx, account models.WalletAccount, recordType models.TransactionType, amount money.Money, dollarPrice decimal.Decimal, description string) (*models.TransferRecord, error) {
	if err := checkCurrency(account.Coin, amount); err != nil {
		return nil, err
	}

	record := &models.TransferRecord{
		Id:              uuid.New().String(),
		WalletAccountId: account.Id,
		Type:            recordType,
		Value:           amount,
		DollarPrice:     dollarPrice,
		Description:     description,
		CreatedAt:       s.now(),
	}
	if err := tx.CreateTransferRecord(ctx, record); err != nil {
		return nil, err
	}
	s.afterTransfer(tx, account, *record)
	return record, nil
}

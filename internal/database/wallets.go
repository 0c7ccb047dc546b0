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

package database

import (
	"context"
	"fmt"

	"wallet-ledger-go/internal/models"
	"wallet-ledger-go/internal/money"
)

func scanWalletAccount(row rowScanner) (*models.WalletAccount, error) {
	var (
		account models.WalletAccount
		coin    string
	)
	if err := row.Scan(&account.Id, &account.UserId, &coin, &account.Reference, &account.CreatedAt); err != nil {
		return nil, convertErr(err)
	}

	cur, err := money.Lookup(coin)
	if err != nil {
		return nil, fmt.Errorf("wallet account %s: %w", account.Id, err)
	}
	account.Coin = cur
	return &account, nil
}

func (q *queries) GetWalletAccount(ctx context.Context, id string) (*models.WalletAccount, error) {
	account, err := scanWalletAccount(q.queryRow(ctx, querySelectWalletAccount, id))
	if err != nil {
		return nil, fmt.Errorf("unable to get wallet account %s: %w", id, err)
	}
	return account, nil
}

func (q *queries) FindWalletAccount(ctx context.Context, userId, coin string) (*models.WalletAccount, error) {
	account, err := scanWalletAccount(q.queryRow(ctx, queryFindWalletAccount, userId, coin))
	if err != nil {
		return nil, fmt.Errorf("unable to find %s wallet account of user %s: %w", coin, userId, err)
	}
	return account, nil
}

func (q *queries) ListWalletAccounts(ctx context.Context, userId string) ([]models.WalletAccount, error) {
	rows, err := q.query(ctx, queryListWalletAccounts, userId)
	if err != nil {
		return nil, fmt.Errorf("unable to query wallet accounts: %w", err)
	}
	defer rows.Close()

	var accounts []models.WalletAccount
	for rows.Next() {
		account, err := scanWalletAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("unable to scan wallet account: %w", err)
		}
		accounts = append(accounts, *account)
	}
	return accounts, rows.Err()
}

// WalletSnapshot sums the account's transfer records and the coin reserved by its pending sell trades.
func (q *queries) WalletSnapshot(ctx context.Context, account models.WalletAccount) (models.BalanceSnapshot, error) {
	snapshot := models.BalanceSnapshot{Currency: account.Coin}

	if err := q.queryRow(ctx, queryWalletTotals, account.Id).Scan(&snapshot.TotalReceived, &snapshot.TotalSent); err != nil {
		return models.BalanceSnapshot{}, fmt.Errorf("unable to sum transfer records: %w", convertErr(err))
	}
	if err := q.queryRow(ctx, queryWalletOnTrade, account.Id).Scan(&snapshot.OnTrade); err != nil {
		return models.BalanceSnapshot{}, fmt.Errorf("unable to sum pending trades: %w", convertErr(err))
	}
	return snapshot, nil
}

func (q *queries) ListTransferRecords(ctx context.Context, walletAccountId string, limit, offset int) ([]models.TransferRecord, error) {
	rows, err := q.query(ctx, queryListTransferRecords, walletAccountId, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("unable to query transfer records: %w", err)
	}
	defer rows.Close()

	var records []models.TransferRecord
	for rows.Next() {
		var (
			record           models.TransferRecord
			recordType, coin string
			value            int64
		)
		err := rows.Scan(&record.Id, &record.WalletAccountId, &recordType, &value, &coin,
			&record.DollarPrice, &record.Description, &record.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("unable to scan transfer record: %w", err)
		}

		cur, err := money.Lookup(coin)
		if err != nil {
			return nil, fmt.Errorf("transfer record %s: %w", record.Id, err)
		}
		record.Type = models.TransactionType(recordType)
		record.Value = money.New(value, cur)
		records = append(records, record)
	}
	return records, rows.Err()
}

func (t *Tx) CreateWalletAccount(ctx context.Context, account *models.WalletAccount) error {
	_, err := t.exec(ctx, queryInsertWalletAccount,
		account.Id, account.UserId, account.Coin.Code, account.Reference, account.CreatedAt.UTC())
	if err != nil {
		return fmt.Errorf("unable to create wallet account: %w", err)
	}
	return nil
}

func (t *Tx) CreateTransferRecord(ctx context.Context, record *models.TransferRecord) error {
	_, err := t.exec(ctx, queryInsertTransferRecord,
		record.Id,
		record.WalletAccountId,
		string(record.Type),
		record.Value.Amount(),
		record.Value.Currency().Code,
		record.DollarPrice.String(),
		record.Description,
		record.CreatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("unable to create transfer record: %w", err)
	}
	return nil
}

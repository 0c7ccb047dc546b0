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

func scanPaymentAccount(row rowScanner) (*models.PaymentAccount, error) {
	var (
		account  models.PaymentAccount
		currency string
	)
	if err := row.Scan(&account.Id, &account.UserId, &currency, &account.Reference, &account.CreatedAt); err != nil {
		return nil, convertErr(err)
	}

	cur, err := money.Lookup(currency)
	if err != nil {
		return nil, fmt.Errorf("payment account %s: %w", account.Id, err)
	}
	account.Currency = cur
	return &account, nil
}

func (q *queries) GetPaymentAccount(ctx context.Context, id string) (*models.PaymentAccount, error) {
	account, err := scanPaymentAccount(q.queryRow(ctx, querySelectPaymentAccount, id))
	if err != nil {
		return nil, fmt.Errorf("unable to get payment account %s: %w", id, err)
	}
	return account, nil
}

func (q *queries) FindPaymentAccount(ctx context.Context, userId, currency string) (*models.PaymentAccount, error) {
	account, err := scanPaymentAccount(q.queryRow(ctx, queryFindPaymentAccount, userId, currency))
	if err != nil {
		return nil, fmt.Errorf("unable to find %s payment account of user %s: %w", currency, userId, err)
	}
	return account, nil
}

func (q *queries) ListPaymentAccounts(ctx context.Context, userId string) ([]models.PaymentAccount, error) {
	rows, err := q.query(ctx, queryListPaymentAccounts, userId)
	if err != nil {
		return nil, fmt.Errorf("unable to query payment accounts: %w", err)
	}
	defer rows.Close()

	var accounts []models.PaymentAccount
	for rows.Next() {
		account, err := scanPaymentAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("unable to scan payment account: %w", err)
		}
		accounts = append(accounts, *account)
	}
	return accounts, rows.Err()
}

// PaymentSnapshot reads the aggregates every derived balance of the account is computed from.
func (q *queries) PaymentSnapshot(ctx context.Context, account models.PaymentAccount) (models.BalanceSnapshot, error) {
	snapshot := models.BalanceSnapshot{Currency: account.Currency}

	err := q.queryRow(ctx, queryPaymentTotals, account.Id).Scan(
		&snapshot.TotalReceived,
		&snapshot.TotalSent,
		&snapshot.PendingReceive,
		&snapshot.PendingReceiveCount,
	)
	if err != nil {
		return models.BalanceSnapshot{}, fmt.Errorf("unable to sum payment transactions: %w", convertErr(err))
	}

	if err := q.queryRow(ctx, queryPaymentOnTrade, account.Id).Scan(&snapshot.OnTrade); err != nil {
		return models.BalanceSnapshot{}, fmt.Errorf("unable to sum pending trades: %w", convertErr(err))
	}

	return snapshot, nil
}

func (q *queries) ReferenceExists(ctx context.Context, reference string) (bool, error) {
	var exists bool
	if err := q.queryRow(ctx, queryReferenceExists, reference, reference).Scan(&exists); err != nil {
		return false, fmt.Errorf("unable to check reference: %w", convertErr(err))
	}
	return exists, nil
}

func (t *Tx) CreatePaymentAccount(ctx context.Context, account *models.PaymentAccount) error {
	_, err := t.exec(ctx, queryInsertPaymentAccount,
		account.Id, account.UserId, account.Currency.Code, account.Reference, account.CreatedAt.UTC())
	if err != nil {
		return fmt.Errorf("unable to create payment account: %w", err)
	}
	return nil
}

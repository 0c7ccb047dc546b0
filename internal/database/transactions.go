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
	"database/sql"
	"fmt"
	"time"

	"wallet-ledger-go/internal/models"
	"wallet-ledger-go/internal/money"
)

func scanPaymentTransaction(row rowScanner) (*models.PaymentTransaction, error) {
	var (
		txn                                      models.PaymentTransaction
		txnType, status, currency                string
		value                                    int64
		balance                                  sql.NullInt64
		gatewayRef, gatewayName, gatewayUrl      sql.NullString
		bank, beneficiary, number, country, note sql.NullString
	)

	err := row.Scan(
		&txn.Id, &txn.PaymentAccountId, &txnType, &status, &value, &currency, &balance, &txn.Description,
		&gatewayRef, &gatewayName, &gatewayUrl,
		&bank, &beneficiary, &number, &country, &note,
		&txn.CreatedAt, &txn.UpdatedAt,
	)
	if err != nil {
		return nil, convertErr(err)
	}

	cur, err := money.Lookup(currency)
	if err != nil {
		return nil, fmt.Errorf("payment transaction %s: %w", txn.Id, err)
	}
	txn.Status, err = models.ParseTransactionStatus(status)
	if err != nil {
		return nil, fmt.Errorf("payment transaction %s: %w", txn.Id, err)
	}
	txn.Type = models.TransactionType(txnType)
	if !txn.Type.Valid() {
		return nil, fmt.Errorf("payment transaction %s: unknown type %q", txn.Id, txnType)
	}

	txn.Value = money.New(value, cur)
	if balance.Valid {
		b := money.New(balance.Int64, cur)
		txn.Balance = &b
	}
	if gatewayRef.Valid {
		txn.Gateway = &models.GatewayData{Ref: gatewayRef.String, Name: gatewayName.String, Url: gatewayUrl.String}
	}
	if bank.Valid {
		txn.Transfer = &models.TransferData{
			Bank:        bank.String,
			Beneficiary: beneficiary.String,
			Number:      number.String,
			Country:     country.String,
			Note:        note.String,
		}
	}
	return &txn, nil
}

func scanPaymentTransactions(rows *sql.Rows) ([]models.PaymentTransaction, error) {
	defer rows.Close()

	var txns []models.PaymentTransaction
	for rows.Next() {
		txn, err := scanPaymentTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("unable to scan payment transaction: %w", err)
		}
		txns = append(txns, *txn)
	}
	return txns, rows.Err()
}

func (q *queries) GetPaymentTransaction(ctx context.Context, id string) (*models.PaymentTransaction, error) {
	txn, err := scanPaymentTransaction(q.queryRow(ctx, querySelectPaymentTransaction, id))
	if err != nil {
		return nil, fmt.Errorf("unable to get payment transaction %s: %w", id, err)
	}
	return txn, nil
}

func (q *queries) ListPaymentTransactions(ctx context.Context, accountId string, limit, offset int) ([]models.PaymentTransaction, error) {
	rows, err := q.query(ctx, queryListPaymentTransactions, accountId, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("unable to query payment transactions: %w", err)
	}
	return scanPaymentTransactions(rows)
}

// ListPaymentTransactionsBetween returns the account's transactions created in [from, to).
func (q *queries) ListPaymentTransactionsBetween(ctx context.Context, accountId string, from, to time.Time) ([]models.PaymentTransaction, error) {
	rows, err := q.query(ctx, queryListPaymentTransactionsBetween, accountId, from.UTC(), to.UTC())
	if err != nil {
		return nil, fmt.Errorf("unable to query payment transactions: %w", err)
	}
	return scanPaymentTransactions(rows)
}

// ListPendingTransactions returns the oldest pending transactions across all accounts.
func (q *queries) ListPendingTransactions(ctx context.Context, limit int) ([]models.PaymentTransaction, error) {
	rows, err := q.query(ctx, queryListPendingTransactions, limit)
	if err != nil {
		return nil, fmt.Errorf("unable to query pending transactions: %w", err)
	}
	return scanPaymentTransactions(rows)
}

func nullString(s string, valid bool) sql.NullString {
	return sql.NullString{String: s, Valid: valid}
}

func (t *Tx) CreatePaymentTransaction(ctx context.Context, txn *models.PaymentTransaction) error {
	var balance sql.NullInt64
	if txn.Balance != nil {
		balance = sql.NullInt64{Int64: txn.Balance.Amount(), Valid: true}
	}

	var gateway models.GatewayData
	if txn.Gateway != nil {
		gateway = *txn.Gateway
	}
	var transfer models.TransferData
	if txn.Transfer != nil {
		transfer = *txn.Transfer
	}
	hasGateway, hasTransfer := txn.Gateway != nil, txn.Transfer != nil

	_, err := t.exec(ctx, queryInsertPaymentTransaction,
		txn.Id,
		txn.PaymentAccountId,
		string(txn.Type),
		string(txn.Status),
		txn.Value.Amount(),
		txn.Value.Currency().Code,
		balance,
		txn.Description,
		nullString(gateway.Ref, hasGateway),
		nullString(gateway.Name, hasGateway),
		nullString(gateway.Url, hasGateway),
		nullString(transfer.Bank, hasTransfer),
		nullString(transfer.Beneficiary, hasTransfer),
		nullString(transfer.Number, hasTransfer),
		nullString(transfer.Country, hasTransfer),
		nullString(transfer.Note, hasTransfer),
		txn.CreatedAt.UTC(),
		txn.UpdatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("unable to create payment transaction: %w", err)
	}
	return nil
}

func (t *Tx) UpdateTransactionStatus(ctx context.Context, id string, from, to models.TransactionStatus, at time.Time) error {
	result, err := t.exec(ctx, queryUpdateTransactionStatus, string(to), at.UTC(), id, string(from))
	if err != nil {
		return fmt.Errorf("unable to update payment transaction %s: %w", id, err)
	}
	if err := expectOneRow(result); err != nil {
		return fmt.Errorf("payment transaction %s is no longer %s: %w", id, from, err)
	}
	return nil
}

func (t *Tx) SetTransactionBalance(ctx context.Context, id string, balance money.Money) (bool, error) {
	result, err := t.exec(ctx, queryUpdateTransactionBalance, balance.Amount(), id)
	if err != nil {
		return false, fmt.Errorf("unable to record balance of payment transaction %s: %w", id, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

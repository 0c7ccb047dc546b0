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

func scanExchangeTrade(row rowScanner) (*models.ExchangeTrade, error) {
	var (
		trade                                    models.ExchangeTrade
		tradeType, status, paymentCurrency, coin string
		paymentValue, walletValue, feeValue      int64
		updatedAt                                time.Time
		completedAt                              sql.NullTime
	)

	err := row.Scan(
		&trade.Id, &tradeType, &status, &trade.WalletAccountId, &trade.PaymentAccountId, &trade.TraderId,
		&paymentValue, &paymentCurrency, &walletValue, &feeValue, &coin, &trade.DollarPrice,
		&trade.CreatedAt, &updatedAt, &completedAt,
	)
	if err != nil {
		return nil, convertErr(err)
	}

	trade.Type = models.TradeType(tradeType)
	if !trade.Type.Valid() {
		return nil, fmt.Errorf("exchange trade %s: unknown type %q", trade.Id, tradeType)
	}
	if trade.Status, err = models.ParseTradeStatus(status); err != nil {
		return nil, fmt.Errorf("exchange trade %s: %w", trade.Id, err)
	}

	payCur, err := money.Lookup(paymentCurrency)
	if err != nil {
		return nil, fmt.Errorf("exchange trade %s: %w", trade.Id, err)
	}
	coinCur, err := money.Lookup(coin)
	if err != nil {
		return nil, fmt.Errorf("exchange trade %s: %w", trade.Id, err)
	}

	trade.PaymentValue = money.New(paymentValue, payCur)
	trade.WalletValue = money.New(walletValue, coinCur)
	trade.FeeValue = money.New(feeValue, coinCur)
	if completedAt.Valid {
		at := completedAt.Time
		trade.CompletedAt = &at
	}
	return &trade, nil
}

func (q *queries) GetExchangeTrade(ctx context.Context, id string) (*models.ExchangeTrade, error) {
	trade, err := scanExchangeTrade(q.queryRow(ctx, querySelectExchangeTrade, id))
	if err != nil {
		return nil, fmt.Errorf("unable to get exchange trade %s: %w", id, err)
	}
	return trade, nil
}

func (q *queries) ListEarnings(ctx context.Context, userId string) ([]models.Earning, error) {
	rows, err := q.query(ctx, queryListEarnings, userId)
	if err != nil {
		return nil, fmt.Errorf("unable to query earnings: %w", err)
	}
	defer rows.Close()

	var earnings []models.Earning
	for rows.Next() {
		var (
			earning models.Earning
			value   int64
			coin    string
		)
		if err := rows.Scan(&earning.Id, &earning.UserId, &value, &coin, &earning.Description, &earning.CreatedAt); err != nil {
			return nil, fmt.Errorf("unable to scan earning: %w", err)
		}
		cur, err := money.Lookup(coin)
		if err != nil {
			return nil, fmt.Errorf("earning %s: %w", earning.Id, err)
		}
		earning.Value = money.New(value, cur)
		earnings = append(earnings, earning)
	}
	return earnings, rows.Err()
}

func (t *Tx) CreateExchangeTrade(ctx context.Context, trade *models.ExchangeTrade) error {
	var completedAt sql.NullTime
	if trade.CompletedAt != nil {
		completedAt = sql.NullTime{Time: trade.CompletedAt.UTC(), Valid: true}
	}

	_, err := t.exec(ctx, queryInsertExchangeTrade,
		trade.Id,
		string(trade.Type),
		string(trade.Status),
		trade.WalletAccountId,
		trade.PaymentAccountId,
		trade.TraderId,
		trade.PaymentValue.Amount(),
		trade.PaymentValue.Currency().Code,
		trade.WalletValue.Amount(),
		trade.FeeValue.Amount(),
		trade.WalletValue.Currency().Code,
		trade.DollarPrice.String(),
		trade.CreatedAt.UTC(),
		trade.CreatedAt.UTC(),
		completedAt,
	)
	if err != nil {
		return fmt.Errorf("unable to create exchange trade: %w", err)
	}
	return nil
}

// UpdateTradeStatus stamps completed_at when the trade moves to completed.
func (t *Tx) UpdateTradeStatus(ctx context.Context, id string, from, to models.TradeStatus, at time.Time) error {
	var completedAt sql.NullTime
	if to == models.TradeCompleted {
		completedAt = sql.NullTime{Time: at.UTC(), Valid: true}
	}

	result, err := t.exec(ctx, queryUpdateTradeStatus, string(to), at.UTC(), completedAt, id, string(from))
	if err != nil {
		return fmt.Errorf("unable to update exchange trade %s: %w", id, err)
	}
	if err := expectOneRow(result); err != nil {
		return fmt.Errorf("exchange trade %s is no longer %s: %w", id, from, err)
	}
	return nil
}

func (t *Tx) CreateEarning(ctx context.Context, earning *models.Earning) error {
	_, err := t.exec(ctx, queryInsertEarning,
		earning.Id,
		earning.UserId,
		earning.Value.Amount(),
		earning.Value.Currency().Code,
		earning.Description,
		earning.CreatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("unable to create earning: %w", err)
	}
	return nil
}

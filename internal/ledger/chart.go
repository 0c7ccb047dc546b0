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
	"time"

	"wallet-ledger-go/internal/models"
	"wallet-ledger-go/internal/money"
)

// DailyChart returns one entry per calendar day (UTC) of the month with the amounts received and sent
// that day. Received counts completed receives, sent counts every send that was not canceled, matching
// how balances are derived.
func (s *Service) DailyChart(ctx context.Context, accountId string, year int, month time.Month) ([]models.DailyTotal, error) {
	if month < time.January || month > time.December {
		return nil, fmt.Errorf("invalid month %d", month)
	}

	account, err := s.store.GetPaymentAccount(ctx, accountId)
	if err != nil {
		return nil, err
	}

	from := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0)
	txns, err := s.store.ListPaymentTransactionsBetween(ctx, accountId, from, to)
	if err != nil {
		return nil, err
	}

	days := int(to.Sub(from).Hours() / 24)
	received := make([]int64, days)
	sent := make([]int64, days)
	for _, txn := range txns {
		day := txn.CreatedAt.UTC().Day() - 1
		if day < 0 || day >= days {
			continue
		}
		switch {
		case txn.Type == models.TransactionReceive && txn.Status == models.StatusCompleted:
			received[day] += txn.Value.Amount()
		case txn.Type == models.TransactionSend && txn.Status != models.StatusCanceled:
			sent[day] += txn.Value.Amount()
		}
	}

	chart := make([]models.DailyTotal, days)
	for i := range chart {
		chart[i] = models.DailyTotal{
			Date:          from.AddDate(0, 0, i),
			TotalReceived: money.New(received[i], account.Currency),
			TotalSent:     money.New(sent[i], account.Currency),
		}
	}
	return chart, nil
}

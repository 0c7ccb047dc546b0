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

package gateway

import (
	"context"
	"fmt"
	"time"

	"wallet-ledger-go/internal/ledger"
	"wallet-ledger-go/internal/models"
	"wallet-ledger-go/internal/transport"

	"github.com/coinbase-samples/prime-sdk-go/client"
	"github.com/coinbase-samples/prime-sdk-go/credentials"
	"github.com/coinbase-samples/prime-sdk-go/model"
	"github.com/coinbase-samples/prime-sdk-go/transactions"
	"go.uber.org/zap"
)

// Prime statuses of a deposit that has settled in the wallet.
var primeSettled = map[string]bool{
	"TRANSACTION_DONE":     true,
	"TRANSACTION_IMPORTED": true,
}

// WalletTransaction is the part of a Prime wallet transaction the verifier looks at.
type WalletTransaction struct {
	Id            string
	TransactionId string
	Type          string
	Status        string
	Symbol        string
	Amount        string
	Created       time.Time
}

type WalletTransactionSource interface {
	ListWalletTransactions(ctx context.Context, portfolioId, walletId string, start time.Time) ([]WalletTransaction, error)
}

// PrimeClient lists deposit activity of a Coinbase Prime wallet.
type PrimeClient struct {
	transactionsSvc transactions.TransactionsService
}

func NewPrimeClient(cfg models.GatewayConfig) (*PrimeClient, error) {
	httpClient, err := transport.NewHttpClient(cfg.Timeout)
	if err != nil {
		return nil, fmt.Errorf("unable to create custom http client: %w", err)
	}

	creds := &credentials.Credentials{
		AccessKey:  cfg.PrimeAccessKey,
		Passphrase: cfg.PrimePassphrase,
		SigningKey: cfg.PrimeSigningKey,
	}
	restClient := client.NewRestClient(creds, *httpClient)

	return &PrimeClient{transactionsSvc: transactions.NewTransactionsService(restClient)}, nil
}

// ListWalletTransactions fetches deposits of a wallet created since start.
func (c *PrimeClient) ListWalletTransactions(ctx context.Context, portfolioId, walletId string, start time.Time) ([]WalletTransaction, error) {
	request := &transactions.ListWalletTransactionsRequest{
		PortfolioId: portfolioId,
		WalletId:    walletId,
		Start:       start,
		Types:       []string{"DEPOSIT"},
		Pagination: &model.PaginationParams{
			Limit: 500,
		},
	}

	response, err := c.transactionsSvc.ListWalletTransactions(ctx, request)
	if err != nil {
		return nil, fmt.Errorf("unable to list wallet transactions: %w", err)
	}

	txns := make([]WalletTransaction, 0, len(response.Transactions))
	for _, tx := range response.Transactions {
		txns = append(txns, WalletTransaction{
			Id:            tx.Id,
			TransactionId: tx.TransactionId,
			Type:          tx.Type,
			Status:        tx.Status,
			Symbol:        tx.Symbol,
			Amount:        tx.Amount,
			Created:       tx.Created,
		})
	}

	zap.L().Debug("Prime wallet transactions received",
		zap.String("wallet_id", walletId),
		zap.Int("count", len(txns)))
	return txns, nil
}

// PrimeVerifier treats a gateway reference as the id of a Prime wallet deposit and verifies it once
// Prime reports the deposit settled.
type PrimeVerifier struct {
	source      WalletTransactionSource
	portfolioId string
	walletId    string
	lookback    time.Duration
	now         func() time.Time
}

func NewPrimeVerifier(source WalletTransactionSource, portfolioId, walletId string, lookback time.Duration) *PrimeVerifier {
	if lookback <= 0 {
		lookback = 24 * time.Hour
	}
	return &PrimeVerifier{
		source:      source,
		portfolioId: portfolioId,
		walletId:    walletId,
		lookback:    lookback,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

func (v *PrimeVerifier) Verify(ctx context.Context, ref string) (bool, error) {
	since := v.now().Add(-v.lookback)
	txns, err := v.source.ListWalletTransactions(ctx, v.portfolioId, v.walletId, since)
	if err != nil {
		return false, fmt.Errorf("%w: %v", ledger.ErrGatewayUnreachable, err)
	}

	for _, tx := range txns {
		if tx.Id != ref && tx.TransactionId != ref {
			continue
		}
		zap.L().Debug("Prime deposit found",
			zap.String("ref", ref),
			zap.String("status", tx.Status),
			zap.String("amount", tx.Amount),
			zap.String("symbol", tx.Symbol))
		return primeSettled[tx.Status], nil
	}

	zap.L().Debug("Prime deposit not seen yet", zap.String("ref", ref), zap.Time("since", since))
	return false, nil
}

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

package formance

import (
	"context"
	"fmt"

	"wallet-ledger-go/internal/models"
	"wallet-ledger-go/internal/money"

	"github.com/formancehq/formance-sdk-go/v3/pkg/models/operations"
	"go.uber.org/zap"
)

// PaymentAddress is the Formance account mirroring a payment account, e.g. users:u1:payments:USD.
func PaymentAddress(account models.PaymentAccount) string {
	return fmt.Sprintf("users:%s:payments:%s", account.UserId, account.Currency.Code)
}

// WalletAddress is the Formance account mirroring a wallet account, e.g. users:u1:wallets:BTC.
func WalletAddress(account models.WalletAccount) string {
	return fmt.Sprintf("users:%s:wallets:%s", account.UserId, account.Coin.Code)
}

// formanceAsset returns the Formance UMN notation, e.g. "USD/2".
func formanceAsset(cur money.Currency) string {
	return fmt.Sprintf("%s/%d", cur.Code, cur.Precision)
}

// describe attaches the local account identity to the Formance account once per process.
func (m *Mirror) describe(ctx context.Context, address string, metadata map[string]string) {
	if _, done := m.described.Load(address); done {
		return
	}

	_, err := m.client.Ledger.V2.AddMetadataToAccount(ctx, operations.V2AddMetadataToAccountRequest{
		Ledger:      m.ledger,
		Address:     address,
		RequestBody: metadata,
	})
	if err != nil {
		zap.L().Warn("Failed to describe Formance account", zap.String("address", address), zap.Error(err))
		return
	}
	m.described.Store(address, struct{}{})
}

func paymentMetadata(account models.PaymentAccount) map[string]string {
	return map[string]string{
		"entity_type": "payment_account",
		"account_id":  account.Id,
		"user_id":     account.UserId,
		"currency":    account.Currency.Code,
		"reference":   account.Reference,
	}
}

func walletMetadata(account models.WalletAccount) map[string]string {
	return map[string]string{
		"entity_type": "wallet_account",
		"account_id":  account.Id,
		"user_id":     account.UserId,
		"coin":        account.Coin.Code,
		"reference":   account.Reference,
	}
}

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
	"math/big"

	"wallet-ledger-go/internal/models"
	"wallet-ledger-go/internal/money"

	v3 "github.com/formancehq/formance-sdk-go/v3"
	"github.com/formancehq/formance-sdk-go/v3/pkg/models/operations"
	"github.com/formancehq/formance-sdk-go/v3/pkg/models/shared"
	"go.uber.org/zap"
)

// PaymentBalance returns the mirrored balance of a payment account. An account never mirrored has
// a zero balance.
func (m *Mirror) PaymentBalance(ctx context.Context, account models.PaymentAccount) (money.Money, error) {
	return m.balance(ctx, PaymentAddress(account), account.Currency)
}

// WalletBalance returns the mirrored balance of a wallet account.
func (m *Mirror) WalletBalance(ctx context.Context, account models.WalletAccount) (money.Money, error) {
	return m.balance(ctx, WalletAddress(account), account.Coin)
}

func (m *Mirror) balance(ctx context.Context, address string, cur money.Currency) (money.Money, error) {
	zap.L().Debug("Getting account balance from Formance", zap.String("address", address))

	resp, err := m.client.Ledger.V2.GetAccount(ctx, operations.V2GetAccountRequest{
		Ledger:  m.ledger,
		Address: address,
		Expand:  v3.Pointer("volumes"),
	})
	if err != nil {
		if isNotFoundError(err) {
			return money.Zero(cur), nil
		}
		return money.Money{}, fmt.Errorf("failed to get account %s: %w", address, err)
	}
	return toMoney(volumeBalance(resp.V2AccountResponse.Data.Volumes, formanceAsset(cur)), cur)
}

// volumeBalance extracts the balance for a specific asset from volumes.
func volumeBalance(vols map[string]shared.V2Volume, fAsset string) *big.Int {
	vol, ok := vols[fAsset]
	if !ok {
		return nil
	}
	if vol.Balance != nil {
		return vol.Balance
	}
	if vol.Input == nil {
		return nil
	}
	result := new(big.Int).Set(vol.Input)
	if vol.Output != nil {
		result.Sub(result, vol.Output)
	}
	return result
}

// toMoney converts a smallest-unit amount into Money.
func toMoney(raw *big.Int, cur money.Currency) (money.Money, error) {
	if raw == nil {
		return money.Zero(cur), nil
	}
	if !raw.IsInt64() {
		return money.Money{}, fmt.Errorf("%w: %s %s", money.ErrOverflow, raw.String(), cur.Code)
	}
	return money.New(raw.Int64(), cur), nil
}

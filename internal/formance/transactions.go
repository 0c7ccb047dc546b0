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
	"strconv"

	"wallet-ledger-go/internal/models"
	"wallet-ledger-go/internal/money"

	"github.com/formancehq/formance-sdk-go/v3/pkg/models/operations"
	"github.com/formancehq/formance-sdk-go/v3/pkg/models/shared"
	"go.uber.org/zap"
)

// Numscript templates. Metadata is set inside the script so every Formance transaction is
// self-describing. Sends allow overdraft because the local ledger already enforced availability.

const numscriptReceive = `vars {
  asset $asset
  number $amount
  account $account
  string $event_type
  string $record_id
  string $account_id
  string $description
  string $amount_human
}

send [$asset $amount] (
  source = @world
  destination = $account
)

set_tx_meta("event_type", $event_type)
set_tx_meta("record_id", $record_id)
set_tx_meta("account_id", $account_id)
set_tx_meta("description", $description)
set_tx_meta("amount_human", $amount_human)
`

const numscriptSend = `vars {
  asset $asset
  number $amount
  account $account
  string $event_type
  string $record_id
  string $account_id
  string $description
  string $amount_human
}

send [$asset $amount] (
  source = $account allowing unbounded overdraft
  destination = @world
)

set_tx_meta("event_type", $event_type)
set_tx_meta("record_id", $record_id)
set_tx_meta("account_id", $account_id)
set_tx_meta("description", $description)
set_tx_meta("amount_human", $amount_human)
`

// movement is one balance change to mirror, independent of the account kind.
type movement struct {
	eventType   string
	recordId    string
	accountId   string
	address     string
	direction   models.TransactionType
	value       money.Money
	description string
}

func paymentMovement(account models.PaymentAccount, txn models.PaymentTransaction) movement {
	return movement{
		eventType:   "payment_" + string(txn.Type),
		recordId:    txn.Id,
		accountId:   account.Id,
		address:     PaymentAddress(account),
		direction:   txn.Type,
		value:       txn.Value,
		description: txn.Description,
	}
}

func transferMovement(account models.WalletAccount, record models.TransferRecord) movement {
	return movement{
		eventType:   "transfer_" + string(record.Type),
		recordId:    record.Id,
		accountId:   account.Id,
		address:     WalletAddress(account),
		direction:   record.Type,
		value:       record.Value,
		description: record.Description,
	}
}

// posting builds the Formance transaction for a movement.
func (mv movement) posting() (shared.V2PostTransaction, error) {
	if !mv.value.IsPositive() {
		return shared.V2PostTransaction{}, fmt.Errorf("cannot mirror %s of %s", mv.eventType, mv.value)
	}

	script := numscriptReceive
	if mv.direction == models.TransactionSend {
		script = numscriptSend
	}

	return shared.V2PostTransaction{
		Reference: strPtr(mv.recordId),
		Script: &shared.V2PostTransactionScript{
			Plain: script,
			Vars: map[string]string{
				"asset":        formanceAsset(mv.value.Currency()),
				"amount":       strconv.FormatInt(mv.value.Amount(), 10),
				"account":      mv.address,
				"event_type":   mv.eventType,
				"record_id":    mv.recordId,
				"account_id":   mv.accountId,
				"description":  mv.description,
				"amount_human": mv.value.Value().StringFixed(mv.value.Currency().Precision),
			},
		},
	}, nil
}

// RecordPayment mirrors a completed payment transaction.
func (m *Mirror) RecordPayment(ctx context.Context, account models.PaymentAccount, txn models.PaymentTransaction) error {
	if txn.Status != models.StatusCompleted {
		return nil
	}
	m.describe(ctx, PaymentAddress(account), paymentMetadata(account))

	postTx, err := paymentMovement(account, txn).posting()
	if err != nil {
		return err
	}
	postTx.Timestamp = &txn.UpdatedAt
	return m.post(ctx, postTx)
}

// RecordTransfer mirrors a wallet transfer record.
func (m *Mirror) RecordTransfer(ctx context.Context, account models.WalletAccount, record models.TransferRecord) error {
	m.describe(ctx, WalletAddress(account), walletMetadata(account))

	postTx, err := transferMovement(account, record).posting()
	if err != nil {
		return err
	}
	postTx.Timestamp = &record.CreatedAt
	return m.post(ctx, postTx)
}

func (m *Mirror) post(ctx context.Context, postTx shared.V2PostTransaction) error {
	_, err := m.client.Ledger.V2.CreateTransaction(ctx, operations.V2CreateTransactionRequest{
		Ledger:            m.ledger,
		V2PostTransaction: postTx,
	})
	if err != nil {
		if isConflictError(err) {
			return nil // idempotent
		}
		return fmt.Errorf("error recording movement %s: %w", *postTx.Reference, err)
	}

	zap.L().Info("Movement mirrored in Formance",
		zap.String("reference", *postTx.Reference),
		zap.String("account", postTx.Script.Vars["account"]),
		zap.String("amount", postTx.Script.Vars["amount_human"]))
	return nil
}

func strPtr(s string) *string { return &s }

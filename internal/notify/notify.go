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

package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"wallet-ledger-go/internal/ledger"
	"wallet-ledger-go/internal/transport"

	"go.uber.org/zap"
)

// Compile-time checks: every notifier must satisfy ledger.Notifier.
var (
	_ ledger.Notifier = (*LogNotifier)(nil)
	_ ledger.Notifier = (*WebhookNotifier)(nil)
	_ ledger.Notifier = Multi(nil)
)

// LogNotifier writes each event to the structured log.
type LogNotifier struct{}

func (LogNotifier) Notify(_ context.Context, event ledger.Event) error {
	zap.L().Info("Payment notification",
		zap.String("kind", string(event.Kind)),
		zap.String("user_id", event.UserId),
		zap.String("account_id", event.Account.Id),
		zap.String("transaction_id", event.Transaction.Id),
		zap.String("status", string(event.Transaction.Status)),
		zap.String("amount", event.Transaction.Value.Format()),
		zap.Time("occurred_at", event.OccurredAt))
	return nil
}

// Payload is the JSON body posted for each event.
type Payload struct {
	Kind          string    `json:"kind"`
	UserId        string    `json:"user_id"`
	AccountId     string    `json:"account_id"`
	Reference     string    `json:"reference"`
	TransactionId string    `json:"transaction_id"`
	Type          string    `json:"type"`
	Status        string    `json:"status"`
	Amount        string    `json:"amount"`
	Currency      string    `json:"currency"`
	Display       string    `json:"display"`
	Description   string    `json:"description"`
	OccurredAt    time.Time `json:"occurred_at"`
}

func NewPayload(event ledger.Event) Payload {
	txn := event.Transaction
	return Payload{
		Kind:          string(event.Kind),
		UserId:        event.UserId,
		AccountId:     event.Account.Id,
		Reference:     event.Account.Reference,
		TransactionId: txn.Id,
		Type:          string(txn.Type),
		Status:        string(txn.Status),
		Amount:        txn.Value.Value().StringFixed(txn.Value.Currency().Precision),
		Currency:      txn.Value.Currency().Code,
		Display:       txn.Value.Format(),
		Description:   txn.Description,
		OccurredAt:    event.OccurredAt.UTC(),
	}
}

// WebhookNotifier posts each event as JSON to a fixed URL. Any non-2xx answer is an error.
type WebhookNotifier struct {
	url    string
	client *http.Client
}

func NewWebhookNotifier(url string, timeout time.Duration) (*WebhookNotifier, error) {
	if url == "" {
		return nil, errors.New("webhook url cannot be empty")
	}
	client, err := transport.NewHttpClient(timeout)
	if err != nil {
		return nil, fmt.Errorf("unable to create webhook http client: %w", err)
	}
	return &WebhookNotifier{url: url, client: client}, nil
}

func (w *WebhookNotifier) Notify(ctx context.Context, event ledger.Event) error {
	body, err := json.Marshal(NewPayload(event))
	if err != nil {
		return fmt.Errorf("unable to encode notification: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("unable to build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "wallet-ledger-webhook/1.0")
	req.Header.Set("Idempotency-Key", string(event.Kind)+":"+event.Transaction.Id)

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("unable to deliver webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook endpoint returned %d", resp.StatusCode)
	}
	return nil
}

// Multi delivers every event to each notifier in turn and joins their failures.
type Multi []ledger.Notifier

func (m Multi) Notify(ctx context.Context, event ledger.Event) error {
	var errs []error
	for _, n := range m {
		if err := n.Notify(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

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

package models

import (
	"fmt"
	"time"

	"wallet-ledger-go/internal/money"
)

// PendingOverdueAfter is how long a transaction may stay pending before sweeps flag it.
const PendingOverdueAfter = 5 * time.Hour

// TransactionType is the direction of a balance movement.
type TransactionType string

const (
	TransactionSend    TransactionType = "send"
	TransactionReceive TransactionType = "receive"
)

func (t TransactionType) Valid() bool {
	return t == TransactionSend || t == TransactionReceive
}

// TransactionStatus is the lifecycle state of a payment transaction.
type TransactionStatus string

const (
	StatusPendingTransfer TransactionStatus = "pending-transfer"
	StatusPendingGateway  TransactionStatus = "pending-gateway"
	StatusCompleted       TransactionStatus = "completed"
	StatusCanceled        TransactionStatus = "canceled"
)

var transactionTransitions = map[TransactionStatus][]TransactionStatus{
	StatusPendingTransfer: {StatusCompleted, StatusCanceled},
	StatusPendingGateway:  {StatusCompleted, StatusCanceled},
}

// ParseTransactionStatus converts a stored status string into the closed set of statuses.
func ParseTransactionStatus(s string) (TransactionStatus, error) {
	switch status := TransactionStatus(s); status {
	case StatusPendingTransfer, StatusPendingGateway, StatusCompleted, StatusCanceled:
		return status, nil
	default:
		return "", fmt.Errorf("unknown transaction status %q", s)
	}
}

func (s TransactionStatus) IsPending() bool {
	return s == StatusPendingTransfer || s == StatusPendingGateway
}

func (s TransactionStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCanceled
}

// CanTransitionTo reports whether next is a legal successor of s.
func (s TransactionStatus) CanTransitionTo(next TransactionStatus) bool {
	for _, allowed := range transactionTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// GatewayData is the payment gateway metadata of a gateway deposit.
type GatewayData struct {
	Ref  string
	Name string
	Url  string
}

// TransferData is the bank metadata of a manual transfer.
type TransferData struct {
	Bank        string
	Beneficiary string
	Number      string
	Country     string
	Note        string
}

// PaymentTransaction is a single movement on a payment account. Gateway and Transfer are mutually exclusive.
type PaymentTransaction struct {
	Id               string
	PaymentAccountId string
	Type             TransactionType
	Status           TransactionStatus
	Value            money.Money
	Balance          *money.Money
	Description      string
	Gateway          *GatewayData
	Transfer         *TransferData
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

func (t *PaymentTransaction) IsPending() bool {
	return t.Status.IsPending()
}

// IsPendingOverdue reports whether the transaction is still pending after PendingOverdueAfter.
func (t *PaymentTransaction) IsPendingOverdue(now time.Time) bool {
	return t.Status.IsPending() && now.Sub(t.CreatedAt) > PendingOverdueAfter
}

// NeedsBalanceSnapshot reports whether the completed transaction has no running balance recorded yet.
func (t *PaymentTransaction) NeedsBalanceSnapshot() bool {
	return t.Status == StatusCompleted && t.Balance == nil
}

// BankAccount is the counterparty of a manual transfer.
type BankAccount struct {
	BankName    string
	Beneficiary string
	Number      string
	Country     string
	Note        string
}

// TransferDescription is the human readable description stored on transfer transactions.
func (b BankAccount) TransferDescription() string {
	return fmt.Sprintf("Bank transfer: %s, %s (%s)", b.Beneficiary, b.BankName, maskNumber(b.Number))
}

// TransferData converts the bank account into transaction metadata.
func (b BankAccount) TransferData() *TransferData {
	return &TransferData{
		Bank:        b.BankName,
		Beneficiary: b.Beneficiary,
		Number:      b.Number,
		Country:     b.Country,
		Note:        b.Note,
	}
}

func maskNumber(number string) string {
	if len(number) <= 4 {
		return number
	}
	return "****" + number[len(number)-4:]
}

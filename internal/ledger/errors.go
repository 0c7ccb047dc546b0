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
	"errors"
	"net/http"

	"wallet-ledger-go/internal/money"
	"wallet-ledger-go/internal/store"
)

var (
	ErrCurrencyMismatch      = money.ErrCurrencyMismatch
	ErrInsufficientBalance   = errors.New("insufficient balance")
	ErrInsufficientAvailable = errors.New("insufficient trader available balance")
	ErrForbidden             = errors.New("forbidden")
	ErrNotPending            = errors.New("transaction is not pending")
	ErrNotPendingGateway     = errors.New("transaction is not a pending gateway receive")
	ErrInvalidGatewayPayload = errors.New("invalid gateway payload")
	ErrInvalidAmount         = errors.New("amount must be positive")
	ErrInvalidTrade          = errors.New("invalid trade")
	ErrRateUnavailable       = errors.New("exchange rate unavailable")
	ErrGatewayUnreachable    = errors.New("payment gateway unreachable")
	ErrUsageLimitExceeded    = errors.New("feature usage limit exceeded")
)

// StatusCode maps an error returned by the ledger onto the HTTP status an API layer should answer with.
func StatusCode(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrInvalidGatewayPayload), errors.Is(err, ErrInvalidAmount),
		errors.Is(err, ErrInvalidTrade), errors.Is(err, money.ErrUnknownCurrency), errors.Is(err, money.ErrFractionalAmount):
		return http.StatusBadRequest
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrNotPending), errors.Is(err, ErrNotPendingGateway),
		errors.Is(err, store.ErrStatusChanged), errors.Is(err, store.ErrDuplicate):
		return http.StatusConflict
	case errors.Is(err, ErrInsufficientBalance), errors.Is(err, ErrInsufficientAvailable):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ErrUsageLimitExceeded):
		return http.StatusTooManyRequests
	case errors.Is(err, ErrGatewayUnreachable):
		return http.StatusBadGateway
	case errors.Is(err, ErrRateUnavailable):
		return http.StatusServiceUnavailable
	default:
		// currency mismatches and lock ordering faults are programming errors
		return http.StatusInternalServerError
	}
}

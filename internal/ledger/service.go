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

// Package ledger implements the payment and wallet ledger: derived balances, locked transfers,
// pending transaction completion and exchange trade settlement.
//
// Every mutating operation runs inside one store atomic unit. Row locks are taken up-front in lock
// order, state is reloaded under those locks, and side effects (balance snapshots, notifications,
// the external ledger mirror) are registered as post-commit hooks so a rolled back unit never leaks
// them.
package ledger

import (
	"errors"
	"time"

	"wallet-ledger-go/internal/models"
	"wallet-ledger-go/internal/store"

	"github.com/go-playground/validator/v10"
)

// Dependencies are the collaborators of the Service. Store and Limiter are required.
type Dependencies struct {
	Store    store.Store
	Rates    RateConverter
	Verifier GatewayVerifier
	Limiter  FeatureLimiter
	Notifier Notifier
	Mirror   Mirror
	Settings models.LedgerSettings
	Now      func() time.Time
}

type Service struct {
	store    store.Store
	rates    RateConverter
	verifier GatewayVerifier
	limiter  FeatureLimiter
	notifier Notifier
	mirror   Mirror
	settings models.LedgerSettings
	validate *validator.Validate
	now      func() time.Time
}

func NewService(deps Dependencies) (*Service, error) {
	if deps.Store == nil {
		return nil, errors.New("ledger store is required")
	}
	if deps.Limiter == nil {
		return nil, errors.New("feature limiter is required")
	}

	now := deps.Now
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}

	return &Service{
		store:    deps.Store,
		rates:    deps.Rates,
		verifier: deps.Verifier,
		limiter:  deps.Limiter,
		notifier: deps.Notifier,
		mirror:   deps.Mirror,
		settings: deps.Settings,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		now:      now,
	}, nil
}

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

package common

import (
	"context"
	"errors"
	"fmt"
	"time"

	"wallet-ledger-go/internal/models"
	"wallet-ledger-go/internal/store"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var ErrUserExists = errors.New("user already exists")

// InitializeUsers retrieves users based on an optional email filter.
// If emailFilter is provided, returns a single user with that email.
// If emailFilter is empty, returns all users.
func InitializeUsers(ctx context.Context, reader store.Reader, emailFilter string, logger *zap.Logger) ([]models.User, error) {
	var users []models.User

	if emailFilter != "" {
		logger.Info("Looking up user by email", zap.String("email", emailFilter))
		user, err := reader.GetUserByEmail(ctx, emailFilter)
		if err != nil {
			return nil, fmt.Errorf("user not found: %w", err)
		}
		users = append(users, *user)
	} else {
		allUsers, err := reader.GetUsers(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to get users: %w", err)
		}
		users = allUsers
	}

	logger.Info("Retrieved users", zap.Int("count", len(users)))
	return users, nil
}

// CreateUser stores a new user with a fresh id. A taken email is reported as ErrUserExists.
func CreateUser(ctx context.Context, st store.Store, name, email string) (*models.User, error) {
	user := &models.User{
		Id:        uuid.New().String(),
		Name:      name,
		Email:     email,
		CreatedAt: time.Now().UTC(),
	}

	err := st.Atomic(ctx, func(ctx context.Context, tx store.Tx) error {
		return tx.CreateUser(ctx, user)
	})
	if errors.Is(err, store.ErrDuplicate) {
		return nil, fmt.Errorf("%w: %s", ErrUserExists, email)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

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

package database

import (
	"context"
	"fmt"

	"wallet-ledger-go/internal/models"
)

func scanUser(row rowScanner) (*models.User, error) {
	var user models.User
	if err := row.Scan(&user.Id, &user.Name, &user.Email, &user.CreatedAt); err != nil {
		return nil, convertErr(err)
	}
	return &user, nil
}

func (q *queries) GetUsers(ctx context.Context) ([]models.User, error) {
	rows, err := q.query(ctx, querySelectUsers)
	if err != nil {
		return nil, fmt.Errorf("unable to query users: %w", err)
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("unable to scan user: %w", err)
		}
		users = append(users, *user)
	}
	return users, rows.Err()
}

func (q *queries) GetUserById(ctx context.Context, userId string) (*models.User, error) {
	user, err := scanUser(q.queryRow(ctx, querySelectUserById, userId))
	if err != nil {
		return nil, fmt.Errorf("unable to get user %s: %w", userId, err)
	}
	return user, nil
}

func (q *queries) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	user, err := scanUser(q.queryRow(ctx, querySelectUserByEmail, email))
	if err != nil {
		return nil, fmt.Errorf("unable to get user by email: %w", err)
	}
	return user, nil
}

func (t *Tx) CreateUser(ctx context.Context, user *models.User) error {
	if _, err := t.exec(ctx, queryInsertUser, user.Id, user.Name, user.Email, user.CreatedAt.UTC()); err != nil {
		return fmt.Errorf("unable to create user: %w", err)
	}
	return nil
}

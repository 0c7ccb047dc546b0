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
	"database/sql"

	"wallet-ledger-go/internal/lock"
	"wallet-ledger-go/internal/store"
)

// Compile-time check: *Tx must satisfy store.Tx.
var _ store.Tx = (*Tx)(nil)

// Tx is an open atomic unit
type Tx struct {
	queries
	scope *lock.Scope
	hooks []func(ctx context.Context)
}

// dbtx is the subset shared by *sql.DB and *sql.Tx
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type queries struct {
	db      dbtx
	dialect *dialect
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (q *queries) exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	result, err := q.db.ExecContext(ctx, q.dialect.rebind(query), args...)
	return result, convertErr(err)
}

func (q *queries) query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	rows, err := q.db.QueryContext(ctx, q.dialect.rebind(query), args...)
	return rows, convertErr(err)
}

func (q *queries) queryRow(ctx context.Context, query string, args ...any) *sql.Row {
	return q.db.QueryRowContext(ctx, q.dialect.rebind(query), args...)
}

// LockRow blocks until the row behind key is exclusively held by this unit.
func (t *Tx) LockRow(ctx context.Context, key lock.Key) error {
	query, err := t.dialect.lockQuery(key.Kind)
	if err != nil {
		return err
	}

	var id string
	if err := t.db.QueryRowContext(ctx, query, key.Id).Scan(&id); err != nil {
		return convertErr(err)
	}
	return nil
}

func (t *Tx) Lock(ctx context.Context, keys ...lock.Key) error {
	return t.scope.Acquire(ctx, t, keys...)
}

func (t *Tx) AfterCommit(fn func(ctx context.Context)) {
	t.hooks = append(t.hooks, fn)
}

// expectOneRow turns a conditional update that matched nothing into store.ErrStatusChanged.
func expectOneRow(result sql.Result) error {
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n != 1 {
		return store.ErrStatusChanged
	}
	return nil
}

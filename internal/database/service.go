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
	"errors"
	"fmt"
	"time"

	"wallet-ledger-go/internal/lock"
	"wallet-ledger-go/internal/models"
	"wallet-ledger-go/internal/store"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"go.uber.org/zap"
)

// Compile-time check: *Service must satisfy store.Store.
var _ store.Store = (*Service)(nil)

type Service struct {
	queries
	db *sql.DB
}

type txContextKey struct{}

func NewService(ctx context.Context, cfg models.DatabaseConfig) (*Service, error) {
	d, err := dialectFor(cfg.Driver)
	if err != nil {
		return nil, err
	}

	// Validate configuration
	if d == sqliteDialect && cfg.Path == "" {
		return nil, fmt.Errorf("database path cannot be empty")
	}
	if d == postgresDialect && cfg.Url == "" {
		return nil, fmt.Errorf("database url cannot be empty")
	}
	if cfg.MaxOpenConns <= 0 {
		return nil, fmt.Errorf("max open connections must be positive, got %d", cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns < 0 {
		return nil, fmt.Errorf("max idle connections cannot be negative, got %d", cfg.MaxIdleConns)
	}
	if cfg.PingTimeout <= 0 {
		return nil, fmt.Errorf("ping timeout must be positive, got %v", cfg.PingTimeout)
	}
	if cfg.BusyTimeout < 0 {
		return nil, fmt.Errorf("busy timeout cannot be negative, got %v", cfg.BusyTimeout)
	}

	var dsn string
	switch d {
	case sqliteDialect:
		zap.L().Info("Opening SQLite database", zap.String("file", cfg.Path))
		dsn = fmt.Sprintf("%s?_journal_mode=WAL&_synchronous=NORMAL&_foreign_keys=1&_txlock=immediate&_busy_timeout=%d",
			cfg.Path, cfg.BusyTimeout.Milliseconds())
	case postgresDialect:
		zap.L().Info("Opening PostgreSQL database")
		dsn = cfg.Url
	}

	db, err := sql.Open(cfg.Driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("unable to open database: %w", err)
	}

	// Set connection timeouts and limits
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	db.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	// Test connection with timeout
	pingCtx, cancel := context.WithTimeout(ctx, cfg.PingTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("unable to ping database: %w", err)
	}

	service := &Service{queries: queries{db: db, dialect: d}, db: db}
	if err := service.initSchema(ctx, cfg.CreateDummyUsers); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("unable to initialize schema: %w", err)
	}

	zap.L().Info("Database service initialized successfully", zap.String("dialect", d.name))
	return service, nil
}

func (s *Service) Close() {
	if err := s.db.Close(); err != nil {
		zap.L().Warn("Failed to close database connection", zap.Error(err))
	}
}

func (s *Service) initSchema(ctx context.Context, createDummyUsers bool) error {
	for _, stmt := range s.dialect.statements() {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}

	if !createDummyUsers {
		zap.L().Info("Skipping dummy user creation (CREATE_DUMMY_USERS=false)")
		return nil
	}

	users := []struct {
		name  string
		email string
	}{
		{"Alice Johnson", "alice.johnson@example.com"},
		{"Bob Smith", "bob.smith@example.com"},
		{"Carol Williams", "carol.williams@example.com"},
	}

	for _, user := range users {
		id := uuid.New().String()
		_, err := s.exec(ctx, queryInsertDummyUser, id, user.name, user.email, time.Now().UTC())
		if err != nil {
			zap.L().Error("Failed to insert dummy user", zap.String("name", user.name), zap.Error(err))
		} else {
			zap.L().Info("Dummy user ensured", zap.String("name", user.name), zap.String("email", user.email))
		}
	}
	return nil
}

// runUnit executes fn inside one database transaction. The deferred rollback releases the
// transaction and its locks on every exit path, panics included; after a commit it is a no-op.
func (s *Service) runUnit(ctx context.Context, fn func(ctx context.Context, tx store.Tx) error) (*Tx, error) {
	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("unable to begin transaction: %w", err)
	}

	tx := &Tx{
		queries: queries{db: sqlTx, dialect: s.dialect},
		scope:   lock.NewScope(),
	}
	defer func() {
		if rbErr := sqlTx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			zap.L().Warn("Failed to roll back transaction", zap.Error(rbErr))
		}
		tx.scope.Release()
	}()

	if err := fn(context.WithValue(ctx, txContextKey{}, tx), tx); err != nil {
		return nil, err
	}
	if err := sqlTx.Commit(); err != nil {
		return nil, fmt.Errorf("unable to commit transaction: %w", convertErr(err))
	}
	return tx, nil
}

// Atomic runs fn in one database transaction. Row locks taken through the Tx are held until it
// commits or rolls back; AfterCommit hooks run only after a successful commit.
func (s *Service) Atomic(ctx context.Context, fn func(ctx context.Context, tx store.Tx) error) error {
	if outer, ok := ctx.Value(txContextKey{}).(*Tx); ok {
		return fn(ctx, outer)
	}

	tx, err := s.runUnit(ctx, fn)
	if err != nil {
		return err
	}

	hookCtx := context.WithoutCancel(ctx)
	for _, hook := range tx.hooks {
		hook(hookCtx)
	}
	return nil
}

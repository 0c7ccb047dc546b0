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

package sweeper

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"wallet-ledger-go/internal/ledger"
	"wallet-ledger-go/internal/models"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// PendingService is the part of the ledger service the sweeper drives.
type PendingService interface {
	ListPending(ctx context.Context, limit int) ([]models.PaymentTransaction, error)
	CompleteGateway(ctx context.Context, id string) (*models.PaymentTransaction, error)
	CancelPending(ctx context.Context, id string) (*models.PaymentTransaction, error)
}

// RateRefresher reloads exchange rates from their source.
type RateRefresher interface {
	Refresh(ctx context.Context) error
}

// Report summarizes one sweep.
type Report struct {
	Scanned   int
	Completed int
	Pending   int
	Overdue   int
	Canceled  int
	Failed    int
}

type Option func(*Sweeper)

// WithRates refreshes rates on the given interval alongside the sweep.
func WithRates(rates RateRefresher, interval time.Duration) Option {
	return func(s *Sweeper) {
		s.rates = rates
		s.ratesInterval = interval
	}
}

// WithClock overrides the clock used to decide whether a record is overdue.
func WithClock(now func() time.Time) Option {
	return func(s *Sweeper) { s.now = now }
}

// Sweeper periodically completes gateway deposits that the gateway has settled and surfaces pending
// records older than models.PendingOverdueAfter.
type Sweeper struct {
	svc           PendingService
	cfg           models.SweeperConfig
	rates         RateRefresher
	ratesInterval time.Duration
	now           func() time.Time

	cron   *cron.Cron
	cancel context.CancelFunc
	mu     sync.Mutex
}

func New(svc PendingService, cfg models.SweeperConfig, opts ...Option) *Sweeper {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 100
	}
	s := &Sweeper{
		svc: svc,
		cfg: cfg,
		now: time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	logger := cronLogger{zap.L().Sugar().With("component", "sweeper")}
	s.cron = cron.New(
		cron.WithSeconds(),
		cron.WithLogger(logger),
		cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
	)
	return s
}

// Start registers the jobs and starts the scheduler. Jobs run until Stop is called or ctx is done.
func (s *Sweeper) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		return fmt.Errorf("sweeper already started")
	}

	ctx, cancel := context.WithCancel(ctx)
	if _, err := s.cron.AddFunc(s.cfg.Schedule, func() { s.runSweep(ctx) }); err != nil {
		cancel()
		return fmt.Errorf("invalid sweeper schedule %q: %w", s.cfg.Schedule, err)
	}

	if s.rates != nil && s.ratesInterval > 0 {
		s.cron.Schedule(cron.Every(s.ratesInterval), cron.FuncJob(func() {
			if err := s.rates.Refresh(ctx); err != nil {
				zap.L().Warn("Rate refresh failed", zap.Error(err))
			}
		}))
	}

	s.cancel = cancel
	s.cron.Start()

	zap.L().Info("Sweeper started",
		zap.String("schedule", s.cfg.Schedule),
		zap.Int("batch_size", s.cfg.BatchSize),
		zap.Bool("cancel_overdue", s.cfg.CancelOverdue),
		zap.Duration("rates_interval", s.ratesInterval))
	return nil
}

// Stop cancels in-flight jobs and waits for them to return.
func (s *Sweeper) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel == nil {
		return
	}

	zap.L().Info("Stopping sweeper")
	s.cancel()
	<-s.cron.Stop().Done()
	s.cancel = nil
	zap.L().Info("Sweeper stopped")
}

func (s *Sweeper) runSweep(ctx context.Context) {
	report, err := s.Sweep(ctx)
	if err != nil {
		zap.L().Error("Sweep failed", zap.Error(err))
		return
	}
	zap.L().Info("Sweep finished",
		zap.Int("scanned", report.Scanned),
		zap.Int("completed", report.Completed),
		zap.Int("pending", report.Pending),
		zap.Int("overdue", report.Overdue),
		zap.Int("canceled", report.Canceled),
		zap.Int("failed", report.Failed))
}

// Sweep makes one pass over the oldest pending transactions.
func (s *Sweeper) Sweep(ctx context.Context) (Report, error) {
	var report Report

	pending, err := s.svc.ListPending(ctx, s.cfg.BatchSize)
	if err != nil {
		return report, fmt.Errorf("failed to list pending transactions: %w", err)
	}

	now := s.now()
	for i := range pending {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		report.Scanned++

		txn := &pending[i]
		if txn.Status == models.StatusPendingGateway {
			completed, err := s.svc.CompleteGateway(ctx, txn.Id)
			switch {
			case errors.Is(err, ledger.ErrNotPendingGateway):
				// settled or canceled since it was listed
				continue
			case err != nil:
				report.Failed++
				zap.L().Warn("Failed to complete gateway deposit",
					zap.String("transaction_id", txn.Id),
					zap.String("gateway", gatewayName(txn)),
					zap.Error(err))
			case completed.Status == models.StatusCompleted:
				report.Completed++
				continue
			}
		}

		report.Pending++
		if !txn.IsPendingOverdue(now) {
			continue
		}

		report.Overdue++
		zap.L().Warn("Transaction pending for too long",
			zap.String("transaction_id", txn.Id),
			zap.String("account_id", txn.PaymentAccountId),
			zap.String("status", string(txn.Status)),
			zap.Duration("age", now.Sub(txn.CreatedAt)))

		if !s.cfg.CancelOverdue {
			continue
		}
		canceled, err := s.svc.CancelPending(ctx, txn.Id)
		if err != nil {
			report.Failed++
			zap.L().Error("Failed to cancel overdue transaction", zap.String("transaction_id", txn.Id), zap.Error(err))
			continue
		}
		if canceled.Status == models.StatusCanceled {
			report.Canceled++
		}
	}
	return report, nil
}

func gatewayName(txn *models.PaymentTransaction) string {
	if txn.Gateway == nil {
		return ""
	}
	return txn.Gateway.Name
}

// cronLogger routes the scheduler's own logs through zap.
type cronLogger struct {
	log *zap.SugaredLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Errorw(msg, append(keysAndValues, "error", err)...)
}

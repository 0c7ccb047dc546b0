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
	"fmt"
	"log"
	"strings"

	"wallet-ledger-go/internal/database"
	"wallet-ledger-go/internal/formance"
	"wallet-ledger-go/internal/gateway"
	"wallet-ledger-go/internal/ledger"
	"wallet-ledger-go/internal/limits"
	"wallet-ledger-go/internal/models"
	"wallet-ledger-go/internal/notify"
	"wallet-ledger-go/internal/rates"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// init loads environment variables from .env file if it exists
func init() {
	// Try to load .env file - if it doesn't exist, that's okay
	// Environment variables can be set via other means (shell export, docker, etc.)
	if err := godotenv.Load(); err != nil {
		log.Printf("Note: No .env file found or unable to load it: %v\n", err)
		log.Println("Make sure to set environment variables via export or other means")
	} else {
		log.Println("✓ Loaded environment variables from .env file")
	}
}

type Services struct {
	DbService *database.Service
	Rates     *rates.Converter
	Limiter   *limits.Limiter
	Gateways  *gateway.Registry
	Mirror    *formance.Mirror
	Ledger    *ledger.Service
	Settings  *models.LedgerSettings
}

func InitializeLogger() (*zap.Logger, func()) {
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	zap.ReplaceGlobals(logger)

	cleanup := func() {
		if err := logger.Sync(); err != nil {
			if !isIgnorableSyncError(err) {
				log.Printf("Failed to sync logger: %v\n", err)
			}
		}
	}

	return logger, cleanup
}

func InitializeServices(ctx context.Context, cfg *models.Config) (*Services, error) {
	zap.L().Info("Loading ledger settings", zap.String("file", cfg.Ledger.SettingsFile))
	settings, err := LoadSettings(cfg.Ledger.SettingsFile)
	if err != nil {
		return nil, err
	}

	converter, err := rates.NewConverter(settings.Rates, cfg.Rates)
	if err != nil {
		return nil, err
	}
	if cfg.Rates.Url != "" {
		if err := converter.Refresh(ctx); err != nil {
			// static rates from the settings file still apply
			zap.L().Warn("Initial rate refresh failed", zap.Error(err))
		}
	}

	limiter, err := limits.NewLimiter(settings.Limits, converter)
	if err != nil {
		return nil, err
	}

	gateways, err := newGatewayRegistry(cfg.Gateway)
	if err != nil {
		return nil, err
	}

	notifier, err := newNotifier(cfg.Notify)
	if err != nil {
		return nil, err
	}

	var mirror *formance.Mirror
	if cfg.Formance.Enabled() {
		if mirror, err = formance.NewMirror(ctx, cfg.Formance); err != nil {
			return nil, err
		}
	}

	dbService, err := database.NewService(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}

	deps := ledger.Dependencies{
		Store:    dbService,
		Rates:    converter,
		Verifier: gateways,
		Limiter:  limiter,
		Notifier: notifier,
		Settings: *settings,
	}
	if mirror != nil {
		deps.Mirror = mirror
	}

	svc, err := ledger.NewService(deps)
	if err != nil {
		dbService.Close()
		return nil, err
	}

	return &Services{
		DbService: dbService,
		Rates:     converter,
		Limiter:   limiter,
		Gateways:  gateways,
		Mirror:    mirror,
		Ledger:    svc,
		Settings:  settings,
	}, nil
}

// HealthCheck verifies the database answers queries.
func (cs *Services) HealthCheck(ctx context.Context) error {
	if _, err := cs.DbService.GetUsers(ctx); err != nil {
		return fmt.Errorf("database health check failed: %w", err)
	}
	return nil
}

func (cs *Services) Close() {
	if cs.DbService != nil {
		cs.DbService.Close()
	}
}

func newGatewayRegistry(cfg models.GatewayConfig) (*gateway.Registry, error) {
	registry := gateway.NewRegistry()

	if cfg.HttpVerifyUrl != "" {
		for _, name := range cfg.HttpGateways {
			name = strings.TrimSpace(name)
			if name == "" {
				continue
			}
			verifier, err := gateway.NewHTTPVerifier(cfg.HttpVerifyUrl, name, cfg.Timeout)
			if err != nil {
				return nil, err
			}
			registry.Register(name, verifier)
		}
	}

	if cfg.PrimeEnabled() {
		zap.L().Info("Loading Prime API credentials")
		client, err := gateway.NewPrimeClient(cfg)
		if err != nil {
			return nil, fmt.Errorf("unable to create prime client: %w", err)
		}
		registry.Register("prime", gateway.NewPrimeVerifier(client, cfg.PrimePortfolioId, cfg.PrimeWalletId, cfg.PrimeLookback))
	}

	zap.L().Info("Gateway verifiers registered", zap.Strings("gateways", registry.Names()))
	return registry, nil
}

func newNotifier(cfg models.NotifyConfig) (ledger.Notifier, error) {
	notifiers := notify.Multi{notify.LogNotifier{}}
	if cfg.WebhookUrl != "" {
		webhook, err := notify.NewWebhookNotifier(cfg.WebhookUrl, cfg.Timeout)
		if err != nil {
			return nil, err
		}
		notifiers = append(notifiers, webhook)
	}
	return notifiers, nil
}

func isIgnorableSyncError(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "sync /dev/stderr: inappropriate ioctl for device") ||
		strings.Contains(msg, "sync /dev/stdout: inappropriate ioctl for device")
}

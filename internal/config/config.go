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

package config

import (
	"fmt"

	"wallet-ledger-go/internal/database"
	"wallet-ledger-go/internal/models"

	"github.com/caarlos0/env/v11"
	"github.com/robfig/cron/v3"
)

func Load() (*models.Config, error) {
	var cfg models.Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env config: %w", err)
	}
	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func validate(cfg *models.Config) error {
	switch cfg.Database.Driver {
	case database.DriverSQLite:
		if cfg.Database.Path == "" {
			return fmt.Errorf("DATABASE_PATH is required for driver %s", cfg.Database.Driver)
		}
	case database.DriverPostgres:
		if cfg.Database.Url == "" {
			return fmt.Errorf("DATABASE_URL is required for driver %s", cfg.Database.Driver)
		}
	default:
		return fmt.Errorf("unsupported DATABASE_DRIVER %q", cfg.Database.Driver)
	}

	if cfg.Database.MaxOpenConns <= 0 {
		return fmt.Errorf("DB_MAX_OPEN_CONNS must be positive, got %d", cfg.Database.MaxOpenConns)
	}
	if cfg.Database.MaxIdleConns < 0 || cfg.Database.MaxIdleConns > cfg.Database.MaxOpenConns {
		return fmt.Errorf("DB_MAX_IDLE_CONNS must be between 0 and %d, got %d", cfg.Database.MaxOpenConns, cfg.Database.MaxIdleConns)
	}

	if cfg.Rates.Url != "" && cfg.Rates.RefreshInterval <= 0 {
		return fmt.Errorf("RATES_REFRESH_INTERVAL must be positive when RATES_URL is set")
	}

	if cfg.Formance.Enabled() && (cfg.Formance.ClientID == "" || cfg.Formance.ClientSecret == "") {
		return fmt.Errorf("FORMANCE_CLIENT_ID and FORMANCE_CLIENT_SECRET are required when FORMANCE_STACK_URL is set")
	}

	parser := cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	if _, err := parser.Parse(cfg.Sweeper.Schedule); err != nil {
		return fmt.Errorf("invalid SWEEPER_SCHEDULE %q: %w", cfg.Sweeper.Schedule, err)
	}
	if cfg.Sweeper.BatchSize <= 0 {
		return fmt.Errorf("SWEEPER_BATCH_SIZE must be positive, got %d", cfg.Sweeper.BatchSize)
	}
	return nil
}

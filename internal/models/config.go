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
	"time"

	"github.com/shopspring/decimal"
)

type Config struct {
	Database DatabaseConfig
	Ledger   LedgerConfig
	Rates    RatesConfig
	Gateway  GatewayConfig
	Formance FormanceConfig
	Notify   NotifyConfig
	Sweeper  SweeperConfig
}

// DatabaseConfig selects the storage backend. Driver is "sqlite3" (Path) or "pgx" (Url).
type DatabaseConfig struct {
	Driver           string        `env:"DATABASE_DRIVER" envDefault:"sqlite3"`
	Path             string        `env:"DATABASE_PATH" envDefault:"ledger.db"`
	Url              string        `env:"DATABASE_URL"`
	MaxOpenConns     int           `env:"DB_MAX_OPEN_CONNS" envDefault:"25"`
	MaxIdleConns     int           `env:"DB_MAX_IDLE_CONNS" envDefault:"5"`
	ConnMaxLifetime  time.Duration `env:"DB_CONN_MAX_LIFETIME" envDefault:"5m"`
	ConnMaxIdleTime  time.Duration `env:"DB_CONN_MAX_IDLE_TIME" envDefault:"30s"`
	PingTimeout      time.Duration `env:"DB_PING_TIMEOUT" envDefault:"5s"`
	BusyTimeout      time.Duration `env:"DB_BUSY_TIMEOUT" envDefault:"5s"`
	CreateDummyUsers bool          `env:"CREATE_DUMMY_USERS" envDefault:"false"`
}

type LedgerConfig struct {
	SettingsFile string `env:"SETTINGS_FILE" envDefault:"settings.yaml"`
}

// RatesConfig points at an optional JSON endpoint publishing units-per-USD rates.
type RatesConfig struct {
	Url             string        `env:"RATES_URL"`
	RefreshInterval time.Duration `env:"RATES_REFRESH_INTERVAL" envDefault:"10m"`
	Timeout         time.Duration `env:"RATES_TIMEOUT" envDefault:"10s"`
}

type GatewayConfig struct {
	HttpVerifyUrl    string        `env:"GATEWAY_HTTP_VERIFY_URL"`
	HttpGateways     []string      `env:"GATEWAY_HTTP_NAMES" envSeparator:"," envDefault:"stripe,paystack,flutterwave"`
	Timeout          time.Duration `env:"GATEWAY_TIMEOUT" envDefault:"15s"`
	PrimeAccessKey   string        `env:"PRIME_ACCESS_KEY"`
	PrimePassphrase  string        `env:"PRIME_PASSPHRASE"`
	PrimeSigningKey  string        `env:"PRIME_SIGNING_KEY"`
	PrimePortfolioId string        `env:"PRIME_PORTFOLIO_ID"`
	PrimeWalletId    string        `env:"PRIME_WALLET_ID"`
	PrimeLookback    time.Duration `env:"PRIME_LOOKBACK_WINDOW" envDefault:"24h"`
}

// PrimeEnabled reports whether every Prime credential is present.
func (c GatewayConfig) PrimeEnabled() bool {
	return c.PrimeAccessKey != "" && c.PrimePassphrase != "" && c.PrimeSigningKey != "" &&
		c.PrimePortfolioId != "" && c.PrimeWalletId != ""
}

type FormanceConfig struct {
	StackURL     string `env:"FORMANCE_STACK_URL"`
	ClientID     string `env:"FORMANCE_CLIENT_ID"`
	ClientSecret string `env:"FORMANCE_CLIENT_SECRET"`
	LedgerName   string `env:"FORMANCE_LEDGER" envDefault:"wallet-ledger"`
}

func (c FormanceConfig) Enabled() bool {
	return c.StackURL != ""
}

type NotifyConfig struct {
	WebhookUrl string        `env:"NOTIFY_WEBHOOK_URL"`
	Timeout    time.Duration `env:"NOTIFY_TIMEOUT" envDefault:"5s"`
}

type SweeperConfig struct {
	Schedule      string `env:"SWEEPER_SCHEDULE" envDefault:"@every 5m"`
	BatchSize     int    `env:"SWEEPER_BATCH_SIZE" envDefault:"100"`
	CancelOverdue bool   `env:"SWEEPER_CANCEL_OVERDUE" envDefault:"false"`
}

// LedgerSettings are the business settings read from the settings file.
// Amounts are in USD major units; Rates are units of a currency per one USD.
type LedgerSettings struct {
	MinPayment decimal.Decimal
	MaxPayment decimal.Decimal
	Rates      map[string]decimal.Decimal
	Limits     map[string]decimal.Decimal
}

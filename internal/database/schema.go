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

const sqliteSchema = `
	-- Users own accounts
	CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		email TEXT NOT NULL UNIQUE,
		created_at TIMESTAMP NOT NULL
	);

	-- Payment accounts: one per currency per user
	CREATE TABLE IF NOT EXISTS payment_accounts (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL REFERENCES users(id),
		currency TEXT NOT NULL,
		reference TEXT NOT NULL UNIQUE,
		created_at TIMESTAMP NOT NULL,
		UNIQUE(user_id, currency)
	);

	-- Payment transactions (append-mostly, status mutable)
	CREATE TABLE IF NOT EXISTS payment_transactions (
		id TEXT PRIMARY KEY,
		payment_account_id TEXT NOT NULL REFERENCES payment_accounts(id),
		type TEXT NOT NULL,
		status TEXT NOT NULL,
		value INTEGER NOT NULL,
		currency TEXT NOT NULL,
		balance INTEGER,
		description TEXT NOT NULL DEFAULT '',
		gateway_ref TEXT,
		gateway_name TEXT,
		gateway_url TEXT,
		transfer_bank TEXT,
		transfer_beneficiary TEXT,
		transfer_number TEXT,
		transfer_country TEXT,
		transfer_note TEXT,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_payment_transactions_account ON payment_transactions(payment_account_id, type, status);
	CREATE INDEX IF NOT EXISTS idx_payment_transactions_created_at ON payment_transactions(payment_account_id, created_at);
	CREATE INDEX IF NOT EXISTS idx_payment_transactions_status ON payment_transactions(status, created_at);

	-- Wallet accounts: one per coin per user
	CREATE TABLE IF NOT EXISTS wallet_accounts (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL REFERENCES users(id),
		coin TEXT NOT NULL,
		reference TEXT NOT NULL UNIQUE,
		created_at TIMESTAMP NOT NULL,
		UNIQUE(user_id, coin)
	);

	-- Coin movements on wallet accounts
	CREATE TABLE IF NOT EXISTS transfer_records (
		id TEXT PRIMARY KEY,
		wallet_account_id TEXT NOT NULL REFERENCES wallet_accounts(id),
		type TEXT NOT NULL,
		value INTEGER NOT NULL,
		coin TEXT NOT NULL,
		dollar_price TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMP NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_transfer_records_account ON transfer_records(wallet_account_id, type);

	-- Exchange trades between a wallet account and a payment account
	CREATE TABLE IF NOT EXISTS exchange_trades (
		id TEXT PRIMARY KEY,
		type TEXT NOT NULL,
		status TEXT NOT NULL,
		wallet_account_id TEXT NOT NULL REFERENCES wallet_accounts(id),
		payment_account_id TEXT NOT NULL REFERENCES payment_accounts(id),
		trader_id TEXT NOT NULL REFERENCES users(id),
		payment_value INTEGER NOT NULL,
		payment_currency TEXT NOT NULL,
		wallet_value INTEGER NOT NULL,
		fee_value INTEGER NOT NULL,
		coin TEXT NOT NULL,
		dollar_price TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL,
		completed_at TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_exchange_trades_payment ON exchange_trades(payment_account_id, type, status);
	CREATE INDEX IF NOT EXISTS idx_exchange_trades_wallet ON exchange_trades(wallet_account_id, type, status);

	-- Fee earnings
	CREATE TABLE IF NOT EXISTS earnings (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL REFERENCES users(id),
		value INTEGER NOT NULL,
		coin TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMP NOT NULL
	);
`

const postgresSchema = `
	CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		email TEXT NOT NULL UNIQUE,
		created_at TIMESTAMPTZ NOT NULL
	);

	CREATE TABLE IF NOT EXISTS payment_accounts (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL REFERENCES users(id),
		currency TEXT NOT NULL,
		reference TEXT NOT NULL UNIQUE,
		created_at TIMESTAMPTZ NOT NULL,
		UNIQUE(user_id, currency)
	);

	CREATE TABLE IF NOT EXISTS payment_transactions (
		id TEXT PRIMARY KEY,
		payment_account_id TEXT NOT NULL REFERENCES payment_accounts(id),
		type TEXT NOT NULL,
		status TEXT NOT NULL,
		value BIGINT NOT NULL,
		currency TEXT NOT NULL,
		balance BIGINT,
		description TEXT NOT NULL DEFAULT '',
		gateway_ref TEXT,
		gateway_name TEXT,
		gateway_url TEXT,
		transfer_bank TEXT,
		transfer_beneficiary TEXT,
		transfer_number TEXT,
		transfer_country TEXT,
		transfer_note TEXT,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_payment_transactions_account ON payment_transactions(payment_account_id, type, status);
	CREATE INDEX IF NOT EXISTS idx_payment_transactions_created_at ON payment_transactions(payment_account_id, created_at);
	CREATE INDEX IF NOT EXISTS idx_payment_transactions_status ON payment_transactions(status, created_at);

	CREATE TABLE IF NOT EXISTS wallet_accounts (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL REFERENCES users(id),
		coin TEXT NOT NULL,
		reference TEXT NOT NULL UNIQUE,
		created_at TIMESTAMPTZ NOT NULL,
		UNIQUE(user_id, coin)
	);

	CREATE TABLE IF NOT EXISTS transfer_records (
		id TEXT PRIMARY KEY,
		wallet_account_id TEXT NOT NULL REFERENCES wallet_accounts(id),
		type TEXT NOT NULL,
		value BIGINT NOT NULL,
		coin TEXT NOT NULL,
		dollar_price NUMERIC NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_transfer_records_account ON transfer_records(wallet_account_id, type);

	CREATE TABLE IF NOT EXISTS exchange_trades (
		id TEXT PRIMARY KEY,
		type TEXT NOT NULL,
		status TEXT NOT NULL,
		wallet_account_id TEXT NOT NULL REFERENCES wallet_accounts(id),
		payment_account_id TEXT NOT NULL REFERENCES payment_accounts(id),
		trader_id TEXT NOT NULL REFERENCES users(id),
		payment_value BIGINT NOT NULL,
		payment_currency TEXT NOT NULL,
		wallet_value BIGINT NOT NULL,
		fee_value BIGINT NOT NULL,
		coin TEXT NOT NULL,
		dollar_price NUMERIC NOT NULL,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL,
		completed_at TIMESTAMPTZ
	);

	CREATE INDEX IF NOT EXISTS idx_exchange_trades_payment ON exchange_trades(payment_account_id, type, status);
	CREATE INDEX IF NOT EXISTS idx_exchange_trades_wallet ON exchange_trades(wallet_account_id, type, status);

	CREATE TABLE IF NOT EXISTS earnings (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL REFERENCES users(id),
		value BIGINT NOT NULL,
		coin TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL
	);
`

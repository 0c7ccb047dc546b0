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

// User queries
const (
	queryInsertUser = `
		INSERT INTO users (id, name, email, created_at)
		VALUES (?, ?, ?, ?)`

	queryInsertDummyUser = `
		INSERT INTO users (id, name, email, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (email) DO NOTHING`

	querySelectUsers = `
		SELECT id, name, email, created_at
		FROM users
		ORDER BY created_at, id`

	querySelectUserById = `
		SELECT id, name, email, created_at
		FROM users
		WHERE id = ?`

	querySelectUserByEmail = `
		SELECT id, name, email, created_at
		FROM users
		WHERE email = ?`
)

// Payment account queries
const (
	queryInsertPaymentAccount = `
		INSERT INTO payment_accounts (id, user_id, currency, reference, created_at)
		VALUES (?, ?, ?, ?, ?)`

	querySelectPaymentAccount = `
		SELECT id, user_id, currency, reference, created_at
		FROM payment_accounts
		WHERE id = ?`

	queryFindPaymentAccount = `
		SELECT id, user_id, currency, reference, created_at
		FROM payment_accounts
		WHERE user_id = ? AND currency = ?`

	queryListPaymentAccounts = `
		SELECT id, user_id, currency, reference, created_at
		FROM payment_accounts
		WHERE user_id = ?
		ORDER BY currency`

	queryReferenceExists = `
		SELECT EXISTS (
			SELECT 1 FROM payment_accounts WHERE reference = ?
			UNION ALL
			SELECT 1 FROM wallet_accounts WHERE reference = ?
		)`

	queryPaymentTotals = `
		SELECT
			CAST(COALESCE(SUM(CASE WHEN type = 'receive' AND status = 'completed' THEN value ELSE 0 END), 0) AS BIGINT),
			CAST(COALESCE(SUM(CASE WHEN type = 'send' AND status <> 'canceled' THEN value ELSE 0 END), 0) AS BIGINT),
			CAST(COALESCE(SUM(CASE WHEN type = 'receive' AND status IN ('pending-transfer', 'pending-gateway') THEN value ELSE 0 END), 0) AS BIGINT),
			COUNT(CASE WHEN type = 'receive' AND status IN ('pending-transfer', 'pending-gateway') THEN 1 END)
		FROM payment_transactions
		WHERE payment_account_id = ?`

	queryPaymentOnTrade = `
		SELECT CAST(COALESCE(SUM(payment_value), 0) AS BIGINT)
		FROM exchange_trades
		WHERE payment_account_id = ? AND type = 'buy' AND status = 'pending'`
)

// Payment transaction queries
const (
	paymentTransactionColumns = `
		id, payment_account_id, type, status, value, currency, balance, description,
		gateway_ref, gateway_name, gateway_url,
		transfer_bank, transfer_beneficiary, transfer_number, transfer_country, transfer_note,
		created_at, updated_at`

	queryInsertPaymentTransaction = `
		INSERT INTO payment_transactions (` + paymentTransactionColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	querySelectPaymentTransaction = `
		SELECT ` + paymentTransactionColumns + `
		FROM payment_transactions
		WHERE id = ?`

	queryListPaymentTransactions = `
		SELECT ` + paymentTransactionColumns + `
		FROM payment_transactions
		WHERE payment_account_id = ?
		ORDER BY created_at DESC, id
		LIMIT ? OFFSET ?`

	queryListPaymentTransactionsBetween = `
		SELECT ` + paymentTransactionColumns + `
		FROM payment_transactions
		WHERE payment_account_id = ? AND created_at >= ? AND created_at < ?
		ORDER BY created_at, id`

	queryListPendingTransactions = `
		SELECT ` + paymentTransactionColumns + `
		FROM payment_transactions
		WHERE status IN ('pending-transfer', 'pending-gateway')
		ORDER BY created_at, id
		LIMIT ?`

	queryUpdateTransactionStatus = `
		UPDATE payment_transactions
		SET status = ?, updated_at = ?
		WHERE id = ? AND status = ?`

	queryUpdateTransactionBalance = `
		UPDATE payment_transactions
		SET balance = ?
		WHERE id = ? AND balance IS NULL`
)

// Wallet queries
const (
	queryInsertWalletAccount = `
		INSERT INTO wallet_accounts (id, user_id, coin, reference, created_at)
		VALUES (?, ?, ?, ?, ?)`

	querySelectWalletAccount = `
		SELECT id, user_id, coin, reference, created_at
		FROM wallet_accounts
		WHERE id = ?`

	queryFindWalletAccount = `
		SELECT id, user_id, coin, reference, created_at
		FROM wallet_accounts
		WHERE user_id = ? AND coin = ?`

	queryListWalletAccounts = `
		SELECT id, user_id, coin, reference, created_at
		FROM wallet_accounts
		WHERE user_id = ?
		ORDER BY coin`

	queryInsertTransferRecord = `
		INSERT INTO transfer_records (id, wallet_account_id, type, value, coin, dollar_price, description, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	queryListTransferRecords = `
		SELECT id, wallet_account_id, type, value, coin, dollar_price, description, created_at
		FROM transfer_records
		WHERE wallet_account_id = ?
		ORDER BY created_at DESC, id
		LIMIT ? OFFSET ?`

	queryWalletTotals = `
		SELECT
			CAST(COALESCE(SUM(CASE WHEN type = 'receive' THEN value ELSE 0 END), 0) AS BIGINT),
			CAST(COALESCE(SUM(CASE WHEN type = 'send' THEN value ELSE 0 END), 0) AS BIGINT)
		FROM transfer_records
		WHERE wallet_account_id = ?`

	queryWalletOnTrade = `
		SELECT CAST(COALESCE(SUM(wallet_value), 0) AS BIGINT)
		FROM exchange_trades
		WHERE wallet_account_id = ? AND type = 'sell' AND status = 'pending'`
)

// Exchange trade queries
const (
	exchangeTradeColumns = `
		id, type, status, wallet_account_id, payment_account_id, trader_id,
		payment_value, payment_currency, wallet_value, fee_value, coin, dollar_price,
		created_at, updated_at, completed_at`

	queryInsertExchangeTrade = `
		INSERT INTO exchange_trades (` + exchangeTradeColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	querySelectExchangeTrade = `
		SELECT ` + exchangeTradeColumns + `
		FROM exchange_trades
		WHERE id = ?`

	queryUpdateTradeStatus = `
		UPDATE exchange_trades
		SET status = ?, updated_at = ?, completed_at = ?
		WHERE id = ? AND status = ?`

	queryInsertEarning = `
		INSERT INTO earnings (id, user_id, value, coin, description, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`

	queryListEarnings = `
		SELECT id, user_id, value, coin, description, created_at
		FROM earnings
		WHERE user_id = ?
		ORDER BY created_at, id`
)

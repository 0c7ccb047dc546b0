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
	"fmt"
	"strconv"
	"strings"

	"wallet-ledger-go/internal/lock"
)

const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "pgx"
)

// dialect captures what differs between the SQL backends. Queries are written with "?" placeholders.
type dialect struct {
	name       string
	schema     string
	lockSuffix string
	numbered   bool
}

// SQLite serialises writers with BEGIN IMMEDIATE, so a row lock only has to confirm the row exists.
var sqliteDialect = &dialect{
	name:   "sqlite",
	schema: sqliteSchema,
}

var postgresDialect = &dialect{
	name:       "postgres",
	schema:     postgresSchema,
	lockSuffix: " FOR NO KEY UPDATE",
	numbered:   true,
}

var lockTables = map[lock.Kind]string{
	lock.PaymentAccount: "payment_accounts",
	lock.ExchangeTrade:  "exchange_trades",
	lock.WalletAccount:  "wallet_accounts",
}

func dialectFor(driver string) (*dialect, error) {
	switch driver {
	case DriverSQLite:
		return sqliteDialect, nil
	case DriverPostgres:
		return postgresDialect, nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
}

// rebind rewrites "?" placeholders into "$n" for backends that number them.
func (d *dialect) rebind(query string) string {
	if !d.numbered || !strings.Contains(query, "?") {
		return query
	}

	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (d *dialect) lockQuery(kind lock.Kind) (string, error) {
	table, ok := lockTables[kind]
	if !ok {
		return "", fmt.Errorf("no table for lock kind %s", kind)
	}
	return d.rebind("SELECT id FROM " + table + " WHERE id = ?" + d.lockSuffix), nil
}

// statements splits a schema script into individual statements.
func (d *dialect) statements() []string {
	var stmts []string
	for _, stmt := range strings.Split(d.schema, ";") {
		if stmt = strings.TrimSpace(stmt); stmt != "" {
			stmts = append(stmts, stmt)
		}
	}
	return stmts
}

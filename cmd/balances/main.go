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

package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	"wallet-ledger-go/internal/common"
	"wallet-ledger-go/internal/config"
	"wallet-ledger-go/internal/formance"
	"wallet-ledger-go/internal/ledger"
	"wallet-ledger-go/internal/models"
	"wallet-ledger-go/internal/money"
	"wallet-ledger-go/internal/store"

	"go.uber.org/zap"
)

type balanceStats struct {
	totalUsers        int
	totalAccounts     int
	usersWithAccounts int
}

func printUserHeader(user models.User, accountCount int) {
	fmt.Printf("\n┌─ User: %s (%s)\n", user.Name, user.Email)
	fmt.Printf("│  ID: %s\n", user.Id)
	fmt.Printf("│  Accounts: %d\n", accountCount)
	common.PrintBoxSeparator(78)
}

func printChart(chart []models.DailyTotal) {
	for _, day := range chart {
		if day.TotalReceived.IsZero() && day.TotalSent.IsZero() {
			continue
		}
		fmt.Printf("│     %s  in %14s  out %14s\n", day.Date.Format("2006-01-02"), day.TotalReceived.Format(), day.TotalSent.Format())
	}
}

// reconcile compares the local balance with the Formance mirror and prints any drift.
func reconcile(local, mirrored money.Money, mirrorErr error) {
	if mirrorErr != nil {
		zap.L().Warn("Unable to read mirrored balance", zap.Error(mirrorErr))
		return
	}
	if !local.Equal(mirrored) {
		fmt.Printf("│     ⚠ mirror balance %s differs from ledger %s\n", mirrored.Format(), local.Format())
	}
}

func processUser(ctx context.Context, user models.User, reader store.Reader, svc *ledger.Service, mirror *formance.Mirror, month time.Time) (int, error) {
	payments, err := reader.ListPaymentAccounts(ctx, user.Id)
	if err != nil {
		return 0, fmt.Errorf("failed to list payment accounts: %w", err)
	}
	wallets, err := reader.ListWalletAccounts(ctx, user.Id)
	if err != nil {
		return 0, fmt.Errorf("failed to list wallet accounts: %w", err)
	}

	count := len(payments) + len(wallets)
	if count == 0 {
		return 0, nil
	}
	printUserHeader(user, count)

	printed := 0
	for _, account := range payments {
		printed++
		balances, err := svc.PaymentBalances(ctx, account.Id)
		if err != nil {
			return printed, fmt.Errorf("failed to get balances of %s: %w", account.Id, err)
		}
		fmt.Println(common.BoxPrefix(printed == count) + common.BalanceRow(account.Currency.Code, account.Reference, balances))
		if mirror != nil {
			mirrored, err := mirror.PaymentBalance(ctx, account)
			reconcile(balances.Balance, mirrored, err)
		}

		if !month.IsZero() {
			chart, err := svc.DailyChart(ctx, account.Id, month.Year(), month.Month())
			if err != nil {
				return printed, fmt.Errorf("failed to build chart of %s: %w", account.Id, err)
			}
			printChart(chart)
		}
	}

	for _, account := range wallets {
		printed++
		balances, err := svc.WalletBalances(ctx, account.Id)
		if err != nil {
			return printed, fmt.Errorf("failed to get balances of %s: %w", account.Id, err)
		}
		fmt.Println(common.BoxPrefix(printed == count) + common.BalanceRow(account.Coin.Code, account.Reference, balances))
		if mirror != nil {
			mirrored, err := mirror.WalletBalance(ctx, account)
			reconcile(balances.Balance, mirrored, err)
		}
	}

	return count, nil
}

func main() {
	ctx := context.Background()

	logger, loggerCleanup := common.InitializeLogger()
	defer loggerCleanup()

	// Parse command line flags
	emailFlag := flag.String("email", "", "Filter by specific user email (optional)")
	monthFlag := flag.String("month", "", "Print the daily chart of payment accounts for a month, e.g. 2025-03 (optional)")
	flag.Parse()

	var month time.Time
	if *monthFlag != "" {
		var err error
		if month, err = time.Parse("2006-01", *monthFlag); err != nil {
			logger.Fatal("Invalid month, expected YYYY-MM", zap.String("month", *monthFlag), zap.Error(err))
		}
	}

	logger.Info("Starting balance query")

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	services, err := common.InitializeServices(ctx, cfg)
	if err != nil {
		logger.Fatal("Failed to initialize services", zap.Error(err))
	}
	defer services.Close()

	users, err := common.InitializeUsers(ctx, services.DbService, *emailFlag, logger)
	if err != nil {
		logger.Fatal("Failed to initialize users", zap.Error(err))
	}

	common.PrintHeader("USER BALANCE REPORT", common.WideWidth)

	stats := balanceStats{}
	for _, user := range users {
		stats.totalUsers++

		count, err := processUser(ctx, user, services.DbService, services.Ledger, services.Mirror, month)
		if err != nil {
			logger.Error("Failed to process user",
				zap.String("user_id", user.Id),
				zap.String("user_name", user.Name),
				zap.Error(err))
			continue
		}
		if count > 0 {
			stats.usersWithAccounts++
			stats.totalAccounts += count
		}
	}

	summary := fmt.Sprintf("SUMMARY: %d users with accounts (%d total accounts across %d users queried)",
		stats.usersWithAccounts, stats.totalAccounts, stats.totalUsers)
	common.PrintFooter(summary, common.WideWidth)

	logger.Info("Balance query completed",
		zap.Int("users_queried", stats.totalUsers),
		zap.Int("users_with_accounts", stats.usersWithAccounts),
		zap.Int("total_accounts", stats.totalAccounts))
}

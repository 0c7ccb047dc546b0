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
	"errors"
	"flag"
	"fmt"
	"regexp"
	"strings"

	"wallet-ledger-go/internal/common"
	"wallet-ledger-go/internal/config"
	"wallet-ledger-go/internal/ledger"

	"go.uber.org/zap"
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

type openResult struct {
	code      string
	reference string
	err       error
}

func validateEmail(email string) error {
	if email == "" {
		return fmt.Errorf("email cannot be empty")
	}
	if !emailRegex.MatchString(email) {
		return fmt.Errorf("invalid email format: %s", email)
	}
	return nil
}

func validateName(name string) error {
	if name == "" {
		return fmt.Errorf("name cannot be empty")
	}
	if len(name) < 2 {
		return fmt.Errorf("name must be at least 2 characters")
	}
	return nil
}

func splitCodes(list string) []string {
	var codes []string
	for _, code := range strings.Split(list, ",") {
		if code = strings.ToUpper(strings.TrimSpace(code)); code != "" {
			codes = append(codes, code)
		}
	}
	return codes
}

func openAccounts(ctx context.Context, svc *ledger.Service, userId string, currencies, coins []string) []openResult {
	var results []openResult

	for _, code := range currencies {
		account, err := svc.OpenPaymentAccount(ctx, userId, code)
		result := openResult{code: code, err: err}
		if err == nil {
			result.reference = account.Reference
		}
		results = append(results, result)
	}

	for _, code := range coins {
		account, err := svc.OpenWalletAccount(ctx, userId, code)
		result := openResult{code: code, err: err}
		if err == nil {
			result.reference = account.Reference
		}
		results = append(results, result)
	}

	return results
}

func main() {
	ctx := context.Background()

	_, loggerCleanup := common.InitializeLogger()
	defer loggerCleanup()

	// Parse command line flags
	nameFlag := flag.String("name", "", "User's full name (required)")
	emailFlag := flag.String("email", "", "User's email address (required)")
	currenciesFlag := flag.String("currencies", "USD", "Comma separated payment account currencies")
	coinsFlag := flag.String("coins", "BTC", "Comma separated wallet account coins")
	flag.Parse()

	// Validate required flags
	if *nameFlag == "" || *emailFlag == "" {
		zap.L().Fatal("Both flags are required: --name and --email")
	}

	if err := validateName(*nameFlag); err != nil {
		zap.L().Fatal("Invalid name", zap.Error(err))
	}

	if err := validateEmail(*emailFlag); err != nil {
		zap.L().Fatal("Invalid email", zap.Error(err))
	}

	zap.L().Info("Starting user creation process",
		zap.String("name", *nameFlag),
		zap.String("email", *emailFlag))

	cfg, err := config.Load()
	if err != nil {
		zap.L().Fatal("Failed to load config", zap.Error(err))
	}

	zap.L().Info("Initializing services")
	services, err := common.InitializeServices(ctx, cfg)
	if err != nil {
		zap.L().Fatal("Failed to initialize services", zap.Error(err))
	}
	defer services.Close()

	user, err := common.CreateUser(ctx, services.DbService, *nameFlag, *emailFlag)
	if err != nil {
		if errors.Is(err, common.ErrUserExists) {
			zap.L().Fatal("User already exists with this email", zap.String("email", *emailFlag))
		}
		zap.L().Fatal("Failed to create user", zap.Error(err))
	}

	common.PrintHeader("USER CREATED", common.DefaultWidth)
	fmt.Printf("ID:    %s\n", user.Id)
	fmt.Printf("Name:  %s\n", user.Name)
	fmt.Printf("Email: %s\n", user.Email)
	common.PrintSeparator("=", common.DefaultWidth)

	zap.L().Info("User created successfully", zap.String("id", user.Id))

	results := openAccounts(ctx, services.Ledger, user.Id, splitCodes(*currenciesFlag), splitCodes(*coinsFlag))

	var failed []string
	fmt.Println()
	for _, r := range results {
		if r.err != nil {
			failed = append(failed, r.code)
			fmt.Printf("✗ %s: %s\n", r.code, r.err)
			zap.L().Error("Failed to open account", zap.String("code", r.code), zap.Error(r.err))
			continue
		}
		fmt.Printf("✓ %s: %s\n", r.code, r.reference)
	}

	common.PrintHeader("ACCOUNT SUMMARY", common.DefaultWidth)
	fmt.Printf("Total Accounts:    %d\n", len(results))
	fmt.Printf("Opened:            %d\n", len(results)-len(failed))
	fmt.Printf("Failed:            %d\n", len(failed))
	if len(failed) > 0 {
		fmt.Printf("Failed Codes:      %s\n", strings.Join(failed, ", "))
	}
	common.PrintSeparator("=", common.DefaultWidth)
	fmt.Println()
}

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
	"os"

	"wallet-ledger-go/internal/common"
	"wallet-ledger-go/internal/config"
	"wallet-ledger-go/internal/ledger"
	"wallet-ledger-go/internal/models"
	"wallet-ledger-go/internal/money"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const usage = `usage: trade <command> [flags]

commands:
  open      open a pending trade
  complete  settle a pending buy trade
  cancel    cancel a pending trade
  show      print a trade`

type openFlags struct {
	tradeType        string
	paymentAccountId string
	walletAccountId  string
	traderId         string
	payment          string
	coin             string
	fee              string
	price            string
}

func parseOpen(args []string) (*openFlags, error) {
	fs := flag.NewFlagSet("open", flag.ContinueOnError)
	f := &openFlags{}
	fs.StringVar(&f.tradeType, "type", "buy", "Trade type: buy or sell")
	fs.StringVar(&f.paymentAccountId, "payment-account", "", "Payment account id (required)")
	fs.StringVar(&f.walletAccountId, "wallet-account", "", "Wallet account id (required)")
	fs.StringVar(&f.traderId, "trader", "", "Trader user id (required)")
	fs.StringVar(&f.payment, "payment", "", "Payment value in major units of the account currency (required)")
	fs.StringVar(&f.coin, "coin", "", "Wallet value in major units of the coin (required)")
	fs.StringVar(&f.fee, "fee", "0", "Fee in major units of the coin")
	fs.StringVar(&f.price, "price", "", "Dollar price of one coin (required)")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if f.paymentAccountId == "" || f.walletAccountId == "" || f.traderId == "" || f.payment == "" || f.coin == "" || f.price == "" {
		return nil, fmt.Errorf("flags --payment-account, --wallet-account, --trader, --payment, --coin and --price are required")
	}
	return f, nil
}

func parseId(name string, args []string) (string, error) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	id := fs.String("id", "", "Trade id (required)")
	if err := fs.Parse(args); err != nil {
		return "", err
	}
	if *id == "" {
		return "", fmt.Errorf("flag --id is required")
	}
	return *id, nil
}

func buildParams(ctx context.Context, svc *ledger.Service, f *openFlags) (ledger.OpenTradeParams, error) {
	payment, err := svc.GetPaymentAccount(ctx, f.paymentAccountId)
	if err != nil {
		return ledger.OpenTradeParams{}, err
	}
	wallet, err := svc.GetWalletAccount(ctx, f.walletAccountId)
	if err != nil {
		return ledger.OpenTradeParams{}, err
	}

	params := ledger.OpenTradeParams{
		Type:             models.TradeType(f.tradeType),
		WalletAccountId:  wallet.Id,
		PaymentAccountId: payment.Id,
		TraderId:         f.traderId,
	}
	if params.PaymentValue, err = money.Parse(f.payment, payment.Currency); err != nil {
		return params, err
	}
	if params.WalletValue, err = money.Parse(f.coin, wallet.Coin); err != nil {
		return params, err
	}
	if params.FeeValue, err = money.Parse(f.fee, wallet.Coin); err != nil {
		return params, err
	}
	if params.DollarPrice, err = decimal.NewFromString(f.price); err != nil {
		return params, fmt.Errorf("invalid price %q: %w", f.price, err)
	}
	return params, nil
}

func printTrade(trade *models.ExchangeTrade) {
	common.PrintHeader("TRADE "+common.ShortId(trade.Id), common.DefaultWidth)
	fmt.Printf("ID:              %s\n", trade.Id)
	fmt.Printf("Type:            %s\n", trade.Type)
	fmt.Printf("Status:          %s\n", trade.Status)
	fmt.Printf("Payment value:   %s\n", trade.PaymentValue.Format())
	fmt.Printf("Wallet value:    %s\n", trade.WalletValue.Format())
	fmt.Printf("Fee:             %s\n", trade.FeeValue.Format())
	fmt.Printf("Dollar price:    %s\n", trade.DollarPrice.String())
	fmt.Printf("Created:         %s\n", trade.CreatedAt.Format("2006-01-02 15:04:05"))
	if trade.CompletedAt != nil {
		fmt.Printf("Completed:       %s\n", trade.CompletedAt.Format("2006-01-02 15:04:05"))
	}
	common.PrintSeparator("=", common.DefaultWidth)
}

func run(ctx context.Context, svc *ledger.Service, command string, args []string) (*models.ExchangeTrade, error) {
	switch command {
	case "open":
		f, err := parseOpen(args)
		if err != nil {
			return nil, err
		}
		params, err := buildParams(ctx, svc, f)
		if err != nil {
			return nil, err
		}
		return svc.OpenTrade(ctx, params)
	case "complete":
		id, err := parseId(command, args)
		if err != nil {
			return nil, err
		}
		return svc.CompletePendingBuy(ctx, id)
	case "cancel":
		id, err := parseId(command, args)
		if err != nil {
			return nil, err
		}
		return svc.CancelPendingTrade(ctx, id)
	case "show":
		id, err := parseId(command, args)
		if err != nil {
			return nil, err
		}
		return svc.GetTrade(ctx, id)
	default:
		return nil, fmt.Errorf("unknown command %q\n%s", command, usage)
	}
}

func main() {
	ctx := context.Background()

	logger, loggerCleanup := common.InitializeLogger()
	defer loggerCleanup()

	if len(os.Args) < 2 {
		fmt.Println(usage)
		os.Exit(2)
	}
	command := os.Args[1]

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	services, err := common.InitializeServices(ctx, cfg)
	if err != nil {
		logger.Fatal("Failed to initialize services", zap.Error(err))
	}
	defer services.Close()

	trade, err := run(ctx, services.Ledger, command, os.Args[2:])
	if err != nil {
		logger.Error("Trade command failed",
			zap.String("command", command),
			zap.Int("status_code", ledger.StatusCode(err)),
			zap.Error(err))
		fmt.Printf("✗ %s failed: %s\n", command, err)
		return
	}

	printTrade(trade)
	logger.Info("Trade command completed",
		zap.String("command", command),
		zap.String("trade_id", trade.Id),
		zap.String("status", string(trade.Status)))
}

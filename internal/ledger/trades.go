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

package ledger

import (
	"context"
	"errors"
	"fmt"

	"wallet-ledger-go/internal/lock"
	"wallet-ledger-go/internal/models"
	"wallet-ledger-go/internal/money"
	"wallet-ledger-go/internal/store"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// OpenTradeParams describes an exchange between a user's wallet and payment accounts and a trader.
// WalletValue and FeeValue are in the wallet account's coin, PaymentValue in the payment account's currency.
type OpenTradeParams struct {
	Type             models.TradeType
	WalletAccountId  string
	PaymentAccountId string
	TraderId         string
	PaymentValue     money.Money
	WalletValue      money.Money
	FeeValue         money.Money
	DollarPrice      decimal.Decimal
}

func (p *OpenTradeParams) validate() error {
	if !p.Type.Valid() {
		return fmt.Errorf("%w: unknown type %q", ErrInvalidTrade, p.Type)
	}
	if !p.PaymentValue.IsPositive() || !p.WalletValue.IsPositive() {
		return ErrInvalidAmount
	}
	if p.FeeValue.Currency().Code == "" {
		p.FeeValue = money.Zero(p.WalletValue.Currency())
	}
	if p.FeeValue.IsNegative() {
		return ErrInvalidAmount
	}
	if !p.FeeValue.SameCurrency(p.WalletValue) {
		return fmt.Errorf("%w: fee in %s, wallet value in %s", ErrCurrencyMismatch,
			p.FeeValue.Currency().Code, p.WalletValue.Currency().Code)
	}
	if !p.DollarPrice.IsPositive() {
		return fmt.Errorf("%w: dollar price must be positive", ErrInvalidTrade)
	}
	return nil
}

// OpenTrade creates a pending trade. A buy reserves the payment value on the payment account, a sell
// reserves the wallet value on the wallet account; either is refused when it exceeds what is available.
func (s *Service) OpenTrade(ctx context.Context, params OpenTradeParams) (*models.ExchangeTrade, error) {
	if err := params.validate(); err != nil {
		return nil, err
	}

	var trade *models.ExchangeTrade
	err := s.store.Atomic(ctx, func(ctx context.Context, tx store.Tx) error {
		reserved := lock.PaymentAccountKey(params.PaymentAccountId)
		if params.Type == models.TradeSell {
			reserved = lock.WalletAccountKey(params.WalletAccountId)
		}
		if err := tx.Lock(ctx, reserved); err != nil {
			return err
		}

		payment, err := tx.GetPaymentAccount(ctx, params.PaymentAccountId)
		if err != nil {
			return err
		}
		wallet, err := tx.GetWalletAccount(ctx, params.WalletAccountId)
		if err != nil {
			return err
		}
		if payment.UserId != wallet.UserId {
			return fmt.Errorf("%w: accounts belong to different users", ErrForbidden)
		}
		if params.TraderId == payment.UserId {
			return fmt.Errorf("%w: users cannot trade with themselves", ErrForbidden)
		}
		if _, err := tx.GetUserById(ctx, params.TraderId); err != nil {
			return err
		}
		if err := checkCurrency(payment.Currency, params.PaymentValue); err != nil {
			return err
		}
		if err := checkCurrency(wallet.Coin, params.WalletValue); err != nil {
			return err
		}

		switch params.Type {
		case models.TradeBuy:
			snapshot, err := tx.PaymentSnapshot(ctx, *payment)
			if err != nil {
				return err
			}
			if available := snapshot.Balances().Available; available.Amount() < params.PaymentValue.Amount() {
				return fmt.Errorf("%w: available %s, trade needs %s", ErrInsufficientBalance, available, params.PaymentValue)
			}
		case models.TradeSell:
			snapshot, err := tx.WalletSnapshot(ctx, *wallet)
			if err != nil {
				return err
			}
			if available := snapshot.Balances().Available; available.Amount() < params.WalletValue.Amount() {
				return fmt.Errorf("%w: available %s, trade needs %s", ErrInsufficientBalance, available, params.WalletValue)
			}
		}

		trade = &models.ExchangeTrade{
			Id:               uuid.New().String(),
			Type:             params.Type,
			Status:           models.TradePending,
			WalletAccountId:  wallet.Id,
			PaymentAccountId: payment.Id,
			TraderId:         params.TraderId,
			PaymentValue:     params.PaymentValue,
			WalletValue:      params.WalletValue,
			FeeValue:         params.FeeValue,
			DollarPrice:      params.DollarPrice,
			CreatedAt:        s.now(),
		}
		return tx.CreateExchangeTrade(ctx, trade)
	})
	if err != nil {
		return nil, err
	}

	zap.L().Info("Exchange trade opened",
		zap.String("trade_id", trade.Id),
		zap.String("type", string(trade.Type)),
		zap.String("payment_value", trade.PaymentValue.String()),
		zap.String("wallet_value", trade.WalletValue.String()))
	return trade, nil
}

func (s *Service) GetTrade(ctx context.Context, tradeId string) (*models.ExchangeTrade, error) {
	return s.store.GetExchangeTrade(ctx, tradeId)
}

// CompletePendingBuy settles a pending buy: the trader's coin moves to the buyer's wallet, the reserved
// payment value moves to the trader's payment account and the fee is booked as the trader's earning.
// Everything is written in one unit under the payment account, trade and trader wallet locks.
func (s *Service) CompletePendingBuy(ctx context.Context, tradeId string) (*models.ExchangeTrade, error) {
	trade, err := s.store.GetExchangeTrade(ctx, tradeId)
	if err != nil {
		return nil, err
	}
	coin := trade.WalletValue.Currency()
	traderWallet, err := s.store.FindWalletAccount(ctx, trade.TraderId, coin.Code)
	if errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("%w: trader holds no %s wallet", ErrInsufficientAvailable, coin.Code)
	}
	if err != nil {
		return nil, err
	}

	err = s.store.Atomic(ctx, func(ctx context.Context, tx store.Tx) error {
		err := tx.Lock(ctx,
			lock.PaymentAccountKey(trade.PaymentAccountId),
			lock.ExchangeTradeKey(trade.Id),
			lock.WalletAccountKey(traderWallet.Id),
		)
		if err != nil {
			return err
		}

		if trade, err = tx.GetExchangeTrade(ctx, tradeId); err != nil {
			return err
		}
		if trade.Type != models.TradeBuy || !trade.IsPending() {
			return fmt.Errorf("%w: trade %s is a %s %s trade", ErrForbidden, tradeId, trade.Status, trade.Type)
		}

		trader, err := tx.GetWalletAccount(ctx, traderWallet.Id)
		if err != nil {
			return err
		}
		snapshot, err := tx.WalletSnapshot(ctx, *trader)
		if err != nil {
			return err
		}
		owed := trade.WalletValue
		if available := snapshot.Balances().Available; available.Amount() < owed.Amount() {
			return fmt.Errorf("%w: trader has %s, trade needs %s", ErrInsufficientAvailable, available, owed)
		}

		return s.settleBuy(ctx, tx, trade, *trader)
	})
	if err != nil {
		return nil, err
	}

	zap.L().Info("Exchange trade completed",
		zap.String("trade_id", trade.Id),
		zap.String("trader_id", trade.TraderId),
		zap.String("payment_value", trade.PaymentValue.String()),
		zap.String("wallet_value", trade.WalletValue.String()))
	return trade, nil
}

// settleBuy writes every record of a buy settlement. The caller holds the locks and rolls back on error.
func (s *Service) settleBuy(ctx context.Context, tx store.Tx, trade *models.ExchangeTrade, traderWallet models.WalletAccount) error {
	description := trade.Description()

	wallet, err := tx.GetWalletAccount(ctx, trade.WalletAccountId)
	if err != nil {
		return err
	}
	payment, err := tx.GetPaymentAccount(ctx, trade.PaymentAccountId)
	if err != nil {
		return err
	}

	if _, err := s.writeTransfer(ctx, tx, traderWallet, models.TransactionSend, trade.WalletValue, trade.DollarPrice, description); err != nil {
		return err
	}
	if _, err := s.writeTransfer(ctx, tx, *wallet, models.TransactionReceive, trade.WalletValue, trade.DollarPrice, description); err != nil {
		return err
	}

	if _, err := s.writeCompleted(ctx, tx, *payment, trade.PaymentValue, models.TransactionSend, description); err != nil {
		return err
	}
	traderPayment, err := openPaymentAccount(ctx, tx, trade.TraderId, payment.Currency, s.now())
	if err != nil {
		return err
	}
	if _, err := s.writeCompleted(ctx, tx, *traderPayment, trade.PaymentValue, models.TransactionReceive, description); err != nil {
		return err
	}

	if trade.FeeValue.IsPositive() {
		earning := &models.Earning{
			Id:          uuid.New().String(),
			UserId:      trade.TraderId,
			Value:       trade.FeeValue,
			Description: description,
			CreatedAt:   s.now(),
		}
		if err := tx.CreateEarning(ctx, earning); err != nil {
			return err
		}
	}

	if err := s.limiter.SetUsage(ctx, FeatureWalletExchange, trade.PaymentValue, payment.UserId); err != nil {
		return err
	}

	now := s.now()
	if err := tx.UpdateTradeStatus(ctx, trade.Id, models.TradePending, models.TradeCompleted, now); err != nil {
		if errors.Is(err, store.ErrStatusChanged) {
			return fmt.Errorf("%w: %v", ErrForbidden, err)
		}
		return err
	}
	trade.Status = models.TradeCompleted
	trade.CompletedAt = &now
	return nil
}

// CancelPendingTrade cancels a pending trade, releasing its reservation. Settled trades are returned as they are.
func (s *Service) CancelPendingTrade(ctx context.Context, tradeId string) (*models.ExchangeTrade, error) {
	var trade *models.ExchangeTrade
	err := s.store.Atomic(ctx, func(ctx context.Context, tx store.Tx) error {
		if err := tx.Lock(ctx, lock.ExchangeTradeKey(tradeId)); err != nil {
			return err
		}

		var err error
		if trade, err = tx.GetExchangeTrade(ctx, tradeId); err != nil {
			return err
		}
		if !trade.IsPending() {
			return nil
		}
		if err := tx.UpdateTradeStatus(ctx, tradeId, models.TradePending, models.TradeCanceled, s.now()); err != nil {
			return err
		}
		trade.Status = models.TradeCanceled
		return nil
	})
	if err != nil {
		return nil, err
	}

	zap.L().Info("Exchange trade canceled", zap.String("trade_id", tradeId), zap.String("status", string(trade.Status)))
	return trade, nil
}

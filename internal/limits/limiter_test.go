package limits

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"wallet-ledger-go/internal/ledger"
	"wallet-ledger-go/internal/ledger/mocks"
	"wallet-ledger-go/internal/money"

	"github.com/shopspring/decimal"
	"go.uber.org/mock/gomock"
)

func newTestLimiter(t *testing.T, rates ledger.RateConverter, now *time.Time) *Limiter {
	t.Helper()
	l, err := NewLimiter(map[string]decimal.Decimal{
		"payments_deposit": decimal.RequireFromString("100"),
		"wallet_exchange":  decimal.RequireFromString("50.5"),
	}, rates)
	if err != nil {
		t.Fatalf("NewLimiter() error = %v", err)
	}
	l.now = func() time.Time { return *now }
	return l
}

func TestNewLimiter_RejectsBadCaps(t *testing.T) {
	if _, err := NewLimiter(map[string]decimal.Decimal{"teleport": decimal.NewFromInt(1)}, nil); err == nil {
		t.Error("expected an error for an unknown feature")
	}
	if _, err := NewLimiter(map[string]decimal.Decimal{"payments_deposit": decimal.NewFromInt(-1)}, nil); err == nil {
		t.Error("expected an error for a negative cap")
	}
}

func TestSetUsage_EnforcesDailyCap(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, time.March, 14, 23, 0, 0, 0, time.UTC)
	l := newTestLimiter(t, nil, &now)

	if err := l.SetUsage(ctx, ledger.FeaturePaymentsDeposit, money.New(6000, usd), "alice"); err != nil {
		t.Fatalf("first usage: %v", err)
	}
	if err := l.SetUsage(ctx, ledger.FeaturePaymentsDeposit, money.New(4000, usd), "alice"); err != nil {
		t.Fatalf("usage up to the cap: %v", err)
	}
	err := l.SetUsage(ctx, ledger.FeaturePaymentsDeposit, money.New(1, usd), "alice")
	if !errors.Is(err, ledger.ErrUsageLimitExceeded) {
		t.Fatalf("expected ErrUsageLimitExceeded, got %v", err)
	}
	if got := l.Usage("alice", ledger.FeaturePaymentsDeposit).Amount(); got != 10000 {
		t.Errorf("refused usage must not be recorded, total = %d", got)
	}

	// other users and features have their own budget
	if err := l.SetUsage(ctx, ledger.FeaturePaymentsDeposit, money.New(10000, usd), "bob"); err != nil {
		t.Errorf("bob: %v", err)
	}
	if err := l.SetUsage(ctx, ledger.FeaturePaymentsWithdrawal, money.New(1000000, usd), "alice"); err != nil {
		t.Errorf("uncapped feature: %v", err)
	}

	now = now.Add(2 * time.Hour)
	if err := l.SetUsage(ctx, ledger.FeaturePaymentsDeposit, money.New(10000, usd), "alice"); err != nil {
		t.Errorf("usage resets on a new day: %v", err)
	}
}

func TestSetUsage_ConvertsToUSD(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, time.March, 14, 12, 0, 0, 0, time.UTC)
	ctrl := gomock.NewController(t)
	rates := mocks.NewMockRateConverter(ctrl)
	l := newTestLimiter(t, rates, &now)

	eur := money.MustLookup("EUR")
	rates.EXPECT().Convert(gomock.Any(), money.New(4600, eur), "USD").Return(money.New(5000, usd), nil)
	if err := l.SetUsage(ctx, ledger.FeatureWalletExchange, money.New(4600, eur), "alice"); err != nil {
		t.Fatalf("SetUsage() error = %v", err)
	}
	if got := l.Usage("alice", ledger.FeatureWalletExchange).Amount(); got != 5000 {
		t.Errorf("usage = %d, want 5000", got)
	}

	rates.EXPECT().Convert(gomock.Any(), gomock.Any(), "USD").Return(money.Money{}, ledger.ErrRateUnavailable)
	err := l.SetUsage(ctx, ledger.FeatureWalletExchange, money.New(1, eur), "alice")
	if !errors.Is(err, ledger.ErrRateUnavailable) {
		t.Errorf("expected ErrRateUnavailable, got %v", err)
	}
}

func TestSetUsage_WithoutRates(t *testing.T) {
	now := time.Now().UTC()
	l := newTestLimiter(t, nil, &now)

	err := l.SetUsage(context.Background(), ledger.FeatureWalletExchange, money.New(1, money.MustLookup("BTC")), "alice")
	if !errors.Is(err, ledger.ErrRateUnavailable) {
		t.Errorf("expected ErrRateUnavailable, got %v", err)
	}
	if err := l.SetUsage(context.Background(), "unknown", money.New(1, usd), "alice"); err == nil {
		t.Error("expected an error for an unknown feature")
	}
}

func TestSetUsage_Concurrent(t *testing.T) {
	now := time.Date(2025, time.March, 14, 12, 0, 0, 0, time.UTC)
	l := newTestLimiter(t, nil, &now)

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		accepted int
	)
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := l.SetUsage(context.Background(), ledger.FeatureWalletExchange, money.New(1000, usd), "alice"); err == nil {
				mu.Lock()
				accepted++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if accepted != 5 {
		t.Errorf("accepted %d usages of $10.00 under a $50.50 cap, want 5", accepted)
	}
}

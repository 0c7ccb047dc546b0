package ledger_test

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"wallet-ledger-go/internal/database"
	"wallet-ledger-go/internal/ledger"
	"wallet-ledger-go/internal/ledger/mocks"
	"wallet-ledger-go/internal/models"
	"wallet-ledger-go/internal/money"
	"wallet-ledger-go/internal/store"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

var (
	usd = money.MustLookup("USD")
	eur = money.MustLookup("EUR")
	btc = money.MustLookup("BTC")

	testClock = time.Date(2025, time.March, 14, 10, 30, 0, 0, time.UTC)
)

type recordingNotifier struct {
	mu     sync.Mutex
	events []ledger.Event
}

func (n *recordingNotifier) Notify(_ context.Context, event ledger.Event) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, event)
	return nil
}

func (n *recordingNotifier) Events() []ledger.Event {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]ledger.Event(nil), n.events...)
}

type fixture struct {
	ctx      context.Context
	db       *database.Service
	svc      *ledger.Service
	limiter  *mocks.MockFeatureLimiter
	verifier *mocks.MockGatewayVerifier
	rates    *mocks.MockRateConverter
	notifier *recordingNotifier
}

type fixtureOption func(*ledger.Dependencies)

func withMirror(m ledger.Mirror) fixtureOption {
	return func(d *ledger.Dependencies) { d.Mirror = m }
}

func newFixture(t *testing.T, opts ...fixtureOption) *fixture {
	t.Helper()
	ctx := context.Background()

	db, err := database.NewService(ctx, models.DatabaseConfig{
		Driver:          database.DriverSQLite,
		Path:            filepath.Join(t.TempDir(), "ledger.db"),
		MaxOpenConns:    8,
		MaxIdleConns:    2,
		ConnMaxLifetime: time.Minute,
		ConnMaxIdleTime: time.Minute,
		PingTimeout:     time.Second,
		BusyTimeout:     10 * time.Second,
	})
	require.NoError(t, err)
	t.Cleanup(db.Close)

	ctrl := gomock.NewController(t)
	f := &fixture{
		ctx:      ctx,
		db:       db,
		limiter:  mocks.NewMockFeatureLimiter(ctrl),
		verifier: mocks.NewMockGatewayVerifier(ctrl),
		rates:    mocks.NewMockRateConverter(ctrl),
		notifier: &recordingNotifier{},
	}

	deps := ledger.Dependencies{
		Store:    db,
		Rates:    f.rates,
		Verifier: f.verifier,
		Limiter:  f.limiter,
		Notifier: f.notifier,
		Settings: models.LedgerSettings{
			MinPayment: decimal.RequireFromString("10"),
			MaxPayment: decimal.RequireFromString("5000"),
		},
		Now: func() time.Time { return testClock },
	}
	for _, opt := range opts {
		opt(&deps)
	}

	f.svc, err = ledger.NewService(deps)
	require.NoError(t, err)
	return f
}

func (f *fixture) createUser(t *testing.T, id string) {
	t.Helper()
	err := f.db.Atomic(f.ctx, func(ctx context.Context, tx store.Tx) error {
		return tx.CreateUser(ctx, &models.User{Id: id, Name: id, Email: id + "@example.com", CreatedAt: testClock})
	})
	require.NoError(t, err)
}

func (f *fixture) paymentAccount(t *testing.T, userId string, cur money.Currency) *models.PaymentAccount {
	t.Helper()
	account, err := f.svc.OpenPaymentAccount(f.ctx, userId, cur.Code)
	require.NoError(t, err)
	return account
}

func (f *fixture) walletAccount(t *testing.T, userId string, coin money.Currency) *models.WalletAccount {
	t.Helper()
	account, err := f.svc.OpenWalletAccount(f.ctx, userId, coin.Code)
	require.NoError(t, err)
	return account
}

func (f *fixture) credit(t *testing.T, accountId string, amount int64) {
	t.Helper()
	account, err := f.svc.GetPaymentAccount(f.ctx, accountId)
	require.NoError(t, err)
	_, err = f.svc.Credit(f.ctx, accountId, money.New(amount, account.Currency), "funding")
	require.NoError(t, err)
}

func (f *fixture) balances(t *testing.T, accountId string) models.Balances {
	t.Helper()
	balances, err := f.svc.PaymentBalances(f.ctx, accountId)
	require.NoError(t, err)
	return balances
}

func (f *fixture) walletBalances(t *testing.T, accountId string) models.Balances {
	t.Helper()
	balances, err := f.svc.WalletBalances(f.ctx, accountId)
	require.NoError(t, err)
	return balances
}

var bank = models.BankAccount{
	BankName:    "First Bank",
	Beneficiary: "Alice Johnson",
	Number:      "0123456789",
	Country:     "US",
}

func TestNewService_RequiresStoreAndLimiter(t *testing.T) {
	_, err := ledger.NewService(ledger.Dependencies{})
	require.Error(t, err)

	ctrl := gomock.NewController(t)
	_, err = ledger.NewService(ledger.Dependencies{Limiter: mocks.NewMockFeatureLimiter(ctrl)})
	require.Error(t, err)
}

package database

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"wallet-ledger-go/internal/lock"
	"wallet-ledger-go/internal/models"
	"wallet-ledger-go/internal/money"
	"wallet-ledger-go/internal/store"

	"github.com/shopspring/decimal"
)

func testConfig(t *testing.T) models.DatabaseConfig {
	return models.DatabaseConfig{
		Driver:          DriverSQLite,
		Path:            filepath.Join(t.TempDir(), "ledger.db"),
		MaxOpenConns:    8,
		MaxIdleConns:    2,
		ConnMaxLifetime: time.Minute,
		ConnMaxIdleTime: time.Minute,
		PingTimeout:     time.Second,
		BusyTimeout:     5 * time.Second,
	}
}

func setupTestService(t *testing.T, cfg models.DatabaseConfig) *Service {
	t.Helper()
	service, err := NewService(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Failed to create database service: %v", err)
	}
	t.Cleanup(service.Close)
	return service
}

// seed creates a user with a USD payment account and a BTC wallet account.
func seed(t *testing.T, s *Service, userId string) (models.PaymentAccount, models.WalletAccount) {
	t.Helper()
	now := time.Now().UTC()
	payment := models.PaymentAccount{
		Id:        "pa-" + userId,
		UserId:    userId,
		Currency:  money.MustLookup("USD"),
		Reference: "P" + userId,
		CreatedAt: now,
	}
	wallet := models.WalletAccount{
		Id:        "wa-" + userId,
		UserId:    userId,
		Coin:      money.MustLookup("BTC"),
		Reference: "W" + userId,
		CreatedAt: now,
	}

	err := s.Atomic(context.Background(), func(ctx context.Context, tx store.Tx) error {
		if err := tx.CreateUser(ctx, &models.User{Id: userId, Name: userId, Email: userId + "@example.com", CreatedAt: now}); err != nil {
			return err
		}
		if err := tx.CreatePaymentAccount(ctx, &payment); err != nil {
			return err
		}
		return tx.CreateWalletAccount(ctx, &wallet)
	})
	if err != nil {
		t.Fatalf("Failed to seed user %s: %v", userId, err)
	}
	return payment, wallet
}

func paymentTxn(id, accountId string, txnType models.TransactionType, status models.TransactionStatus, amount int64, at time.Time) *models.PaymentTransaction {
	return &models.PaymentTransaction{
		Id:               id,
		PaymentAccountId: accountId,
		Type:             txnType,
		Status:           status,
		Value:            money.New(amount, money.MustLookup("USD")),
		Description:      "test " + id,
		CreatedAt:        at,
		UpdatedAt:        at,
	}
}

func TestNewService_Validation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*models.DatabaseConfig)
	}{
		{"unknown driver", func(c *models.DatabaseConfig) { c.Driver = "mysql" }},
		{"empty path", func(c *models.DatabaseConfig) { c.Path = "" }},
		{"postgres without url", func(c *models.DatabaseConfig) { c.Driver = DriverPostgres }},
		{"zero open conns", func(c *models.DatabaseConfig) { c.MaxOpenConns = 0 }},
		{"negative idle conns", func(c *models.DatabaseConfig) { c.MaxIdleConns = -1 }},
		{"zero ping timeout", func(c *models.DatabaseConfig) { c.PingTimeout = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig(t)
			tt.mutate(&cfg)
			if _, err := NewService(context.Background(), cfg); err == nil {
				t.Errorf("expected configuration error")
			}
		})
	}
}

func TestNewService_DummyUsersAreIdempotent(t *testing.T) {
	cfg := testConfig(t)
	cfg.CreateDummyUsers = true

	first := setupTestService(t, cfg)
	first.Close()
	second := setupTestService(t, cfg)

	users, err := second.GetUsers(context.Background())
	if err != nil {
		t.Fatalf("GetUsers failed: %v", err)
	}
	if len(users) != 3 {
		t.Errorf("expected 3 dummy users after two starts, got %d", len(users))
	}
}

func TestUsersAndAccounts(t *testing.T) {
	s := setupTestService(t, testConfig(t))
	ctx := context.Background()
	payment, wallet := seed(t, s, "alice")

	user, err := s.GetUserByEmail(ctx, "alice@example.com")
	if err != nil {
		t.Fatalf("GetUserByEmail failed: %v", err)
	}
	if user.Id != "alice" {
		t.Errorf("expected user alice, got %s", user.Id)
	}

	if _, err := s.GetUserById(ctx, "nobody"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	found, err := s.FindPaymentAccount(ctx, "alice", "USD")
	if err != nil {
		t.Fatalf("FindPaymentAccount failed: %v", err)
	}
	if found.Id != payment.Id || !found.Currency.Equal(money.MustLookup("USD")) {
		t.Errorf("unexpected payment account %+v", found)
	}

	gotWallet, err := s.GetWalletAccount(ctx, wallet.Id)
	if err != nil {
		t.Fatalf("GetWalletAccount failed: %v", err)
	}
	if gotWallet.Coin.Code != "BTC" {
		t.Errorf("expected BTC wallet, got %s", gotWallet.Coin.Code)
	}

	for _, ref := range []string{payment.Reference, wallet.Reference} {
		exists, err := s.ReferenceExists(ctx, ref)
		if err != nil {
			t.Fatalf("ReferenceExists failed: %v", err)
		}
		if !exists {
			t.Errorf("expected reference %s to exist", ref)
		}
	}
	exists, err := s.ReferenceExists(ctx, "UNUSED0000")
	if err != nil {
		t.Fatalf("ReferenceExists failed: %v", err)
	}
	if exists {
		t.Errorf("expected unused reference to be free")
	}
}

func TestCreatePaymentAccount_DuplicateCurrency(t *testing.T) {
	s := setupTestService(t, testConfig(t))
	seed(t, s, "bob")

	err := s.Atomic(context.Background(), func(ctx context.Context, tx store.Tx) error {
		return tx.CreatePaymentAccount(ctx, &models.PaymentAccount{
			Id:        "pa-bob-2",
			UserId:    "bob",
			Currency:  money.MustLookup("USD"),
			Reference: "OTHERREF01",
			CreatedAt: time.Now(),
		})
	})
	if !errors.Is(err, store.ErrDuplicate) {
		t.Errorf("expected ErrDuplicate, got %v", err)
	}
}

func TestPaymentSnapshot(t *testing.T) {
	s := setupTestService(t, testConfig(t))
	ctx := context.Background()
	payment, wallet := seed(t, s, "carol")
	seed(t, s, "trader")
	now := time.Now().UTC()

	err := s.Atomic(ctx, func(ctx context.Context, tx store.Tx) error {
		txns := []*models.PaymentTransaction{
			paymentTxn("t1", payment.Id, models.TransactionReceive, models.StatusCompleted, 10000, now),
			paymentTxn("t2", payment.Id, models.TransactionSend, models.StatusCompleted, 3000, now),
			paymentTxn("t3", payment.Id, models.TransactionSend, models.StatusPendingTransfer, 500, now),
			paymentTxn("t4", payment.Id, models.TransactionSend, models.StatusCanceled, 700, now),
			paymentTxn("t5", payment.Id, models.TransactionReceive, models.StatusPendingGateway, 400, now),
			paymentTxn("t6", payment.Id, models.TransactionReceive, models.StatusPendingTransfer, 100, now),
		}
		for _, txn := range txns {
			if err := tx.CreatePaymentTransaction(ctx, txn); err != nil {
				return err
			}
		}
		return tx.CreateExchangeTrade(ctx, &models.ExchangeTrade{
			Id:               "trade-1",
			Type:             models.TradeBuy,
			Status:           models.TradePending,
			WalletAccountId:  wallet.Id,
			PaymentAccountId: payment.Id,
			TraderId:         "trader",
			PaymentValue:     money.New(2000, money.MustLookup("USD")),
			WalletValue:      money.New(1000, money.MustLookup("BTC")),
			FeeValue:         money.New(10, money.MustLookup("BTC")),
			DollarPrice:      decimal.RequireFromString("65000.50"),
			CreatedAt:        now,
		})
	})
	if err != nil {
		t.Fatalf("Failed to write fixtures: %v", err)
	}

	snapshot, err := s.PaymentSnapshot(ctx, payment)
	if err != nil {
		t.Fatalf("PaymentSnapshot failed: %v", err)
	}
	if snapshot.TotalReceived != 10000 {
		t.Errorf("expected received 10000, got %d", snapshot.TotalReceived)
	}
	if snapshot.TotalSent != 3500 {
		t.Errorf("expected sent 3500 (canceled excluded), got %d", snapshot.TotalSent)
	}
	if snapshot.OnTrade != 2000 {
		t.Errorf("expected on trade 2000, got %d", snapshot.OnTrade)
	}
	if snapshot.PendingReceive != 500 || snapshot.PendingReceiveCount != 2 {
		t.Errorf("expected 2 pending receives totalling 500, got %d/%d", snapshot.PendingReceiveCount, snapshot.PendingReceive)
	}

	balances := snapshot.Balances()
	if balances.Available.Amount() != 4500 {
		t.Errorf("expected available 4500, got %s", balances.Available)
	}

	trade, err := s.GetExchangeTrade(ctx, "trade-1")
	if err != nil {
		t.Fatalf("GetExchangeTrade failed: %v", err)
	}
	if !trade.DollarPrice.Equal(decimal.RequireFromString("65000.5")) {
		t.Errorf("expected dollar price 65000.5, got %s", trade.DollarPrice)
	}
	if trade.CompletedAt != nil {
		t.Errorf("pending trade should have no completion time")
	}
}

func TestUpdateTransactionStatus_Conditional(t *testing.T) {
	s := setupTestService(t, testConfig(t))
	ctx := context.Background()
	payment, _ := seed(t, s, "dave")
	now := time.Now().UTC()

	err := s.Atomic(ctx, func(ctx context.Context, tx store.Tx) error {
		return tx.CreatePaymentTransaction(ctx, paymentTxn("t1", payment.Id, models.TransactionReceive, models.StatusPendingTransfer, 100, now))
	})
	if err != nil {
		t.Fatalf("Failed to create transaction: %v", err)
	}

	err = s.Atomic(ctx, func(ctx context.Context, tx store.Tx) error {
		return tx.UpdateTransactionStatus(ctx, "t1", models.StatusPendingTransfer, models.StatusCompleted, now)
	})
	if err != nil {
		t.Fatalf("First update failed: %v", err)
	}

	err = s.Atomic(ctx, func(ctx context.Context, tx store.Tx) error {
		return tx.UpdateTransactionStatus(ctx, "t1", models.StatusPendingTransfer, models.StatusCanceled, now)
	})
	if !errors.Is(err, store.ErrStatusChanged) {
		t.Errorf("expected ErrStatusChanged, got %v", err)
	}

	txn, err := s.GetPaymentTransaction(ctx, "t1")
	if err != nil {
		t.Fatalf("GetPaymentTransaction failed: %v", err)
	}
	if txn.Status != models.StatusCompleted {
		t.Errorf("expected completed, got %s", txn.Status)
	}
}

func TestSetTransactionBalance_OnlyOnce(t *testing.T) {
	s := setupTestService(t, testConfig(t))
	ctx := context.Background()
	payment, _ := seed(t, s, "erin")
	usd := money.MustLookup("USD")

	var first, second bool
	err := s.Atomic(ctx, func(ctx context.Context, tx store.Tx) error {
		if err := tx.CreatePaymentTransaction(ctx, paymentTxn("t1", payment.Id, models.TransactionReceive, models.StatusCompleted, 100, time.Now())); err != nil {
			return err
		}
		var err error
		if first, err = tx.SetTransactionBalance(ctx, "t1", money.New(100, usd)); err != nil {
			return err
		}
		second, err = tx.SetTransactionBalance(ctx, "t1", money.New(999, usd))
		return err
	})
	if err != nil {
		t.Fatalf("Atomic failed: %v", err)
	}
	if !first || second {
		t.Errorf("expected only the first balance write to apply, got %v/%v", first, second)
	}

	txn, err := s.GetPaymentTransaction(ctx, "t1")
	if err != nil {
		t.Fatalf("GetPaymentTransaction failed: %v", err)
	}
	if txn.Balance == nil || txn.Balance.Amount() != 100 {
		t.Errorf("expected balance 100, got %v", txn.Balance)
	}
}

func TestTransactionMetadataRoundTrip(t *testing.T) {
	s := setupTestService(t, testConfig(t))
	ctx := context.Background()
	payment, _ := seed(t, s, "frank")
	now := time.Now().UTC()

	gateway := paymentTxn("g1", payment.Id, models.TransactionReceive, models.StatusPendingGateway, 100, now)
	gateway.Gateway = &models.GatewayData{Ref: "ref-1", Name: "prime", Url: "https://pay.example.com/ref-1"}
	transfer := paymentTxn("b1", payment.Id, models.TransactionSend, models.StatusPendingTransfer, 50, now.Add(time.Second))
	transfer.Transfer = &models.TransferData{Bank: "First Bank", Beneficiary: "Frank", Number: "12345678", Country: "US"}

	err := s.Atomic(ctx, func(ctx context.Context, tx store.Tx) error {
		if err := tx.CreatePaymentTransaction(ctx, gateway); err != nil {
			return err
		}
		return tx.CreatePaymentTransaction(ctx, transfer)
	})
	if err != nil {
		t.Fatalf("Atomic failed: %v", err)
	}

	got, err := s.GetPaymentTransaction(ctx, "g1")
	if err != nil {
		t.Fatalf("GetPaymentTransaction failed: %v", err)
	}
	if got.Gateway == nil || *got.Gateway != *gateway.Gateway || got.Transfer != nil {
		t.Errorf("gateway metadata not preserved: %+v", got)
	}

	got, err = s.GetPaymentTransaction(ctx, "b1")
	if err != nil {
		t.Fatalf("GetPaymentTransaction failed: %v", err)
	}
	if got.Transfer == nil || got.Transfer.Number != "12345678" || got.Gateway != nil {
		t.Errorf("transfer metadata not preserved: %+v", got)
	}

	pending, err := s.ListPendingTransactions(ctx, 10)
	if err != nil {
		t.Fatalf("ListPendingTransactions failed: %v", err)
	}
	if len(pending) != 2 || pending[0].Id != "g1" {
		t.Errorf("expected both pending transactions oldest first, got %d", len(pending))
	}

	between, err := s.ListPaymentTransactionsBetween(ctx, payment.Id, now.Add(-time.Minute), now.Add(time.Minute))
	if err != nil {
		t.Fatalf("ListPaymentTransactionsBetween failed: %v", err)
	}
	if len(between) != 2 {
		t.Errorf("expected 2 transactions in window, got %d", len(between))
	}

	outside, err := s.ListPaymentTransactionsBetween(ctx, payment.Id, now.Add(time.Hour), now.Add(2*time.Hour))
	if err != nil {
		t.Fatalf("ListPaymentTransactionsBetween failed: %v", err)
	}
	if len(outside) != 0 {
		t.Errorf("expected no transactions outside window, got %d", len(outside))
	}
}

func TestWalletSnapshotAndRecords(t *testing.T) {
	s := setupTestService(t, testConfig(t))
	ctx := context.Background()
	payment, wallet := seed(t, s, "gina")
	seed(t, s, "trader")
	btc := money.MustLookup("BTC")
	now := time.Now().UTC()

	err := s.Atomic(ctx, func(ctx context.Context, tx store.Tx) error {
		records := []*models.TransferRecord{
			{Id: "r1", WalletAccountId: wallet.Id, Type: models.TransactionReceive, Value: money.New(5000, btc), DollarPrice: decimal.NewFromInt(60000), CreatedAt: now},
			{Id: "r2", WalletAccountId: wallet.Id, Type: models.TransactionSend, Value: money.New(1200, btc), DollarPrice: decimal.NewFromInt(61000), CreatedAt: now},
		}
		for _, r := range records {
			if err := tx.CreateTransferRecord(ctx, r); err != nil {
				return err
			}
		}
		return tx.CreateExchangeTrade(ctx, &models.ExchangeTrade{
			Id:               "sell-1",
			Type:             models.TradeSell,
			Status:           models.TradePending,
			WalletAccountId:  wallet.Id,
			PaymentAccountId: payment.Id,
			TraderId:         "trader",
			PaymentValue:     money.New(100, money.MustLookup("USD")),
			WalletValue:      money.New(800, btc),
			FeeValue:         money.Zero(btc),
			DollarPrice:      decimal.NewFromInt(60000),
			CreatedAt:        now,
		})
	})
	if err != nil {
		t.Fatalf("Failed to write fixtures: %v", err)
	}

	snapshot, err := s.WalletSnapshot(ctx, wallet)
	if err != nil {
		t.Fatalf("WalletSnapshot failed: %v", err)
	}
	balances := snapshot.Balances()
	if balances.Balance.Amount() != 3800 || balances.Available.Amount() != 3000 {
		t.Errorf("expected balance 3800 available 3000, got %s / %s", balances.Balance, balances.Available)
	}

	records, err := s.ListTransferRecords(ctx, wallet.Id, 10, 0)
	if err != nil {
		t.Fatalf("ListTransferRecords failed: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	for _, r := range records {
		if r.Value.Currency().Code != "BTC" {
			t.Errorf("record %s has currency %s", r.Id, r.Value.Currency().Code)
		}
	}
}

func TestUpdateTradeStatus(t *testing.T) {
	s := setupTestService(t, testConfig(t))
	ctx := context.Background()
	payment, wallet := seed(t, s, "hank")
	seed(t, s, "trader")
	now := time.Now().UTC()

	err := s.Atomic(ctx, func(ctx context.Context, tx store.Tx) error {
		if err := tx.CreateExchangeTrade(ctx, &models.ExchangeTrade{
			Id:               "buy-1",
			Type:             models.TradeBuy,
			Status:           models.TradePending,
			WalletAccountId:  wallet.Id,
			PaymentAccountId: payment.Id,
			TraderId:         "trader",
			PaymentValue:     money.New(100, money.MustLookup("USD")),
			WalletValue:      money.New(10, money.MustLookup("BTC")),
			FeeValue:         money.New(1, money.MustLookup("BTC")),
			DollarPrice:      decimal.NewFromInt(60000),
			CreatedAt:        now,
		}); err != nil {
			return err
		}
		if err := tx.CreateEarning(ctx, &models.Earning{
			Id:          "e1",
			UserId:      "trader",
			Value:       money.New(1, money.MustLookup("BTC")),
			Description: "fee",
			CreatedAt:   now,
		}); err != nil {
			return err
		}
		return tx.UpdateTradeStatus(ctx, "buy-1", models.TradePending, models.TradeCompleted, now)
	})
	if err != nil {
		t.Fatalf("Atomic failed: %v", err)
	}

	trade, err := s.GetExchangeTrade(ctx, "buy-1")
	if err != nil {
		t.Fatalf("GetExchangeTrade failed: %v", err)
	}
	if trade.Status != models.TradeCompleted || trade.CompletedAt == nil {
		t.Errorf("expected completed trade with completion time, got %s %v", trade.Status, trade.CompletedAt)
	}

	err = s.Atomic(ctx, func(ctx context.Context, tx store.Tx) error {
		return tx.UpdateTradeStatus(ctx, "buy-1", models.TradePending, models.TradeCanceled, now)
	})
	if !errors.Is(err, store.ErrStatusChanged) {
		t.Errorf("expected ErrStatusChanged, got %v", err)
	}

	earnings, err := s.ListEarnings(ctx, "trader")
	if err != nil {
		t.Fatalf("ListEarnings failed: %v", err)
	}
	if len(earnings) != 1 || earnings[0].Value.Amount() != 1 {
		t.Errorf("unexpected earnings %+v", earnings)
	}
}

func TestAtomic_RollbackAndHooks(t *testing.T) {
	s := setupTestService(t, testConfig(t))
	ctx := context.Background()
	payment, _ := seed(t, s, "ivy")
	boom := errors.New("boom")

	hookRan := false
	err := s.Atomic(ctx, func(ctx context.Context, tx store.Tx) error {
		tx.AfterCommit(func(context.Context) { hookRan = true })
		if err := tx.CreatePaymentTransaction(ctx, paymentTxn("t1", payment.Id, models.TransactionReceive, models.StatusCompleted, 100, time.Now())); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	if hookRan {
		t.Errorf("hook must not run on rollback")
	}
	if _, err := s.GetPaymentTransaction(ctx, "t1"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected rolled back transaction to be absent, got %v", err)
	}

	var order []string
	err = s.Atomic(ctx, func(ctx context.Context, tx store.Tx) error {
		tx.AfterCommit(func(context.Context) { order = append(order, "outer") })
		return s.Atomic(ctx, func(ctx context.Context, inner store.Tx) error {
			if inner != tx {
				t.Errorf("nested Atomic should join the outer unit")
			}
			inner.AfterCommit(func(context.Context) { order = append(order, "inner") })
			return nil
		})
	})
	if err != nil {
		t.Fatalf("Atomic failed: %v", err)
	}
	if len(order) != 2 || order[0] != "outer" || order[1] != "inner" {
		t.Errorf("expected hooks in registration order, got %v", order)
	}
}

func TestAtomic_PanicReleasesUnit(t *testing.T) {
	cfg := testConfig(t)
	cfg.BusyTimeout = 500 * time.Millisecond
	s := setupTestService(t, cfg)
	ctx := context.Background()
	now := time.Now().UTC()

	func() {
		defer func() {
			if r := recover(); r == nil {
				t.Fatal("expected the unit to panic")
			}
		}()
		_ = s.Atomic(ctx, func(ctx context.Context, tx store.Tx) error {
			if err := tx.CreateUser(ctx, &models.User{Id: "kim", Name: "kim", Email: "kim@example.com", CreatedAt: now}); err != nil {
				return err
			}
			panic("collaborator blew up")
		})
	}()

	// the write lock of the panicking unit must be gone
	err := s.Atomic(ctx, func(ctx context.Context, tx store.Tx) error {
		return tx.CreateUser(ctx, &models.User{Id: "lou", Name: "lou", Email: "lou@example.com", CreatedAt: now})
	})
	if err != nil {
		t.Fatalf("unit after a recovered panic failed: %v", err)
	}
	if _, err := s.GetUserById(ctx, "kim"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected the panicking unit to be rolled back, got %v", err)
	}
}

func TestTxLock(t *testing.T) {
	s := setupTestService(t, testConfig(t))
	ctx := context.Background()
	payment, wallet := seed(t, s, "jack")

	err := s.Atomic(ctx, func(ctx context.Context, tx store.Tx) error {
		if err := tx.Lock(ctx, lock.WalletAccountKey(wallet.Id), lock.PaymentAccountKey(payment.Id)); err != nil {
			return err
		}
		// already held: no-op
		return tx.Lock(ctx, lock.PaymentAccountKey(payment.Id))
	})
	if err != nil {
		t.Fatalf("Lock failed: %v", err)
	}

	err = s.Atomic(ctx, func(ctx context.Context, tx store.Tx) error {
		if err := tx.Lock(ctx, lock.WalletAccountKey(wallet.Id)); err != nil {
			return err
		}
		return tx.Lock(ctx, lock.PaymentAccountKey(payment.Id))
	})
	if !errors.Is(err, lock.ErrOrder) {
		t.Errorf("expected ErrOrder, got %v", err)
	}

	err = s.Atomic(ctx, func(ctx context.Context, tx store.Tx) error {
		return tx.Lock(ctx, lock.ExchangeTradeKey("missing"))
	})
	if !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound for a missing row, got %v", err)
	}
}

func TestRebind(t *testing.T) {
	query := "SELECT a FROM t WHERE b = ? AND c = ?"
	if got := sqliteDialect.rebind(query); got != query {
		t.Errorf("sqlite must keep placeholders, got %s", got)
	}
	if got := postgresDialect.rebind(query); got != "SELECT a FROM t WHERE b = $1 AND c = $2" {
		t.Errorf("unexpected postgres query %s", got)
	}
	lockQuery, err := postgresDialect.lockQuery(lock.PaymentAccount)
	if err != nil {
		t.Fatalf("lockQuery failed: %v", err)
	}
	if lockQuery != "SELECT id FROM payment_accounts WHERE id = $1 FOR NO KEY UPDATE" {
		t.Errorf("unexpected lock query %s", lockQuery)
	}
}

func TestPostgresService(t *testing.T) {
	dsn := os.Getenv("LEDGER_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("LEDGER_TEST_POSTGRES_DSN not set")
	}

	cfg := testConfig(t)
	cfg.Driver = DriverPostgres
	cfg.Url = dsn
	s := setupTestService(t, cfg)
	ctx := context.Background()

	userId := "pg-" + time.Now().Format("150405.000000")
	payment, _ := seed(t, s, userId)
	err := s.Atomic(ctx, func(ctx context.Context, tx store.Tx) error {
		if err := tx.Lock(ctx, lock.PaymentAccountKey(payment.Id)); err != nil {
			return err
		}
		return tx.CreatePaymentTransaction(ctx, paymentTxn(userId+"-t1", payment.Id, models.TransactionReceive, models.StatusCompleted, 250, time.Now()))
	})
	if err != nil {
		t.Fatalf("Atomic failed: %v", err)
	}

	snapshot, err := s.PaymentSnapshot(ctx, payment)
	if err != nil {
		t.Fatalf("PaymentSnapshot failed: %v", err)
	}
	if snapshot.TotalReceived != 250 {
		t.Errorf("expected received 250, got %d", snapshot.TotalReceived)
	}
}

// Two units each lock one user's payment account and the other's wallet, then write child rows
// referencing the rows the other unit holds. Foreign key checks must not wait on the row locks.
func TestPostgresService_CrossedUnitsDoNotDeadlock(t *testing.T) {
	dsn := os.Getenv("LEDGER_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("LEDGER_TEST_POSTGRES_DSN not set")
	}

	cfg := testConfig(t)
	cfg.Driver = DriverPostgres
	cfg.Url = dsn
	s := setupTestService(t, cfg)

	suffix := time.Now().Format("150405.000000")
	alicePayment, aliceWallet := seed(t, s, "alice-"+suffix)
	bobPayment, bobWallet := seed(t, s, "bob-"+suffix)
	btc := money.MustLookup("BTC")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var locked sync.WaitGroup
	locked.Add(2)
	settle := func(id string, payment models.PaymentAccount, otherWallet, ownWallet models.WalletAccount, otherPayment models.PaymentAccount) error {
		return s.Atomic(ctx, func(ctx context.Context, tx store.Tx) error {
			if err := tx.Lock(ctx, lock.PaymentAccountKey(payment.Id), lock.WalletAccountKey(otherWallet.Id)); err != nil {
				locked.Done()
				return err
			}
			locked.Done()
			locked.Wait()

			now := time.Now().UTC()
			if err := tx.CreatePaymentTransaction(ctx, paymentTxn(id+"-credit", otherPayment.Id, models.TransactionReceive, models.StatusCompleted, 100, now)); err != nil {
				return err
			}
			return tx.CreateTransferRecord(ctx, &models.TransferRecord{
				Id:              id + "-receive",
				WalletAccountId: ownWallet.Id,
				Type:            models.TransactionReceive,
				Value:           money.New(1000, btc),
				DollarPrice:     decimal.NewFromInt(60000),
				CreatedAt:       now,
			})
		})
	}

	errs := make([]error, 2)
	var done sync.WaitGroup
	done.Add(2)
	go func() {
		defer done.Done()
		errs[0] = settle("alice-buys-"+suffix, alicePayment, bobWallet, aliceWallet, bobPayment)
	}()
	go func() {
		defer done.Done()
		errs[1] = settle("bob-buys-"+suffix, bobPayment, aliceWallet, bobWallet, alicePayment)
	}()
	done.Wait()

	for i, err := range errs {
		if err != nil {
			t.Errorf("unit %d failed: %v", i, err)
		}
	}
}

package formance

import (
	"errors"
	"math/big"
	"testing"
	"time"

	"wallet-ledger-go/internal/models"
	"wallet-ledger-go/internal/money"

	"github.com/formancehq/formance-sdk-go/v3/pkg/models/shared"
)

// ---------- Unit tests for pure helpers (no Formance stack needed) ----------

var (
	usd = money.MustLookup("USD")
	btc = money.MustLookup("BTC")
	jpy = money.MustLookup("JPY")
)

func TestFormanceAsset(t *testing.T) {
	tests := []struct {
		cur  money.Currency
		want string
	}{
		{usd, "USD/2"},
		{btc, "BTC/8"},
		{jpy, "JPY/0"},
	}
	for _, tt := range tests {
		if got := formanceAsset(tt.cur); got != tt.want {
			t.Errorf("formanceAsset(%s) = %q, want %q", tt.cur.Code, got, tt.want)
		}
	}
}

func TestAddresses(t *testing.T) {
	payment := models.PaymentAccount{Id: "pa_1", UserId: "u1", Currency: usd}
	if got := PaymentAddress(payment); got != "users:u1:payments:USD" {
		t.Errorf("PaymentAddress = %q", got)
	}

	wallet := models.WalletAccount{Id: "wa_1", UserId: "u1", Coin: btc}
	if got := WalletAddress(wallet); got != "users:u1:wallets:BTC" {
		t.Errorf("WalletAddress = %q", got)
	}
}

func TestVolumeBalance(t *testing.T) {
	vols := map[string]shared.V2Volume{
		"USD/2": {Input: big.NewInt(5000), Output: big.NewInt(1200)},
		"BTC/8": {Input: big.NewInt(10), Output: big.NewInt(0), Balance: big.NewInt(7)},
	}

	if got := volumeBalance(vols, "USD/2"); got == nil || got.Int64() != 3800 {
		t.Errorf("expected USD balance 3800, got %v", got)
	}
	// Balance wins over input minus output when the stack provides it.
	if got := volumeBalance(vols, "BTC/8"); got == nil || got.Int64() != 7 {
		t.Errorf("expected BTC balance 7, got %v", got)
	}
	if got := volumeBalance(vols, "EUR/2"); got != nil {
		t.Errorf("expected nil for missing asset, got %v", got)
	}
}

func TestToMoney(t *testing.T) {
	m, err := toMoney(big.NewInt(123456), usd)
	if err != nil {
		t.Fatal(err)
	}
	if m.Format() != "$1,234.56" {
		t.Errorf("expected $1,234.56, got %s", m.Format())
	}

	m, err = toMoney(nil, btc)
	if err != nil || !m.IsZero() || m.Currency().Code != "BTC" {
		t.Errorf("expected zero BTC, got %v (%v)", m, err)
	}

	huge := new(big.Int).Lsh(big.NewInt(1), 70)
	if _, err := toMoney(huge, usd); !errors.Is(err, money.ErrOverflow) {
		t.Errorf("expected ErrOverflow, got %v", err)
	}
}

func TestPaymentPosting(t *testing.T) {
	account := models.PaymentAccount{Id: "pa_1", UserId: "u1", Currency: usd}

	receive := models.PaymentTransaction{
		Id:          "txn_1",
		Type:        models.TransactionReceive,
		Status:      models.StatusCompleted,
		Value:       money.New(2550, usd),
		Description: "Card deposit",
		UpdatedAt:   time.Date(2025, time.March, 14, 10, 30, 0, 0, time.UTC),
	}
	postTx, err := paymentMovement(account, receive).posting()
	if err != nil {
		t.Fatal(err)
	}
	if postTx.Reference == nil || *postTx.Reference != "txn_1" {
		t.Fatalf("expected reference txn_1, got %v", postTx.Reference)
	}
	if postTx.Script.Plain != numscriptReceive {
		t.Error("expected receive numscript")
	}
	vars := postTx.Script.Vars
	if vars["asset"] != "USD/2" || vars["amount"] != "2550" || vars["amount_human"] != "25.50" {
		t.Errorf("unexpected amount vars: %v", vars)
	}
	if vars["account"] != "users:u1:payments:USD" || vars["event_type"] != "payment_receive" {
		t.Errorf("unexpected account vars: %v", vars)
	}

	send := receive
	send.Id = "txn_2"
	send.Type = models.TransactionSend
	postTx, err = paymentMovement(account, send).posting()
	if err != nil {
		t.Fatal(err)
	}
	if postTx.Script.Plain != numscriptSend {
		t.Error("expected send numscript")
	}
}

func TestTransferPosting(t *testing.T) {
	account := models.WalletAccount{Id: "wa_1", UserId: "u1", Coin: btc}
	record := models.TransferRecord{
		Id:          "tr_1",
		Type:        models.TransactionReceive,
		Value:       money.New(1_000_000, btc),
		Description: "Exchange buy",
	}

	postTx, err := transferMovement(account, record).posting()
	if err != nil {
		t.Fatal(err)
	}
	vars := postTx.Script.Vars
	if vars["asset"] != "BTC/8" || vars["amount"] != "1000000" || vars["amount_human"] != "0.01000000" {
		t.Errorf("unexpected amount vars: %v", vars)
	}
	if vars["event_type"] != "transfer_receive" || vars["account_id"] != "wa_1" {
		t.Errorf("unexpected vars: %v", vars)
	}
}

func TestPostingRejectsNonPositive(t *testing.T) {
	account := models.PaymentAccount{Id: "pa_1", UserId: "u1", Currency: usd}
	txn := models.PaymentTransaction{Id: "txn_0", Type: models.TransactionSend, Value: money.Zero(usd)}
	if _, err := paymentMovement(account, txn).posting(); err == nil {
		t.Error("expected error for zero amount")
	}
}

func TestIsConflictError(t *testing.T) {
	// nil error should not be a conflict
	if isConflictError(nil) {
		t.Error("nil should not be a conflict error")
	}
	if isNotFoundError(errors.New("boom")) {
		t.Error("plain error should not be not-found")
	}
}

package gateway

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"wallet-ledger-go/internal/ledger"
)

type fakeSource struct {
	txns  []WalletTransaction
	err   error
	since time.Time
}

func (f *fakeSource) ListWalletTransactions(_ context.Context, _, _ string, start time.Time) ([]WalletTransaction, error) {
	f.since = start
	return f.txns, f.err
}

func TestRegistry_RoutesByName(t *testing.T) {
	r := NewRegistry()
	r.Register("Stripe", VerifierFunc(func(_ context.Context, ref string) (bool, error) {
		return ref == "ch_1", nil
	}))

	ok, err := r.Verify(context.Background(), "stripe", "ch_1")
	if err != nil || !ok {
		t.Errorf("Verify(stripe, ch_1) = %v, %v", ok, err)
	}
	ok, err = r.Verify(context.Background(), "STRIPE", "ch_2")
	if err != nil || ok {
		t.Errorf("Verify(STRIPE, ch_2) = %v, %v", ok, err)
	}

	_, err = r.Verify(context.Background(), "paypal", "x")
	if !errors.Is(err, ledger.ErrGatewayUnreachable) {
		t.Errorf("unknown gateway: expected ErrGatewayUnreachable, got %v", err)
	}

	r.SetFallback(VerifierFunc(func(context.Context, string) (bool, error) { return true, nil }))
	ok, err = r.Verify(context.Background(), "paypal", "x")
	if err != nil || !ok {
		t.Errorf("fallback: Verify() = %v, %v", ok, err)
	}
	if names := r.Names(); len(names) != 1 || names[0] != "stripe" {
		t.Errorf("Names() = %v", names)
	}
}

func TestPrimeVerifier(t *testing.T) {
	now := time.Date(2025, time.March, 14, 12, 0, 0, 0, time.UTC)
	source := &fakeSource{txns: []WalletTransaction{
		{Id: "tx-pending", Status: "TRANSACTION_IMPORT_PENDING"},
		{Id: "tx-done", Status: "TRANSACTION_IMPORTED"},
		{Id: "tx-other", TransactionId: "chain-hash", Status: "TRANSACTION_DONE"},
		{Id: "tx-failed", Status: "TRANSACTION_FAILED"},
	}}
	v := NewPrimeVerifier(source, "portfolio", "wallet", 6*time.Hour)
	v.now = func() time.Time { return now }

	tests := []struct {
		ref  string
		want bool
	}{
		{"tx-pending", false},
		{"tx-done", true},
		{"chain-hash", true},
		{"tx-failed", false},
		{"tx-unknown", false},
	}
	for _, tt := range tests {
		got, err := v.Verify(context.Background(), tt.ref)
		if err != nil {
			t.Fatalf("Verify(%s) error = %v", tt.ref, err)
		}
		if got != tt.want {
			t.Errorf("Verify(%s) = %v, want %v", tt.ref, got, tt.want)
		}
	}
	if want := now.Add(-6 * time.Hour); !source.since.Equal(want) {
		t.Errorf("lookback start = %v, want %v", source.since, want)
	}

	source.err = errors.New("401 unauthorized")
	if _, err := v.Verify(context.Background(), "tx-done"); !errors.Is(err, ledger.ErrGatewayUnreachable) {
		t.Errorf("expected ErrGatewayUnreachable, got %v", err)
	}
}

func TestHTTPVerifier(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("gateway") != "Flutterwave" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		switch ref := r.URL.Query().Get("ref"); ref {
		case "paid":
			_, _ = w.Write([]byte(`{"ref":"paid","status":"PAID"}`))
		case "pending":
			_, _ = w.Write([]byte(`{"ref":"pending","status":"pending"}`))
		case "mixed":
			_, _ = w.Write([]byte(`{"ref":"someone-else","status":"paid"}`))
		case "broken":
			w.WriteHeader(http.StatusBadGateway)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	v, err := NewHTTPVerifier(server.URL+"/status", "Flutterwave", time.Second)
	if err != nil {
		t.Fatalf("NewHTTPVerifier() error = %v", err)
	}

	tests := []struct {
		ref     string
		want    bool
		wantErr bool
	}{
		{"paid", true, false},
		{"pending", false, false},
		{"missing", false, false},
		{"mixed", false, true},
		{"broken", false, true},
	}
	for _, tt := range tests {
		got, err := v.Verify(context.Background(), tt.ref)
		if tt.wantErr {
			if !errors.Is(err, ledger.ErrGatewayUnreachable) {
				t.Errorf("Verify(%s): expected ErrGatewayUnreachable, got %v", tt.ref, err)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("Verify(%s) = %v, %v; want %v", tt.ref, got, err, tt.want)
		}
	}

	if _, err := NewHTTPVerifier("not a url", "x", time.Second); err == nil {
		t.Error("expected an error for an invalid endpoint")
	}
}

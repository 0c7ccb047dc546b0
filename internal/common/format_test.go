package common

import (
	"testing"

	"wallet-ledger-go/internal/models"
	"wallet-ledger-go/internal/money"
)

func TestShortId(t *testing.T) {
	tests := map[string]string{
		"":                                     "none",
		"abc":                                  "abc",
		"5b0c9d3e-8a7f-4e21-9c6b-0d4f1a2e3b4c": "5b0c9d3e...",
	}
	for in, want := range tests {
		if got := ShortId(in); got != want {
			t.Errorf("ShortId(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestBalanceRow(t *testing.T) {
	usd := money.MustLookup("USD")
	b := models.BalanceSnapshot{
		Currency:            usd,
		TotalReceived:       1000000,
		TotalSent:           300000,
		OnTrade:             200000,
		PendingReceive:      5000,
		PendingReceiveCount: 1,
	}.Balances()

	want := "USD   ABCDE12345 balance          $7,000.00  available          $5,000.00  on trade $2,000.00  pending $50.00 (1)"
	if got := BalanceRow("USD", "ABCDE12345", b); got != want {
		t.Errorf("BalanceRow =\n%q\nwant\n%q", got, want)
	}
}

package main

import (
	"reflect"
	"testing"
)

func TestValidateEmail(t *testing.T) {
	for _, email := range []string{"alice@example.com", "a.b+c@sub.example.org"} {
		if err := validateEmail(email); err != nil {
			t.Errorf("validateEmail(%q) = %v", email, err)
		}
	}
	for _, email := range []string{"", "alice", "alice@", "alice@example"} {
		if err := validateEmail(email); err == nil {
			t.Errorf("validateEmail(%q) should fail", email)
		}
	}
}

func TestValidateName(t *testing.T) {
	if err := validateName("Al"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := validateName("A"); err == nil {
		t.Error("single character name should fail")
	}
}

func TestSplitCodes(t *testing.T) {
	got := splitCodes(" usd, EUR,,btc ")
	want := []string{"USD", "EUR", "BTC"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("splitCodes = %v, want %v", got, want)
	}
	if got := splitCodes(""); got != nil {
		t.Errorf("expected nil, got %v", got)
	}
}

package rates

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"wallet-ledger-go/internal/ledger"
	"wallet-ledger-go/internal/models"
	"wallet-ledger-go/internal/money"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	usd = money.MustLookup("USD")
	eur = money.MustLookup("EUR")
	btc = money.MustLookup("BTC")
	jpy = money.MustLookup("JPY")
)

func staticRates() map[string]decimal.Decimal {
	return map[string]decimal.Decimal{
		"EUR": decimal.RequireFromString("0.92"),
		"jpy": decimal.RequireFromString("150"),
		"BTC": decimal.RequireFromString("0.000015"),
	}
}

func TestNewConverter_Validation(t *testing.T) {
	_, err := NewConverter(map[string]decimal.Decimal{"XYZ": decimal.NewFromInt(1)}, models.RatesConfig{})
	require.ErrorIs(t, err, money.ErrUnknownCurrency)

	_, err = NewConverter(map[string]decimal.Decimal{"EUR": decimal.Zero}, models.RatesConfig{})
	require.Error(t, err)
}

func TestConvert(t *testing.T) {
	c, err := NewConverter(staticRates(), models.RatesConfig{})
	require.NoError(t, err)
	ctx := context.Background()

	tests := []struct {
		name  string
		value money.Money
		to    string
		want  money.Money
	}{
		{"usd to eur", money.New(500000, usd), "EUR", money.New(460000, eur)},
		{"eur to usd rounds", money.New(10000, eur), "USD", money.New(10870, usd)},
		{"usd to jpy", money.New(1000, usd), "JPY", money.New(1500, jpy)},
		{"eur to jpy through usd", money.New(920, eur), "JPY", money.New(1500, jpy)},
		{"usd to btc", money.New(10000, usd), "BTC", money.New(150000, btc)},
		{"same currency", money.New(42, eur), "EUR", money.New(42, eur)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := c.Convert(ctx, tt.value, tt.to)
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "got %s, want %s", got, tt.want)
		})
	}

	_, err = c.Convert(ctx, money.New(100, usd), "GBP")
	require.ErrorIs(t, err, ledger.ErrRateUnavailable)

	_, err = c.Convert(ctx, money.New(100, usd), "XYZ")
	require.ErrorIs(t, err, money.ErrUnknownCurrency)
}

func TestRefresh(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"base":"USD","rates":{"EUR":"0.9","GBP":0.8,"DOGE":"7"}}`))
	}))
	defer server.Close()

	c, err := NewConverter(staticRates(), models.RatesConfig{Url: server.URL, Timeout: time.Second})
	require.NoError(t, err)
	require.NoError(t, c.Refresh(context.Background()))

	rate, ok := c.Rate("EUR")
	require.True(t, ok)
	assert.Equal(t, "0.9", rate.String())
	_, ok = c.Rate("GBP")
	assert.True(t, ok)
	rate, ok = c.Rate("JPY")
	require.True(t, ok)
	assert.Equal(t, "150", rate.String())
	_, ok = c.Rate("DOGE")
	assert.False(t, ok)
	assert.False(t, c.UpdatedAt().IsZero())
}

func TestRefresh_Failures(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"server error", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusInternalServerError) }},
		{"malformed body", func(w http.ResponseWriter, r *http.Request) { _, _ = w.Write([]byte(`{"base":`)) }},
		{"wrong base", func(w http.ResponseWriter, r *http.Request) { _, _ = w.Write([]byte(`{"base":"EUR","rates":{}}`)) }},
		{"negative rate", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"base":"USD","rates":{"EUR":"-1"}}`))
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(tt.handler)
			defer server.Close()

			c, err := NewConverter(staticRates(), models.RatesConfig{Url: server.URL, Timeout: time.Second})
			require.NoError(t, err)

			err = c.Refresh(context.Background())
			require.True(t, errors.Is(err, ledger.ErrRateUnavailable), "got %v", err)

			rate, _ := c.Rate("EUR")
			assert.Equal(t, "0.92", rate.String())
		})
	}
}

func TestRefresh_WithoutFeed(t *testing.T) {
	c, err := NewConverter(nil, models.RatesConfig{})
	require.NoError(t, err)
	require.NoError(t, c.Refresh(context.Background()))

	rate, ok := c.Rate("USD")
	require.True(t, ok)
	assert.True(t, rate.Equal(decimal.NewFromInt(1)))
}

package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tearpay/pkg/types"
)

func testInvoice() types.Invoice {
	return types.Invoice{
		AmountUSD:  0.99,
		ID:         "test",
		Recipient:  "slimedragon.near",
		RedirectTo: "https://example.com",
	}
}

func TestRequestAmount(t *testing.T) {
	assert.Equal(t, "9900000", RequestAmount(0.99))
	assert.Equal(t, "10000000", RequestAmount(1))
	assert.Equal(t, "49900000", RequestAmount(4.99))

	// Fractional smallest units are floored, never rounded up.
	assert.Equal(t, "1", RequestAmount(0.00000015))
	assert.Equal(t, "0", RequestAmount(0.00000001))
}

func TestBuildQuoteRequest(t *testing.T) {
	req := BuildQuoteRequest(testInvoice(), "nep141:wrap.near")

	assert.False(t, req.Dry)
	assert.Equal(t, "EXACT_OUTPUT", req.SwapType)
	assert.Equal(t, 100, req.SlippageTolerance)
	assert.Equal(t, "nep141:wrap.near", req.OriginAsset)
	assert.Equal(t, "ORIGIN_CHAIN", req.DepositType)
	assert.Equal(t, DestinationAssetID, req.DestinationAsset)
	assert.Equal(t, "9900000", req.Amount)
	assert.Equal(t, "refunds.intear.near", req.RefundTo)
	assert.Equal(t, "INTENTS", req.RefundType)
	assert.Equal(t, "slimedragon.near", req.Recipient)
	assert.Equal(t, "INTENTS", req.RecipientType)
	assert.Equal(t, "tearpay.intear.near", req.Referral)
	assert.WithinDuration(t, time.Now().Add(10*time.Minute), req.Deadline, 5*time.Second)
}

func quoteResponseJSON(depositAddress string, deadline time.Time) string {
	d := deadline.UTC().Format(time.RFC3339)
	return fmt.Sprintf(`{
		"timestamp": %q,
		"signature": "ed25519:sig",
		"quoteRequest": {
			"dry": false,
			"swapType": "EXACT_OUTPUT",
			"slippageTolerance": 100,
			"originAsset": "nep141:wrap.near",
			"depositType": "ORIGIN_CHAIN",
			"destinationAsset": "nep141:usdc",
			"amount": "9900000",
			"refundTo": "refunds.intear.near",
			"refundType": "INTENTS",
			"recipient": "slimedragon.near",
			"recipientType": "INTENTS",
			"deadline": %q,
			"referral": "tearpay.intear.near"
		},
		"quote": {
			"depositAddress": %q,
			"amountIn": "1230000000000000000000000",
			"amountInFormatted": "1.23",
			"amountInUsd": "1.00",
			"minAmountIn": "1220000000000000000000000",
			"amountOut": "9900000",
			"amountOutFormatted": "0.99",
			"amountOutUsd": "0.99",
			"minAmountOut": "9800000",
			"deadline": %q,
			"timeWhenInactive": %q,
			"timeEstimate": 10
		}
	}`, d, d, depositAddress, d, d)
}

func TestRequestQuoteParsesResponse(t *testing.T) {
	deadline := time.Now().Add(10 * time.Minute).Truncate(time.Second)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/v0/quote", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, quoteResponseJSON("deposit-addr-1", deadline))
	}))
	defer server.Close()

	c := NewClient(server.URL, "")
	resp, err := c.RequestQuote(context.Background(), testInvoice(), "nep141:wrap.near")
	require.NoError(t, err)

	assert.Equal(t, "deposit-addr-1", resp.Quote.DepositAddress)
	assert.Equal(t, "1.23", resp.Quote.AmountInFormatted)
	assert.Equal(t, "nep141:wrap.near", resp.QuoteRequest.OriginAsset)
	assert.WithinDuration(t, deadline, resp.Quote.Deadline, time.Second)
}

func TestRequestQuoteSurfacesUpstreamMessage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		fmt.Fprint(w, `{"message": "Internal server error"}`)
	}))
	defer server.Close()

	c := NewClient(server.URL, "")
	_, err := c.RequestQuote(context.Background(), testInvoice(), "nep141:wrap.near")
	require.Error(t, err)

	var fetchErr *QuoteFetchError
	require.True(t, errors.As(err, &fetchErr))
	assert.Equal(t, http.StatusInternalServerError, fetchErr.StatusCode)
	assert.Contains(t, fetchErr.Error(), "Internal server error")
}

func TestExecutionStatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"message": "Deposit address not found"}`)
	}))
	defer server.Close()

	c := NewClient(server.URL, "")
	_, err := c.ExecutionStatus(context.Background(), "unknown-address")
	require.Error(t, err)

	var statusErr *StatusFetchError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusNotFound, statusErr.StatusCode)
	assert.Contains(t, statusErr.Error(), "Deposit address not found")
}

func TestTokensSendsBearerToken(t *testing.T) {
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v0/tokens", r.URL.Path)
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `[{
			"assetId": "nep141:wrap.near",
			"decimals": 24,
			"blockchain": "near",
			"symbol": "wNEAR",
			"price": 3.15,
			"priceUpdatedAt": "2026-08-01T12:00:00Z",
			"contractAddress": "wrap.near"
		}]`)
	}))
	defer server.Close()

	c := NewClient(server.URL, "jwt-123")
	tokens, err := c.Tokens(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "Bearer jwt-123", gotAuth)
	require.Len(t, tokens, 1)
	assert.Equal(t, "nep141:wrap.near", tokens[0].AssetID)
	assert.Equal(t, 24, tokens[0].Decimals)
	assert.Equal(t, "wNEAR", tokens[0].Symbol)
}

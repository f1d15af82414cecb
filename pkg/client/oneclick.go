package client

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	oneclick "github.com/defuse-protocol/one-click-sdk-go"
	"github.com/shopspring/decimal"

	"tearpay/pkg/types"
)

const (
	// DestinationAssetID is the settlement currency every invoice is quoted
	// into: USDC held on NEAR Intents.
	DestinationAssetID = "nep141:17208628f84f5d6ad33f0da3bbbeb27ffcb398eac501a31bd6ad2011e36133a1"

	// refundAccount receives refunds for failed swaps via Intents.
	refundAccount = "refunds.intear.near"

	// referralTag identifies TearPay quotes to the service.
	referralTag = "tearpay.intear.near"

	// quoteDeadline is how long a deposit address stays payable.
	quoteDeadline = 10 * time.Minute

	// slippageToleranceBps is the fixed slippage tolerance (1%).
	slippageToleranceBps = 100

	// usdUnits is the requested smallest-unit amount per 1 USD. This has
	// always been 10^7, not the 10^6 a 6-decimal stable asset would suggest;
	// every issued quote depends on it staying as is.
	usdUnits = 10_000_000
)

// Client wraps the 1Click SDK for quoting, status lookup and the token catalog
type Client struct {
	api      *oneclick.APIClient
	jwtToken string
}

// NewClient creates a 1Click API client. The JWT token is optional; quoting
// works unauthenticated.
func NewClient(baseURL, jwtToken string) *Client {
	config := oneclick.NewConfiguration()
	if baseURL != "" {
		config.Servers = oneclick.ServerConfigurations{
			{URL: baseURL},
		}
	}

	return &Client{
		api:      oneclick.NewAPIClient(config),
		jwtToken: jwtToken,
	}
}

func (c *Client) authCtx(ctx context.Context) context.Context {
	if c.jwtToken == "" {
		return ctx
	}
	return context.WithValue(ctx, oneclick.ContextAccessToken, c.jwtToken)
}

// Tokens retrieves the supported token catalog
func (c *Client) Tokens(ctx context.Context) ([]types.Token, error) {
	resp, httpResp, err := c.api.OneClickAPI.GetTokens(c.authCtx(ctx)).Execute()
	if err != nil {
		statusCode, message := upstreamMessage(httpResp, err, "Failed to fetch tokens")
		return nil, &QuoteFetchError{StatusCode: statusCode, Message: message, Err: err}
	}
	defer httpResp.Body.Close()

	tokens := make([]types.Token, 0, len(resp))
	for _, t := range resp {
		tokens = append(tokens, tokenFromSDK(t))
	}
	return tokens, nil
}

// BuildQuoteRequest produces the quote parameters for paying an invoice with
// the given origin asset: exact-output swap into the fixed settlement asset,
// origin-chain deposit, Intents refund and recipient routing, and a deadline
// ten minutes out.
func BuildQuoteRequest(inv types.Invoice, originAssetID string) types.QuoteRequest {
	return types.QuoteRequest{
		Dry:               false,
		SwapType:          "EXACT_OUTPUT",
		SlippageTolerance: slippageToleranceBps,
		OriginAsset:       originAssetID,
		DepositType:       "ORIGIN_CHAIN",
		DestinationAsset:  DestinationAssetID,
		Amount:            RequestAmount(inv.AmountUSD),
		RefundTo:          refundAccount,
		RefundType:        "INTENTS",
		Recipient:         inv.Recipient,
		RecipientType:     "INTENTS",
		Deadline:          time.Now().Add(quoteDeadline),
		Referral:          referralTag,
	}
}

// RequestAmount converts an invoice's USD amount to the smallest-unit amount
// string requested from the service: floor(amountUsd * usdUnits)
func RequestAmount(amountUSD float64) string {
	return decimal.NewFromFloat(amountUSD).
		Mul(decimal.NewFromInt(usdUnits)).
		Floor().
		String()
}

// RequestQuote requests a fresh quote for paying the invoice with the given
// origin asset. The response is returned as parsed; no client-side validation
// of amounts or deadline is performed.
func (c *Client) RequestQuote(ctx context.Context, inv types.Invoice, originAssetID string) (*types.QuoteResponse, error) {
	req := BuildQuoteRequest(inv, originAssetID)

	quoteReq := oneclick.NewQuoteRequest(
		req.Dry,              // dry - false to get a real deposit address
		"EXACT_OUTPUT",       // swapType - the invoice's output amount is fixed
		slippageToleranceBps, // slippageTolerance (1%)
		req.OriginAsset,      // originAsset
		"ORIGIN_CHAIN",       // depositType
		req.DestinationAsset, // destinationAsset
		req.Amount,           // amount in smallest unit
		req.RefundTo,         // refundTo
		"INTENTS",            // refundType
		req.Recipient,        // recipient
		"INTENTS",            // recipientType
		req.Deadline,         // deadline
	)
	quoteReq.SetReferral(req.Referral)

	resp, httpResp, err := c.api.OneClickAPI.GetQuote(c.authCtx(ctx)).QuoteRequest(*quoteReq).Execute()
	if err != nil {
		statusCode, message := upstreamMessage(httpResp, err, "Failed to fetch quote")
		return nil, &QuoteFetchError{StatusCode: statusCode, Message: message, Err: err}
	}
	defer httpResp.Body.Close()

	if resp == nil {
		return nil, &QuoteFetchError{StatusCode: httpResp.StatusCode, Message: "empty quote response"}
	}

	converted := quoteResponseFromSDK(*resp)
	return &converted, nil
}

// ExecutionStatus looks up the swap execution status for a deposit address
func (c *Client) ExecutionStatus(ctx context.Context, depositAddress string) (*types.ExecutionStatus, error) {
	resp, httpResp, err := c.api.OneClickAPI.GetExecutionStatus(c.authCtx(ctx)).DepositAddress(depositAddress).Execute()
	if err != nil {
		statusCode, message := upstreamMessage(httpResp, err, "Failed to fetch quote status")
		return nil, &StatusFetchError{StatusCode: statusCode, Message: message, Err: err}
	}
	defer httpResp.Body.Close()

	if resp == nil {
		return nil, &StatusFetchError{StatusCode: httpResp.StatusCode, Message: "empty status response"}
	}

	converted := statusFromSDK(resp)
	return &converted, nil
}

// upstreamMessage extracts the service's error message from a failed call,
// falling back to the given generic message
func upstreamMessage(httpResp *http.Response, err error, fallback string) (int, string) {
	statusCode := 0
	if httpResp != nil {
		statusCode = httpResp.StatusCode
	}

	var body []byte
	var apiErr *oneclick.GenericOpenAPIError
	if errors.As(err, &apiErr) {
		body = apiErr.Body()
	}
	if len(body) == 0 && httpResp != nil && httpResp.Body != nil {
		body, _ = io.ReadAll(httpResp.Body)
		httpResp.Body.Close()
	}

	if len(body) > 0 {
		var errorResp struct {
			Message string `json:"message"`
		}
		if jsonErr := json.Unmarshal(body, &errorResp); jsonErr == nil && errorResp.Message != "" {
			return statusCode, errorResp.Message
		}
	}

	return statusCode, fallback
}

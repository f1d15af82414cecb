package types

import (
	"fmt"
	"time"
)

// Invoice is the payment request being rendered: a fixed USD amount owed to a
// recipient, identified by an invoice id
type Invoice struct {
	AmountUSD  float64
	ID         string
	Recipient  string
	RedirectTo string
}

// QuoteRequest holds the parameters sent to the quoting service.
// It is constructed fresh per quote attempt and never mutated afterwards.
type QuoteRequest struct {
	Dry               bool      `json:"dry"`
	SwapType          string    `json:"swapType"`
	SlippageTolerance int       `json:"slippageTolerance"`
	OriginAsset       string    `json:"originAsset"`
	DepositType       string    `json:"depositType"`
	DestinationAsset  string    `json:"destinationAsset"`
	Amount            string    `json:"amount"`
	RefundTo          string    `json:"refundTo"`
	RefundType        string    `json:"refundType"`
	Recipient         string    `json:"recipient"`
	RecipientType     string    `json:"recipientType"`
	Deadline          time.Time `json:"deadline"`
	Referral          string    `json:"referral"`
}

// Quote is the service's committed terms: where to deposit, how much, and
// until when the deposit address is honored
type Quote struct {
	DepositAddress     string    `json:"depositAddress"`
	AmountIn           string    `json:"amountIn"`
	AmountInFormatted  string    `json:"amountInFormatted"`
	AmountInUSD        string    `json:"amountInUsd"`
	MinAmountIn        string    `json:"minAmountIn"`
	AmountOut          string    `json:"amountOut"`
	AmountOutFormatted string    `json:"amountOutFormatted"`
	AmountOutUSD       string    `json:"amountOutUsd"`
	MinAmountOut       string    `json:"minAmountOut"`
	Deadline           time.Time `json:"deadline"`
	TimeWhenInactive   time.Time `json:"timeWhenInactive"`
	TimeEstimate       float64   `json:"timeEstimate"`
}

// QuoteResponse is the full payload returned by the quoting endpoint
type QuoteResponse struct {
	Timestamp    time.Time    `json:"timestamp"`
	Signature    string       `json:"signature"`
	QuoteRequest QuoteRequest `json:"quoteRequest"`
	Quote        Quote        `json:"quote"`
}

// StoredQuote is the unit of quote persistence: the response plus the invoice
// it was fetched for and when it was fetched locally
type StoredQuote struct {
	QuoteResponse
	InvoiceID string    `json:"invoiceId"`
	CreatedAt time.Time `json:"createdAt"`
}

// Key returns the canonical identity of the stored quote
func (q StoredQuote) Key() string {
	return QuoteKey(q.InvoiceID, q.QuoteRequest.OriginAsset, q.QuoteRequest.Recipient)
}

// QuoteKey derives the canonical cache key for a quote.
// Every lookup and store path must go through this derivation.
func QuoteKey(invoiceID, originAsset, recipient string) string {
	return fmt.Sprintf("%s,%s,%s", invoiceID, originAsset, recipient)
}

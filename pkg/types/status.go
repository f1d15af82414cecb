package types

import "time"

// SwapStatus is the execution status reported by the quoting service for a
// deposit address. Values outside this set are displayed as unknown, never
// rejected.
type SwapStatus string

const (
	StatusKnownDepositTx    SwapStatus = "KNOWN_DEPOSIT_TX"
	StatusPendingDeposit    SwapStatus = "PENDING_DEPOSIT"
	StatusIncompleteDeposit SwapStatus = "INCOMPLETE_DEPOSIT"
	StatusProcessing        SwapStatus = "PROCESSING"
	StatusSuccess           SwapStatus = "SUCCESS"
	StatusRefunded          SwapStatus = "REFUNDED"
	StatusFailed            SwapStatus = "FAILED"
)

// TransactionDetails identifies a chain transaction involved in a swap
type TransactionDetails struct {
	Hash        string `json:"hash"`
	ExplorerURL string `json:"explorerUrl"`
}

// SwapDetails carries the settlement particulars of a swap in flight or done
type SwapDetails struct {
	IntentHashes             []string             `json:"intentHashes"`
	NearTxHashes             []string             `json:"nearTxHashes"`
	AmountIn                 string               `json:"amountIn"`
	AmountInFormatted        string               `json:"amountInFormatted"`
	AmountInUSD              string               `json:"amountInUsd"`
	AmountOut                string               `json:"amountOut"`
	AmountOutFormatted       string               `json:"amountOutFormatted"`
	AmountOutUSD             string               `json:"amountOutUsd"`
	Slippage                 int                  `json:"slippage"`
	OriginChainTxHashes      []TransactionDetails `json:"originChainTxHashes"`
	DestinationChainTxHashes []TransactionDetails `json:"destinationChainTxHashes"`
	RefundedAmount           string               `json:"refundedAmount"`
	RefundedAmountFormatted  string               `json:"refundedAmountFormatted"`
	RefundedAmountUSD        string               `json:"refundedAmountUsd"`
}

// ExecutionStatus is the status endpoint's payload for a deposit address
type ExecutionStatus struct {
	QuoteResponse QuoteResponse `json:"quoteResponse"`
	Status        SwapStatus    `json:"status"`
	UpdatedAt     time.Time     `json:"updatedAt"`
	SwapDetails   SwapDetails   `json:"swapDetails"`
}

// PaymentOutcome is the terminal outcome recorded for an invoice
type PaymentOutcome string

const (
	PaymentSuccess    PaymentOutcome = "SUCCESS"
	PaymentFailed     PaymentOutcome = "FAILED"
	PaymentProcessing PaymentOutcome = "PROCESSING"
)

// PaymentStatus records that an invoice reached an outcome.
// Once SUCCESS is written it is never updated.
type PaymentStatus struct {
	InvoiceID string         `json:"invoiceId"`
	Status    PaymentOutcome `json:"status"`
	Timestamp time.Time      `json:"timestamp"`
}

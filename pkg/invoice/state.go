package invoice

import "tearpay/pkg/types"

// State is the phase the payment flow is in
type State string

const (
	// StateSelecting - no token chosen yet
	StateSelecting State = "selecting"
	// StateQuotePending - a quote fetch is in flight
	StateQuotePending State = "quote_pending"
	// StateQuoteReady - a quote is displayed; expiration and status checks run
	StateQuoteReady State = "quote_ready"
	// StateQuoteExpired - the deadline passed; waiting for an explicit refresh
	StateQuoteExpired State = "quote_expired"
	// StatePaid - terminal; the payment settled
	StatePaid State = "paid"
)

// UnsupportedTokenMessage is the only quote failure text shown to the payer.
// The underlying cause goes to the log, not the screen.
const UnsupportedTokenMessage = "This token is not supported for payments at this time."

// Snapshot is the session's externally visible state after applying an event
type Snapshot struct {
	State        State
	Token        *types.Token
	Quote        *types.StoredQuote
	SwapStatus   types.SwapStatus
	ErrorMessage string
}

// Paid reports whether the snapshot is in the terminal paid state
func (s Snapshot) Paid() bool {
	return s.State == StatePaid
}

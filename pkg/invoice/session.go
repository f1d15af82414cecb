package invoice

import (
	"context"
	"log"
	"sync"
	"time"

	"tearpay/pkg/address"
	"tearpay/pkg/storage"
	"tearpay/pkg/types"
)

const (
	// DefaultExpireInterval is how often the local deadline check runs.
	DefaultExpireInterval = 1 * time.Second
	// DefaultPollInterval is how often the remote status poll runs.
	DefaultPollInterval = 5 * time.Second
)

// QuoteService is the slice of the 1Click client the session consumes
type QuoteService interface {
	RequestQuote(ctx context.Context, inv types.Invoice, originAssetID string) (*types.QuoteResponse, error)
	ExecutionStatus(ctx context.Context, depositAddress string) (*types.ExecutionStatus, error)
}

// Session drives one invoice's payment flow. All transitions are applied by a
// single event loop consuming commands, fetch results and timer ticks from
// one ordered channel, so staleness checks happen where events are consumed.
type Session struct {
	inv      types.Invoice
	svc      QuoteService
	quotes   *storage.QuoteStore
	payments *storage.StatusStore

	now            func() time.Time
	expireInterval time.Duration
	pollInterval   time.Duration

	events  chan event
	updates chan Snapshot
	done    chan struct{}
	once    sync.Once

	// Owned by the event loop after Start.
	state      State
	token      *types.Token
	quote      *types.StoredQuote
	swapStatus types.SwapStatus
	errMsg     string
	paid       bool

	expireTicker *time.Ticker
	pollTicker   *time.Ticker
}

type event interface{ isEvent() }

type selectTokenEvent struct{ token types.Token }
type backEvent struct{}
type refreshEvent struct{}

// quoteResultEvent carries the outcome of a quote fetch issued for assetID.
// Results for a token that is no longer selected are discarded.
type quoteResultEvent struct {
	assetID string
	resp    *types.QuoteResponse
	err     error
}

// statusResultEvent carries the outcome of a status poll issued against
// depositAddress. Results for a superseded quote are discarded.
type statusResultEvent struct {
	depositAddress string
	status         *types.ExecutionStatus
	err            error
}

func (selectTokenEvent) isEvent()  {}
func (backEvent) isEvent()         {}
func (refreshEvent) isEvent()      {}
func (quoteResultEvent) isEvent()  {}
func (statusResultEvent) isEvent() {}

// NewSession creates a session for the given invoice
func NewSession(inv types.Invoice, svc QuoteService, quotes *storage.QuoteStore, payments *storage.StatusStore) *Session {
	return &Session{
		inv:            inv,
		svc:            svc,
		quotes:         quotes,
		payments:       payments,
		now:            time.Now,
		expireInterval: DefaultExpireInterval,
		pollInterval:   DefaultPollInterval,
		events:         make(chan event, 16),
		updates:        make(chan Snapshot, 16),
		done:           make(chan struct{}),
		state:          StateSelecting,
	}
}

// SetClock overrides the time source. Call before Start.
func (s *Session) SetClock(now func() time.Time) {
	s.now = now
}

// SetIntervals overrides the expiration and poll intervals. Call before Start.
func (s *Session) SetIntervals(expire, poll time.Duration) {
	s.expireInterval = expire
	s.pollInterval = poll
}

// Start begins the event loop and emits the initial snapshot. If a SUCCESS
// outcome is already recorded for the invoice, the session starts paid.
func (s *Session) Start() {
	if s.payments.IsSuccessful(s.inv.ID) {
		s.paid = true
		s.state = StatePaid
	}
	s.emit()
	go s.loop()
}

// Close tears down the session. In-flight network calls are abandoned; their
// results are discarded.
func (s *Session) Close() {
	s.once.Do(func() { close(s.done) })
}

// Updates returns the snapshot stream for rendering
func (s *Session) Updates() <-chan Snapshot {
	return s.updates
}

// SelectToken asks the session to quote the invoice in the given token
func (s *Session) SelectToken(token types.Token) {
	s.post(selectTokenEvent{token: token})
}

// Back clears the current selection and returns to the token picker
func (s *Session) Back() {
	s.post(backEvent{})
}

// Refresh re-runs the selection flow for the current token, typically after
// the quote expired
func (s *Session) Refresh() {
	s.post(refreshEvent{})
}

func (s *Session) post(ev event) {
	select {
	case s.events <- ev:
	case <-s.done:
	}
}

func (s *Session) loop() {
	defer s.stopTimers()

	for {
		select {
		case <-s.done:
			return
		case ev := <-s.events:
			s.apply(ev)
		case <-s.expireC():
			s.checkExpiration()
		case <-s.pollC():
			s.issuePoll()
		}
	}
}

func (s *Session) apply(ev event) {
	switch ev := ev.(type) {
	case selectTokenEvent:
		if s.paid {
			return
		}
		s.handleSelect(ev.token)

	case backEvent:
		if s.paid {
			return
		}
		s.stopTimers()
		s.token = nil
		s.quote = nil
		s.swapStatus = ""
		s.errMsg = ""
		s.state = StateSelecting
		s.emit()

	case refreshEvent:
		if s.paid || s.token == nil {
			return
		}
		s.handleSelect(*s.token)

	case quoteResultEvent:
		s.applyQuoteResult(ev)

	case statusResultEvent:
		s.applyStatusResult(ev)
	}
}

// handleSelect is the token-selection flow: cached quote first, network only
// on a miss or an expired entry.
func (s *Session) handleSelect(token types.Token) {
	s.stopTimers()
	tok := token
	s.token = &tok
	s.quote = nil
	s.swapStatus = ""
	s.errMsg = ""

	if cached, ok := s.quotes.ByKey(s.inv.ID, token.AssetID, s.inv.Recipient); ok && !storage.Expired(cached, s.now()) {
		s.activateQuote(cached)
		return
	}

	s.state = StateQuotePending
	s.emit()

	go func() {
		resp, err := s.svc.RequestQuote(context.Background(), s.inv, token.AssetID)
		s.post(quoteResultEvent{assetID: token.AssetID, resp: resp, err: err})
	}()
}

func (s *Session) applyQuoteResult(ev quoteResultEvent) {
	// A result for a token the payer has moved away from is stale.
	if s.paid || s.state != StateQuotePending || s.token == nil || s.token.AssetID != ev.assetID {
		return
	}

	if ev.err != nil {
		log.Printf("[Session] Error generating quote for %s: %v", ev.assetID, ev.err)
		s.token = nil
		s.quote = nil
		s.errMsg = UnsupportedTokenMessage
		s.state = StateSelecting
		s.emit()
		return
	}

	stored := types.StoredQuote{
		QuoteResponse: *ev.resp,
		InvoiceID:     s.inv.ID,
		CreatedAt:     s.now(),
	}
	s.quotes.Save(stored)

	if err := address.Validate(s.token.Blockchain, stored.Quote.DepositAddress); err != nil {
		log.Printf("[Session] Deposit address failed sanity check: %v", err)
	}

	s.activateQuote(stored)
}

// activateQuote makes the quote current, starts both recurring checks and
// issues an immediate status poll.
func (s *Session) activateQuote(stored types.StoredQuote) {
	q := stored
	s.quote = &q
	s.state = StateQuoteReady
	s.emit()

	s.expireTicker = time.NewTicker(s.expireInterval)
	s.pollTicker = time.NewTicker(s.pollInterval)
	s.issuePoll()
}

func (s *Session) checkExpiration() {
	if s.quote == nil || s.state != StateQuoteReady {
		return
	}
	if storage.Expired(*s.quote, s.now()) {
		s.stopTimers()
		s.state = StateQuoteExpired
		s.emit()
	}
}

func (s *Session) issuePoll() {
	if s.quote == nil {
		return
	}
	// Capture the deposit address now; the result is matched against the
	// active quote when it comes back.
	depositAddress := s.quote.Quote.DepositAddress

	go func() {
		status, err := s.svc.ExecutionStatus(context.Background(), depositAddress)
		s.post(statusResultEvent{depositAddress: depositAddress, status: status, err: err})
	}()
}

func (s *Session) applyStatusResult(ev statusResultEvent) {
	if ev.err != nil {
		// Transient; the next poll cycle retries.
		log.Printf("[Session] Error fetching quote status: %v", ev.err)
		return
	}

	// Guard against a poll issued for a quote that is no longer active.
	if s.quote == nil || s.quote.Quote.DepositAddress != ev.depositAddress {
		return
	}

	changed := s.swapStatus != ev.status.Status
	s.swapStatus = ev.status.Status

	// A late SUCCESS still settles the invoice, even after local expiration.
	if ev.status.Status == types.StatusSuccess {
		if !s.paid {
			s.payments.Save(s.inv.ID, types.PaymentSuccess)
			s.paid = true
		}
		s.stopTimers()
		s.state = StatePaid
		s.emit()
		return
	}

	if changed {
		s.emit()
	}
}

func (s *Session) stopTimers() {
	if s.expireTicker != nil {
		s.expireTicker.Stop()
		s.expireTicker = nil
	}
	if s.pollTicker != nil {
		s.pollTicker.Stop()
		s.pollTicker = nil
	}
}

func (s *Session) expireC() <-chan time.Time {
	if s.expireTicker == nil {
		return nil
	}
	return s.expireTicker.C
}

func (s *Session) pollC() <-chan time.Time {
	if s.pollTicker == nil {
		return nil
	}
	return s.pollTicker.C
}

// emit pushes the current snapshot to the updates channel. A slow consumer
// loses the oldest snapshot, never the newest.
func (s *Session) emit() {
	snap := Snapshot{
		State:        s.state,
		Token:        s.token,
		Quote:        s.quote,
		SwapStatus:   s.swapStatus,
		ErrorMessage: s.errMsg,
	}

	select {
	case s.updates <- snap:
	default:
		select {
		case <-s.updates:
		default:
		}
		select {
		case s.updates <- snap:
		default:
		}
	}
}

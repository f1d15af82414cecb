package invoice

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tearpay/pkg/storage"
	"tearpay/pkg/types"
)

type fakeService struct {
	mu          sync.Mutex
	quoteCalls  int
	statusCalls int

	quoteFn  func(originAssetID string) (*types.QuoteResponse, error)
	statusFn func(depositAddress string) (*types.ExecutionStatus, error)
}

func (f *fakeService) RequestQuote(_ context.Context, _ types.Invoice, originAssetID string) (*types.QuoteResponse, error) {
	f.mu.Lock()
	f.quoteCalls++
	fn := f.quoteFn
	f.mu.Unlock()
	return fn(originAssetID)
}

func (f *fakeService) ExecutionStatus(_ context.Context, depositAddress string) (*types.ExecutionStatus, error) {
	f.mu.Lock()
	f.statusCalls++
	fn := f.statusFn
	f.mu.Unlock()
	return fn(depositAddress)
}

func (f *fakeService) calls() (quotes, statuses int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.quoteCalls, f.statusCalls
}

func pendingStatus(depositAddress string) (*types.ExecutionStatus, error) {
	return &types.ExecutionStatus{Status: types.StatusPendingDeposit}, nil
}

func successStatus(depositAddress string) (*types.ExecutionStatus, error) {
	return &types.ExecutionStatus{Status: types.StatusSuccess}, nil
}

func quoteResponse(originAsset, recipient, depositAddress string, deadline time.Time) *types.QuoteResponse {
	return &types.QuoteResponse{
		Timestamp: time.Now().UTC(),
		Signature: "sig",
		QuoteRequest: types.QuoteRequest{
			SwapType:          "EXACT_OUTPUT",
			SlippageTolerance: 100,
			OriginAsset:       originAsset,
			DestinationAsset:  "nep141:usdc",
			Amount:            "9900000",
			Recipient:         recipient,
			Deadline:          deadline,
		},
		Quote: types.Quote{
			DepositAddress:    depositAddress,
			AmountIn:          "1230000",
			AmountInFormatted: "1.23",
			Deadline:          deadline,
		},
	}
}

func testToken() types.Token {
	return types.Token{
		AssetID:    "nep141:wrap.near",
		Decimals:   24,
		Blockchain: "near",
		Symbol:     "wNEAR",
	}
}

func testInvoice() types.Invoice {
	return types.Invoice{AmountUSD: 0.99, ID: "inv-1", Recipient: "shop.near"}
}

func newTestStores() (*storage.QuoteStore, *storage.StatusStore) {
	backend := storage.NewMemoryBackend()
	return storage.NewQuoteStore(backend), storage.NewStatusStore(backend)
}

// waitFor consumes snapshots until one matches, failing the test on timeout
func waitFor(t *testing.T, s *Session, pred func(Snapshot) bool) Snapshot {
	t.Helper()
	timeout := time.After(2 * time.Second)
	for {
		select {
		case snap := <-s.Updates():
			if pred(snap) {
				return snap
			}
		case <-timeout:
			t.Fatal("timed out waiting for snapshot")
			return Snapshot{}
		}
	}
}

func TestCachedQuoteSkipsNetwork(t *testing.T) {
	quotes, payments := newTestStores()
	deadline := time.Now().Add(10 * time.Minute)
	quotes.Save(types.StoredQuote{
		QuoteResponse: *quoteResponse("nep141:wrap.near", "shop.near", "deposit-cached", deadline),
		InvoiceID:     "inv-1",
		CreatedAt:     time.Now(),
	})

	svc := &fakeService{statusFn: pendingStatus}
	session := NewSession(testInvoice(), svc, quotes, payments)
	session.SetIntervals(time.Hour, time.Hour)
	session.Start()
	defer session.Close()

	session.SelectToken(testToken())

	snap := waitFor(t, session, func(s Snapshot) bool { return s.State == StateQuoteReady })
	require.NotNil(t, snap.Quote)
	assert.Equal(t, "deposit-cached", snap.Quote.Quote.DepositAddress)

	time.Sleep(50 * time.Millisecond)
	quoteCalls, _ := svc.calls()
	assert.Zero(t, quoteCalls, "a valid cached quote must not trigger a fetch")
}

func TestExpiredCachedQuoteIsReplaced(t *testing.T) {
	quotes, payments := newTestStores()
	quotes.Save(types.StoredQuote{
		QuoteResponse: *quoteResponse("nep141:wrap.near", "shop.near", "deposit-stale", time.Now().Add(-time.Minute)),
		InvoiceID:     "inv-1",
		CreatedAt:     time.Now().Add(-11 * time.Minute),
	})

	fresh := quoteResponse("nep141:wrap.near", "shop.near", "deposit-fresh", time.Now().Add(10*time.Minute))
	svc := &fakeService{
		quoteFn:  func(string) (*types.QuoteResponse, error) { return fresh, nil },
		statusFn: pendingStatus,
	}
	session := NewSession(testInvoice(), svc, quotes, payments)
	session.SetIntervals(time.Hour, time.Hour)
	session.Start()
	defer session.Close()

	session.SelectToken(testToken())

	snap := waitFor(t, session, func(s Snapshot) bool { return s.State == StateQuoteReady })
	assert.Equal(t, "deposit-fresh", snap.Quote.Quote.DepositAddress)

	quoteCalls, _ := svc.calls()
	assert.Equal(t, 1, quoteCalls)

	// The stale entry is superseded, not duplicated.
	require.Len(t, quotes.All(), 1)
	stored, ok := quotes.ByKey("inv-1", "nep141:wrap.near", "shop.near")
	require.True(t, ok)
	assert.Equal(t, "deposit-fresh", stored.Quote.DepositAddress)
}

func TestQuoteFailureReturnsToSelection(t *testing.T) {
	quotes, payments := newTestStores()
	svc := &fakeService{
		quoteFn:  func(string) (*types.QuoteResponse, error) { return nil, errors.New("boom") },
		statusFn: pendingStatus,
	}
	session := NewSession(testInvoice(), svc, quotes, payments)
	session.SetIntervals(time.Hour, time.Hour)
	session.Start()
	defer session.Close()

	session.SelectToken(testToken())

	snap := waitFor(t, session, func(s Snapshot) bool { return s.ErrorMessage != "" })
	assert.Equal(t, StateSelecting, snap.State)
	assert.Equal(t, UnsupportedTokenMessage, snap.ErrorMessage)
	assert.Nil(t, snap.Token)
	assert.Nil(t, snap.Quote)

	// Nothing is cached or recorded for a failed fetch.
	assert.Empty(t, quotes.All())
	assert.Empty(t, payments.All())
}

func TestSuccessSettlesAndStopsPolling(t *testing.T) {
	quotes, payments := newTestStores()
	fresh := quoteResponse("nep141:wrap.near", "shop.near", "deposit-1", time.Now().Add(10*time.Minute))
	svc := &fakeService{
		quoteFn:  func(string) (*types.QuoteResponse, error) { return fresh, nil },
		statusFn: successStatus,
	}
	session := NewSession(testInvoice(), svc, quotes, payments)
	session.SetIntervals(10*time.Millisecond, 10*time.Millisecond)
	session.Start()
	defer session.Close()

	session.SelectToken(testToken())

	waitFor(t, session, func(s Snapshot) bool { return s.State == StatePaid })
	assert.True(t, payments.IsSuccessful("inv-1"))
	require.Len(t, payments.All(), 1)

	// Polling stops once paid.
	_, statusCalls := svc.calls()
	time.Sleep(100 * time.Millisecond)
	_, after := svc.calls()
	assert.Equal(t, statusCalls, after)
	assert.Len(t, payments.All(), 1)
}

func TestSettledInvoiceOpensPaid(t *testing.T) {
	quotes, payments := newTestStores()
	payments.Save("inv-1", types.PaymentSuccess)

	svc := &fakeService{statusFn: pendingStatus}
	session := NewSession(testInvoice(), svc, quotes, payments)
	session.Start()
	defer session.Close()

	snap := <-session.Updates()
	assert.Equal(t, StatePaid, snap.State)
	assert.True(t, snap.Paid())

	// Token selection has no effect on a settled invoice.
	session.SelectToken(testToken())
	time.Sleep(50 * time.Millisecond)
	quoteCalls, _ := svc.calls()
	assert.Zero(t, quoteCalls)
	assert.Len(t, payments.All(), 1)
}

func TestQuoteExpiresLocally(t *testing.T) {
	quotes, payments := newTestStores()
	fresh := quoteResponse("nep141:wrap.near", "shop.near", "deposit-1", time.Now().Add(150*time.Millisecond))
	svc := &fakeService{
		quoteFn:  func(string) (*types.QuoteResponse, error) { return fresh, nil },
		statusFn: pendingStatus,
	}
	session := NewSession(testInvoice(), svc, quotes, payments)
	session.SetIntervals(20*time.Millisecond, time.Hour)
	session.Start()
	defer session.Close()

	session.SelectToken(testToken())

	waitFor(t, session, func(s Snapshot) bool { return s.State == StateQuoteReady })
	waitFor(t, session, func(s Snapshot) bool { return s.State == StateQuoteExpired })
}

func TestBackClearsSelection(t *testing.T) {
	quotes, payments := newTestStores()
	fresh := quoteResponse("nep141:wrap.near", "shop.near", "deposit-1", time.Now().Add(10*time.Minute))
	svc := &fakeService{
		quoteFn:  func(string) (*types.QuoteResponse, error) { return fresh, nil },
		statusFn: pendingStatus,
	}
	session := NewSession(testInvoice(), svc, quotes, payments)
	session.SetIntervals(time.Hour, time.Hour)
	session.Start()
	defer session.Close()

	session.SelectToken(testToken())
	waitFor(t, session, func(s Snapshot) bool { return s.State == StateQuoteReady })

	session.Back()
	snap := waitFor(t, session, func(s Snapshot) bool { return s.State == StateSelecting && s.Token == nil })
	assert.Nil(t, snap.Quote)
	assert.Empty(t, snap.ErrorMessage)
}

package storage

import (
	"encoding/json"
	"log"
	"os"
	"time"

	"tearpay/pkg/types"
)

const quotesKey = "tearpay_quotes"

// QuoteStore persists quotes as a single collection blob, deduplicated by the
// canonical (invoiceId, originAsset, recipient) key.
//
// Operations never fail the caller: backend errors and corrupt data degrade
// to an empty collection with a logged diagnostic.
type QuoteStore struct {
	backend Backend
	now     func() time.Time
}

// NewQuoteStore creates a quote store over the given backend
func NewQuoteStore(backend Backend) *QuoteStore {
	return &QuoteStore{backend: backend, now: time.Now}
}

// SetClock overrides the time source, for tests
func (s *QuoteStore) SetClock(now func() time.Time) {
	s.now = now
}

// Save upserts a quote: any existing entry with the same canonical key is
// removed, then the new entry is appended
func (s *QuoteStore) Save(quote types.StoredQuote) {
	quotes := s.All()

	key := quote.Key()
	filtered := quotes[:0]
	for _, q := range quotes {
		if q.Key() != key {
			filtered = append(filtered, q)
		}
	}
	filtered = append(filtered, quote)

	s.write(filtered)
}

// All returns every stored quote, oldest first
func (s *QuoteStore) All() []types.StoredQuote {
	data, err := s.backend.Read(quotesKey)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Printf("[Storage] Error reading stored quotes: %v", err)
		}
		return nil
	}

	var quotes []types.StoredQuote
	if err := json.Unmarshal(data, &quotes); err != nil {
		log.Printf("[Storage] Error parsing stored quotes: %v", err)
		return nil
	}

	return quotes
}

// ByKey returns the stored quote for the canonical key, if any
func (s *QuoteStore) ByKey(invoiceID, originAsset, recipient string) (types.StoredQuote, bool) {
	key := types.QuoteKey(invoiceID, originAsset, recipient)
	for _, q := range s.All() {
		if q.Key() == key {
			return q, true
		}
	}
	return types.StoredQuote{}, false
}

// Delete removes the stored quote for the canonical key, if any
func (s *QuoteStore) Delete(invoiceID, originAsset, recipient string) {
	key := types.QuoteKey(invoiceID, originAsset, recipient)

	quotes := s.All()
	filtered := quotes[:0]
	for _, q := range quotes {
		if q.Key() != key {
			filtered = append(filtered, q)
		}
	}

	s.write(filtered)
}

// Clear removes all stored quotes
func (s *QuoteStore) Clear() {
	if err := s.backend.Remove(quotesKey); err != nil {
		log.Printf("[Storage] Error clearing stored quotes: %v", err)
	}
}

// IsExpired reports whether the quote's deadline has passed
func (s *QuoteStore) IsExpired(quote types.StoredQuote) bool {
	return Expired(quote, s.now())
}

// Expired reports whether the quote is no longer valid for deposits at the
// given instant: true iff at >= deadline
func Expired(quote types.StoredQuote, at time.Time) bool {
	return !at.Before(quote.Quote.Deadline)
}

func (s *QuoteStore) write(quotes []types.StoredQuote) {
	data, err := json.Marshal(quotes)
	if err != nil {
		log.Printf("[Storage] Error marshaling quotes: %v", err)
		return
	}
	if err := s.backend.Write(quotesKey, data); err != nil {
		log.Printf("[Storage] Error writing quotes: %v", err)
	}
}

package storage

import (
	"encoding/json"
	"log"
	"os"
	"time"

	"tearpay/pkg/types"
)

const paymentStatusKey = "tearpay_payment_status"

// StatusStore persists payment outcomes as a single collection blob,
// deduplicated by invoice id. Same degradation rules as QuoteStore.
type StatusStore struct {
	backend Backend
	now     func() time.Time
}

// NewStatusStore creates a payment status store over the given backend
func NewStatusStore(backend Backend) *StatusStore {
	return &StatusStore{backend: backend, now: time.Now}
}

// SetClock overrides the time source, for tests
func (s *StatusStore) SetClock(now func() time.Time) {
	s.now = now
}

// Save upserts the outcome for an invoice (remove-then-append)
func (s *StatusStore) Save(invoiceID string, outcome types.PaymentOutcome) {
	statuses := s.All()

	filtered := statuses[:0]
	for _, ps := range statuses {
		if ps.InvoiceID != invoiceID {
			filtered = append(filtered, ps)
		}
	}
	filtered = append(filtered, types.PaymentStatus{
		InvoiceID: invoiceID,
		Status:    outcome,
		Timestamp: s.now(),
	})

	data, err := json.Marshal(filtered)
	if err != nil {
		log.Printf("[Storage] Error marshaling payment statuses: %v", err)
		return
	}
	if err := s.backend.Write(paymentStatusKey, data); err != nil {
		log.Printf("[Storage] Error writing payment statuses: %v", err)
	}
}

// All returns every recorded payment status
func (s *StatusStore) All() []types.PaymentStatus {
	data, err := s.backend.Read(paymentStatusKey)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Printf("[Storage] Error reading payment statuses: %v", err)
		}
		return nil
	}

	var statuses []types.PaymentStatus
	if err := json.Unmarshal(data, &statuses); err != nil {
		log.Printf("[Storage] Error parsing payment statuses: %v", err)
		return nil
	}

	return statuses
}

// Get returns the recorded status for an invoice, if any
func (s *StatusStore) Get(invoiceID string) (types.PaymentStatus, bool) {
	for _, ps := range s.All() {
		if ps.InvoiceID == invoiceID {
			return ps, true
		}
	}
	return types.PaymentStatus{}, false
}

// IsSuccessful reports whether the invoice has a recorded SUCCESS outcome
func (s *StatusStore) IsSuccessful(invoiceID string) bool {
	ps, ok := s.Get(invoiceID)
	return ok && ps.Status == types.PaymentSuccess
}

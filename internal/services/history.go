package services

import (
	"sync"

	"github.com/sonqb/invoice-forecast/internal/models"
)

// HistoryBuffer is the in-memory bounded invoice history. Appends evict the
// oldest record once capacity is reached. The buffer is mutable shared state
// across concurrent requests, so every operation holds the mutex; request
// volumes are demo-scale and a single lock is enough.
type HistoryBuffer struct {
	mu       sync.Mutex
	capacity int
	invoices []*models.Invoice
}

// NewHistoryBuffer creates a buffer with the given capacity.
func NewHistoryBuffer(capacity int) *HistoryBuffer {
	if capacity < 1 {
		capacity = 1
	}
	return &HistoryBuffer{capacity: capacity}
}

// Append adds an invoice, evicting the oldest when full.
func (b *HistoryBuffer) Append(inv *models.Invoice) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.invoices = append(b.invoices, inv)
	if len(b.invoices) > b.capacity {
		b.invoices = b.invoices[len(b.invoices)-b.capacity:]
	}
}

// Snapshot returns a copy of the history, oldest first.
func (b *HistoryBuffer) Snapshot() []*models.Invoice {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]*models.Invoice, len(b.invoices))
	copy(out, b.invoices)
	return out
}

// Last returns up to n most recent invoices, oldest first.
func (b *HistoryBuffer) Last(n int) []*models.Invoice {
	b.mu.Lock()
	defer b.mu.Unlock()
	start := len(b.invoices) - n
	if start < 0 {
		start = 0
	}
	out := make([]*models.Invoice, len(b.invoices)-start)
	copy(out, b.invoices[start:])
	return out
}

// Latest returns the most recent invoice, or nil when empty.
func (b *HistoryBuffer) Latest() *models.Invoice {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.invoices) == 0 {
		return nil
	}
	return b.invoices[len(b.invoices)-1]
}

// Len reports the current number of records.
func (b *HistoryBuffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.invoices)
}

// Clear drops all records.
func (b *HistoryBuffer) Clear() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := len(b.invoices)
	b.invoices = nil
	return n
}

package services

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sonqb/invoice-forecast/internal/models"
)

func makeInvoice(id string) *models.Invoice {
	return &models.Invoice{InvoiceID: id}
}

func TestHistoryBufferAppendAndSnapshot(t *testing.T) {
	b := NewHistoryBuffer(5)
	b.Append(makeInvoice("a"))
	b.Append(makeInvoice("b"))

	snap := b.Snapshot()
	require.Len(t, snap, 2)
	assert.Equal(t, "a", snap[0].InvoiceID)
	assert.Equal(t, "b", snap[1].InvoiceID)
	assert.Equal(t, 2, b.Len())
}

func TestHistoryBufferEvictsOldest(t *testing.T) {
	b := NewHistoryBuffer(3)
	for i := 0; i < 5; i++ {
		b.Append(makeInvoice(fmt.Sprintf("inv-%d", i)))
	}

	snap := b.Snapshot()
	require.Len(t, snap, 3)
	assert.Equal(t, "inv-2", snap[0].InvoiceID)
	assert.Equal(t, "inv-4", snap[2].InvoiceID)
}

func TestHistoryBufferSnapshotIsACopy(t *testing.T) {
	b := NewHistoryBuffer(3)
	b.Append(makeInvoice("a"))

	snap := b.Snapshot()
	snap[0] = makeInvoice("mutated")

	assert.Equal(t, "a", b.Snapshot()[0].InvoiceID)
}

func TestHistoryBufferLast(t *testing.T) {
	b := NewHistoryBuffer(10)
	for i := 0; i < 5; i++ {
		b.Append(makeInvoice(fmt.Sprintf("inv-%d", i)))
	}

	last := b.Last(3)
	require.Len(t, last, 3)
	assert.Equal(t, "inv-2", last[0].InvoiceID)

	assert.Len(t, b.Last(100), 5)
}

func TestHistoryBufferLatest(t *testing.T) {
	b := NewHistoryBuffer(3)
	assert.Nil(t, b.Latest())

	b.Append(makeInvoice("a"))
	b.Append(makeInvoice("b"))
	assert.Equal(t, "b", b.Latest().InvoiceID)
}

func TestHistoryBufferClear(t *testing.T) {
	b := NewHistoryBuffer(3)
	b.Append(makeInvoice("a"))
	b.Append(makeInvoice("b"))

	assert.Equal(t, 2, b.Clear())
	assert.Equal(t, 0, b.Len())
	assert.Empty(t, b.Snapshot())
}

func TestHistoryBufferMinimumCapacity(t *testing.T) {
	b := NewHistoryBuffer(0)
	b.Append(makeInvoice("a"))
	b.Append(makeInvoice("b"))
	assert.Equal(t, 1, b.Len())
}

package spiflashcb

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestError_Error(t *testing.T) {
	e := NewQueueError("Add", 2, KindFlashFull, "sector reclaim would overtake id_last_complete")
	assert.Contains(t, e.Error(), "Add")
	assert.Contains(t, e.Error(), "cb=2")
	assert.Contains(t, e.Error(), "sector reclaim")

	noQueue := NewError("NewQueue", KindMemory, "management table exhausted")
	assert.NotContains(t, noQueue.Error(), "cb=")
}

func TestError_Is(t *testing.T) {
	e := NewQueueError("GetLast", 0, KindQueueEmpty, "")
	assert.True(t, errors.Is(e, ErrQueueEmpty))
	assert.False(t, errors.Is(e, ErrWorkerBusy))

	other := NewQueueError("Add", 1, KindQueueEmpty, "different op, same kind")
	assert.True(t, errors.Is(e, other))
}

func TestError_Unwrap(t *testing.T) {
	inner := errors.New("underlying")
	wrapped := WrapError("MkCB", &Error{Op: "scan", CbID: 1, Kind: KindNoFlash, Inner: inner})
	require.ErrorIs(t, wrapped, ErrNoFlash)
	assert.Equal(t, inner, errors.Unwrap(wrapped))
}

func TestWrapError_Nil(t *testing.T) {
	assert.Nil(t, WrapError("Add", nil))
}

func TestIsKind(t *testing.T) {
	err := NewQueueError("AddAppend", 0, KindWorkerBusy, "worker already mid-stage")
	assert.True(t, IsKind(err, KindWorkerBusy))
	assert.False(t, IsKind(err, KindOK))
	assert.False(t, IsKind(errors.New("plain"), KindWorkerBusy))
}

package spiflashcb_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	spiflashcb "github.com/andkae/SPI-Flash-Circular-Buffer"
	"github.com/andkae/SPI-Flash-Circular-Buffer/internal/flashparams"
	"github.com/andkae/SPI-Flash-Circular-Buffer/simflash"
)

func newDriver(t *testing.T, p flashparams.Params) (*spiflashcb.Driver, *simflash.Flash) {
	t.Helper()
	d := spiflashcb.New(spiflashcb.DefaultNumQueueSlots)
	buf := make([]byte, spiflashcb.DefaultSPIBufferSize)
	require.NoError(t, d.Init(p, buf))
	return d, simflash.New(p)
}

func TestInit_FreshHandle(t *testing.T) {
	d, _ := newDriver(t, flashparams.W25Q16JV())
	assert.False(t, d.Busy())
	assert.False(t, d.IsErr())
}

func TestNewQueue_MatchesGeometryScenario(t *testing.T) {
	d, _ := newDriver(t, flashparams.W25Q16JV())

	id0, err := d.NewQueue(0x47114711, 244, 32)
	require.NoError(t, err)
	assert.Equal(t, 0, id0)

	id1, err := d.NewQueue(0x08150815, 12280, 16)
	require.NoError(t, err)
	assert.Equal(t, 1, id1)
}

// TestAppendAndRescanLoop mirrors spec.md §8 scenario 3 in shape (append N
// records, rescanning after each one) using a pl_size small enough that the
// footer never overlaps payload, and checks idmax tracks the append count.
func TestAppendAndRescanLoop(t *testing.T) {
	d, f := newDriver(t, flashparams.W25Q16JV())
	cbID, err := d.NewQueue(0x47114711, 6, 32)
	require.NoError(t, err)

	require.NoError(t, d.MkCB())
	simflash.Drive(d, f)
	require.False(t, d.IsErr())

	payload := []byte{0, 1, 2, 3, 4, 5}
	const n = 30
	for i := 0; i < n; i++ {
		require.NoError(t, d.Add(cbID, payload))
		simflash.Drive(d, f)
		require.False(t, d.IsErr())

		require.NoError(t, d.MkCB())
		simflash.Drive(d, f)
		require.False(t, d.IsErr())
	}

	assert.EqualValues(t, n, d.IDMax(cbID))
}

func TestRawRead_MatchesFlashMirror(t *testing.T) {
	d, f := newDriver(t, flashparams.W25Q16JV())
	cbID, err := d.NewQueue(0x47114711, 64, 32)
	require.NoError(t, err)

	payload := make([]byte, 64)
	for i := range payload {
		payload[i] = byte(0xA0 + i)
	}

	require.NoError(t, d.MkCB())
	simflash.Drive(d, f)
	require.NoError(t, d.Add(cbID, payload))
	simflash.Drive(d, f)
	require.False(t, d.IsErr())

	out := make([]byte, 256)
	require.NoError(t, d.FlashRead(0, out))
	simflash.Drive(d, f)
	require.False(t, d.IsErr())

	mirror := make([]byte, 256)
	f.ReadAt(mirror, 0)
	assert.Equal(t, mirror, out)
}

// TestAddAppend_MatchesOneShotAdd covers spec.md §8 scenarios 5/6: writing
// the same payload one byte at a time via AddAppend+AddDone must produce the
// same on-flash record (and GetLast result) as a single Add call.
func TestAddAppend_MatchesOneShotAdd(t *testing.T) {
	p := flashparams.W25Q16JV()
	payload := make([]byte, 64)
	for i := range payload {
		payload[i] = byte(i * 3)
	}

	// One-shot.
	d1, f1 := newDriver(t, p)
	cb1, err := d1.NewQueue(0x47114711, 64, 32)
	require.NoError(t, err)
	require.NoError(t, d1.MkCB())
	simflash.Drive(d1, f1)
	require.NoError(t, d1.Add(cb1, payload))
	simflash.Drive(d1, f1)
	require.False(t, d1.IsErr())
	require.NoError(t, d1.MkCB())
	simflash.Drive(d1, f1)
	out1 := make([]byte, 64)
	id1, err := d1.GetLast(cb1, out1)
	require.NoError(t, err)
	simflash.Drive(d1, f1)

	// Byte at a time.
	d2, f2 := newDriver(t, p)
	cb2, err := d2.NewQueue(0x47114711, 64, 32)
	require.NoError(t, err)
	require.NoError(t, d2.MkCB())
	simflash.Drive(d2, f2)
	for i := range payload {
		require.NoError(t, d2.AddAppend(cb2, payload[i:i+1]))
		simflash.Drive(d2, f2)
		require.False(t, d2.IsErr())
	}
	require.NoError(t, d2.AddDone(cb2))
	simflash.Drive(d2, f2)
	require.False(t, d2.IsErr())
	require.NoError(t, d2.MkCB())
	simflash.Drive(d2, f2)
	out2 := make([]byte, 64)
	id2, err := d2.GetLast(cb2, out2)
	require.NoError(t, err)
	simflash.Drive(d2, f2)

	assert.Equal(t, out1, out2)
	assert.Equal(t, id1, id2)
	assert.Equal(t, payload, out2)
}

// TestReclaim_EraseOldestSectorOnFull forces a queue to fill completely so
// mkcb's reclaim path (spec.md §4.4.1 stage 02/03/04) erases the sector
// holding the oldest record, and checks the queue keeps accepting appends
// afterward with id_max still counting every append.
func TestReclaim_EraseOldestSectorOnFull(t *testing.T) {
	d, f := newDriver(t, flashparams.W25Q16JV())
	// pl_size=8 with pages_per_elem=1 and num_elems=2 forces the minimum
	// 2-sector (32-entry) queue, small enough to fill within a test.
	cbID, err := d.NewQueue(0x47114711, 8, 2)
	require.NoError(t, err)

	require.NoError(t, d.MkCB())
	simflash.Drive(d, f)
	require.False(t, d.IsErr())

	payload := []byte{1, 2, 3, 4, 5, 6, 7, 8}
	const fillCount = 40 // exceeds the 32-entry capacity to force reclamation
	for i := 0; i < fillCount; i++ {
		require.NoError(t, d.Add(cbID, payload))
		simflash.Drive(d, f)
		require.False(t, d.IsErr())

		require.NoError(t, d.MkCB())
		simflash.Drive(d, f)
		require.False(t, d.IsErr())
	}

	assert.EqualValues(t, fillCount, d.IDMax(cbID))
}

package geometry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andkae/SPI-Flash-Circular-Buffer/internal/flashparams"
)

func newTestTable() *Table {
	tbl := NewTable(5)
	tbl.Configure(flashparams.W25Q16JV())
	return tbl
}

func TestNewQueue_Scenario(t *testing.T) {
	tbl := newTestTable()

	id0, err := tbl.NewQueue(0x47114711, 244, 32)
	require.NoError(t, err)
	assert.Equal(t, 0, id0)
	q0 := tbl.Slots[0]
	assert.EqualValues(t, 1, q0.PagesPerElem)
	assert.EqualValues(t, 2, q0.StopSector-q0.StartSector+1)
	assert.EqualValues(t, 32, q0.MaxEntries)
	assert.EqualValues(t, 0, q0.StartSector)
	assert.EqualValues(t, 1, q0.StopSector)

	id1, err := tbl.NewQueue(0x08150815, 12280, 16)
	require.NoError(t, err)
	assert.Equal(t, 1, id1)
	q1 := tbl.Slots[1]
	assert.EqualValues(t, 48, q1.PagesPerElem)
	assert.EqualValues(t, 48, q1.StopSector-q1.StartSector+1)
	assert.EqualValues(t, 2, q1.StartSector)
	assert.EqualValues(t, 49, q1.StopSector)
}

func TestNewQueue_NoFlash(t *testing.T) {
	tbl := NewTable(5)
	_, err := tbl.NewQueue(1, 10, 10)
	assert.ErrorIs(t, err, ErrNoFlash)
}

func TestNewQueue_NoSlot(t *testing.T) {
	tbl := newTestTable()
	tbl.Slots = make([]Queue, 1)
	_, err := tbl.NewQueue(1, 10, 10)
	require.NoError(t, err)
	_, err = tbl.NewQueue(2, 10, 10)
	assert.ErrorIs(t, err, ErrNoSlot)
}

func TestNewQueue_FlashFull(t *testing.T) {
	tbl := newTestTable()
	_, err := tbl.NewQueue(1, 1<<20, 100)
	assert.ErrorIs(t, err, ErrFlashFull)
}

func TestHeaderFooterAddr(t *testing.T) {
	tbl := newTestTable()
	_, err := tbl.NewQueue(0x47114711, 244, 32)
	require.NoError(t, err)
	q := &tbl.Slots[0]

	h0 := q.HeaderAddr(tbl.Params, 0)
	assert.EqualValues(t, 0, h0)
	f0 := q.FooterAddr(tbl.Params, 0)
	assert.EqualValues(t, q.HeaderAddr(tbl.Params, 1)-8, f0)
}

func TestQueue_ResetScan(t *testing.T) {
	q := Queue{MgmtValid: true, Entries: 5, IDMin: 3, IDMax: 9, PLFlashOfs: 20}
	q.ResetScan()
	assert.False(t, q.MgmtValid)
	assert.EqualValues(t, 0, q.Entries)
	assert.Equal(t, ^uint32(0), q.IDMin)
	assert.EqualValues(t, 0, q.IDMax)
	assert.Equal(t, 0, q.PLFlashOfs)
}

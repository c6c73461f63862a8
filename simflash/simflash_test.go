package simflash

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	spiflashcb "github.com/andkae/SPI-Flash-Circular-Buffer"
	"github.com/andkae/SPI-Flash-Circular-Buffer/internal/flashparams"
)

func TestFlash_PageProgramIsANDOnly(t *testing.T) {
	p := flashparams.W25Q16JV()
	f := New(p)

	buf := make([]byte, 300)
	buf[0] = p.OpPageProgram
	buf[1], buf[2], buf[3] = 0, 0, 0
	copy(buf[4:], []byte{0x0F, 0xFF})
	f.Exchange(buf, 6)

	out := make([]byte, 2)
	f.ReadAt(out, 0)
	assert.Equal(t, []byte{0x0F, 0xFF}, out)

	// A second program to the same bytes can only clear further bits.
	buf[4], buf[5] = 0xFF, 0x0F
	f.Exchange(buf, 6)
	f.ReadAt(out, 0)
	assert.Equal(t, []byte{0x0F, 0x0F}, out)
}

func TestFlash_SectorEraseResetsTo0xFF(t *testing.T) {
	p := flashparams.W25Q16JV()
	f := New(p)

	buf := make([]byte, 10)
	buf[0] = p.OpPageProgram
	f.Exchange(buf, 10)

	eraseBuf := make([]byte, 4)
	eraseBuf[0] = p.OpEraseSector
	f.Exchange(eraseBuf, 4)

	out := make([]byte, 10)
	f.ReadAt(out, 0)
	for _, b := range out {
		assert.Equal(t, byte(0xFF), b)
	}
}

func TestDrive_RoundTripAppendAndGetLast(t *testing.T) {
	p := flashparams.W25Q16JV()
	f := New(p)
	d := spiflashcb.New(5)

	buf := make([]byte, spiflashcb.DefaultSPIBufferSize)
	require.NoError(t, d.Init(p, buf))

	// pl_size is kept well inside one page's non-footer-overlapping capacity
	// (page_size - 2*header_size) so the round trip is exact; see DESIGN.md
	// for the pl_size=244 edge case where the footer overlaps payload.
	cbID, err := d.NewQueue(0x47114711, 64, 32)
	require.NoError(t, err)

	require.NoError(t, d.MkCB())
	Drive(d, f)
	require.False(t, d.IsErr())

	payload := make([]byte, 64)
	for i := range payload {
		payload[i] = byte(i)
	}
	require.NoError(t, d.Add(cbID, payload))
	Drive(d, f)
	require.False(t, d.IsErr())

	require.NoError(t, d.MkCB())
	Drive(d, f)
	require.False(t, d.IsErr())

	out := make([]byte, 64)
	id, err := d.GetLast(cbID, out)
	require.NoError(t, err)
	Drive(d, f)
	require.False(t, d.IsErr())

	assert.Equal(t, payload, out)
	assert.Equal(t, d.IDMax(cbID), id)
}

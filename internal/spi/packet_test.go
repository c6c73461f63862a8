package spi

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/andkae/SPI-Flash-Circular-Buffer/internal/flashparams"
)

func TestPutAddress_MSBFirst(t *testing.T) {
	p := flashparams.W25Q16JV()
	buf := make([]byte, 3)
	PutAddress(p, buf, 0x00120034)
	assert.Equal(t, []byte{0x12, 0x00, 0x34}, buf) // 24-bit window of the address
}

func TestReadData_HeaderLen(t *testing.T) {
	p := flashparams.W25Q16JV()
	buf := make([]byte, 8)
	n := ReadData(p, buf, 0x001000)
	assert.Equal(t, 4, n)
	assert.Equal(t, p.OpRead, buf[0])
}

func TestPageProgram_AppendsData(t *testing.T) {
	p := flashparams.W25Q16JV()
	buf := make([]byte, 300)
	data := []byte{1, 2, 3, 4}
	n := PageProgram(p, buf, 0, data)
	assert.Equal(t, 1+p.AddressBytes+len(data), n)
	assert.Equal(t, data, buf[1+p.AddressBytes:n])
}

func TestWIPSet(t *testing.T) {
	p := flashparams.W25Q16JV()
	assert.True(t, WIPSet(p, 0x01))
	assert.False(t, WIPSet(p, 0x00))
}

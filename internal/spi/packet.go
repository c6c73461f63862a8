// Package spi assembles the byte packets the worker exchanges with a NOR
// flash device: opcode + MSB-first address, page-program payloads, and the
// fixed 2-byte read-status poll (spec.md §6.2).
package spi

import "github.com/andkae/SPI-Flash-Circular-Buffer/internal/flashparams"

// PutAddress writes addr into dst[0:p.AddressBytes], most significant byte
// first. dst must be at least p.AddressBytes long.
func PutAddress(p flashparams.Params, dst []byte, addr uint32) {
	for i := 0; i < p.AddressBytes; i++ {
		shift := uint((p.AddressBytes - 1 - i) * 8)
		dst[i] = byte(addr >> shift)
	}
}

// ReadStatus builds the 2-byte {opcode, 0} WIP-poll packet into buf and
// returns the packet length.
func ReadStatus(p flashparams.Params, buf []byte) int {
	buf[0] = p.OpRDSR
	buf[1] = 0
	return 2
}

// WriteEnable builds the 1-byte write-enable packet.
func WriteEnable(p flashparams.Params, buf []byte) int {
	buf[0] = p.OpWREN
	return 1
}

// ReadData builds {opcode, address} and returns the header length; the
// caller appends n response bytes after this header to form the full
// transaction, or simply exchanges header+n bytes with the transport.
func ReadData(p flashparams.Params, buf []byte, addr uint32) int {
	buf[0] = p.OpRead
	PutAddress(p, buf[1:], addr)
	return 1 + p.AddressBytes
}

// PageProgram builds {opcode, address, data...} into buf and returns the
// total packet length. len(data) must not exceed p.PageSize.
func PageProgram(p flashparams.Params, buf []byte, addr uint32, data []byte) int {
	buf[0] = p.OpPageProgram
	PutAddress(p, buf[1:], addr)
	n := 1 + p.AddressBytes
	n += copy(buf[n:], data)
	return n
}

// SectorErase builds {opcode, address} for a sector-erase, address being
// rounded down to the sector boundary by the caller.
func SectorErase(p flashparams.Params, buf []byte, addr uint32) int {
	buf[0] = p.OpEraseSector
	PutAddress(p, buf[1:], addr)
	return 1 + p.AddressBytes
}

// WIPSet reports whether the status register byte (as returned after a
// ReadStatus exchange) indicates write-in-progress.
func WIPSet(p flashparams.Params, statusByte byte) bool {
	return statusByte&p.WIPMask != 0
}

// HeaderLen returns the length of a bare {opcode,address} header, used by
// callers that need to know how many response bytes follow in a read
// transaction (uint16SpiLen − address_bytes − 1 in spec.md §4.4.3).
func HeaderLen(p flashparams.Params) int {
	return 1 + p.AddressBytes
}

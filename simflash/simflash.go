// Package simflash is a reference in-memory model of a NOR SPI flash part,
// used by this repository's own tests and the demo CLI in place of a real
// SPI transport. It enforces NOR program semantics (a page program can only
// clear bits, never set them) and sector-erase-to-0xFF, and models the
// opcode/address framing described by internal/flashparams and internal/spi.
package simflash

import (
	"sync"

	"github.com/andkae/SPI-Flash-Circular-Buffer/internal/flashparams"
	"github.com/andkae/SPI-Flash-Circular-Buffer/internal/spi"
)

// Flash is a whole-device byte array guarded by a single mutex; sharding
// (as the backend this is adapted from does for a block device) isn't
// useful here since every transaction touches at most one page or sector.
type Flash struct {
	mu     sync.Mutex
	params flashparams.Params
	mem    []byte

	wipCountdown int // exchanges remaining before WIP clears, simulating program/erase latency
	status       byte
}

// New allocates a Flash pre-filled with the NOR erase value (0xFF).
func New(p flashparams.Params) *Flash {
	mem := make([]byte, p.TotalSize)
	for i := range mem {
		mem[i] = 0xFF
	}
	return &Flash{params: p, mem: mem}
}

// ReadAt copies len(dst) bytes starting at addr into dst, for test
// assertions. It does not go through the opcode protocol.
func (f *Flash) ReadAt(dst []byte, addr uint32) {
	f.mu.Lock()
	defer f.mu.Unlock()
	copy(dst, f.mem[addr:])
}

// Exchange performs one full-duplex SPI transaction in place: buf[:n] is
// clocked out as the request, and the response phase of a read or status
// poll is written back into the same bytes of buf (the opcode/address bytes
// are left as they were), matching how Driver.Buffer() is used.
func (f *Flash) Exchange(buf []byte, n int) {
	f.mu.Lock()
	defer f.mu.Unlock()

	p := f.params
	opcode := buf[0]
	switch opcode {
	case p.OpRDSR:
		buf[1] = f.status
		if f.wipCountdown > 0 {
			f.wipCountdown--
			if f.wipCountdown == 0 {
				f.status &^= p.WIPMask
			}
		}
	case p.OpWREN:
		f.status |= p.WRENMask
	case p.OpWRDSBL:
		f.status &^= p.WRENMask
	case p.OpRead:
		addr := readAddr(p, buf)
		hdrLen := spi.HeaderLen(p)
		copy(buf[hdrLen:n], f.mem[addr:addr+uint32(n-hdrLen)])
	case p.OpPageProgram:
		addr := readAddr(p, buf)
		hdrLen := spi.HeaderLen(p)
		// NOR program can only clear bits (AND-only).
		for i, b := range buf[hdrLen:n] {
			f.mem[int(addr)+i] &= b
		}
		f.armWIP(2)
	case p.OpEraseSector:
		addr := readAddr(p, buf)
		sectorStart := addr &^ (p.SectorSize - 1)
		for i := uint32(0); i < p.SectorSize; i++ {
			f.mem[sectorStart+i] = 0xFF
		}
		f.armWIP(4)
	case p.OpEraseBulk:
		for i := range f.mem {
			f.mem[i] = 0xFF
		}
		f.armWIP(8)
	}
}

// armWIP sets the WIP status bit and schedules it to clear after the given
// number of subsequent status-register polls, simulating program/erase
// latency without a real clock.
func (f *Flash) armWIP(polls int) {
	f.status |= f.params.WIPMask
	f.wipCountdown = polls
}

func readAddr(p flashparams.Params, buf []byte) uint32 {
	var addr uint32
	for i := 0; i < p.AddressBytes; i++ {
		addr = addr<<8 | uint32(buf[1+i])
	}
	return addr
}

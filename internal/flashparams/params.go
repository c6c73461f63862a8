// Package flashparams holds the build-time description of a NOR SPI flash
// part: its opcode set, topology, and status-register masks. None of this
// package talks to a flash device; it is pure configuration, injected into
// the driver handle at creation so one binary can address different parts.
package flashparams

import "fmt"

// Params describes one SPI NOR flash part.
type Params struct {
	Name string
	IDHex uint32

	// Opcode set (§6.1).
	OpRDID        byte
	OpWREN        byte // write-enable
	OpWRDSBL      byte // write-disable
	OpEraseBulk   byte // chip erase
	OpEraseSector byte
	OpRDSR        byte // read status register
	OpRead        byte // read-data
	OpPageProgram byte

	// Topology.
	AddressBytes   int
	SectorSize     uint32
	PageSize       uint32
	TotalSize      uint32
	RDIDDummyBytes int

	// Status register masks.
	WIPMask  byte
	WRENMask byte
}

// PagesPerSector returns the number of program-pages in one erase sector.
func (p Params) PagesPerSector() uint32 {
	return p.SectorSize / p.PageSize
}

// NumSectors returns the total number of erase sectors on the device.
func (p Params) NumSectors() uint32 {
	return p.TotalSize / p.SectorSize
}

// Validate reports whether the parameter set is complete enough to drive a
// queue geometry computation. A zero-value Params (flash parameters unset)
// fails this check, matching spec.md §4.3's "no-flash" precondition.
func (p Params) Validate() error {
	if p.PageSize == 0 || p.SectorSize == 0 || p.TotalSize == 0 {
		return fmt.Errorf("flashparams: %s: page/sector/total size unset", p.Name)
	}
	if p.SectorSize%p.PageSize != 0 {
		return fmt.Errorf("flashparams: %s: sector size %d not a multiple of page size %d", p.Name, p.SectorSize, p.PageSize)
	}
	if p.AddressBytes <= 0 {
		return fmt.Errorf("flashparams: %s: address_bytes unset", p.Name)
	}
	return nil
}

// W25Q16JV is the Winbond part used by spec.md's literal scenarios: 256-byte
// pages, 4096-byte sectors, 2 MiB total.
func W25Q16JV() Params {
	return Params{
		Name:           "W25Q16JV",
		IDHex:          0xEF4015,
		OpRDID:         0x9F,
		OpWREN:         0x06,
		OpWRDSBL:       0x04,
		OpEraseBulk:    0xC7,
		OpEraseSector:  0x20,
		OpRDSR:         0x05,
		OpRead:         0x03,
		OpPageProgram:  0x02,
		AddressBytes:   3,
		SectorSize:     4096,
		PageSize:       256,
		TotalSize:      2 * 1024 * 1024,
		RDIDDummyBytes: 0,
		WIPMask:        0x01,
		WRENMask:       0x02,
	}
}

// W25Q32JV is the same Winbond family at 4 MiB.
func W25Q32JV() Params {
	p := W25Q16JV()
	p.Name = "W25Q32JV"
	p.IDHex = 0xEF4016
	p.TotalSize = 4 * 1024 * 1024
	return p
}

// AT25SF081 models a 1 MiB part with the same page/sector topology and
// status masks as the Winbond family but a different chip-erase opcode
// (0x60), selectable as a preset in the demo CLI.
func AT25SF081() Params {
	return Params{
		Name:           "AT25SF081",
		IDHex:          0x1F8501,
		OpRDID:         0x9F,
		OpWREN:         0x06,
		OpWRDSBL:       0x04,
		OpEraseBulk:    0x60,
		OpEraseSector:  0x20,
		OpRDSR:         0x05,
		OpRead:         0x03,
		OpPageProgram:  0x02,
		AddressBytes:   3,
		SectorSize:     4096,
		PageSize:       256,
		TotalSize:      1024 * 1024,
		RDIDDummyBytes: 0,
		WIPMask:        0x01,
		WRENMask:       0x02,
	}
}

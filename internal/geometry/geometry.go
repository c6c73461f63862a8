// Package geometry lays out queues across a flash device's sector range and
// holds the per-queue RAM management state the worker scans and mutates.
package geometry

import (
	"errors"

	"github.com/andkae/SPI-Flash-Circular-Buffer/internal/record"
	"github.com/andkae/SPI-Flash-Circular-Buffer/internal/flashparams"
)

// Sentinel allocation errors, translated by the caller into the driver's
// Kind taxonomy (no-flash / memory / flash-full).
var (
	ErrNoFlash   = errors.New("geometry: flash parameters not configured")
	ErrNoSlot    = errors.New("geometry: no free queue slot")
	ErrFlashFull = errors.New("geometry: queue does not fit on device")
)

// Queue is the RAM management record for one queue (spec.md §3
// "Per-queue management"). All address fields are absolute flash byte
// offsets.
type Queue struct {
	Used      bool
	MgmtValid bool

	Magic        uint32
	StartSector  uint32
	StopSector   uint32
	PagesPerElem uint32
	MaxEntries   uint32

	Entries uint32
	IDMin   uint32
	IDMax   uint32

	StartPageIDMin         uint32
	StartPageIDMaxComplete uint32
	IDLastComplete         uint32

	NextWriteAddr uint32

	PLSize     int
	PLFlashOfs int
}

// ResetScan clears the fields a fresh rescan recomputes from flash,
// preserving Used/Magic/StartSector/StopSector/PagesPerElem/MaxEntries/
// PLSize. Called at mkcb entry for any queue whose scan has not already
// completed (spec.md §4.4.1's "single-queue rebuild" case).
func (q *Queue) ResetScan() {
	q.MarkDirty()
	q.IDMin = ^uint32(0)
	q.IDMax = 0
	q.PLFlashOfs = 0
}

// MarkDirty clears MgmtValid and zeroes Entries, the transition that
// happens every time an append dirties a queue. It deliberately leaves
// IDMin/IDMax/PLFlashOfs untouched: those are live append/scan-anchor state,
// not scan-accumulated counters, and a scan recomputes Entries from scratch
// regardless (spec.md §9 open question on I1's double-counting).
func (q *Queue) MarkDirty() {
	q.MgmtValid = false
	q.Entries = 0
}

// HeaderAddr returns the flash byte address of record n's header.
func (q *Queue) HeaderAddr(p flashparams.Params, n uint32) uint32 {
	return q.StartSector*p.SectorSize + q.PagesPerElem*p.PageSize*n
}

// FooterAddr returns the flash byte address of record n's footer.
func (q *Queue) FooterAddr(p flashparams.Params, n uint32) uint32 {
	return q.HeaderAddr(p, n+1) - record.HeaderSize
}

// RecordSize is the total on-flash footprint of one record, in bytes.
func (q *Queue) RecordSize(p flashparams.Params) uint32 {
	return q.PagesPerElem * p.PageSize
}

// ceilDiv computes ceil(a/b) for strictly positive b.
func ceilDiv(a, b uint32) uint32 {
	return (a + b - 1) / b
}

// Table is the fixed-size queue slot array owned by the driver handle.
type Table struct {
	Slots  []Queue
	Params flashparams.Params
}

// NewTable allocates a Table with a fixed number of queue slots, all unused.
func NewTable(numSlots int) *Table {
	return &Table{Slots: make([]Queue, numSlots)}
}

// Configure installs the flash-device parameters the table allocates
// against. Must be called (by Init) before NewQueue.
func (t *Table) Configure(p flashparams.Params) {
	t.Params = p
}

// NewQueue allocates the next free slot for a queue of plSize-byte payload
// elements, at least numElems deep, distinguished by magic (spec.md §4.1).
// Queues are packed in ascending sector order following any prior queue.
func (t *Table) NewQueue(magic uint32, plSize, numElems int) (id int, err error) {
	if err := t.Params.Validate(); err != nil {
		return -1, ErrNoFlash
	}

	slot := -1
	for i := range t.Slots {
		if !t.Slots[i].Used {
			slot = i
			break
		}
	}
	if slot == -1 {
		return -1, ErrNoSlot
	}

	// The footer is written at the tail of the record region regardless of
	// how much payload preceded it (HeaderAddr/FooterAddr below), and only
	// one HeaderSize is reserved against the page count. When plSize exceeds
	// pagesPerElem*PageSize - 2*HeaderSize, the footer overwrites the last
	// payload bytes; see DESIGN.md for why this differs from a naive
	// "header + payload + footer" sum.
	pagesPerElem := ceilDiv(uint32(plSize)+uint32(record.HeaderSize), t.Params.PageSize)
	pagesPerSector := t.Params.PagesPerSector()
	numSectors := ceilDiv(uint32(numElems)*pagesPerElem, pagesPerSector)
	if numSectors < 2 {
		numSectors = 2
	}

	var startSector uint32
	for i := range t.Slots {
		if t.Slots[i].Used && t.Slots[i].StopSector+1 > startSector {
			startSector = t.Slots[i].StopSector + 1
		}
	}
	stopSector := startSector + numSectors - 1

	if stopSector >= t.Params.NumSectors() {
		return -1, ErrFlashFull
	}

	maxEntries := (numSectors * pagesPerSector) / pagesPerElem

	t.Slots[slot] = Queue{
		Used:         true,
		MgmtValid:    false,
		Magic:        magic,
		StartSector:  startSector,
		StopSector:   stopSector,
		PagesPerElem: pagesPerElem,
		MaxEntries:   maxEntries,
		IDMin:        ^uint32(0),
		IDMax:        0,
		PLSize:       plSize,
	}
	return slot, nil
}

// Package spiflashcb turns a NOR SPI flash device into one or more
// append-only logical circular buffers. The Driver is a cooperative,
// re-entrant handle: every high-level operation (Init, NewQueue, MkCB, Add,
// AddAppend, AddDone, GetLast, FlashRead) is decomposed by Worker into a
// sequence of SPI request/response exchanges against a single shared byte
// buffer. Nothing in this package blocks or spawns a goroutine — Worker must
// be polled by the caller until Busy() is false. After Init the driver still
// allocates in two places: an 8-byte header image for every header or
// footer write, and an *Error value whenever an error is latched.
package spiflashcb

import (
	"errors"

	"github.com/andkae/SPI-Flash-Circular-Buffer/internal/flashparams"
	"github.com/andkae/SPI-Flash-Circular-Buffer/internal/geometry"
	"github.com/andkae/SPI-Flash-Circular-Buffer/internal/record"
)

// command identifies which submission function last armed the worker.
type command int

const (
	cmdIdle command = iota
	cmdMkCB
	cmdAdd
	cmdGetLast
	cmdFlashRead
)

// Driver is the RAM handle described by spec.md §3 ("Driver handle"). It
// owns the queue table, the shared SPI buffer, and the current command's
// iterators exclusively for the duration of any in-flight command.
type Driver struct {
	params    flashparams.Params
	paramsSet bool
	table     *geometry.Table

	buf    []byte
	spiLen int

	cmd   command
	stage int
	err   *Error

	// Iterators shared by every command's state machine (spec.md §3).
	iterCb      int
	iter        uint32
	iterAdr     uint32
	lastElemAdr uint32
	lastElemNum uint32

	header record.Header
	footer record.Header

	cbData     []byte
	cbDataSize int
	appendID   uint32

	wipPending      bool
	pendingReadLen  int

	logger   Logger
	observer Observer
}

// New allocates a Driver with a fixed number of queue slots. No flash
// parameters are configured yet; call Init before any other submission.
func New(numQueueSlots int) *Driver {
	return &Driver{
		table:    geometry.NewTable(numQueueSlots),
		cmd:      cmdIdle,
		logger:   nopLogger{},
		observer: NoOpObserver{},
	}
}

// SetLogger installs a Logger used for diagnostic tracing. Passing nil
// restores the no-op logger.
func (d *Driver) SetLogger(l Logger) {
	if l == nil {
		l = nopLogger{}
	}
	d.logger = l
}

// SetObserver installs an Observer notified of append/scan/reclaim/error
// events. Passing nil restores the no-op observer.
func (d *Driver) SetObserver(o Observer) {
	if o == nil {
		o = NoOpObserver{}
	}
	d.observer = o
}

// Init configures the flash-device parameters and the shared SPI buffer,
// clears all queue slots, and zeroes iterators and the error latch
// (spec.md §4.3). buf must be at least page_size+address_bytes+1 bytes —
// one full page write plus opcode and address.
func (d *Driver) Init(params flashparams.Params, buf []byte) error {
	if err := params.Validate(); err != nil {
		return d.latch(NewError("Init", KindNoFlash, err.Error()))
	}
	minLen := int(params.PageSize) + params.AddressBytes + 1
	if len(buf) < minLen {
		return d.latch(NewError("Init", KindMemory, "shared SPI buffer too small for one page write"))
	}

	d.params = params
	d.paramsSet = true
	d.table = geometry.NewTable(len(d.table.Slots))
	d.table.Configure(params)
	d.buf = buf
	d.spiLen = 0
	d.cmd = cmdIdle
	d.stage = 0
	d.err = nil
	d.iterCb, d.iter, d.iterAdr = 0, 0, 0
	d.wipPending = false
	d.pendingReadLen = 0
	d.logger.Debugf("init: params=%s buf=%d bytes, %d queue slots", params.Name, len(buf), len(d.table.Slots))
	return nil
}

// NewQueue allocates the next free slot for a queue of plSize-byte payload
// elements, at least numElems deep, identified by magic (spec.md §4.1).
func (d *Driver) NewQueue(magic uint32, plSize, numElems int) (cbID int, err error) {
	if !d.paramsSet {
		return -1, d.latch(NewError("NewQueue", KindNoFlash, "flash parameters not configured"))
	}
	id, gerr := d.table.NewQueue(magic, plSize, numElems)
	if gerr != nil {
		kind := KindMemory
		switch {
		case errors.Is(gerr, geometry.ErrNoFlash):
			kind = KindNoFlash
		case errors.Is(gerr, geometry.ErrNoSlot):
			kind = KindMemory
		case errors.Is(gerr, geometry.ErrFlashFull):
			kind = KindFlashFull
		}
		return -1, d.latch(NewError("NewQueue", kind, gerr.Error()))
	}
	d.logger.Infof("new_cb: id=%d magic=%#x pl_size=%d num_elems=%d start_sector=%d stop_sector=%d pages_per_elem=%d",
		id, magic, plSize, numElems, d.table.Slots[id].StartSector, d.table.Slots[id].StopSector, d.table.Slots[id].PagesPerElem)
	return id, nil
}

// latch records err as the current error and returns it, matching the
// worker's own error-latching behavior for submission-time failures.
func (d *Driver) latch(err *Error) error {
	d.err = err
	d.observer.OnError(err)
	return err
}

// checkQueue validates cbID is in range and used, returning the slot.
func (d *Driver) checkQueue(op string, cbID int) (*geometry.Queue, error) {
	if cbID < 0 || cbID >= len(d.table.Slots) || !d.table.Slots[cbID].Used {
		return nil, d.latch(NewQueueError(op, cbID, KindNoQueue, "cbID out of range or slot unused"))
	}
	return &d.table.Slots[cbID], nil
}

// Busy reports whether a command is currently in flight.
func (d *Driver) Busy() bool {
	return d.cmd != cmdIdle
}

// SpiLen returns the number of bytes the transport must exchange before the
// next Worker call. Zero means no transport I/O is required right now.
func (d *Driver) SpiLen() int {
	return d.spiLen
}

// Buffer returns the shared SPI byte buffer, sized to SpiLen() worth of
// valid content. The transport reads buf[:SpiLen()] as the request and
// overwrites the same bytes with the response before the next Worker call.
func (d *Driver) Buffer() []byte {
	return d.buf
}

// FlashSize returns the total configured device size in bytes.
func (d *Driver) FlashSize() uint32 {
	return d.params.TotalSize
}

// IDMax returns the cached id_max for cbID, or 0 if the slot is unused.
func (d *Driver) IDMax(cbID int) uint32 {
	if cbID < 0 || cbID >= len(d.table.Slots) || !d.table.Slots[cbID].Used {
		return 0
	}
	return d.table.Slots[cbID].IDMax
}

// IsErr reports whether the error latch is set.
func (d *Driver) IsErr() bool {
	return d.err != nil
}

// LastError returns the latched error, or nil.
func (d *Driver) LastError() *Error {
	return d.err
}

// ClearError clears the error latch, so IsErr reports false until the next
// error is latched. Submissions do not consult the latch.
func (d *Driver) ClearError() {
	d.err = nil
}

// PlWrCnt returns the number of payload bytes written into cbID's
// most-recent (in-progress or just-finished) append, derived from the
// queue's pl_flash_ofs rather than tracked separately. Once AddDone has
// forced the footer, pl_flash_ofs no longer holds the written count and
// PlWrCnt reports pl_size; after MkCB it reports 0.
func (d *Driver) PlWrCnt(cbID int) int {
	if cbID < 0 || cbID >= len(d.table.Slots) || !d.table.Slots[cbID].Used {
		return 0
	}
	q := d.table.Slots[cbID]
	ofs := q.PLFlashOfs - record.HeaderSize
	if ofs < 0 {
		ofs = 0
	}
	if ofs > q.PLSize {
		ofs = q.PLSize
	}
	return ofs
}

// finish returns the driver to idle, zeroing the outstanding packet length.
func (d *Driver) finish() {
	d.cmd = cmdIdle
	d.stage = 0
	d.spiLen = 0
}

// fail latches a worker-observed error and forces the command to idle
// (spec.md §7: "errors observed by the worker... latch into the error
// field and force the command to idle").
func (d *Driver) fail(op string, cbID int, kind Kind, msg string) {
	d.err = NewQueueError(op, cbID, kind, msg)
	d.observer.OnError(d.err)
	d.finish()
}

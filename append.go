package spiflashcb

import (
	"github.com/andkae/SPI-Flash-Circular-Buffer/internal/record"
	"github.com/andkae/SPI-Flash-Circular-Buffer/internal/spi"
)

// Add writes data as a complete record in one submission: header, the
// payload, and (once pl_size payload bytes have been written) the footer.
// The caller must supply exactly pl_size bytes, or fewer and finish later
// with AddDone (spec.md §4.4.2).
func (d *Driver) Add(cbID int, data []byte) error {
	return d.addSubmit("Add", cbID, data)
}

// AddAppend contributes len(data) more bytes to the record cbID is
// currently writing, resuming from the offset the prior Add/AddAppend call
// left off at. Submission preconditions are identical to Add.
func (d *Driver) AddAppend(cbID int, data []byte) error {
	return d.addSubmit("AddAppend", cbID, data)
}

func (d *Driver) addSubmit(op string, cbID int, data []byte) error {
	if d.Busy() {
		return d.latch(NewQueueError(op, cbID, KindWorkerBusy, "worker busy"))
	}
	q, err := d.checkQueue(op, cbID)
	if err != nil {
		return err
	}
	// mgmt_valid is only required to start a fresh record; once pl_flash_ofs
	// has advanced, later Add/AddAppend calls continue that same in-progress
	// record and mgmt_valid has already been (deliberately) cleared by the
	// first one, so it cannot gate them too.
	startingFresh := q.PLFlashOfs == 0
	if (startingFresh && !q.MgmtValid) || q.PLFlashOfs >= q.PLSize+record.HeaderSize {
		return d.latch(NewQueueError(op, cbID, KindWorkerRequest, "queue not ready to receive bytes; call MkCB first"))
	}
	if len(data)+q.PLFlashOfs > int(q.RecordSize(d.params)) {
		return d.latch(NewQueueError(op, cbID, KindMemory, "write would overflow the record region"))
	}

	d.iterCb = cbID
	d.iterAdr = q.NextWriteAddr + uint32(q.PLFlashOfs)
	q.MarkDirty()
	d.cbData = data
	d.cbDataSize = len(data)
	d.iter = 0
	d.stage = 0
	d.cmd = cmdAdd
	d.spiLen = 0
	d.wipPending = false
	return nil
}

// AddDone forces the footer to be written now, for a record the caller
// stopped filling early via AddAppend. Preconditions are checked in full
// before any iterator state is mutated (spec.md §9's correction of the
// reference implementation's ordering bug).
func (d *Driver) AddDone(cbID int) error {
	if d.Busy() {
		return d.latch(NewQueueError("AddDone", cbID, KindWorkerBusy, "worker busy"))
	}
	q, err := d.checkQueue("AddDone", cbID)
	if err != nil {
		return err
	}
	// Unlike Add/AddAppend, AddDone never starts a fresh record, so it does
	// not need mgmt_valid: by the time a caller has a partial record worth
	// finishing, the first AddAppend call already cleared it.
	if q.PLFlashOfs == 0 {
		return d.latch(NewQueueError("AddDone", cbID, KindWorkerRequest, "no in-progress record to finish; call Add/AddAppend first"))
	}

	q.PLFlashOfs = q.PLSize + record.HeaderSize
	q.MarkDirty()
	d.iterCb = cbID
	d.iterAdr = q.NextWriteAddr
	d.cbData = nil
	d.cbDataSize = 0
	d.iter = 0
	d.stage = 0
	d.cmd = cmdAdd
	d.spiLen = 0
	d.wipPending = false
	return nil
}

func (d *Driver) stepAdd() {
	switch d.stage {
	case 0:
		if !d.wipPoll() {
			return
		}
		d.stage = 1

	case 1:
		q := &d.table.Slots[d.iterCb]
		footerDue := q.PLFlashOfs == q.PLSize+record.HeaderSize
		headerDue := d.iterAdr == q.NextWriteAddr
		switch {
		case headerDue || footerDue:
			n := spi.WriteEnable(d.params, d.buf)
			d.spiLen = n
			d.stage = 2
		case int(d.iter) < d.cbDataSize:
			n := spi.WriteEnable(d.params, d.buf)
			d.spiLen = n
			d.stage = 3
		default:
			if q.PLFlashOfs > q.PLSize+record.HeaderSize {
				d.observer.OnAppend(d.iterCb, d.appendID, q.PLSize)
			}
			d.finish()
		}

	case 2:
		q := &d.table.Slots[d.iterCb]
		footerDue := q.PLFlashOfs == q.PLSize+record.HeaderSize
		var addr uint32
		var hdr record.Header
		if footerDue {
			addr = q.NextWriteAddr + q.RecordSize(d.params) - record.HeaderSize
			hdr = record.Header{Magic: q.Magic, ID: d.appendID}
			q.PLFlashOfs++
		} else {
			addr = d.iterAdr
			d.appendID = q.IDMax + 1
			hdr = record.Header{Magic: q.Magic, ID: d.appendID}
			q.PLFlashOfs += record.HeaderSize
		}
		n := spi.PageProgram(d.params, d.buf, addr, hdr.Bytes())
		d.spiLen = n
		d.iterAdr += record.HeaderSize
		d.stage = 4

	case 3:
		q := &d.table.Slots[d.iterCb]
		avail := d.params.PageSize - (d.iterAdr % d.params.PageSize)
		remaining := uint32(d.cbDataSize) - d.iter
		cpy := remaining
		if avail < cpy {
			cpy = avail
		}
		n := spi.PageProgram(d.params, d.buf, d.iterAdr, d.cbData[d.iter:d.iter+cpy])
		d.spiLen = n
		d.iter += cpy
		q.PLFlashOfs += int(cpy)
		d.iterAdr += cpy
		d.stage = 4

	case 4:
		d.spiLen = 0
		d.wipPending = false
		d.stage = 0

	default:
		d.fail("Add", d.iterCb, KindWorkerRequest, "unexpected append stage")
	}
}

package spiflashcb

import (
	"github.com/andkae/SPI-Flash-Circular-Buffer/internal/record"
	"github.com/andkae/SPI-Flash-Circular-Buffer/internal/spi"
)

// MkCB rebuilds mgmt_valid for every used queue whose cache is stale,
// reading headers and footers from flash (spec.md §4.4.1). It is the only
// way to re-enable appends after init or after the dirty bit is cleared by
// an append. If no queue needs a rescan, MkCB is a no-op and the driver
// stays idle.
func (d *Driver) MkCB() error {
	if d.Busy() {
		return d.latch(NewError("MkCB", KindWorkerBusy, "worker busy"))
	}

	first := -1
	for i := range d.table.Slots {
		q := &d.table.Slots[i]
		if q.Used && !q.MgmtValid {
			q.ResetScan()
			if first == -1 {
				first = i
			}
		}
	}
	if first == -1 {
		return nil
	}

	d.iterCb = first
	d.iter = 0
	d.stage = 0
	d.cmd = cmdMkCB
	d.spiLen = 0
	d.wipPending = false
	return nil
}

func (d *Driver) stepMkCB() {
	switch d.stage {
	case 0:
		if !d.wipPoll() {
			return
		}
		q := &d.table.Slots[d.iterCb]
		d.iterAdr = q.HeaderAddr(d.params, d.iter)
		n := spi.ReadData(d.params, d.buf, d.iterAdr)
		d.spiLen = n + record.HeaderSize
		d.stage = 1

	case 1:
		hdrLen := spi.HeaderLen(d.params)
		respHdr := d.buf[hdrLen : hdrLen+record.HeaderSize]
		d.header = record.Unmarshal(respHdr)
		q := &d.table.Slots[d.iterCb]
		switch {
		case d.header.Magic == q.Magic:
			q.Entries++
			if d.header.ID > q.IDMax {
				q.IDMax = d.header.ID
				d.lastElemAdr = d.iterAdr
				d.lastElemNum = d.header.ID
			}
			if d.header.ID < q.IDMin {
				q.IDMin = d.header.ID
				q.StartPageIDMin = d.iterAdr
			}
		case !q.MgmtValid && record.IsErased(respHdr):
			q.NextWriteAddr = d.iterAdr
			q.MgmtValid = true
		}
		d.iterAdr = q.FooterAddr(d.params, d.iter)
		n := spi.ReadData(d.params, d.buf, d.iterAdr)
		d.spiLen = n + record.HeaderSize
		d.stage = 2

	case 2:
		hdrLen := spi.HeaderLen(d.params)
		d.footer = record.Unmarshal(d.buf[hdrLen : hdrLen+record.HeaderSize])
		q := &d.table.Slots[d.iterCb]
		if record.Complete(d.header, d.footer, q.Magic) {
			q.StartPageIDMaxComplete = d.lastElemAdr
			q.IDLastComplete = d.lastElemNum
		}

		if d.iter < q.MaxEntries-1 {
			d.iter++
			d.iterAdr = q.HeaderAddr(d.params, d.iter)
			n := spi.ReadData(d.params, d.buf, d.iterAdr)
			d.spiLen = n + record.HeaderSize
			d.stage = 1
			return
		}

		if q.MgmtValid {
			d.observer.OnScan(d.iterCb, q.Entries)
			next := -1
			for i := d.iterCb + 1; i < len(d.table.Slots); i++ {
				if d.table.Slots[i].Used && !d.table.Slots[i].MgmtValid {
					next = i
					break
				}
			}
			if next == -1 {
				d.finish()
				return
			}
			d.iterCb = next
			d.iter = 0
			d.stage = 0
			d.spiLen = 0
			d.wipPending = false
			return
		}

		// Queue full: reclaim the sector holding the oldest record.
		n := spi.WriteEnable(d.params, d.buf)
		d.spiLen = n
		d.stage = 3

	case 3:
		q := &d.table.Slots[d.iterCb]
		eraseAddr := q.StartPageIDMin &^ (d.params.SectorSize - 1)
		n := spi.SectorErase(d.params, d.buf, eraseAddr)
		d.spiLen = n
		d.stage = 4
		d.observer.OnReclaim(d.iterCb, eraseAddr/d.params.SectorSize)

	case 4:
		// The reclaimed sector held the oldest record, so entries/id_min/
		// id_max as accumulated by the scan that just finished are stale;
		// rescan from the top rather than carry them forward.
		q := &d.table.Slots[d.iterCb]
		q.ResetScan()
		d.iter = 0
		d.stage = 0
		d.wipPending = false
		d.spiLen = 0

	default:
		d.fail("MkCB", d.iterCb, KindWorkerRequest, "unexpected scan stage")
	}
}

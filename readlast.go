package spiflashcb

import (
	"github.com/andkae/SPI-Flash-Circular-Buffer/internal/record"
	"github.com/andkae/SPI-Flash-Circular-Buffer/internal/spi"
)

// GetLast copies up to len(data) bytes of the last complete record's
// payload into data and returns its id. The id is returned synchronously
// at submission time from the cached scan anchor; data is only valid once
// Busy() reports false (spec.md §4.4.3).
func (d *Driver) GetLast(cbID int, data []byte) (id uint32, err error) {
	if d.Busy() {
		return 0, d.latch(NewQueueError("GetLast", cbID, KindWorkerBusy, "worker busy"))
	}
	q, err := d.checkQueue("GetLast", cbID)
	if err != nil {
		return 0, err
	}
	if !q.MgmtValid {
		return 0, d.latch(NewQueueError("GetLast", cbID, KindWorkerRequest, "queue not mgmt_valid; call MkCB first"))
	}
	if q.Entries == 0 {
		return 0, d.latch(NewQueueError("GetLast", cbID, KindQueueEmpty, "no complete records"))
	}

	n := len(data)
	if n > q.PLSize {
		n = q.PLSize
	}
	d.iterCb = cbID
	d.iterAdr = q.StartPageIDMaxComplete + record.HeaderSize
	d.cbData = data
	d.cbDataSize = n
	d.iter = 0
	d.pendingReadLen = 0
	d.stage = 0
	d.cmd = cmdGetLast
	d.spiLen = 0
	d.wipPending = false
	return q.IDLastComplete, nil
}

func (d *Driver) stepGetLast() {
	switch d.stage {
	case 0:
		if !d.wipPoll() {
			return
		}
		d.stage = 1

	case 1:
		if d.pendingReadLen > 0 {
			hdrLen := spi.HeaderLen(d.params)
			n := d.pendingReadLen
			copy(d.cbData[d.iter:], d.buf[hdrLen:hdrLen+n])
			d.iter += uint32(n)
			d.iterAdr += uint32(n)
			d.pendingReadLen = 0
		}
		d.stage = 2

	case 2:
		if int(d.iter) < d.cbDataSize {
			remaining := d.cbDataSize - int(d.iter)
			readLen := int(d.params.PageSize)
			if readLen > remaining {
				readLen = remaining
			}
			n := spi.ReadData(d.params, d.buf, d.iterAdr)
			d.spiLen = n + readLen
			d.pendingReadLen = readLen
			d.stage = 1
			return
		}
		d.observer.OnRead(d.iterCb, d.cbDataSize)
		d.finish()

	default:
		d.fail("GetLast", d.iterCb, KindWorkerRequest, "unexpected read-last stage")
	}
}

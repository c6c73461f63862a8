package spiflashcb

import "github.com/andkae/SPI-Flash-Circular-Buffer/internal/spi"

// FlashRead performs a single-shot read of len(data) bytes at addr into
// data. If the shared buffer cannot hold the whole transaction, the error
// is latched and the driver is left idle without arming the worker
// (spec.md §4.4.4, and §9's correction of the reference implementation not
// doing so cleanly).
func (d *Driver) FlashRead(addr uint32, data []byte) error {
	if d.Busy() {
		return d.latch(NewError("FlashRead", KindWorkerBusy, "worker busy"))
	}
	need := len(data) + d.params.AddressBytes + 1
	if len(d.buf) < need {
		return d.latch(NewError("FlashRead", KindMemory, "shared buffer too small for requested read"))
	}

	d.iterCb = -1
	d.iterAdr = addr
	d.cbData = data
	d.cbDataSize = len(data)
	d.iter = 0
	d.stage = 0
	d.cmd = cmdFlashRead
	d.spiLen = 0
	d.wipPending = false
	return nil
}

func (d *Driver) stepFlashRead() {
	switch d.stage {
	case 0:
		n := spi.ReadData(d.params, d.buf, d.iterAdr)
		d.spiLen = n + d.cbDataSize
		d.stage = 1

	case 1:
		hdrLen := spi.HeaderLen(d.params)
		copy(d.cbData, d.buf[hdrLen:hdrLen+d.cbDataSize])
		d.observer.OnRead(-1, d.cbDataSize)
		d.finish()

	default:
		d.fail("FlashRead", -1, KindWorkerRequest, "unexpected raw-read stage")
	}
}

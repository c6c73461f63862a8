package spiflashcb

import "github.com/andkae/SPI-Flash-Circular-Buffer/internal/spi"

// maxStepsPerCall bounds the number of zero-length (synchronous) stage
// transitions Worker drives in a single call. Correct FSM runs always reach
// a transport exchange or idle well before this; it exists purely as the
// "unexpected FSM default branch" backstop from spec.md §9.
const maxStepsPerCall = 256

// Worker drives one step of whatever command is currently in flight. On
// each call: if idle, it returns immediately. Otherwise it performs at most
// one stage transition per required transport exchange — a stage that
// leaves SpiLen() at zero means no I/O is needed yet and Worker continues
// synchronously within the same call (spec.md §4.4).
func (d *Driver) Worker() {
	if d.cmd == cmdIdle {
		return
	}
	for i := 0; i < maxStepsPerCall; i++ {
		switch d.cmd {
		case cmdMkCB:
			d.stepMkCB()
		case cmdAdd:
			d.stepAdd()
		case cmdGetLast:
			d.stepGetLast()
		case cmdFlashRead:
			d.stepFlashRead()
		default:
			d.fail("Worker", -1, KindWorkerRequest, "unexpected command state")
			return
		}
		if d.cmd == cmdIdle || d.spiLen > 0 {
			return
		}
	}
	d.fail("Worker", d.iterCb, KindWorkerRequest, "FSM did not converge within step budget")
}

// wipPoll drives the shared write-in-progress poll sub-protocol used at the
// entry stage of mkcb, add, and get_last. It returns true exactly once the
// status register reports WIP clear; until then it (re-)emits the 2-byte
// read-status packet and returns false, leaving SpiLen set so Worker
// returns to let the transport exchange it.
func (d *Driver) wipPoll() bool {
	if !d.wipPending {
		d.spiLen = spi.ReadStatus(d.params, d.buf)
		d.wipPending = true
		return false
	}
	status := d.buf[1]
	if spi.WIPSet(d.params, status) {
		d.spiLen = spi.ReadStatus(d.params, d.buf)
		return false
	}
	d.wipPending = false
	d.spiLen = 0
	return true
}

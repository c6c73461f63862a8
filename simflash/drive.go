package simflash

import spiflashcb "github.com/andkae/SPI-Flash-Circular-Buffer"

// Drive pumps d's worker against f until the current command finishes,
// standing in for the polled transport loop a real caller would write
// around its own SPI peripheral driver.
func Drive(d *spiflashcb.Driver, f *Flash) {
	d.Worker()
	for d.Busy() {
		if n := d.SpiLen(); n > 0 {
			f.Exchange(d.Buffer(), n)
		}
		d.Worker()
	}
}

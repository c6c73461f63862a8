// Command spiflashcb-demo exercises the spiflashcb driver against the
// in-memory simflash model, standing in for a real SPI transport and flash
// part so the driver's command surface can be driven from a shell.
package main

import (
	"fmt"
	"os"

	"github.com/andkae/SPI-Flash-Circular-Buffer/cmd/spiflashcb-demo/internal/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

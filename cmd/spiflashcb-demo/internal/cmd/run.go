package cmd

import (
	"fmt"
	"math/rand"
	"strconv"

	"github.com/spf13/cobra"

	spiflashcb "github.com/andkae/SPI-Flash-Circular-Buffer"
	"github.com/andkae/SPI-Flash-Circular-Buffer/cmd/spiflashcb-demo/internal/config"
	"github.com/andkae/SPI-Flash-Circular-Buffer/simflash"
)

var (
	presetFlag  string
	magicFlag   string
	plSizeFlag  int
	numElemFlag int
	recordsFlag int
)

func newRunCmd() *cobra.Command {
	run := &cobra.Command{
		Use:   "run",
		Short: "Create a queue, append sample records, and scan/read them back",
		Args:  cobra.NoArgs,
		RunE:  runDemo,
	}
	run.Flags().StringVar(&presetFlag, "preset", "w25q16jv", "builtin preset name or path to a TOML preset file")
	run.Flags().StringVar(&magicFlag, "magic", "0x47114711", "queue magic, decimal or 0x-prefixed hex")
	run.Flags().IntVar(&plSizeFlag, "pl-size", 64, "payload size in bytes (keep well under page_size-2*header_size for lossless round trips)")
	run.Flags().IntVar(&numElemFlag, "num-elems", 32, "minimum queue depth in records")
	run.Flags().IntVar(&recordsFlag, "records", 8, "number of sample records to append before reading back")
	return run
}

func runDemo(cmd *cobra.Command, args []string) error {
	params, err := config.Resolve(presetFlag)
	if err != nil {
		return err
	}
	magic, err := strconv.ParseUint(magicFlag, 0, 32)
	if err != nil {
		return fmt.Errorf("invalid --magic %q: %w", magicFlag, err)
	}

	bufSize := spiflashcb.DefaultSPIBufferSize
	if minLen := int(params.PageSize) + params.AddressBytes + 1; minLen > bufSize {
		bufSize = minLen
	}

	d := spiflashcb.New(spiflashcb.DefaultNumQueueSlots)
	d.SetLogger(log)
	if err := d.Init(params, make([]byte, bufSize)); err != nil {
		return err
	}

	cbID, err := d.NewQueue(uint32(magic), plSizeFlag, numElemFlag)
	if err != nil {
		return err
	}
	log.Infof("created queue %d: magic=%#x pl_size=%d num_elems=%d", cbID, magic, plSizeFlag, numElemFlag)

	f := simflash.New(params)

	if err := d.MkCB(); err != nil {
		return err
	}
	simflash.Drive(d, f)
	if d.IsErr() {
		return d.LastError()
	}

	payload := make([]byte, plSizeFlag)
	for i := 0; i < recordsFlag; i++ {
		for j := range payload {
			payload[j] = byte(rand.Intn(256))
		}
		if err := d.Add(cbID, payload); err != nil {
			return err
		}
		simflash.Drive(d, f)
		if d.IsErr() {
			return d.LastError()
		}

		if err := d.MkCB(); err != nil {
			return err
		}
		simflash.Drive(d, f)
		if d.IsErr() {
			return d.LastError()
		}
		log.Debugf("appended record %d, idmax now %d", i, d.IDMax(cbID))
	}

	out := make([]byte, plSizeFlag)
	id, err := d.GetLast(cbID, out)
	if err != nil {
		return err
	}
	simflash.Drive(d, f)
	if d.IsErr() {
		return d.LastError()
	}

	fmt.Fprintf(cmd.OutOrStdout(), "idmax=%d last_record_id=%d last_payload_prefix=% x\n",
		d.IDMax(cbID), id, out[:min(16, len(out))])
	return nil
}

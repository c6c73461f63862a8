package cmd

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	verboseFlag bool
	log         = logrus.New()
)

// Execute builds and runs the root command.
func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "spiflashcb-demo",
		Short:         "Drive the SPI-flash circular-buffer log against an in-memory flash model",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			log.SetLevel(logrus.InfoLevel)
			if verboseFlag {
				log.SetLevel(logrus.DebugLevel)
			}
		},
	}
	root.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "enable debug-level driver tracing")

	root.AddCommand(newPresetsCmd())
	root.AddCommand(newRunCmd())
	return root
}

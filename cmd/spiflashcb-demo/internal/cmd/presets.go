package cmd

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/andkae/SPI-Flash-Circular-Buffer/cmd/spiflashcb-demo/internal/config"
)

func newPresetsCmd() *cobra.Command {
	presets := &cobra.Command{
		Use:   "presets",
		Short: "List or inspect builtin flash-part presets",
	}
	presets.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List builtin preset names",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			names := make([]string, 0, len(config.BuiltinPresets))
			for name := range config.BuiltinPresets {
				names = append(names, name)
			}
			sort.Strings(names)
			for _, name := range names {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
	})
	presets.AddCommand(&cobra.Command{
		Use:   "show <name-or-toml-path>",
		Short: "Print the resolved flashparams.Params for a preset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := config.Resolve(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%+v\n", p)
			return nil
		},
	})
	return presets
}

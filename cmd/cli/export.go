package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(exportCmd)
}

var exportCmd = &cobra.Command{
	Use:   "export <id> [out]",
	Short: "Writes a stored chart in canonical form",
	Long:  `Writes a stored chart in canonical form to out, or to stdout.`,
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := createService()
		if err != nil {
			return fmt.Errorf("failed to create service: %w", err)
		}
		defer svc.Close()

		var w io.Writer = os.Stdout
		if len(args) == 2 {
			f, err := os.Create(args[1])
			if err != nil {
				return err
			}
			defer f.Close()
			w = f
		}

		info, err := svc.Export(args[0], w)
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "📦 %s belongs at %s (music: %s)\n", info.Name, info.ChartPath, info.MusicPath)
		return nil
	},
}

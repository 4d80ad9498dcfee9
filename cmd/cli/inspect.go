package main

import (
	"fmt"
	"os"

	"github.com/davecgh/go-spew/spew"
	"github.com/spf13/cobra"

	"github.com/himanishpuri/muzchart/pkg/beatmap/formats"
	"github.com/himanishpuri/muzchart/pkg/logger"
)

var (
	inspectBare     bool
	inspectDump     bool
	inspectValidate bool
)

func init() {
	inspectCmd.Flags().BoolVar(&inspectBare, "bare", false, "Read header and metadata only")
	inspectCmd.Flags().BoolVar(&inspectDump, "dump", false, "Dump the decoded chart structure")
	inspectCmd.Flags().BoolVar(&inspectValidate, "validate", false, "Check bands, times and references")
	rootCmd.AddCommand(inspectCmd)
}

var inspectCmd = &cobra.Command{
	Use:   "inspect <file>",
	Short: "Decodes a chart file and prints a summary",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		format, err := formats.ForPath(path)
		if err != nil {
			return err
		}
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()

		bm, err := format.Read(f, path, inspectBare, logger.GetLogger().Named("muz"))
		if err != nil {
			return err
		}

		if inspectDump {
			spew.Fdump(os.Stdout, bm)
			return nil
		}

		fmt.Printf("🎵 %s (%s)\n", bm.Name, format.Name)
		fmt.Printf("   Music:  %s\n", bm.Music)
		fmt.Printf("   Bands:  %d\n", bm.NumBands)
		fmt.Printf("   Notes:  %d\n", bm.Len())
		fmt.Printf("   Rate:   %g\n", bm.NoteRate)
		fmt.Printf("   Length: %s\n", clock(bm.Duration()))
		for _, k := range bm.Meta.SortedKeys() {
			v, _ := bm.Meta.Get(k)
			fmt.Printf("   %s = %s\n", k, v)
		}

		if inspectValidate {
			if err := bm.Validate(); err != nil {
				return fmt.Errorf("chart has problems:\n%w", err)
			}
			fmt.Println("✅ Chart is valid")
		}
		return nil
	},
}

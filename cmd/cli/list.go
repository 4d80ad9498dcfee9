package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/himanishpuri/muzchart/pkg/models"
)

var listMeta string

func init() {
	listCmd.Flags().StringVar(&listMeta, "meta", "", "Only list charts with metadata key=value")
	rootCmd.AddCommand(listCmd)
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Lists stored charts",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := createService()
		if err != nil {
			return fmt.Errorf("failed to create service: %w", err)
		}
		defer svc.Close()

		var charts []models.ChartSummary
		if listMeta != "" {
			key, value, ok := strings.Cut(listMeta, "=")
			if !ok {
				return fmt.Errorf("--meta wants key=value, got %q", listMeta)
			}
			charts, err = svc.FindByMeta(key, value)
		} else {
			charts, err = svc.List()
		}
		if err != nil {
			return fmt.Errorf("failed to list charts: %w", err)
		}

		if len(charts) == 0 {
			fmt.Println("📭 No charts in library")
			return nil
		}

		fmt.Printf("📚 Found %d chart(s):\n\n", len(charts))
		for i, c := range charts {
			fmt.Printf("%d. %q, %d notes on %d bands (ID: %s)\n", i+1, c.Name, c.NoteCount, c.NumBands, c.ID)
			fmt.Printf("   Music: %s\n", c.Music)
			fmt.Printf("   Length: %s\n", clock(c.DurationMs))
			fmt.Println()
		}
		return nil
	},
}

func clock(ms int) string {
	sec := ms / 1000
	return fmt.Sprintf("%d:%02d", sec/60, sec%60)
}

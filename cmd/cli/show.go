package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(showCmd)
}

var showCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Shows a stored chart and its metadata",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := createService()
		if err != nil {
			return fmt.Errorf("failed to create service: %w", err)
		}
		defer svc.Close()

		c, err := svc.Get(args[0])
		if err != nil {
			return err
		}

		fmt.Printf("🎵 %s\n", c.Name)
		fmt.Printf("   ID:       %s\n", c.ID)
		fmt.Printf("   Music:    %s\n", c.Music)
		fmt.Printf("   Bands:    %d\n", c.NumBands)
		fmt.Printf("   Notes:    %d\n", c.NoteCount)
		fmt.Printf("   Rate:     %g\n", c.NoteRate)
		fmt.Printf("   Length:   %s\n", clock(c.DurationMs))
		if c.AudioMs > 0 {
			fmt.Printf("   Audio:    %s\n", clock(c.AudioMs))
		}
		fmt.Printf("   Added:    %s\n", c.CreatedAt.Format("2006-01-02 15:04"))
		if len(c.Meta) > 0 {
			fmt.Println("   Metadata:")
			for _, m := range c.Meta {
				fmt.Printf("     %s = %s\n", m.Key, m.Value)
			}
		}
		return nil
	},
}

package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(importCmd)
}

var importCmd = &cobra.Command{
	Use:   "import <file>...",
	Short: "Stores chart files in the library",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := createService()
		if err != nil {
			return fmt.Errorf("failed to create service: %w", err)
		}
		defer svc.Close()

		for _, path := range args {
			id, err := svc.ImportFile(cmd.Context(), path)
			if err != nil {
				return err
			}
			fmt.Printf("✅ Imported %s (ID: %s)\n", path, id)
		}
		return nil
	},
}

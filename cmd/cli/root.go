package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/himanishpuri/muzchart/pkg/beatmap"
	"github.com/himanishpuri/muzchart/pkg/beatmap/formats/muz"
	"github.com/himanishpuri/muzchart/pkg/library"
	"github.com/himanishpuri/muzchart/pkg/logger"
	"github.com/himanishpuri/muzchart/pkg/vfs"
)

// Global flags
var (
	dbPath     string
	searchPath string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:           "muzchart",
	Short:         "Rhythm game chart toolkit",
	Long:          `muzchart reads, writes, generates and catalogues μz beatmap charts.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if verbose {
			logger.SetLevel(logger.DEBUG)
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", getEnvOrDefault("MUZ_DB_PATH", "muzchart.sqlite3"), "Path to the SQLite chart library")
	rootCmd.PersistentFlags().StringVar(&searchPath, "path", getEnvOrDefault("MUZ_SEARCH_PATH", "."), "Search roots for charts and music, OS path-list separated")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func searchRoots() []string {
	roots := vfs.SplitPathList(searchPath)
	if len(roots) == 0 {
		return []string{"."}
	}
	return roots
}

// createService creates a chart library with the configured options
func createService() (library.Service, error) {
	return library.NewService(
		library.WithDBPath(dbPath),
		library.WithSearchPaths(searchRoots()...),
		library.WithLogger(logger.GetLogger().Named("library")),
	)
}

// addOutputFlags registers the flags shared by the chart generators.
func addOutputFlags(f *pflag.FlagSet, out *string, store *bool) {
	f.StringVarP(out, "out", "o", "", "Output chart file (default: stdout)")
	f.BoolVar(store, "store", false, "Also store the chart in the library")
}

// writeChart encodes bm to out, or to stdout when out is empty.
func writeChart(bm *beatmap.Beatmap, out string) error {
	var w io.Writer = os.Stdout
	if out != "" {
		f, err := os.Create(out)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}
	if _, err := muz.Write(bm, w, logger.GetLogger().Named("muz")); err != nil {
		return err
	}
	if out != "" {
		fmt.Fprintf(os.Stderr, "✅ Wrote %d notes to %s\n", bm.Len(), out)
	}
	return nil
}

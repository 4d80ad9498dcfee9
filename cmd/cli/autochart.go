package main

import (
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/himanishpuri/muzchart/internal/audio"
	"github.com/himanishpuri/muzchart/internal/autochart"
	"github.com/himanishpuri/muzchart/pkg/beatmap"
	"github.com/himanishpuri/muzchart/pkg/beatmap/builder"
	"github.com/himanishpuri/muzchart/pkg/logger"
	"github.com/himanishpuri/muzchart/pkg/vfs"
)

var autoOpts struct {
	name        string
	bpm         float64
	bands       int
	subdivision int
	minStrength float64
	out         string
	store       bool
}

func init() {
	f := autochartCmd.Flags()
	f.StringVar(&autoOpts.name, "name", "", "Chart name (default: music file name)")
	f.Float64Var(&autoOpts.bpm, "bpm", 120, "Tempo used for the quantisation grid")
	f.IntVar(&autoOpts.bands, "bands", 4, "Number of bands")
	f.IntVar(&autoOpts.subdivision, "subdivision", 16, "Grid resolution as a bar divisor")
	f.Float64Var(&autoOpts.minStrength, "min-strength", 0.1, "Ignore onsets weaker than this (0-1)")
	addOutputFlags(f, &autoOpts.out, &autoOpts.store)
	rootCmd.AddCommand(autochartCmd)
}

var autochartCmd = &cobra.Command{
	Use:   "autochart <music.wav>",
	Short: "Generates a chart from the onsets of a WAV file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		log := logger.GetLogger().Named("autochart")
		path := args[0]

		samples, sampleRate, err := audio.ReadMonoFloat64(path)
		if err != nil {
			return err
		}

		name := autoOpts.name
		if name == "" {
			name = beatmap.NameFromPath(path)
		}
		candidates := []string{path}
		if abs, err := filepath.Abs(path); err == nil {
			candidates = append(candidates, abs)
		}
		b, err := builder.New(name, autoOpts.bands, vfs.NewFS(searchRoots()...), candidates,
			builder.WithBPM(autoOpts.bpm), builder.WithLogger(logger.GetLogger().Named("builder")))
		if err != nil {
			return err
		}
		bm := b.Beatmap()
		defer bm.Close()

		cfg := autochart.DefaultConfig()
		cfg.Subdivision = autoOpts.subdivision
		cfg.MinStrength = autoOpts.minStrength
		n, err := autochart.Generate(cmd.Context(), b, samples, sampleRate, cfg)
		if err != nil {
			return err
		}
		log.Infof("Placed %d notes from %.1fs of audio", n, float64(len(samples))/float64(sampleRate))

		return emitChart(cmd, bm, autoOpts.out, autoOpts.store)
	},
}

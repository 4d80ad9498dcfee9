package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/himanishpuri/muzchart/internal/midichart"
	"github.com/himanishpuri/muzchart/pkg/beatmap"
	"github.com/himanishpuri/muzchart/pkg/beatmap/builder"
	"github.com/himanishpuri/muzchart/pkg/logger"
	"github.com/himanishpuri/muzchart/pkg/vfs"
)

var midiOpts struct {
	music   []string
	name    string
	bands   int
	channel int
	minHold int
	out     string
	store   bool
}

func init() {
	f := midiCmd.Flags()
	f.StringSliceVar(&midiOpts.music, "music", nil, "Music file candidates, first one found wins")
	f.StringVar(&midiOpts.name, "name", "", "Chart name (default: MIDI file name)")
	f.IntVar(&midiOpts.bands, "bands", 4, "Number of bands")
	f.IntVar(&midiOpts.channel, "channel", -1, "Only convert this MIDI channel")
	f.IntVar(&midiOpts.minHold, "min-hold", midichart.DefaultMinHoldMs, "Shortest note in ms that becomes a hold")
	addOutputFlags(f, &midiOpts.out, &midiOpts.store)
	midiCmd.MarkFlagRequired("music")
	rootCmd.AddCommand(midiCmd)
}

var midiCmd = &cobra.Command{
	Use:   "midi <in.mid>",
	Short: "Converts a MIDI file into a chart",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := midichart.ReadFile(args[0])
		if err != nil {
			return err
		}

		name := midiOpts.name
		if name == "" {
			name = beatmap.NameFromPath(args[0])
		}
		b, err := builder.New(name, midiOpts.bands, vfs.NewFS(searchRoots()...), midiOpts.music,
			builder.WithLogger(logger.GetLogger().Named("builder")))
		if err != nil {
			return err
		}

		n, err := midichart.Convert(s, b, midichart.Options{MinHoldMs: midiOpts.minHold, Channel: midiOpts.channel})
		bm := b.Beatmap()
		defer bm.Close()
		if err != nil {
			return err
		}
		logger.Infof("Converted %d MIDI notes into %q", n, name)

		return emitChart(cmd, bm, midiOpts.out, midiOpts.store)
	},
}

// emitChart writes bm and optionally stores it in the library.
func emitChart(cmd *cobra.Command, bm *beatmap.Beatmap, out string, store bool) error {
	if err := writeChart(bm, out); err != nil {
		return err
	}
	if !store {
		return nil
	}
	svc, err := createService()
	if err != nil {
		return fmt.Errorf("failed to create service: %w", err)
	}
	defer svc.Close()
	id, err := svc.Store(cmd.Context(), bm)
	if err != nil {
		return err
	}
	fmt.Printf("✅ Stored %q (ID: %s)\n", bm.Name, id)
	return nil
}

// Package library stores charts in a local database and loads them back,
// from the database or from chart files under a set of search roots.
package library

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/himanishpuri/muzchart/internal/audio"
	"github.com/himanishpuri/muzchart/pkg/beatmap"
	"github.com/himanishpuri/muzchart/pkg/beatmap/formats"
	"github.com/himanishpuri/muzchart/pkg/beatmap/formats/muz"
	"github.com/himanishpuri/muzchart/pkg/logger"
	"github.com/himanishpuri/muzchart/pkg/models"
	"github.com/himanishpuri/muzchart/pkg/vfs"
)

var ErrUnnamed = errors.New("chart has no name")

// chartService is the default implementation of the Service interface.
type chartService struct {
	storage  Storage
	resolver vfs.Resolver
	log      Logger
}

func NewService(opts ...Option) (Service, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	if cfg.Logger == nil {
		cfg.Logger = logger.GetLogger().Named("library")
	}
	if cfg.Resolver == nil {
		cfg.Resolver = vfs.NewFS(cfg.SearchPaths...)
	}

	stor := cfg.Storage
	if stor == nil {
		var err error
		stor, err = NewSQLiteStorage(cfg.DBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to create storage: %w", err)
		}
	}

	return &chartService{
		storage:  stor,
		resolver: cfg.Resolver,
		log:      cfg.Logger,
	}, nil
}

// ImportFile resolves path, decodes it with the codec registered for its
// extension and stores the result. Music next to the chart file is probed
// for its length.
func (s *chartService) ImportFile(ctx context.Context, path string) (string, error) {
	node, err := s.resolver.Locate(path)
	if err != nil {
		return "", fmt.Errorf("importing %s: %w", path, err)
	}
	bm, err := s.decode(node)
	if err != nil {
		return "", fmt.Errorf("importing %s: %w", path, err)
	}
	defer bm.Close()

	return s.store(ctx, bm, filepath.Dir(node.Path()))
}

func (s *chartService) Store(ctx context.Context, bm *beatmap.Beatmap) (string, error) {
	return s.store(ctx, bm, "")
}

func (s *chartService) store(ctx context.Context, bm *beatmap.Beatmap, dir string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if bm.Name == "" {
		return "", ErrUnnamed
	}

	var buf bytes.Buffer
	if _, err := muz.Write(bm, &buf, s.log); err != nil {
		return "", fmt.Errorf("encoding %q: %w", bm.Name, err)
	}

	meta := make([]models.MetaEntry, 0, bm.Meta.Len())
	for _, k := range bm.Meta.Keys() {
		v, _ := bm.Meta.Get(k)
		meta = append(meta, models.MetaEntry{Key: k, Value: v})
	}

	id, err := s.storage.SaveChart(models.ChartSummary{
		Name:       bm.Name,
		Music:      bm.Music,
		NumBands:   bm.NumBands,
		NoteCount:  bm.Len(),
		NoteRate:   bm.NoteRate,
		DurationMs: bm.Duration(),
		AudioMs:    s.probeMusic(bm, dir),
	}, buf.String(), meta)
	if err != nil {
		return "", fmt.Errorf("failed to store %q: %w", bm.Name, err)
	}

	s.log.Infof("Stored chart %q as %s (%d notes)", bm.Name, id, bm.Len())
	return id, nil
}

// probeMusic returns the music length in milliseconds, or 0 with a warning
// when the music can't be found or isn't a WAV file.
func (s *chartService) probeMusic(bm *beatmap.Beatmap, dir string) int {
	if rs, ok := bm.MusicFile.(io.ReadSeeker); ok {
		info, err := audio.ProbeReader(rs)
		if _, serr := rs.Seek(0, io.SeekStart); serr != nil {
			s.log.Warnf("couldn't rewind music of %q: %v", bm.Name, serr)
		}
		if err != nil {
			s.log.Warnf("couldn't probe music of %q: %v", bm.Name, err)
			return 0
		}
		return int(info.Duration.Milliseconds())
	}
	if bm.Music == "" {
		return 0
	}

	var candidates []string
	if dir != "" {
		candidates = append(candidates, filepath.Join(dir, bm.Music))
	}
	candidates = append(candidates, bm.Music)
	for _, c := range candidates {
		node, err := s.resolver.Locate(c)
		if err != nil {
			continue
		}
		info, err := audio.Probe(node.Path())
		if err != nil {
			s.log.Warnf("couldn't probe %s: %v", node.Path(), err)
			return 0
		}
		return int(info.Duration.Milliseconds())
	}
	s.log.Warnf("music %q of %q not found, length unknown", bm.Music, bm.Name)
	return 0
}

func (s *chartService) decode(node vfs.Node) (*beatmap.Beatmap, error) {
	f, err := formats.ForPath(node.Name())
	if err != nil {
		return nil, err
	}
	rc, err := node.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return f.Read(rc, node.Name(), false, s.log)
}

func (s *chartService) Load(id string) (*beatmap.Beatmap, error) {
	src, err := s.storage.GetSource(id)
	if err != nil {
		return nil, err
	}
	bm, err := muz.Read(strings.NewReader(src), "", muz.Options{Logger: s.log})
	if err != nil {
		return nil, fmt.Errorf("decoding stored chart %s: %w", id, err)
	}
	return bm, nil
}

func (s *chartService) LoadNamed(candidates ...string) (*beatmap.Beatmap, error) {
	for _, c := range candidates {
		for _, p := range formats.Candidates(c) {
			node, err := s.resolver.Locate(p)
			if err != nil {
				s.log.Debugf("couldn't locate %q: %v", p, err)
				continue
			}
			bm, err := s.decode(node)
			if err != nil {
				s.log.Warnf("couldn't load %s: %v", node.Path(), err)
				continue
			}
			return bm, nil
		}
	}

	for _, c := range candidates {
		detail, err := s.storage.GetChartByName(c)
		if err != nil {
			continue
		}
		return s.Load(detail.ID)
	}
	return nil, fmt.Errorf("loading %q: %w", candidates, vfs.ErrNotFound)
}

// Export writes the canonical encoding of a stored chart to w.
func (s *chartService) Export(id string, w io.Writer) (formats.ExportInfo, error) {
	bm, err := s.Load(id)
	if err != nil {
		return formats.ExportInfo{}, err
	}
	return muz.Write(bm, w, s.log)
}

func (s *chartService) Get(id string) (*models.ChartDetail, error) {
	return s.storage.GetChart(id)
}

func (s *chartService) List() ([]models.ChartSummary, error) {
	return s.storage.ListCharts()
}

func (s *chartService) FindByMeta(key, value string) ([]models.ChartSummary, error) {
	return s.storage.FindChartsByMeta(key, value)
}

func (s *chartService) Delete(id string) error {
	return s.storage.DeleteChart(id)
}

// Close releases all resources held by the service.
func (s *chartService) Close() error {
	return s.storage.Close()
}

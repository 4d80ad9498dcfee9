package library

import (
	"context"
	"io"

	"github.com/himanishpuri/muzchart/internal/storage"
	"github.com/himanishpuri/muzchart/pkg/beatmap"
	"github.com/himanishpuri/muzchart/pkg/beatmap/formats"
	"github.com/himanishpuri/muzchart/pkg/models"
)

// ErrNotFound is returned for unknown chart IDs.
var ErrNotFound = storage.ErrNotFound

type Service interface {
	// ImportFile decodes the chart at path and stores it.
	ImportFile(ctx context.Context, path string) (string, error)
	Store(ctx context.Context, bm *beatmap.Beatmap) (string, error)
	Load(id string) (*beatmap.Beatmap, error)
	// LoadNamed returns the first candidate that can be located and
	// decoded, trying library locations on disk before stored chart names.
	LoadNamed(candidates ...string) (*beatmap.Beatmap, error)
	Export(id string, w io.Writer) (formats.ExportInfo, error)
	Get(id string) (*models.ChartDetail, error)
	List() ([]models.ChartSummary, error)
	FindByMeta(key, value string) ([]models.ChartSummary, error)
	Delete(id string) error
	Close() error
}

type Storage interface {
	SaveChart(chart models.ChartSummary, source string, meta []models.MetaEntry) (string, error)
	GetChart(id string) (*models.ChartDetail, error)
	GetChartByName(name string) (*models.ChartDetail, error)
	GetSource(id string) (string, error)
	ListCharts() ([]models.ChartSummary, error)
	FindChartsByMeta(key, value string) ([]models.ChartSummary, error)
	DeleteChart(id string) error
	Close() error
}

type Logger interface {
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
	Debugf(format string, args ...any)
}

package library

import (
	"github.com/himanishpuri/muzchart/internal/storage"
	"github.com/himanishpuri/muzchart/pkg/models"
)

// storageAdapter adapts storage.DBClient to the Storage interface.
type storageAdapter struct {
	db *storage.DBClient
}

// NewSQLiteStorage creates a new SQLite storage backend.
func NewSQLiteStorage(dbPath string) (Storage, error) {
	db, err := storage.NewDBClientWithPath(dbPath)
	if err != nil {
		return nil, err
	}
	return &storageAdapter{db: db}, nil
}

func (s *storageAdapter) SaveChart(chart models.ChartSummary, source string, meta []models.MetaEntry) (string, error) {
	entries := make([]storage.MetaEntry, len(meta))
	for i, m := range meta {
		entries[i] = storage.MetaEntry{Key: m.Key, Value: m.Value}
	}
	return s.db.SaveChart(storage.Chart{
		Name:       chart.Name,
		Music:      chart.Music,
		NumBands:   chart.NumBands,
		NoteCount:  chart.NoteCount,
		NoteRate:   chart.NoteRate,
		DurationMs: chart.DurationMs,
		AudioMs:    chart.AudioMs,
		Source:     source,
	}, entries)
}

func (s *storageAdapter) GetChart(id string) (*models.ChartDetail, error) {
	row, err := s.db.GetChart(id)
	if err != nil {
		return nil, err
	}
	return s.detail(row)
}

func (s *storageAdapter) GetChartByName(name string) (*models.ChartDetail, error) {
	row, err := s.db.GetChartByName(name)
	if err != nil {
		return nil, err
	}
	return s.detail(row)
}

func (s *storageAdapter) detail(row *storage.Chart) (*models.ChartDetail, error) {
	rows, err := s.db.GetMeta(row.ID)
	if err != nil {
		return nil, err
	}
	meta := make([]models.MetaEntry, len(rows))
	for i, r := range rows {
		meta[i] = models.MetaEntry{Key: r.Key, Value: r.Value}
	}
	return &models.ChartDetail{ChartSummary: toSummary(*row), Meta: meta}, nil
}

func (s *storageAdapter) GetSource(id string) (string, error) {
	row, err := s.db.GetChart(id)
	if err != nil {
		return "", err
	}
	return row.Source, nil
}

func (s *storageAdapter) ListCharts() ([]models.ChartSummary, error) {
	rows, err := s.db.ListCharts()
	if err != nil {
		return nil, err
	}
	return toSummaries(rows), nil
}

func (s *storageAdapter) FindChartsByMeta(key, value string) ([]models.ChartSummary, error) {
	rows, err := s.db.FindChartsByMeta(key, value)
	if err != nil {
		return nil, err
	}
	return toSummaries(rows), nil
}

func (s *storageAdapter) DeleteChart(id string) error {
	return s.db.DeleteChartByID(id)
}

func (s *storageAdapter) Close() error {
	return s.db.Close()
}

func toSummary(c storage.Chart) models.ChartSummary {
	return models.ChartSummary{
		ID:         c.ID,
		Name:       c.Name,
		Music:      c.Music,
		NumBands:   c.NumBands,
		NoteCount:  c.NoteCount,
		NoteRate:   c.NoteRate,
		DurationMs: c.DurationMs,
		AudioMs:    c.AudioMs,
		CreatedAt:  c.CreatedAt,
	}
}

func toSummaries(rows []storage.Chart) []models.ChartSummary {
	out := make([]models.ChartSummary, len(rows))
	for i, r := range rows {
		out[i] = toSummary(r)
	}
	return out
}

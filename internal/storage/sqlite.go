//go:build !js && !wasm
// +build !js,!wasm

package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const DefaultDBFile = "muzchart.sqlite3"
const errDBClientNil = "db client is nil"

var ErrNotFound = errors.New("chart not found")

type DBClient struct {
	DB *gorm.DB
	db *sql.DB
}

type Chart struct {
	ID         string `gorm:"primaryKey;type:varchar(36)"`
	Name       string `gorm:"uniqueIndex:idx_chart_name" json:"name"`
	Music      string `gorm:"index:idx_chart_music" json:"music"`
	NumBands   int    `json:"num_bands"`
	NoteCount  int    `json:"note_count"`
	NoteRate   float64
	DurationMs int `json:"duration_ms"`
	// AudioMs is the probed length of the music file, 0 when unknown.
	AudioMs   int    `json:"audio_ms"`
	Source    string `gorm:"type:text"`
	CreatedAt time.Time
}

type MetaEntry struct {
	ID      uint   `gorm:"primaryKey;autoIncrement"`
	ChartID string `gorm:"type:varchar(36);index:idx_meta_chart" json:"chart_id"`
	Key     string `gorm:"column:meta_key;index:idx_meta_kv,priority:1" json:"key"`
	Value   string `gorm:"column:meta_value;index:idx_meta_kv,priority:2" json:"value"`
}

func NewDBClient() (*DBClient, error) {
	dbPath := os.Getenv("MUZ_DB_PATH")
	if dbPath == "" {
		dbPath = DefaultDBFile
	}
	return NewDBClientWithPath(dbPath)
}

func NewDBClientWithPath(dbPath string) (*DBClient, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating db dir: %w", err)
		}
	}

	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	}

	db, err := gorm.Open(sqlite.Open(dbPath+"?_pragma=foreign_keys(1)"), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("getting sql.DB from gorm: %w", err)
	}

	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := db.AutoMigrate(&Chart{}, &MetaEntry{}); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("auto migrate: %w", err)
	}

	return &DBClient{DB: db, db: sqlDB}, nil
}

func (c *DBClient) Close() error {
	if c == nil || c.db == nil {
		return nil
	}
	return c.db.Close()
}

func (c *DBClient) check() error {
	if c == nil || c.DB == nil {
		return errors.New(errDBClientNil)
	}
	return nil
}

// SaveChart stores chart and its metadata in one transaction and returns the
// new ID. A chart already stored under the same name is replaced.
func (c *DBClient) SaveChart(chart Chart, meta []MetaEntry) (string, error) {
	if err := c.check(); err != nil {
		return "", err
	}

	chart.ID = uuid.NewString()
	err := c.DB.Transaction(func(tx *gorm.DB) error {
		var existing Chart
		err := tx.Where("name = ?", chart.Name).First(&existing).Error
		switch {
		case err == nil:
			if err := deleteChart(tx, existing.ID); err != nil {
				return fmt.Errorf("replacing %q: %w", chart.Name, err)
			}
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return fmt.Errorf("querying existing chart: %w", err)
		}

		if err := tx.Create(&chart).Error; err != nil {
			return fmt.Errorf("creating chart: %w", err)
		}
		if len(meta) == 0 {
			return nil
		}

		entries := make([]MetaEntry, len(meta))
		for i, m := range meta {
			entries[i] = MetaEntry{ChartID: chart.ID, Key: m.Key, Value: m.Value}
		}
		if err := tx.CreateInBatches(entries, 500).Error; err != nil {
			return fmt.Errorf("batch insert metadata: %w", err)
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return chart.ID, nil
}

func deleteChart(tx *gorm.DB, id string) error {
	if err := tx.Where("chart_id = ?", id).Delete(&MetaEntry{}).Error; err != nil {
		return err
	}
	return tx.Where("id = ?", id).Delete(&Chart{}).Error
}

func (c *DBClient) DeleteChartByID(id string) error {
	if err := c.check(); err != nil {
		return err
	}
	return c.DB.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&Chart{}).Where("id = ?", id).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return fmt.Errorf("%s: %w", id, ErrNotFound)
		}
		return deleteChart(tx, id)
	})
}

func (c *DBClient) first(query string, arg any) (*Chart, error) {
	if err := c.check(); err != nil {
		return nil, err
	}
	var chart Chart
	if err := c.DB.Where(query, arg).First(&chart).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%v: %w", arg, ErrNotFound)
		}
		return nil, fmt.Errorf("querying chart: %w", err)
	}
	return &chart, nil
}

func (c *DBClient) GetChart(id string) (*Chart, error) {
	return c.first("id = ?", id)
}

func (c *DBClient) GetChartByName(name string) (*Chart, error) {
	return c.first("name = ?", name)
}

// ListCharts returns all charts ordered by name. The encoded source is not loaded.
func (c *DBClient) ListCharts() ([]Chart, error) {
	if err := c.check(); err != nil {
		return nil, err
	}
	var rows []Chart
	if err := c.DB.Omit("source").Order("name").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("listing charts: %w", err)
	}
	return rows, nil
}

// GetMeta returns the metadata of a chart in insertion order.
func (c *DBClient) GetMeta(chartID string) ([]MetaEntry, error) {
	if err := c.check(); err != nil {
		return nil, err
	}
	var rows []MetaEntry
	if err := c.DB.Where("chart_id = ?", chartID).Order("id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("querying metadata: %w", err)
	}
	return rows, nil
}

// FindChartsByMeta returns the charts carrying key=value, ordered by name.
func (c *DBClient) FindChartsByMeta(key, value string) ([]Chart, error) {
	if err := c.check(); err != nil {
		return nil, err
	}
	sub := c.DB.Model(&MetaEntry{}).Select("chart_id").Where("meta_key = ? AND meta_value = ?", key, value)
	var rows []Chart
	if err := c.DB.Omit("source").Where("id IN (?)", sub).Order("name").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("querying charts by metadata: %w", err)
	}
	return rows, nil
}

func (c *DBClient) CountCharts() (int, error) {
	if err := c.check(); err != nil {
		return 0, err
	}
	var count int64
	if err := c.DB.Model(&Chart{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return int(count), nil
}

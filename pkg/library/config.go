package library

import "github.com/himanishpuri/muzchart/pkg/vfs"

type Config struct {
	DBPath      string
	SearchPaths []string
	Logger      Logger
	Storage     Storage
	Resolver    vfs.Resolver
}

type Option func(*Config)

func WithDBPath(path string) Option {
	return func(c *Config) {
		c.DBPath = path
	}
}

// WithSearchPaths sets the roots charts and music are resolved against.
func WithSearchPaths(paths ...string) Option {
	return func(c *Config) {
		c.SearchPaths = paths
	}
}

func WithLogger(log Logger) Option {
	return func(c *Config) {
		c.Logger = log
	}
}

func WithStorage(storage Storage) Option {
	return func(c *Config) {
		c.Storage = storage
	}
}

// WithResolver replaces the filesystem resolver built from the search paths.
func WithResolver(r vfs.Resolver) Option {
	return func(c *Config) {
		c.Resolver = r
	}
}

func defaultConfig() *Config {
	return &Config{
		DBPath:      "muzchart.sqlite3",
		SearchPaths: []string{"."},
	}
}

package surveyd

import (
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

const (
	driverMemory = "memory"
	driverSQLite = "sqlite"
	driverMongo  = "mongo"
)

type clientConfig struct {
	driver     string // "memory", "sqlite" or "mongo"
	mongoURI   string
	database   string
	collection string
	sqlitePath string

	generator    Generator
	templatesDir string

	healthTimeout time.Duration

	logger     *slog.Logger
	metricsReg prometheus.Registerer
}

// WithMemory keeps records in process memory. This is the default.
func WithMemory() Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = driverMemory
	})
}

// WithSQLite stores records in a SQLite file. Use ":memory:" for a throwaway database.
func WithSQLite(path string) Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = driverSQLite
		c.sqlitePath = path
	})
}

// WithMongo stores records in a MongoDB collection.
func WithMongo(uri, database, collection string) Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = driverMongo
		c.mongoURI = uri
		c.database = database
		c.collection = collection
	})
}

// WithGenerator sets the text generation backend used for descriptions.
// Required: Process fails at the describe stage without one.
func WithGenerator(g Generator) Option {
	return optionFunc(func(c *clientConfig) {
		c.generator = g
	})
}

// WithTemplatesDir loads prompt templates from dir instead of the built-in set.
func WithTemplatesDir(dir string) Option {
	return optionFunc(func(c *clientConfig) {
		c.templatesDir = dir
	})
}

// WithHealthTimeout bounds each component check in Health. Default: 3s.
func WithHealthTimeout(d time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.healthTimeout = d
	})
}

// WithLogger enables structured logging for SDK operations.
// Pass nil to disable (default). Uses standard library slog.
func WithLogger(l *slog.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithPrometheus registers SDK metrics (operation counts, durations and
// stage failures) on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}

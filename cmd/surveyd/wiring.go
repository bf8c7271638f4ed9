package main

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/surveyd/internal/config"
	"github.com/kailas-cloud/surveyd/internal/db"
	dbMongo "github.com/kailas-cloud/surveyd/internal/db/mongo"
	dbRedis "github.com/kailas-cloud/surveyd/internal/db/redis"
	dbSQLite "github.com/kailas-cloud/surveyd/internal/db/sqlite"
	"github.com/kailas-cloud/surveyd/internal/domain"
	recordrepo "github.com/kailas-cloud/surveyd/internal/repository/record"
	templaterepo "github.com/kailas-cloud/surveyd/internal/repository/template"
	geminiGen "github.com/kailas-cloud/surveyd/internal/transport/gemini"
	openaiGen "github.com/kailas-cloud/surveyd/internal/transport/openai"
	describeuc "github.com/kailas-cloud/surveyd/internal/usecase/describe"
	surveyuc "github.com/kailas-cloud/surveyd/internal/usecase/survey"
)

// recordStore bundles the repository with its connection lifecycle.
type recordStore struct {
	repo   surveyuc.Repository
	pinger db.Pinger
	client db.Client // nil for the memory driver
}

func (s recordStore) waitForReady(ctx context.Context, timeout time.Duration) error {
	if s.client == nil {
		return nil
	}
	return s.client.WaitForReady(ctx, timeout) //nolint:wrapcheck // already wrapped
}

func (s recordStore) close() {
	if s.client != nil {
		s.client.Close()
	}
}

// openStore creates the record repository for the configured driver.
func openStore(ctx context.Context, cfg config.DatabaseConfig) (recordStore, error) {
	switch cfg.Driver {
	case config.DriverMongo:
		store, err := dbMongo.NewStore(ctx, dbMongo.Config{
			URI:            cfg.URI,
			Database:       cfg.Name,
			ConnectTimeout: time.Duration(cfg.ReadinessTimeout) * time.Second,
		})
		if err != nil {
			return recordStore{}, fmt.Errorf("create mongo store: %w", err)
		}
		repo := recordrepo.NewMongo(store.Collection(cfg.Collection))
		return recordStore{repo: repo, pinger: store, client: store}, nil

	case config.DriverSQLite:
		store, err := dbSQLite.Open(cfg.Path)
		if err != nil {
			return recordStore{}, fmt.Errorf("open sqlite store: %w", err)
		}
		return recordStore{repo: recordrepo.NewSQLite(store.DB()), pinger: store, client: store}, nil

	case config.DriverMemory:
		repo := recordrepo.NewMemory()
		return recordStore{repo: repo, pinger: repo}, nil

	default:
		return recordStore{}, fmt.Errorf("unknown database driver %q", cfg.Driver)
	}
}

// openTemplates creates the template source for the configured backend.
func openTemplates(cfg config.TemplatesConfig) (describeuc.TemplateSource, func(), error) {
	noop := func() {}
	switch cfg.Source {
	case config.TemplatesEmbedded:
		return templaterepo.NewEmbedded(), noop, nil
	case config.TemplatesFile:
		return templaterepo.NewDir(cfg.Dir), noop, nil
	case config.TemplatesRedis:
		store, err := newRedisStore(cfg.Redis)
		if err != nil {
			return nil, noop, err
		}
		return templaterepo.NewKV(store, cfg.Redis.KeyPrefix), store.Close, nil
	default:
		return nil, noop, fmt.Errorf("unknown templates source %q", cfg.Source)
	}
}

func newRedisStore(cfg config.RedisConfig) (*dbRedis.Store, error) {
	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Addrs,
		Password: cfg.Password,
	})
	if err != nil {
		return nil, fmt.Errorf("create redis store: %w", err)
	}
	return store, nil
}

// healthyGenerator is a text generator that can report backend availability.
type healthyGenerator interface {
	domain.TextGenerator
	domain.HealthChecker
}

// buildGenerator assembles the decorator chain: provider -> Retrying -> Instrumented.
func buildGenerator(ctx context.Context, cfg config.GenerationConfig, logger *zap.Logger) (healthyGenerator, error) {
	var base domain.TextGenerator
	switch cfg.Provider {
	case config.ProviderGemini:
		g, err := geminiGen.NewGenerator(ctx, &geminiGen.Config{
			APIKey:  cfg.APIKey,
			BaseURL: cfg.BaseURL,
			Model:   cfg.Model,
			Timeout: cfg.Timeout(),
		})
		if err != nil {
			return nil, fmt.Errorf("create gemini generator: %w", err)
		}
		base = g
	case config.ProviderOpenAI:
		base = openaiGen.NewGenerator(&openaiGen.Config{
			APIKey:  cfg.APIKey,
			BaseURL: cfg.BaseURL,
			Model:   cfg.Model,
			Timeout: cfg.Timeout(),
		})
	default:
		return nil, fmt.Errorf("unknown generation provider %q", cfg.Provider)
	}

	policy := describeuc.DefaultRetryPolicy()
	policy.MaxRetries = cfg.Retries()
	policy.BaseDelay = time.Duration(cfg.RetryBaseDelayMs) * time.Millisecond
	policy.MaxDelay = time.Duration(cfg.RetryMaxDelayMs) * time.Millisecond

	var gen domain.TextGenerator = base
	if policy.MaxRetries > 0 {
		gen = describeuc.NewRetryingGenerator(gen, policy, logger)
	}
	return describeuc.NewInstrumentedGenerator(gen, cfg.Provider, cfg.Model, logger), nil
}

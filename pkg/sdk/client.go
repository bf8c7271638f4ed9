package surveyd

import (
	"context"
	"fmt"
	"time"

	"github.com/kailas-cloud/surveyd/internal/db"
	dbMongo "github.com/kailas-cloud/surveyd/internal/db/mongo"
	dbSQLite "github.com/kailas-cloud/surveyd/internal/db/sqlite"
	"github.com/kailas-cloud/surveyd/internal/domain"
	"github.com/kailas-cloud/surveyd/internal/domain/record"
	domsurvey "github.com/kailas-cloud/surveyd/internal/domain/survey"
	recordrepo "github.com/kailas-cloud/surveyd/internal/repository/record"
	templaterepo "github.com/kailas-cloud/surveyd/internal/repository/template"
	describeuc "github.com/kailas-cloud/surveyd/internal/usecase/describe"
	healthuc "github.com/kailas-cloud/surveyd/internal/usecase/health"
	surveyuc "github.com/kailas-cloud/surveyd/internal/usecase/survey"
)

const defaultReadinessTimeout = 10 * time.Second

// Внутренние интерфейсы для подмены в тестах.
type surveyUseCase interface {
	Process(ctx context.Context, p domsurvey.Payload) (surveyuc.Result, error)
}

type recordRepository interface {
	surveyuc.Repository
	Find(ctx context.Context, id string) (record.Stored, error)
}

// Client is the surveyd SDK entry point. It runs the survey pipeline in process.
type Client struct {
	store     db.Client // nil for the memory driver
	records   recordRepository
	surveySvc surveyUseCase
	healthSvc healthUseCase
	obs       *observer
}

// New creates a Client and connects to the configured store.
// The provided context is used for the initial readiness check.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := &clientConfig{driver: driverMemory}
	for _, o := range opts {
		o.apply(cfg)
	}

	repo, store, err := createStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	if store != nil {
		if err := store.WaitForReady(ctx, defaultReadinessTimeout); err != nil {
			store.Close()
			return nil, fmt.Errorf("surveyd: database not ready: %w", err)
		}
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		if store != nil {
			store.Close()
		}
		return nil, err
	}
	return wireClient(repo, store, cfg, obs), nil
}

func createStore(ctx context.Context, cfg *clientConfig) (recordRepository, db.Client, error) {
	switch cfg.driver {
	case driverMemory:
		return recordrepo.NewMemory(), nil, nil
	case driverSQLite:
		s, err := dbSQLite.Open(cfg.sqlitePath)
		if err != nil {
			return nil, nil, fmt.Errorf("surveyd: open sqlite store: %w", err)
		}
		return recordrepo.NewSQLite(s.DB()), s, nil
	case driverMongo:
		s, err := dbMongo.NewStore(ctx, dbMongo.Config{
			URI:      cfg.mongoURI,
			Database: cfg.database,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("surveyd: create mongo store: %w", err)
		}
		return recordrepo.NewMongo(s.Collection(cfg.collection)), s, nil
	default:
		return nil, nil, fmt.Errorf("surveyd: unknown driver %q", cfg.driver)
	}
}

func wireClient(repo recordRepository, store db.Client, cfg *clientConfig, obs *observer) *Client {
	var templates describeuc.TemplateSource = templaterepo.NewEmbedded()
	if cfg.templatesDir != "" {
		templates = templaterepo.NewDir(cfg.templatesDir)
	}

	// Generator: noop если не задан (describe stage вернёт ошибку)
	var gen interface {
		domain.TextGenerator
		domain.HealthChecker
	} = noopGenerator{}
	if cfg.generator != nil {
		gen = &generatorAdapter{inner: cfg.generator}
	}

	surveySvc := surveyuc.New(repo, describeuc.New(templates, gen))

	// Memory repo pings itself; SQL and Mongo repos are pinged through their store.
	pinger, _ := repo.(healthuc.DBPinger)
	if store != nil {
		pinger = store
	}
	healthSvc := healthuc.New(pinger, gen)
	if cfg.healthTimeout > 0 {
		healthSvc = healthSvc.WithTimeout(cfg.healthTimeout)
	}

	return &Client{
		store:     store,
		records:   repo,
		surveySvc: surveySvc,
		healthSvc: healthSvc,
		obs:       obs,
	}
}

// Close releases all resources.
func (c *Client) Close() {
	if c.store != nil {
		c.store.Close()
	}
}

// Ping checks database connectivity.
func (c *Client) Ping(ctx context.Context) (err error) {
	start := time.Now()
	defer func() { c.obs.observe("ping", start, err) }()

	if c.store == nil {
		return nil
	}
	if err = c.store.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// Process validates s, derives its attributes, generates a description,
// stores the record and attaches statistics.
// Failures carry the failing stage; use errors.As with *StageError.
func (c *Client) Process(ctx context.Context, s Survey) (res Result, err error) {
	start := time.Now()
	defer func() { c.obs.observe("process", start, err) }()

	out, err := c.surveySvc.Process(ctx, toPayload(s))
	if err != nil {
		return Result{}, fmt.Errorf("process survey: %w", err)
	}
	return fromResult(out), nil
}

// Record loads a stored survey by id.
func (c *Client) Record(ctx context.Context, id string) (rec Record, err error) {
	start := time.Now()
	defer func() { c.obs.observe("record", start, err) }()

	stored, err := c.records.Find(ctx, id)
	if err != nil {
		return Record{}, fmt.Errorf("find record %s: %w", id, err)
	}
	return fromStored(stored), nil
}

package container

import (
	"context"
	"fmt"
	"strings"

	"gotrial/adapters/randomization"
	"gotrial/adapters/rng"
	"gotrial/adapters/samplesize"
	"gotrial/adapters/sqlstore"
	"gotrial/app"
	"gotrial/internal"
	"gotrial/internal/config"
	"gotrial/internal/errors"
	"gotrial/internal/metrics"
	"gotrial/internal/migration"
	"gotrial/internal/testkit"
	"gotrial/ports"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	_ "modernc.org/sqlite"
)

// Container holds all application dependencies and manages their lifecycle
type Container struct {
	Config *config.Config
	Logger *internal.Logger

	// Infrastructure
	DB       *sqlx.DB
	Registry *prometheus.Registry
	Metrics  *metrics.Metrics

	// Ports
	Seeds       ports.SeedSource
	RNG         ports.RNGPort
	Randomizer  ports.RandomizerPort
	Calculator  ports.SampleSizePort
	Allocations ports.AllocationRepository
	Ledger      ports.EnrollmentLedger

	// Services
	AllocationService *app.AllocationService
	EnrollmentService *app.EnrollmentService
	PowerService      *app.PowerService
}

// New creates a new dependency injection container. With no DATABASE_URL the
// stores are in memory.
func New(ctx context.Context, cfg *config.Config, logger *internal.Logger) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if logger == nil {
		logger = internal.NewLogger(internal.ParseLogLevel(cfg.LogLevel))
	}

	c := &Container{
		Config: cfg,
		Logger: logger,
	}

	if err := c.initStores(ctx); err != nil {
		return nil, err
	}
	c.initMetrics()
	c.initServices()

	logger.Info("container initialized (store: %s, seed mode: %s, metrics: %t)",
		c.storeName(), cfg.Randomization.SeedMode, cfg.Metrics.Enabled)
	return c, nil
}

// initStores opens the database and runs migrations, or falls back to memory
func (c *Container) initStores(ctx context.Context) error {
	if !c.Config.Database.Enabled() {
		kit := testkit.NewTestKit()
		c.Allocations = kit.AllocationRepository()
		c.Ledger = kit.EnrollmentLedger()
		return nil
	}

	db, err := sqlx.Open(c.Config.Database.Driver, c.Config.Database.URL)
	if err != nil {
		return errors.DatabaseError("failed to open database", err)
	}
	if c.Config.Database.Driver == config.DriverSQLite && strings.Contains(c.Config.Database.URL, ":memory:") {
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return errors.DatabaseError("failed to ping database", err)
	}

	if err := migration.NewRunner().Run(ctx, db); err != nil {
		db.Close()
		return errors.Wrap(err, "database migration failed")
	}

	c.DB = db
	c.Allocations = sqlstore.NewAllocationRepository(db)
	c.Ledger = sqlstore.NewEnrollmentLedger(db)
	return nil
}

func (c *Container) initMetrics() {
	if !c.Config.Metrics.Enabled {
		return
	}
	c.Registry = prometheus.NewRegistry()
	c.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	c.Metrics = metrics.New(c.Registry)
}

func (c *Container) initServices() {
	if c.Config.Randomization.SeedMode == config.SeedModeFixed {
		c.Seeds = rng.FixedSeedSource{Seed: c.Config.Randomization.FixedSeed}
	} else {
		c.Seeds = rng.NewClockSeedSource()
	}

	c.RNG = rng.NewRNGAdapter()
	c.Randomizer = randomization.NewEngine(c.RNG, c.Seeds)
	c.Calculator = samplesize.NewCalculator()

	c.AllocationService = app.NewAllocationService(c.Randomizer, c.Allocations, c.Seeds, c.Metrics, c.Logger,
		c.Config.Randomization.BatchConcurrency)
	c.EnrollmentService = app.NewEnrollmentService(c.Allocations, c.Ledger, c.Metrics, c.Logger)
	c.PowerService = app.NewPowerService(c.Calculator, c.Metrics, c.Logger)
}

func (c *Container) storeName() string {
	if c.DB == nil {
		return "memory"
	}
	return c.Config.Database.Driver
}

// Shutdown gracefully shuts down all components
func (c *Container) Shutdown(ctx context.Context) error {
	if c.DB != nil {
		return c.DB.Close()
	}
	return nil
}

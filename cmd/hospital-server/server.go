package main

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"github.com/raycare/hospital/internal/config"
	"github.com/raycare/hospital/internal/domain/catalog"
	"github.com/raycare/hospital/internal/domain/patient"
	"github.com/raycare/hospital/internal/domain/scheduling"
	"github.com/raycare/hospital/internal/platform/db"
	"github.com/raycare/hospital/internal/platform/memdb"
	"github.com/raycare/hospital/internal/platform/middleware"
	"github.com/raycare/hospital/internal/platform/validation"
)

// catalogMaxAge is the Cache-Control max-age for the immutable catalog lists.
const catalogMaxAge = 300

type transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// repos is the set of stores one backend provides.
type repos struct {
	name     string
	pool     *pgxpool.Pool
	tx       transactor
	store    *catalog.Inventory
	images   catalog.ImageRepository
	ledger   scheduling.Ledger
	patients patient.Repository
}

func openMemory(cfg *config.Config) (*repos, error) {
	inv, err := catalog.Seed(cfg.SeedConfig)
	if err != nil {
		return nil, fmt.Errorf("seed catalog: %w", err)
	}
	mem := memdb.New()
	return &repos{
		name:     "memory",
		tx:       mem,
		store:    inv,
		images:   catalog.NewImageRepoMem(mem, inv.Images()),
		ledger:   scheduling.NewLedgerMem(mem),
		patients: patient.NewRepoMem(mem),
	}, nil
}

func openPostgres(ctx context.Context, cfg *config.Config, loc *time.Location, logger zerolog.Logger) (*repos, error) {
	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		return nil, err
	}
	logger.Info().Msg("connected to database")

	migrator := db.NewMigrator(pool, migrationSource(cfg.MigrationsDir))
	if cfg.AutoMigrate {
		n, err := migrator.Up(ctx, db.DefaultSchema)
		if err != nil {
			pool.Close()
			return nil, fmt.Errorf("migrate: %w", err)
		}
		logger.Info().Int("applied", n).Msg("migrations up to date")
	} else {
		pending, err := migrator.Pending(ctx, db.DefaultSchema)
		if err != nil {
			pool.Close()
			return nil, fmt.Errorf("check migrations: %w", err)
		}
		if len(pending) > 0 {
			logger.Warn().Int("pending", len(pending)).Str("next", pending[0].Name).
				Msg("database schema is behind; run `hospital-server migrate up`")
		}
	}

	tx := db.NewTransactor(pool)
	inv, err := catalog.Bootstrap(ctx, catalog.NewInventoryRepoPG(pool), tx, cfg.SeedConfig)
	if err != nil {
		pool.Close()
		return nil, err
	}
	return &repos{
		name:     "postgres",
		pool:     pool,
		tx:       tx,
		store:    inv,
		images:   catalog.NewImageRepoPG(pool),
		ledger:   scheduling.NewLedgerPG(pool, loc),
		patients: patient.NewRepoPG(pool, loc),
	}, nil
}

type server struct {
	echo    *echo.Echo
	backend string
	pool    *pgxpool.Pool
}

// Close releases the database pool, if any.
func (s *server) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// newServer opens the configured backend and builds the HTTP router.
func newServer(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*server, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	var r *repos
	if cfg.UsesDatabase() {
		r, err = openPostgres(ctx, cfg, loc, logger)
	} else {
		r, err = openMemory(cfg)
	}
	if err != nil {
		return nil, err
	}

	// Services
	catalogSvc := catalog.NewService(r.store, r.images)
	engine := scheduling.NewEngine(r.store, r.ledger, r.tx, scheduling.EngineConfig{
		HorizonDays: cfg.HorizonDays,
		Location:    loc,
	}, logger)
	schedulingSvc := scheduling.NewService(r.ledger)
	patientSvc := patient.NewService(r.patients, engine, schedulingSvc, catalogSvc, r.tx, logger)

	// Echo server
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = validation.New()

	// Global middleware
	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins:  cfg.CORSOrigins,
		AllowMethods:  []string{http.MethodGet, http.MethodPost},
		AllowHeaders:  []string{"Content-Type", "If-None-Match", middleware.RequestIDHeader},
		ExposeHeaders: []string{"Location", "Link", "ETag", "X-Total-Count", middleware.RequestIDHeader},
	}))
	e.Use(middleware.SecurityHeaders())
	if cfg.RateLimitRPS > 0 {
		limits := middleware.DefaultRateLimitConfig()
		limits.RequestsPerSecond = cfg.RateLimitRPS
		limits.BurstSize = cfg.RateLimitBurst
		limits.Skipper = func(c echo.Context) bool {
			return strings.HasPrefix(c.Request().URL.Path, "/health")
		}
		e.Use(middleware.RateLimit(limits))
	}

	// Health
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok", "backend": r.name})
	})
	e.GET("/health/db", db.HealthHandler(r.pool))

	api := e.Group("", middleware.BodyLimit(cfg.BodyLimit), middleware.RequestTimeout(cfg.RequestTimeout))

	catalog.NewHandler(catalogSvc).RegisterRoutes(api, middleware.ETag(catalogMaxAge))
	scheduling.NewHandler(schedulingSvc).RegisterRoutes(api)
	patient.NewHandler(patientSvc).RegisterRoutes(api)

	return &server{echo: e, backend: r.name, pool: r.pool}, nil
}

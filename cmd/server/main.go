package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/symptom-intake-server/internal/api"
	"github.com/symptom-intake-server/internal/config"
	"github.com/symptom-intake-server/internal/corpus"
	"github.com/symptom-intake-server/internal/database"
	"github.com/symptom-intake-server/internal/demo"
	"github.com/symptom-intake-server/internal/domain"
	"github.com/symptom-intake-server/internal/modelstore"
	"github.com/symptom-intake-server/internal/repository"
	"github.com/symptom-intake-server/internal/service"
)

func main() {
	demoRecords := flag.Int("demo", 0, "seed N synthetic intake records on startup")
	flag.Parse()

	manager, err := config.NewManager()
	if err != nil {
		logrus.WithError(err).Fatal("Failed to load configuration")
	}
	if err := manager.Validate(); err != nil {
		logrus.WithError(err).Fatal("Configuration validation failed")
	}
	cfg := manager.GetConfig()

	logger := newLogger(cfg.Logging)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	corpusStore, records, cleanup, err := openStorage(ctx, manager, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to open storage")
	}
	defer cleanup()

	blobs, err := openModelStore(ctx, cfg.ModelStore, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to open model store")
	}

	engine := service.NewEngine(
		logger,
		domain.DefaultDiseaseProfiles(),
		corpus.NewSeededSource(corpusStore, logger),
		blobs,
		service.EngineConfig{
			MinConfidence: cfg.Engine.MinConfidence,
			FallbackMin:   cfg.Engine.FallbackMin,
			CacheSize:     cfg.Engine.CacheSize,
			ModelKey:      cfg.Engine.ModelKey,
		},
	)

	// A persisted model is a shortcut, not a requirement.
	if err := engine.LoadModel(ctx); err != nil {
		logger.WithError(err).Info("No persisted model, training from corpus")
		if err := engine.Train(ctx); err != nil {
			if errors.Is(err, domain.ErrEmptyCorpus) {
				logger.Warn("Training corpus empty, serving fallback answers only")
			} else {
				logger.WithError(err).Fatal("Initial training failed")
			}
		} else if err := engine.SaveModel(ctx); err != nil {
			logger.WithError(err).Warn("Trained model could not be persisted")
		}
	}

	if *demoRecords > 0 {
		generator := demo.NewGenerator(42, domain.DefaultDiseaseProfiles())
		if err := demo.Seed(ctx, generator, engine, records, *demoRecords); err != nil {
			logger.WithError(err).Fatal("Demo seeding failed")
		}
		logger.WithField("count", *demoRecords).Info("Demo records seeded")
	}

	server := api.NewServer(cfg.Server, logger, engine, corpusStore, records)
	if err := server.Start(ctx); err != nil {
		logger.WithError(err).Fatal("Server failed")
	}

	logger.Info("Server stopped")
}

func newLogger(cfg config.LoggingConfig) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stdout)

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	if cfg.Format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return logger
}

// openStorage builds the corpus store and intake repository for the
// configured backend and returns a cleanup function.
func openStorage(ctx context.Context, manager *config.Manager, logger *logrus.Logger) (domain.CorpusStore, domain.IntakeRepository, func(), error) {
	cfg := manager.GetConfig()

	switch cfg.Storage.Backend {
	case "postgres":
		runner, err := database.NewMigrationRunner(manager.PostgresURL(), cfg.Storage.MigrationsPath, logger)
		if err != nil {
			return nil, nil, nil, err
		}
		if err := runner.Up(); err != nil {
			runner.Close()
			return nil, nil, nil, err
		}
		runner.Close()

		pg := cfg.Storage.Postgres
		db, err := database.NewConnection(ctx, database.Config{
			Host:        pg.Host,
			Port:        pg.Port,
			Database:    pg.Database,
			Username:    pg.Username,
			Password:    pg.Password,
			SSLMode:     pg.SSLMode,
			MaxConns:    pg.MaxConns,
			MinConns:    pg.MinConns,
			MaxConnLife: pg.ConnMaxLifetime,
			MaxConnIdle: pg.ConnMaxIdleTime,
		}, logger)
		if err != nil {
			return nil, nil, nil, err
		}

		corpusStore, err := corpus.NewPostgresStoreFromURL(manager.PostgresDSN())
		if err != nil {
			db.Close()
			return nil, nil, nil, err
		}

		records := repository.NewPostgresIntakeRepository(db.Pool, logger)
		cleanup := func() {
			corpusStore.Close()
			db.Close()
		}
		return corpusStore, records, cleanup, nil

	default: // sqlite
		db, err := corpus.OpenSQLite(cfg.Storage.SQLitePath)
		if err != nil {
			return nil, nil, nil, err
		}

		corpusStore, err := corpus.NewSQLiteStoreWithDB(db)
		if err != nil {
			db.Close()
			return nil, nil, nil, err
		}

		records, err := repository.NewSQLiteIntakeRepository(db, logger)
		if err != nil {
			db.Close()
			return nil, nil, nil, err
		}

		return corpusStore, records, func() { db.Close() }, nil
	}
}

func openModelStore(ctx context.Context, cfg config.ModelStoreConfig, logger *logrus.Logger) (domain.BlobStore, error) {
	if cfg.Backend == "redis" {
		return modelstore.NewRedisStore(ctx, modelstore.RedisStoreConfig{
			URL: cfg.RedisURL,
			TTL: cfg.RedisTTL,
		}, logger)
	}
	return modelstore.NewFileStore(cfg.FileDir)
}

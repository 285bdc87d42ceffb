package main

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/zots0127/docdesk/internal/adapter/handler"
	"github.com/zots0127/docdesk/internal/domain/repository"
	"github.com/zots0127/docdesk/internal/infrastructure/events"
	infra "github.com/zots0127/docdesk/internal/infrastructure/repository"
	"github.com/zots0127/docdesk/internal/usecase"
	"github.com/zots0127/docdesk/pkg/config"
	"github.com/zots0127/docdesk/pkg/metrics"
	"github.com/zots0127/docdesk/pkg/middleware"
)

// app holds the wired service
type app struct {
	cfg    *config.Config
	logger *logrus.Logger

	db    *sql.DB
	mongo *mongo.Client

	snapshots repository.SnapshotRepository
	file      *infra.FileSnapshotRepository
	cache     *infra.CachedSnapshotRepository

	projects *usecase.ProjectListUseCase
	router   *gin.Engine
}

func newApp(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (_ *app, err error) {
	a := &app{cfg: cfg, logger: logger}
	defer func() {
		if err != nil {
			a.Close()
		}
	}()

	if cfg.Snapshot.Source == string(repository.SnapshotSourceSQL) || cfg.List.ViewedStore == "database" {
		a.db, err = infra.OpenDatabase(ctx, infra.DatabaseOptions{
			Dialect:         infra.Dialect(cfg.Database.Type),
			DSN:             cfg.Database.DSN(),
			MaxOpenConns:    cfg.Database.MaxOpenConns,
			MaxIdleConns:    cfg.Database.MaxIdleConns,
			ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
		})
		if err != nil {
			return nil, err
		}
	}

	source, err := a.snapshotSource(ctx)
	if err != nil {
		return nil, err
	}
	a.snapshots = source
	if cfg.Snapshot.CacheTTL > 0 {
		a.cache = infra.NewCachedSnapshotRepository(source, cfg.Snapshot.CacheTTL)
		a.snapshots = a.cache
		if a.file != nil {
			a.file.OnChange(a.cache.Invalidate)
		}
	}

	viewed, err := a.viewedRepository(ctx)
	if err != nil {
		return nil, err
	}

	a.projects = usecase.NewProjectListUseCase(a.snapshots, viewed, cfg.List.Options(), logger)
	health := usecase.NewHealthUseCase(infra.NewHealthRepository(a.db, a.snapshots), cfg.API.Version)
	a.router = newRouter(cfg, logger, a.projects, health)

	return a, nil
}

func (a *app) snapshotSource(ctx context.Context) (repository.SnapshotRepository, error) {
	sc := a.cfg.Snapshot
	switch repository.SnapshotSource(sc.Source) {
	case repository.SnapshotSourceFile:
		a.file = infra.NewFileSnapshotRepository(sc.File.Path, a.logger)
		return a.file, nil

	case repository.SnapshotSourceHTTP:
		return infra.NewHTTPSnapshotRepository(infra.HTTPSnapshotOptions{
			URL:         sc.HTTP.URL,
			APIKey:      sc.HTTP.APIKey,
			Timeout:     sc.HTTP.Timeout,
			MaxFailures: sc.HTTP.MaxFailures,
			OpenTimeout: sc.HTTP.OpenTimeout,
		}, a.logger), nil

	case repository.SnapshotSourceSQL:
		repo := infra.NewSQLSnapshotRepository(a.db, infra.Dialect(a.cfg.Database.Type))
		if err := repo.EnsureSchema(ctx); err != nil {
			return nil, err
		}
		return repo, nil

	case repository.SnapshotSourceMongo:
		client, err := infra.ConnectMongo(ctx, sc.Mongo.URI)
		if err != nil {
			return nil, err
		}
		a.mongo = client
		return infra.NewMongoSnapshotRepository(client.Database(sc.Mongo.Database)), nil

	case repository.SnapshotSourceS3:
		client, err := infra.NewS3Client(infra.S3SnapshotOptions{
			Endpoint:  sc.S3.Endpoint,
			Region:    sc.S3.Region,
			Bucket:    sc.S3.Bucket,
			Key:       sc.S3.Key,
			AccessKey: sc.S3.AccessKey,
			SecretKey: sc.S3.SecretKey,
		})
		if err != nil {
			return nil, err
		}
		return infra.NewS3SnapshotRepository(client, sc.S3.Bucket, sc.S3.Key), nil
	}
	return nil, fmt.Errorf("unsupported snapshot source: %s", sc.Source)
}

func (a *app) viewedRepository(ctx context.Context) (repository.ViewedRepository, error) {
	if a.cfg.List.ViewedStore == "memory" {
		return infra.NewMemoryViewedRepository(), nil
	}
	return infra.NewSQLViewedRepository(ctx, a.db, infra.Dialect(a.cfg.Database.Type))
}

// StartBackground starts the file watcher and event consumer; both stop with ctx
func (a *app) StartBackground(ctx context.Context) error {
	if a.file != nil && a.cfg.Snapshot.File.Watch {
		if err := a.file.Watch(ctx, a.cfg.Snapshot.File.Debounce); err != nil {
			return err
		}
	}

	if a.cfg.Events.Enabled {
		reader := events.NewReader(events.ReaderOptions{
			Brokers: a.cfg.Events.Brokers,
			Topic:   a.cfg.Events.Topic,
			GroupID: a.cfg.Events.GroupID,
		})
		consumer := events.NewConsumer(reader, a.cfg.Events.Topic, a, a.logger)
		go func() {
			if err := consumer.Run(ctx); err != nil {
				a.logger.WithError(err).Error("Event consumer stopped")
			}
		}()
	}
	return nil
}

// Invalidate drops every cached copy of the snapshot
func (a *app) Invalidate() {
	if a.file != nil {
		// also clears the cache through OnChange
		a.file.Invalidate()
		return
	}
	if a.cache != nil {
		a.cache.Invalidate()
	}
}

// Close releases database connections
func (a *app) Close() {
	if a.mongo != nil {
		ctx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := a.mongo.Disconnect(ctx); err != nil {
			a.logger.WithError(err).Warn("Failed to disconnect mongo")
		}
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.logger.WithError(err).Warn("Failed to close database")
		}
	}
}

func newRouter(cfg *config.Config, logger logrus.FieldLogger, projects *usecase.ProjectListUseCase, health *usecase.HealthUseCase) *gin.Engine {
	if l, ok := logger.(*logrus.Logger); !ok || !l.IsLevelEnabled(logrus.DebugLevel) {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	mwConfig := middleware.DefaultConfig()
	mwConfig.EnableCORS = cfg.API.CORS.Enabled
	mwConfig.AllowedOrigins = cfg.API.CORS.AllowedOrigins
	mwConfig.AllowedMethods = cfg.API.CORS.AllowedMethods
	mwConfig.AllowedHeaders = cfg.API.CORS.AllowedHeaders
	mwConfig.MaxAge = cfg.API.CORS.MaxAge
	mwConfig.SkipPaths = []string{"/health/live", cfg.Metrics.Path}
	middleware.NewMiddlewareChain(mwConfig, logger).Apply(router)

	if cfg.Metrics.Enabled {
		router.Use(metrics.GinMiddleware())
		router.GET(cfg.Metrics.Path, metrics.Handler())
	}

	handler.NewHealthHandler(health).RegisterRoutes(router)

	api := router.Group("/api", middleware.APIKey(cfg.API.Key))
	handler.NewProjectHandler(projects, logger).RegisterRoutes(api)

	return router
}

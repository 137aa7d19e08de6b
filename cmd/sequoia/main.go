package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Gobusters/ectoenv"
	"github.com/Gobusters/ectoinject"
	"github.com/Gobusters/ectologger"
	"github.com/Gobusters/ectologger/zapadapter"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/Ramsey-B/sequoia/config"
	batchrepo "github.com/Ramsey-B/sequoia/internal/repositories/batch"
	centerrepo "github.com/Ramsey-B/sequoia/internal/repositories/servicecenter"
	vendorrepo "github.com/Ramsey-B/sequoia/internal/repositories/vendor"
	"github.com/Ramsey-B/sequoia/pkg/database"
	"github.com/Ramsey-B/sequoia/pkg/events"
	"github.com/Ramsey-B/sequoia/pkg/expressions"
	"github.com/Ramsey-B/sequoia/pkg/graph"
	"github.com/Ramsey-B/sequoia/pkg/kafka"
	"github.com/Ramsey-B/sequoia/pkg/matching"
	"github.com/Ramsey-B/sequoia/pkg/middleware"
	"github.com/Ramsey-B/sequoia/pkg/models"
	"github.com/Ramsey-B/sequoia/pkg/redis"
	analyticsroutes "github.com/Ramsey-B/sequoia/pkg/routes/analytics"
	batchroutes "github.com/Ramsey-B/sequoia/pkg/routes/batch"
	"github.com/Ramsey-B/sequoia/pkg/routes/health"
	lineageroutes "github.com/Ramsey-B/sequoia/pkg/routes/lineage"
	centerroutes "github.com/Ramsey-B/sequoia/pkg/routes/servicecenter"
	vendorroutes "github.com/Ramsey-B/sequoia/pkg/routes/vendor"
	"github.com/Ramsey-B/sequoia/pkg/scoring"
	"github.com/Ramsey-B/sequoia/pkg/startup"
	"github.com/Ramsey-B/sequoia/pkg/tracing"
	"github.com/Ramsey-B/sequoia/pkg/tracing/exporters"
)

func main() {
	_ = godotenv.Load()

	var cfg config.Config
	if err := ectoenv.BindEnv(&cfg); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := newLogger(cfg)
	ctx := context.Background()

	if cfg.OTLPEnabled {
		exporter, err := exporters.NewOTLPExporter(ctx, exporters.OTLPConfig{
			Endpoint: cfg.OTLPEndpoint,
			Protocol: cfg.OTLPProtocol,
			Insecure: cfg.OTLPInsecure,
			Timeout:  10 * time.Second,
		})
		if err != nil {
			logger.WithError(err).Error("Failed to create OTLP exporter, continuing without trace export")
		} else {
			shutdown := tracing.Init(cfg.AppName, exporter)
			defer func() { _ = shutdown(context.Background()) }()
		}
	} else {
		// Spans still get real ids for log and error correlation, they just
		// are not exported anywhere.
		shutdown := tracing.Init(cfg.AppName, &exporters.ConsoleExporter{})
		defer func() { _ = shutdown(context.Background()) }()
	}

	// The filter runs against every outgoing event, so a bad expression is
	// a config error, not something to discover at emit time.
	evaluator := expressions.NewEvaluator()
	if cfg.EventFilterExpression != "" {
		if err := evaluator.Validate(cfg.EventFilterExpression); err != nil {
			logger.WithError(err).Errorf("EVENT_FILTER_EXPRESSION is not valid JMESPath: %s", cfg.EventFilterExpression)
			os.Exit(1)
		}
	}

	var (
		sqlxDB      *sqlx.DB
		db          database.DB
		redisClient *redis.Client
		producer    *kafka.Producer
		graphClient *graph.Client
		checker     *health.Checker
		e           *echo.Echo
	)

	manager := startup.NewStartup(logger, cfg.StartupMaxAttempts)

	manager.AddDependency(&startup.FuncDependency{
		Name: "postgres",
		StartFunc: func(ctx context.Context) error {
			dsn := fmt.Sprintf(
				"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
				cfg.DatabaseHost, cfg.DatabasePort, cfg.DatabaseUserName,
				cfg.DatabasePassword, cfg.DatabaseName, cfg.DatabaseSSLMode,
			)

			var conn *sqlx.DB
			var err error
			for attempt := 0; attempt <= cfg.DatabaseReconnectRetryCount; attempt++ {
				conn, err = sqlx.ConnectContext(ctx, cfg.DatabaseDriver, dsn)
				if err == nil {
					break
				}
				logger.WithError(err).Warnf("Database connection attempt %d failed", attempt+1)
				time.Sleep(time.Second)
			}
			if err != nil {
				return err
			}

			conn.SetMaxOpenConns(cfg.DatabaseMaxOpenConns)
			conn.SetMaxIdleConns(cfg.DatabaseMaxIdleConns)
			conn.SetConnMaxLifetime(cfg.DatabaseConnMaxLifetime)

			sqlxDB = conn
			db = database.NewDatabaseInstance(conn, logger)
			return nil
		},
		StopFunc: func(ctx context.Context) error {
			if db == nil {
				return nil
			}
			return db.Close()
		},
	})

	manager.AddDependency(&startup.FuncDependency{
		Name:  "migrations",
		Needs: []string{"postgres"},
		StartFunc: func(ctx context.Context) error {
			driver, err := migratepg.WithInstance(sqlxDB.DB, &migratepg.Config{})
			if err != nil {
				return err
			}
			ms := database.NewMigrationService(logger, &database.MigrationConfig{
				MigrationFolderPath: cfg.DatabaseMigrationFolderPath,
				Version:             uint(cfg.DatabaseMigrationVersion),
				Force:               cfg.DatabaseMigrationForce,
				AutoRollback:        cfg.DatabaseMigrationAutoRollback,
			})
			return ms.Migrate(cfg.DatabaseName, driver)
		},
	})

	if cfg.RedisEnabled {
		manager.AddDependency(&startup.FuncDependency{
			Name: "redis",
			StartFunc: func(ctx context.Context) error {
				client, err := redis.NewClient(redis.Config{
					Host:     cfg.RedisHost,
					Port:     cfg.RedisPort,
					Password: cfg.RedisPassword,
					DB:       cfg.RedisDB,
				}, logger)
				if err != nil {
					return err
				}
				redisClient = client
				return nil
			},
			StopFunc: func(ctx context.Context) error {
				if redisClient == nil {
					return nil
				}
				return redisClient.Close()
			},
		})
	}

	if cfg.KafkaEnabled {
		manager.AddDependency(&startup.FuncDependency{
			Name: "kafka",
			StartFunc: func(ctx context.Context) error {
				producer = kafka.NewProducer(kafka.ProducerConfig{
					Brokers:      cfg.KafkaBrokers,
					Topic:        cfg.KafkaEventsTopic,
					BatchSize:    cfg.KafkaBatchSize,
					BatchTimeout: time.Duration(cfg.KafkaBatchTimeout) * time.Millisecond,
					RequiredAcks: cfg.KafkaRequiredAcks,
					Compression:  cfg.KafkaCompression,
				}, logger)
				return nil
			},
			StopFunc: func(ctx context.Context) error {
				if producer == nil {
					return nil
				}
				return producer.Close()
			},
		})
	}

	if cfg.GraphEnabled {
		manager.AddDependency(&startup.FuncDependency{
			Name: "graph",
			StartFunc: func(ctx context.Context) error {
				client, err := graph.NewClient(graph.Config{
					Host:     cfg.GraphHost,
					Port:     cfg.GraphPort,
					Username: cfg.GraphUsername,
					Password: cfg.GraphPassword,
				}, logger)
				if err != nil {
					return err
				}
				if err := client.VerifyConnectivity(ctx); err != nil {
					return err
				}
				graphClient = client
				return nil
			},
			StopFunc: func(ctx context.Context) error {
				if graphClient == nil {
					return nil
				}
				return graphClient.Close(ctx)
			},
		})
	}

	httpNeeds := []string{"postgres", "migrations"}
	if cfg.RedisEnabled {
		httpNeeds = append(httpNeeds, "redis")
	}
	if cfg.KafkaEnabled {
		httpNeeds = append(httpNeeds, "kafka")
	}
	if cfg.GraphEnabled {
		httpNeeds = append(httpNeeds, "graph")
	}

	manager.AddDependency(&startup.FuncDependency{
		Name:  "http",
		Needs: httpNeeds,
		StartFunc: func(ctx context.Context) error {
			if err := registerDependencies(cfg, logger, db, redisClient, producer, graphClient, evaluator); err != nil {
				return err
			}

			e = buildServer(cfg, logger)

			var redisPinger health.Pinger
			if redisClient != nil {
				redisPinger = redisClient
			}
			var graphChecker health.ConnectivityChecker
			if graphClient != nil {
				graphChecker = graphClient
			}
			checker = health.NewChecker(db, redisPinger, graphChecker, cfg.ServiceVersion)
			checker.RegisterRoutes(e)

			go func() {
				addr := fmt.Sprintf(":%d", cfg.Port)
				if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
					logger.WithError(err).Error("HTTP server stopped unexpectedly")
				}
			}()
			return nil
		},
		StopFunc: func(ctx context.Context) error {
			if e == nil {
				return nil
			}
			return e.Shutdown(ctx)
		},
	})

	if err := manager.Start(ctx); err != nil {
		logger.WithError(err).Error("Startup failed")
		os.Exit(1)
	}

	checker.SetReady(true)
	logger.Infof("%s listening on port %d", cfg.AppName, cfg.Port)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutdown signal received")
	checker.SetReady(false)

	stopCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := manager.Stop(stopCtx); err != nil {
		logger.WithError(err).Error("Shutdown did not complete cleanly")
		os.Exit(1)
	}
	logger.Info("Shutdown complete")
}

func newLogger(cfg config.Config) ectologger.Logger {
	zapCfg := zap.NewProductionConfig()
	if cfg.PrettyLogs {
		zapCfg = zap.NewDevelopmentConfig()
	}
	if level, err := zapcore.ParseLevel(cfg.LogLevel); err == nil {
		zapCfg.Level = zap.NewAtomicLevelAt(level)
	}

	zapLogger, err := zapCfg.Build()
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	return zapadapter.NewZapEctoLogger(zapLogger, nil)
}

// registerDependencies constructs every injected handle and registers it on
// the default container. Routes resolve them per request.
func registerDependencies(
	cfg config.Config,
	logger ectologger.Logger,
	db database.DB,
	redisClient *redis.Client,
	producer *kafka.Producer,
	graphClient *graph.Client,
	evaluator *expressions.Evaluator,
) error {
	container, err := ectoinject.NewDIDefaultContainer()
	if err != nil {
		return err
	}

	if err := ectoinject.RegisterInstance[vendorrepo.VendorRepository](container, vendorrepo.NewRepository(db, logger)); err != nil {
		return err
	}
	if err := ectoinject.RegisterInstance[batchrepo.BatchRepository](container, batchrepo.NewRepository(db, logger)); err != nil {
		return err
	}
	if err := ectoinject.RegisterInstance[centerrepo.ServiceCenterRepository](container, centerrepo.NewRepository(db, logger)); err != nil {
		return err
	}
	if err := ectoinject.RegisterInstance[*scoring.Calculator](container, scoring.NewCalculator()); err != nil {
		return err
	}
	if err := ectoinject.RegisterInstance[*matching.Matcher](container, matching.NewMatcher(cfg.VendorMatchMinScore)); err != nil {
		return err
	}
	if err := ectoinject.RegisterInstance[*redis.AnalyticsCache](container, redis.NewAnalyticsCache(redisClient, cfg.AnalyticsCacheTTL, logger)); err != nil {
		return err
	}
	if err := ectoinject.RegisterInstance[*events.Emitter](container, events.NewEmitter(producer, evaluator, cfg.EventFilterExpression, logger)); err != nil {
		return err
	}
	if graphClient != nil {
		if err := ectoinject.RegisterInstance[*graph.LineageService](container, graph.NewLineageService(graphClient, logger)); err != nil {
			return err
		}
	}

	return nil
}

func buildServer(cfg config.Config, logger ectologger.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = middleware.Error(logger)

	e.Server.ReadTimeout = time.Duration(cfg.HttpServerReadTimeoutSeconds) * time.Second
	e.Server.WriteTimeout = time.Duration(cfg.HttpServerWriteTimeoutSeconds) * time.Second
	e.Server.IdleTimeout = time.Duration(cfg.HttpServerIdleTimeoutSeconds) * time.Second
	e.Server.ReadHeaderTimeout = time.Duration(cfg.ReadHeaderTimeoutSeconds) * time.Second
	e.Server.MaxHeaderBytes = cfg.MaxHeaderBytes

	e.Use(otelecho.Middleware(cfg.AppName))
	e.Use(middleware.Context())
	e.Use(middleware.Logger(logger))
	e.Use(middleware.Metrics())
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins: cfg.AllowOrigins,
		AllowMethods: cfg.AllowMethods,
	}))

	e.GET("/", func(c echo.Context) error {
		return c.JSON(http.StatusOK, models.MessageResponse{Message: "Admin API with Vendor Tracing is Online"})
	})
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	admin := e.Group("")
	if cfg.AuthEnabled {
		admin.Use(middleware.Authentication(logger, cfg.AuthIssuerURL, cfg.AuthClientID))
	} else {
		admin.Use(middleware.TestAuth())
	}

	vendorroutes.Register(admin)
	batchroutes.Register(admin)
	analyticsroutes.Register(admin)
	centerroutes.Register(admin)
	lineageroutes.Register(admin)

	return e
}

// Command server runs the compliance engine API.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"lekha/internal/eligibility"
	eligibilityHandler "lekha/internal/eligibility/handler"
	eligibilityMemory "lekha/internal/eligibility/store/memory"
	eligibilityPostgres "lekha/internal/eligibility/store/postgres"
	"lekha/internal/firm"
	firmHandler "lekha/internal/firm/handler"
	firmMemory "lekha/internal/firm/store/memory"
	firmPostgres "lekha/internal/firm/store/postgres"
	httpapi "lekha/internal/http"
	jwttoken "lekha/internal/jwt_token"
	"lekha/internal/platform/config"
	"lekha/internal/platform/database"
	"lekha/internal/platform/httpserver"
	"lekha/internal/platform/logger"
	platformRedis "lekha/internal/platform/redis"
	"lekha/internal/risk"
	riskHandler "lekha/internal/risk/handler"
	riskMetrics "lekha/internal/risk/metrics"
	riskMemory "lekha/internal/risk/store/memory"
	riskPostgres "lekha/internal/risk/store/postgres"
	"lekha/internal/rules"
	"lekha/internal/scheduler"
	"lekha/internal/tasks"
	tasksHandler "lekha/internal/tasks/handler"
	tasksMetrics "lekha/internal/tasks/metrics"
	tasksMemory "lekha/internal/tasks/store/memory"
	tasksPostgres "lekha/internal/tasks/store/postgres"
	"lekha/internal/trigger"
	triggerHandler "lekha/internal/trigger/handler"
	triggerMetrics "lekha/internal/trigger/metrics"
	triggerMemory "lekha/internal/trigger/store/memory"
	triggerPostgres "lekha/internal/trigger/store/postgres"
	triggerRedis "lekha/internal/trigger/store/redis"
	"lekha/internal/vault"
	vaultHandler "lekha/internal/vault/handler"
	vaultMemory "lekha/internal/vault/store/memory"
	vaultPostgres "lekha/internal/vault/store/postgres"
	"lekha/pkg/platform/audit"
	auditHandler "lekha/pkg/platform/audit/handler"
	"lekha/pkg/platform/audit/outbox"
	auditMemory "lekha/pkg/platform/audit/store/memory"
	auditPostgres "lekha/pkg/platform/audit/store/postgres"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log := logger.New(cfg.App)
	slog.SetDefault(log)

	db, err := database.Open(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	if db != nil {
		defer db.Close()
	}

	redisClient, err := platformRedis.New(ctx, cfg.Redis)
	if err != nil {
		return fmt.Errorf("connect redis: %w", err)
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	// Stores. Postgres when configured, process memory otherwise.
	var (
		auditStore audit.Store
		taskStore  tasks.Store
		firmStore  firm.Store
		eventStore trigger.EventStore
		riskStore  risk.Store
		recStore   eligibility.Store
		docStore   vault.Store
	)
	if db != nil {
		auditStore = auditPostgres.New(db)
		taskStore = tasksPostgres.New(db)
		firmStore = firmPostgres.New(db)
		eventStore = triggerPostgres.New(db)
		riskStore = riskPostgres.New(db)
		recStore = eligibilityPostgres.New(db)
		docStore = vaultPostgres.New(db)
	} else {
		log.Warn("no database configured, using in-memory stores")
		auditStore = auditMemory.NewInMemoryStore()
		taskStore = tasksMemory.NewInMemoryStore()
		firmStore = firmMemory.NewInMemoryStore()
		eventStore = triggerMemory.NewInMemoryEventStore()
		riskStore = riskMemory.NewInMemoryStore()
		recStore = eligibilityMemory.NewInMemoryStore()
		docStore = vaultMemory.NewInMemoryStore()
	}

	var deduper trigger.Deduper
	if redisClient != nil {
		deduper = triggerRedis.NewRedisDeduper(redisClient.Client)
	} else {
		log.Warn("no redis configured, window dedupe is process-local")
		deduper = triggerMemory.NewMemoryDeduper()
	}

	auditWriter, err := audit.NewWriter(auditStore, audit.WithLogger(log))
	if err != nil {
		return fmt.Errorf("build audit writer: %w", err)
	}

	catalog := rules.DefaultCatalog()
	if cfg.Rules.CatalogPath != "" {
		catalog, err = rules.LoadCatalogFile(cfg.Rules.CatalogPath)
		if err != nil {
			return fmt.Errorf("load rule catalog: %w", err)
		}
	}
	graph := rules.NewGraph(catalog)

	taskService, err := tasks.New(taskStore, auditWriter,
		tasks.WithLogger(log),
		tasks.WithMetrics(tasksMetrics.New()),
	)
	if err != nil {
		return fmt.Errorf("build task service: %w", err)
	}

	triggerService, err := trigger.New(graph, firmStore, taskService, eventStore, deduper, auditWriter,
		trigger.WithLogger(log),
		trigger.WithMetrics(triggerMetrics.New()),
	)
	if err != nil {
		return fmt.Errorf("build trigger service: %w", err)
	}

	riskService, err := risk.New(riskStore, taskStore, auditWriter,
		risk.WithLogger(log),
		risk.WithMetrics(riskMetrics.New()),
	)
	if err != nil {
		return fmt.Errorf("build risk service: %w", err)
	}

	eligibilityService, err := eligibility.New(recStore, firmStore, auditWriter,
		eligibility.WithLogger(log),
	)
	if err != nil {
		return fmt.Errorf("build eligibility service: %w", err)
	}

	firmService, err := firm.New(firmStore, auditWriter, firm.WithLogger(log))
	if err != nil {
		return fmt.Errorf("build firm service: %w", err)
	}

	vaultService, err := vault.New(docStore, taskService, auditWriter, vault.WithLogger(log))
	if err != nil {
		return fmt.Errorf("build vault service: %w", err)
	}

	validator := jwttoken.NewJWTService(cfg.Auth.JWTSigningKey, cfg.Auth.Issuer, cfg.Auth.Audience)

	router := httpapi.NewRouter(httpapi.Deps{
		Validator: validator,
		Logger:    log,
		Handlers: []httpapi.Registrar{
			firmHandler.New(firmService, log),
			triggerHandler.New(triggerService, eventStore, log),
			tasksHandler.New(taskService, log),
			riskHandler.New(riskService, log),
			eligibilityHandler.New(eligibilityService, log),
			vaultHandler.New(vaultService, log),
			auditHandler.New(auditWriter, log),
		},
		Ready: func() error {
			if db != nil {
				if err := db.PingContext(ctx); err != nil {
					return fmt.Errorf("postgres: %w", err)
				}
			}
			if redisClient != nil {
				if err := redisClient.Health(ctx); err != nil {
					return fmt.Errorf("redis: %w", err)
				}
			}
			return nil
		},
	})

	server := httpserver.New(cfg.HTTP, router)

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("http server listening", "addr", cfg.HTTP.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	// The audit outbox relay only makes sense when entries land in postgres.
	if db != nil && len(cfg.Kafka.Brokers) > 0 {
		producer, err := outbox.NewKafkaProducer(ctx, cfg.Kafka.Brokers, cfg.Kafka.AuditTopic)
		if err != nil {
			return fmt.Errorf("build kafka producer: %w", err)
		}
		defer producer.Close()

		relay := outbox.NewRelay(db, producer, log, cfg.Kafka.RelayInterval, cfg.Kafka.RelayBatch)
		g.Go(func() error {
			if err := relay.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				return fmt.Errorf("outbox relay: %w", err)
			}
			return nil
		})
	}

	if cfg.Scheduler.Enabled {
		sched, err := scheduler.New(cfg.Scheduler, taskService, riskService, firmStore,
			scheduler.WithLogger(log),
		)
		if err != nil {
			return fmt.Errorf("build scheduler: %w", err)
		}
		g.Go(func() error {
			sched.Run(ctx)
			return nil
		})
	}

	return g.Wait()
}

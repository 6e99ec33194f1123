package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	authhandler "stackwise/internal/auth/handler"
	"stackwise/internal/auth/oidc"
	"stackwise/internal/auth/store/revocation"
	"stackwise/internal/auth/token"
	inventoryhandler "stackwise/internal/inventory/handler"
	inventorystore "stackwise/internal/inventory/store"
	"stackwise/internal/platform/config"
	"stackwise/internal/platform/metrics"
	"stackwise/internal/platform/postgres"
	platformredis "stackwise/internal/platform/redis"
	reviewhandler "stackwise/internal/review/handler"
	reviewmetrics "stackwise/internal/review/metrics"
	"stackwise/internal/review/service"
	reviewstore "stackwise/internal/review/store"
	"stackwise/internal/seed"
	"stackwise/pkg/platform/audit"
	"stackwise/pkg/platform/audit/emitter"
	auditkafka "stackwise/pkg/platform/audit/store/kafka"
	"stackwise/pkg/platform/audit/store/nop"
	auditpostgres "stackwise/pkg/platform/audit/store/postgres"
	"stackwise/pkg/platform/httputil"
	authmw "stackwise/pkg/platform/middleware/auth"
	"stackwise/pkg/platform/middleware/metadata"
	request "stackwise/pkg/platform/middleware/request"
	"stackwise/pkg/platform/middleware/requesttime"
	"stackwise/pkg/platform/tx"
)

const (
	auditTopicPartitions  = 3
	auditTopicReplication = 1
)

type inventoryStore interface {
	seed.Inventory
	inventoryhandler.Store
}

type revocationStore interface {
	authhandler.Revoker
	authmw.RevocationChecker
}

// app holds the wired handlers and the resources to release on exit.
type app struct {
	cfg         config.Server
	log         *slog.Logger
	reg         *prometheus.Registry
	tokens      *token.Service
	revocations revocationStore
	auth        *authhandler.Handler
	review      *reviewhandler.Handler
	inventory   *inventoryhandler.Handler
	closers     []func()
}

func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

// buildApp selects mock or database backends from cfg and wires every
// service around them.
func buildApp(ctx context.Context, cfg config.Server, log *slog.Logger, reg *prometheus.Registry) (*app, error) {
	a := &app{cfg: cfg, log: log, reg: reg}
	ok := false
	defer func() {
		if !ok {
			a.close()
		}
	}()

	var (
		inv         inventoryStore
		reviews     service.Store
		auditStore  audit.Store
		auditReader audit.Reader
		txRunner    service.TxRunner
	)
	if cfg.Database.MockMode() {
		mem := inventorystore.NewInMemoryStore()
		inv = mem
		reviews = reviewstore.NewInMemoryStore(mem)
		nopAudit := nop.New()
		auditStore, auditReader = nopAudit, nopAudit
		log.Warn("DATABASE_URL not set; serving demo data from memory")
	} else {
		if cfg.Database.AutoMigrate {
			if err := postgres.Migrate(cfg.Database.URL); err != nil {
				return nil, fmt.Errorf("migrate database: %w", err)
			}
		}
		pool, err := postgres.Connect(ctx, cfg.Database.URL)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, pool.Close)
		inv = inventorystore.NewPostgres(pool)
		reviews = reviewstore.NewPostgres(pool)
		pgAudit := auditpostgres.New(pool)
		auditStore, auditReader = pgAudit, pgAudit
		txRunner = newReviewTx(tx.NewRunner(pool))
	}

	auditOpts := []emitter.Option{
		emitter.WithLogger(log),
		emitter.WithMetrics(emitter.NewMetrics(reg)),
	}
	if len(cfg.Kafka.Brokers) > 0 {
		client, err := auditkafka.NewClient(cfg.Kafka.Brokers)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, client.Close)
		if err := auditkafka.EnsureTopic(ctx, client, cfg.Kafka.AuditTopic, auditTopicPartitions, auditTopicReplication); err != nil {
			log.WarnContext(ctx, "audit topic not ensured", "topic", cfg.Kafka.AuditTopic, "error", err)
		}
		auditOpts = append(auditOpts, emitter.WithSink("audit_kafka", auditkafka.New(client, cfg.Kafka.AuditTopic)))
	}

	redisClient, err := platformredis.Connect(ctx, cfg.Redis)
	if err != nil {
		return nil, err
	}
	if redisClient != nil {
		a.closers = append(a.closers, func() { _ = redisClient.Close() })
		a.revocations = revocation.NewRedisStore(redisClient, revocation.WithRegisterer(reg))
	} else {
		a.revocations = revocation.NewInMemoryStore()
	}

	auditor := emitter.New(auditStore, auditOpts...)
	opts := []service.Option{
		service.WithLogger(log),
		service.WithMetrics(reviewmetrics.New(reg)),
	}
	if txRunner != nil {
		opts = append(opts, service.WithTxRunner(txRunner))
	}
	reviewService := service.New(reviews, inv, auditor, opts...)

	if cfg.Database.MockMode() {
		res, err := seed.Load(ctx, inv, reviewService, time.Now())
		if err != nil {
			return nil, fmt.Errorf("seed demo data: %w", err)
		}
		log.Info("demo data loaded",
			"users", res.Users,
			"applications", res.Applications,
			"grants", res.Grants,
			"campaigns", len(res.Campaigns),
		)
	}

	a.tokens = token.NewService(cfg.Auth.SessionSecret, cfg.Auth.SessionTTL)
	authOpts := []authhandler.Option{authhandler.WithSecureCookies(cfg.IsProduction())}
	if cfg.Auth.Enabled {
		provider, err := oidc.NewProvider(ctx, cfg.Auth)
		if err != nil {
			return nil, err
		}
		authOpts = append(authOpts, authhandler.WithProvider(provider))
	}
	a.auth = authhandler.New(a.tokens, a.revocations, log, authOpts...)
	a.review = reviewhandler.New(reviewService, auditReader, log)
	a.inventory = inventoryhandler.New(inv, log)

	ok = true
	return a, nil
}

// router mounts public sign-in routes and the session-gated API.
func (a *app) router() http.Handler {
	httpMetrics := metrics.New(a.reg)

	r := chi.NewRouter()
	r.Use(request.RequestID)
	r.Use(request.Logger(a.log))
	r.Use(request.Recovery(a.log))
	r.Use(metadata.ClientMetadata)
	r.Use(requesttime.Middleware)
	r.Use(httpMetrics.Middleware)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", metrics.Handler(a.reg))

	a.auth.Register(r)
	r.Group(func(r chi.Router) {
		r.Use(authmw.RequireAuth(token.NewMiddlewareAdapter(a.tokens), a.revocations, a.log))
		a.auth.RegisterProtected(r)
		a.review.Register(r)
		a.inventory.Register(r)
	})
	return r
}

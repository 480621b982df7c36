package main

import (
	"context"
	"fmt"
	"net/http"

	"github.com/redis/go-redis/v9"

	"logistix/internal/config"
	corenum "logistix/internal/core/numbering"
	"logistix/internal/core/tenant"
	"logistix/internal/domain/auth"
	"logistix/internal/domain/invoices"
	"logistix/internal/domain/numbering"
	"logistix/internal/domain/settings"
	"logistix/internal/domain/shipments"
	"logistix/internal/domain/trips"
	"logistix/internal/infrastructure/cache"
	v1 "logistix/internal/infrastructure/http/v1"
	"logistix/internal/infrastructure/http/v1/handlers"
	"logistix/internal/infrastructure/metrics"
	infranum "logistix/internal/infrastructure/numbering"
	"logistix/internal/infrastructure/storage/postgres"
	"logistix/internal/infrastructure/storage/postgres/auth_repo"
	"logistix/internal/infrastructure/storage/postgres/document_repo"
	"logistix/internal/infrastructure/storage/postgres/logistics_repo"
	"logistix/internal/infrastructure/storage/postgres/numbering_repo"
	"logistix/pkg/logger"
)

// app owns every long-lived dependency of the server.
type app struct {
	pool      *postgres.Pool
	redis     *redis.Client
	templates *cache.TemplateCache
	handler   http.Handler
}

func newApp(ctx context.Context, cfg *config.Config, log *logger.Logger) (*app, error) {
	a := &app{}

	// --- Database ---
	poolCfg := postgres.DefaultPoolConfig(cfg.DatabaseURL)
	poolCfg.MaxConns = int32(cfg.DBMaxConns)
	pool, err := postgres.NewPool(ctx, poolCfg)
	if err != nil {
		return nil, err
	}
	a.pool = pool
	txm := postgres.NewTxManager(pool)

	// --- Tenants ---
	registry := tenant.NewCachedRegistry(tenant.NewPostgresRegistry(pool), cfg.TenantCacheTTL)

	// --- Metrics ---
	var m *metrics.Metrics
	if cfg.MetricsEnabled {
		m = metrics.New()
		m.RegisterPool(pool)
	}

	// --- Numbering ---
	var templateStore corenum.TemplateStore = numbering_repo.NewTemplateRepo(txm)
	if cfg.TemplateCache {
		a.templates = cache.NewTemplateCache(templateStore, pool.Pool)
		// Warmup runs from the listener, after LISTEN and the flush that follows it.
		a.templates.WithWarmup(func(ctx context.Context) error {
			return prewarmTemplates(ctx, registry, a.templates, log)
		})
		templateStore = a.templates
		if m != nil {
			m.RegisterTemplateCache(a.templates)
		}
	}

	counters, err := a.counterStore(ctx, cfg, txm)
	if err != nil {
		a.Close()
		return nil, err
	}

	auditRepo, err := postgres.NewAuditRepo(txm)
	if err != nil {
		a.Close()
		return nil, err
	}

	tripRepo := logistics_repo.NewTripRepo(txm)
	settingsService := settings.NewService(templateStore).WithAudit(auditRepo)

	genOpts := []numbering.Option{}
	if m != nil {
		genOpts = append(genOpts, numbering.WithObserver(m))
	}
	generator := numbering.NewService(settingsService, counters, tripRepo, genOpts...)

	// --- Domain services ---
	invoiceOpts := []invoices.Option{invoices.WithAudit(auditRepo)}
	if cfg.GaplessInvoices {
		invoiceOpts = append(invoiceOpts, invoices.WithGaplessNumbering())
	}
	invoiceRepo := document_repo.NewInvoiceRepo(txm, postgres.NewBatchInserter(txm))

	jwtCfg := auth.DefaultJWTConfig(cfg.JWTSecret)
	jwtCfg.AccessTokenTTL = cfg.JWTTTL
	jwtService := auth.NewJWTService(jwtCfg)

	routerCfg := v1.RouterConfig{
		Release:         !cfg.IsDevelopment(),
		Logger:          log,
		Tenants:         registry,
		JWTValidator:    jwtService,
		Cookie:          handlers.CookieConfig{Name: cfg.SessionCookie, Secure: !cfg.IsDevelopment()},
		AuthService:     auth.NewService(auth_repo.NewUserRepo(txm), jwtService, auth.DefaultServiceConfig()),
		SettingsService: settingsService,
		History:         auditRepo,
		Numbers:         generator,
		Trips:           trips.NewService(tripRepo, generator, auditRepo),
		Shipments:       shipments.NewService(logistics_repo.NewShipmentRepo(txm), tripRepo, txm),
		Invoices:        invoices.NewService(invoiceRepo, tripRepo, generator, txm, invoiceOpts...),
		Health:          handlers.NewHealthHandler(version, pool, a.readinessChecks()),
	}
	if m != nil {
		routerCfg.Metrics = m
	}

	var h http.Handler = v1.NewRouter(routerCfg)
	if cfg.GzipEnabled {
		h = v1.WithCompression(h)
	}
	a.handler = h
	return a, nil
}

func (a *app) counterStore(ctx context.Context, cfg *config.Config, txm *postgres.TxManager) (corenum.CounterStore, error) {
	if cfg.CounterBackend != config.CounterRedis {
		return numbering_repo.NewCounterRepo(txm), nil
	}
	client, err := infranum.NewClient(ctx, infranum.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err != nil {
		return nil, fmt.Errorf("connect redis: %w", err)
	}
	a.redis = client
	return infranum.NewRedisCounter(client, ""), nil
}

func (a *app) readinessChecks() map[string]handlers.Pinger {
	checks := map[string]handlers.Pinger{"database": a.pool}
	if a.redis != nil {
		rdb := a.redis
		checks["redis"] = handlers.PingFunc(func(ctx context.Context) error {
			return rdb.Ping(ctx).Err()
		})
	}
	return checks
}

// prewarmTemplates loads templates of all active tenants so the first
// requests after a deploy do not all miss the cache.
func prewarmTemplates(ctx context.Context, registry tenant.Registry, c *cache.TemplateCache, log *logger.Logger) error {
	tenants, err := registry.ListActive(ctx)
	if err != nil {
		return fmt.Errorf("list tenants: %w", err)
	}
	ids := make([]string, len(tenants))
	for i, t := range tenants {
		ids[i] = t.ID
	}
	if err := c.Prewarm(ctx, ids, 8); err != nil {
		return err
	}
	log.Infow("numbering templates prewarmed", "tenants", len(ids))
	return nil
}

// Close releases connections.
func (a *app) Close() {
	if a.redis != nil {
		_ = a.redis.Close()
	}
	if a.pool != nil {
		a.pool.Close()
	}
}

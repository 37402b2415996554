package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"golang.org/x/sync/errgroup"

	"fieldgate/internal/audit"
	"fieldgate/internal/platform/config"
	"fieldgate/internal/platform/httpserver"
	"fieldgate/internal/platform/logger"
	platformredis "fieldgate/internal/platform/redis"
	"fieldgate/internal/principal"
	ratelimitmetrics "fieldgate/internal/ratelimit/metrics"
	ratelimitmw "fieldgate/internal/ratelimit/middleware"
	"fieldgate/internal/ratelimit/models"
	"fieldgate/internal/ratelimit/service"
	"fieldgate/internal/ratelimit/store/bucket"
	"fieldgate/internal/tenantctx"
	httptransport "fieldgate/internal/transport/http"
	"fieldgate/pkg/platform/middleware/metadata"
)

// main wires the request-authorization chain and keeps the server lifecycle
// small. Business logic lives behind the transport layer.
func main() {
	cfg := config.FromEnv()
	log := logger.New()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Rate limit bucket store: shared redis when configured, otherwise
	// per-process memory with a background sweeper.
	var bucketStore bucket.Store
	var memStore *bucket.InMemoryStore
	redisClient, err := platformredis.New(cfg.RedisURL)
	if err != nil {
		log.Error("redis unavailable", "error", err)
		os.Exit(1)
	}
	if redisClient != nil {
		defer redisClient.Close()
		bucketStore = bucket.NewRedisStore(redisClient.Client)
		log.Info("rate limiter using shared redis buckets")
	} else {
		memStore = bucket.NewInMemoryStore()
		bucketStore = memStore
		log.Info("rate limiter using per-process memory buckets")
	}

	limiter := service.New(bucketStore, cfg.RateLimit, cfg.RateWindow, log,
		service.WithMetrics(ratelimitmetrics.New()),
	)

	// Audit sink: postgres when configured, memory otherwise.
	var auditStore audit.Store
	if cfg.AuditDBDSN != "" {
		db, err := sql.Open("postgres", cfg.AuditDBDSN)
		if err != nil {
			log.Error("open audit database", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		if err := db.PingContext(ctx); err != nil {
			log.Error("audit database unreachable", "error", err)
			os.Exit(1)
		}
		auditStore = audit.NewPostgresStore(db)
	} else {
		auditStore = audit.NewMemoryStore()
	}
	publisher := audit.NewChannelPublisher(cfg.AuditBuffer, log)
	worker := audit.NewWorker(auditStore, publisher.Records(), log)

	resolver := principal.NewTokenResolver(cfg.JWTSigningKey)
	tenants := tenantctx.NewResolver(cfg.PublicPathPrefixes, log)
	rateLimit := ratelimitmw.New(limiter, log,
		ratelimitmw.WithExemptPrefixes(cfg.PublicPathPrefixes),
	)

	handler := httptransport.NewHandler(log)
	router := httptransport.NewRouter(handler, httptransport.ChainMiddleware{
		ClientMetadata: metadata.ClientMetadata,
		AuditRecorder:  audit.Recorder(publisher),
		Principal:      principal.Resolve(resolver, log),
		TenantContext:  tenants.Middleware,
		RateLimit: func(scope models.Scope) func(http.Handler) http.Handler {
			return rateLimit.RateLimit(scope)
		},
	})

	srv := httpserver.New(cfg.Addr, router)

	group, ctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		log.Info("starting fieldgate", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	group.Go(func() error {
		err := worker.Run(ctx)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})
	if memStore != nil {
		group.Go(func() error {
			err := memStore.Run(ctx, cfg.RateSweepInterval)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		})
	}
	group.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := group.Wait(); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
}

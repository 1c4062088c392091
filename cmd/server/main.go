package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"golang.org/x/sync/errgroup"

	claimservice "leadgate/internal/claim"
	claimhandler "leadgate/internal/claim/handler"
	"leadgate/internal/event"
	"leadgate/internal/jwttoken"
	leadhandler "leadgate/internal/lead/handler"
	leadmetrics "leadgate/internal/lead/metrics"
	leadservice "leadgate/internal/lead/service"
	leadstore "leadgate/internal/lead/store"
	"leadgate/internal/notify"
	opshandler "leadgate/internal/ops/handler"
	"leadgate/internal/platform/config"
	"leadgate/internal/platform/httpserver"
	"leadgate/internal/platform/logger"
	platformredis "leadgate/internal/platform/redis"
	"leadgate/internal/tenant/registry"
	"leadgate/internal/throttle"
	"leadgate/internal/throttle/bucket"
	httptransport "leadgate/internal/transport/http"
)

const eventBufferSize = 256

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "fatal:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg := config.FromEnv()
	log := logger.New(cfg.Dev())

	reg, err := loadRegistry(cfg, log)
	if err != nil {
		return fmt.Errorf("load tenant registry: %w", err)
	}
	log.Info("tenant registry loaded", "tenants", reg.Len())

	st, closeStore, storeHealth, err := openStore(cfg)
	if err != nil {
		return fmt.Errorf("open lead store: %w", err)
	}
	defer closeStore()

	redisClient, err := platformredis.New(cfg.RedisURL)
	if err != nil {
		return fmt.Errorf("connect redis: %w", err)
	}
	if redisClient != nil {
		defer func() { _ = redisClient.Close() }()
	}

	var ready []httptransport.ReadyCheck
	if storeHealth != nil {
		ready = append(ready, httptransport.ReadyCheck{Name: "postgres", Check: storeHealth})
	}
	if redisClient != nil {
		ready = append(ready, httptransport.ReadyCheck{Name: "redis", Check: redisClient.Health})
	}

	sink, closeSink, err := openSink(cfg, log)
	if err != nil {
		return fmt.Errorf("open event sink: %w", err)
	}

	emitter, worker := event.New(sink, eventBufferSize, log)

	m := leadmetrics.New()
	dispatcher := notify.NewTelegram(cfg.TelegramAPIBase, cfg.DispatchTimeout, log)

	leads := leadservice.New(st, reg, dispatcher, log,
		leadservice.WithMetrics(m),
		leadservice.WithEvents(emitter),
	)
	claims := claimservice.New(st, reg, dispatcher, log,
		claimservice.WithMetrics(m),
		claimservice.WithEvents(emitter),
	)

	tokens := jwttoken.NewService(cfg.JWTSigningKey, "leadgate")
	if cfg.OpsCredentialHash == "" {
		log.Warn("no ops credential hash configured; the token endpoint will reject all requests")
	}

	var throttleStore bucket.Store
	if redisClient != nil {
		throttleStore = bucket.NewRedis(redisClient.Client)
	} else {
		throttleStore = bucket.NewInMemory()
	}
	limiter := throttle.New(throttleStore, reg, cfg.IntakePerMinute, log,
		throttle.WithMetrics(m),
	)

	router := httptransport.New(httptransport.Deps{
		Lead:      leadhandler.New(leads, log, cfg.Dev()),
		Claim:     claimhandler.New(claims, log),
		Ops:       opshandler.New(tokens, cfg.OpsCredentialHash, log),
		Throttle:  limiter,
		Validator: jwttoken.NewServiceAdapter(tokens),
		Ready:     ready,
		Logger:    log,
	})

	srv := httpserver.New(cfg.Addr, router)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return worker.Run(gctx)
	})

	g.Go(func() error {
		log.Info("starting leadgate", "addr", cfg.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown: %w", err)
		}
		return nil
	})

	err = g.Wait()

	flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	closeSink(flushCtx)

	log.Info("leadgate stopped")
	return err
}

// loadRegistry builds the tenant registry from the configured file, or
// from inline JSON when no file is set.
func loadRegistry(cfg config.Server, log *slog.Logger) (*registry.Registry, error) {
	if cfg.TenantsFile != "" {
		return registry.Load(cfg.TenantsFile, registry.WithLogger(log))
	}
	if cfg.TenantsJSON != "" {
		return registry.Parse([]byte(cfg.TenantsJSON), registry.WithLogger(log))
	}
	return nil, errors.New("no tenants configured: set LEADGATE_TENANTS_FILE or LEADGATE_TENANTS_JSON")
}

// openStore picks the durable lead store: Postgres when DATABASE_URL is
// set, otherwise the append-only JSONL log. The returned health func is
// nil for the local file store.
func openStore(cfg config.Server) (leadstore.Store, func(), func(context.Context) error, error) {
	if cfg.DatabaseURL != "" {
		db, err := sql.Open("postgres", cfg.DatabaseURL)
		if err != nil {
			return nil, nil, nil, err
		}
		if err := db.Ping(); err != nil {
			_ = db.Close()
			return nil, nil, nil, err
		}
		pg := leadstore.NewPostgres(db)
		if err := pg.EnsureSchema(context.Background()); err != nil {
			_ = db.Close()
			return nil, nil, nil, err
		}
		return pg, func() { _ = db.Close() }, db.PingContext, nil
	}

	jl, err := leadstore.OpenJSONL(cfg.LeadLog)
	if err != nil {
		return nil, nil, nil, err
	}
	return jl, func() { _ = jl.Close() }, nil, nil
}

// openSink picks the event sink: Kafka when brokers are configured, a
// debug log sink in development, otherwise a no-op.
func openSink(cfg config.Server, log *slog.Logger) (event.Sink, func(context.Context), error) {
	if len(cfg.KafkaBrokers) > 0 {
		k, err := event.NewKafka(cfg.KafkaBrokers, cfg.KafkaTopic)
		if err != nil {
			return nil, nil, err
		}
		return k, func(ctx context.Context) { _ = k.Close(ctx) }, nil
	}
	if cfg.Dev() {
		return event.LogSink{Logger: log}, func(context.Context) {}, nil
	}
	return event.Nop{}, func(context.Context) {}, nil
}

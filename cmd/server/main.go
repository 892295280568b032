package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"novapos/internal/config"
	"novapos/internal/infra"
	"novapos/internal/metrics"
	"novapos/internal/middleware"
	"novapos/internal/moneda"
	"novapos/internal/repository"
	"novapos/internal/router"
	"novapos/internal/service"
	"novapos/internal/worker"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	// Structured logger: pretty in development, JSON in production
	if cfg.Env != "production" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}

	store, cerrar, err := abrirStore(cfg)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.StoreDriver).Msg("failed to open local store")
	}
	defer cerrar()

	usdBs, eurBs, _ := cfg.Tasas()
	tasas := moneda.NewRegistro(moneda.NuevasTasas(usdBs, eurBs))
	loc, _ := cfg.Location()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ── Remote delivery ──────────────────────────────────────────────────────
	m := metrics.NewMetrics(nil)
	remoto := infra.NewRemoteClient(cfg.RemoteURL, cfg.RemoteTimeout())
	cb := infra.NewCircuitBreaker(infra.DefaultCBConfig())
	outbox := repository.NewOutboxRepository(store)

	dispatcher := worker.NewDispatcher(worker.DispatcherConfig{
		Outbox:      outbox,
		Pusher:      remoto,
		CB:          cb,
		Metrics:     m,
		MaxIntentos: cfg.OutboxMaxRetries,
		BackoffBase: cfg.OutboxRetryInterval(),
	})

	ledger := service.NewLedgerService(service.LedgerDeps{
		Store:   store,
		Outbox:  outbox,
		Remoto:  remoto,
		Cola:    dispatcher,
		Metrics: m,
	})
	if err := ledger.Cargar(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to load ledger")
	}

	if remoto.Configurado() {
		worker.StartWorkerPool(ctx, dispatcher, cfg.WorkerPoolSize)
		worker.StartRetryCron(ctx, worker.RetryCronConfig{
			Outbox:     outbox,
			Dispatcher: dispatcher,
			CB:         cb,
			Intervalo:  cfg.OutboxRetryInterval(),
		})
	} else {
		log.Warn().Msg("REMOTE_URL not set: running offline, nothing will be sent")
	}

	res := ledger.Inicializar(ctx)
	log.Info().Bool("remoto", res.Remoto).Str("motivo", res.Motivo).Msg("initial sync finished")

	limiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	limiter.StartPurge(ctx.Done())

	r := router.New(router.Deps{
		Env:      cfg.Env,
		Store:    store,
		Outbox:   outbox,
		Remoto:   remoto,
		CB:       cb,
		Ledger:   ledger,
		Tasas:    tasas,
		Location: loc,
		Limiter:  limiter,
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown on SIGINT / SIGTERM
	go func() {
		log.Info().Msgf("NovaPOS backend listening on :%d", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server…")
	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("forced shutdown")
	}
	log.Info().Msg("server exited")
}

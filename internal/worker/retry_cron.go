package worker

// retry_cron.go
// Periodically re-delivers outbox commands whose next attempt is due. This
// also drains whatever a previous run left in the outbox.

import (
	"context"
	"time"

	"novapos/internal/infra"
	"novapos/internal/repository"

	"github.com/rs/zerolog/log"
)

const (
	retryTickInterval     = 30 * time.Second
	retryBatchSize        = 10
	maxRetryBackoff       = 30 * time.Minute
	MaxIntentosPorDefecto = 5
)

type RetryCronConfig struct {
	Outbox     repository.OutboxRepository
	Dispatcher *Dispatcher
	CB         *infra.CircuitBreaker
	Intervalo  time.Duration
}

// StartRetryCron runs one pass right away and then one per tick until ctx
// is cancelled.
func StartRetryCron(ctx context.Context, cfg RetryCronConfig) {
	intervalo := cfg.Intervalo
	if intervalo <= 0 {
		intervalo = retryTickInterval
	}
	go func() {
		ticker := time.NewTicker(intervalo)
		defer ticker.Stop()

		log.Info().Dur("interval", intervalo).Msg("retry_cron: started")
		ProcesarReintentos(ctx, cfg)

		for {
			select {
			case <-ctx.Done():
				log.Info().Msg("retry_cron: shutting down")
				return
			case <-ticker.C:
				ProcesarReintentos(ctx, cfg)
			}
		}
	}()
}

// ProcesarReintentos delivers one batch of due commands and returns how many
// were attempted.
func ProcesarReintentos(ctx context.Context, cfg RetryCronConfig) int {
	if cfg.CB != nil && cfg.CB.State() == infra.CBOpen {
		log.Debug().Msg("retry_cron: circuit breaker is open, skipping tick")
		return 0
	}

	listos, err := cfg.Outbox.Listos(ctx, time.Now(), retryBatchSize)
	if err != nil {
		log.Error().Err(err).Msg("retry_cron: failed to query outbox")
		return 0
	}
	if len(listos) == 0 {
		return 0
	}

	log.Info().Int("count", len(listos)).Msg("retry_cron: delivering pending commands")

	intentados := 0
	for _, cmd := range listos {
		if cfg.CB != nil && cfg.CB.State() == infra.CBOpen {
			log.Debug().Msg("retry_cron: circuit breaker opened mid-batch, stopping")
			break
		}
		_ = cfg.Dispatcher.Procesar(ctx, cmd)
		intentados++
	}
	return intentados
}

// computeRetryBackoff doubles base per failed attempt, capped at 30 minutes.
func computeRetryBackoff(intentos int, base time.Duration) time.Duration {
	if intentos < 1 {
		intentos = 1
	}
	d := base
	for i := 1; i < intentos; i++ {
		d *= 2
		if d >= maxRetryBackoff {
			return maxRetryBackoff
		}
	}
	return d
}

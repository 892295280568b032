package worker

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"novapos/internal/infra"
	"novapos/internal/metrics"
	"novapos/internal/model"
	"novapos/internal/repository"

	"github.com/rs/zerolog/log"
)

// Pusher delivers one action to the remote.
type Pusher interface {
	Push(ctx context.Context, accion model.Accion, payload json.RawMessage) error
}

type DispatcherConfig struct {
	Outbox      repository.OutboxRepository
	Pusher      Pusher
	CB          *infra.CircuitBreaker
	Metrics     *metrics.Metrics
	MaxIntentos int
	BackoffBase time.Duration
	Buffer      int
}

// Dispatcher hands outbox commands to the worker pool through a buffered
// channel. The outbox stays the source of truth: a command dropped from the
// channel is still picked up by the retry cron.
type Dispatcher struct {
	cola        chan model.ComandoRemoto
	outbox      repository.OutboxRepository
	pusher      Pusher
	cb          *infra.CircuitBreaker
	metrics     *metrics.Metrics
	maxIntentos int
	base        time.Duration
	now         func() time.Time
}

func NewDispatcher(cfg DispatcherConfig) *Dispatcher {
	if cfg.MaxIntentos <= 0 {
		cfg.MaxIntentos = MaxIntentosPorDefecto
	}
	if cfg.BackoffBase <= 0 {
		cfg.BackoffBase = retryTickInterval
	}
	if cfg.Buffer <= 0 {
		cfg.Buffer = 64
	}
	return &Dispatcher{
		cola:        make(chan model.ComandoRemoto, cfg.Buffer),
		outbox:      cfg.Outbox,
		pusher:      cfg.Pusher,
		cb:          cfg.CB,
		metrics:     cfg.Metrics,
		maxIntentos: cfg.MaxIntentos,
		base:        cfg.BackoffBase,
		now:         time.Now,
	}
}

// Encolar never blocks the caller.
func (d *Dispatcher) Encolar(cmd model.ComandoRemoto) {
	select {
	case d.cola <- cmd:
	default:
		log.Warn().
			Str("comando_id", cmd.ID).
			Str("accion", string(cmd.Accion)).
			Msg("dispatcher: queue full, leaving command to retry cron")
	}
}

// StartWorkerPool launches numWorkers goroutines draining the queue until
// ctx is cancelled.
func StartWorkerPool(ctx context.Context, d *Dispatcher, numWorkers int) {
	if numWorkers <= 0 {
		numWorkers = 1
	}
	for i := 0; i < numWorkers; i++ {
		go runWorker(ctx, d, i)
	}
	log.Info().Msgf("worker pool started with %d workers", numWorkers)
}

func runWorker(ctx context.Context, d *Dispatcher, id int) {
	for {
		select {
		case <-ctx.Done():
			log.Info().Msgf("worker %d shutting down", id)
			return
		case cmd := <-d.cola:
			_ = d.Procesar(ctx, cmd)
		}
	}
}

// Procesar delivers one command and updates the outbox with the outcome:
// removed on success, rescheduled with backoff on failure, dead-lettered
// once it runs out of attempts.
func (d *Dispatcher) Procesar(ctx context.Context, cmd model.ComandoRemoto) error {
	push := func() error { return d.pusher.Push(ctx, cmd.Accion, cmd.Payload) }
	var err error
	if d.cb != nil {
		err = d.cb.Execute(push)
	} else {
		err = push()
	}

	if errors.Is(err, infra.ErrCircuitOpen) {
		// Not an attempt; just wait for the breaker.
		proximo := d.now().Add(d.base)
		cmd.ProximoIntento = &proximo
		if uerr := d.outbox.Actualizar(ctx, cmd); uerr != nil {
			log.Error().Err(uerr).Str("comando_id", cmd.ID).Msg("dispatcher: failed to reschedule command")
		}
		return err
	}

	d.metrics.Push(string(cmd.Accion), err)
	if err == nil {
		if derr := d.outbox.Eliminar(ctx, cmd.ID); derr != nil {
			log.Error().Err(derr).Str("comando_id", cmd.ID).Msg("dispatcher: delivered but could not clear outbox entry")
		}
		log.Info().
			Str("comando_id", cmd.ID).
			Str("accion", string(cmd.Accion)).
			Int("intentos", cmd.Intentos+1).
			Msg("dispatcher: command delivered")
		d.actualizarPendientes(ctx)
		return nil
	}

	d.registrarFallo(ctx, cmd, err)
	return err
}

func (d *Dispatcher) registrarFallo(ctx context.Context, cmd model.ComandoRemoto, causa error) {
	cmd.Intentos++
	msg := causa.Error()
	cmd.UltimoError = &msg

	if cmd.Intentos >= d.maxIntentos {
		cmd.ProximoIntento = nil
		SendToDLQ(ctx, d.outbox, d.metrics, cmd, msg)
		d.actualizarPendientes(ctx)
		return
	}

	proximo := d.now().Add(computeRetryBackoff(cmd.Intentos, d.base))
	cmd.ProximoIntento = &proximo
	if err := d.outbox.Actualizar(ctx, cmd); err != nil {
		log.Error().Err(err).Str("comando_id", cmd.ID).Msg("dispatcher: failed to record attempt")
	}
	log.Warn().
		Err(causa).
		Str("comando_id", cmd.ID).
		Str("accion", string(cmd.Accion)).
		Int("intentos", cmd.Intentos).
		Time("proximo_intento", proximo).
		Msg("dispatcher: push failed, scheduled next attempt")
}

func (d *Dispatcher) actualizarPendientes(ctx context.Context) {
	if d.metrics == nil {
		return
	}
	pend, err := d.outbox.Pendientes(ctx)
	if err == nil {
		d.metrics.Pendientes(len(pend))
	}
}

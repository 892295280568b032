package worker

// dlq.go: commands that ran out of attempts are parked in the dead-letter
// list of the local store for manual inspection.

import (
	"context"

	"novapos/internal/metrics"
	"novapos/internal/model"
	"novapos/internal/repository"

	"github.com/rs/zerolog/log"
)

// SendToDLQ removes cmd from the outbox and appends it to the dead-letter list.
func SendToDLQ(ctx context.Context, outbox repository.OutboxRepository, m *metrics.Metrics, cmd model.ComandoRemoto, motivo string) {
	if err := outbox.MoverADLQ(ctx, cmd, motivo); err != nil {
		log.Error().Err(err).Str("comando_id", cmd.ID).Msg("dlq: failed to move command")
		return
	}
	m.DeadLetter(string(cmd.Accion))

	log.Warn().
		Str("comando_id", cmd.ID).
		Str("accion", string(cmd.Accion)).
		Str("reason", motivo).
		Int("attempts", cmd.Intentos).
		Msg("dlq: command moved to dead letter list")
}

// DLQLength returns the number of dead-lettered commands for monitoring.
func DLQLength(ctx context.Context, outbox repository.OutboxRepository) (int, error) {
	dlq, err := outbox.DLQ(ctx)
	if err != nil {
		return 0, err
	}
	return len(dlq), nil
}

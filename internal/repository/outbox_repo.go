package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"novapos/internal/model"
)

// OutboxRepository holds remote writes that still have to be delivered and
// the dead-letter list of those that gave up.
type OutboxRepository interface {
	Agregar(ctx context.Context, cmd model.ComandoRemoto) error
	Pendientes(ctx context.Context) ([]model.ComandoRemoto, error)
	// Listos returns up to limite commands whose next attempt is due, oldest
	// sequence first.
	Listos(ctx context.Context, ahora time.Time, limite int) ([]model.ComandoRemoto, error)
	Actualizar(ctx context.Context, cmd model.ComandoRemoto) error
	Eliminar(ctx context.Context, id string) error
	MoverADLQ(ctx context.Context, cmd model.ComandoRemoto, motivo string) error
	DLQ(ctx context.Context) ([]model.EntradaDLQ, error)
}

type outboxRepo struct {
	mu sync.Mutex
	kv KVRepository
}

// NewOutboxRepository keeps the outbox as two documents of the local store.
func NewOutboxRepository(kv KVRepository) OutboxRepository {
	return &outboxRepo{kv: kv}
}

func (r *outboxRepo) cargar(ctx context.Context) ([]model.ComandoRemoto, error) {
	cmds := []model.ComandoRemoto{}
	if _, err := CargarJSON(ctx, r.kv, ClaveOutbox, &cmds); err != nil {
		return nil, fmt.Errorf("outbox: %w", err)
	}
	return cmds, nil
}

func (r *outboxRepo) guardar(ctx context.Context, cmds []model.ComandoRemoto) error {
	lote := Lote{}
	if err := lote.JSON(ClaveOutbox, cmds); err != nil {
		return err
	}
	return r.kv.GuardarLote(ctx, lote)
}

func (r *outboxRepo) Agregar(ctx context.Context, cmd model.ComandoRemoto) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cmds, err := r.cargar(ctx)
	if err != nil {
		return err
	}
	return r.guardar(ctx, append(cmds, cmd))
}

func (r *outboxRepo) Pendientes(ctx context.Context) ([]model.ComandoRemoto, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cmds, err := r.cargar(ctx)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(cmds, func(i, j int) bool { return cmds[i].Seq < cmds[j].Seq })
	return cmds, nil
}

func (r *outboxRepo) Listos(ctx context.Context, ahora time.Time, limite int) ([]model.ComandoRemoto, error) {
	cmds, err := r.Pendientes(ctx)
	if err != nil {
		return nil, err
	}
	listos := make([]model.ComandoRemoto, 0, limite)
	for _, c := range cmds {
		if len(listos) >= limite {
			break
		}
		if c.ProximoIntento == nil || !c.ProximoIntento.After(ahora) {
			listos = append(listos, c)
		}
	}
	return listos, nil
}

func (r *outboxRepo) Actualizar(ctx context.Context, cmd model.ComandoRemoto) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cmds, err := r.cargar(ctx)
	if err != nil {
		return err
	}
	for i := range cmds {
		if cmds[i].ID == cmd.ID {
			cmds[i] = cmd
			return r.guardar(ctx, cmds)
		}
	}
	return nil
}

func (r *outboxRepo) Eliminar(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cmds, err := r.cargar(ctx)
	if err != nil {
		return err
	}
	return r.guardar(ctx, quitar(cmds, id))
}

func (r *outboxRepo) MoverADLQ(ctx context.Context, cmd model.ComandoRemoto, motivo string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cmds, err := r.cargar(ctx)
	if err != nil {
		return err
	}
	dlq := []model.EntradaDLQ{}
	if _, err := CargarJSON(ctx, r.kv, ClaveDLQ, &dlq); err != nil {
		return fmt.Errorf("dlq: %w", err)
	}
	dlq = append(dlq, model.EntradaDLQ{Comando: cmd, Motivo: motivo, FallidoEn: time.Now()})

	lote := Lote{}
	if err := lote.JSON(ClaveOutbox, quitar(cmds, cmd.ID)); err != nil {
		return err
	}
	if err := lote.JSON(ClaveDLQ, dlq); err != nil {
		return err
	}
	return r.kv.GuardarLote(ctx, lote)
}

func (r *outboxRepo) DLQ(ctx context.Context) ([]model.EntradaDLQ, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	dlq := []model.EntradaDLQ{}
	if _, err := CargarJSON(ctx, r.kv, ClaveDLQ, &dlq); err != nil {
		return nil, fmt.Errorf("dlq: %w", err)
	}
	return dlq, nil
}

func quitar(cmds []model.ComandoRemoto, id string) []model.ComandoRemoto {
	out := cmds[:0]
	for _, c := range cmds {
		if c.ID != id {
			out = append(out, c)
		}
	}
	return out
}

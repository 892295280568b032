package repository_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"novapos/internal/model"
	"novapos/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func comando(id string, seq int64, proximo *time.Time) model.ComandoRemoto {
	return model.ComandoRemoto{
		ID:             id,
		Seq:            seq,
		Accion:         model.AccionGuardarCliente,
		Payload:        json.RawMessage(`{"id":"C9"}`),
		ProximoIntento: proximo,
		CreadoEn:       time.Now(),
	}
}

func TestOutbox_ListosRespetaProximoIntentoYOrden(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewOutboxRepository(repository.NewMemoriaKVRepository())
	ahora := time.Now()
	futuro := ahora.Add(time.Hour)
	pasado := ahora.Add(-time.Minute)

	require.NoError(t, repo.Agregar(ctx, comando("b", 2, &pasado)))
	require.NoError(t, repo.Agregar(ctx, comando("a", 1, nil)))
	require.NoError(t, repo.Agregar(ctx, comando("c", 3, &futuro)))

	listos, err := repo.Listos(ctx, ahora, 10)
	require.NoError(t, err)
	require.Len(t, listos, 2)
	assert.Equal(t, "a", listos[0].ID)
	assert.Equal(t, "b", listos[1].ID)

	listos, err = repo.Listos(ctx, ahora, 1)
	require.NoError(t, err)
	assert.Len(t, listos, 1)
}

func TestOutbox_ActualizarYEliminar(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewOutboxRepository(repository.NewMemoriaKVRepository())
	require.NoError(t, repo.Agregar(ctx, comando("a", 1, nil)))

	cmd := comando("a", 1, nil)
	cmd.Intentos = 2
	require.NoError(t, repo.Actualizar(ctx, cmd))

	pend, err := repo.Pendientes(ctx)
	require.NoError(t, err)
	require.Len(t, pend, 1)
	assert.Equal(t, 2, pend[0].Intentos)

	require.NoError(t, repo.Eliminar(ctx, "a"))
	pend, err = repo.Pendientes(ctx)
	require.NoError(t, err)
	assert.Empty(t, pend)
}

func TestOutbox_MoverADLQ(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewOutboxRepository(repository.NewMemoriaKVRepository())
	require.NoError(t, repo.Agregar(ctx, comando("a", 1, nil)))
	require.NoError(t, repo.Agregar(ctx, comando("b", 2, nil)))

	require.NoError(t, repo.MoverADLQ(ctx, comando("a", 1, nil), "remoto: status 500"))

	pend, err := repo.Pendientes(ctx)
	require.NoError(t, err)
	require.Len(t, pend, 1)
	assert.Equal(t, "b", pend[0].ID)

	dlq, err := repo.DLQ(ctx)
	require.NoError(t, err)
	require.Len(t, dlq, 1)
	assert.Equal(t, "a", dlq[0].Comando.ID)
	assert.Equal(t, "remoto: status 500", dlq[0].Motivo)
}

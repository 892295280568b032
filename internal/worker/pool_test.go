package worker

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"novapos/internal/infra"
	"novapos/internal/model"
	"novapos/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePusher struct {
	mu       sync.Mutex
	fallar   error
	llegados []model.Accion
}

func (f *fakePusher) Push(_ context.Context, accion model.Accion, _ json.RawMessage) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fallar != nil {
		return f.fallar
	}
	f.llegados = append(f.llegados, accion)
	return nil
}

func (f *fakePusher) entregados() []model.Accion {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]model.Accion(nil), f.llegados...)
}

func nuevoComando(id string, seq int64) model.ComandoRemoto {
	return model.ComandoRemoto{
		ID:       id,
		Seq:      seq,
		Accion:   model.AccionGuardarVenta,
		Payload:  json.RawMessage(`{"header":{"id":"V1"}}`),
		CreadoEn: time.Now(),
	}
}

func TestProcesar_ExitoLimpiaOutbox(t *testing.T) {
	ctx := context.Background()
	outbox := repository.NewOutboxRepository(repository.NewMemoriaKVRepository())
	pusher := &fakePusher{}
	d := NewDispatcher(DispatcherConfig{Outbox: outbox, Pusher: pusher})

	cmd := nuevoComando("a", 1)
	require.NoError(t, outbox.Agregar(ctx, cmd))
	require.NoError(t, d.Procesar(ctx, cmd))

	pend, err := outbox.Pendientes(ctx)
	require.NoError(t, err)
	assert.Empty(t, pend)
	assert.Equal(t, []model.Accion{model.AccionGuardarVenta}, pusher.entregados())
}

func TestProcesar_FalloReprogramaConBackoff(t *testing.T) {
	ctx := context.Background()
	outbox := repository.NewOutboxRepository(repository.NewMemoriaKVRepository())
	d := NewDispatcher(DispatcherConfig{
		Outbox:      outbox,
		Pusher:      &fakePusher{fallar: errors.New("remoto: inalcanzable")},
		MaxIntentos: 3,
		BackoffBase: time.Minute,
	})
	fijo := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	d.now = func() time.Time { return fijo }

	cmd := nuevoComando("a", 1)
	require.NoError(t, outbox.Agregar(ctx, cmd))
	require.Error(t, d.Procesar(ctx, cmd))

	pend, err := outbox.Pendientes(ctx)
	require.NoError(t, err)
	require.Len(t, pend, 1)
	assert.Equal(t, 1, pend[0].Intentos)
	require.NotNil(t, pend[0].ProximoIntento)
	assert.True(t, pend[0].ProximoIntento.Equal(fijo.Add(time.Minute)))
	require.NotNil(t, pend[0].UltimoError)
	assert.Contains(t, *pend[0].UltimoError, "inalcanzable")
}

func TestProcesar_AgotaIntentosVaADLQ(t *testing.T) {
	ctx := context.Background()
	outbox := repository.NewOutboxRepository(repository.NewMemoriaKVRepository())
	d := NewDispatcher(DispatcherConfig{
		Outbox:      outbox,
		Pusher:      &fakePusher{fallar: errors.New("status 500")},
		MaxIntentos: 2,
	})

	cmd := nuevoComando("a", 1)
	cmd.Intentos = 1
	require.NoError(t, outbox.Agregar(ctx, cmd))
	require.Error(t, d.Procesar(ctx, cmd))

	pend, err := outbox.Pendientes(ctx)
	require.NoError(t, err)
	assert.Empty(t, pend)

	n, err := DLQLength(ctx, outbox)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

// The sheet script only dispatches the actions it knows; SAVE_CLIENT gets
// {"status":"error","message":"Acción desconocida"} and ends in the DLQ.
func TestProcesar_AccionDesconocidaPorLaHojaTerminaEnDLQ(t *testing.T) {
	ctx := context.Background()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Action string `json:"action"`
		}
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &req)
		switch req.Action {
		case "SAVE_SALE", "SAVE_PURCHASE", "SYNC_INVENTORY", "SAVE_SUPPLIER", "DELETE_SUPPLIER":
			_, _ = w.Write([]byte(`{"status":"success"}`))
		default:
			_, _ = w.Write([]byte(`{"status":"error","message":"Acción desconocida"}`))
		}
	}))
	defer srv.Close()

	outbox := repository.NewOutboxRepository(repository.NewMemoriaKVRepository())
	d := NewDispatcher(DispatcherConfig{
		Outbox:      outbox,
		Pusher:      infra.NewRemoteClient(srv.URL, time.Second),
		MaxIntentos: 2,
		BackoffBase: time.Millisecond,
	})

	cliente := nuevoComando("cli", 1)
	cliente.Accion = model.AccionGuardarCliente
	cliente.Payload = json.RawMessage(`{"id":"CL1","name":"Ana"}`)
	venta := nuevoComando("ven", 2)
	require.NoError(t, outbox.Agregar(ctx, cliente))
	require.NoError(t, outbox.Agregar(ctx, venta))

	require.NoError(t, d.Procesar(ctx, venta))
	for i := 0; i < 2; i++ {
		pend, err := outbox.Pendientes(ctx)
		require.NoError(t, err)
		require.Len(t, pend, 1)
		assert.ErrorIs(t, d.Procesar(ctx, pend[0]), infra.ErrRespuestaRemota)
	}

	pend, err := outbox.Pendientes(ctx)
	require.NoError(t, err)
	assert.Empty(t, pend)
	dlq, err := outbox.DLQ(ctx)
	require.NoError(t, err)
	require.Len(t, dlq, 1)
	assert.Equal(t, model.AccionGuardarCliente, dlq[0].Comando.Accion)
	assert.Contains(t, dlq[0].Motivo, "Acción desconocida")
}

func TestProcesar_BreakerAbiertoNoCuentaIntento(t *testing.T) {
	ctx := context.Background()
	outbox := repository.NewOutboxRepository(repository.NewMemoriaKVRepository())
	cb := infra.NewCircuitBreaker(infra.CircuitBreakerConfig{FailureThreshold: 1, OpenTimeout: time.Hour})
	_ = cb.Execute(func() error { return errors.New("x") })

	d := NewDispatcher(DispatcherConfig{Outbox: outbox, Pusher: &fakePusher{}, CB: cb})
	cmd := nuevoComando("a", 1)
	require.NoError(t, outbox.Agregar(ctx, cmd))

	assert.ErrorIs(t, d.Procesar(ctx, cmd), infra.ErrCircuitOpen)
	pend, err := outbox.Pendientes(ctx)
	require.NoError(t, err)
	require.Len(t, pend, 1)
	assert.Equal(t, 0, pend[0].Intentos)
	assert.NotNil(t, pend[0].ProximoIntento)
}

func TestWorkerPool_EntregaEncolados(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	outbox := repository.NewOutboxRepository(repository.NewMemoriaKVRepository())
	pusher := &fakePusher{}
	d := NewDispatcher(DispatcherConfig{Outbox: outbox, Pusher: pusher})
	StartWorkerPool(ctx, d, 2)

	for i, id := range []string{"a", "b", "c"} {
		cmd := nuevoComando(id, int64(i+1))
		require.NoError(t, outbox.Agregar(ctx, cmd))
		d.Encolar(cmd)
	}

	assert.Eventually(t, func() bool {
		pend, err := outbox.Pendientes(ctx)
		return err == nil && len(pend) == 0
	}, 2*time.Second, 10*time.Millisecond)
	assert.Len(t, pusher.entregados(), 3)
}

func TestProcesarReintentos_SoloVencidos(t *testing.T) {
	ctx := context.Background()
	outbox := repository.NewOutboxRepository(repository.NewMemoriaKVRepository())
	pusher := &fakePusher{}
	d := NewDispatcher(DispatcherConfig{Outbox: outbox, Pusher: pusher})

	futuro := time.Now().Add(time.Hour)
	vencido := nuevoComando("vencido", 1)
	espera := nuevoComando("espera", 2)
	espera.ProximoIntento = &futuro
	require.NoError(t, outbox.Agregar(ctx, vencido))
	require.NoError(t, outbox.Agregar(ctx, espera))

	n := ProcesarReintentos(ctx, RetryCronConfig{Outbox: outbox, Dispatcher: d})
	assert.Equal(t, 1, n)

	pend, err := outbox.Pendientes(ctx)
	require.NoError(t, err)
	require.Len(t, pend, 1)
	assert.Equal(t, "espera", pend[0].ID)
}

func TestComputeRetryBackoff(t *testing.T) {
	base := 30 * time.Second
	assert.Equal(t, 30*time.Second, computeRetryBackoff(1, base))
	assert.Equal(t, 60*time.Second, computeRetryBackoff(2, base))
	assert.Equal(t, 120*time.Second, computeRetryBackoff(3, base))
	assert.Equal(t, maxRetryBackoff, computeRetryBackoff(20, base))
}

package service_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"novapos/internal/model"
	"novapos/internal/moneda"
	"novapos/internal/repository"
	"novapos/internal/service"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

// ── Stubs ─────────────────────────────────────────────────────────────────────

// stubRemoto serves a fixed snapshot. When bloqueo is set the fetch signals
// entro and waits until bloqueo is closed.
type stubRemoto struct {
	configurado bool
	snapshot    func() *model.Snapshot
	err         error
	entro       chan struct{}
	bloqueo     chan struct{}
	llamadas    int32
}

func (r *stubRemoto) Configurado() bool { return r.configurado }

func (r *stubRemoto) FetchSnapshot(ctx context.Context) (*model.Snapshot, error) {
	atomic.AddInt32(&r.llamadas, 1)
	if r.entro != nil {
		r.entro <- struct{}{}
	}
	if r.bloqueo != nil {
		<-r.bloqueo
	}
	if r.err != nil {
		return nil, r.err
	}
	return r.snapshot(), nil
}

type stubCola struct {
	mu   sync.Mutex
	cmds []model.ComandoRemoto
}

func (c *stubCola) Encolar(cmd model.ComandoRemoto) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cmds = append(c.cmds, cmd)
}

func (c *stubCola) encolados() []model.ComandoRemoto {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]model.ComandoRemoto(nil), c.cmds...)
}

var errDiscoLleno = errors.New("disk full")

// kvFallido wraps a store and fails every batch write while fallar is set.
type kvFallido struct {
	repository.KVRepository
	fallar atomic.Bool
}

func (k *kvFallido) GuardarLote(ctx context.Context, lote repository.Lote) error {
	if k.fallar.Load() {
		return errDiscoLleno
	}
	return k.KVRepository.GuardarLote(ctx, lote)
}

// ── Fixtures ──────────────────────────────────────────────────────────────────

var t0 = time.Date(2026, 3, 10, 14, 0, 0, 0, time.UTC)

func relojFijo() time.Time { return t0 }

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func tasasPrueba() *moneda.Registro {
	return moneda.NewRegistro(moneda.NuevasTasas(dec("45.50"), dec("48.20")))
}

type entornoLedger struct {
	ledger service.LedgerService
	kv     repository.KVRepository
	outbox repository.OutboxRepository
	cola   *stubCola
}

func nuevoEntorno(t *testing.T, remoto service.RemoteGateway) *entornoLedger {
	t.Helper()
	return nuevoEntornoKV(t, remoto, repository.NewMemoriaKVRepository())
}

func nuevoEntornoKV(t *testing.T, remoto service.RemoteGateway, kv repository.KVRepository) *entornoLedger {
	t.Helper()
	e := &entornoLedger{kv: kv, outbox: repository.NewOutboxRepository(kv), cola: &stubCola{}}
	e.ledger = service.NewLedgerService(service.LedgerDeps{
		Store:  kv,
		Outbox: e.outbox,
		Remoto: remoto,
		Cola:   e.cola,
		Reloj:  relojFijo,
	})
	require.NoError(t, e.ledger.Cargar(context.Background()))
	return e
}

func productoP006() model.Producto {
	return model.Producto{
		ID:           "P006",
		Nombre:       "Harina PAN 1kg",
		Categoria:    "Víveres",
		PrecioCompra: dec("0.90"),
		PrecioVenta:  dec("1.80"),
		Stock:        12,
		StockMinimo:  10,
		Activo:       true,
	}
}

func proveedorPR1() model.Proveedor {
	return model.Proveedor{ID: "PR1", Nombre: "Distribuidora Polar", Telefono: "0412-5550000", CondicionPago: model.PagoContado}
}

func sembrar(t *testing.T, l service.LedgerService, productos ...model.Producto) {
	t.Helper()
	ctx := context.Background()
	for _, p := range productos {
		require.NoError(t, l.GuardarProducto(ctx, p))
	}
	require.NoError(t, l.GuardarProveedor(ctx, proveedorPR1()))
	require.NoError(t, l.AgregarCliente(ctx, model.Cliente{ID: "C1", Nombre: "Cliente Casual", Tipo: model.ClienteCasual}))
}

func ventaSimple(id, productoID string, cantidad int, precio decimal.Decimal, fecha time.Time) (model.Venta, []model.VentaDetalle, []model.MovimientoCaja) {
	sub := precio.Mul(decimal.NewFromInt(int64(cantidad)))
	v := model.Venta{
		ID: id, Fecha: fecha, ClienteID: "C1", Tipo: model.VentaContado,
		Total: sub, MonedaBase: moneda.USD, Estado: model.VentaPagada,
	}
	d := []model.VentaDetalle{{VentaID: id, ProductoID: productoID, Cantidad: cantidad, PrecioUnitario: precio, Subtotal: sub}}
	m := []model.MovimientoCaja{{
		ID: "M" + id, Fecha: fecha, Tipo: model.MovimientoIngreso, Origen: model.OrigenVenta,
		Metodo: model.MetodoEfectivoUSD, Monto: sub, Moneda: moneda.USD, Referencia: id,
	}}
	return v, d, m
}

func buscarProducto(t *testing.T, l service.LedgerLectura, id string) model.Producto {
	t.Helper()
	p, ok := l.Producto(id)
	require.True(t, ok, "producto %s", id)
	return p
}

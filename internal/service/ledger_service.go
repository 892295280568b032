package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"novapos/internal/metrics"
	"novapos/internal/model"
	"novapos/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"
)

// RemoteGateway is the read side of the remote sheet endpoint.
type RemoteGateway interface {
	Configurado() bool
	FetchSnapshot(ctx context.Context) (*model.Snapshot, error)
}

// Encolador hands an outbox command to the delivery workers without blocking.
type Encolador interface {
	Encolar(cmd model.ComandoRemoto)
}

// LedgerLectura is the read-only view reports and assemblers depend on.
// Every getter returns a copy the caller may keep.
type LedgerLectura interface {
	Productos() []model.Producto
	Producto(id string) (model.Producto, bool)
	Clientes() []model.Cliente
	Proveedores() []model.Proveedor
	Proveedor(id string) (model.Proveedor, bool)
	Ventas() []model.Venta
	VentaDetalles() []model.VentaDetalle
	Compras() []model.Compra
	CompraDetalles() []model.CompraDetalle
	Movimientos() []model.MovimientoCaja
	// Vista returns every collection from a single generation, for views
	// that cross-reference stock, headers and details.
	Vista() Vista
}

// Vista is a consistent copy of all collections taken under one read lock.
type Vista struct {
	Productos      []model.Producto
	Clientes       []model.Cliente
	Proveedores    []model.Proveedor
	Ventas         []model.Venta
	VentaDetalles  []model.VentaDetalle
	Compras        []model.Compra
	CompraDetalles []model.CompraDetalle
	Movimientos    []model.MovimientoCaja
}

// Producto looks a product up inside the view.
func (v Vista) Producto(id string) (model.Producto, bool) {
	if i := indiceProducto(v.Productos, id); i >= 0 {
		return v.Productos[i], true
	}
	return model.Producto{}, false
}

// LedgerService is the local-first store of every collection. Writes are
// visible to readers as soon as they return; the remote copy is updated in
// the background through the outbox.
type LedgerService interface {
	LedgerLectura

	Cargar(ctx context.Context) error
	Inicializar(ctx context.Context) model.ResultadoSync
	UltimaSync() *time.Time
	Auditoria() []model.ReferenciaHuerfana

	RegistrarVenta(ctx context.Context, venta model.Venta, detalles []model.VentaDetalle, movs []model.MovimientoCaja) error
	RegistrarCompra(ctx context.Context, items []model.ItemCompra, mov model.MovimientoCaja) (*model.Compra, error)
	AgregarMovimiento(ctx context.Context, mov model.MovimientoCaja) error
	GuardarProducto(ctx context.Context, p model.Producto) error
	GuardarProveedor(ctx context.Context, p model.Proveedor) error
	EliminarProveedor(ctx context.Context, id string) error
	AgregarCliente(ctx context.Context, c model.Cliente) error
}

type LedgerDeps struct {
	Store   repository.KVRepository
	Outbox  repository.OutboxRepository
	Remoto  RemoteGateway
	Cola    Encolador
	Metrics *metrics.Metrics
	// PlazoEntrega is how long a freshly queued command belongs to the
	// workers before the retry cron may pick it up too.
	PlazoEntrega time.Duration
	Reloj        func() time.Time
}

// comandoLocal is a ledger write kept as a function so it can be replayed on
// top of a snapshot that was in flight when the write happened. aplicar must
// be idempotent per document id.
type comandoLocal struct {
	accion  model.Accion
	claves  []string
	aplicar func(e *estado, sig func() int64) []model.ReferenciaHuerfana
}

type ledgerService struct {
	mu            sync.RWMutex
	st            *estado
	seq           int64
	ultimaSync    *time.Time
	sincronizando bool
	diario        []comandoLocal

	grupo   singleflight.Group
	kv      repository.KVRepository
	outbox  repository.OutboxRepository
	remoto  RemoteGateway
	cola    Encolador
	metrics *metrics.Metrics
	plazo   time.Duration
	ahora   func() time.Time
}

func NewLedgerService(deps LedgerDeps) LedgerService {
	if deps.Reloj == nil {
		deps.Reloj = time.Now
	}
	if deps.PlazoEntrega <= 0 {
		deps.PlazoEntrega = time.Minute
	}
	return &ledgerService{
		st:      nuevoEstado(),
		kv:      deps.Store,
		outbox:  deps.Outbox,
		remoto:  deps.Remoto,
		cola:    deps.Cola,
		metrics: deps.Metrics,
		plazo:   deps.PlazoEntrega,
		ahora:   deps.Reloj,
	}
}

// ── Carga y sincronización ───────────────────────────────────────────────────

// Cargar fills the cache from the local store. Missing keys are empty
// collections; a corrupt document is an error.
func (s *ledgerService) Cargar(ctx context.Context) error {
	st := nuevoEstado()
	for clave, dst := range st.destinos() {
		if _, err := repository.CargarJSON(ctx, s.kv, clave, dst); err != nil {
			return fmt.Errorf("ledger: cargar: %w", err)
		}
	}
	st = st.clonar() // null documents decode to nil slices

	var seq int64
	if _, err := repository.CargarJSON(ctx, s.kv, repository.ClaveSecuencia, &seq); err != nil {
		return fmt.Errorf("ledger: cargar: %w", err)
	}
	var ultima *time.Time
	if _, err := repository.CargarJSON(ctx, s.kv, repository.ClaveUltimaSync, &ultima); err != nil {
		return fmt.Errorf("ledger: cargar: %w", err)
	}

	s.mu.Lock()
	s.st, s.seq, s.ultimaSync = st, seq, ultima
	s.mu.Unlock()

	log.Info().
		Int("productos", len(st.productos)).
		Int("ventas", len(st.ventas)).
		Int("movimientos", len(st.movimientos)).
		Int64("seq", seq).
		Msg("ledger: local store loaded")
	return nil
}

// Inicializar replaces every collection with a fresh remote snapshot. It
// never fails: when the remote is unreachable the local data is kept and
// the result says so. Concurrent calls share one fetch.
func (s *ledgerService) Inicializar(ctx context.Context) model.ResultadoSync {
	v, _, _ := s.grupo.Do("snapshot", func() (interface{}, error) {
		return s.sincronizar(ctx), nil
	})
	return v.(model.ResultadoSync)
}

func (s *ledgerService) sincronizar(ctx context.Context) model.ResultadoSync {
	inicio := time.Now()
	if s.remoto == nil || !s.remoto.Configurado() {
		log.Warn().Msg("sync: remote endpoint not configured, serving local data")
		s.metrics.Snapshot("offline", inicio)
		return model.ResultadoSync{Motivo: "remoto no configurado", UltimaSync: s.UltimaSync()}
	}

	s.mu.Lock()
	s.sincronizando = true
	s.diario = nil
	s.mu.Unlock()

	snap, err := s.remoto.FetchSnapshot(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	diario := s.diario
	s.sincronizando = false
	s.diario = nil

	if err != nil {
		log.Warn().Err(err).Msg("sync: snapshot fetch failed, keeping local data")
		s.metrics.Snapshot("error", inicio)
		return model.ResultadoSync{Motivo: err.Error(), UltimaSync: copiarTiempo(s.ultimaSync)}
	}
	snap.Normalizar()

	ahora := s.ahora()
	nuevo := desdeSnapshot(snap, s.st.auditoria)
	seq := s.seq
	sig := func() int64 { seq++; return seq }
	claves := clavesLedger
	var huerfanos []model.ReferenciaHuerfana
	for _, cmd := range diario {
		huerfanos = append(huerfanos, nuevo.auditar(cmd.aplicar(nuevo, sig), cmd.accion, ahora)...)
	}
	if len(huerfanos) > 0 {
		claves = append(copiar(claves), repository.ClaveAuditoria)
	}

	lote := repository.Lote{}
	err = nuevo.volcar(lote, claves...)
	if err == nil {
		err = lote.JSON(repository.ClaveSecuencia, seq)
	}
	if err == nil {
		err = lote.JSON(repository.ClaveUltimaSync, ahora)
	}
	if err == nil {
		err = s.kv.GuardarLote(ctx, lote)
	}
	if err != nil {
		log.Error().Err(err).Msg("sync: could not persist snapshot, keeping local data")
		s.metrics.Snapshot("error", inicio)
		return model.ResultadoSync{Motivo: "persistencia: " + err.Error(), UltimaSync: copiarTiempo(s.ultimaSync)}
	}

	s.st, s.seq, s.ultimaSync = nuevo, seq, &ahora
	s.metrics.Snapshot("ok", inicio)
	for _, h := range huerfanos {
		log.Warn().
			Str("auditoria", "referencia_huerfana").
			Str("documento", h.Documento).
			Str("producto_id", h.ProductoID).
			Msg("sync: replayed detail references a product missing from the snapshot")
	}
	log.Info().
		Int("productos", len(nuevo.productos)).
		Int("ventas", len(nuevo.ventas)).
		Int("reaplicados", len(diario)).
		Msg("sync: snapshot applied")
	return model.ResultadoSync{Remoto: true, UltimaSync: copiarTiempo(&ahora), Reaplicados: len(diario)}
}

func (s *ledgerService) UltimaSync() *time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copiarTiempo(s.ultimaSync)
}

// ── Lecturas ─────────────────────────────────────────────────────────────────

func (s *ledgerService) leer(fn func(e *estado)) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fn(s.st)
}

func (s *ledgerService) Productos() (out []model.Producto) {
	s.leer(func(e *estado) { out = copiar(e.productos) })
	return
}

func (s *ledgerService) Producto(id string) (p model.Producto, ok bool) {
	s.leer(func(e *estado) {
		if i := indiceProducto(e.productos, id); i >= 0 {
			p, ok = e.productos[i], true
		}
	})
	return
}

func (s *ledgerService) Clientes() (out []model.Cliente) {
	s.leer(func(e *estado) { out = copiar(e.clientes) })
	return
}

func (s *ledgerService) Proveedores() (out []model.Proveedor) {
	s.leer(func(e *estado) { out = copiar(e.proveedores) })
	return
}

func (s *ledgerService) Proveedor(id string) (p model.Proveedor, ok bool) {
	s.leer(func(e *estado) {
		if i := indiceProveedor(e.proveedores, id); i >= 0 {
			p, ok = e.proveedores[i], true
		}
	})
	return
}

func (s *ledgerService) Ventas() (out []model.Venta) {
	s.leer(func(e *estado) { out = copiar(e.ventas) })
	return
}

func (s *ledgerService) VentaDetalles() (out []model.VentaDetalle) {
	s.leer(func(e *estado) { out = copiar(e.ventaDetalles) })
	return
}

func (s *ledgerService) Compras() (out []model.Compra) {
	s.leer(func(e *estado) { out = copiar(e.compras) })
	return
}

func (s *ledgerService) CompraDetalles() (out []model.CompraDetalle) {
	s.leer(func(e *estado) { out = copiar(e.compraDetalles) })
	return
}

func (s *ledgerService) Movimientos() (out []model.MovimientoCaja) {
	s.leer(func(e *estado) { out = copiar(e.movimientos) })
	return
}

func (s *ledgerService) Vista() (v Vista) {
	s.leer(func(e *estado) {
		v = Vista{
			Productos:      copiar(e.productos),
			Clientes:       copiar(e.clientes),
			Proveedores:    copiar(e.proveedores),
			Ventas:         copiar(e.ventas),
			VentaDetalles:  copiar(e.ventaDetalles),
			Compras:        copiar(e.compras),
			CompraDetalles: copiar(e.compraDetalles),
			Movimientos:    copiar(e.movimientos),
		}
	})
	return
}

func (s *ledgerService) Auditoria() (out []model.ReferenciaHuerfana) {
	s.leer(func(e *estado) { out = copiar(e.auditoria) })
	return
}

// ── Escrituras ───────────────────────────────────────────────────────────────

type payloadVenta struct {
	Header    model.Venta            `json:"header"`
	Details   []model.VentaDetalle   `json:"details"`
	Movements []model.MovimientoCaja `json:"movements"`
}

type payloadCompra struct {
	Items    []model.ItemCompra    `json:"items"`
	Movement model.MovimientoCaja  `json:"movement"`
	Header   model.Compra          `json:"header"`
	Details  []model.CompraDetalle `json:"details"`
}

// RegistrarVenta appends the sale and decrements stock once per detail line.
// Lines naming an unknown product are kept and logged to the audit trail.
func (s *ledgerService) RegistrarVenta(ctx context.Context, venta model.Venta, detalles []model.VentaDetalle, movs []model.MovimientoCaja) error {
	detalles, movs = copiar(detalles), copiar(movs)
	cmd := comandoLocal{
		accion: model.AccionGuardarVenta,
		claves: []string{repository.ClaveVentas, repository.ClaveVentaDetalles, repository.ClaveMovimientos, repository.ClaveProductos},
		aplicar: func(e *estado, sig func() int64) []model.ReferenciaHuerfana {
			if existeVenta(e.ventas, venta.ID) {
				return nil
			}
			v := venta
			v.Seq = sig()
			e.ventas = append(e.ventas, v)

			var huerfanos []model.ReferenciaHuerfana
			for _, d := range detalles {
				d.Seq = sig()
				e.ventaDetalles = append(e.ventaDetalles, d)
				if i := indiceProducto(e.productos, d.ProductoID); i >= 0 {
					e.productos[i].Stock -= d.Cantidad
				} else {
					huerfanos = append(huerfanos, model.ReferenciaHuerfana{Documento: venta.ID, ProductoID: d.ProductoID, Cantidad: d.Cantidad})
				}
			}
			for _, m := range movs {
				m.Seq = sig()
				e.movimientos = append(e.movimientos, m)
			}
			return huerfanos
		},
	}
	return s.ejecutar(ctx, cmd, payloadVenta{Header: venta, Details: detalles, Movements: movs})
}

// RegistrarCompra synthesizes the purchase header and details from items,
// appends them with the movement, adds the received stock and overwrites
// each product's purchase cost.
func (s *ledgerService) RegistrarCompra(ctx context.Context, items []model.ItemCompra, mov model.MovimientoCaja) (*model.Compra, error) {
	ahora := s.ahora()
	if mov.Fecha.IsZero() {
		mov.Fecha = ahora
	}
	if mov.ID == "" {
		mov.ID = NuevoID("M", ahora)
	}
	items = copiar(items)

	compra := model.Compra{
		ID:          NuevoID("C", ahora),
		Fecha:       mov.Fecha,
		ProveedorID: mov.ProveedorID,
		Total:       decimal.Zero,
		Moneda:      mov.Moneda,
		Referencia:  mov.Referencia,
		Estado:      model.EstadoCompraCompletada,
	}
	detalles := make([]model.CompraDetalle, 0, len(items))
	for _, it := range items {
		sub := it.Subtotal()
		compra.Total = compra.Total.Add(sub)
		detalles = append(detalles, model.CompraDetalle{
			CompraID:      compra.ID,
			ProductoID:    it.ProductoID,
			Cantidad:      it.Cantidad,
			CostoUnitario: it.CostoNuevo,
			Subtotal:      sub,
		})
	}

	cmd := comandoLocal{
		accion: model.AccionGuardarCompra,
		claves: []string{repository.ClaveCompras, repository.ClaveCompraDetalles, repository.ClaveMovimientos, repository.ClaveProductos},
		aplicar: func(e *estado, sig func() int64) []model.ReferenciaHuerfana {
			if existeCompra(e.compras, compra.ID) {
				return nil
			}
			c := compra
			c.Seq = sig()
			e.compras = append(e.compras, c)
			for _, d := range detalles {
				d.Seq = sig()
				e.compraDetalles = append(e.compraDetalles, d)
			}
			m := mov
			m.Seq = sig()
			e.movimientos = append(e.movimientos, m)

			var huerfanos []model.ReferenciaHuerfana
			for _, it := range items {
				if i := indiceProducto(e.productos, it.ProductoID); i >= 0 {
					e.productos[i].Stock += it.Cantidad
					e.productos[i].PrecioCompra = it.CostoNuevo
				} else {
					huerfanos = append(huerfanos, model.ReferenciaHuerfana{Documento: compra.ID, ProductoID: it.ProductoID, Cantidad: it.Cantidad})
				}
			}
			return huerfanos
		},
	}
	if err := s.ejecutar(ctx, cmd, payloadCompra{Items: items, Movement: mov, Header: compra, Details: detalles}); err != nil {
		return nil, err
	}
	return &compra, nil
}

// AgregarMovimiento records a manual cash adjustment. The remote has no
// action for it, so it stays local.
func (s *ledgerService) AgregarMovimiento(ctx context.Context, mov model.MovimientoCaja) error {
	if mov.ID == "" {
		mov.ID = NuevoID("M", s.ahora())
	}
	cmd := comandoLocal{
		claves: []string{repository.ClaveMovimientos},
		aplicar: func(e *estado, sig func() int64) []model.ReferenciaHuerfana {
			if existeMovimiento(e.movimientos, mov.ID) {
				return nil
			}
			m := mov
			m.Seq = sig()
			e.movimientos = append(e.movimientos, m)
			return nil
		},
	}
	return s.ejecutar(ctx, cmd, nil)
}

func (s *ledgerService) GuardarProducto(ctx context.Context, p model.Producto) error {
	cmd := comandoLocal{
		accion: model.AccionSincronizarInventario,
		claves: []string{repository.ClaveProductos},
		aplicar: func(e *estado, _ func() int64) []model.ReferenciaHuerfana {
			if i := indiceProducto(e.productos, p.ID); i >= 0 {
				e.productos[i] = p
			} else {
				e.productos = append(e.productos, p)
			}
			return nil
		},
	}
	return s.ejecutar(ctx, cmd, p)
}

func (s *ledgerService) GuardarProveedor(ctx context.Context, p model.Proveedor) error {
	cmd := comandoLocal{
		accion: model.AccionGuardarProveedor,
		claves: []string{repository.ClaveProveedores},
		aplicar: func(e *estado, _ func() int64) []model.ReferenciaHuerfana {
			if i := indiceProveedor(e.proveedores, p.ID); i >= 0 {
				e.proveedores[i] = p
			} else {
				e.proveedores = append(e.proveedores, p)
			}
			return nil
		},
	}
	return s.ejecutar(ctx, cmd, p)
}

// EliminarProveedor is a no-op locally when the id is unknown; the remote
// delete is still sent.
func (s *ledgerService) EliminarProveedor(ctx context.Context, id string) error {
	cmd := comandoLocal{
		accion: model.AccionEliminarProveedor,
		claves: []string{repository.ClaveProveedores},
		aplicar: func(e *estado, _ func() int64) []model.ReferenciaHuerfana {
			if i := indiceProveedor(e.proveedores, id); i >= 0 {
				e.proveedores = append(e.proveedores[:i], e.proveedores[i+1:]...)
			}
			return nil
		},
	}
	return s.ejecutar(ctx, cmd, map[string]string{"id": id})
}

func (s *ledgerService) AgregarCliente(ctx context.Context, c model.Cliente) error {
	cmd := comandoLocal{
		accion: model.AccionGuardarCliente,
		claves: []string{repository.ClaveClientes},
		aplicar: func(e *estado, _ func() int64) []model.ReferenciaHuerfana {
			if i := indiceCliente(e.clientes, c.ID); i >= 0 {
				e.clientes[i] = c
			} else {
				e.clientes = append(e.clientes, c)
			}
			return nil
		},
	}
	return s.ejecutar(ctx, cmd, c)
}

// ejecutar applies cmd to a clone of the cache, persists the touched keys
// in one batch and only then swaps the clone in. A failed persist leaves
// the cache as it was.
func (s *ledgerService) ejecutar(ctx context.Context, cmd comandoLocal, payload any) error {
	s.mu.Lock()
	nuevo := s.st.clonar()
	seq := s.seq
	sig := func() int64 { seq++; return seq }

	huerfanos := nuevo.auditar(cmd.aplicar(nuevo, sig), cmd.accion, s.ahora())
	claves := cmd.claves
	if len(huerfanos) > 0 {
		claves = append(copiar(claves), repository.ClaveAuditoria)
	}

	lote := repository.Lote{}
	err := nuevo.volcar(lote, claves...)
	if err == nil {
		err = lote.JSON(repository.ClaveSecuencia, seq)
	}
	if err == nil {
		err = s.kv.GuardarLote(ctx, lote)
	}
	if err != nil {
		s.mu.Unlock()
		log.Error().Err(err).Str("accion", string(cmd.accion)).Msg("ledger: write not persisted, cache unchanged")
		return fmt.Errorf("ledger: persistir: %w", err)
	}

	s.st, s.seq = nuevo, seq
	if s.sincronizando {
		s.diario = append(s.diario, cmd)
	}
	s.mu.Unlock()

	for _, h := range huerfanos {
		log.Warn().
			Str("auditoria", "referencia_huerfana").
			Str("documento", h.Documento).
			Str("producto_id", h.ProductoID).
			Int("cantidad", h.Cantidad).
			Msg("ledger: detail references unknown product, stock not changed")
	}

	if cmd.accion != "" {
		s.despachar(ctx, cmd.accion, payload, seq)
	}
	return nil
}

// despachar writes the remote command to the outbox and hands it to the
// workers. Offline ledgers skip this entirely.
func (s *ledgerService) despachar(ctx context.Context, accion model.Accion, payload any, seq int64) {
	if s.outbox == nil || s.remoto == nil || !s.remoto.Configurado() {
		return
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		log.Error().Err(err).Str("accion", string(accion)).Msg("outbox: could not encode payload")
		return
	}
	ahora := s.ahora()
	proximo := ahora.Add(s.plazo)
	cmd := model.ComandoRemoto{
		ID:             uuid.NewString(),
		Seq:            seq,
		Accion:         accion,
		Payload:        raw,
		ProximoIntento: &proximo,
		CreadoEn:       ahora,
	}
	if err := s.outbox.Agregar(ctx, cmd); err != nil {
		log.Error().Err(err).Str("accion", string(accion)).Msg("outbox: could not store command")
	}
	if s.cola != nil {
		s.cola.Encolar(cmd)
	}
}

// NuevoID builds ids like the POS does: prefix plus epoch millis, with a
// short random suffix so two documents in the same millisecond differ.
func NuevoID(prefijo string, t time.Time) string {
	sufijo := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:6])
	return prefijo + strconv.FormatInt(t.UnixMilli(), 10) + sufijo
}

func copiarTiempo(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}

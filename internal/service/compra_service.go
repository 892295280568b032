package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"novapos/internal/dto"
	"novapos/internal/model"
	"novapos/internal/moneda"

	"github.com/shopspring/decimal"
)

type CompraService interface {
	Procesar(ctx context.Context, req dto.RegistrarCompraRequest) (*dto.CompraResponse, error)
	Listar() []model.Compra
	Reporte(filtro dto.FiltroCompras) *dto.ReporteComprasResponse
}

type compraService struct {
	ledger LedgerService
	tasas  *moneda.Registro
	loc    *time.Location
	ahora  func() time.Time
}

func NewCompraService(ledger LedgerService, tasas *moneda.Registro, loc *time.Location, reloj func() time.Time) CompraService {
	if loc == nil {
		loc = time.Local
	}
	if reloj == nil {
		reloj = time.Now
	}
	return &compraService{ledger: ledger, tasas: tasas, loc: loc, ahora: reloj}
}

// Procesar records a supplier delivery paid in full: one expense movement for
// Σ cantidad·costo in the reference currency, referenced as
// "<supplier> - <reference>".
func (s *compraService) Procesar(ctx context.Context, req dto.RegistrarCompraRequest) (*dto.CompraResponse, error) {
	prov, ok := s.ledger.Proveedor(req.ProveedorID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrProveedorNoEncontrado, req.ProveedorID)
	}

	items := make([]model.ItemCompra, 0, len(req.Items))
	total := decimal.Zero
	for _, it := range req.Items {
		item := model.ItemCompra{ProductoID: it.ProductoID, Cantidad: it.Cantidad, CostoNuevo: it.CostoNuevo}
		if p, ok := s.ledger.Producto(it.ProductoID); ok {
			item.Nombre = p.Nombre
		}
		total = total.Add(item.Subtotal())
		items = append(items, item)
	}

	metodo := model.MetodoPago(req.Metodo)
	if metodo == "" {
		metodo = model.MetodoEfectivoUSD
	}
	ahora := s.ahora()
	mov := model.MovimientoCaja{
		ID:          NuevoID("M", ahora),
		Fecha:       ahora,
		Tipo:        model.MovimientoEgreso,
		Origen:      model.OrigenCompra,
		Metodo:      metodo,
		Monto:       total,
		Moneda:      s.tasas.Actual().Base,
		Referencia:  fmt.Sprintf("%s - %s", prov.Nombre, req.Referencia),
		ProveedorID: prov.ID,
	}

	compra, err := s.ledger.RegistrarCompra(ctx, items, mov)
	if err != nil {
		return nil, err
	}

	detalles := []model.CompraDetalle{}
	for _, d := range s.ledger.CompraDetalles() {
		if d.CompraID == compra.ID {
			detalles = append(detalles, d)
		}
	}
	return &dto.CompraResponse{Compra: *compra, Detalles: detalles, Movimiento: mov}, nil
}

func (s *compraService) Listar() []model.Compra {
	out := s.ledger.Compras()
	sort.SliceStable(out, func(i, j int) bool { return out[i].Fecha.After(out[j].Fecha) })
	return out
}

// Reporte lists purchase expenses, optionally for one supplier and date range.
func (s *compraService) Reporte(filtro dto.FiltroCompras) *dto.ReporteComprasResponse {
	tasas := s.tasas.Actual()
	resp := &dto.ReporteComprasResponse{
		Movimientos: []model.MovimientoCaja{},
		TotalRef:    decimal.Zero,
		Moneda:      tasas.Base,
	}
	for _, m := range s.ledger.Movimientos() {
		if m.Tipo != model.MovimientoEgreso || m.Origen != model.OrigenCompra {
			continue
		}
		if filtro.ProveedorID != "" && m.ProveedorID != filtro.ProveedorID {
			continue
		}
		if !EnRango(m.Fecha, filtro.Desde, filtro.Hasta, s.loc) {
			continue
		}
		resp.Movimientos = append(resp.Movimientos, m)
		resp.TotalRef = resp.TotalRef.Add(tasas.AReferencia(m.Monto, m.Moneda))
		if tasas.Aproximada(m.Moneda) {
			resp.Aproximada = true
		}
	}
	masRecientePrimero(resp.Movimientos)
	resp.Cantidad = len(resp.Movimientos)
	return resp
}

package service

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"novapos/internal/dto"
	"novapos/internal/model"
)

type InventarioService interface {
	Kardex(productoID string) (*model.Kardex, error)
	AlertasStock() []model.Producto
	Listar(filtro dto.ProductoFilter) []model.Producto
}

type inventarioService struct {
	ledger LedgerLectura
	ahora  func() time.Time
}

func NewInventarioService(ledger LedgerLectura, reloj func() time.Time) InventarioService {
	if reloj == nil {
		reloj = time.Now
	}
	return &inventarioService{ledger: ledger, ahora: reloj}
}

// ── Kardex ────────────────────────────────────────────────────────────────────

func (s *inventarioService) Kardex(productoID string) (*model.Kardex, error) {
	v := s.ledger.Vista()
	p, ok := v.Producto(productoID)
	if !ok {
		return nil, fmt.Errorf("kardex %s: %w", productoID, ErrProductoNoEncontrado)
	}
	k := ReconstruirKardex(p, v.Ventas, v.VentaDetalles, v.Compras, v.CompraDetalles, s.ahora())
	return &k, nil
}

// ReconstruirKardex rebuilds the stock history of p, newest first, from its
// current stock and the sale and purchase details that name it. Walking
// back in time an entry is undone by subtracting and an exit by adding, so
// each event carries the balance right after it. Details whose header is
// missing are dated ahora and listed in Huerfanos.
func ReconstruirKardex(
	p model.Producto,
	ventas []model.Venta, ventaDetalles []model.VentaDetalle,
	compras []model.Compra, compraDetalles []model.CompraDetalle,
	ahora time.Time,
) model.Kardex {
	fechaVenta := make(map[string]time.Time, len(ventas))
	for _, v := range ventas {
		if _, ok := fechaVenta[v.ID]; !ok {
			fechaVenta[v.ID] = v.Fecha
		}
	}
	fechaCompra := make(map[string]time.Time, len(compras))
	for _, c := range compras {
		if _, ok := fechaCompra[c.ID]; !ok {
			fechaCompra[c.ID] = c.Fecha
		}
	}

	var huerfanos []string
	vistos := map[string]bool{}
	fechaDe := func(fechas map[string]time.Time, doc string) time.Time {
		if f, ok := fechas[doc]; ok {
			return f
		}
		if !vistos[doc] {
			vistos[doc] = true
			huerfanos = append(huerfanos, doc)
		}
		return ahora
	}

	entradas := make([]model.EntradaKardex, 0)
	for _, d := range ventaDetalles {
		if d.ProductoID != p.ID {
			continue
		}
		entradas = append(entradas, model.EntradaKardex{
			DocumentoID:   d.VentaID,
			Documento:     "Venta",
			Fecha:         fechaDe(fechaVenta, d.VentaID),
			Tipo:          model.KardexSalida,
			Cantidad:      d.Cantidad,
			ValorUnitario: d.PrecioUnitario,
			Seq:           d.Seq,
		})
	}
	for _, d := range compraDetalles {
		if d.ProductoID != p.ID {
			continue
		}
		entradas = append(entradas, model.EntradaKardex{
			DocumentoID:   d.CompraID,
			Documento:     "Compra",
			Fecha:         fechaDe(fechaCompra, d.CompraID),
			Tipo:          model.KardexEntrada,
			Cantidad:      d.Cantidad,
			ValorUnitario: d.CostoUnitario,
			Seq:           d.Seq,
		})
	}

	sort.SliceStable(entradas, func(i, j int) bool {
		a, b := entradas[i], entradas[j]
		if !a.Fecha.Equal(b.Fecha) {
			return a.Fecha.After(b.Fecha)
		}
		return a.Seq > b.Seq
	})

	saldo := p.Stock
	for i := range entradas {
		entradas[i].Saldo = saldo
		if entradas[i].Tipo == model.KardexEntrada {
			saldo -= entradas[i].Cantidad
		} else {
			saldo += entradas[i].Cantidad
		}
	}

	return model.Kardex{
		ProductoID:   p.ID,
		Nombre:       p.Nombre,
		StockActual:  p.Stock,
		SaldoInicial: saldo,
		Entradas:     entradas,
		Huerfanos:    huerfanos,
	}
}

// ── Alertas y listado ─────────────────────────────────────────────────────────

// AlertasStock lists active products at or under their minimum stock.
func (s *inventarioService) AlertasStock() []model.Producto {
	out := []model.Producto{}
	for _, p := range s.ledger.Productos() {
		if p.Activo && p.StockBajo() {
			out = append(out, p)
		}
	}
	return out
}

func (s *inventarioService) Listar(filtro dto.ProductoFilter) []model.Producto {
	q := strings.ToLower(strings.TrimSpace(filtro.Q))
	out := []model.Producto{}
	for _, p := range s.ledger.Productos() {
		if q != "" &&
			!strings.Contains(strings.ToLower(p.Nombre), q) &&
			!strings.Contains(strings.ToLower(p.Categoria), q) &&
			!strings.Contains(strings.ToLower(p.ID), q) {
			continue
		}
		if filtro.Categoria != "" && !strings.EqualFold(p.Categoria, filtro.Categoria) {
			continue
		}
		switch filtro.Activo {
		case "true":
			if !p.Activo {
				continue
			}
		case "false":
			if p.Activo {
				continue
			}
		}
		if filtro.StockBajo && !p.StockBajo() {
			continue
		}
		out = append(out, p)
	}
	return out
}

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

// toleranciaPago absorbs rounding when payments in several currencies are
// normalized against the sale total.
var toleranciaPago = decimal.RequireFromString("0.01")

type VentaService interface {
	Procesar(ctx context.Context, req dto.RegistrarVentaRequest) (*dto.VentaResponse, error)
	Listar(filtro dto.VentaFilter) []model.Venta
}

type ventaService struct {
	ledger LedgerService
	tasas  *moneda.Registro
	loc    *time.Location
	ahora  func() time.Time
}

func NewVentaService(ledger LedgerService, tasas *moneda.Registro, loc *time.Location, reloj func() time.Time) VentaService {
	if loc == nil {
		loc = time.Local
	}
	if reloj == nil {
		reloj = time.Now
	}
	return &ventaService{ledger: ledger, tasas: tasas, loc: loc, ahora: reloj}
}

// ── Procesar ──────────────────────────────────────────────────────────────────
// Builds a sale from a POS cart:
//   1. Price every line from the product's sale price (reference currency)
//   2. Normalize the tenders and settle the status (cash sales must be paid)
//   3. One income movement per non-zero tender
//   4. Hand everything to the ledger in one write

func (s *ventaService) Procesar(ctx context.Context, req dto.RegistrarVentaRequest) (*dto.VentaResponse, error) {
	ahora := s.ahora()
	tasas := s.tasas.Actual()
	ventaID := NuevoID("V", ahora)

	tipo := model.TipoVenta(req.Tipo)
	if tipo == "" {
		tipo = model.VentaContado
	}

	total := decimal.Zero
	detalles := make([]model.VentaDetalle, 0, len(req.Items))
	pedidas := map[string]int{}
	conflictoStock := false

	for _, item := range req.Items {
		p, ok := s.ledger.Producto(item.ProductoID)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrProductoNoEncontrado, item.ProductoID)
		}
		if !p.Activo {
			return nil, fmt.Errorf("%w: %s", ErrProductoInactivo, p.Nombre)
		}
		pedidas[p.ID] += item.Cantidad
		if pedidas[p.ID] > p.Stock {
			conflictoStock = true
		}
		sub := p.PrecioVenta.Mul(decimal.NewFromInt(int64(item.Cantidad)))
		total = total.Add(sub)
		detalles = append(detalles, model.VentaDetalle{
			VentaID:        ventaID,
			ProductoID:     p.ID,
			Cantidad:       item.Cantidad,
			PrecioUnitario: p.PrecioVenta,
			Subtotal:       sub,
		})
	}

	referencia := req.Referencia
	if referencia == "" {
		referencia = ventaID
	}
	pagado := decimal.Zero
	movs := []model.MovimientoCaja{}
	for _, pago := range req.Pagos {
		if !pago.Monto.IsPositive() {
			continue
		}
		metodo := model.MetodoPago(pago.Metodo)
		cod := moneda.Normalizar(pago.Moneda)
		if cod == "" {
			cod = model.MonedaPorMetodo[metodo]
		}
		pagado = pagado.Add(tasas.AReferencia(pago.Monto, cod))
		movs = append(movs, model.MovimientoCaja{
			ID:         NuevoID("M", ahora),
			Fecha:      ahora,
			Tipo:       model.MovimientoIngreso,
			Origen:     model.OrigenVenta,
			Metodo:     metodo,
			Monto:      pago.Monto,
			Moneda:     cod,
			Referencia: referencia,
		})
	}

	estado, err := estadoVenta(tipo, total, pagado)
	if err != nil {
		return nil, err
	}

	venta := model.Venta{
		ID:         ventaID,
		Fecha:      ahora,
		ClienteID:  req.ClienteID,
		Tipo:       tipo,
		Total:      total,
		MonedaBase: tasas.Base,
		Estado:     estado,
	}
	if err := s.ledger.RegistrarVenta(ctx, venta, detalles, movs); err != nil {
		return nil, err
	}

	vuelto := pagado.Sub(total)
	if vuelto.IsNegative() {
		vuelto = decimal.Zero
	}
	return &dto.VentaResponse{
		Venta:          venta,
		Detalles:       detalles,
		Movimientos:    movs,
		PagadoRef:      pagado.Round(2),
		Vuelto:         vuelto.Round(2),
		ConflictoStock: conflictoStock,
	}, nil
}

func estadoVenta(tipo model.TipoVenta, total, pagado decimal.Decimal) (model.EstadoVenta, error) {
	cubierto := pagado.Add(toleranciaPago).GreaterThanOrEqual(total)
	if tipo == model.VentaContado {
		if !cubierto {
			return "", fmt.Errorf("%w: total %s, pagado %s", ErrPagoInsuficiente, total.StringFixed(2), pagado.StringFixed(2))
		}
		return model.VentaPagada, nil
	}
	switch {
	case !pagado.IsPositive():
		return model.VentaPendiente, nil
	case !cubierto:
		return model.VentaParcial, nil
	default:
		return model.VentaPagada, nil
	}
}

// ── Listar ────────────────────────────────────────────────────────────────────

func (s *ventaService) Listar(filtro dto.VentaFilter) []model.Venta {
	out := []model.Venta{}
	for _, v := range s.ledger.Ventas() {
		if filtro.Fecha != "" && !MismoDia(v.Fecha, filtro.Fecha, s.loc) {
			continue
		}
		if filtro.ClienteID != "" && v.ClienteID != filtro.ClienteID {
			continue
		}
		if filtro.Estado != "" && string(v.Estado) != filtro.Estado {
			continue
		}
		out = append(out, v)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Fecha.After(out[j].Fecha) })
	return out
}

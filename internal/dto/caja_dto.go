package dto

import (
	"time"

	"novapos/internal/model"

	"github.com/shopspring/decimal"
)

// ─── Request DTOs ────────────────────────────────────────────────────────────

// MovimientoManualRequest is a manual cash adjustment.
type MovimientoManualRequest struct {
	Tipo       string          `json:"tipo"       validate:"required,oneof=Ingreso Egreso"`
	Metodo     string          `json:"metodo"     validate:"required,oneof='Efectivo Bs' 'Efectivo $' 'Efectivo €' 'Pago Móvil' Transferencia Zelle Cashea 'Zona Naranja' Wepa"`
	Monto      decimal.Decimal `json:"monto"      validate:"gt=0"`
	Moneda     string          `json:"moneda"     validate:"omitempty,max=8"`
	Referencia string          `json:"referencia" validate:"required,min=3,max=200"`
	Fecha      *time.Time      `json:"fecha"`
}

// FiltroMovimientos is bound from the query string of GET /v1/caja/movimientos.
// Bounds are inclusive calendar dates; either may be empty.
type FiltroMovimientos struct {
	Desde  string `form:"desde"  validate:"omitempty,datetime=2006-01-02"`
	Hasta  string `form:"hasta"  validate:"omitempty,datetime=2006-01-02"`
	Tipo   string `form:"tipo"   validate:"omitempty,oneof=Ingreso Egreso"`
	Metodo string `form:"metodo"`
	Texto  string `form:"q"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type CierreCajaResponse struct {
	Fecha        string                 `json:"fecha"`
	Movimientos  []model.MovimientoCaja `json:"movimientos"`
	Conciliacion model.Conciliacion     `json:"conciliacion"`
}

// ResumenMoneda totals movements in one native currency.
type ResumenMoneda struct {
	Moneda   string          `json:"moneda"`
	Ingresos decimal.Decimal `json:"ingresos"`
	Egresos  decimal.Decimal `json:"egresos"`
	Saldo    decimal.Decimal `json:"saldo"`
}

type ReporteMovimientosResponse struct {
	Movimientos  []model.MovimientoCaja `json:"movimientos"`
	PorMoneda    []ResumenMoneda        `json:"por_moneda"`
	Conciliacion model.Conciliacion     `json:"conciliacion"`
}

// IngresoMetodo is the income collected through one payment method.
type IngresoMetodo struct {
	Metodo      model.MetodoPago `json:"metodo"`
	Moneda      string           `json:"moneda"`
	TotalNativo decimal.Decimal  `json:"total_nativo"`
	TotalRef    decimal.Decimal  `json:"total_ref"`
	Cantidad    int              `json:"cantidad"`
	Porcentaje  decimal.Decimal  `json:"porcentaje"`
}

type PuntoTendencia struct {
	Fecha string          `json:"fecha"`
	Total decimal.Decimal `json:"total"`
}

type ResumenDiarioResponse struct {
	Fecha          string           `json:"fecha"`
	TotalVentas    decimal.Decimal  `json:"total_ventas"`
	TotalVentasBs  decimal.Decimal  `json:"total_ventas_bs"`
	CantidadVentas int              `json:"cantidad_ventas"`
	Ingresos       decimal.Decimal  `json:"ingresos"`
	Egresos        decimal.Decimal  `json:"egresos"`
	Neto           decimal.Decimal  `json:"neto"`
	PorMetodo      []IngresoMetodo  `json:"por_metodo"`
	Tendencia      []PuntoTendencia `json:"tendencia"`
	Aproximada     bool             `json:"aproximada"`
}

package dto

import (
	"novapos/internal/model"

	"github.com/shopspring/decimal"
)

// ─── Filter / List ──────────────────────────────────────────────────────────

// VentaFilter is bound from the query string of GET /v1/ventas.
type VentaFilter struct {
	Fecha     string `form:"fecha"      validate:"omitempty,datetime=2006-01-02"` // empty = all
	ClienteID string `form:"cliente_id"`
	Estado    string `form:"estado"     validate:"omitempty,oneof=Pagada Parcial Pendiente"`
}

// ─── Request DTOs ────────────────────────────────────────────────────────────

type ItemVentaRequest struct {
	ProductoID string `json:"producto_id" validate:"required"`
	Cantidad   int    `json:"cantidad"    validate:"required,min=1"`
}

// PagoRequest is one tender. Moneda defaults to the method's usual currency.
type PagoRequest struct {
	Metodo string          `json:"metodo" validate:"required,oneof='Efectivo Bs' 'Efectivo $' 'Efectivo €' 'Pago Móvil' Transferencia Zelle Cashea 'Zona Naranja' Wepa"`
	Monto  decimal.Decimal `json:"monto"  validate:"min=0"`
	Moneda string          `json:"moneda" validate:"omitempty,max=8"`
}

type RegistrarVentaRequest struct {
	ClienteID  string             `json:"cliente_id" validate:"required"`
	Tipo       string             `json:"tipo"       validate:"omitempty,oneof=Contado Crédito"`
	Items      []ItemVentaRequest `json:"items"      validate:"required,min=1,dive"`
	Pagos      []PagoRequest      `json:"pagos"      validate:"dive"`
	Referencia string             `json:"referencia" validate:"max=200"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type VentaResponse struct {
	Venta       model.Venta            `json:"venta"`
	Detalles    []model.VentaDetalle   `json:"detalles"`
	Movimientos []model.MovimientoCaja `json:"movimientos"`
	PagadoRef   decimal.Decimal        `json:"pagado_ref"`
	Vuelto      decimal.Decimal        `json:"vuelto"`
	// ConflictoStock is set when a line sold more than the cached stock.
	ConflictoStock bool `json:"conflicto_stock"`
}

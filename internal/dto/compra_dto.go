package dto

import (
	"novapos/internal/model"

	"github.com/shopspring/decimal"
)

type ItemCompraRequest struct {
	ProductoID string          `json:"producto_id" validate:"required"`
	Cantidad   int             `json:"cantidad"    validate:"required,min=1"`
	CostoNuevo decimal.Decimal `json:"costo_nuevo" validate:"min=0"`
}

type RegistrarCompraRequest struct {
	ProveedorID string              `json:"proveedor_id" validate:"required"`
	Metodo      string              `json:"metodo"       validate:"omitempty,oneof='Efectivo Bs' 'Efectivo $' 'Efectivo €' 'Pago Móvil' Transferencia Zelle Cashea 'Zona Naranja' Wepa"`
	Referencia  string              `json:"referencia"   validate:"max=200"`
	Items       []ItemCompraRequest `json:"items"        validate:"required,min=1,dive"`
}

type CompraResponse struct {
	Compra     model.Compra          `json:"compra"`
	Detalles   []model.CompraDetalle `json:"detalles"`
	Movimiento model.MovimientoCaja  `json:"movimiento"`
}

// FiltroCompras is bound from the query string of GET /v1/compras/reporte.
type FiltroCompras struct {
	ProveedorID string `form:"proveedor_id"`
	Desde       string `form:"desde" validate:"omitempty,datetime=2006-01-02"`
	Hasta       string `form:"hasta" validate:"omitempty,datetime=2006-01-02"`
}

type ReporteComprasResponse struct {
	Movimientos []model.MovimientoCaja `json:"movimientos"`
	Cantidad    int                    `json:"cantidad"`
	TotalRef    decimal.Decimal        `json:"total_ref"`
	Moneda      string                 `json:"moneda"`
	Aproximada  bool                   `json:"aproximada"`
}

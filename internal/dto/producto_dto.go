package dto

import "github.com/shopspring/decimal"

// ProductoFilter is bound from the query string of GET /v1/productos.
type ProductoFilter struct {
	Q         string `form:"q"`                  // name or category contains
	Categoria string `form:"categoria"`          // exact, case-insensitive
	Activo    string `form:"activo,default=all"` // true | false | all
	StockBajo bool   `form:"stock_bajo"`         // only stock <= min
}

// GuardarProductoRequest is the body of PUT /v1/productos (upsert by id).
type GuardarProductoRequest struct {
	ID           string          `json:"id"            validate:"required,max=64"`
	Nombre       string          `json:"nombre"        validate:"required,max=200"`
	Categoria    string          `json:"categoria"     validate:"max=100"`
	PrecioCompra decimal.Decimal `json:"precio_compra" validate:"min=0"`
	PrecioVenta  decimal.Decimal `json:"precio_venta"  validate:"min=0"`
	Stock        int             `json:"stock"`
	StockMinimo  int             `json:"stock_minimo"  validate:"min=0"`
	Activo       *bool           `json:"activo"`
}

// ImportacionResponse summarizes a bulk xlsx import.
type ImportacionResponse struct {
	Procesados int `json:"procesados"`
	Errores    int `json:"errores"`
}

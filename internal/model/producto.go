package model

import "github.com/shopspring/decimal"

// Producto is an inventory item. Money fields are in the reference currency.
type Producto struct {
	ID           string          `json:"id"`
	Nombre       string          `json:"name"`
	Categoria    string          `json:"category"`
	PrecioCompra decimal.Decimal `json:"priceBuy"`
	PrecioVenta  decimal.Decimal `json:"priceSell"`
	Stock        int             `json:"stock"`
	StockMinimo  int             `json:"minStock"`
	Activo       bool            `json:"active"`
}

// StockBajo reports whether the product is at or under its reorder point.
func (p Producto) StockBajo() bool {
	return p.Stock <= p.StockMinimo
}

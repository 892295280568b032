package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type TipoVenta string

const (
	VentaContado TipoVenta = "Contado"
	VentaCredito TipoVenta = "Crédito"
)

type EstadoVenta string

const (
	VentaPagada    EstadoVenta = "Pagada"
	VentaParcial   EstadoVenta = "Parcial"
	VentaPendiente EstadoVenta = "Pendiente"
)

// Venta is a sale header. Total is expressed in MonedaBase.
type Venta struct {
	ID         string          `json:"id"`
	Fecha      time.Time       `json:"date"`
	ClienteID  string          `json:"clientId"`
	Tipo       TipoVenta       `json:"type"`
	Total      decimal.Decimal `json:"total"`
	MonedaBase string          `json:"currencyBase"`
	Estado     EstadoVenta     `json:"status"`
	Seq        int64           `json:"seq,omitempty"`
}

// VentaDetalle is one line of a sale. Quantity is in units sold.
type VentaDetalle struct {
	VentaID        string          `json:"saleId"`
	ProductoID     string          `json:"productId"`
	Cantidad       int             `json:"quantity"`
	PrecioUnitario decimal.Decimal `json:"priceUnit"`
	Subtotal       decimal.Decimal `json:"subtotal"`
	Seq            int64           `json:"seq,omitempty"`
}

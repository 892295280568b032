package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// EstadoCompraCompletada is the only status a locally recorded purchase takes.
const EstadoCompraCompletada = "Completada"

// Compra is a purchase header synthesized when a purchase is recorded.
type Compra struct {
	ID          string          `json:"id"`
	Fecha       time.Time       `json:"date"`
	ProveedorID string          `json:"supplierId"`
	Total       decimal.Decimal `json:"total"`
	Moneda      string          `json:"currency"`
	Referencia  string          `json:"reference"`
	Estado      string          `json:"status"`
	Seq         int64           `json:"seq,omitempty"`
}

type CompraDetalle struct {
	CompraID      string          `json:"purchaseId"`
	ProductoID    string          `json:"productId"`
	Cantidad      int             `json:"quantity"`
	CostoUnitario decimal.Decimal `json:"costUnit"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	Seq           int64           `json:"seq,omitempty"`
}

// ItemCompra is a purchase line as entered by the operator: quantity received
// and the new unit cost that replaces the product's purchase price.
type ItemCompra struct {
	ProductoID string          `json:"id"`
	Nombre     string          `json:"name,omitempty"`
	Cantidad   int             `json:"quantity"`
	CostoNuevo decimal.Decimal `json:"newCost"`
}

func (i ItemCompra) Subtotal() decimal.Decimal {
	return i.CostoNuevo.Mul(decimal.NewFromInt(int64(i.Cantidad)))
}

package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type TipoKardex string

const (
	KardexEntrada TipoKardex = "Entrada"
	KardexSalida  TipoKardex = "Salida"
)

// EntradaKardex is one stock movement of a product, with the balance left
// right after it.
type EntradaKardex struct {
	DocumentoID   string          `json:"documento_id"`
	Documento     string          `json:"documento"`
	Fecha         time.Time       `json:"fecha"`
	Tipo          TipoKardex      `json:"tipo"`
	Cantidad      int             `json:"cantidad"`
	ValorUnitario decimal.Decimal `json:"valor_unitario"`
	Saldo         int             `json:"saldo"`
	Seq           int64           `json:"seq"`
}

// Kardex lists entries newest first. SaldoInicial is the implied stock
// before the oldest entry. Huerfanos names documents whose header was
// missing and were dated at reconstruction time.
type Kardex struct {
	ProductoID   string          `json:"producto_id"`
	Nombre       string          `json:"nombre"`
	StockActual  int             `json:"stock_actual"`
	SaldoInicial int             `json:"saldo_inicial"`
	Entradas     []EntradaKardex `json:"entradas"`
	Huerfanos    []string        `json:"huerfanos,omitempty"`
}

package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type TipoMovimiento string

const (
	MovimientoIngreso TipoMovimiento = "Ingreso"
	MovimientoEgreso  TipoMovimiento = "Egreso"
)

type OrigenMovimiento string

const (
	OrigenVenta  OrigenMovimiento = "Venta"
	OrigenCompra OrigenMovimiento = "Compra"
	OrigenAjuste OrigenMovimiento = "Ajuste"
)

type MetodoPago string

const (
	MetodoEfectivoBs    MetodoPago = "Efectivo Bs"
	MetodoEfectivoUSD   MetodoPago = "Efectivo $"
	MetodoEfectivoEUR   MetodoPago = "Efectivo €"
	MetodoPagoMovil     MetodoPago = "Pago Móvil"
	MetodoTransferencia MetodoPago = "Transferencia"
	MetodoZelle         MetodoPago = "Zelle"
	MetodoCashea        MetodoPago = "Cashea"
	MetodoZonaNaranja   MetodoPago = "Zona Naranja"
	MetodoWepa          MetodoPago = "Wepa"
)

// MetodosPago lists every method in the order the POS presents them.
var MetodosPago = []MetodoPago{
	MetodoEfectivoBs, MetodoEfectivoUSD, MetodoEfectivoEUR, MetodoPagoMovil,
	MetodoTransferencia, MetodoZelle, MetodoCashea, MetodoZonaNaranja, MetodoWepa,
}

// MonedaPorMetodo is the currency a payment method settles in by default.
var MonedaPorMetodo = map[MetodoPago]string{
	MetodoEfectivoBs:    "BS",
	MetodoEfectivoUSD:   "USD",
	MetodoEfectivoEUR:   "EUR",
	MetodoPagoMovil:     "BS",
	MetodoTransferencia: "BS",
	MetodoZelle:         "USD",
	MetodoCashea:        "USD",
	MetodoZonaNaranja:   "USD",
	MetodoWepa:          "USD",
}

// MovimientoCaja is a single cash-flow event. Amount is in its native
// currency and is never negative; direction comes from Tipo.
type MovimientoCaja struct {
	ID          string           `json:"id"`
	Fecha       time.Time        `json:"date"`
	Tipo        TipoMovimiento   `json:"type"`
	Origen      OrigenMovimiento `json:"origin"`
	Metodo      MetodoPago       `json:"method"`
	Monto       decimal.Decimal  `json:"amount"`
	Moneda      string           `json:"currency"`
	Referencia  string           `json:"reference,omitempty"`
	ProveedorID string           `json:"supplierId,omitempty"`
	Seq         int64            `json:"seq,omitempty"`
}

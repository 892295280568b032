package model

import "github.com/shopspring/decimal"

// LineaCaja aggregates movements by (method, currency). Amounts are native.
type LineaCaja struct {
	Metodo   MetodoPago      `json:"metodo"`
	Moneda   string          `json:"moneda"`
	Ingresos decimal.Decimal `json:"ingresos"`
	Egresos  decimal.Decimal `json:"egresos"`
	Saldo    decimal.Decimal `json:"saldo"`
}

// Conciliacion is a cash reconciliation. Totals are in MonedaReferencia.
// Aproximada is set when some movement was converted through a cross rate.
type Conciliacion struct {
	Lineas           []LineaCaja     `json:"lineas"`
	TotalIngresos    decimal.Decimal `json:"total_ingresos"`
	TotalEgresos     decimal.Decimal `json:"total_egresos"`
	Neto             decimal.Decimal `json:"neto"`
	MonedaReferencia string          `json:"moneda_referencia"`
	Aproximada       bool            `json:"aproximada"`
}

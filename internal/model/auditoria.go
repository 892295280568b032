package model

import "time"

// ReferenciaHuerfana records a write that named a product the ledger does
// not hold. The write itself is kept; only the stock effect is skipped.
type ReferenciaHuerfana struct {
	Documento    string    `json:"documento"`
	ProductoID   string    `json:"producto_id"`
	Cantidad     int       `json:"cantidad"`
	Accion       Accion    `json:"accion"`
	RegistradaEn time.Time `json:"registrada_en"`
}

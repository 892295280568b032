package model

import (
	"encoding/json"
	"time"
)

// Accion names a remote write. Values are the action strings the remote
// endpoint dispatches on.
type Accion string

const (
	AccionGuardarVenta          Accion = "SAVE_SALE"
	AccionGuardarCompra         Accion = "SAVE_PURCHASE"
	AccionSincronizarInventario Accion = "SYNC_INVENTORY"
	AccionGuardarProveedor      Accion = "SAVE_SUPPLIER"
	AccionEliminarProveedor     Accion = "DELETE_SUPPLIER"
	AccionGuardarCliente        Accion = "SAVE_CLIENT"
)

// ComandoRemoto is an outbox entry: a write already applied locally that
// still has to reach the remote.
type ComandoRemoto struct {
	ID             string          `json:"id"`
	Seq            int64           `json:"seq"`
	Accion         Accion          `json:"accion"`
	Payload        json.RawMessage `json:"payload"`
	Intentos       int             `json:"intentos"`
	ProximoIntento *time.Time      `json:"proximo_intento,omitempty"`
	UltimoError    *string         `json:"ultimo_error,omitempty"`
	CreadoEn       time.Time       `json:"creado_en"`
}

// EntradaDLQ is a command that exhausted its retries.
type EntradaDLQ struct {
	Comando   ComandoRemoto `json:"comando"`
	Motivo    string        `json:"motivo"`
	FallidoEn time.Time     `json:"fallido_en"`
}

package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

type TasasRequest struct {
	USDBs decimal.Decimal `json:"usd_bs" validate:"gt=0"`
	EURBs decimal.Decimal `json:"eur_bs" validate:"gt=0"`
}

type TasasResponse struct {
	Base  string          `json:"base"`
	USDBs decimal.Decimal `json:"usd_bs"`
	EURBs decimal.Decimal `json:"eur_bs"`
	// EURUSD is derived through the bolívar and therefore approximate.
	EURUSD decimal.Decimal `json:"eur_usd"`
}

type SyncEstadoResponse struct {
	RemotoConfigurado bool       `json:"remoto_configurado"`
	UltimaSync        *time.Time `json:"ultima_sync"`
	Pendientes        int        `json:"pendientes"`
	DLQ               int        `json:"dlq"`
	Breaker           string     `json:"breaker"`
}

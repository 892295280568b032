package handler

import (
	"net/http"

	"novapos/internal/dto"
	"novapos/internal/infra"
	"novapos/internal/moneda"
	"novapos/internal/repository"
	"novapos/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

type SyncHandler struct {
	ledger service.LedgerService
	outbox repository.OutboxRepository
	remoto service.RemoteGateway
	cb     *infra.CircuitBreaker
}

func NewSyncHandler(ledger service.LedgerService, outbox repository.OutboxRepository, remoto service.RemoteGateway, cb *infra.CircuitBreaker) *SyncHandler {
	return &SyncHandler{ledger: ledger, outbox: outbox, remoto: remoto, cb: cb}
}

// Sincronizar godoc
// @Summary Reemplaza los datos locales con un snapshot del remoto
// @Description Nunca falla: si el remoto no responde se conservan los datos locales y el resultado lo indica.
// @Tags sync
// @Produce json
// @Success 200 {object} model.ResultadoSync
// @Router /v1/sync [post]
func (h *SyncHandler) Sincronizar(c *gin.Context) {
	c.JSON(http.StatusOK, h.ledger.Inicializar(c.Request.Context()))
}

// Estado godoc
// @Summary Estado de la sincronización y de la cola de envíos
// @Tags sync
// @Produce json
// @Success 200 {object} dto.SyncEstadoResponse
// @Router /v1/sync/estado [get]
func (h *SyncHandler) Estado(c *gin.Context) {
	ctx := c.Request.Context()
	resp := dto.SyncEstadoResponse{
		RemotoConfigurado: h.remoto != nil && h.remoto.Configurado(),
		UltimaSync:        h.ledger.UltimaSync(),
		Breaker:           "n/a",
	}
	if h.cb != nil {
		resp.Breaker = h.cb.State().String()
	}
	if h.outbox != nil {
		pendientes, err := h.outbox.Pendientes(ctx)
		if err != nil {
			_ = c.Error(err)
			return
		}
		dlq, err := h.outbox.DLQ(ctx)
		if err != nil {
			_ = c.Error(err)
			return
		}
		resp.Pendientes, resp.DLQ = len(pendientes), len(dlq)
	}
	c.JSON(http.StatusOK, resp)
}

// Auditoria godoc
// @Summary Líneas de documentos que nombran productos inexistentes
// @Tags sync
// @Produce json
// @Success 200 {array} model.ReferenciaHuerfana
// @Router /v1/auditoria [get]
func (h *SyncHandler) Auditoria(c *gin.Context) {
	c.JSON(http.StatusOK, h.ledger.Auditoria())
}

// ── Tasas ─────────────────────────────────────────────────────────────────────

type TasasHandler struct{ registro *moneda.Registro }

func NewTasasHandler(registro *moneda.Registro) *TasasHandler {
	return &TasasHandler{registro: registro}
}

// Obtener godoc
// @Summary Tasas de cambio vigentes
// @Tags tasas
// @Produce json
// @Success 200 {object} dto.TasasResponse
// @Router /v1/tasas [get]
func (h *TasasHandler) Obtener(c *gin.Context) {
	c.JSON(http.StatusOK, tasasResponse(h.registro.Actual()))
}

// Actualizar godoc
// @Summary Reemplaza las tasas de cambio
// @Tags tasas
// @Accept json
// @Produce json
// @Param body body dto.TasasRequest true "Bolívares por dólar y por euro"
// @Success 200 {object} dto.TasasResponse
// @Failure 422 {object} apierror.ValidationError
// @Router /v1/tasas [put]
func (h *TasasHandler) Actualizar(c *gin.Context) {
	var req dto.TasasRequest
	if !bindAndValidate(c, &req) {
		return
	}
	t := moneda.NuevasTasas(req.USDBs, req.EURBs)
	h.registro.Reemplazar(t)
	log.Info().
		Str("usd_bs", req.USDBs.String()).
		Str("eur_bs", req.EURBs.String()).
		Msg("tasas: exchange rates replaced")
	c.JSON(http.StatusOK, tasasResponse(t))
}

func tasasResponse(t moneda.Tasas) dto.TasasResponse {
	return dto.TasasResponse{
		Base:   t.Base,
		USDBs:  t.Directa(moneda.BS),
		EURBs:  t.Cruzada(moneda.EUR),
		EURUSD: t.AReferencia(decimalUno, moneda.EUR).Round(4),
	}
}

var decimalUno = decimal.NewFromInt(1)

package handler

import (
	"net/http"
	"time"

	"novapos/internal/apierror"
	"novapos/internal/dto"
	"novapos/internal/model"
	"novapos/internal/moneda"
	"novapos/internal/service"

	"github.com/gin-gonic/gin"
)

type CajaHandler struct {
	svc    service.CajaService
	ledger service.LedgerService
}

func NewCajaHandler(svc service.CajaService, ledger service.LedgerService) *CajaHandler {
	return &CajaHandler{svc: svc, ledger: ledger}
}

// RegistrarMovimiento godoc
// @Summary Registra un ingreso o egreso manual de caja
// @Tags caja
// @Accept json
// @Produce json
// @Param body body dto.MovimientoManualRequest true "Ajuste"
// @Success 201 {object} model.MovimientoCaja
// @Failure 422 {object} apierror.ValidationError
// @Router /v1/movimientos [post]
func (h *CajaHandler) RegistrarMovimiento(c *gin.Context) {
	var req dto.MovimientoManualRequest
	if !bindAndValidate(c, &req) {
		return
	}
	metodo := model.MetodoPago(req.Metodo)
	cod := moneda.Normalizar(req.Moneda)
	if cod == "" {
		cod = model.MonedaPorMetodo[metodo]
	}
	fecha := time.Now()
	if req.Fecha != nil && !req.Fecha.IsZero() {
		fecha = *req.Fecha
	}
	mov := model.MovimientoCaja{
		ID:         service.NuevoID("M", fecha),
		Fecha:      fecha,
		Tipo:       model.TipoMovimiento(req.Tipo),
		Origen:     model.OrigenAjuste,
		Metodo:     metodo,
		Monto:      req.Monto,
		Moneda:     cod,
		Referencia: req.Referencia,
	}
	if err := h.ledger.AgregarMovimiento(c.Request.Context(), mov); err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusCreated, mov)
}

// Cierre godoc
// @Summary Cierre de caja del día por método y moneda
// @Tags caja
// @Produce json
// @Param fecha query string false "YYYY-MM-DD, por defecto hoy"
// @Success 200 {object} dto.CierreCajaResponse
// @Router /v1/caja/cierre [get]
func (h *CajaHandler) Cierre(c *gin.Context) {
	fecha := c.Query("fecha")
	if !fechaValida(c, fecha) {
		return
	}
	c.JSON(http.StatusOK, h.svc.Cierre(fecha))
}

// Movimientos godoc
// @Summary Reporte de movimientos de caja
// @Tags caja
// @Produce json
// @Param desde query string false "YYYY-MM-DD"
// @Param hasta query string false "YYYY-MM-DD"
// @Param tipo query string false "Ingreso | Egreso"
// @Param metodo query string false "Método de pago"
// @Param q query string false "Texto en origen o referencia"
// @Success 200 {object} dto.ReporteMovimientosResponse
// @Router /v1/caja/movimientos [get]
func (h *CajaHandler) Movimientos(c *gin.Context) {
	var filtro dto.FiltroMovimientos
	if !bindQuery(c, &filtro) {
		return
	}
	c.JSON(http.StatusOK, h.svc.ReporteMovimientos(filtro))
}

// ResumenDiario godoc
// @Summary Indicadores del día para el tablero
// @Tags reportes
// @Produce json
// @Param fecha query string false "YYYY-MM-DD, por defecto hoy"
// @Success 200 {object} dto.ResumenDiarioResponse
// @Router /v1/reportes/diario [get]
func (h *CajaHandler) ResumenDiario(c *gin.Context) {
	fecha := c.Query("fecha")
	if !fechaValida(c, fecha) {
		return
	}
	c.JSON(http.StatusOK, h.svc.ResumenDiario(fecha))
}

func fechaValida(c *gin.Context, fecha string) bool {
	if fecha == "" {
		return true
	}
	if _, err := time.Parse("2006-01-02", fecha); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("fecha debe tener formato YYYY-MM-DD"))
		return false
	}
	return true
}

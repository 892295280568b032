package handler

import (
	"net/http"

	"novapos/internal/dto"
	"novapos/internal/service"

	"github.com/gin-gonic/gin"
)

type ComprasHandler struct{ svc service.CompraService }

func NewComprasHandler(svc service.CompraService) *ComprasHandler { return &ComprasHandler{svc: svc} }

// RegistrarCompra godoc
// @Summary      Registrar una compra a proveedor
// @Description  Suma el stock recibido, actualiza el costo y registra el egreso de caja.
// @Tags         compras
// @Accept       json
// @Produce      json
// @Param        body body dto.RegistrarCompraRequest true "Compra"
// @Success      201  {object} dto.CompraResponse
// @Failure      404  {object} apierror.APIError
// @Router       /v1/compras [post]
func (h *ComprasHandler) RegistrarCompra(c *gin.Context) {
	var req dto.RegistrarCompraRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Procesar(c.Request.Context(), req)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// ListarCompras godoc
// @Summary      Listar compras
// @Tags         compras
// @Produce      json
// @Success      200 {array} model.Compra
// @Router       /v1/compras [get]
func (h *ComprasHandler) ListarCompras(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.Listar())
}

// Reporte godoc
// @Summary      Egresos por compras
// @Tags         compras
// @Produce      json
// @Param        proveedor_id query string false "Proveedor"
// @Param        desde        query string false "YYYY-MM-DD"
// @Param        hasta        query string false "YYYY-MM-DD"
// @Success      200 {object} dto.ReporteComprasResponse
// @Router       /v1/compras/reporte [get]
func (h *ComprasHandler) Reporte(c *gin.Context) {
	var filtro dto.FiltroCompras
	if !bindQuery(c, &filtro) {
		return
	}
	c.JSON(http.StatusOK, h.svc.Reporte(filtro))
}

package handler

import (
	"net/http"

	"novapos/internal/dto"
	"novapos/internal/service"

	"github.com/gin-gonic/gin"
)

type VentasHandler struct{ svc service.VentaService }

func NewVentasHandler(svc service.VentaService) *VentasHandler { return &VentasHandler{svc: svc} }

// RegistrarVenta godoc
// @Summary      Registrar una nueva venta
// @Description  Descuenta stock, registra un ingreso de caja por cada pago y envía la venta al remoto en segundo plano.
// @Tags         ventas
// @Accept       json
// @Produce      json
// @Param        body body dto.RegistrarVentaRequest true "Carrito y pagos"
// @Success      201  {object} dto.VentaResponse
// @Failure      402  {object} apierror.APIError
// @Failure      404  {object} apierror.APIError
// @Router       /v1/ventas [post]
func (h *VentasHandler) RegistrarVenta(c *gin.Context) {
	var req dto.RegistrarVentaRequest
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

// ListarVentas godoc
// @Summary      Listar ventas
// @Tags         ventas
// @Produce      json
// @Param        fecha      query string false "YYYY-MM-DD"
// @Param        cliente_id query string false "Cliente"
// @Param        estado     query string false "Pagada | Parcial | Pendiente"
// @Success      200 {array} model.Venta
// @Router       /v1/ventas [get]
func (h *VentasHandler) ListarVentas(c *gin.Context) {
	var filtro dto.VentaFilter
	if !bindQuery(c, &filtro) {
		return
	}
	c.JSON(http.StatusOK, h.svc.Listar(filtro))
}

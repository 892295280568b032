package handler

import (
	"net/http"

	"novapos/internal/service"

	"github.com/gin-gonic/gin"
)

type InventarioHandler struct{ svc service.InventarioService }

func NewInventarioHandler(svc service.InventarioService) *InventarioHandler {
	return &InventarioHandler{svc: svc}
}

// ObtenerAlertas godoc
// @Summary Productos activos con stock en o bajo el mínimo
// @Tags inventario
// @Produce json
// @Success 200 {array} model.Producto
// @Router /v1/productos/alertas [get]
func (h *InventarioHandler) ObtenerAlertas(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.AlertasStock())
}

// Kardex godoc
// @Summary Historial de entradas y salidas de un producto
// @Tags inventario
// @Produce json
// @Param id path string true "Código del producto"
// @Success 200 {object} model.Kardex
// @Failure 404 {object} apierror.APIError
// @Router /v1/productos/{id}/kardex [get]
func (h *InventarioHandler) Kardex(c *gin.Context) {
	k, err := h.svc.Kardex(c.Param("id"))
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, k)
}

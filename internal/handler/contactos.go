package handler

import (
	"net/http"
	"time"

	"novapos/internal/dto"
	"novapos/internal/model"
	"novapos/internal/service"

	"github.com/gin-gonic/gin"
)

type ContactosHandler struct{ ledger service.LedgerService }

func NewContactosHandler(ledger service.LedgerService) *ContactosHandler {
	return &ContactosHandler{ledger: ledger}
}

// ListarClientes godoc
// @Summary Lista los clientes
// @Tags clientes
// @Produce json
// @Success 200 {array} model.Cliente
// @Router /v1/clientes [get]
func (h *ContactosHandler) ListarClientes(c *gin.Context) {
	c.JSON(http.StatusOK, h.ledger.Clientes())
}

// CrearCliente godoc
// @Summary Registra un cliente
// @Tags clientes
// @Accept json
// @Produce json
// @Param body body dto.ClienteRequest true "Cliente"
// @Success 201 {object} model.Cliente
// @Router /v1/clientes [post]
func (h *ContactosHandler) CrearCliente(c *gin.Context) {
	var req dto.ClienteRequest
	if !bindAndValidate(c, &req) {
		return
	}
	cl := model.Cliente{ID: req.ID, Nombre: req.Nombre, Telefono: req.Telefono, Tipo: model.TipoCliente(req.Tipo)}
	if cl.ID == "" {
		cl.ID = service.NuevoID("CL", time.Now())
	}
	if cl.Tipo == "" {
		cl.Tipo = model.ClienteCasual
	}
	if err := h.ledger.AgregarCliente(c.Request.Context(), cl); err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusCreated, cl)
}

// ListarProveedores godoc
// @Summary Lista los proveedores
// @Tags proveedores
// @Produce json
// @Success 200 {array} model.Proveedor
// @Router /v1/proveedores [get]
func (h *ContactosHandler) ListarProveedores(c *gin.Context) {
	c.JSON(http.StatusOK, h.ledger.Proveedores())
}

// GuardarProveedor godoc
// @Summary Crea o reemplaza un proveedor
// @Tags proveedores
// @Accept json
// @Produce json
// @Param body body dto.ProveedorRequest true "Proveedor"
// @Success 200 {object} model.Proveedor
// @Router /v1/proveedores [put]
func (h *ContactosHandler) GuardarProveedor(c *gin.Context) {
	var req dto.ProveedorRequest
	if !bindAndValidate(c, &req) {
		return
	}
	p := model.Proveedor{ID: req.ID, Nombre: req.Nombre, Telefono: req.Telefono, CondicionPago: model.CondicionPago(req.CondicionPago)}
	if p.ID == "" {
		p.ID = service.NuevoID("S", time.Now())
	}
	if p.CondicionPago == "" {
		p.CondicionPago = model.PagoContado
	}
	if err := h.ledger.GuardarProveedor(c.Request.Context(), p); err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// EliminarProveedor godoc
// @Summary Elimina un proveedor
// @Tags proveedores
// @Param id path string true "ID del proveedor"
// @Success 204
// @Router /v1/proveedores/{id} [delete]
func (h *ContactosHandler) EliminarProveedor(c *gin.Context) {
	if err := h.ledger.EliminarProveedor(c.Request.Context(), c.Param("id")); err != nil {
		responderError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

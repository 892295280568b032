package handler

import (
	"net/http"

	"novapos/internal/apierror"
	"novapos/internal/dto"
	"novapos/internal/model"
	"novapos/internal/service"

	"github.com/gin-gonic/gin"
)

// maxImportacion caps the uploaded workbook size.
const maxImportacion = 8 << 20

type ProductosHandler struct {
	ledger service.LedgerService
	inv    service.InventarioService
	imp    service.ImportacionService
}

func NewProductosHandler(ledger service.LedgerService, inv service.InventarioService, imp service.ImportacionService) *ProductosHandler {
	return &ProductosHandler{ledger: ledger, inv: inv, imp: imp}
}

// Listar godoc
// @Summary Lista el catálogo
// @Tags productos
// @Produce json
// @Param q query string false "Texto en nombre, categoría o código"
// @Param categoria query string false "Categoría exacta"
// @Param activo query string false "true | false | all"
// @Param stock_bajo query bool false "Solo stock bajo"
// @Success 200 {array} model.Producto
// @Router /v1/productos [get]
func (h *ProductosHandler) Listar(c *gin.Context) {
	var filtro dto.ProductoFilter
	if !bindQuery(c, &filtro) {
		return
	}
	c.JSON(http.StatusOK, h.inv.Listar(filtro))
}

// Guardar godoc
// @Summary Crea o reemplaza un producto
// @Tags productos
// @Accept json
// @Produce json
// @Param body body dto.GuardarProductoRequest true "Producto"
// @Success 200 {object} model.Producto
// @Failure 422 {object} apierror.ValidationError
// @Router /v1/productos [put]
func (h *ProductosHandler) Guardar(c *gin.Context) {
	var req dto.GuardarProductoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	p := model.Producto{
		ID:           req.ID,
		Nombre:       req.Nombre,
		Categoria:    req.Categoria,
		PrecioCompra: req.PrecioCompra,
		PrecioVenta:  req.PrecioVenta,
		Stock:        req.Stock,
		StockMinimo:  req.StockMinimo,
		Activo:       req.Activo == nil || *req.Activo,
	}
	if p.Categoria == "" {
		p.Categoria = "General"
	}
	if err := h.ledger.GuardarProducto(c.Request.Context(), p); err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// Importar godoc
// @Summary Importa productos desde un libro xlsx
// @Tags productos
// @Accept multipart/form-data
// @Produce json
// @Param archivo formData file true "Libro con el formato de la plantilla"
// @Success 200 {object} dto.ImportacionResponse
// @Failure 400 {object} apierror.APIError
// @Router /v1/productos/importar [post]
func (h *ProductosHandler) Importar(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxImportacion)
	fh, err := c.FormFile("archivo")
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Falta el archivo 'archivo'"))
		return
	}
	f, err := fh.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("No se pudo leer el archivo"))
		return
	}
	defer f.Close()

	resp, err := h.imp.Importar(c.Request.Context(), f)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Plantilla godoc
// @Summary Descarga la plantilla de importación
// @Tags productos
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Success 200 {file} file
// @Router /v1/productos/plantilla [get]
func (h *ProductosHandler) Plantilla(c *gin.Context) {
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", `attachment; filename="Plantilla_Inventario_NovaPOS.xlsx"`)
	if err := h.imp.Plantilla(c.Writer); err != nil {
		_ = c.Error(err)
	}
}

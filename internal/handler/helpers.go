package handler

import (
	"errors"
	"net/http"
	"reflect"

	"novapos/internal/apierror"
	"novapos/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var validate = validator.New()

func init() {
	// decimal.Decimal validates as a float so min=0 and gt=0 work on money.
	validate.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if v, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := v.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
}

// bindAndValidate binds the JSON body and runs the validator tags. On false
// the response is already written.
func bindAndValidate(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("JSON invalido: "+err.Error()))
		return false
	}
	return validar(c, req)
}

// bindQuery is bindAndValidate for query-string filters.
func bindQuery(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindQuery(req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Parametros invalidos: "+err.Error()))
		return false
	}
	return validar(c, req)
}

func validar(c *gin.Context, req interface{}) bool {
	if err := validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
			return false
		}
		fields := make(map[string]string)
		for _, fe := range verrs {
			fields[fe.Field()] = fe.Tag()
		}
		c.JSON(http.StatusUnprocessableEntity, apierror.NewValidation(fields))
		return false
	}
	return true
}

// responderError maps service errors to status codes. Anything unknown is
// attached to the context for ErrorHandler to log and answer with a 500.
func responderError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrProductoNoEncontrado):
		c.JSON(http.StatusNotFound, apierror.NewCode("producto_no_encontrado", err.Error()))
	case errors.Is(err, service.ErrProveedorNoEncontrado):
		c.JSON(http.StatusNotFound, apierror.NewCode("proveedor_no_encontrado", err.Error()))
	case errors.Is(err, service.ErrProductoInactivo):
		c.JSON(http.StatusConflict, apierror.NewCode("producto_inactivo", err.Error()))
	case errors.Is(err, service.ErrPagoInsuficiente):
		c.JSON(http.StatusPaymentRequired, apierror.NewCode("pago_insuficiente", err.Error()))
	case errors.Is(err, service.ErrImportacionInvalida):
		c.JSON(http.StatusBadRequest, apierror.NewCode("importacion_invalida", err.Error()))
	default:
		_ = c.Error(err)
	}
}

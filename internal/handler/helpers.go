package handler

import (
	"errors"
	"net/http"
	"reflect"

	"github.com/apenap/sis.ret-alpha/internal/apierror"
	"github.com/apenap/sis.ret-alpha/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var validate = validator.New()

func init() {
	// Register decimal.Decimal as a numeric type so that validator tags like
	// min=0, gt=0, required work without panicking ("Bad field type decimal.Decimal").
	validate.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if v, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := v.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
}

// bindAndValidate binds JSON body and runs go-playground/validator tags.
// Returns false and writes the error response if validation fails —
// the caller should return immediately without writing another response.
func bindAndValidate(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("JSON invalido: "+err.Error()))
		return false
	}
	if err := validate.Struct(req); err != nil {
		fields := make(map[string]string)
		for _, fe := range err.(validator.ValidationErrors) {
			fields[fe.Field()] = fe.Tag()
		}
		c.JSON(http.StatusUnprocessableEntity, apierror.NewValidation(fields))
		return false
	}
	return true
}

// respondError maps typed service errors to HTTP statuses:
//
//	NoEncontradoError        → 404
//	StockInsuficienteError   → 409
//	TransicionInvalidaError  → 409
//	ConversionInvalidaError  → 422
//	ErrCarritoVacio          → 400
//	anything else            → 500 (message hidden from the client)
func respondError(c *gin.Context, err error) {
	var noEncontrado *service.NoEncontradoError
	var stock *service.StockInsuficienteError
	var transicion *service.TransicionInvalidaError
	var conversion *service.ConversionInvalidaError

	switch {
	case errors.As(err, &noEncontrado):
		c.JSON(http.StatusNotFound, apierror.New(err.Error()))
	case errors.As(err, &stock):
		c.JSON(http.StatusConflict, apierror.New(err.Error()))
	case errors.As(err, &transicion):
		c.JSON(http.StatusConflict, apierror.New(err.Error()))
	case errors.As(err, &conversion):
		c.JSON(http.StatusUnprocessableEntity, apierror.New(err.Error()))
	case errors.Is(err, service.ErrCarritoVacio):
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
	default:
		_ = c.Error(err) // logged by the error handler middleware
		c.JSON(http.StatusInternalServerError, apierror.New("Error interno del servidor"))
	}
}

package handler

import (
	"net/http"

	"github.com/apenap/sis.ret-alpha/internal/apierror"
	"github.com/apenap/sis.ret-alpha/internal/dto"
	"github.com/apenap/sis.ret-alpha/internal/service"

	"github.com/gin-gonic/gin"
)

type ConfiguracionHandler struct{ svc service.ConfiguracionService }

func NewConfiguracionHandler(svc service.ConfiguracionService) *ConfiguracionHandler {
	return &ConfiguracionHandler{svc: svc}
}

// ObtenerCategoria returns every setting of one category as a flat map.
func (h *ConfiguracionHandler) ObtenerCategoria(c *gin.Context) {
	valores, err := h.svc.ObtenerCategoria(c.Request.Context(), c.Param("categoria"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusOK, valores)
}

// Guardar upserts a batch of settings in one category.
func (h *ConfiguracionHandler) Guardar(c *gin.Context) {
	var req dto.GuardarConfiguracionRequest
	if !bindAndValidate(c, &req) {
		return
	}
	if err := h.svc.Guardar(c.Request.Context(), c.Param("categoria"), req.Valores); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	c.Status(http.StatusNoContent)
}

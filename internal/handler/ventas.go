package handler

import (
	"net/http"
	"time"

	"github.com/apenap/sis.ret-alpha/internal/apierror"
	"github.com/apenap/sis.ret-alpha/internal/dto"
	"github.com/apenap/sis.ret-alpha/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type VentasHandler struct{ svc service.VentaService }

func NewVentasHandler(svc service.VentaService) *VentasHandler { return &VentasHandler{svc: svc} }

// ProcesarVenta crea una venta atómica: descuenta stock línea por línea,
// registra el ticket y despacha la facturación asíncrona.
func (h *VentasHandler) ProcesarVenta(c *gin.Context) {
	var req dto.ProcesarVentaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.ProcesarVenta(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// AnularVenta restores the full stock of a completed sale and marks it
// cancelada.
func (h *VentasHandler) AnularVenta(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID invalido"))
		return
	}
	var req dto.AnularVentaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	if err := h.svc.AnularVenta(c.Request.Context(), id, req.Motivo); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// RegistrarDevolucion registers a partial or full return against a sale.
func (h *VentasHandler) RegistrarDevolucion(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID invalido"))
		return
	}
	var req dto.RegistrarDevolucionRequest
	if !bindAndValidate(c, &req) {
		return
	}
	if err := h.svc.RegistrarDevolucion(c.Request.Context(), id, req); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ListarVentas returns a paginated, filtered list of sales.
func (h *VentasHandler) ListarVentas(c *gin.Context) {
	var filter dto.VentaFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	resp, err := h.svc.ListVentas(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Resumen rolls up completed sales between ?desde and ?hasta (inclusive,
// both default to today).
func (h *VentasHandler) Resumen(c *gin.Context) {
	var filter dto.ResumenFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}

	hoy := time.Now()
	desde, hasta := hoy, hoy
	if filter.Desde != "" {
		var err error
		if desde, err = time.Parse("2006-01-02", filter.Desde); err != nil {
			c.JSON(http.StatusBadRequest, apierror.New("desde invalido: se espera YYYY-MM-DD"))
			return
		}
	}
	if filter.Hasta != "" {
		var err error
		if hasta, err = time.Parse("2006-01-02", filter.Hasta); err != nil {
			c.JSON(http.StatusBadRequest, apierror.New("hasta invalido: se espera YYYY-MM-DD"))
			return
		}
	}
	if hasta.Before(desde) {
		c.JSON(http.StatusBadRequest, apierror.New("hasta no puede ser anterior a desde"))
		return
	}

	resp, err := h.svc.ResumenVentas(c.Request.Context(), desde, hasta)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

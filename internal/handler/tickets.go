package handler

import (
	"net/http"

	"github.com/apenap/sis.ret-alpha/internal/apierror"
	"github.com/apenap/sis.ret-alpha/internal/infra"
	"github.com/apenap/sis.ret-alpha/internal/repository"
	"github.com/apenap/sis.ret-alpha/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// TicketsHandler renders the thermal POS receipt on demand. It reads the
// venta straight from the repository: the ticket is a view, not an operation.
type TicketsHandler struct {
	ventaRepo     repository.VentaRepository
	configuracion service.ConfiguracionService
	storagePath   string
}

func NewTicketsHandler(ventaRepo repository.VentaRepository, configuracion service.ConfiguracionService, storagePath string) *TicketsHandler {
	return &TicketsHandler{ventaRepo: ventaRepo, configuracion: configuracion, storagePath: storagePath}
}

func (h *TicketsHandler) Descargar(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID invalido"))
		return
	}
	venta, err := h.ventaRepo.FindByID(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, apierror.New("Venta no encontrada"))
		return
	}

	nombre := h.configuracion.Valor(c.Request.Context(), "nombre_negocio", "SIS.RET")
	path, err := infra.GenerarTicketPDF(venta, nombre, h.storagePath)
	if err != nil {
		respondError(c, err)
		return
	}
	c.Header("Content-Disposition", "attachment; filename=ticket.pdf")
	c.File(path)
}

package handler

import (
	"net/http"

	"github.com/apenap/sis.ret-alpha/internal/apierror"
	"github.com/apenap/sis.ret-alpha/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type FacturacionHandler struct{ svc service.FacturacionService }

func NewFacturacionHandler(svc service.FacturacionService) *FacturacionHandler {
	return &FacturacionHandler{svc: svc}
}

// Emitir (re-)emits the CFDI for a sale synchronously. Idempotent: a sale
// already emitted returns its existing comprobante.
func (h *FacturacionHandler) Emitir(c *gin.Context) {
	ventaID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID invalido"))
		return
	}
	comp, err := h.svc.GenerarComprobante(c.Request.Context(), ventaID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"id":           comp.ID,
		"venta_id":     comp.VentaID,
		"serie":        comp.Serie,
		"folio_fiscal": comp.FolioFiscal,
		"subtotal":     comp.Subtotal,
		"iva":          comp.IVA,
		"total":        comp.Total,
		"estado":       comp.Estado,
	})
}

// DescargarXML streams the emitted CFDI XML.
func (h *FacturacionHandler) DescargarXML(c *gin.Context) {
	ventaID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID invalido"))
		return
	}
	path, err := h.svc.ObtenerXML(c.Request.Context(), ventaID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.Header("Content-Disposition", "attachment; filename=comprobante.xml")
	c.File(path)
}

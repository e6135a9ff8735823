package handler

import (
	"net/http"

	"github.com/apenap/sis.ret-alpha/internal/apierror"
	"github.com/apenap/sis.ret-alpha/internal/dto"
	"github.com/apenap/sis.ret-alpha/internal/model"
	"github.com/apenap/sis.ret-alpha/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type DocumentosHandler struct{ svc service.DocumentoService }

func NewDocumentosHandler(svc service.DocumentoService) *DocumentosHandler {
	return &DocumentosHandler{svc: svc}
}

// acciones that may arrive via POST /v1/documentos/:id/:accion.
var accionesValidas = map[string]bool{
	"aprobar":   true,
	"rechazar":  true,
	"aceptar":   true,
	"avanzar":   true,
	"completar": true,
	"entregar":  true,
	"pagar":     true,
	"cancelar":  true,
}

// Crear creates a requisición or cotización de venta — the two chain heads.
// Downstream kinds are only born through conversion.
func (h *DocumentosHandler) Crear(c *gin.Context) {
	var req dto.CrearDocumentoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Crear(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *DocumentosHandler) Obtener(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID invalido"))
		return
	}
	resp, err := h.svc.Obtener(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *DocumentosHandler) Listar(c *gin.Context) {
	var filter dto.DocumentoFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	resp, err := h.svc.Listar(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Transicionar applies the acción in the URL (aprobar, rechazar, aceptar,
// avanzar, completar, entregar, pagar, cancelar) to the document.
func (h *DocumentosHandler) Transicionar(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID invalido"))
		return
	}
	accion := c.Param("accion")
	if !accionesValidas[accion] {
		c.JSON(http.StatusBadRequest, apierror.New("accion desconocida: "+accion))
		return
	}
	resp, err := h.svc.Transicionar(c.Request.Context(), id, accion)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Convertir creates the successor document from a conversion-eligible source.
func (h *DocumentosHandler) Convertir(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID invalido"))
		return
	}
	var req dto.ConvertirDocumentoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Convertir(c.Request.Context(), id, model.TipoDocumento(req.TipoDestino))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// ReemplazarDetalles wholesale-replaces the lines of a pending document.
func (h *DocumentosHandler) ReemplazarDetalles(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID invalido"))
		return
	}
	var req dto.ReemplazarDetallesRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.ReemplazarDetalles(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

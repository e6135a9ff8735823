package handler

import (
	"net/http"
	"strconv"

	"github.com/apenap/sis.ret-alpha/internal/apierror"
	"github.com/apenap/sis.ret-alpha/internal/dto"
	"github.com/apenap/sis.ret-alpha/internal/repository"
	"github.com/apenap/sis.ret-alpha/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type InventarioHandler struct {
	svc            service.InventarioService
	movimientoRepo repository.MovimientoStockRepository
}

func NewInventarioHandler(svc service.InventarioService, movimientoRepo repository.MovimientoStockRepository) *InventarioHandler {
	return &InventarioHandler{svc: svc, movimientoRepo: movimientoRepo}
}

// ObtenerAlertas lists active products at or below their reorder threshold.
func (h *InventarioHandler) ObtenerAlertas(c *gin.Context) {
	alertas, err := h.svc.ObtenerAlertas(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, alertas)
}

// ListarMovimientos pages through the immutable stock ledger, optionally
// filtered by producto_id and tipo.
func (h *InventarioHandler) ListarMovimientos(c *gin.Context) {
	filter := repository.MovimientoStockFilter{
		Tipo: c.Query("tipo"),
	}
	if v := c.Query("producto_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, apierror.New("producto_id invalido"))
			return
		}
		filter.ProductoID = &id
	}
	filter.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	filter.Limit, _ = strconv.Atoi(c.DefaultQuery("limit", "100"))

	movimientos, total, err := h.movimientoRepo.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}

	items := make([]dto.MovimientoStockResponse, 0, len(movimientos))
	for _, m := range movimientos {
		nombre := ""
		if m.Producto != nil {
			nombre = m.Producto.Nombre
		}
		var referencia *string
		if m.ReferenciaID != nil {
			s := m.ReferenciaID.String()
			referencia = &s
		}
		items = append(items, dto.MovimientoStockResponse{
			ID:            m.ID.String(),
			ProductoID:    m.ProductoID.String(),
			Producto:      nombre,
			Tipo:          m.Tipo,
			Cantidad:      m.Cantidad,
			StockAnterior: m.StockAnterior,
			StockNuevo:    m.StockNuevo,
			Motivo:        m.Motivo,
			ReferenciaID:  referencia,
			CreatedAt:     m.CreatedAt.Format("2006-01-02T15:04:05Z"),
		})
	}

	c.JSON(http.StatusOK, dto.MovimientoStockListResponse{
		Data:  items,
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	})
}

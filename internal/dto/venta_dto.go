package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

// ItemCarritoRequest is one cart line sent by the POS front.
type ItemCarritoRequest struct {
	ProductoID     string          `json:"producto_id"     validate:"required,uuid"`
	Cantidad       int             `json:"cantidad"        validate:"required,min=1"`
	PrecioUnitario decimal.Decimal `json:"precio_unitario" validate:"min=0"`
}

// ProcesarVentaRequest is the explicit cart passed into the sale processor.
// Efectivo below the total is accepted: cambio is simply clamped at zero.
type ProcesarVentaRequest struct {
	Items     []ItemCarritoRequest `json:"items"      validate:"required,min=1,dive"`
	ClienteID *string              `json:"cliente_id" validate:"omitempty,uuid"`
	Efectivo  decimal.Decimal      `json:"efectivo"   validate:"min=0"`
	// ClienteEmail: optional — when present, the facturacion worker mails the CFDI.
	ClienteEmail *string `json:"cliente_email" validate:"omitempty,email"`
}

type AnularVentaRequest struct {
	Motivo string `json:"motivo" validate:"required,min=5"`
}

// ItemDevolucionRequest selects sale lines (by product) being returned.
type ItemDevolucionRequest struct {
	ProductoID string `json:"producto_id" validate:"required,uuid"`
	Cantidad   int    `json:"cantidad"    validate:"required,min=1"`
}

type RegistrarDevolucionRequest struct {
	Motivo string                  `json:"motivo" validate:"required,min=5"`
	Items  []ItemDevolucionRequest `json:"items"  validate:"required,min=1,dive"`
}

// VentaFilter is bound from the query string of GET /v1/ventas.
type VentaFilter struct {
	Fecha  string `form:"fecha"`                     // YYYY-MM-DD; empty = hoy
	Estado string `form:"estado,default=completada"` // completada | cancelada | devolucion | all
	Page   int    `form:"page,default=1"`
	Limit  int    `form:"limit,default=50"`
}

// ResumenFilter bounds the sales rollup; both dates inclusive.
type ResumenFilter struct {
	Desde string `form:"desde"` // YYYY-MM-DD; empty = hoy
	Hasta string `form:"hasta"` // YYYY-MM-DD; empty = hoy
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type DetalleVentaResponse struct {
	ProductoID     string          `json:"producto_id"`
	Producto       string          `json:"producto"`
	Cantidad       int             `json:"cantidad"`
	PrecioUnitario decimal.Decimal `json:"precio_unitario"`
	Subtotal       decimal.Decimal `json:"subtotal"`
}

type VentaResponse struct {
	ID        string                 `json:"id"`
	Folio     string                 `json:"folio"`
	ClienteID *string                `json:"cliente_id,omitempty"`
	Detalles  []DetalleVentaResponse `json:"detalles"`
	Total     decimal.Decimal        `json:"total"`
	Efectivo  decimal.Decimal        `json:"efectivo"`
	Cambio    decimal.Decimal        `json:"cambio"`
	Estado    string                 `json:"estado"`
	CreatedAt string                 `json:"created_at"`
}

type VentaListResponse struct {
	Data  []VentaResponse `json:"data"`
	Total int64           `json:"total"`
	Page  int             `json:"page"`
	Limit int             `json:"limit"`
}

// ResumenVentasResponse is the read-only rollup of completed sales.
// Zero matches yield {0, 0}, never an error.
type ResumenVentasResponse struct {
	TotalVentas   int64           `json:"total_ventas"`
	TotalIngresos decimal.Decimal `json:"total_ingresos"`
}

package dto

import "github.com/shopspring/decimal"

// DetalleDocumentoRequest is one line of a corporate document. ProductoID is
// optional — free-text lines are allowed.
type DetalleDocumentoRequest struct {
	ProductoID     *string         `json:"producto_id"     validate:"omitempty,uuid"`
	Descripcion    string          `json:"descripcion"     validate:"required"`
	Cantidad       int             `json:"cantidad"        validate:"required,min=1"`
	UnidadMedida   *string         `json:"unidad_medida"`
	PrecioUnitario decimal.Decimal `json:"precio_unitario" validate:"min=0"`
}

// CrearDocumentoRequest creates a document at the head of a chain
// (requisición or cotización de venta). Downstream kinds are only created
// through conversion.
type CrearDocumentoRequest struct {
	Tipo string `json:"tipo" validate:"required,oneof=requisicion cotizacion_venta"`

	// Requisición
	Solicitante   *string `json:"solicitante"`
	Departamento  *string `json:"departamento"`
	Justificacion *string `json:"justificacion"`

	// Cotización
	ClienteID       *string `json:"cliente_id"       validate:"omitempty,uuid"`
	ProveedorID     *string `json:"proveedor_id"     validate:"omitempty,uuid"`
	Validez         *int    `json:"validez"          validate:"omitempty,min=1"`
	CondicionesPago *string `json:"condiciones_pago"`
	Observaciones   *string `json:"observaciones"`

	Detalles []DetalleDocumentoRequest `json:"detalles" validate:"omitempty,dive"`
}

// ReemplazarDetallesRequest wholesale-replaces a pending document's lines.
type ReemplazarDetallesRequest struct {
	Detalles []DetalleDocumentoRequest `json:"detalles" validate:"required,dive"`
}

// ConvertirDocumentoRequest names the target kind; it must be the single
// designated successor of the source document's kind.
type ConvertirDocumentoRequest struct {
	TipoDestino string `json:"tipo_destino" validate:"required"`
}

type DocumentoFilter struct {
	Tipo   string `form:"tipo"`
	Estado string `form:"estado,default=todos"`
	Page   int    `form:"page,default=1"`
	Limit  int    `form:"limit,default=50"`
}

type DetalleDocumentoResponse struct {
	ProductoID     *string         `json:"producto_id,omitempty"`
	Descripcion    string          `json:"descripcion"`
	Cantidad       int             `json:"cantidad"`
	UnidadMedida   *string         `json:"unidad_medida,omitempty"`
	PrecioUnitario decimal.Decimal `json:"precio_unitario"`
	Importe        decimal.Decimal `json:"importe"`
}

type DocumentoResponse struct {
	ID                string                     `json:"id"`
	Tipo              string                     `json:"tipo"`
	Folio             string                     `json:"folio"`
	Estado            string                     `json:"estado"`
	Total             decimal.Decimal            `json:"total"`
	DocumentoOrigenID *string                    `json:"documento_origen_id,omitempty"`
	ProveedorID       *string                    `json:"proveedor_id,omitempty"`
	ClienteID         *string                    `json:"cliente_id,omitempty"`
	Detalles          []DetalleDocumentoResponse `json:"detalles"`
	CreatedAt         string                     `json:"created_at"`
}

type DocumentoListResponse struct {
	Data  []DocumentoResponse `json:"data"`
	Total int64               `json:"total"`
	Page  int                 `json:"page"`
	Limit int                 `json:"limit"`
}

package dto

import "github.com/shopspring/decimal"

type CrearProductoRequest struct {
	Codigo       *string         `json:"codigo"`
	CodigoBarras *string         `json:"codigo_barras"`
	Nombre       string          `json:"nombre"        validate:"required"`
	Descripcion  *string         `json:"descripcion"`
	PrecioCompra decimal.Decimal `json:"precio_compra" validate:"min=0"`
	PrecioVenta  decimal.Decimal `json:"precio_venta"  validate:"min=0"`
	Stock        int             `json:"stock"         validate:"min=0"`
	StockMinimo  int             `json:"stock_minimo"  validate:"min=0"`
	Categoria    *string         `json:"categoria"`
	ProveedorID  string          `json:"proveedor_id"  validate:"required,uuid"`
	ImagenURL    *string         `json:"imagen_url"`
}

type ActualizarProductoRequest = CrearProductoRequest

type ProductoFilter struct {
	Nombre    string `form:"q"`
	Categoria string `form:"categoria"`
	Activo    string `form:"activo"` // "", "false", "all"
	Page      int    `form:"page,default=1"`
	Limit     int    `form:"limit,default=50"`
}

type ProductoResponse struct {
	ID           string          `json:"id"`
	Codigo       *string         `json:"codigo,omitempty"`
	CodigoBarras *string         `json:"codigo_barras,omitempty"`
	Nombre       string          `json:"nombre"`
	Descripcion  *string         `json:"descripcion,omitempty"`
	PrecioCompra decimal.Decimal `json:"precio_compra"`
	PrecioVenta  decimal.Decimal `json:"precio_venta"`
	Stock        int             `json:"stock"`
	StockMinimo  int             `json:"stock_minimo"`
	Categoria    *string         `json:"categoria,omitempty"`
	ProveedorID  string          `json:"proveedor_id"`
	Activo       bool            `json:"activo"`
}

type ProductoListResponse struct {
	Data  []ProductoResponse `json:"data"`
	Total int64              `json:"total"`
	Page  int                `json:"page"`
	Limit int                `json:"limit"`
}

// AlertaStockResponse lists a product at or below its reorder threshold.
type AlertaStockResponse struct {
	ProductoID  string `json:"producto_id"`
	Nombre      string `json:"nombre"`
	Stock       int    `json:"stock"`
	StockMinimo int    `json:"stock_minimo"`
}

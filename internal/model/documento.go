package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TipoDocumento discriminates the seven corporate document kinds that share
// the documentos table. The purchasing chain is requisicion → cotizacion de
// compra → orden de compra → factura de compra; the sales chain is
// cotizacion de venta → remision → factura de venta.
type TipoDocumento string

const (
	TipoRequisicion      TipoDocumento = "requisicion"
	TipoCotizacionCompra TipoDocumento = "cotizacion_compra"
	TipoOrdenCompra      TipoDocumento = "orden_compra"
	TipoFacturaCompra    TipoDocumento = "factura_compra"
	TipoCotizacionVenta  TipoDocumento = "cotizacion_venta"
	TipoRemision         TipoDocumento = "remision"
	TipoFacturaVenta     TipoDocumento = "factura_venta"
)

// Estados de documento. Cada tipo usa un subconjunto (ver tabla de flujos
// en el servicio de documentos).
const (
	EstadoPendiente  = "pendiente"
	EstadoAprobada   = "aprobada"
	EstadoAceptada   = "aceptada"
	EstadoRechazada  = "rechazada"
	EstadoParcial    = "parcial"
	EstadoCompletada = "completada"
	EstadoEntregada  = "entregada"
	EstadoPagada     = "pagada"
	EstadoCancelada  = "cancelada"
)

// Documento is any corporate purchasing/sales record progressing through the
// approval/conversion workflow. Documents are never physically deleted:
// rejected and cancelled ones remain as historical records.
//
// DocumentoOrigenID is the non-owning upstream link set once at conversion
// time (e.g. a cotización points at the requisición it came from).
type Documento struct {
	ID                uuid.UUID     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Tipo              TipoDocumento `gorm:"type:varchar(30);not null;index"`
	Folio             string        `gorm:"type:varchar(20);uniqueIndex;not null"`
	Estado            string        `gorm:"type:varchar(20);not null;default:'pendiente'"`
	Total             decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	DocumentoOrigenID *uuid.UUID      `gorm:"type:uuid;index"`

	ProveedorID *uuid.UUID `gorm:"type:uuid;index"`
	ClienteID   *uuid.UUID `gorm:"type:uuid;index"`

	// Cabecera de requisición
	Solicitante   *string `gorm:"type:varchar(100)"`
	Departamento  *string `gorm:"type:varchar(100)"`
	Justificacion *string

	// Cabecera de cotizaciones / órdenes
	Validez         *int    // días de validez
	CondicionesPago *string `gorm:"type:varchar(100)"`
	Observaciones   *string

	FechaEsperadaEntrega *time.Time
	FechaEntrega         *time.Time
	FechaFactura         *time.Time
	// FolioFiscal guarda el UUID del CFDI cuando el documento es una factura
	FolioFiscal *string `gorm:"type:varchar(50)"`

	CreatedAt time.Time
	UpdatedAt time.Time

	DocumentoOrigen *Documento         `gorm:"foreignKey:DocumentoOrigenID"`
	Proveedor       *Proveedor         `gorm:"foreignKey:ProveedorID"`
	Cliente         *Cliente           `gorm:"foreignKey:ClienteID"`
	Detalles        []DetalleDocumento `gorm:"foreignKey:DocumentoID;constraint:OnDelete:CASCADE"`
}

func (Documento) TableName() string { return "documentos" }

// DetalleDocumento is one line of a corporate document, owned by it
// (cascade-deleted on replace). ProductoID is nullable: corporate documents
// may carry free-text lines that are not in the catalog.
type DetalleDocumento struct {
	ID             uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	DocumentoID    uuid.UUID  `gorm:"type:uuid;not null;index"`
	ProductoID     *uuid.UUID `gorm:"type:uuid"`
	Descripcion    string     `gorm:"not null"`
	Cantidad       int        `gorm:"not null"`
	UnidadMedida   *string    `gorm:"type:varchar(20)"`
	PrecioUnitario decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	Importe        decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	// Posicion preserves line order across conversions
	Posicion int `gorm:"not null;default:0"`

	Producto *Producto `gorm:"foreignKey:ProductoID"`
}

func (DetalleDocumento) TableName() string { return "detalles_documento" }

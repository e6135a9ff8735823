package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Estados de una venta. Una venta nace "completada" y solo cambia de estado
// por anulación o devolución — nunca se edita ni se borra.
const (
	VentaCompletada = "completada"
	VentaCancelada  = "cancelada"
	VentaDevolucion = "devolucion"
)

// Venta is a finalized point-of-sale transaction. Immutable after creation
// except for its estado.
type Venta struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Folio     string     `gorm:"type:varchar(20);uniqueIndex;not null"`
	ClienteID *uuid.UUID `gorm:"type:uuid;index"`
	Total     decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	Efectivo  decimal.Decimal `gorm:"type:decimal(10,2)"`
	Cambio    decimal.Decimal `gorm:"type:decimal(10,2)"`
	Estado    string          `gorm:"type:varchar(20);not null;default:'completada'"`
	CreatedAt time.Time

	Cliente  *Cliente       `gorm:"foreignKey:ClienteID"`
	Detalles []DetalleVenta `gorm:"foreignKey:VentaID;constraint:OnDelete:CASCADE"`
}

func (Venta) TableName() string { return "ventas" }

// DetalleVenta is one line of a sale, owned by its Venta (cascade-deleted).
type DetalleVenta struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	VentaID        uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductoID     uuid.UUID       `gorm:"type:uuid;not null"`
	Cantidad       int             `gorm:"not null"`
	PrecioUnitario decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	Subtotal       decimal.Decimal `gorm:"type:decimal(10,2);not null"`

	Producto *Producto `gorm:"foreignKey:ProductoID"`
}

func (DetalleVenta) TableName() string { return "detalles_venta" }

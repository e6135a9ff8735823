package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Devolucion records a customer return against a completed sale. Creating
// one restores stock and moves the venta to estado "devolucion".
type Devolucion struct {
	ID              uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	VentaID         uuid.UUID       `gorm:"type:uuid;not null;index"`
	Motivo          *string
	TotalDevolucion decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	CreatedAt       time.Time

	Venta    *Venta              `gorm:"foreignKey:VentaID"`
	Detalles []DetalleDevolucion `gorm:"foreignKey:DevolucionID;constraint:OnDelete:CASCADE"`
}

func (Devolucion) TableName() string { return "devoluciones" }

type DetalleDevolucion struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	DevolucionID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductoID     uuid.UUID       `gorm:"type:uuid;not null"`
	Cantidad       int             `gorm:"not null"`
	PrecioUnitario decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	Subtotal       decimal.Decimal `gorm:"type:decimal(10,2);not null"`

	Producto *Producto `gorm:"foreignKey:ProductoID"`
}

func (DetalleDevolucion) TableName() string { return "detalles_devolucion" }

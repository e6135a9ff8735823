package model

import (
	"time"

	"github.com/google/uuid"
)

// Cliente represents a customer (mostrador walk-in or corporate account).
// The CFDI 4.0 fields are only required when the customer requests factura.
type Cliente struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Nombre      string    `gorm:"index;not null"`
	Apellido    *string
	Telefono    *string
	Email       *string
	Direccion   *string
	TipoCliente string `gorm:"not null;default:'mostrador'"` // "mostrador" | "corporativo"

	// Datos fiscales CFDI 4.0
	RazonSocial   *string `gorm:"type:varchar(200)"`
	RFC           *string `gorm:"type:varchar(13);column:rfc"`
	RegimenFiscal *string `gorm:"type:varchar(100)"`
	CodigoPostal  *string `gorm:"type:varchar(5)"`
	// UsoCFDI: G01, G03, etc.
	UsoCFDI *string `gorm:"type:varchar(50);column:uso_cfdi"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName overrides GORM's default pluralization (clientes, not cliente).
func (Cliente) TableName() string { return "clientes" }

package model

import (
	"time"

	"github.com/google/uuid"
)

// Proveedor represents a supplier with commercial and fiscal data.
type Proveedor struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Nombre    string    `gorm:"index;not null"`
	Contacto  *string
	Telefono  *string
	Email     *string
	Direccion *string

	// Datos fiscales CFDI 4.0
	RazonSocial   *string `gorm:"type:varchar(200)"`
	RFC           *string `gorm:"type:varchar(13);column:rfc"`
	RegimenFiscal *string `gorm:"type:varchar(100)"`
	CodigoPostal  *string `gorm:"type:varchar(5)"`

	Activo    bool `gorm:"not null;default:true"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Productos []Producto `gorm:"foreignKey:ProveedorID"`
}

func (Proveedor) TableName() string { return "proveedores" }

package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Producto is a catalog product. Stock is mutated exclusively through the
// inventory service (guarded UPDATE inside the sale transaction) — never
// written directly by handlers or the document workflow.
type Producto struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Codigo       *string   `gorm:"uniqueIndex"`
	CodigoBarras *string   `gorm:"uniqueIndex"`
	Nombre       string    `gorm:"index;not null"`
	Descripcion  *string
	PrecioCompra decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	PrecioVenta  decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	Stock        int             `gorm:"not null;default:0;check:stock >= 0"`
	StockMinimo  int             `gorm:"not null;default:5"`
	Categoria    *string         `gorm:"type:varchar(50)"`

	// Datos fiscales SAT
	ClaveProductoSAT  *string `gorm:"type:varchar(50);column:clave_producto_sat"`
	UnidadMedidaSAT   string  `gorm:"type:varchar(20);column:unidad_medida_sat;default:'H87'"`
	ClaveUnidadSAT    string  `gorm:"type:varchar(3);column:clave_unidad_sat;default:'E48'"`
	ObjetoImpuestoSAT string  `gorm:"type:varchar(2);column:objeto_impuesto_sat;default:'02'"`

	ProveedorID uuid.UUID `gorm:"type:uuid;not null;index"`
	ImagenURL   *string   `gorm:"type:varchar(200)"`
	Activo      bool      `gorm:"not null;default:true"`
	CreatedAt   time.Time
	UpdatedAt   time.Time

	Proveedor *Proveedor `gorm:"foreignKey:ProveedorID"`
}

func (Producto) TableName() string { return "productos" }

// NecesitaReabastecimiento reports whether stock is at or below the reorder
// threshold. Read-only — it never participates in the sale transaction.
func (p *Producto) NecesitaReabastecimiento() bool {
	return p.Stock <= p.StockMinimo
}

package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ComprobanteFiscal stores one CFDI 4.0 emission for a venta.
// Estado: "pendiente" | "emitido" | "error"
type ComprobanteFiscal struct {
	ID      uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	VentaID uuid.UUID `gorm:"type:uuid;index;not null"`
	Serie   string    `gorm:"type:varchar(5);not null;default:'A'"`
	// FolioFiscal is the UUID assigned by the timbrado (stubbed — no real PAC)
	FolioFiscal    *string `gorm:"type:varchar(50)"`
	ReceptorRFC    string  `gorm:"type:varchar(13);column:receptor_rfc;not null"`
	ReceptorNombre string  `gorm:"not null"`
	Subtotal       decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	IVA            decimal.Decimal `gorm:"type:decimal(12,2);not null;column:iva"`
	Total          decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Estado         string          `gorm:"type:varchar(20);not null;default:'pendiente'"`
	// XMLPath is relative to the configured storage dir
	XMLPath *string `gorm:"column:xml_path"`
	PDFPath *string `gorm:"column:pdf_path"`

	// Retry bookkeeping for the timbrado cron
	Intentos    int `gorm:"not null;default:0"`
	NextRetryAt *time.Time
	LastError   *string

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (ComprobanteFiscal) TableName() string { return "comprobantes_fiscales" }

package model

// ConfiguracionSistema is a typed key/value setting. Categorias: "general",
// "facturacion", "apariencia".
type ConfiguracionSistema struct {
	ID          uint   `gorm:"primaryKey"`
	Clave       string `gorm:"type:varchar(50);uniqueIndex;not null"`
	Valor       string
	Tipo        string `gorm:"type:varchar(20);not null;default:'string'"` // string | integer | boolean | json
	Descripcion *string
	Categoria   string `gorm:"type:varchar(20);index;not null"`
}

func (ConfiguracionSistema) TableName() string { return "configuracion_sistema" }

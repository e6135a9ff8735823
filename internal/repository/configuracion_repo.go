package repository

import (
	"context"

	"github.com/apenap/sis.ret-alpha/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ConfiguracionRepository interface {
	Get(ctx context.Context, clave string) (*model.ConfiguracionSistema, error)
	Upsert(ctx context.Context, c *model.ConfiguracionSistema) error
	ListByCategoria(ctx context.Context, categoria string) ([]model.ConfiguracionSistema, error)
}

type configuracionRepo struct{ db *gorm.DB }

func NewConfiguracionRepository(db *gorm.DB) ConfiguracionRepository {
	return &configuracionRepo{db: db}
}

func (r *configuracionRepo) Get(ctx context.Context, clave string) (*model.ConfiguracionSistema, error) {
	var c model.ConfiguracionSistema
	err := r.db.WithContext(ctx).Where("clave = ?", clave).First(&c).Error
	return &c, err
}

func (r *configuracionRepo) Upsert(ctx context.Context, c *model.ConfiguracionSistema) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "clave"}},
		DoUpdates: clause.AssignmentColumns([]string{"valor", "tipo", "categoria"}),
	}).Create(c).Error
}

func (r *configuracionRepo) ListByCategoria(ctx context.Context, categoria string) ([]model.ConfiguracionSistema, error) {
	var configs []model.ConfiguracionSistema
	err := r.db.WithContext(ctx).Where("categoria = ?", categoria).Find(&configs).Error
	return configs, err
}

package repository

import (
	"context"
	"time"

	"github.com/apenap/sis.ret-alpha/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ComprobanteRepository interface {
	Create(ctx context.Context, c *model.ComprobanteFiscal) error
	FindByVentaID(ctx context.Context, ventaID uuid.UUID) (*model.ComprobanteFiscal, error)
	Update(ctx context.Context, c *model.ComprobanteFiscal) error
	// ListPendingRetries returns comprobantes stuck in "pendiente" whose
	// next_retry_at has passed, oldest first.
	ListPendingRetries(ctx context.Context, now time.Time, limit int) ([]model.ComprobanteFiscal, error)
}

type comprobanteRepo struct{ db *gorm.DB }

func NewComprobanteRepository(db *gorm.DB) ComprobanteRepository {
	return &comprobanteRepo{db: db}
}

func (r *comprobanteRepo) Create(ctx context.Context, c *model.ComprobanteFiscal) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *comprobanteRepo) FindByVentaID(ctx context.Context, ventaID uuid.UUID) (*model.ComprobanteFiscal, error) {
	var c model.ComprobanteFiscal
	err := r.db.WithContext(ctx).Where("venta_id = ?", ventaID).Order("created_at DESC").First(&c).Error
	return &c, err
}

func (r *comprobanteRepo) Update(ctx context.Context, c *model.ComprobanteFiscal) error {
	return r.db.WithContext(ctx).Save(c).Error
}

func (r *comprobanteRepo) ListPendingRetries(ctx context.Context, now time.Time, limit int) ([]model.ComprobanteFiscal, error) {
	var comprobantes []model.ComprobanteFiscal
	err := r.db.WithContext(ctx).
		Where("estado = ? AND next_retry_at IS NOT NULL AND next_retry_at <= ?", "pendiente", now).
		Order("next_retry_at ASC").
		Limit(limit).
		Find(&comprobantes).Error
	return comprobantes, err
}

package repository

import (
	"context"

	"github.com/apenap/sis.ret-alpha/internal/dto"
	"github.com/apenap/sis.ret-alpha/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// DocumentoRepository persists the corporate document aggregate. State
// transitions go through UpdateEstadoCAS so that two concurrent calls on the
// same document can never both succeed.
type DocumentoRepository interface {
	Create(ctx context.Context, tx *gorm.DB, d *model.Documento) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Documento, error)
	List(ctx context.Context, filter dto.DocumentoFilter) ([]model.Documento, int64, error)

	// UpdateEstadoCAS performs the atomic compare-and-set
	// UPDATE documentos SET estado = hacia WHERE id = ? AND estado = desde
	// and reports whether a row was actually updated.
	UpdateEstadoCAS(ctx context.Context, id uuid.UUID, desde, hacia string) (bool, error)

	// ReemplazarDetallesTx deletes every line of the document and inserts the
	// new set, updating the stored total, all within the given transaction.
	ReemplazarDetallesTx(tx *gorm.DB, docID uuid.UUID, detalles []model.DetalleDocumento, total decimal.Decimal) error

	DB() *gorm.DB
}

type documentoRepo struct{ db *gorm.DB }

func NewDocumentoRepository(db *gorm.DB) DocumentoRepository { return &documentoRepo{db: db} }

func (r *documentoRepo) DB() *gorm.DB { return r.db }

func (r *documentoRepo) Create(ctx context.Context, tx *gorm.DB, d *model.Documento) error {
	return tx.WithContext(ctx).Create(d).Error
}

func (r *documentoRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Documento, error) {
	var d model.Documento
	err := r.db.WithContext(ctx).
		Preload("Detalles", func(db *gorm.DB) *gorm.DB { return db.Order("posicion ASC") }).
		First(&d, id).Error
	return &d, err
}

func (r *documentoRepo) List(ctx context.Context, filter dto.DocumentoFilter) ([]model.Documento, int64, error) {
	var docs []model.Documento
	var total int64

	q := r.db.WithContext(ctx).Model(&model.Documento{})
	if filter.Tipo != "" {
		q = q.Where("tipo = ?", filter.Tipo)
	}
	if filter.Estado != "" && filter.Estado != "todos" {
		q = q.Where("estado = ?", filter.Estado)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	err := q.Preload("Detalles", func(db *gorm.DB) *gorm.DB { return db.Order("posicion ASC") }).
		Order("created_at DESC").
		Offset(offset).Limit(filter.Limit).
		Find(&docs).Error
	return docs, total, err
}

func (r *documentoRepo) UpdateEstadoCAS(ctx context.Context, id uuid.UUID, desde, hacia string) (bool, error) {
	res := r.db.WithContext(ctx).Model(&model.Documento{}).
		Where("id = ? AND estado = ?", id, desde).
		Update("estado", hacia)
	return res.RowsAffected > 0, res.Error
}

func (r *documentoRepo) ReemplazarDetallesTx(tx *gorm.DB, docID uuid.UUID, detalles []model.DetalleDocumento, total decimal.Decimal) error {
	if err := tx.Where("documento_id = ?", docID).Delete(&model.DetalleDocumento{}).Error; err != nil {
		return err
	}
	if len(detalles) > 0 {
		if err := tx.Create(&detalles).Error; err != nil {
			return err
		}
	}
	return tx.Model(&model.Documento{}).Where("id = ?", docID).Update("total", total).Error
}

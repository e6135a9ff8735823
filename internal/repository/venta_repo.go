package repository

import (
	"context"
	"time"

	"github.com/apenap/sis.ret-alpha/internal/dto"
	"github.com/apenap/sis.ret-alpha/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Resumen is the aggregate row returned by the sales rollup.
type Resumen struct {
	TotalVentas   int64
	TotalIngresos decimal.Decimal
}

type VentaRepository interface {
	Create(ctx context.Context, tx *gorm.DB, v *model.Venta) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Venta, error)
	// UpdateEstadoCASTx performs the atomic compare-and-set
	// UPDATE ventas SET estado = hacia WHERE id = ? AND estado = desde
	// within tx and reports whether a row was actually updated. Two
	// concurrent transitions on the same venta can never both succeed.
	UpdateEstadoCASTx(tx *gorm.DB, id uuid.UUID, desde, hacia string) (bool, error)
	List(ctx context.Context, filter dto.VentaFilter) ([]model.Venta, int64, error)
	// Resumen aggregates completed sales between desde and hasta, inclusive.
	Resumen(ctx context.Context, desde, hasta time.Time) (*Resumen, error)
	DB() *gorm.DB // exposes the DB for transaction creation in service layer
}

type ventaRepo struct{ db *gorm.DB }

func NewVentaRepository(db *gorm.DB) VentaRepository { return &ventaRepo{db: db} }

func (r *ventaRepo) DB() *gorm.DB { return r.db }

func (r *ventaRepo) Create(ctx context.Context, tx *gorm.DB, v *model.Venta) error {
	return tx.WithContext(ctx).Create(v).Error
}

func (r *ventaRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Venta, error) {
	var v model.Venta
	err := r.db.WithContext(ctx).Preload("Detalles.Producto").Preload("Cliente").First(&v, id).Error
	return &v, err
}

func (r *ventaRepo) UpdateEstadoCASTx(tx *gorm.DB, id uuid.UUID, desde, hacia string) (bool, error) {
	res := tx.Model(&model.Venta{}).
		Where("id = ? AND estado = ?", id, desde).
		Update("estado", hacia)
	return res.RowsAffected > 0, res.Error
}

func (r *ventaRepo) List(ctx context.Context, filter dto.VentaFilter) ([]model.Venta, int64, error) {
	var ventas []model.Venta
	var total int64
	offset := (filter.Page - 1) * filter.Limit

	q := r.db.WithContext(ctx).Model(&model.Venta{})

	if filter.Estado != "" && filter.Estado != "all" {
		q = q.Where("estado = ?", filter.Estado)
	}
	if filter.Fecha != "" {
		q = q.Where("DATE(created_at) = ?", filter.Fecha)
	} else {
		q = q.Where("DATE(created_at) = CURRENT_DATE")
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := q.Preload("Detalles.Producto").
		Order("created_at DESC").
		Offset(offset).Limit(filter.Limit).
		Find(&ventas).Error

	return ventas, total, err
}

func (r *ventaRepo) Resumen(ctx context.Context, desde, hasta time.Time) (*Resumen, error) {
	var row struct {
		TotalVentas   int64
		TotalIngresos decimal.Decimal
	}
	err := r.db.WithContext(ctx).Model(&model.Venta{}).
		Select("COUNT(id) AS total_ventas, COALESCE(SUM(total), 0) AS total_ingresos").
		Where("estado = ?", model.VentaCompletada).
		Where("DATE(created_at) BETWEEN ? AND ?", desde.Format("2006-01-02"), hasta.Format("2006-01-02")).
		Scan(&row).Error
	if err != nil {
		return nil, err
	}
	return &Resumen{TotalVentas: row.TotalVentas, TotalIngresos: row.TotalIngresos}, nil
}

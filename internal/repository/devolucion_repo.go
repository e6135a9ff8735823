package repository

import (
	"github.com/apenap/sis.ret-alpha/internal/model"

	"gorm.io/gorm"
)

type DevolucionRepository interface {
	// CreateTx runs inside the return transaction alongside the stock restore.
	CreateTx(tx *gorm.DB, d *model.Devolucion) error
}

type devolucionRepo struct{ db *gorm.DB }

func NewDevolucionRepository(db *gorm.DB) DevolucionRepository { return &devolucionRepo{db: db} }

func (r *devolucionRepo) CreateTx(tx *gorm.DB, d *model.Devolucion) error {
	return tx.Create(d).Error
}

package service

import (
	"context"
	"errors"

	"github.com/apenap/sis.ret-alpha/internal/dto"
	"github.com/apenap/sis.ret-alpha/internal/model"
	"github.com/apenap/sis.ret-alpha/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// InventarioService is the only component allowed to mutate stock. Every
// mutation leaves a MovimientoStock entry; the corporate document workflow
// never touches stock.
type InventarioService interface {
	// DescontarStockTx debits stock for one sale line inside a live
	// transaction. The debit is a guarded UPDATE (stock >= cantidad), so a
	// concurrent debit of the same product can never drive stock negative.
	DescontarStockTx(ctx context.Context, tx *gorm.DB, productoID uuid.UUID, cantidad int, motivo string, referencia *uuid.UUID) error

	// RestaurarStockTx credits stock back (anulación / devolución).
	RestaurarStockTx(ctx context.Context, tx *gorm.DB, productoID uuid.UUID, cantidad int, tipo, motivo string, referencia *uuid.UUID) error

	// ObtenerAlertas lists active products at or below their reorder
	// threshold. Read-only, outside the transactional path.
	ObtenerAlertas(ctx context.Context) ([]dto.AlertaStockResponse, error)
}

type inventarioService struct {
	productoRepo   repository.ProductoRepository
	movimientoRepo repository.MovimientoStockRepository
}

func NewInventarioService(productoRepo repository.ProductoRepository, movimientoRepo repository.MovimientoStockRepository) InventarioService {
	return &inventarioService{productoRepo: productoRepo, movimientoRepo: movimientoRepo}
}

func (s *inventarioService) DescontarStockTx(ctx context.Context, tx *gorm.DB, productoID uuid.UUID, cantidad int, motivo string, referencia *uuid.UUID) error {
	p, err := s.productoRepo.FindByIDTx(tx, productoID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &NoEncontradoError{Entidad: "producto", ID: productoID.String()}
		}
		return err
	}
	if p.Stock < cantidad {
		return &StockInsuficienteError{ProductoID: p.ID, Nombre: p.Nombre, Stock: p.Stock, Solicitado: cantidad}
	}

	rows, err := s.productoRepo.DescontarStockTx(tx, productoID, cantidad)
	if err != nil {
		return err
	}
	if rows == 0 {
		// Lost the race against a concurrent debit of the same product.
		return &StockInsuficienteError{ProductoID: p.ID, Nombre: p.Nombre, Stock: p.Stock, Solicitado: cantidad}
	}

	return s.movimientoRepo.CreateTx(tx, &model.MovimientoStock{
		ProductoID:    productoID,
		Tipo:          "venta",
		Cantidad:      -cantidad,
		StockAnterior: p.Stock,
		StockNuevo:    p.Stock - cantidad,
		Motivo:        motivo,
		ReferenciaID:  referencia,
	})
}

func (s *inventarioService) RestaurarStockTx(ctx context.Context, tx *gorm.DB, productoID uuid.UUID, cantidad int, tipo, motivo string, referencia *uuid.UUID) error {
	p, err := s.productoRepo.FindByIDTx(tx, productoID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &NoEncontradoError{Entidad: "producto", ID: productoID.String()}
		}
		return err
	}
	if err := s.productoRepo.RestaurarStockTx(tx, productoID, cantidad); err != nil {
		return err
	}
	return s.movimientoRepo.CreateTx(tx, &model.MovimientoStock{
		ProductoID:    productoID,
		Tipo:          tipo,
		Cantidad:      cantidad,
		StockAnterior: p.Stock,
		StockNuevo:    p.Stock + cantidad,
		Motivo:        motivo,
		ReferenciaID:  referencia,
	})
}

func (s *inventarioService) ObtenerAlertas(ctx context.Context) ([]dto.AlertaStockResponse, error) {
	productos, err := s.productoRepo.ListBajoMinimo(ctx)
	if err != nil {
		return nil, err
	}
	alertas := make([]dto.AlertaStockResponse, 0, len(productos))
	for _, p := range productos {
		alertas = append(alertas, dto.AlertaStockResponse{
			ProductoID:  p.ID.String(),
			Nombre:      p.Nombre,
			Stock:       p.Stock,
			StockMinimo: p.StockMinimo,
		})
	}
	return alertas, nil
}

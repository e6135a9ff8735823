package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/apenap/sis.ret-alpha/internal/dto"
	"github.com/apenap/sis.ret-alpha/internal/model"
	"github.com/apenap/sis.ret-alpha/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ProductoService interface {
	Crear(ctx context.Context, req dto.CrearProductoRequest) (*dto.ProductoResponse, error)
	Obtener(ctx context.Context, id uuid.UUID) (*dto.ProductoResponse, error)
	// Buscar is the POS quick search: nombre, código o código de barras.
	Buscar(ctx context.Context, termino string, limit int) ([]dto.ProductoResponse, error)
	Listar(ctx context.Context, filter dto.ProductoFilter) (*dto.ProductoListResponse, error)
	Actualizar(ctx context.Context, id uuid.UUID, req dto.ActualizarProductoRequest) (*dto.ProductoResponse, error)
	Desactivar(ctx context.Context, id uuid.UUID) error
}

type productoService struct {
	repo          repository.ProductoRepository
	proveedorRepo repository.ProveedorRepository
}

func NewProductoService(repo repository.ProductoRepository, proveedorRepo repository.ProveedorRepository) ProductoService {
	return &productoService{repo: repo, proveedorRepo: proveedorRepo}
}

func (s *productoService) Crear(ctx context.Context, req dto.CrearProductoRequest) (*dto.ProductoResponse, error) {
	proveedorID, err := uuid.Parse(req.ProveedorID)
	if err != nil {
		return nil, fmt.Errorf("proveedor_id inválido: %w", err)
	}
	if _, err := s.proveedorRepo.FindByID(ctx, proveedorID); err != nil {
		return nil, &NoEncontradoError{Entidad: "proveedor", ID: req.ProveedorID}
	}

	p := model.Producto{
		Codigo:       req.Codigo,
		CodigoBarras: req.CodigoBarras,
		Nombre:       req.Nombre,
		Descripcion:  req.Descripcion,
		PrecioCompra: req.PrecioCompra,
		PrecioVenta:  req.PrecioVenta,
		Stock:        req.Stock,
		StockMinimo:  req.StockMinimo,
		Categoria:    req.Categoria,
		ProveedorID:  proveedorID,
		ImagenURL:    req.ImagenURL,
		Activo:       true,
	}
	if err := s.repo.Create(ctx, &p); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("ya existe un producto con ese código: %w", err)
		}
		return nil, err
	}
	return productoToResponse(&p), nil
}

func (s *productoService) Obtener(ctx context.Context, id uuid.UUID) (*dto.ProductoResponse, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, &NoEncontradoError{Entidad: "producto", ID: id.String()}
	}
	return productoToResponse(p), nil
}

func (s *productoService) Buscar(ctx context.Context, termino string, limit int) ([]dto.ProductoResponse, error) {
	if limit < 1 || limit > 50 {
		limit = 20
	}
	productos, err := s.repo.Buscar(ctx, termino, limit)
	if err != nil {
		return nil, err
	}
	out := make([]dto.ProductoResponse, 0, len(productos))
	for i := range productos {
		out = append(out, *productoToResponse(&productos[i]))
	}
	return out, nil
}

func (s *productoService) Listar(ctx context.Context, filter dto.ProductoFilter) (*dto.ProductoListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 50
	}
	productos, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	items := make([]dto.ProductoResponse, 0, len(productos))
	for i := range productos {
		items = append(items, *productoToResponse(&productos[i]))
	}
	return &dto.ProductoListResponse{
		Data:  items,
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	}, nil
}

func (s *productoService) Actualizar(ctx context.Context, id uuid.UUID, req dto.ActualizarProductoRequest) (*dto.ProductoResponse, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, &NoEncontradoError{Entidad: "producto", ID: id.String()}
	}
	proveedorID, err := uuid.Parse(req.ProveedorID)
	if err != nil {
		return nil, fmt.Errorf("proveedor_id inválido: %w", err)
	}

	p.Codigo = req.Codigo
	p.CodigoBarras = req.CodigoBarras
	p.Nombre = req.Nombre
	p.Descripcion = req.Descripcion
	p.PrecioCompra = req.PrecioCompra
	p.PrecioVenta = req.PrecioVenta
	p.StockMinimo = req.StockMinimo
	p.Categoria = req.Categoria
	p.ProveedorID = proveedorID
	p.ImagenURL = req.ImagenURL
	// Stock is deliberately not taken from the request: it only moves
	// through the inventory service.

	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	return productoToResponse(p), nil
}

func (s *productoService) Desactivar(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return &NoEncontradoError{Entidad: "producto", ID: id.String()}
	}
	return s.repo.SoftDelete(ctx, id)
}

func productoToResponse(p *model.Producto) *dto.ProductoResponse {
	return &dto.ProductoResponse{
		ID:           p.ID.String(),
		Codigo:       p.Codigo,
		CodigoBarras: p.CodigoBarras,
		Nombre:       p.Nombre,
		Descripcion:  p.Descripcion,
		PrecioCompra: p.PrecioCompra,
		PrecioVenta:  p.PrecioVenta,
		Stock:        p.Stock,
		StockMinimo:  p.StockMinimo,
		Categoria:    p.Categoria,
		ProveedorID:  p.ProveedorID.String(),
		Activo:       p.Activo,
	}
}

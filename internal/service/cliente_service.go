package service

import (
	"context"

	"github.com/apenap/sis.ret-alpha/internal/dto"
	"github.com/apenap/sis.ret-alpha/internal/model"
	"github.com/apenap/sis.ret-alpha/internal/repository"

	"github.com/google/uuid"
)

type ClienteService interface {
	Crear(ctx context.Context, req dto.CrearClienteRequest) (*dto.ClienteResponse, error)
	Obtener(ctx context.Context, id uuid.UUID) (*dto.ClienteResponse, error)
	Listar(ctx context.Context) ([]dto.ClienteResponse, error)
	Actualizar(ctx context.Context, id uuid.UUID, req dto.ActualizarClienteRequest) (*dto.ClienteResponse, error)
}

type clienteService struct {
	repo repository.ClienteRepository
}

func NewClienteService(repo repository.ClienteRepository) ClienteService {
	return &clienteService{repo: repo}
}

func (s *clienteService) Crear(ctx context.Context, req dto.CrearClienteRequest) (*dto.ClienteResponse, error) {
	tipo := req.TipoCliente
	if tipo == "" {
		tipo = "mostrador"
	}
	c := model.Cliente{
		Nombre:        req.Nombre,
		Apellido:      req.Apellido,
		Telefono:      req.Telefono,
		Email:         req.Email,
		Direccion:     req.Direccion,
		TipoCliente:   tipo,
		RazonSocial:   req.RazonSocial,
		RFC:           req.RFC,
		RegimenFiscal: req.RegimenFiscal,
		CodigoPostal:  req.CodigoPostal,
		UsoCFDI:       req.UsoCFDI,
	}
	if err := s.repo.Create(ctx, &c); err != nil {
		return nil, err
	}
	return clienteToResponse(&c), nil
}

func (s *clienteService) Obtener(ctx context.Context, id uuid.UUID) (*dto.ClienteResponse, error) {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, &NoEncontradoError{Entidad: "cliente", ID: id.String()}
	}
	return clienteToResponse(c), nil
}

func (s *clienteService) Listar(ctx context.Context) ([]dto.ClienteResponse, error) {
	clientes, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.ClienteResponse, 0, len(clientes))
	for i := range clientes {
		out = append(out, *clienteToResponse(&clientes[i]))
	}
	return out, nil
}

func (s *clienteService) Actualizar(ctx context.Context, id uuid.UUID, req dto.ActualizarClienteRequest) (*dto.ClienteResponse, error) {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, &NoEncontradoError{Entidad: "cliente", ID: id.String()}
	}
	c.Nombre = req.Nombre
	c.Apellido = req.Apellido
	c.Telefono = req.Telefono
	c.Email = req.Email
	c.Direccion = req.Direccion
	if req.TipoCliente != "" {
		c.TipoCliente = req.TipoCliente
	}
	c.RazonSocial = req.RazonSocial
	c.RFC = req.RFC
	c.RegimenFiscal = req.RegimenFiscal
	c.CodigoPostal = req.CodigoPostal
	c.UsoCFDI = req.UsoCFDI

	if err := s.repo.Update(ctx, c); err != nil {
		return nil, err
	}
	return clienteToResponse(c), nil
}

func clienteToResponse(c *model.Cliente) *dto.ClienteResponse {
	return &dto.ClienteResponse{
		ID:          c.ID.String(),
		Nombre:      c.Nombre,
		Apellido:    c.Apellido,
		Telefono:    c.Telefono,
		Email:       c.Email,
		TipoCliente: c.TipoCliente,
		RFC:         c.RFC,
	}
}

package service

import (
	"context"
	"fmt"

	"github.com/apenap/sis.ret-alpha/internal/model"
	"github.com/apenap/sis.ret-alpha/internal/repository"
)

// Categorías válidas del almacén de configuración.
var categoriasValidas = map[string]bool{
	"general":     true,
	"facturacion": true,
	"apariencia":  true,
}

// ConfiguracionService is the typed key/value settings store. The
// "facturacion" category carries the emisor data the CFDI builder reads
// (emisor_rfc, emisor_nombre, emisor_regimen, emisor_cp).
type ConfiguracionService interface {
	ObtenerCategoria(ctx context.Context, categoria string) (map[string]string, error)
	Guardar(ctx context.Context, categoria string, valores map[string]string) error
	// Valor reads one key, falling back to def when the key is absent.
	Valor(ctx context.Context, clave, def string) string
}

type configuracionService struct {
	repo repository.ConfiguracionRepository
}

func NewConfiguracionService(repo repository.ConfiguracionRepository) ConfiguracionService {
	return &configuracionService{repo: repo}
}

func (s *configuracionService) ObtenerCategoria(ctx context.Context, categoria string) (map[string]string, error) {
	if !categoriasValidas[categoria] {
		return nil, fmt.Errorf("categoría de configuración desconocida: %q", categoria)
	}
	configs, err := s.repo.ListByCategoria(ctx, categoria)
	if err != nil {
		return nil, err
	}
	out := make(map[string]string, len(configs))
	for _, c := range configs {
		out[c.Clave] = c.Valor
	}
	return out, nil
}

func (s *configuracionService) Guardar(ctx context.Context, categoria string, valores map[string]string) error {
	if !categoriasValidas[categoria] {
		return fmt.Errorf("categoría de configuración desconocida: %q", categoria)
	}
	for clave, valor := range valores {
		c := model.ConfiguracionSistema{
			Clave:     clave,
			Valor:     valor,
			Tipo:      "string",
			Categoria: categoria,
		}
		if err := s.repo.Upsert(ctx, &c); err != nil {
			return err
		}
	}
	return nil
}

func (s *configuracionService) Valor(ctx context.Context, clave, def string) string {
	c, err := s.repo.Get(ctx, clave)
	if err != nil || c.Valor == "" {
		return def
	}
	return c.Valor
}

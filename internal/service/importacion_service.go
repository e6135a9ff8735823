package service

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/apenap/sis.ret-alpha/internal/dto"
	"github.com/apenap/sis.ret-alpha/internal/model"
	"github.com/apenap/sis.ret-alpha/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ColumnasImportacion are the accepted CSV headers, in any order. Only
// nombre, precio_venta and proveedor are mandatory per row. The download
// template is generated from this list.
var ColumnasImportacion = []string{
	"codigo", "codigo_barras", "nombre", "descripcion",
	"precio_compra", "precio_venta", "stock", "stock_minimo",
	"categoria", "proveedor",
}

// ImportacionService bulk-loads the product catalog from a CSV file. Bad
// rows are reported individually and never abort the rest of the file.
type ImportacionService interface {
	ImportarProductos(ctx context.Context, r io.Reader) (*dto.ImportacionResponse, error)
}

type importacionService struct {
	productoRepo  repository.ProductoRepository
	proveedorRepo repository.ProveedorRepository
}

func NewImportacionService(productoRepo repository.ProductoRepository, proveedorRepo repository.ProveedorRepository) ImportacionService {
	return &importacionService{productoRepo: productoRepo, proveedorRepo: proveedorRepo}
}

func (s *importacionService) ImportarProductos(ctx context.Context, r io.Reader) (*dto.ImportacionResponse, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("importacion: leer cabecera: %w", err)
	}
	idx := make(map[string]int, len(header))
	for i, col := range header {
		idx[strings.ToLower(strings.TrimSpace(col))] = i
	}
	for _, obligatoria := range []string{"nombre", "precio_venta", "proveedor"} {
		if _, ok := idx[obligatoria]; !ok {
			return nil, fmt.Errorf("importacion: falta la columna obligatoria %q", obligatoria)
		}
	}

	resp := &dto.ImportacionResponse{}
	// proveedores resolved by name, created on first sight
	proveedores := make(map[string]*model.Proveedor)
	// codigos already seen in this file
	vistos := make(map[string]bool)

	campo := func(fila []string, col string) string {
		i, ok := idx[col]
		if !ok || i >= len(fila) {
			return ""
		}
		return strings.TrimSpace(fila[i])
	}

	for numFila := 2; ; numFila++ {
		fila, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			resp.Errores = append(resp.Errores, fmt.Sprintf("fila %d: %v", numFila, err))
			continue
		}

		nombre := campo(fila, "nombre")
		if nombre == "" {
			resp.Errores = append(resp.Errores, fmt.Sprintf("fila %d: nombre vacío", numFila))
			continue
		}

		precioVenta, err := decimal.NewFromString(campo(fila, "precio_venta"))
		if err != nil || precioVenta.IsNegative() {
			resp.Errores = append(resp.Errores, fmt.Sprintf("fila %d: precio_venta inválido", numFila))
			continue
		}
		precioCompra := decimal.Zero
		if v := campo(fila, "precio_compra"); v != "" {
			if precioCompra, err = decimal.NewFromString(v); err != nil || precioCompra.IsNegative() {
				resp.Errores = append(resp.Errores, fmt.Sprintf("fila %d: precio_compra inválido", numFila))
				continue
			}
		}

		stock := 0
		if v := campo(fila, "stock"); v != "" {
			if stock, err = strconv.Atoi(v); err != nil || stock < 0 {
				resp.Errores = append(resp.Errores, fmt.Sprintf("fila %d: stock inválido", numFila))
				continue
			}
		}
		stockMinimo := 5
		if v := campo(fila, "stock_minimo"); v != "" {
			if stockMinimo, err = strconv.Atoi(v); err != nil || stockMinimo < 0 {
				resp.Errores = append(resp.Errores, fmt.Sprintf("fila %d: stock_minimo inválido", numFila))
				continue
			}
		}

		codigo := campo(fila, "codigo")
		if codigo != "" {
			if vistos[codigo] {
				resp.Errores = append(resp.Errores, fmt.Sprintf("fila %d: código %q repetido en el archivo", numFila, codigo))
				continue
			}
			vistos[codigo] = true
		}

		proveedor, err := s.resolverProveedor(ctx, proveedores, campo(fila, "proveedor"))
		if err != nil {
			resp.Errores = append(resp.Errores, fmt.Sprintf("fila %d: %v", numFila, err))
			continue
		}

		p := model.Producto{
			Nombre:       nombre,
			PrecioCompra: precioCompra,
			PrecioVenta:  precioVenta,
			Stock:        stock,
			StockMinimo:  stockMinimo,
			ProveedorID:  proveedor.ID,
			Activo:       true,
		}
		if codigo != "" {
			p.Codigo = &codigo
		}
		if v := campo(fila, "codigo_barras"); v != "" {
			p.CodigoBarras = &v
		}
		if v := campo(fila, "descripcion"); v != "" {
			p.Descripcion = &v
		}
		if v := campo(fila, "categoria"); v != "" {
			p.Categoria = &v
		}

		if err := s.productoRepo.Create(ctx, &p); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				resp.Errores = append(resp.Errores, fmt.Sprintf("fila %d: código %q ya existe en el catálogo", numFila, codigo))
			} else {
				resp.Errores = append(resp.Errores, fmt.Sprintf("fila %d: %v", numFila, err))
			}
			continue
		}
		resp.Importados++
	}

	return resp, nil
}

func (s *importacionService) resolverProveedor(ctx context.Context, cache map[string]*model.Proveedor, nombre string) (*model.Proveedor, error) {
	if nombre == "" {
		return nil, errors.New("proveedor vacío")
	}
	if p, ok := cache[nombre]; ok {
		return p, nil
	}
	existentes, err := s.proveedorRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range existentes {
		if strings.EqualFold(existentes[i].Nombre, nombre) {
			cache[nombre] = &existentes[i]
			return &existentes[i], nil
		}
	}
	nuevo := &model.Proveedor{Nombre: nombre, Activo: true}
	if err := s.proveedorRepo.Create(ctx, nuevo); err != nil {
		return nil, err
	}
	cache[nombre] = nuevo
	return nuevo, nil
}

package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/apenap/sis.ret-alpha/internal/cfdi"
	"github.com/apenap/sis.ret-alpha/internal/model"
	"github.com/apenap/sis.ret-alpha/internal/repository"

	"github.com/google/uuid"
)

// FacturacionService emits the CFDI 4.0 comprobante for a venta: builds the
// XML, writes it under the storage dir, and records the ComprobanteFiscal.
// Called by the billing worker; also exposed synchronously for re-emission.
type FacturacionService interface {
	GenerarComprobante(ctx context.Context, ventaID uuid.UUID) (*model.ComprobanteFiscal, error)
	// ObtenerXML returns the path of the emitted XML for download.
	ObtenerXML(ctx context.Context, ventaID uuid.UUID) (string, error)
}

type facturacionService struct {
	ventaRepo       repository.VentaRepository
	comprobanteRepo repository.ComprobanteRepository
	configuracion   ConfiguracionService
	storagePath     string
}

func NewFacturacionService(
	ventaRepo repository.VentaRepository,
	comprobanteRepo repository.ComprobanteRepository,
	configuracion ConfiguracionService,
	storagePath string,
) FacturacionService {
	return &facturacionService{
		ventaRepo:       ventaRepo,
		comprobanteRepo: comprobanteRepo,
		configuracion:   configuracion,
		storagePath:     storagePath,
	}
}

func (s *facturacionService) GenerarComprobante(ctx context.Context, ventaID uuid.UUID) (*model.ComprobanteFiscal, error) {
	venta, err := s.ventaRepo.FindByID(ctx, ventaID)
	if err != nil {
		return nil, &NoEncontradoError{Entidad: "venta", ID: ventaID.String()}
	}
	if venta.Estado != model.VentaCompletada {
		return nil, &TransicionInvalidaError{Folio: venta.Folio, Tipo: "venta", Estado: venta.Estado, Accion: "facturar"}
	}

	// Re-emission is idempotent: an already emitted comprobante is returned
	// as-is instead of generating a second folio fiscal.
	if existente, err := s.comprobanteRepo.FindByVentaID(ctx, ventaID); err == nil && existente.Estado == "emitido" {
		return existente, nil
	}

	emisor := cfdi.Emisor{
		RFC:           s.configuracion.Valor(ctx, "emisor_rfc", "XAXX010101000"),
		Nombre:        s.configuracion.Valor(ctx, "emisor_nombre", "SIS.RET"),
		RegimenFiscal: s.configuracion.Valor(ctx, "emisor_regimen", "601"),
		CodigoPostal:  s.configuracion.Valor(ctx, "emisor_cp", "00000"),
	}

	var receptor cfdi.Receptor
	if c := venta.Cliente; c != nil && c.RFC != nil && *c.RFC != "" {
		receptor.RFC = *c.RFC
		if c.RazonSocial != nil {
			receptor.Nombre = *c.RazonSocial
		} else {
			receptor.Nombre = c.Nombre
		}
		if c.RegimenFiscal != nil {
			receptor.RegimenFiscal = *c.RegimenFiscal
		}
		if c.CodigoPostal != nil {
			receptor.CodigoPostal = *c.CodigoPostal
		}
		if c.UsoCFDI != nil {
			receptor.UsoCFDI = *c.UsoCFDI
		}
	}

	conceptos := make([]cfdi.Concepto, 0, len(venta.Detalles))
	for _, d := range venta.Detalles {
		concepto := cfdi.Concepto{
			Descripcion:   "Artículo de venta",
			Cantidad:      d.Cantidad,
			ValorUnitario: d.PrecioUnitario,
		}
		if p := d.Producto; p != nil {
			concepto.Descripcion = p.Nombre
			if p.ClaveProductoSAT != nil {
				concepto.ClaveProdServ = *p.ClaveProductoSAT
			}
			concepto.ClaveUnidad = p.ClaveUnidadSAT
			concepto.Unidad = p.UnidadMedidaSAT
		}
		conceptos = append(conceptos, concepto)
	}

	resultado, err := cfdi.Construir(emisor, receptor, venta.Folio, venta.CreatedAt, conceptos)
	if err != nil {
		return nil, fmt.Errorf("facturacion: construir CFDI: %w", err)
	}

	if err := os.MkdirAll(s.storagePath, 0o755); err != nil {
		return nil, fmt.Errorf("facturacion: crear directorio: %w", err)
	}
	xmlPath := filepath.Join(s.storagePath, fmt.Sprintf("cfdi_%s.xml", venta.Folio))
	if err := os.WriteFile(xmlPath, resultado.XML, 0o644); err != nil {
		return nil, fmt.Errorf("facturacion: escribir XML: %w", err)
	}

	comp := &model.ComprobanteFiscal{
		VentaID:        ventaID,
		Serie:          "A",
		FolioFiscal:    &resultado.FolioFiscal,
		ReceptorRFC:    resultado.ReceptorRFC,
		ReceptorNombre: resultado.Receptor,
		Subtotal:       resultado.Subtotal,
		IVA:            resultado.IVA,
		Total:          resultado.Total,
		Estado:         "emitido",
		XMLPath:        &xmlPath,
	}
	if existente, err := s.comprobanteRepo.FindByVentaID(ctx, ventaID); err == nil {
		comp.ID = existente.ID
		comp.Intentos = existente.Intentos
		if err := s.comprobanteRepo.Update(ctx, comp); err != nil {
			return nil, err
		}
		return comp, nil
	}
	if err := s.comprobanteRepo.Create(ctx, comp); err != nil {
		return nil, err
	}
	return comp, nil
}

func (s *facturacionService) ObtenerXML(ctx context.Context, ventaID uuid.UUID) (string, error) {
	comp, err := s.comprobanteRepo.FindByVentaID(ctx, ventaID)
	if err != nil {
		return "", &NoEncontradoError{Entidad: "comprobante", ID: ventaID.String()}
	}
	if comp.Estado != "emitido" || comp.XMLPath == nil {
		return "", fmt.Errorf("el comprobante de la venta %s aún no está emitido", ventaID)
	}
	return *comp.XMLPath, nil
}

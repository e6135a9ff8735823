package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/apenap/sis.ret-alpha/internal/dto"
	"github.com/apenap/sis.ret-alpha/internal/folio"
	"github.com/apenap/sis.ret-alpha/internal/model"
	"github.com/apenap/sis.ret-alpha/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// flujo describes everything the engine knows about one document kind: its
// folio prefix, which acción is legal from which estado, the single estado
// from which it may be converted, and its designated successor kind.
type flujo struct {
	prefijo string
	// acciones: acción → estado actual → estado resultante
	acciones map[string]map[string]string
	// estadoConversion: only documents in this estado can be converted.
	// Empty means the kind is never a conversion source.
	estadoConversion string
	// siguiente: the one kind this kind converts into ("" = chain tail)
	siguiente model.TipoDocumento
}

// flujos is the static transition table for the two document chains:
//
//	requisición → cotización de compra → orden de compra → factura de compra
//	cotización de venta → remisión → factura de venta
//
// Conversion never mutates the source document, so converting an approved
// requisición twice legitimately produces two independent cotizaciones.
var flujos = map[model.TipoDocumento]flujo{
	model.TipoRequisicion: {
		prefijo: folio.PrefijoRequisicion,
		acciones: map[string]map[string]string{
			"aprobar":  {model.EstadoPendiente: model.EstadoAprobada},
			"rechazar": {model.EstadoPendiente: model.EstadoRechazada},
			"cancelar": {model.EstadoPendiente: model.EstadoCancelada},
		},
		estadoConversion: model.EstadoAprobada,
		siguiente:        model.TipoCotizacionCompra,
	},
	model.TipoCotizacionCompra: {
		prefijo: folio.PrefijoCotizacionCompra,
		acciones: map[string]map[string]string{
			"aceptar":  {model.EstadoPendiente: model.EstadoAceptada},
			"rechazar": {model.EstadoPendiente: model.EstadoRechazada},
			"cancelar": {model.EstadoPendiente: model.EstadoCancelada},
		},
		estadoConversion: model.EstadoAceptada,
		siguiente:        model.TipoOrdenCompra,
	},
	model.TipoOrdenCompra: {
		prefijo: folio.PrefijoOrdenCompra,
		acciones: map[string]map[string]string{
			"avanzar": {model.EstadoPendiente: model.EstadoParcial},
			"completar": {
				model.EstadoPendiente: model.EstadoCompletada,
				model.EstadoParcial:   model.EstadoCompletada,
			},
			"cancelar": {
				model.EstadoPendiente: model.EstadoCancelada,
				model.EstadoParcial:   model.EstadoCancelada,
			},
		},
		estadoConversion: model.EstadoCompletada,
		siguiente:        model.TipoFacturaCompra,
	},
	model.TipoFacturaCompra: {
		prefijo: folio.PrefijoFacturaCompra,
		acciones: map[string]map[string]string{
			"pagar":    {model.EstadoPendiente: model.EstadoPagada},
			"cancelar": {model.EstadoPendiente: model.EstadoCancelada},
		},
	},
	model.TipoCotizacionVenta: {
		prefijo: folio.PrefijoCotizacionVenta,
		acciones: map[string]map[string]string{
			"aceptar":  {model.EstadoPendiente: model.EstadoAceptada},
			"rechazar": {model.EstadoPendiente: model.EstadoRechazada},
			"cancelar": {model.EstadoPendiente: model.EstadoCancelada},
		},
		estadoConversion: model.EstadoAceptada,
		siguiente:        model.TipoRemision,
	},
	model.TipoRemision: {
		prefijo: folio.PrefijoRemision,
		acciones: map[string]map[string]string{
			"entregar": {model.EstadoPendiente: model.EstadoEntregada},
			"cancelar": {model.EstadoPendiente: model.EstadoCancelada},
		},
		estadoConversion: model.EstadoEntregada,
		siguiente:        model.TipoFacturaVenta,
	},
	model.TipoFacturaVenta: {
		prefijo: folio.PrefijoFacturaVenta,
		acciones: map[string]map[string]string{
			"pagar":    {model.EstadoPendiente: model.EstadoPagada},
			"cancelar": {model.EstadoPendiente: model.EstadoCancelada},
		},
	},
}

// cabezasDeCadena are the only kinds that can be created directly; every
// other kind is born by converting its predecessor.
var cabezasDeCadena = map[model.TipoDocumento]bool{
	model.TipoRequisicion:     true,
	model.TipoCotizacionVenta: true,
}

type DocumentoService interface {
	Crear(ctx context.Context, req dto.CrearDocumentoRequest) (*dto.DocumentoResponse, error)
	Obtener(ctx context.Context, id uuid.UUID) (*dto.DocumentoResponse, error)
	Listar(ctx context.Context, filter dto.DocumentoFilter) (*dto.DocumentoListResponse, error)
	// Transicionar applies a named acción (aprobar, rechazar, aceptar,
	// avanzar, completar, entregar, pagar, cancelar) to the document.
	Transicionar(ctx context.Context, id uuid.UUID, accion string) (*dto.DocumentoResponse, error)
	// Convertir creates the successor document from a conversion-eligible
	// source, copying its lines. The source document is left untouched.
	Convertir(ctx context.Context, id uuid.UUID, tipoDestino model.TipoDocumento) (*dto.DocumentoResponse, error)
	// ReemplazarDetalles swaps the full line set of a pending document.
	ReemplazarDetalles(ctx context.Context, id uuid.UUID, req dto.ReemplazarDetallesRequest) (*dto.DocumentoResponse, error)
}

type documentoService struct {
	repo repository.DocumentoRepository
}

func NewDocumentoService(repo repository.DocumentoRepository) DocumentoService {
	return &documentoService{repo: repo}
}

func (s *documentoService) Crear(ctx context.Context, req dto.CrearDocumentoRequest) (*dto.DocumentoResponse, error) {
	tipo := model.TipoDocumento(req.Tipo)
	if !cabezasDeCadena[tipo] {
		return nil, &ConversionInvalidaError{
			TipoDestino: tipo,
			Motivo:      "este tipo de documento solo se crea por conversión",
		}
	}
	fl := flujos[tipo]

	doc := model.Documento{
		Tipo:            tipo,
		Estado:          model.EstadoPendiente,
		Solicitante:     req.Solicitante,
		Departamento:    req.Departamento,
		Justificacion:   req.Justificacion,
		Validez:         req.Validez,
		CondicionesPago: req.CondicionesPago,
		Observaciones:   req.Observaciones,
	}
	if req.ClienteID != nil {
		cid, err := uuid.Parse(*req.ClienteID)
		if err != nil {
			return nil, fmt.Errorf("cliente_id inválido: %w", err)
		}
		doc.ClienteID = &cid
	}
	if req.ProveedorID != nil {
		pid, err := uuid.Parse(*req.ProveedorID)
		if err != nil {
			return nil, fmt.Errorf("proveedor_id inválido: %w", err)
		}
		doc.ProveedorID = &pid
	}

	detalles, total, err := construirDetalles(req.Detalles)
	if err != nil {
		return nil, err
	}
	doc.Detalles = detalles
	doc.Total = total

	if err := s.crearConFolio(ctx, &doc, fl.prefijo); err != nil {
		return nil, err
	}
	return documentoToResponse(&doc), nil
}

// crearConFolio inserts the document, regenerating the folio and retrying
// when the unique index rejects it.
func (s *documentoService) crearConFolio(ctx context.Context, doc *model.Documento, prefijo string) error {
	var err error
	for intento := 0; intento < maxIntentosFolio; intento++ {
		doc.Folio = folio.Generar(prefijo)
		err = runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
			return s.repo.Create(ctx, tx, doc)
		})
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return err
		}
	}
	return fmt.Errorf("%w: %v", ErrFolioDuplicado, err)
}

func (s *documentoService) Obtener(ctx context.Context, id uuid.UUID) (*dto.DocumentoResponse, error) {
	doc, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, &NoEncontradoError{Entidad: "documento", ID: id.String()}
	}
	return documentoToResponse(doc), nil
}

func (s *documentoService) Listar(ctx context.Context, filter dto.DocumentoFilter) (*dto.DocumentoListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 50
	}
	docs, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	items := make([]dto.DocumentoResponse, 0, len(docs))
	for i := range docs {
		items = append(items, *documentoToResponse(&docs[i]))
	}
	return &dto.DocumentoListResponse{
		Data:  items,
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	}, nil
}

func (s *documentoService) Transicionar(ctx context.Context, id uuid.UUID, accion string) (*dto.DocumentoResponse, error) {
	doc, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, &NoEncontradoError{Entidad: "documento", ID: id.String()}
	}

	fl, ok := flujos[doc.Tipo]
	if !ok {
		return nil, fmt.Errorf("tipo de documento desconocido: %s", doc.Tipo)
	}
	transiciones, ok := fl.acciones[accion]
	if !ok {
		return nil, &TransicionInvalidaError{Folio: doc.Folio, Tipo: doc.Tipo, Estado: doc.Estado, Accion: accion}
	}
	hacia, ok := transiciones[doc.Estado]
	if !ok {
		return nil, &TransicionInvalidaError{Folio: doc.Folio, Tipo: doc.Tipo, Estado: doc.Estado, Accion: accion}
	}

	// Compare-and-set: if another request moved the document first, the
	// WHERE estado = ? clause matches nothing and we report the conflict.
	cambiado, err := s.repo.UpdateEstadoCAS(ctx, id, doc.Estado, hacia)
	if err != nil {
		return nil, err
	}
	if !cambiado {
		return nil, &TransicionInvalidaError{Folio: doc.Folio, Tipo: doc.Tipo, Estado: doc.Estado, Accion: accion}
	}

	doc.Estado = hacia
	return documentoToResponse(doc), nil
}

func (s *documentoService) Convertir(ctx context.Context, id uuid.UUID, tipoDestino model.TipoDocumento) (*dto.DocumentoResponse, error) {
	origen, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, &NoEncontradoError{Entidad: "documento", ID: id.String()}
	}

	fl, ok := flujos[origen.Tipo]
	if !ok {
		return nil, fmt.Errorf("tipo de documento desconocido: %s", origen.Tipo)
	}
	if fl.siguiente == "" {
		return nil, &ConversionInvalidaError{
			TipoOrigen:  origen.Tipo,
			TipoDestino: tipoDestino,
			Motivo:      "el documento es el final de su cadena",
		}
	}
	if tipoDestino != fl.siguiente {
		return nil, &ConversionInvalidaError{
			TipoOrigen:  origen.Tipo,
			TipoDestino: tipoDestino,
			Motivo:      fmt.Sprintf("el sucesor de %s es %s", origen.Tipo, fl.siguiente),
		}
	}
	if origen.Estado != fl.estadoConversion {
		return nil, &ConversionInvalidaError{
			TipoOrigen:  origen.Tipo,
			TipoDestino: tipoDestino,
			Motivo:      fmt.Sprintf("requiere estado %q, actual %q", fl.estadoConversion, origen.Estado),
		}
	}

	destino := model.Documento{
		Tipo:              tipoDestino,
		Estado:            model.EstadoPendiente,
		DocumentoOrigenID: &origen.ID,
		ProveedorID:       origen.ProveedorID,
		ClienteID:         origen.ClienteID,
		CondicionesPago:   origen.CondicionesPago,
		Observaciones:     origen.Observaciones,
	}

	total := decimal.Zero
	for i, d := range origen.Detalles {
		importe := d.PrecioUnitario.Mul(decimal.NewFromInt(int64(d.Cantidad)))
		total = total.Add(importe)
		destino.Detalles = append(destino.Detalles, model.DetalleDocumento{
			ProductoID:     d.ProductoID,
			Descripcion:    d.Descripcion,
			Cantidad:       d.Cantidad,
			UnidadMedida:   d.UnidadMedida,
			PrecioUnitario: d.PrecioUnitario,
			Importe:        importe,
			Posicion:       i,
		})
	}
	destino.Total = total

	if err := s.crearConFolio(ctx, &destino, flujos[tipoDestino].prefijo); err != nil {
		return nil, err
	}
	return documentoToResponse(&destino), nil
}

func (s *documentoService) ReemplazarDetalles(ctx context.Context, id uuid.UUID, req dto.ReemplazarDetallesRequest) (*dto.DocumentoResponse, error) {
	doc, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, &NoEncontradoError{Entidad: "documento", ID: id.String()}
	}
	if doc.Estado != model.EstadoPendiente {
		return nil, &TransicionInvalidaError{Folio: doc.Folio, Tipo: doc.Tipo, Estado: doc.Estado, Accion: "editar"}
	}

	detalles, total, err := construirDetalles(req.Detalles)
	if err != nil {
		return nil, err
	}
	for i := range detalles {
		detalles[i].DocumentoID = doc.ID
	}

	err = runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		return s.repo.ReemplazarDetallesTx(tx, doc.ID, detalles, total)
	})
	if err != nil {
		return nil, err
	}

	doc.Detalles = detalles
	doc.Total = total
	return documentoToResponse(doc), nil
}

// construirDetalles turns request lines into model lines, numbering them and
// computing importes and the document total.
func construirDetalles(lineas []dto.DetalleDocumentoRequest) ([]model.DetalleDocumento, decimal.Decimal, error) {
	detalles := make([]model.DetalleDocumento, 0, len(lineas))
	total := decimal.Zero
	for i, l := range lineas {
		var productoID *uuid.UUID
		if l.ProductoID != nil {
			pid, err := uuid.Parse(*l.ProductoID)
			if err != nil {
				return nil, decimal.Zero, fmt.Errorf("producto_id inválido: %w", err)
			}
			productoID = &pid
		}
		importe := l.PrecioUnitario.Mul(decimal.NewFromInt(int64(l.Cantidad)))
		total = total.Add(importe)
		detalles = append(detalles, model.DetalleDocumento{
			ProductoID:     productoID,
			Descripcion:    l.Descripcion,
			Cantidad:       l.Cantidad,
			UnidadMedida:   l.UnidadMedida,
			PrecioUnitario: l.PrecioUnitario,
			Importe:        importe,
			Posicion:       i,
		})
	}
	return detalles, total, nil
}

func documentoToResponse(d *model.Documento) *dto.DocumentoResponse {
	detalles := make([]dto.DetalleDocumentoResponse, 0, len(d.Detalles))
	for _, l := range d.Detalles {
		var productoID *string
		if l.ProductoID != nil {
			s := l.ProductoID.String()
			productoID = &s
		}
		detalles = append(detalles, dto.DetalleDocumentoResponse{
			ProductoID:     productoID,
			Descripcion:    l.Descripcion,
			Cantidad:       l.Cantidad,
			UnidadMedida:   l.UnidadMedida,
			PrecioUnitario: l.PrecioUnitario,
			Importe:        l.Importe,
		})
	}
	var origenID, proveedorID, clienteID *string
	if d.DocumentoOrigenID != nil {
		s := d.DocumentoOrigenID.String()
		origenID = &s
	}
	if d.ProveedorID != nil {
		s := d.ProveedorID.String()
		proveedorID = &s
	}
	if d.ClienteID != nil {
		s := d.ClienteID.String()
		clienteID = &s
	}
	return &dto.DocumentoResponse{
		ID:                d.ID.String(),
		Tipo:              string(d.Tipo),
		Folio:             d.Folio,
		Estado:            d.Estado,
		Total:             d.Total,
		DocumentoOrigenID: origenID,
		ProveedorID:       proveedorID,
		ClienteID:         clienteID,
		Detalles:          detalles,
		CreatedAt:         d.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}
}

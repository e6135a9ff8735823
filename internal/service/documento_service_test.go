package service_test

import (
	"context"
	"strings"
	"testing"

	"github.com/apenap/sis.ret-alpha/internal/dto"
	"github.com/apenap/sis.ret-alpha/internal/model"
	"github.com/apenap/sis.ret-alpha/internal/service"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildDocumentoSvc() (service.DocumentoService, *stubDocumentoRepo) {
	repo := newStubDocumentoRepo()
	return service.NewDocumentoService(repo), repo
}

func strPtr(s string) *string { return &s }

func crearRequisicion(t *testing.T, svc service.DocumentoService) *dto.DocumentoResponse {
	t.Helper()
	resp, err := svc.Crear(context.Background(), dto.CrearDocumentoRequest{
		Tipo:          "requisicion",
		Solicitante:   strPtr("Laura Mendez"),
		Departamento:  strPtr("Almacén"),
		Justificacion: strPtr("reabastecimiento mensual"),
		Detalles: []dto.DetalleDocumentoRequest{
			{Descripcion: "Caja archivo t/carta", Cantidad: 10, PrecioUnitario: decimal.NewFromFloat(45)},
			{Descripcion: "Cinta canela 48mm", Cantidad: 24, PrecioUnitario: decimal.NewFromFloat(18.50)},
		},
	})
	require.NoError(t, err)
	return resp
}

func TestCrearDocumento_SoloCabezasDeCadena(t *testing.T) {
	svc, _ := buildDocumentoSvc()

	for _, tipo := range []string{"cotizacion_compra", "orden_compra", "factura_compra", "remision", "factura_venta"} {
		_, err := svc.Crear(context.Background(), dto.CrearDocumentoRequest{Tipo: tipo})
		var convErr *service.ConversionInvalidaError
		assert.ErrorAs(t, err, &convErr, "tipo %s no debería crearse directo", tipo)
	}
}

func TestCrearRequisicion_FolioYTotal(t *testing.T) {
	svc, _ := buildDocumentoSvc()
	resp := crearRequisicion(t, svc)

	assert.True(t, strings.HasPrefix(resp.Folio, "REQ-"), "folio %q", resp.Folio)
	assert.Equal(t, model.EstadoPendiente, resp.Estado)
	// total = 10×45 + 24×18.50 = 450 + 444 = 894
	assert.Equal(t, "894", resp.Total.String())
	require.Len(t, resp.Detalles, 2)
	assert.Equal(t, "450", resp.Detalles[0].Importe.String())
}

func TestTransicionar_CancelarPendiente(t *testing.T) {
	svc, _ := buildDocumentoSvc()
	resp := crearRequisicion(t, svc)
	id := uuid.MustParse(resp.ID)

	// Un documento pendiente puede retirarse sin pasar por rechazo
	cancelada, err := svc.Transicionar(context.Background(), id, "cancelar")
	require.NoError(t, err)
	assert.Equal(t, model.EstadoCancelada, cancelada.Estado)

	// Y una vez cancelado ya no admite acciones
	_, err = svc.Transicionar(context.Background(), id, "aprobar")
	var transErr *service.TransicionInvalidaError
	require.ErrorAs(t, err, &transErr)
	assert.Equal(t, model.EstadoCancelada, transErr.Estado)
}

func TestTransicionar_AprobarRequisicion(t *testing.T) {
	svc, _ := buildDocumentoSvc()
	resp := crearRequisicion(t, svc)
	id := uuid.MustParse(resp.ID)

	aprobada, err := svc.Transicionar(context.Background(), id, "aprobar")
	require.NoError(t, err)
	assert.Equal(t, model.EstadoAprobada, aprobada.Estado)

	// Aprobar de nuevo: el estado ya no es pendiente
	_, err = svc.Transicionar(context.Background(), id, "aprobar")
	var transErr *service.TransicionInvalidaError
	require.ErrorAs(t, err, &transErr)
	assert.Equal(t, model.EstadoAprobada, transErr.Estado)
}

func TestTransicionar_AccionDesconocida(t *testing.T) {
	svc, _ := buildDocumentoSvc()
	resp := crearRequisicion(t, svc)

	// "entregar" pertenece a remisiones, no a requisiciones
	_, err := svc.Transicionar(context.Background(), uuid.MustParse(resp.ID), "entregar")
	var transErr *service.TransicionInvalidaError
	assert.ErrorAs(t, err, &transErr)
}

func TestTransicionar_RechazarNoPendiente(t *testing.T) {
	svc, _ := buildDocumentoSvc()
	resp := crearRequisicion(t, svc)
	id := uuid.MustParse(resp.ID)

	_, err := svc.Transicionar(context.Background(), id, "rechazar")
	require.NoError(t, err)

	_, err = svc.Transicionar(context.Background(), id, "aprobar")
	var transErr *service.TransicionInvalidaError
	require.ErrorAs(t, err, &transErr)
	assert.Equal(t, model.EstadoRechazada, transErr.Estado)
}

func TestConvertir_RequisicionAprobada(t *testing.T) {
	svc, repo := buildDocumentoSvc()
	resp := crearRequisicion(t, svc)
	id := uuid.MustParse(resp.ID)

	_, err := svc.Transicionar(context.Background(), id, "aprobar")
	require.NoError(t, err)

	cot, err := svc.Convertir(context.Background(), id, model.TipoCotizacionCompra)
	require.NoError(t, err)

	assert.Equal(t, "cotizacion_compra", cot.Tipo)
	assert.Equal(t, model.EstadoPendiente, cot.Estado)
	assert.True(t, strings.HasPrefix(cot.Folio, "COT-"), "folio %q", cot.Folio)
	require.NotNil(t, cot.DocumentoOrigenID)
	assert.Equal(t, resp.ID, *cot.DocumentoOrigenID)

	// Las líneas se copian 1:1 en el mismo orden y el total se recalcula
	require.Len(t, cot.Detalles, 2)
	assert.Equal(t, resp.Detalles[0].Descripcion, cot.Detalles[0].Descripcion)
	assert.Equal(t, resp.Detalles[1].Descripcion, cot.Detalles[1].Descripcion)
	assert.Equal(t, resp.Total.String(), cot.Total.String())

	// El origen no se toca
	origen, err := repo.FindByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, model.EstadoAprobada, origen.Estado)
	assert.Len(t, origen.Detalles, 2)
}

func TestConvertir_PendienteNoElegible(t *testing.T) {
	svc, _ := buildDocumentoSvc()
	resp := crearRequisicion(t, svc)

	_, err := svc.Convertir(context.Background(), uuid.MustParse(resp.ID), model.TipoCotizacionCompra)
	var convErr *service.ConversionInvalidaError
	require.ErrorAs(t, err, &convErr)
	assert.Contains(t, convErr.Motivo, "requiere estado")
}

func TestConvertir_DestinoFueraDeCadena(t *testing.T) {
	svc, _ := buildDocumentoSvc()
	resp := crearRequisicion(t, svc)
	id := uuid.MustParse(resp.ID)

	_, err := svc.Transicionar(context.Background(), id, "aprobar")
	require.NoError(t, err)

	// Una requisición solo se convierte en cotización de compra
	_, err = svc.Convertir(context.Background(), id, model.TipoOrdenCompra)
	var convErr *service.ConversionInvalidaError
	assert.ErrorAs(t, err, &convErr)
}

func TestConvertir_Repetible(t *testing.T) {
	svc, _ := buildDocumentoSvc()
	resp := crearRequisicion(t, svc)
	id := uuid.MustParse(resp.ID)

	_, err := svc.Transicionar(context.Background(), id, "aprobar")
	require.NoError(t, err)

	// Dos conversiones de la misma requisición producen dos cotizaciones
	// independientes con folios distintos.
	c1, err := svc.Convertir(context.Background(), id, model.TipoCotizacionCompra)
	require.NoError(t, err)
	c2, err := svc.Convertir(context.Background(), id, model.TipoCotizacionCompra)
	require.NoError(t, err)

	assert.NotEqual(t, c1.ID, c2.ID)
	assert.NotEqual(t, c1.Folio, c2.Folio)
	assert.Equal(t, resp.ID, *c1.DocumentoOrigenID)
	assert.Equal(t, resp.ID, *c2.DocumentoOrigenID)
}

func TestConvertir_FacturaEsFinalDeCadena(t *testing.T) {
	svc, repo := buildDocumentoSvc()

	// Sembrar una factura de compra pagada directamente en el repo
	factura := &model.Documento{
		Tipo:   model.TipoFacturaCompra,
		Folio:  "FAC-240101-TEST",
		Estado: model.EstadoPagada,
		Total:  decimal.NewFromFloat(1000),
	}
	require.NoError(t, repo.Create(context.Background(), nil, factura))

	_, err := svc.Convertir(context.Background(), factura.ID, model.TipoRequisicion)
	var convErr *service.ConversionInvalidaError
	require.ErrorAs(t, err, &convErr)
	assert.Contains(t, convErr.Motivo, "final de su cadena")
}

func TestCadenaCompraCompleta(t *testing.T) {
	svc, _ := buildDocumentoSvc()
	ctx := context.Background()

	req := crearRequisicion(t, svc)
	reqID := uuid.MustParse(req.ID)
	_, err := svc.Transicionar(ctx, reqID, "aprobar")
	require.NoError(t, err)

	cot, err := svc.Convertir(ctx, reqID, model.TipoCotizacionCompra)
	require.NoError(t, err)
	cotID := uuid.MustParse(cot.ID)
	_, err = svc.Transicionar(ctx, cotID, "aceptar")
	require.NoError(t, err)

	orden, err := svc.Convertir(ctx, cotID, model.TipoOrdenCompra)
	require.NoError(t, err)
	ordenID := uuid.MustParse(orden.ID)
	assert.True(t, strings.HasPrefix(orden.Folio, "ORD-"))

	// pendiente → parcial → completada
	parcial, err := svc.Transicionar(ctx, ordenID, "avanzar")
	require.NoError(t, err)
	assert.Equal(t, model.EstadoParcial, parcial.Estado)
	completada, err := svc.Transicionar(ctx, ordenID, "completar")
	require.NoError(t, err)
	assert.Equal(t, model.EstadoCompletada, completada.Estado)

	factura, err := svc.Convertir(ctx, ordenID, model.TipoFacturaCompra)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(factura.Folio, "FAC-"))
	assert.Equal(t, req.Total.String(), factura.Total.String())

	pagada, err := svc.Transicionar(ctx, uuid.MustParse(factura.ID), "pagar")
	require.NoError(t, err)
	assert.Equal(t, model.EstadoPagada, pagada.Estado)
}

func TestCadenaVentaCompleta(t *testing.T) {
	svc, _ := buildDocumentoSvc()
	ctx := context.Background()

	clienteID := uuid.New().String()
	cot, err := svc.Crear(ctx, dto.CrearDocumentoRequest{
		Tipo:      "cotizacion_venta",
		ClienteID: &clienteID,
		Detalles: []dto.DetalleDocumentoRequest{
			{Descripcion: "Despensa básica", Cantidad: 50, PrecioUnitario: decimal.NewFromFloat(320)},
		},
	})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(cot.Folio, "COTV-"))

	cotID := uuid.MustParse(cot.ID)
	_, err = svc.Transicionar(ctx, cotID, "aceptar")
	require.NoError(t, err)

	remision, err := svc.Convertir(ctx, cotID, model.TipoRemision)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(remision.Folio, "REM-"))
	// El cliente viaja con la conversión
	require.NotNil(t, remision.ClienteID)
	assert.Equal(t, clienteID, *remision.ClienteID)

	remID := uuid.MustParse(remision.ID)
	_, err = svc.Transicionar(ctx, remID, "entregar")
	require.NoError(t, err)

	factura, err := svc.Convertir(ctx, remID, model.TipoFacturaVenta)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(factura.Folio, "FACV-"))
	assert.Equal(t, "16000", factura.Total.String())
}

func TestReemplazarDetalles_SoloPendientes(t *testing.T) {
	svc, _ := buildDocumentoSvc()
	resp := crearRequisicion(t, svc)
	id := uuid.MustParse(resp.ID)

	nuevo, err := svc.ReemplazarDetalles(context.Background(), id, dto.ReemplazarDetallesRequest{
		Detalles: []dto.DetalleDocumentoRequest{
			{Descripcion: "Papel bond carta", Cantidad: 5, PrecioUnitario: decimal.NewFromFloat(120)},
		},
	})
	require.NoError(t, err)
	require.Len(t, nuevo.Detalles, 1)
	assert.Equal(t, "600", nuevo.Total.String())

	// Una vez aprobada, las líneas quedan congeladas
	_, err = svc.Transicionar(context.Background(), id, "aprobar")
	require.NoError(t, err)
	_, err = svc.ReemplazarDetalles(context.Background(), id, dto.ReemplazarDetallesRequest{
		Detalles: []dto.DetalleDocumentoRequest{
			{Descripcion: "Otra cosa", Cantidad: 1, PrecioUnitario: decimal.NewFromFloat(1)},
		},
	})
	var transErr *service.TransicionInvalidaError
	require.ErrorAs(t, err, &transErr)
	assert.Equal(t, "editar", transErr.Accion)
}

func TestListarDocumentos_FiltraPorTipo(t *testing.T) {
	svc, _ := buildDocumentoSvc()
	ctx := context.Background()

	crearRequisicion(t, svc)
	crearRequisicion(t, svc)
	_, err := svc.Crear(ctx, dto.CrearDocumentoRequest{
		Tipo: "cotizacion_venta",
		Detalles: []dto.DetalleDocumentoRequest{
			{Descripcion: "Servicio", Cantidad: 1, PrecioUnitario: decimal.NewFromFloat(100)},
		},
	})
	require.NoError(t, err)

	lista, err := svc.Listar(ctx, dto.DocumentoFilter{Tipo: "requisicion"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), lista.Total)

	todas, err := svc.Listar(ctx, dto.DocumentoFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(3), todas.Total)
}

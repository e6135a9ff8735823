package service_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/apenap/sis.ret-alpha/internal/dto"
	"github.com/apenap/sis.ret-alpha/internal/model"
	"github.com/apenap/sis.ret-alpha/internal/service"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildVentaSvc() (service.VentaService, *stubVentaRepo, *stubProductoRepo, *stubMovimientoRepo, *stubDispatcher) {
	productoRepo := newStubProductoRepo()
	ventaRepo := newStubVentaRepo()
	movimientoRepo := &stubMovimientoRepo{}
	devolucionRepo := &stubDevolucionRepo{}
	dispatcher := &stubDispatcher{}

	inventarioSvc := service.NewInventarioService(productoRepo, movimientoRepo)
	svc := service.NewVentaService(ventaRepo, devolucionRepo, productoRepo, inventarioSvc, dispatcher)
	return svc, ventaRepo, productoRepo, movimientoRepo, dispatcher
}

func itemDe(p *model.Producto, cantidad int) dto.ItemCarritoRequest {
	return dto.ItemCarritoRequest{
		ProductoID:     p.ID.String(),
		Cantidad:       cantidad,
		PrecioUnitario: p.PrecioVenta,
	}
}

func TestProcesarVenta_CarritoVacio(t *testing.T) {
	svc, _, _, _, _ := buildVentaSvc()
	_, err := svc.ProcesarVenta(context.Background(), dto.ProcesarVentaRequest{
		Efectivo: decimal.NewFromFloat(100),
	})
	assert.ErrorIs(t, err, service.ErrCarritoVacio)
}

func TestProcesarVenta_DescuentaStockYRegistraMovimiento(t *testing.T) {
	svc, ventaRepo, productoRepo, movimientoRepo, dispatcher := buildVentaSvc()
	p := seedProducto(productoRepo, "Arroz 1kg", 32.50, 20, 5)

	resp, err := svc.ProcesarVenta(context.Background(), dto.ProcesarVentaRequest{
		Items:    []dto.ItemCarritoRequest{itemDe(p, 3)},
		Efectivo: decimal.NewFromFloat(100),
	})
	require.NoError(t, err)

	// total = 32.50 × 3 = 97.50, cambio = 2.50
	assert.Equal(t, "97.5", resp.Total.String())
	assert.Equal(t, "2.5", resp.Cambio.String())
	assert.Equal(t, model.VentaCompletada, resp.Estado)
	assert.NotEmpty(t, resp.Folio)

	assert.Equal(t, 17, productoRepo.stock(p.ID))

	// One negative movimiento referencing the venta
	movs := movimientoRepo.porTipo("venta")
	require.Len(t, movs, 1)
	assert.Equal(t, -3, movs[0].Cantidad)
	assert.Equal(t, 20, movs[0].StockAnterior)
	assert.Equal(t, 17, movs[0].StockNuevo)
	require.NotNil(t, movs[0].ReferenciaID)
	assert.Equal(t, resp.ID, movs[0].ReferenciaID.String())

	// Persisted and queued for async CFDI
	stored, err := ventaRepo.FindByID(context.Background(), uuid.MustParse(resp.ID))
	require.NoError(t, err)
	assert.Len(t, stored.Detalles, 1)
	assert.Len(t, dispatcher.payloads, 1)
}

func TestProcesarVenta_PagoInsuficienteCambioCero(t *testing.T) {
	svc, _, productoRepo, _, _ := buildVentaSvc()
	p := seedProducto(productoRepo, "Aceite 1L", 50, 10, 2)

	// total = 150, efectivo = 100 → la venta procede con cambio 0
	resp, err := svc.ProcesarVenta(context.Background(), dto.ProcesarVentaRequest{
		Items:    []dto.ItemCarritoRequest{itemDe(p, 3)},
		Efectivo: decimal.NewFromFloat(100),
	})
	require.NoError(t, err)
	assert.True(t, resp.Cambio.IsZero())
	assert.Equal(t, "150", resp.Total.String())
}

func TestProcesarVenta_StockInsuficienteNoDejaRastro(t *testing.T) {
	svc, ventaRepo, productoRepo, movimientoRepo, dispatcher := buildVentaSvc()
	suficiente := seedProducto(productoRepo, "Frijol 900g", 40, 50, 5)
	escaso := seedProducto(productoRepo, "Cafe 500g", 120, 2, 1)

	_, err := svc.ProcesarVenta(context.Background(), dto.ProcesarVentaRequest{
		Items: []dto.ItemCarritoRequest{
			itemDe(suficiente, 4), // se debita primero...
			itemDe(escaso, 5),     // ...y esta línea aborta todo
		},
		Efectivo: decimal.NewFromFloat(1000),
	})

	var stockErr *service.StockInsuficienteError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, escaso.ID, stockErr.ProductoID)

	// Ningún debito sobrevive y no se crea venta ni job
	assert.Equal(t, 50, productoRepo.stock(suficiente.ID))
	assert.Equal(t, 2, productoRepo.stock(escaso.ID))
	ventas, _, _ := ventaRepo.List(context.Background(), dto.VentaFilter{Estado: "all"})
	assert.Empty(t, ventas)
	assert.Empty(t, dispatcher.payloads)
	_ = movimientoRepo
}

func TestProcesarVenta_ProductoInexistente(t *testing.T) {
	svc, _, _, _, _ := buildVentaSvc()
	_, err := svc.ProcesarVenta(context.Background(), dto.ProcesarVentaRequest{
		Items: []dto.ItemCarritoRequest{{
			ProductoID:     uuid.New().String(),
			Cantidad:       1,
			PrecioUnitario: decimal.NewFromFloat(10),
		}},
		Efectivo: decimal.NewFromFloat(10),
	})
	var notFound *service.NoEncontradoError
	assert.ErrorAs(t, err, &notFound)
}

func TestProcesarVenta_FolioDuplicadoReintenta(t *testing.T) {
	svc, ventaRepo, productoRepo, _, _ := buildVentaSvc()
	p := seedProducto(productoRepo, "Azucar 1kg", 28, 10, 2)
	ventaRepo.dupRestantes = 1 // first insert collides, second folio succeeds

	resp, err := svc.ProcesarVenta(context.Background(), dto.ProcesarVentaRequest{
		Items:    []dto.ItemCarritoRequest{itemDe(p, 2)},
		Efectivo: decimal.NewFromFloat(100),
	})
	require.NoError(t, err)

	// The failed attempt's debit was compensated; the retry debits once.
	assert.Equal(t, 8, productoRepo.stock(p.ID))
	stored, err := ventaRepo.FindByID(context.Background(), uuid.MustParse(resp.ID))
	require.NoError(t, err)
	assert.Equal(t, resp.Folio, stored.Folio)
}

func TestProcesarVenta_CarreraPorUltimaUnidad(t *testing.T) {
	svc, _, productoRepo, _, _ := buildVentaSvc()
	p := seedProducto(productoRepo, "Edicion limitada", 99, 1, 0)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.ProcesarVenta(context.Background(), dto.ProcesarVentaRequest{
				Items:    []dto.ItemCarritoRequest{itemDe(p, 1)},
				Efectivo: decimal.NewFromFloat(100),
			})
		}(i)
	}
	wg.Wait()

	// Exactly one winner; stock never goes negative.
	fallos := 0
	for _, err := range errs {
		if err != nil {
			var stockErr *service.StockInsuficienteError
			assert.ErrorAs(t, err, &stockErr)
			fallos++
		}
	}
	assert.Equal(t, 1, fallos)
	assert.Equal(t, 0, productoRepo.stock(p.ID))
}

func TestAnularVenta_RestauraStock(t *testing.T) {
	svc, ventaRepo, productoRepo, movimientoRepo, _ := buildVentaSvc()
	p := seedProducto(productoRepo, "Leche 1L", 24, 10, 2)

	resp, err := svc.ProcesarVenta(context.Background(), dto.ProcesarVentaRequest{
		Items:    []dto.ItemCarritoRequest{itemDe(p, 4)},
		Efectivo: decimal.NewFromFloat(100),
	})
	require.NoError(t, err)
	assert.Equal(t, 6, productoRepo.stock(p.ID))

	err = svc.AnularVenta(context.Background(), uuid.MustParse(resp.ID), "cliente se arrepintió")
	require.NoError(t, err)

	assert.Equal(t, 10, productoRepo.stock(p.ID))
	stored, _ := ventaRepo.FindByID(context.Background(), uuid.MustParse(resp.ID))
	assert.Equal(t, model.VentaCancelada, stored.Estado)

	movs := movimientoRepo.porTipo("anulacion")
	require.Len(t, movs, 1)
	assert.Equal(t, 4, movs[0].Cantidad)
}

func TestAnularVenta_SoloCompletadas(t *testing.T) {
	svc, _, productoRepo, _, _ := buildVentaSvc()
	p := seedProducto(productoRepo, "Pan blanco", 45, 10, 2)

	resp, err := svc.ProcesarVenta(context.Background(), dto.ProcesarVentaRequest{
		Items:    []dto.ItemCarritoRequest{itemDe(p, 1)},
		Efectivo: decimal.NewFromFloat(50),
	})
	require.NoError(t, err)

	id := uuid.MustParse(resp.ID)
	require.NoError(t, svc.AnularVenta(context.Background(), id, "error de captura"))

	// Anular dos veces es inválido
	err = svc.AnularVenta(context.Background(), id, "de nuevo")
	var transErr *service.TransicionInvalidaError
	require.ErrorAs(t, err, &transErr)
	assert.Equal(t, model.VentaCancelada, transErr.Estado)

	// El stock no se restaura dos veces
	assert.Equal(t, 10, productoRepo.stock(p.ID))
}

// ventaRepoConLatencia returns detached snapshots with a small read delay,
// like a SELECT against a real database outside the transaction.
type ventaRepoConLatencia struct {
	*stubVentaRepo
}

func (r *ventaRepoConLatencia) FindByID(ctx context.Context, id uuid.UUID) (*model.Venta, error) {
	v, err := r.stubVentaRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	copia := *v
	copia.Detalles = append([]model.DetalleVenta(nil), v.Detalles...)
	time.Sleep(5 * time.Millisecond)
	return &copia, nil
}

func TestAnularVenta_ConcurrenteRestauraUnaVez(t *testing.T) {
	productoRepo := newStubProductoRepo()
	ventaRepo := &ventaRepoConLatencia{newStubVentaRepo()}
	movimientoRepo := &stubMovimientoRepo{}
	inventarioSvc := service.NewInventarioService(productoRepo, movimientoRepo)
	svc := service.NewVentaService(ventaRepo, &stubDevolucionRepo{}, productoRepo, inventarioSvc, &stubDispatcher{})

	p := seedProducto(productoRepo, "Cereal 500g", 55, 10, 2)
	resp, err := svc.ProcesarVenta(context.Background(), dto.ProcesarVentaRequest{
		Items:    []dto.ItemCarritoRequest{itemDe(p, 4)},
		Efectivo: decimal.NewFromFloat(250),
	})
	require.NoError(t, err)
	require.Equal(t, 6, productoRepo.stock(p.ID))

	id := uuid.MustParse(resp.ID)
	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = svc.AnularVenta(context.Background(), id, "doble clic en caja")
		}(i)
	}
	wg.Wait()

	// Ambas leen la venta completada; solo una gana el compare-and-set y
	// el stock vuelve exactamente una vez.
	fallos := 0
	for _, err := range errs {
		if err != nil {
			var transErr *service.TransicionInvalidaError
			assert.ErrorAs(t, err, &transErr)
			fallos++
		}
	}
	assert.Equal(t, 1, fallos)
	assert.Equal(t, 10, productoRepo.stock(p.ID))
	assert.Len(t, movimientoRepo.porTipo("anulacion"), 1)
}

func TestRegistrarDevolucion_Parcial(t *testing.T) {
	svc, ventaRepo, productoRepo, movimientoRepo, _ := buildVentaSvc()
	p := seedProducto(productoRepo, "Atun lata", 18.50, 30, 5)

	resp, err := svc.ProcesarVenta(context.Background(), dto.ProcesarVentaRequest{
		Items:    []dto.ItemCarritoRequest{itemDe(p, 6)},
		Efectivo: decimal.NewFromFloat(200),
	})
	require.NoError(t, err)
	assert.Equal(t, 24, productoRepo.stock(p.ID))

	err = svc.RegistrarDevolucion(context.Background(), uuid.MustParse(resp.ID), dto.RegistrarDevolucionRequest{
		Motivo: "producto dañado",
		Items:  []dto.ItemDevolucionRequest{{ProductoID: p.ID.String(), Cantidad: 2}},
	})
	require.NoError(t, err)

	// Solo vuelven las 2 unidades devueltas
	assert.Equal(t, 26, productoRepo.stock(p.ID))
	stored, _ := ventaRepo.FindByID(context.Background(), uuid.MustParse(resp.ID))
	assert.Equal(t, model.VentaDevolucion, stored.Estado)

	movs := movimientoRepo.porTipo("devolucion")
	require.Len(t, movs, 1)
	assert.Equal(t, 2, movs[0].Cantidad)
}

func TestRegistrarDevolucion_NoExcedeLoVendido(t *testing.T) {
	svc, _, productoRepo, _, _ := buildVentaSvc()
	p := seedProducto(productoRepo, "Galletas", 15, 20, 5)

	resp, err := svc.ProcesarVenta(context.Background(), dto.ProcesarVentaRequest{
		Items:    []dto.ItemCarritoRequest{itemDe(p, 2)},
		Efectivo: decimal.NewFromFloat(50),
	})
	require.NoError(t, err)

	err = svc.RegistrarDevolucion(context.Background(), uuid.MustParse(resp.ID), dto.RegistrarDevolucionRequest{
		Motivo: "me dieron de más",
		Items:  []dto.ItemDevolucionRequest{{ProductoID: p.ID.String(), Cantidad: 5}},
	})
	assert.ErrorContains(t, err, "no se pueden devolver")
	assert.Equal(t, 18, productoRepo.stock(p.ID))
}

func TestRegistrarDevolucion_ProductoEnVariasLineas(t *testing.T) {
	svc, _, productoRepo, _, _ := buildVentaSvc()
	p := seedProducto(productoRepo, "Jabon barra", 12, 30, 5)

	// El mismo producto en dos líneas: 2 + 3 vendidas
	resp, err := svc.ProcesarVenta(context.Background(), dto.ProcesarVentaRequest{
		Items:    []dto.ItemCarritoRequest{itemDe(p, 2), itemDe(p, 3)},
		Efectivo: decimal.NewFromFloat(100),
	})
	require.NoError(t, err)
	assert.Equal(t, 25, productoRepo.stock(p.ID))
	id := uuid.MustParse(resp.ID)

	// El tope es la suma de las líneas (5), no una línea suelta
	err = svc.RegistrarDevolucion(context.Background(), id, dto.RegistrarDevolucionRequest{
		Motivo: "pedido equivocado",
		Items:  []dto.ItemDevolucionRequest{{ProductoID: p.ID.String(), Cantidad: 6}},
	})
	assert.ErrorContains(t, err, "no se pueden devolver")
	assert.Equal(t, 25, productoRepo.stock(p.ID))

	err = svc.RegistrarDevolucion(context.Background(), id, dto.RegistrarDevolucionRequest{
		Motivo: "pedido equivocado",
		Items:  []dto.ItemDevolucionRequest{{ProductoID: p.ID.String(), Cantidad: 4}},
	})
	require.NoError(t, err)
	assert.Equal(t, 29, productoRepo.stock(p.ID))
}

func TestResumenVentas_RangoSinVentas(t *testing.T) {
	svc, _, _, _, _ := buildVentaSvc()
	desde := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	hasta := time.Date(2024, 1, 31, 23, 59, 59, 0, time.UTC)

	resumen, err := svc.ResumenVentas(context.Background(), desde, hasta)
	require.NoError(t, err)
	assert.Equal(t, int64(0), resumen.TotalVentas)
	assert.True(t, resumen.TotalIngresos.IsZero())
}

func TestResumenVentas_SoloCompletadas(t *testing.T) {
	svc, _, productoRepo, _, _ := buildVentaSvc()
	p := seedProducto(productoRepo, "Refresco 600ml", 20, 100, 5)

	r1, err := svc.ProcesarVenta(context.Background(), dto.ProcesarVentaRequest{
		Items:    []dto.ItemCarritoRequest{itemDe(p, 2)},
		Efectivo: decimal.NewFromFloat(40),
	})
	require.NoError(t, err)
	_, err = svc.ProcesarVenta(context.Background(), dto.ProcesarVentaRequest{
		Items:    []dto.ItemCarritoRequest{itemDe(p, 3)},
		Efectivo: decimal.NewFromFloat(60),
	})
	require.NoError(t, err)

	// La anulada queda fuera del rollup
	require.NoError(t, svc.AnularVenta(context.Background(), uuid.MustParse(r1.ID), "prueba de anulación"))

	hoy := time.Now()
	resumen, err := svc.ResumenVentas(context.Background(),
		hoy.Add(-time.Hour), hoy.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), resumen.TotalVentas)
	assert.Equal(t, "60", resumen.TotalIngresos.String())
}

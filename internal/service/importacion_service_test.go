package service_test

import (
	"context"
	"strings"
	"testing"

	"github.com/apenap/sis.ret-alpha/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImportarProductos_FilasBuenasYMalas(t *testing.T) {
	productoRepo := newStubProductoRepo()
	proveedorRepo := newStubProveedorRepo()
	svc := service.NewImportacionService(productoRepo, proveedorRepo)

	csv := strings.Join([]string{
		"codigo,nombre,precio_compra,precio_venta,stock,stock_minimo,proveedor",
		"A-001,Arroz 1kg,20,32.50,100,10,Abarrotes del Norte",
		"A-002,Frijol 900g,25,40,80,10,Abarrotes del Norte",
		",Sin precio,,abc,10,5,Abarrotes del Norte", // precio_venta inválido
		"A-003,,15,22,50,5,Abarrotes del Norte",     // nombre vacío
		"A-002,Frijol repetido,25,40,80,10,Abarrotes del Norte", // código duplicado en el archivo
		"A-004,Cafe 500g,80,120,-3,5,Abarrotes del Norte",       // stock negativo
		"A-005,Azucar 1kg,18,28,60,5,",                          // proveedor vacío
	}, "\n")

	resp, err := svc.ImportarProductos(context.Background(), strings.NewReader(csv))
	require.NoError(t, err)

	assert.Equal(t, 2, resp.Importados)
	require.Len(t, resp.Errores, 5)
	assert.Contains(t, resp.Errores[0], "fila 4")
	assert.Contains(t, resp.Errores[1], "fila 5")
	assert.Contains(t, resp.Errores[2], "repetido en el archivo")
	assert.Contains(t, resp.Errores[3], "stock inválido")
	assert.Contains(t, resp.Errores[4], "proveedor vacío")

	// El proveedor se crea una sola vez aunque aparezca en varias filas
	proveedores, err := proveedorRepo.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, proveedores, 1)
	assert.Equal(t, "Abarrotes del Norte", proveedores[0].Nombre)
}

func TestImportarProductos_ReutilizaProveedorExistente(t *testing.T) {
	productoRepo := newStubProductoRepo()
	proveedorRepo := newStubProveedorRepo()
	existente := seedProveedor(proveedorRepo, "Distribuidora Sur")
	svc := service.NewImportacionService(productoRepo, proveedorRepo)

	csv := "nombre,precio_venta,proveedor\nAceite 1L,55,distribuidora sur\n"
	resp, err := svc.ImportarProductos(context.Background(), strings.NewReader(csv))
	require.NoError(t, err)
	require.Equal(t, 1, resp.Importados)

	// Resolución por nombre sin distinguir mayúsculas: no se duplica
	proveedores, _ := proveedorRepo.List(context.Background())
	assert.Len(t, proveedores, 1)
	for _, p := range productoRepo.productos {
		assert.Equal(t, existente.ID, p.ProveedorID)
	}
}

func TestImportarProductos_CodigoYaEnCatalogo(t *testing.T) {
	productoRepo := newStubProductoRepo()
	proveedorRepo := newStubProveedorRepo()
	seedProveedor(proveedorRepo, "Abarrotes del Norte")
	svc := service.NewImportacionService(productoRepo, proveedorRepo)

	primero := "codigo,nombre,precio_venta,proveedor\nB-001,Lenteja 500g,30,Abarrotes del Norte\n"
	resp, err := svc.ImportarProductos(context.Background(), strings.NewReader(primero))
	require.NoError(t, err)
	require.Equal(t, 1, resp.Importados)

	// Mismo código en un segundo archivo: el índice único lo rechaza
	resp, err = svc.ImportarProductos(context.Background(), strings.NewReader(primero))
	require.NoError(t, err)
	assert.Equal(t, 0, resp.Importados)
	require.Len(t, resp.Errores, 1)
	assert.Contains(t, resp.Errores[0], "ya existe en el catálogo")
}

func TestImportarProductos_CabeceraIncompleta(t *testing.T) {
	svc := service.NewImportacionService(newStubProductoRepo(), newStubProveedorRepo())

	_, err := svc.ImportarProductos(context.Background(), strings.NewReader("codigo,nombre,stock\n"))
	assert.ErrorContains(t, err, "precio_venta")
}

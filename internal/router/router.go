package router

import (
	"time"

	"github.com/apenap/sis.ret-alpha/internal/config"
	"github.com/apenap/sis.ret-alpha/internal/handler"
	"github.com/apenap/sis.ret-alpha/internal/middleware"
	"github.com/apenap/sis.ret-alpha/internal/repository"
	"github.com/apenap/sis.ret-alpha/internal/service"
	"github.com/apenap/sis.ret-alpha/internal/worker"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimiter(1000, time.Minute)) // 1000 req/min per IP

	// ── Repositories ─────────────────────────────────────────────────────────
	productoRepo := repository.NewProductoRepository(db)
	ventaRepo := repository.NewVentaRepository(db)
	devolucionRepo := repository.NewDevolucionRepository(db)
	documentoRepo := repository.NewDocumentoRepository(db)
	comprobanteRepo := repository.NewComprobanteRepository(db)
	proveedorRepo := repository.NewProveedorRepository(db)
	clienteRepo := repository.NewClienteRepository(db)
	movimientoStockRepo := repository.NewMovimientoStockRepository(db)
	configuracionRepo := repository.NewConfiguracionRepository(db)

	// ── Services ─────────────────────────────────────────────────────────────
	configuracionSvc := service.NewConfiguracionService(configuracionRepo)
	inventarioSvc := service.NewInventarioService(productoRepo, movimientoStockRepo)
	productoSvc := service.NewProductoService(productoRepo, proveedorRepo)
	proveedorSvc := service.NewProveedorService(proveedorRepo)
	clienteSvc := service.NewClienteService(clienteRepo)
	documentoSvc := service.NewDocumentoService(documentoRepo)
	importacionSvc := service.NewImportacionService(productoRepo, proveedorRepo)
	facturacionSvc := service.NewFacturacionService(ventaRepo, comprobanteRepo, configuracionSvc, cfg.StoragePath)

	// Worker dispatcher — injected into services that enqueue async jobs
	dispatcher := worker.NewDispatcher(rdb)

	ventaSvc := service.NewVentaService(ventaRepo, devolucionRepo, productoRepo, inventarioSvc, dispatcher)

	// ── Handlers ─────────────────────────────────────────────────────────────
	ventasH := handler.NewVentasHandler(ventaSvc)
	documentosH := handler.NewDocumentosHandler(documentoSvc)
	productosH := handler.NewProductosHandler(productoSvc, importacionSvc)
	inventarioH := handler.NewInventarioHandler(inventarioSvc, movimientoStockRepo)
	proveedoresH := handler.NewProveedoresHandler(proveedorSvc)
	clientesH := handler.NewClientesHandler(clienteSvc)
	facturacionH := handler.NewFacturacionHandler(facturacionSvc)
	ticketsH := handler.NewTicketsHandler(ventaRepo, configuracionSvc, cfg.StoragePath)
	configuracionH := handler.NewConfiguracionHandler(configuracionSvc)

	// ── Routes ───────────────────────────────────────────────────────────────

	r.GET("/health", handler.Health(db, rdb))

	v1 := r.Group("/v1")
	{
		ventas := v1.Group("/ventas")
		{
			ventas.POST("", ventasH.ProcesarVenta)
			ventas.GET("", ventasH.ListarVentas)
			ventas.GET("/resumen", ventasH.Resumen)
			ventas.DELETE("/:id", ventasH.AnularVenta)
			ventas.POST("/:id/devolucion", ventasH.RegistrarDevolucion)
			ventas.POST("/:id/facturar", facturacionH.Emitir)
			ventas.GET("/:id/comprobante/xml", facturacionH.DescargarXML)
			ventas.GET("/:id/ticket", ticketsH.Descargar)
		}

		docs := v1.Group("/documentos")
		{
			docs.POST("", documentosH.Crear)
			docs.GET("", documentosH.Listar)
			docs.GET("/:id", documentosH.Obtener)
			docs.POST("/:id/convertir", documentosH.Convertir)
			docs.PUT("/:id/detalles", documentosH.ReemplazarDetalles)
			docs.POST("/:id/:accion", documentosH.Transicionar)
		}

		prods := v1.Group("/productos")
		{
			prods.POST("", productosH.Crear)
			prods.GET("", productosH.Listar)
			prods.GET("/buscar", productosH.Buscar)
			prods.GET("/:id", productosH.ObtenerPorID)
			prods.PUT("/:id", productosH.Actualizar)
			prods.DELETE("/:id", productosH.Desactivar)
			prods.POST("/importar", productosH.ImportarCSV)
			prods.GET("/importar/plantilla", productosH.PlantillaCSV)
		}

		inv := v1.Group("/inventario")
		{
			inv.GET("/alertas", inventarioH.ObtenerAlertas)
			inv.GET("/movimientos", inventarioH.ListarMovimientos)
		}

		prov := v1.Group("/proveedores")
		{
			prov.POST("", proveedoresH.Crear)
			prov.GET("", proveedoresH.Listar)
			prov.GET("/:id", proveedoresH.ObtenerPorID)
			prov.PUT("/:id", proveedoresH.Actualizar)
			prov.DELETE("/:id", proveedoresH.Eliminar)
		}

		clientes := v1.Group("/clientes")
		{
			clientes.POST("", clientesH.Crear)
			clientes.GET("", clientesH.Listar)
			clientes.GET("/:id", clientesH.ObtenerPorID)
			clientes.PUT("/:id", clientesH.Actualizar)
		}

		conf := v1.Group("/configuracion")
		{
			conf.GET("/:categoria", configuracionH.ObtenerCategoria)
			conf.PUT("/:categoria", configuracionH.Guardar)
		}
	}

	return r
}

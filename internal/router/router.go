package router

import (
	"time"

	"novapos/internal/handler"
	"novapos/internal/infra"
	"novapos/internal/middleware"
	"novapos/internal/moneda"
	"novapos/internal/repository"
	"novapos/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Deps is everything the HTTP layer needs; cmd/server builds it.
type Deps struct {
	Env      string
	Store    repository.KVRepository
	Outbox   repository.OutboxRepository
	Remoto   service.RemoteGateway
	CB       *infra.CircuitBreaker
	Ledger   service.LedgerService
	Tasas    *moneda.Registro
	Location *time.Location
	Limiter  *middleware.RateLimiter
	// Gatherer backs /metrics; nil uses the default registry.
	Gatherer prometheus.Gatherer
}

// New wires services and handlers and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Ledger ← KV store
func New(d Deps) *gin.Engine {
	if d.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorHandler())
	if d.Limiter != nil {
		r.Use(d.Limiter.Middleware())
	}

	// ── Services ─────────────────────────────────────────────────────────────
	inventarioSvc := service.NewInventarioService(d.Ledger, nil)
	importacionSvc := service.NewImportacionService(d.Ledger)
	ventaSvc := service.NewVentaService(d.Ledger, d.Tasas, d.Location, nil)
	compraSvc := service.NewCompraService(d.Ledger, d.Tasas, d.Location, nil)
	cajaSvc := service.NewCajaService(d.Ledger, d.Tasas, d.Location, nil)

	// ── Handlers ─────────────────────────────────────────────────────────────
	productosH := handler.NewProductosHandler(d.Ledger, inventarioSvc, importacionSvc)
	inventarioH := handler.NewInventarioHandler(inventarioSvc)
	contactosH := handler.NewContactosHandler(d.Ledger)
	ventasH := handler.NewVentasHandler(ventaSvc)
	comprasH := handler.NewComprasHandler(compraSvc)
	cajaH := handler.NewCajaHandler(cajaSvc, d.Ledger)
	syncH := handler.NewSyncHandler(d.Ledger, d.Outbox, d.Remoto, d.CB)
	tasasH := handler.NewTasasHandler(d.Tasas)

	// ── Routes ───────────────────────────────────────────────────────────────
	r.GET("/health", handler.Health(d.Store, d.Remoto, d.CB))

	gatherer := d.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	v1 := r.Group("/v1")
	{
		v1.POST("/sync", syncH.Sincronizar)
		v1.GET("/sync/estado", syncH.Estado)
		v1.GET("/auditoria", syncH.Auditoria)

		prods := v1.Group("/productos")
		{
			prods.GET("", productosH.Listar)
			prods.PUT("", productosH.Guardar)
			prods.GET("/alertas", inventarioH.ObtenerAlertas)
			prods.GET("/plantilla", productosH.Plantilla)
			prods.POST("/importar", productosH.Importar)
			prods.GET("/:id/kardex", inventarioH.Kardex)
		}

		v1.GET("/clientes", contactosH.ListarClientes)
		v1.POST("/clientes", contactosH.CrearCliente)

		v1.GET("/proveedores", contactosH.ListarProveedores)
		v1.PUT("/proveedores", contactosH.GuardarProveedor)
		v1.DELETE("/proveedores/:id", contactosH.EliminarProveedor)

		v1.GET("/ventas", ventasH.ListarVentas)
		v1.POST("/ventas", ventasH.RegistrarVenta)

		v1.GET("/compras", comprasH.ListarCompras)
		v1.POST("/compras", comprasH.RegistrarCompra)
		v1.GET("/compras/reporte", comprasH.Reporte)

		v1.POST("/movimientos", cajaH.RegistrarMovimiento)
		caja := v1.Group("/caja")
		{
			caja.GET("/cierre", cajaH.Cierre)
			caja.GET("/movimientos", cajaH.Movimientos)
		}
		v1.GET("/reportes/diario", cajaH.ResumenDiario)

		v1.GET("/tasas", tasasH.Obtener)
		v1.PUT("/tasas", tasasH.Actualizar)
	}

	return r
}

// Command seed loads the demo catalogue into an empty local store.
// Usage: go run ./cmd/seed [--force]
package main

import (
	"context"
	"os"
	"time"

	"novapos/internal/config"
	"novapos/internal/infra"
	"novapos/internal/model"
	"novapos/internal/repository"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	flag "github.com/spf13/pflag"
)

func main() {
	force := flag.Bool("force", false, "overwrite a store that already has products")
	flag.Parse()
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	var store repository.KVRepository
	switch cfg.StoreDriver {
	case "redis":
		rdb, err := infra.NewRedis(cfg.RedisURL)
		if err != nil {
			log.Fatal().Err(err).Msg("redis connect error")
		}
		defer rdb.Close()
		store = repository.NewRedisKVRepository(rdb)
	case "sqlite":
		db, err := infra.NewDatabase(cfg.SQLitePath)
		if err != nil {
			log.Fatal().Err(err).Msg("sqlite open error")
		}
		store = repository.NewGormKVRepository(db)
	default:
		log.Fatal().Str("driver", cfg.StoreDriver).Msg("seed needs a persistent store")
	}

	ctx := context.Background()
	var existentes []model.Producto
	if _, err := repository.CargarJSON(ctx, store, repository.ClaveProductos, &existentes); err != nil {
		log.Fatal().Err(err).Msg("could not read products")
	}
	if len(existentes) > 0 && !*force {
		log.Info().Int("productos", len(existentes)).Msg("store already seeded, use --force to overwrite")
		return
	}

	lote := repository.Lote{}
	for clave, v := range datosDemo(time.Now()) {
		if err := lote.JSON(clave, v); err != nil {
			log.Fatal().Err(err).Str("clave", clave).Msg("encode error")
		}
	}
	if err := store.GuardarLote(ctx, lote); err != nil {
		log.Fatal().Err(err).Msg("write error")
	}
	log.Info().Int("claves", len(lote)).Msg("demo data written")
}

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// datosDemo is the demo shop: six products, three clients, three suppliers,
// a few sales and purchases spread over today and yesterday.
func datosDemo(hoy time.Time) map[string]any {
	ayer := hoy.AddDate(0, 0, -1)

	productos := []model.Producto{
		{ID: "P001", Nombre: "Harina de Maíz 1kg", Categoria: "Alimentos", PrecioCompra: d("0.8"), PrecioVenta: d("1.2"), Stock: 150, StockMinimo: 20, Activo: true},
		{ID: "P002", Nombre: "Arroz Premium 1kg", Categoria: "Alimentos", PrecioCompra: d("0.9"), PrecioVenta: d("1.3"), Stock: 80, StockMinimo: 15, Activo: true},
		{ID: "P003", Nombre: "Aceite Vegetal 1L", Categoria: "Alimentos", PrecioCompra: d("2.5"), PrecioVenta: d("3.5"), Stock: 45, StockMinimo: 10, Activo: true},
		{ID: "P004", Nombre: "Refresco Cola 2L", Categoria: "Bebidas", PrecioCompra: d("1.8"), PrecioVenta: d("2.5"), Stock: 60, StockMinimo: 12, Activo: true},
		{ID: "P005", Nombre: "Jabón en Polvo 500g", Categoria: "Limpieza", PrecioCompra: d("1.5"), PrecioVenta: d("2.2"), Stock: 30, StockMinimo: 5, Activo: true},
		{ID: "P006", Nombre: "Atún en Lata 140g", Categoria: "Alimentos", PrecioCompra: d("1.2"), PrecioVenta: d("1.8"), Stock: 12, StockMinimo: 20, Activo: true},
	}
	clientes := []model.Cliente{
		{ID: "C001", Nombre: "Cliente General", Telefono: "0000000", Tipo: model.ClienteCasual},
		{ID: "C002", Nombre: "Juan Pérez", Telefono: "0414-1234567", Tipo: model.ClienteFrecuente},
		{ID: "C003", Nombre: "Maria Rodríguez", Telefono: "0412-9876543", Tipo: model.ClienteVIP},
	}
	proveedores := []model.Proveedor{
		{ID: "S001", Nombre: "Distribuidora Polar", Telefono: "0212-5555555", CondicionPago: model.PagoContado},
		{ID: "S002", Nombre: "Alimentos Mary", Telefono: "0212-4444444", CondicionPago: model.PagoCredito},
		{ID: "S003", Nombre: "Inversiones Global", Telefono: "0414-9999999", CondicionPago: model.PagoContado},
	}
	ventas := []model.Venta{
		{ID: "V001", Fecha: ayer, ClienteID: "C002", Tipo: model.VentaContado, Total: d("15.5"), MonedaBase: "USD", Estado: model.VentaPagada, Seq: 1},
		{ID: "V002", Fecha: hoy, ClienteID: "C001", Tipo: model.VentaContado, Total: d("12"), MonedaBase: "USD", Estado: model.VentaPagada, Seq: 2},
		{ID: "V003", Fecha: hoy, ClienteID: "C003", Tipo: model.VentaContado, Total: d("45"), MonedaBase: "USD", Estado: model.VentaPagada, Seq: 3},
	}
	detalles := []model.VentaDetalle{
		{VentaID: "V001", ProductoID: "P001", Cantidad: 5, PrecioUnitario: d("1.2"), Subtotal: d("6"), Seq: 4},
		{VentaID: "V001", ProductoID: "P003", Cantidad: 2, PrecioUnitario: d("3.5"), Subtotal: d("7"), Seq: 5},
		{VentaID: "V002", ProductoID: "P002", Cantidad: 4, PrecioUnitario: d("1.3"), Subtotal: d("5.2"), Seq: 6},
		{VentaID: "V002", ProductoID: "P004", Cantidad: 2, PrecioUnitario: d("2.5"), Subtotal: d("5"), Seq: 7},
		{VentaID: "V003", ProductoID: "P003", Cantidad: 10, PrecioUnitario: d("3.5"), Subtotal: d("35"), Seq: 8},
	}
	compras := []model.Compra{
		{ID: "C001", Fecha: ayer, ProveedorID: "S002", Total: d("120"), Moneda: "USD", Referencia: "Restock Arroz", Estado: model.EstadoCompraCompletada, Seq: 9},
		{ID: "C002", Fecha: hoy, ProveedorID: "S001", Total: d("500"), Moneda: "BS", Referencia: "Pago Transporte", Estado: model.EstadoCompraCompletada, Seq: 10},
	}
	compraDetalles := []model.CompraDetalle{
		{CompraID: "C001", ProductoID: "P002", Cantidad: 100, CostoUnitario: d("1.2"), Subtotal: d("120"), Seq: 11},
		{CompraID: "C002", ProductoID: "P001", Cantidad: 10, CostoUnitario: d("50"), Subtotal: d("500"), Seq: 12},
	}
	movimientos := []model.MovimientoCaja{
		{ID: "M001", Fecha: ayer, Tipo: model.MovimientoIngreso, Origen: model.OrigenVenta, Metodo: model.MetodoEfectivoUSD, Monto: d("15.5"), Moneda: "USD", Seq: 13},
		{ID: "M002", Fecha: hoy, Tipo: model.MovimientoIngreso, Origen: model.OrigenVenta, Metodo: model.MetodoEfectivoUSD, Monto: d("5"), Moneda: "USD", Seq: 14},
		{ID: "M003", Fecha: hoy, Tipo: model.MovimientoIngreso, Origen: model.OrigenVenta, Metodo: model.MetodoEfectivoBs, Monto: d("318.5"), Moneda: "BS", Seq: 15},
		{ID: "M004", Fecha: hoy, Tipo: model.MovimientoIngreso, Origen: model.OrigenVenta, Metodo: model.MetodoZelle, Monto: d("45"), Moneda: "USD", Referencia: "ZL-998877", Seq: 16},
		{ID: "M005", Fecha: hoy, Tipo: model.MovimientoEgreso, Origen: model.OrigenCompra, Metodo: model.MetodoEfectivoBs, Monto: d("500"), Moneda: "BS", Referencia: "Pago Transporte", ProveedorID: "S001", Seq: 17},
		{ID: "M006", Fecha: ayer, Tipo: model.MovimientoEgreso, Origen: model.OrigenCompra, Metodo: model.MetodoZelle, Monto: d("120"), Moneda: "USD", Referencia: "Restock Arroz", ProveedorID: "S002", Seq: 18},
	}

	return map[string]any{
		repository.ClaveProductos:      productos,
		repository.ClaveClientes:       clientes,
		repository.ClaveProveedores:    proveedores,
		repository.ClaveVentas:         ventas,
		repository.ClaveVentaDetalles:  detalles,
		repository.ClaveCompras:        compras,
		repository.ClaveCompraDetalles: compraDetalles,
		repository.ClaveMovimientos:    movimientos,
		repository.ClaveSecuencia:      int64(18),
	}
}

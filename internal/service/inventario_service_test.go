package service_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"novapos/internal/dto"
	"novapos/internal/model"
	"novapos/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubLectura is a fixed ledger view.
type stubLectura struct {
	productos      []model.Producto
	ventas         []model.Venta
	ventaDetalles  []model.VentaDetalle
	compras        []model.Compra
	compraDetalles []model.CompraDetalle
	movimientos    []model.MovimientoCaja
}

func (s *stubLectura) Productos() []model.Producto { return s.productos }
func (s *stubLectura) Producto(id string) (model.Producto, bool) {
	for _, p := range s.productos {
		if p.ID == id {
			return p, true
		}
	}
	return model.Producto{}, false
}
func (s *stubLectura) Clientes() []model.Cliente                { return nil }
func (s *stubLectura) Proveedores() []model.Proveedor           { return nil }
func (s *stubLectura) Proveedor(string) (model.Proveedor, bool) { return model.Proveedor{}, false }
func (s *stubLectura) Ventas() []model.Venta                    { return s.ventas }
func (s *stubLectura) VentaDetalles() []model.VentaDetalle      { return s.ventaDetalles }
func (s *stubLectura) Compras() []model.Compra                  { return s.compras }
func (s *stubLectura) CompraDetalles() []model.CompraDetalle    { return s.compraDetalles }
func (s *stubLectura) Movimientos() []model.MovimientoCaja      { return s.movimientos }
func (s *stubLectura) Vista() service.Vista {
	return service.Vista{
		Productos:      s.productos,
		Ventas:         s.ventas,
		VentaDetalles:  s.ventaDetalles,
		Compras:        s.compras,
		CompraDetalles: s.compraDetalles,
		Movimientos:    s.movimientos,
	}
}

func TestReconstruirKardex_OrdenYSaldos(t *testing.T) {
	p := productoP006()
	p.Stock = 30
	ventas := []model.Venta{
		{ID: "V1", Fecha: t0.Add(1 * time.Hour)},
		{ID: "V2", Fecha: t0.Add(3 * time.Hour)},
	}
	vd := []model.VentaDetalle{
		{VentaID: "V1", ProductoID: "P006", Cantidad: 4, PrecioUnitario: dec("1.80"), Seq: 2},
		{VentaID: "V2", ProductoID: "P006", Cantidad: 6, PrecioUnitario: dec("1.80"), Seq: 5},
		{VentaID: "V2", ProductoID: "OTRO", Cantidad: 9, Seq: 6},
	}
	compras := []model.Compra{{ID: "C1", Fecha: t0.Add(2 * time.Hour)}}
	cd := []model.CompraDetalle{{CompraID: "C1", ProductoID: "P006", Cantidad: 20, CostoUnitario: dec("1.00"), Seq: 4}}

	k := service.ReconstruirKardex(p, ventas, vd, compras, cd, t0)

	require.Len(t, k.Entradas, 3)
	assert.Equal(t, "V2", k.Entradas[0].DocumentoID)
	assert.Equal(t, model.KardexSalida, k.Entradas[0].Tipo)
	assert.Equal(t, 30, k.Entradas[0].Saldo)
	assert.Equal(t, "C1", k.Entradas[1].DocumentoID)
	assert.Equal(t, model.KardexEntrada, k.Entradas[1].Tipo)
	assert.Equal(t, 36, k.Entradas[1].Saldo)
	assert.Equal(t, "V1", k.Entradas[2].DocumentoID)
	assert.Equal(t, 16, k.Entradas[2].Saldo)
	assert.Equal(t, 20, k.SaldoInicial)
	assert.Equal(t, 30, k.StockActual)
	assert.Empty(t, k.Huerfanos)
}

func TestReconstruirKardex_EmpateDeFechaPorSecuencia(t *testing.T) {
	p := productoP006()
	ventas := []model.Venta{{ID: "V1", Fecha: t0}}
	compras := []model.Compra{{ID: "C1", Fecha: t0}}
	vd := []model.VentaDetalle{{VentaID: "V1", ProductoID: "P006", Cantidad: 1, Seq: 9}}
	cd := []model.CompraDetalle{{CompraID: "C1", ProductoID: "P006", Cantidad: 5, Seq: 3}}

	k := service.ReconstruirKardex(p, ventas, vd, compras, cd, t0)

	require.Len(t, k.Entradas, 2)
	assert.Equal(t, "V1", k.Entradas[0].DocumentoID)
	assert.Equal(t, "C1", k.Entradas[1].DocumentoID)
}

func TestReconstruirKardex_CabeceraFaltante(t *testing.T) {
	p := productoP006()
	ahora := t0.Add(24 * time.Hour)
	vd := []model.VentaDetalle{
		{VentaID: "V-PERDIDA", ProductoID: "P006", Cantidad: 2},
		{VentaID: "V-PERDIDA", ProductoID: "P006", Cantidad: 1},
	}

	k := service.ReconstruirKardex(p, nil, vd, nil, nil, ahora)

	require.Len(t, k.Entradas, 2)
	assert.Equal(t, ahora, k.Entradas[0].Fecha)
	assert.Equal(t, []string{"V-PERDIDA"}, k.Huerfanos)
	assert.Equal(t, 15, k.SaldoInicial)
}

func TestReconstruirKardex_ReproduccionHaciaAdelante(t *testing.T) {
	p := productoP006()
	p.Stock = 41
	ventas := []model.Venta{
		{ID: "V1", Fecha: t0.Add(1 * time.Hour)},
		{ID: "V2", Fecha: t0.Add(5 * time.Hour)},
		{ID: "V3", Fecha: t0.Add(5 * time.Hour)},
	}
	vd := []model.VentaDetalle{
		{VentaID: "V1", ProductoID: "P006", Cantidad: 3, Seq: 2},
		{VentaID: "V2", ProductoID: "P006", Cantidad: 7, Seq: 8},
		{VentaID: "V3", ProductoID: "P006", Cantidad: 1, Seq: 9},
		{VentaID: "V-SIN-CABECERA", ProductoID: "P006", Cantidad: 2, Seq: 11},
	}
	compras := []model.Compra{
		{ID: "C1", Fecha: t0},
		{ID: "C2", Fecha: t0.Add(3 * time.Hour)},
	}
	cd := []model.CompraDetalle{
		{CompraID: "C1", ProductoID: "P006", Cantidad: 10, Seq: 1},
		{CompraID: "C2", ProductoID: "P006", Cantidad: 25, Seq: 5},
	}

	k := service.ReconstruirKardex(p, ventas, vd, compras, cd, t0.Add(24*time.Hour))
	require.Len(t, k.Entradas, 6)

	saldo := k.SaldoInicial
	for i := len(k.Entradas) - 1; i >= 0; i-- {
		e := k.Entradas[i]
		if e.Tipo == model.KardexEntrada {
			saldo += e.Cantidad
		} else {
			saldo -= e.Cantidad
		}
		assert.Equal(t, e.Saldo, saldo, "balance after %s", e.DocumentoID)
	}
	assert.Equal(t, k.StockActual, saldo)
	assert.Equal(t, 41-35+13, k.SaldoInicial)
}

func TestKardex_LecturaConsistenteConVentasConcurrentes(t *testing.T) {
	const (
		inicial     = 100000
		escritores  = 4
		porEscritor = 50
	)
	ctx := context.Background()
	e := nuevoEntorno(t, nil)
	p := productoP006()
	p.Stock = inicial
	sembrar(t, e.ledger, p)
	inv := service.NewInventarioService(e.ledger, relojFijo)

	var wg sync.WaitGroup
	for w := 0; w < escritores; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < porEscritor; i++ {
				id := fmt.Sprintf("V%d-%d", w, i)
				v, d, m := ventaSimple(id, "P006", 1, dec("1.80"), t0.Add(time.Duration(i)*time.Second))
				if err := e.ledger.RegistrarVenta(ctx, v, d, m); err != nil {
					t.Errorf("venta %s: %v", id, err)
					return
				}
			}
		}(w)
	}
	listo := make(chan struct{})
	go func() { wg.Wait(); close(listo) }()

	lecturas, inconsistentes := 0, 0
	for leyendo := true; leyendo; {
		select {
		case <-listo:
			leyendo = false
		default:
		}
		k, err := inv.Kardex("P006")
		require.NoError(t, err)
		lecturas++
		if k.SaldoInicial != inicial || k.StockActual != inicial-len(k.Entradas) {
			inconsistentes++
		}
	}

	assert.Positive(t, lecturas)
	assert.Zero(t, inconsistentes)
	assert.Equal(t, inicial-escritores*porEscritor, buscarProducto(t, e.ledger, "P006").Stock)
}

func TestKardex_ProductoDesconocido(t *testing.T) {
	svc := service.NewInventarioService(&stubLectura{}, relojFijo)
	_, err := svc.Kardex("NOPE")
	assert.ErrorIs(t, err, service.ErrProductoNoEncontrado)
}

func TestAlertasStockYListado(t *testing.T) {
	bajo := productoP006()
	bajo.Stock = 10
	sano := productoP006()
	sano.ID, sano.Nombre, sano.Categoria, sano.Stock = "P010", "Aceite Vatel", "Aceites", 40
	inactivo := productoP006()
	inactivo.ID, inactivo.Stock, inactivo.Activo = "P011", 0, false

	svc := service.NewInventarioService(&stubLectura{productos: []model.Producto{bajo, sano, inactivo}}, relojFijo)

	alertas := svc.AlertasStock()
	require.Len(t, alertas, 1)
	assert.Equal(t, "P006", alertas[0].ID)

	assert.Len(t, svc.Listar(dto.ProductoFilter{Activo: "all"}), 3)
	assert.Len(t, svc.Listar(dto.ProductoFilter{Activo: "true"}), 2)
	assert.Len(t, svc.Listar(dto.ProductoFilter{Activo: "false"}), 1)
	assert.Len(t, svc.Listar(dto.ProductoFilter{Q: "vatel"}), 1)
	assert.Len(t, svc.Listar(dto.ProductoFilter{Categoria: "aceites"}), 1)
	assert.Len(t, svc.Listar(dto.ProductoFilter{StockBajo: true}), 2)
}

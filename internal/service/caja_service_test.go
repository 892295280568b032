package service_test

import (
	"testing"
	"time"

	"novapos/internal/dto"
	"novapos/internal/model"
	"novapos/internal/moneda"
	"novapos/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mov(id string, fecha time.Time, tipo model.TipoMovimiento, metodo model.MetodoPago, monto, cod string) model.MovimientoCaja {
	origen := model.OrigenVenta
	if tipo == model.MovimientoEgreso {
		origen = model.OrigenCompra
	}
	return model.MovimientoCaja{
		ID: id, Fecha: fecha, Tipo: tipo, Origen: origen, Metodo: metodo,
		Monto: dec(monto), Moneda: cod, Referencia: "ref " + id,
	}
}

func movimientosDelDia() []model.MovimientoCaja {
	return []model.MovimientoCaja{
		mov("M1", t0, model.MovimientoIngreso, model.MetodoEfectivoUSD, "10", "USD"),
		mov("M2", t0.Add(time.Minute), model.MovimientoIngreso, model.MetodoPagoMovil, "455", "BS"),
		mov("M3", t0.Add(2*time.Minute), model.MovimientoIngreso, model.MetodoEfectivoEUR, "10", "EUR"),
		mov("M4", t0.Add(3*time.Minute), model.MovimientoEgreso, model.MetodoEfectivoUSD, "5", "USD"),
	}
}

func TestConciliar(t *testing.T) {
	tasas := moneda.NuevasTasas(dec("45.50"), dec("48.20"))

	c := service.Conciliar(movimientosDelDia(), tasas)

	// 10 USD + 455/45.50 + 10·48.20/45.50
	assert.Equal(t, "30.59", c.TotalIngresos.StringFixed(2))
	assert.Equal(t, "5.00", c.TotalEgresos.StringFixed(2))
	assert.Equal(t, "25.59", c.Neto.StringFixed(2))
	assert.Equal(t, "USD", c.MonedaReferencia)
	assert.True(t, c.Aproximada)

	require.Len(t, c.Lineas, 3)
	for _, l := range c.Lineas {
		if l.Metodo == model.MetodoEfectivoUSD {
			assert.Equal(t, "5.00", l.Saldo.StringFixed(2))
		}
		if l.Metodo == model.MetodoPagoMovil {
			assert.Equal(t, "455.00", l.Ingresos.StringFixed(2), "lines stay in native currency")
		}
	}
}

func TestConciliar_SinMonedaCruzada(t *testing.T) {
	tasas := moneda.NuevasTasas(dec("45.50"), dec("48.20"))
	c := service.Conciliar(movimientosDelDia()[:2], tasas)
	assert.False(t, c.Aproximada)
	assert.Equal(t, "20.00", c.Neto.StringFixed(2))
}

func TestMismoDia_UsaZonaLocal(t *testing.T) {
	caracas := time.FixedZone("VET", -4*3600)
	madrugadaUTC := time.Date(2026, 3, 1, 2, 0, 0, 0, time.UTC)

	assert.True(t, service.MismoDia(madrugadaUTC, "2026-02-28", caracas))
	assert.False(t, service.MismoDia(madrugadaUTC, "2026-03-01", caracas))
	assert.True(t, service.EnRango(madrugadaUTC, "2026-02-28", "2026-02-28", caracas))
	assert.True(t, service.EnRango(madrugadaUTC, "", "", caracas))
	assert.False(t, service.EnRango(madrugadaUTC, "2026-03-01", "", caracas))
}

func TestCierreCaja(t *testing.T) {
	movs := append(movimientosDelDia(), mov("M9", t0.Add(-48*time.Hour), model.MovimientoIngreso, model.MetodoZelle, "99", "USD"))
	svc := service.NewCajaService(&stubLectura{movimientos: movs}, tasasPrueba(), time.UTC, relojFijo)

	cierre := svc.Cierre("2026-03-10")

	require.Len(t, cierre.Movimientos, 4)
	assert.Equal(t, "M4", cierre.Movimientos[0].ID, "newest first")
	assert.Equal(t, "25.59", cierre.Conciliacion.Neto.StringFixed(2))
}

func TestReporteMovimientos_Filtros(t *testing.T) {
	svc := service.NewCajaService(&stubLectura{movimientos: movimientosDelDia()}, tasasPrueba(), time.UTC, relojFijo)

	todos := svc.ReporteMovimientos(dto.FiltroMovimientos{})
	assert.Len(t, todos.Movimientos, 4)
	require.Len(t, todos.PorMoneda, 3)
	assert.Equal(t, "BS", todos.PorMoneda[0].Moneda)
	assert.Equal(t, "USD", todos.PorMoneda[2].Moneda)
	assert.Equal(t, "5.00", todos.PorMoneda[2].Saldo.StringFixed(2))

	assert.Len(t, svc.ReporteMovimientos(dto.FiltroMovimientos{Tipo: "Egreso"}).Movimientos, 1)
	assert.Len(t, svc.ReporteMovimientos(dto.FiltroMovimientos{Metodo: "Pago Móvil"}).Movimientos, 1)
	assert.Len(t, svc.ReporteMovimientos(dto.FiltroMovimientos{Texto: "compra"}).Movimientos, 1)
	assert.Len(t, svc.ReporteMovimientos(dto.FiltroMovimientos{Texto: "REF M3"}).Movimientos, 1)
	assert.Empty(t, svc.ReporteMovimientos(dto.FiltroMovimientos{Desde: "2026-03-11"}).Movimientos)
}

func TestResumenDiario(t *testing.T) {
	ventas := []model.Venta{
		{ID: "V1", Fecha: t0, Total: dec("10"), MonedaBase: "USD"},
		{ID: "V2", Fecha: t0.Add(time.Hour), Total: dec("20"), MonedaBase: "USD"},
		{ID: "V0", Fecha: t0.Add(-72 * time.Hour), Total: dec("7"), MonedaBase: "USD"},
	}
	svc := service.NewCajaService(&stubLectura{ventas: ventas, movimientos: movimientosDelDia()}, tasasPrueba(), time.UTC, relojFijo)

	r := svc.ResumenDiario("2026-03-10")

	assert.Equal(t, 2, r.CantidadVentas)
	assert.Equal(t, "30.00", r.TotalVentas.StringFixed(2))
	assert.Equal(t, "1365.00", r.TotalVentasBs.StringFixed(2))
	assert.Equal(t, "25.59", r.Neto.StringFixed(2))
	assert.True(t, r.Aproximada)

	require.Len(t, r.PorMetodo, 3)
	assert.Equal(t, model.MetodoEfectivoEUR, r.PorMetodo[0].Metodo, "largest share first")
	var suma = dec("0")
	for _, m := range r.PorMetodo {
		suma = suma.Add(m.Porcentaje)
	}
	assert.InDelta(t, 100.0, suma.InexactFloat64(), 0.02)

	require.Len(t, r.Tendencia, 7)
	assert.Equal(t, "2026-03-04", r.Tendencia[0].Fecha)
	assert.Equal(t, "2026-03-10", r.Tendencia[6].Fecha)
	assert.Equal(t, "30.00", r.Tendencia[6].Total.StringFixed(2))
	assert.Equal(t, "7.00", r.Tendencia[3].Total.StringFixed(2))
}

func TestConciliar_LineasSumanElNeto(t *testing.T) {
	tasas := moneda.NuevasTasas(dec("45.50"), dec("48.20"))
	movs := []model.MovimientoCaja{
		mov("A1", t0, model.MovimientoIngreso, model.MetodoEfectivoBs, "1234.56", "BS"),
		mov("A2", t0, model.MovimientoIngreso, model.MetodoPagoMovil, "777.77", "BS"),
		mov("A3", t0, model.MovimientoEgreso, model.MetodoPagoMovil, "100.10", "BS"),
		mov("A4", t0, model.MovimientoIngreso, model.MetodoZelle, "33.33", "USD"),
		mov("A5", t0, model.MovimientoEgreso, model.MetodoEfectivoUSD, "12.01", "USD"),
		mov("A6", t0, model.MovimientoIngreso, model.MetodoEfectivoEUR, "19.99", "EUR"),
		mov("A7", t0, model.MovimientoEgreso, model.MetodoEfectivoEUR, "4.44", "EUR"),
		mov("A8", t0, model.MovimientoIngreso, model.MetodoCashea, "0.01", "USD"),
	}

	c := service.Conciliar(movs, tasas)

	ingresos, egresos := dec("0"), dec("0")
	for _, l := range c.Lineas {
		ingresos = ingresos.Add(tasas.AReferencia(l.Ingresos, l.Moneda))
		egresos = egresos.Add(tasas.AReferencia(l.Egresos, l.Moneda))
	}
	tolerancia := dec("0.000001")
	assert.True(t, ingresos.Sub(c.TotalIngresos).Abs().LessThan(tolerancia), "ingresos %s vs %s", ingresos, c.TotalIngresos)
	assert.True(t, egresos.Sub(c.TotalEgresos).Abs().LessThan(tolerancia), "egresos %s vs %s", egresos, c.TotalEgresos)
	assert.True(t, ingresos.Sub(egresos).Sub(c.Neto).Abs().LessThan(tolerancia))
	assert.True(t, c.Neto.Equal(c.TotalIngresos.Sub(c.TotalEgresos)))
}

func TestConciliar_AgrupaCodigoNormalizado(t *testing.T) {
	movs := []model.MovimientoCaja{
		mov("N1", t0, model.MovimientoIngreso, model.MetodoPagoMovil, "100", "BS"),
		mov("N2", t0, model.MovimientoIngreso, model.MetodoPagoMovil, "50", "bs"),
		mov("N3", t0, model.MovimientoEgreso, model.MetodoPagoMovil, "20", " Bs "),
	}

	c := service.Conciliar(movs, tasasPrueba().Actual())
	require.Len(t, c.Lineas, 1)
	assert.Equal(t, "BS", c.Lineas[0].Moneda)
	assert.Equal(t, "150.00", c.Lineas[0].Ingresos.StringFixed(2))
	assert.Equal(t, "130.00", c.Lineas[0].Saldo.StringFixed(2))

	svc := service.NewCajaService(&stubLectura{movimientos: movs}, tasasPrueba(), time.UTC, relojFijo)
	r := svc.ReporteMovimientos(dto.FiltroMovimientos{})
	require.Len(t, r.PorMoneda, 1)
	assert.Equal(t, r.Conciliacion.Lineas[0].Saldo.String(), r.PorMoneda[0].Saldo.String())
}

func TestCierreCaja_SinFechaUsaElDiaDelReloj(t *testing.T) {
	movs := append(movimientosDelDia(), mov("M9", t0.Add(-24*time.Hour), model.MovimientoIngreso, model.MetodoZelle, "99", "USD"))
	svc := service.NewCajaService(&stubLectura{movimientos: movs}, tasasPrueba(), time.UTC, relojFijo)

	cierre := svc.Cierre("")
	assert.Equal(t, "2026-03-10", cierre.Fecha)
	assert.Len(t, cierre.Movimientos, 4)

	resumen := svc.ResumenDiario("")
	assert.Equal(t, "2026-03-10", resumen.Fecha)
	require.Len(t, resumen.Tendencia, 7)
	assert.Equal(t, "2026-03-10", resumen.Tendencia[6].Fecha)
}

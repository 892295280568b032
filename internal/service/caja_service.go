package service

import (
	"sort"
	"strings"
	"time"

	"novapos/internal/dto"
	"novapos/internal/model"
	"novapos/internal/moneda"

	"github.com/shopspring/decimal"
)

const formatoFecha = "2006-01-02"

// diasTendencia is the length of the sales trend in the daily summary.
const diasTendencia = 7

type CajaService interface {
	Cierre(fecha string) *dto.CierreCajaResponse
	ReporteMovimientos(filtro dto.FiltroMovimientos) *dto.ReporteMovimientosResponse
	ResumenDiario(fecha string) *dto.ResumenDiarioResponse
}

type cajaService struct {
	ledger LedgerLectura
	tasas  *moneda.Registro
	loc    *time.Location
	ahora  func() time.Time
}

func NewCajaService(ledger LedgerLectura, tasas *moneda.Registro, loc *time.Location, reloj func() time.Time) CajaService {
	if loc == nil {
		loc = time.Local
	}
	if reloj == nil {
		reloj = time.Now
	}
	return &cajaService{ledger: ledger, tasas: tasas, loc: loc, ahora: reloj}
}

// ── Conciliación ──────────────────────────────────────────────────────────────

// Conciliar groups movements by (method, normalized currency) in native amounts and
// totals them in the reference currency of tasas. Line balances in
// different currencies are not comparable; only the totals are.
func Conciliar(movs []model.MovimientoCaja, tasas moneda.Tasas) model.Conciliacion {
	type clave struct {
		metodo model.MetodoPago
		moneda string
	}
	lineas := map[clave]*model.LineaCaja{}
	res := model.Conciliacion{
		Lineas:           []model.LineaCaja{},
		TotalIngresos:    decimal.Zero,
		TotalEgresos:     decimal.Zero,
		MonedaReferencia: tasas.Base,
	}

	for _, m := range movs {
		cod := moneda.Normalizar(m.Moneda)
		k := clave{m.Metodo, cod}
		l, ok := lineas[k]
		if !ok {
			l = &model.LineaCaja{Metodo: m.Metodo, Moneda: cod, Ingresos: decimal.Zero, Egresos: decimal.Zero}
			lineas[k] = l
		}
		ref := tasas.AReferencia(m.Monto, m.Moneda)
		if tasas.Aproximada(m.Moneda) {
			res.Aproximada = true
		}
		switch m.Tipo {
		case model.MovimientoIngreso:
			l.Ingresos = l.Ingresos.Add(m.Monto)
			res.TotalIngresos = res.TotalIngresos.Add(ref)
		case model.MovimientoEgreso:
			l.Egresos = l.Egresos.Add(m.Monto)
			res.TotalEgresos = res.TotalEgresos.Add(ref)
		}
	}

	for _, l := range lineas {
		l.Saldo = l.Ingresos.Sub(l.Egresos)
		res.Lineas = append(res.Lineas, *l)
	}
	sort.Slice(res.Lineas, func(i, j int) bool {
		if res.Lineas[i].Metodo != res.Lineas[j].Metodo {
			return res.Lineas[i].Metodo < res.Lineas[j].Metodo
		}
		return res.Lineas[i].Moneda < res.Lineas[j].Moneda
	})
	res.Neto = res.TotalIngresos.Sub(res.TotalEgresos)
	return res
}

// MismoDia reports whether t falls on the calendar date fecha (YYYY-MM-DD)
// in loc.
func MismoDia(t time.Time, fecha string, loc *time.Location) bool {
	return t.In(loc).Format(formatoFecha) == fecha
}

// EnRango applies the same calendar-date rule with inclusive bounds; an
// empty bound is open.
func EnRango(t time.Time, desde, hasta string, loc *time.Location) bool {
	dia := t.In(loc).Format(formatoFecha)
	if desde != "" && dia < desde {
		return false
	}
	if hasta != "" && dia > hasta {
		return false
	}
	return true
}

// ── Cierre ────────────────────────────────────────────────────────────────────

func (s *cajaService) Cierre(fecha string) *dto.CierreCajaResponse {
	fecha = s.fechaOHoy(fecha)
	movs := []model.MovimientoCaja{}
	for _, m := range s.ledger.Movimientos() {
		if MismoDia(m.Fecha, fecha, s.loc) {
			movs = append(movs, m)
		}
	}
	masRecientePrimero(movs)
	return &dto.CierreCajaResponse{
		Fecha:        fecha,
		Movimientos:  movs,
		Conciliacion: Conciliar(movs, s.tasas.Actual()),
	}
}

// ── ReporteMovimientos ────────────────────────────────────────────────────────

func (s *cajaService) ReporteMovimientos(filtro dto.FiltroMovimientos) *dto.ReporteMovimientosResponse {
	texto := strings.ToLower(strings.TrimSpace(filtro.Texto))
	movs := []model.MovimientoCaja{}
	for _, m := range s.ledger.Movimientos() {
		if !EnRango(m.Fecha, filtro.Desde, filtro.Hasta, s.loc) {
			continue
		}
		if filtro.Tipo != "" && string(m.Tipo) != filtro.Tipo {
			continue
		}
		if filtro.Metodo != "" && string(m.Metodo) != filtro.Metodo {
			continue
		}
		if texto != "" &&
			!strings.Contains(strings.ToLower(string(m.Origen)), texto) &&
			!strings.Contains(strings.ToLower(m.Referencia), texto) {
			continue
		}
		movs = append(movs, m)
	}
	masRecientePrimero(movs)

	return &dto.ReporteMovimientosResponse{
		Movimientos:  movs,
		PorMoneda:    resumenPorMoneda(movs),
		Conciliacion: Conciliar(movs, s.tasas.Actual()),
	}
}

func resumenPorMoneda(movs []model.MovimientoCaja) []dto.ResumenMoneda {
	idx := map[string]int{}
	out := []dto.ResumenMoneda{}
	for _, m := range movs {
		cod := moneda.Normalizar(m.Moneda)
		i, ok := idx[cod]
		if !ok {
			i = len(out)
			idx[cod] = i
			out = append(out, dto.ResumenMoneda{Moneda: cod, Ingresos: decimal.Zero, Egresos: decimal.Zero})
		}
		if m.Tipo == model.MovimientoIngreso {
			out[i].Ingresos = out[i].Ingresos.Add(m.Monto)
		} else if m.Tipo == model.MovimientoEgreso {
			out[i].Egresos = out[i].Egresos.Add(m.Monto)
		}
	}
	for i := range out {
		out[i].Saldo = out[i].Ingresos.Sub(out[i].Egresos)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Moneda < out[j].Moneda })
	return out
}

// ── ResumenDiario ─────────────────────────────────────────────────────────────

// ResumenDiario is the dashboard view of one day: sales revenue, normalized
// cash flow, income per payment method and the sales trend of the week
// ending on fecha.
func (s *cajaService) ResumenDiario(fecha string) *dto.ResumenDiarioResponse {
	fecha = s.fechaOHoy(fecha)
	tasas := s.tasas.Actual()
	vista := s.ledger.Vista()
	ventas := vista.Ventas

	resp := &dto.ResumenDiarioResponse{
		Fecha:       fecha,
		TotalVentas: decimal.Zero,
		PorMetodo:   []dto.IngresoMetodo{},
	}
	for _, v := range ventas {
		if MismoDia(v.Fecha, fecha, s.loc) {
			resp.TotalVentas = resp.TotalVentas.Add(tasas.AReferencia(v.Total, v.MonedaBase))
			resp.CantidadVentas++
		}
	}
	resp.TotalVentasBs = tasas.DesdeReferencia(resp.TotalVentas, moneda.BS)

	var delDia []model.MovimientoCaja
	for _, m := range vista.Movimientos {
		if MismoDia(m.Fecha, fecha, s.loc) {
			delDia = append(delDia, m)
		}
	}
	conc := Conciliar(delDia, tasas)
	resp.Ingresos, resp.Egresos, resp.Neto = conc.TotalIngresos, conc.TotalEgresos, conc.Neto
	resp.Aproximada = conc.Aproximada
	resp.PorMetodo = ingresosPorMetodo(delDia, tasas, conc.TotalIngresos)
	resp.Tendencia = s.tendencia(ventas, fecha, tasas)
	return resp
}

func ingresosPorMetodo(movs []model.MovimientoCaja, tasas moneda.Tasas, totalRef decimal.Decimal) []dto.IngresoMetodo {
	idx := map[model.MetodoPago]int{}
	out := []dto.IngresoMetodo{}
	for _, m := range movs {
		if m.Tipo != model.MovimientoIngreso {
			continue
		}
		i, ok := idx[m.Metodo]
		if !ok {
			i = len(out)
			idx[m.Metodo] = i
			out = append(out, dto.IngresoMetodo{
				Metodo:      m.Metodo,
				Moneda:      moneda.Normalizar(m.Moneda),
				TotalNativo: decimal.Zero,
				TotalRef:    decimal.Zero,
			})
		}
		out[i].TotalNativo = out[i].TotalNativo.Add(m.Monto)
		out[i].TotalRef = out[i].TotalRef.Add(tasas.AReferencia(m.Monto, m.Moneda))
		out[i].Cantidad++
	}
	cien := decimal.NewFromInt(100)
	for i := range out {
		out[i].Porcentaje = decimal.Zero
		if totalRef.IsPositive() {
			out[i].Porcentaje = out[i].TotalRef.Div(totalRef).Mul(cien).Round(2)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].TotalRef.GreaterThan(out[j].TotalRef) })
	return out
}

func (s *cajaService) tendencia(ventas []model.Venta, fecha string, tasas moneda.Tasas) []dto.PuntoTendencia {
	fin, err := time.ParseInLocation(formatoFecha, fecha, s.loc)
	if err != nil {
		return []dto.PuntoTendencia{}
	}
	puntos := make([]dto.PuntoTendencia, diasTendencia)
	pos := map[string]int{}
	for i := 0; i < diasTendencia; i++ {
		dia := fin.AddDate(0, 0, i-(diasTendencia-1)).Format(formatoFecha)
		puntos[i] = dto.PuntoTendencia{Fecha: dia, Total: decimal.Zero}
		pos[dia] = i
	}
	for _, v := range ventas {
		if i, ok := pos[v.Fecha.In(s.loc).Format(formatoFecha)]; ok {
			puntos[i].Total = puntos[i].Total.Add(tasas.AReferencia(v.Total, v.MonedaBase))
		}
	}
	return puntos
}

// ── Helpers ───────────────────────────────────────────────────────────────────

func (s *cajaService) fechaOHoy(fecha string) string {
	if fecha == "" {
		return s.ahora().In(s.loc).Format(formatoFecha)
	}
	return fecha
}

func masRecientePrimero(movs []model.MovimientoCaja) {
	sort.SliceStable(movs, func(i, j int) bool {
		if !movs[i].Fecha.Equal(movs[j].Fecha) {
			return movs[i].Fecha.After(movs[j].Fecha)
		}
		return movs[i].Seq > movs[j].Seq
	})
}

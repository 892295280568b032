// Package moneda normalizes amounts across the currencies the store
// accepts. Every report aggregates in the reference currency.
package moneda

import (
	"strings"
	"sync"

	"github.com/shopspring/decimal"
)

const (
	USD = "USD"
	BS  = "BS"
	EUR = "EUR"
)

// Cruce quotes a currency against a currency other than the reference.
// Tasa is how many units of Via one unit of the currency buys.
type Cruce struct {
	Via  string
	Tasa decimal.Decimal
}

// Tasas is a set of exchange rates against Base. Directas holds units of the
// currency per one unit of Base; Cruzadas holds currencies only quoted
// through a direct one.
type Tasas struct {
	Base     string
	Directas map[string]decimal.Decimal
	Cruzadas map[string]Cruce
}

// NuevasTasas builds the store's usual table: USD reference, bolívar quoted
// directly and euro quoted against the bolívar.
func NuevasTasas(usdBs, eurBs decimal.Decimal) Tasas {
	return Tasas{
		Base:     USD,
		Directas: map[string]decimal.Decimal{BS: usdBs},
		Cruzadas: map[string]Cruce{EUR: {Via: BS, Tasa: eurBs}},
	}
}

func Normalizar(codigo string) string {
	return strings.ToUpper(strings.TrimSpace(codigo))
}

// AReferencia converts an amount into the base currency. Unknown codes and
// non-positive rates pass the amount through unchanged.
func (t Tasas) AReferencia(monto decimal.Decimal, codigo string) decimal.Decimal {
	c := Normalizar(codigo)
	if c == Normalizar(t.Base) {
		return monto
	}
	if r, ok := t.Directas[c]; ok {
		if r.IsPositive() {
			return monto.Div(r)
		}
		return monto
	}
	if x, ok := t.Cruzadas[c]; ok {
		via, ok := t.Directas[Normalizar(x.Via)]
		if ok && via.IsPositive() && x.Tasa.IsPositive() {
			return monto.Mul(x.Tasa).Div(via)
		}
	}
	return monto
}

// DesdeReferencia is the inverse of AReferencia.
func (t Tasas) DesdeReferencia(monto decimal.Decimal, codigo string) decimal.Decimal {
	c := Normalizar(codigo)
	if c == Normalizar(t.Base) {
		return monto
	}
	if r, ok := t.Directas[c]; ok {
		if r.IsPositive() {
			return monto.Mul(r)
		}
		return monto
	}
	if x, ok := t.Cruzadas[c]; ok {
		via, ok := t.Directas[Normalizar(x.Via)]
		if ok && via.IsPositive() && x.Tasa.IsPositive() {
			return monto.Mul(via).Div(x.Tasa)
		}
	}
	return monto
}

// Aproximada reports whether converting codigo goes through a cross rate.
func (t Tasas) Aproximada(codigo string) bool {
	_, ok := t.Cruzadas[Normalizar(codigo)]
	return ok
}

func (t Tasas) Directa(codigo string) decimal.Decimal {
	return t.Directas[Normalizar(codigo)]
}

func (t Tasas) Cruzada(codigo string) decimal.Decimal {
	return t.Cruzadas[Normalizar(codigo)].Tasa
}

// Clonar returns a copy that shares no maps with t.
func (t Tasas) Clonar() Tasas {
	c := Tasas{
		Base:     t.Base,
		Directas: make(map[string]decimal.Decimal, len(t.Directas)),
		Cruzadas: make(map[string]Cruce, len(t.Cruzadas)),
	}
	for k, v := range t.Directas {
		c.Directas[k] = v
	}
	for k, v := range t.Cruzadas {
		c.Cruzadas[k] = v
	}
	return c
}

// Registro holds the rates in effect. Rates are replaced wholesale so a
// reader never sees a half-updated table.
type Registro struct {
	mu     sync.RWMutex
	actual Tasas
}

func NewRegistro(t Tasas) *Registro {
	return &Registro{actual: t.Clonar()}
}

func (r *Registro) Actual() Tasas {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.actual.Clonar()
}

func (r *Registro) Reemplazar(t Tasas) {
	c := t.Clonar()
	r.mu.Lock()
	r.actual = c
	r.mu.Unlock()
}

package infra

// remote_filas.go: the GET endpoint returns raw sheet cells. Sheets turns
// numeric-looking text (phones, barcode SKUs) into numbers and leaves empty
// cells as "". Rows are decoded through the cell types below and then
// mapped onto the model.

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"novapos/internal/model"

	"github.com/shopspring/decimal"
)

// ── Celdas ───────────────────────────────────────────────────────────────────

// celda returns the cell as text: strings unquoted, anything else verbatim.
func celda(b []byte) (string, error) {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		return "", nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return "", err
		}
		return strings.TrimSpace(s), nil
	}
	return string(b), nil
}

// texto accepts a string, number or boolean cell.
type texto string

func (t *texto) UnmarshalJSON(b []byte) error {
	s, err := celda(b)
	if err != nil {
		return err
	}
	if bytes.HasPrefix(bytes.TrimSpace(b), []byte(`"`)) {
		*t = texto(s)
		return nil
	}
	// 7591234567890 must not come back as 7.59123456789e+12.
	if d, err := decimal.NewFromString(s); err == nil {
		s = d.String()
	}
	*t = texto(s)
	return nil
}

// numero is a money or rate cell. Empty or non-numeric cells read as zero.
type numero decimal.Decimal

func (n *numero) UnmarshalJSON(b []byte) error {
	s, err := celda(b)
	if err != nil {
		return err
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		d = decimal.Zero
	}
	*n = numero(d)
	return nil
}

func (n numero) dec() decimal.Decimal { return decimal.Decimal(n) }

// entero is a quantity cell; fractions are truncated.
type entero int64

func (n *entero) UnmarshalJSON(b []byte) error {
	var d numero
	if err := d.UnmarshalJSON(b); err != nil {
		return err
	}
	*n = entero(d.dec().IntPart())
	return nil
}

// bandera is a checkbox cell: true, "TRUE", "SI", "1" and non-zero numbers
// are set.
type bandera bool

func (f *bandera) UnmarshalJSON(b []byte) error {
	s, err := celda(b)
	if err != nil {
		return err
	}
	switch strings.ToUpper(s) {
	case "TRUE", "SI", "SÍ", "YES", "X":
		*f = true
		return nil
	}
	d, err := decimal.NewFromString(s)
	*f = bandera(err == nil && !d.IsZero())
	return nil
}

// instante is a date cell. Sheets serializes dates as ISO strings; empty or
// unparseable cells read as the zero time.
type instante time.Time

var formatosFecha = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func (i *instante) UnmarshalJSON(b []byte) error {
	s, err := celda(b)
	if err != nil {
		return err
	}
	*i = instante(time.Time{})
	if ms, err := strconv.ParseInt(s, 10, 64); err == nil && ms > 0 {
		*i = instante(time.UnixMilli(ms).UTC())
		return nil
	}
	for _, f := range formatosFecha {
		if t, err := time.Parse(f, s); err == nil {
			*i = instante(t)
			return nil
		}
	}
	return nil
}

// ── Filas ────────────────────────────────────────────────────────────────────

type filaProducto struct {
	ID           texto   `json:"id"`
	Nombre       texto   `json:"name"`
	Categoria    texto   `json:"category"`
	PrecioCompra numero  `json:"priceBuy"`
	PrecioVenta  numero  `json:"priceSell"`
	Stock        entero  `json:"stock"`
	StockMinimo  entero  `json:"minStock"`
	Activo       bandera `json:"active"`
}

func (f filaProducto) clave() texto { return f.ID }

func (f filaProducto) modelo() model.Producto {
	return model.Producto{
		ID:           string(f.ID),
		Nombre:       string(f.Nombre),
		Categoria:    string(f.Categoria),
		PrecioCompra: f.PrecioCompra.dec(),
		PrecioVenta:  f.PrecioVenta.dec(),
		Stock:        int(f.Stock),
		StockMinimo:  int(f.StockMinimo),
		Activo:       bool(f.Activo),
	}
}

type filaCliente struct {
	ID       texto `json:"id"`
	Nombre   texto `json:"name"`
	Telefono texto `json:"phone"`
	Tipo     texto `json:"type"`
}

func (f filaCliente) clave() texto { return f.ID }

func (f filaCliente) modelo() model.Cliente {
	return model.Cliente{
		ID:       string(f.ID),
		Nombre:   string(f.Nombre),
		Telefono: string(f.Telefono),
		Tipo:     model.TipoCliente(f.Tipo),
	}
}

type filaProveedor struct {
	ID            texto `json:"id"`
	Nombre        texto `json:"name"`
	Telefono      texto `json:"phone"`
	CondicionPago texto `json:"paymentType"`
}

func (f filaProveedor) clave() texto { return f.ID }

func (f filaProveedor) modelo() model.Proveedor {
	return model.Proveedor{
		ID:            string(f.ID),
		Nombre:        string(f.Nombre),
		Telefono:      string(f.Telefono),
		CondicionPago: model.CondicionPago(f.CondicionPago),
	}
}

type filaVenta struct {
	ID         texto    `json:"id"`
	Fecha      instante `json:"date"`
	ClienteID  texto    `json:"clientId"`
	Tipo       texto    `json:"type"`
	Total      numero   `json:"total"`
	MonedaBase texto    `json:"currencyBase"`
	Estado     texto    `json:"status"`
	Seq        entero   `json:"seq"`
}

func (f filaVenta) clave() texto { return f.ID }

func (f filaVenta) modelo() model.Venta {
	return model.Venta{
		ID:         string(f.ID),
		Fecha:      time.Time(f.Fecha),
		ClienteID:  string(f.ClienteID),
		Tipo:       model.TipoVenta(f.Tipo),
		Total:      f.Total.dec(),
		MonedaBase: string(f.MonedaBase),
		Estado:     model.EstadoVenta(f.Estado),
		Seq:        int64(f.Seq),
	}
}

type filaVentaDetalle struct {
	VentaID        texto  `json:"saleId"`
	ProductoID     texto  `json:"productId"`
	Cantidad       entero `json:"quantity"`
	PrecioUnitario numero `json:"priceUnit"`
	Subtotal       numero `json:"subtotal"`
	Seq            entero `json:"seq"`
}

func (f filaVentaDetalle) clave() texto { return f.VentaID }

func (f filaVentaDetalle) modelo() model.VentaDetalle {
	return model.VentaDetalle{
		VentaID:        string(f.VentaID),
		ProductoID:     string(f.ProductoID),
		Cantidad:       int(f.Cantidad),
		PrecioUnitario: f.PrecioUnitario.dec(),
		Subtotal:       f.Subtotal.dec(),
		Seq:            int64(f.Seq),
	}
}

type filaCompra struct {
	ID          texto    `json:"id"`
	Fecha       instante `json:"date"`
	ProveedorID texto    `json:"supplierId"`
	Total       numero   `json:"total"`
	Moneda      texto    `json:"currency"`
	Referencia  texto    `json:"reference"`
	Estado      texto    `json:"status"`
	Seq         entero   `json:"seq"`
}

func (f filaCompra) clave() texto { return f.ID }

func (f filaCompra) modelo() model.Compra {
	return model.Compra{
		ID:          string(f.ID),
		Fecha:       time.Time(f.Fecha),
		ProveedorID: string(f.ProveedorID),
		Total:       f.Total.dec(),
		Moneda:      string(f.Moneda),
		Referencia:  string(f.Referencia),
		Estado:      string(f.Estado),
		Seq:         int64(f.Seq),
	}
}

type filaCompraDetalle struct {
	CompraID      texto  `json:"purchaseId"`
	ProductoID    texto  `json:"productId"`
	Cantidad      entero `json:"quantity"`
	CostoUnitario numero `json:"costUnit"`
	Subtotal      numero `json:"subtotal"`
	Seq           entero `json:"seq"`
}

func (f filaCompraDetalle) clave() texto { return f.CompraID }

func (f filaCompraDetalle) modelo() model.CompraDetalle {
	return model.CompraDetalle{
		CompraID:      string(f.CompraID),
		ProductoID:    string(f.ProductoID),
		Cantidad:      int(f.Cantidad),
		CostoUnitario: f.CostoUnitario.dec(),
		Subtotal:      f.Subtotal.dec(),
		Seq:           int64(f.Seq),
	}
}

type filaMovimiento struct {
	ID          texto    `json:"id"`
	Fecha       instante `json:"date"`
	Tipo        texto    `json:"type"`
	Origen      texto    `json:"origin"`
	Metodo      texto    `json:"method"`
	Monto       numero   `json:"amount"`
	Moneda      texto    `json:"currency"`
	Referencia  texto    `json:"reference"`
	ProveedorID texto    `json:"supplierId"`
	Seq         entero   `json:"seq"`
}

func (f filaMovimiento) clave() texto { return f.ID }

func (f filaMovimiento) modelo() model.MovimientoCaja {
	return model.MovimientoCaja{
		ID:          string(f.ID),
		Fecha:       time.Time(f.Fecha),
		Tipo:        model.TipoMovimiento(f.Tipo),
		Origen:      model.OrigenMovimiento(f.Origen),
		Metodo:      model.MetodoPago(f.Metodo),
		Monto:       f.Monto.dec(),
		Moneda:      string(f.Moneda),
		Referencia:  string(f.Referencia),
		ProveedorID: string(f.ProveedorID),
		Seq:         int64(f.Seq),
	}
}

// snapshotSheets mirrors model.Snapshot with row types.
type snapshotSheets struct {
	Productos      []filaProducto      `json:"products"`
	Clientes       []filaCliente       `json:"clients"`
	Proveedores    []filaProveedor     `json:"suppliers"`
	Ventas         []filaVenta         `json:"sales"`
	VentaDetalles  []filaVentaDetalle  `json:"details"`
	Compras        []filaCompra        `json:"purchases"`
	CompraDetalles []filaCompraDetalle `json:"purchaseDetails"`
	Movimientos    []filaMovimiento    `json:"movements"`
}

type fila[M any] interface {
	clave() texto
	modelo() M
}

// filas maps rows onto the model, dropping blank rows (no key column).
func filas[F fila[M], M any](fs []F) []M {
	out := make([]M, 0, len(fs))
	for _, f := range fs {
		if f.clave() == "" {
			continue
		}
		out = append(out, f.modelo())
	}
	return out
}

func (s snapshotSheets) modelo() *model.Snapshot {
	return &model.Snapshot{
		Productos:      filas[filaProducto, model.Producto](s.Productos),
		Clientes:       filas[filaCliente, model.Cliente](s.Clientes),
		Proveedores:    filas[filaProveedor, model.Proveedor](s.Proveedores),
		Ventas:         filas[filaVenta, model.Venta](s.Ventas),
		VentaDetalles:  filas[filaVentaDetalle, model.VentaDetalle](s.VentaDetalles),
		Compras:        filas[filaCompra, model.Compra](s.Compras),
		CompraDetalles: filas[filaCompraDetalle, model.CompraDetalle](s.CompraDetalles),
		Movimientos:    filas[filaMovimiento, model.MovimientoCaja](s.Movimientos),
	}
}

package model

import "time"

// Snapshot is the full dataset returned by the remote GET.
type Snapshot struct {
	Productos      []Producto       `json:"products"`
	Clientes       []Cliente        `json:"clients"`
	Proveedores    []Proveedor      `json:"suppliers"`
	Ventas         []Venta          `json:"sales"`
	VentaDetalles  []VentaDetalle   `json:"details"`
	Compras        []Compra         `json:"purchases"`
	CompraDetalles []CompraDetalle  `json:"purchaseDetails"`
	Movimientos    []MovimientoCaja `json:"movements"`
}

// Normalizar replaces absent collections with empty ones.
func (s *Snapshot) Normalizar() {
	if s.Productos == nil {
		s.Productos = []Producto{}
	}
	if s.Clientes == nil {
		s.Clientes = []Cliente{}
	}
	if s.Proveedores == nil {
		s.Proveedores = []Proveedor{}
	}
	if s.Ventas == nil {
		s.Ventas = []Venta{}
	}
	if s.VentaDetalles == nil {
		s.VentaDetalles = []VentaDetalle{}
	}
	if s.Compras == nil {
		s.Compras = []Compra{}
	}
	if s.CompraDetalles == nil {
		s.CompraDetalles = []CompraDetalle{}
	}
	if s.Movimientos == nil {
		s.Movimientos = []MovimientoCaja{}
	}
}

// ResultadoSync describes the outcome of a snapshot initialization.
// Remoto is false when the ledger kept serving its local copy.
type ResultadoSync struct {
	Remoto      bool       `json:"remoto"`
	Motivo      string     `json:"motivo,omitempty"`
	UltimaSync  *time.Time `json:"ultima_sync,omitempty"`
	Reaplicados int        `json:"reaplicados"`
}

package service

import (
	"time"

	"novapos/internal/model"
	"novapos/internal/repository"
)

// estado is one immutable generation of the ledger cache. Writers build a
// new generation from a clone and swap it in after it is persisted.
type estado struct {
	productos      []model.Producto
	clientes       []model.Cliente
	proveedores    []model.Proveedor
	ventas         []model.Venta
	ventaDetalles  []model.VentaDetalle
	compras        []model.Compra
	compraDetalles []model.CompraDetalle
	movimientos    []model.MovimientoCaja
	auditoria      []model.ReferenciaHuerfana
}

// clavesLedger are the keys replaced by a snapshot. The audit log is local
// and survives snapshots.
var clavesLedger = []string{
	repository.ClaveProductos,
	repository.ClaveClientes,
	repository.ClaveProveedores,
	repository.ClaveVentas,
	repository.ClaveVentaDetalles,
	repository.ClaveCompras,
	repository.ClaveCompraDetalles,
	repository.ClaveMovimientos,
}

func nuevoEstado() *estado {
	return (&estado{}).clonar()
}

func desdeSnapshot(s *model.Snapshot, auditoria []model.ReferenciaHuerfana) *estado {
	return &estado{
		productos:      copiar(s.Productos),
		clientes:       copiar(s.Clientes),
		proveedores:    copiar(s.Proveedores),
		ventas:         copiar(s.Ventas),
		ventaDetalles:  copiar(s.VentaDetalles),
		compras:        copiar(s.Compras),
		compraDetalles: copiar(s.CompraDetalles),
		movimientos:    copiar(s.Movimientos),
		auditoria:      copiar(auditoria),
	}
}

func (e *estado) clonar() *estado {
	return &estado{
		productos:      copiar(e.productos),
		clientes:       copiar(e.clientes),
		proveedores:    copiar(e.proveedores),
		ventas:         copiar(e.ventas),
		ventaDetalles:  copiar(e.ventaDetalles),
		compras:        copiar(e.compras),
		compraDetalles: copiar(e.compraDetalles),
		movimientos:    copiar(e.movimientos),
		auditoria:      copiar(e.auditoria),
	}
}

// destinos maps each durable key to the collection it holds.
func (e *estado) destinos() map[string]any {
	return map[string]any{
		repository.ClaveProductos:      &e.productos,
		repository.ClaveClientes:       &e.clientes,
		repository.ClaveProveedores:    &e.proveedores,
		repository.ClaveVentas:         &e.ventas,
		repository.ClaveVentaDetalles:  &e.ventaDetalles,
		repository.ClaveCompras:        &e.compras,
		repository.ClaveCompraDetalles: &e.compraDetalles,
		repository.ClaveMovimientos:    &e.movimientos,
		repository.ClaveAuditoria:      &e.auditoria,
	}
}

// auditar stamps hs with accion and ahora and appends the entries the audit
// log does not already hold for the same action, document and product. It
// returns the entries actually added.
func (e *estado) auditar(hs []model.ReferenciaHuerfana, accion model.Accion, ahora time.Time) []model.ReferenciaHuerfana {
	if len(hs) == 0 {
		return nil
	}
	type clave struct {
		accion    model.Accion
		documento string
		producto  string
	}
	previas := make(map[clave]bool, len(e.auditoria))
	for _, a := range e.auditoria {
		previas[clave{a.Accion, a.Documento, a.ProductoID}] = true
	}
	var nuevas []model.ReferenciaHuerfana
	for _, h := range hs {
		if previas[clave{accion, h.Documento, h.ProductoID}] {
			continue
		}
		h.Accion, h.RegistradaEn = accion, ahora
		nuevas = append(nuevas, h)
	}
	e.auditoria = append(e.auditoria, nuevas...)
	return nuevas
}

// volcar encodes the named collections into lote.
func (e *estado) volcar(lote repository.Lote, claves ...string) error {
	d := e.destinos()
	for _, c := range claves {
		if err := lote.JSON(c, d[c]); err != nil {
			return err
		}
	}
	return nil
}

func copiar[T any](s []T) []T {
	return append(make([]T, 0, len(s)), s...)
}

func indiceProducto(ps []model.Producto, id string) int {
	for i := range ps {
		if ps[i].ID == id {
			return i
		}
	}
	return -1
}

func indiceProveedor(ps []model.Proveedor, id string) int {
	for i := range ps {
		if ps[i].ID == id {
			return i
		}
	}
	return -1
}

func indiceCliente(cs []model.Cliente, id string) int {
	for i := range cs {
		if cs[i].ID == id {
			return i
		}
	}
	return -1
}

func existeVenta(vs []model.Venta, id string) bool {
	if id == "" {
		return false
	}
	for i := range vs {
		if vs[i].ID == id {
			return true
		}
	}
	return false
}

func existeCompra(cs []model.Compra, id string) bool {
	if id == "" {
		return false
	}
	for i := range cs {
		if cs[i].ID == id {
			return true
		}
	}
	return false
}

func existeMovimiento(ms []model.MovimientoCaja, id string) bool {
	if id == "" {
		return false
	}
	for i := range ms {
		if ms[i].ID == id {
			return true
		}
	}
	return false
}

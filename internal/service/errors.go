package service

import "errors"

var (
	ErrProductoNoEncontrado  = errors.New("producto no encontrado")
	ErrProductoInactivo      = errors.New("producto inactivo")
	ErrProveedorNoEncontrado = errors.New("proveedor no encontrado")
	ErrPagoInsuficiente      = errors.New("pago insuficiente para una venta de contado")
	ErrImportacionInvalida   = errors.New("archivo de importación inválido")
)

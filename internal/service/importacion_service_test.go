package service_test

import (
	"bytes"
	"context"
	"testing"

	"novapos/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func libroInventario(t *testing.T, filas [][]interface{}) *bytes.Buffer {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for i, fila := range filas {
		celda, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", celda, &fila))
	}
	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))
	return &buf
}

func TestImportar_FilasValidasEInvalidas(t *testing.T) {
	e := nuevoEntorno(t, nil)
	svc := service.NewImportacionService(e.ledger)

	libro := libroInventario(t, [][]interface{}{
		{"CODIGO", "NOMBRE", "CATEGORIA", "COSTO_COMPRA", "PRECIO_VENTA", "STOCK_ACTUAL", "STOCK_MINIMO", "ACTIVO"},
		{"P200", "Arroz Mary 1kg", "Víveres", 1.1, 1.6, 24, 6, "si"},
		{"P201", "", "Víveres", 1, 2, 3, 4, "SI"},
		{"P202", "Sal Marina", "", "abc", 0.5, 10, "", "NO"},
		{"", "", "", "", "", "", "", ""},
	})

	res, err := svc.Importar(context.Background(), libro)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Procesados)
	assert.Equal(t, 1, res.Errores)

	arroz := buscarProducto(t, e.ledger, "P200")
	assert.Equal(t, "Arroz Mary 1kg", arroz.Nombre)
	assert.Equal(t, "1.60", arroz.PrecioVenta.StringFixed(2))
	assert.Equal(t, 24, arroz.Stock)
	assert.Equal(t, 6, arroz.StockMinimo)
	assert.True(t, arroz.Activo)

	sal := buscarProducto(t, e.ledger, "P202")
	assert.Equal(t, "General", sal.Categoria)
	assert.True(t, sal.PrecioCompra.IsZero())
	assert.Equal(t, 5, sal.StockMinimo)
	assert.False(t, sal.Activo)
}

func TestImportar_ArchivoInvalido(t *testing.T) {
	e := nuevoEntorno(t, nil)
	svc := service.NewImportacionService(e.ledger)

	_, err := svc.Importar(context.Background(), bytes.NewBufferString("no soy un xlsx"))
	assert.ErrorIs(t, err, service.ErrImportacionInvalida)
}

func TestPlantilla_SeReimporta(t *testing.T) {
	e := nuevoEntorno(t, nil)
	svc := service.NewImportacionService(e.ledger)

	var buf bytes.Buffer
	require.NoError(t, svc.Plantilla(&buf))

	f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	filas, err := f.GetRows("Plantilla Inventario")
	require.NoError(t, err)
	require.NoError(t, f.Close())
	require.Len(t, filas, 2)
	assert.Equal(t, service.ColumnasPlantilla, filas[0])
	assert.Equal(t, "P1001", filas[1][0])

	res, err := svc.Importar(context.Background(), &buf)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Procesados)
	p := buscarProducto(t, e.ledger, "P1001")
	assert.Equal(t, 50, p.Stock)
	assert.True(t, p.Activo)
}

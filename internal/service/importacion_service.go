package service

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"novapos/internal/dto"
	"novapos/internal/model"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// Column order of the inventory workbook.
var ColumnasPlantilla = []string{
	"CODIGO", "NOMBRE", "CATEGORIA", "COSTO_COMPRA", "PRECIO_VENTA", "STOCK_ACTUAL", "STOCK_MINIMO", "ACTIVO",
}

const (
	hojaPlantilla       = "Plantilla Inventario"
	categoriaPorDefecto = "General"
	stockMinimoDefecto  = 5
)

type ImportacionService interface {
	Importar(ctx context.Context, r io.Reader) (*dto.ImportacionResponse, error)
	Plantilla(w io.Writer) error
}

type importacionService struct {
	ledger LedgerService
}

func NewImportacionService(ledger LedgerService) ImportacionService {
	return &importacionService{ledger: ledger}
}

// Importar upserts one product per row of the first sheet. The header row is
// skipped; rows without code or name are counted as errors.
func (s *importacionService) Importar(ctx context.Context, r io.Reader) (*dto.ImportacionResponse, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrImportacionInvalida, err)
	}
	defer f.Close()

	hojas := f.GetSheetList()
	if len(hojas) == 0 {
		return nil, fmt.Errorf("%w: sin hojas", ErrImportacionInvalida)
	}
	filas, err := f.GetRows(hojas[0])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrImportacionInvalida, err)
	}

	resp := &dto.ImportacionResponse{}
	for i, fila := range filas {
		if i == 0 || filaVacia(fila) {
			continue
		}
		p, ok := productoDesdeFila(fila)
		if !ok {
			resp.Errores++
			continue
		}
		if err := s.ledger.GuardarProducto(ctx, p); err != nil {
			return resp, err
		}
		resp.Procesados++
	}

	log.Info().
		Int("procesados", resp.Procesados).
		Int("errores", resp.Errores).
		Msg("importacion: inventory workbook processed")
	return resp, nil
}

func productoDesdeFila(fila []string) (model.Producto, bool) {
	celda := func(i int) string {
		if i < len(fila) {
			return strings.TrimSpace(fila[i])
		}
		return ""
	}
	id, nombre := celda(0), celda(1)
	if id == "" || nombre == "" {
		return model.Producto{}, false
	}
	categoria := celda(2)
	if categoria == "" {
		categoria = categoriaPorDefecto
	}
	minimo := entero(celda(6))
	if minimo == 0 {
		minimo = stockMinimoDefecto
	}
	return model.Producto{
		ID:           id,
		Nombre:       nombre,
		Categoria:    categoria,
		PrecioCompra: numero(celda(3)),
		PrecioVenta:  numero(celda(4)),
		Stock:        entero(celda(5)),
		StockMinimo:  minimo,
		Activo:       activo(celda(7)),
	}, true
}

func numero(s string) decimal.Decimal {
	d, err := decimal.NewFromString(strings.ReplaceAll(s, ",", "."))
	if err != nil {
		return decimal.Zero
	}
	return d
}

func entero(s string) int {
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	return int(numero(s).IntPart())
}

func activo(s string) bool {
	switch strings.ToUpper(s) {
	case "SI", "SÍ", "YES", "TRUE":
		return true
	}
	return false
}

func filaVacia(fila []string) bool {
	for _, c := range fila {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// Plantilla writes an empty inventory workbook with one example row.
func (s *importacionService) Plantilla(w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", hojaPlantilla); err != nil {
		return err
	}
	encabezado := make([]interface{}, len(ColumnasPlantilla))
	for i, c := range ColumnasPlantilla {
		encabezado[i] = c
	}
	filas := [][]interface{}{
		encabezado,
		{"P1001", "Ejemplo Producto", "General", 1.50, 2.00, 50, 5, "SI"},
	}
	for i, fila := range filas {
		celda, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(hojaPlantilla, celda, &fila); err != nil {
			return err
		}
	}
	return f.Write(w)
}

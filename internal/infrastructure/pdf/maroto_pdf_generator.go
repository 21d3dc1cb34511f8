// Package pdf implementa la generación del Reporte de Reposición de
// Inventario en PDF usando Maroto v2.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Título del reporte  │  Fecha de generación         │
//	│  ─────────────────────────────────────────────────────────  │
//	│  RESUMEN: productos críticos / unidades sugeridas           │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: SKU | Producto | Stock | Seguridad | Sugerido | ... │
//	│  ─────────────────────────────────────────────────────────  │
//	│  FOOTER: leyenda de interpretación                          │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"
	"time"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"

	"github.com/jhoicas/Reposicion-api/internal/application/replenishment"
)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorWhite   = &props.Color{Red: 255, Green: 255, Blue: 255}
	colorAlert   = &props.Color{Red: 178, Green: 34, Blue: 34}
)

// ── Generator ─────────────────────────────────────────────────────────────────

// MarotoPDFGenerator genera reportes de reposición usando Maroto v2.
type MarotoPDFGenerator struct{}

// NewMarotoPDFGenerator construye el generador.
func NewMarotoPDFGenerator() *MarotoPDFGenerator { return &MarotoPDFGenerator{} }

// GenerateReplenishmentReport genera el PDF del listado de productos que
// requieren reposición y devuelve sus bytes.
func (g *MarotoPDFGenerator) GenerateReplenishmentReport(
	_ context.Context,
	products []*replenishment.NeedingProduct,
	generatedAt time.Time,
) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Reporte de Reposición de Inventario", true).
		Build()

	m := maroto.New(cfg)

	// Header principal
	m.AddRows(headerRow(generatedAt))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(summaryRow(products))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	// Tabla de productos
	m.AddRows(tableHeaderRow())
	if len(products) == 0 {
		m.AddRows(emptyRow())
	}
	for _, r := range tableDetailRows(products) {
		m.AddRows(r)
	}

	// Footer
	m.AddRows(line.NewRow(3))
	m.AddRows(line.NewRow(1, props.Line{Color: colorGray, Thickness: 0.3}))
	m.AddRows(legendRow())

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

// headerRow: título del reporte (izq) y fecha de generación (der).
func headerRow(generatedAt time.Time) core.Row {
	fecha := generatedAt.Format("02/01/2006 15:04")

	return row.New(18).Add(
		col.New(8).Add(
			text.New("REPORTE DE REPOSICIÓN", props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New("Productos con stock por debajo del punto de reorden", props.Text{
				Size: 9, Top: 9, Color: colorGray,
			}),
		),
		col.New(4).Add(
			text.New("INVENTARIO", props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Right,
				Color: colorPrimary, Top: 1,
			}),
			text.New("Generado: "+fecha, props.Text{
				Size: 8, Align: align.Right, Top: 9, Color: colorGray,
			}),
		),
	)
}

// summaryRow: conteo de productos críticos y total de unidades sugeridas.
func summaryRow(products []*replenishment.NeedingProduct) core.Row {
	var totalSuggested, totalPending int
	for _, p := range products {
		totalSuggested += p.SuggestedQuantity
		totalPending += p.PendingQuantity
	}

	return row.New(12).Add(
		col.New(12).Add(
			text.New("RESUMEN", props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
			}),
			text.New(fmt.Sprintf("Productos que requieren reposición: %d   |   Unidades sugeridas: %d   |   Unidades en órdenes pendientes: %d",
				len(products), totalSuggested, totalPending,
			), props.Text{Size: 8, Top: 7, Color: colorGray}),
		),
	)
}

// tableHeaderRow: cabecera de la tabla de productos.
func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a,
			Color: colorWhite, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("SKU", 2, align.Left),
		h("Producto", 4, align.Left),
		h("Stock", 1, align.Right),
		h("Seguridad", 1, align.Right),
		h("Sugerido", 1, align.Right),
		h("Pendiente", 1, align.Right),
		h("Ratio", 2, align.Right),
	)
}

// tableDetailRows: una fila por producto; el ratio crítico (<0.5) va en rojo.
func tableDetailRows(products []*replenishment.NeedingProduct) []core.Row {
	result := make([]core.Row, 0, len(products))
	for _, p := range products {
		ratioColor := colorGray
		if p.StockRatio < 0.5 {
			ratioColor = colorAlert
		}
		result = append(result, row.New(7).Add(
			col.New(2).Add(text.New(
				p.SKU,
				props.Text{Size: 8, Align: align.Left, Top: 1, Left: 1},
			)),
			col.New(4).Add(text.New(
				p.Name,
				props.Text{Size: 8, Align: align.Left, Top: 1, Left: 1},
			)),
			col.New(1).Add(text.New(
				fmt.Sprintf("%d", p.CurrentStock),
				props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1},
			)),
			col.New(1).Add(text.New(
				fmt.Sprintf("%d", p.SafetyStock),
				props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1},
			)),
			col.New(1).Add(text.New(
				fmt.Sprintf("%d", p.SuggestedQuantity),
				props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1, Style: fontstyle.Bold},
			)),
			col.New(1).Add(text.New(
				fmt.Sprintf("%d", p.PendingQuantity),
				props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1},
			)),
			col.New(2).Add(text.New(
				fmt.Sprintf("%.2f", p.StockRatio),
				props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1, Color: ratioColor},
			)),
		))
	}
	return result
}

// emptyRow: mensaje cuando no hay productos por reponer.
func emptyRow() core.Row {
	return row.New(10).Add(col.New(12).Add(
		text.New("No hay productos que requieran reposición.", props.Text{
			Size: 9, Align: align.Center, Color: colorGray, Top: 3,
		}),
	))
}

// legendRow: leyenda de interpretación del reporte.
func legendRow() core.Row {
	return row.New(10).Add(col.New(12).Add(
		text.New(
			"Sugerido = cantidad recomendada para alcanzar el nivel objetivo. "+
				"Ratio = stock actual / stock de seguridad; valores menores a 0.50 "+
				"indican riesgo inminente de quiebre de stock.",
			props.Text{Size: 6.5, Color: colorGray, Top: 2},
		),
	))
}

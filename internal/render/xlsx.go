package render

import (
	"fmt"
	"strings"
	"text/template"

	"github.com/xuri/excelize/v2"
)

// Renderer produces report files from externally supplied templates. It is
// stateless; both variants are pure given template, output, and context.
type Renderer struct{}

// placeholderMarker flags a cell as carrying a template expression.
const placeholderMarker = "{{"

// RenderWorkbook renders the xlsx template at templatePath into outputPath.
// Every cell of the active sheet whose value contains the placeholder
// marker is re-rendered as a template against ctx; all other cells pass
// through untouched. A placeholder with no context binding is a hard error.
func (Renderer) RenderWorkbook(templatePath, outputPath string, ctx map[string]any) error {
	wb, err := excelize.OpenFile(templatePath)
	if err != nil {
		return fmt.Errorf("open workbook template %s: %w", templatePath, err)
	}
	defer wb.Close()

	sheet := wb.GetSheetName(wb.GetActiveSheetIndex())
	rows, err := wb.GetRows(sheet)
	if err != nil {
		return fmt.Errorf("read sheet %s: %w", sheet, err)
	}

	for ri, row := range rows {
		for ci, value := range row {
			if !strings.Contains(value, placeholderMarker) {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(ci+1, ri+1)
			if err != nil {
				return err
			}
			rendered, err := renderCell(value, ctx)
			if err != nil {
				return fmt.Errorf("render cell %s: %w", cell, err)
			}
			if err := wb.SetCellStr(sheet, cell, rendered); err != nil {
				return fmt.Errorf("set cell %s: %w", cell, err)
			}
		}
	}

	if err := wb.SaveAs(outputPath); err != nil {
		return fmt.Errorf("write workbook %s: %w", outputPath, err)
	}
	return nil
}

func renderCell(src string, ctx map[string]any) (string, error) {
	tmpl, err := template.New("cell").Option("missingkey=error").Parse(src)
	if err != nil {
		return "", err
	}
	var buf strings.Builder
	if err := tmpl.Execute(&buf, ctx); err != nil {
		return "", err
	}
	return buf.String(), nil
}

package render

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"
)

// newTestWorkbook writes a small template workbook and returns its path.
func newTestWorkbook(t *testing.T, cells map[string]any) string {
	t.Helper()

	wb := excelize.NewFile()
	defer wb.Close()

	sheet := wb.GetSheetName(wb.GetActiveSheetIndex())
	for cell, value := range cells {
		if err := wb.SetCellValue(sheet, cell, value); err != nil {
			t.Fatalf("set cell %s: %v", cell, err)
		}
	}

	path := filepath.Join(t.TempDir(), "weekly_template.xlsx")
	if err := wb.SaveAs(path); err != nil {
		t.Fatalf("write template: %v", err)
	}
	return path
}

func readCells(t *testing.T, path string, cells ...string) map[string]string {
	t.Helper()

	wb, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("open rendered workbook: %v", err)
	}
	defer wb.Close()

	sheet := wb.GetSheetName(wb.GetActiveSheetIndex())
	out := make(map[string]string, len(cells))
	for _, cell := range cells {
		value, err := wb.GetCellValue(sheet, cell)
		if err != nil {
			t.Fatalf("get cell %s: %v", cell, err)
		}
		out[cell] = value
	}
	return out
}

func weeklyCtx() map[string]any {
	return map[string]any{
		"name":        "Alice",
		"today":       "2024-06-03",
		"next_friday": "2024-06-07",
		"date":        "2024/06/03",
		"conclusion":  []string{"c1", "c2", "c3", "c4", "c5"},
	}
}

func TestRenderWorkbookSubstitutesPlaceholderCells(t *testing.T) {
	tmpl := newTestWorkbook(t, map[string]any{
		"A1": "Weekly report",
		"B1": "{{.name}}",
		"A2": "{{.date}}",
		"B2": "{{index .conclusion 0}}",
		"C2": "due {{.next_friday}}",
	})
	out := filepath.Join(t.TempDir(), "weekly.xlsx")

	if err := (Renderer{}).RenderWorkbook(tmpl, out, weeklyCtx()); err != nil {
		t.Fatalf("RenderWorkbook: %v", err)
	}

	cases := []struct {
		cell string
		want string
	}{
		{"B1", "Alice"},
		{"A2", "2024/06/03"},
		{"B2", "c1"},
		{"C2", "due 2024-06-07"},
	}
	got := readCells(t, out, "B1", "A2", "B2", "C2")
	for _, tc := range cases {
		t.Run(tc.cell, func(t *testing.T) {
			if got[tc.cell] != tc.want {
				t.Errorf("cell %s = %q, want %q", tc.cell, got[tc.cell], tc.want)
			}
		})
	}
}

func TestRenderWorkbookLeavesOtherCellsAlone(t *testing.T) {
	tmpl := newTestWorkbook(t, map[string]any{
		"A1": "plain text",
		"B1": 42,
		"C1": "{{.name}}",
	})
	out := filepath.Join(t.TempDir(), "weekly.xlsx")

	if err := (Renderer{}).RenderWorkbook(tmpl, out, weeklyCtx()); err != nil {
		t.Fatalf("RenderWorkbook: %v", err)
	}

	got := readCells(t, out, "A1", "B1")
	if got["A1"] != "plain text" {
		t.Errorf("A1 = %q, want untouched text", got["A1"])
	}
	if got["B1"] != "42" {
		t.Errorf("B1 = %q, want 42", got["B1"])
	}
}

func TestRenderWorkbookMissingBindingFails(t *testing.T) {
	tmpl := newTestWorkbook(t, map[string]any{
		"A1": "{{.nonexistent}}",
	})
	out := filepath.Join(t.TempDir(), "weekly.xlsx")

	err := (Renderer{}).RenderWorkbook(tmpl, out, weeklyCtx())
	if err == nil {
		t.Fatal("expected error for unbound placeholder")
	}
	if !strings.Contains(err.Error(), "A1") {
		t.Errorf("error should name the failing cell: %v", err)
	}
}

func TestRenderWorkbookMissingTemplateFails(t *testing.T) {
	out := filepath.Join(t.TempDir(), "weekly.xlsx")
	err := (Renderer{}).RenderWorkbook("no-such-template.xlsx", out, weeklyCtx())
	if err == nil {
		t.Fatal("expected error for missing template")
	}
}

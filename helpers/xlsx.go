package helpers

import (
	"fmt"
	"io"
	"strconv"

	"github.com/xuri/excelize/v2"

	"github.com/spektr-org/gdpboard/engine"
)

// DefaultSheet is the worksheet name used by WriteTableXLSX.
const DefaultSheet = "GDP Data"

// WriteTableXLSX writes TableData as a single-sheet workbook. Columns typed
// "number" or "currency" are written as numeric cells so spreadsheet formulas
// work on them; everything else is written as text.
func WriteTableXLSX(w io.Writer, table *engine.TableData, sheet string) error {
	if sheet == "" {
		sheet = DefaultSheet
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	header := make([]interface{}, len(table.Columns))
	for i, c := range table.Columns {
		header[i] = c.Label
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for r, row := range table.Rows {
		values := make([]interface{}, len(row))
		for c, v := range row {
			values[c] = cellValue(table, c, v)
		}
		cell, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return fmt.Errorf("failed to write row %d: %w", r+1, err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func cellValue(table *engine.TableData, col int, v string) interface{} {
	if col >= len(table.Columns) {
		return v
	}
	switch table.Columns[col].Type {
	case "number", "currency":
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return v
}

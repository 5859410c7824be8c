package core

import (
	"bytes"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"
)

const xlsxSheet = "Leads"

// GenerateXLSX renders leads as an Excel workbook with the same columns and
// cell text as GenerateCSV. Numeric columns are written as numbers. An empty
// slice still produces a workbook with the header row.
func GenerateXLSX(leads []Lead, loc *time.Location) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", xlsxSheet); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E0E0E0"}, Pattern: 1},
	})
	if err != nil {
		return nil, fmt.Errorf("create header style: %w", err)
	}

	header := make([]any, len(ExportHeaders))
	for i, h := range ExportHeaders {
		header[i] = h
	}
	if err := f.SetSheetRow(xlsxSheet, "A1", &header); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}
	lastCol, _ := excelize.ColumnNumberToName(len(ExportHeaders))
	if err := f.SetCellStyle(xlsxSheet, "A1", lastCol+"1", headerStyle); err != nil {
		return nil, fmt.Errorf("style header: %w", err)
	}

	for i := range leads {
		cells := ExportRow(&leads[i], loc)
		row := make([]any, len(cells))
		for j, c := range cells {
			row[j] = c
		}
		// Estimated Value and Current Mortgage Balance.
		if v := leads[i].EstimatedValue; v != nil {
			row[13] = *v
		}
		if v := leads[i].CurrentMortgageBalance; v != nil {
			row[16] = *v
		}

		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(xlsxSheet, cell, &row); err != nil {
			return nil, fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	if err := f.SetColWidth(xlsxSheet, "A", lastCol, 18); err != nil {
		return nil, fmt.Errorf("set column width: %w", err)
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

package export

import (
	"fmt"

	"github.com/hyperjump/yomitori/internal/models"
	"github.com/xuri/excelize/v2"
)

const sheetName = "Extractions"

// AssembleXlsx builds a spreadsheet: a metadata header block, then one row
// per extraction item.
func (a *Assembler) AssembleXlsx(name string, items []models.ExtractionItem, settings models.ExtractionSettings) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	idx, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, fmt.Errorf("export: create sheet: %w", err)
	}
	f.SetActiveSheet(idx)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("export: drop default sheet: %w", err)
	}

	header := [][]interface{}{
		{title},
		{"Document", name},
		{"Generated", a.now().Format("2006-01-02 15:04:05")},
		{"Language", settings.TargetLanguage},
		{"OCR Mode", settings.OCRMode},
		{},
		{"#", "Source", "Text"},
	}
	row := 1
	for _, cells := range header {
		for col, v := range cells {
			cell, err := excelize.CoordinatesToCellName(col+1, row)
			if err != nil {
				return nil, fmt.Errorf("export: cell name: %w", err)
			}
			if err := f.SetCellValue(sheetName, cell, v); err != nil {
				return nil, fmt.Errorf("export: set cell: %w", err)
			}
		}
		row++
	}
	for i, item := range items {
		values := []interface{}{i + 1, item.SourceName, item.Text}
		for col, v := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, row)
			if err != nil {
				return nil, fmt.Errorf("export: cell name: %w", err)
			}
			if err := f.SetCellValue(sheetName, cell, v); err != nil {
				return nil, fmt.Errorf("export: set cell: %w", err)
			}
		}
		row++
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("export: write xlsx: %w", err)
	}
	return buf.Bytes(), nil
}

package persist

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/docdex/harvest/pkg/models"
)

const xlsxSheet = "Records"

// ExportXLSX writes records to a spreadsheet for the people who will never
// open a JSON file.
func ExportXLSX(path string, records []*models.Record) error {
	f := excelize.NewFile()
	defer f.Close()

	f.SetSheetName("Sheet1", xlsxSheet)

	header := []any{"Name", "Specialty", "Contacts", "Attributes", "Validity", "URL", "Scraped At"}
	if err := f.SetSheetRow(xlsxSheet, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err == nil {
		_ = f.SetRowStyle(xlsxSheet, 1, 1, style)
	}

	for i, rec := range records {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("row %d: %w", i+2, err)
		}
		row := []any{
			rec.Name,
			rec.Specialty,
			strings.Join(rec.Contacts, "; "),
			flattenAttributes(rec.Attributes),
			string(rec.Validity),
			rec.URL,
			rec.ScrapedAt.Format("2006-01-02 15:04:05"),
		}
		if err := f.SetSheetRow(xlsxSheet, cell, &row); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save spreadsheet: %w", err)
	}
	return nil
}

func flattenAttributes(attrs []models.Attribute) string {
	if len(attrs) == 0 {
		return ""
	}
	parts := make([]string, 0, len(attrs))
	for _, a := range attrs {
		parts = append(parts, a.Key+": "+a.Value)
	}
	return strings.Join(parts, " | ")
}

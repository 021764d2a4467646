package services

import (
	"context"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"
)

type ExportService struct {
	reportSvc *ReportService
}

func NewExportService(reportSvc *ReportService) *ExportService {
	return &ExportService{reportSvc: reportSvc}
}

// ExportLedgerXLSX writes the combined ledger for a date range as a workbook
func (s *ExportService) ExportLedgerXLSX(ctx context.Context, start, end string) ([]byte, string, error) {
	entries, err := s.reportSvc.LedgerEntries(ctx, start, end)
	if err != nil {
		return nil, "", err
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := "Ledger"
	_ = f.SetSheetName("Sheet1", sheet)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 14},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E0E0E0"}, Pattern: 1},
	})

	_ = f.SetCellValue(sheet, "A1", "Libro del fondo común")
	_ = f.SetCellStyle(sheet, "A1", "A1", headerStyle)
	_ = f.SetCellValue(sheet, "A2", fmt.Sprintf("Del %s al %s", start, end))

	_ = f.SetCellValue(sheet, "A4", "Fecha")
	_ = f.SetCellValue(sheet, "B4", "Tipo")
	_ = f.SetCellValue(sheet, "C4", "Detalle")
	_ = f.SetCellValue(sheet, "D4", "Ingreso")
	_ = f.SetCellValue(sheet, "E4", "Egreso")

	row := 5
	totalIn, totalOut := 0.0, 0.0
	for _, e := range entries {
		_ = f.SetCellValue(sheet, fmt.Sprintf("A%d", row), e.Date.Format("2006-01-02"))
		_ = f.SetCellValue(sheet, fmt.Sprintf("B%d", row), e.Kind)
		_ = f.SetCellValue(sheet, fmt.Sprintf("C%d", row), e.Description)
		if e.Amount >= 0 {
			_ = f.SetCellValue(sheet, fmt.Sprintf("D%d", row), e.Amount)
			totalIn += e.Amount
		} else {
			_ = f.SetCellValue(sheet, fmt.Sprintf("E%d", row), -e.Amount)
			totalOut += -e.Amount
		}
		row++
	}

	row++
	_ = f.SetCellValue(sheet, fmt.Sprintf("A%d", row), "Totales")
	_ = f.SetCellValue(sheet, fmt.Sprintf("D%d", row), totalIn)
	_ = f.SetCellValue(sheet, fmt.Sprintf("E%d", row), totalOut)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, "", err
	}

	filename := fmt.Sprintf("ledger_%s.xlsx", time.Now().Format("2006-01-02"))
	return buf.Bytes(), filename, nil
}

package importledger

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/xuri/excelize/v2"
)

const (
	FormatCSV   = "csv"
	FormatExcel = "xlsx"
	FormatPDF   = "pdf"
)

// Exporter renders an import history as a downloadable file. Only the
// metadata columns are exported, never the serialized row data.
type Exporter interface {
	Export(format string, imports []Import) ([]byte, string, string, error)
}

type exporter struct{}

func NewExporter() Exporter {
	return &exporter{}
}

func (e *exporter) Export(format string, imports []Import) ([]byte, string, string, error) {
	timestamp := time.Now().Format("20060102_150405")

	switch format {
	case FormatCSV:
		data, err := e.exportCSV(imports)
		if err != nil {
			return nil, "", "", err
		}
		return data, fmt.Sprintf("import_history_%s.csv", timestamp), "text/csv", nil

	case FormatExcel:
		data, err := e.exportExcel(imports)
		if err != nil {
			return nil, "", "", err
		}
		return data, fmt.Sprintf("import_history_%s.xlsx", timestamp), "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", nil

	case FormatPDF:
		data, err := e.exportPDF(imports)
		if err != nil {
			return nil, "", "", err
		}
		return data, fmt.Sprintf("import_history_%s.pdf", timestamp), "application/pdf", nil

	default:
		return nil, "", "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
}

var exportHeaders = []string{"ID", "File Name", "File Type", "Imported On", "Records", "Status", "User", "Organization", "Notes"}

func (e *exporter) exportCSV(imports []Import) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write(exportHeaders); err != nil {
		return nil, err
	}

	for _, imp := range imports {
		record := []string{
			strconv.FormatUint(uint64(imp.ID), 10),
			imp.FileName,
			imp.FileType,
			imp.ImportedOn.Format("2006-01-02 15:04:05"),
			strconv.Itoa(imp.Records),
			imp.Status,
			imp.UserName,
			imp.OrgName,
			imp.Notes,
		}
		if err := writer.Write(record); err != nil {
			return nil, err
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

func (e *exporter) exportExcel(imports []Import) ([]byte, error) {
	f := excelize.NewFile()
	sheetName := "Import History"
	f.SetSheetName("Sheet1", sheetName)

	for i, header := range exportHeaders {
		cell := fmt.Sprintf("%c1", 'A'+i)
		f.SetCellValue(sheetName, cell, header)
	}

	for i, imp := range imports {
		row := i + 2
		f.SetCellValue(sheetName, fmt.Sprintf("A%d", row), imp.ID)
		f.SetCellValue(sheetName, fmt.Sprintf("B%d", row), imp.FileName)
		f.SetCellValue(sheetName, fmt.Sprintf("C%d", row), imp.FileType)
		f.SetCellValue(sheetName, fmt.Sprintf("D%d", row), imp.ImportedOn.Format("2006-01-02 15:04:05"))
		f.SetCellValue(sheetName, fmt.Sprintf("E%d", row), imp.Records)
		f.SetCellValue(sheetName, fmt.Sprintf("F%d", row), imp.Status)
		f.SetCellValue(sheetName, fmt.Sprintf("G%d", row), imp.UserName)
		f.SetCellValue(sheetName, fmt.Sprintf("H%d", row), imp.OrgName)
		f.SetCellValue(sheetName, fmt.Sprintf("I%d", row), imp.Notes)
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (e *exporter) exportPDF(imports []Import) ([]byte, error) {
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(0, 10, "Import History")
	pdf.Ln(20)

	pdf.SetFont("Arial", "B", 9)
	widths := []float64{12, 55, 18, 35, 20, 20, 35, 40, 40}

	for i, h := range exportHeaders {
		pdf.CellFormat(widths[i], 7, h, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 8)
	for _, imp := range imports {
		values := []string{
			strconv.FormatUint(uint64(imp.ID), 10),
			imp.FileName,
			imp.FileType,
			imp.ImportedOn.Format("2006-01-02 15:04:05"),
			strconv.Itoa(imp.Records),
			imp.Status,
			imp.UserName,
			imp.OrgName,
			imp.Notes,
		}
		for i, v := range values {
			if len(v) > 30 {
				v = v[:27] + "..."
			}
			pdf.CellFormat(widths[i], 6, v, "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Package export writes the empty product import template in CSV or XLSX.
package export

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Format is the template file format.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// SheetName is the worksheet holding the XLSX header row.
const SheetName = "Products"

var templateColumns = []string{
	"id", "title", "description", "price", "discountPrice", "category",
	"imageUrl", "rating", "inStock", "colors", "sizes", "countryOfOrigin",
	"isNew", "isBestseller", "articleNumber", "barcode", "wildberriesUrl",
	"ozonUrl", "avitoUrl", "stockQuantity",
}

// ErrUnknownFormat is returned for formats other than csv and xlsx.
var ErrUnknownFormat = errors.New("unknown template format")

// Columns returns the template header in order.
func Columns() []string {
	return slices.Clone(templateColumns)
}

// ParseFormat accepts "csv", "xlsx" and "excel" in any case.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(strings.TrimPrefix(s, "."))) {
	case "csv":
		return FormatCSV, nil
	case "xlsx", "excel":
		return FormatXLSX, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

// FormatFromPath picks the format from a file extension.
func FormatFromPath(path string) (Format, error) {
	return ParseFormat(filepath.Ext(path))
}

// WriteTemplate writes the header-only template to w.
func WriteTemplate(w io.Writer, format Format) error {
	switch format {
	case FormatCSV:
		return writeCSV(w)
	case FormatXLSX:
		return writeXLSX(w)
	}
	return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
}

// WriteTemplateFile creates path and writes the template in the format its
// extension names.
func WriteTemplateFile(path string) error {
	format, err := FormatFromPath(path)
	if err != nil {
		return err
	}
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create template: %w", err)
	}
	if err := WriteTemplate(file, format); err != nil {
		_ = file.Close()
		return err
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("close template: %w", err)
	}
	return nil
}

func writeCSV(w io.Writer) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(templateColumns); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}

func writeXLSX(w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return fmt.Errorf("name sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}

	for i, header := range templateColumns {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return fmt.Errorf("header cell %d: %w", i, err)
		}
		if err := f.SetCellValue(SheetName, cell, header); err != nil {
			return fmt.Errorf("write header %s: %w", header, err)
		}
	}
	last, _ := excelize.CoordinatesToCellName(len(templateColumns), 1)
	if err := f.SetCellStyle(SheetName, "A1", last, headerStyle); err != nil {
		return fmt.Errorf("style header: %w", err)
	}
	lastCol, _ := excelize.ColumnNumberToName(len(templateColumns))
	if err := f.SetColWidth(SheetName, "A", lastCol, 18); err != nil {
		return fmt.Errorf("set column width: %w", err)
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write xlsx: %w", err)
	}
	return nil
}

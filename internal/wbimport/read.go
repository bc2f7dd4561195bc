package wbimport

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Mapping is one data row of a mapping file.
type Mapping struct {
	Row     int // 1-based row number in the file
	Article string
	NmID    string
	Barcode string
}

var (
	// ErrNoHeader is returned when no row names an article or barcode column.
	ErrNoHeader = errors.New("no article or barcode column found")
	// ErrUnsupportedFile is returned for extensions other than csv and xlsx.
	ErrUnsupportedFile = errors.New("unsupported mapping file")
)

type column int

const (
	colNone column = iota
	colArticle
	colNmID
	colBarcode
)

var headerAliases = map[string]column{
	"артикул продавца":   colArticle,
	"артикул поставщика": colArticle,
	"артикул":            colArticle,
	"vendor code":        colArticle,
	"vendorcode":         colArticle,
	"supplier article":   colArticle,
	"article":            colArticle,
	"article number":     colArticle,
	"articlenumber":      colArticle,
	"sku":                colArticle,
	"nmid":               colNmID,
	"nm id":              colNmID,
	"артикул wb":         colNmID,
	"артикул вб":         colNmID,
	"код номенклатуры":   colNmID,
	"barcode":            colBarcode,
	"баркод":             colBarcode,
	"штрихкод":           colBarcode,
}

// ReadFile reads a CSV or XLSX mapping file.
func ReadFile(path string) ([]Mapping, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open mapping file: %w", err)
	}
	defer file.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv", ".txt":
		return ReadCSV(file)
	case ".xlsx":
		return ReadXLSX(file)
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedFile, filepath.Base(path))
}

// ReadCSV reads a delimited mapping file. The delimiter (semicolon, comma or
// tab) is taken from the first line.
func ReadCSV(r io.Reader) ([]Mapping, error) {
	br := bufio.NewReader(r)
	first, err := br.Peek(4096)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, bufio.ErrBufferFull) {
		return nil, fmt.Errorf("read mapping csv: %w", err)
	}

	reader := csv.NewReader(br)
	reader.Comma = detectDelimiter(first)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse mapping csv: %w", err)
	}
	return parseRows(rows)
}

// ReadXLSX reads the first worksheet of a workbook.
func ReadXLSX(r io.Reader) ([]Mapping, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open mapping workbook: %w", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	return parseRows(rows)
}

func detectDelimiter(sample []byte) rune {
	line, _, _ := bytes.Cut(sample, []byte("\n"))
	best, bestCount := ',', 0
	for _, d := range []rune{';', ',', '\t'} {
		if n := bytes.Count(line, []byte(string(d))); n > bestCount {
			best, bestCount = d, n
		}
	}
	return best
}

func parseRows(rows [][]string) ([]Mapping, error) {
	headerIdx := -1
	var cols []column
	for i, row := range rows {
		cols = classify(row)
		if hasKey(cols) {
			headerIdx = i
			break
		}
	}
	if headerIdx < 0 {
		return nil, ErrNoHeader
	}

	var out []Mapping
	for i := headerIdx + 1; i < len(rows); i++ {
		m := Mapping{Row: i + 1}
		blank := true
		for j, cell := range rows[i] {
			if j >= len(cols) {
				break
			}
			value := strings.TrimSpace(cell)
			if value != "" {
				blank = false
			}
			switch cols[j] {
			case colArticle:
				m.Article = value
			case colNmID:
				m.NmID = value
			case colBarcode:
				m.Barcode = value
			}
		}
		if !blank {
			out = append(out, m)
		}
	}
	return out, nil
}

func classify(header []string) []column {
	cols := make([]column, len(header))
	for i, h := range header {
		cols[i] = headerAliases[normalizeHeader(h)]
	}
	return cols
}

func hasKey(cols []column) bool {
	for _, c := range cols {
		if c == colArticle || c == colBarcode {
			return true
		}
	}
	return false
}

func normalizeHeader(h string) string {
	h = strings.TrimPrefix(h, "\ufeff")
	h = strings.ReplaceAll(h, "_", " ")
	return strings.Join(strings.Fields(strings.ToLower(h)), " ")
}

package excel

import (
	"context"
	"encoding/csv"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"gocopula/ports"
)

// PairReader reads paired prior/current scores from an Excel or CSV file.
// Expected shape: a header row, then two numeric columns (prior, current).
// Rows with missing or non-numeric cells are skipped with a warning; the
// upstream contract says missing values are already removed, so skips should
// be rare.
type PairReader struct {
	filePath string
	fileType string // "xlsx" or "csv"
}

// NewPairReader creates a reader that handles both Excel and CSV files
func NewPairReader(filePath string) *PairReader {
	ext := strings.ToLower(filepath.Ext(filePath))
	fileType := "xlsx"
	if ext == ".csv" {
		fileType = "csv"
	}
	return &PairReader{filePath: filePath, fileType: fileType}
}

// ReadPairs reads the two score vectors for one analysis condition
func (r *PairReader) ReadPairs(ctx context.Context) ([]float64, []float64, error) {
	if _, err := os.Stat(r.filePath); os.IsNotExist(err) {
		return nil, nil, fmt.Errorf("%s file not found: %s", strings.ToUpper(r.fileType), r.filePath)
	}

	switch r.fileType {
	case "csv":
		return r.readCSVPairs()
	default:
		return r.readExcelPairs()
	}
}

// readExcelPairs reads the first sheet's first two columns
func (r *PairReader) readExcelPairs() ([]float64, []float64, error) {
	f, err := excelize.OpenFile(r.filePath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil, fmt.Errorf("Excel file has no sheets: %s", r.filePath)
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read sheet %s: %w", sheets[0], err)
	}
	return parsePairRows(rows, r.filePath)
}

// readCSVPairs reads a two-column CSV
func (r *PairReader) readCSVPairs() ([]float64, []float64, error) {
	file, err := os.Open(r.filePath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse CSV: %w", err)
	}
	return parsePairRows(records, r.filePath)
}

// parsePairRows converts raw rows (header first) into paired score vectors
func parsePairRows(rows [][]string, source string) ([]float64, []float64, error) {
	if len(rows) < 2 {
		return nil, nil, fmt.Errorf("no data rows in %s", source)
	}

	prior := make([]float64, 0, len(rows)-1)
	current := make([]float64, 0, len(rows)-1)
	skipped := 0

	for i, row := range rows[1:] {
		if len(row) < 2 {
			skipped++
			continue
		}
		x, errX := strconv.ParseFloat(strings.TrimSpace(row[0]), 64)
		y, errY := strconv.ParseFloat(strings.TrimSpace(row[1]), 64)
		if errX != nil || errY != nil {
			log.Printf("[PairReader] skipping row %d of %s: non-numeric cells", i+2, source)
			skipped++
			continue
		}
		prior = append(prior, x)
		current = append(current, y)
	}

	if skipped > 0 {
		log.Printf("[PairReader] %s: %d rows skipped, %d pairs read", source, skipped, len(prior))
	}
	if len(prior) == 0 {
		return nil, nil, fmt.Errorf("no numeric pairs in %s", source)
	}
	return prior, current, nil
}

var _ ports.PairReader = (*PairReader)(nil)

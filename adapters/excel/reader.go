package excel

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"adpulse/domain/core"
	"adpulse/domain/ingest"
	"adpulse/internal"
)

// DataReader reads raw tabular data from Excel and CSV report exports
type DataReader struct {
	filePath string
	fileType string // "xlsx" or "csv"
	logger   *internal.Logger
}

// NewDataReader creates a reader that handles both Excel and CSV files
func NewDataReader(filePath string) *DataReader {
	ext := strings.ToLower(filepath.Ext(filePath))
	fileType := "xlsx"
	if ext == ".csv" {
		fileType = "csv"
	}
	return &DataReader{
		filePath: filePath,
		fileType: fileType,
		logger:   internal.DefaultLogger.WithPrefix("reader"),
	}
}

// SourceName identifies the source for logging
func (r *DataReader) SourceName() string {
	return r.filePath
}

// ReadColumns reads the file into raw named columns. Cells stay untyped raw
// values; numeric cleaning is the coercer's job.
func (r *DataReader) ReadColumns() (map[core.ColumnKey]ingest.Column, error) {
	data, err := r.ReadData()
	if err != nil {
		return nil, err
	}
	return data.Columns, nil
}

// ReadData reads the file into structured tabular form
func (r *DataReader) ReadData() (*TableData, error) {
	if _, err := os.Stat(r.filePath); os.IsNotExist(err) {
		return nil, fmt.Errorf("%s file not found: %s", strings.ToUpper(r.fileType), r.filePath)
	}

	switch r.fileType {
	case "csv":
		return r.readCSVData()
	case "xlsx":
		return r.readExcelData()
	default:
		return nil, fmt.Errorf("unsupported file type: %s", r.fileType)
	}
}

// readExcelData reads Sheet1 into structured form
func (r *DataReader) readExcelData() (*TableData, error) {
	start := time.Now()
	f, err := excelize.OpenFile(r.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows("Sheet1")
	if err != nil {
		return nil, fmt.Errorf("failed to read Sheet1: %w", err)
	}

	r.logger.Debug("read %s in %.2fms (%d rows)",
		r.filePath, float64(time.Since(start).Nanoseconds())/1e6, len(rows))

	if len(rows) < 2 {
		return nil, fmt.Errorf("Excel file must have at least a header row and one data row")
	}

	return r.processRows(rows)
}

// readCSVData reads the CSV into structured form
func (r *DataReader) readCSVData() (*TableData, error) {
	f, err := os.Open(r.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1 // ragged exports are common
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV file: %w", err)
	}

	if len(rows) < 2 {
		return nil, fmt.Errorf("CSV file must have at least a header row and one data row")
	}

	return r.processRows(rows)
}

// processRows converts header + data rows into named raw columns
func (r *DataReader) processRows(rows [][]string) (*TableData, error) {
	headerRow := rows[0]
	dataRows := rows[1:]

	headers := make([]core.ColumnKey, 0, len(headerRow))
	columns := make(map[core.ColumnKey]ingest.Column, len(headerRow))
	for _, raw := range headerRow {
		name := strings.TrimSpace(raw)
		if name == "" {
			continue
		}
		key := core.ColumnKey(name)
		if _, dup := columns[key]; dup {
			// Two headers feeding one map entry would double-append every
			// row and break the equal-length column guarantee.
			return nil, fmt.Errorf("duplicate header %q in %s", name, r.filePath)
		}
		headers = append(headers, key)
		columns[key] = make(ingest.Column, 0, len(dataRows))
	}
	if len(headers) == 0 {
		return nil, fmt.Errorf("no usable headers in %s", r.filePath)
	}

	for _, row := range dataRows {
		col := 0
		for i, raw := range headerRow {
			if strings.TrimSpace(raw) == "" {
				continue
			}
			key := headers[col]
			col++
			if i < len(row) {
				columns[key] = append(columns[key], ingest.NewTextValue(strings.TrimSpace(row[i])))
			} else {
				// Short row: pad with a missing marker to keep lengths equal.
				columns[key] = append(columns[key], ingest.NewMissingValue())
			}
		}
	}

	r.logger.Info("loaded %s: %d columns, %d rows", r.filePath, len(headers), len(dataRows))

	return &TableData{
		Headers:  headers,
		Columns:  columns,
		RowCount: len(dataRows),
	}, nil
}

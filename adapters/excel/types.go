package excel

import (
	"adpulse/domain/core"
	"adpulse/domain/ingest"
)

// TableData holds a raw tabular dataset read from a spreadsheet or CSV:
// ordered headers plus one raw cell column per header. Columns keep the
// source row order; short rows are padded with missing markers so every
// column has the same length.
type TableData struct {
	Headers  []core.ColumnKey
	Columns  map[core.ColumnKey]ingest.Column
	RowCount int
}

// Column returns the raw column for a header, or nil when absent.
func (d *TableData) Column(key core.ColumnKey) ingest.Column {
	return d.Columns[key]
}

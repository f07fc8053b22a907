package ports

import (
	"adpulse/domain/core"
	"adpulse/domain/ingest"
)

// TableReader produces raw named columns from an external tabular source
// (spreadsheet, CSV export, API dump). Sourcing is outside the core's
// responsibility; the core only requires ordered cell sequences per column.
type TableReader interface {
	// ReadColumns returns every column in the source keyed by header.
	ReadColumns() (map[core.ColumnKey]ingest.Column, error)

	// SourceName identifies the source for logging.
	SourceName() string
}

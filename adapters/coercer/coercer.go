package coercer

import (
	"context"
	"math"
	"regexp"
	"strconv"

	"golang.org/x/sync/errgroup"

	"adpulse/domain/core"
	"adpulse/domain/ingest"
	"adpulse/internal"
)

// numericStrip removes everything except digits, the decimal point and the
// minus sign. One pass handles currency codes ("AED", "SAR"), thousands
// separators, percent signs and surrounding whitespace alike.
var numericStrip = regexp.MustCompile(`[^0-9.\-]`)

// NormalizerConfig defines the fallback policy for unparseable cells
type NormalizerConfig struct {
	FallbackValue float64 `json:"fallback_value"` // Substituted for unparseable/missing cells
	LogStripped   bool    `json:"log_stripped"`   // Debug-log intermediate stripped values
}

// DefaultNormalizerConfig returns the policy the dashboard runs with
func DefaultNormalizerConfig() NormalizerConfig {
	return NormalizerConfig{FallbackValue: 0.0}
}

// NumericNormalizer converts columns of heterogeneous raw cells into
// well-defined float columns. Malformed source data is expected and never
// raises: failures are absorbed into the fallback value, and the per-column
// fallback count is surfaced so data-quality regressions stay visible.
type NumericNormalizer struct {
	config NormalizerConfig
	logger *internal.Logger
}

// NewNumericNormalizer creates a normalizer with the given config
func NewNumericNormalizer(config NormalizerConfig) *NumericNormalizer {
	return &NumericNormalizer{
		config: config,
		logger: internal.DefaultLogger.WithPrefix("coercer"),
	}
}

// CleanedColumn holds the normalized values for one column. Values always
// has the same length and order as the input column, and every entry is a
// finite float.
type CleanedColumn struct {
	Key       core.ColumnKey `json:"key,omitempty"`
	Values    []float64      `json:"values"`
	Fallbacks int            `json:"fallbacks"` // Cells that fell back to the default
}

// Sum returns the total of the cleaned values.
func (c CleanedColumn) Sum() float64 {
	var total float64
	for _, v := range c.Values {
		total += v
	}
	return total
}

// NormalizeColumn converts one raw column into a cleaned numeric column.
// Order and length are preserved; the operation is idempotent since its
// output is already purely numeric.
func (n *NumericNormalizer) NormalizeColumn(column ingest.Column) CleanedColumn {
	cleaned := CleanedColumn{Values: make([]float64, len(column))}

	for i, cell := range column {
		val, ok := n.normalizeCell(cell)
		if !ok {
			val = n.config.FallbackValue
			cleaned.Fallbacks++
		}
		cleaned.Values[i] = val
	}

	if cleaned.Fallbacks > 0 {
		n.logger.Debug("normalized %d cells, %d fell back to %.2f",
			len(column), cleaned.Fallbacks, n.config.FallbackValue)
	}

	return cleaned
}

// NormalizeValues is a convenience wrapper over untyped cells.
func (n *NumericNormalizer) NormalizeValues(raw []interface{}) CleanedColumn {
	return n.NormalizeColumn(ingest.ColumnFromAny(raw))
}

// NormalizeTable normalizes independent columns concurrently. Columns share
// no state, so they fan out one goroutine each; results keep the input
// keying. The group context is only consulted between columns since a
// single column is cheap and never blocks.
func (n *NumericNormalizer) NormalizeTable(ctx context.Context, columns map[core.ColumnKey]ingest.Column) (map[core.ColumnKey]CleanedColumn, error) {
	results := make(map[core.ColumnKey]CleanedColumn, len(columns))
	g, ctx := errgroup.WithContext(ctx)

	type keyed struct {
		key core.ColumnKey
		col CleanedColumn
	}
	out := make(chan keyed, len(columns))

	for key, column := range columns {
		key, column := key, column
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			col := n.NormalizeColumn(column)
			col.Key = key
			out <- keyed{key: key, col: col}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	close(out)

	for item := range out {
		results[item.key] = item.col
	}
	return results, nil
}

// normalizeCell runs the strip-then-parse pipeline on a single cell.
// A cell with no extractable digits reports !ok rather than an error.
func (n *NumericNormalizer) normalizeCell(cell ingest.Value) (float64, bool) {
	text := cell.Text()
	if text == "" {
		return 0, false
	}

	stripped := numericStrip.ReplaceAllString(text, "")
	if n.config.LogStripped {
		n.logger.Debug("stripped %q -> %q", text, stripped)
	}
	if stripped == "" {
		return 0, false
	}

	val, err := strconv.ParseFloat(stripped, 64)
	if err != nil {
		return 0, false
	}
	if math.IsNaN(val) || math.IsInf(val, 0) {
		return 0, false
	}
	return val, true
}

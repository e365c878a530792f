// Package schema infers destination column types from flattened records and
// renders the advisory DDL for tables that do not exist yet.
package schema

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// DefaultSampleSize is how many records Infer looks at per run.
const DefaultSampleSize = 10

// ColumnType is a Postgres column type as used in the destination schema.
type ColumnType string

const (
	TypeText      ColumnType = "text"
	TypeBoolean   ColumnType = "boolean"
	TypeInteger   ColumnType = "integer"
	TypeNumeric   ColumnType = "numeric"
	TypeTimestamp ColumnType = "timestamp with time zone"
	TypeJSON      ColumnType = "jsonb"
)

// Column is one inferred destination column.
type Column struct {
	Name string
	Type ColumnType
}

// timestampLayouts are the string shapes classified as timestamps. A trailing
// "Z" is covered by RFC 3339.
var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// TypeOf maps a single record value to a column type. Nil maps to text, the
// least committal choice.
func TypeOf(value any) ColumnType {
	switch v := value.(type) {
	case nil:
		return TypeText
	case bool:
		return TypeBoolean
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return TypeInteger
	case float32, float64:
		return TypeNumeric
	case decimal.Decimal:
		return TypeNumeric
	case string:
		for _, layout := range timestampLayouts {
			if _, err := time.Parse(layout, v); err == nil {
				return TypeTimestamp
			}
		}

		return TypeText
	case []any, map[string]any:
		return TypeJSON
	default:
		return TypeText
	}
}

// Infer derives a column list from a bounded sample of records. Each field's
// type is decided by majority vote over the sample; on a tie the type seen
// first wins, so a field that is an integer in the first record and a
// timestamp in the second comes out as integer. Columns are returned in
// alphabetical order.
//
// sampleSize values below one fall back to DefaultSampleSize.
func Infer(records []map[string]any, sampleSize int) []Column {
	if len(records) == 0 {
		return nil
	}

	if sampleSize < 1 {
		sampleSize = DefaultSampleSize
	}

	if sampleSize > len(records) {
		sampleSize = len(records)
	}

	votes := make(map[string]map[ColumnType]int)
	order := make(map[string]map[ColumnType]int)
	seen := 0

	for _, record := range records[:sampleSize] {
		for field, value := range record {
			t := TypeOf(value)

			if votes[field] == nil {
				votes[field] = make(map[ColumnType]int)
				order[field] = make(map[ColumnType]int)
			}

			if _, ok := order[field][t]; !ok {
				order[field][t] = seen
				seen++
			}

			votes[field][t]++
		}
	}

	columns := make([]Column, 0, len(votes))
	for field, fieldVotes := range votes {
		columns = append(columns, Column{Name: field, Type: winner(fieldVotes, order[field])})
	}

	sort.Slice(columns, func(i, j int) bool {
		return columns[i].Name < columns[j].Name
	})

	return columns
}

func winner(votes map[ColumnType]int, order map[ColumnType]int) ColumnType {
	best := TypeText
	bestVotes := -1

	for t, n := range votes {
		if n > bestVotes || (n == bestVotes && order[t] < order[best]) {
			best = t
			bestVotes = n
		}
	}

	return best
}

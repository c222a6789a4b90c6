package fill

import (
	"time"

	"constituent-clean/internal/interest"
	"constituent-clean/internal/table"
)

// Policy maps a column kind to its fill value for missing cells. It is a
// plain data table so schema changes stay a one-line edit.
type Policy map[table.Kind]any

// DefaultPolicy mirrors the historical defaults: text columns get
// "Not Available", numbers zero, dates a fixed sentinel, and the merged
// interest column its own "No Known Interests" sentinel.
func DefaultPolicy() Policy {
	return Policy{
		table.String: "Not Available",
		table.Float:  0.0,
		table.Int:    0,
		table.Bool:   false,
		table.Time:   time.Date(1900, time.January, 1, 0, 0, 0, 0, time.UTC),
		table.List:   []string{},
		table.Object: interest.NoKnownInterests,
	}
}

// Apply replaces every nil cell with the policy default for its column's
// kind and returns the number of cells filled. Columns without nils are
// still checked, just untouched. Kinds absent from the policy fall back to
// "Not Available".
func Apply(t *table.Table, p Policy) int {
	filled := 0
	for _, col := range t.Columns() {
		def, ok := p[t.KindOf(col)]
		if !ok {
			def = "Not Available"
		}
		for i := 0; i < t.Len(); i++ {
			v, _ := t.Get(i, col)
			if v != nil {
				continue
			}
			t.Set(i, col, def)
			filled++
		}
	}
	return filled
}

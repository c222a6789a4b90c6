package table

import (
	"math/rand"
	"sort"
	"strings"
)

// Kind is the declared type of a column. Cells hold the matching Go value
// (string, float64, int, bool, time.Time, []string) or nil when missing.
// Object covers values the table does not interpret, like the merged
// interest sets.
type Kind int

const (
	String Kind = iota
	Float
	Int
	Bool
	Time
	List
	Object
)

// Table is a small dynamic-schema table: ordered named columns, each with a
// declared Kind, and rows of cells where nil means missing. It only supports
// the operations this pipeline needs; it is not a general dataframe.
type Table struct {
	cols  []string
	kinds []Kind
	index map[string]int
	rows  [][]any
}

// New creates an empty table with the given columns, all of String kind.
func New(cols []string) *Table {
	t := &Table{
		cols:  make([]string, len(cols)),
		kinds: make([]Kind, len(cols)),
		index: make(map[string]int, len(cols)),
	}
	copy(t.cols, cols)
	for i, c := range cols {
		t.index[c] = i
	}
	return t
}

func (t *Table) Columns() []string {
	out := make([]string, len(t.cols))
	copy(out, t.cols)
	return out
}

func (t *Table) Len() int { return len(t.rows) }

func (t *Table) HasColumn(name string) bool {
	_, ok := t.index[name]
	return ok
}

// KindOf returns String for unknown columns.
func (t *Table) KindOf(name string) Kind {
	if i, ok := t.index[name]; ok {
		return t.kinds[i]
	}
	return String
}

func (t *Table) SetKind(name string, k Kind) bool {
	i, ok := t.index[name]
	if !ok {
		return false
	}
	t.kinds[i] = k
	return true
}

// AddColumn appends a nil-filled column. Adding an existing column only
// updates its kind.
func (t *Table) AddColumn(name string, k Kind) {
	if i, ok := t.index[name]; ok {
		t.kinds[i] = k
		return
	}
	t.index[name] = len(t.cols)
	t.cols = append(t.cols, name)
	t.kinds = append(t.kinds, k)
	for i := range t.rows {
		t.rows[i] = append(t.rows[i], nil)
	}
}

// Drop removes the named columns. Absent names are tolerated silently.
func (t *Table) Drop(names ...string) {
	drop := make(map[int]bool, len(names))
	for _, n := range names {
		if i, ok := t.index[n]; ok {
			drop[i] = true
		}
	}
	if len(drop) == 0 {
		return
	}

	keep := make([]int, 0, len(t.cols)-len(drop))
	for i := range t.cols {
		if !drop[i] {
			keep = append(keep, i)
		}
	}

	cols := make([]string, len(keep))
	kinds := make([]Kind, len(keep))
	index := make(map[string]int, len(keep))
	for j, i := range keep {
		cols[j] = t.cols[i]
		kinds[j] = t.kinds[i]
		index[cols[j]] = j
	}
	for r, row := range t.rows {
		nrow := make([]any, len(keep))
		for j, i := range keep {
			nrow[j] = row[i]
		}
		t.rows[r] = nrow
	}
	t.cols, t.kinds, t.index = cols, kinds, index
}

// Rename reports whether the column existed. Renaming onto an existing
// column name is refused.
func (t *Table) Rename(from, to string) bool {
	i, ok := t.index[from]
	if !ok {
		return false
	}
	if _, exists := t.index[to]; exists && to != from {
		return false
	}
	delete(t.index, from)
	t.cols[i] = to
	t.index[to] = i
	return true
}

// AppendRow pads or truncates cells to the current column count.
func (t *Table) AppendRow(cells []any) {
	row := make([]any, len(t.cols))
	copy(row, cells)
	t.rows = append(t.rows, row)
}

func (t *Table) Get(row int, col string) (any, bool) {
	i, ok := t.index[col]
	if !ok || row < 0 || row >= len(t.rows) {
		return nil, false
	}
	return t.rows[row][i], true
}

func (t *Table) Set(row int, col string, v any) bool {
	i, ok := t.index[col]
	if !ok || row < 0 || row >= len(t.rows) {
		return false
	}
	t.rows[row][i] = v
	return true
}

// IsMissing treats nil and blank/whitespace-only strings as missing.
func IsMissing(v any) bool {
	if v == nil {
		return true
	}
	if s, ok := v.(string); ok {
		return strings.TrimSpace(s) == ""
	}
	return false
}

// Text returns the cell as a string, or "" when it is missing or not a
// string value.
func (t *Table) Text(row int, col string) string {
	v, ok := t.Get(row, col)
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}

// DedupeBy keeps the first row per key value and returns how many rows were
// removed. Rows with a missing key are kept.
func (t *Table) DedupeBy(col string) int {
	i, ok := t.index[col]
	if !ok {
		return 0
	}
	seen := make(map[any]bool, len(t.rows))
	kept := t.rows[:0]
	removed := 0
	for _, row := range t.rows {
		k := row[i]
		if IsMissing(k) {
			kept = append(kept, row)
			continue
		}
		if seen[k] {
			removed++
			continue
		}
		seen[k] = true
		kept = append(kept, row)
	}
	t.rows = kept
	return removed
}

// Sample keeps n pseudo-randomly chosen rows. The seed is fixed by the
// caller so runs are reproducible. n <= 0 or n >= Len is a no-op.
func (t *Table) Sample(n int, seed int64) {
	if n <= 0 || n >= len(t.rows) {
		return
	}
	r := rand.New(rand.NewSource(seed))
	idx := r.Perm(len(t.rows))[:n]
	sort.Ints(idx)
	rows := make([][]any, 0, n)
	for _, i := range idx {
		rows = append(rows, t.rows[i])
	}
	t.rows = rows
}

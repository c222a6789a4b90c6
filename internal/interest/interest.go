package interest

import (
	"fmt"
	"sort"
	"strings"

	"constituent-clean/internal/clean"
	"constituent-clean/internal/table"
	"constituent-clean/internal/warn"
)

const Stage = "interest"

// NoKnownInterests is the sentinel for constituents absent from the interest
// table. A string, not nil: it distinguishes "known absence" from an
// unfilled cell.
const NoKnownInterests = "No Known Interests"

const (
	ColInterests   = "Interests"
	colCategory    = "Interest Category"
	colSubcategory = "Interest Subcategory"
	colLevel       = "Interest Level"
)

// Entry is one interest a constituent holds within a category.
type Entry struct {
	Subcategory string
	Level       string
}

// Set maps interest category to its entry for one constituent.
type Set map[string]Entry

// String renders the set deterministically for CSV output.
func (s Set) String() string {
	cats := make([]string, 0, len(s))
	for c := range s {
		cats = append(cats, c)
	}
	sort.Strings(cats)

	parts := make([]string, 0, len(cats))
	for _, c := range cats {
		e := s[c]
		parts = append(parts, fmt.Sprintf("%s: %s (%s)", c, e.Subcategory, e.Level))
	}
	return strings.Join(parts, "; ")
}

// BuildLookup indexes the interest side table by constituent id. Multiple
// rows for the same id/category overwrite: last write wins.
func BuildLookup(t *table.Table) (map[string]Set, []warn.Warning) {
	var ws []warn.Warning

	if t.HasColumn(clean.SrcLookupID) {
		t.Rename(clean.SrcLookupID, clean.ColLID)
	}
	if !t.HasColumn(clean.ColLID) {
		return nil, append(ws, warn.Table(Stage, clean.ColLID, "interest table has no lookup id; nothing to merge"))
	}

	lookup := make(map[string]Set)
	for i := 0; i < t.Len(); i++ {
		id := t.Text(i, clean.ColLID)
		if id == "" {
			continue
		}
		cat := t.Text(i, colCategory)
		set, ok := lookup[id]
		if !ok {
			set = make(Set)
			lookup[id] = set
		}
		set[cat] = Entry{
			Subcategory: t.Text(i, colSubcategory),
			Level:       t.Text(i, colLevel),
		}
	}
	return lookup, ws
}

// Merge attaches the interest sets to the main table. Unknown ids get the
// NoKnownInterests sentinel. When the main table has no LID column (the
// normalizer's recoverable early-return state) every row gets the sentinel
// and a warning is recorded.
func Merge(main *table.Table, lookup map[string]Set) []warn.Warning {
	var ws []warn.Warning

	main.AddColumn(ColInterests, table.Object)
	if !main.HasColumn(clean.ColLID) {
		ws = append(ws, warn.Table(Stage, clean.ColLID, "main table has no LID; all rows marked %q", NoKnownInterests))
		for i := 0; i < main.Len(); i++ {
			main.Set(i, ColInterests, NoKnownInterests)
		}
		return ws
	}

	for i := 0; i < main.Len(); i++ {
		id := main.Text(i, clean.ColLID)
		if set, ok := lookup[id]; ok {
			main.Set(i, ColInterests, set)
		} else {
			main.Set(i, ColInterests, NoKnownInterests)
		}
	}
	return ws
}

// ApplyMergedEdits disambiguates the two "last recognition transaction" date
// columns by program and de-duplicates by LID keeping the first occurrence.
func ApplyMergedEdits(t *table.Table) []warn.Warning {
	var ws []warn.Warning

	t.Rename("Date of Last Recognition Transaction", "Date of Last UM Recognition Transaction")
	t.Rename("Date of Last Recognition Transaction.1", "Date of Last ISR Recognition Transaction")

	if !t.HasColumn(clean.ColLID) {
		ws = append(ws, warn.Table(Stage, clean.ColLID, "no LID column; skipping de-duplication"))
		return ws
	}
	if removed := t.DedupeBy(clean.ColLID); removed > 0 {
		ws = append(ws, warn.Table(Stage, clean.ColLID, "removed %d duplicate rows", removed))
	}
	return ws
}

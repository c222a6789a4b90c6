package affil

import (
	"sort"
	"strings"

	"constituent-clean/internal/table"
	"constituent-clean/internal/warn"
)

const Stage = "affiliation"

const (
	// SourceColumn holds the raw multi-valued field from the export.
	SourceColumn = "Constituent Affiliation"
	// ListColumn receives the parsed token set per row.
	ListColumn = "Affiliation List"
	// FlagPrefix prefixes one boolean column per distinct token.
	FlagPrefix = "Affiliation: "
)

// ParseTokens splits a raw affiliation value on newlines and commas into a
// de-duplicated, trimmed token list. A missing value parses to an empty set.
func ParseTokens(v any) []string {
	if v == nil {
		return nil
	}
	s, ok := v.(string)
	if !ok {
		return nil
	}

	s = strings.ReplaceAll(s, "\n", ",")
	seen := make(map[string]bool)
	var out []string
	for _, part := range strings.Split(s, ",") {
		tok := strings.TrimSpace(part)
		if tok == "" || seen[tok] {
			continue
		}
		seen[tok] = true
		out = append(out, tok)
	}
	return out
}

// Expand parses every row's affiliation field and adds one boolean flag
// column per token observed anywhere in the table. The token universe
// requires a full pass, so flag columns are created only after the scan.
// Returns the sorted token list.
func Expand(t *table.Table) ([]string, []warn.Warning) {
	if !t.HasColumn(SourceColumn) {
		return nil, []warn.Warning{warn.Table(Stage, SourceColumn, "column missing; no affiliation flags created")}
	}

	t.AddColumn(ListColumn, table.List)

	universe := make(map[string]bool)
	perRow := make([][]string, t.Len())
	for i := 0; i < t.Len(); i++ {
		raw, _ := t.Get(i, SourceColumn)
		toks := ParseTokens(raw)
		perRow[i] = toks
		t.Set(i, ListColumn, toks)
		for _, tok := range toks {
			universe[tok] = true
		}
	}

	tokens := make([]string, 0, len(universe))
	for tok := range universe {
		tokens = append(tokens, tok)
	}
	sort.Strings(tokens)

	for _, tok := range tokens {
		col := FlagPrefix + tok
		t.AddColumn(col, table.Bool)
		for i := range perRow {
			t.Set(i, col, contains(perRow[i], tok))
		}
	}

	return tokens, nil
}

func contains(toks []string, tok string) bool {
	for _, t := range toks {
		if t == tok {
			return true
		}
	}
	return false
}

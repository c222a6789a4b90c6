package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/andybalholm/brotli"

	"constituent-clean/internal/affil"
	"constituent-clean/internal/table"
	"constituent-clean/internal/warn"
)

const Stage = "export"

// WriteMaster writes the full table to path as CSV, header first.
func WriteMaster(path string, t *table.Table) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("export: create %s: %w", path, err)
	}
	defer f.Close()

	if err := writeCSV(f, t); err != nil {
		return fmt.Errorf("export: write %s: %w", path, err)
	}
	return nil
}

// WriteBrotli writes a compressed copy of the same CSV bytes to path+".br".
func WriteBrotli(path string, t *table.Table) error {
	out := path + ".br"
	f, err := os.Create(out)
	if err != nil {
		return fmt.Errorf("export: create %s: %w", out, err)
	}
	defer f.Close()

	bw := brotli.NewWriter(f)
	if err := writeCSV(bw, t); err != nil {
		return fmt.Errorf("export: write %s: %w", out, err)
	}
	if err := bw.Close(); err != nil {
		return fmt.Errorf("export: close %s: %w", out, err)
	}
	return nil
}

// WriteAffiliationLayers writes one CSV per token containing the rows where
// that token's flag is true. Tokens with no matching rows produce no file.
func WriteAffiliationLayers(dir string, t *table.Table, tokens []string) ([]warn.Warning, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("export: mkdir %s: %w", dir, err)
	}

	var ws []warn.Warning
	for _, tok := range tokens {
		col := affil.FlagPrefix + tok
		if !t.HasColumn(col) {
			ws = append(ws, warn.Table(Stage, col, "flag column missing; layer skipped"))
			continue
		}

		var rows []int
		for i := 0; i < t.Len(); i++ {
			if v, _ := t.Get(i, col); v == true {
				rows = append(rows, i)
			}
		}
		if len(rows) == 0 {
			continue
		}

		path := filepath.Join(dir, LayerFileName(tok))
		if err := writeRows(path, t, rows); err != nil {
			return ws, err
		}
	}
	return ws, nil
}

// LayerFileName derives a safe file name from an affiliation token.
func LayerFileName(token string) string {
	name := strings.ReplaceAll(token, " ", "_")
	name = strings.ReplaceAll(name, "/", "-")
	return name + "-layer.csv"
}

func writeRows(path string, t *table.Table, rows []int) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("export: create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	cols := t.Columns()
	if err := w.Write(cols); err != nil {
		return err
	}
	for _, i := range rows {
		if err := w.Write(renderRow(t, cols, i)); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func writeCSV(w io.Writer, t *table.Table) error {
	cw := csv.NewWriter(w)
	cols := t.Columns()
	if err := cw.Write(cols); err != nil {
		return err
	}
	for i := 0; i < t.Len(); i++ {
		if err := cw.Write(renderRow(t, cols, i)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func renderRow(t *table.Table, cols []string, row int) []string {
	out := make([]string, len(cols))
	for j, col := range cols {
		v, _ := t.Get(row, col)
		out[j] = formatCell(v)
	}
	return out
}

func formatCell(v any) string {
	switch c := v.(type) {
	case nil:
		return ""
	case string:
		return c
	case float64:
		return strconv.FormatFloat(c, 'f', -1, 64)
	case int:
		return strconv.Itoa(c)
	case bool:
		return strconv.FormatBool(c)
	case time.Time:
		return c.Format("2006-01-02")
	case []string:
		return strings.Join(c, ", ")
	case fmt.Stringer:
		return c.String()
	}
	return fmt.Sprint(v)
}

package load

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"constituent-clean/internal/table"
)

var ErrUnsupportedFormat = errors.New("load: unsupported file format")

// sampleSeed keeps subsampled runs reproducible across invocations.
const sampleSeed = 1

type Options struct {
	// Sample keeps only n pseudo-randomly chosen rows when > 0.
	Sample int
}

// Load reads a .csv or .xlsx file into a table. The first row is the header;
// empty cells load as missing. Every column starts as String kind.
func Load(path string, opts Options) (*table.Table, error) {
	var (
		t   *table.Table
		err error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		t, err = loadCSV(path)
	case ".xlsx":
		t, err = loadXLSX(path)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
	if err != nil {
		return nil, err
	}

	if opts.Sample > 0 {
		t.Sample(opts.Sample, sampleSeed)
	}
	return t, nil
}

func loadCSV(path string) (*table.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("load: open %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("load: read %s: %w", path, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("load: %s has no header row", path)
	}

	t := table.New(rows[0])
	for _, row := range rows[1:] {
		t.AppendRow(toCells(row))
	}
	return t, nil
}

func loadXLSX(path string) (*table.Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("load: open %s: %w", path, err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, fmt.Errorf("load: %s has no sheets", path)
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("load: read sheet %s: %w", sheet, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("load: %s has no header row", path)
	}

	t := table.New(rows[0])
	for _, row := range rows[1:] {
		// excelize trims trailing empty cells; AppendRow pads with nil.
		t.AppendRow(toCells(row))
	}
	return t, nil
}

func toCells(row []string) []any {
	cells := make([]any, len(row))
	for i, s := range row {
		if s == "" {
			continue
		}
		cells[i] = s
	}
	return cells
}

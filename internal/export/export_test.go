package export

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/andybalholm/brotli"

	"constituent-clean/internal/affil"
	"constituent-clean/internal/interest"
	"constituent-clean/internal/table"
)

func newOutputTable() *table.Table {
	tb := table.New([]string{"LID", "Age", "Amount", affil.FlagPrefix + "Alumni", "When", "Interests"})
	tb.SetKind("Age", table.Int)
	tb.SetKind("Amount", table.Float)
	tb.SetKind(affil.FlagPrefix+"Alumni", table.Bool)
	tb.SetKind("When", table.Time)
	tb.SetKind("Interests", table.Object)

	tb.AppendRow([]any{"L1", 44, 1234.5, true,
		time.Date(1900, 1, 1, 0, 0, 0, 0, time.UTC),
		interest.Set{"Arts": {Subcategory: "Theater", Level: "High"}}})
	tb.AppendRow([]any{"L2", 0, 0.0, false,
		time.Date(2024, 3, 18, 0, 0, 0, 0, time.UTC),
		interest.NoKnownInterests})
	return tb
}

func TestWriteMaster(t *testing.T) {
	path := filepath.Join(t.TempDir(), "processed_complete.csv")
	tb := newOutputTable()

	if err := WriteMaster(path, tb); err != nil {
		t.Fatalf("WriteMaster() error = %v", err)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading output: %v", err)
	}
	got := string(content)

	if !strings.HasPrefix(got, "LID,Age,Amount,Affiliation: Alumni,When,Interests\n") {
		t.Errorf("unexpected header: %q", got)
	}
	if !strings.Contains(got, "L1,44,1234.5,true,1900-01-01,Arts: Theater (High)\n") {
		t.Errorf("row 1 rendering wrong:\n%s", got)
	}
	if !strings.Contains(got, "L2,0,0,false,2024-03-18,No Known Interests\n") {
		t.Errorf("row 2 rendering wrong:\n%s", got)
	}
}

func TestWriteBrotliRoundTrips(t *testing.T) {
	dir := t.TempDir()
	plain := filepath.Join(dir, "out.csv")
	tb := newOutputTable()

	if err := WriteMaster(plain, tb); err != nil {
		t.Fatalf("WriteMaster() error = %v", err)
	}
	if err := WriteBrotli(plain, tb); err != nil {
		t.Fatalf("WriteBrotli() error = %v", err)
	}

	f, err := os.Open(plain + ".br")
	if err != nil {
		t.Fatalf("opening compressed copy: %v", err)
	}
	defer f.Close()

	decompressed, err := io.ReadAll(brotli.NewReader(f))
	if err != nil {
		t.Fatalf("decompressing: %v", err)
	}
	want, _ := os.ReadFile(plain)
	if !bytes.Equal(decompressed, want) {
		t.Error("compressed copy does not round-trip to the plain CSV bytes")
	}
}

func TestWriteAffiliationLayers(t *testing.T) {
	dir := t.TempDir()

	tb := table.New([]string{"LID", affil.FlagPrefix + "Alumni", affil.FlagPrefix + "Donor", affil.FlagPrefix + "Empty One"})
	tb.AppendRow([]any{"L1", true, false, false})
	tb.AppendRow([]any{"L2", true, true, false})

	ws, err := WriteAffiliationLayers(dir, tb, []string{"Alumni", "Donor", "Empty One", "Gone/Missing"})
	if err != nil {
		t.Fatalf("WriteAffiliationLayers() error = %v", err)
	}
	// Gone/Missing has no flag column -> warning
	if len(ws) != 1 {
		t.Fatalf("expected one warning, got %v", ws)
	}

	alumni, err := os.ReadFile(filepath.Join(dir, "Alumni-layer.csv"))
	if err != nil {
		t.Fatalf("expected Alumni layer: %v", err)
	}
	if lines := strings.Count(string(alumni), "\n"); lines != 3 {
		t.Errorf("Alumni layer should have header + 2 rows, got %d lines", lines)
	}

	donor, err := os.ReadFile(filepath.Join(dir, "Donor-layer.csv"))
	if err != nil {
		t.Fatalf("expected Donor layer: %v", err)
	}
	if !strings.Contains(string(donor), "L2") || strings.Contains(string(donor), "L1") {
		t.Errorf("Donor layer has wrong rows:\n%s", donor)
	}

	// a token with zero true rows produces no file
	if _, err := os.Stat(filepath.Join(dir, "Empty_One-layer.csv")); !os.IsNotExist(err) {
		t.Error("empty layer file should not be created")
	}
}

func TestLayerFileName(t *testing.T) {
	testCases := []struct {
		token    string
		expected string
	}{
		{"Alumni", "Alumni-layer.csv"},
		{"Parent of Student", "Parent_of_Student-layer.csv"},
		{"Faculty/Staff", "Faculty-Staff-layer.csv"},
	}
	for _, tc := range testCases {
		if got := LayerFileName(tc.token); got != tc.expected {
			t.Errorf("LayerFileName(%q) = %q, want %q", tc.token, got, tc.expected)
		}
	}
}

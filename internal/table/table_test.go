package table

import (
	"testing"
)

func TestAddAndDropColumns(t *testing.T) {
	tb := New([]string{"a", "b", "c"})
	tb.AppendRow([]any{"1", "2", "3"})
	tb.AppendRow([]any{"4", "5", "6"})

	tb.AddColumn("d", Float)
	if !tb.HasColumn("d") {
		t.Fatal("expected column d to exist")
	}
	if v, _ := tb.Get(0, "d"); v != nil {
		t.Errorf("new column should be nil-filled, got %v", v)
	}

	// dropping absent names is tolerated
	tb.Drop("b", "nope")
	if tb.HasColumn("b") {
		t.Error("expected column b to be dropped")
	}
	if got := tb.Columns(); len(got) != 3 {
		t.Fatalf("expected 3 columns, got %v", got)
	}
	if v, _ := tb.Get(1, "c"); v != "6" {
		t.Errorf("expected c=6 after drop, got %v", v)
	}
}

func TestRename(t *testing.T) {
	tb := New([]string{"Constituent LookupID", "x"})
	tb.AppendRow([]any{"L1", "v"})

	if !tb.Rename("Constituent LookupID", "LID") {
		t.Fatal("rename should succeed")
	}
	if tb.Rename("missing", "y") {
		t.Error("renaming a missing column should report false")
	}
	if tb.Rename("x", "LID") {
		t.Error("renaming onto an existing column should be refused")
	}
	if v, _ := tb.Get(0, "LID"); v != "L1" {
		t.Errorf("expected LID=L1, got %v", v)
	}
}

func TestAppendRowPads(t *testing.T) {
	tb := New([]string{"a", "b", "c"})
	tb.AppendRow([]any{"only"})
	if v, ok := tb.Get(0, "c"); !ok || v != nil {
		t.Errorf("short rows should pad with nil, got %v ok=%v", v, ok)
	}
}

func TestIsMissing(t *testing.T) {
	testCases := []struct {
		in       any
		expected bool
	}{
		{nil, true},
		{"", true},
		{"   ", true},
		{"x", false},
		{0.0, false},
		{0, false},
		{false, false},
	}
	for _, tc := range testCases {
		if got := IsMissing(tc.in); got != tc.expected {
			t.Errorf("IsMissing(%v) = %v, want %v", tc.in, got, tc.expected)
		}
	}
}

func TestDedupeByKeepsFirst(t *testing.T) {
	tb := New([]string{"LID", "v"})
	tb.AppendRow([]any{"A", "first"})
	tb.AppendRow([]any{"B", "b"})
	tb.AppendRow([]any{"A", "second"})
	tb.AppendRow([]any{nil, "no key"})
	tb.AppendRow([]any{nil, "no key either"})

	removed := tb.DedupeBy("LID")
	if removed != 1 {
		t.Fatalf("expected 1 removed, got %d", removed)
	}
	if tb.Len() != 4 {
		t.Fatalf("expected 4 rows, got %d", tb.Len())
	}
	if v, _ := tb.Get(0, "v"); v != "first" {
		t.Errorf("expected first occurrence kept, got %v", v)
	}
}

func TestSampleDeterministic(t *testing.T) {
	mk := func() *Table {
		tb := New([]string{"n"})
		for i := 0; i < 100; i++ {
			tb.AppendRow([]any{i})
		}
		return tb
	}

	a := mk()
	b := mk()
	a.Sample(10, 1)
	b.Sample(10, 1)

	if a.Len() != 10 || b.Len() != 10 {
		t.Fatalf("expected 10 rows, got %d and %d", a.Len(), b.Len())
	}
	for i := 0; i < 10; i++ {
		av, _ := a.Get(i, "n")
		bv, _ := b.Get(i, "n")
		if av != bv {
			t.Fatalf("same seed should give same sample, row %d: %v vs %v", i, av, bv)
		}
	}

	c := mk()
	c.Sample(200, 1)
	if c.Len() != 100 {
		t.Errorf("sampling more rows than exist should be a no-op, got %d", c.Len())
	}
}

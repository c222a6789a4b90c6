package geo

import (
	"context"
	"fmt"
	"strconv"

	pb "gopkg.in/cheggaaa/pb.v1"

	"constituent-clean/internal/clean"
	"constituent-clean/internal/concurrency"
	"constituent-clean/internal/table"
	"constituent-clean/internal/warn"
)

const Stage = "geocode"

// ColSystemID is the join key for previously-geocoded batches. It is a
// different identifier than LID; the geocoded reference files carry it.
const ColSystemID = "ConstituentSYSTEMID"

// Geocoder resolves a single-line address to coordinates.
type Geocoder interface {
	Geocode(ctx context.Context, address string) (lat, lng float64, err error)
}

// MergePrior left-joins previously-geocoded coordinates into main on
// ConstituentSYSTEMID. Every main row is preserved; unmatched rows keep nil
// coordinates. A prior table without coordinate columns is skipped with a
// warning, matching the historical behavior.
func MergePrior(main, prior *table.Table) []warn.Warning {
	var ws []warn.Warning

	if prior.HasColumn("latitude") && prior.HasColumn("longitude") {
		prior.Rename("latitude", clean.ColLat)
		prior.Rename("longitude", clean.ColLng)
	}
	if !prior.HasColumn(clean.ColLat) || !prior.HasColumn(clean.ColLng) {
		ws = append(ws, warn.Table(Stage, "",
			"prior geocoded table has no coordinate columns; skipping merge"))
		return ws
	}
	if !main.HasColumn(ColSystemID) || !prior.HasColumn(ColSystemID) {
		ws = append(ws, warn.Table(Stage, ColSystemID,
			"join key missing; skipping prior coordinate merge"))
		return ws
	}

	type coord struct{ lat, lng any }
	byID := make(map[string]coord, prior.Len())
	for i := 0; i < prior.Len(); i++ {
		id := prior.Text(i, ColSystemID)
		if id == "" {
			continue
		}
		lat, _ := prior.Get(i, clean.ColLat)
		lng, _ := prior.Get(i, clean.ColLng)
		byID[id] = coord{lat: toFloat(lat), lng: toFloat(lng)}
	}

	main.AddColumn(clean.ColLat, table.Float)
	main.AddColumn(clean.ColLng, table.Float)
	for i := 0; i < main.Len(); i++ {
		c, ok := byID[main.Text(i, ColSystemID)]
		if !ok {
			continue
		}
		if c.lat != nil && c.lng != nil {
			main.Set(i, clean.ColLat, c.lat)
			main.Set(i, clean.ColLng, c.lng)
		}
	}
	return ws
}

func toFloat(v any) any {
	switch n := v.(type) {
	case nil:
		return nil
	case float64:
		return n
	case string:
		f, err := strconv.ParseFloat(n, 64)
		if err != nil {
			return nil
		}
		return f
	}
	return nil
}

// Candidates returns row indices that still need geocoding: a coordinate is
// missing and all five home address components are present and non-blank.
func Candidates(t *table.Table) []int {
	var out []int
	for i := 0; i < t.Len(); i++ {
		lat, _ := t.Get(i, clean.ColLat)
		lng, _ := t.Get(i, clean.ColLng)
		if !table.IsMissing(lat) && !table.IsMissing(lng) {
			continue
		}
		complete := true
		for _, col := range clean.HomeAddressColumns {
			v, _ := t.Get(i, col)
			if table.IsMissing(v) {
				complete = false
				break
			}
		}
		if complete {
			out = append(out, i)
		}
	}
	return out
}

type Options struct {
	Workers  int
	Progress bool
}

// Fill geocodes every candidate row and writes both coordinates back in
// place. Failures are isolated per address: the row keeps nil coordinates,
// a warning is recorded, and the batch continues. Candidate rows are
// disjoint, so a bounded worker pool is safe; Workers <= 1 runs
// sequentially like the reference batch job.
func Fill(ctx context.Context, t *table.Table, coder Geocoder, opts Options) []warn.Warning {
	// The partially-normalized recovery path skips coordinate setup, so
	// make sure the write targets exist before spending geocoder calls.
	t.AddColumn(clean.ColLat, table.Float)
	t.AddColumn(clean.ColLng, table.Float)

	cands := Candidates(t)
	if len(cands) == 0 {
		return nil
	}

	var bar *pb.ProgressBar
	if opts.Progress {
		bar = pb.StartNew(len(cands))
	}

	fails := make([]*warn.Warning, len(cands))
	concurrency.ForEach(ctx, cands, concurrency.Options{MaxWorkers: opts.Workers},
		func(ctx context.Context, idx int, row int) error {
			defer func() {
				if bar != nil {
					bar.Increment()
				}
			}()

			addr := addressFor(t, row)
			lat, lng, err := coder.Geocode(ctx, addr)
			if err != nil {
				w := warn.RowLevel(Stage, row, "", "geocoding %q failed: %v", addr, err)
				fails[idx] = &w
				return fmt.Errorf("row %d: %q: %w", row, addr, err)
			}
			t.Set(row, clean.ColLat, lat)
			t.Set(row, clean.ColLng, lng)
			return nil
		})

	if bar != nil {
		bar.Finish()
	}

	var ws []warn.Warning
	for _, w := range fails {
		if w != nil {
			ws = append(ws, *w)
		}
	}
	return ws
}

func addressFor(t *table.Table, row int) string {
	street, _ := t.Get(row, clean.ColHomeAddress)
	city, _ := t.Get(row, clean.ColHomeCity)
	state, _ := t.Get(row, clean.ColHomeState)
	zip, _ := t.Get(row, clean.ColHomeZip)
	country, _ := t.Get(row, clean.ColHomeCountry)
	return clean.PrimaryAddress(street, city, state, zip, country)
}

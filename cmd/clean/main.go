package main

import (
	"context"
	"flag"
	"log"
	"os"
	"path/filepath"
	"time"

	"constituent-clean/internal/affil"
	"constituent-clean/internal/clean"
	"constituent-clean/internal/config"
	"constituent-clean/internal/export"
	"constituent-clean/internal/fill"
	"constituent-clean/internal/geo"
	"constituent-clean/internal/geo/arcgis"
	"constituent-clean/internal/interest"
	"constituent-clean/internal/load"
	"constituent-clean/internal/sftpclient"
	"constituent-clean/internal/warn"
)

func main() {
	var (
		inputPath     = flag.String("input", "", "primary constituent export (.csv or .xlsx), required")
		geocodedPath  = flag.String("geocoded", "", "previously-geocoded CSV keyed by ConstituentSYSTEMID (optional)")
		interestsPath = flag.String("interests", "", "interest data CSV keyed by Constituent LookupID (optional)")
		outPath       = flag.String("out", "processed_complete.csv", "master output CSV path")
		layersDir     = flag.String("layers", "affiliation_layers", "directory for per-affiliation CSV layers")
		sample        = flag.Int("sample", 0, "process only n randomly sampled rows (0 = all)")
		geoWorkers    = flag.Int("geo-workers", 0, "parallel geocoding calls (0 = GEO_WORKERS env, default 4; 1 = sequential)")
		noGeocode     = flag.Bool("no-geocode", false, "skip the geocoding fill entirely")
		brotliCopy    = flag.Bool("brotli", false, "also write a brotli-compressed copy of the master CSV")
		uploadSFTP    = flag.Bool("sftp", false, "upload the master CSV via SFTP after the run")
	)
	flag.Parse()

	if *inputPath == "" {
		log.Fatal("-input is required")
	}

	// geocoding a large batch can take hours
	rootCtx, rootCancel := context.WithTimeout(context.Background(), 8*time.Hour)
	defer rootCancel()

	cfg := config.Load()

	if dir := filepath.Dir(*outPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			log.Fatal(err)
		}
	}

	log.Printf("loading %s", *inputPath)
	data, err := load.Load(*inputPath, load.Options{Sample: *sample})
	if err != nil {
		log.Fatal(err)
	}
	log.Printf("loaded %d rows, %d columns", data.Len(), len(data.Columns()))

	var warnings []warn.Warning

	// prior coordinates
	if *geocodedPath != "" {
		if prior, err := load.Load(*geocodedPath, load.Options{}); err != nil {
			log.Printf("WARN: geocoded data not loaded: %v (full geocoding will apply)", err)
			warnings = append(warnings, warn.Table(geo.Stage, "", "prior coordinates not loaded: %v", err))
		} else {
			log.Printf("merging %d previously-geocoded rows", prior.Len())
			warnings = append(warnings, geo.MergePrior(data, prior)...)
		}
	} else {
		log.Print("no geocoded data provided; full geocoding will apply")
	}

	log.Print("normalizing schema")
	warnings = append(warnings, clean.Normalize(data)...)

	log.Print("expanding affiliations")
	tokens, ws := affil.Expand(data)
	warnings = append(warnings, ws...)
	log.Printf("found %d distinct affiliations", len(tokens))

	if !*noGeocode {
		workers := workerCount(*geoWorkers, cfg.GeoWorkers)
		coder := arcgis.New(cfg.ArcGISBaseURL, cfg.ArcGISAPIKey)
		cands := geo.Candidates(data)
		log.Printf("geocoding %d addresses with %d workers", len(cands), workers)
		warnings = append(warnings, geo.Fill(rootCtx, data, coder, geo.Options{
			Workers:  workers,
			Progress: true,
		})...)
	}

	// interests
	lookup := map[string]interest.Set{}
	if *interestsPath != "" {
		if side, err := load.Load(*interestsPath, load.Options{}); err != nil {
			log.Printf("WARN: interest data not loaded: %v", err)
			warnings = append(warnings, warn.Table(interest.Stage, "", "interest data not loaded: %v", err))
		} else {
			lookup, ws = interest.BuildLookup(side)
			warnings = append(warnings, ws...)
			log.Printf("built interest lookup for %d constituents", len(lookup))
		}
	} else {
		log.Print("no interest data provided; all rows marked with the sentinel")
	}
	warnings = append(warnings, interest.Merge(data, lookup)...)
	warnings = append(warnings, interest.ApplyMergedEdits(data)...)

	log.Print("filling missing values")
	filled := fill.Apply(data, fill.DefaultPolicy())
	log.Printf("filled %d cells", filled)

	log.Printf("writing %s (%d rows)", *outPath, data.Len())
	if err := export.WriteMaster(*outPath, data); err != nil {
		log.Fatal(err)
	}
	if *brotliCopy {
		if err := export.WriteBrotli(*outPath, data); err != nil {
			log.Fatal(err)
		}
	}

	ws, err = export.WriteAffiliationLayers(*layersDir, data, tokens)
	warnings = append(warnings, ws...)
	if err != nil {
		log.Fatal(err)
	}

	if *uploadSFTP {
		upCfg := sftpclient.Config{
			Host:                  cfg.SFTPHost,
			Port:                  cfg.SFTPPort,
			User:                  cfg.SFTPUser,
			Pass:                  cfg.SFTPPass,
			RemoteDir:             cfg.SFTPDir,
			InsecureIgnoreHostKey: cfg.SFTPInsecureIgnoreHostKey,
		}
		upCtx, upCancel := context.WithTimeout(rootCtx, 5*time.Minute)
		defer upCancel()
		if err := sftpclient.UploadFile(upCtx, upCfg, *outPath, filepath.Base(*outPath)); err != nil {
			log.Fatal(err)
		}
		log.Printf("uploaded to sftp://%s:%d%s/%s", upCfg.Host, upCfg.Port, upCfg.RemoteDir, filepath.Base(*outPath))
	}

	report(warnings)
}

func workerCount(flagVal, cfgVal int) int {
	if flagVal > 0 {
		return flagVal
	}
	if cfgVal > 0 {
		return cfgVal
	}
	return 1
}

func report(warnings []warn.Warning) {
	if len(warnings) == 0 {
		log.Print("done, no warnings")
		return
	}
	for _, w := range warnings {
		log.Printf("WARN: %s", w)
	}
	for stage, n := range warn.CountByStage(warnings) {
		log.Printf("done, %d warnings in stage %q", n, stage)
	}
}

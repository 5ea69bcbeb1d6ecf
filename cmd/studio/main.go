// Command studio imports a parsed layer batch into a composition, prints
// the resulting layer list and optionally saves the scene snapshot.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"log/slog"
	"os"
	"os/signal"

	"github.com/gogpu/studio"
	"github.com/gogpu/studio/config"
	"github.com/gogpu/studio/editor"
	"github.com/gogpu/studio/importer"
	"github.com/gogpu/studio/layer"
	"github.com/gogpu/studio/scene"
)

func main() {
	var (
		configPath = flag.String("config", "", "YAML configuration file")
		batchPath  = flag.String("batch", "", "parsed layer batch (JSON)")
		loadPath   = flag.String("load", "", "snapshot to open before importing")
		output     = flag.String("snapshot", "", "write the final snapshot to this file")
		width      = flag.Float64("width", 0, "canvas width, overrides the configuration")
		height     = flag.Float64("height", 0, "canvas height, overrides the configuration")
		keep       = flag.Bool("keep", false, "keep existing layers when importing")
		verbose    = flag.Bool("v", false, "debug logging")
	)
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		var err error
		if cfg, err = config.LoadFile(*configPath); err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
	}
	if *width > 0 {
		cfg.Canvas.Width = *width
	}
	if *height > 0 {
		cfg.Canvas.Height = *height
	}

	level, err := cfg.Log.SlogLevel()
	if err != nil {
		log.Fatal(err)
	}
	if *verbose {
		level = slog.LevelDebug
	}
	studio.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	ed, err := editor.New(cfg.Canvas.Width, cfg.Canvas.Height, editor.WithConfig(cfg))
	if err != nil {
		log.Fatalf("Failed to create editor: %v", err)
	}

	if *loadPath != "" {
		data, err := os.ReadFile(*loadPath)
		if err != nil {
			log.Fatal(err)
		}
		if err := ed.Load(scene.Snapshot(data)); err != nil {
			log.Fatalf("Failed to load snapshot: %v", err)
		}
	}

	if *batchPath != "" {
		if err := importBatch(ctx, ed, *batchPath, !*keep); err != nil {
			log.Fatal(err)
		}
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(ed.Layers()); err != nil {
		log.Fatal(err)
	}

	if *output != "" {
		snap, err := ed.Snapshot()
		if err != nil {
			log.Fatal(err)
		}
		if err := os.WriteFile(*output, snap, 0o644); err != nil {
			log.Fatalf("Failed to save: %v", err)
		}
		log.Printf("Snapshot saved to %s (%d bytes)\n", *output, len(snap))
	}
}

func importBatch(ctx context.Context, ed *editor.Editor, path string, clearExisting bool) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	batch, err := layer.DecodeBatch(f)
	if err != nil {
		return err
	}
	res, err := ed.Import(ctx, batch, importer.Options{ClearExisting: clearExisting})
	if err != nil {
		return err
	}
	for _, s := range res.Skipped {
		log.Printf("skipped %s: %v", s.ParsedLayerID, s.Err)
	}
	if res.Empty {
		log.Printf("%s: %v", path, studio.ErrEmptyImportBatch)
	}
	return nil
}

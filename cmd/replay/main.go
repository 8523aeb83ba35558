// Command replay runs a recorded stroke script against a headless session
// and writes the flattened export and the zoomed composite.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"tilepaint/internal/app"
	"tilepaint/internal/config"
	"tilepaint/internal/export"
)

func main() {
	scriptPath := flag.String("script", "", "Path to the JSON stroke script")
	outPath := flag.String("out", "", "Write the flattened image here (format from extension)")
	compositePath := flag.String("composite", "", "Write the display composite here")
	bgPath := flag.String("background", "", "Background image, overrides the script's")
	verbose := flag.Bool("v", false, "Log session events")
	flag.Parse()

	if *scriptPath == "" || (*outPath == "" && *compositePath == "") {
		fmt.Println("Usage: replay -script <file.json> [-out flat.png] [-composite view.png] [-background img]")
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuration: %v\n", err)
		os.Exit(2)
	}
	if *verbose {
		app.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel})))
	}

	f, err := os.Open(*scriptPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open script: %v\n", err)
		os.Exit(1)
	}
	script, err := ParseScript(f)
	f.Close()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	if *bgPath != "" {
		script.Background = *bgPath
	}

	state := app.NewState(cfg)
	if script.Background != "" {
		if err := state.OpenFile(script.Background); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to open background: %v\n", err)
			os.Exit(1)
		}
	}

	start := time.Now()
	if err := script.Run(state); err != nil {
		fmt.Fprintf(os.Stderr, "Replay failed: %v\n", err)
		os.Exit(1)
	}
	w, h := state.CanvasSize()
	fmt.Printf("Replayed %d actions in %v\n", len(script.Actions), time.Since(start).Round(time.Millisecond))
	fmt.Printf("  Canvas: %dx%d  zoom %gx\n", w, h, state.Zoom())
	fmt.Printf("  Strokes: %d  tiles: %d\n", state.UndoDepth(), state.TileCount())

	if *outPath != "" {
		if err := state.SaveFile(*outPath); err != nil {
			fmt.Fprintf(os.Stderr, "Export failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("  Wrote %s\n", *outPath)
	}

	if *compositePath != "" {
		img, err := state.Snapshot().Composite(context.Background(), state.Zoom())
		if err != nil {
			fmt.Fprintf(os.Stderr, "Composite failed: %v\n", err)
			os.Exit(1)
		}
		if err := export.WriteFile(*compositePath, img, export.Options{}); err != nil {
			fmt.Fprintf(os.Stderr, "Write failed: %v\n", err)
			os.Exit(1)
		}
		b := img.Bounds()
		fmt.Printf("  Wrote %s (%dx%d)\n", *compositePath, b.Dx(), b.Dy())
	}
}

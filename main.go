// Package main provides the entry point for the Tile Paint application.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	fyneapp "fyne.io/fyne/v2/app"

	"tilepaint/internal/app"
	"tilepaint/internal/config"
	"tilepaint/internal/version"
	"tilepaint/ui/mainwindow"
	"tilepaint/ui/prefs"
)

const appID = "io.github.tilepaint"

func main() {
	showVersion := flag.Bool("version", false, "Print the version and exit")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [flags] [image]\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if *showVersion {
		fmt.Println("tilepaint", version.String())
		return
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "tilepaint: %v\n", err)
		os.Exit(2)
	}

	app.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel})))
	log := app.Logger()
	log.Info("starting", "version", version.Version, "tile_size", cfg.TileSize,
		"resampler", cfg.Resampler, "undo_mode", cfg.UndoMode)

	state := app.NewState(cfg)
	appPrefs := prefs.Load()

	fyneApp := fyneapp.NewWithID(appID)
	fyneApp.Settings().SetTheme(&app.PaintTheme{})

	win := mainwindow.New(fyneApp, state, appPrefs)

	if path := flag.Arg(0); path != "" {
		if err := state.OpenFile(path); err != nil {
			log.Error("opening image", "path", path, "error", err)
		}
	}

	win.ShowAndRun()
}

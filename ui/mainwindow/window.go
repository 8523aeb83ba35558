// Package mainwindow provides the main application window.
package mainwindow

import (
	"errors"
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/widget"

	"tilepaint/internal/app"
	"tilepaint/internal/export"
	"tilepaint/internal/image"
	"tilepaint/internal/version"
	"tilepaint/internal/view"
	"tilepaint/pkg/colorutil"
	"tilepaint/ui/canvas"
	"tilepaint/ui/prefs"
)

const appTitle = "Tile Paint"

// MainWindow is the primary application window.
type MainWindow struct {
	fyne.Window
	app       fyne.App
	state     *app.State
	prefs     *prefs.Prefs
	canvas    *canvas.PaintCanvas
	swatches  []*swatch
	statusBar *widget.Label
	brushBar  *widget.Label

	docName string
}

// New creates a new main window.
func New(fyneApp fyne.App, state *app.State, p *prefs.Prefs) *MainWindow {
	win := fyneApp.NewWindow(appTitle)

	mw := &MainWindow{
		Window:  win,
		app:     fyneApp,
		state:   state,
		prefs:   p,
		docName: "Untitled",
	}

	mw.restorePreferences()
	mw.setupUI()
	mw.setupMenus()
	mw.setupShortcuts()
	mw.setupEventHandlers()
	mw.updateTitle()

	win.SetCloseIntercept(mw.onQuit)
	return mw
}

// setupUI creates the main UI layout.
func (mw *MainWindow) setupUI() {
	mw.canvas = canvas.NewPaintCanvas(mw.state)
	mw.canvas.OnZoomChange(func(float64) { mw.updateStatus("") })

	mw.statusBar = widget.NewLabel("Ready")
	mw.brushBar = widget.NewLabel("")

	content := container.NewBorder(
		mw.createToolbar(), // top
		container.NewBorder(nil, nil, nil, mw.brushBar, mw.statusBar), // bottom
		nil,                   // left
		nil,                   // right
		mw.canvas.Container(), // center
	)

	mw.SetContent(content)
	mw.Resize(fyne.NewSize(
		float32(mw.prefs.Int(prefs.KeyWindowW, 1100)),
		float32(mw.prefs.Int(prefs.KeyWindowH, 800)),
	))
	mw.updateStatus("Ready")
}

// createToolbar creates the colour swatches and brush controls.
func (mw *MainWindow) createToolbar() fyne.CanvasObject {
	items := []fyne.CanvasObject{widget.NewLabel("Colour:")}
	for _, sw := range colorutil.Palette() {
		s := newSwatch(sw, func(c color.NRGBA) { mw.state.SetColor(c) })
		mw.swatches = append(mw.swatches, s)
		items = append(items, s)
	}
	mw.syncSwatches(mw.state.Color())

	items = append(items,
		widget.NewSeparator(),
		widget.NewLabel("Brush:"),
		widget.NewButton("-", func() { mw.state.DecreaseBrush() }),
		widget.NewButton("+", func() { mw.state.IncreaseBrush() }),
		widget.NewSeparator(),
		widget.NewButton("Clear", mw.onClear),
	)
	return container.NewHBox(items...)
}

// setupMenus creates the application menus.
func (mw *MainWindow) setupMenus() {
	fileMenu := fyne.NewMenu("File",
		fyne.NewMenuItem("Open Image...", mw.onOpen),
		fyne.NewMenuItem("Save As...", mw.onSave),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Quit", mw.onQuit),
	)

	undoItem := fyne.NewMenuItem("Undo", mw.onUndo)
	undoItem.Shortcut = &desktop.CustomShortcut{KeyName: fyne.KeyZ, Modifier: fyne.KeyModifierShortcutDefault}
	editMenu := fyne.NewMenu("Edit", undoItem)

	zoomItems := make([]*fyne.MenuItem, 0, len(view.Levels)+3)
	for _, z := range view.Levels {
		z := z
		zoomItems = append(zoomItems, fyne.NewMenuItem(fmt.Sprintf("%gx", z), func() { mw.onZoom(z) }))
	}
	zoomItems = append(zoomItems,
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Zoom In", mw.canvas.ZoomIn),
		fyne.NewMenuItem("Zoom Out", mw.canvas.ZoomOut),
	)
	viewMenu := fyne.NewMenu("View", zoomItems...)

	drawMenu := fyne.NewMenu("Draw",
		fyne.NewMenuItem("Clear Canvas", mw.onClear),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Larger Brush", func() { mw.state.IncreaseBrush() }),
		fyne.NewMenuItem("Smaller Brush", func() { mw.state.DecreaseBrush() }),
	)

	helpMenu := fyne.NewMenu("Help",
		fyne.NewMenuItem("About", mw.onAbout),
	)

	mw.SetMainMenu(fyne.NewMainMenu(fileMenu, editMenu, viewMenu, drawMenu, helpMenu))
}

// setupShortcuts binds the typed keys: Shift-+ and Shift-_ step the zoom,
// [ and ] change the brush. Undo is bound through its menu item.
func (mw *MainWindow) setupShortcuts() {
	mw.Canvas().SetOnTypedRune(func(r rune) {
		switch r {
		case '+':
			mw.canvas.ZoomIn()
		case '_':
			mw.canvas.ZoomOut()
		case ']':
			mw.state.IncreaseBrush()
		case '[':
			mw.state.DecreaseBrush()
		}
	})
}

// setupEventHandlers registers for application events.
func (mw *MainWindow) setupEventHandlers() {
	mw.state.On(app.EventImageLoaded, func(data interface{}) {
		if bg, ok := data.(*image.Background); ok && bg.Path != "" {
			mw.docName = filepath.Base(bg.Path)
		}
		mw.updateTitle()
		mw.updateStatus("Image loaded")
	})

	mw.state.On(app.EventCleared, func(interface{}) {
		mw.docName = "Untitled"
		mw.updateTitle()
		mw.updateStatus("Canvas cleared")
	})

	mw.state.On(app.EventSaved, func(data interface{}) {
		if path, ok := data.(string); ok {
			mw.updateStatus("Saved " + path)
		}
	})

	mw.state.On(app.EventStrokeCommitted, func(interface{}) { mw.updateStatus("") })

	mw.state.On(app.EventUndo, func(interface{}) {
		mw.canvas.Refresh()
		mw.updateStatus("Undone")
	})

	mw.state.On(app.EventColorChanged, func(data interface{}) {
		if c, ok := data.(color.NRGBA); ok {
			mw.syncSwatches(c)
			mw.prefs.SetString(prefs.KeyColor, colorutil.Hex(c))
		}
		mw.updateStatus("")
	})

	mw.state.On(app.EventBrushChanged, func(data interface{}) {
		if n, ok := data.(int); ok {
			mw.prefs.SetInt(prefs.KeyBrushSize, n)
		}
		mw.updateStatus("")
	})

	mw.state.On(app.EventModified, func(interface{}) { mw.updateTitle() })
}

// restorePreferences applies the saved colour and brush size.
func (mw *MainWindow) restorePreferences() {
	if s := mw.prefs.String(prefs.KeyColor); s != "" {
		if c, err := colorutil.Parse(s); err == nil {
			mw.state.SetColor(c)
		}
	}
	mw.state.SetBrushSize(mw.prefs.Int(prefs.KeyBrushSize, mw.state.BrushSize()))
}

func (mw *MainWindow) savePreferences() {
	size := mw.Canvas().Size()
	mw.prefs.SetInt(prefs.KeyWindowW, int(size.Width))
	mw.prefs.SetInt(prefs.KeyWindowH, int(size.Height))
	if err := mw.prefs.Save(); err != nil {
		app.Logger().Warn("saving preferences", "path", mw.prefs.Path(), "error", err)
	}
}

func (mw *MainWindow) syncSwatches(c color.NRGBA) {
	for _, s := range mw.swatches {
		s.SetSelected(s.color == c)
	}
}

func (mw *MainWindow) updateTitle() {
	title := appTitle + " - " + mw.docName
	if mw.state.Modified() {
		title += " *"
	}
	mw.SetTitle(title)
}

// updateStatus shows text, or the session summary when text is empty.
func (mw *MainWindow) updateStatus(text string) {
	if text != "" {
		mw.statusBar.SetText(text)
	}
	w, h := mw.state.CanvasSize()
	mw.brushBar.SetText(fmt.Sprintf("%dx%d  zoom %gx  brush %d %s  tiles %d",
		w, h, mw.state.Zoom(), mw.state.BrushSize(), colorutil.Name(mw.state.Color()), mw.state.TileCount()))
}

// getLastDir returns the last used directory as a ListableURI, or nil.
func (mw *MainWindow) getLastDir() fyne.ListableURI {
	path := mw.prefs.String(prefs.KeyLastDir)
	if path == "" {
		return nil
	}
	listable, err := storage.ListerForURI(storage.NewFileURI(path))
	if err != nil {
		return nil
	}
	return listable
}

// saveLastDir saves the directory of the given file path.
func (mw *MainWindow) saveLastDir(filePath string) {
	mw.prefs.SetString(prefs.KeyLastDir, filepath.Dir(filePath))
}

// Menu action handlers

func (mw *MainWindow) onOpen() {
	mw.confirmDiscard("Open a new image and discard the current drawing?", func() {
		fd := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
			if err != nil || reader == nil {
				return
			}
			reader.Close()
			path := reader.URI().Path()
			mw.saveLastDir(path)
			if err := mw.state.OpenFile(path); err != nil {
				dialog.ShowError(err, mw.Window)
			}
		}, mw.Window)
		fd.SetFilter(storage.NewExtensionFileFilter(image.SupportedFormats()))
		if loc := mw.getLastDir(); loc != nil {
			fd.SetLocation(loc)
		}
		fd.Show()
	})
}

func (mw *MainWindow) onSave() {
	fd := dialog.NewFileSave(func(writer fyne.URIWriteCloser, err error) {
		if err != nil || writer == nil {
			return
		}
		writer.Close()
		path, err := saveTo(mw.state, writer.URI().Path())
		if err != nil {
			dialog.ShowError(err, mw.Window)
			return
		}
		mw.saveLastDir(path)
	}, mw.Window)
	fd.SetFilter(storage.NewExtensionFileFilter(export.Extensions()))
	fd.SetFileName(strings.TrimSuffix(mw.docName, filepath.Ext(mw.docName)) + ".png")
	if loc := mw.getLastDir(); loc != nil {
		fd.SetLocation(loc)
	}
	fd.Show()
}

// saveTo writes the drawing to the path picked in the save dialog, adding
// .png when it has no extension. The dialog leaves an empty file at picked;
// it is removed whenever the drawing does not end up there.
func saveTo(state *app.State, picked string) (string, error) {
	path := picked
	if filepath.Ext(path) == "" {
		path += ".png"
	}
	err := state.SaveFile(path)
	if err != nil || path != picked {
		removeIfEmpty(picked)
	}
	if err != nil {
		if errors.Is(err, export.ErrUnknownFormat) {
			err = fmt.Errorf("%w; use one of %s", err, strings.Join(export.Extensions(), " "))
		}
		return "", err
	}
	return path, nil
}

func removeIfEmpty(path string) {
	fi, err := os.Stat(path)
	if err != nil || !fi.Mode().IsRegular() || fi.Size() != 0 {
		return
	}
	if err := os.Remove(path); err != nil {
		app.Logger().Warn("removing placeholder file", "path", path, "error", err)
	}
}

func (mw *MainWindow) onQuit() {
	mw.confirmDiscard("Quit without saving the drawing?", func() {
		mw.savePreferences()
		mw.app.Quit()
	})
}

func (mw *MainWindow) onUndo() {
	if !mw.state.Undo() {
		mw.updateStatus("Nothing to undo")
	}
}

func (mw *MainWindow) onClear() {
	mw.confirmDiscard("Clear the canvas?", mw.state.Clear)
}

func (mw *MainWindow) onZoom(z float64) {
	if err := mw.canvas.SetZoom(z); err != nil {
		dialog.ShowError(err, mw.Window)
	}
}

// confirmDiscard runs fn straight away when there is nothing unsaved, and
// after confirmation otherwise.
func (mw *MainWindow) confirmDiscard(question string, fn func()) {
	if !mw.state.Modified() {
		fn()
		return
	}
	dialog.ShowConfirm("Unsaved changes", question, func(ok bool) {
		if ok {
			fn()
		}
	}, mw.Window)
}

func (mw *MainWindow) onAbout() {
	dialog.ShowInformation("About "+appTitle,
		fmt.Sprintf("%s %s\n\n"+
			"A tiled painting canvas for drawing over large images.\n\n"+
			"Opens %s\n"+
			"Saves %s",
			appTitle, version.String(),
			image.FileFilter(),
			strings.Join(export.Extensions(), " ")),
		mw.Window)
}

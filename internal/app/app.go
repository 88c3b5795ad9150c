// Package app assembles the rectdraw desktop window: map canvas, layer
// selector, message bar and the plugin menu.
package app

import (
	"context"
	"fmt"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"fyne.io/fyne/v2"
	fyneapp "fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/widget"

	"github.com/philipparndt/rectdraw/internal/config"
	"github.com/philipparndt/rectdraw/internal/layer"
	"github.com/philipparndt/rectdraw/internal/logger"
	"github.com/philipparndt/rectdraw/internal/mapview"
	"github.com/philipparndt/rectdraw/internal/plugin"
	"github.com/philipparndt/rectdraw/internal/tool"
	"github.com/philipparndt/rectdraw/pkg/crs"
	"github.com/philipparndt/rectdraw/pkg/watcher"
	"github.com/philipparndt/rectdraw/version"
)

// App is the host window. It implements plugin.Interface.
type App struct {
	fyneApp fyne.App
	window  fyne.Window
	cfg     config.Config
	quit    func()

	project  *crs.Project
	canvas   *mapview.MapCanvas
	messages *MessageBar
	selector *widget.Select

	menuOrder []string
	menus     map[string][]*plugin.Action

	plugin  *plugin.RectanglePlugin
	watcher *watcher.FileWatcher
}

var _ plugin.Interface = (*App)(nil)

// New builds the window for cfg on fyneApp. The layer named by the config
// is opened and becomes the current layer.
func New(ctx context.Context, fyneApp fyne.App, cfg config.Config) (*App, error) {
	projectCRS, err := crs.Parse(cfg.ProjectCRS)
	if err != nil {
		return nil, fmt.Errorf("project crs: %w", err)
	}

	project := crs.NewProject(projectCRS, nil)
	if _, err := project.Lookup(projectCRS.Code); err != nil {
		return nil, fmt.Errorf("project crs: %w", err)
	}

	a := &App{
		fyneApp:  fyneApp,
		quit:     fyneApp.Quit,
		cfg:      cfg,
		project:  project,
		messages: NewMessageBar(messageTimeout),
		menus:    make(map[string][]*plugin.Action),
	}
	a.canvas = mapview.NewMapCanvas(a.project)
	// selector options follow canvas.Layers() index for index
	a.selector = widget.NewSelect(nil, func(string) {
		a.canvas.SetCurrentLayerAt(a.selector.SelectedIndex())
	})
	a.canvas.SetOnLayerChanged(func(layer.Layer) {
		if i := a.canvas.CurrentIndex(); i >= 0 && a.selector.SelectedIndex() != i {
			a.selector.SetSelectedIndex(i)
		}
	})

	a.window = fyneApp.NewWindow("rectdraw " + version.GetVersion())
	a.window.SetContent(a.content())
	a.window.Resize(fyne.NewSize(1200, 800))

	if cfg.LayerURL != "" {
		if err := a.OpenLayer(ctx, cfg.LayerURL); err != nil {
			return nil, err
		}
	}

	a.plugin = plugin.ClassFactory(a, tool.WithBandStyle(cfg.BandColor, cfg.BandWidth), tool.WithLogger(logger.L()))
	a.plugin.InitGUI()

	if cfg.GeoIPDB != "" && cfg.CenterIP != "" {
		a.centerOnIP(cfg.GeoIPDB, cfg.CenterIP)
	}

	return a, nil
}

// Run opens the window and blocks until it is closed
func Run(ctx context.Context, cfg config.Config) error {
	a, err := New(ctx, fyneapp.NewWithID("io.github.philipparndt.rectdraw"), cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	stop := a.quitOnDone(ctx)
	defer stop()

	a.window.ShowAndRun()
	return nil
}

// quitOnDone quits the application once ctx is done. The returned func
// ends the wait.
func (a *App) quitOnDone(ctx context.Context) func() {
	done := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			logger.L().Info("shutting down", "reason", context.Cause(ctx))
			fyne.Do(a.quit)
		case <-done:
		}
	}()
	return func() { close(done) }
}

// Close unloads the plugin and releases layers and the watcher
func (a *App) Close() {
	if a.plugin != nil {
		a.plugin.Unload()
	}
	if a.watcher != nil {
		if err := a.watcher.Close(); err != nil {
			logger.L().Warn("closing watcher", "err", err)
		}
	}
	for _, l := range a.canvas.Layers() {
		if c, ok := l.(layer.Closer); ok {
			if err := c.Close(); err != nil {
				logger.L().Warn("closing layer", "layer", l.Name(), "err", err)
			}
		}
	}
}

// Window returns the main window
func (a *App) Window() fyne.Window {
	return a.window
}

// MapCanvas implements plugin.Interface
func (a *App) MapCanvas() plugin.Canvas {
	return a.canvas
}

// Project implements plugin.Interface
func (a *App) Project() tool.Project {
	return a.project
}

// MessageBar implements plugin.Interface
func (a *App) MessageBar() tool.Messenger {
	return a.messages
}

// AddPluginToMenu implements plugin.Interface
func (a *App) AddPluginToMenu(menu string, action *plugin.Action) {
	if _, ok := a.menus[menu]; !ok {
		a.menuOrder = append(a.menuOrder, menu)
	}
	a.menus[menu] = append(a.menus[menu], action)
	a.refreshMenu()
}

// RemovePluginMenu implements plugin.Interface
func (a *App) RemovePluginMenu(menu string, action *plugin.Action) {
	actions := a.menus[menu]
	for i, other := range actions {
		if other == action {
			actions = append(actions[:i], actions[i+1:]...)
			break
		}
	}
	if len(actions) == 0 {
		delete(a.menus, menu)
		for i, name := range a.menuOrder {
			if name == menu {
				a.menuOrder = append(a.menuOrder[:i], a.menuOrder[i+1:]...)
				break
			}
		}
	} else {
		a.menus[menu] = actions
	}
	a.refreshMenu()
}

// OpenLayer opens rawURL, adds it to the map and makes it current
func (a *App) OpenLayer(ctx context.Context, rawURL string) error {
	l, err := layer.Open(ctx, rawURL, layer.Options{
		CRS:       a.project.CRS(),
		RedisAddr: a.cfg.RedisAddr,
	})
	if err != nil {
		return fmt.Errorf("failed to open layer %s: %w", rawURL, err)
	}
	logger.L().Info("layer opened", "layer", l.Name(), "crs", l.CRS().String(), "type", l.Type().String())

	a.selector.Options = append(a.selector.Options, a.layerLabel(l))
	a.selector.Refresh()
	a.canvas.AddLayer(l)
	a.canvas.SetCurrentLayer(l)
	a.canvas.ZoomToLayer(l)

	if g, ok := l.(*layer.GeoJSON); ok {
		a.watchGeoJSON(g)
	}
	return nil
}

// layerLabel names l in the selector. Layers sharing a name are told apart
// by their file, or by a counter.
func (a *App) layerLabel(l layer.Layer) string {
	label := l.Name()
	if !slices.Contains(a.selector.Options, label) {
		return label
	}
	if g, ok := l.(*layer.GeoJSON); ok {
		label = fmt.Sprintf("%s (%s)", l.Name(), g.Path())
	}
	for n := 2; slices.Contains(a.selector.Options, label); n++ {
		label = fmt.Sprintf("%s (%d)", l.Name(), n)
	}
	return label
}

func (a *App) content() fyne.CanvasObject {
	top := container.NewHBox(widget.NewLabel("Layer:"), a.selector)
	return container.NewBorder(top, a.messages.Widget(), nil, nil, a.canvas)
}

func (a *App) refreshMenu() {
	menus := []*fyne.Menu{a.fileMenu()}
	for _, name := range a.menuOrder {
		var items []*fyne.MenuItem
		for _, action := range a.menus[name] {
			items = append(items, a.menuItem(action))
		}
		menus = append(menus, fyne.NewMenu(strings.ReplaceAll(name, "&", ""), items...))
	}
	a.window.SetMainMenu(fyne.NewMainMenu(menus...))
}

func (a *App) menuItem(action *plugin.Action) *fyne.MenuItem {
	item := fyne.NewMenuItem(action.Text, nil)
	item.Checked = action.IsChecked()
	item.Action = func() {
		action.Trigger()
		item.Checked = action.IsChecked()
		if menu := a.window.MainMenu(); menu != nil {
			menu.Refresh()
		}
	}
	return item
}

func (a *App) fileMenu() *fyne.Menu {
	open := fyne.NewMenuItem("Open Layer...", func() {
		d := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
			if err != nil {
				dialog.ShowError(err, a.window)
				return
			}
			if reader == nil {
				return
			}
			path := reader.URI().Path()
			if err := reader.Close(); err != nil {
				logger.L().Warn("failed to close layer file", "path", path, "err", err)
			}
			if err := a.OpenLayer(context.Background(), path); err != nil {
				dialog.ShowError(err, a.window)
			}
		}, a.window)
		d.SetFilter(storage.NewExtensionFileFilter([]string{".geojson", ".json"}))
		d.Show()
	})
	return fyne.NewMenu("File", open)
}

func (a *App) watchGeoJSON(g *layer.GeoJSON) {
	if a.watcher == nil {
		fw, err := watcher.NewFileWatcher(200 * time.Millisecond)
		if err != nil {
			logger.L().Warn("file watching disabled", "err", err)
			return
		}
		fw.SetLogger(logger.L())
		fw.Start()
		a.watcher = fw
	}

	err := a.watcher.Watch([]string{g.Path()}, func(path string) {
		fyne.Do(func() {
			if err := g.Reload(); err != nil {
				logger.L().Warn("reload failed", "path", path, "err", err)
				return
			}
			logger.L().Debug("layer reloaded", "path", filepath.Base(path))
			a.canvas.Refresh()
		})
	})
	if err != nil {
		logger.L().Warn("cannot watch layer", "path", g.Path(), "err", err)
	}
}

func (a *App) centerOnIP(dbPath, ip string) {
	p, err := LocateIP(dbPath, ip)
	if err != nil {
		logger.L().Warn("geoip centering skipped", "err", err)
		return
	}
	if err := a.canvas.CenterOn(p, crs.WGS84); err != nil {
		logger.L().Warn("geoip centering skipped", "err", err)
		return
	}
	logger.L().Info("map centered", "ip", ip, "lon", p.X, "lat", p.Y)
}

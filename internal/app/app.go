package app

import (
	"io"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"

	"github.com/vk/modboot/internal/lifecycle"
	"github.com/vk/modboot/internal/loader"
	"github.com/vk/modboot/internal/registry"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW     io.Writer
	logger   *slog.Logger
	config   *Config
	registry *registry.Registry
	importer loader.Loader
	metrics  *bootMetrics

	ready      atomic.Bool
	mu         sync.Mutex
	report     *lifecycle.Report
	httpServer *http.Server
}

// NewApp is the constructor for the main application. It returns a fully
// initialized App instance, including its own isolated logger and registry.
// Without explicit modules the core modules are registered.
func NewApp(outW io.Writer, cfg *Config, modules ...registry.Module) *App {
	logger := newLogger(cfg, outW)
	logger.Debug("Logger configured successfully.")

	reg := registry.New()
	if len(modules) == 0 {
		modules = coreModules(outW)
	}
	for _, mod := range modules {
		mod.Register(reg)
	}
	logger.Debug("All Go modules registered.", "count", len(modules), "factories", reg.Names())

	return &App{
		outW:     outW,
		logger:   logger,
		config:   cfg,
		registry: reg,
		metrics:  newBootMetrics(),
	}
}

// SetImporter installs a loader used instead of the manifest loader. Passing
// nil restores the manifest loader.
func (a *App) SetImporter(l loader.Loader) {
	a.importer = l
}

// Registry returns the application's registry. This is primarily for testing.
func (a *App) Registry() *registry.Registry {
	return a.registry
}

// Ready reports whether the boot sequence has finished.
func (a *App) Ready() bool {
	return a.ready.Load()
}

// Report returns the report of the last finished boot, or nil.
func (a *App) Report() *lifecycle.Report {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.report
}

// Close shuts down the health check server if it is running.
func (a *App) Close() error {
	return a.closeHealthCheckServer()
}

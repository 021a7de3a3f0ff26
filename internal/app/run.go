package app

import (
	"context"
	"fmt"

	bootcfg "github.com/vk/modboot/internal/config"
	"github.com/vk/modboot/internal/ctxlog"
	"github.com/vk/modboot/internal/discovery"
	"github.com/vk/modboot/internal/fstree"
	"github.com/vk/modboot/internal/lifecycle"
	"github.com/vk/modboot/internal/loader"
)

// Run discovers the modules below the configured tree and boots them. Only
// configuration and discovery problems are returned as errors; module
// failures end up in the report.
func (a *App) Run(ctx context.Context) (*lifecycle.Report, error) {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	if a.config.HealthcheckPort > 0 {
		if err := a.ensureHealthCheckServer(a.config.HealthcheckPort); err != nil {
			return nil, err
		}
	} else {
		a.logger.Debug("Health check server disabled.")
	}

	boot, err := a.loadBootConfig()
	if err != nil {
		return nil, err
	}
	roots := boot.DiscoveryRoots(boot.Role)
	a.logger.Info("Boot configuration loaded.", "role", string(boot.Role), "roots", len(roots), "wait_timeout", boot.WaitTimeout.String())

	var hostOpts []fstree.Option
	if a.config.Extension != "" {
		hostOpts = append(hostOpts, fstree.WithExtension(a.config.Extension))
	}
	host := fstree.New(a.config.TreePath, hostOpts...)

	discoverCtx, cancel := context.WithTimeout(ctx, boot.WaitTimeout)
	refs, err := discovery.Discover(discoverCtx, host, roots)
	cancel()
	if err != nil {
		return nil, fmt.Errorf("module discovery failed: %w", err)
	}
	a.logger.Info("Modules discovered.", "count", len(refs))

	l := loader.Chain(a.importer, loader.NewManifestLoader(a.registry, host.ReadFile))
	orch := lifecycle.New(l, lifecycle.WithConcurrency(a.config.Concurrency))

	a.logger.Info("🚀 Booting modules...")
	report := orch.Run(ctx, refs)

	a.mu.Lock()
	a.report = &report
	a.mu.Unlock()
	a.metrics.observe(&report)
	a.ready.Store(true)

	a.logger.Info("🏁 Boot finished.",
		"loaded", report.Loaded,
		"skipped", len(report.Skipped),
		"hook_failures", len(report.Failures),
	)
	return &report, nil
}

// loadBootConfig reads the boot config file, if any, and applies the
// overrides from the app config.
func (a *App) loadBootConfig() (*bootcfg.Boot, error) {
	boot := bootcfg.Default()
	if a.config.ConfigPath != "" {
		loaded, err := bootcfg.Load(a.config.ConfigPath)
		if err != nil {
			return nil, err
		}
		boot = loaded
	}
	if a.config.Role != "" {
		role, err := bootcfg.ParseRole(a.config.Role)
		if err != nil {
			return nil, err
		}
		boot.Role = role
	}
	if a.config.WaitTimeout > 0 {
		boot.WaitTimeout = a.config.WaitTimeout
	}
	return boot, nil
}

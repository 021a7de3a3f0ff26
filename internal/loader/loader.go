// Package loader turns a discovered module reference into a module object.
// It is the dynamic-loading primitive of the bootstrapper: the default
// implementation reads the module's manifest and calls the Go factory it
// names.
package loader

import (
	"context"
	"errors"
	"fmt"

	"github.com/vk/modboot/internal/ctxlog"
	"github.com/vk/modboot/internal/discovery"
	"github.com/vk/modboot/internal/manifest"
	"github.com/vk/modboot/internal/namespace"
	"github.com/vk/modboot/internal/registry"
)

// ErrUnknownFactory is returned when a manifest names a factory that was
// never registered.
var ErrUnknownFactory = errors.New("unknown module factory")

// Loader executes a module reference and returns its export.
type Loader interface {
	Load(ctx context.Context, ref discovery.ModuleRef) (registry.Export, error)
}

// Func adapts a plain function to the Loader interface.
type Func func(ctx context.Context, ref discovery.ModuleRef) (registry.Export, error)

// Load implements Loader.
func (f Func) Load(ctx context.Context, ref discovery.ModuleRef) (registry.Export, error) {
	return f(ctx, ref)
}

// ReadFunc returns the raw manifest behind a namespace node.
type ReadFunc func(n namespace.Node) ([]byte, error)

// ManifestLoader reads a module's manifest and builds the module through the
// factory registered under the manifest's factory name.
type ManifestLoader struct {
	Registry *registry.Registry
	Read     ReadFunc
}

// NewManifestLoader creates a ManifestLoader.
func NewManifestLoader(reg *registry.Registry, read ReadFunc) *ManifestLoader {
	return &ManifestLoader{Registry: reg, Read: read}
}

// Load implements Loader.
func (l *ManifestLoader) Load(ctx context.Context, ref discovery.ModuleRef) (registry.Export, error) {
	logger := ctxlog.FromContext(ctx)

	src, err := l.Read(ref.Node)
	if err != nil {
		return registry.Export{}, fmt.Errorf("failed to read manifest %s: %w", ref.Path, err)
	}
	m, err := manifest.Parse(src, ref.Path)
	if err != nil {
		return registry.Export{}, err
	}
	if m.Name != ref.Name {
		logger.Debug("Manifest name differs from module name.", "module", ref.Name, "manifest_name", m.Name)
	}

	factory, ok := l.Registry.Lookup(m.Factory)
	if !ok {
		return registry.Export{}, fmt.Errorf("%w: %q", ErrUnknownFactory, m.Factory)
	}

	logger.Debug("Calling module factory.", "module", ref.Name, "factory", m.Factory, "settings", m.Settings.Keys())
	exp, err := factory(ctx, m.Settings)
	if err != nil {
		return registry.Export{}, fmt.Errorf("factory %s: %w", m.Factory, err)
	}

	// The manifest may declare a default export for a factory that returned
	// its object directly.
	if m.Export == registry.ExportDefault && exp.Kind() == registry.ExportDirect {
		exp = registry.Default(exp.Unwrap())
	}
	return exp, nil
}

// Chain returns primary when it is set and fallback otherwise. It lets an
// embedder install a custom importer in front of the manifest loader.
func Chain(primary, fallback Loader) Loader {
	if primary != nil {
		return primary
	}
	return fallback
}

package env_vars

import (
	"context"
	"maps"
	"os"
	"strings"
	"sync"

	"github.com/vk/modboot/internal/ctxlog"
	"github.com/vk/modboot/internal/registry"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Snapshot captures the process environment during the init phase so that
// other modules read a stable copy during start.
type Snapshot struct {
	Prefix string

	mu     sync.RWMutex
	values map[string]string
}

// OnInit reads the environment, keeping only variables with the configured
// prefix.
func (s *Snapshot) OnInit(ctx context.Context) error {
	envMap := make(map[string]string)
	for _, e := range os.Environ() {
		pair := strings.SplitN(e, "=", 2)
		if len(pair) == 2 && strings.HasPrefix(pair[0], s.Prefix) {
			envMap[pair[0]] = pair[1]
		}
	}

	s.mu.Lock()
	s.values = envMap
	s.mu.Unlock()

	ctxlog.FromContext(ctx).Debug("Environment captured.", "prefix", s.Prefix, "count", len(envMap))
	return nil
}

// Values returns a copy of the captured variables.
func (s *Snapshot) Values() map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return maps.Clone(s.values)
}

// Get returns one captured variable.
func (s *Snapshot) Get(key string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	return v, ok
}

// NewEnvSnapshot builds a Snapshot from the manifest settings.
func NewEnvSnapshot(ctx context.Context, settings registry.Settings) (registry.Export, error) {
	s := &Snapshot{}
	if err := settings.Decode("prefix", &s.Prefix); err != nil {
		return registry.Export{}, err
	}
	return registry.Default(s), nil
}

// Register registers the factory with the registry.
func (m *Module) Register(r *registry.Registry) {
	r.Register("NewEnvSnapshot", NewEnvSnapshot)
}

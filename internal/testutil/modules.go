package testutil

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/vk/modboot/internal/discovery"
	"github.com/vk/modboot/internal/registry"
)

// Recorder keeps the order of hook invocations across modules.
type Recorder struct {
	mu     sync.Mutex
	events []string
}

// Record appends an event such as "init:X".
func (r *Recorder) Record(event string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

// Events returns a copy of the recorded events.
func (r *Recorder) Events() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.events)
}

// Index returns the position of the first occurrence of event, or -1.
func (r *Recorder) Index(event string) int {
	return slices.Index(r.Events(), event)
}

// LastIndex returns the position of the last event with the given phase
// prefix (e.g. "init:"), or -1.
func (r *Recorder) LastIndex(prefix string) int {
	events := r.Events()
	for i := len(events) - 1; i >= 0; i-- {
		if strings.HasPrefix(events[i], prefix) {
			return i
		}
	}
	return -1
}

// Count returns how often event was recorded.
func (r *Recorder) Count(event string) int {
	n := 0
	for _, e := range r.Events() {
		if e == event {
			n++
		}
	}
	return n
}

// FullModule exposes both hooks. Setting InitErr/StartErr makes the hook
// fail; setting InitPanic makes OnInit panic.
type FullModule struct {
	Name      string
	Rec       *Recorder
	InitErr   error
	StartErr  error
	InitPanic any
}

func (m *FullModule) OnInit(ctx context.Context) error {
	m.Rec.Record("init:" + m.Name)
	if m.InitPanic != nil {
		panic(m.InitPanic)
	}
	return m.InitErr
}

func (m *FullModule) OnStart(ctx context.Context) error {
	m.Rec.Record("start:" + m.Name)
	return m.StartErr
}

// InitOnlyModule exposes only OnInit.
type InitOnlyModule struct {
	Name string
	Rec  *Recorder
	Err  error
}

func (m *InitOnlyModule) OnInit(ctx context.Context) error {
	m.Rec.Record("init:" + m.Name)
	return m.Err
}

// StartOnlyModule exposes only OnStart.
type StartOnlyModule struct {
	Name string
	Rec  *Recorder
}

func (m *StartOnlyModule) OnStart(ctx context.Context) error {
	m.Rec.Record("start:" + m.Name)
	return nil
}

// InertModule exposes no hooks.
type InertModule struct {
	Name string
}

// LoadFunc produces the export for one fake module.
type LoadFunc func() (registry.Export, error)

// StaticLoader serves exports by module name. Unknown names fail to load.
type StaticLoader map[string]LoadFunc

// Load implements loader.Loader.
func (s StaticLoader) Load(ctx context.Context, ref discovery.ModuleRef) (registry.Export, error) {
	f, ok := s[ref.Name]
	if !ok {
		return registry.Export{}, fmt.Errorf("no module named %q", ref.Name)
	}
	return f()
}

// Direct returns a LoadFunc exporting v as-is.
func Direct(v any) LoadFunc {
	return func() (registry.Export, error) { return registry.Direct(v), nil }
}

// Default returns a LoadFunc exporting v through a default container.
func Default(v any) LoadFunc {
	return func() (registry.Export, error) { return registry.Default(v), nil }
}

// Fail returns a LoadFunc that fails with err.
func Fail(err error) LoadFunc {
	return func() (registry.Export, error) { return registry.Export{}, err }
}

// Refs builds module references under a services folder.
func Refs(names ...string) []discovery.ModuleRef {
	refs := make([]discovery.ModuleRef, 0, len(names))
	for _, n := range names {
		refs = append(refs, discovery.ModuleRef{Name: n, Path: "src/services/" + n})
	}
	return refs
}

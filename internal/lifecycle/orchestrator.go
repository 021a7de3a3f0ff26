package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/vk/modboot/internal/ctxlog"
	"github.com/vk/modboot/internal/discovery"
	"github.com/vk/modboot/internal/instantiate"
	"github.com/vk/modboot/internal/loader"
	"golang.org/x/sync/errgroup"
)

// Phase identifies a lifecycle hook.
type Phase int

const (
	PhaseInit Phase = iota + 1
	PhaseStart
)

func (p Phase) String() string {
	switch p {
	case PhaseInit:
		return "init"
	case PhaseStart:
		return "start"
	default:
		return "unknown"
	}
}

// HookFailure records one hook that returned an error or panicked.
type HookFailure struct {
	Module string
	Phase  Phase
	Err    error
}

// Report summarizes a boot. It is purely observational.
type Report struct {
	// Loaded is the number of modules that survived preload.
	Loaded int
	// Elapsed runs from preload entry to the end of the init phase.
	Elapsed time.Duration
	// Modules lists the loaded module names in reference order.
	Modules  []string
	Skipped  []*instantiate.SkipError
	Failures []HookFailure
}

// Orchestrator runs the boot sequence for a set of module references.
type Orchestrator struct {
	loader      loader.Loader
	concurrency int
	now         func() time.Time
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithConcurrency caps the number of modules instantiated at once during
// preload. Zero or less means no cap.
func WithConcurrency(n int) Option {
	return func(o *Orchestrator) { o.concurrency = n }
}

// WithClock replaces time.Now for elapsed time measurement.
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) { o.now = now }
}

// New creates an Orchestrator that instantiates modules through l.
func New(l loader.Loader, opts ...Option) *Orchestrator {
	o := &Orchestrator{loader: l, now: time.Now}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Run boots every module in refs. It never fails: load and hook errors are
// logged and collected in the report. Calling Run again boots everything
// from scratch.
func (o *Orchestrator) Run(ctx context.Context, refs []discovery.ModuleRef) Report {
	logger := ctxlog.FromContext(ctx)
	start := o.now()

	modules, skipped := o.preload(ctx, refs)
	report := Report{
		Loaded:  len(modules),
		Skipped: skipped,
		Modules: make([]string, 0, len(modules)),
	}
	for _, m := range modules {
		report.Modules = append(report.Modules, m.Name)
	}
	logger.Debug("Preload finished.", "references", len(refs), "loaded", len(modules), "skipped", len(skipped))

	for _, m := range modules {
		if !Probe(m.Object).HasInit {
			continue
		}
		if err := runHook(ctx, m.Name, PhaseInit, m.Object.(Initializer).OnInit); err != nil {
			logger.Warn("Failed to initialize module.", "module", m.Name, "error", err)
			report.Failures = append(report.Failures, HookFailure{Module: m.Name, Phase: PhaseInit, Err: err})
		}
	}

	report.Elapsed = o.now().Sub(start)
	logger.Info("Modules initialized.", "count", report.Loaded, "elapsed_ms", report.Elapsed.Milliseconds())

	for _, m := range modules {
		if !Probe(m.Object).HasStart {
			continue
		}
		if err := runHook(ctx, m.Name, PhaseStart, m.Object.(Starter).OnStart); err != nil {
			logger.Warn("Failed to start module.", "module", m.Name, "error", err)
			report.Failures = append(report.Failures, HookFailure{Module: m.Name, Phase: PhaseStart, Err: err})
		}
	}

	logger.Debug("Boot sequence finished.", "loaded", report.Loaded, "failures", len(report.Failures))
	return report
}

// preload instantiates every reference concurrently and waits for all of
// them. The returned modules keep the order of refs.
func (o *Orchestrator) preload(ctx context.Context, refs []discovery.ModuleRef) ([]instantiate.LoadedModule, []*instantiate.SkipError) {
	type result struct {
		mod  instantiate.LoadedModule
		skip *instantiate.SkipError
	}
	results := make([]result, len(refs))

	var g errgroup.Group
	if o.concurrency > 0 {
		g.SetLimit(o.concurrency)
	}
	for i, ref := range refs {
		g.Go(func() error {
			mod, err := instantiate.Instantiate(ctx, o.loader, ref)
			if err != nil {
				var skip *instantiate.SkipError
				if !errors.As(err, &skip) {
					skip = &instantiate.SkipError{Module: ref.Name, Reason: instantiate.SkipLoadFailure, Err: err}
				}
				results[i] = result{skip: skip}
				return nil
			}
			results[i] = result{mod: mod}
			return nil
		})
	}
	_ = g.Wait()

	var modules []instantiate.LoadedModule
	var skipped []*instantiate.SkipError
	for _, r := range results {
		if r.skip != nil {
			skipped = append(skipped, r.skip)
			continue
		}
		modules = append(modules, r.mod)
	}
	return modules, skipped
}

// runHook calls fn and converts a panic into an error.
func runHook(ctx context.Context, module string, phase Phase, fn func(context.Context) error) (err error) {
	hookCtx := ctxlog.With(ctx, "module", module, "phase", phase.String())
	defer func() {
		if r := recover(); r != nil {
			ctxlog.FromContext(hookCtx).Debug("Recovered hook panic.", "stack", string(debug.Stack()))
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return fn(hookCtx)
}

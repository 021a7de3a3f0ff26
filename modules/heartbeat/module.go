package heartbeat

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/vk/modboot/internal/ctxlog"
	"github.com/vk/modboot/internal/registry"
)

const defaultInterval = 30 * time.Second

// Module implements the registry.Module interface for this package.
type Module struct{}

// Heartbeat is a long-running service that logs a beat on a fixed interval
// for the life of the process.
type Heartbeat struct {
	rawInterval string
	interval    time.Duration
	beats       atomic.Int64
	stopOnce    sync.Once
	stop        chan struct{}
}

// OnInit validates the configured interval.
func (h *Heartbeat) OnInit(ctx context.Context) error {
	if h.rawInterval == "" {
		h.interval = defaultInterval
		return nil
	}
	d, err := time.ParseDuration(h.rawInterval)
	if err != nil {
		return fmt.Errorf("invalid interval %q: %w", h.rawInterval, err)
	}
	if d <= 0 {
		return fmt.Errorf("invalid interval %q: must be positive", h.rawInterval)
	}
	h.interval = d
	return nil
}

// OnStart launches the beat loop. It returns immediately; the loop runs
// until ctx is done or Stop is called.
func (h *Heartbeat) OnStart(ctx context.Context) error {
	if h.interval <= 0 {
		return fmt.Errorf("heartbeat was not initialized")
	}
	logger := ctxlog.FromContext(ctx)

	go func() {
		ticker := time.NewTicker(h.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-h.stop:
				return
			case <-ticker.C:
				n := h.beats.Add(1)
				logger.Debug("Heartbeat.", "beat", n)
			}
		}
	}()
	logger.Info("💓 Heartbeat started.", "interval", h.interval.String())
	return nil
}

// Beats returns how many beats were emitted so far.
func (h *Heartbeat) Beats() int64 { return h.beats.Load() }

// Interval returns the interval resolved during init.
func (h *Heartbeat) Interval() time.Duration { return h.interval }

// Stop ends the beat loop.
func (h *Heartbeat) Stop() {
	h.stopOnce.Do(func() { close(h.stop) })
}

// NewHeartbeat builds a Heartbeat from the manifest settings.
func NewHeartbeat(ctx context.Context, settings registry.Settings) (registry.Export, error) {
	h := &Heartbeat{stop: make(chan struct{})}
	if err := settings.Decode("interval", &h.rawInterval); err != nil {
		return registry.Export{}, err
	}
	return registry.Direct(h), nil
}

// Register registers the factory with the registry.
func (m *Module) Register(r *registry.Registry) {
	r.Register("NewHeartbeat", NewHeartbeat)
}

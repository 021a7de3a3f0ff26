package socketio

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net/url"
	"sync/atomic"
	"time"

	"github.com/vk/modboot/internal/ctxlog"
	"github.com/vk/modboot/internal/registry"
	"github.com/zishang520/engine.io-client-go/transports"
	"github.com/zishang520/engine.io/v2/types"
	"github.com/zishang520/socket.io-client-go/socket"
)

const defaultTimeout = 10 * time.Second

// Module implements the registry.Module interface for this package.
type Module struct{}

// Settings defines the manifest settings of a socket.io controller.
type Settings struct {
	URL                string
	Namespace          string
	Timeout            string
	EmitEvent          string
	EmitData           map[string]string
	InsecureSkipVerify bool
}

// Controller keeps a socket.io connection open for the life of the process.
// The connection is validated during init and established during start.
type Controller struct {
	settings Settings

	baseURL   string
	path      string
	timeout   time.Duration
	connected atomic.Bool
}

// OnInit validates the settings.
func (c *Controller) OnInit(ctx context.Context) error {
	if c.settings.URL == "" {
		return errors.New("socketio: url is required")
	}
	parsedURL, err := url.Parse(c.settings.URL)
	if err != nil {
		return fmt.Errorf("socketio: failed to parse URL: %w", err)
	}
	switch parsedURL.Scheme {
	case "http", "https", "ws", "wss":
	default:
		return fmt.Errorf("socketio: unsupported scheme %q", parsedURL.Scheme)
	}
	if parsedURL.Host == "" {
		return fmt.Errorf("socketio: url %q has no host", c.settings.URL)
	}
	c.baseURL = fmt.Sprintf("%s://%s", parsedURL.Scheme, parsedURL.Host)
	c.path = parsedURL.Path

	if c.settings.Namespace == "" {
		c.settings.Namespace = "/"
	}

	c.timeout = defaultTimeout
	if c.settings.Timeout != "" {
		d, err := time.ParseDuration(c.settings.Timeout)
		if err != nil || d <= 0 {
			return fmt.Errorf("socketio: invalid timeout %q", c.settings.Timeout)
		}
		c.timeout = d
	}
	return nil
}

// OnStart connects and waits until the connection is established, fails or
// the timeout expires. A successful connection stays open until ctx is done.
func (c *Controller) OnStart(ctx context.Context) error {
	if c.baseURL == "" {
		return errors.New("socketio: controller was not initialized")
	}
	logger := ctxlog.FromContext(ctx).With("url", c.settings.URL, "namespace", c.settings.Namespace)

	opts := socket.DefaultOptions()
	if c.path != "" {
		opts.SetPath(c.path)
	}
	if c.settings.InsecureSkipVerify {
		logger.Warn("Skipping TLS certificate verification")
		opts.SetTLSClientConfig(&tls.Config{InsecureSkipVerify: true})
	}
	opts.SetTransports(types.NewSet(transports.WebSocket))

	manager := socket.NewManager(c.baseURL, opts)
	io := manager.Socket(c.settings.Namespace, opts)

	done := make(chan error, 1)
	io.On(types.EventName("connect"), func(...any) {
		c.connected.Store(true)
		logger.Info("Socket.IO controller connected.", "sid", io.Id())
		if c.settings.EmitEvent != "" {
			io.Emit(c.settings.EmitEvent, c.settings.EmitData)
		}
		select {
		case done <- nil:
		default:
		}
	})
	io.On(types.EventName("connect_error"), func(errs ...any) {
		err := errors.New("connect error")
		if len(errs) > 0 {
			if e, ok := errs[0].(error); ok {
				err = e
			} else {
				err = fmt.Errorf("connect error: %v", errs[0])
			}
		}
		select {
		case done <- err:
		default:
		}
	})
	io.On(types.EventName("disconnect"), func(reason ...any) {
		c.connected.Store(false)
		logger.Debug("Socket.IO controller disconnected.", "reason", fmt.Sprint(reason...))
	})

	io.Connect()

	timer := time.NewTimer(c.timeout)
	defer timer.Stop()

	select {
	case err := <-done:
		if err != nil {
			io.Disconnect()
			return fmt.Errorf("socketio: %w", err)
		}
	case <-timer.C:
		io.Disconnect()
		return fmt.Errorf("socketio: timed out after %s while waiting for initial connection", c.timeout)
	case <-ctx.Done():
		io.Disconnect()
		return ctx.Err()
	}

	go func() {
		<-ctx.Done()
		logger.Debug("Disconnecting socket client")
		io.Disconnect()
	}()
	return nil
}

// Connected reports whether the socket is currently connected.
func (c *Controller) Connected() bool { return c.connected.Load() }

// NewSocketIOController builds a Controller from the manifest settings.
func NewSocketIOController(ctx context.Context, settings registry.Settings) (registry.Export, error) {
	c := &Controller{}
	fields := []struct {
		key    string
		target any
	}{
		{"url", &c.settings.URL},
		{"namespace", &c.settings.Namespace},
		{"timeout", &c.settings.Timeout},
		{"emit_event", &c.settings.EmitEvent},
		{"emit_data", &c.settings.EmitData},
		{"insecure_skip_verify", &c.settings.InsecureSkipVerify},
	}
	for _, f := range fields {
		if err := settings.Decode(f.key, f.target); err != nil {
			return registry.Export{}, err
		}
	}
	return registry.Default(c), nil
}

// Register registers the factory with the registry.
func (m *Module) Register(r *registry.Registry) {
	r.Register("NewSocketIOController", NewSocketIOController)
}

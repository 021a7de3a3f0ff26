package print

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/vk/modboot/internal/ctxlog"
	"github.com/vk/modboot/internal/registry"
)

// Module implements the registry.Module interface for this package.
type Module struct {
	// Out receives the printed message. Defaults to os.Stdout.
	Out io.Writer
}

// Printer writes its configured message once the boot reaches the start
// phase.
type Printer struct {
	Message string
	out     io.Writer
}

// OnStart prints the message.
func (p *Printer) OnStart(ctx context.Context) error {
	ctxlog.FromContext(ctx).Debug("Printing message.")
	_, err := fmt.Fprintln(p.out, p.Message)
	return err
}

// NewPrinter builds a Printer from the manifest settings.
func (m *Module) NewPrinter(ctx context.Context, settings registry.Settings) (registry.Export, error) {
	p := &Printer{Message: "(empty)", out: m.Out}
	if p.out == nil {
		p.out = os.Stdout
	}
	if err := settings.Decode("message", &p.Message); err != nil {
		return registry.Export{}, err
	}
	return registry.Direct(p), nil
}

// Register registers the factory with the registry.
func (m *Module) Register(r *registry.Registry) {
	r.Register("NewPrinter", m.NewPrinter)
}

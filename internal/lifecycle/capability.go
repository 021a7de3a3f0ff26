package lifecycle

import "context"

// Initializer is implemented by modules that want to run code during the
// init phase.
type Initializer interface {
	OnInit(ctx context.Context) error
}

// Starter is implemented by modules that want to run code during the start
// phase, after every module has been initialized.
type Starter interface {
	OnStart(ctx context.Context) error
}

// Capabilities lists the hooks a module object exposes.
type Capabilities struct {
	HasInit  bool
	HasStart bool
}

// Probe inspects obj for lifecycle hooks. The result is derived from the
// object's type on every call.
func Probe(obj any) Capabilities {
	_, hasInit := obj.(Initializer)
	_, hasStart := obj.(Starter)
	return Capabilities{HasInit: hasInit, HasStart: hasStart}
}

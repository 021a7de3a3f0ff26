// Package instantiate turns one module reference into a live module object
// while containing every failure of the underlying loader.
package instantiate

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"runtime/debug"

	"github.com/vk/modboot/internal/ctxlog"
	"github.com/vk/modboot/internal/discovery"
	"github.com/vk/modboot/internal/loader"
	"github.com/vk/modboot/internal/registry"
)

// SkipReason says why a module did not make it past instantiation.
type SkipReason int

const (
	SkipLoadFailure SkipReason = iota + 1
	SkipUnrecognized
)

func (r SkipReason) String() string {
	switch r {
	case SkipLoadFailure:
		return "load failure"
	case SkipUnrecognized:
		return "not recognized"
	default:
		return "unknown"
	}
}

// ErrUnrecognized is the cause carried by a SkipUnrecognized skip.
var ErrUnrecognized = errors.New("module value has no recognizable type")

// SkipError reports a module that was excluded from the boot.
type SkipError struct {
	Module string
	Reason SkipReason
	Err    error
}

func (e *SkipError) Error() string {
	return fmt.Sprintf("module %s skipped (%s): %v", e.Module, e.Reason, e.Err)
}

func (e *SkipError) Unwrap() error { return e.Err }

// LoadedModule is a successfully instantiated module.
type LoadedModule struct {
	Name   string
	Object any
}

// Instantiate loads ref through l. Loader errors and panics are logged as
// warnings and returned as a *SkipError, as are values without a named type.
func Instantiate(ctx context.Context, l loader.Loader, ref discovery.ModuleRef) (LoadedModule, error) {
	logger := ctxlog.FromContext(ctx)

	exp, err := safeLoad(ctx, l, ref)
	if err != nil {
		logger.Warn("Failed to preload module.", "module", ref.Name, "error", err)
		return LoadedModule{}, &SkipError{Module: ref.Name, Reason: SkipLoadFailure, Err: err}
	}

	obj := exp.Unwrap()
	if !Recognized(obj) {
		logger.Warn("Did not recognize module as a service or controller.", "module", ref.Name, "type", fmt.Sprintf("%T", obj))
		return LoadedModule{}, &SkipError{Module: ref.Name, Reason: SkipUnrecognized, Err: ErrUnrecognized}
	}

	logger.Debug("Module instantiated.", "module", ref.Name, "type", fmt.Sprintf("%T", obj), "export", exp.Kind().String())
	return LoadedModule{Name: ref.Name, Object: obj}, nil
}

func safeLoad(ctx context.Context, l loader.Loader, ref discovery.ModuleRef) (exp registry.Export, err error) {
	defer func() {
		if r := recover(); r != nil {
			ctxlog.FromContext(ctx).Debug("Recovered loader panic.", "module", ref.Name, "stack", string(debug.Stack()))
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return l.Load(ctx, ref)
}

// Recognized reports whether v has a type identity a lifecycle can be
// attached to: non-nil, not a nil pointer, and, once a single pointer level
// is removed, a type declared in some package. Predeclared types such as
// string or int and unnamed composites such as map[string]any are rejected.
func Recognized(v any) bool {
	if v == nil {
		return false
	}
	rv := reflect.ValueOf(v)
	t := rv.Type()
	if t.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return false
		}
		t = t.Elem()
	}
	return t.Name() != "" && t.PkgPath() != ""
}

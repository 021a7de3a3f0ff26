package registry

// ExportKind tells how a factory handed back its module object.
type ExportKind int

const (
	// ExportDirect means the value is the module object itself.
	ExportDirect ExportKind = iota
	// ExportDefault means the value is a container whose default export is
	// the module object.
	ExportDefault
)

func (k ExportKind) String() string {
	switch k {
	case ExportDirect:
		return "direct"
	case ExportDefault:
		return "default"
	default:
		return "unknown"
	}
}

// Export is the tagged result of loading a module. Callers always go through
// Unwrap, so a container never reaches the lifecycle phases.
type Export struct {
	kind  ExportKind
	value any
}

// Direct wraps a module object exported as-is.
func Direct(v any) Export {
	return Export{kind: ExportDirect, value: v}
}

// Default wraps a module object exported through a default-export container.
func Default(v any) Export {
	return Export{kind: ExportDefault, value: v}
}

// Kind returns the export form.
func (e Export) Kind() ExportKind { return e.kind }

// Unwrap returns the module object regardless of export form.
func (e Export) Unwrap() any { return e.value }

// Package manifest parses module manifests. A manifest is a small HCL file
// that names the module, the Go factory that builds it and the settings
// passed to that factory:
//
//	module "Inventory" {
//	  description = "Tracks player inventories."
//	  factory     = "NewInventoryService"
//	  export      = "default"
//
//	  settings {
//	    capacity = 40
//	  }
//	}
package manifest

import (
	"fmt"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/vk/modboot/internal/registry"
)

// Module is the decoded manifest.
type Module struct {
	Name        string
	Description string
	Factory     string
	Export      registry.ExportKind
	Settings    registry.Settings
}

// SettingsBlock captures the free-form settings block.
type SettingsBlock struct {
	Body hcl.Body `hcl:",remain"`
}

// ModuleBlock is the HCL schema of a `module` block.
type ModuleBlock struct {
	Name        string         `hcl:"name,label"`
	Description string         `hcl:"description,optional"`
	Factory     string         `hcl:"factory"`
	Export      string         `hcl:"export,optional"`
	Settings    *SettingsBlock `hcl:"settings,block"`
}

// File is the top-level structure of a manifest file.
type File struct {
	Module *ModuleBlock `hcl:"module,block"`
}

// Parse decodes a manifest from HCL source. filename is only used in
// diagnostics.
func Parse(src []byte, filename string) (*Module, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse manifest %s: %w", filename, diags)
	}

	var raw File
	if diags := gohcl.DecodeBody(file.Body, nil, &raw); diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode manifest %s: %w", filename, diags)
	}
	if raw.Module == nil {
		return nil, fmt.Errorf("manifest %s: missing module block", filename)
	}
	return raw.Module.translate(filename)
}

func (b *ModuleBlock) translate(filename string) (*Module, error) {
	if strings.TrimSpace(b.Factory) == "" {
		return nil, fmt.Errorf("manifest %s: module %q: factory must not be empty", filename, b.Name)
	}

	m := &Module{
		Name:        b.Name,
		Description: b.Description,
		Factory:     b.Factory,
		Settings:    registry.Settings{},
	}

	switch strings.ToLower(b.Export) {
	case "", "direct":
		m.Export = registry.ExportDirect
	case "default":
		m.Export = registry.ExportDefault
	default:
		return nil, fmt.Errorf("manifest %s: module %q: invalid export %q: must be 'direct' or 'default'", filename, b.Name, b.Export)
	}

	if b.Settings == nil || b.Settings.Body == nil {
		return m, nil
	}
	attrs, diags := b.Settings.Body.JustAttributes()
	if diags.HasErrors() {
		return nil, fmt.Errorf("manifest %s: module %q: invalid settings: %w", filename, b.Name, diags)
	}
	for name, attr := range attrs {
		val, diags := attr.Expr.Value(nil)
		if diags.HasErrors() {
			return nil, fmt.Errorf("manifest %s: module %q: setting %q: %w", filename, b.Name, name, diags)
		}
		m.Settings[name] = val
	}
	return m, nil
}

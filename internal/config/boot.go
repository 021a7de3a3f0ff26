package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/vk/modboot/internal/discovery"
)

const (
	DefaultWaitTimeout = 10 * time.Second
	DefaultRootPath    = "src"
)

// Boot is the decoded boot configuration.
type Boot struct {
	Role        Role
	WaitTimeout time.Duration
	Roots       []RootConfig
}

// RootConfig describes one discovery root.
type RootConfig struct {
	Name string
	Path string
	// Role limits the root to one process role. Empty means every role.
	Role Role
	// Keyword pins the parent folder name. Empty inherits the role keyword
	// unless Ancestors is set.
	Keyword   string
	Ancestors []string
}

// bootFile is the HCL schema of a boot configuration file.
type bootFile struct {
	Role        string       `hcl:"role,optional"`
	WaitTimeout string       `hcl:"wait_timeout,optional"`
	Roots       []*rootBlock `hcl:"root,block"`
}

type rootBlock struct {
	Name      string   `hcl:"name,label"`
	Path      string   `hcl:"path"`
	Role      string   `hcl:"role,optional"`
	Keyword   string   `hcl:"keyword,optional"`
	Ancestors []string `hcl:"ancestors,optional"`
}

// Default returns the configuration used when no file is given: one "src"
// root that follows the role keyword.
func Default() *Boot {
	return &Boot{
		Role:        RoleServer,
		WaitTimeout: DefaultWaitTimeout,
		Roots:       []RootConfig{{Name: "src", Path: DefaultRootPath}},
	}
}

// Load reads and decodes the boot configuration at path.
func Load(path string) (*Boot, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read boot config %s: %w", path, err)
	}
	return Parse(src, path)
}

// Parse decodes a boot configuration from HCL source.
func Parse(src []byte, filename string) (*Boot, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse boot config %s: %w", filename, diags)
	}

	var raw bootFile
	if diags := gohcl.DecodeBody(file.Body, nil, &raw); diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode boot config %s: %w", filename, diags)
	}

	boot := Default()
	role, err := ParseRole(raw.Role)
	if err != nil {
		return nil, err
	}
	boot.Role = role

	if raw.WaitTimeout != "" {
		d, err := time.ParseDuration(raw.WaitTimeout)
		if err != nil {
			return nil, fmt.Errorf("invalid wait_timeout %q: %w", raw.WaitTimeout, err)
		}
		if d <= 0 {
			return nil, fmt.Errorf("invalid wait_timeout %q: must be positive", raw.WaitTimeout)
		}
		boot.WaitTimeout = d
	}

	if len(raw.Roots) > 0 {
		boot.Roots = nil
	}
	for _, rb := range raw.Roots {
		rc, err := rb.toConfig()
		if err != nil {
			return nil, err
		}
		boot.Roots = append(boot.Roots, rc)
	}
	return boot, nil
}

func (rb *rootBlock) toConfig() (RootConfig, error) {
	if strings.TrimSpace(rb.Path) == "" {
		return RootConfig{}, fmt.Errorf("root %q: path is required", rb.Name)
	}
	if rb.Keyword != "" && len(rb.Ancestors) > 0 {
		return RootConfig{}, fmt.Errorf("root %q: keyword and ancestors are mutually exclusive", rb.Name)
	}
	rc := RootConfig{
		Name:      rb.Name,
		Path:      rb.Path,
		Keyword:   rb.Keyword,
		Ancestors: rb.Ancestors,
	}
	if rb.Role != "" {
		role, err := ParseRole(rb.Role)
		if err != nil {
			return RootConfig{}, fmt.Errorf("root %q: %w", rb.Name, err)
		}
		rc.Role = role
	}
	return rc, nil
}

// DiscoveryRoots returns the roots that apply to role, in file order, with
// the role keyword filled in where the root does not pin its own filter.
func (b *Boot) DiscoveryRoots(role Role) []discovery.Root {
	roots := make([]discovery.Root, 0, len(b.Roots))
	for _, rc := range b.Roots {
		if rc.Role != "" && rc.Role != role {
			continue
		}
		root := discovery.Root{Path: rc.Path, Keyword: rc.Keyword, Ancestors: rc.Ancestors}
		if root.Keyword == "" && len(root.Ancestors) == 0 {
			root.Keyword = role.Keyword()
		}
		roots = append(roots, root)
	}
	return roots
}

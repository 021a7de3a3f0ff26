package manifest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/modboot/internal/registry"
	"github.com/zclconf/go-cty/cty"
)

func TestParseFullManifest(t *testing.T) {
	src := `
module "Inventory" {
  description = "Tracks player inventories."
  factory     = "NewInventoryService"
  export      = "default"

  settings {
    capacity = 40
    label    = "bag"
    tags     = ["a", "b"]
  }
}
`
	m, err := Parse([]byte(src), "Inventory.hcl")
	require.NoError(t, err)

	assert.Equal(t, "Inventory", m.Name)
	assert.Equal(t, "Tracks player inventories.", m.Description)
	assert.Equal(t, "NewInventoryService", m.Factory)
	assert.Equal(t, registry.ExportDefault, m.Export)
	assert.Equal(t, []string{"capacity", "label", "tags"}, m.Settings.Keys())
	assert.True(t, m.Settings["capacity"].RawEquals(cty.NumberIntVal(40)))
	assert.True(t, m.Settings["label"].RawEquals(cty.StringVal("bag")))

	var capacity int
	require.NoError(t, m.Settings.Decode("capacity", &capacity))
	assert.Equal(t, 40, capacity)
}

func TestParseMinimalManifest(t *testing.T) {
	m, err := Parse([]byte(`module "Clock" { factory = "NewClock" }`), "Clock.hcl")
	require.NoError(t, err)
	assert.Equal(t, registry.ExportDirect, m.Export)
	assert.Empty(t, m.Settings)
}

func TestParseErrors(t *testing.T) {
	cases := map[string]struct {
		src  string
		want string
	}{
		"syntax error":     {src: `module "X" {`, want: "failed to parse manifest"},
		"missing block":    {src: ``, want: "missing module block"},
		"missing factory":  {src: `module "X" { description = "x" }`, want: "failed to decode manifest"},
		"empty factory":    {src: `module "X" { factory = " " }`, want: "factory must not be empty"},
		"bad export":       {src: "module \"X\" {\n  factory = \"F\"\n  export = \"named\"\n}\n", want: "invalid export"},
		"setting variable": {src: "module \"X\" {\n  factory = \"F\"\n  settings {\n    a = var.b\n  }\n}\n", want: `setting "a"`},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(tc.src), "X.hcl")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/modboot/internal/discovery"
)

const fullConfig = `
role         = "client"
wait_timeout = "3s"

root "boundary_server" {
  path = "server/src"
  role = "server"
}

root "boundary_client" {
  path = "client/src"
  role = "client"
}

root "shared" {
  path    = "shared/src"
  keyword = "services"
}

root "plugins" {
  path      = "plugins"
  ancestors = ["addons", "extensions"]
}
`

func TestParseFullConfig(t *testing.T) {
	boot, err := Parse([]byte(fullConfig), "boot.hcl")
	require.NoError(t, err)

	assert.Equal(t, RoleClient, boot.Role)
	assert.Equal(t, 3*time.Second, boot.WaitTimeout)
	require.Len(t, boot.Roots, 4)
	assert.Equal(t, "boundary_server", boot.Roots[0].Name)
	assert.Equal(t, RoleServer, boot.Roots[0].Role)
	assert.Equal(t, []string{"addons", "extensions"}, boot.Roots[3].Ancestors)
}

func TestDiscoveryRootsPerRole(t *testing.T) {
	boot, err := Parse([]byte(fullConfig), "boot.hcl")
	require.NoError(t, err)

	server := boot.DiscoveryRoots(RoleServer)
	wantServer := []discovery.Root{
		{Path: "server/src", Keyword: "services"},
		{Path: "shared/src", Keyword: "services"},
		{Path: "plugins", Ancestors: []string{"addons", "extensions"}},
	}
	if diff := cmp.Diff(wantServer, server); diff != "" {
		t.Fatalf("server roots mismatch (-want +got):\n%s", diff)
	}

	client := boot.DiscoveryRoots(RoleClient)
	wantClient := []discovery.Root{
		{Path: "client/src", Keyword: "controllers"},
		{Path: "shared/src", Keyword: "services"},
		{Path: "plugins", Ancestors: []string{"addons", "extensions"}},
	}
	if diff := cmp.Diff(wantClient, client); diff != "" {
		t.Fatalf("client roots mismatch (-want +got):\n%s", diff)
	}
}

func TestParseDefaults(t *testing.T) {
	boot, err := Parse([]byte(``), "empty.hcl")
	require.NoError(t, err)
	assert.Equal(t, Default(), boot)
	assert.Equal(t, []discovery.Root{{Path: "src", Keyword: "services"}}, boot.DiscoveryRoots(RoleServer))
	assert.Equal(t, []discovery.Root{{Path: "src", Keyword: "controllers"}}, boot.DiscoveryRoots(RoleClient))
}

func TestParseErrors(t *testing.T) {
	cases := map[string]struct {
		src  string
		want string
	}{
		"invalid hcl":       {src: `role = `, want: "failed to parse"},
		"unknown attribute": {src: `colour = "red"`, want: "failed to decode"},
		"bad role":          {src: `role = "admin"`, want: "invalid role"},
		"bad timeout":       {src: `wait_timeout = "soon"`, want: "invalid wait_timeout"},
		"negative timeout":  {src: `wait_timeout = "-1s"`, want: "must be positive"},
		"missing path":      {src: `root "a" { path = "" }`, want: "path is required"},
		"root bad role": {
			src:  "root \"a\" {\n  path = \"x\"\n  role = \"x\"\n}\n",
			want: `root "a"`,
		},
		"keyword and ancestors": {
			src:  "root \"a\" {\n  path = \"x\"\n  keyword = \"services\"\n  ancestors = [\"lib\"]\n}\n",
			want: "mutually exclusive",
		},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(tc.src), "boot.hcl")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "boot.hcl")
	require.NoError(t, os.WriteFile(path, []byte(fullConfig), 0o600))

	boot, err := Load(path)
	require.NoError(t, err)
	assert.Len(t, boot.Roots, 4)

	_, err = Load(filepath.Join(t.TempDir(), "missing.hcl"))
	assert.ErrorContains(t, err, "failed to read boot config")
}

func TestParseRole(t *testing.T) {
	r, err := ParseRole(" Client ")
	require.NoError(t, err)
	assert.Equal(t, RoleClient, r)
	assert.Equal(t, "controllers", r.Keyword())

	r, err = ParseRole("")
	require.NoError(t, err)
	assert.Equal(t, RoleServer, r)
	assert.Equal(t, "services", r.Keyword())

	_, err = ParseRole("worker")
	assert.Error(t, err)
}

package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRun_Once(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	tree := t.TempDir()
	dir := filepath.Join(tree, "src", "services")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	manifest := `
module "Greeter" {
  factory = "NewPrinter"
  settings {
    message = "hello from Greeter"
  }
}
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Greeter.hcl"), []byte(manifest), 0o600))
	out := &bytes.Buffer{}

	// --- Act ---
	err := run(context.Background(), out, []string{"-once", "-log-format", "text", tree})

	// --- Assert ---
	require.NoError(t, err)
	require.Contains(t, out.String(), "hello from Greeter")
	require.Contains(t, out.String(), "Boot finished.")
}

func TestRun_WaitsForShutdown(t *testing.T) {
	t.Parallel()

	tree := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(tree, "src"), 0o755))
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- run(ctx, &bytes.Buffer{}, []string{tree}) }()

	select {
	case err := <-done:
		t.Fatalf("run() returned before shutdown: %v", err)
	case <-time.After(100 * time.Millisecond):
	}

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("run() did not return after the context was cancelled")
	}
}

func TestRun_DiscoveryError(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	// The tree has no src root, so discovery times out.
	args := []string{"-once", "-wait-timeout", "50ms", t.TempDir()}

	// --- Act ---
	err := run(context.Background(), &bytes.Buffer{}, args)

	// --- Assert ---
	require.Error(t, err)
	require.Contains(t, err.Error(), "module discovery failed")
}

func TestRun_ShouldExit(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	// The "-h" (help) flag should cause cli.Parse to return `shouldExit=true`.
	args := []string{"-h"}
	out := &bytes.Buffer{}

	// --- Act ---
	err := run(context.Background(), out, args)

	// --- Assert ---
	require.NoError(t, err, "run() should return a nil error when shouldExit is true")
	require.Contains(t, out.String(), "Usage:", "Expected help text to be printed to the output buffer")
}

func TestRun_ParseError(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	// Providing an unknown flag will cause cli.Parse to return an error.
	args := []string{"--this-is-not-a-valid-flag"}
	out := &bytes.Buffer{}

	// --- Act ---
	err := run(context.Background(), out, args)

	// --- Assert ---
	require.Error(t, err, "run() should return an error when argument parsing fails")
	require.Contains(t, err.Error(), "flag provided but not defined: -this-is-not-a-valid-flag")
}

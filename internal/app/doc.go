// Package app contains the core application logic. It wires the boot
// configuration, the module tree on disk, the factory registry and the
// lifecycle orchestrator together, decoupled from any specific entrypoint
// like a CLI.
package app

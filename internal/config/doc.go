// Package config loads the boot configuration: which process role is active,
// which namespace roots are scanned for modules, and how long discovery may
// wait for a root to appear. The file format is HCL.
package config

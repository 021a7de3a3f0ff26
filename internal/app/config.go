package app

import (
	"errors"
	"fmt"
	"time"

	bootcfg "github.com/vk/modboot/internal/config"
)

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	TreePath   string // directory holding the module tree
	ConfigPath string // boot config (HCL); empty uses the defaults

	// Role and WaitTimeout override the boot config when set.
	Role        string
	WaitTimeout time.Duration
	Extension   string

	LogFormat       string
	LogLevel        string
	HealthcheckPort int
	Concurrency     int
	// Once makes the entrypoint exit right after the start phase instead of
	// keeping the process, and with it the modules, alive.
	Once bool
}

// NewConfig validates cfg and returns a copy of it.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.TreePath == "" {
		return nil, errors.New("TreePath is a required configuration field and cannot be empty")
	}
	if cfg.Role != "" {
		if _, err := bootcfg.ParseRole(cfg.Role); err != nil {
			return nil, err
		}
	}
	if cfg.WaitTimeout < 0 {
		return nil, fmt.Errorf("WaitTimeout must not be negative, got %s", cfg.WaitTimeout)
	}
	if cfg.Concurrency < 0 {
		return nil, fmt.Errorf("Concurrency must not be negative, got %d", cfg.Concurrency)
	}
	return &cfg, nil
}

package cli

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/vk/modboot/internal/app"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// Parse processes command-line arguments. It returns a populated app.Config,
// a boolean indicating if the program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	slog.Debug("CLI parser started.")
	flagSet := flag.NewFlagSet("modboot", flag.ContinueOnError)
	flagSet.SetOutput(output)

	flagSet.Usage = func() {
		fmt.Fprint(output, `
modboot - Discovers the services or controllers of a module tree and boots them.

Usage:
  modboot [options] [TREE_PATH]

Arguments:
  TREE_PATH
    Directory holding the module tree. Discovery roots are resolved below it.

Options:
`)
		flagSet.PrintDefaults()
	}

	treeFlag := flagSet.String("tree", "", "Path to the module tree.")
	tFlag := flagSet.String("t", "", "Path to the module tree (shorthand).")
	configFlag := flagSet.String("config", "", "Path to the boot config (HCL). Defaults to a single 'src' root.")
	roleFlag := flagSet.String("role", "", "Process role. Options: 'server' or 'client'. Overrides the boot config.")
	waitFlag := flagSet.Duration("wait-timeout", 0, "How long to wait for discovery roots to appear. Overrides the boot config.")
	extFlag := flagSet.String("ext", "", "Manifest file extension. Defaults to '.hcl'.")
	healthPortFlag := flagSet.Int("healthcheck-port", 0, "Port for the HTTP health check server. 0 is disabled.")
	logFormatFlag := flagSet.String("log-format", "text", "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")
	concurrencyFlag := flagSet.Int("concurrency", 0, "Maximum number of modules preloaded at once. 0 is unlimited.")
	onceFlag := flagSet.Bool("once", false, "Exit after the start phase instead of waiting for a signal.")

	if err := flagSet.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	slog.Debug("Arguments parsed successfully.")

	path := ""
	if *treeFlag != "" {
		path = *treeFlag
	} else if *tFlag != "" {
		path = *tFlag
	} else if flagSet.NArg() > 0 {
		path = flagSet.Arg(0)
	}
	slog.Debug("Tree path determined.", "path", path)

	if path == "" {
		slog.Debug("No tree path provided, printing usage and exiting.")
		flagSet.Usage()
		return nil, true, nil
	}

	logFormat := strings.ToLower(*logFormatFlag)
	if logFormat != "text" && logFormat != "json" {
		return nil, false, &ExitError{Code: 2, Message: "invalid log-format: must be 'text' or 'json'"}
	}

	logLevel := strings.ToLower(*logLevelFlag)
	switch logLevel {
	case "debug", "info", "warn", "error":
		// valid
	default:
		return nil, false, &ExitError{Code: 2, Message: "invalid log-level: must be 'debug', 'info', 'warn', or 'error'"}
	}

	ext := *extFlag
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	slog.Debug("CLI parameter validation complete.")

	config, err := app.NewConfig(app.Config{
		TreePath:        path,
		ConfigPath:      *configFlag,
		Role:            strings.ToLower(*roleFlag),
		WaitTimeout:     *waitFlag,
		Extension:       ext,
		LogFormat:       logFormat,
		LogLevel:        logLevel,
		HealthcheckPort: *healthPortFlag,
		Concurrency:     *concurrencyFlag,
		Once:            *onceFlag,
	})
	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	slog.Debug("CLI parser finished successfully.", "config", config)
	return config, false, nil
}

package app

import (
	"io"

	"github.com/vk/modboot/internal/registry"
	"github.com/vk/modboot/modules/env_vars"
	"github.com/vk/modboot/modules/heartbeat"
	"github.com/vk/modboot/modules/print"
	"github.com/vk/modboot/modules/socketio"
)

// coreModules is the definitive list of all modules that are compiled into
// the modboot binary. Printed output goes to outW.
func coreModules(outW io.Writer) []registry.Module {
	return []registry.Module{
		&env_vars.Module{},
		&heartbeat.Module{},
		&print.Module{Out: outW},
		&socketio.Module{},
	}
}

package lifecycle_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/vk/modboot/internal/lifecycle"
	"github.com/vk/modboot/internal/testutil"
)

func TestProbe(t *testing.T) {
	rec := &testutil.Recorder{}
	cases := map[string]struct {
		obj  any
		want lifecycle.Capabilities
	}{
		"both":       {obj: &testutil.FullModule{Rec: rec}, want: lifecycle.Capabilities{HasInit: true, HasStart: true}},
		"init only":  {obj: &testutil.InitOnlyModule{Rec: rec}, want: lifecycle.Capabilities{HasInit: true}},
		"start only": {obj: &testutil.StartOnlyModule{Rec: rec}, want: lifecycle.Capabilities{HasStart: true}},
		"neither":    {obj: &testutil.InertModule{}, want: lifecycle.Capabilities{}},
		// Hooks are declared on the pointer receiver.
		"value receiver": {obj: testutil.FullModule{}, want: lifecycle.Capabilities{}},
		"nil":            {obj: nil, want: lifecycle.Capabilities{}},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tc.want, lifecycle.Probe(tc.obj))
		})
	}
}

package heartbeat

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/modboot/internal/lifecycle"
	"github.com/vk/modboot/internal/registry"
	"github.com/zclconf/go-cty/cty"
)

func newHeartbeat(t *testing.T, settings registry.Settings) *Heartbeat {
	t.Helper()
	exp, err := NewHeartbeat(context.Background(), settings)
	require.NoError(t, err)
	return exp.Unwrap().(*Heartbeat)
}

func TestHeartbeatBeats(t *testing.T) {
	h := newHeartbeat(t, registry.Settings{"interval": cty.StringVal("5ms")})
	assert.Equal(t, lifecycle.Capabilities{HasInit: true, HasStart: true}, lifecycle.Probe(h))

	require.NoError(t, h.OnInit(context.Background()))
	assert.Equal(t, 5*time.Millisecond, h.Interval())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, h.OnStart(ctx))

	assert.Eventually(t, func() bool { return h.Beats() >= 2 }, 2*time.Second, 5*time.Millisecond)
	h.Stop()
	h.Stop()
}

func TestHeartbeatDefaultInterval(t *testing.T) {
	h := newHeartbeat(t, nil)
	require.NoError(t, h.OnInit(context.Background()))
	assert.Equal(t, defaultInterval, h.Interval())
}

func TestHeartbeatInvalidInterval(t *testing.T) {
	for _, raw := range []string{"soon", "-1s", "0s"} {
		h := newHeartbeat(t, registry.Settings{"interval": cty.StringVal(raw)})
		assert.ErrorContains(t, h.OnInit(context.Background()), "invalid interval")
	}
}

func TestHeartbeatStartWithoutInit(t *testing.T) {
	h := newHeartbeat(t, nil)
	assert.ErrorContains(t, h.OnStart(context.Background()), "not initialized")
}

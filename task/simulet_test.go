package task

import (
	"errors"
	"fmt"
	"net"
	"strings"
	"testing"
	"time"

	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tsinghua-fib-lab/hcca-sim/utils/config"
)

func smallConfig(total int32) config.Config {
	c := config.Default()
	c.Model.Length = 40
	c.Control.Step.Total = total
	return c
}

func TestHeartbeatReportsCompletedStep(t *testing.T) {
	old := *heartBeatInterval
	*heartBeatInterval = 2
	defer func() { *heartBeatInterval = old }()

	ctx, err := NewContext("test", "", smallConfig(10))
	require.NoError(t, err)
	defer ctx.Close()

	hook := logtest.NewGlobal()
	defer hook.Reset()
	require.NoError(t, ctx.Init())
	for i := 0; i < 4; i++ {
		require.NoError(t, ctx.Step())
	}

	var beats []string
	for _, e := range hook.AllEntries() {
		if strings.HasPrefix(e.Message, "STEP:") {
			beats = append(beats, e.Message)
		}
	}
	require.Len(t, beats, 2)
	assert.True(t, strings.HasPrefix(beats[0], "STEP: 2 "), beats[0])
	// 最后一条心跳与第4步完成后的统计一致
	stats := ctx.Manager().Stats()
	assert.Equal(t, int32(4), stats.Step)
	assert.Equal(t, fmt.Sprintf(
		"STEP: 4 (vehicles=%d mean_speed=%.3f lane_changes=%d collisions=%d)",
		stats.Vehicles, stats.MeanSpeed(), stats.LaneChanges, stats.Collisions,
	), beats[1])
}

func TestServeShutsDownWhenNotReady(t *testing.T) {
	old := serverReady
	serverReady = func(string, int, time.Duration) error { return errors.New("not ready") }
	defer func() { serverReady = old }()

	ctx, err := NewContext("test", "", smallConfig(1))
	require.NoError(t, err)
	defer ctx.Close()

	require.Error(t, ctx.serve("127.0.0.1:0"))
	assert.Nil(t, ctx.server)
	select {
	case <-ctx.serverCloseCh:
	default:
		t.Fatal("serving goroutine still running")
	}
	_, err = net.DialTimeout("tcp", ctx.addr, time.Second)
	assert.Error(t, err, "listener must be closed")

	_, err = NewContext("test", "127.0.0.1:0", smallConfig(1))
	assert.EqualError(t, err, "not ready")
}

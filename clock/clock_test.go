package clock_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"connectrpc.com/connect"
	clockv1 "git.fiblab.net/sim/protos/v2/go/city/clock/v1"
	"git.fiblab.net/sim/protos/v2/go/city/clock/v1/clockv1connect"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tsinghua-fib-lab/hcca-sim/clock"
	"github.com/tsinghua-fib-lab/hcca-sim/utils/config"
)

func TestClock(t *testing.T) {
	c := clock.New(config.ControlStep{Start: 10, Total: 3})
	assert.Equal(t, int32(10), c.InternalStep())
	assert.Equal(t, int32(13), c.END_STEP)
	assert.False(t, c.Done())

	for i := 0; i < 3; i++ {
		assert.False(t, c.Done())
		c.Tick()
	}
	assert.True(t, c.Done())
	assert.Equal(t, int32(3), c.Elapsed())
	assert.Equal(t, 13.0, c.T())

	c.Init()
	assert.Equal(t, int32(0), c.Elapsed())
}

func TestClockService(t *testing.T) {
	c := clock.New(config.ControlStep{Start: 0, Total: 100})
	c.Tick()
	c.Tick()

	mux := http.NewServeMux()
	c.Register(mux)
	srv := httptest.NewServer(mux)
	defer srv.Close()

	client := clockv1connect.NewClockServiceClient(srv.Client(), srv.URL)
	res, err := client.Now(context.Background(), connect.NewRequest(&clockv1.NowRequest{}))
	require.NoError(t, err)
	assert.Equal(t, 2.0, res.Msg.T)
}

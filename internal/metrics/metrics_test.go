package metrics

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/litescript/ls-orrery/internal/anim"
)

func TestFrameRendered(t *testing.T) {
	m := NewCollector()
	m.FrameRendered(2*time.Millisecond, 1.25)
	m.FrameRendered(3*time.Millisecond, 1.5)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.framesTotal))
	assert.Equal(t, 1.5, testutil.ToFloat64(m.distance))
	assert.Equal(t, 1, testutil.CollectAndCount(m.frameDuration))
}

func TestFrameFaultedKinds(t *testing.T) {
	m := NewCollector()
	m.FrameFaulted(errors.New("surface lost"))
	m.FrameFaulted(fmt.Errorf("%w: frame 3: boom", anim.ErrFrameFault))
	m.FrameFaulted(fmt.Errorf("%w: frame 4: boom", anim.ErrFrameFault))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.faultsTotal.WithLabelValues("render")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.faultsTotal.WithLabelValues("panic")))
}

func TestConfigReloaded(t *testing.T) {
	m := NewCollector()
	m.ConfigReloaded(nil)
	m.ConfigReloaded(errors.New("bad yaml"))
	m.ConfigReloaded(nil)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.reloadsTotal.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.reloadsTotal.WithLabelValues("error")))
}

func TestHandlerExposesMetrics(t *testing.T) {
	m := NewCollector()
	m.FrameRendered(time.Millisecond, 0.8)

	srv := httptest.NewServer(m.Handler())
	defer srv.Close()

	resp, err := srv.Client().Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "orrery_frames_total 1")
	assert.Contains(t, string(body), "orrery_asteroid_earth_distance_au 0.8")
}

func TestServeStopsOnCancel(t *testing.T) {
	m := NewCollector()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- m.Serve(ctx, "127.0.0.1:0") }()

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
}

func TestServeBadAddress(t *testing.T) {
	err := NewCollector().Serve(context.Background(), "not-an-address")
	assert.Error(t, err)
}

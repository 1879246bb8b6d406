package metrics_test

import (
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajitpratap0/respawn/pkg/errors"
	"github.com/ajitpratap0/respawn/pkg/metrics"
	"github.com/ajitpratap0/respawn/pkg/spawn"
	"github.com/ajitpratap0/respawn/pkg/testutil"
)

var _ spawn.Recorder = (*metrics.Collector)(nil)

func TestCollectorTracksPoolEvents(t *testing.T) {
	reg := testutil.NewRegistry(t)
	testutil.MustCreatePool(t, reg, "Enemy", 3)
	promReg := prometheus.NewRegistry()
	c := metrics.NewCollector("test", promReg)

	require.NoError(t, c.WatchAll(reg))

	a, _ := reg.FetchAvailable("Enemy")
	_, _ = reg.FetchAvailable("Enemy")
	a.Release()

	expected := `
# HELP test_pool_acquired Number of pool entries currently acquired
# TYPE test_pool_acquired gauge
test_pool_acquired{pool="Enemy"} 1
# HELP test_pool_acquires_total Total number of entries handed out
# TYPE test_pool_acquires_total counter
test_pool_acquires_total{pool="Enemy"} 2
# HELP test_pool_capacity Fixed number of entries in the pool
# TYPE test_pool_capacity gauge
test_pool_capacity{pool="Enemy"} 3
# HELP test_pool_releases_total Total number of entries returned to their pool
# TYPE test_pool_releases_total counter
test_pool_releases_total{pool="Enemy"} 1
`
	err := promtest.GatherAndCompare(promReg, strings.NewReader(expected),
		"test_pool_acquired", "test_pool_acquires_total", "test_pool_capacity", "test_pool_releases_total")
	assert.NoError(t, err)
}

func TestCollectorUnwatch(t *testing.T) {
	reg := testutil.NewRegistry(t)
	testutil.MustCreatePool(t, reg, "Coin", 2)
	promReg := prometheus.NewRegistry()
	c := metrics.NewCollector("", promReg)

	require.NoError(t, c.Watch(reg, "Coin"))
	_, _ = reg.FetchAvailable("Coin")
	c.Unwatch(reg)
	_, _ = reg.FetchAvailable("Coin")

	n, err := promtest.GatherAndCount(promReg, "respawn_pool_acquires_total")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	expected := `
# HELP respawn_pool_acquires_total Total number of entries handed out
# TYPE respawn_pool_acquires_total counter
respawn_pool_acquires_total{pool="Coin"} 1
`
	assert.NoError(t, promtest.GatherAndCompare(promReg, strings.NewReader(expected), "respawn_pool_acquires_total"))
}

func TestWatchUnknownPool(t *testing.T) {
	reg := testutil.NewRegistry(t)
	c := metrics.NewCollector("test", nil)

	err := c.Watch(reg, "Ghost")
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeNotFound))
}

func TestObserveSpawnAndWave(t *testing.T) {
	promReg := prometheus.NewRegistry()
	c := metrics.NewCollector("test", promReg)

	c.ObserveSpawn("Enemy", "farthest", spawn.StatusOK)
	c.ObserveSpawn("Enemy", "farthest", spawn.StatusOK)
	c.ObserveSpawn("Enemy", "farthest", spawn.StatusExhausted)
	c.ObserveWave(3 * time.Millisecond)

	expected := `
# HELP test_spawns_total Total number of spawn attempts by outcome
# TYPE test_spawns_total counter
test_spawns_total{policy="farthest",pool="Enemy",status="exhausted"} 1
test_spawns_total{policy="farthest",pool="Enemy",status="ok"} 2
`
	assert.NoError(t, promtest.GatherAndCompare(promReg, strings.NewReader(expected), "test_spawns_total"))

	n, err := promtest.GatherAndCount(promReg, "test_wave_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestTimer(t *testing.T) {
	timer := metrics.NewTimer("wave")
	assert.Equal(t, "wave", timer.Name())
	assert.GreaterOrEqual(t, timer.Stop(), time.Duration(0))
}

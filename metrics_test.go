package dockyard

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsSnapshot(t *testing.T) {
	m := &Metrics{}
	m.PackagesCreated.Add(3)
	m.TrucksCompleted.Add(1)

	s := m.Snapshot()
	assert.Equal(t, uint64(3), s.PackagesCreated)
	assert.Equal(t, uint64(1), s.TrucksCompleted)
	assert.Zero(t, s.PackagesDead)
}

func TestCollectorRegistersAndCollects(t *testing.T) {
	m := &Metrics{}
	m.PackagesLoaded.Add(5)
	c := NewCollector(m)

	reg := prometheus.NewRegistry()
	require.NoError(t, reg.Register(c))

	count := testutil.CollectAndCount(c)
	assert.Equal(t, 7, count)
}

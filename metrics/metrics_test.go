package metrics_test

import (
	"strings"
	"testing"

	"github.com/delaneyj/statetree/metrics"
	"github.com/delaneyj/statetree/store"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestCollector(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := metrics.NewCollector(reg, "statetree")
	s := store.New(map[string]any{"a": map[string]any{"b": 1}, "c": 1}, store.WithHooks(c))

	b := s.Root().At("a", "b")
	sub := b.Subscribe(func(any) error { return nil })

	require.NoError(t, b.Write(2))
	// reaches no subscriber but still flushes
	require.NoError(t, s.Root().Slice("c").Write(2))
	s.Batch(func() {
		require.NoError(t, b.Write(3))
		require.NoError(t, b.Write(4))
	})

	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(`
# HELP statetree_active_nodes Nodes currently kept up to date by a subscription.
# TYPE statetree_active_nodes gauge
statetree_active_nodes 2
# HELP statetree_commits_total Root commits, labelled by whether a batch deferred notification.
# TYPE statetree_commits_total counter
statetree_commits_total{batched="false"} 2
statetree_commits_total{batched="true"} 2
# HELP statetree_deliveries_total Subscriber callbacks invoked.
# TYPE statetree_deliveries_total counter
statetree_deliveries_total 2
# HELP statetree_flushes_total Notification passes over the tree.
# TYPE statetree_flushes_total counter
statetree_flushes_total 3
`), "statetree_active_nodes", "statetree_commits_total", "statetree_deliveries_total", "statetree_flushes_total"))

	sub.Close()
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(`
# HELP statetree_active_nodes Nodes currently kept up to date by a subscription.
# TYPE statetree_active_nodes gauge
statetree_active_nodes 0
# HELP statetree_activations_total Node activations.
# TYPE statetree_activations_total counter
statetree_activations_total 2
`), "statetree_active_nodes", "statetree_activations_total"))
}

func TestCollectorSharedAcrossStores(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := metrics.NewCollector(reg, "app")
	a := store.New(0, store.WithHooks(c))
	b := store.New(0, store.WithHooks(c))

	require.NoError(t, a.Root().Write(1))
	require.NoError(t, b.Root().Write(1))
	require.NoError(t, b.Root().Write(1))

	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(`
# HELP app_commits_total Root commits, labelled by whether a batch deferred notification.
# TYPE app_commits_total counter
app_commits_total{batched="false"} 2
`), "app_commits_total"))
}

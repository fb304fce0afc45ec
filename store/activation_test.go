package store_test

import (
	"testing"

	"github.com/delaneyj/statetree/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type hookRecorder struct {
	commits, batchedCommits, emits, delivered int
	activated, deactivated                    []string
}

func (h *hookRecorder) Committed(batched bool) {
	h.commits++
	if batched {
		h.batchedCommits++
	}
}

func (h *hookRecorder) Emitted(delivered int) {
	h.emits++
	h.delivered += delivered
}

func (h *hookRecorder) Activated(n *store.Node) {
	h.activated = append(h.activated, n.Path().String())
}

func (h *hookRecorder) Deactivated(n *store.Node) {
	h.deactivated = append(h.deactivated, n.Path().String())
}

func TestSliceIdentityWhileActive(t *testing.T) {
	s := store.New(map[string]any{"a": map[string]any{"b": 1}})
	root := s.Root()

	assert.NotSame(t, root.Slice("a"), root.Slice("a"))

	sub := root.At("a", "b").Subscribe(func(any) error { return nil })
	assert.Same(t, root.Slice("a"), root.Slice("a"))
	assert.Same(t, sub.Node(), root.Slice("a").Slice("b"))
	assert.True(t, root.Slice("a").IsActive())

	sub.Close()
	assert.NotSame(t, root.Slice("a"), root.Slice("a"))
	assert.False(t, sub.Node().IsActive())
}

func TestActivationHooksRunTopDown(t *testing.T) {
	hooks := &hookRecorder{}
	s := store.New(map[string]any{}, store.WithHooks(hooks))
	root := s.Root()

	deep := root.At("a", "b", "c").Subscribe(func(any) error { return nil })
	assert.Equal(t, []string{"/a", "/a/b", "/a/b/c"}, hooks.activated)

	// a second subscriber under /a keeps it alive
	side := root.At("a", "x").Subscribe(func(any) error { return nil })
	assert.Equal(t, []string{"/a", "/a/b", "/a/b/c", "/a/x"}, hooks.activated)

	deep.Close()
	assert.Equal(t, []string{"/a/b/c", "/a/b"}, hooks.deactivated)
	assert.True(t, root.Slice("a").IsActive())

	side.Close()
	assert.Equal(t, []string{"/a/b/c", "/a/b", "/a/x", "/a"}, hooks.deactivated)
	assert.True(t, root.IsActive())

	deep.Close()
	assert.Len(t, hooks.deactivated, 4)
}

func TestParentWithOwnSubscriberStaysActive(t *testing.T) {
	s := store.New(map[string]any{"a": map[string]any{"b": 1}})
	root := s.Root()

	a := root.Slice("a")
	parentSub := a.Subscribe(func(any) error { return nil })
	childSub := a.Slice("b").Subscribe(func(any) error { return nil })

	childSub.Close()
	assert.True(t, a.IsActive())
	assert.Same(t, a, root.Slice("a"))

	parentSub.Close()
	assert.False(t, a.IsActive())
}

func TestInactiveNodeReadsCurrentState(t *testing.T) {
	s := store.New(map[string]any{"a": map[string]any{"b": 1}})
	root := s.Root()
	b := root.At("a", "b")

	assert.Equal(t, 1, b.Read())
	require.NoError(t, root.Slice("a").Write(map[string]any{"b": 2}))
	assert.Equal(t, 2, b.Read())
	assert.False(t, b.IsActive())
}

func TestResubscribeAfterDeactivation(t *testing.T) {
	s := store.New(map[string]any{"a": 1})
	root := s.Root()
	a := root.Slice("a")

	var first []any
	sub := a.Subscribe(func(v any) error {
		first = append(first, v)
		return nil
	})
	sub.Close()
	require.NoError(t, root.Slice("a").Write(2))
	assert.Equal(t, []any{1}, first)

	var second []any
	sub = a.Subscribe(func(v any) error {
		second = append(second, v)
		return nil
	})
	defer sub.Close()
	require.NoError(t, root.Slice("a").Write(3))
	require.NoError(t, root.Slice("a").Write(3))
	assert.Equal(t, []any{2, 3}, second)
	assert.Equal(t, []any{1}, first)
}

func TestSubscriberAddedDuringCommitSeesFinalValue(t *testing.T) {
	s := store.New(map[string]any{"optional": "before"})
	root := s.Root()

	var bValues []any
	var b *store.Subscription
	notified := 0
	a := root.Subscribe(func(any) error {
		notified++
		if notified == 2 {
			b = root.Slice("optional").Subscribe(func(v any) error {
				bValues = append(bValues, v)
				return nil
			})
		}
		return nil
	})
	defer a.Close()

	require.NoError(t, root.Slice("optional").Write("X"))
	require.NotNil(t, b)
	defer b.Close()
	assert.Equal(t, []any{"X"}, bValues)

	require.NoError(t, root.Slice("optional").Write("Y"))
	assert.Equal(t, []any{"X", "Y"}, bValues)
}

func TestSubscriberAddedToPendingNodeIsNotDoubleNotified(t *testing.T) {
	s := store.New(map[string]any{"optional": "before"})
	root := s.Root()

	var cValues []any
	c := root.Slice("optional").Subscribe(func(v any) error {
		cValues = append(cValues, v)
		return nil
	})
	defer c.Close()

	var bValues []any
	var b *store.Subscription
	a := root.Subscribe(func(any) error {
		if b == nil && s.Read().(map[string]any)["optional"] == "X" {
			b = root.Slice("optional").Subscribe(func(v any) error {
				bValues = append(bValues, v)
				return nil
			})
		}
		return nil
	})
	defer a.Close()

	require.NoError(t, root.Slice("optional").Write("X"))
	require.NotNil(t, b)
	defer b.Close()
	assert.Equal(t, []any{"X"}, bValues)
	assert.Equal(t, []any{"before", "X"}, cValues)
}

func TestSubscriptionChangesDuringEmit(t *testing.T) {
	s := store.New(map[string]any{"n": 0})
	n := s.Root().Slice("n")

	var order []string
	var late *store.Subscription
	var first *store.Subscription
	first = n.Subscribe(func(v any) error {
		order = append(order, "first")
		if v == 1 {
			first.Close()
			late = n.Subscribe(func(any) error {
				order = append(order, "late")
				return nil
			})
		}
		return nil
	})
	second := n.Subscribe(func(any) error {
		order = append(order, "second")
		return nil
	})
	defer second.Close()

	order = order[:0]
	require.NoError(t, n.Write(1))
	require.NotNil(t, late)
	defer late.Close()
	assert.Equal(t, []string{"first", "late", "second"}, order)

	order = order[:0]
	require.NoError(t, n.Write(2))
	assert.Equal(t, []string{"second", "late"}, order)
}

func TestWriteFromCallbackDuringEmit(t *testing.T) {
	s := store.New(map[string]any{"in": 0, "out": 0})
	root := s.Root()

	sub := root.Slice("in").Subscribe(func(v any) error {
		return root.Slice("out").Write(v.(int) * 2)
	})
	defer sub.Close()

	var outs []any
	outSub := root.Slice("out").Subscribe(func(v any) error {
		outs = append(outs, v)
		return nil
	})
	defer outSub.Close()

	require.NoError(t, root.Slice("in").Write(21))
	assert.Equal(t, 42, root.Slice("out").Read())
	assert.Equal(t, []any{0, 42}, outs)
}

package spread_test

import (
	"testing"

	"github.com/delaneyj/statetree/spread"
	"github.com/delaneyj/statetree/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestItems(t *testing.T) {
	s := store.New(map[string]any{"list": []any{"a", "b", "c"}})
	list := s.Root().Slice("list")

	items := spread.Items(list)
	require.Len(t, items, 3)
	assert.Equal(t, "b", items[1].Read())
	assert.Equal(t, "/list/1", items[1].Path().String())

	require.NoError(t, items[2].Write("z"))
	assert.Equal(t, []any{"a", "b", "z"}, list.Read())

	assert.Nil(t, spread.Items(s.Root().Slice("absent")))
	assert.Nil(t, spread.Items(s.Root()))
}

func TestItemsReuseActiveNodes(t *testing.T) {
	s := store.New([]any{1, 2})
	var got []any
	sub := s.Root().Slice(0).Subscribe(func(v any) error {
		got = append(got, v)
		return nil
	})
	defer sub.Close()

	items := spread.Items(s.Root())
	assert.Same(t, sub.Node(), items[0])
	assert.False(t, items[1].IsActive())

	require.NoError(t, items[0].Write(10))
	assert.Equal(t, []any{1, 10}, got)
}

func TestEntriesSorted(t *testing.T) {
	s := store.New(map[string]any{"b": 2, "c": 3, "a": 1})

	entries := spread.Entries(s.Root())
	require.Len(t, entries, 3)
	var keys []any
	for _, e := range entries {
		keys = append(keys, e.Key)
	}
	assert.Equal(t, []any{"a", "b", "c"}, keys)
	assert.Equal(t, 3, entries[2].Node.Read())
}

func TestEntriesStruct(t *testing.T) {
	type row struct {
		Name   string
		Age    int
		hidden bool
	}
	s := store.New(&row{Name: "x", Age: 3, hidden: true})

	entries := spread.Entries(s.Root())
	require.Len(t, entries, 2)
	assert.Equal(t, "Age", entries[0].Key)
	assert.Equal(t, 3, entries[0].Node.Read())
	assert.Equal(t, "Name", entries[1].Key)

	assert.Nil(t, spread.Entries(s.Root().Slice("Age")))
}

func TestTypedItems(t *testing.T) {
	type todo struct {
		Title string
	}
	_, root := store.NewTyped([]todo{{"a"}, {"b"}})

	items := spread.TypedItems(root)
	require.Len(t, items, 2)
	assert.Equal(t, "b", items[1].Read().Title)

	require.NoError(t, items[0].Mutate(func(td *todo) { td.Title = "A" }))
	assert.Equal(t, []todo{{"A"}, {"b"}}, root.Read())
}

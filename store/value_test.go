package store_test

import (
	"testing"

	"github.com/delaneyj/statetree/store"
	"github.com/stretchr/testify/assert"
)

func TestSame(t *testing.T) {
	m := map[string]any{"a": 1}
	s := []any{1, 2, 3}
	p := &struct{ A int }{1}
	type pair struct{ A, B int }
	type withSlice struct{ S []int }

	assert.True(t, store.Same(nil, nil))
	assert.False(t, store.Same(nil, 0))
	assert.True(t, store.Same(m, m))
	assert.False(t, store.Same(m, map[string]any{"a": 1}))
	assert.True(t, store.Same(s, s))
	assert.False(t, store.Same(s, s[:2]))
	assert.False(t, store.Same(s, []any{1, 2, 3}))
	assert.True(t, store.Same(p, p))
	assert.False(t, store.Same(p, &struct{ A int }{1}))
	assert.True(t, store.Same("x", "x"))
	assert.False(t, store.Same(1, int64(1)))
	assert.True(t, store.Same(pair{1, 2}, pair{1, 2}))
	shared := []int{1}
	assert.True(t, store.Same(withSlice{shared}, withSlice{shared}))
	assert.False(t, store.Same(withSlice{[]int{1}}, withSlice{[]int{1}}))
	assert.True(t, store.Same(withSlice{}, withSlice{}))
	assert.False(t, store.Same([]any{[]int{1}}[0], []any{[]int{1}}[0]))
	assert.True(t, store.Same([2]any{m, s}, [2]any{m, s}))
	assert.False(t, store.Same([2]any{m, s}, [2]any{m, s[:1]}))
}

func TestSameFuncs(t *testing.T) {
	f := func() int { return 1 }
	g := func() int { return 1 }
	type holder struct {
		Fn   func() int
		Tags map[string]bool
	}
	tags := map[string]bool{}

	assert.True(t, store.Same(f, f))
	assert.False(t, store.Same(f, g))
	assert.True(t, store.Same(holder{f, tags}, holder{f, tags}))
	assert.False(t, store.Same(holder{f, tags}, holder{g, tags}))
	assert.False(t, store.Same(holder{f, tags}, holder{f, map[string]bool{}}))
}

func TestSameInterfaceFields(t *testing.T) {
	type box struct{ V any }
	s := []int{1}

	assert.True(t, store.Same(box{s}, box{s}))
	assert.False(t, store.Same(box{s}, box{[]int{1}}))
	assert.False(t, store.Same(box{1}, box{int64(1)}))
	assert.True(t, store.Same(box{}, box{}))
	assert.False(t, store.Same(box{}, box{0}))
}

package main

import (
	"fmt"
	"time"

	"github.com/delaneyj/statetree/store"
	"github.com/jamiealquiza/tachymeter"
	"go.uber.org/zap"
)

type result struct {
	name        string
	nodes       int
	subscribers int
	deliveries  int
	calc        *tachymeter.Metrics
}

// deepTree nests depth maps and puts a counter at the bottom.
func deepTree(depth int) (any, []any) {
	path := make([]any, 0, depth)
	var v any = 0
	for i := 0; i < depth; i++ {
		v = map[string]any{"next": v}
		path = append(path, "next")
	}
	return v, path
}

// runDeep writes the innermost value of a depth level tree while one
// subscriber watches it.
func runDeep(log *zap.Logger, depth, iters int) (*result, error) {
	initial, path := deepTree(depth)
	s := store.New(initial, store.WithLogger(log))
	leaf := s.Root().At(path...)

	deliveries := 0
	sub := leaf.Subscribe(func(any) error {
		deliveries++
		return nil
	})
	defer sub.Close()

	tach := tachymeter.New(&tachymeter.Config{Size: iters})
	for i := 0; i < iters; i++ {
		start := time.Now()
		if err := leaf.Update(func(v any) any { return v.(int) + 1 }); err != nil {
			return nil, err
		}
		tach.AddTime(time.Since(start))
	}

	if want := iters + 1; deliveries != want {
		return nil, fmt.Errorf("deep %d: %d deliveries, want %d", depth, deliveries, want)
	}
	return &result{
		name:        fmt.Sprintf("deep: %d", depth),
		nodes:       depth + 1,
		subscribers: 1,
		deliveries:  deliveries - 1,
		calc:        tach.Calc(),
	}, nil
}

// runWide writes one element of a width long list per iteration, cycling
// through the list, with every sample-th element subscribed.
func runWide(log *zap.Logger, width, sample, iters int) (*result, error) {
	items := make([]any, width)
	for i := range items {
		items[i] = 0
	}
	s := store.New(map[string]any{"items": items}, store.WithLogger(log))
	list := s.Root().Slice("items")

	deliveries := 0
	subs := make([]*store.Subscription, 0, width/sample+1)
	for i := 0; i < width; i += sample {
		subs = append(subs, list.Slice(i).Subscribe(func(any) error {
			deliveries++
			return nil
		}))
	}
	defer func() {
		for _, sub := range subs {
			sub.Close()
		}
	}()
	initial := deliveries

	tach := tachymeter.New(&tachymeter.Config{Size: iters})
	for i := 0; i < iters; i++ {
		item := list.Slice(i % width)
		start := time.Now()
		if err := item.Update(func(v any) any { return v.(int) + 1 }); err != nil {
			return nil, err
		}
		tach.AddTime(time.Since(start))
	}

	want := 0
	for i := 0; i < iters; i++ {
		if (i%width)%sample == 0 {
			want++
		}
	}
	if got := deliveries - initial; got != want {
		return nil, fmt.Errorf("wide %d: %d deliveries, want %d", width, got, want)
	}
	return &result{
		name:        fmt.Sprintf("wide: %d", width),
		nodes:       width + 2,
		subscribers: len(subs),
		deliveries:  want,
		calc:        tach.Calc(),
	}, nil
}

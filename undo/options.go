package undo

import (
	"time"

	"go.uber.org/zap"
)

type Option[S any] func(*Manager[S])

// WithExtract picks the part of the node's value the history stores. The
// default asserts the whole value to S.
func WithExtract[S any](fn func(v any) S) Option[S] {
	return func(m *Manager[S]) {
		m.extract = fn
	}
}

// WithApply replaces the default restore, which writes the entry back to
// the node.
func WithApply[S any](fn func(target S, dir Direction, overwritten S) error) Option[S] {
	return func(m *Manager[S]) {
		m.apply = fn
	}
}

func WithShouldPush[S any](fn func(candidate, current S) bool) Option[S] {
	return func(m *Manager[S]) {
		m.shouldPush = fn
	}
}

// WithMaxDepth bounds the number of undo steps kept.
func WithMaxDepth[S any](depth int) Option[S] {
	return func(m *Manager[S]) {
		m.maxDepth = depth
	}
}

// WithIsOverSize replaces the max depth check. The oldest entry is dropped
// for as long as fn reports true.
func WithIsOverSize[S any](fn func(stack []S) bool) Option[S] {
	return func(m *Manager[S]) {
		m.isOverSize = fn
	}
}

func WithClock[S any](now func() time.Time) Option[S] {
	return func(m *Manager[S]) {
		m.now = now
	}
}

func WithLogger[S any](logger *zap.Logger) Option[S] {
	return func(m *Manager[S]) {
		if logger != nil {
			m.log = logger
		}
	}
}

type pushConfig struct {
	collectKey      string
	collectDebounce time.Duration
}

type PushOption func(*pushConfig)

// CollectKey merges this push into the previous entry when that one was
// pushed with the same key.
func CollectKey(key string) PushOption {
	return func(c *pushConfig) {
		c.collectKey = key
	}
}

// CollectDebounce ends collecting once d passes without another push.
func CollectDebounce(d time.Duration) PushOption {
	return func(c *pushConfig) {
		c.collectDebounce = d
	}
}

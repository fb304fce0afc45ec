// Package undo keeps an undo/redo history of the state under a store node.
//
// The manager only reads, writes and subscribes to its node. Entries are
// whatever the extract function makes of the node's value, so a manager
// can track a slice of the state and leave the rest alone.
package undo

import (
	"errors"
	"slices"
	"time"

	"github.com/delaneyj/statetree/store"
	"go.uber.org/zap"
)

const DefaultMaxDepth = 100

var (
	ErrNothingToUndo = errors.New("nothing to undo")
	ErrNothingToRedo = errors.New("nothing to redo")
	ErrNothingToDrop = errors.New("no undo state to drop")
)

type Direction int

const (
	DirectionUndo Direction = iota
	DirectionRedo
)

func (d Direction) String() string {
	if d == DirectionRedo {
		return "redo"
	}
	return "undo"
}

// ApplyFunc restores target. overwritten is the state being replaced.
type ApplyFunc[S any] func(target S, dir Direction, overwritten S) error

// ShouldPushFunc decides whether candidate deserves a new entry on top of
// current, the entry at the current index.
type ShouldPushFunc[S any] func(candidate, current S) bool

type Manager[S any] struct {
	node       *store.Node
	extract    func(v any) S
	apply      ApplyFunc[S]
	shouldPush ShouldPushFunc[S]
	isOverSize func(stack []S) bool
	maxDepth   int
	now        func() time.Time
	log        *zap.Logger

	stack          []S
	index          int
	lastCollectKey string
	collectUntil   time.Time
	applying       bool

	// restored is the value an apply wrote that Track has not seen yet,
	// which happens when the apply ran inside a batch.
	restored    any
	hasRestored bool
	sawApply    bool
}

func New[S any](n *store.Node, opts ...Option[S]) *Manager[S] {
	m := &Manager[S]{
		node:     n,
		maxDepth: DefaultMaxDepth,
		now:      time.Now,
		log:      zap.NewNop(),
		extract: func(v any) S {
			s, _ := v.(S)
			return s
		},
		apply: func(target S, _ Direction, _ S) error {
			return n.Write(target)
		},
		shouldPush: func(S, S) bool { return true },
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.isOverSize == nil {
		m.isOverSize = func(stack []S) bool {
			return len(stack)-1 > m.maxDepth
		}
	}
	m.Reset()
	return m
}

// Reset drops all history and starts over from the node's current state.
func (m *Manager[S]) Reset() {
	m.stack = m.stack[:0]
	m.index = -1
	m.lastCollectKey = ""
	m.collectUntil = time.Time{}
	m.restored, m.hasRestored = nil, false

	m.stack = append(m.stack, m.extract(m.node.Read()))
	m.index = 0
}

// PushCurrentState records the node's current state. Consecutive pushes
// with the same collect key share one entry until the key changes or the
// debounce window passes. Pushing discards everything redo could reach.
func (m *Manager[S]) PushCurrentState(opts ...PushOption) bool {
	var cfg pushConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	state := m.extract(m.node.Read())
	if !m.shouldPush(state, m.stack[m.index]) {
		return false
	}

	now := m.now()
	collected := false
	if m.collecting(cfg.collectKey, now) {
		m.index--
		collected = true
		if !m.shouldPush(state, m.stack[m.index]) {
			// the collected edits cancel out
			m.stack = m.stack[:m.index+1]
			m.lastCollectKey = ""
			return false
		}
	}

	m.stack = append(m.stack[:m.index+1], state)
	m.index++
	m.lastCollectKey = cfg.collectKey
	m.collectUntil = time.Time{}
	if cfg.collectDebounce > 0 {
		m.collectUntil = now.Add(cfg.collectDebounce)
	}

	evicted := m.evict()
	if ce := m.log.Check(zap.DebugLevel, "undo state pushed"); ce != nil {
		ce.Write(
			zap.Int("index", m.index),
			zap.Int("size", len(m.stack)),
			zap.Bool("collected", collected),
			zap.Int("evicted", evicted),
		)
	}
	return true
}

func (m *Manager[S]) collecting(key string, now time.Time) bool {
	if key == "" || key != m.lastCollectKey || m.index < 1 {
		return false
	}
	return m.collectUntil.IsZero() || !now.After(m.collectUntil)
}

func (m *Manager[S]) evict() (evicted int) {
	for len(m.stack) > 1 && m.isOverSize(m.stack) {
		m.stack = slices.Delete(m.stack, 0, 1)
		m.index--
		evicted++
	}
	if m.index < 0 {
		m.index = 0
	}
	return evicted
}

func (m *Manager[S]) Undo() error {
	if !m.CanUndo() {
		return ErrNothingToUndo
	}
	return m.move(-1, DirectionUndo)
}

func (m *Manager[S]) Redo() error {
	if !m.CanRedo() {
		return ErrNothingToRedo
	}
	return m.move(1, DirectionRedo)
}

func (m *Manager[S]) move(delta int, dir Direction) error {
	overwritten := m.extract(m.node.Read())
	m.index += delta
	m.lastCollectKey = ""

	m.applying = true
	m.sawApply = false
	err := m.apply(m.stack[m.index], dir, overwritten)
	m.applying = false
	if err != nil {
		m.index -= delta
		return err
	}
	m.hasRestored = !m.sawApply
	if m.hasRestored {
		m.restored = m.node.Read()
	}

	if ce := m.log.Check(zap.DebugLevel, "undo state applied"); ce != nil {
		ce.Write(zap.Stringer("direction", dir), zap.Int("index", m.index))
	}
	return nil
}

// DropCurrentUndoState removes the entry the next Undo would restore. The
// store is left alone.
func (m *Manager[S]) DropCurrentUndoState() error {
	if !m.CanUndo() {
		return ErrNothingToDrop
	}
	m.stack = slices.Delete(m.stack, m.index-1, m.index)
	m.index--
	return nil
}

func (m *Manager[S]) CanUndo() bool {
	return m.index > 0
}

func (m *Manager[S]) CanRedo() bool {
	return m.index < len(m.stack)-1
}

// Stack returns a copy of the history, oldest first.
func (m *Manager[S]) Stack() []S {
	return slices.Clone(m.stack)
}

func (m *Manager[S]) Index() int {
	return m.index
}

// Track pushes the current state after every change of the node, except
// the ones made by Undo and Redo themselves, including those a batch
// delivers later.
func (m *Manager[S]) Track(opts ...PushOption) *store.Subscription {
	initial := true
	return m.node.Subscribe(func(v any) error {
		if initial {
			initial = false
			return nil
		}
		if m.applying {
			m.sawApply = true
			return nil
		}
		if m.hasRestored {
			m.hasRestored = false
			restored := m.restored
			m.restored = nil
			if store.Same(v, restored) {
				return nil
			}
		}
		m.PushCurrentState(opts...)
		return nil
	})
}

// Package store holds a single immutable state tree behind composable
// slice handles.
//
// A Store owns the canonical value. Nodes denote paths into it: reading a
// node resolves its path, writing clones every container on the way back
// up to the root, and subscribers are told only about the paths they
// watch. A commit runs in two phases. The update phase pushes the new
// value down into every active node whose value changed, then the emit
// phase walks the same nodes again and calls subscribers. Batches defer
// the emit phase until the outermost batch ends.
//
// All of it is single threaded. Callbacks may write, subscribe and
// unsubscribe reentrantly.
package store

import (
	"go.uber.org/zap"
)

// ErrorHandler receives errors returned by subscriber callbacks.
type ErrorHandler func(n *Node, err error)

// Hooks observe the engine. Implementations must not write to the store.
type Hooks interface {
	Committed(batched bool)
	Emitted(delivered int)
	Activated(n *Node)
	Deactivated(n *Node)
}

// NopHooks ignores everything.
type NopHooks struct{}

func (NopHooks) Committed(bool)    {}
func (NopHooks) Emitted(int)       {}
func (NopHooks) Activated(*Node)   {}
func (NopHooks) Deactivated(*Node) {}

type Option func(*Store)

func WithLogger(logger *zap.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.log = logger
		}
	}
}

// WithErrorHandler replaces the default handler, which logs at warn level.
func WithErrorHandler(fn ErrorHandler) Option {
	return func(s *Store) {
		if fn != nil {
			s.onError = fn
		}
	}
}

func WithHooks(h Hooks) Option {
	return func(s *Store) {
		if h != nil {
			s.hooks = h
		}
	}
}

// Store owns the canonical state and the batch depth shared by every node
// sliced from its root.
type Store struct {
	root       *Node
	batchDepth int
	seq        uint64

	log     *zap.Logger
	onError ErrorHandler
	hooks   Hooks
}

func New(initial any, opts ...Option) *Store {
	s := &Store{
		log:   zap.NewNop(),
		hooks: NopHooks{},
	}
	s.onError = func(n *Node, err error) {
		s.log.Warn("subscriber failed", zap.Stringer("path", n.Path()), zap.Error(err))
	}
	for _, opt := range opts {
		opt(s)
	}
	s.root = &Node{
		store:  s,
		hash:   rootHash,
		last:   initial,
		active: true,
	}
	return s
}

func (s *Store) Root() *Node {
	return s.root
}

func (s *Store) Read() any {
	return s.root.last
}

func (s *Store) StartBatch() {
	s.batchDepth++
}

func (s *Store) EndBatch() {
	s.batchDepth--
	if s.batchDepth == 0 {
		s.flush()
	}
}

// Batch runs fn with notifications held back. Writes inside fn are visible
// to reads immediately; subscribers hear about all of them once, when the
// outermost batch returns.
func (s *Store) Batch(fn func()) {
	s.StartBatch()
	defer s.EndBatch()
	fn()
}

func (s *Store) commit(v any) {
	root := s.root
	root.last = v
	root.pending = true
	s.update(root)

	batched := s.batchDepth > 0
	s.hooks.Committed(batched)
	if !batched {
		s.flush()
	}
}

// update pushes n's value into its active children, recursing only where
// a child's value actually changed.
func (s *Store) update(n *Node) {
	for _, set := range n.children {
		set.Each(func(c *Node) bool {
			v := lookup(n.last, c.key)
			if Same(v, c.last) {
				return false
			}
			c.last = v
			c.pending = true
			s.update(c)
			return false
		})
	}
}

func (s *Store) flush() {
	if !s.root.pending {
		return
	}
	delivered := s.emit(s.root)
	s.hooks.Emitted(delivered)
	if ce := s.log.Check(zap.DebugLevel, "flushed"); ce != nil {
		ce.Write(zap.Int("delivered", delivered))
	}
}

func (s *Store) emit(n *Node) (delivered int) {
	n.pending = false

	if len(n.subs) > 0 {
		subs := make([]*Subscription, len(n.subs))
		copy(subs, n.subs)
		for _, sub := range subs {
			if sub.deliver() {
				delivered++
			}
		}
	}

	var next []*Node
	for _, set := range n.children {
		set.Each(func(c *Node) bool {
			if c.pending {
				next = append(next, c)
			}
			return false
		})
	}
	sortByID(next)
	for _, c := range next {
		// a nested commit may already have emitted this subtree
		if c.pending {
			delivered += s.emit(c)
		}
	}
	return delivered
}

// activate registers n and its inactive ancestors, top-down, so each one
// resolves its value from an up to date parent.
func (s *Store) activate(n *Node) {
	if n.active {
		return
	}
	s.activate(n.parent)

	n.last = lookup(n.parent.last, n.key)
	n.active = true
	n.pending = false
	s.seq++
	n.id = s.seq
	n.parent.addChild(n)

	s.hooks.Activated(n)
	if ce := s.log.Check(zap.DebugLevel, "node activated"); ce != nil {
		ce.Write(zap.Stringer("path", n.Path()))
	}
}

// release deactivates n and then its ancestors for as long as nothing
// below them is observed.
func (s *Store) release(n *Node) {
	for n.parent != nil && n.active && len(n.subs) == 0 && len(n.children) == 0 {
		n.parent.removeChild(n)
		n.active = false
		n.pending = false

		s.hooks.Deactivated(n)
		if ce := s.log.Check(zap.DebugLevel, "node deactivated"); ce != nil {
			ce.Write(zap.Stringer("path", n.Path()))
		}
		n = n.parent
	}
}

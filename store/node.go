package store

import (
	"fmt"
	"reflect"
	"slices"
	"sort"

	mapset "github.com/deckarep/golang-set/v2"
)

// Node is a handle on one path of a store's state. Nodes are cheap and
// created on demand by Slice. While something below a node is subscribed
// the node is active: it is kept up to date on every commit and slicing
// its parent by the same key returns this very instance.
type Node struct {
	store  *Store
	parent *Node
	key    any
	hash   uint64
	depth  int

	// id orders siblings by activation, it is zero until first activated.
	id      uint64
	last    any
	active  bool
	pending bool

	subs     []*Subscription
	children map[any]mapset.Set[*Node]
}

func (n *Node) Store() *Store {
	return n.store
}

func (n *Node) Parent() *Node {
	return n.parent
}

func (n *Node) Key() any {
	return n.key
}

func (n *Node) IsActive() bool {
	return n.active
}

func (n *Node) Path() Path {
	p := make(Path, n.depth)
	for c := n; c.parent != nil; c = c.parent {
		p[c.depth-1] = c.key
	}
	return p
}

// Slice returns the child node for key. Keys must be comparable: strings
// for map entries and struct fields, ints for slice elements.
func (n *Node) Slice(key any) *Node {
	if set, ok := n.children[key]; ok {
		if c := firstByID(set); c != nil {
			return c
		}
	}
	return &Node{
		store:  n.store,
		parent: n,
		key:    key,
		hash:   childHash(n.hash, key),
		depth:  n.depth + 1,
	}
}

// At slices repeatedly, one key per path element.
func (n *Node) At(path ...any) *Node {
	c := n
	for _, k := range path {
		c = c.Slice(k)
	}
	return c
}

// Read returns the node's current value. Active nodes answer from their
// cache; inactive ones resolve the path from the nearest active ancestor.
func (n *Node) Read() any {
	if n.active {
		return n.last
	}
	n.last = lookup(n.parent.Read(), n.key)
	return n.last
}

func (n *Node) SameTarget(other *Node) bool {
	if other == nil || n.store != other.store || n.hash != other.hash || n.depth != other.depth {
		return false
	}
	for a, b := n, other; a != b; a, b = a.parent, b.parent {
		if a.key != b.key {
			return false
		}
	}
	return true
}

// Write replaces the node's value. Writing the value the node already
// holds is a no-op. Otherwise every container between the node and the
// root is shallow-cloned with the new child in place and the root commits.
func (n *Node) Write(v any) error {
	lineage := n.lineage()
	values := make([]any, len(lineage))
	values[0] = n.store.root.last
	for i := 1; i < len(lineage); i++ {
		values[i] = lookup(values[i-1], lineage[i].key)
	}
	if Same(values[len(values)-1], v) {
		return nil
	}

	next := v
	for i := len(lineage) - 1; i > 0; i-- {
		var err error
		if next, err = withKey(values[i-1], lineage[i].key, next); err != nil {
			return fmt.Errorf("write %s: %w", n.Path(), err)
		}
	}
	n.store.commit(next)
	return nil
}

// Delete writes Missing. Map entries are removed, slice elements and
// struct fields are reset to their zero value.
func (n *Node) Delete() error {
	return n.Write(Missing)
}

// Assign merges partial into the node's value. When every key already
// holds the given value the call is a no-op.
func (n *Node) Assign(partial map[string]any) error {
	cur := n.Read()
	if isMissing(cur) {
		return fmt.Errorf("assign %s: %w", n.Path(), ErrMissingParent)
	}

	keys := make([]string, 0, len(partial))
	changed := false
	for k, v := range partial {
		keys = append(keys, k)
		if !Same(lookup(cur, k), v) {
			changed = true
		}
	}
	if !changed {
		return n.Write(cur)
	}
	sort.Strings(keys)

	next, err := withKeys(cur, partial, keys)
	if err != nil {
		return fmt.Errorf("assign %s: %w", n.Path(), err)
	}
	return n.Write(next)
}

func (n *Node) Update(fn func(v any) any) error {
	return n.Write(fn(n.Read()))
}

// Mutate hands fn a shallow clone of the node's value and writes the
// clone back. Struct and array values are handed over as a pointer to
// the copy.
func (n *Node) Mutate(fn func(v any)) error {
	cur := n.Read()
	if isMissing(cur) {
		return fmt.Errorf("mutate %s: %w", n.Path(), ErrMissingParent)
	}
	c, err := cloneValue(reflect.ValueOf(cur))
	if err != nil {
		return fmt.Errorf("mutate %s: %w", n.Path(), err)
	}
	if c.Kind() == reflect.Struct || c.Kind() == reflect.Array {
		fn(c.Addr().Interface())
	} else {
		fn(c.Interface())
	}
	return n.Write(c.Interface())
}

// Batch forwards to the owning store.
func (n *Node) Batch(fn func()) {
	n.store.Batch(fn)
}

// Subscribe activates the node and calls fn with its current value right
// away, then again after every commit that changes it. The returned
// subscription must be closed to release the node.
func (n *Node) Subscribe(fn func(v any) error) *Subscription {
	sub := &Subscription{node: n, fn: fn}
	n.store.activate(n)
	n.subs = append(n.subs, sub)

	sub.lastEmitted = n.last
	if err := fn(n.last); err != nil {
		n.store.onError(n, err)
	}
	return sub
}

func (n *Node) lineage() []*Node {
	l := make([]*Node, n.depth+1)
	for c := n; c != nil; c = c.parent {
		l[c.depth] = c
	}
	return l
}

func (n *Node) addChild(c *Node) {
	if n.children == nil {
		n.children = map[any]mapset.Set[*Node]{}
	}
	set, ok := n.children[c.key]
	if !ok {
		set = mapset.NewThreadUnsafeSet[*Node]()
		n.children[c.key] = set
	}
	set.Add(c)
}

func (n *Node) removeChild(c *Node) {
	set, ok := n.children[c.key]
	if !ok {
		return
	}
	set.Remove(c)
	if set.Cardinality() == 0 {
		delete(n.children, c.key)
	}
}

func (n *Node) removeSub(sub *Subscription) {
	n.subs = slices.DeleteFunc(n.subs, func(s *Subscription) bool {
		return s == sub
	})
}

func firstByID(set mapset.Set[*Node]) *Node {
	var first *Node
	set.Each(func(c *Node) bool {
		if first == nil || c.id < first.id {
			first = c
		}
		return false
	})
	return first
}

func sortByID(nodes []*Node) {
	if len(nodes) < 2 {
		return
	}
	sort.Slice(nodes, func(i, j int) bool {
		return nodes[i].id < nodes[j].id
	})
}

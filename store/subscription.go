package store

// Subscription is the handle returned by Subscribe. Close it on every exit
// path, an open subscription keeps its node and all ancestors active.
type Subscription struct {
	node        *Node
	fn          func(v any) error
	lastEmitted any
	closed      bool
}

func (sub *Subscription) Node() *Node {
	return sub.node
}

// Close removes the subscription and deactivates whatever it alone kept
// active. Closing twice is fine.
func (sub *Subscription) Close() {
	if sub.closed {
		return
	}
	sub.closed = true
	sub.node.removeSub(sub)
	sub.node.store.release(sub.node)
}

func (sub *Subscription) deliver() bool {
	if sub.closed {
		return false
	}
	v := sub.node.last
	if Same(v, sub.lastEmitted) {
		return false
	}
	sub.lastEmitted = v
	if err := sub.fn(v); err != nil {
		sub.node.store.onError(sub.node, err)
	}
	return true
}

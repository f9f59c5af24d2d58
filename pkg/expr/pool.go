package expr

import "errors"

// DefaultCapacity is the pool size used by the reference benchmark: large
// enough to hold every reference program's tree at the same time.
const DefaultCapacity = 10000

// ErrPoolExhausted is returned by Allocate when no free slots remain.
// Callers treat this as fatal for the current run; the pool never grows.
var ErrPoolExhausted = errors.New("expression pool exhausted")

// Pool is fixed-capacity storage for expression nodes with O(1) allocate and
// deallocate through an intrusive freelist (the Left field of a free node
// holds the next free slot). All node storage belongs to the pool; trees hold
// only Refs into it.
//
// A Pool is not safe for concurrent use. Independent evaluators need
// independent pools.
type Pool struct {
	nodes []Node
	free  Ref // head of the freelist, NilRef when exhausted
	live  int
}

// NewPool creates a pool with the given fixed capacity.
func NewPool(capacity int) *Pool {
	p := &Pool{nodes: make([]Node, capacity)}
	p.Reset()
	return p
}

// Reset rebuilds the freelist over the full backing array, discarding all
// live nodes. Any outstanding Refs are invalidated.
func (p *Pool) Reset() {
	for i := range p.nodes {
		if i == len(p.nodes)-1 {
			p.nodes[i].Left = NilRef
		} else {
			p.nodes[i].Left = Ref(i + 1)
		}
	}
	if len(p.nodes) == 0 {
		p.free = NilRef
	} else {
		p.free = 0
	}
	p.live = 0
}

// Allocate pops the freelist head and returns a zeroed node slot of the
// given kind. Returns ErrPoolExhausted when no slot is free.
func (p *Pool) Allocate(kind Kind) (Ref, error) {
	ref := p.free
	if ref == NilRef {
		return NilRef, ErrPoolExhausted
	}
	p.free = p.nodes[ref].Left
	p.nodes[ref] = Node{Kind: kind, Left: NilRef, Right: NilRef}
	p.live++
	return ref, nil
}

// Deallocate pushes a single slot back onto the freelist head (LIFO reuse).
// The caller must guarantee no live tree still references the node; use Free
// to recycle a whole tree.
func (p *Pool) Deallocate(ref Ref) {
	p.nodes[ref].Left = p.free
	p.free = ref
	p.live--
}

// Free recycles the whole tree rooted at ref, children first. This is the
// only sanctioned way to return a tree's nodes: recycling happens strictly on
// trees being discarded in full, so no live tree can hold a freed Ref.
func (p *Pool) Free(ref Ref) {
	if ref == NilRef {
		return
	}
	n := p.nodes[ref]
	switch n.Kind {
	case KindAdd, KindSub, KindMul, KindDiv, KindRem:
		p.Free(n.Left)
		p.Free(n.Right)
	case KindSqrt, KindStore:
		p.Free(n.Left)
	}
	p.Deallocate(ref)
}

// Get returns the node stored at ref. The pointer stays valid until the slot
// is deallocated; it must not be retained across Reset.
func (p *Pool) Get(ref Ref) *Node {
	return &p.nodes[ref]
}

// Live reports the number of currently allocated nodes.
func (p *Pool) Live() int {
	return p.live
}

// Cap reports the pool's fixed capacity.
func (p *Pool) Cap() int {
	return len(p.nodes)
}

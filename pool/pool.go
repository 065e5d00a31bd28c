package pool

import (
	"unsafe"

	"github.com/pkg/errors"

	"github.com/pavanmanishd/allockit"
)

// nilIndex terminates the free list.
const nilIndex = -1

type nodeState uint8

const (
	stateFree nodeState = iota
	stateInUse
)

type node[T any] struct {
	mem   []byte // parent memory backing val
	val   *T
	next  int32 // next free node while on the free list
	state nodeState
}

// Ref is a value checked out of a Pool. It carries the back-reference the
// pool needs to recycle the node on Release.
type Ref[T any] struct {
	pool *Pool[T]
	gen  uint32
	idx  int32
	val  *T
}

// Value returns the pooled value.
func (r Ref[T]) Value() *T { return r.val }

// Valid reports whether r was returned by Acquire.
func (r Ref[T]) Valid() bool { return r.pool != nil }

// Pool is an object pool over a parent allocator. Released nodes go onto a
// free list and are handed out again before any new node is created; node
// memory returns to the parent only on Deinit.
//
// Not goroutine-safe. Use SyncPool for concurrent access.
type Pool[T any] struct {
	parent allockit.Allocator
	layout allockit.Layout
	init   func(*T)
	nodes  []node[T]
	free   int32
	used   int
	gen    uint32 // bumped by Deinit; refs from earlier generations are stale
}

// New creates an empty pool drawing nodes from parent.
// If parent is nil, allockit.Heap is used.
func New[T any](parent allockit.Allocator) *Pool[T] {
	return NewWithInit[T](parent, nil)
}

// NewWithInit creates a pool that runs init on every node the first time it
// is created. Recycled nodes are not re-initialized.
func NewWithInit[T any](parent allockit.Allocator, init func(*T)) *Pool[T] {
	if parent == nil {
		parent = allockit.Heap
	}
	return &Pool[T]{
		parent: parent,
		layout: allockit.LayoutOf[T](),
		init:   init,
		free:   nilIndex,
	}
}

// Acquire pops a node off the free list, or creates one from the parent when
// the list is empty. It fails only if the parent fails.
func (p *Pool[T]) Acquire() (Ref[T], error) {
	if p.free == nilIndex {
		if err := p.create(); err != nil {
			return Ref[T]{}, err
		}
	}
	i := p.free
	n := &p.nodes[i]
	p.free = n.next
	n.next = nilIndex
	n.state = stateInUse
	p.used++
	return Ref[T]{pool: p, gen: p.gen, idx: i, val: n.val}, nil
}

// create obtains one node from the parent and pushes it onto the free list.
func (p *Pool[T]) create() error {
	var (
		mem []byte
		val *T
	)
	if p.layout.Size == 0 {
		val = new(T)
	} else {
		var err error
		mem, err = p.parent.Alloc(p.layout.Size, p.layout.Align)
		if err != nil {
			return errors.Wrapf(err, "pool: create node of %d bytes", p.layout.Size)
		}
		val = (*T)(unsafe.Pointer(unsafe.SliceData(mem)))
	}
	if p.init != nil {
		p.init(val)
	}
	p.nodes = append(p.nodes, node[T]{mem: mem, val: val, next: p.free, state: stateFree})
	p.free = int32(len(p.nodes) - 1)
	return nil
}

// Release pushes the node behind r onto the free list. Releasing a ref twice,
// a ref from another pool or a ref acquired before Deinit panics.
func (p *Pool[T]) Release(r Ref[T]) {
	if r.pool != p {
		panic("pool: release of a ref not acquired from this pool")
	}
	if r.gen != p.gen {
		panic("pool: release of a ref acquired before Deinit")
	}
	n := &p.nodes[r.idx]
	if n.state != stateInUse {
		panic("pool: double release")
	}
	n.state = stateFree
	n.next = p.free
	p.free = r.idx
	p.used--
}

// Preheat creates n free nodes up front.
func (p *Pool[T]) Preheat(n int) error {
	for range n {
		if err := p.create(); err != nil {
			return err
		}
	}
	return nil
}

// Capacity returns the number of nodes created so far.
func (p *Pool[T]) Capacity() int { return len(p.nodes) }

// Used returns the number of nodes currently checked out.
func (p *Pool[T]) Used() int { return p.used }

// FreeLen walks the free list and returns its length.
func (p *Pool[T]) FreeLen() int {
	n := 0
	for i := p.free; i != nilIndex; i = p.nodes[i].next {
		n++
	}
	return n
}

// Deinit walks the free list returning node memory to the parent. Nodes still
// in use are not freed; their count is reported as ErrLeaked. Releasing a ref
// acquired before Deinit panics. The pool is empty and reusable once Deinit
// returns.
func (p *Pool[T]) Deinit() error {
	for i := p.free; i != nilIndex; {
		n := &p.nodes[i]
		if p.layout.Size > 0 {
			p.parent.Free(n.mem, p.layout.Align)
		}
		i = n.next
	}
	leaked := p.used
	p.nodes = nil
	p.free = nilIndex
	p.used = 0
	p.gen++
	if leaked > 0 {
		return errors.Wrapf(ErrLeaked, "%d of them", leaked)
	}
	return nil
}

package expr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPoolExhaustion(t *testing.T) {
	p := NewPool(4)

	refs := make([]Ref, 0, 4)
	for i := 0; i < 4; i++ {
		ref, err := p.Allocate(KindConstant)
		require.NoError(t, err)
		refs = append(refs, ref)
	}
	assert.Equal(t, 4, p.Live())

	// The (N+1)-th allocation must fail deterministically.
	_, err := p.Allocate(KindConstant)
	assert.ErrorIs(t, err, ErrPoolExhausted)

	// Returning one slot makes allocation succeed again.
	p.Deallocate(refs[2])
	_, err = p.Allocate(KindConstant)
	assert.NoError(t, err)
}

func TestPoolLIFOReuse(t *testing.T) {
	p := NewPool(8)

	a, err := p.Allocate(KindConstant)
	require.NoError(t, err)
	b, err := p.Allocate(KindConstant)
	require.NoError(t, err)

	// Deallocating and immediately allocating again returns the exact slot.
	p.Deallocate(b)
	b2, err := p.Allocate(KindAdd)
	require.NoError(t, err)
	assert.Equal(t, b, b2)

	// LIFO order across two frees: the last freed slot comes back first.
	p.Deallocate(a)
	p.Deallocate(b2)
	first, err := p.Allocate(KindConstant)
	require.NoError(t, err)
	second, err := p.Allocate(KindConstant)
	require.NoError(t, err)
	assert.Equal(t, b2, first)
	assert.Equal(t, a, second)
}

func TestPoolAllocateZeroesSlot(t *testing.T) {
	p := NewPool(2)

	ref, err := p.Allocate(KindConstant)
	require.NoError(t, err)
	n := p.Get(ref)
	n.Value = 42
	n.Reg = 7
	n.Name = 'x'
	p.Deallocate(ref)

	ref2, err := p.Allocate(KindLoad)
	require.NoError(t, err)
	require.Equal(t, ref, ref2)
	n2 := p.Get(ref2)
	assert.Equal(t, KindLoad, n2.Kind)
	assert.Zero(t, n2.Value)
	assert.Zero(t, n2.Reg)
	assert.Zero(t, n2.Name)
	assert.Equal(t, NilRef, n2.Left)
	assert.Equal(t, NilRef, n2.Right)
}

func TestPoolFreeTree(t *testing.T) {
	p := NewPool(16)

	// Build @store(3, 1 + 2) by hand.
	one, err := p.Allocate(KindConstant)
	require.NoError(t, err)
	p.Get(one).Value = 1
	two, err := p.Allocate(KindConstant)
	require.NoError(t, err)
	p.Get(two).Value = 2
	add, err := p.Allocate(KindAdd)
	require.NoError(t, err)
	p.Get(add).Left = one
	p.Get(add).Right = two
	store, err := p.Allocate(KindStore)
	require.NoError(t, err)
	p.Get(store).Reg = 3
	p.Get(store).Left = add

	require.Equal(t, 4, p.Live())
	p.Free(store)
	assert.Equal(t, 0, p.Live())

	// Every slot must be reachable again.
	for i := 0; i < p.Cap(); i++ {
		_, err := p.Allocate(KindConstant)
		require.NoError(t, err)
	}
	_, err = p.Allocate(KindConstant)
	assert.ErrorIs(t, err, ErrPoolExhausted)
}

func TestPoolReset(t *testing.T) {
	p := NewPool(3)

	for i := 0; i < 3; i++ {
		_, err := p.Allocate(KindConstant)
		require.NoError(t, err)
	}
	_, err := p.Allocate(KindConstant)
	require.ErrorIs(t, err, ErrPoolExhausted)

	p.Reset()
	assert.Equal(t, 0, p.Live())
	for i := 0; i < 3; i++ {
		_, err := p.Allocate(KindConstant)
		require.NoError(t, err)
	}
}

func TestTreeString(t *testing.T) {
	p := NewPool(16)

	x, _ := p.Allocate(KindIdent)
	p.Get(x).Name = 'x'
	one, _ := p.Allocate(KindConstant)
	p.Get(one).Value = 1
	sub, _ := p.Allocate(KindSub)
	p.Get(sub).Left = x
	p.Get(sub).Right = one
	store, _ := p.Allocate(KindStore)
	p.Get(store).Reg = 5
	p.Get(store).Left = sub

	assert.Equal(t, "@store(5, (x - 1))", p.String(store))
}

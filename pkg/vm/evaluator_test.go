package vm

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"digitron/pkg/expr"
)

// treeBuilder keeps the hand-built trees in the tests readable.
type treeBuilder struct {
	t    *testing.T
	pool *expr.Pool
}

func newTreeBuilder(t *testing.T) *treeBuilder {
	return &treeBuilder{t: t, pool: expr.NewPool(64)}
}

func (b *treeBuilder) alloc(kind expr.Kind) expr.Ref {
	ref, err := b.pool.Allocate(kind)
	require.NoError(b.t, err)
	return ref
}

func (b *treeBuilder) constant(v float64) expr.Ref {
	ref := b.alloc(expr.KindConstant)
	b.pool.Get(ref).Value = v
	return ref
}

func (b *treeBuilder) binary(kind expr.Kind, left, right expr.Ref) expr.Ref {
	ref := b.alloc(kind)
	n := b.pool.Get(ref)
	n.Left = left
	n.Right = right
	return ref
}

func (b *treeBuilder) sqrt(arg expr.Ref) expr.Ref {
	ref := b.alloc(expr.KindSqrt)
	b.pool.Get(ref).Left = arg
	return ref
}

func (b *treeBuilder) load(reg int8) expr.Ref {
	ref := b.alloc(expr.KindLoad)
	b.pool.Get(ref).Reg = reg
	return ref
}

func (b *treeBuilder) store(reg int8, arg expr.Ref) expr.Ref {
	ref := b.alloc(expr.KindStore)
	n := b.pool.Get(ref)
	n.Reg = reg
	n.Left = arg
	return ref
}

func (b *treeBuilder) ident(name byte) expr.Ref {
	ref := b.alloc(expr.KindIdent)
	b.pool.Get(ref).Name = name
	return ref
}

func TestEvaluateConstant(t *testing.T) {
	b := newTreeBuilder(t)
	env := NewEnvironment()
	require.NoError(t, env.BindInput('x', 99))

	got, err := Evaluate(b.pool, b.constant(3.25), env)
	require.NoError(t, err)
	assert.Equal(t, 3.25, got)
}

func TestEvaluateArithmetic(t *testing.T) {
	tests := []struct {
		name     string
		kind     expr.Kind
		l, r     float64
		expected float64
	}{
		{"add", expr.KindAdd, 2, 3, 5},
		{"sub", expr.KindSub, 2, 3, -1},
		{"mul", expr.KindMul, 2.5, 4, 10},
		{"div", expr.KindDiv, 7, 2, 3.5},
		{"rem positive", expr.KindRem, 7, 2, 1},
		{"rem negative dividend", expr.KindRem, -7, 2, -1},
		{"rem truncates operands", expr.KindRem, 7.9, 2.9, 1},
		{"rem modulus magnitude", expr.KindRem, 25, 23, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := newTreeBuilder(t)
			root := b.binary(tt.kind, b.constant(tt.l), b.constant(tt.r))
			got, err := Evaluate(b.pool, root, NewEnvironment())
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestEvaluateDivisionByZero(t *testing.T) {
	b := newTreeBuilder(t)

	// Float division by zero follows IEEE semantics: no error.
	root := b.binary(expr.KindDiv, b.constant(1), b.constant(0))
	got, err := Evaluate(b.pool, root, NewEnvironment())
	require.NoError(t, err)
	assert.True(t, math.IsInf(got, 1))

	root = b.binary(expr.KindDiv, b.constant(-1), b.constant(0))
	got, err = Evaluate(b.pool, root, NewEnvironment())
	require.NoError(t, err)
	assert.True(t, math.IsInf(got, -1))
}

func TestEvaluateRemainderByZero(t *testing.T) {
	b := newTreeBuilder(t)

	root := b.binary(expr.KindRem, b.constant(7), b.constant(0))
	_, err := Evaluate(b.pool, root, NewEnvironment())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "integer remainder by zero")

	// A divisor that truncates to zero is the same failure.
	root = b.binary(expr.KindRem, b.constant(7), b.constant(0.9))
	_, err = Evaluate(b.pool, root, NewEnvironment())
	assert.Error(t, err)
}

func TestEvaluateSqrt(t *testing.T) {
	b := newTreeBuilder(t)

	got, err := Evaluate(b.pool, b.sqrt(b.constant(16)), NewEnvironment())
	require.NoError(t, err)
	assert.Equal(t, 4.0, got)

	// Sqrt of a negative is NaN, never an error.
	got, err = Evaluate(b.pool, b.sqrt(b.constant(-1)), NewEnvironment())
	require.NoError(t, err)
	assert.True(t, math.IsNaN(got))
}

func TestEvaluateStoreLoad(t *testing.T) {
	b := newTreeBuilder(t)
	env := NewEnvironment()

	// @store returns the stored value...
	got, err := Evaluate(b.pool, b.store(5, b.constant(12.5)), env)
	require.NoError(t, err)
	assert.Equal(t, 12.5, got)

	// ...and a following @load in the same environment observes it.
	got, err = Evaluate(b.pool, b.load(5), env)
	require.NoError(t, err)
	assert.Equal(t, 12.5, got)

	// Untouched registers stay zero.
	got, err = Evaluate(b.pool, b.load(4), env)
	require.NoError(t, err)
	assert.Zero(t, got)
}

func TestEvaluateStoreOrdering(t *testing.T) {
	// @store(0, 3) * @load(0): left-to-right evaluation means the load
	// sees the store made by its left sibling.
	b := newTreeBuilder(t)
	root := b.binary(expr.KindMul, b.store(0, b.constant(3)), b.load(0))

	got, err := Evaluate(b.pool, root, NewEnvironment())
	require.NoError(t, err)
	assert.Equal(t, 9.0, got)
}

func TestEvaluateIdent(t *testing.T) {
	b := newTreeBuilder(t)
	env := NewEnvironment()
	require.NoError(t, env.BindInput('x', 5))
	require.NoError(t, env.BindInput('z', -2))

	got, err := Evaluate(b.pool, b.ident('x'), env)
	require.NoError(t, err)
	assert.Equal(t, 5.0, got)

	got, err = Evaluate(b.pool, b.ident('z'), env)
	require.NoError(t, err)
	assert.Equal(t, -2.0, got)

	// Unbound identifiers read zero.
	got, err = Evaluate(b.pool, b.ident('a'), env)
	require.NoError(t, err)
	assert.Zero(t, got)
}

func TestEvaluateRepeatedIsStateless(t *testing.T) {
	// Re-evaluating the same tree against a reset environment yields the
	// same result: no memoization, no hidden state outside the environment.
	b := newTreeBuilder(t)
	x := b.ident('x')
	root := b.binary(expr.KindAdd, b.store(1, x), b.load(1))

	env := NewEnvironment()
	for i := 0; i < 3; i++ {
		env.Reset()
		require.NoError(t, env.BindInput('x', 2))
		got, err := Evaluate(b.pool, root, env)
		require.NoError(t, err)
		assert.Equal(t, 4.0, got)
	}
}

func TestEnvironmentBounds(t *testing.T) {
	env := NewEnvironment()

	assert.Error(t, env.BindInput('A', 1))
	assert.Error(t, env.BindInput('{', 1))
	_, err := env.Input('0')
	assert.Error(t, err)
	_, err = env.LoadRegister(10)
	assert.Error(t, err)
	_, err = env.StoreRegister(-1, 1)
	assert.Error(t, err)
}

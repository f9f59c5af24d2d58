package vm

import (
	"fmt"
	"math"

	"digitron/pkg/errors"
	"digitron/pkg/expr"
)

// Evaluate walks the tree rooted at root with a strict, depth-first,
// left-before-right recursion and no result caching: re-evaluating a node
// re-executes its whole subtree. Dispatch is an exhaustive switch on the kind
// tag, which preserves the evaluation order of per-node virtual dispatch
// without a handle stored in every node.
//
// Evaluation order is observable: a tree containing both @store and @load on
// the same register sees effects strictly left to right.
func Evaluate(pool *expr.Pool, root expr.Ref, env *Environment) (float64, error) {
	if root == expr.NilRef {
		return 0, &errors.RuntimeError{Msg: "cannot evaluate empty expression"}
	}
	n := pool.Get(root)

	switch n.Kind {
	case expr.KindConstant:
		return n.Value, nil

	case expr.KindAdd:
		l, r, err := evalBinary(pool, n, env)
		if err != nil {
			return 0, err
		}
		return l + r, nil

	case expr.KindSub:
		l, r, err := evalBinary(pool, n, env)
		if err != nil {
			return 0, err
		}
		return l - r, nil

	case expr.KindMul:
		l, r, err := evalBinary(pool, n, env)
		if err != nil {
			return 0, err
		}
		return l * r, nil

	case expr.KindDiv:
		// IEEE division: a zero divisor yields an infinity, never an error.
		l, r, err := evalBinary(pool, n, env)
		if err != nil {
			return 0, err
		}
		return l / r, nil

	case expr.KindRem:
		// Truncating integer remainder, not math.Mod: both operands are
		// truncated toward zero to int64, and the sign follows the dividend.
		l, r, err := evalBinary(pool, n, env)
		if err != nil {
			return 0, err
		}
		if int64(r) == 0 {
			return 0, &errors.RuntimeError{Msg: "integer remainder by zero"}
		}
		return float64(int64(l) % int64(r)), nil

	case expr.KindSqrt:
		// A negative operand silently yields NaN; that is a value, not an
		// error, and it must propagate.
		a, err := Evaluate(pool, n.Left, env)
		if err != nil {
			return 0, err
		}
		return math.Sqrt(a), nil

	case expr.KindLoad:
		return env.LoadRegister(n.Reg)

	case expr.KindStore:
		v, err := Evaluate(pool, n.Left, env)
		if err != nil {
			return 0, err
		}
		return env.StoreRegister(n.Reg, v)

	case expr.KindIdent:
		return env.Input(n.Name)

	default:
		return 0, &errors.RuntimeError{Msg: fmt.Sprintf("unknown node kind %s", n.Kind)}
	}
}

// evalBinary evaluates both children of a binary node, left before right.
func evalBinary(pool *expr.Pool, n *expr.Node, env *Environment) (float64, float64, error) {
	l, err := Evaluate(pool, n.Left, env)
	if err != nil {
		return 0, 0, err
	}
	r, err := Evaluate(pool, n.Right, env)
	if err != nil {
		return 0, 0, err
	}
	return l, r, nil
}

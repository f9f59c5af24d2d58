package expr

import (
	"fmt"
	"strconv"
	"strings"
)

// Kind discriminates the payload variant of a Node.
type Kind int8

const (
	KindConstant Kind = iota // numeric literal
	KindAdd                  // left + right
	KindSub                  // left - right
	KindMul                  // left * right
	KindDiv                  // left / right
	KindRem                  // left % right (truncating integer remainder)
	KindSqrt                 // @sqrt(left)
	KindLoad                 // @load(reg)
	KindStore                // @store(reg, left)
	KindIdent                // input variable a-z
)

var kindNames = [...]string{
	KindConstant: "Constant",
	KindAdd:      "Add",
	KindSub:      "Sub",
	KindMul:      "Mul",
	KindDiv:      "Div",
	KindRem:      "Rem",
	KindSqrt:     "Sqrt",
	KindLoad:     "Load",
	KindStore:    "Store",
	KindIdent:    "Ident",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", int8(k))
}

// Ref is a reference to a node in a Pool. Trees are sets of Refs into one
// pool; a Ref owns nothing by itself.
type Ref int32

// NilRef marks an absent child and terminates the freelist.
const NilRef Ref = -1

// Node is one fixed-size expression tree node. A single struct covers every
// payload variant so the pool slots are uniform and never fragment.
//
// Field use by kind:
//
//	Constant     Value
//	Add..Rem     Left, Right
//	Sqrt         Left (the argument)
//	Load         Reg
//	Store        Reg, Left (the value to store)
//	Ident        Name
//
// While a node sits on the freelist, Left holds the next free slot.
type Node struct {
	Kind  Kind
	Reg   int8    // register index 0-9 (Load, Store)
	Name  byte    // input variable letter a-z (Ident)
	Value float64 // literal value (Constant)
	Left  Ref
	Right Ref
}

// operatorSymbols for the infix kinds, used by the String rendering.
var operatorSymbols = map[Kind]string{
	KindAdd: "+",
	KindSub: "-",
	KindMul: "*",
	KindDiv: "/",
	KindRem: "%",
}

// String renders the tree rooted at ref back to program-text form. Binary
// operands are parenthesized unconditionally, so the rendering is unambiguous
// without reconstructing precedence.
func (p *Pool) String(ref Ref) string {
	var out strings.Builder
	p.writeNode(&out, ref)
	return out.String()
}

func (p *Pool) writeNode(out *strings.Builder, ref Ref) {
	if ref == NilRef {
		out.WriteString("<nil>")
		return
	}
	n := p.Get(ref)
	switch n.Kind {
	case KindConstant:
		out.WriteString(strconv.FormatFloat(n.Value, 'g', -1, 64))
	case KindAdd, KindSub, KindMul, KindDiv, KindRem:
		out.WriteByte('(')
		p.writeNode(out, n.Left)
		out.WriteByte(' ')
		out.WriteString(operatorSymbols[n.Kind])
		out.WriteByte(' ')
		p.writeNode(out, n.Right)
		out.WriteByte(')')
	case KindSqrt:
		out.WriteString("@sqrt(")
		p.writeNode(out, n.Left)
		out.WriteByte(')')
	case KindLoad:
		fmt.Fprintf(out, "@load(%d)", n.Reg)
	case KindStore:
		fmt.Fprintf(out, "@store(%d, ", n.Reg)
		p.writeNode(out, n.Left)
		out.WriteByte(')')
	case KindIdent:
		out.WriteByte(n.Name)
	default:
		fmt.Fprintf(out, "<%s>", n.Kind)
	}
}

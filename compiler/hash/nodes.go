package hash

import (
	"fmt"

	"github.com/tacklang/tack/compiler"
)

// HNode is the flattened, encoding-friendly shadow of an AST node. Field
// tags keep the canonical CBOR encoding compact and deterministic.
type HNode struct {
	Kind string   `cbor:"k"`
	Text string   `cbor:"t,omitempty"`
	Num  float64  `cbor:"n,omitempty"`
	Bool bool     `cbor:"b,omitempty"`
	Kids []*HNode `cbor:"c,omitempty"`
}

// build converts an expression into its shadow tree.
func build(e compiler.Expr) *HNode {
	switch n := e.(type) {
	case *compiler.EmptyExpr:
		return &HNode{Kind: "empty"}
	case *compiler.NameExpr:
		return &HNode{Kind: "name", Text: n.Name}
	case *compiler.NumExpr:
		return &HNode{Kind: "num", Num: n.Value}
	case *compiler.BoolExpr:
		return &HNode{Kind: "bool", Bool: n.Value}
	case *compiler.StrExpr:
		return &HNode{Kind: "str", Text: n.Value}
	case *compiler.UnaryOpExpr:
		return &HNode{Kind: "unary", Text: n.Op.String(), Kids: kids(n.Right)}
	case *compiler.BinaryOpExpr:
		return &HNode{Kind: "binary", Text: n.Op.String(), Kids: kids(n.Left, n.Right)}
	case *compiler.CallExpr:
		return &HNode{Kind: "call", Text: n.Callee.Name, Kids: kids(n.Args)}
	case *compiler.SubscriptExpr:
		return &HNode{Kind: "subscript", Kids: kids(n.Array, n.Index)}
	case *compiler.CommaListExpr:
		return &HNode{Kind: "commalist", Kids: kids(n.Elems...)}
	case *compiler.BlockExpr:
		return &HNode{Kind: "block", Kids: kids(n.Stmts...)}
	case *compiler.ForExpr:
		return &HNode{Kind: "for", Text: n.LoopVar.Name, Kids: kids(n.Range, n.Body)}
	case *compiler.FnDefExpr:
		return &HNode{Kind: "fndef", Text: n.Name.Name, Kids: kids(n.Params, n.Body)}
	case *compiler.IfExpr:
		node := &HNode{Kind: "if", Kids: kids(n.Cond, n.Then)}
		if n.HasElse {
			node.Bool = true
			node.Kids = append(node.Kids, build(n.Else))
		}
		return node
	case *compiler.ReturnExpr:
		return &HNode{Kind: "return", Kids: kids(n.Value)}
	case *compiler.VarExpr:
		return &HNode{Kind: "var", Kids: kids(n.Value)}
	case *compiler.PrintExpr:
		return &HNode{Kind: "print", Kids: kids(n.Value)}
	default:
		return &HNode{Kind: fmt.Sprintf("unknown(%T)", e)}
	}
}

func kids(exprs ...compiler.Expr) []*HNode {
	nodes := make([]*HNode, len(exprs))
	for i, e := range exprs {
		nodes[i] = build(e)
	}
	return nodes
}

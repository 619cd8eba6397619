package compiler

import (
	"fmt"

	"github.com/tacklang/tack/pkg/bytecode"
)

// ---------------------------------------------------------------------------
// Codegen: lower statement expressions into a shared bytecode chunk
// ---------------------------------------------------------------------------

// tokenToBinOp maps binary operator token types to their opcodes.
var tokenToBinOp = map[TokenType]bytecode.Opcode{
	TokenPlus:  bytecode.OpAdd,
	TokenMinus: bytecode.OpSub,
	TokenMult:  bytecode.OpMult,
	TokenDiv:   bytecode.OpDiv,
	TokenOr:    bytecode.OpOr,
	TokenAnd:   bytecode.OpAnd,
	TokenCmp:   bytecode.OpCmp,
}

// tokenToUnaryOp maps prefix operator token types to their opcodes.
var tokenToUnaryOp = map[TokenType]bytecode.Opcode{
	TokenMinus: bytecode.OpNeg,
	TokenBang:  bytecode.OpNot,
}

// CodeGen lowers an AST into a single Chunk. Forms without a defined
// lowering are a fatal compile-time error naming the expression.
type CodeGen struct {
	chunk *bytecode.Chunk
}

// NewCodeGen creates a generator with an empty chunk.
func NewCodeGen() *CodeGen {
	return &CodeGen{chunk: bytecode.NewChunk()}
}

// Generate walks every top-level statement once, appending to the shared
// chunk, then finalizes it.
func (g *CodeGen) Generate(stmts []Expr) (*bytecode.Chunk, error) {
	for _, stmt := range stmts {
		if err := g.genExpr(stmt); err != nil {
			return nil, err
		}
	}
	g.chunk.Finalize()
	return g.chunk, nil
}

func (g *CodeGen) genExpr(e Expr) error {
	switch n := e.(type) {
	case *NumExpr:
		return g.chunk.EmitConstant(bytecode.Num(n.Value), bytecode.NoLine)

	case *BoolExpr:
		return g.chunk.EmitConstant(bytecode.Bool(n.Value), bytecode.NoLine)

	case *StrExpr:
		return g.chunk.EmitConstant(bytecode.Str(n.Value), bytecode.NoLine)

	case *UnaryOpExpr:
		if err := g.genExpr(n.Right); err != nil {
			return err
		}
		op, ok := tokenToUnaryOp[n.Op]
		if !ok {
			return fmt.Errorf("codegen: token type %s in '%s' not implemented as unary operator", n.Op, ExprString(n))
		}
		g.chunk.Emit(op, bytecode.NoLine)
		return nil

	case *BinaryOpExpr:
		// strict left-then-right evaluation; the VM pops the right
		// operand first, so the left argument is the deeper stack slot
		if err := g.genExpr(n.Left); err != nil {
			return err
		}
		if err := g.genExpr(n.Right); err != nil {
			return err
		}
		op, ok := tokenToBinOp[n.Op]
		if !ok {
			return fmt.Errorf("codegen: token type %s in '%s' not implemented as binary operator", n.Op, ExprString(n))
		}
		g.chunk.Emit(op, bytecode.NoLine)
		return nil

	case *PrintExpr:
		if err := g.genExpr(n.Value); err != nil {
			return err
		}
		g.chunk.Emit(bytecode.OpPrint, bytecode.NoLine)
		return nil

	case *ReturnExpr:
		// the returned value is not lowered; ret compiles to a bare RET
		g.chunk.Emit(bytecode.OpRet, bytecode.NoLine)
		return nil

	default:
		return fmt.Errorf("codegen: no lowering for expression '%s'", ExprString(e))
	}
}

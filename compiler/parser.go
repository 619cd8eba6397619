package compiler

import (
	"fmt"
	"strconv"
)

// ---------------------------------------------------------------------------
// Parser: precedence-driven Pratt parser
//
// Parse functions fit into two categories, prefix and infix. Both can exist
// for the same token type; this differentiates, for example, '(' as a
// grouping operator (prefix) from '(' as a call operator (infix):
//
//	func    (       arg1, arg2)
//	 ^      ^       ^
//	 LHS    infix   RHS
//
// The core loop parses a full expression with the prefix handler of the
// current token, then folds infix handlers into it while the next token's
// infix precedence exceeds the enclosing context's minimum.
// ---------------------------------------------------------------------------

// sentinelPrec is returned for token kinds without a handler and at the end
// of the stream. It is smaller than any real precedence.
const sentinelPrec = -9999

type prefixFn func(*Parser) (Expr, error)
type infixFn func(*Parser, Expr) (Expr, error)

type prefixRule struct {
	fn   prefixFn
	prec int
}

type infixRule struct {
	fn   infixFn
	prec int
}

// Parser consumes a token sequence and produces expressions. The cursor
// advances monotonically; there is no backtracking.
type Parser struct {
	tokens []Token
	pos    int

	prefixTable [numTokenTypes]prefixRule
	infixTable  [numTokenTypes]infixRule
}

// NewParser creates a parser over the given token sequence.
func NewParser(tokens []Token) *Parser {
	p := &Parser{tokens: tokens}

	for i := range p.prefixTable {
		p.prefixTable[i] = prefixRule{prec: sentinelPrec}
	}
	p.prefixTable[TokenLBrace] = prefixRule{parseBlock, 1}
	p.prefixTable[TokenLParen] = prefixRule{parseGrouping, 1}
	p.prefixTable[TokenRet] = prefixRule{parseReturn, 1}
	p.prefixTable[TokenID] = prefixRule{parseName, 5}
	p.prefixTable[TokenNum] = prefixRule{parseNum, 5}
	p.prefixTable[TokenString] = prefixRule{parseStr, 5}
	p.prefixTable[TokenTrue] = prefixRule{parseBool, 5}
	p.prefixTable[TokenFalse] = prefixRule{parseBool, 5}
	p.prefixTable[TokenBang] = prefixRule{parseUnaryOp, 100}
	p.prefixTable[TokenMinus] = prefixRule{parseUnaryOp, 100}
	p.prefixTable[TokenFor] = prefixRule{parseFor, 100}
	p.prefixTable[TokenFn] = prefixRule{parseFnDef, 100}
	p.prefixTable[TokenIf] = prefixRule{parseIf, 100}
	p.prefixTable[TokenVar] = prefixRule{parseVar, 100}
	p.prefixTable[TokenPrint] = prefixRule{parsePrint, 100}

	for i := range p.infixTable {
		p.infixTable[i] = infixRule{prec: sentinelPrec}
	}
	p.infixTable[TokenEquals] = infixRule{parseBinaryOp, 10}
	p.infixTable[TokenComma] = infixRule{parseCommaList, 20}
	p.infixTable[TokenColon] = infixRule{parseBinaryOp, 22}
	p.infixTable[TokenTo] = infixRule{parseBinaryOp, 23}
	p.infixTable[TokenCmp] = infixRule{parseBinaryOp, 24}
	p.infixTable[TokenOr] = infixRule{parseBinaryOp, 25}
	p.infixTable[TokenAnd] = infixRule{parseBinaryOp, 26}
	p.infixTable[TokenPlus] = infixRule{parseBinaryOp, 30}
	p.infixTable[TokenMinus] = infixRule{parseBinaryOp, 30}
	p.infixTable[TokenDiv] = infixRule{parseBinaryOp, 40}
	p.infixTable[TokenMult] = infixRule{parseBinaryOp, 40}
	p.infixTable[TokenBang] = infixRule{parseBinaryOp, 80}
	p.infixTable[TokenLParen] = infixRule{parseCall, 100}
	p.infixTable[TokenLBracket] = infixRule{parseSubscript, 100}

	return p
}

// Parse consumes the whole token stream as a top-level statement list.
// Any token left over after the statement loop stops is a parse error.
func Parse(tokens []Token) ([]Expr, error) {
	p := NewParser(tokens)
	stmts, err := p.ParseStatements(0)
	if err != nil {
		return nil, err
	}
	if !p.atEnd() {
		tok := p.currToken()
		return nil, fmt.Errorf("parse: unexpected token %s at line %d, pos %d", tok.Type, tok.Line, tok.Column)
	}
	return stmts, nil
}

// ParseStatements consumes statements until the stream ends or the current
// token's prefix precedence is at or below minPrec. Each statement must be
// terminated by a ';' (consumed) or an immediately-preceding '}' (accepted
// as implicit terminator).
func (p *Parser) ParseStatements(minPrec int) ([]Expr, error) {
	var statements []Expr
	for !p.atEnd() && p.prefixPrecedence() > minPrec {
		expr, err := p.ParseExpr(0)
		if err != nil {
			return nil, err
		}
		statements = append(statements, expr)

		switch {
		case p.atEnd() && p.lastType() != TokenRBrace:
			return nil, fmt.Errorf("parse: hit end of input without finding statement terminator (; or })")
		case p.currType() != TokenSemicolon && p.lastType() != TokenRBrace:
			tok := p.currToken()
			return nil, fmt.Errorf("parse: expected statement terminator before %s at line %d, pos %d", tok.Type, tok.Line, tok.Column)
		case p.currType() == TokenSemicolon:
			p.consume()
		default:
			// a right brace implicitly terminates the statement
		}
	}
	return statements, nil
}

// ParseExpr consumes and returns a single expression. Handlers must consume
// exactly the tokens belonging to the form they produce.
func (p *Parser) ParseExpr(minPrec int) (Expr, error) {
	if p.atEnd() {
		return &EmptyExpr{}, nil
	}

	rule := p.prefixTable[p.currType()]
	if rule.fn == nil {
		tok := p.currToken()
		return nil, fmt.Errorf("parse: no prefix handler for token type %s at line %d, pos %d", tok.Type, tok.Line, tok.Column)
	}
	expr, err := rule.fn(p)
	if err != nil {
		return nil, err
	}

	for minPrec < p.infixPrecedence() {
		infix := p.infixTable[p.currType()]
		expr, err = infix.fn(p, expr)
		if err != nil {
			return nil, err
		}
	}
	return expr, nil
}

// ---------------------------------------------------------------------------
// Prefix handlers
// ---------------------------------------------------------------------------

func parseName(p *Parser) (Expr, error) {
	return &NameExpr{Name: p.consume().Lexeme}, nil
}

func parseNum(p *Parser) (Expr, error) {
	tok := p.consume()
	f, err := strconv.ParseFloat(tok.Lexeme, 64)
	if err != nil {
		return nil, fmt.Errorf("parse: bad numeric literal %q at line %d: %w", tok.Lexeme, tok.Line, err)
	}
	return &NumExpr{Value: f}, nil
}

func parseStr(p *Parser) (Expr, error) {
	return &StrExpr{Value: p.consume().Lexeme}, nil
}

func parseBool(p *Parser) (Expr, error) {
	return &BoolExpr{Value: p.consume().Type == TokenTrue}, nil
}

func parseUnaryOp(p *Parser) (Expr, error) {
	op := p.consume()
	right, err := p.ParseExpr(p.prefixPrec(op.Type))
	if err != nil {
		return nil, err
	}
	if _, isName := right.(*NameExpr); isName && op.Type == TokenBang {
		return nil, fmt.Errorf("parse: '!' cannot apply to a bare name at line %d, pos %d", op.Line, op.Column)
	}
	return &UnaryOpExpr{Op: op.Type, Right: right}, nil
}

func parseGrouping(p *Parser) (Expr, error) {
	p.consume() // left paren
	if p.currType() == TokenRParen {
		p.consume()
		return &EmptyExpr{}, nil
	}
	expr, err := p.ParseExpr(p.prefixPrec(TokenLParen))
	if err != nil {
		return nil, err
	}
	if err := p.expect(TokenRParen, "grouping expression"); err != nil {
		return nil, err
	}
	return expr, nil
}

func parseReturn(p *Parser) (Expr, error) {
	p.consume()
	value, err := p.ParseExpr(p.prefixPrec(TokenRet))
	if err != nil {
		return nil, err
	}
	return &ReturnExpr{Value: value}, nil
}

func parseVar(p *Parser) (Expr, error) {
	p.consume()
	value, err := p.ParseExpr(0)
	if err != nil {
		return nil, err
	}
	return &VarExpr{Value: value}, nil
}

func parsePrint(p *Parser) (Expr, error) {
	p.consume()
	value, err := p.ParseExpr(0)
	if err != nil {
		return nil, err
	}
	return &PrintExpr{Value: value}, nil
}

func parseBlock(p *Parser) (Expr, error) {
	p.consume() // left brace
	var statements []Expr
	if p.currType() != TokenRBrace {
		var err error
		statements, err = p.ParseStatements(0)
		if err != nil {
			return nil, err
		}
	}
	if err := p.expect(TokenRBrace, "block"); err != nil {
		return nil, err
	}
	return &BlockExpr{Stmts: statements}, nil
}

func parseFor(p *Parser) (Expr, error) {
	p.consume() // for
	if p.currType() != TokenID {
		tok := p.currToken()
		return nil, fmt.Errorf("parse: expected loop variable after 'for' at line %d, pos %d", tok.Line, tok.Column)
	}
	loopVar := &NameExpr{Name: p.consume().Lexeme}
	if err := p.expect(TokenColon, "for loop"); err != nil {
		return nil, err
	}

	rangeExpr, err := p.ParseExpr(0)
	if err != nil {
		return nil, err
	}
	body, err := p.ParseExpr(0)
	if err != nil {
		return nil, err
	}
	return &ForExpr{LoopVar: loopVar, Range: rangeExpr, Body: body}, nil
}

func parseIf(p *Parser) (Expr, error) {
	p.consume() // if
	cond, err := p.ParseExpr(0)
	if err != nil {
		return nil, err
	}

	if p.currType() != TokenLBrace {
		tok := p.currToken()
		return nil, fmt.Errorf("parse: expected '{' after if condition at line %d, pos %d", tok.Line, tok.Column)
	}
	then, err := parseBlock(p)
	if err != nil {
		return nil, err
	}

	node := &IfExpr{Cond: cond, Then: then, Else: &EmptyExpr{}}
	if p.currType() == TokenElse {
		p.consume()
		if p.currType() != TokenLBrace {
			tok := p.currToken()
			return nil, fmt.Errorf("parse: expected '{' after else at line %d, pos %d", tok.Line, tok.Column)
		}
		node.Else, err = parseBlock(p)
		if err != nil {
			return nil, err
		}
		node.HasElse = true
	}
	return node, nil
}

func parseFnDef(p *Parser) (Expr, error) {
	// FORM: fn id (params) body
	p.consume() // fn
	if p.currType() != TokenID {
		tok := p.currToken()
		return nil, fmt.Errorf("parse: expected function name after 'fn' at line %d, pos %d", tok.Line, tok.Column)
	}
	name := &NameExpr{Name: p.consume().Lexeme}

	if err := p.expect(TokenLParen, "function definition"); err != nil {
		return nil, err
	}
	var params Expr = &EmptyExpr{}
	if p.currType() != TokenRParen {
		var err error
		params, err = p.ParseExpr(0)
		if err != nil {
			return nil, err
		}
	}
	if err := p.expect(TokenRParen, "function definition"); err != nil {
		return nil, err
	}

	body, err := p.ParseExpr(0)
	if err != nil {
		return nil, err
	}
	return &FnDefExpr{Name: name, Params: params, Body: body}, nil
}

// ---------------------------------------------------------------------------
// Infix handlers
// ---------------------------------------------------------------------------

func parseBinaryOp(p *Parser, left Expr) (Expr, error) {
	op := p.consume()
	right, err := p.ParseExpr(p.infixPrec(op.Type))
	if err != nil {
		return nil, err
	}
	return &BinaryOpExpr{Left: left, Op: op.Type, Right: right}, nil
}

func parseCall(p *Parser, left Expr) (Expr, error) {
	callee, ok := left.(*NameExpr)
	if !ok {
		tok := p.currToken()
		return nil, fmt.Errorf("parse: call target must be a name at line %d, pos %d", tok.Line, tok.Column)
	}
	p.consume() // left paren

	// low precedence on the RHS: a call binds tightly on its LHS but
	// weakly on its argument expression
	var args Expr = &EmptyExpr{}
	if p.currType() != TokenRParen {
		var err error
		args, err = p.ParseExpr(0)
		if err != nil {
			return nil, err
		}
	}
	if err := p.expect(TokenRParen, "call expression"); err != nil {
		return nil, err
	}
	return &CallExpr{Callee: callee, Args: args}, nil
}

func parseSubscript(p *Parser, left Expr) (Expr, error) {
	open := p.consume() // left bracket
	if p.currType() == TokenRBracket {
		return nil, fmt.Errorf("parse: expected expression for subscript index at line %d, pos %d", open.Line, open.Column)
	}
	index, err := p.ParseExpr(0)
	if err != nil {
		return nil, err
	}
	if err := p.expect(TokenRBracket, "subscript expression"); err != nil {
		return nil, err
	}
	return &SubscriptExpr{Array: left, Index: index}, nil
}

func parseCommaList(p *Parser, first Expr) (Expr, error) {
	p.consume() // comma
	elems := []Expr{first}

	next, err := p.ParseExpr(p.infixPrec(TokenComma))
	if err != nil {
		return nil, err
	}
	elems = append(elems, next)

	for p.currType() == TokenComma {
		p.consume()
		next, err := p.ParseExpr(0)
		if err != nil {
			return nil, err
		}
		elems = append(elems, next)
	}
	return &CommaListExpr{Elems: elems}, nil
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func (p *Parser) expect(t TokenType, context string) error {
	if p.currType() == t {
		p.consume()
		return nil
	}
	if p.atEnd() {
		return fmt.Errorf("parse: expected %s in %s, hit end of input", t.Repr(), context)
	}
	tok := p.currToken()
	return fmt.Errorf("parse: expected %s in %s, got %s at line %d, pos %d", t.Repr(), context, tok.Type, tok.Line, tok.Column)
}

func (p *Parser) consume() Token {
	tok := p.tokens[p.pos]
	p.pos++
	return tok
}

func (p *Parser) currToken() Token {
	return p.tokens[p.pos]
}

// currType returns TokenNone past the end of the stream.
func (p *Parser) currType() TokenType {
	if p.atEnd() {
		return TokenNone
	}
	return p.tokens[p.pos].Type
}

// lastType returns the type of the most recently consumed token.
func (p *Parser) lastType() TokenType {
	if p.pos == 0 {
		return TokenNone
	}
	return p.tokens[p.pos-1].Type
}

func (p *Parser) atEnd() bool {
	return p.pos >= len(p.tokens)
}

func (p *Parser) prefixPrecedence() int {
	if p.atEnd() {
		return sentinelPrec
	}
	return p.prefixTable[p.currType()].prec
}

func (p *Parser) infixPrecedence() int {
	if p.atEnd() {
		return sentinelPrec
	}
	return p.infixTable[p.currType()].prec
}

func (p *Parser) prefixPrec(t TokenType) int {
	return p.prefixTable[t].prec
}

func (p *Parser) infixPrec(t TokenType) int {
	return p.infixTable[t].prec
}

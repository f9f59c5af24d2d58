package parser

import (
	"fmt"
	"strconv"

	"digitron/pkg/errors"
	"digitron/pkg/expr"
	"digitron/pkg/lexer"
	"digitron/pkg/source"
)

// Parser takes a lexer and builds an expression tree allocated entirely from
// a node pool. It is a Pratt parser: each token type maps to a prefix and/or
// infix parsing function, and binding strength is decided by the precedence
// table below.
type Parser struct {
	l      *lexer.Lexer
	pool   *expr.Pool
	source *source.SourceFile // cached from lexer
	errors []errors.DigitronError

	curToken  lexer.Token
	peekToken lexer.Token

	// Every node this parse allocated, in allocation order. A failed parse
	// releases them all so the pool never holds dangling references.
	allocated []expr.Ref

	prefixParseFns map[lexer.TokenType]prefixParseFn
	infixParseFns  map[lexer.TokenType]infixParseFn
}

// Parsing function types for the Pratt parser. A returned expr.NilRef means
// parsing failed and an error was recorded.
type (
	prefixParseFn func() expr.Ref
	infixParseFn  func(expr.Ref) expr.Ref // Arg is the left side expression
)

// Precedence levels. Multiplicative operators bind tighter than additive
// ones; everything is left-associative.
const (
	_ int = iota
	LOWEST
	SUM     // + or -
	PRODUCT // * or / or %
)

// precedences maps operator tokens to their binding strength.
var precedences = map[lexer.TokenType]int{
	lexer.PLUS:     SUM,
	lexer.MINUS:    SUM,
	lexer.ASTERISK: PRODUCT,
	lexer.SLASH:    PRODUCT,
	lexer.PERCENT:  PRODUCT,
}

// infixKinds maps operator tokens to the node kind they build.
var infixKinds = map[lexer.TokenType]expr.Kind{
	lexer.PLUS:     expr.KindAdd,
	lexer.MINUS:    expr.KindSub,
	lexer.ASTERISK: expr.KindMul,
	lexer.SLASH:    expr.KindDiv,
	lexer.PERCENT:  expr.KindRem,
}

// NewParser creates a parser reading tokens from l and allocating nodes from
// pool.
func NewParser(l *lexer.Lexer, pool *expr.Pool) *Parser {
	p := &Parser{
		l:      l,
		pool:   pool,
		source: l.GetSource(),
		errors: []errors.DigitronError{},
	}

	p.prefixParseFns = make(map[lexer.TokenType]prefixParseFn)
	p.infixParseFns = make(map[lexer.TokenType]infixParseFn)

	p.registerPrefix(lexer.NUMBER, p.parseNumberLiteral)
	p.registerPrefix(lexer.IDENT, p.parseIdentifier)
	p.registerPrefix(lexer.LPAREN, p.parseGroupedExpression)
	p.registerPrefix(lexer.SQRT, p.parseSqrtCall)
	p.registerPrefix(lexer.LOAD, p.parseLoadCall)
	p.registerPrefix(lexer.STORE, p.parseStoreCall)

	p.registerInfix(lexer.PLUS, p.parseInfixExpression)
	p.registerInfix(lexer.MINUS, p.parseInfixExpression)
	p.registerInfix(lexer.ASTERISK, p.parseInfixExpression)
	p.registerInfix(lexer.SLASH, p.parseInfixExpression)
	p.registerInfix(lexer.PERCENT, p.parseInfixExpression)

	// Read two tokens, so curToken and peekToken are both set
	p.nextToken()
	p.nextToken()

	return p
}

// Parse compiles one program text into a tree allocated from pool. On
// failure it returns expr.NilRef and the recorded errors; every node the
// attempt allocated has been returned to the pool.
func Parse(sf *source.SourceFile, pool *expr.Pool) (expr.Ref, []errors.DigitronError) {
	p := NewParser(lexer.NewLexerWithSource(sf), pool)
	return p.ParseProgram()
}

// ParseProgram parses the whole input as a single expression. Trailing
// tokens after the expression are a syntax error.
func (p *Parser) ParseProgram() (expr.Ref, []errors.DigitronError) {
	root := p.parseExpression(LOWEST)

	if root != expr.NilRef && !p.peekTokenIs(lexer.EOF) {
		p.addError(p.peekToken, fmt.Sprintf("unexpected token '%s' after expression", p.peekToken.Literal))
	}

	if len(p.errors) > 0 {
		p.releaseAllocated()
		return expr.NilRef, p.errors
	}
	return root, nil
}

// Errors returns the errors recorded so far.
func (p *Parser) Errors() []errors.DigitronError {
	return p.errors
}

func (p *Parser) registerPrefix(tokenType lexer.TokenType, fn prefixParseFn) {
	p.prefixParseFns[tokenType] = fn
}

func (p *Parser) registerInfix(tokenType lexer.TokenType, fn infixParseFn) {
	p.infixParseFns[tokenType] = fn
}

func (p *Parser) nextToken() {
	p.curToken = p.peekToken
	p.peekToken = p.l.NextToken()
}

func (p *Parser) parseExpression(precedence int) expr.Ref {
	prefix := p.prefixParseFns[p.curToken.Type]
	if prefix == nil {
		p.noPrefixParseFnError(p.curToken)
		return expr.NilRef
	}
	leftExp := prefix()
	if leftExp == expr.NilRef {
		return expr.NilRef // Prefix parsing failed, propagate
	}

	for precedence < p.peekPrecedence() {
		infix := p.infixParseFns[p.peekToken.Type]
		if infix == nil {
			return leftExp
		}

		p.nextToken()

		leftExp = infix(leftExp)
		if leftExp == expr.NilRef {
			return expr.NilRef
		}
	}

	return leftExp
}

// -- Prefix Parse Functions --

func (p *Parser) parseNumberLiteral() expr.Ref {
	value, err := strconv.ParseFloat(p.curToken.Literal, 64)
	if err != nil {
		p.addError(p.curToken, fmt.Sprintf("could not parse %q as a number", p.curToken.Literal))
		return expr.NilRef
	}

	ref := p.allocNode(expr.KindConstant)
	if ref == expr.NilRef {
		return expr.NilRef
	}
	p.pool.Get(ref).Value = value
	return ref
}

func (p *Parser) parseIdentifier() expr.Ref {
	ref := p.allocNode(expr.KindIdent)
	if ref == expr.NilRef {
		return expr.NilRef
	}
	p.pool.Get(ref).Name = p.curToken.Literal[0]
	return ref
}

func (p *Parser) parseGroupedExpression() expr.Ref {
	p.nextToken() // Consume '('

	exp := p.parseExpression(LOWEST)
	if exp == expr.NilRef {
		return expr.NilRef
	}

	if !p.expectPeek(lexer.RPAREN) {
		return expr.NilRef
	}
	return exp
}

// parseSqrtCall parses @sqrt(<expression>). curToken is the SQRT token.
func (p *Parser) parseSqrtCall() expr.Ref {
	if !p.expectPeek(lexer.LPAREN) {
		return expr.NilRef
	}
	p.nextToken() // Consume '(', cur is start of the argument

	arg := p.parseExpression(LOWEST)
	if arg == expr.NilRef {
		return expr.NilRef
	}

	if !p.expectPeek(lexer.RPAREN) {
		return expr.NilRef
	}

	ref := p.allocNode(expr.KindSqrt)
	if ref == expr.NilRef {
		return expr.NilRef
	}
	p.pool.Get(ref).Left = arg
	return ref
}

// parseLoadCall parses @load(<register>). curToken is the LOAD token.
func (p *Parser) parseLoadCall() expr.Ref {
	if !p.expectPeek(lexer.LPAREN) {
		return expr.NilRef
	}

	reg, ok := p.parseRegisterIndex()
	if !ok {
		return expr.NilRef
	}

	if !p.expectPeek(lexer.RPAREN) {
		return expr.NilRef
	}

	ref := p.allocNode(expr.KindLoad)
	if ref == expr.NilRef {
		return expr.NilRef
	}
	p.pool.Get(ref).Reg = reg
	return ref
}

// parseStoreCall parses @store(<register>, <expression>). curToken is the
// STORE token.
func (p *Parser) parseStoreCall() expr.Ref {
	if !p.expectPeek(lexer.LPAREN) {
		return expr.NilRef
	}

	reg, ok := p.parseRegisterIndex()
	if !ok {
		return expr.NilRef
	}

	if !p.expectPeek(lexer.COMMA) {
		return expr.NilRef
	}
	p.nextToken() // Consume ',', cur is start of the value expression

	arg := p.parseExpression(LOWEST)
	if arg == expr.NilRef {
		return expr.NilRef
	}

	if !p.expectPeek(lexer.RPAREN) {
		return expr.NilRef
	}

	ref := p.allocNode(expr.KindStore)
	if ref == expr.NilRef {
		return expr.NilRef
	}
	n := p.pool.Get(ref)
	n.Reg = reg
	n.Left = arg
	return ref
}

// parseRegisterIndex consumes the peek token as a register index literal.
// The index must be a plain integer in 0-9; checking here keeps evaluation
// free of range checks that could never fail.
func (p *Parser) parseRegisterIndex() (int8, bool) {
	if !p.expectPeek(lexer.NUMBER) {
		return 0, false
	}

	value, err := strconv.Atoi(p.curToken.Literal)
	if err != nil {
		p.addError(p.curToken, fmt.Sprintf("register index must be an integer literal, got %q", p.curToken.Literal))
		return 0, false
	}
	if value < 0 || value > 9 {
		p.addError(p.curToken, fmt.Sprintf("register index %d out of range 0-9", value))
		return 0, false
	}
	return int8(value), true
}

// -- Infix Parse Functions --

func (p *Parser) parseInfixExpression(left expr.Ref) expr.Ref {
	kind, ok := infixKinds[p.curToken.Type]
	if !ok {
		p.addError(p.curToken, fmt.Sprintf("'%s' is not an infix operator", p.curToken.Literal))
		return expr.NilRef
	}

	ref := p.allocNode(kind)
	if ref == expr.NilRef {
		return expr.NilRef
	}

	precedence := p.curPrecedence()
	p.nextToken() // Consume the operator

	right := p.parseExpression(precedence)
	if right == expr.NilRef {
		return expr.NilRef
	}

	n := p.pool.Get(ref)
	n.Left = left
	n.Right = right
	return ref
}

// -- Helpers --

// allocNode allocates one pool node, recording it for rollback. Pool
// exhaustion is reported as a positioned allocation error.
func (p *Parser) allocNode(kind expr.Kind) expr.Ref {
	ref, err := p.pool.Allocate(kind)
	if err != nil {
		allocErr := &errors.AllocError{
			Position: p.positionOf(p.curToken),
			Msg:      fmt.Sprintf("expression pool exhausted (capacity %d)", p.pool.Cap()),
		}
		p.errors = append(p.errors, allocErr.CausedBy(err))
		return expr.NilRef
	}
	p.allocated = append(p.allocated, ref)
	return ref
}

// releaseAllocated returns every node this parse allocated, newest first so
// the freelist order matches the allocation order for the next parse.
func (p *Parser) releaseAllocated() {
	for i := len(p.allocated) - 1; i >= 0; i-- {
		p.pool.Deallocate(p.allocated[i])
	}
	p.allocated = p.allocated[:0]
}

func (p *Parser) curTokenIs(t lexer.TokenType) bool {
	return p.curToken.Type == t
}

func (p *Parser) peekTokenIs(t lexer.TokenType) bool {
	return p.peekToken.Type == t
}

func (p *Parser) expectPeek(t lexer.TokenType) bool {
	if p.peekTokenIs(t) {
		p.nextToken()
		return true
	}
	p.peekError(t)
	return false
}

func (p *Parser) peekPrecedence() int {
	if prec, ok := precedences[p.peekToken.Type]; ok {
		return prec
	}
	return LOWEST
}

func (p *Parser) curPrecedence() int {
	if prec, ok := precedences[p.curToken.Type]; ok {
		return prec
	}
	return LOWEST
}

func (p *Parser) peekError(t lexer.TokenType) {
	p.addError(p.peekToken, fmt.Sprintf("expected next token to be %s, got %s instead", t, p.peekToken.Type))
}

func (p *Parser) noPrefixParseFnError(tok lexer.Token) {
	if tok.Type == lexer.EOF {
		p.addError(tok, "unexpected end of expression")
		return
	}
	p.addError(tok, fmt.Sprintf("unexpected token '%s'", tok.Literal))
}

func (p *Parser) addError(tok lexer.Token, msg string) {
	// Prevent memory exhaustion from runaway error generation
	const maxErrors = 100
	if len(p.errors) >= maxErrors {
		return
	}

	syntaxErr := &errors.SyntaxError{
		Position: p.positionOf(tok),
		Msg:      msg,
	}
	p.errors = append(p.errors, syntaxErr)
}

func (p *Parser) positionOf(tok lexer.Token) errors.Position {
	return errors.Position{
		Line:     tok.Line,
		Column:   tok.Column,
		StartPos: tok.StartPos,
		EndPos:   tok.EndPos,
		Source:   p.source,
	}
}

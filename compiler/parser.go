package compiler

import (
	"fmt"
	"strconv"
)

// ---------------------------------------------------------------------------
// Parser: Recursive descent parser for CodeStep syntax
// ---------------------------------------------------------------------------

// Parser parses CodeStep source code into an AST.
type Parser struct {
	lexer     *Lexer
	curToken  Token
	peekToken Token
	errors    []string
}

// NewParser creates a new parser for the given input.
func NewParser(input string) *Parser {
	p := &Parser{
		lexer: NewLexer(input),
	}
	// Read two tokens to fill curToken and peekToken
	p.nextToken()
	p.nextToken()
	return p
}

// nextToken advances to the next token.
func (p *Parser) nextToken() {
	p.curToken = p.peekToken
	p.peekToken = p.lexer.NextToken()
}

// curTokenIs checks if the current token is of the given type.
func (p *Parser) curTokenIs(t TokenType) bool {
	return p.curToken.Type == t
}

// peekTokenIs checks if the peek token is of the given type.
func (p *Parser) peekTokenIs(t TokenType) bool {
	return p.peekToken.Type == t
}

// expect advances if the current token matches, otherwise records an error.
func (p *Parser) expect(t TokenType) bool {
	if p.curTokenIs(t) {
		p.nextToken()
		return true
	}
	p.errorf("expected %s, got %s", t, p.curToken)
	return false
}

// errorf records a parse error.
func (p *Parser) errorf(format string, args ...interface{}) {
	msg := fmt.Sprintf("line %d: %s", p.curToken.Pos.Line, fmt.Sprintf(format, args...))
	p.errors = append(p.errors, msg)
}

// Errors returns accumulated parse errors.
func (p *Parser) Errors() []string {
	return p.errors
}

// failed reports whether any error has been recorded. Parsing bails out
// early on the first error to avoid cascading diagnostics.
func (p *Parser) failed() bool {
	return len(p.errors) > 0
}

// ---------------------------------------------------------------------------
// Top-level parsing
// ---------------------------------------------------------------------------

// ParseClass parses a single top-level class declaration. Multi-type
// source units are rejected.
func (p *Parser) ParseClass() *ClassDecl {
	pos := p.curToken.Pos
	if !p.expect(TokenClass) {
		return nil
	}
	if !p.curTokenIs(TokenIdentifier) {
		p.errorf("expected class name, got %s", p.curToken)
		return nil
	}
	name := p.curToken.Literal
	p.nextToken()

	if !p.expect(TokenLBrace) {
		return nil
	}

	decl := &ClassDecl{PosVal: pos, Name: name}
	for !p.curTokenIs(TokenRBrace) && !p.curTokenIs(TokenEOF) && !p.failed() {
		m := p.parseMethod()
		if m == nil {
			return nil
		}
		decl.Methods = append(decl.Methods, m)
	}

	if !p.expect(TokenRBrace) {
		return nil
	}
	if !p.curTokenIs(TokenEOF) {
		p.errorf("unexpected %s after class body; a source unit defines a single class", p.curToken)
		return nil
	}
	return decl
}

// parseMethod parses one method declaration:
//
//	static ResultMap main(ParameterMap p) { ... }
func (p *Parser) parseMethod() *MethodDecl {
	pos := p.curToken.Pos

	static := false
	if p.curTokenIs(TokenStatic) {
		static = true
		p.nextToken()
	}

	if !p.curTokenIs(TokenIdentifier) {
		p.errorf("expected return type, got %s", p.curToken)
		return nil
	}
	returnType := p.curToken.Literal
	p.nextToken()

	if !p.curTokenIs(TokenIdentifier) {
		p.errorf("expected method name, got %s", p.curToken)
		return nil
	}
	name := p.curToken.Literal
	p.nextToken()

	if !p.expect(TokenLParen) {
		return nil
	}

	var params []Param
	for !p.curTokenIs(TokenRParen) {
		if len(params) > 0 && !p.expect(TokenComma) {
			return nil
		}
		if !p.curTokenIs(TokenIdentifier) {
			p.errorf("expected parameter type, got %s", p.curToken)
			return nil
		}
		ptype := p.curToken.Literal
		p.nextToken()
		if !p.curTokenIs(TokenIdentifier) {
			p.errorf("expected parameter name, got %s", p.curToken)
			return nil
		}
		params = append(params, Param{Type: ptype, Name: p.curToken.Literal})
		p.nextToken()
	}
	p.nextToken() // consume ')'

	body := p.parseBlock()
	if p.failed() {
		return nil
	}

	return &MethodDecl{
		PosVal:     pos,
		Name:       name,
		Static:     static,
		ReturnType: returnType,
		Params:     params,
		Body:       body,
	}
}

// parseBlock parses a brace-delimited statement list.
func (p *Parser) parseBlock() []Stmt {
	if !p.expect(TokenLBrace) {
		return nil
	}
	var stmts []Stmt
	for !p.curTokenIs(TokenRBrace) && !p.curTokenIs(TokenEOF) && !p.failed() {
		s := p.parseStatement()
		if s == nil {
			return nil
		}
		stmts = append(stmts, s)
	}
	p.expect(TokenRBrace)
	return stmts
}

// ---------------------------------------------------------------------------
// Statements
// ---------------------------------------------------------------------------

func (p *Parser) parseStatement() Stmt {
	switch p.curToken.Type {
	case TokenReturn:
		return p.parseReturn()
	case TokenIf:
		return p.parseIf()
	case TokenWhile:
		return p.parseWhile()
	case TokenIdentifier:
		// Ident = ...            bare assignment
		// Ident Ident = ...      typed declaration
		if p.peekTokenIs(TokenAssign) {
			return p.parseAssign("")
		}
		if p.peekTokenIs(TokenIdentifier) {
			declType := p.curToken.Literal
			p.nextToken()
			return p.parseAssign(declType)
		}
		return p.parseExprStatement()
	default:
		return p.parseExprStatement()
	}
}

// parseAssign parses `name = expr;` with the current token on the name.
func (p *Parser) parseAssign(declType string) Stmt {
	pos := p.curToken.Pos
	name := p.curToken.Literal
	p.nextToken()
	if !p.expect(TokenAssign) {
		return nil
	}
	value := p.parseExpression()
	if value == nil {
		return nil
	}
	if !p.expect(TokenSemi) {
		return nil
	}
	return &AssignStmt{PosVal: pos, Type: declType, Name: name, Value: value}
}

func (p *Parser) parseReturn() Stmt {
	pos := p.curToken.Pos
	p.nextToken()
	if p.curTokenIs(TokenSemi) {
		p.nextToken()
		return &ReturnStmt{PosVal: pos}
	}
	value := p.parseExpression()
	if value == nil {
		return nil
	}
	if !p.expect(TokenSemi) {
		return nil
	}
	return &ReturnStmt{PosVal: pos, Value: value}
}

func (p *Parser) parseIf() Stmt {
	pos := p.curToken.Pos
	p.nextToken()
	if !p.expect(TokenLParen) {
		return nil
	}
	cond := p.parseExpression()
	if cond == nil {
		return nil
	}
	if !p.expect(TokenRParen) {
		return nil
	}
	then := p.parseBlock()
	if p.failed() {
		return nil
	}

	var elseBody []Stmt
	if p.curTokenIs(TokenElse) {
		p.nextToken()
		if p.curTokenIs(TokenIf) {
			chained := p.parseIf()
			if chained == nil {
				return nil
			}
			elseBody = []Stmt{chained}
		} else {
			elseBody = p.parseBlock()
			if p.failed() {
				return nil
			}
		}
	}

	return &IfStmt{PosVal: pos, Cond: cond, Then: then, Else: elseBody}
}

func (p *Parser) parseWhile() Stmt {
	pos := p.curToken.Pos
	p.nextToken()
	if !p.expect(TokenLParen) {
		return nil
	}
	cond := p.parseExpression()
	if cond == nil {
		return nil
	}
	if !p.expect(TokenRParen) {
		return nil
	}
	body := p.parseBlock()
	if p.failed() {
		return nil
	}
	return &WhileStmt{PosVal: pos, Cond: cond, Body: body}
}

// parseExprStatement parses an expression statement, or an index
// assignment when the expression is an index target followed by `=`.
func (p *Parser) parseExprStatement() Stmt {
	pos := p.curToken.Pos
	x := p.parseExpression()
	if x == nil {
		return nil
	}

	if p.curTokenIs(TokenAssign) {
		idx, ok := x.(*IndexExpr)
		if !ok {
			p.errorf("cannot assign to this expression")
			return nil
		}
		p.nextToken()
		value := p.parseExpression()
		if value == nil {
			return nil
		}
		if !p.expect(TokenSemi) {
			return nil
		}
		return &IndexAssignStmt{PosVal: pos, Container: idx.X, Index: idx.Index, Value: value}
	}

	if !p.expect(TokenSemi) {
		return nil
	}
	return &ExprStmt{PosVal: pos, X: x}
}

// ---------------------------------------------------------------------------
// Expressions (precedence climbing)
// ---------------------------------------------------------------------------

// Binding powers, loosest to tightest.
const (
	precLowest  = iota
	precOr      // ||
	precAnd     // &&
	precEquals  // == !=
	precCompare // < <= > >=
	precSum     // + -
	precProduct // * / %
	precUnary   // ! -
)

var precedences = map[TokenType]int{
	TokenOrOr:    precOr,
	TokenAndAnd:  precAnd,
	TokenEq:      precEquals,
	TokenNe:      precEquals,
	TokenLt:      precCompare,
	TokenLe:      precCompare,
	TokenGt:      precCompare,
	TokenGe:      precCompare,
	TokenPlus:    precSum,
	TokenMinus:   precSum,
	TokenStar:    precProduct,
	TokenSlash:   precProduct,
	TokenPercent: precProduct,
}

func (p *Parser) parseExpression() Expr {
	return p.parseBinary(precLowest)
}

func (p *Parser) parseBinary(minPrec int) Expr {
	left := p.parseUnary()
	if left == nil {
		return nil
	}

	for {
		prec, ok := precedences[p.curToken.Type]
		if !ok || prec <= minPrec {
			return left
		}
		op := p.curToken.Type
		pos := p.curToken.Pos
		p.nextToken()

		right := p.parseBinary(prec)
		if right == nil {
			return nil
		}
		left = &BinaryExpr{PosVal: pos, Op: op, Left: left, Right: right}
	}
}

func (p *Parser) parseUnary() Expr {
	switch p.curToken.Type {
	case TokenBang, TokenMinus:
		pos := p.curToken.Pos
		op := p.curToken.Type
		p.nextToken()
		x := p.parseUnary()
		if x == nil {
			return nil
		}
		return &UnaryExpr{PosVal: pos, Op: op, X: x}
	default:
		return p.parsePostfix()
	}
}

// parsePostfix parses a primary expression and any trailing index chains.
func (p *Parser) parsePostfix() Expr {
	x := p.parsePrimary()
	if x == nil {
		return nil
	}
	for p.curTokenIs(TokenLBracket) {
		pos := p.curToken.Pos
		p.nextToken()
		idx := p.parseExpression()
		if idx == nil {
			return nil
		}
		if !p.expect(TokenRBracket) {
			return nil
		}
		x = &IndexExpr{PosVal: pos, X: x, Index: idx}
	}
	return x
}

func (p *Parser) parsePrimary() Expr {
	pos := p.curToken.Pos

	switch p.curToken.Type {
	case TokenInt:
		n, err := strconv.ParseInt(p.curToken.Literal, 10, 64)
		if err != nil {
			p.errorf("invalid integer literal %q", p.curToken.Literal)
			return nil
		}
		p.nextToken()
		return &IntLit{PosVal: pos, Value: n}

	case TokenFloat:
		f, err := strconv.ParseFloat(p.curToken.Literal, 64)
		if err != nil {
			p.errorf("invalid float literal %q", p.curToken.Literal)
			return nil
		}
		p.nextToken()
		return &FloatLit{PosVal: pos, Value: f}

	case TokenString:
		s := p.curToken.Literal
		p.nextToken()
		return &StringLit{PosVal: pos, Value: s}

	case TokenTrue:
		p.nextToken()
		return &BoolLit{PosVal: pos, Value: true}

	case TokenFalse:
		p.nextToken()
		return &BoolLit{PosVal: pos, Value: false}

	case TokenNull:
		p.nextToken()
		return &NullLit{PosVal: pos}

	case TokenIdentifier:
		name := p.curToken.Literal
		p.nextToken()
		if p.curTokenIs(TokenLParen) {
			return p.parseCall(pos, name)
		}
		return &Ident{PosVal: pos, Name: name}

	case TokenLParen:
		p.nextToken()
		x := p.parseExpression()
		if x == nil {
			return nil
		}
		if !p.expect(TokenRParen) {
			return nil
		}
		return x

	case TokenLBrace:
		return p.parseMapLit(pos)

	case TokenLBracket:
		return p.parseListLit(pos)

	default:
		p.errorf("unexpected %s in expression", p.curToken)
		return nil
	}
}

// parseCall parses a function call with the current token on '('.
func (p *Parser) parseCall(pos Position, name string) Expr {
	p.nextToken() // consume '('
	var args []Expr
	for !p.curTokenIs(TokenRParen) {
		if len(args) > 0 && !p.expect(TokenComma) {
			return nil
		}
		arg := p.parseExpression()
		if arg == nil {
			return nil
		}
		args = append(args, arg)
	}
	p.nextToken() // consume ')'
	return &CallExpr{PosVal: pos, Name: name, Args: args}
}

// parseMapLit parses `{}` or `{"k": v, ...}`.
func (p *Parser) parseMapLit(pos Position) Expr {
	p.nextToken() // consume '{'
	lit := &MapLit{PosVal: pos}
	for !p.curTokenIs(TokenRBrace) {
		if len(lit.Entries) > 0 && !p.expect(TokenComma) {
			return nil
		}
		key := p.parseExpression()
		if key == nil {
			return nil
		}
		if !p.expect(TokenColon) {
			return nil
		}
		value := p.parseExpression()
		if value == nil {
			return nil
		}
		lit.Entries = append(lit.Entries, MapEntry{Key: key, Value: value})
	}
	p.nextToken() // consume '}'
	return lit
}

// parseListLit parses `[]` or `[a, b, c]`.
func (p *Parser) parseListLit(pos Position) Expr {
	p.nextToken() // consume '['
	lit := &ListLit{PosVal: pos}
	for !p.curTokenIs(TokenRBracket) {
		if len(lit.Elems) > 0 && !p.expect(TokenComma) {
			return nil
		}
		elem := p.parseExpression()
		if elem == nil {
			return nil
		}
		lit.Elems = append(lit.Elems, elem)
	}
	p.nextToken() // consume ']'
	return lit
}

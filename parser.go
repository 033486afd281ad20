package clc

import "fmt"

// Parser is a one-token-lookahead recursive-descent parser, following
// the grammar's productions one function per non-terminal — the same
// shape as the teacher's own hand-written descent, just over a
// different grammar (see DESIGN.md).
type Parser struct {
	lex  *Lexer
	tok  Token
	tree *Tree
	gen  *Codegen

	Errors []*Error
	fatal  bool // Unexpected EOF: stop building the tree, keep collected diagnostics
}

func newParser(lex *Lexer) *Parser {
	p := &Parser{lex: lex, tree: newTree(), gen: newCodegen()}
	p.advance()
	return p
}

func (p *Parser) advance() {
	p.tok = p.lex.Next()
	traceParse("parser: lookahead %v", p.tok)
}

// syntaxError records a diagnostic on the lookahead's line; at
// end-of-input it records "Unexpected EOF" instead and halts the parser.
// It consumes no tokens (resynchronization is the caller's job, via sync
// or predict) and drops every diagnostic raised after the halt.
func (p *Parser) syntaxError(message string) {
	if p.fatal {
		return
	}
	if p.tok.Kind == END {
		p.Errors = append(p.Errors, newSyntaxError("Unexpected EOF", p.tok.Line))
		p.fatal = true
		return
	}
	p.Errors = append(p.Errors, newSyntaxError(message, p.tok.Line))
}

// illegal records an "illegal <lookahead>" diagnostic; what names the
// construct being parsed, for the trace log only — the reported message
// always quotes the offending lexeme.
func (p *Parser) illegal(what string) {
	traceParse("parser: illegal token %v while parsing %s", p.tok, what)
	p.syntaxError(fmt.Sprintf("illegal %s", p.tok.Lexeme))
}

func (p *Parser) missing(what string) {
	p.syntaxError(fmt.Sprintf("missing %s", what))
}

// sync discards tokens until pred(p.tok) holds or EOF is reached.
func (p *Parser) sync(pred func(Token) bool) {
	if p.fatal {
		return
	}
	for p.tok.Kind != END && !pred(p.tok) {
		p.advance()
	}
	if p.tok.Kind == END {
		p.Errors = append(p.Errors, newSyntaxError("Unexpected EOF", p.tok.Line))
		p.fatal = true
	}
}

// predict reports whether the lookahead can start nt, applying the
// non-terminal recovery steps when it cannot: a lookahead in FOLLOW(nt)
// records "missing <nt>" and consumes nothing — the caller skips the
// production, so no node for it enters the tree; end-of-input halts the
// parser; any other lookahead is recorded "illegal <lexeme>", discarded,
// and prediction retries on the next token.
func (p *Parser) predict(nt nonTerminal) bool {
	row := &grammarTable[nt]
	for !p.fatal {
		term := terminalOf(p.tok)
		if row.first.has(term) {
			return true
		}
		if term == tEOF || row.follow.has(term) {
			p.missing(row.name)
			return false
		}
		p.illegal(row.name)
		p.advance()
	}
	return false
}

// epsilon marks parent as derived through its empty alternative.
func (p *Parser) epsilon(parent int) {
	p.tree.attach(parent, p.tree.addNode("epsilon"))
}

// expectSym consumes a SYMBOL token with the given lexeme, or reports a
// missing-token error and leaves the lookahead untouched so the caller's
// sync point can decide how to recover.
func (p *Parser) expectSym(node int, lexeme string) {
	if isSym(p.tok, lexeme) {
		p.leaf(node)
		p.advance()
		return
	}
	p.missing(lexeme)
}

func (p *Parser) expectKw(node int, lexeme string) {
	if isKw(p.tok, lexeme) {
		p.leaf(node)
		p.advance()
		return
	}
	p.missing(lexeme)
}

func (p *Parser) expectKind(node int, k Kind, what string) (Token, bool) {
	if p.tok.Kind == k {
		tok := p.tok
		p.leaf(node)
		p.advance()
		return tok, true
	}
	p.missing(what)
	return Token{}, false
}

func (p *Parser) leaf(parent int) {
	p.tree.attach(parent, p.tree.addLeaf(p.tok))
}

// Parse runs the whole pipeline over the token stream and returns the
// parse tree root index, or -1 if the parser has already halted on
// Unexpected EOF.
func (p *Parser) Parse() int {
	if p.fatal {
		return -1
	}
	root := p.tree.addNode("Program")
	p.gen.startProgram()
	p.declarationList(root)
	p.gen.endProgram()
	if !p.fatal {
		// The end marker is itself a leaf of the start symbol's single
		// production.
		p.tree.attach(root, p.tree.addNode("$"))
	}
	return root
}

// declarationList parses the program body to end-of-input: declarations
// interleaved with executable statements at file scope (their code is
// emitted into the program prologue, ahead of any function body). A
// token that starts neither is skipped with an illegal-token diagnostic,
// the same recovery as everywhere else.
func (p *Parser) declarationList(parent int) {
	node := p.tree.addNode("Declaration-list")
	p.tree.attach(parent, node)
	produced := 0
	for !p.fatal {
		switch {
		case startsDeclaration(p.tok):
			p.declaration(node)
			produced++
		case startsStatement(p.tok):
			p.statement(node)
			produced++
		case p.tok.Kind == END:
			if produced == 0 {
				p.epsilon(node)
			}
			return
		default:
			p.illegal("declaration")
			p.advance()
		}
	}
}

func (p *Parser) declaration(parent int) {
	node := p.tree.addNode("Declaration")
	p.tree.attach(parent, node)

	typeTok := p.tok
	p.leaf(node)
	p.advance()

	nameTok, ok := p.expectKind(node, ID, "ID")
	if !ok {
		p.sync(func(t Token) bool { return isSym(t, ";") || isSym(t, "(") })
	}

	switch {
	case isSym(p.tok, "["):
		p.leaf(node)
		p.advance()
		sizeTok, _ := p.expectKind(node, NUM, "NUM")
		p.expectSym(node, "]")
		p.expectSym(node, ";")
		if ok {
			p.gen.declareArray(typeTok, nameTok, sizeTok)
		}
	case isSym(p.tok, "("):
		p.leaf(node)
		p.advance()
		var fn *Symbol
		if ok {
			fn = p.gen.declareFunc(typeTok, nameTok)
		}
		if p.predict(ntParams) {
			p.params(node, fn)
		}
		p.expectSym(node, ")")
		if p.predict(ntCompoundStmt) {
			p.compoundStmt(node)
		}
		if fn != nil {
			p.gen.endFunc()
		}
	default:
		p.expectSym(node, ";")
		if ok {
			p.gen.declareVar(typeTok, nameTok)
		}
	}
}

func (p *Parser) params(parent int, fn *Symbol) {
	node := p.tree.addNode("Params")
	p.tree.attach(parent, node)

	if isKw(p.tok, "void") {
		p.leaf(node)
		p.advance()
		return
	}
	for {
		if !isTypeSpecifier(p.tok) {
			p.illegal("parameter")
			p.sync(func(t Token) bool { return isSym(t, ")") || isSym(t, ",") })
			if isSym(p.tok, ")") {
				return
			}
			if isSym(p.tok, ",") {
				p.leaf(node)
				p.advance()
				continue
			}
			return
		}
		p.leaf(node)
		p.advance()
		nameTok, ok := p.expectKind(node, ID, "ID")
		isArray := false
		if isSym(p.tok, "[") {
			isArray = true
			p.leaf(node)
			p.advance()
			p.expectSym(node, "]")
		}
		if ok && fn != nil {
			p.gen.addParam(nameTok, isArray)
		}
		if isSym(p.tok, ",") {
			p.leaf(node)
			p.advance()
			continue
		}
		break
	}
}

func (p *Parser) compoundStmt(parent int) {
	node := p.tree.addNode("Compound-stmt")
	p.tree.attach(parent, node)
	p.expectSym(node, "{")
	p.gen.startScope()

	decls := p.tree.addNode("Local-declarations")
	p.tree.attach(node, decls)
	nDecls := 0
	for !p.fatal && startsDeclaration(p.tok) {
		p.localDeclaration(decls)
		nDecls++
	}
	if nDecls == 0 {
		p.epsilon(decls)
	}

	stmts := p.tree.addNode("Statement-list")
	p.tree.attach(node, stmts)
	nStmts := 0
	for !p.fatal && startsStatement(p.tok) {
		p.statement(stmts)
		nStmts++
	}
	if nStmts == 0 {
		p.epsilon(stmts)
	}

	p.gen.finishScope()
	p.expectSym(node, "}")
}

// localDeclaration is a var-declaration only: fun-declaration cannot
// nest inside a compound statement.
func (p *Parser) localDeclaration(parent int) {
	node := p.tree.addNode("Var-declaration")
	p.tree.attach(parent, node)
	typeTok := p.tok
	p.leaf(node)
	p.advance()
	nameTok, ok := p.expectKind(node, ID, "ID")
	if isSym(p.tok, "[") {
		p.leaf(node)
		p.advance()
		sizeTok, _ := p.expectKind(node, NUM, "NUM")
		p.expectSym(node, "]")
		p.expectSym(node, ";")
		if ok {
			p.gen.declareArray(typeTok, nameTok, sizeTok)
		}
		return
	}
	p.expectSym(node, ";")
	if ok {
		p.gen.declareVar(typeTok, nameTok)
	}
}

func (p *Parser) statement(parent int) {
	node := p.tree.addNode("Statement")
	p.tree.attach(parent, node)

	switch {
	case isSym(p.tok, "{"):
		p.compoundStmt(node)
	case isKw(p.tok, "if"):
		p.selectionStmt(node)
	case isKw(p.tok, "repeat"):
		p.iterationStmt(node)
	case isKw(p.tok, "return"):
		p.returnStmt(node)
	case isKw(p.tok, "break"):
		p.leaf(node)
		line := p.tok.Line
		p.advance()
		p.expectSym(node, ";")
		p.gen.scopeBreak(line)
	default:
		p.expressionStmt(node)
	}
}

func (p *Parser) expressionStmt(parent int) {
	node := p.tree.addNode("Expression-stmt")
	p.tree.attach(parent, node)
	if isSym(p.tok, ";") {
		p.leaf(node)
		p.advance()
		return
	}
	p.expression(node)
	p.expectSym(node, ";")
}

func (p *Parser) selectionStmt(parent int) {
	node := p.tree.addNode("Selection-stmt")
	p.expectKw(node, "if")
	p.expectSym(node, "(")
	var cond operand
	if p.predict(ntExpression) {
		cond = p.expression(node)
	}
	p.expectSym(node, ")")
	jpf := p.gen.saveJpf(cond)
	if p.predict(ntStatement) {
		p.statement(node)
	}
	if isKw(p.tok, "else") {
		jp := p.gen.saveJp()
		p.gen.fillJpf(jpf)
		p.leaf(node)
		p.advance()
		if p.predict(ntStatement) {
			p.statement(node)
		}
		p.gen.fillJp(jp)
		p.tree.attach(parent, node)
		return
	}
	p.epsilon(node)
	p.gen.fillJpf(jpf)
	p.tree.attach(parent, node)
}

func (p *Parser) iterationStmt(parent int) {
	node := p.tree.addNode("Iteration-stmt")
	p.tree.attach(parent, node)
	p.expectKw(node, "repeat")
	header := p.gen.loopHeader()
	p.gen.enterLoop()
	if p.predict(ntStatement) {
		p.statement(node)
	}
	p.expectKw(node, "until")
	p.expectSym(node, "(")
	var cond operand
	if p.predict(ntExpression) {
		cond = p.expression(node)
	}
	p.expectSym(node, ")")
	p.expectSym(node, ";")
	p.gen.untilJump(header, cond)
	p.gen.exitLoop()
}

func (p *Parser) returnStmt(parent int) {
	node := p.tree.addNode("Return-stmt")
	p.tree.attach(parent, node)
	line := p.tok.Line
	p.expectKw(node, "return")
	if isSym(p.tok, ";") {
		p.leaf(node)
		p.advance()
		p.gen.funcReturn(line, operand{})
		return
	}
	var val operand
	if startsExpression(p.tok) {
		val = p.expression(node)
	} else {
		// "return }" and friends: the value and its ";" are both simply
		// absent; consuming nothing keeps the block's "}" intact.
		p.missing("expression")
	}
	p.expectSym(node, ";")
	p.gen.funcReturn(line, val)
}

// expression returns the operand of the whole expression, used directly
// by statements that need its value (if/repeat conditions, return).
func (p *Parser) expression(parent int) operand {
	node := p.tree.addNode("Expression")
	p.tree.attach(parent, node)

	// var = expression requires one token of extra lookahead beyond
	// LL(1) on the grammar alone: ID could start either a var or a
	// call/simple-expression. Parse the common ID prefix once, then
	// decide.
	if p.tok.Kind == ID {
		nameTok := p.tok
		p.leaf(node)
		p.advance()

		if isSym(p.tok, "(") {
			result := p.callTail(node, nameTok)
			return p.simpleExpressionTail(node, p.additiveExpressionTail(node, result))
		}

		var idxOperand operand
		isIndexed := false
		if isSym(p.tok, "[") {
			isIndexed = true
			p.leaf(node)
			p.advance()
			if p.predict(ntExpression) {
				idxOperand = p.expression(node)
			}
			p.expectSym(node, "]")
		}

		if isSym(p.tok, "=") {
			p.leaf(node)
			p.advance()
			var rhs operand
			if p.predict(ntExpression) {
				rhs = p.expression(node)
			}
			var dst operand
			if isIndexed {
				dst = p.gen.arrayElemOperand(nameTok, idxOperand)
			} else {
				dst = p.gen.varOperand(nameTok)
			}
			return p.gen.assign(dst, rhs)
		}

		var first operand
		if isIndexed {
			first = p.gen.arrayElemOperand(nameTok, idxOperand)
		} else {
			first = p.gen.varOperand(nameTok)
		}
		first = p.additiveExpressionTail(node, first)
		return p.simpleExpressionTail(node, first)
	}

	return p.simpleExpression(node)
}

// simpleExpression parses additive-expression [relop additive-expression]
// with no leading ID already consumed.
func (p *Parser) simpleExpression(parent int) operand {
	first := p.additiveExpression(parent)
	return p.simpleExpressionTail(parent, first)
}

func (p *Parser) simpleExpressionTail(parent int, first operand) operand {
	if isSym(p.tok, "<") || isSym(p.tok, "==") {
		op := EQ
		if p.tok.Lexeme == "<" {
			op = LT
		}
		p.leaf(parent)
		p.advance()
		if !p.predict(ntAdditiveExpression) {
			return first
		}
		second := p.additiveExpression(parent)
		return p.gen.binary(op, first, second)
	}
	return first
}

func (p *Parser) additiveExpression(parent int) operand {
	first := p.term(parent)
	return p.additiveExpressionTail(parent, first)
}

func (p *Parser) additiveExpressionTail(parent int, first operand) operand {
	for isSym(p.tok, "+") || isSym(p.tok, "-") {
		op := ADD
		if p.tok.Lexeme == "-" {
			op = SUB
		}
		p.leaf(parent)
		p.advance()
		if !p.predict(ntTerm) {
			return first
		}
		next := p.term(parent)
		first = p.gen.binary(op, first, next)
	}
	return first
}

func (p *Parser) term(parent int) operand {
	first := p.factor(parent)
	for isSym(p.tok, "*") {
		p.leaf(parent)
		p.advance()
		if !p.predict(ntFactor) {
			return first
		}
		next := p.factor(parent)
		first = p.gen.binary(MULT, first, next)
	}
	return first
}

func (p *Parser) factor(parent int) operand {
	node := p.tree.addNode("Factor")
	p.tree.attach(parent, node)

	switch {
	case isSym(p.tok, "("):
		p.leaf(node)
		p.advance()
		var v operand
		if p.predict(ntExpression) {
			v = p.expression(node)
		}
		p.expectSym(node, ")")
		return v
	case p.tok.Kind == NUM:
		tok := p.tok
		p.leaf(node)
		p.advance()
		return p.gen.numOperand(tok)
	case p.tok.Kind == ID:
		nameTok := p.tok
		p.leaf(node)
		p.advance()
		if isSym(p.tok, "(") {
			return p.callTail(node, nameTok)
		}
		if isSym(p.tok, "[") {
			p.leaf(node)
			p.advance()
			var idx operand
			if p.predict(ntExpression) {
				idx = p.expression(node)
			}
			p.expectSym(node, "]")
			return p.gen.arrayElemOperand(nameTok, idx)
		}
		return p.gen.varOperand(nameTok)
	default:
		// Unreachable while every caller guards with FIRST(factor); kept
		// so a future call site that forgets still degrades to the
		// standard non-consuming diagnostic.
		p.missing("factor")
		return operand{}
	}
}

// callTail parses "( args )" given the ID leaf has already been
// attached and the "(" is the current lookahead.
func (p *Parser) callTail(node int, nameTok Token) operand {
	p.leaf(node) // "("
	p.advance()
	argsNode := p.tree.addNode("Args")
	p.tree.attach(node, argsNode)
	var args []operand
	if startsExpression(p.tok) {
		args = append(args, p.expression(argsNode))
		for isSym(p.tok, ",") {
			p.leaf(argsNode)
			p.advance()
			if !p.predict(ntExpression) {
				break
			}
			args = append(args, p.expression(argsNode))
		}
	} else {
		p.epsilon(argsNode)
	}
	p.expectSym(node, ")")
	return p.gen.call(nameTok, args)
}

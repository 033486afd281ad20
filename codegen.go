package clc

import (
	"fmt"
	"strconv"
)

// opKind tags how an operand's address text should be rendered: a
// literal constant, a direct memory cell, or an indirect reference
// (the cell holds the address to use). This tagged-variant operand is
// what lets call/return compile down to plain ASSIGN and JP: a call
// stores its resume address as a literal (#n) in the callee's cell and
// jumps to the entry, and a return jumps indirectly (@) through that cell.
type opKind int

const (
	opImmediate opKind = iota
	opDirect
	opIndirect
)

type operand struct {
	kind  opKind
	addr  string
	valid bool
}

func (o operand) text() string {
	if !o.valid {
		return ""
	}
	switch o.kind {
	case opImmediate:
		return "#" + o.addr
	case opIndirect:
		return "@" + o.addr
	default:
		return o.addr
	}
}

func directOf(addr int) operand { return operand{kind: opDirect, addr: fmt.Sprintf("%d", addr), valid: true} }

// Codegen is the semantic-action driver: it owns the scope stack, the
// emitted program, and the bookkeeping (break targets, loop headers,
// the current function) that the parser's action calls update as
// productions are recognized.
type Codegen struct {
	scope *Scope
	prog  *Program

	Errors []*Error

	currentFunc  *Symbol
	breakTargets [][]int // one pending-patch list per enclosing repeat/until
	entryPatch   int     // index of the program's leading JP, patched by end_program
}

func newCodegen() *Codegen {
	c := &Codegen{scope: newScope(), prog: &Program{}}
	return c
}

func (c *Codegen) semanticError(line int, format string, args ...interface{}) {
	c.Errors = append(c.Errors, newSemanticError(fmt.Sprintf(format, args...), line))
}

// startProgram reserves instruction 0 as a jump to the program's entry
// function (by convention, "main"); endProgram patches it once the
// whole declaration list has been processed.
func (c *Codegen) startProgram() {
	c.entryPatch = c.prog.emit(JP, "0", "", "")
}

func (c *Codegen) endProgram() {
	if main, ok := c.scope.lookupFunc("main"); ok {
		c.prog.patchJump(c.entryPatch, main.EntryAddr)
	}
}

// --- declarations ---

func (c *Codegen) declareVar(typeTok, nameTok Token) *Symbol {
	addr := c.scope.allocate(1)
	sym := &Symbol{Name: nameTok.Lexeme, Kind: symVar, Address: addr, Line: nameTok.Line}
	if !c.scope.declareInCurrent(sym) {
		c.semanticError(nameTok.Line, "'%s' is already defined.", nameTok.Lexeme)
		return nil
	}
	if typeTok.Lexeme == "void" {
		c.semanticError(nameTok.Line, "Illegal type of void for '%s'.", nameTok.Lexeme)
	}
	return sym
}

func (c *Codegen) declareArray(typeTok, nameTok, sizeTok Token) *Symbol {
	size, err := strconv.Atoi(sizeTok.Lexeme)
	if err != nil || size <= 0 {
		size = 1
	}
	addr := c.scope.allocate(size)
	sym := &Symbol{Name: nameTok.Lexeme, Kind: symArray, Address: addr, ArraySize: size, Line: nameTok.Line}
	if !c.scope.declareInCurrent(sym) {
		c.semanticError(nameTok.Line, "'%s' is already defined.", nameTok.Lexeme)
		return nil
	}
	return sym
}

func (c *Codegen) declareFunc(typeTok, nameTok Token) *Symbol {
	sym := &Symbol{
		Name:      nameTok.Lexeme,
		Kind:      symFunc,
		EntryAddr: c.prog.nextIndex(),
		ReturnVar: c.scope.allocate(1),
		Line:      nameTok.Line,
	}
	sym.Address = c.scope.allocate(1) // holds the stored resume address for JP-indirect return
	if !c.scope.declareInCurrent(sym) {
		c.semanticError(nameTok.Line, "'%s' is already defined.", nameTok.Lexeme)
	}
	c.currentFunc = sym
	c.scope.push()
	return sym
}

func (c *Codegen) addParam(nameTok Token, isArray bool) {
	addr := c.scope.allocate(1)
	kind := symParamVar
	if isArray {
		kind = symParamArray
	}
	sym := &Symbol{Name: nameTok.Lexeme, Kind: kind, Address: addr, Line: nameTok.Line}
	if !c.scope.declareInCurrent(sym) {
		c.semanticError(nameTok.Line, "'%s' is already defined.", nameTok.Lexeme)
		return
	}
	if c.currentFunc != nil {
		c.currentFunc.Params = append(c.currentFunc.Params, sym)
	}
}

func (c *Codegen) startScope() { c.scope.push() }

func (c *Codegen) finishScope() { c.scope.pop() }

func (c *Codegen) endFunc() {
	c.scope.pop()
	c.currentFunc = nil
}

// --- operands ---

func (c *Codegen) numOperand(tok Token) operand {
	return operand{kind: opImmediate, addr: tok.Lexeme, valid: true}
}

func (c *Codegen) varOperand(tok Token) operand {
	sym, ok := c.scope.lookup(tok.Lexeme)
	if !ok {
		c.semanticError(tok.Line, "'%s' is not defined.", tok.Lexeme)
		sym = c.scope.declareForward(tok.Lexeme, 0)
	}
	if sym.Kind == symArray {
		// Bare array name used where a scalar was expected: the whole
		// array's base address, taken as-is (matches the original's
		// lenient treatment of array-name-as-pointer).
		return operand{kind: opImmediate, addr: strconv.Itoa(sym.Address), valid: true}
	}
	if sym.Kind == symFunc {
		c.semanticError(tok.Line, "'%s' is a function, not a variable.", tok.Lexeme)
		return operand{}
	}
	return directOf(sym.Address)
}

// arrayElemOperand computes var[index] as an indirect operand: it emits
// an address computation into a fresh temp, then returns an indirect
// reference through that temp.
func (c *Codegen) arrayElemOperand(tok Token, index operand) operand {
	sym, ok := c.scope.lookup(tok.Lexeme)
	if !ok {
		c.semanticError(tok.Line, "'%s' is not defined.", tok.Lexeme)
		sym = c.scope.declareForward(tok.Lexeme, 1)
	}
	if sym.Kind != symArray && sym.Kind != symParamArray {
		c.semanticError(tok.Line, "'%s' is not an array.", tok.Lexeme)
		return operand{}
	}
	if !index.valid {
		return operand{}
	}
	// A declared array's base is its address itself; an array parameter's
	// cell holds the base address it was passed.
	base := directOf(sym.Address)
	if sym.Kind == symArray {
		base = operand{kind: opImmediate, addr: strconv.Itoa(sym.Address), valid: true}
	}
	offset := c.newTempOperand()
	c.prog.emit(MULT, index.text(), "#1", offset.text())
	addr := c.newTempOperand()
	c.prog.emit(ADD, base.text(), offset.text(), addr.text())
	return operand{kind: opIndirect, addr: addr.addr, valid: true}
}

func (c *Codegen) newTempOperand() operand { return directOf(c.scope.allocate(1)) }

// --- expressions ---

func (c *Codegen) binary(op Op, a, b operand) operand {
	if !a.valid || !b.valid {
		return operand{}
	}
	t := c.newTempOperand()
	c.prog.emit(op, a.text(), b.text(), t.text())
	return t
}

func (c *Codegen) assign(dst, src operand) operand {
	if !dst.valid || !src.valid {
		return operand{}
	}
	c.prog.emit(ASSIGN, src.text(), "", dst.text())
	return dst
}

// --- control flow ---

// saveJpf emits a placeholder JPF and returns its index for later
// patching (the `save`/`fill_jpf` actions of the original design).
func (c *Codegen) saveJpf(cond operand) int {
	arg1 := cond.text()
	return c.prog.emit(JPF, arg1, "", "")
}

func (c *Codegen) fillJpf(addr int) {
	c.prog.patch(addr, c.prog.nextIndex())
}

// saveJp emits a placeholder unconditional JP (used to skip the else
// branch) and returns its index.
func (c *Codegen) saveJp() int {
	return c.prog.emit(JP, "", "", "")
}

func (c *Codegen) fillJp(addr int) {
	c.prog.patchJump(addr, c.prog.nextIndex())
}

func (c *Codegen) loopHeader() int { return c.prog.nextIndex() }

func (c *Codegen) enterLoop() { c.breakTargets = append(c.breakTargets, nil) }

func (c *Codegen) untilJump(header int, cond operand) {
	c.prog.emit(JPF, cond.text(), "", fmt.Sprintf("%d", header))
}

// exitLoop patches every break inside the innermost repeat/until to jump
// here, then pops its pending-break list.
func (c *Codegen) exitLoop() {
	n := len(c.breakTargets)
	if n == 0 {
		return
	}
	target := c.prog.nextIndex()
	for _, addr := range c.breakTargets[n-1] {
		c.prog.patchJump(addr, target)
	}
	c.breakTargets = c.breakTargets[:n-1]
}

func (c *Codegen) scopeBreak(line int) {
	if len(c.breakTargets) == 0 {
		c.semanticError(line, "No enclosing iteration statement for 'break'.")
		return
	}
	idx := c.prog.emit(JP, "", "", "")
	n := len(c.breakTargets)
	c.breakTargets[n-1] = append(c.breakTargets[n-1], idx)
}

// --- calls and returns ---

func (c *Codegen) call(nameTok Token, args []operand) operand {
	if nameTok.Lexeme == "output" {
		if len(args) != 1 {
			c.semanticError(nameTok.Line, "'output' expects exactly one argument.")
			return operand{}
		}
		if args[0].valid {
			c.prog.emit(PRINT, args[0].text(), "", "")
		}
		return operand{kind: opImmediate, addr: "0", valid: true}
	}

	sym, ok := c.scope.lookupFunc(nameTok.Lexeme)
	if !ok {
		c.semanticError(nameTok.Line, "'%s' is not defined.", nameTok.Lexeme)
		return operand{}
	}
	if len(args) != len(sym.Params) {
		c.semanticError(nameTok.Line, "'%s' is called with %d arguments, expected %d.",
			nameTok.Lexeme, len(args), len(sym.Params))
	}
	for i, a := range args {
		if i >= len(sym.Params) || !a.valid {
			continue
		}
		c.prog.emit(ASSIGN, a.text(), "", directOf(sym.Params[i].Address).text())
	}

	resumeLiteral := c.prog.emit(ASSIGN, "", "", directOf(sym.Address).text())
	jp := c.prog.emit(JP, fmt.Sprintf("%d", sym.EntryAddr), "", "")
	c.prog.code[resumeLiteral].Arg1 = "#" + fmt.Sprintf("%d", jp+1)

	return directOf(sym.ReturnVar)
}

func (c *Codegen) funcReturn(line int, value operand) {
	if c.currentFunc == nil {
		c.semanticError(line, "'return' outside of a function.")
		return
	}
	if value.valid {
		c.prog.emit(ASSIGN, value.text(), "", directOf(c.currentFunc.ReturnVar).text())
	}
	c.prog.emit(JP, operand{kind: opIndirect, addr: fmt.Sprintf("%d", c.currentFunc.Address), valid: true}.text(), "", "")
}

package clc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tok(k Kind, lexeme string, line int) Token { return Token{Kind: k, Lexeme: lexeme, Line: line} }

func TestCodegenDeclareVarRejectsVoid(t *testing.T) {
	c := newCodegen()
	c.declareVar(tok(KEYWORD, "void", 1), tok(ID, "x", 1))
	require.Len(t, c.Errors, 1)
	assert.Contains(t, c.Errors[0].Message, "void")
}

func TestCodegenDeclareVarRejectsRedeclaration(t *testing.T) {
	c := newCodegen()
	c.declareVar(tok(KEYWORD, "int", 1), tok(ID, "x", 1))
	c.declareVar(tok(KEYWORD, "int", 2), tok(ID, "x", 2))
	require.Len(t, c.Errors, 1)
	assert.Contains(t, c.Errors[0].Message, "already defined")
}

func TestCodegenBinaryEmitsOneInstructionPerOperator(t *testing.T) {
	c := newCodegen()
	a := c.numOperand(tok(NUM, "2", 1))
	b := c.numOperand(tok(NUM, "3", 1))
	sum := c.binary(ADD, a, b)
	require.True(t, sum.valid)

	instrs := c.prog.Instructions()
	require.Len(t, instrs, 1)
	assert.Equal(t, ADD, instrs[0].Op)
	assert.Equal(t, "#2", instrs[0].Arg1)
	assert.Equal(t, "#3", instrs[0].Arg2)
}

func TestCodegenUndefinedVariableSynthesizesForwardAddress(t *testing.T) {
	c := newCodegen()
	first := c.varOperand(tok(ID, "x", 1))
	require.True(t, first.valid)
	require.Len(t, c.Errors, 1)
	assert.Contains(t, c.Errors[0].Message, "not defined")

	// A second use of the same undeclared name resolves without a
	// second error, to the same address.
	second := c.varOperand(tok(ID, "x", 2))
	require.True(t, second.valid)
	assert.Len(t, c.Errors, 1)
	assert.Equal(t, first.text(), second.text())
}

func TestCodegenIfElseBackpatching(t *testing.T) {
	c := newCodegen()
	cond := c.numOperand(tok(NUM, "1", 1))
	jpf := c.saveJpf(cond)
	c.assign(c.varOperand(tok(ID, "x", 1)), c.numOperand(tok(NUM, "1", 1)))
	jp := c.saveJp()
	c.fillJpf(jpf)
	c.assign(c.varOperand(tok(ID, "x", 1)), c.numOperand(tok(NUM, "2", 1)))
	c.fillJp(jp)

	instrs := c.prog.Instructions()
	require.Len(t, instrs, 4)
	assert.Equal(t, JPF, instrs[0].Op)
	assert.Equal(t, "3", instrs[0].Arg3) // patched to the else branch
	assert.Equal(t, JP, instrs[2].Op)
	assert.Equal(t, "4", instrs[2].Arg1) // patched past the else branch
}

func TestCodegenLoopUntilBackjumps(t *testing.T) {
	c := newCodegen()
	header := c.loopHeader()
	c.enterLoop()
	c.assign(c.varOperand(tok(ID, "x", 1)), c.numOperand(tok(NUM, "1", 1)))
	cond := c.numOperand(tok(NUM, "0", 1))
	c.untilJump(header, cond)
	c.exitLoop()

	instrs := c.prog.Instructions()
	require.Len(t, instrs, 2)
	assert.Equal(t, JPF, instrs[1].Op)
	assert.Equal(t, "0", instrs[1].Arg3) // back-jump to the loop header
}

func TestCodegenBreakOutsideLoopIsSemanticError(t *testing.T) {
	c := newCodegen()
	c.scopeBreak(1)
	require.Len(t, c.Errors, 1)
	assert.Contains(t, c.Errors[0].Message, "No enclosing iteration statement")
}

func TestCodegenBreakPatchesToLoopExit(t *testing.T) {
	c := newCodegen()
	c.enterLoop()
	c.scopeBreak(1)
	c.exitLoop()

	instrs := c.prog.Instructions()
	require.Len(t, instrs, 1)
	assert.Equal(t, JP, instrs[0].Op)
	assert.Equal(t, "1", instrs[0].Arg1)
}

func TestCodegenCallArityMismatch(t *testing.T) {
	c := newCodegen()
	c.declareFunc(tok(KEYWORD, "int", 1), tok(ID, "f", 1))
	c.addParam(tok(ID, "p", 1), false)
	c.endFunc()

	c.call(tok(ID, "f", 2), nil)
	require.Len(t, c.Errors, 1)
	assert.Contains(t, c.Errors[0].Message, "expected 1")
}

func TestCodegenOutputBuiltinEmitsPrint(t *testing.T) {
	c := newCodegen()
	c.call(tok(ID, "output", 1), []operand{c.numOperand(tok(NUM, "7", 1))})
	instrs := c.prog.Instructions()
	require.Len(t, instrs, 1)
	assert.Equal(t, PRINT, instrs[0].Op)
	assert.Equal(t, "#7", instrs[0].Arg1)
}

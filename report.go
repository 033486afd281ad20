package clc

import (
	"fmt"
	"strings"
)

// renderTokens renders tokens.txt: one line per source line, each
// listing that line's tokens left to right.
func renderTokens(tokens []Token) string {
	var b strings.Builder
	lineStart := 1
	var cur []Token
	flush := func(line int) {
		if len(cur) == 0 {
			return
		}
		fmt.Fprintf(&b, "%d.\t", line)
		parts := make([]string, len(cur))
		for i, t := range cur {
			parts[i] = t.String()
		}
		b.WriteString(strings.Join(parts, " "))
		b.WriteByte('\n')
		cur = nil
	}
	for _, t := range tokens {
		if t.Kind == END {
			continue
		}
		if t.Line != lineStart {
			flush(lineStart)
			lineStart = t.Line
		}
		cur = append(cur, t)
	}
	flush(lineStart)
	return b.String()
}

// renderLexicalErrors renders lexical_errors.txt: grouped by source line
// the same way tokens.txt groups tokens, one "N.\t(lex, msg) ..." row per
// line that produced at least one error.
func renderLexicalErrors(errs []*Error) string {
	if len(errs) == 0 {
		return "There is no lexical error.\n"
	}
	var b strings.Builder
	lineStart := errs[0].Line
	var cur []*Error
	flush := func(line int) {
		if len(cur) == 0 {
			return
		}
		fmt.Fprintf(&b, "%d.\t", line)
		parts := make([]string, len(cur))
		for i, e := range cur {
			parts[i] = e.Error()
		}
		b.WriteString(strings.Join(parts, " "))
		b.WriteByte('\n')
		cur = nil
	}
	for _, e := range errs {
		if e.Line != lineStart {
			flush(lineStart)
			lineStart = e.Line
		}
		cur = append(cur, e)
	}
	flush(lineStart)
	return b.String()
}

// renderLineErrors renders syntax_errors.txt / semantic_errors.txt: one
// self-contained line per diagnostic (the line number is already baked
// into e.Error()), or the file's "no error" sentinel when absent.
func renderLineErrors(errs []*Error, noneMessage string) string {
	if len(errs) == 0 {
		return noneMessage + "\n"
	}
	var b strings.Builder
	for _, e := range errs {
		b.WriteString(e.Error())
		b.WriteByte('\n')
	}
	return b.String()
}

// renderSymbolTable renders symbol_table.txt: one line per entry,
// numbered in insertion order.
func renderSymbolTable(t *SymbolTable) string {
	var b strings.Builder
	for i, name := range t.Names() {
		fmt.Fprintf(&b, "%d.\t%s\n", i+1, name)
	}
	return b.String()
}

// renderProgram renders output.txt: one instruction per line, indexed
// from zero, the index doubling as the jump target addresses embedded
// in JP/JPF operands.
func renderProgram(p *Program) string {
	var b strings.Builder
	for i, ins := range p.Instructions() {
		fmt.Fprintf(&b, "%d\t%s\n", i, ins)
	}
	return b.String()
}

// renderTree renders parse_tree.txt: Tree.Render's indented pre-order
// walk, or an empty string when the tree is nil or has no nodes.
func renderTree(t *Tree) string {
	if t == nil || len(t.nodes) == 0 {
		return ""
	}
	return t.Render()
}

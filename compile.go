package clc

import (
	"io"
	"os"

	"github.com/juju/errors"
)

// Result is everything a single compilation produced: the reports
// spec.md's external-interfaces section names, plus the structures
// behind them for callers that want to inspect the compile in memory.
type Result struct {
	Tokens       []Token
	Tree         *Tree
	Program      *Program
	SymbolTable  *SymbolTable
	LexicalErrs  []*Error
	SyntaxErrs   []*Error
	SemanticErrs []*Error
}

// HasErrors reports whether any diagnostic (of any kind) was produced.
func (r *Result) HasErrors() bool {
	return len(r.LexicalErrs) > 0 || len(r.SyntaxErrs) > 0 || len(r.SemanticErrs) > 0
}

// Reports renders the seven output files — the five spec.md's
// external-interfaces section describes, plus SPEC_FULL.md §4.5's
// semantic_errors.txt and the generated code in output.txt — keyed by
// their canonical file name.
func (r *Result) Reports() map[string]string {
	return map[string]string{
		"tokens.txt":          renderTokens(r.Tokens),
		"lexical_errors.txt":  renderLexicalErrors(r.LexicalErrs),
		"syntax_errors.txt":   renderLineErrors(r.SyntaxErrs, "There is no syntax error."),
		"semantic_errors.txt": renderLineErrors(r.SemanticErrs, "There is no semantic error."),
		"symbol_table.txt":    renderSymbolTable(r.SymbolTable),
		"parse_tree.txt":      renderTree(r.Tree),
		"output.txt":          renderProgram(r.Program),
	}
}

// Compile runs the full pipeline over r and returns the compile result.
// The returned error is non-nil only for failures of the compiler
// itself (e.g. the reader breaking mid-read), never for defects in the
// compiled source.
func Compile(r io.Reader) (*Result, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Annotate(err, "clc: compile")
	}

	lex := newLexer(newCharSourceBytes(data))
	p := newParser(lex)
	p.Parse()

	// The parser keeps no record of the tokens it consumes, so the
	// lexical artifacts — token stream, lexical errors, symbol table —
	// come from an independent full rescan of the same buffer.
	var tokens []Token
	reportLex := newLexer(newCharSourceBytes(data))
	for {
		t := reportLex.Next()
		if t.Kind == END {
			break
		}
		tokens = append(tokens, t)
	}

	return &Result{
		Tokens:       tokens,
		Tree:         p.tree,
		Program:      p.gen.prog,
		SymbolTable:  reportLex.Symbol,
		LexicalErrs:  reportLex.Errors,
		SyntaxErrs:   p.Errors,
		SemanticErrs: p.gen.Errors,
	}, nil
}

// CompileFile opens path and compiles it.
func CompileFile(path string) (*Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Annotate(err, "clc: compile file")
	}
	defer f.Close()
	return Compile(f)
}

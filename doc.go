// Package clc implements a small, self-contained compiler front end: a
// hand-written lexical scanner, an LL(1) recursive-descent parser with
// panic-mode error recovery, and a syntax-directed code generator that
// emits a flat three-address instruction set.
//
// Compile errors (lexical, syntactic, semantic) are data, returned on
// Result — never Go errors. A Go error from Compile/CompileFile means
// the compiler itself failed (could not read its input), reported via
// github.com/juju/errors the way the rest of the pipeline does.
package clc

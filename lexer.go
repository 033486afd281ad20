package clc

import (
	"bytes"
	"strings"
)

// lexState enumerates the scanner's states exactly as spec.md §4.1 lists
// them: no separate "whitespace" state (whitespace is handled as a
// boundary directly back to start) and no separate "double_equal" state
// (a second '=' is folded straight into the completed SYMBOL "==", per
// the spec's resolved open question on that point — see DESIGN.md).
type lexState int

const (
	stStart lexState = iota
	stSymbol
	stNumber
	stIdentifier
	stSymbolEqual
	stSymbolStar
	stStartingComment
	stCommentLine
	stOngoingComment
	stEndingComment
	stInvalidNumber
	stUnmatchedComment
	stPanicMode
)

func isLetter(b byte) bool { return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') }
func isDigit(b byte) bool  { return b >= '0' && b <= '9' }

func isSymbolChar(b byte) bool {
	switch b {
	case ';', ':', ',', '[', ']', '(', ')', '{', '}', '+', '-', '<':
		return true
	}
	return false
}

func isWhitespace(b byte) bool {
	switch b {
	case ' ', '\t', '\n', '\v', '\f', '\r':
		return true
	}
	return false
}

// ruleOutcome is what happens when a transition rule's predicate matches.
type ruleOutcome struct {
	next   lexState
	extend bool // true: append the byte to the buffer, stay mid-token
	carry  bool // boundary only: byte starts the next buffer instead of being discarded
}

type stateRule struct {
	test    func(byte) bool
	outcome ruleOutcome
}

func ext(next lexState) ruleOutcome                      { return ruleOutcome{next: next, extend: true} }
func bnd(next lexState, carry bool) ruleOutcome          { return ruleOutcome{next: next, carry: carry} }
func rule(test func(byte) bool, o ruleOutcome) stateRule { return stateRule{test: test, outcome: o} }

func eq(c byte) func(byte) bool  { return func(b byte) bool { return b == c } }
func not(c byte) func(byte) bool { return func(b byte) bool { return b != c } }

// startLikeRules is shared by stStart and stPanicMode: any valid
// token-starting character escapes panic mode exactly like it would
// from a clean start (spec.md §4.1 "Panic mode (lexical)").
var startLikeRules = []stateRule{
	rule(eq('*'), bnd(stSymbolStar, true)),
	rule(eq('='), bnd(stSymbolEqual, true)),
	rule(eq('/'), bnd(stStartingComment, true)),
	rule(isSymbolChar, bnd(stSymbol, true)),
	rule(isDigit, bnd(stNumber, true)),
	rule(isLetter, bnd(stIdentifier, true)),
	rule(isWhitespace, bnd(stStart, false)),
}

func rulesFor(s lexState) []stateRule {
	switch s {
	case stStart, stPanicMode:
		return startLikeRules
	case stSymbol, stUnmatchedComment:
		// Any class of follow-up character commits the buffer already in
		// hand; reusing startLikeRules's dispatch table.
		return startLikeRules
	case stNumber:
		return []stateRule{
			rule(isDigit, ext(stNumber)),
			rule(isLetter, ext(stInvalidNumber)),
			rule(eq('*'), bnd(stSymbolStar, true)),
			rule(eq('='), bnd(stSymbolEqual, true)),
			rule(eq('/'), bnd(stStartingComment, true)),
			rule(isSymbolChar, bnd(stSymbol, true)),
			rule(isWhitespace, bnd(stStart, false)),
		}
	case stInvalidNumber:
		// Extend on any further letter or digit: the whole alnum run
		// starting at the bad digit is one InvalidNumber lexeme (spec.md
		// scenario 2: "12abc" is a single error, not "12a" + "bc").
		return []stateRule{
			rule(isLetter, ext(stInvalidNumber)),
			rule(isDigit, ext(stInvalidNumber)),
			rule(eq('*'), bnd(stSymbolStar, true)),
			rule(eq('='), bnd(stSymbolEqual, true)),
			rule(eq('/'), bnd(stStartingComment, true)),
			rule(isSymbolChar, bnd(stSymbol, true)),
			rule(isWhitespace, bnd(stStart, false)),
		}
	case stIdentifier:
		return []stateRule{
			rule(isLetter, ext(stIdentifier)),
			rule(isDigit, ext(stIdentifier)),
			rule(eq('*'), bnd(stSymbolStar, true)),
			rule(eq('='), bnd(stSymbolEqual, true)),
			rule(eq('/'), bnd(stStartingComment, true)),
			rule(isSymbolChar, bnd(stSymbol, true)),
			rule(isWhitespace, bnd(stStart, false)),
		}
	case stSymbolEqual:
		return []stateRule{
			// A second '=' completes "==" as one SYMBOL; reusing stSymbol
			// as the "complete token, anything commits" holding state.
			rule(eq('='), ext(stSymbol)),
			rule(eq('*'), bnd(stSymbolStar, true)),
			rule(eq('/'), bnd(stStartingComment, true)),
			rule(isSymbolChar, bnd(stSymbol, true)),
			rule(isDigit, bnd(stNumber, true)),
			rule(isLetter, bnd(stIdentifier, true)),
			rule(isWhitespace, bnd(stStart, false)),
		}
	case stSymbolStar:
		return []stateRule{
			rule(eq('/'), ext(stUnmatchedComment)),
			rule(eq('='), bnd(stSymbolEqual, true)),
			rule(isSymbolChar, bnd(stSymbol, true)),
			rule(isDigit, bnd(stNumber, true)),
			rule(isLetter, bnd(stIdentifier, true)),
			rule(isWhitespace, bnd(stStart, false)),
		}
	case stStartingComment:
		return []stateRule{
			rule(eq('/'), ext(stCommentLine)),
			rule(eq('*'), ext(stOngoingComment)),
			rule(eq('='), bnd(stSymbolEqual, true)),
			rule(isSymbolChar, bnd(stSymbol, true)),
			rule(isDigit, bnd(stNumber, true)),
			rule(isLetter, bnd(stIdentifier, true)),
			rule(isWhitespace, bnd(stStart, false)),
		}
	case stCommentLine:
		return []stateRule{
			rule(eq('\n'), bnd(stStart, false)),
			rule(not('\n'), ext(stCommentLine)),
		}
	case stOngoingComment:
		return []stateRule{
			rule(eq('*'), ext(stEndingComment)),
			rule(not('*'), ext(stOngoingComment)),
		}
	case stEndingComment:
		return []stateRule{
			// Closing "*/" discards the whole comment and resumes at a
			// clean start — see SPEC_FULL.md §4 (ii).
			rule(eq('/'), bnd(stStart, false)),
			rule(not('/'), ext(stOngoingComment)),
		}
	}
	return nil
}

// Lexer drives the character source through the state machine, one
// byte at a time, producing classified tokens and lexical errors.
type Lexer struct {
	src    *charSource
	state  lexState
	buffer []byte
	line   int

	Errors []*Error
	Symbol *SymbolTable

	pending *Token // a token flushed by the synthetic EOF newline
	eof     bool
}

func newLexer(src *charSource) *Lexer {
	return &Lexer{
		src:    src,
		state:  stStart,
		line:   1,
		Symbol: newSymbolTable(),
	}
}

// Next pulls the next token, advancing the scanner until a token
// boundary is reached or the input is exhausted (component C/B of
// spec.md §2).
func (l *Lexer) Next() Token {
	if l.pending != nil {
		t := *l.pending
		l.pending = nil
		return t
	}
	if l.eof {
		return Token{Kind: END, Line: l.line}
	}
	for {
		b, ok := l.src.next()
		if !ok {
			return l.finish()
		}
		if tok, produced := l.consume(b); produced {
			return tok
		}
	}
}

// consume applies one byte to the state machine, returning a completed
// token if the byte closed one.
func (l *Lexer) consume(b byte) (Token, bool) {
	for _, r := range rulesFor(l.state) {
		if !r.test(b) {
			continue
		}
		o := r.outcome
		if o.extend {
			traceScan("lexer: extend %v -> %v on %q", l.state, o.next, b)
			l.buffer = append(l.buffer, b)
			l.state = o.next
			if b == '\n' {
				l.line++
			}
			return Token{}, false
		}

		traceScan("lexer: boundary %v -> %v on %q (carry=%v)", l.state, o.next, b, o.carry)
		old, oldBuf := l.state, l.buffer
		l.state = o.next
		if o.carry {
			l.buffer = []byte{b}
		} else {
			l.buffer = nil
		}
		tok, produced := l.commit(old, oldBuf)
		if b == '\n' {
			l.line++
		}
		return tok, produced
	}

	// No rule matched: per spec.md §4.1, the concatenated buffer+byte is
	// an InvalidInput error, and the scanner enters panic mode.
	traceScan("lexer: invalid byte %q in state %v", b, l.state)
	bad := append(append([]byte{}, l.buffer...), b)
	l.Errors = append(l.Errors, newLexicalError(InvalidInput, string(bad), l.line))
	l.state = stPanicMode
	l.buffer = nil
	if b == '\n' {
		l.line++
	}
	return Token{}, false
}

// commit finalizes the buffer accumulated while in oldState, emitting a
// token, recording a lexical error, or discarding it (comment bodies),
// per the accepting-state mapping of spec.md §4.1. line is the line on
// which the buffer's first byte appeared.
func (l *Lexer) commit(oldState lexState, buf []byte) (Token, bool) {
	if len(buf) == 0 {
		return Token{}, false
	}
	line := l.line - bytes.Count(buf, []byte{'\n'})
	lexeme := string(buf)

	switch oldState {
	case stIdentifier:
		kind := ID
		if isReservedWord(lexeme) {
			kind = KEYWORD
		}
		l.Symbol.insert(lexeme)
		return Token{Kind: kind, Lexeme: lexeme, Line: line}, true
	case stNumber:
		return Token{Kind: NUM, Lexeme: lexeme, Line: line}, true
	case stSymbol, stSymbolEqual, stSymbolStar, stStartingComment:
		return Token{Kind: SYMBOL, Lexeme: lexeme, Line: line}, true
	case stInvalidNumber:
		l.Errors = append(l.Errors, newLexicalError(InvalidNumber, lexeme, line))
		return Token{}, false
	case stUnmatchedComment:
		l.Errors = append(l.Errors, newLexicalError(UnmatchedComment, lexeme, line))
		return Token{}, false
	default:
		// Comment bodies (stOngoingComment/stEndingComment/stCommentLine)
		// and empty-buffer states are silently discarded: whitespace and
		// comments are not tokens, per spec.md §4.1.
		return Token{}, false
	}
}

// finish runs a synthetic trailing newline through the state machine to
// flush any pending buffer, then reports an unclosed block comment if
// one was left open, per spec.md §4.1's end-of-input contract.
func (l *Lexer) finish() Token {
	l.eof = true
	openComment := l.state == stOngoingComment || l.state == stEndingComment
	openBuf := append([]byte{}, l.buffer...)
	openLine := l.line - bytes.Count(openBuf, []byte{'\n'})

	endLine := l.line
	tok, produced := l.consume('\n')
	if produced {
		l.pending = &tok
	}
	// The synthetic newline is not input: END (and any diagnostic hung
	// off it) reports the file's real last line.
	l.line = endLine

	if openComment {
		lexeme := truncateLexeme(strings.TrimSuffix(string(openBuf), "\n"))
		l.Errors = append(l.Errors, &Error{
			Kind:    UnclosedComment,
			Lexeme:  lexeme,
			Message: UnclosedComment.lexicalMessage(),
			Line:    openLine,
		})
	}

	if l.pending != nil {
		t := *l.pending
		l.pending = nil
		return t
	}
	return Token{Kind: END, Line: l.line}
}

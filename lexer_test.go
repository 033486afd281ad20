package clc

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scanAll(t *testing.T, src string) ([]Token, []*Error) {
	t.Helper()
	s, err := newCharSource(strings.NewReader(src))
	require.NoError(t, err)
	lex := newLexer(s)
	var toks []Token
	for {
		tok := lex.Next()
		if tok.Kind == END {
			break
		}
		toks = append(toks, tok)
	}
	return toks, lex.Errors
}

func TestLexerKeywordsAndIdentifiers(t *testing.T) {
	toks, errs := scanAll(t, "int x; if (x) return x;")
	assert.Empty(t, errs)
	require.Len(t, toks, 10)
	assert.Equal(t, KEYWORD, toks[0].Kind)
	assert.Equal(t, "int", toks[0].Lexeme)
	assert.Equal(t, ID, toks[1].Kind)
	assert.Equal(t, "x", toks[1].Lexeme)
	assert.Equal(t, KEYWORD, toks[3].Kind)
	assert.Equal(t, "if", toks[3].Lexeme)
}

func TestLexerDoubleEqual(t *testing.T) {
	toks, errs := scanAll(t, "x == 1")
	assert.Empty(t, errs)
	require.Len(t, toks, 3)
	assert.Equal(t, SYMBOL, toks[1].Kind)
	assert.Equal(t, "==", toks[1].Lexeme)
}

func TestLexerSingleEqualNotFollowedByEqual(t *testing.T) {
	toks, errs := scanAll(t, "x = 1")
	assert.Empty(t, errs)
	require.Len(t, toks, 3)
	assert.Equal(t, "=", toks[1].Lexeme)
}

func TestLexerInvalidNumberIsOneError(t *testing.T) {
	_, errs := scanAll(t, "12abc ;")
	require.Len(t, errs, 1)
	assert.Equal(t, InvalidNumber, errs[0].Kind)
	assert.Equal(t, "12abc", errs[0].Lexeme)
}

func TestLexerLineComment(t *testing.T) {
	toks, errs := scanAll(t, "int x; // trailing comment\nint y;")
	assert.Empty(t, errs)
	require.Len(t, toks, 6)
	assert.Equal(t, 2, toks[3].Line)
}

func TestLexerBlockComment(t *testing.T) {
	toks, errs := scanAll(t, "int /* skip\nthis */ x;")
	assert.Empty(t, errs)
	require.Len(t, toks, 3)
	assert.Equal(t, 2, toks[1].Line)
}

func TestLexerUnmatchedComment(t *testing.T) {
	_, errs := scanAll(t, "x */ y")
	require.Len(t, errs, 1)
	assert.Equal(t, UnmatchedComment, errs[0].Kind)
}

func TestLexerUnclosedComment(t *testing.T) {
	_, errs := scanAll(t, "int x; /* never closed")
	require.Len(t, errs, 1)
	assert.Equal(t, UnclosedComment, errs[0].Kind)
}

func TestLexerInvalidInputEntersPanicMode(t *testing.T) {
	toks, errs := scanAll(t, "x # y;")
	require.Len(t, errs, 1)
	assert.Equal(t, InvalidInput, errs[0].Kind)
	require.Len(t, toks, 3) // x, y, ;
	assert.Equal(t, "y", toks[1].Lexeme)
}

func TestLexerSymbolTablePreloadsKeywords(t *testing.T) {
	s, err := newCharSource(strings.NewReader("int main"))
	require.NoError(t, err)
	lex := newLexer(s)
	for lex.Next().Kind != END {
	}
	names := lex.Symbol.Names()
	assert.Equal(t, ReservedWords, names[:len(ReservedWords)])
	assert.Contains(t, names, "main")
}

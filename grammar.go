package clc

// grammar.go is the declarative grammar table the parser consults: the
// terminal alphabet as a bitset-indexable enum, and one grammarTable
// row per non-terminal carrying the name diagnostics spell it with and
// its precomputed FIRST and FOLLOW bitsets. The productions themselves
// are the recursive-descent functions in parser.go, one per
// non-terminal in the teacher's style; prediction and panic-mode
// recovery (Parser.predict) are driven entirely by this table.

// terminal enumerates the terminal alphabet: the token-kind markers ID
// and NUM, the end marker, the eight keywords, and the punctuators.
type terminal int

const tInvalid terminal = -1

const (
	tID terminal = iota
	tNUM
	tEOF
	tIf
	tElse
	tVoid
	tInt
	tRepeat
	tBreak
	tUntil
	tReturn
	tSemi
	tColon
	tComma
	tLBracket
	tRBracket
	tLParen
	tRParen
	tLBrace
	tRBrace
	tPlus
	tMinus
	tLess
	tStar
	tAssign
	tEqual
	tSlash
)

var keywordTerms = map[string]terminal{
	"if": tIf, "else": tElse, "void": tVoid, "int": tInt,
	"repeat": tRepeat, "break": tBreak, "until": tUntil, "return": tReturn,
}

var symbolTerms = map[string]terminal{
	";": tSemi, ":": tColon, ",": tComma, "[": tLBracket, "]": tRBracket,
	"(": tLParen, ")": tRParen, "{": tLBrace, "}": tRBrace,
	"+": tPlus, "-": tMinus, "<": tLess, "*": tStar, "=": tAssign,
	"==": tEqual, "/": tSlash,
}

func terminalOf(t Token) terminal {
	switch t.Kind {
	case ID:
		return tID
	case NUM:
		return tNUM
	case END:
		return tEOF
	case KEYWORD:
		if term, ok := keywordTerms[t.Lexeme]; ok {
			return term
		}
	case SYMBOL:
		if term, ok := symbolTerms[t.Lexeme]; ok {
			return term
		}
	}
	return tInvalid
}

// termSet is a bitset over the terminal alphabet; FIRST and FOLLOW
// membership is one mask-and-test.
type termSet uint32

func setOf(terms ...terminal) termSet {
	var s termSet
	for _, t := range terms {
		s |= 1 << uint(t)
	}
	return s
}

func (s termSet) has(t terminal) bool {
	return t != tInvalid && s&(1<<uint(t)) != 0
}

// nonTerminal indexes grammarTable.
type nonTerminal int

const (
	ntProgram nonTerminal = iota
	ntDeclarationList
	ntDeclaration
	ntParams
	ntCompoundStmt
	ntStatement
	ntExpressionStmt
	ntSelectionStmt
	ntIterationStmt
	ntReturnStmt
	ntExpression
	ntSimpleExpression
	ntAdditiveExpression
	ntTerm
	ntFactor
	ntArgs
)

var (
	firstDeclaration = setOf(tInt, tVoid)
	firstExpression  = setOf(tID, tNUM, tLParen)
	firstStatement   = firstExpression | setOf(tSemi, tLBrace, tIf, tRepeat, tReturn, tBreak)

	// A statement can be followed by the next statement or declaration,
	// the close of its block, the else/until of its enclosing construct,
	// or end-of-input (file-scope statements).
	followStatement  = firstStatement | firstDeclaration | setOf(tRBrace, tElse, tUntil, tEOF)
	followExpression = setOf(tSemi, tRParen, tRBracket, tComma)
)

// grammarTable has one row per non-terminal: the name diagnostics use,
// the FIRST set that predicts it, and the FOLLOW set where panic-mode
// recovery reports it missing instead of discarding more tokens.
var grammarTable = [...]struct {
	name   string
	first  termSet
	follow termSet
}{
	ntProgram:            {"program", firstDeclaration | firstStatement | setOf(tEOF), setOf(tEOF)},
	ntDeclarationList:    {"declaration-list", firstDeclaration | firstStatement, setOf(tEOF)},
	ntDeclaration:        {"declaration", firstDeclaration, firstDeclaration | firstStatement | setOf(tEOF)},
	ntParams:             {"params", firstDeclaration, setOf(tRParen)},
	ntCompoundStmt:       {"compound-stmt", setOf(tLBrace), followStatement},
	ntStatement:          {"statement", firstStatement, followStatement},
	ntExpressionStmt:     {"expression-stmt", firstExpression | setOf(tSemi), followStatement},
	ntSelectionStmt:      {"selection-stmt", setOf(tIf), followStatement},
	ntIterationStmt:      {"iteration-stmt", setOf(tRepeat), followStatement},
	ntReturnStmt:         {"return-stmt", setOf(tReturn), followStatement},
	ntExpression:         {"expression", firstExpression, followExpression},
	ntSimpleExpression:   {"simple-expression", firstExpression, followExpression},
	ntAdditiveExpression: {"additive-expression", firstExpression, followExpression | setOf(tLess, tEqual)},
	ntTerm:               {"term", firstExpression, followExpression | setOf(tLess, tEqual, tPlus, tMinus)},
	ntFactor:             {"factor", firstExpression, followExpression | setOf(tLess, tEqual, tPlus, tMinus, tStar)},
	ntArgs:               {"args", firstExpression, setOf(tRParen)},
}

func startsDeclaration(t Token) bool { return grammarTable[ntDeclaration].first.has(terminalOf(t)) }
func startsStatement(t Token) bool   { return grammarTable[ntStatement].first.has(terminalOf(t)) }
func startsExpression(t Token) bool  { return grammarTable[ntExpression].first.has(terminalOf(t)) }

func isTypeSpecifier(t Token) bool {
	return t.Kind == KEYWORD && (t.Lexeme == "int" || t.Lexeme == "void")
}

func isSym(t Token, lexeme string) bool { return t.Kind == SYMBOL && t.Lexeme == lexeme }
func isKw(t Token, lexeme string) bool  { return t.Kind == KEYWORD && t.Lexeme == lexeme }

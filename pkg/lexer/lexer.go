package lexer

import (
	"digitron/pkg/source"
)

// TokenType represents the type of a token.
type TokenType string

// Token represents a lexical token.
type Token struct {
	Type     TokenType
	Literal  string // The actual text of the token (lexeme)
	Line     int    // 1-based line number where the token starts
	Column   int    // 1-based column number (rune index) where the token starts
	StartPos int    // 0-based byte offset where the token starts
	EndPos   int    // 0-based byte offset after the token ends
}

// --- Token Types ---
const (
	// Special
	ILLEGAL TokenType = "ILLEGAL" // Unknown token/character
	EOF     TokenType = "EOF"     // End Of File

	// Identifiers + Literals
	IDENT  TokenType = "IDENT"  // single-letter input variable: a-z
	NUMBER TokenType = "NUMBER" // 123, 45.67

	// Operators
	PLUS     TokenType = "+"
	MINUS    TokenType = "-"
	ASTERISK TokenType = "*"
	SLASH    TokenType = "/"
	PERCENT  TokenType = "%"

	// Delimiters
	COMMA  TokenType = ","
	LPAREN TokenType = "("
	RPAREN TokenType = ")"

	// Builtin calls, introduced by the '@' sigil
	SQRT  TokenType = "SQRT"  // @sqrt
	LOAD  TokenType = "LOAD"  // @load
	STORE TokenType = "STORE" // @store
)

// builtins maps the name following the '@' sigil to its token type.
var builtins = map[string]TokenType{
	"sqrt":  SQRT,
	"load":  LOAD,
	"store": STORE,
}

// LookupBuiltin checks the builtins table for a name after '@'.
// Unknown names yield ILLEGAL.
func LookupBuiltin(name string) TokenType {
	if tokType, ok := builtins[name]; ok {
		return tokType
	}
	return ILLEGAL
}

// Lexer holds the state of the scanner.
type Lexer struct {
	src          *source.SourceFile
	input        string
	position     int  // current position in input (points to current char's byte offset)
	readPosition int  // current reading position in input (byte offset after current char)
	ch           byte // current char under examination
	line         int  // current 1-based line number
	column       int  // current 1-based column number (position of l.position on l.line)
}

// NewLexer creates a new Lexer over a bare input string.
func NewLexer(input string) *Lexer {
	return NewLexerWithSource(source.NewEvalSource(input))
}

// NewLexerWithSource creates a new Lexer over a SourceFile so that tokens can
// be tied back to it for error display.
func NewLexerWithSource(src *source.SourceFile) *Lexer {
	l := &Lexer{src: src, input: src.Content, line: 1, column: 1}
	l.readChar() // Initialize l.ch, l.position, l.readPosition
	return l
}

// GetSource returns the source file this lexer reads from.
func (l *Lexer) GetSource() *source.SourceFile {
	return l.src
}

// readChar gives us the next character and advances our position in the input string.
// It also updates the line and column count.
func (l *Lexer) readChar() {
	// Before advancing, check if the current character was a newline
	if l.ch == '\n' {
		l.line++
		l.column = 0 // Reset column, it will be incremented below
	}

	if l.readPosition >= len(l.input) {
		l.ch = 0 // 0 is ASCII for NUL, signifies EOF
	} else {
		l.ch = l.input[l.readPosition]
	}
	l.position = l.readPosition
	l.readPosition++
	l.column++ // Increment column for the character now at l.position
}

// peekChar looks ahead in the input without consuming the character.
func (l *Lexer) peekChar() byte {
	if l.readPosition >= len(l.input) {
		return 0
	}
	return l.input[l.readPosition]
}

// skipWhitespace consumes whitespace characters (space, tab, newline, carriage return).
func (l *Lexer) skipWhitespace() {
	for l.ch == ' ' || l.ch == '\t' || l.ch == '\n' || l.ch == '\r' {
		l.readChar()
	}
}

// NextToken scans the input and returns the next token.
func (l *Lexer) NextToken() Token {
	var tok Token

	l.skipWhitespace()

	// Capture token start position *after* skipping whitespace
	startLine := l.line
	startCol := l.column
	startPos := l.position

	switch l.ch {
	case '+':
		tok = l.singleCharToken(PLUS, startLine, startCol, startPos)
	case '-':
		tok = l.singleCharToken(MINUS, startLine, startCol, startPos)
	case '*':
		tok = l.singleCharToken(ASTERISK, startLine, startCol, startPos)
	case '/':
		tok = l.singleCharToken(SLASH, startLine, startCol, startPos)
	case '%':
		tok = l.singleCharToken(PERCENT, startLine, startCol, startPos)
	case ',':
		tok = l.singleCharToken(COMMA, startLine, startCol, startPos)
	case '(':
		tok = l.singleCharToken(LPAREN, startLine, startCol, startPos)
	case ')':
		tok = l.singleCharToken(RPAREN, startLine, startCol, startPos)
	case '@':
		l.readChar() // Consume '@'
		name := l.readName()
		literal := l.input[startPos:l.position]
		tok = Token{Type: LookupBuiltin(name), Literal: literal, Line: startLine, Column: startCol, StartPos: startPos, EndPos: l.position}
		return tok // readName already advanced past the name
	case 0:
		tok = Token{Type: EOF, Literal: "", Line: startLine, Column: startCol, StartPos: startPos, EndPos: startPos}
	default:
		if isLetter(l.ch) {
			// Identifiers are single lowercase letters. A run of letters that
			// is not a lone a-z letter is not a valid identifier here.
			name := l.readName()
			tokType := IDENT
			if len(name) != 1 || name[0] < 'a' || name[0] > 'z' {
				tokType = ILLEGAL
			}
			return Token{Type: tokType, Literal: name, Line: startLine, Column: startCol, StartPos: startPos, EndPos: l.position}
		} else if isDigit(l.ch) {
			literal := l.readNumber()
			return Token{Type: NUMBER, Literal: literal, Line: startLine, Column: startCol, StartPos: startPos, EndPos: l.position}
		}
		tok = Token{Type: ILLEGAL, Literal: string(l.ch), Line: startLine, Column: startCol, StartPos: startPos, EndPos: l.position + 1}
		l.readChar()
		return tok
	}

	return tok
}

// singleCharToken builds a token for the current character and advances past it.
func (l *Lexer) singleCharToken(t TokenType, line, col, pos int) Token {
	literal := string(l.ch)
	l.readChar()
	return Token{Type: t, Literal: literal, Line: line, Column: col, StartPos: pos, EndPos: l.position}
}

// readName reads a run of letters (used for identifiers and builtin names).
func (l *Lexer) readName() string {
	startPos := l.position
	for isLetter(l.ch) {
		l.readChar()
	}
	return l.input[startPos:l.position]
}

// readNumber reads a decimal numeric literal, with an optional fractional part.
func (l *Lexer) readNumber() string {
	startPos := l.position
	for isDigit(l.ch) {
		l.readChar()
	}
	if l.ch == '.' && isDigit(l.peekChar()) {
		l.readChar() // Consume '.'
		for isDigit(l.ch) {
			l.readChar()
		}
	}
	return l.input[startPos:l.position]
}

func isLetter(ch byte) bool {
	return 'a' <= ch && ch <= 'z' || 'A' <= ch && ch <= 'Z'
}

func isDigit(ch byte) bool {
	return '0' <= ch && ch <= '9'
}

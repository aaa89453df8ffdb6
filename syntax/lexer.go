package syntax

import (
	"bufio"
	"io"
	"strings"

	"sablec/report"
)

// Lexer is responsible for tokenizing a textual MIR file.  Newlines are
// significant: instructions are newline-terminated, so the lexer emits
// newline tokens rather than skipping them.
type Lexer struct {
	file    *bufio.Reader
	tokBuff *strings.Builder

	line, col           int
	startLine, startCol int
}

// NewLexer creates a new lexer for the given MIR file.
func NewLexer(file *bufio.Reader) *Lexer {
	return &Lexer{
		file:    file,
		tokBuff: &strings.Builder{},
	}
}

// NextToken retrieves the next token from the input file.  If the file has
// ended, this will be an EOF token.
func (l *Lexer) NextToken() (*Token, error) {
	for {
		c, err := l.peek()
		if err != nil {
			return nil, err
		} else if c == -1 {
			break
		}

		switch c {
		case '\n':
			l.mark()
			l.skip()
			return l.makeToken(TOK_NEWLINE), nil
		case '\t', ' ', '\r', '\v', '\f':
			l.skip()
		case ';':
			// Comments run to the end of the line; the newline itself is
			// still emitted as a token.
			for {
				c, err = l.peek()
				if err != nil {
					return nil, err
				}

				if c == -1 || c == '\n' {
					break
				}

				l.skip()
			}
		case '@':
			return l.lexSigilRef(TOK_GLOBALREF)
		case '%':
			return l.lexSigilRef(TOK_PARAMREF)
		case '$':
			return l.lexLocalRef()
		case '"':
			return l.lexStringLit()
		case '(':
			return l.lexPunct(TOK_LPAREN)
		case ')':
			return l.lexPunct(TOK_RPAREN)
		case '{':
			return l.lexPunct(TOK_LBRACE)
		case '}':
			return l.lexPunct(TOK_RBRACE)
		case ':':
			return l.lexPunct(TOK_COLON)
		case ',':
			return l.lexPunct(TOK_COMMA)
		case '=':
			return l.lexPunct(TOK_ASSIGN)
		case '-':
			return l.lexNumericLit()
		default:
			if isDecimalDigit(c) {
				return l.lexNumericLit()
			} else if isFirstIdentChar(c) {
				return l.lexIdentOrKeyword()
			}

			return nil, l.lexError("unexpected character: `%c`", c)
		}
	}

	l.mark()
	return &Token{Kind: TOK_EOF, Span: l.span()}, nil
}

// -----------------------------------------------------------------------------

// lexPunct lexes a single-character punctuation token of the given kind.
func (l *Lexer) lexPunct(kind int) (*Token, error) {
	l.mark()

	if err := l.eat(); err != nil {
		return nil, err
	}

	return l.makeToken(kind), nil
}

// lexSigilRef lexes a `@name` or `%name` reference token.  The sigil is
// trimmed from the token value.
func (l *Lexer) lexSigilRef(kind int) (*Token, error) {
	l.mark()
	l.skip()

	c, err := l.peek()
	if err != nil {
		return nil, err
	}

	if c == -1 || !isFirstIdentChar(c) {
		return nil, l.lexError("expected an identifier after reference sigil")
	}

	for c != -1 && isIdentChar(c) {
		if err = l.eat(); err != nil {
			return nil, err
		}

		if c, err = l.peek(); err != nil {
			return nil, err
		}
	}

	return l.makeToken(kind), nil
}

// lexLocalRef lexes a `$N` SSA value reference token.  The sigil is trimmed
// from the token value.
func (l *Lexer) lexLocalRef() (*Token, error) {
	l.mark()
	l.skip()

	c, err := l.peek()
	if err != nil {
		return nil, err
	}

	if c == -1 || !isDecimalDigit(c) {
		return nil, l.lexError("expected a value number after `$`")
	}

	for c != -1 && isDecimalDigit(c) {
		if err = l.eat(); err != nil {
			return nil, err
		}

		if c, err = l.peek(); err != nil {
			return nil, err
		}
	}

	return l.makeToken(TOK_LOCALREF), nil
}

// lexNumericLit lexes an integer or floating-point literal, including an
// optional leading minus sign.
func (l *Lexer) lexNumericLit() (*Token, error) {
	l.mark()

	c, err := l.peek()
	if err != nil {
		return nil, err
	}

	if c == '-' {
		if err = l.eat(); err != nil {
			return nil, err
		}

		if c, err = l.peek(); err != nil {
			return nil, err
		}

		if c == -1 || !isDecimalDigit(c) {
			return nil, l.lexError("expected a digit after `-`")
		}
	}

	isFloat := false
	for c != -1 && (isDecimalDigit(c) || c == '.' || c == 'e' || c == '+' || c == '-') {
		if c == '.' || c == 'e' {
			isFloat = true
		} else if (c == '+' || c == '-') && !isFloat {
			// A sign is only part of the literal inside an exponent.
			break
		}

		if err = l.eat(); err != nil {
			return nil, err
		}

		if c, err = l.peek(); err != nil {
			return nil, err
		}
	}

	if isFloat {
		return l.makeToken(TOK_FLOATLIT), nil
	}

	return l.makeToken(TOK_INTLIT), nil
}

// lexStringLit lexes a double-quoted string literal, resolving the escape
// sequences `\n`, `\t`, `\\`, and `\"`.
func (l *Lexer) lexStringLit() (*Token, error) {
	l.mark()
	l.skip()

	for {
		c, err := l.peek()
		if err != nil {
			return nil, err
		}

		switch c {
		case -1, '\n':
			return nil, l.lexError("unterminated string literal")
		case '"':
			l.skip()
			return l.makeToken(TOK_STRINGLIT), nil
		case '\\':
			l.skip()

			if c, err = l.peek(); err != nil {
				return nil, err
			}

			switch c {
			case 'n':
				l.tokBuff.WriteRune('\n')
			case 't':
				l.tokBuff.WriteRune('\t')
			case '\\':
				l.tokBuff.WriteRune('\\')
			case '"':
				l.tokBuff.WriteRune('"')
			default:
				return nil, l.lexError("unknown escape sequence: `\\%c`", c)
			}

			l.skip()
		default:
			if err = l.eat(); err != nil {
				return nil, err
			}
		}
	}
}

// lexIdentOrKeyword lexes an identifier and promotes it to a keyword token if
// it matches one.
func (l *Lexer) lexIdentOrKeyword() (*Token, error) {
	l.mark()

	c, err := l.peek()
	if err != nil {
		return nil, err
	}

	for c != -1 && isIdentChar(c) {
		if err = l.eat(); err != nil {
			return nil, err
		}

		if c, err = l.peek(); err != nil {
			return nil, err
		}
	}

	tok := l.makeToken(TOK_IDENT)
	if kind, ok := keywords[tok.Value]; ok {
		tok.Kind = kind
	}

	return tok, nil
}

// -----------------------------------------------------------------------------

// peek returns the next character of the file without consuming it.  A return
// value of -1 indicates the end of the file.
func (l *Lexer) peek() (rune, error) {
	c, _, err := l.file.ReadRune()
	if err != nil {
		if err == io.EOF {
			return -1, nil
		}

		return 0, err
	}

	if err = l.file.UnreadRune(); err != nil {
		return 0, err
	}

	return c, nil
}

// skip consumes the next character of the file without adding it to the token
// buffer.
func (l *Lexer) skip() {
	c, _, err := l.file.ReadRune()
	if err != nil {
		return
	}

	l.updatePos(c)
}

// eat consumes the next character of the file into the token buffer.
func (l *Lexer) eat() error {
	c, _, err := l.file.ReadRune()
	if err != nil {
		return err
	}

	l.tokBuff.WriteRune(c)
	l.updatePos(c)
	return nil
}

// updatePos updates the lexer's position over the character c.
func (l *Lexer) updatePos(c rune) {
	if c == '\n' {
		l.line++
		l.col = 0
	} else {
		l.col++
	}
}

// mark records the current position as the start of the token being built.
func (l *Lexer) mark() {
	l.startLine, l.startCol = l.line, l.col
}

// span returns the text span from the token start mark to the current
// position.
func (l *Lexer) span() *report.TextSpan {
	return &report.TextSpan{
		StartLine: l.startLine,
		StartCol:  l.startCol,
		EndLine:   l.line,
		EndCol:    l.col,
	}
}

// makeToken builds a token of the given kind from the token buffer and resets
// the buffer.
func (l *Lexer) makeToken(kind int) *Token {
	tok := &Token{Kind: kind, Value: l.tokBuff.String(), Span: l.span()}
	l.tokBuff.Reset()
	return tok
}

// lexError creates a compile error at the span of the token being built.
func (l *Lexer) lexError(msg string, args ...interface{}) error {
	return report.Raise(l.span(), msg, args...)
}

// -----------------------------------------------------------------------------

func isDecimalDigit(c rune) bool {
	return '0' <= c && c <= '9'
}

func isFirstIdentChar(c rune) bool {
	return 'a' <= c && c <= 'z' || 'A' <= c && c <= 'Z' || c == '_'
}

func isIdentChar(c rune) bool {
	return isFirstIdentChar(c) || isDecimalDigit(c) || c == '.'
}

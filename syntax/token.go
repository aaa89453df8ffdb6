package syntax

import "sablec/report"

// Token represents a single lexical token of a textual MIR file.
type Token struct {
	// The kind of the token.  This must be one of the enumerated token kinds.
	Kind int

	// The string value of the token.  This may not directly correspond to the
	// source text: eg. string tokens have their quotes trimmed and escape
	// sequences resolved, and reference tokens have their sigils trimmed.
	Value string

	// The text span over which the token exists.
	Span *report.TextSpan
}

// Enumeration of token kinds.
const (
	TOK_BUNDLE = iota
	TOK_GLOBAL
	TOK_FUNC
	TOK_CONST
	TOK_GLOBALINIT

	TOK_IDENT     // bare identifier: mnemonics, labels, type names
	TOK_GLOBALREF // @name
	TOK_PARAMREF  // %name
	TOK_LOCALREF  // $N

	TOK_INTLIT
	TOK_FLOATLIT
	TOK_STRINGLIT

	TOK_LPAREN
	TOK_RPAREN
	TOK_LBRACE
	TOK_RBRACE
	TOK_COLON
	TOK_COMMA
	TOK_ASSIGN

	TOK_NEWLINE
	TOK_EOF
)

// keywords maps keyword strings to their token kinds.
var keywords = map[string]int{
	"bundle":     TOK_BUNDLE,
	"global":     TOK_GLOBAL,
	"func":       TOK_FUNC,
	"const":      TOK_CONST,
	"globalinit": TOK_GLOBALINIT,
}

package syntax_test

import (
	"bufio"
	"strings"
	"testing"

	"sablec/syntax"
)

func lexAll(t *testing.T, src string) []*syntax.Token {
	t.Helper()

	l := syntax.NewLexer(bufio.NewReader(strings.NewReader(src)))

	var toks []*syntax.Token
	for {
		tok, err := l.NextToken()
		if err != nil {
			t.Fatalf("unexpected lex error: %s", err)
		}

		toks = append(toks, tok)
		if tok.Kind == syntax.TOK_EOF {
			return toks
		}
	}
}

func TestLexInstructionLine(t *testing.T) {
	toks := lexAll(t, "  $2 = call @f (%x, $0)\n")

	wantKinds := []int{
		syntax.TOK_LOCALREF, syntax.TOK_ASSIGN, syntax.TOK_IDENT,
		syntax.TOK_GLOBALREF, syntax.TOK_LPAREN, syntax.TOK_PARAMREF,
		syntax.TOK_COMMA, syntax.TOK_LOCALREF, syntax.TOK_RPAREN,
		syntax.TOK_NEWLINE, syntax.TOK_EOF,
	}

	if len(toks) != len(wantKinds) {
		t.Fatalf("expected %d tokens, got %d", len(wantKinds), len(toks))
	}

	for i, want := range wantKinds {
		if toks[i].Kind != want {
			t.Errorf("token %d: expected kind %d, got %d (`%s`)", i, want, toks[i].Kind, toks[i].Value)
		}
	}

	// Sigils are trimmed from reference token values.
	if toks[0].Value != "2" || toks[3].Value != "f" || toks[5].Value != "x" {
		t.Error("expected sigils to be trimmed from reference values")
	}
}

func TestLexStringEscapes(t *testing.T) {
	toks := lexAll(t, `$0 = str "a\n\t\\\"b"`+"\n")

	if toks[2].Kind != syntax.TOK_STRINGLIT {
		t.Fatalf("expected a string literal, got kind %d", toks[2].Kind)
	}

	if toks[2].Value != "a\n\t\\\"b" {
		t.Errorf("unexpected string value: %q", toks[2].Value)
	}
}

func TestLexCommentsAndKeywords(t *testing.T) {
	toks := lexAll(t, "bundle main ; trailing comment\n; full line comment\nglobal @g const\n")

	wantKinds := []int{
		syntax.TOK_BUNDLE, syntax.TOK_IDENT, syntax.TOK_NEWLINE,
		syntax.TOK_NEWLINE,
		syntax.TOK_GLOBAL, syntax.TOK_GLOBALREF, syntax.TOK_CONST, syntax.TOK_NEWLINE,
		syntax.TOK_EOF,
	}

	if len(toks) != len(wantKinds) {
		t.Fatalf("expected %d tokens, got %d", len(wantKinds), len(toks))
	}

	for i, want := range wantKinds {
		if toks[i].Kind != want {
			t.Errorf("token %d: expected kind %d, got %d (`%s`)", i, want, toks[i].Kind, toks[i].Value)
		}
	}
}

func TestLexNumericLiterals(t *testing.T) {
	toks := lexAll(t, "$0 = int -42\n$1 = flt 3.5\n$2 = flt 1e+10\n")

	lits := []*syntax.Token{toks[2], toks[6], toks[10]}

	if lits[0].Kind != syntax.TOK_INTLIT || lits[0].Value != "-42" {
		t.Errorf("expected integer literal -42, got %q", lits[0].Value)
	}

	if lits[1].Kind != syntax.TOK_FLOATLIT || lits[1].Value != "3.5" {
		t.Errorf("expected float literal 3.5, got %q", lits[1].Value)
	}

	if lits[2].Kind != syntax.TOK_FLOATLIT || lits[2].Value != "1e+10" {
		t.Errorf("expected float literal 1e+10, got %q", lits[2].Value)
	}
}

func TestTokenSpans(t *testing.T) {
	toks := lexAll(t, "bundle main\nglobal @g\n")

	// `main` sits on line 0 after `bundle `.
	name := toks[1]
	if name.Span.StartLine != 0 || name.Span.StartCol != 7 || name.Span.EndCol != 11 {
		t.Errorf("unexpected span for `main`: %+v", name.Span)
	}

	// `@g` sits on line 1.
	gref := toks[4]
	if gref.Span.StartLine != 1 || gref.Span.StartCol != 7 {
		t.Errorf("unexpected span for `@g`: %+v", gref.Span)
	}
}

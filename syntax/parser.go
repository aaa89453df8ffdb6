// Package syntax implements the reader for textual Sable MIR bundles.  The
// parser is a recursive descent parser over a newline-terminated instruction
// grammar: all parsing functions assume they begin with the parser centered
// on the first token of their production and consume all tokens of their
// production, leaving the parser on the next token.
package syntax

import (
	"bufio"
	"math/big"
	"strconv"

	"sablec/common"
	"sablec/mir"
	"sablec/report"
)

// Parser is the parser for a single textual MIR file.  It produces one MIR
// bundle per file.  Forward references to globals and functions are resolved
// by creating their objects on first reference and validating at the end of
// the file that every referenced object was eventually declared.
type Parser struct {
	// absPath is the absolute path of the file being parsed.
	absPath string

	// reprPath is the path of the file as displayed to the user.
	reprPath string

	// lexer is the Lexer this parser is using to lex the MIR file.
	lexer *Lexer

	// tok is the current token the parser is positioned on.
	tok *Token

	// prevSpan is the span of the most recently consumed token.
	prevSpan *report.TextSpan

	// bundle is the bundle being built.
	bundle *mir.Bundle

	globals     map[string]*globalEntry
	globalOrder []string

	funcs     map[string]*funcEntry
	funcOrder []string

	// locals maps SSA value numbers to their defining instructions within the
	// current function or global initializer block.
	locals map[string]*mir.Instruction

	// params maps parameter names to their values within the current
	// function.
	params map[string]*mir.Param
}

// globalEntry tracks a referenced global and whether it has been declared.
type globalEntry struct {
	g        *mir.Global
	declared bool
	firstRef *report.TextSpan
}

// funcEntry tracks a referenced function and whether it has been declared.
type funcEntry struct {
	fn       *mir.Function
	declared bool
	firstRef *report.TextSpan
}

// NewParser creates a new parser for the given MIR file and file reader.
func NewParser(absPath, reprPath string, r *bufio.Reader) *Parser {
	return &Parser{
		absPath:  absPath,
		reprPath: reprPath,
		lexer:    NewLexer(r),
		globals:  make(map[string]*globalEntry),
		funcs:    make(map[string]*funcEntry),
	}
}

// Parse parses the MIR file into a bundle.  All syntax errors are reported
// through the global reporter; the returned flag indicates whether parsing
// succeeded.
func (p *Parser) Parse() (bundle *mir.Bundle, ok bool) {
	defer func() {
		if x := recover(); x != nil {
			if cerr, isCErr := x.(*report.LocalCompileError); isCErr {
				report.ReportCompileError(p.absPath, p.reprPath, cerr.Span, cerr.Message)
				bundle, ok = nil, false
			} else if serr, isErr := x.(error); isErr {
				report.ReportStdError(p.reprPath, serr)
				bundle, ok = nil, false
			} else {
				panic(x)
			}
		}
	}()

	p.next()
	p.parseFile()
	p.finalize()

	return p.bundle, true
}

// -----------------------------------------------------------------------------

// parseFile parses the whole MIR file:
//
//	file := 'bundle' IDENT NEWLINE {global | func | NEWLINE}
func (p *Parser) parseFile() {
	p.skipNewlines()

	p.expect(TOK_BUNDLE)
	nameTok := p.expect(TOK_IDENT)
	p.bundle = &mir.Bundle{Name: nameTok.Value}
	p.expectNewline()

	for !p.got(TOK_EOF) {
		switch p.tok.Kind {
		case TOK_NEWLINE:
			p.next()
		case TOK_GLOBAL:
			p.parseGlobal()
		case TOK_FUNC:
			p.parseFunc()
		default:
			p.reject()
		}
	}
}

// parseGlobal parses a global declaration with an optional static initializer
// block:
//
//	global := 'global' GLOBALREF [':' IDENT] ['const'] [init_block] NEWLINE
//	init_block := '{' NEWLINE {instr} '}'
func (p *Parser) parseGlobal() {
	p.expect(TOK_GLOBAL)
	nameTok := p.expect(TOK_GLOBALREF)

	g := p.getGlobal(nameTok)
	entry := p.globals[nameTok.Value]
	if entry.declared {
		p.error(nameTok.Span, "multiple globals named `@%s`", nameTok.Value)
	}

	entry.declared = true
	p.bundle.Globals = append(p.bundle.Globals, g)

	g.Sym = p.parseSymSuffix(nameTok.Value, nameTok.Span, common.DefGlobal)

	if p.got(TOK_LBRACE) {
		p.next()
		p.expectNewline()

		p.locals = make(map[string]*mir.Instruction)
		p.params = nil

		for !p.got(TOK_RBRACE) {
			if p.got(TOK_NEWLINE) {
				p.next()
				continue
			}

			g.InitInstrs = append(g.InitInstrs, p.parseInstr())
		}

		p.next()

		if init := g.StaticInit(); init != nil && !mir.HasResult(init.OpCode) {
			p.error(nameTok.Span, "static initializer of `@%s` must end with a value-producing instruction", nameTok.Value)
		}
	}

	p.expectNewline()
}

// parseFunc parses a function definition:
//
//	func := 'func' GLOBALREF '(' [param {',' param}] ')' ['globalinit' GLOBALREF] body
//	param := PARAMREF [':' IDENT] ['const']
//	body := '{' NEWLINE {label | instr} '}'
//	label := IDENT ':' NEWLINE
func (p *Parser) parseFunc() {
	p.expect(TOK_FUNC)
	nameTok := p.expect(TOK_GLOBALREF)

	fn := p.getFunc(nameTok)
	entry := p.funcs[nameTok.Value]
	if entry.declared {
		p.error(nameTok.Span, "multiple functions named `@%s`", nameTok.Value)
	}

	entry.declared = true
	p.bundle.Functions = append(p.bundle.Functions, fn)

	fn.Sym = &common.Symbol{
		Name:    nameTok.Value,
		DefSpan: nameTok.Span,
		DefKind: common.DefFunc,
	}

	p.locals = make(map[string]*mir.Instruction)
	p.params = make(map[string]*mir.Param)

	p.expect(TOK_LPAREN)

	for !p.got(TOK_RPAREN) {
		if len(fn.Params) > 0 {
			p.expect(TOK_COMMA)
		}

		paramTok := p.expect(TOK_PARAMREF)
		if _, defined := p.params[paramTok.Value]; defined {
			p.error(paramTok.Span, "multiple parameters named `%%%s`", paramTok.Value)
		}

		param := &mir.Param{
			Name:  paramTok.Value,
			Index: len(fn.Params),
			Sym:   p.parseSymSuffix(paramTok.Value, paramTok.Span, common.DefParam),
		}

		fn.Params = append(fn.Params, param)
		p.params[paramTok.Value] = param
	}

	p.next()

	if p.got(TOK_GLOBALINIT) {
		p.next()
		fn.GlobalInitFor = p.getGlobal(p.expect(TOK_GLOBALREF))
	}

	p.expect(TOK_LBRACE)
	p.expectNewline()

	var block *mir.Block
	for !p.got(TOK_RBRACE) {
		switch {
		case p.got(TOK_NEWLINE):
			p.next()
		case p.got(TOK_IDENT) && !isStmtMnemonic(p.tok.Value):
			labelTok := p.tok
			p.next()
			p.expect(TOK_COLON)
			p.expectNewline()

			block = &mir.Block{Label: labelTok.Value}
			fn.Blocks = append(fn.Blocks, block)
		default:
			if block == nil {
				p.error(p.tok.Span, "instruction outside of a basic block")
			}

			block.Instrs = append(block.Instrs, p.parseInstr())
		}
	}

	p.next()
	p.expectNewline()
}

// -----------------------------------------------------------------------------

// stmtMnemonics is the set of mnemonics that begin result-less instructions.
// Block labels may not use these names.
var stmtMnemonics = map[string]struct{}{
	"store":  {},
	"bind":   {},
	"once":   {},
	"ret":    {},
	"br":     {},
	"condbr": {},
}

func isStmtMnemonic(name string) bool {
	_, ok := stmtMnemonics[name]
	return ok
}

// parseInstr parses a single newline-terminated instruction:
//
//	instr := LOCALREF '=' op NEWLINE | stmt NEWLINE
func (p *Parser) parseInstr() *mir.Instruction {
	startSpan := p.tok.Span

	var instr *mir.Instruction
	if p.got(TOK_LOCALREF) {
		idTok := p.tok
		p.next()
		p.expect(TOK_ASSIGN)

		instr = p.parseOp()

		id, err := strconv.Atoi(idTok.Value)
		if err != nil {
			p.error(idTok.Span, "invalid value number: `$%s`", idTok.Value)
		}

		if _, defined := p.locals[idTok.Value]; defined {
			p.error(idTok.Span, "multiple definitions of value `$%s`", idTok.Value)
		}

		instr.ID = id
		p.locals[idTok.Value] = instr
	} else {
		instr = p.parseStmt()
		instr.ID = -1
	}

	instr.Span = report.NewSpanOver(startSpan, p.prevSpan)
	p.expectNewline()
	return instr
}

// parseOp parses the value-producing instruction forms:
//
//	op := 'int' INTLIT
//	    | 'flt' (FLOATLIT | INTLIT)
//	    | 'str' STRINGLIT
//	    | 'struct' '(' [val {',' val}] ')'
//	    | builtin val {',' val}
//	    | 'call' GLOBALREF '(' [val {',' val}] ')'
//	    | 'global' GLOBALREF
//	    | 'load' val
func (p *Parser) parseOp() *mir.Instruction {
	// `global` is both a keyword and a mnemonic.
	if p.got(TOK_GLOBAL) {
		p.next()
		return &mir.Instruction{OpCode: mir.OpGlobalAddr, Global: p.getGlobal(p.expect(TOK_GLOBALREF))}
	}

	mnemonicTok := p.expect(TOK_IDENT)

	switch mnemonicTok.Value {
	case "int":
		litTok := p.expect(TOK_INTLIT)
		x, ok := new(big.Int).SetString(litTok.Value, 10)
		if !ok {
			p.error(litTok.Span, "invalid integer literal: `%s`", litTok.Value)
		}

		return &mir.Instruction{OpCode: mir.OpIntLit, IntVal: x}
	case "flt":
		if !p.gotOneOf(TOK_FLOATLIT, TOK_INTLIT) {
			p.reject()
		}

		litTok := p.tok
		p.next()

		x, _, err := big.ParseFloat(litTok.Value, 10, 0, big.ToNearestEven)
		if err != nil {
			p.error(litTok.Span, "invalid float literal: `%s`", litTok.Value)
		}

		return &mir.Instruction{OpCode: mir.OpFloatLit, FloatVal: x}
	case "str":
		litTok := p.expect(TOK_STRINGLIT)
		return &mir.Instruction{OpCode: mir.OpStrLit, StrVal: litTok.Value}
	case "struct":
		operands, _ := p.parseParenValues()
		return &mir.Instruction{OpCode: mir.OpStructInit, Operands: operands}
	case "call":
		callee := p.getFunc(p.expect(TOK_GLOBALREF))
		args, argSpans := p.parseParenValues()
		return &mir.Instruction{OpCode: mir.OpCall, Callee: callee, Operands: args, ArgSpans: argSpans}
	case "load":
		addr, _ := p.parseValue()
		return &mir.Instruction{OpCode: mir.OpLoad, Operands: []mir.Value{addr}}
	default:
		if opCode, ok := mir.BuiltinTable[mnemonicTok.Value]; ok {
			return &mir.Instruction{OpCode: opCode, Operands: p.parseValueList()}
		}

		p.error(mnemonicTok.Span, "unknown instruction: `%s`", mnemonicTok.Value)
		return nil
	}
}

// parseStmt parses the result-less instruction forms:
//
//	stmt := 'store' val ',' val
//	      | 'bind' val ',' PARAMREF [':' IDENT] ['const']
//	      | 'once' GLOBALREF
//	      | 'ret' [val]
//	      | 'br' IDENT
//	      | 'condbr' val ',' IDENT ',' IDENT
func (p *Parser) parseStmt() *mir.Instruction {
	mnemonicTok := p.expect(TOK_IDENT)

	switch mnemonicTok.Value {
	case "store":
		val, _ := p.parseValue()
		p.expect(TOK_COMMA)
		addr, _ := p.parseValue()
		return &mir.Instruction{OpCode: mir.OpStore, Operands: []mir.Value{val, addr}}
	case "bind":
		val, _ := p.parseValue()
		p.expect(TOK_COMMA)

		declTok := p.expect(TOK_PARAMREF)
		sym := p.parseSymSuffix(declTok.Value, declTok.Span, common.DefLocal)
		return &mir.Instruction{OpCode: mir.OpBind, Operands: []mir.Value{val}, Sym: sym}
	case "once":
		return &mir.Instruction{OpCode: mir.OpOnce, Callee: p.getFunc(p.expect(TOK_GLOBALREF))}
	case "ret":
		if p.gotOneOf(TOK_LOCALREF, TOK_PARAMREF) {
			val, _ := p.parseValue()
			return &mir.Instruction{OpCode: mir.OpRet, Operands: []mir.Value{val}}
		}

		return &mir.Instruction{OpCode: mir.OpRet}
	case "br":
		labelTok := p.expect(TOK_IDENT)
		return &mir.Instruction{OpCode: mir.OpBr, Labels: []string{labelTok.Value}}
	case "condbr":
		cond, _ := p.parseValue()
		p.expect(TOK_COMMA)
		ifTok := p.expect(TOK_IDENT)
		p.expect(TOK_COMMA)
		elseTok := p.expect(TOK_IDENT)
		return &mir.Instruction{OpCode: mir.OpCondBr, Operands: []mir.Value{cond}, Labels: []string{ifTok.Value, elseTok.Value}}
	default:
		p.error(mnemonicTok.Span, "unknown instruction: `%s`", mnemonicTok.Value)
		return nil
	}
}

// parseValue parses a single value reference and resolves it within the
// current scope.  It returns the value and the span of its reference token.
func (p *Parser) parseValue() (mir.Value, *report.TextSpan) {
	switch p.tok.Kind {
	case TOK_LOCALREF:
		refTok := p.tok
		p.next()

		v, ok := p.locals[refTok.Value]
		if !ok {
			p.error(refTok.Span, "use of undefined value `$%s`", refTok.Value)
		}

		return v, refTok.Span
	case TOK_PARAMREF:
		refTok := p.tok
		p.next()

		param, ok := p.params[refTok.Value]
		if !ok {
			p.error(refTok.Span, "use of undefined parameter `%%%s`", refTok.Value)
		}

		return param, refTok.Span
	default:
		p.reject()
		return nil, nil
	}
}

// parseValueList parses a comma-separated list of one or more values.
func (p *Parser) parseValueList() []mir.Value {
	val, _ := p.parseValue()
	values := []mir.Value{val}

	for p.got(TOK_COMMA) {
		p.next()
		val, _ = p.parseValue()
		values = append(values, val)
	}

	return values
}

// parseParenValues parses a parenthesized, possibly empty, comma-separated
// value list, also returning the spans of the individual value references.
func (p *Parser) parseParenValues() ([]mir.Value, []*report.TextSpan) {
	p.expect(TOK_LPAREN)

	var values []mir.Value
	var spans []*report.TextSpan

	for !p.got(TOK_RPAREN) {
		if len(values) > 0 {
			p.expect(TOK_COMMA)
		}

		val, span := p.parseValue()
		values = append(values, val)
		spans = append(spans, span)
	}

	p.next()
	return values, spans
}

// parseSymSuffix parses the optional `: Type` and `const` markers following a
// declared name and builds the declaration symbol.
func (p *Parser) parseSymSuffix(name string, span *report.TextSpan, defKind int) *common.Symbol {
	sym := &common.Symbol{Name: name, DefSpan: span, DefKind: defKind}

	if p.got(TOK_COLON) {
		p.next()
		sym.TypeRepr = p.expect(TOK_IDENT).Value
	}

	if p.got(TOK_CONST) {
		p.next()
		sym.Constant = true
	}

	return sym
}

// -----------------------------------------------------------------------------

// getGlobal returns the global with the given reference token's name,
// creating it on first reference.
func (p *Parser) getGlobal(tok *Token) *mir.Global {
	if entry, ok := p.globals[tok.Value]; ok {
		return entry.g
	}

	entry := &globalEntry{g: &mir.Global{Name: tok.Value}, firstRef: tok.Span}
	p.globals[tok.Value] = entry
	p.globalOrder = append(p.globalOrder, tok.Value)
	return entry.g
}

// getFunc returns the function with the given reference token's name,
// creating it on first reference.
func (p *Parser) getFunc(tok *Token) *mir.Function {
	if entry, ok := p.funcs[tok.Value]; ok {
		return entry.fn
	}

	entry := &funcEntry{fn: &mir.Function{Name: tok.Value}, firstRef: tok.Span}
	p.funcs[tok.Value] = entry
	p.funcOrder = append(p.funcOrder, tok.Value)
	return entry.fn
}

// finalize validates that every referenced global and function was declared
// by the end of the file.
func (p *Parser) finalize() {
	for _, name := range p.globalOrder {
		if entry := p.globals[name]; !entry.declared {
			p.error(entry.firstRef, "undefined global: `@%s`", name)
		}
	}

	for _, name := range p.funcOrder {
		if entry := p.funcs[name]; !entry.declared {
			p.error(entry.firstRef, "undefined function: `@%s`", name)
		}
	}
}

// -----------------------------------------------------------------------------

// next moves the parser forward one token.
func (p *Parser) next() {
	if p.tok != nil {
		p.prevSpan = p.tok.Span
	}

	tok, err := p.lexer.NextToken()
	if err != nil {
		panic(err)
	}

	p.tok = tok
}

// got returns true if the parser is on a token of the given kind.
func (p *Parser) got(kind int) bool {
	return p.tok.Kind == kind
}

// gotOneOf returns true if the parser's current token kind is one of the
// given kinds.
func (p *Parser) gotOneOf(kinds ...int) bool {
	for _, kind := range kinds {
		if p.tok.Kind == kind {
			return true
		}
	}

	return false
}

// expect asserts that the parser is on a token of the given kind, rejecting
// the token if not, and moves the parser forward.  It returns the consumed
// token.
func (p *Parser) expect(kind int) *Token {
	if !p.got(kind) {
		p.reject()
	}

	tok := p.tok
	p.next()
	return tok
}

// expectNewline asserts that the current token ends a line.  EOF works as a
// newline.
func (p *Parser) expectNewline() {
	if p.got(TOK_EOF) {
		return
	}

	p.expect(TOK_NEWLINE)
}

// skipNewlines moves the parser past any blank lines.
func (p *Parser) skipNewlines() {
	for p.got(TOK_NEWLINE) {
		p.next()
	}
}

// reject raises a parse error on the current token.
func (p *Parser) reject() {
	if p.got(TOK_EOF) {
		p.error(p.tok.Span, "unexpected end of file")
	}

	p.error(p.tok.Span, "unexpected token: `%s`", p.tok.Value)
}

// error raises a compile error on the given span that aborts parsing of the
// whole file.
func (p *Parser) error(span *report.TextSpan, msg string, args ...interface{}) {
	panic(report.Raise(span, msg, args...))
}

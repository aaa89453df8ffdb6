package generate_test

import (
	"os"
	"strings"
	"testing"

	"sablec/common"
	"sablec/generate"
	"sablec/mir"
	"sablec/report"
)

func TestMain(m *testing.M) {
	report.InitReporter(report.LogLevelSilent)
	os.Exit(m.Run())
}

func funcSym(name string) *common.Symbol {
	return &common.Symbol{Name: name, DefKind: common.DefFunc}
}

func generateText(bundle *mir.Bundle) string {
	return generate.NewGenerator(bundle).Generate().String()
}

func TestGenerateConstantGlobal(t *testing.T) {
	b := mir.NewBuilder("test")
	g := b.AddGlobal("answer", &common.Symbol{Name: "answer", DefKind: common.DefGlobal, Constant: true})
	b.BeginGlobalInit(g)
	b.Builtin(mir.OpMul, b.IntLit(6), b.IntLit(7))

	text := generateText(b.Bundle())

	// The folded initializer lands directly in the global definition.
	if !strings.Contains(text, "@answer") || !strings.Contains(text, "i64 42") {
		t.Errorf("expected a folded i64 constant for @answer, got:\n%s", text)
	}
}

func TestGenerateAggregateGlobal(t *testing.T) {
	b := mir.NewBuilder("test")
	g := b.AddGlobal("pair", &common.Symbol{Name: "pair", DefKind: common.DefGlobal, Constant: true})
	b.BeginGlobalInit(g)
	b.StructInit(b.IntLit(1), b.FloatLit(2.5))

	text := generateText(b.Bundle())

	if !strings.Contains(text, "@pair") || !strings.Contains(text, "i64 1") || !strings.Contains(text, "double") {
		t.Errorf("expected a struct constant for @pair, got:\n%s", text)
	}
}

func TestGenerateInternedString(t *testing.T) {
	b := mir.NewBuilder("test")
	g := b.AddGlobal("greeting", &common.Symbol{Name: "greeting", DefKind: common.DefGlobal, Constant: true})
	b.BeginGlobalInit(g)
	b.StrLit("hi")

	text := generateText(b.Bundle())

	// The string body is interned as a null-terminated character array.
	if !strings.Contains(text, "@str.0") || !strings.Contains(text, `c"hi\00"`) {
		t.Errorf("expected an interned string global, got:\n%s", text)
	}
}

func TestGenerateOnceGuard(t *testing.T) {
	b := mir.NewBuilder("test")
	g := b.AddGlobal("lazy", &common.Symbol{Name: "lazy", DefKind: common.DefGlobal, Constant: true})

	initFn := b.BeginFunction("lazy.init", funcSym("lazy.init"))
	b.BeginBlock("entry")
	b.Store(b.IntLit(42), b.GlobalAddr(g))
	b.Ret()

	addressor := b.BeginFunction("lazy.addr", funcSym("lazy.addr"))
	addressor.GlobalInitFor = g
	b.BeginBlock("entry")
	b.Once(initFn)
	b.Ret()

	text := generateText(b.Bundle())

	if !strings.Contains(text, "lazy.init.guard") {
		t.Errorf("expected a once guard flag, got:\n%s", text)
	}

	// The gate branches on the guard and calls the initializer exactly once.
	if !strings.Contains(text, "br i1") || !strings.Contains(text, "call") {
		t.Errorf("expected a guarded initializer call, got:\n%s", text)
	}
}

func TestGenerateFunctionBody(t *testing.T) {
	b := mir.NewBuilder("test")
	callee := b.BeginFunction("scale", funcSym("scale"),
		&common.Symbol{Name: "x", DefKind: common.DefParam},
		&common.Symbol{Name: "n", DefKind: common.DefParam})
	b.BeginBlock("entry")
	prod := b.Builtin(mir.OpMul, callee.Params[0], callee.Params[1])
	b.Ret(prod)

	b.BeginFunction("main", funcSym("main"))
	b.BeginBlock("entry")
	two := b.IntLit(2)
	scaled := b.Call(callee, two, two)
	b.CondBr(scaled, "then", "done")
	b.BeginBlock("then")
	b.Br("done")
	b.BeginBlock("done")
	b.Ret()

	text := generateText(b.Bundle())

	if !strings.Contains(text, "@scale") || !strings.Contains(text, "mul i64") {
		t.Errorf("expected the scale function body, got:\n%s", text)
	}

	// Conditions are materialized as comparisons against zero.
	if !strings.Contains(text, "icmp ne") {
		t.Errorf("expected a condition compare, got:\n%s", text)
	}

	if !strings.Contains(text, "call i64 @scale") {
		t.Errorf("expected a call to scale, got:\n%s", text)
	}
}

func TestGenerateBindSlot(t *testing.T) {
	b := mir.NewBuilder("test")
	b.BeginFunction("f", funcSym("f"))
	b.BeginBlock("entry")
	v := b.IntLit(3)
	b.Bind(v, &common.Symbol{Name: "count", DefKind: common.DefLocal, Constant: true})
	b.Ret()

	text := generateText(b.Bundle())

	// Bound locals keep their source names through an alloca slot.
	if !strings.Contains(text, "%count") || !strings.Contains(text, "alloca") {
		t.Errorf("expected a named local slot, got:\n%s", text)
	}
}

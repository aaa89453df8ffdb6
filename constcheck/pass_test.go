package constcheck_test

import (
	"testing"

	"sablec/common"
	"sablec/constcheck"
	"sablec/mir"
	"sablec/report"
)

// captureSink records diagnostics for inspection.
type captureSink struct {
	diags []capturedDiag
}

type capturedDiag struct {
	span *report.TextSpan
	kind constcheck.Kind
	args []interface{}
}

func (cs *captureSink) Diagnose(span *report.TextSpan, kind constcheck.Kind, args ...interface{}) {
	cs.diags = append(cs.diags, capturedDiag{span: span, kind: kind, args: args})
}

// runPass runs a fresh verification pass over the bundle and returns the
// captured diagnostics.
func runPass(t *testing.T, bundle *mir.Bundle) []capturedDiag {
	t.Helper()

	sink := &captureSink{}
	constcheck.NewPass(bundle, sink).Run()
	return sink.diags
}

func spanAt(line int) *report.TextSpan {
	return &report.TextSpan{StartLine: line, StartCol: 0, EndLine: line, EndCol: 5}
}

func constGlobalSym(name string, line int) *common.Symbol {
	return &common.Symbol{Name: name, DefSpan: spanAt(line), DefKind: common.DefGlobal, Constant: true}
}

func funcSym(name string) *common.Symbol {
	return &common.Symbol{Name: name, DefKind: common.DefFunc}
}

// -----------------------------------------------------------------------------

func TestConstGlobalWithLiteralAggregate(t *testing.T) {
	b := mir.NewBuilder("test")
	g := b.AddGlobal("g", constGlobalSym("g", 1))
	b.BeginGlobalInit(g)
	b.StructInit(b.IntLit(1), b.StrLit("two"), b.FloatLit(3.0))

	if diags := runPass(t, b.Bundle()); len(diags) != 0 {
		t.Errorf("expected no diagnostics, got %d", len(diags))
	}
}

func TestConstGlobalWithOpaqueAggregateOperand(t *testing.T) {
	b := mir.NewBuilder("test")
	callee := b.BeginFunction("f", funcSym("f"))

	g := b.AddGlobal("g", constGlobalSym("g", 4))
	b.BeginGlobalInit(g)
	call := b.Call(callee)
	b.StructInit(b.IntLit(1), call, b.IntLit(2))

	diags := runPass(t, b.Bundle())
	if len(diags) != 1 {
		t.Fatalf("expected 1 diagnostic, got %d", len(diags))
	}

	d := diags[0]
	if d.kind != constcheck.RequireConstInitializerForConst {
		t.Errorf("unexpected diagnostic kind: %d", d.kind)
	}

	if d.span != g.Sym.DefSpan {
		t.Error("expected the diagnostic at the global's declaration")
	}

	if len(d.args) != 1 || d.args[0] != "g" {
		t.Errorf("unexpected diagnostic arguments: %v", d.args)
	}
}

func TestConstGlobalEmitsOneDiagnostic(t *testing.T) {
	b := mir.NewBuilder("test")
	callee := b.BeginFunction("f", funcSym("f"))

	g := b.AddGlobal("g", constGlobalSym("g", 2))
	b.BeginGlobalInit(g)
	c1 := b.Call(callee)
	c2 := b.Call(callee)
	b.StructInit(c1, c2)

	// Two bad operands still produce a single diagnostic for the global.
	if diags := runPass(t, b.Bundle()); len(diags) != 1 {
		t.Errorf("expected 1 diagnostic, got %d", len(diags))
	}
}

func TestConstGlobalWithScalarInitializer(t *testing.T) {
	b := mir.NewBuilder("test")
	g := b.AddGlobal("g", constGlobalSym("g", 1))
	b.BeginGlobalInit(g)
	b.Builtin(mir.OpMul, b.IntLit(6), b.IntLit(7))

	if diags := runPass(t, b.Bundle()); len(diags) != 0 {
		t.Errorf("expected no diagnostics, got %d", len(diags))
	}
}

func TestNonConstGlobalIsSkipped(t *testing.T) {
	b := mir.NewBuilder("test")
	callee := b.BeginFunction("f", funcSym("f"))

	g := b.AddGlobal("g", &common.Symbol{Name: "g", DefSpan: spanAt(1), DefKind: common.DefGlobal})
	b.BeginGlobalInit(g)
	b.Call(callee)

	if diags := runPass(t, b.Bundle()); len(diags) != 0 {
		t.Errorf("expected no diagnostics for a non-const global, got %d", len(diags))
	}
}

// -----------------------------------------------------------------------------

// buildOnceInitialized assembles the initialize-once idiom for a const global
// with no static initializer: an addressor function gating a `once` call to a
// sub-initializer that stores the value produced by buildStored.
func buildOnceInitialized(buildStored func(b *mir.Builder, initFn *mir.Function) mir.Value) *mir.Bundle {
	b := mir.NewBuilder("test")
	g := b.AddGlobal("g", constGlobalSym("g", 3))

	initFn := b.BeginFunction("g.init", funcSym("g.init"))
	b.BeginBlock("entry")
	stored := buildStored(b, initFn)
	addr := b.GlobalAddr(g)
	b.Store(stored, addr)
	b.Ret()

	addressor := b.BeginFunction("g.addr", funcSym("g.addr"))
	addressor.GlobalInitFor = g
	b.BeginBlock("entry")
	b.Once(initFn)
	b.Ret()

	return b.Bundle()
}

func TestOnceInitializedConstGlobal(t *testing.T) {
	bundle := buildOnceInitialized(func(b *mir.Builder, _ *mir.Function) mir.Value {
		return b.Builtin(mir.OpAdd, b.IntLit(40), b.IntLit(2))
	})

	if diags := runPass(t, bundle); len(diags) != 0 {
		t.Errorf("expected no diagnostics, got %d", len(diags))
	}
}

func TestOnceInitializedWithOpaqueStore(t *testing.T) {
	b := mir.NewBuilder("test")
	opaque := b.BeginFunction("opaque", funcSym("opaque"))

	g := b.AddGlobal("g", constGlobalSym("g", 3))

	initFn := b.BeginFunction("g.init", funcSym("g.init"))
	b.BeginBlock("entry")
	stored := b.Call(opaque)
	b.Store(stored, b.GlobalAddr(g))
	b.Ret()

	addressor := b.BeginFunction("g.addr", funcSym("g.addr"))
	addressor.GlobalInitFor = g
	b.BeginBlock("entry")
	b.Once(initFn)
	b.Ret()

	diags := runPass(t, b.Bundle())
	if len(diags) != 1 || diags[0].kind != constcheck.RequireConstInitializerForConst {
		t.Fatalf("expected 1 initializer diagnostic, got %v", diags)
	}
}

func TestOnceGlobalAddressWithMultipleUses(t *testing.T) {
	b := mir.NewBuilder("test")
	g := b.AddGlobal("g", constGlobalSym("g", 3))

	initFn := b.BeginFunction("g.init", funcSym("g.init"))
	b.BeginBlock("entry")
	addr := b.GlobalAddr(g)
	b.Store(b.IntLit(1), addr)
	b.Load(addr)
	b.Ret()

	addressor := b.BeginFunction("g.addr", funcSym("g.addr"))
	addressor.GlobalInitFor = g
	b.BeginBlock("entry")
	b.Once(initFn)
	b.Ret()

	// A second use of the global's address defeats the structural match.
	if diags := runPass(t, b.Bundle()); len(diags) != 1 {
		t.Errorf("expected 1 diagnostic, got %d", len(diags))
	}
}

func TestConstGlobalWithoutAnyInitializer(t *testing.T) {
	b := mir.NewBuilder("test")
	b.AddGlobal("g", constGlobalSym("g", 1))

	if diags := runPass(t, b.Bundle()); len(diags) != 1 {
		t.Errorf("expected 1 diagnostic, got %d", len(diags))
	}
}

func TestAddressorWithoutOnceGate(t *testing.T) {
	b := mir.NewBuilder("test")
	g := b.AddGlobal("g", constGlobalSym("g", 3))

	addressor := b.BeginFunction("g.addr", funcSym("g.addr"))
	addressor.GlobalInitFor = g
	b.BeginBlock("entry")
	b.Ret()

	if diags := runPass(t, b.Bundle()); len(diags) != 1 {
		t.Errorf("expected 1 diagnostic, got %d", len(diags))
	}
}

// -----------------------------------------------------------------------------

func TestConstLocalBindingOfLiteral(t *testing.T) {
	b := mir.NewBuilder("test")
	b.BeginFunction("f", funcSym("f"))
	b.BeginBlock("entry")
	v := b.Builtin(mir.OpStrCat, b.StrLit("a"), b.StrLit("b"))
	b.Bind(v, &common.Symbol{Name: "s", DefSpan: spanAt(5), DefKind: common.DefLocal, Constant: true})
	b.Ret()

	if diags := runPass(t, b.Bundle()); len(diags) != 0 {
		t.Errorf("expected no diagnostics, got %d", len(diags))
	}
}

func TestConstLocalBindingOfOpaqueValue(t *testing.T) {
	b := mir.NewBuilder("test")
	callee := b.BeginFunction("f", funcSym("f"))

	b.BeginFunction("main", funcSym("main"))
	b.BeginBlock("entry")
	v := b.Call(callee)
	sym := &common.Symbol{Name: "s", DefSpan: spanAt(7), DefKind: common.DefLocal, Constant: true}
	b.Bind(v, sym)
	b.Ret()

	diags := runPass(t, b.Bundle())
	if len(diags) != 1 {
		t.Fatalf("expected 1 diagnostic, got %d", len(diags))
	}

	d := diags[0]
	if d.kind != constcheck.RequireConstArgForParameter {
		t.Errorf("unexpected diagnostic kind: %d", d.kind)
	}

	if d.span != sym.DefSpan {
		t.Error("expected the diagnostic at the binding's declaration")
	}

	if len(d.args) != 1 || d.args[0] != "s" {
		t.Errorf("unexpected diagnostic arguments: %v", d.args)
	}
}

func TestNonConstLocalBindingIsSkipped(t *testing.T) {
	b := mir.NewBuilder("test")
	callee := b.BeginFunction("f", funcSym("f"))

	b.BeginFunction("main", funcSym("main"))
	b.BeginBlock("entry")
	v := b.Call(callee)
	b.Bind(v, &common.Symbol{Name: "s", DefSpan: spanAt(7), DefKind: common.DefLocal})
	b.Ret()

	if diags := runPass(t, b.Bundle()); len(diags) != 0 {
		t.Errorf("expected no diagnostics, got %d", len(diags))
	}
}

// -----------------------------------------------------------------------------

func TestConstParameterWithConstantArgument(t *testing.T) {
	b := mir.NewBuilder("test")
	callee := b.BeginFunction("f", funcSym("f"),
		&common.Symbol{Name: "n", DefKind: common.DefParam, Constant: true})

	b.BeginFunction("main", funcSym("main"))
	b.BeginBlock("entry")
	b.Call(callee, b.IntLit(3))
	b.Ret()

	if diags := runPass(t, b.Bundle()); len(diags) != 0 {
		t.Errorf("expected no diagnostics, got %d", len(diags))
	}
}

func TestConstParameterWithOpaqueArgument(t *testing.T) {
	b := mir.NewBuilder("test")
	opaque := b.BeginFunction("opaque", funcSym("opaque"))
	callee := b.BeginFunction("f", funcSym("f"),
		&common.Symbol{Name: "a", DefKind: common.DefParam},
		&common.Symbol{Name: "n", DefKind: common.DefParam, Constant: true})

	b.BeginFunction("main", funcSym("main"))
	b.BeginBlock("entry")
	arg := b.Call(opaque)

	callSpan := spanAt(10)
	argSpans := []*report.TextSpan{spanAt(11), spanAt(12)}
	b.CallAt(callee, callSpan, argSpans, b.IntLit(1), arg)
	b.Ret()

	diags := runPass(t, b.Bundle())
	if len(diags) != 1 {
		t.Fatalf("expected 1 diagnostic, got %d", len(diags))
	}

	d := diags[0]
	if d.kind != constcheck.RequireConstArgForParameter {
		t.Errorf("unexpected diagnostic kind: %d", d.kind)
	}

	// The diagnostic lands on the failing argument, not the whole call.
	if d.span != argSpans[1] {
		t.Error("expected the diagnostic at the argument's span")
	}

	if len(d.args) != 1 || d.args[0] != "n" {
		t.Errorf("unexpected diagnostic arguments: %v", d.args)
	}
}

func TestConstParameterDiagnosticFallsBackToCallSpan(t *testing.T) {
	b := mir.NewBuilder("test")
	opaque := b.BeginFunction("opaque", funcSym("opaque"))
	callee := b.BeginFunction("f", funcSym("f"),
		&common.Symbol{Name: "n", DefKind: common.DefParam, Constant: true})

	b.BeginFunction("main", funcSym("main"))
	b.BeginBlock("entry")
	arg := b.Call(opaque)

	callSpan := spanAt(10)
	b.CallAt(callee, callSpan, nil, arg)
	b.Ret()

	diags := runPass(t, b.Bundle())
	if len(diags) != 1 || diags[0].span != callSpan {
		t.Fatalf("expected 1 diagnostic at the call span, got %v", diags)
	}
}

func TestCallWithFewerArgumentsThanParameters(t *testing.T) {
	b := mir.NewBuilder("test")
	callee := b.BeginFunction("f", funcSym("f"),
		&common.Symbol{Name: "a", DefKind: common.DefParam, Constant: true},
		&common.Symbol{Name: "b", DefKind: common.DefParam, Constant: true})

	b.BeginFunction("main", funcSym("main"))
	b.BeginBlock("entry")
	b.Call(callee, b.IntLit(1))
	b.Ret()

	// The missing argument position is not reported; only pairable positions
	// are checked.
	if diags := runPass(t, b.Bundle()); len(diags) != 0 {
		t.Errorf("expected no diagnostics, got %d", len(diags))
	}
}

// -----------------------------------------------------------------------------

func TestRepeatedRunsProduceIdenticalDiagnostics(t *testing.T) {
	b := mir.NewBuilder("test")
	callee := b.BeginFunction("f", funcSym("f"))

	g := b.AddGlobal("g", constGlobalSym("g", 2))
	b.BeginGlobalInit(g)
	b.Call(callee)

	b.BeginFunction("main", funcSym("main"))
	b.BeginBlock("entry")
	v := b.Call(callee)
	b.Bind(v, &common.Symbol{Name: "s", DefSpan: spanAt(9), DefKind: common.DefLocal, Constant: true})
	b.Ret()

	first := runPass(t, b.Bundle())
	second := runPass(t, b.Bundle())

	if len(first) != len(second) {
		t.Fatalf("diagnostic counts differ: %d vs %d", len(first), len(second))
	}

	for i := range first {
		if first[i].kind != second[i].kind || first[i].span != second[i].span {
			t.Errorf("diagnostic %d differs between runs", i)
		}
	}
}

func TestStepLimitedPassDiagnosesDeepInitializer(t *testing.T) {
	b := mir.NewBuilder("test")
	g := b.AddGlobal("g", constGlobalSym("g", 1))
	b.BeginGlobalInit(g)

	acc := b.IntLit(0)
	for i := 0; i < 50; i++ {
		acc = b.Builtin(mir.OpAdd, acc, b.IntLit(1))
	}

	sink := &captureSink{}
	pass := constcheck.NewPass(b.Bundle(), sink)
	pass.SetStepLimit(10)
	pass.Run()

	if len(sink.diags) != 1 {
		t.Errorf("expected 1 diagnostic under the reduced step limit, got %d", len(sink.diags))
	}
}

package mir_test

import (
	"testing"

	"sablec/common"
	"sablec/mir"
)

func TestStaticInit(t *testing.T) {
	b := mir.NewBuilder("test")
	g := b.AddGlobal("g", nil)

	if g.StaticInit() != nil {
		t.Error("expected no static initializer on an empty global")
	}

	b.BeginGlobalInit(g)
	b.IntLit(1)
	final := b.StructInit()

	if g.StaticInit() != final {
		t.Error("expected the final initializer instruction")
	}
}

func TestSoleUse(t *testing.T) {
	b := mir.NewBuilder("test")
	g := b.AddGlobal("g", nil)

	fn := b.BeginFunction("f", &common.Symbol{Name: "f", DefKind: common.DefFunc})
	b.BeginBlock("entry")
	addr := b.GlobalAddr(g)
	store := b.Store(b.IntLit(1), addr)
	unused := b.IntLit(7)
	b.Ret()

	use, ok := fn.SoleUse(addr)
	if !ok || use != store {
		t.Error("expected the store to be the address's sole use")
	}

	if _, ok := fn.SoleUse(unused); ok {
		t.Error("expected no sole use for an unused value")
	}

	b.Load(addr)
	if _, ok := fn.SoleUse(addr); ok {
		t.Error("expected no sole use after a second use")
	}
}

func TestValueNumbering(t *testing.T) {
	b := mir.NewBuilder("test")
	b.BeginFunction("f", &common.Symbol{Name: "f", DefKind: common.DefFunc})
	b.BeginBlock("entry")

	v0 := b.IntLit(1)
	stored := b.Store(v0, v0)
	v1 := b.IntLit(2)

	if v0.ID != 0 || v1.ID != 1 {
		t.Errorf("expected sequential numbering, got %d and %d", v0.ID, v1.ID)
	}

	// Result-less instructions take no number.
	if stored.ID != -1 {
		t.Errorf("expected -1 for a statement, got %d", stored.ID)
	}
}

func TestInstructionRepr(t *testing.T) {
	b := mir.NewBuilder("test")
	b.BeginFunction("f", &common.Symbol{Name: "f", DefKind: common.DefFunc})
	b.BeginBlock("entry")

	lit := b.IntLit(42)
	str := b.StrLit("hi")
	agg := b.StructInit(lit, str)
	bind := b.Bind(agg, &common.Symbol{Name: "x", TypeRepr: "Pair", DefKind: common.DefLocal, Constant: true})

	tests := []struct {
		instr *mir.Instruction
		want  string
	}{
		{lit, "$0 = int 42"},
		{str, `$1 = str "hi"`},
		{agg, "$2 = struct ($0, $1)"},
		{bind, "bind $2, %x: Pair const"},
	}

	for _, tt := range tests {
		if got := tt.instr.FullRepr(); got != tt.want {
			t.Errorf("expected `%s`, got `%s`", tt.want, got)
		}
	}
}

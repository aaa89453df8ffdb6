package consteval

import (
	"math/big"

	"sablec/mir"
)

// DefaultStepLimit is the default ceiling on the number of evaluation steps
// performed for a single top-level Evaluate request.  The limit guarantees
// that evaluation terminates on any input shape; MIR is acyclic SSA, so the
// limit only ever cuts off pathologically deep aggregates or builtin chains.
const DefaultStepLimit = 512

// Evaluator attempts to reduce MIR values to symbolic constants.  It is a
// partial interpreter: it folds literals, aggregate construction, and the
// intrinsic builtins, and answers Unknown for everything else.  Evaluation is
// total: every request terminates in a symbolic value, never an error.
//
// An evaluator is owned by a single verification pass invocation and must not
// be shared across bundles.
type Evaluator struct {
	arena *Arena

	// limit is the step ceiling for one top-level Evaluate request.
	limit int

	// steps counts the evaluation steps of the current request, shared across
	// the recursive descent.
	steps int

	// exhausted is set once the current request blows its step budget: the
	// remainder of the request unwinds with Unknown.
	exhausted bool

	// memo caches per-value results for the lifetime of the evaluator so that
	// shared subexpressions are walked once.  Results computed after the
	// budget is exhausted are never cached.
	memo map[mir.Value]SymbolicValue
}

// NewEvaluator creates an evaluator allocating from the given arena.
func NewEvaluator(arena *Arena) *Evaluator {
	return &Evaluator{
		arena: arena,
		limit: DefaultStepLimit,
		memo:  make(map[mir.Value]SymbolicValue),
	}
}

// SetStepLimit overrides the evaluation step ceiling.  Values below one are
// ignored.
func (ev *Evaluator) SetStepLimit(limit int) {
	if limit > 0 {
		ev.limit = limit
	}
}

// Evaluate attempts to compute the compile-time constant value of the given
// MIR value.  If the value cannot be statically reduced, or if evaluation
// exceeds the step ceiling, the result is Unknown.
func (ev *Evaluator) Evaluate(v mir.Value) SymbolicValue {
	ev.steps = 0
	ev.exhausted = false
	return ev.evaluate(v)
}

func (ev *Evaluator) evaluate(v mir.Value) SymbolicValue {
	if ev.exhausted {
		return Unknown()
	}

	ev.steps++
	if ev.steps > ev.limit {
		ev.exhausted = true
		return Unknown()
	}

	if cached, ok := ev.memo[v]; ok {
		return cached
	}

	var result SymbolicValue
	switch val := v.(type) {
	case *mir.Param:
		// A parameter without a statically known argument is never constant.
		result = Unknown()
	case *mir.Instruction:
		result = ev.evalInstr(val)
	default:
		result = Unknown()
	}

	if !ev.exhausted {
		ev.memo[v] = result
	}

	return result
}

// evalInstr interprets a single instruction kind.  Instruction kinds the
// evaluator does not special-case reduce to Unknown: loads observe mutable
// memory, calls are opaque, and control flow depends on runtime values.
func (ev *Evaluator) evalInstr(instr *mir.Instruction) SymbolicValue {
	switch instr.OpCode {
	case mir.OpIntLit:
		return ev.arena.NewInteger(instr.IntVal)
	case mir.OpFloatLit:
		return ev.arena.NewFloat(instr.FloatVal)
	case mir.OpStrLit:
		return ev.arena.NewString(instr.StrVal)
	case mir.OpStructInit:
		members := make([]SymbolicValue, len(instr.Operands))
		allConstant := true

		for i, operand := range instr.Operands {
			members[i] = ev.evaluate(operand)

			if !members[i].IsConstant() {
				allConstant = false
			}
		}

		// An aggregate with any non-constant member is unknown as a whole; no
		// partially constant aggregate is ever materialized.
		if !allConstant {
			return Unknown()
		}

		return ev.arena.NewAggregate(members)
	case mir.OpAdd, mir.OpSub, mir.OpMul, mir.OpDiv:
		if len(instr.Operands) != 2 {
			return Unknown()
		}

		return ev.foldBinaryOp(instr.OpCode, ev.evaluate(instr.Operands[0]), ev.evaluate(instr.Operands[1]))
	case mir.OpNeg:
		if len(instr.Operands) != 1 {
			return Unknown()
		}

		return ev.foldNeg(ev.evaluate(instr.Operands[0]))
	case mir.OpStrCat:
		if len(instr.Operands) != 2 {
			return Unknown()
		}

		lhs, rhs := ev.evaluate(instr.Operands[0]), ev.evaluate(instr.Operands[1])
		if lhs.Kind() != KindString || rhs.Kind() != KindString {
			return Unknown()
		}

		return ev.arena.NewString(lhs.StringVal() + rhs.StringVal())
	default:
		return Unknown()
	}
}

// foldBinaryOp folds an intrinsic arithmetic operation over two symbolic
// operands.  Operands must be type-homogeneous; mixed or non-numeric operands
// reduce to Unknown.
func (ev *Evaluator) foldBinaryOp(opCode int, lhs, rhs SymbolicValue) SymbolicValue {
	if lhs.Kind() == KindInteger && rhs.Kind() == KindInteger {
		result := new(big.Int)

		switch opCode {
		case mir.OpAdd:
			result.Add(lhs.Integer(), rhs.Integer())
		case mir.OpSub:
			result.Sub(lhs.Integer(), rhs.Integer())
		case mir.OpMul:
			result.Mul(lhs.Integer(), rhs.Integer())
		case mir.OpDiv:
			if rhs.Integer().Sign() == 0 {
				return Unknown()
			}

			result.Quo(lhs.Integer(), rhs.Integer())
		}

		return ev.arena.NewInteger(result)
	}

	if lhs.Kind() == KindFloat && rhs.Kind() == KindFloat {
		result := new(big.Float)

		switch opCode {
		case mir.OpAdd:
			result.Add(lhs.Float(), rhs.Float())
		case mir.OpSub:
			result.Sub(lhs.Float(), rhs.Float())
		case mir.OpMul:
			result.Mul(lhs.Float(), rhs.Float())
		case mir.OpDiv:
			if rhs.Float().Sign() == 0 {
				return Unknown()
			}

			result.Quo(lhs.Float(), rhs.Float())
		}

		return ev.arena.NewFloat(result)
	}

	return Unknown()
}

// foldNeg folds an intrinsic negation over a symbolic operand.
func (ev *Evaluator) foldNeg(operand SymbolicValue) SymbolicValue {
	switch operand.Kind() {
	case KindInteger:
		return ev.arena.NewInteger(new(big.Int).Neg(operand.Integer()))
	case KindFloat:
		return ev.arena.NewFloat(new(big.Float).Neg(operand.Float()))
	default:
		return Unknown()
	}
}

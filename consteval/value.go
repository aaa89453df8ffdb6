package consteval

import (
	"math/big"
	"strconv"
	"strings"
)

// ValueKind enumerates the kinds of symbolic values.
type ValueKind int

const (
	// KindUnknown indicates a value that could not be determined at compile
	// time.  It is terminal: any aggregate containing an unknown member is
	// itself not constant.
	KindUnknown ValueKind = iota
	KindInteger
	KindFloat
	KindString
	KindAggregate
)

// SymbolicValue is the constant evaluator's representation of "the value this
// IR value would have, if known".  It is a closed tagged union: exactly one
// payload field corresponding to the kind is meaningful.  Symbolic values are
// passed by value; aggregate member storage lives in the evaluation arena.
type SymbolicValue struct {
	kind ValueKind

	intVal   *big.Int
	floatVal *big.Float
	strVal   string
	members  []SymbolicValue
}

// Unknown returns the unknown symbolic value.
func Unknown() SymbolicValue {
	return SymbolicValue{kind: KindUnknown}
}

// NewInteger creates an integer symbolic value.
func (a *Arena) NewInteger(x *big.Int) SymbolicValue {
	return SymbolicValue{kind: KindInteger, intVal: x}
}

// NewFloat creates a floating-point symbolic value.
func (a *Arena) NewFloat(x *big.Float) SymbolicValue {
	return SymbolicValue{kind: KindFloat, floatVal: x}
}

// NewString creates a string symbolic value.
func (a *Arena) NewString(s string) SymbolicValue {
	return SymbolicValue{kind: KindString, strVal: s}
}

// NewAggregate creates an aggregate symbolic value whose member storage is
// allocated from the arena.
func (a *Arena) NewAggregate(members []SymbolicValue) SymbolicValue {
	stored := a.allocMembers(len(members))
	copy(stored, members)
	return SymbolicValue{kind: KindAggregate, members: stored}
}

// -----------------------------------------------------------------------------

// Kind returns the kind of the symbolic value.
func (sv SymbolicValue) Kind() ValueKind {
	return sv.kind
}

// Integer returns the payload of an integer symbolic value.
func (sv SymbolicValue) Integer() *big.Int {
	return sv.intVal
}

// Float returns the payload of a floating-point symbolic value.
func (sv SymbolicValue) Float() *big.Float {
	return sv.floatVal
}

// StringVal returns the payload of a string symbolic value.
func (sv SymbolicValue) StringVal() string {
	return sv.strVal
}

// Members returns the member values of an aggregate symbolic value.
func (sv SymbolicValue) Members() []SymbolicValue {
	return sv.members
}

// -----------------------------------------------------------------------------

// IsConstant returns whether the value is fully constant: it is known and, if
// it is an aggregate, every member at any depth is known.  The check
// short-circuits on the first unknown member found.
func (sv SymbolicValue) IsConstant() bool {
	switch sv.kind {
	case KindUnknown:
		return false
	case KindAggregate:
		for _, member := range sv.members {
			if !member.IsConstant() {
				return false
			}
		}

		return true
	default:
		return true
	}
}

// ContainsOnlyConstants returns whether the value itself resolves to a
// constant at the top level: it is known and, if it is an aggregate, every
// immediate member is known.  Unlike IsConstant it does not recurse into
// nested aggregates.
func (sv SymbolicValue) ContainsOnlyConstants() bool {
	switch sv.kind {
	case KindUnknown:
		return false
	case KindAggregate:
		for _, member := range sv.members {
			if member.kind == KindUnknown {
				return false
			}
		}

		return true
	default:
		return true
	}
}

// Repr returns a display string for the symbolic value.  It is a debugging
// aid only.
func (sv SymbolicValue) Repr() string {
	switch sv.kind {
	case KindInteger:
		return sv.intVal.String()
	case KindFloat:
		return sv.floatVal.Text('g', -1)
	case KindString:
		return strconv.Quote(sv.strVal)
	case KindAggregate:
		sb := strings.Builder{}
		sb.WriteRune('(')

		for i, member := range sv.members {
			sb.WriteString(member.Repr())

			if i < len(sv.members)-1 {
				sb.WriteString(", ")
			}
		}

		sb.WriteRune(')')
		return sb.String()
	default:
		return "unknown"
	}
}

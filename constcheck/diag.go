package constcheck

import "sablec/report"

// Kind enumerates the diagnostics the verification pass can produce.
type Kind int

const (
	// RequireConstInitializerForConst indicates a `const` global whose
	// initializer could not be confirmed to be a compile-time known value.
	RequireConstInitializerForConst Kind = iota

	// RequireConstArgForParameter indicates a value bound to a `const`
	// declaration or parameter that is not a compile-time known value.
	RequireConstArgForParameter
)

// kindMessages maps diagnostic kinds to their message format strings.
var kindMessages = map[Kind]string{
	RequireConstInitializerForConst: "`const` global `%s` must be initialized with a compile-time known value",
	RequireConstArgForParameter:     "expected a compile-time known value for `const` declaration `%s`",
}

// Message returns the formatted diagnostic message for the kind.
func (k Kind) Message() string {
	return kindMessages[k]
}

// Sink consumes the diagnostics produced by the verification pass.  Sinks are
// fire-and-forget: emitting a diagnostic never halts the pass.
type Sink interface {
	Diagnose(span *report.TextSpan, kind Kind, args ...interface{})
}

// ReporterSink forwards pass diagnostics to the global reporter as
// compilation errors.
type ReporterSink struct {
	// AbsPath is the absolute path of the MIR file being checked.
	AbsPath string

	// ReprPath is the path as it should be displayed to the user.
	ReprPath string
}

func (rs *ReporterSink) Diagnose(span *report.TextSpan, kind Kind, args ...interface{}) {
	report.ReportCompileError(rs.AbsPath, rs.ReprPath, span, kind.Message(), args...)
}

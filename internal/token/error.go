package token

import "fmt"

// ParseError is the diagnostic record surfaced at the public API boundary:
// a latched, terminal failure carrying the category that produced it plus
// the source position(s) involved.
type ParseError struct {
	Kind        ErrorType
	Problem     string
	ProblemMark Mark
	HasContext  bool
	ContextMark Mark

	// Cause is the underlying error that triggered this one, if any (for
	// example an io.Reader failure behind a READER_ERROR). Callers can
	// recover it with errors.Unwrap/errors.Is/errors.As.
	Cause error
}

func (e *ParseError) Error() string {
	s := fmt.Sprintf("%s: %s at line %d, column %d", e.Kind, e.Problem, e.ProblemMark.Line+1, e.ProblemMark.Column+1)
	if e.HasContext {
		s += fmt.Sprintf(", context at line %d, column %d", e.ContextMark.Line+1, e.ContextMark.Column+1)
	}
	return s
}

func (e *ParseError) Unwrap() error { return e.Cause }

func (t ErrorType) String() string {
	switch t {
	case NO_ERROR:
		return "no-error"
	case READER_ERROR:
		return "reader"
	case SCANNER_ERROR:
		return "scanner"
	case PARSER_ERROR:
		return "parser"
	case WRITER_ERROR:
		return "writer"
	case EMITTER_ERROR:
		return "emitter"
	}
	return "unknown"
}

package token_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	tok "github.com/goyaml11/yaml11/internal/token"
)

func TestParseError_FormatsWithoutContext(t *testing.T) {
	err := &tok.ParseError{
		Kind:        tok.SCANNER_ERROR,
		Problem:     "found character that cannot start any token",
		ProblemMark: tok.Mark{Line: 2, Column: 4},
	}
	require.Equal(t, "scanner: found character that cannot start any token at line 3, column 5", err.Error())
}

func TestParseError_FormatsWithContext(t *testing.T) {
	err := &tok.ParseError{
		Kind:        tok.PARSER_ERROR,
		Problem:     "found undefined tag handle",
		ProblemMark: tok.Mark{Line: 3, Column: 0},
		HasContext:  true,
		ContextMark: tok.Mark{Line: 1, Column: 2},
	}
	require.Equal(t,
		"parser: found undefined tag handle at line 4, column 1, context at line 2, column 3",
		err.Error(),
	)
}

func TestErrorType_String(t *testing.T) {
	cases := map[tok.ErrorType]string{
		tok.NO_ERROR:      "no-error",
		tok.READER_ERROR:  "reader",
		tok.SCANNER_ERROR: "scanner",
		tok.PARSER_ERROR:  "parser",
		tok.WRITER_ERROR:  "writer",
		tok.EMITTER_ERROR: "emitter",
	}
	for kind, want := range cases {
		require.Equal(t, want, kind.String())
	}
}

func TestTokenType_String_UnknownValue(t *testing.T) {
	require.Equal(t, "<unknown token>", tok.TokenType(999).String())
}

func TestEventType_String_UnknownValue(t *testing.T) {
	require.Contains(t, tok.EventType(99).String(), "unknown event")
}

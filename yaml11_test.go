package yaml11_test

import (
	"bytes"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/require"

	"github.com/goyaml11/yaml11"
	"github.com/goyaml11/yaml11/internal/emitter"
	"github.com/goyaml11/yaml11/internal/token"
)

// parseAllEvents drains a Parser to STREAM-END, asserting no error.
func parseAllEvents(t *testing.T, src []byte) []*yaml11.Event {
	t.Helper()
	p := yaml11.New()
	require.NoError(t, p.SetInputBytes(src))

	var events []*yaml11.Event
	for {
		ev, err := p.ParseEvent()
		require.NoError(t, err)
		events = append(events, ev)
		if ev.Type == yaml11.StreamEndEvent {
			break
		}
	}
	return events
}

func eventTypes(events []*yaml11.Event) []yaml11.EventType {
	out := make([]yaml11.EventType, len(events))
	for i, ev := range events {
		out[i] = ev.Type
	}
	return out
}

// Scenario 1 from spec.md section 8.
func TestEndToEnd_SimpleMapping(t *testing.T) {
	events := parseAllEvents(t, []byte("a: 1\n"))

	require.Equal(t, []yaml11.EventType{
		yaml11.StreamStartEvent,
		yaml11.DocumentStartEvent,
		yaml11.MappingStartEvent,
		yaml11.ScalarEvent,
		yaml11.ScalarEvent,
		yaml11.MappingEndEvent,
		yaml11.DocumentEndEvent,
		yaml11.StreamEndEvent,
	}, eventTypes(events))

	doc := events[1]
	require.True(t, doc.Implicit)

	mapStart := events[2]
	require.True(t, mapStart.Implicit)
	require.Equal(t, token.Style(token.BLOCK_MAPPING_STYLE), mapStart.Style)

	key := events[3]
	require.Equal(t, "a", string(key.Value))
	require.True(t, key.Implicit)

	val := events[4]
	require.Equal(t, "1", string(val.Value))
	require.True(t, val.Implicit)

	docEnd := events[6]
	require.True(t, docEnd.Implicit)
}

// Scenario 2.
func TestEndToEnd_BlockSequence(t *testing.T) {
	events := parseAllEvents(t, []byte("- 1\n- 2\n"))

	require.Equal(t, []yaml11.EventType{
		yaml11.StreamStartEvent,
		yaml11.DocumentStartEvent,
		yaml11.SequenceStartEvent,
		yaml11.ScalarEvent,
		yaml11.ScalarEvent,
		yaml11.SequenceEndEvent,
		yaml11.DocumentEndEvent,
		yaml11.StreamEndEvent,
	}, eventTypes(events))

	require.Equal(t, "1", string(events[3].Value))
	require.Equal(t, "2", string(events[4].Value))
	require.Equal(t, token.Style(token.BLOCK_SEQUENCE_STYLE), events[2].Style)
}

// Scenario 3.
func TestEndToEnd_FlowSequence(t *testing.T) {
	events := parseAllEvents(t, []byte("[1, 2, 3]\n"))

	require.Equal(t, []yaml11.EventType{
		yaml11.StreamStartEvent,
		yaml11.DocumentStartEvent,
		yaml11.SequenceStartEvent,
		yaml11.ScalarEvent,
		yaml11.ScalarEvent,
		yaml11.ScalarEvent,
		yaml11.SequenceEndEvent,
		yaml11.DocumentEndEvent,
		yaml11.StreamEndEvent,
	}, eventTypes(events))

	require.Equal(t, token.Style(token.FLOW_SEQUENCE_STYLE), events[2].Style)
	require.Equal(t, []string{"1", "2", "3"}, []string{
		string(events[3].Value), string(events[4].Value), string(events[5].Value),
	})
}

// Scenario 4: the parser must not attempt to resolve a self-referencing
// alias; that's the composer's job.
func TestEndToEnd_AnchorAndAlias(t *testing.T) {
	events := parseAllEvents(t, []byte("&a [*a]\n"))

	require.Equal(t, []yaml11.EventType{
		yaml11.StreamStartEvent,
		yaml11.DocumentStartEvent,
		yaml11.SequenceStartEvent,
		yaml11.AliasEvent,
		yaml11.SequenceEndEvent,
		yaml11.DocumentEndEvent,
		yaml11.StreamEndEvent,
	}, eventTypes(events))

	require.Equal(t, "a", string(events[2].Anchor))
	require.Equal(t, "a", string(events[3].Anchor))
}

// Scenario 5: explicit %TAG directive resolved against a handle.
func TestEndToEnd_TagDirective(t *testing.T) {
	src := "%YAML 1.1\n%TAG !e! tag:example.com,2020:\n---\n!e!x v\n"
	events := parseAllEvents(t, []byte(src))

	require.Equal(t, []yaml11.EventType{
		yaml11.StreamStartEvent,
		yaml11.DocumentStartEvent,
		yaml11.ScalarEvent,
		yaml11.DocumentEndEvent,
		yaml11.StreamEndEvent,
	}, eventTypes(events))

	doc := events[1]
	require.False(t, doc.Implicit)
	require.NotNil(t, doc.VersionDirective)
	require.EqualValues(t, 1, doc.VersionDirective.Major)
	require.EqualValues(t, 1, doc.VersionDirective.Minor)

	var found bool
	for _, td := range doc.TagDirectives {
		if string(td.Handle) == "!e!" {
			found = true
			require.Equal(t, "tag:example.com,2020:", string(td.Prefix))
		}
	}
	require.True(t, found, "expected !e! tag directive to be carried on DOCUMENT-START")

	scalar := events[2]
	require.Equal(t, "tag:example.com,2020:x", string(scalar.Tag))
	require.Equal(t, "v", string(scalar.Value))
}

// Scenario 6: the indentless-sequence case. No BLOCK-SEQUENCE-START token
// is ever emitted by the scanner for this shape, yet the parser must
// still produce a SEQUENCE-START/SEQUENCE-END event pair.
func TestEndToEnd_IndentlessSequence(t *testing.T) {
	events := parseAllEvents(t, []byte("key:\n- a\n- b\n"))

	require.Equal(t, []yaml11.EventType{
		yaml11.StreamStartEvent,
		yaml11.DocumentStartEvent,
		yaml11.MappingStartEvent,
		yaml11.ScalarEvent,
		yaml11.SequenceStartEvent,
		yaml11.ScalarEvent,
		yaml11.ScalarEvent,
		yaml11.SequenceEndEvent,
		yaml11.MappingEndEvent,
		yaml11.DocumentEndEvent,
		yaml11.StreamEndEvent,
	}, eventTypes(events))

	require.Equal(t, "key", string(events[3].Value))
	require.Equal(t, "a", string(events[5].Value))
	require.Equal(t, "b", string(events[6].Value))
}

// Round-trip property from spec.md section 8: parse(s) -> events;
// emit(events) -> s'; parse(s') == events (event equality, not byte
// equality).
func TestRoundTrip_EventEquality(t *testing.T) {
	docs := []string{
		"a: 1\n",
		"- 1\n- 2\n- 3\n",
		"[1, 2, 3]\n",
		"key:\n- a\n- b\n",
		"nested:\n  a: 1\n  b: 2\n",
		"'single' : \"double\\n\"\n",
	}

	for _, src := range docs {
		src := src
		t.Run(src, func(t *testing.T) {
			events := parseAllEvents(t, []byte(src))

			var buf bytes.Buffer
			e := emitter.New(&buf)
			for i, ev := range events {
				require.NoError(t, e.Emit(ev, i == len(events)-1))
			}

			reEvents := parseAllEvents(t, buf.Bytes())

			opt := cmpopts.IgnoreFields(yaml11.Event{}, "StartMark", "EndMark")
			if diff := cmp.Diff(events, reEvents, opt); diff != "" {
				t.Fatalf("round trip changed event stream for %q (-want +got):\n%s\nemitted:\n%s", src, diff, buf.String())
			}
		})
	}
}

// Mark monotonicity, from spec.md section 8: for every pair of
// consecutive tokens, t1.end_mark.offset <= t2.start_mark.offset (here,
// we use Index, this implementation's closest analogue of "offset" at
// the token level: a running character count).
func TestTokenStream_MarkMonotonicity(t *testing.T) {
	p := yaml11.New()
	require.NoError(t, p.SetInputBytes([]byte("a:\n  b: [1, 2]\n  c: *x\n")))

	var prevEnd int
	for {
		tk, err := p.ParseToken()
		require.NoError(t, err)
		require.GreaterOrEqual(t, tk.StartMark.Index, prevEnd)
		prevEnd = tk.EndMark.Index
		if tk.Type == yaml11.StreamEndToken {
			break
		}
	}
}

func TestErr_LatchesAfterFirstFailure(t *testing.T) {
	p := yaml11.New()
	require.NoError(t, p.SetInputBytes([]byte("key: 'unterminated\n")))

	var firstErr error
	for {
		_, err := p.ParseEvent()
		if err != nil {
			firstErr = err
			break
		}
	}
	require.Error(t, firstErr)
	require.Equal(t, firstErr, p.Err())

	_, err := p.ParseEvent()
	require.Equal(t, firstErr, err)
}

func TestSetInputBytes_OnlyOnce(t *testing.T) {
	p := yaml11.New()
	require.NoError(t, p.SetInputBytes([]byte("a: 1\n")))
	require.ErrorIs(t, p.SetInputBytes([]byte("b: 2\n")), yaml11.ErrInputAlreadySet)
}

func TestSetEncoding_OnlyOnce(t *testing.T) {
	p := yaml11.New()
	require.NoError(t, p.SetInputBytes([]byte("a: 1\n")))
	require.NoError(t, p.SetEncoding(yaml11.UTF8Encoding))
	require.ErrorIs(t, p.SetEncoding(yaml11.UTF8Encoding), yaml11.ErrEncodingAlreadySet)
}

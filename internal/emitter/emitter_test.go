package emitter_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/goyaml11/yaml11/internal/emitter"
	"github.com/goyaml11/yaml11/internal/engine"
	tok "github.com/goyaml11/yaml11/internal/token"
)

func parseEvents(t *testing.T, src string) []*tok.Event {
	t.Helper()
	session := engine.New(bytes.NewReader([]byte(src)))
	var events []*tok.Event
	for {
		ev, err := session.ParseEvent()
		require.NoError(t, err)
		events = append(events, ev)
		if ev.Type == tok.STREAM_END_EVENT {
			return events
		}
	}
}

func TestEmitter_SetIndent(t *testing.T) {
	events := parseEvents(t, "a:\n  b: 1\n")

	var buf bytes.Buffer
	e := emitter.New(&buf)
	e.SetIndent(2)
	for i, ev := range events {
		require.NoError(t, e.Emit(ev, i == len(events)-1))
	}

	reparsed := parseEvents(t, buf.String())
	require.Equal(t, len(events), len(reparsed))
	for i := range events {
		require.Equal(t, events[i].Type, reparsed[i].Type)
	}
}

func TestEmitter_SetIndent_PanicsOnNegative(t *testing.T) {
	e := emitter.New(&bytes.Buffer{})
	require.Panics(t, func() { e.SetIndent(-1) })
}

func TestEmitter_RejectsOutOfOrderEvent(t *testing.T) {
	e := emitter.New(&bytes.Buffer{})
	// A MAPPING-END with no preceding STREAM-START/DOCUMENT-START/
	// MAPPING-START is a structural violation the emitter's own state
	// machine must reject rather than silently emit.
	err := e.Emit(&tok.Event{Type: tok.MAPPING_END_EVENT}, true)
	require.Error(t, err)
}

func TestEmitter_RoundTripsScalarStyles(t *testing.T) {
	src := "plain: x\n" +
		"single: 'it''s'\n" +
		"double: \"a\\nb\"\n" +
		"literal: |\n  line one\n  line two\n" +
		"folded: >\n  line one\n  line two\n"

	events := parseEvents(t, src)

	var buf bytes.Buffer
	e := emitter.New(&buf)
	for i, ev := range events {
		require.NoError(t, e.Emit(ev, i == len(events)-1))
	}

	reparsed := parseEvents(t, buf.String())
	require.Equal(t, len(events), len(reparsed))
	for i := range events {
		require.Equal(t, events[i].Type, reparsed[i].Type, "event %d", i)
		if events[i].Type == tok.SCALAR_EVENT {
			require.Equal(t, string(events[i].Value), string(reparsed[i].Value), "scalar value %d", i)
		}
	}
}

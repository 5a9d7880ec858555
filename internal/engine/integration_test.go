package engine_test

import (
	"bytes"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/goyaml11/yaml11/internal/engine"
	tok "github.com/goyaml11/yaml11/internal/token"
)

func drainEvents(src string) []*tok.Event {
	session := engine.New(bytes.NewReader([]byte(src)))
	var events []*tok.Event
	for {
		ev, err := session.ParseEvent()
		Expect(err).NotTo(HaveOccurred())
		events = append(events, ev)
		if ev.Type == tok.STREAM_END_EVENT {
			return events
		}
	}
}

func eventTypesOf(events []*tok.Event) []tok.EventType {
	out := make([]tok.EventType, len(events))
	for i, ev := range events {
		out[i] = ev.Type
	}
	return out
}

var _ = Describe("end-to-end scenarios", func() {
	It("scans a simple block mapping", func() {
		events := drainEvents("a: 1\n")
		Expect(eventTypesOf(events)).To(Equal([]tok.EventType{
			tok.STREAM_START_EVENT,
			tok.DOCUMENT_START_EVENT,
			tok.MAPPING_START_EVENT,
			tok.SCALAR_EVENT,
			tok.SCALAR_EVENT,
			tok.MAPPING_END_EVENT,
			tok.DOCUMENT_END_EVENT,
			tok.STREAM_END_EVENT,
		}))
		Expect(events[1].Implicit).To(BeTrue())
		Expect(string(events[3].Value)).To(Equal("a"))
		Expect(events[3].Implicit).To(BeTrue())
		Expect(string(events[4].Value)).To(Equal("1"))
	})

	It("scans a block sequence of two entries", func() {
		events := drainEvents("- 1\n- 2\n")
		Expect(eventTypesOf(events)).To(Equal([]tok.EventType{
			tok.STREAM_START_EVENT,
			tok.DOCUMENT_START_EVENT,
			tok.SEQUENCE_START_EVENT,
			tok.SCALAR_EVENT,
			tok.SCALAR_EVENT,
			tok.SEQUENCE_END_EVENT,
			tok.DOCUMENT_END_EVENT,
			tok.STREAM_END_EVENT,
		}))
		Expect(tok.SequenceStyle(events[2].Style)).To(Equal(tok.BLOCK_SEQUENCE_STYLE))
	})

	It("scans a flow sequence", func() {
		events := drainEvents("[1, 2, 3]\n")
		Expect(eventTypesOf(events)).To(Equal([]tok.EventType{
			tok.STREAM_START_EVENT,
			tok.DOCUMENT_START_EVENT,
			tok.SEQUENCE_START_EVENT,
			tok.SCALAR_EVENT,
			tok.SCALAR_EVENT,
			tok.SCALAR_EVENT,
			tok.SEQUENCE_END_EVENT,
			tok.DOCUMENT_END_EVENT,
			tok.STREAM_END_EVENT,
		}))
		Expect(tok.SequenceStyle(events[2].Style)).To(Equal(tok.FLOW_SEQUENCE_STYLE))
	})

	It("does not resolve a self-referencing anchor/alias pair", func() {
		events := drainEvents("&a [*a]\n")
		Expect(eventTypesOf(events)).To(Equal([]tok.EventType{
			tok.STREAM_START_EVENT,
			tok.DOCUMENT_START_EVENT,
			tok.SEQUENCE_START_EVENT,
			tok.ALIAS_EVENT,
			tok.SEQUENCE_END_EVENT,
			tok.DOCUMENT_END_EVENT,
			tok.STREAM_END_EVENT,
		}))
		Expect(string(events[2].Anchor)).To(Equal("a"))
		Expect(string(events[3].Anchor)).To(Equal("a"))
	})

	It("resolves a %TAG directive handle against the document's node tag", func() {
		src := "%YAML 1.1\n%TAG !e! tag:example.com,2020:\n---\n!e!x v\n"
		events := drainEvents(src)
		Expect(eventTypesOf(events)).To(Equal([]tok.EventType{
			tok.STREAM_START_EVENT,
			tok.DOCUMENT_START_EVENT,
			tok.SCALAR_EVENT,
			tok.DOCUMENT_END_EVENT,
			tok.STREAM_END_EVENT,
		}))
		Expect(events[1].Implicit).To(BeFalse())
		Expect(events[2].Tag).To(Equal([]byte("tag:example.com,2020:x")))
		Expect(events[2].Value).To(Equal([]byte("v")))
	})

	It("synthesizes a SEQUENCE-START/END pair for an indentless sequence", func() {
		events := drainEvents("key:\n- a\n- b\n")
		Expect(eventTypesOf(events)).To(Equal([]tok.EventType{
			tok.STREAM_START_EVENT,
			tok.DOCUMENT_START_EVENT,
			tok.MAPPING_START_EVENT,
			tok.SCALAR_EVENT,
			tok.SEQUENCE_START_EVENT,
			tok.SCALAR_EVENT,
			tok.SCALAR_EVENT,
			tok.SEQUENCE_END_EVENT,
			tok.MAPPING_END_EVENT,
			tok.DOCUMENT_END_EVENT,
			tok.STREAM_END_EVENT,
		}))
	})
})

var _ = Describe("universal invariants", func() {
	It("balances STREAM/DOCUMENT/SEQUENCE/MAPPING start and end events", func() {
		events := drainEvents("a:\n  - 1\n  - {b: 2, c: [3, 4]}\n")
		var stream, document, sequence, mapping int
		for _, ev := range events {
			switch ev.Type {
			case tok.STREAM_START_EVENT:
				stream++
			case tok.STREAM_END_EVENT:
				stream--
			case tok.DOCUMENT_START_EVENT:
				document++
			case tok.DOCUMENT_END_EVENT:
				document--
			case tok.SEQUENCE_START_EVENT:
				sequence++
			case tok.SEQUENCE_END_EVENT:
				sequence--
			case tok.MAPPING_START_EVENT:
				mapping++
			case tok.MAPPING_END_EVENT:
				mapping--
			}
		}
		Expect(stream).To(Equal(0))
		Expect(document).To(Equal(0))
		Expect(sequence).To(Equal(0))
		Expect(mapping).To(Equal(0))
	})

	It("rejects an undefined tag handle with a parser error", func() {
		session := engine.New(bytes.NewReader([]byte("!e!x v\n")))
		var lastErr error
		for {
			_, err := session.ParseEvent()
			if err != nil {
				lastErr = err
				break
			}
		}
		Expect(lastErr).To(HaveOccurred())
		perr, ok := lastErr.(*tok.ParseError)
		Expect(ok).To(BeTrue())
		Expect(perr.Kind).To(Equal(tok.PARSER_ERROR))
	})
})

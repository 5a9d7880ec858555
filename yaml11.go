//
// Copyright (c) 2011-2019 Canonical Ltd
// Copyright (c) 2006-2010 Kirill Simonov
//
// Permission is hereby granted, free of charge, to any person obtaining a copy of
// this software and associated documentation files (the "Software"), to deal in
// the Software without restriction, including without limitation the rights to
// use, copy, modify, merge, publish, distribute, sublicense, and/or sell copies
// of the Software, and to permit persons to whom the Software is furnished to do
// so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

// Package yaml11 scans and parses YAML 1.1 streams: bytes in, a lazy
// stream of Tokens or Events out. It does not build a node graph and it
// does not map onto Go structs; pair it with a composer for that.
package yaml11

import (
	"bytes"
	"errors"
	"io"

	"github.com/goyaml11/yaml11/internal/engine"
	"github.com/goyaml11/yaml11/internal/token"
)

// Re-exported so callers never need to import the internal packages
// directly.
type (
	Token       = token.Token
	TokenType   = token.TokenType
	Event       = token.Event
	EventType   = token.EventType
	Mark        = token.Mark
	Encoding    = token.Encoding
	ScalarStyle = token.ScalarStyle
	Error       = token.ParseError
)

const (
	AnyEncoding     = token.ANY_ENCODING
	UTF8Encoding    = token.UTF8_ENCODING
	UTF16LEEncoding = token.UTF16LE_ENCODING
	UTF16BEEncoding = token.UTF16BE_ENCODING
)

// Token types, re-exported for callers of ParseToken.
const (
	NoToken          = token.NO_TOKEN
	StreamStartToken = token.STREAM_START_TOKEN
	StreamEndToken   = token.STREAM_END_TOKEN

	VersionDirectiveToken = token.VERSION_DIRECTIVE_TOKEN
	TagDirectiveToken     = token.TAG_DIRECTIVE_TOKEN
	DocumentStartToken    = token.DOCUMENT_START_TOKEN
	DocumentEndToken      = token.DOCUMENT_END_TOKEN

	BlockSequenceStartToken = token.BLOCK_SEQUENCE_START_TOKEN
	BlockMappingStartToken  = token.BLOCK_MAPPING_START_TOKEN
	BlockEndToken           = token.BLOCK_END_TOKEN

	FlowSequenceStartToken = token.FLOW_SEQUENCE_START_TOKEN
	FlowSequenceEndToken   = token.FLOW_SEQUENCE_END_TOKEN
	FlowMappingStartToken  = token.FLOW_MAPPING_START_TOKEN
	FlowMappingEndToken    = token.FLOW_MAPPING_END_TOKEN

	BlockEntryToken = token.BLOCK_ENTRY_TOKEN
	FlowEntryToken  = token.FLOW_ENTRY_TOKEN
	KeyToken        = token.KEY_TOKEN
	ValueToken      = token.VALUE_TOKEN

	AliasToken  = token.ALIAS_TOKEN
	AnchorToken = token.ANCHOR_TOKEN
	TagToken    = token.TAG_TOKEN
	ScalarToken = token.SCALAR_TOKEN
)

// Event types, re-exported for callers of ParseEvent.
const (
	NoEvent            = token.NO_EVENT
	StreamStartEvent   = token.STREAM_START_EVENT
	StreamEndEvent     = token.STREAM_END_EVENT
	DocumentStartEvent = token.DOCUMENT_START_EVENT
	DocumentEndEvent   = token.DOCUMENT_END_EVENT
	AliasEvent         = token.ALIAS_EVENT
	ScalarEvent        = token.SCALAR_EVENT
	SequenceStartEvent = token.SEQUENCE_START_EVENT
	SequenceEndEvent   = token.SEQUENCE_END_EVENT
	MappingStartEvent  = token.MAPPING_START_EVENT
	MappingEndEvent    = token.MAPPING_END_EVENT
	TailCommentEvent   = token.TAIL_COMMENT_EVENT
)

var (
	// ErrInputAlreadySet is returned by SetInputBytes/SetInputReader when a
	// session's input source has already been set.
	ErrInputAlreadySet = errors.New("yaml11: input already set")
	// ErrEncodingAlreadySet is returned by SetEncoding when it has already
	// been called once on the session.
	ErrEncodingAlreadySet = errors.New("yaml11: encoding already set")
)

// Parser is a single scanning/parsing session. It owns input buffers, the
// scanner's token queue, and the parser's state stack. A Parser must not
// be used from more than one goroutine at a time; independent Parsers are
// fully independent.
//
// Once a Parser has returned an error, every subsequent call returns that
// same error: the Parser keeps the first failure, so failures are terminal
// within a session.
type Parser struct {
	session     *engine.Session
	err         error
	inputSet    bool
	encodingSet bool
}

// New creates a parser session with no input source yet attached. Call
// SetInputBytes or SetInputReader before pulling tokens or events.
func New() *Parser {
	return &Parser{}
}

// SetInputBytes attaches an in-memory buffer as the session's input. It
// may be called at most once per session.
func (p *Parser) SetInputBytes(b []byte) error {
	return p.setInput(bytes.NewReader(b))
}

// SetInputReader attaches an io.Reader as the session's input. It may be
// called at most once per session; the reader is read synchronously and
// may itself block.
func (p *Parser) SetInputReader(r io.Reader) error {
	return p.setInput(r)
}

func (p *Parser) setInput(r io.Reader) error {
	if p.inputSet {
		return ErrInputAlreadySet
	}
	p.inputSet = true
	p.session = engine.New(r)
	return nil
}

// SetEncoding fixes the session's input encoding instead of relying on BOM
// detection. It may be called at most once per session, before the first
// token or event is pulled.
func (p *Parser) SetEncoding(enc Encoding) error {
	if p.session == nil {
		return errors.New("yaml11: SetEncoding called before an input source was set")
	}
	if p.encodingSet {
		return ErrEncodingAlreadySet
	}
	p.encodingSet = true
	p.session.Encoding = enc
	return nil
}

// ParseToken returns the next token, exposing the scanner stage directly.
// Most callers want ParseEvent instead.
func (p *Parser) ParseToken() (*Token, error) {
	if p.err != nil {
		return nil, p.err
	}
	t, err := p.session.ParseToken()
	if err != nil {
		p.err = err
		return nil, err
	}
	return t, nil
}

// ParseEvent returns the next structural event.
func (p *Parser) ParseEvent() (*Event, error) {
	if p.err != nil {
		return nil, p.err
	}
	ev, err := p.session.ParseEvent()
	if err != nil {
		p.err = err
		return nil, err
	}
	return ev, nil
}

// Err returns the latched terminal error of this session, if any.
func (p *Parser) Err() error {
	return p.err
}

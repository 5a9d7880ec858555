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

package engine

import (
	"bytes"
	"fmt"
	tok "github.com/goyaml11/yaml11/internal/token"
)

// Introduction
// ************
//
// The following notes assume that you are familiar with the YAML specification
// (http://yaml.org/spec/1.2/spec.html).  We mostly follow it, although in
// some cases we are less restrictive that it requires.
//
// The process of transforming a YAML stream into a sequence of events is
// divided on two steps: Scanning and Parsing.
//
// The Scanner transforms the input stream into a sequence of tokens, while the
// parser transform the sequence of tokens produced by the Scanner into a
// sequence of parsing events.
//
// The Scanner is rather clever and complicated. The parser, on the contrary,
// is a straightforward implementation of a recursive-descendant parser (or,
// LL(1) parser, as it is usually called).
//
// Actually there are two issues of Scanning that might be called "clever", the
// rest is quite straightforward.  The issues are "block collection start" and
// "simple keys".  Both issues are explained below in details.
//
// Here the Scanning step is explained and implemented.  We start with the list
// of all the tokens produced by the Scanner together with short descriptions.
//
// Now, tokens:
//
//      STREAM-START(encoding)          # The stream start.
//      STREAM-END                      # The stream end.
//      VERSION-DIRECTIVE(major,minor)  # The '%YAML' directive.
//      TAG-DIRECTIVE(handle,prefix)    # The '%TAG' directive.
//      DOCUMENT-START                  # '---'
//      DOCUMENT-END                    # '...'
//      BLOCK-SEQUENCE-START            # Indentation increase denoting a block
//      BLOCK-MAPPING-START             # sequence or a block mapping.
//      BLOCK-END                       # Indentation decrease.
//      FLOW-SEQUENCE-START             # '['
//      FLOW-SEQUENCE-END               # ']'
//      FLOW-MAPPING-START              # '{'
//      FLOW-MAPPING-END                # '}'
//      BLOCK-ENTRY                     # '-'
//      FLOW-ENTRY                      # ','
//      KEY                             # '?' or nothing (simple keys).
//      VALUE                           # ':'
//      ALIAS(anchor)                   # '*anchor'
//      ANCHOR(anchor)                  # '&anchor'
//      TAG(handle,suffix)              # '!handle!suffix'
//      SCALAR(value,style)             # A scalar.
//
// The following two tokens are "virtual" tokens denoting the beginning and the
// end of the stream:
//
//      STREAM-START(encoding)
//      STREAM-END
//
// We pass the information about the input stream encoding with the
// STREAM-START token.
//
// The next two tokens are responsible for tags:
//
//      VERSION-DIRECTIVE(major,minor)
//      TAG-DIRECTIVE(handle,prefix)
//
// Example:
//
//      %YAML   1.1
//      %TAG    !   !foo
//      %TAG    !yaml!  tag:yaml.org,2002:
//      ---
//
// The correspoding sequence of tokens:
//
//      STREAM-START(utf-8)
//      VERSION-DIRECTIVE(1,1)
//      TAG-DIRECTIVE("!","!foo")
//      TAG-DIRECTIVE("!yaml!","tag:yaml.org,2002:")
//      DOCUMENT-START
//      STREAM-END
//
// Note that the VERSION-DIRECTIVE and TAG-DIRECTIVE tokens occupy a whole
// line.
//
// The document start and end indicators are represented by:
//
//      DOCUMENT-START
//      DOCUMENT-END
//
// Note that if a YAML stream contains an implicit document (without '---'
// and '...' indicators), no DOCUMENT-START and DOCUMENT-END tokens will be
// produced.
//
// In the following examples, we present whole documents together with the
// produced tokens.
//
//      1. An implicit document:
//
//          'a scalar'
//
//      Tokens:
//
//          STREAM-START(utf-8)
//          SCALAR("a scalar",single-quoted)
//          STREAM-END
//
//      2. An explicit document:
//
//          ---
//          'a scalar'
//          ...
//
//      Tokens:
//
//          STREAM-START(utf-8)
//          DOCUMENT-START
//          SCALAR("a scalar",single-quoted)
//          DOCUMENT-END
//          STREAM-END
//
//      3. Several documents in a stream:
//
//          'a scalar'
//          ---
//          'another scalar'
//          ---
//          'yet another scalar'
//
//      Tokens:
//
//          STREAM-START(utf-8)
//          SCALAR("a scalar",single-quoted)
//          DOCUMENT-START
//          SCALAR("another scalar",single-quoted)
//          DOCUMENT-START
//          SCALAR("yet another scalar",single-quoted)
//          STREAM-END
//
// We have already introduced the SCALAR token above.  The following tokens are
// used to describe aliases, anchors, tag, and scalars:
//
//      ALIAS(anchor)
//      ANCHOR(anchor)
//      TAG(handle,suffix)
//      SCALAR(value,style)
//
// The following series of examples illustrate the usage of these tokens:
//
//      1. A recursive sequence:
//
//          &A [ *A ]
//
//      Tokens:
//
//          STREAM-START(utf-8)
//          ANCHOR("A")
//          FLOW-SEQUENCE-START
//          ALIAS("A")
//          FLOW-SEQUENCE-END
//          STREAM-END
//
//      2. A tagged scalar:
//
//          !!float "3.14"  # A good approximation.
//
//      Tokens:
//
//          STREAM-START(utf-8)
//          TAG("!!","float")
//          SCALAR("3.14",double-quoted)
//          STREAM-END
//
//      3. Various scalar styles:
//
//          --- # Implicit empty plain scalars do not produce tokens.
//          --- a plain scalar
//          --- 'a single-quoted scalar'
//          --- "a double-quoted scalar"
//          --- |-
//            a literal scalar
//          --- >-
//            a folded
//            scalar
//
//      Tokens:
//
//          STREAM-START(utf-8)
//          DOCUMENT-START
//          DOCUMENT-START
//          SCALAR("a plain scalar",plain)
//          DOCUMENT-START
//          SCALAR("a single-quoted scalar",single-quoted)
//          DOCUMENT-START
//          SCALAR("a double-quoted scalar",double-quoted)
//          DOCUMENT-START
//          SCALAR("a literal scalar",literal)
//          DOCUMENT-START
//          SCALAR("a folded scalar",folded)
//          STREAM-END
//
// Now it's time to review collection-related tokens. We will start with
// flow collections:
//
//      FLOW-SEQUENCE-START
//      FLOW-SEQUENCE-END
//      FLOW-MAPPING-START
//      FLOW-MAPPING-END
//      FLOW-ENTRY
//      KEY
//      VALUE
//
// The tokens FLOW-SEQUENCE-START, FLOW-SEQUENCE-END, FLOW-MAPPING-START, and
// FLOW-MAPPING-END represent the indicators '[', ']', '{', and '}'
// correspondingly.  FLOW-ENTRY represent the ',' indicator.  Finally the
// indicators '?' and ':', which are used for denoting mapping keys and values,
// are represented by the KEY and VALUE tokens.
//
// The following examples show flow collections:
//
//      1. A flow sequence:
//
//          [item 1, item 2, item 3]
//
//      Tokens:
//
//          STREAM-START(utf-8)
//          FLOW-SEQUENCE-START
//          SCALAR("item 1",plain)
//          FLOW-ENTRY
//          SCALAR("item 2",plain)
//          FLOW-ENTRY
//          SCALAR("item 3",plain)
//          FLOW-SEQUENCE-END
//          STREAM-END
//
//      2. A flow mapping:
//
//          {
//              a simple key: a value,  # Note that the KEY token is produced.
//              ? a complex key: another value,
//          }
//
//      Tokens:
//
//          STREAM-START(utf-8)
//          FLOW-MAPPING-START
//          KEY
//          SCALAR("a simple key",plain)
//          VALUE
//          SCALAR("a value",plain)
//          FLOW-ENTRY
//          KEY
//          SCALAR("a complex key",plain)
//          VALUE
//          SCALAR("another value",plain)
//          FLOW-ENTRY
//          FLOW-MAPPING-END
//          STREAM-END
//
// A simple key is a key which is not denoted by the '?' indicator.  Note that
// the Scanner still produce the KEY token whenever it encounters a simple key.
//
// For scanning block collections, the following tokens are used (note that we
// repeat KEY and VALUE here):
//
//      BLOCK-SEQUENCE-START
//      BLOCK-MAPPING-START
//      BLOCK-END
//      BLOCK-ENTRY
//      KEY
//      VALUE
//
// The tokens BLOCK-SEQUENCE-START and BLOCK-MAPPING-START denote indentation
// increase that precedes a block collection (cf. the INDENT token in Python).
// The token BLOCK-END denote indentation decrease that ends a block collection
// (cf. the DEDENT token in Python).  However YAML has some syntax pecularities
// that makes detections of these tokens more complex.
//
// The tokens BLOCK-ENTRY, KEY, and VALUE are used to represent the indicators
// '-', '?', and ':' correspondingly.
//
// The following examples show how the tokens BLOCK-SEQUENCE-START,
// BLOCK-MAPPING-START, and BLOCK-END are emitted by the Scanner:
//
//      1. Block sequences:
//
//          - item 1
//          - item 2
//          -
//            - item 3.1
//            - item 3.2
//          -
//            key 1: value 1
//            key 2: value 2
//
//      Tokens:
//
//          STREAM-START(utf-8)
//          BLOCK-SEQUENCE-START
//          BLOCK-ENTRY
//          SCALAR("item 1",plain)
//          BLOCK-ENTRY
//          SCALAR("item 2",plain)
//          BLOCK-ENTRY
//          BLOCK-SEQUENCE-START
//          BLOCK-ENTRY
//          SCALAR("item 3.1",plain)
//          BLOCK-ENTRY
//          SCALAR("item 3.2",plain)
//          BLOCK-END
//          BLOCK-ENTRY
//          BLOCK-MAPPING-START
//          KEY
//          SCALAR("key 1",plain)
//          VALUE
//          SCALAR("value 1",plain)
//          KEY
//          SCALAR("key 2",plain)
//          VALUE
//          SCALAR("value 2",plain)
//          BLOCK-END
//          BLOCK-END
//          STREAM-END
//
//      2. Block mappings:
//
//          a simple key: a value   # The KEY token is produced here.
//          ? a complex key
//          : another value
//          a mapping:
//            key 1: value 1
//            key 2: value 2
//          a sequence:
//            - item 1
//            - item 2
//
//      Tokens:
//
//          STREAM-START(utf-8)
//          BLOCK-MAPPING-START
//          KEY
//          SCALAR("a simple key",plain)
//          VALUE
//          SCALAR("a value",plain)
//          KEY
//          SCALAR("a complex key",plain)
//          VALUE
//          SCALAR("another value",plain)
//          KEY
//          SCALAR("a mapping",plain)
//          BLOCK-MAPPING-START
//          KEY
//          SCALAR("key 1",plain)
//          VALUE
//          SCALAR("value 1",plain)
//          KEY
//          SCALAR("key 2",plain)
//          VALUE
//          SCALAR("value 2",plain)
//          BLOCK-END
//          KEY
//          SCALAR("a sequence",plain)
//          VALUE
//          BLOCK-SEQUENCE-START
//          BLOCK-ENTRY
//          SCALAR("item 1",plain)
//          BLOCK-ENTRY
//          SCALAR("item 2",plain)
//          BLOCK-END
//          BLOCK-END
//          STREAM-END
//
// YAML does not always require to start a new block collection from a new
// line.  If the current line contains only '-', '?', and ':' indicators, a new
// block collection may start at the current line.  The following examples
// illustrate this case:
//
//      1. Collections in a sequence:
//
//          - - item 1
//            - item 2
//          - key 1: value 1
//            key 2: value 2
//          - ? complex key
//            : complex value
//
//      Tokens:
//
//          STREAM-START(utf-8)
//          BLOCK-SEQUENCE-START
//          BLOCK-ENTRY
//          BLOCK-SEQUENCE-START
//          BLOCK-ENTRY
//          SCALAR("item 1",plain)
//          BLOCK-ENTRY
//          SCALAR("item 2",plain)
//          BLOCK-END
//          BLOCK-ENTRY
//          BLOCK-MAPPING-START
//          KEY
//          SCALAR("key 1",plain)
//          VALUE
//          SCALAR("value 1",plain)
//          KEY
//          SCALAR("key 2",plain)
//          VALUE
//          SCALAR("value 2",plain)
//          BLOCK-END
//          BLOCK-ENTRY
//          BLOCK-MAPPING-START
//          KEY
//          SCALAR("complex key")
//          VALUE
//          SCALAR("complex value")
//          BLOCK-END
//          BLOCK-END
//          STREAM-END
//
//      2. Collections in a mapping:
//
//          ? a sequence
//          : - item 1
//            - item 2
//          ? a mapping
//          : key 1: value 1
//            key 2: value 2
//
//      Tokens:
//
//          STREAM-START(utf-8)
//          BLOCK-MAPPING-START
//          KEY
//          SCALAR("a sequence",plain)
//          VALUE
//          BLOCK-SEQUENCE-START
//          BLOCK-ENTRY
//          SCALAR("item 1",plain)
//          BLOCK-ENTRY
//          SCALAR("item 2",plain)
//          BLOCK-END
//          KEY
//          SCALAR("a mapping",plain)
//          VALUE
//          BLOCK-MAPPING-START
//          KEY
//          SCALAR("key 1",plain)
//          VALUE
//          SCALAR("value 1",plain)
//          KEY
//          SCALAR("key 2",plain)
//          VALUE
//          SCALAR("value 2",plain)
//          BLOCK-END
//          BLOCK-END
//          STREAM-END
//
// YAML also permits non-indented sequences if they are included into a block
// mapping.  In this case, the token BLOCK-SEQUENCE-START is not produced:
//
//      key:
//      - item 1    # BLOCK-SEQUENCE-START is NOT produced here.
//      - item 2
//
// Tokens:
//
//      STREAM-START(utf-8)
//      BLOCK-MAPPING-START
//      KEY
//      SCALAR("key",plain)
//      VALUE
//      BLOCK-ENTRY
//      SCALAR("item 1",plain)
//      BLOCK-ENTRY
//      SCALAR("item 2",plain)
//      BLOCK-END
//

func (s *Session) insertToken(pos int, token *tok.Token) {
	// Check if we can move the queue at the beginning of the buffer.
	if s.tokensHead > 0 && len(s.tokens) == cap(s.tokens) {
		if s.tokensHead != len(s.tokens) {
			copy(s.tokens, s.tokens[s.tokensHead:])
		}
		s.tokens = s.tokens[:len(s.tokens)-s.tokensHead]
		s.tokensHead = 0
	}
	s.tokens = append(s.tokens, *token)
	if pos < 0 {
		return
	}
	copy(s.tokens[s.tokensHead+pos+1:], s.tokens[s.tokensHead+pos:])
	s.tokens[s.tokensHead+pos] = *token
}

// Advance the buffer pointer.
func (s *Session) skipChar() {
	if !tok.IsBlankAt(s.buffer, s.bufferPos) {
		s.newlines = 0
	}
	s.mark.Index++
	s.mark.Column++
	s.unread--
	s.bufferPos += tok.Width(s.buffer[s.bufferPos])
}

func (s *Session) skipLine() {
	if tok.IsCRLFAt(s.buffer, s.bufferPos) {
		s.mark.Index += 2
		s.mark.Column = 0
		s.mark.Line++
		s.unread -= 2
		s.bufferPos += 2
		s.newlines++
	} else if tok.IsBreakAt(s.buffer, s.bufferPos) {
		s.mark.Index++
		s.mark.Column = 0
		s.mark.Line++
		s.unread--
		s.bufferPos += tok.Width(s.buffer[s.bufferPos])
		s.newlines++
	}
}

// Copy a character onto dst and advance the scanner's read position.
func (s *Session) readChar(dst []byte) []byte {
	if !tok.IsBlankAt(s.buffer, s.bufferPos) {
		s.newlines = 0
	}
	w := tok.Width(s.buffer[s.bufferPos])
	if w == 0 {
		panic("invalid character sequence")
	}
	if len(dst) == 0 {
		dst = make([]byte, 0, 32)
	}
	if w == 1 && len(dst)+w <= cap(dst) {
		dst = dst[:len(dst)+1]
		dst[len(dst)-1] = s.buffer[s.bufferPos]
		s.bufferPos++
	} else {
		dst = append(dst, s.buffer[s.bufferPos:s.bufferPos+w]...)
		s.bufferPos += w
	}
	s.mark.Index++
	s.mark.Column++
	s.unread--
	return dst
}

// Copy a line break character onto dst and advance the scanner's read position.
func (s *Session) readLine(dst []byte) []byte {
	buf := s.buffer
	pos := s.bufferPos
	switch {
	case buf[pos] == '\r' && buf[pos+1] == '\n':
		// CR LF . LF
		dst = append(dst, '\n')
		s.bufferPos += 2
		s.mark.Index++
		s.unread--
	case buf[pos] == '\r' || buf[pos] == '\n':
		// CR|LF . LF
		dst = append(dst, '\n')
		s.bufferPos += 1
	case buf[pos] == '\xC2' && buf[pos+1] == '\x85':
		// NEL . LF
		dst = append(dst, '\n')
		s.bufferPos += 2
	case buf[pos] == '\xE2' && buf[pos+1] == '\x80' && (buf[pos+2] == '\xA8' || buf[pos+2] == '\xA9'):
		// LS|PS . LS|PS
		dst = append(dst, buf[pos:pos+3]...)
		s.bufferPos += 3
	default:
		return dst
	}
	s.mark.Index++
	s.mark.Column = 0
	s.mark.Line++
	s.unread--
	s.newlines++
	return dst
}

// Set the scanner error and return the error.
func (s *Session) scanError(context_mark tok.Mark, problem string) error {
	return buildParserError(tok.SCANNER_ERROR, problem, s.mark, context_mark, true)
}

// Ensure that the tokens queue contains at least one token which can be
// returned to the parser.
func (s *Session) fetchMoreTokens() error {
	// While we need more tokens to fetch, do it.
	for {
		// [Go] The comment parsing logic requires a lookahead of two tokens
		// so that foot comments may be parsed in time of associating them
		// with the tokens that are parsed before them, and also for line
		// comments to be transformed into head comments in some edge cases.
		if s.tokensHead < len(s.tokens)-2 {
			// If a potential simple key is at the head position, we need to fetch
			// the next token to disambiguate it.
			pending, ok := s.simpleKeys.byTokenNumber(s.tokensParsed)
			if !ok {
				break
			}
			valid, err := s.simpleKeyIsValid(pending)
			if err != nil {
				return err
			}
			if !valid {
				break
			}
		}
		// Fetch the next token.
		err := s.fetchNextToken()
		if err != nil {
			return err
		}
	}

	s.tokenAvailable = true
	return nil
}

// The dispatcher for token fetchers.
func (s *Session) fetchNextToken() (errOut error) {
	// Ensure that the buffer is initialized.
	if s.unread < 1 {
		err := s.updateBuffer(1)
		if err != nil {
			return err
		}
	}

	// Check if we just started scanning.  Fetch STREAM-START then.
	if !s.streamStartProduced {
		s.fetchStreamStart()
		return nil
	}

	scan_mark := s.mark

	// Eat whitespaces and comments until we reach the next token.
	err := s.scanToNextToken()
	if err != nil {
		return err
	}

	// [Go] While unrolling indents, transform the head comments of prior
	// indentation levels observed after scan_start into foot comments at
	// the respective indexes.

	// Check the indentation level against the current column.
	s.unrollIndent(s.mark.Column, scan_mark)

	// Ensure that the buffer contains at least 4 characters.  4 is the length
	// of the longest indicators ('--- ' and '... ').
	if s.unread < 4 {
		err = s.updateBuffer(4)
		if err != nil {
			return err
		}
	}
	// Is it the end of the stream?
	if tok.IsZeroAt(s.buffer, s.bufferPos) {
		return s.fetchStreamEnd()
	}

	// Is it a directive?
	if s.mark.Column == 0 && s.buffer[s.bufferPos] == '%' {
		return s.fetchDirective()
	}

	buf := s.buffer
	pos := s.bufferPos

	// Is it the document start indicator?
	if s.mark.Column == 0 && buf[pos] == '-' && buf[pos+1] == '-' && buf[pos+2] == '-' && tok.IsBlankZAt(buf, pos+3) {
		return s.fetchDocumentIndicator(tok.DOCUMENT_START_TOKEN)
	}

	// Is it the document end indicator?
	if s.mark.Column == 0 && buf[pos] == '.' && buf[pos+1] == '.' && buf[pos+2] == '.' && tok.IsBlankZAt(buf, pos+3) {
		return s.fetchDocumentIndicator(tok.DOCUMENT_END_TOKEN)
	}

	comment_mark := s.mark
	if len(s.tokens) > 0 && (s.flowLevel == 0 && buf[pos] == ':' || s.flowLevel > 0 && buf[pos] == ',') {
		// Associate any following comments with the prior token.
		comment_mark = s.tokens[len(s.tokens)-1].StartMark
	}
	defer func() {
		if errOut != nil {
			return
		}
		if len(s.tokens) > 0 && s.tokens[len(s.tokens)-1].Type == tok.BLOCK_ENTRY_TOKEN {
			// Sequence indicators alone have no line comments. It becomes
			// a head comment for whatever follows.
			return
		}
		errOut = s.scanLineComment(comment_mark)
	}()

	switch {
	case buf[pos] == '[':
		return s.fetchFlowCollectionStart(tok.FLOW_SEQUENCE_START_TOKEN)
	case s.buffer[s.bufferPos] == '{':
		return s.fetchFlowCollectionStart(tok.FLOW_MAPPING_START_TOKEN)
	case s.buffer[s.bufferPos] == ']':
		return s.fetchFlowCollectionEnd(tok.FLOW_SEQUENCE_END_TOKEN)
	case s.buffer[s.bufferPos] == '}':
		return s.fetchFlowCollectionEnd(tok.FLOW_MAPPING_END_TOKEN)
	case s.buffer[s.bufferPos] == ',':
		return s.fetchFlowEntry()
	case s.buffer[s.bufferPos] == '-' && tok.IsBlankZAt(s.buffer, s.bufferPos+1):
		return s.fetchBlockEntry()
	case s.buffer[s.bufferPos] == '?' && (s.flowLevel > 0 || tok.IsBlankZAt(s.buffer, s.bufferPos+1)):
		return s.fetchKey()
	case s.buffer[s.bufferPos] == ':' && (s.flowLevel > 0 || tok.IsBlankZAt(s.buffer, s.bufferPos+1)):
		return s.fetchValue()
	case s.buffer[s.bufferPos] == '*':
		return s.fetchAnchor(tok.ALIAS_TOKEN)
	case s.buffer[s.bufferPos] == '&':
		return s.fetchAnchor(tok.ANCHOR_TOKEN)
	case s.buffer[s.bufferPos] == '!':
		return s.fetchTag()
	case s.buffer[s.bufferPos] == '|' && s.flowLevel == 0:
		return s.fetchBlockScalar(true)
	case s.buffer[s.bufferPos] == '>' && s.flowLevel == 0:
		return s.fetchBlockScalar(false)
	case s.buffer[s.bufferPos] == '\'':
		return s.fetchFlowScalar(true)
	case s.buffer[s.bufferPos] == '"':
		return s.fetchFlowScalar(false)
	}
	// Is it a plain scalar?
	//
	// A plain scalar may start with any non-blank characters except
	//
	//      '-', '?', ':', ',', '[', ']', '{', '}',
	//      '#', '&', '*', '!', '|', '>', '\'', '\"',
	//      '%', '@', '`'.
	//
	// In the block context (and, for the '-' indicator, in the flow context
	// too), it may also start with the characters
	//
	//      '-', '?', ':'
	//
	// if it is followed by a non-space character.
	//
	// The last rule is more restrictive than the specification requires.
	// [Go] TODO Make this logic more reasonable.
	//switch s.buffer[s.buffer_pos] {
	//case '-', '?', ':', ',', '?', '-', ',', ':', ']', '[', '}', '{', '&', '#', '!', '*', '>', '|', '"', '\'', '@', '%', '-', '`':
	//}
	if !(tok.IsBlankZAt(s.buffer, s.bufferPos) || s.buffer[s.bufferPos] == '-' ||
		s.buffer[s.bufferPos] == '?' || s.buffer[s.bufferPos] == ':' ||
		s.buffer[s.bufferPos] == ',' || s.buffer[s.bufferPos] == '[' ||
		s.buffer[s.bufferPos] == ']' || s.buffer[s.bufferPos] == '{' ||
		s.buffer[s.bufferPos] == '}' || s.buffer[s.bufferPos] == '#' ||
		s.buffer[s.bufferPos] == '&' || s.buffer[s.bufferPos] == '*' ||
		s.buffer[s.bufferPos] == '!' || s.buffer[s.bufferPos] == '|' ||
		s.buffer[s.bufferPos] == '>' || s.buffer[s.bufferPos] == '\'' ||
		s.buffer[s.bufferPos] == '"' || s.buffer[s.bufferPos] == '%' ||
		s.buffer[s.bufferPos] == '@' || s.buffer[s.bufferPos] == '`') ||
		(s.buffer[s.bufferPos] == '-' && !tok.IsBlankAt(s.buffer, s.bufferPos+1)) ||
		(s.flowLevel == 0 &&
			(s.buffer[s.bufferPos] == '?' || s.buffer[s.bufferPos] == ':') &&
			!tok.IsBlankZAt(s.buffer, s.bufferPos+1)) {
		return s.fetchPlainScalar()
	}

	return s.scanError(s.mark, "found character that cannot start any token")
}

func (s *Session) simpleKeyIsValid(simple_key *tok.PossibleSimpleKey) (bool, error) {
	if !simple_key.Possible {
		return false, nil
	}

	// The 1.2 specification says:
	//
	//     "If the ? indicator is omitted, parsing needs to see past the
	//     implicit key to recognize it as such. To limit the amount of
	//     lookahead required, the “:” indicator must appear at most 1024
	//     Unicode characters beyond the start of the key. In addition, the key
	//     is restricted to a single line."
	//
	if simple_key.Mark.Line < s.mark.Line || simple_key.Mark.Index+1024 < s.mark.Index {
		// Check if the potential simple key to be removed is required.
		if simple_key.Required {
			return false, s.scanError(simple_key.Mark, "could not find expected ':'")
		}
		simple_key.Possible = false
		return false, nil
	}
	return true, nil
}

// Check if a simple key may start at the current position and add it if
// needed.
func (s *Session) saveSimpleKey() error {
	// A simple key is required at the current position if the scanner is in
	// the block context and the current column coincides with the indentation
	// level.

	required := s.flowLevel == 0 && s.indent == s.mark.Column

	//
	// If the current position may start a simple key, save it.
	//
	if s.simpleKeyAllowed {
		simple_key := tok.PossibleSimpleKey{
			Possible:    true,
			Required:    required,
			TokenNumber: s.tokensParsed + (len(s.tokens) - s.tokensHead),
			Mark:        s.mark,
		}

		err := s.removeSimpleKey()
		if err != nil {
			return err
		}
		s.simpleKeys.setTop(simple_key)
	}
	return nil
}

// Remove a potential simple key at the current flow level.
func (s *Session) removeSimpleKey() error {
	key := s.simpleKeys.top()
	if key.Possible {
		// If the key is required, it is an error.
		if key.Required {
			return s.scanError(key.Mark, "could not find expected ':'")
		}
		// Remove the key from the stack.
		key.Possible = false
		s.simpleKeys.forget(key)
	}
	return nil
}

// max_flow_level limits the flow_level
const max_flow_level = 10000

// Increase the flow level and resize the simple key list if needed.
func (s *Session) increaseFlowLevel() error {
	// Reset the simple key on the next level.
	s.simpleKeys.open(tok.PossibleSimpleKey{
		Possible:    false,
		Required:    false,
		TokenNumber: s.tokensParsed + (len(s.tokens) - s.tokensHead),
		Mark:        s.mark,
	})

	// Increase the flow level.
	s.flowLevel++
	if s.flowLevel > max_flow_level {
		return s.scanError(s.simpleKeys.top().Mark, fmt.Sprintf("exceeded max depth of %d", max_flow_level))
	}
	return nil
}

// Decrease the flow level.
func (s *Session) decreaseFlowLevel() {
	if s.flowLevel > 0 {
		s.flowLevel--
		s.simpleKeys.close()
	}
}

// max_indents limits the indents stack size
const max_indents = 10000

// Push the current indentation level to the stack and set the new level
// the current column is greater than the indentation level.  In this case,
// append or insert the specified token into the token queue.
func (s *Session) rollIndent(column, number int, typ tok.TokenType, mark tok.Mark) error {
	// In the flow context, do nothing.
	if s.flowLevel > 0 {
		return nil
	}

	if s.indent < column {
		// Push the current indentation level to the stack and set the new
		// indentation level.
		s.indents.push(s.indent)
		s.indent = column
		if s.indents.depth() > max_indents {
			return s.scanError(s.simpleKeys.top().Mark, fmt.Sprintf("exceeded max depth of %d", max_indents))
		}

		// Create a token and insert it into the queue.
		token := tok.Token{
			Type:       typ,
			StartMark: mark,
			EndMark:   mark,
		}
		if number > -1 {
			number -= s.tokensParsed
		}
		s.insertToken(number, &token)
	}
	return nil
}

// Pop indentation levels from the indents stack until the current level
// becomes less or equal to the column.  For each indentation level, append
// the BLOCK-END token.
func (s *Session) unrollIndent(column int, scan_mark tok.Mark) {
	// In the flow context, do nothing.
	if s.flowLevel > 0 {
		return
	}

	block_mark := scan_mark
	block_mark.Index--

	// Loop through the indentation levels in the stack.
	for s.indent > column {

		// [Go] Reposition the end token before potential following
		//      foot comments of parent blocks. For that, search
		//      backwards for recent comments that were at the same
		//      indent as the block that is ending now.
		stop_index := block_mark.Index
		for i := len(s.comments) - 1; i >= 0; i-- {
			comment := &s.comments[i]

			if comment.EndMark.Index < stop_index {
				// Don't go back beyond the start of the comment/whitespace scan, unless column < 0.
				// If requested indent column is < 0, then the document is over and everything else
				// is a foot anyway.
				break
			}
			if comment.StartMark.Column == s.indent+1 {
				// This is a good match. But maybe there's a former comment
				// at that same indent level, so keep searching.
				block_mark = comment.StartMark
			}

			// While the end of the former comment matches with
			// the start of the following one, we know there's
			// nothing in between and scanning is still safe.
			stop_index = comment.ScanMark.Index
		}

		// Create a token and append it to the queue.
		token := tok.Token{
			Type:       tok.BLOCK_END_TOKEN,
			StartMark: block_mark,
			EndMark:   block_mark,
		}
		s.insertToken(-1, &token)

		// Pop the indentation level.
		s.indent = s.indents.pop()
	}
}

// Initialize the scanner and produce the STREAM-START token.
func (s *Session) fetchStreamStart() {

	// Set the initial indentation.
	s.indent = -1

	// Initialize the simple key stack.
	s.simpleKeys.open(tok.PossibleSimpleKey{})

	// A simple key is allowed at the beginning of the stream.
	s.simpleKeyAllowed = true

	// We have started.
	s.streamStartProduced = true

	// Create the STREAM-START token and append it to the queue.
	token := tok.Token{
		Type:       tok.STREAM_START_TOKEN,
		StartMark: s.mark,
		EndMark:   s.mark,
		Encoding:   s.encoding,
	}
	s.insertToken(-1, &token)
}

// Produce the STREAM-END token and shut down the scanner.
func (s *Session) fetchStreamEnd() error {

	// Force new line.
	if s.mark.Column != 0 {
		s.mark.Column = 0
		s.mark.Line++
	}

	// Reset the indentation level.
	s.unrollIndent(-1, s.mark)

	// Reset simple keys.
	err := s.removeSimpleKey()
	if err != nil {
		return err
	}

	s.simpleKeyAllowed = false

	// Create the STREAM-END token and append it to the queue.
	token := tok.Token{
		Type:       tok.STREAM_END_TOKEN,
		StartMark: s.mark,
		EndMark:   s.mark,
	}
	s.insertToken(-1, &token)
	return nil
}

// Produce a VERSION-DIRECTIVE or TAG-DIRECTIVE token.
func (s *Session) fetchDirective() error {
	// Reset the indentation level.
	s.unrollIndent(-1, s.mark)

	// Reset simple keys.
	err := s.removeSimpleKey()
	if err != nil {
		return err
	}

	s.simpleKeyAllowed = false

	// Create the YAML-DIRECTIVE or TAG-DIRECTIVE token.
	token, err := s.scanDirective()
	if err != nil {
		return err
	}
	// Append the token to the queue.
	s.insertToken(-1, token)
	return nil
}

// Produce the DOCUMENT-START or DOCUMENT-END token.
func (s *Session) fetchDocumentIndicator(typ tok.TokenType) error {
	// Reset the indentation level.
	s.unrollIndent(-1, s.mark)

	// Reset simple keys.
	err := s.removeSimpleKey()
	if err != nil {
		return err
	}

	s.simpleKeyAllowed = false

	// Consume the token.
	start_mark := s.mark

	s.skipChar()
	s.skipChar()
	s.skipChar()

	end_mark := s.mark

	// Create the DOCUMENT-START or DOCUMENT-END token.
	token := tok.Token{
		Type:       typ,
		StartMark: start_mark,
		EndMark:   end_mark,
	}
	// Append the token to the queue.
	s.insertToken(-1, &token)
	return nil
}

// Produce the FLOW-SEQUENCE-START or FLOW-MAPPING-START token.
func (s *Session) fetchFlowCollectionStart(typ tok.TokenType) error {

	// The indicators '[' and '{' may start a simple key.
	err := s.saveSimpleKey()
	if err != nil {
		return err
	}

	// Increase the flow level.
	err = s.increaseFlowLevel()
	if err != nil {
		return err
	}

	// A simple key may follow the indicators '[' and '{'.
	s.simpleKeyAllowed = true

	// Consume the token.
	start_mark := s.mark
	s.skipChar()
	end_mark := s.mark

	// Create the FLOW-SEQUENCE-START of FLOW-MAPPING-START token.
	token := tok.Token{
		Type:       typ,
		StartMark: start_mark,
		EndMark:   end_mark,
	}
	// Append the token to the queue.
	s.insertToken(-1, &token)
	return nil
}

// Produce the FLOW-SEQUENCE-END or FLOW-MAPPING-END token.
func (s *Session) fetchFlowCollectionEnd(typ tok.TokenType) error {
	// Reset any potential simple key on the current flow level.
	err := s.removeSimpleKey()
	if err != nil {
		return err
	}

	// Decrease the flow level.
	s.decreaseFlowLevel()

	// No simple keys after the indicators ']' and '}'.
	s.simpleKeyAllowed = false

	// Consume the token.

	start_mark := s.mark
	s.skipChar()
	end_mark := s.mark

	// Create the FLOW-SEQUENCE-END of FLOW-MAPPING-END token.
	token := tok.Token{
		Type:       typ,
		StartMark: start_mark,
		EndMark:   end_mark,
	}
	// Append the token to the queue.
	s.insertToken(-1, &token)
	return nil
}

// Produce the FLOW-ENTRY token.
func (s *Session) fetchFlowEntry() error {
	// Reset any potential simple keys on the current flow level.
	err := s.removeSimpleKey()
	if err != nil {
		return err
	}

	// Simple keys are allowed after ','.
	s.simpleKeyAllowed = true

	// Consume the token.
	start_mark := s.mark
	s.skipChar()
	end_mark := s.mark

	// Create the FLOW-ENTRY token and append it to the queue.
	token := tok.Token{
		Type:       tok.FLOW_ENTRY_TOKEN,
		StartMark: start_mark,
		EndMark:   end_mark,
	}
	s.insertToken(-1, &token)
	return nil
}

// Produce the BLOCK-ENTRY token.
func (s *Session) fetchBlockEntry() error {
	// Check if the scanner is in the block context.
	if s.flowLevel == 0 {
		// Check if we are allowed to start a new entry.
		if !s.simpleKeyAllowed {
			return s.scanError(s.mark, "block sequence entries are not allowed in this context")
		}
		// Add the BLOCK-SEQUENCE-START token if needed.
		err := s.rollIndent(s.mark.Column, -1, tok.BLOCK_SEQUENCE_START_TOKEN, s.mark)
		if err != nil {
			return err
		}
	}

	// Reset any potential simple keys on the current flow level.
	err := s.removeSimpleKey()
	if err != nil {
		return err
	}

	// Simple keys are allowed after '-'.
	s.simpleKeyAllowed = true

	// Consume the token.
	start_mark := s.mark
	s.skipChar()
	end_mark := s.mark

	// Create the BLOCK-ENTRY token and append it to the queue.
	token := tok.Token{
		Type:       tok.BLOCK_ENTRY_TOKEN,
		StartMark: start_mark,
		EndMark:   end_mark,
	}
	s.insertToken(-1, &token)
	return nil
}

// Produce the KEY token.
func (s *Session) fetchKey() error {

	// In the block context, additional checks are required.
	if s.flowLevel == 0 {
		// Check if we are allowed to start a new key (not nessesary simple).
		if !s.simpleKeyAllowed {
			return s.scanError(s.mark, "mapping keys are not allowed in this context")
		}
		// Add the BLOCK-MAPPING-START token if needed.
		err := s.rollIndent(s.mark.Column, -1, tok.BLOCK_MAPPING_START_TOKEN, s.mark)
		if err != nil {
			return err
		}
	}

	// Reset any potential simple keys on the current flow level.
	err := s.removeSimpleKey()
	if err != nil {
		return err
	}

	// Simple keys are allowed after '?' in the block context.
	s.simpleKeyAllowed = s.flowLevel == 0

	// Consume the token.
	start_mark := s.mark
	s.skipChar()
	end_mark := s.mark

	// Create the KEY token and append it to the queue.
	token := tok.Token{
		Type:       tok.KEY_TOKEN,
		StartMark: start_mark,
		EndMark:   end_mark,
	}
	s.insertToken(-1, &token)
	return nil
}

// Produce the VALUE token.
func (s *Session) fetchValue() error {

	simple_key := s.simpleKeys.top()

	// Have we found a simple key?
	valid, err := s.simpleKeyIsValid(simple_key)
	if err != nil {
		return err
	}
	if valid {

		// Create the KEY token and insert it into the queue.
		token := tok.Token{
			Type:       tok.KEY_TOKEN,
			StartMark: simple_key.Mark,
			EndMark:   simple_key.Mark,
		}
		s.insertToken(simple_key.TokenNumber-s.tokensParsed, &token)

		// In the block context, we may need to add the BLOCK-MAPPING-START token.
		err = s.rollIndent(simple_key.Mark.Column, simple_key.TokenNumber, tok.BLOCK_MAPPING_START_TOKEN, simple_key.Mark)
		if err != nil {
			return err
		}

		// Remove the simple key.
		simple_key.Possible = false
		s.simpleKeys.forget(simple_key)

		// A simple key cannot follow another simple key.
		s.simpleKeyAllowed = false

	} else {
		// The ':' indicator follows a complex key.

		// In the block context, extra checks are required.
		if s.flowLevel == 0 {

			// Check if we are allowed to start a complex value.
			if !s.simpleKeyAllowed {
				return s.scanError(s.mark, "mapping values are not allowed in this context")
			}

			// Add the BLOCK-MAPPING-START token if needed.
			err = s.rollIndent(s.mark.Column, -1, tok.BLOCK_MAPPING_START_TOKEN, s.mark)
			if err != nil {
				return err
			}
		}

		// Simple keys after ':' are allowed in the block context.
		s.simpleKeyAllowed = s.flowLevel == 0
	}

	// Consume the token.
	start_mark := s.mark
	s.skipChar()
	end_mark := s.mark

	// Create the VALUE token and append it to the queue.
	token := tok.Token{
		Type:       tok.VALUE_TOKEN,
		StartMark: start_mark,
		EndMark:   end_mark,
	}
	s.insertToken(-1, &token)
	return nil
}

// Produce the ALIAS or ANCHOR token.
func (s *Session) fetchAnchor(typ tok.TokenType) error {
	// An anchor or an alias could be a simple key.
	err := s.saveSimpleKey()
	if err != nil {
		return err
	}

	// A simple key cannot follow an anchor or an alias.
	s.simpleKeyAllowed = false

	// Create the ALIAS or ANCHOR token and append it to the queue.
	token, err := s.scanAnchor(typ)
	if err != nil {
		return err
	}
	s.insertToken(-1, token)
	return nil
}

// Produce the TAG token.
func (s *Session) fetchTag() error {
	// A tag could be a simple key.
	err := s.saveSimpleKey()
	if err != nil {
		return err
	}

	// A simple key cannot follow a tag.
	s.simpleKeyAllowed = false

	// Create the TAG token and append it to the queue.
	token, err := s.scanTag()
	if err != nil {
		return err
	}
	s.insertToken(-1, token)
	return nil
}

// Produce the SCALAR(...,literal) or SCALAR(...,folded) tokens.
func (s *Session) fetchBlockScalar(literal bool) error {
	// Remove any potential simple keys.
	err := s.removeSimpleKey()
	if err != nil {
		return err
	}

	// A simple key may follow a block scalar.
	s.simpleKeyAllowed = true

	// Create the SCALAR token and append it to the queue.
	token, err := s.scanBlockScalar(literal)
	if err != nil {
		return err
	}
	s.insertToken(-1, token)
	return nil
}

// Produce the SCALAR(...,single-quoted) or SCALAR(...,double-quoted) tokens.
func (s *Session) fetchFlowScalar(single bool) error {
	// A quoted scalar could be a simple key.
	err := s.saveSimpleKey()
	if err != nil {
		return err
	}

	// A simple key cannot follow a flow scalar.
	s.simpleKeyAllowed = false

	// Create the SCALAR token and append it to the queue.
	token, err := s.scanFlowScalar(single)
	if err != nil {
		return err
	}
	s.insertToken(-1, token)
	return nil
}

// Produce the SCALAR(...,plain) token.
func (s *Session) fetchPlainScalar() error {
	// A plain scalar could be a simple key.
	err := s.saveSimpleKey()
	if err != nil {
		return err
	}

	// A simple key cannot follow a plain scalar.
	s.simpleKeyAllowed = false

	// Create the SCALAR token and append it to the queue.
	token, err := s.scanPlainScalar()
	if err != nil {
		return err
	}
	s.insertToken(-1, token)
	return nil
}

// Eat whitespaces and comments until the next token is found.
func (s *Session) scanToNextToken() error {

	scan_mark := s.mark

	// Until the next token is not found.
	for {
		// Allow the BOM mark to start a line.
		if s.unread < 1 {
			err := s.updateBuffer(1)
			if err != nil {
				return err
			}
		}
		if s.mark.Column == 0 && tok.IsBOM(s.buffer[s.bufferPos:]) {
			s.skipChar()
		}

		// Eat whitespaces.
		// Tabs are allowed:
		//  - in the flow context
		//  - in the block context, but not at the beginning of the line or
		//  after '-', '?', or ':' (complex value).
		if s.unread < 1 {
			err := s.updateBuffer(1)
			if err != nil {
				return err
			}
		}

		for s.buffer[s.bufferPos] == ' ' || ((s.flowLevel > 0 || !s.simpleKeyAllowed) && s.buffer[s.bufferPos] == '\t') {
			s.skipChar()
			if s.unread < 1 {
				err := s.updateBuffer(1)
				if err != nil {
					return err
				}
			}
		}

		// Check if we just had a line comment under a sequence entry that
		// looks more like a header to the following content. Similar to this:
		//
		// - # The comment
		//   - Some data
		//
		// If so, transform the line comment to a head comment and reposition.
		if len(s.comments) > 0 && len(s.tokens) > 1 {
			tokenA := s.tokens[len(s.tokens)-2]
			tokenB := s.tokens[len(s.tokens)-1]
			comment := &s.comments[len(s.comments)-1]
			if tokenA.Type == tok.BLOCK_SEQUENCE_START_TOKEN && tokenB.Type == tok.BLOCK_ENTRY_TOKEN && len(comment.Line) > 0 && !tok.IsBreakAt(s.buffer, s.bufferPos) {
				// If it was in the prior line, reposition so it becomes a
				// header of the follow up token. Otherwise, keep it in place
				// so it becomes a header of the former.
				comment.Head = comment.Line
				comment.Line = nil
				if comment.StartMark.Line == s.mark.Line-1 {
					comment.TokenMark = s.mark
				}
			}
		}

		// Eat a comment until a line break.
		if s.buffer[s.bufferPos] == '#' {
			err := s.scanComments(scan_mark)
			if err != nil {
				return err
			}
		}

		// If it is a line break, eat it.
		if tok.IsBreakAt(s.buffer, s.bufferPos) {
			if s.unread < 2 {
				err := s.updateBuffer(2)
				if err != nil {
					return err
				}
			}
			s.skipLine()

			// In the block context, a new line may start a simple key.
			if s.flowLevel == 0 {
				s.simpleKeyAllowed = true
			}
		} else {
			break // We have found a token.
		}
	}

	return nil
}

// Scan a YAML-DIRECTIVE or TAG-DIRECTIVE token.
//
// Scope:
//
//	%YAML    1.1    # a comment \n
//	^^^^^^^^^^^^^^^^^^^^^^^^^^^^^^
//	%TAG    !yaml!  tag:yaml.org,2002:  \n
//	^^^^^^^^^^^^^^^^^^^^^^^^^^^^^^^^^^^^^^
func (s *Session) scanDirective() (*tok.Token, error) {
	// Eat '%'.
	start_mark := s.mark
	s.skipChar()

	// Scan the directive name.
	name, err := s.scanDirectiveName(start_mark)
	if err != nil {
		return nil, err
	}

	var token tok.Token

	// Is it a YAML directive?
	if bytes.Equal(name, []byte("YAML")) {
		// Scan the VERSION directive value.
		var major, minor int8
		major, minor, err = s.scanVersionDirectiveValue(start_mark)
		if err != nil {
			return nil, err
		}
		end_mark := s.mark

		// Create a VERSION-DIRECTIVE token.
		token = tok.Token{
			Type:       tok.VERSION_DIRECTIVE_TOKEN,
			StartMark: start_mark,
			EndMark:   end_mark,
			Major:      major,
			Minor:      minor,
		}

		// Is it a TAG directive?
	} else if bytes.Equal(name, []byte("TAG")) {
		// Scan the TAG directive value.
		var handle, prefix []byte
		handle, prefix, err = s.scanTagDirectiveValue(start_mark)
		if err != nil {
			return nil, err
		}
		end_mark := s.mark

		// Create a TAG-DIRECTIVE token.
		token = tok.Token{
			Type:       tok.TAG_DIRECTIVE_TOKEN,
			StartMark: start_mark,
			EndMark:   end_mark,
			Value:      handle,
			Prefix:     prefix,
		}

		// Unknown directive.
	} else {
		return nil, s.scanError(start_mark, "found unknown directive name")
	}

	// Eat the rest of the line including any comments.
	if s.unread < 1 {
		err = s.updateBuffer(1)
		if err != nil {
			return nil, err
		}
	}

	for tok.IsBlankAt(s.buffer, s.bufferPos) {
		s.skipChar()
		if s.unread < 1 {
			err = s.updateBuffer(1)
			if err != nil {
				return nil, err
			}
		}
	}

	if s.buffer[s.bufferPos] == '#' {
		// [Go] Discard this inline comment for the time being.
		//if !s.scanLineComment(start_mark) {
		//	return false
		//}
		for !tok.IsBreakZAt(s.buffer, s.bufferPos) {
			s.skipChar()
			if s.unread < 1 {
				err = s.updateBuffer(1)
				if err != nil {
					return nil, err
				}
			}
		}
	}

	// Check if we are at the end of the line.
	if !tok.IsBreakZAt(s.buffer, s.bufferPos) {
		return nil, s.scanError(start_mark, "did not find expected comment or line break")
	}

	// Eat a line break.
	if tok.IsBreakAt(s.buffer, s.bufferPos) {
		if s.unread < 2 {
			err = s.updateBuffer(1)
			if err != nil {
				return nil, err
			}
		}
		s.skipLine()
	}

	return &token, nil
}

// Scan the directive name.
//
// Scope:
//
//	%YAML   1.1     # a comment \n
//	 ^^^^
//	%TAG    !yaml!  tag:yaml.org,2002:  \n
//	 ^^^
func (s *Session) scanDirectiveName(start_mark tok.Mark) ([]byte, error) {
	// Consume the directive name.
	if s.unread < 1 {
		err := s.updateBuffer(1)
		if err != nil {
			return nil, err
		}
	}

	var name []byte
	for tok.IsAlphaAt(s.buffer, s.bufferPos) {
		name = s.readChar(name)
		if s.unread < 1 {
			err := s.updateBuffer(1)
			if err != nil {
				return nil, err
			}
		}
	}

	// Check if the name is empty.
	if len(name) == 0 {
		return nil, s.scanError(start_mark, "could not find expected directive name")
	}

	// Check for an blank character after the name.
	if !tok.IsBlankZAt(s.buffer, s.bufferPos) {
		return nil, s.scanError(start_mark, "found unexpected non-alphabetical character")
	}
	return name, nil
}

// Scan the value of VERSION-DIRECTIVE.
//
// Scope:
//
//	%YAML   1.1     # a comment \n
//	     ^^^^^^
func (s *Session) scanVersionDirectiveValue(start_mark tok.Mark) (major, minor int8, _ error) {
	// Eat whitespaces.
	if s.unread < 1 {
		err := s.updateBuffer(1)
		if err != nil {
			return 0, 0, err
		}
	}
	for tok.IsBlankAt(s.buffer, s.bufferPos) {
		s.skipChar()
		if s.unread < 1 {
			err := s.updateBuffer(1)
			if err != nil {
				return 0, 0, err
			}
		}
	}

	// Consume the major version number.
	major, err := s.scanVersionDirectiveNumber(start_mark)
	if err != nil {
		return 0, 0, err
	}

	// Eat '.'.
	if s.buffer[s.bufferPos] != '.' {
		return 0, 0, s.scanError(start_mark, "did not find expected digit or '.' character")
	}

	s.skipChar()

	// Consume the minor version number.
	minor, err = s.scanVersionDirectiveNumber(start_mark)
	if err != nil {
		return 0, 0, err
	}
	return major, minor, nil
}

const max_number_length = 2

// Scan the version number of VERSION-DIRECTIVE.
//
// Scope:
//
//	%YAML   1.1     # a comment \n
//	        ^
//	%YAML   1.1     # a comment \n
//	          ^
func (s *Session) scanVersionDirectiveNumber(start_mark tok.Mark) (int8, error) {

	// Repeat while the next character is digit.
	if s.unread < 1 {
		err := s.updateBuffer(1)
		if err != nil {
			return 0, err
		}
	}
	var value, length int8
	for tok.IsDigitAt(s.buffer, s.bufferPos) {
		// Check if the number is too long.
		length++
		if length > max_number_length {
			return 0, s.scanError(start_mark, "found extremely long version number")
		}
		value = value*10 + int8(tok.DigitValue(s.buffer, s.bufferPos))
		s.skipChar()
		if s.unread < 1 {
			err := s.updateBuffer(1)
			if err != nil {
				return 0, err
			}
		}
	}

	// Check if the number was present.
	if length == 0 {
		return 0, s.scanError(start_mark, "did not find expected version number")
	}
	return value, nil
}

// Scan the value of a TAG-DIRECTIVE token.
//
// Scope:
//
//	%TAG    !yaml!  tag:yaml.org,2002:  \n
//	    ^^^^^^^^^^^^^^^^^^^^^^^^^^^^^^
func (s *Session) scanTagDirectiveValue(start_mark tok.Mark) (handle, prefix []byte, _ error) {
	var handle_value, prefix_value []byte

	// Eat whitespaces.
	if s.unread < 1 {
		err := s.updateBuffer(1)
		if err != nil {
			return nil, nil, err
		}
	}

	for tok.IsBlankAt(s.buffer, s.bufferPos) {
		s.skipChar()
		if s.unread < 1 {
			err := s.updateBuffer(1)
			if err != nil {
				return nil, nil, err
			}
		}
	}

	// Scan a handle.
	err := s.scanTagHandle(true, start_mark, &handle_value)
	if err != nil {
		return nil, nil, err
	}

	// expect a whitespace.
	if s.unread < 1 {
		err = s.updateBuffer(1)
		if err != nil {
			return nil, nil, err
		}
	}
	if !tok.IsBlankAt(s.buffer, s.bufferPos) {
		return nil, nil, s.scanError(start_mark, "did not find expected whitespace")
	}

	// Eat whitespaces.
	for tok.IsBlankAt(s.buffer, s.bufferPos) {
		s.skipChar()
		if s.unread < 1 {
			err = s.updateBuffer(1)
			if err != nil {
				return nil, nil, err
			}
		}
	}

	// Scan a prefix.
	err = s.scanTagURI(true, nil, start_mark, &prefix_value)
	if err != nil {
		return nil, nil, err
	}

	// expect a whitespace or line break.
	if s.unread < 1 {
		err = s.updateBuffer(1)
		if err != nil {
			return nil, nil, err
		}
	}
	if !tok.IsBlankZAt(s.buffer, s.bufferPos) {
		return nil, nil, s.scanError(start_mark, "did not find expected whitespace or line break")

	}

	return handle_value, prefix_value, nil
}

func (s *Session) scanAnchor(typ tok.TokenType) (*tok.Token, error) {
	var value []byte

	// Eat the indicator character.
	start_mark := s.mark
	s.skipChar()

	// Consume the value.
	if s.unread < 1 {
		err := s.updateBuffer(1)
		if err != nil {
			return nil, err
		}
	}

	for tok.IsAlphaAt(s.buffer, s.bufferPos) {
		value = s.readChar(value)
		if s.unread < 1 {
			err := s.updateBuffer(1)
			if err != nil {
				return nil, err
			}
		}
	}

	end_mark := s.mark

	/*
	 * Check if length of the anchor is greater than 0 and it is followed by
	 * a whitespace character or one of the indicators:
	 *
	 *      '?', ':', ',', ']', '}', '%', '@', '`'.
	 */

	if len(value) == 0 ||
		!(tok.IsBlankZAt(s.buffer, s.bufferPos) || s.buffer[s.bufferPos] == '?' ||
			s.buffer[s.bufferPos] == ':' || s.buffer[s.bufferPos] == ',' ||
			s.buffer[s.bufferPos] == ']' || s.buffer[s.bufferPos] == '}' ||
			s.buffer[s.bufferPos] == '%' || s.buffer[s.bufferPos] == '@' ||
			s.buffer[s.bufferPos] == '`') {
		return nil, s.scanError(start_mark, "did not find expected alphabetic or numeric character")
	}

	// Create a token.
	token := tok.Token{
		Type:      typ,
		StartMark: start_mark,
		EndMark:   end_mark,
		Value:     value,
	}

	return &token, nil
}

/*
 * Scan a TAG token.
 */

func (s *Session) scanTag() (*tok.Token, error) {
	var handle, suffix []byte

	start_mark := s.mark

	// Check if the tag is in the canonical form.
	if s.unread < 2 {
		err := s.updateBuffer(2)
		if err != nil {
			return nil, err
		}
	}

	if s.buffer[s.bufferPos+1] == '<' {
		// Keep the handle as ''

		// Eat '!<'
		s.skipChar()
		s.skipChar()

		// Consume the tag value.
		err := s.scanTagURI(false, nil, start_mark, &suffix)
		if err != nil {
			return nil, err
		}

		// Check for '>' and eat it.
		if s.buffer[s.bufferPos] != '>' {
			return nil, s.scanError(start_mark, "did not find the expected '>'")
		}

		s.skipChar()
	} else {
		// The tag has either the '!suffix' or the '!handle!suffix' form.

		// First, try to scan a handle.
		err := s.scanTagHandle(false, start_mark, &handle)
		if err != nil {
			return nil, err
		}

		// Check if it is, indeed, handle.
		if handle[0] == '!' && len(handle) > 1 && handle[len(handle)-1] == '!' {
			// Scan the suffix now.
			err = s.scanTagURI(false, nil, start_mark, &suffix)
			if err != nil {
				return nil, err
			}
		} else {
			// It wasn't a handle after all.  Scan the rest of the tag.
			err = s.scanTagURI(false, handle, start_mark, &suffix)
			if err != nil {
				return nil, err
			}

			// Set the handle to '!'.
			handle = []byte{'!'}

			// A special case: the '!' tag.  Set the handle to '' and the
			// suffix to '!'.
			if len(suffix) == 0 {
				handle, suffix = suffix, handle
			}
		}
	}

	// Check the character which ends the tag.
	if s.unread < 1 {
		err := s.updateBuffer(1)
		if err != nil {
			return nil, err
		}
	}
	if !tok.IsBlankZAt(s.buffer, s.bufferPos) {
		return nil, s.scanError(start_mark, "did not find expected whitespace or line break")
	}

	end_mark := s.mark

	// Create a token.
	token := tok.Token{
		Type:       tok.TAG_TOKEN,
		StartMark: start_mark,
		EndMark:   end_mark,
		Value:      handle,
		Suffix:     suffix,
	}
	return &token, nil
}

// Scan a tag handle.
func (s *Session) scanTagHandle(directive bool, start_mark tok.Mark, handle *[]byte) error {
	// Check the initial '!' character.
	if s.unread < 1 {
		err := s.updateBuffer(1)
		if err != nil {
			return err
		}
	}
	if s.buffer[s.bufferPos] != '!' {
		return s.scanError(start_mark, "did not find expected '!'")
	}

	var value []byte

	// Copy the '!' character.
	value = s.readChar(value)

	// Copy all subsequent alphabetical and numerical characters.
	if s.unread < 1 {
		err := s.updateBuffer(1)
		if err != nil {
			return err
		}
	}
	for tok.IsAlphaAt(s.buffer, s.bufferPos) {
		value = s.readChar(value)
		if s.unread < 1 {
			err := s.updateBuffer(1)
			if err != nil {
				return err
			}
		}
	}

	// Check if the trailing character is '!' and copy it.
	if s.buffer[s.bufferPos] == '!' {
		value = s.readChar(value)
	} else {
		// It's either the '!' tag or not really a tag handle.  If it's a %TAG
		// directive, it's an error.  If it's a tag token, it must be a part of URI.
		if directive && string(value) != "!" {
			return s.scanError(start_mark, "did not find expected '!'")
		}
	}

	*handle = value
	return nil
}

// Scan a tag.
func (s *Session) scanTagURI(directive bool, head []byte, start_mark tok.Mark, uri *[]byte) error {
	//size_t length = head ? strlen((char *)head) : 0
	var value []byte
	hasTag := len(head) > 0

	// Copy the head if needed.
	//
	// Note that we don't copy the leading '!' character.
	if len(head) > 1 {
		value = append(value, head[1:]...)
	}

	// Scan the tag.
	if s.unread < 1 {
		err := s.updateBuffer(1)
		if err != nil {
			return err
		}
	}

	// The set of characters that may appear in URI is as follows:
	//
	//      '0'-'9', 'A'-'Z', 'a'-'z', '_', '-', ';', '/', '?', ':', '@', '&',
	//      '=', '+', '$', ',', '.', '!', '~', '*', '\'', '(', ')', '[', ']',
	//      '%'.
	// [Go] TODO Convert this into more reasonable logic.
	for tok.IsAlphaAt(s.buffer, s.bufferPos) || s.buffer[s.bufferPos] == ';' ||
		s.buffer[s.bufferPos] == '/' || s.buffer[s.bufferPos] == '?' ||
		s.buffer[s.bufferPos] == ':' || s.buffer[s.bufferPos] == '@' ||
		s.buffer[s.bufferPos] == '&' || s.buffer[s.bufferPos] == '=' ||
		s.buffer[s.bufferPos] == '+' || s.buffer[s.bufferPos] == '$' ||
		s.buffer[s.bufferPos] == ',' || s.buffer[s.bufferPos] == '.' ||
		s.buffer[s.bufferPos] == '!' || s.buffer[s.bufferPos] == '~' ||
		s.buffer[s.bufferPos] == '*' || s.buffer[s.bufferPos] == '\'' ||
		s.buffer[s.bufferPos] == '(' || s.buffer[s.bufferPos] == ')' ||
		s.buffer[s.bufferPos] == '[' || s.buffer[s.bufferPos] == ']' ||
		s.buffer[s.bufferPos] == '%' {
		// Check if it is a URI-escape sequence.
		if s.buffer[s.bufferPos] == '%' {
			err := s.scanURIEscapes(directive, start_mark, &value)
			if err != nil {
				return err
			}
		} else {
			value = s.readChar(value)
		}
		if s.unread < 1 {
			err := s.updateBuffer(1)
			if err != nil {
				return err
			}
		}
		hasTag = true
	}

	if !hasTag {
		return s.scanError(start_mark, "did not find expected tag URI")
	}
	*uri = value
	return nil
}

// Decode an URI-escape sequence corresponding to a single UTF-8 character.
func (s *Session) scanURIEscapes(directive bool, start_mark tok.Mark, out *[]byte) error {

	// Decode the required number of characters.
	w := 1024
	for w > 0 {
		// Check for a URI-escaped octet.
		if s.unread < 3 {
			err := s.updateBuffer(3)
			if err != nil {
				return err
			}
		}

		if !(s.buffer[s.bufferPos] == '%' &&
			tok.IsHexAt(s.buffer, s.bufferPos+1) &&
			tok.IsHexAt(s.buffer, s.bufferPos+2)) {
			return s.scanError(start_mark, "did not find URI escaped octet")
		}

		// Get the octet.
		octet := byte((tok.HexValue(s.buffer, s.bufferPos+1) << 4) + tok.HexValue(s.buffer, s.bufferPos+2))

		// If it is the leading octet, determine the length of the UTF-8 sequence.
		if w == 1024 {
			w = tok.Width(octet)
			if w == 0 {
				return s.scanError(start_mark, "found an incorrect leading UTF-8 octet")
			}
		} else {
			// Check if the trailing octet is correct.
			if octet&0xC0 != 0x80 {
				return s.scanError(start_mark, "found an incorrect trailing UTF-8 octet")
			}
		}

		// Copy the octet and move the pointers.
		*out = append(*out, octet)
		s.skipChar()
		s.skipChar()
		s.skipChar()
		w--
	}
	return nil
}

// Scan a block scalar.
func (s *Session) scanBlockScalar(literal bool) (*tok.Token, error) {
	// Eat the indicator '|' or '>'.
	start_mark := s.mark
	s.skipChar()

	// Scan the additional block scalar indicators.
	if s.unread < 1 {
		err := s.updateBuffer(1)
		if err != nil {
			return nil, err
		}
	}

	// Check for a chomping indicator.
	var chomping, increment int
	if s.buffer[s.bufferPos] == '+' || s.buffer[s.bufferPos] == '-' {
		// Set the chomping method and eat the indicator.
		if s.buffer[s.bufferPos] == '+' {
			chomping = +1
		} else {
			chomping = -1
		}
		s.skipChar()

		// Check for an indentation indicator.
		if s.unread < 1 {
			err := s.updateBuffer(1)
			if err != nil {
				return nil, err
			}
		}
		if tok.IsDigitAt(s.buffer, s.bufferPos) {
			// Check that the indentation is greater than 0.
			if s.buffer[s.bufferPos] == '0' {
				return nil, s.scanError(start_mark, "found an indentation indicator equal to 0")
			}

			// Get the indentation level and eat the indicator.
			increment = tok.DigitValue(s.buffer, s.bufferPos)
			s.skipChar()
		}

	} else if tok.IsDigitAt(s.buffer, s.bufferPos) {
		// Do the same as above, but in the opposite order.

		if s.buffer[s.bufferPos] == '0' {
			return nil, s.scanError(start_mark, "found an indentation indicator equal to 0")
		}
		increment = tok.DigitValue(s.buffer, s.bufferPos)
		s.skipChar()

		if s.unread < 1 {
			err := s.updateBuffer(1)
			if err != nil {
				return nil, err
			}
		}
		if s.buffer[s.bufferPos] == '+' || s.buffer[s.bufferPos] == '-' {
			if s.buffer[s.bufferPos] == '+' {
				chomping = +1
			} else {
				chomping = -1
			}
			s.skipChar()
		}
	}

	// Eat whitespaces and comments to the end of the line.
	if s.unread < 1 {
		err := s.updateBuffer(1)
		if err != nil {
			return nil, err
		}
	}
	for tok.IsBlankAt(s.buffer, s.bufferPos) {
		s.skipChar()
		if s.unread < 1 {
			err := s.updateBuffer(1)
			if err != nil {
				return nil, err
			}
		}
	}
	if s.buffer[s.bufferPos] == '#' {
		err := s.scanLineComment(start_mark)
		if err != nil {
			return nil, err
		}
		for !tok.IsBreakZAt(s.buffer, s.bufferPos) {
			s.skipChar()
			if s.unread < 1 {
				err = s.updateBuffer(1)
				if err != nil {
					return nil, err
				}
			}
		}
	}

	// Check if we are at the end of the line.
	if !tok.IsBreakZAt(s.buffer, s.bufferPos) {
		return nil, s.scanError(start_mark, "did not find expected comment or line break")

	}

	// Eat a line break.
	if tok.IsBreakAt(s.buffer, s.bufferPos) {
		if s.unread < 2 {
			err := s.updateBuffer(2)
			if err != nil {
				return nil, err
			}
		}
		s.skipLine()
	}

	end_mark := s.mark

	// Set the indentation level if it was specified.
	var indent int
	if increment > 0 {
		if s.indent >= 0 {
			indent = s.indent + increment
		} else {
			indent = increment
		}
	}

	// Scan the leading line breaks and determine the indentation level if needed.
	var value, leading_break, trailing_breaks []byte
	err := s.scanBlockScalarBreaks(&indent, &trailing_breaks, start_mark, &end_mark)
	if err != nil {
		return nil, err
	}

	// Scan the block scalar content.
	if s.unread < 1 {
		err = s.updateBuffer(1)
		if err != nil {
			return nil, err
		}
	}
	var leading_blank, trailing_blank bool
	for s.mark.Column == indent && !tok.IsZeroAt(s.buffer, s.bufferPos) {
		// We are at the beginning of a non-empty line.

		// Is it a trailing whitespace?
		trailing_blank = tok.IsBlankAt(s.buffer, s.bufferPos)

		// Check if we need to fold the leading line break.
		if !literal && !leading_blank && !trailing_blank && len(leading_break) > 0 && leading_break[0] == '\n' {
			// Do we need to join the lines by space?
			if len(trailing_breaks) == 0 {
				value = append(value, ' ')
			}
		} else {
			value = append(value, leading_break...)
		}
		leading_break = leading_break[:0]

		// Append the remaining line breaks.
		value = append(value, trailing_breaks...)
		trailing_breaks = trailing_breaks[:0]

		// Is it a leading whitespace?
		leading_blank = tok.IsBlankAt(s.buffer, s.bufferPos)

		// Consume the current line.
		for !tok.IsBreakZAt(s.buffer, s.bufferPos) {
			value = s.readChar(value)
			if s.unread < 1 {
				err = s.updateBuffer(1)
				if err != nil {
					return nil, err
				}
			}
		}

		// Consume the line break.
		if s.unread < 2 {
			err = s.updateBuffer(2)
			if err != nil {
				return nil, err
			}
		}

		leading_break = s.readLine(leading_break)

		// Eat the following indentation spaces and line breaks.
		err = s.scanBlockScalarBreaks(&indent, &trailing_breaks, start_mark, &end_mark)
		if err != nil {
			return nil, err
		}
	}

	// Chomp the tail.
	if chomping != -1 {
		value = append(value, leading_break...)
	}
	if chomping == 1 {
		value = append(value, trailing_breaks...)
	}

	// Create a token.
	token := tok.Token{
		Type:      tok.SCALAR_TOKEN,
		StartMark: start_mark,
		EndMark:   end_mark,
		Value:     value,
		Style:     tok.LITERAL_SCALAR_STYLE,
	}
	if !literal {
		token.Style = tok.FOLDED_SCALAR_STYLE
	}
	return &token, nil
}

// Scan indentation spaces and line breaks for a block scalar.  Determine the
// indentation level if needed.
func (s *Session) scanBlockScalarBreaks(indent *int, breaks *[]byte, start_mark tok.Mark, end_mark *tok.Mark) error {
	*end_mark = s.mark

	// Eat the indentation spaces and line breaks.
	max_indent := 0
	for {
		// Eat the indentation spaces.
		if s.unread < 1 {
			err := s.updateBuffer(1)
			if err != nil {
				return err
			}
		}
		for (*indent == 0 || s.mark.Column < *indent) && tok.IsSpaceAt(s.buffer, s.bufferPos) {
			s.skipChar()
			if s.unread < 1 {
				err := s.updateBuffer(1)
				if err != nil {
					return err
				}
			}
		}
		if s.mark.Column > max_indent {
			max_indent = s.mark.Column
		}

		// Check for a tab character messing the indentation.
		if (*indent == 0 || s.mark.Column < *indent) && tok.IsTabAt(s.buffer, s.bufferPos) {
			return s.scanError(start_mark, "found a tab character where an indentation space is expected")
		}

		// Have we found a non-empty line?
		if !tok.IsBreakAt(s.buffer, s.bufferPos) {
			break
		}

		// Consume the line break.
		if s.unread < 2 {
			err := s.updateBuffer(2)
			if err != nil {
				return err
			}
		}
		// [Go] Should really be returning breaks instead.
		*breaks = s.readLine(*breaks)
		*end_mark = s.mark
	}

	// Determine the indentation level if needed.
	if *indent == 0 {
		*indent = max_indent
		if *indent < s.indent+1 {
			*indent = s.indent + 1
		}
		if *indent < 1 {
			*indent = 1
		}
	}
	return nil
}

// Scan a quoted scalar.
func (s *Session) scanFlowScalar(single bool) (*tok.Token, error) {
	// Eat the left quote.
	start_mark := s.mark
	s.skipChar()

	// Consume the content of the quoted scalar.
	var buf, leading_break, trailing_breaks, whitespaces []byte
	for {
		// Check that there are no document indicators at the beginning of the line.
		if s.unread < 4 {
			err := s.updateBuffer(4)
			if err != nil {
				return nil, err
			}
		}

		if s.mark.Column == 0 &&
			((s.buffer[s.bufferPos+0] == '-' &&
				s.buffer[s.bufferPos+1] == '-' &&
				s.buffer[s.bufferPos+2] == '-') ||
				(s.buffer[s.bufferPos+0] == '.' &&
					s.buffer[s.bufferPos+1] == '.' &&
					s.buffer[s.bufferPos+2] == '.')) &&
			tok.IsBlankZAt(s.buffer, s.bufferPos+3) {
			return nil, s.scanError(start_mark, "found unexpected document indicator")
		}

		// Check for EOF.
		if tok.IsZeroAt(s.buffer, s.bufferPos) {
			return nil, s.scanError(start_mark, "found unexpected end of stream")
		}

		// Consume non-blank characters.
		leading_blanks := false
		for !tok.IsBlankZAt(s.buffer, s.bufferPos) {
			if single && s.buffer[s.bufferPos] == '\'' && s.buffer[s.bufferPos+1] == '\'' {
				// Is is an escaped single quote.
				buf = append(buf, '\'')
				s.skipChar()
				s.skipChar()

			} else if single && s.buffer[s.bufferPos] == '\'' {
				// It is a right single quote.
				break
			} else if !single && s.buffer[s.bufferPos] == '"' {
				// It is a right double quote.
				break

			} else if !single && s.buffer[s.bufferPos] == '\\' && tok.IsBreakAt(s.buffer, s.bufferPos+1) {
				// It is an escaped line break.
				if s.unread < 3 {
					err := s.updateBuffer(3)
					if err != nil {
						return nil, err
					}
				}
				s.skipChar()
				s.skipLine()
				leading_blanks = true
				break

			} else if !single && s.buffer[s.bufferPos] == '\\' {
				// It is an escape sequence.
				code_length := 0

				// Check the escape character.
				switch s.buffer[s.bufferPos+1] {
				case '0':
					buf = append(buf, 0)
				case 'a':
					buf = append(buf, '\x07')
				case 'b':
					buf = append(buf, '\x08')
				case 't', '\t':
					buf = append(buf, '\x09')
				case 'n':
					buf = append(buf, '\x0A')
				case 'v':
					buf = append(buf, '\x0B')
				case 'f':
					buf = append(buf, '\x0C')
				case 'r':
					buf = append(buf, '\x0D')
				case 'e':
					buf = append(buf, '\x1B')
				case ' ':
					buf = append(buf, '\x20')
				case '"':
					buf = append(buf, '"')
				case '\'':
					buf = append(buf, '\'')
				case '\\':
					buf = append(buf, '\\')
				case 'N': // NEL (#x85)
					buf = append(buf, '\xC2')
					buf = append(buf, '\x85')
				case '_': // #xA0
					buf = append(buf, '\xC2')
					buf = append(buf, '\xA0')
				case 'L': // LS (#x2028)
					buf = append(buf, '\xE2')
					buf = append(buf, '\x80')
					buf = append(buf, '\xA8')
				case 'P': // PS (#x2029)
					buf = append(buf, '\xE2')
					buf = append(buf, '\x80')
					buf = append(buf, '\xA9')
				case 'x':
					code_length = 2
				case 'u':
					code_length = 4
				case 'U':
					code_length = 8
				default:
					return nil, s.scanError(start_mark, "found unknown escape character")
				}

				s.skipChar()
				s.skipChar()

				// Consume an arbitrary escape code.
				if code_length > 0 {
					var value int

					// Scan the character value.
					if s.unread < code_length {
						err := s.updateBuffer(code_length)
						if err != nil {
							return nil, err
						}
					}
					for k := 0; k < code_length; k++ {
						if !tok.IsHexAt(s.buffer, s.bufferPos+k) {
							return nil, s.scanError(start_mark, "did not find expected hexdecimal number")
						}
						value = (value << 4) + tok.HexValue(s.buffer, s.bufferPos+k)
					}

					// Check the value and write the character.
					if (value >= 0xD800 && value <= 0xDFFF) || value > 0x10FFFF {
						return nil, s.scanError(start_mark, "found invalid Unicode character escape code")
					}
					if value <= 0x7F {
						buf = append(buf, byte(value))
					} else if value <= 0x7FF {
						buf = append(buf, byte(0xC0+(value>>6)))
						buf = append(buf, byte(0x80+(value&0x3F)))
					} else if value <= 0xFFFF {
						buf = append(buf, byte(0xE0+(value>>12)))
						buf = append(buf, byte(0x80+((value>>6)&0x3F)))
						buf = append(buf, byte(0x80+(value&0x3F)))
					} else {
						buf = append(buf, byte(0xF0+(value>>18)))
						buf = append(buf, byte(0x80+((value>>12)&0x3F)))
						buf = append(buf, byte(0x80+((value>>6)&0x3F)))
						buf = append(buf, byte(0x80+(value&0x3F)))
					}

					// Advance the pointer.
					for k := 0; k < code_length; k++ {
						s.skipChar()
					}
				}
			} else {
				// It is a non-escaped non-blank character.
				buf = s.readChar(buf)
			}
			if s.unread < 2 {
				err := s.updateBuffer(2)
				if err != nil {
					return nil, err
				}
			}
		}

		if s.unread < 1 {
			err := s.updateBuffer(1)
			if err != nil {
				return nil, err
			}
		}

		// Check if we are at the end of the scalar.
		if single {
			if s.buffer[s.bufferPos] == '\'' {
				break
			}
		} else {
			if s.buffer[s.bufferPos] == '"' {
				break
			}
		}

		// Consume blank characters.
		for tok.IsBlankAt(s.buffer, s.bufferPos) || tok.IsBreakAt(s.buffer, s.bufferPos) {
			if tok.IsBlankAt(s.buffer, s.bufferPos) {
				// Consume a space or a tab character.
				if !leading_blanks {
					whitespaces = s.readChar(whitespaces)
				} else {
					s.skipChar()
				}
			} else {
				if s.unread < 2 {
					err := s.updateBuffer(2)
					if err != nil {
						return nil, err
					}
				}
				// Check if it is a first line break.
				if !leading_blanks {
					whitespaces = whitespaces[:0]
					leading_break = s.readLine(leading_break)
					leading_blanks = true
				} else {
					trailing_breaks = s.readLine(trailing_breaks)
				}
			}
			if s.unread < 1 {
				err := s.updateBuffer(1)
				if err != nil {
					return nil, err
				}
			}
		}

		// Join the whitespaces or fold line breaks.
		if leading_blanks {
			// Do we need to fold line breaks?
			if len(leading_break) > 0 && leading_break[0] == '\n' {
				if len(trailing_breaks) == 0 {
					buf = append(buf, ' ')
				} else {
					buf = append(buf, trailing_breaks...)
				}
			} else {
				buf = append(buf, leading_break...)
				buf = append(buf, trailing_breaks...)
			}
			trailing_breaks = trailing_breaks[:0]
			leading_break = leading_break[:0]
		} else {
			buf = append(buf, whitespaces...)
			whitespaces = whitespaces[:0]
		}
	}

	// Eat the right quote.
	s.skipChar()
	end_mark := s.mark

	// Create a token.
	token := tok.Token{
		Type:      tok.SCALAR_TOKEN,
		StartMark: start_mark,
		EndMark:   end_mark,
		Value:     buf,
		Style:     tok.SINGLE_QUOTED_SCALAR_STYLE,
	}
	if !single {
		token.Style = tok.DOUBLE_QUOTED_SCALAR_STYLE
	}
	return &token, nil
}

// Scan a plain scalar.
func (s *Session) scanPlainScalar() (*tok.Token, error) {

	var value, leading_break, trailing_breaks, whitespaces []byte
	var leading_blanks bool
	var indent = s.indent + 1

	start_mark := s.mark
	end_mark := s.mark

	// Consume the content of the plain scalar.
	for {
		// Check for a document indicator.
		if s.unread < 4 {
			err := s.updateBuffer(4)
			if err != nil {
				return nil, err
			}
		}
		if s.mark.Column == 0 &&
			((s.buffer[s.bufferPos+0] == '-' &&
				s.buffer[s.bufferPos+1] == '-' &&
				s.buffer[s.bufferPos+2] == '-') ||
				(s.buffer[s.bufferPos+0] == '.' &&
					s.buffer[s.bufferPos+1] == '.' &&
					s.buffer[s.bufferPos+2] == '.')) &&
			tok.IsBlankZAt(s.buffer, s.bufferPos+3) {
			break
		}

		// Check for a comment.
		if s.buffer[s.bufferPos] == '#' {
			break
		}

		// Consume non-blank characters.
		for !tok.IsBlankZAt(s.buffer, s.bufferPos) {

			// Check for indicators that may end a plain scalar.
			if (s.buffer[s.bufferPos] == ':' && tok.IsBlankZAt(s.buffer, s.bufferPos+1)) ||
				(s.flowLevel > 0 &&
					(s.buffer[s.bufferPos] == ',' ||
						s.buffer[s.bufferPos] == '?' || s.buffer[s.bufferPos] == '[' ||
						s.buffer[s.bufferPos] == ']' || s.buffer[s.bufferPos] == '{' ||
						s.buffer[s.bufferPos] == '}')) {
				break
			}

			// Check if we need to join whitespaces and breaks.
			if leading_blanks || len(whitespaces) > 0 {
				if leading_blanks {
					// Do we need to fold line breaks?
					if leading_break[0] == '\n' {
						if len(trailing_breaks) == 0 {
							value = append(value, ' ')
						} else {
							value = append(value, trailing_breaks...)
						}
					} else {
						value = append(value, leading_break...)
						value = append(value, trailing_breaks...)
					}
					trailing_breaks = trailing_breaks[:0]
					leading_break = leading_break[:0]
					leading_blanks = false
				} else {
					value = append(value, whitespaces...)
					whitespaces = whitespaces[:0]
				}
			}

			// Copy the character.
			value = s.readChar(value)

			end_mark = s.mark
			if s.unread < 2 {
				err := s.updateBuffer(2)
				if err != nil {
					return nil, err
				}
			}
		}

		// Is it the end?
		if !(tok.IsBlankAt(s.buffer, s.bufferPos) || tok.IsBreakAt(s.buffer, s.bufferPos)) {
			break
		}

		// Consume blank characters.
		if s.unread < 1 {
			err := s.updateBuffer(1)
			if err != nil {
				return nil, err
			}
		}

		for tok.IsBlankAt(s.buffer, s.bufferPos) || tok.IsBreakAt(s.buffer, s.bufferPos) {
			if tok.IsBlankAt(s.buffer, s.bufferPos) {

				// Check for tab characters that abuse indentation.
				if leading_blanks && s.mark.Column < indent && tok.IsTabAt(s.buffer, s.bufferPos) {
					return nil, s.scanError(start_mark, "found a tab character that violates indentation")
				}

				// Consume a space or a tab character.
				if !leading_blanks {
					whitespaces = s.readChar(whitespaces)
				} else {
					s.skipChar()
				}
			} else {
				if s.unread < 2 {
					err := s.updateBuffer(2)
					if err != nil {
						return nil, err
					}
				}

				// Check if it is a first line break.
				if !leading_blanks {
					whitespaces = whitespaces[:0]
					leading_break = s.readLine(leading_break)
					leading_blanks = true
				} else {
					trailing_breaks = s.readLine(trailing_breaks)
				}
			}
			if s.unread < 1 {
				err := s.updateBuffer(1)
				if err != nil {
					return nil, err
				}
			}
		}

		// Check indentation level.
		if s.flowLevel == 0 && s.mark.Column < indent {
			break
		}
	}

	// Create a token.
	token := tok.Token{
		Type:      tok.SCALAR_TOKEN,
		StartMark: start_mark,
		EndMark:   end_mark,
		Value:     value,
		Style:     tok.PLAIN_SCALAR_STYLE,
	}

	// Note that we change the 'simple_key_allowed' flag.
	if leading_blanks {
		s.simpleKeyAllowed = true
	}
	return &token, nil
}

func (s *Session) scanLineComment(token_mark tok.Mark) error {
	if s.newlines > 0 {
		return nil
	}

	var start_mark tok.Mark
	var text []byte

	for peek := 0; peek < 512; peek++ {
		if s.unread < peek+1 {
			err := s.updateBuffer(peek+1)
			if err != nil {
				return err
			}
		}
		if tok.IsBlankAt(s.buffer, s.bufferPos+peek) {
			continue
		}
		if s.buffer[s.bufferPos+peek] == '#' {
			seen := s.mark.Index + peek
			for {
				if s.unread < 1 {
					err := s.updateBuffer(1)
					if err != nil {
						return err
					}
				}
				if tok.IsBreakZAt(s.buffer, s.bufferPos) {
					if s.mark.Index >= seen {
						break
					}
					if s.unread < 2 {
						err := s.updateBuffer(2)
						if err != nil {
							return err
						}
					}
					s.skipLine()
				} else if s.mark.Index >= seen {
					if len(text) == 0 {
						start_mark = s.mark
					}
					text = s.readChar(text)
				} else {
					s.skipChar()
				}
			}
		}
		break
	}
	if len(text) > 0 {
		s.comments = append(s.comments, tok.Comment{
			TokenMark: token_mark,
			StartMark: start_mark,
			Line:       text,
		})
	}
	return nil
}

func (s *Session) scanComments(scan_mark tok.Mark) error {
	token := s.tokens[len(s.tokens)-1]

	if token.Type == tok.FLOW_ENTRY_TOKEN && len(s.tokens) > 1 {
		token = s.tokens[len(s.tokens)-2]
	}

	var token_mark = token.StartMark
	var start_mark tok.Mark
	var next_indent = s.indent
	if next_indent < 0 {
		next_indent = 0
	}

	var recent_empty = false
	var first_empty = s.newlines <= 1

	var line = s.mark.Line
	var column = s.mark.Column

	var text []byte

	// The foot line is the place where a comment must start to
	// still be considered as a foot of the prior content.
	// If there's some content in the currently parsed line, then
	// the foot is the line below it.
	var foot_line = -1
	if scan_mark.Line > 0 {
		foot_line = s.mark.Line - s.newlines + 1
		if s.newlines == 0 && s.mark.Column > 1 {
			foot_line++
		}
	}

	var peek = 0
	for ; peek < 512; peek++ {
		if s.unread < peek+1 && s.updateBuffer(peek+1) != nil {
			break
		}
		column++
		if tok.IsBlankAt(s.buffer, s.bufferPos+peek) {
			continue
		}
		c := s.buffer[s.bufferPos+peek]
		var close_flow = s.flowLevel > 0 && (c == ']' || c == '}')
		if close_flow || tok.IsBreakZAt(s.buffer, s.bufferPos+peek) {
			// Got line break or terminator.
			if close_flow || !recent_empty {
				if close_flow || first_empty && (start_mark.Line == foot_line && token.Type != tok.VALUE_TOKEN || start_mark.Column-1 < next_indent) {
					// This is the first empty line and there were no empty lines before,
					// so this initial part of the comment is a foot of the prior token
					// instead of being a head for the following one. Split it up.
					// Alternatively, this might also be the last comment inside a flow
					// scope, so it must be a footer.
					if len(text) > 0 {
						if start_mark.Column-1 < next_indent {
							// If dedented it's unrelated to the prior token.
							token_mark = start_mark
						}
						s.comments = append(s.comments, tok.Comment{
							ScanMark:  scan_mark,
							TokenMark: token_mark,
							StartMark: start_mark,
							EndMark:   tok.Mark{s.mark.Index + peek, line, column},
							Foot:       text,
						})
						scan_mark = tok.Mark{s.mark.Index + peek, line, column}
						token_mark = scan_mark
						text = nil
					}
				} else {
					if len(text) > 0 && s.buffer[s.bufferPos+peek] != 0 {
						text = append(text, '\n')
					}
				}
			}
			if !tok.IsBreakAt(s.buffer, s.bufferPos+peek) {
				break
			}
			first_empty = false
			recent_empty = true
			column = 0
			line++
			continue
		}

		if len(text) > 0 && (close_flow || column-1 < next_indent && column != start_mark.Column) {
			// The comment at the different indentation is a foot of the
			// preceding data rather than a head of the upcoming one.
			s.comments = append(s.comments, tok.Comment{
				ScanMark:  scan_mark,
				TokenMark: token_mark,
				StartMark: start_mark,
				EndMark:   tok.Mark{s.mark.Index + peek, line, column},
				Foot:       text,
			})
			scan_mark = tok.Mark{s.mark.Index + peek, line, column}
			token_mark = scan_mark
			text = nil
		}

		if s.buffer[s.bufferPos+peek] != '#' {
			break
		}

		if len(text) == 0 {
			start_mark = tok.Mark{s.mark.Index + peek, line, column}
		} else {
			text = append(text, '\n')
		}

		recent_empty = false

		// Consume until after the consumed comment line.
		seen := s.mark.Index + peek
		for {
			if s.unread < 1 {
				err := s.updateBuffer(1)
				if err != nil {
					return err
				}
			}
			if tok.IsBreakZAt(s.buffer, s.bufferPos) {
				if s.mark.Index >= seen {
					break
				}
				if s.unread < 2 {
					err := s.updateBuffer(2)
					if err != nil {
						return err
					}
				}
				s.skipLine()
			} else if s.mark.Index >= seen {
				text = s.readChar(text)
			} else {
				s.skipChar()
			}
		}

		peek = 0
		column = 0
		line = s.mark.Line
		next_indent = s.indent
		if next_indent < 0 {
			next_indent = 0
		}
	}

	if len(text) > 0 {
		s.comments = append(s.comments, tok.Comment{
			ScanMark:  scan_mark,
			TokenMark: start_mark,
			StartMark: start_mark,
			EndMark:   tok.Mark{s.mark.Index + peek - 1, line, column},
			Head:       text,
		})
	}
	return nil
}

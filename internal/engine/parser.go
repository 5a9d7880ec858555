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
	tok "github.com/goyaml11/yaml11/internal/token"
)

// The parser implements the following grammar:
//
// stream               ::= STREAM-START implicit_document? explicit_document* STREAM-END
// implicit_document    ::= block_node DOCUMENT-END*
// explicit_document    ::= DIRECTIVE* DOCUMENT-START block_node? DOCUMENT-END*
// block_node_or_indentless_sequence    ::=
//                          ALIAS
//                          | properties (block_content | indentless_block_sequence)?
//                          | block_content
//                          | indentless_block_sequence
// block_node           ::= ALIAS
//                          | properties block_content?
//                          | block_content
// flow_node            ::= ALIAS
//                          | properties flow_content?
//                          | flow_content
// properties           ::= TAG ANCHOR? | ANCHOR TAG?
// block_content        ::= block_collection | flow_collection | SCALAR
// flow_content         ::= flow_collection | SCALAR
// block_collection     ::= block_sequence | block_mapping
// flow_collection      ::= flow_sequence | flow_mapping
// block_sequence       ::= BLOCK-SEQUENCE-START (BLOCK-ENTRY block_node?)* BLOCK-END
// indentless_sequence  ::= (BLOCK-ENTRY block_node?)+
// block_mapping        ::= BLOCK-MAPPING_START
//                          ((KEY block_node_or_indentless_sequence?)?
//                          (VALUE block_node_or_indentless_sequence?)?)*
//                          BLOCK-END
// flow_sequence        ::= FLOW-SEQUENCE-START
//                          (flow_sequence_entry FLOW-ENTRY)*
//                          flow_sequence_entry?
//                          FLOW-SEQUENCE-END
// flow_sequence_entry  ::= flow_node | KEY flow_node? (VALUE flow_node?)?
// flow_mapping         ::= FLOW-MAPPING-START
//                          (flow_mapping_entry FLOW-ENTRY)*
//                          flow_mapping_entry?
//                          FLOW-MAPPING-END
// flow_mapping_entry   ::= flow_node | KEY flow_node? (VALUE flow_node?)?

// Parse - Get the next event.
func (s *Session) ParseEvent() (*tok.Event, error) {
	// No events after the end of the stream.
	if s.streamEndProduced || s.state == PARSE_END_STATE {
		return &tok.Event{}, nil
	}
	// Generate the next event.
	return s.stateMachine()
}

// ParseToken exposes the scanner stage directly: it returns the next
// token the scanner produces, without running it through the parser's
// state machine. A STREAM_END_TOKEN is returned once and then repeated
// with each further call.
func (s *Session) ParseToken() (*tok.Token, error) {
	t, err := s.peekToken()
	if err != nil {
		return nil, err
	}
	if t.Type != tok.STREAM_END_TOKEN {
		s.skipToken()
	}
	return t, nil
}

// peek the next token in the token queue.
func (s *Session) peekToken() (*tok.Token, error) {
	if !s.tokenAvailable {
		err := s.fetchMoreTokens()
		if err != nil {
			return nil, err
		}
	}
	token := &s.tokens[s.tokensHead]
	s.unfoldComments(token)
	return token, nil
}

// unfoldComments walks through the comments queue and joins all
// comments behind the position of the provided token into the respective
// top-level comment slices in the session.
func (s *Session) unfoldComments(token *tok.Token) {
	for s.commentsHead < len(s.comments) && token.StartMark.Index >= s.comments[s.commentsHead].TokenMark.Index {
		comment := &s.comments[s.commentsHead]
		if len(comment.Head) > 0 {
			if token.Type == tok.BLOCK_END_TOKEN {
				// No heads on ends, so keep comment.head for a follow up token.
				break
			}
			if len(s.headComment) > 0 {
				s.headComment = append(s.headComment, '\n')
			}
			s.headComment = append(s.headComment, comment.Head...)
		}
		if len(comment.Foot) > 0 {
			if len(s.footComment) > 0 {
				s.footComment = append(s.footComment, '\n')
			}
			s.footComment = append(s.footComment, comment.Foot...)
		}
		if len(comment.Line) > 0 {
			if len(s.lineComment) > 0 {
				s.lineComment = append(s.lineComment, '\n')
			}
			s.lineComment = append(s.lineComment, comment.Line...)
		}
		*comment = tok.Comment{}
		s.commentsHead++
	}
}

// Remove the next token from the queue (must be called after peekToken).
func (s *Session) skipToken() {
	s.tokenAvailable = false
	s.tokensParsed++
	s.streamEndProduced = s.tokens[s.tokensHead].Type == tok.STREAM_END_TOKEN
	s.tokensHead++
}

func buildParserError(errType tok.ErrorType, problem string, problemMark, contextMark tok.Mark, hasContext bool) error {
	return buildWrappedParserError(errType, problem, problemMark, contextMark, hasContext, nil)
}

// buildWrappedParserError is buildParserError plus an underlying cause (e.g.
// an io.Reader failure), recoverable via errors.Unwrap/errors.Is/errors.As.
func buildWrappedParserError(errType tok.ErrorType, problem string, problemMark, contextMark tok.Mark, hasContext bool, cause error) error {
	if errType == tok.NO_ERROR {
		return nil
	}
	if problem == "" {
		problem = "unknown problem parsing YAML content"
	}
	return &tok.ParseError{
		Kind:        errType,
		Problem:     problem,
		ProblemMark: problemMark,
		HasContext:  hasContext,
		ContextMark: contextMark,
		Cause:       cause,
	}
}

// State dispatcher.
func (s *Session) stateMachine() (*tok.Event, error) {
	switch s.state {
	case PARSE_STREAM_START_STATE:
		return s.parseStreamStart()

	case PARSE_IMPLICIT_DOCUMENT_START_STATE:
		return s.parseDocumentStart(true)

	case PARSE_DOCUMENT_START_STATE:
		return s.parseDocumentStart(false)

	case PARSE_DOCUMENT_CONTENT_STATE:
		return s.parseDocumentContent()

	case PARSE_DOCUMENT_END_STATE:
		return s.parseDocumentEnd()

	case PARSE_BLOCK_NODE_STATE:
		return s.parseNode(true, false)

	case PARSE_BLOCK_NODE_OR_INDENTLESS_SEQUENCE_STATE:
		return s.parseNode(true, true)

	case PARSE_FLOW_NODE_STATE:
		return s.parseNode(false, false)

	case PARSE_BLOCK_SEQUENCE_FIRST_ENTRY_STATE:
		return s.parseBlockSequenceEntry(true)

	case PARSE_BLOCK_SEQUENCE_ENTRY_STATE:
		return s.parseBlockSequenceEntry(false)

	case PARSE_INDENTLESS_SEQUENCE_ENTRY_STATE:
		return s.parseIndentlessSequenceEntry()

	case PARSE_BLOCK_MAPPING_FIRST_KEY_STATE:
		return s.parseBlockMappingKey(true)

	case PARSE_BLOCK_MAPPING_KEY_STATE:
		return s.parseBlockMappingKey(false)

	case PARSE_BLOCK_MAPPING_VALUE_STATE:
		return s.parseBlockMappingValue()

	case PARSE_FLOW_SEQUENCE_FIRST_ENTRY_STATE:
		return s.parseFlowSequenceEntry(true)

	case PARSE_FLOW_SEQUENCE_ENTRY_STATE:
		return s.parseFlowSequenceEntry(false)

	case PARSE_FLOW_SEQUENCE_ENTRY_MAPPING_KEY_STATE:
		return s.parseFlowSequenceEntryMappingKey()

	case PARSE_FLOW_SEQUENCE_ENTRY_MAPPING_VALUE_STATE:
		return s.parseFlowSequenceEntryMappingValue()

	case PARSE_FLOW_SEQUENCE_ENTRY_MAPPING_END_STATE:
		return s.parseFlowSequenceEntryMappingEnd()

	case PARSE_FLOW_MAPPING_FIRST_KEY_STATE:
		return s.parseFlowMappingKey(true)

	case PARSE_FLOW_MAPPING_KEY_STATE:
		return s.parseFlowMappingKey(false)

	case PARSE_FLOW_MAPPING_VALUE_STATE:
		return s.parseFlowMappingValue(false)

	case PARSE_FLOW_MAPPING_EMPTY_VALUE_STATE:
		return s.parseFlowMappingValue(true)

	default:
		panic("invalid parser state")
	}
}

// Parse the production:
// stream   ::= STREAM-START implicit_document? explicit_document* STREAM-END
//
//	************
func (s *Session) parseStreamStart() (*tok.Event, error) {
	token, err := s.peekToken()
	if err != nil {
		return nil, err
	}
	if token.Type != tok.STREAM_START_TOKEN {
		return nil, buildParserError(tok.PARSER_ERROR, "did not find expected <stream-start>", token.StartMark, tok.Mark{}, false)
	}
	s.state = PARSE_IMPLICIT_DOCUMENT_START_STATE
	event := tok.Event{
		Type:       tok.STREAM_START_EVENT,
		StartMark: token.StartMark,
		EndMark:   token.EndMark,
		Encoding:   token.Encoding,
	}
	s.skipToken()
	return &event, nil
}

// Parse the productions:
// implicit_document    ::= block_node DOCUMENT-END*
//
//	*
//
// explicit_document    ::= DIRECTIVE* DOCUMENT-START block_node? DOCUMENT-END*
//
//	*************************
func (s *Session) parseDocumentStart(implicit bool) (*tok.Event, error) {

	token, err := s.peekToken()
	if err != nil {
		return nil, err
	}

	// Parse extra document end indicators.
	if !implicit {
		for token.Type == tok.DOCUMENT_END_TOKEN {
			s.skipToken()
			token, err = s.peekToken()
			if err != nil {
				return nil, err
			}
		}
	}

	if implicit && token.Type != tok.VERSION_DIRECTIVE_TOKEN &&
		token.Type != tok.TAG_DIRECTIVE_TOKEN &&
		token.Type != tok.DOCUMENT_START_TOKEN &&
		token.Type != tok.STREAM_END_TOKEN {
		// Parse an implicit document.
		err = s.processDirectives(nil, nil)
		if err != nil {
			return nil, err
		}
		s.states = append(s.states, PARSE_DOCUMENT_END_STATE)
		s.state = PARSE_BLOCK_NODE_STATE

		var head_comment []byte
		if len(s.headComment) > 0 {
			// [Go] Scan the header comment backwards, and if an empty line is found, break
			//      the header so the part before the last empty line goes into the
			//      document header, while the bottom of it goes into a follow up event.
			for i := len(s.headComment) - 1; i > 0; i-- {
				if s.headComment[i] == '\n' {
					if i == len(s.headComment)-1 {
						head_comment = s.headComment[:i]
						s.headComment = s.headComment[i+1:]
						break
					}
					if s.headComment[i-1] == '\n' {
						head_comment = s.headComment[:i-1]
						s.headComment = s.headComment[i+1:]
						break
					}
				}
			}
		}

		return &tok.Event{
			Type:       tok.DOCUMENT_START_EVENT,
			StartMark: token.StartMark,
			EndMark:   token.EndMark,
			Implicit:   true,

			HeadComment: head_comment,
		}, nil

	}
	if token.Type != tok.STREAM_END_TOKEN {
		// Parse an explicit document.
		var version_directive *tok.VersionDirective
		var tag_directives []tok.TagDirective
		start_mark := token.StartMark
		err = s.processDirectives(&version_directive, &tag_directives)
		if err != nil {
			return nil, err
		}
		token, err = s.peekToken()
		if err != nil {
			return nil, err
		}
		if token.Type != tok.DOCUMENT_START_TOKEN {
			return nil, buildParserError(tok.PARSER_ERROR, "did not find expected <document start>", token.StartMark, tok.Mark{}, false)
		}
		s.states = append(s.states, PARSE_DOCUMENT_END_STATE)
		s.state = PARSE_DOCUMENT_CONTENT_STATE
		end_mark := token.EndMark

		event := tok.Event{
			Type:              tok.DOCUMENT_START_EVENT,
			StartMark:        start_mark,
			EndMark:          end_mark,
			VersionDirective: version_directive,
			TagDirectives:    tag_directives,
			Implicit:          false,
		}
		s.skipToken()
		return &event, nil
	}

	// Parse the stream end.
	s.state = PARSE_END_STATE
	event := tok.Event{
		Type:       tok.STREAM_END_EVENT,
		StartMark: token.StartMark,
		EndMark:   token.EndMark,
	}
	s.skipToken()

	return &event, nil
}

// Parse the productions:
// explicit_document    ::= DIRECTIVE* DOCUMENT-START block_node? DOCUMENT-END*
//
//	***********
func (s *Session) parseDocumentContent() (*tok.Event, error) {
	token, err := s.peekToken()
	if err != nil {
		return nil, err
	}

	if token.Type == tok.VERSION_DIRECTIVE_TOKEN ||
		token.Type == tok.TAG_DIRECTIVE_TOKEN ||
		token.Type == tok.DOCUMENT_START_TOKEN ||
		token.Type == tok.DOCUMENT_END_TOKEN ||
		token.Type == tok.STREAM_END_TOKEN {
		s.state = s.states[len(s.states)-1]
		s.states = s.states[:len(s.states)-1]
		return processEmptyScalar(token.StartMark), nil

	}
	return s.parseNode(true, false)
}

// Parse the productions:
// implicit_document    ::= block_node DOCUMENT-END*
//
//	*************
//
// explicit_document    ::= DIRECTIVE* DOCUMENT-START block_node? DOCUMENT-END*
func (s *Session) parseDocumentEnd() (*tok.Event, error) {
	token, err := s.peekToken()
	if err != nil {
		return nil, err
	}

	start_mark := token.StartMark
	end_mark := token.StartMark

	implicit := true
	if token.Type == tok.DOCUMENT_END_TOKEN {
		end_mark = token.EndMark
		s.skipToken()
		implicit = false
	}

	s.tagDirectives = s.tagDirectives[:0]

	s.state = PARSE_DOCUMENT_START_STATE
	event := tok.Event{
		Type:       tok.DOCUMENT_END_EVENT,
		StartMark: start_mark,
		EndMark:   end_mark,
		Implicit:   implicit,
	}
	s.setEventComments(&event)
	if len(event.HeadComment) > 0 && len(event.FootComment) == 0 {
		event.FootComment = event.HeadComment
		event.HeadComment = nil
	}
	return &event, nil
}

func (s *Session) setEventComments(event *tok.Event) {
	event.HeadComment = s.headComment
	event.LineComment = s.lineComment
	event.FootComment = s.footComment
	s.headComment = nil
	s.lineComment = nil
	s.footComment = nil
	s.tailComment = nil
	s.stemComment = nil
}

// Parse the productions:
// block_node_or_indentless_sequence    ::=
//
//	ALIAS
//	*****
//	| properties (block_content | indentless_block_sequence)?
//	  **********  *
//	| block_content | indentless_block_sequence
//	  *
//
// block_node           ::= ALIAS
//
//	*****
//	| properties block_content?
//	  ********** *
//	| block_content
//	  *
//
// flow_node            ::= ALIAS
//
//	*****
//	| properties flow_content?
//	  ********** *
//	| flow_content
//	  *
//
// properties           ::= TAG ANCHOR? | ANCHOR TAG?
//
//	*************************
//
// block_content        ::= block_collection | flow_collection | SCALAR
//
//	******
//
// flow_content         ::= flow_collection | SCALAR
//
//	******
func (s *Session) parseNode(block, indentless_sequence bool) (*tok.Event, error) {
	var event tok.Event
	token, err := s.peekToken()
	if err != nil {
		return nil, err
	}

	if token.Type == tok.ALIAS_TOKEN {
		s.state = s.states[len(s.states)-1]
		s.states = s.states[:len(s.states)-1]
		event = tok.Event{
			Type:       tok.ALIAS_EVENT,
			StartMark: token.StartMark,
			EndMark:   token.EndMark,
			Anchor:     token.Value,
		}
		s.setEventComments(&event)
		s.skipToken()
		return &event, nil
	}

	start_mark := token.StartMark
	end_mark := token.StartMark

	var tag_token bool
	var tag_handle, tag_suffix, anchor []byte
	var tag_mark tok.Mark
	if token.Type == tok.ANCHOR_TOKEN {
		anchor = token.Value
		start_mark = token.StartMark
		end_mark = token.EndMark
		s.skipToken()
		token, err = s.peekToken()
		if err != nil {
			return nil, err
		}
		if token.Type == tok.TAG_TOKEN {
			tag_token = true
			tag_handle = token.Value
			tag_suffix = token.Suffix
			tag_mark = token.StartMark
			end_mark = token.EndMark
			s.skipToken()
			token, err = s.peekToken()
			if err != nil {
				return nil, err
			}
		}
	} else if token.Type == tok.TAG_TOKEN {
		tag_token = true
		tag_handle = token.Value
		tag_suffix = token.Suffix
		start_mark = token.StartMark
		tag_mark = token.StartMark
		end_mark = token.EndMark
		s.skipToken()
		token, err = s.peekToken()
		if err != nil {
			return nil, err
		}
		if token.Type == tok.ANCHOR_TOKEN {
			anchor = token.Value
			end_mark = token.EndMark
			s.skipToken()
			token, err = s.peekToken()
			if err != nil {
				return nil, err
			}
		}
	}

	var tag []byte
	if tag_token {
		if len(tag_handle) == 0 {
			tag = tag_suffix
			tag_suffix = nil
		} else {
			for i := range s.tagDirectives {
				if bytes.Equal(s.tagDirectives[i].Handle, tag_handle) {
					tag = append([]byte(nil), s.tagDirectives[i].Prefix...)
					tag = append(tag, tag_suffix...)
					break
				}
			}
			if len(tag) == 0 {
				return nil, buildParserError(tok.PARSER_ERROR, "found undefined tag handle", tag_mark, start_mark, true)
			}
		}
	}

	implicit := len(tag) == 0
	if indentless_sequence && token.Type == tok.BLOCK_ENTRY_TOKEN {
		end_mark = token.EndMark
		s.state = PARSE_INDENTLESS_SEQUENCE_ENTRY_STATE
		event = tok.Event{
			Type:       tok.SEQUENCE_START_EVENT,
			StartMark: start_mark,
			EndMark:   end_mark,
			Anchor:     anchor,
			Tag:        tag,
			Implicit:   implicit,
			Style:      tok.Style(tok.BLOCK_SEQUENCE_STYLE),
		}
		return &event, nil
	}
	if token.Type == tok.SCALAR_TOKEN {
		var plain_implicit, quoted_implicit bool
		end_mark = token.EndMark
		if (len(tag) == 0 && token.Style == tok.PLAIN_SCALAR_STYLE) || (len(tag) == 1 && tag[0] == '!') {
			plain_implicit = true
		} else if len(tag) == 0 {
			quoted_implicit = true
		}
		s.state = s.states[len(s.states)-1]
		s.states = s.states[:len(s.states)-1]

		event = tok.Event{
			Type:            tok.SCALAR_EVENT,
			StartMark:      start_mark,
			EndMark:        end_mark,
			Anchor:          anchor,
			Tag:             tag,
			Value:           token.Value,
			Implicit:        plain_implicit,
			QuotedImplicit: quoted_implicit,
			Style:           tok.Style(token.Style),
		}
		s.setEventComments(&event)
		s.skipToken()
		return &event, nil
	}
	if token.Type == tok.FLOW_SEQUENCE_START_TOKEN {
		// [Go] Some of the events below can be merged as they differ only on style.
		end_mark = token.EndMark
		s.state = PARSE_FLOW_SEQUENCE_FIRST_ENTRY_STATE
		event = tok.Event{
			Type:       tok.SEQUENCE_START_EVENT,
			StartMark: start_mark,
			EndMark:   end_mark,
			Anchor:     anchor,
			Tag:        tag,
			Implicit:   implicit,
			Style:      tok.Style(tok.FLOW_SEQUENCE_STYLE),
		}
		s.setEventComments(&event)
		return &event, nil
	}
	if token.Type == tok.FLOW_MAPPING_START_TOKEN {
		end_mark = token.EndMark
		s.state = PARSE_FLOW_MAPPING_FIRST_KEY_STATE
		event = tok.Event{
			Type:       tok.MAPPING_START_EVENT,
			StartMark: start_mark,
			EndMark:   end_mark,
			Anchor:     anchor,
			Tag:        tag,
			Implicit:   implicit,
			Style:      tok.Style(tok.FLOW_MAPPING_STYLE),
		}
		s.setEventComments(&event)
		return &event, nil
	}
	if block && token.Type == tok.BLOCK_SEQUENCE_START_TOKEN {
		end_mark = token.EndMark
		s.state = PARSE_BLOCK_SEQUENCE_FIRST_ENTRY_STATE
		event = tok.Event{
			Type:       tok.SEQUENCE_START_EVENT,
			StartMark: start_mark,
			EndMark:   end_mark,
			Anchor:     anchor,
			Tag:        tag,
			Implicit:   implicit,
			Style:      tok.Style(tok.BLOCK_SEQUENCE_STYLE),
		}
		if s.stemComment != nil {
			event.HeadComment = s.stemComment
			s.stemComment = nil
		}
		return &event, nil
	}
	if block && token.Type == tok.BLOCK_MAPPING_START_TOKEN {
		end_mark = token.EndMark
		s.state = PARSE_BLOCK_MAPPING_FIRST_KEY_STATE
		event = tok.Event{
			Type:       tok.MAPPING_START_EVENT,
			StartMark: start_mark,
			EndMark:   end_mark,
			Anchor:     anchor,
			Tag:        tag,
			Implicit:   implicit,
			Style:      tok.Style(tok.BLOCK_MAPPING_STYLE),
		}
		if s.stemComment != nil {
			event.HeadComment = s.stemComment
			s.stemComment = nil
		}
		return &event, nil
	}
	if len(anchor) > 0 || len(tag) > 0 {
		s.state = s.states[len(s.states)-1]
		s.states = s.states[:len(s.states)-1]

		event = tok.Event{
			Type:            tok.SCALAR_EVENT,
			StartMark:      start_mark,
			EndMark:        end_mark,
			Anchor:          anchor,
			Tag:             tag,
			Implicit:        implicit,
			QuotedImplicit: false,
			Style:           tok.Style(tok.PLAIN_SCALAR_STYLE),
		}
		return &event, nil
	}

	return nil, buildParserError(tok.PARSER_ERROR, "did not find expected node content", token.StartMark, start_mark, true)
}

// Parse the productions:
// block_sequence ::= BLOCK-SEQUENCE-START (BLOCK-ENTRY block_node?)* BLOCK-END
//
//	********************  *********** *             *********
func (s *Session) parseBlockSequenceEntry(first bool) (*tok.Event, error) {
	if first {
		token, err := s.peekToken()
		if err != nil {
			return nil, err
		}
		s.marks = append(s.marks, token.StartMark)
		s.skipToken()
	}

	token, err := s.peekToken()
	if err != nil {
		return nil, err
	}

	if token.Type == tok.BLOCK_ENTRY_TOKEN {
		mark := token.EndMark
		prior_head_len := len(s.headComment)
		s.skipToken()
		err = s.splitStemComment(prior_head_len)
		if err != nil {
			return nil, err
		}
		token, err = s.peekToken()
		if err != nil {
			return nil, err
		}
		if token.Type != tok.BLOCK_ENTRY_TOKEN && token.Type != tok.BLOCK_END_TOKEN {
			s.states = append(s.states, PARSE_BLOCK_SEQUENCE_ENTRY_STATE)
			return s.parseNode(true, false)
		}
		s.state = PARSE_BLOCK_SEQUENCE_ENTRY_STATE
		return processEmptyScalar(mark), nil
	}
	if token.Type == tok.BLOCK_END_TOKEN {
		s.state = s.states[len(s.states)-1]
		s.states = s.states[:len(s.states)-1]
		s.marks = s.marks[:len(s.marks)-1]

		event := tok.Event{
			Type:       tok.SEQUENCE_END_EVENT,
			StartMark: token.StartMark,
			EndMark:   token.EndMark,
		}

		s.skipToken()
		return &event, nil
	}

	context_mark := s.marks[len(s.marks)-1]
	s.marks = s.marks[:len(s.marks)-1]
	return nil, buildParserError(tok.PARSER_ERROR, "did not find expected '-' indicator", token.StartMark, context_mark, true)
}

// Parse the productions:
// indentless_sequence  ::= (BLOCK-ENTRY block_node?)+
//
//	*********** *
func (s *Session) parseIndentlessSequenceEntry() (*tok.Event, error) {
	token, err := s.peekToken()
	if err != nil {
		return nil, err
	}

	if token.Type == tok.BLOCK_ENTRY_TOKEN {
		mark := token.EndMark
		prior_head_len := len(s.headComment)
		s.skipToken()
		err = s.splitStemComment(prior_head_len)
		if err != nil {
			return nil, err
		}
		token, err = s.peekToken()
		if err != nil {
			return nil, err
		}
		if token.Type != tok.BLOCK_ENTRY_TOKEN &&
			token.Type != tok.KEY_TOKEN &&
			token.Type != tok.VALUE_TOKEN &&
			token.Type != tok.BLOCK_END_TOKEN {
			s.states = append(s.states, PARSE_INDENTLESS_SEQUENCE_ENTRY_STATE)
			return s.parseNode(true, false)
		}
		s.state = PARSE_INDENTLESS_SEQUENCE_ENTRY_STATE
		return processEmptyScalar(mark), nil
	}
	s.state = s.states[len(s.states)-1]
	s.states = s.states[:len(s.states)-1]

	return &tok.Event{
		Type:       tok.SEQUENCE_END_EVENT,
		StartMark: token.StartMark,
		EndMark:   token.StartMark, // [Go] Shouldn't this be token.end_mark?
	}, nil
}

// Split stem comment from head comment.
//
// When a sequence or map is found under a sequence entry, the former head comment
// is assigned to the underlying sequence or map as a whole, not the individual
// sequence or map entry as would be expected otherwise. To handle this case the
// previous head comment is moved aside as the stem comment.
func (s *Session) splitStemComment(stem_len int) error {
	if stem_len == 0 {
		return nil
	}

	token, err := s.peekToken()
	if err != nil {
		return err
	}
	if token.Type != tok.BLOCK_SEQUENCE_START_TOKEN && token.Type != tok.BLOCK_MAPPING_START_TOKEN {
		return nil
	}

	s.stemComment = s.headComment[:stem_len]
	if len(s.headComment) == stem_len {
		s.headComment = nil
	} else {
		// Copy suffix to prevent very strange bugs if someone ever appends
		// further bytes to the prefix in the stem_comment slice above.
		s.headComment = append([]byte(nil), s.headComment[stem_len+1:]...)
	}
	return nil
}

// Parse the productions:
// block_mapping        ::= BLOCK-MAPPING_START
//
//	*******************
//	((KEY block_node_or_indentless_sequence?)?
//	  *** *
//	(VALUE block_node_or_indentless_sequence?)?)*
//
//	BLOCK-END
//	*********
func (s *Session) parseBlockMappingKey(first bool) (*tok.Event, error) {
	if first {
		token, err := s.peekToken()
		if err != nil {
			return nil, err
		}
		s.marks = append(s.marks, token.StartMark)
		s.skipToken()
	}

	token, err := s.peekToken()
	if err != nil {
		return nil, err
	}

	// [Go] A tail comment was left from the prior mapping value processed. Emit an event
	//      as it needs to be processed with that value and not the following key.
	if len(s.tailComment) > 0 {
		event := &tok.Event{
			Type:         tok.TAIL_COMMENT_EVENT,
			StartMark:   token.StartMark,
			EndMark:     token.EndMark,
			FootComment: s.tailComment,
		}
		s.tailComment = nil
		return event, nil
	}

	if token.Type == tok.KEY_TOKEN {
		mark := token.EndMark
		s.skipToken()
		token, err = s.peekToken()
		if err != nil {
			return nil, err
		}
		if token.Type != tok.KEY_TOKEN &&
			token.Type != tok.VALUE_TOKEN &&
			token.Type != tok.BLOCK_END_TOKEN {
			s.states = append(s.states, PARSE_BLOCK_MAPPING_VALUE_STATE)
			return s.parseNode(true, true)
		}
		s.state = PARSE_BLOCK_MAPPING_VALUE_STATE
		return processEmptyScalar(mark), nil
	}
	if token.Type == tok.BLOCK_END_TOKEN {
		s.state = s.states[len(s.states)-1]
		s.states = s.states[:len(s.states)-1]
		s.marks = s.marks[:len(s.marks)-1]
		event := tok.Event{
			Type:       tok.MAPPING_END_EVENT,
			StartMark: token.StartMark,
			EndMark:   token.EndMark,
		}
		s.setEventComments(&event)
		s.skipToken()
		return &event, nil
	}

	context_mark := s.marks[len(s.marks)-1]
	s.marks = s.marks[:len(s.marks)-1]
	return nil, buildParserError(tok.PARSER_ERROR, "did not find expected key", token.StartMark, context_mark, true)
}

// Parse the productions:
// block_mapping        ::= BLOCK-MAPPING_START
//
//	((KEY block_node_or_indentless_sequence?)?
//
//	(VALUE block_node_or_indentless_sequence?)?)*
//	 ***** *
//	BLOCK-END
func (s *Session) parseBlockMappingValue() (*tok.Event, error) {
	token, err := s.peekToken()
	if err != nil {
		return nil, err
	}
	if token.Type == tok.VALUE_TOKEN {
		mark := token.EndMark
		s.skipToken()
		token, err = s.peekToken()
		if err != nil {
			return nil, err
		}
		if token.Type != tok.KEY_TOKEN &&
			token.Type != tok.VALUE_TOKEN &&
			token.Type != tok.BLOCK_END_TOKEN {
			s.states = append(s.states, PARSE_BLOCK_MAPPING_KEY_STATE)
			return s.parseNode(true, true)
		}
		s.state = PARSE_BLOCK_MAPPING_KEY_STATE
		return processEmptyScalar(mark), nil
	}
	s.state = PARSE_BLOCK_MAPPING_KEY_STATE
	return processEmptyScalar(token.StartMark), nil
}

// Parse the productions:
// flow_sequence        ::= FLOW-SEQUENCE-START
//
//	*******************
//	(flow_sequence_entry FLOW-ENTRY)*
//	 *                   **********
//	flow_sequence_entry?
//	*
//	FLOW-SEQUENCE-END
//	*****************
//
// flow_sequence_entry  ::= flow_node | KEY flow_node? (VALUE flow_node?)?
//
//	*
func (s *Session) parseFlowSequenceEntry(first bool) (*tok.Event, error) {
	if first {
		token, err := s.peekToken()
		if err != nil {
			return nil, err
		}
		s.marks = append(s.marks, token.StartMark)
		s.skipToken()
	}
	token, err := s.peekToken()
	if err != nil {
		return nil, err
	}
	if token.Type != tok.FLOW_SEQUENCE_END_TOKEN {
		if !first {
			if token.Type == tok.FLOW_ENTRY_TOKEN {
				s.skipToken()
				token, err = s.peekToken()
				if err != nil {
					return nil, err
				}
			} else {
				context_mark := s.marks[len(s.marks)-1]
				s.marks = s.marks[:len(s.marks)-1]
				return nil, buildParserError(tok.PARSER_ERROR, "did not find expected ',' or ']'", token.StartMark, context_mark, true)
			}
		}

		if token.Type == tok.KEY_TOKEN {
			s.state = PARSE_FLOW_SEQUENCE_ENTRY_MAPPING_KEY_STATE
			event := tok.Event{
				Type:       tok.MAPPING_START_EVENT,
				StartMark: token.StartMark,
				EndMark:   token.EndMark,
				Implicit:   true,
				Style:      tok.Style(tok.FLOW_MAPPING_STYLE),
			}
			s.skipToken()
			return &event, nil
		}
		if token.Type != tok.FLOW_SEQUENCE_END_TOKEN {
			s.states = append(s.states, PARSE_FLOW_SEQUENCE_ENTRY_STATE)
			return s.parseNode(false, false)
		}
	}

	s.state = s.states[len(s.states)-1]
	s.states = s.states[:len(s.states)-1]
	s.marks = s.marks[:len(s.marks)-1]

	event := tok.Event{
		Type:       tok.SEQUENCE_END_EVENT,
		StartMark: token.StartMark,
		EndMark:   token.EndMark,
	}
	s.setEventComments(&event)

	s.skipToken()
	return &event, nil
}

// Parse the productions:
// flow_sequence_entry  ::= flow_node | KEY flow_node? (VALUE flow_node?)?
//
//	*** *
func (s *Session) parseFlowSequenceEntryMappingKey() (*tok.Event, error) {
	token, err := s.peekToken()
	if err != nil {
		return nil, err
	}
	if token.Type != tok.VALUE_TOKEN &&
		token.Type != tok.FLOW_ENTRY_TOKEN &&
		token.Type != tok.FLOW_SEQUENCE_END_TOKEN {
		s.states = append(s.states, PARSE_FLOW_SEQUENCE_ENTRY_MAPPING_VALUE_STATE)
		return s.parseNode(false, false)
	}
	mark := token.EndMark
	s.skipToken()
	s.state = PARSE_FLOW_SEQUENCE_ENTRY_MAPPING_VALUE_STATE
	return processEmptyScalar(mark), nil
}

// Parse the productions:
// flow_sequence_entry  ::= flow_node | KEY flow_node? (VALUE flow_node?)?
//
//	***** *
func (s *Session) parseFlowSequenceEntryMappingValue() (*tok.Event, error) {
	token, err := s.peekToken()
	if err != nil {
		return nil, err
	}
	if token.Type == tok.VALUE_TOKEN {
		s.skipToken()
		token, err = s.peekToken()
		if err != nil {
			return nil, err
		}
		if token.Type != tok.FLOW_ENTRY_TOKEN && token.Type != tok.FLOW_SEQUENCE_END_TOKEN {
			s.states = append(s.states, PARSE_FLOW_SEQUENCE_ENTRY_MAPPING_END_STATE)
			return s.parseNode(false, false)
		}
	}
	s.state = PARSE_FLOW_SEQUENCE_ENTRY_MAPPING_END_STATE
	return processEmptyScalar(token.StartMark), nil
}

// Parse the productions:
// flow_sequence_entry  ::= flow_node | KEY flow_node? (VALUE flow_node?)?
//
//	*
func (s *Session) parseFlowSequenceEntryMappingEnd() (*tok.Event, error) {
	token, err := s.peekToken()
	if err != nil {
		return nil, err
	}
	s.state = PARSE_FLOW_SEQUENCE_ENTRY_STATE
	event := tok.Event{
		Type:       tok.MAPPING_END_EVENT,
		StartMark: token.StartMark,
		EndMark:   token.StartMark, // [Go] Shouldn't this be end_mark?
	}
	return &event, nil
}

// Parse the productions:
// flow_mapping         ::= FLOW-MAPPING-START
//
//	******************
//	(flow_mapping_entry FLOW-ENTRY)*
//	 *                  **********
//	flow_mapping_entry?
//	******************
//	FLOW-MAPPING-END
//	****************
//
// flow_mapping_entry   ::= flow_node | KEY flow_node? (VALUE flow_node?)?
//   - *** *
func (s *Session) parseFlowMappingKey(first bool) (*tok.Event, error) {
	if first {
		token, err := s.peekToken()
		if err != nil {
			return nil, err
		}
		s.marks = append(s.marks, token.StartMark)
		s.skipToken()
	}

	token, err := s.peekToken()
	if err != nil {
		return nil, err
	}

	if token.Type != tok.FLOW_MAPPING_END_TOKEN {
		if !first {
			if token.Type == tok.FLOW_ENTRY_TOKEN {
				s.skipToken()
				token, err = s.peekToken()
				if err != nil {
					return nil, err
				}
			} else {
				context_mark := s.marks[len(s.marks)-1]
				s.marks = s.marks[:len(s.marks)-1]
				return nil, buildParserError(tok.PARSER_ERROR, "did not find expected ',' or '}'", token.StartMark, context_mark, true)
			}
		}

		if token.Type == tok.KEY_TOKEN {
			s.skipToken()
			token, err = s.peekToken()
			if err != nil {
				return nil, err
			}
			if token.Type != tok.VALUE_TOKEN &&
				token.Type != tok.FLOW_ENTRY_TOKEN &&
				token.Type != tok.FLOW_MAPPING_END_TOKEN {
				s.states = append(s.states, PARSE_FLOW_MAPPING_VALUE_STATE)
				return s.parseNode(false, false)
			}
			s.state = PARSE_FLOW_MAPPING_VALUE_STATE
			return processEmptyScalar(token.StartMark), nil
		}
		if token.Type != tok.FLOW_MAPPING_END_TOKEN {
			s.states = append(s.states, PARSE_FLOW_MAPPING_EMPTY_VALUE_STATE)
			return s.parseNode(false, false)
		}
	}

	s.state = s.states[len(s.states)-1]
	s.states = s.states[:len(s.states)-1]
	s.marks = s.marks[:len(s.marks)-1]
	event := tok.Event{
		Type:       tok.MAPPING_END_EVENT,
		StartMark: token.StartMark,
		EndMark:   token.EndMark,
	}
	s.setEventComments(&event)
	s.skipToken()
	return &event, nil
}

// Parse the productions:
// flow_mapping_entry   ::= flow_node | KEY flow_node? (VALUE flow_node?)?
//   - ***** *
func (s *Session) parseFlowMappingValue(empty bool) (*tok.Event, error) {
	token, err := s.peekToken()
	if err != nil {
		return nil, err
	}
	if empty {
		s.state = PARSE_FLOW_MAPPING_KEY_STATE
		return processEmptyScalar(token.StartMark), nil
	}
	if token.Type == tok.VALUE_TOKEN {
		s.skipToken()
		token, err = s.peekToken()
		if err != nil {
			return nil, err
		}
		if token.Type != tok.FLOW_ENTRY_TOKEN && token.Type != tok.FLOW_MAPPING_END_TOKEN {
			s.states = append(s.states, PARSE_FLOW_MAPPING_KEY_STATE)
			return s.parseNode(false, false)
		}
	}
	s.state = PARSE_FLOW_MAPPING_KEY_STATE
	return processEmptyScalar(token.StartMark), nil
}

// Generate an empty scalar event.
func processEmptyScalar(mark tok.Mark) *tok.Event {
	return &tok.Event{
		Type:       tok.SCALAR_EVENT,
		StartMark: mark,
		EndMark:   mark,
		Value:      nil, // Empty
		Implicit:   true,
		Style:      tok.Style(tok.PLAIN_SCALAR_STYLE),
	}
}

// Parse directives.
func (s *Session) processDirectives(
	version_directive_ref **tok.VersionDirective,
	tag_directives_ref *[]tok.TagDirective) error {

	var version_directive *tok.VersionDirective
	var tag_directives []tok.TagDirective

	token, err := s.peekToken()
	if err != nil {
		return err
	}

	for token.Type == tok.VERSION_DIRECTIVE_TOKEN || token.Type == tok.TAG_DIRECTIVE_TOKEN {
		if token.Type == tok.VERSION_DIRECTIVE_TOKEN {
			if version_directive != nil {
				return buildParserError(tok.PARSER_ERROR, "found duplicate %YAML directive", token.StartMark, tok.Mark{}, false)
			}
			if token.Major != 1 || token.Minor != 1 {
				return buildParserError(tok.PARSER_ERROR, "found incompatible YAML document", token.StartMark, tok.Mark{}, false)
			}
			version_directive = &tok.VersionDirective{
				Major: token.Major,
				Minor: token.Minor,
			}
		} else if token.Type == tok.TAG_DIRECTIVE_TOKEN {
			value := tok.TagDirective{
				Handle: token.Value,
				Prefix: token.Prefix,
			}
			err = s.appendTagDirective(value, false, token.StartMark)
			if err != nil {
				return err
			}
			tag_directives = append(tag_directives, value)
		}

		s.skipToken()
		token, err = s.peekToken()
		if err != nil {
			return err
		}
	}

	for i := range DefaultTagDirectives {
		err = s.appendTagDirective(DefaultTagDirectives[i], true, token.StartMark)
		if err != nil {
			return err
		}
	}

	if version_directive_ref != nil {
		*version_directive_ref = version_directive
	}
	if tag_directives_ref != nil {
		*tag_directives_ref = tag_directives
	}
	return nil
}

// Append a tag directive to the directives stack.
func (s *Session) appendTagDirective(value tok.TagDirective, allow_duplicates bool, mark tok.Mark) error {
	for i := range s.tagDirectives {
		if bytes.Equal(value.Handle, s.tagDirectives[i].Handle) {
			if allow_duplicates {
				return nil
			}
			return buildParserError(tok.PARSER_ERROR, "found duplicate %TAG directive", mark, tok.Mark{}, false)
		}
	}

	// [Go] I suspect the copy is unnecessary. This was likely done
	// because there was no way to track ownership of the data.
	value_copy := tok.TagDirective{
		Handle: make([]byte, len(value.Handle)),
		Prefix: make([]byte, len(value.Prefix)),
	}
	copy(value_copy.Handle, value.Handle)
	copy(value_copy.Prefix, value.Prefix)
	s.tagDirectives = append(s.tagDirectives, value_copy)
	return nil
}

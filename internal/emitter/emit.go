package emitter

import (
	"fmt"

	eng "github.com/goyaml11/yaml11/internal/engine"
	tok "github.com/goyaml11/yaml11/internal/token"
)

// expect DOCUMENT-START or STREAM-END.
func (e *Emitter) emitDocumentStart(event *tok.Event, first bool) error {
	if event.Type == tok.DOCUMENT_START_EVENT {
		return e.emitDocumentStartEvent(event, first)
	}

	if event.Type == tok.STREAM_END_EVENT {
		if e.openEnded {
			err := e.writeIndicator([]byte("..."), true, false, false)
			if err != nil {
				return err
			}
			err = e.writeIndent()
			if err != nil {
				return err
			}
		}
		e.state = emitEndState
		return nil
	}

	return fmt.Errorf("expected DOCUMENT-START or STREAM-END")
}

func (e *Emitter) emitDocumentStartEvent(event *tok.Event, first bool) error {
	if event.VersionDirective != nil {
		err := analyzeVersionDirective(event.VersionDirective)
		if err != nil {
			return err
		}
	}

	for i := 0; i < len(event.TagDirectives); i++ {
		tag_directive := &event.TagDirectives[i]
		err := analyzeTagDirective(tag_directive)
		if err != nil {
			return err
		}
		err = e.appendTagDirective(tag_directive, false)
		if err != nil {
			return err
		}
	}

	for i := 0; i < len(eng.DefaultTagDirectives); i++ {
		tag_directive := &eng.DefaultTagDirectives[i]
		err := e.appendTagDirective(tag_directive, true)
		if err != nil {
			return err
		}
	}

	implicit := event.Implicit
	if !first {
		implicit = false
	}

	if e.openEnded && (event.VersionDirective != nil || len(event.TagDirectives) > 0) {
		err := e.writeIndicator([]byte("..."), true, false, false)
		if err != nil {
			return err
		}
		err = e.writeIndent()
		if err != nil {
			return err
		}
	}

	if event.VersionDirective != nil {
		implicit = false
		err := e.writeIndicator([]byte("%YAML 1.1"), true, false, false)
		if err != nil {
			return err
		}
		err = e.writeIndent()
		if err != nil {
			return err
		}
	}

	if len(event.TagDirectives) > 0 {
		implicit = false
		for i := 0; i < len(event.TagDirectives); i++ {
			tag_directive := &event.TagDirectives[i]
			err := e.writeIndicator([]byte("%TAG"), true, false, false)
			if err != nil {
				return err
			}
			err = e.writeTagHandle(tag_directive.Handle)
			if err != nil {
				return err
			}
			err = e.writeTagContent(tag_directive.Prefix, true)
			if err != nil {
				return err
			}
			err = e.writeIndent()
			if err != nil {
				return err
			}
		}
	}

	if !implicit {
		err := e.writeIndent()
		if err != nil {
			return err
		}
		err = e.writeIndicator([]byte("---"), true, false, false)
		if err != nil {
			return err
		}
		err = e.writeIndent()
		if err != nil {
			return err
		}
	}

	if len(e.headComment) > 0 {
		err := e.processHeadComment()
		if err != nil {
			return err
		}
		err = e.putBreak()
		if err != nil {
			return err
		}
	}

	e.state = EmitDocumentContentState
	return nil
}

// Determine an acceptable scalar style.
func (e *Emitter) selectScalarStyle(event *tok.Event) error {
	no_tag := len(e.tagData.Handle) == 0 && len(e.tagData.Suffix) == 0
	if no_tag && !event.Implicit && !event.QuotedImplicit {
		return fmt.Errorf("neither tag nor implicit flags are specified")
	}

	style := event.ScalarStyle()
	if style == tok.ANY_SCALAR_STYLE {
		style = tok.PLAIN_SCALAR_STYLE
	}
	if e.simpleKeyContext && e.scalarData.multiline {
		style = tok.DOUBLE_QUOTED_SCALAR_STYLE
	}

	if style == tok.PLAIN_SCALAR_STYLE {
		if e.flowLevel > 0 && !e.scalarData.flowPlainAllowed ||
			e.flowLevel == 0 && !e.scalarData.blockPlainAllowed {
			style = tok.SINGLE_QUOTED_SCALAR_STYLE
		}
		if len(e.scalarData.value) == 0 && (e.flowLevel > 0 || e.simpleKeyContext) {
			style = tok.SINGLE_QUOTED_SCALAR_STYLE
		}
		if no_tag && !event.Implicit {
			style = tok.SINGLE_QUOTED_SCALAR_STYLE
		}
	}
	if style == tok.SINGLE_QUOTED_SCALAR_STYLE {
		if !e.scalarData.singleQuotedAllowed {
			style = tok.DOUBLE_QUOTED_SCALAR_STYLE
		}
	}
	if style == tok.LITERAL_SCALAR_STYLE || style == tok.FOLDED_SCALAR_STYLE {
		if !e.scalarData.blockAllowed || e.flowLevel > 0 || e.simpleKeyContext {
			style = tok.DOUBLE_QUOTED_SCALAR_STYLE
		}
	}

	if no_tag && !event.QuotedImplicit && style != tok.PLAIN_SCALAR_STYLE {
		e.tagData.Handle = []byte{'!'}
	}
	e.scalarData.style = style
	return nil
}

func (e *Emitter) stateMachine(event *tok.Event) error {
	switch e.state {
	default:
	case emitStreamStartState:
		return e.emitStreamStart(event)

	case emitFirstDocumentStartState:
		return e.emitDocumentStart(event, true)

	case emitDocumentStartState:
		return e.emitDocumentStart(event, false)

	case EmitDocumentContentState:
		return e.emitDocumentContent(event)

	case emitDocumentEndState:
		return e.emitDocumentEnd(event)

	case emitFlowSequenceFirstItemState:
		return e.emitFlowSequenceItem(event, true, false)

	case emitFlowSequenceTrailItemState:
		return e.emitFlowSequenceItem(event, false, true)

	case emitFlowSequenceItemState:
		return e.emitFlowSequenceItem(event, false, false)

	case emitFlowMappingFirstKeyState:
		return e.emitFlowMappingKey(event, true, false)

	case emitFlowMappingTrailKeyState:
		return e.emitFlowMappingKey(event, false, true)

	case emitFlowMappingKeyState:
		return e.emitFlowMappingKey(event, false, false)

	case emitFlowMappingSimpleValueState:
		return e.emitFlowMappingValue(event, true)

	case emitFlowMappingValueState:
		return e.emitFlowMappingValue(event, false)

	case emitBlockSequenceFirstItemState:
		return e.emitBlockSequenceItem(event, true)

	case emitBlockSequenceItemState:
		return e.emitBlockSequenceItem(event, false)

	case emitBlockMappingFirstKeyState:
		return e.emitBlockMappingKey(event, true)

	case emitBlockMappingKeyState:
		return e.emitBlockMappingKey(event, false)

	case emitBlockMappingSimpleValueState:
		return e.emitBlockMappingValue(event, true)

	case emitBlockMappingValueState:
		return e.emitBlockMappingValue(event, false)

	case emitEndState:
		return fmt.Errorf("expected nothing after STREAM-END")
	}
	panic("invalid emitter state")
}

// expect STREAM-START.
func (e *Emitter) emitStreamStart(event *tok.Event) error {
	if event.Type != tok.STREAM_START_EVENT {
		return fmt.Errorf("expected STREAM-START")
	}
	if e.encoding == tok.ANY_ENCODING {
		e.encoding = event.Encoding
		if e.encoding == tok.ANY_ENCODING {
			e.encoding = tok.UTF8_ENCODING
		}
	}
	if e.indent < 2 || e.indent > 9 {
		e.indent = 2
	}
	if e.width >= 0 && e.width <= e.indent*2 {
		e.width = 80
	}
	if e.width < 0 {
		e.width = 1<<31 - 1
	}

	e.indentLevel = -1
	e.line = 0
	e.column = 0
	e.lastCharWhitepace = true
	e.lastCharIndent = true
	e.footIndent = -1

	if e.encoding != tok.UTF8_ENCODING {
		err := e.writeBom()
		if err != nil {
			return err
		}
	}
	e.state = emitFirstDocumentStartState
	return nil
}

// expect the root node.
func (e *Emitter) emitDocumentContent(event *tok.Event) error {
	e.pushState(emitDocumentEndState)
	err := e.processHeadComment()
	if err != nil {
		return err
	}
	err = e.emitNode(event, true, false)
	if err != nil {
		return err
	}
	err = e.processLineComment()
	if err != nil {
		return err
	}
	return e.processFootComment()
}

// expect DOCUMENT-END.
func (e *Emitter) emitDocumentEnd(event *tok.Event) error {
	if event.Type != tok.DOCUMENT_END_EVENT {
		return fmt.Errorf("expected DOCUMENT-END")
	}
	// [Go] Force document foot separation.
	e.footIndent = 0
	err := e.processFootComment()
	if err != nil {
		return err
	}
	e.footIndent = -1
	err = e.writeIndent()
	if err != nil {
		return err
	}
	if !event.Implicit {
		// [Go] Allocate the slice elsewhere.
		err = e.writeIndicator([]byte("..."), true, false, false)
		if err != nil {
			return err
		}
		err = e.writeIndent()
		if err != nil {
			return err
		}
	}
	e.state = emitDocumentStartState
	e.tagDirectives = e.tagDirectives[:0]
	return nil
}

// expect a flow item node.
func (e *Emitter) emitFlowSequenceItem(event *tok.Event, first, trail bool) error {
	var err error
	if first {
		err = e.writeIndicator([]byte{'['}, true, true, false)
		if err != nil {
			return err
		}
		e.increaseIndent(true, false)
		e.flowLevel++
	}

	if event.Type == tok.SEQUENCE_END_EVENT {
		e.flowLevel--
		e.indentLevel = e.popIndent()
		if e.column == 0 {
			err = e.writeIndent()
			if err != nil {
				return err
			}
		}
		err = e.writeIndicator([]byte{']'}, false, false, false)
		if err != nil {
			return err
		}
		err = e.processLineComment()
		if err != nil {
			return err
		}
		err = e.processFootComment()
		if err != nil {
			return err
		}
		e.state = e.popState()

		return nil
	}

	if !first && !trail {
		err = e.writeIndicator([]byte{','}, false, false, false)
		if err != nil {
			return err
		}
	}

	err = e.processHeadComment()
	if err != nil {
		return err
	}
	if e.column == 0 {
		err = e.writeIndent()
		if err != nil {
			return err
		}
	}

	if e.column > e.width {
		err = e.writeIndent()
		if err != nil {
			return err
		}
	}
	if len(e.lineComment)+len(e.footComment)+len(e.tailComment) > 0 {
		e.pushState(emitFlowSequenceTrailItemState)
	} else {
		e.pushState(emitFlowSequenceItemState)
	}
	err = e.emitNode(event, false, false)
	if err != nil {
		return err
	}
	if len(e.lineComment)+len(e.footComment)+len(e.tailComment) > 0 {
		err = e.writeIndicator([]byte{','}, false, false, false)
		if err != nil {
			return err
		}
	}
	err = e.processLineComment()
	if err != nil {
		return err
	}
	err = e.processFootComment()
	if err != nil {
		return err
	}
	return nil
}

// expect a flow key node.
func (e *Emitter) emitFlowMappingKey(event *tok.Event, first, trail bool) error {
	var err error
	if first {
		err = e.writeIndicator([]byte{'{'}, true, true, false)
		if err != nil {
			return err
		}
		e.increaseIndent(true, false)
		e.flowLevel++
	}

	if event.Type == tok.MAPPING_END_EVENT {
		if len(e.headComment)+len(e.footComment)+len(e.tailComment) > 0 && !first && !trail {
			err = e.writeIndicator([]byte{','}, false, false, false)
			if err != nil {
				return err
			}
		}
		err = e.processHeadComment()
		if err != nil {
			return err
		}
		e.flowLevel--
		e.indentLevel = e.popIndent()
		err = e.writeIndicator([]byte{'}'}, false, false, false)
		if err != nil {
			return err
		}
		err = e.processLineComment()
		if err != nil {
			return err
		}
		err = e.processFootComment()
		if err != nil {
			return err
		}
		e.state = e.popState()
		return nil
	}

	if !first && !trail {
		err = e.writeIndicator([]byte{','}, false, false, false)
		if err != nil {
			return err
		}
	}

	err = e.processHeadComment()
	if err != nil {
		return err
	}

	if e.column == 0 {
		err = e.writeIndent()
		if err != nil {
			return err
		}
	}

	if e.column > e.width {
		err = e.writeIndent()
		if err != nil {
			return err
		}
	}

	if e.checkSimpleKey() {
		e.pushState(emitFlowMappingSimpleValueState)
		return e.emitNode(event, false, true)
	}
	err = e.writeIndicator([]byte{'?'}, true, false, false)
	if err != nil {
		return err
	}
	e.pushState(emitFlowMappingValueState)
	return e.emitNode(event, false, false)
}

// expect a flow value node.
func (e *Emitter) emitFlowMappingValue(event *tok.Event, simple bool) error {
	var err error
	if simple {
		err = e.writeIndicator([]byte{':'}, false, false, false)
		if err != nil {
			return err
		}
	} else {
		if e.column > e.width {
			err = e.writeIndent()
			if err != nil {
				return err
			}
		}
		err = e.writeIndicator([]byte{':'}, true, false, false)
		if err != nil {
			return err
		}
	}
	if len(e.lineComment)+len(e.footComment)+len(e.tailComment) > 0 {
		e.pushState(emitFlowMappingTrailKeyState)
	} else {
		e.pushState(emitFlowMappingKeyState)
	}
	err = e.emitNode(event, false, false)
	if err != nil {
		return err
	}
	if len(e.lineComment)+len(e.footComment)+len(e.tailComment) > 0 {
		err = e.writeIndicator([]byte{','}, false, false, false)
		if err != nil {
			return err
		}
	}
	err = e.processLineComment()
	if err != nil {
		return err
	}
	return e.processFootComment()
}

// expect a block item node.
func (e *Emitter) emitBlockSequenceItem(event *tok.Event, first bool) error {
	if first {
		e.increaseIndent(false, false)
	}
	if event.Type == tok.SEQUENCE_END_EVENT {
		e.indentLevel = e.popIndent()
		e.state = e.popState()
		return nil
	}
	err := e.processHeadComment()
	if err != nil {
		return err
	}
	err = e.writeIndent()
	if err != nil {
		return err
	}
	err = e.writeIndicator([]byte{'-'}, true, false, true)
	if err != nil {
		return err
	}
	e.pushState(emitBlockSequenceItemState)
	err = e.emitNode(event, false, false)
	if err != nil {
		return err
	}
	err = e.processLineComment()
	if err != nil {
		return err
	}
	return e.processFootComment()
}

// expect a block key node.
func (e *Emitter) emitBlockMappingKey(event *tok.Event, first bool) error {
	if first {
		e.increaseIndent(false, false)
	}
	err := e.processHeadComment()
	if err != nil {
		return err
	}
	if event.Type == tok.MAPPING_END_EVENT {
		e.indentLevel = e.popIndent()
		e.state = e.popState()
		return nil
	}
	err = e.writeIndent()
	if err != nil {
		return err
	}
	if len(e.lineComment) > 0 {
		// [Go] A line comment was provided for the key. That's unusual as the
		//      scanner associates line comments with the value. Either way,
		//      save the line comment and render it appropriately later.
		e.keyLineComment = e.lineComment
		e.lineComment = nil
	}
	if e.checkSimpleKey() {
		e.pushState(emitBlockMappingSimpleValueState)
		return e.emitNode(event, false, true)
	}
	err = e.writeIndicator([]byte{'?'}, true, false, true)
	if err != nil {
		return err
	}
	e.pushState(emitBlockMappingValueState)
	return e.emitNode(event, false, false)
}

// expect a block value node.
func (e *Emitter) emitBlockMappingValue(event *tok.Event, simple bool) error {
	var err error
	if simple {
		err = e.writeIndicator([]byte{':'}, false, false, false)
		if err != nil {
			return err
		}
	} else {
		err = e.writeIndent()
		if err != nil {
			return err
		}
		err = e.writeIndicator([]byte{':'}, true, false, true)
		if err != nil {
			return err
		}
	}
	if len(e.keyLineComment) > 0 {
		// [Go] Line comments are generally associated with the value, but when there's
		//      no value on the same line as a mapping key they end up attached to the
		//      key itself.
		if event.Type == tok.SCALAR_EVENT {
			if len(e.lineComment) == 0 {
				// A scalar is coming and it has no line comments by itself yet,
				// so just let it handle the line comment as usual. If it has a
				// line comment, we can't have both so the one from the key is lost.
				e.lineComment = e.keyLineComment
				e.keyLineComment = nil
			}
		} else if event.SequenceStyle() != tok.FLOW_SEQUENCE_STYLE && (event.Type == tok.MAPPING_START_EVENT || event.Type == tok.SEQUENCE_START_EVENT) {
			// An indented block follows, so write the comment right now.
			e.lineComment, e.keyLineComment = e.keyLineComment, e.lineComment
			err = e.processLineComment()
			if err != nil {
				return err
			}
			e.lineComment, e.keyLineComment = e.keyLineComment, e.lineComment
		}
	}
	e.pushState(emitBlockMappingKeyState)
	err = e.emitNode(event, false, false)
	if err != nil {
		return err
	}
	err = e.processLineComment()
	if err != nil {
		return err
	}
	return e.processFootComment()
}

// expect a node.
func (e *Emitter) emitNode(event *tok.Event, root, simpleKey bool) error {
	e.rootContext = root
	e.simpleKeyContext = simpleKey

	switch event.Type {
	case tok.ALIAS_EVENT:
		return e.emitAlias(event)
	case tok.SCALAR_EVENT:
		return e.emitScalar(event)
	case tok.SEQUENCE_START_EVENT:
		return e.emitSequenceStart(event)
	case tok.MAPPING_START_EVENT:
		return e.emitMappingStart(event)
	default:
		return fmt.Errorf("expected SCALAR, SEQUENCE-START, MAPPING-START, or ALIAS, but got %v", event.Type)
	}
}

// expect ALIAS.
func (e *Emitter) emitAlias(event *tok.Event) error {
	err := e.processAnchor()
	if err != nil {
		return err
	}
	e.state = e.popState()
	return nil
}

// expect SCALAR.
func (e *Emitter) emitScalar(event *tok.Event) error {
	err := e.selectScalarStyle(event)
	if err != nil {
		return err
	}
	err = e.processAnchor()
	if err != nil {
		return err
	}
	err = e.processTag()
	if err != nil {
		return err
	}
	e.increaseIndent(true, false)
	err = e.processScalar()
	if err != nil {
		return err
	}
	e.indentLevel = e.popIndent()
	e.state = e.popState()
	return nil
}

// expect SEQUENCE-START.
func (e *Emitter) emitSequenceStart(event *tok.Event) error {
	err := e.processAnchor()
	if err != nil {
		return err
	}
	err = e.processTag()
	if err != nil {
		return err
	}
	if e.flowLevel > 0 || event.SequenceStyle() == tok.FLOW_SEQUENCE_STYLE ||
		e.checkEmptySequence() {
		e.state = emitFlowSequenceFirstItemState
	} else {
		e.state = emitBlockSequenceFirstItemState
	}
	return nil
}

// expect MAPPING-START.
func (e *Emitter) emitMappingStart(event *tok.Event) error {
	err := e.processAnchor()
	if err != nil {
		return err
	}
	err = e.processTag()
	if err != nil {
		return err
	}
	if e.flowLevel > 0 || event.MappingStyle() == tok.FLOW_MAPPING_STYLE ||
		e.checkEmptyMapping() {
		e.state = emitFlowMappingFirstKeyState
	} else {
		e.state = emitBlockMappingFirstKeyState
	}
	return nil
}

package emitter

import tok "github.com/goyaml11/yaml11/internal/token"

// Check if the next events represent an empty sequence.
func (e *Emitter) checkEmptySequence() bool {
	if len(e.eventsQueue)-e.eventsHead < 2 {
		return false
	}
	return e.eventsQueue[e.eventsHead].Type == tok.SEQUENCE_START_EVENT &&
		e.eventsQueue[e.eventsHead+1].Type == tok.SEQUENCE_END_EVENT
}

// Check if the next events represent an empty mapping.
func (e *Emitter) checkEmptyMapping() bool {
	if len(e.eventsQueue)-e.eventsHead < 2 {
		return false
	}
	return e.eventsQueue[e.eventsHead].Type == tok.MAPPING_START_EVENT &&
		e.eventsQueue[e.eventsHead+1].Type == tok.MAPPING_END_EVENT
}

// Check if the next node can be expressed as a simple key.
func (e *Emitter) checkSimpleKey() bool {
	length := 0
	switch e.eventsQueue[e.eventsHead].Type {
	case tok.ALIAS_EVENT:
		length += len(e.anchorData.Anchor)
	case tok.SCALAR_EVENT:
		if e.scalarData.multiline {
			return false
		}
		length += len(e.anchorData.Anchor) +
			len(e.tagData.Handle) +
			len(e.tagData.Suffix) +
			len(e.scalarData.value)
	case tok.SEQUENCE_START_EVENT:
		if !e.checkEmptySequence() {
			return false
		}
		length += len(e.anchorData.Anchor) +
			len(e.tagData.Handle) +
			len(e.tagData.Suffix)
	case tok.MAPPING_START_EVENT:
		if !e.checkEmptyMapping() {
			return false
		}
		length += len(e.anchorData.Anchor) +
			len(e.tagData.Handle) +
			len(e.tagData.Suffix)
	default:
		return false
	}
	return length <= 128
}

package engine

import (
	tok "github.com/goyaml11/yaml11/internal/token"
	"io"
)

// ParserState The states of the parser.
type ParserState int

const (
	PARSE_STREAM_START_STATE ParserState = iota

	PARSE_IMPLICIT_DOCUMENT_START_STATE           // expect the beginning of an implicit document.
	PARSE_DOCUMENT_START_STATE                    // expect DOCUMENT-START.
	PARSE_DOCUMENT_CONTENT_STATE                  // expect the content of a document.
	PARSE_DOCUMENT_END_STATE                      // expect DOCUMENT-END.
	PARSE_BLOCK_NODE_STATE                        // expect a block node.
	PARSE_BLOCK_NODE_OR_INDENTLESS_SEQUENCE_STATE // expect a block node or indentless sequence.
	PARSE_FLOW_NODE_STATE                         // expect a flow node.
	PARSE_BLOCK_SEQUENCE_FIRST_ENTRY_STATE        // expect the first entry of a block sequence.
	PARSE_BLOCK_SEQUENCE_ENTRY_STATE              // expect an entry of a block sequence.
	PARSE_INDENTLESS_SEQUENCE_ENTRY_STATE         // expect an entry of an indentless sequence.
	PARSE_BLOCK_MAPPING_FIRST_KEY_STATE           // expect the first key of a block mapping.
	PARSE_BLOCK_MAPPING_KEY_STATE                 // expect a block mapping key.
	PARSE_BLOCK_MAPPING_VALUE_STATE               // expect a block mapping value.
	PARSE_FLOW_SEQUENCE_FIRST_ENTRY_STATE         // expect the first entry of a flow sequence.
	PARSE_FLOW_SEQUENCE_ENTRY_STATE               // expect an entry of a flow sequence.
	PARSE_FLOW_SEQUENCE_ENTRY_MAPPING_KEY_STATE   // expect a key of an ordered mapping.
	PARSE_FLOW_SEQUENCE_ENTRY_MAPPING_VALUE_STATE // expect a value of an ordered mapping.
	PARSE_FLOW_SEQUENCE_ENTRY_MAPPING_END_STATE   // expect the and of an ordered mapping entry.
	PARSE_FLOW_MAPPING_FIRST_KEY_STATE            // expect the first key of a flow mapping.
	PARSE_FLOW_MAPPING_KEY_STATE                  // expect a key of a flow mapping.
	PARSE_FLOW_MAPPING_VALUE_STATE                // expect a value of a flow mapping.
	PARSE_FLOW_MAPPING_EMPTY_VALUE_STATE          // expect an empty value of a flow mapping.
	PARSE_END_STATE                               // expect nothing.
)

func (ps ParserState) String() string {
	switch ps {
	case PARSE_STREAM_START_STATE:
		return "PARSE_STREAM_START_STATE"
	case PARSE_IMPLICIT_DOCUMENT_START_STATE:
		return "PARSE_IMPLICIT_DOCUMENT_START_STATE"
	case PARSE_DOCUMENT_START_STATE:
		return "PARSE_DOCUMENT_START_STATE"
	case PARSE_DOCUMENT_CONTENT_STATE:
		return "PARSE_DOCUMENT_CONTENT_STATE"
	case PARSE_DOCUMENT_END_STATE:
		return "PARSE_DOCUMENT_END_STATE"
	case PARSE_BLOCK_NODE_STATE:
		return "PARSE_BLOCK_NODE_STATE"
	case PARSE_BLOCK_NODE_OR_INDENTLESS_SEQUENCE_STATE:
		return "PARSE_BLOCK_NODE_OR_INDENTLESS_SEQUENCE_STATE"
	case PARSE_FLOW_NODE_STATE:
		return "PARSE_FLOW_NODE_STATE"
	case PARSE_BLOCK_SEQUENCE_FIRST_ENTRY_STATE:
		return "PARSE_BLOCK_SEQUENCE_FIRST_ENTRY_STATE"
	case PARSE_BLOCK_SEQUENCE_ENTRY_STATE:
		return "PARSE_BLOCK_SEQUENCE_ENTRY_STATE"
	case PARSE_INDENTLESS_SEQUENCE_ENTRY_STATE:
		return "PARSE_INDENTLESS_SEQUENCE_ENTRY_STATE"
	case PARSE_BLOCK_MAPPING_FIRST_KEY_STATE:
		return "PARSE_BLOCK_MAPPING_FIRST_KEY_STATE"
	case PARSE_BLOCK_MAPPING_KEY_STATE:
		return "PARSE_BLOCK_MAPPING_KEY_STATE"
	case PARSE_BLOCK_MAPPING_VALUE_STATE:
		return "PARSE_BLOCK_MAPPING_VALUE_STATE"
	case PARSE_FLOW_SEQUENCE_FIRST_ENTRY_STATE:
		return "PARSE_FLOW_SEQUENCE_FIRST_ENTRY_STATE"
	case PARSE_FLOW_SEQUENCE_ENTRY_STATE:
		return "PARSE_FLOW_SEQUENCE_ENTRY_STATE"
	case PARSE_FLOW_SEQUENCE_ENTRY_MAPPING_KEY_STATE:
		return "PARSE_FLOW_SEQUENCE_ENTRY_MAPPING_KEY_STATE"
	case PARSE_FLOW_SEQUENCE_ENTRY_MAPPING_VALUE_STATE:
		return "PARSE_FLOW_SEQUENCE_ENTRY_MAPPING_VALUE_STATE"
	case PARSE_FLOW_SEQUENCE_ENTRY_MAPPING_END_STATE:
		return "PARSE_FLOW_SEQUENCE_ENTRY_MAPPING_END_STATE"
	case PARSE_FLOW_MAPPING_FIRST_KEY_STATE:
		return "PARSE_FLOW_MAPPING_FIRST_KEY_STATE"
	case PARSE_FLOW_MAPPING_KEY_STATE:
		return "PARSE_FLOW_MAPPING_KEY_STATE"
	case PARSE_FLOW_MAPPING_VALUE_STATE:
		return "PARSE_FLOW_MAPPING_VALUE_STATE"
	case PARSE_FLOW_MAPPING_EMPTY_VALUE_STATE:
		return "PARSE_FLOW_MAPPING_EMPTY_VALUE_STATE"
	case PARSE_END_STATE:
		return "PARSE_END_STATE"
	}
	return "<unknown parser state>"
}

// indentStack tracks the enclosing block-context indentation levels. Each
// entry is the indentation that was current when a BLOCK-SEQUENCE-START or
// BLOCK-MAPPING-START opened a deeper level; unrollIndent emits a BLOCK-END
// for each level it closes and pops the saved indentation back.
type indentStack struct {
	levels []int
}

func (st *indentStack) push(level int) {
	st.levels = append(st.levels, level)
}

func (st *indentStack) pop() int {
	last := len(st.levels) - 1
	level := st.levels[last]
	st.levels = st.levels[:last]
	return level
}

func (st *indentStack) depth() int { return len(st.levels) }

// simpleKeyStack tracks, per currently open flow/block nesting level, the
// one simple-key candidate (if any) that a later ':' could confirm. entries
// are indexed by nesting depth; byToken maps a pending key's token number
// back to its slot so fetchMoreTokens can find it without a linear scan.
type simpleKeyStack struct {
	entries []tok.PossibleSimpleKey
	byToken map[int]int
}

func newSimpleKeyStack() simpleKeyStack {
	return simpleKeyStack{byToken: make(map[int]int)}
}

// open pushes a fresh (possibly not-yet-possible) candidate for a newly
// entered nesting level.
func (st *simpleKeyStack) open(key tok.PossibleSimpleKey) {
	st.entries = append(st.entries, key)
}

// close discards the candidate for the nesting level being left.
func (st *simpleKeyStack) close() {
	last := len(st.entries) - 1
	delete(st.byToken, st.entries[last].TokenNumber)
	st.entries = st.entries[:last]
}

// top returns the candidate for the current (innermost) nesting level.
func (st *simpleKeyStack) top() *tok.PossibleSimpleKey {
	return &st.entries[len(st.entries)-1]
}

// setTop replaces the current level's candidate and indexes it by token
// number so it can later be located via byTokenNumber.
func (st *simpleKeyStack) setTop(key tok.PossibleSimpleKey) {
	st.entries[len(st.entries)-1] = key
	st.byToken[key.TokenNumber] = len(st.entries) - 1
}

// byTokenNumber finds the candidate keyed to a given token number, if any
// is still pending.
func (st *simpleKeyStack) byTokenNumber(n int) (*tok.PossibleSimpleKey, bool) {
	idx, ok := st.byToken[n]
	if !ok {
		return nil, false
	}
	return &st.entries[idx], true
}

// forget removes a resolved candidate's token-number index entry.
func (st *simpleKeyStack) forget(key *tok.PossibleSimpleKey) {
	delete(st.byToken, key.TokenNumber)
}

// Session is an owned parsing session: input buffers, scanner state, token
// queue, parser state stack, and the current document's tag directives.
type Session struct {
	// reader stuff

	reader io.Reader // source of raw bytes.

	eof bool // end-of-stream flag.

	buffer    []byte // the working read buffer.
	bufferPos int    // the current position within buffer.

	unread int // the number of unread characters in buffer.

	newlines int // the number of line breaks since the last non-break/non-blank character.

	rawBuffer    []byte // the raw (undecoded) buffer.
	rawBufferPos int    // the current position within rawBuffer.

	encoding tok.Encoding // the input encoding.

	offset int      // the byte offset of the current position.
	mark   tok.Mark // the current position.

	// comments

	headComment []byte // the current head comments.
	lineComment []byte // the current line comments.
	footComment []byte // the current foot comments.
	tailComment []byte // foot comment that happens at the end of a block.
	stemComment []byte // comment in the item preceding a nested structure.

	comments      []tok.Comment // the folded comments for all parsed tokens.
	commentsHead  int

	// scanner stuff

	streamStartProduced bool // has the stream-start token been produced?
	streamEndProduced   bool // has the stream-end token been produced?

	flowLevel int // the number of unclosed '[' and '{' indicators.

	tokens         []tok.Token // the token queue.
	tokensHead     int         // the head of the token queue.
	tokensParsed   int         // the number of tokens fetched from the queue.
	tokenAvailable bool        // does the queue hold a token ready for dequeueing?

	indent  int         // the current indentation level.
	indents indentStack // the stack of enclosing indentation levels.

	simpleKeyAllowed bool           // may a simple key occur at the current position?
	simpleKeys       simpleKeyStack // the per-level stack of pending simple-key candidates.

	// parser stuff

	state         ParserState        // the current parser state.
	states        []ParserState      // the parser state stack.
	marks         []tok.Mark         // the stack of saved marks.
	tagDirectives []tok.TagDirective // the accumulated TAG directives for the current document.
}

func New(reader io.Reader) *Session {
	return &Session{
		rawBuffer:   make([]byte, 0, tok.Input_raw_buffer_size),
		buffer:      make([]byte, 0, tok.Input_buffer_size),
		reader:      reader,
		simpleKeys:  newSimpleKeyStack(),
	}
}

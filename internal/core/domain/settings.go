package domain

const unknownDescription = "Unknown"

// VectorBackend selects the vector index store implementation.
// The set is closed; backend dispatch never inspects runtime types.
type VectorBackend string

// Available vector backends.
const (
	// VectorBackendFlat is the brute-force in-process index persisted
	// as serialized JSON artifacts.
	VectorBackendFlat VectorBackend = "flat"

	// VectorBackendCollection delegates storage and search to a named
	// collection in a SQLite database.
	VectorBackendCollection VectorBackend = "collection"
)

// IsValid returns true if the backend is recognised.
func (b VectorBackend) IsValid() bool {
	switch b {
	case VectorBackendFlat, VectorBackendCollection:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (b VectorBackend) String() string {
	return string(b)
}

// Description returns a human-readable description of the backend.
func (b VectorBackend) Description() string {
	switch b {
	case VectorBackendFlat:
		return "Flat (in-process, JSON artifacts)"
	case VectorBackendCollection:
		return "Collection (named SQLite collection)"
	default:
		return unknownDescription
	}
}

// ResponseMode is the strategy for folding retrieved chunks into one
// model-generated answer. The mode only affects how many model calls
// are made and how context is folded; the output schema is identical
// across modes.
type ResponseMode string

// Available response modes.
const (
	// ResponseModeCompact packs chunks into the fewest prompt-fitting
	// blocks and asks the model once per block.
	ResponseModeCompact ResponseMode = "compact"

	// ResponseModeRefine answers from the first chunk, then refines the
	// answer against each subsequent chunk.
	ResponseModeRefine ResponseMode = "refine"

	// ResponseModeTreeSummarize summarises chunks groupwise until a
	// single summary remains.
	ResponseModeTreeSummarize ResponseMode = "tree_summarize"
)

// IsValid returns true if the response mode is recognised.
func (m ResponseMode) IsValid() bool {
	switch m {
	case ResponseModeCompact, ResponseModeRefine, ResponseModeTreeSummarize:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (m ResponseMode) String() string {
	return string(m)
}

// Description returns a human-readable description of the mode.
func (m ResponseMode) Description() string {
	switch m {
	case ResponseModeCompact:
		return "Compact (fewest model calls)"
	case ResponseModeRefine:
		return "Refine (iterative, all evidence)"
	case ResponseModeTreeSummarize:
		return "Tree Summarize (hierarchical)"
	default:
		return unknownDescription
	}
}

// ChatMode defines how the chat engine handles conversation turns.
type ChatMode string

// Available chat modes.
const (
	// ChatModeCondenseQuestion rewrites follow-up questions using prior
	// turns before retrieving context.
	ChatModeCondenseQuestion ChatMode = "condense_question"

	// ChatModeSimple talks to the model directly with no document
	// grounding.
	ChatModeSimple ChatMode = "simple"
)

// IsValid returns true if the chat mode is recognised.
func (m ChatMode) IsValid() bool {
	switch m {
	case ChatModeCondenseQuestion, ChatModeSimple:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (m ChatMode) String() string {
	return string(m)
}

// RequiresIndex returns true if this mode retrieves from the index.
func (m ChatMode) RequiresIndex() bool {
	return m == ChatModeCondenseQuestion
}

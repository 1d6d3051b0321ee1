package tulna

import (
	"errors"
)

// Error kinds surfaced by the library. "Not isomorphic" is never an error;
// these cover malformed inputs and internal failures only.
var (
	// ErrInvalidInput reports a term that cannot take part in structural
	// comparison: an IRI or literal whose payload starts with "_:", or a
	// term of an unknown type.
	ErrInvalidInput = errors.New("tulna: invalid input term")

	// ErrHash reports a failure of the signature hash. Unreachable with the
	// murmur3 implementation in use; kept so callers can distinguish the
	// category.
	ErrHash = errors.New("tulna: hashing failed")

	// ErrParse reports a query string that could not be parsed.
	ErrParse = errors.New("tulna: parse error")
)

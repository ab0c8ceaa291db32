package factors

// constError is an immutable error type for sentinel errors.
type constError string

func (e constError) Error() string { return string(e) }

var (
	// ErrUnknownKey indicates a strict enumeration received an unrecognised name.
	ErrUnknownKey = constError("unknown key")

	// ErrInvalidVersion indicates a factor table version or constraint that
	// does not parse as a semantic version.
	ErrInvalidVersion = constError("invalid factor table version")
)

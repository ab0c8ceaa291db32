package matching

import "fmt"

// constError is an immutable error type for sentinel errors.
type constError string

func (e constError) Error() string { return string(e) }

// ErrInvalidListing is matched by every ListingError via errors.Is.
const ErrInvalidListing = constError("invalid listing")

// ListingError reports a listing field that prevents scoring a pair.
type ListingError struct {
	Listing string
	Field   string
	Value   any
}

func (e *ListingError) Error() string {
	return fmt.Sprintf("invalid listing %s: %s=%v", e.Listing, e.Field, e.Value)
}

// Is lets errors.Is(err, ErrInvalidListing) match.
func (e *ListingError) Is(target error) bool {
	return target == ErrInvalidListing
}

package report

// constError is an immutable error type for sentinel errors.
type constError string

func (e constError) Error() string { return string(e) }

var (
	// ErrUnknownFormat indicates an output format other than table, json,
	// ndjson or yaml.
	ErrUnknownFormat = constError("unknown output format")
)

package forecast

// constError is an immutable error type for sentinel errors.
type constError string

func (e constError) Error() string { return string(e) }

var (
	// ErrInsufficientData indicates a series too short for the requested
	// method, or a smoothing factor outside (0, 1).
	ErrInsufficientData = constError("insufficient data")

	// ErrInvalidAlpha is wrapped together with ErrInsufficientData when a
	// supplied smoothing factor is outside (0, 1).
	ErrInvalidAlpha = constError("smoothing factor must be in (0, 1)")

	// ErrInvalidSeries indicates a NaN or infinite observation.
	ErrInvalidSeries = constError("series contains a non-finite value")

	// ErrInvalidHorizon indicates a negative number of steps ahead.
	ErrInvalidHorizon = constError("steps ahead must not be negative")
)

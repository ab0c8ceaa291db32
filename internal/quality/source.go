package quality

import (
	"fmt"
	"strings"
)

// Source describes where a reported figure came from.
type Source int

const (
	SourceUnknown Source = iota
	SourceEstimated
	SourceInvoiced
	SourceMetered
)

var sourceNames = map[Source]string{
	SourceUnknown:   "unknown",
	SourceEstimated: "estimated",
	SourceInvoiced:  "invoiced",
	SourceMetered:   "metered",
}

// sourceMembership is the degree to which a source counts as reliable data.
var sourceMembership = map[Source]float64{
	SourceUnknown:   0.5,
	SourceEstimated: 0.6,
	SourceInvoiced:  0.9,
	SourceMetered:   1.0,
}

func (s Source) String() string {
	if name, ok := sourceNames[s]; ok {
		return name
	}
	return fmt.Sprintf("Source(%d)", int(s))
}

// ParseSource parses a source name, falling back to SourceUnknown.
func ParseSource(s string) Source {
	key := strings.ToLower(strings.TrimSpace(s))
	switch key {
	case "bill", "billed", "invoice":
		return SourceInvoiced
	case "meter", "measured":
		return SourceMetered
	case "estimate":
		return SourceEstimated
	}
	for src, name := range sourceNames {
		if name == key {
			return src
		}
	}
	return SourceUnknown
}

// MarshalText implements encoding.TextMarshaler.
func (s Source) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Source) UnmarshalText(b []byte) error {
	*s = ParseSource(string(b))
	return nil
}

func (s Source) membership() float64 {
	if m, ok := sourceMembership[s]; ok {
		return m
	}
	return sourceMembership[SourceUnknown]
}

package managed

import (
	"errors"
	"fmt"
)

// TransportError wraps a failed read or write against the comment API.
type TransportError struct {
	// Op is the operation that failed: "list", "create" or "update".
	Op string
	// Err is the underlying HTTP or API error.
	Err error
}

func (e *TransportError) Error() string {
	if e == nil {
		return "transport error"
	}
	return fmt.Sprintf("%s comments: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// IsTransport reports whether err is a TransportError.
func IsTransport(err error) bool {
	var target *TransportError
	return errors.As(err, &target)
}

// RenderInvariantError signals a rendered body that does not start with its marker.
// It is a programming defect, never a user error: publishing such a body would make the
// comment undiscoverable and cause duplicates on the next run.
type RenderInvariantError struct {
	Marker string
	// Head is the beginning of the offending body.
	Head string
}

func (e *RenderInvariantError) Error() string {
	if e == nil {
		return "rendered body does not start with marker"
	}
	return fmt.Sprintf("rendered body does not start with marker %q (starts with %q)", e.Marker, e.Head)
}

// IsRenderInvariant reports whether err is a RenderInvariantError.
func IsRenderInvariant(err error) bool {
	var target *RenderInvariantError
	return errors.As(err, &target)
}

// CheckMarker verifies that body starts with marker.
func CheckMarker(marker, body string) error {
	if marker != "" && len(body) >= len(marker) && body[:len(marker)] == marker {
		return nil
	}
	head := body
	if len(head) > 80 {
		head = head[:80]
	}
	return &RenderInvariantError{Marker: marker, Head: head}
}

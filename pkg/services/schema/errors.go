package schema

import "fmt"

// MalformedResponseError means the generator output could not be parsed as
// structured data at all.
type MalformedResponseError struct {
	Err error
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("malformed response: %v", e.Err)
}

func (e *MalformedResponseError) Unwrap() error { return e.Err }

// SchemaViolationError means the response parsed but a required field is
// missing or has the wrong primitive type. Path names the offending field.
type SchemaViolationError struct {
	Path   string
	Reason string
}

func (e *SchemaViolationError) Error() string {
	return fmt.Sprintf("schema violation at %q: %s", e.Path, e.Reason)
}

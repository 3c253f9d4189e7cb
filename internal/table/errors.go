package table

import "fmt"

// All four error kinds are fatal to the operation that raised them.
// The unit of recovery is abandoning the translation unit, so none of
// them is ever retried internally.

// LookupError reports a retrieve of an index the table does not hold.
type LookupError struct {
	Table string
	Index int
	Size  int
}

func (e *LookupError) Error() string {
	return fmt.Sprintf(
		"unable to retrieve item %d from table %s (size: %d)",
		e.Index, e.Table, e.Size)
}

// SchemaError reports a missing section or attribute in persisted data.
type SchemaError struct {
	Section string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("expected section %q not found", e.Section)
}

// UnknownVariantError reports a tag with no registered constructor for
// its owner family. This signals a version mismatch between the producer
// and the consumer of the serialized form.
type UnknownVariantError struct {
	Family Family
	Tag    string
}

func (e *UnknownVariantError) Error() string {
	return fmt.Sprintf("unknown %s variant: %q", e.Family, e.Tag)
}

// ProtocolError reports a misuse of the checkpoint/reserve protocol.
type ProtocolError struct {
	Table  string
	Reason string
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("table %s: %s", e.Table, e.Reason)
}

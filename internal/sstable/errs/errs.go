// Package errs defines the typed error taxonomy shared across the decoder,
// reader, and query layers (spec.md §7). Each kind is a distinct Go type
// satisfying error so callers can distinguish failures with errors.As,
// matching the wrapping idiom the teacher corpus uses throughout its storage
// tree (fmt.Errorf("...: %w", err) composed with errors.As/errors.Is at the
// call site).
package errs

import "fmt"

// Truncated indicates fewer bytes remained than a length prefix demanded.
type Truncated struct {
	Context string
	Need    int
	Have    int
}

func (e *Truncated) Error() string {
	return fmt.Sprintf("truncated decoding %s: need %d bytes, have %d", e.Context, e.Need, e.Have)
}

// CorruptFormat indicates a structural violation at a known byte offset.
type CorruptFormat struct {
	Offset int64
	Reason string
}

func (e *CorruptFormat) Error() string {
	return fmt.Sprintf("corrupt format at offset %d: %s", e.Offset, e.Reason)
}

// SchemaMismatch indicates a decoded type id did not match the schema.
type SchemaMismatch struct {
	Column string
	Reason string
}

func (e *SchemaMismatch) Error() string {
	return fmt.Sprintf("schema mismatch on column %q: %s", e.Column, e.Reason)
}

// DepthLimit indicates the decoder's nesting-depth safety ceiling tripped.
type DepthLimit struct {
	Limit int
}

func (e *DepthLimit) Error() string {
	return fmt.Sprintf("nesting depth exceeds limit of %d", e.Limit)
}

// CountLimit indicates a collection count safety ceiling tripped.
type CountLimit struct {
	Limit int
	Got   int
}

func (e *CountLimit) Error() string {
	return fmt.Sprintf("collection count %d exceeds limit of %d", e.Got, e.Limit)
}

// IO wraps an underlying read failure.
type IO struct {
	Op  string
	Err error
}

func (e *IO) Error() string { return fmt.Sprintf("io error during %s: %v", e.Op, e.Err) }
func (e *IO) Unwrap() error { return e.Err }

// Unsupported indicates a requested feature or predicate shape is not
// supported without an explicit opt-in (e.g. ALLOW FILTERING).
type Unsupported struct {
	Feature string
}

func (e *Unsupported) Error() string { return fmt.Sprintf("unsupported: %s", e.Feature) }

// QuerySyntax indicates a parse failure in SELECT text.
type QuerySyntax struct {
	Position int
	Message  string
}

func (e *QuerySyntax) Error() string {
	return fmt.Sprintf("syntax error at position %d: %s", e.Position, e.Message)
}

// QuerySemantic indicates a planner-time validation failure (unknown column,
// incompatible type, malformed predicate shape).
type QuerySemantic struct {
	Message string
}

func (e *QuerySemantic) Error() string { return fmt.Sprintf("semantic error: %s", e.Message) }

// Timeout indicates a query's deadline expired; partial progress is
// discarded.
type Timeout struct{}

func (e *Timeout) Error() string { return "query deadline exceeded" }

// RowDecode annotates a decode error with the partition key and clustering
// prefix it occurred in, per spec.md §4.8's propagation policy.
type RowDecode struct {
	PartitionKey      []byte
	ClusteringPrefix  []byte
	Err               error
}

func (e *RowDecode) Error() string {
	return fmt.Sprintf("decoding row (partition=%x, clustering=%x): %v", e.PartitionKey, e.ClusteringPrefix, e.Err)
}
func (e *RowDecode) Unwrap() error { return e.Err }

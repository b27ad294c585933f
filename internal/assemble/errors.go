package assemble

import "fmt"

// ContentMismatchError reports partition source content that turned out
// to be larger than its declared size during assembly.
type ContentMismatchError struct {
	Partition string
	Declared  uint64
}

// Error implements the error interface
func (e *ContentMismatchError) Error() string {
	return fmt.Sprintf("partition %q: source content exceeds its declared size of %d bytes", e.Partition, e.Declared)
}

// IOError wraps a filesystem failure with the file, offset and partition
// being processed so callers can report where assembly stopped.
type IOError struct {
	Op        string // "truncate", "open", "read", "write", "sync" or "close"
	Path      string
	Partition string // empty for structural or whole-file operations
	Offset    uint64
	Err       error
}

// Error implements the error interface
func (e *IOError) Error() string {
	if e.Partition != "" {
		return fmt.Sprintf("%s %s: partition %q at offset %d: %v", e.Op, e.Path, e.Partition, e.Offset, e.Err)
	}
	return fmt.Sprintf("%s %s at offset %d: %v", e.Op, e.Path, e.Offset, e.Err)
}

// Unwrap exposes the underlying error
func (e *IOError) Unwrap() error {
	return e.Err
}

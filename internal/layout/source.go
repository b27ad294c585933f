package layout

import (
	"bytes"
	"io"
	"os"
)

// Source is a readable handle to the content of one partition. The
// underlying storage is owned by the caller for its full lifetime; the
// assembler only opens it, streams it once and closes it again.
type Source interface {
	// Open returns a fresh reader over the partition content.
	Open() (io.ReadCloser, error)
}

// FileSource reads partition content from a file on the local filesystem.
type FileSource string

// Open opens the underlying file for reading
func (s FileSource) Open() (io.ReadCloser, error) {
	return os.Open(string(s))
}

// BlankSource is an all-zero content handle. It yields no bytes of its
// own; the assembler's zero padding supplies the partition body.
type BlankSource struct{}

// Open returns an empty reader
func (BlankSource) Open() (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(nil)), nil
}

// BytesSource serves in-memory partition content, used mainly by tests.
type BytesSource []byte

// Open returns a reader over the in-memory content
func (s BytesSource) Open() (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(s)), nil
}

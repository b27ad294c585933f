// Package assemble writes finished raw disk images: it sizes the output
// file, places the GPT structural blocks at their fixed offsets and
// streams every partition's source content into its reserved region.
package assemble

import (
	"context"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/deploymenttheory/go-cvdisk/internal/gpt"
	"github.com/deploymenttheory/go-cvdisk/internal/layout"
)

// copyBufSize is the chunk size for streaming partition content.
const copyBufSize = 1 << 20

// Assemble writes the disk image described by layout and table to path.
// The file is created (or overwritten) and set to its final size before
// any content is written, so a failed run leaves a correctly sized,
// partially filled artifact rather than a truncated one. Partition
// regions are disjoint by construction, so their copies run concurrently,
// each through its own offset writer. On failure or cancellation the
// partial file is left in place for the caller to deal with.
func Assemble(ctx context.Context, l *layout.DiskLayout, table *gpt.Table, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return &IOError{Op: "open", Path: path, Err: err}
	}
	defer f.Close()

	if err := f.Truncate(int64(l.TotalSize())); err != nil {
		return &IOError{Op: "truncate", Path: path, Offset: l.TotalSize(), Err: err}
	}

	for _, b := range table.Blocks() {
		if _, err := f.WriteAt(b.Data, int64(b.Offset)); err != nil {
			return &IOError{Op: "write", Path: path, Offset: b.Offset, Err: err}
		}
	}

	g, ctx := errgroup.WithContext(ctx)
	for _, p := range l.Placements() {
		p := p
		g.Go(func() error {
			return copyPartition(ctx, f, path, p)
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	if err := f.Sync(); err != nil {
		return &IOError{Op: "sync", Path: path, Err: err}
	}
	if err := f.Close(); err != nil {
		return &IOError{Op: "close", Path: path, Err: err}
	}
	return nil
}

// copyPartition streams one partition's source into its region, pads the
// sector-rounded remainder with zeros and verifies the byte count.
// Content beyond the declared size is a spec/content mismatch, not a
// truncation opportunity.
func copyPartition(ctx context.Context, f *os.File, path string, p layout.Placement) error {
	src, err := p.Spec.Source.Open()
	if err != nil {
		return &IOError{Op: "open", Path: path, Partition: p.Spec.Name, Offset: p.Start, Err: err}
	}
	defer src.Close()

	buf := make([]byte, copyBufSize)
	var written uint64
	for written < p.Spec.Size {
		if err := ctx.Err(); err != nil {
			return err
		}

		chunk := uint64(len(buf))
		if remaining := p.Spec.Size - written; remaining < chunk {
			chunk = remaining
		}

		n, rerr := src.Read(buf[:chunk])
		if n > 0 {
			if _, werr := f.WriteAt(buf[:n], int64(p.Start+written)); werr != nil {
				return &IOError{Op: "write", Path: path, Partition: p.Spec.Name, Offset: p.Start + written, Err: werr}
			}
			written += uint64(n)
		}
		if rerr == io.EOF {
			break
		}
		if rerr != nil {
			return &IOError{Op: "read", Path: path, Partition: p.Spec.Name, Offset: p.Start + written, Err: rerr}
		}
	}

	// Anything left in the source past the declared size means the spec
	// and the content disagree.
	var probe [1]byte
	if n, _ := src.Read(probe[:]); n > 0 {
		return &ContentMismatchError{Partition: p.Spec.Name, Declared: p.Spec.Size}
	}

	reserved := p.ReservedSize()
	if err := padZero(f, path, p.Spec.Name, p.Start+written, reserved-written); err != nil {
		return err
	}

	logrus.WithFields(logrus.Fields{
		"partition": p.Spec.Name,
		"offset":    p.Start,
		"bytes":     written,
		"reserved":  reserved,
	}).Debug("partition content written")

	return nil
}

// padZero writes n explicit zero bytes at offset. The truncate step
// already guarantees zeros on most filesystems, but the reserved region
// must not depend on that.
func padZero(f *os.File, path, partition string, offset, n uint64) error {
	zeros := make([]byte, copyBufSize)
	for n > 0 {
		chunk := uint64(len(zeros))
		if n < chunk {
			chunk = n
		}
		if _, err := f.WriteAt(zeros[:chunk], int64(offset)); err != nil {
			return &IOError{Op: "write", Path: path, Partition: partition, Offset: offset, Err: err}
		}
		offset += chunk
		n -= chunk
	}
	return nil
}

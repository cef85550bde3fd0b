package ustar

import (
	"io"

	"github.com/pkg/errors"
)

// ChunkedCopier transfers an exact byte count off a stream in bounded
// chunks, so peak memory stays constant regardless of entry size. It is
// finite and non-restartable: once the budget is produced, Next returns
// io.EOF forever, and abandoning the copier midway leaves the source
// position undefined.
type ChunkedCopier struct {
	src       io.Reader
	buf       []byte
	remaining int64
}

// NewChunkedCopier prepares to transfer exactly total bytes from src.
// chunkSize <= 0 selects DefaultChunkSize.
func NewChunkedCopier(src io.Reader, total int64, chunkSize int) *ChunkedCopier {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	return &ChunkedCopier{src: src, buf: make([]byte, chunkSize), remaining: total}
}

// Remaining returns the byte count still to be produced.
func (c *ChunkedCopier) Remaining() int64 { return c.remaining }

// Next returns the next chunk, sized to the remaining budget when that is
// smaller than the chunk size, so the copier never reads past its total.
// The returned slice is only valid until the following call. io.EOF marks
// the terminal state; a source that dries up early is an error instead.
func (c *ChunkedCopier) Next() ([]byte, error) {
	if c.remaining <= 0 {
		return nil, io.EOF
	}
	n := int64(len(c.buf))
	if c.remaining < n {
		n = c.remaining
	}
	chunk := c.buf[:n]
	if _, err := io.ReadFull(c.src, chunk); err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return nil, errors.Wrapf(err, "chunked copy with %d bytes outstanding", c.remaining)
	}
	c.remaining -= n
	return chunk, nil
}

// WriteTo drains the copier into w and returns the bytes transferred.
func (c *ChunkedCopier) WriteTo(w io.Writer) (int64, error) {
	var written int64
	for {
		chunk, err := c.Next()
		if err == io.EOF {
			return written, nil
		}
		if err != nil {
			return written, err
		}
		n, err := w.Write(chunk)
		written += int64(n)
		if err != nil {
			return written, err
		}
	}
}

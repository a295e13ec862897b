package resource

import (
	"context"
	"errors"
	"io"
)

// RateLimitedWriter wraps an io.Writer, charging each write against the
// controller's bandwidth limit before it happens.
type RateLimitedWriter struct {
	ctx context.Context
	w   io.Writer
	c   *Controller
}

// NewRateLimitedWriter creates a writer throttled by c. ctx cancels waits
// for bandwidth.
func NewRateLimitedWriter(ctx context.Context, w io.Writer, c *Controller) *RateLimitedWriter {
	return &RateLimitedWriter{
		ctx: ctx,
		w:   w,
		c:   c,
	}
}

func (w *RateLimitedWriter) Write(p []byte) (int, error) {
	if err := w.c.AcquireIO(w.ctx, len(p)); err != nil {
		return 0, err
	}
	return w.w.Write(p)
}

// Seek forwards to the underlying writer when it supports seeking. Seeks
// move no payload bytes and are not charged.
func (w *RateLimitedWriter) Seek(offset int64, whence int) (int64, error) {
	s, ok := w.w.(io.Seeker)
	if !ok {
		return 0, errors.New("resource: underlying writer does not support seeking")
	}
	return s.Seek(offset, whence)
}

// RateLimitedReader wraps an io.Reader, charging each read against the
// controller's bandwidth limit.
type RateLimitedReader struct {
	ctx context.Context
	r   io.Reader
	c   *Controller
}

// NewRateLimitedReader creates a reader throttled by c. ctx cancels waits
// for bandwidth.
func NewRateLimitedReader(ctx context.Context, r io.Reader, c *Controller) *RateLimitedReader {
	return &RateLimitedReader{
		ctx: ctx,
		r:   r,
		c:   c,
	}
}

// Read charges after the underlying read, for the bytes actually moved.
// Short reads are not over-billed; the debt delays the next call instead.
func (r *RateLimitedReader) Read(p []byte) (int, error) {
	n, err := r.r.Read(p)
	if n > 0 {
		if werr := r.c.AcquireIO(r.ctx, n); werr != nil {
			return n, werr
		}
	}
	return n, err
}

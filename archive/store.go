package archive

import (
	"context"
	"io"
	"os"
)

// ErrNotFound is returned when a named object does not exist.
//
// Implementations return an error satisfying errors.Is(err, ErrNotFound).
// The default maps to os.ErrNotExist, so filesystem backends need no
// translation.
var ErrNotFound = os.ErrNotExist

// Store is the persistence abstraction for snapshot objects. Implementations
// must be safe for concurrent use.
type Store interface {
	// Open opens an object for reading.
	Open(ctx context.Context, name string) (Blob, error)

	// Create opens an object for streaming writes. The object becomes
	// visible when the returned blob is closed.
	Create(ctx context.Context, name string) (WritableBlob, error)

	// Put writes an object atomically.
	Put(ctx context.Context, name string, data []byte) error

	// Delete removes an object. Deleting a missing object is not an error.
	Delete(ctx context.Context, name string) error

	// List returns the names under prefix in lexical order.
	List(ctx context.Context, prefix string) ([]string, error)
}

// Blob is a read-only handle to a stored object.
type Blob interface {
	io.ReaderAt
	io.Closer

	// Size returns the object length in bytes.
	Size() int64
}

// WritableBlob is a streaming write handle. Sync makes buffered data
// durable where the backend supports it; object stores finalize on Close
// and treat Sync as a no-op.
type WritableBlob interface {
	io.WriteCloser
	Sync() error
}

// Mappable is an optional Blob interface for zero-copy access. The slice is
// valid until the blob is closed.
type Mappable interface {
	Bytes() ([]byte, error)
}

// ReadAll reads a whole object into memory.
func ReadAll(ctx context.Context, s Store, name string) ([]byte, error) {
	b, err := s.Open(ctx, name)
	if err != nil {
		return nil, err
	}
	defer b.Close()

	if m, ok := b.(Mappable); ok {
		data, err := m.Bytes()
		if err == nil {
			out := make([]byte, len(data))
			copy(out, data)
			return out, nil
		}
	}

	buf := make([]byte, b.Size())
	if _, err := b.ReadAt(buf, 0); err != nil && err != io.EOF {
		return nil, err
	}
	return buf, nil
}

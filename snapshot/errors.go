package snapshot

import "errors"

var (
	// ErrBadMagic is returned when the stream does not start with the
	// snapshot magic.
	ErrBadMagic = errors.New("snapshot: bad magic")

	// ErrUnsupportedVersion is returned for format versions this build does
	// not understand.
	ErrUnsupportedVersion = errors.New("snapshot: unsupported format version")

	// ErrUnknownCompression is returned for an unrecognized compression type
	// byte.
	ErrUnknownCompression = errors.New("snapshot: unknown compression type")

	// ErrChecksum is returned when a section payload does not match its
	// stored CRC.
	ErrChecksum = errors.New("snapshot: section checksum mismatch")

	// ErrBadHeader is returned when header fields are out of range.
	ErrBadHeader = errors.New("snapshot: malformed header")

	// ErrTruncated is returned when the stream ends inside a header or
	// section, or a section decodes to the wrong length.
	ErrTruncated = errors.New("snapshot: truncated snapshot")

	// ErrSectionTooLarge guards against absurd section sizes from corrupt
	// headers.
	ErrSectionTooLarge = errors.New("snapshot: section too large")
)

package snapshot

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"hash/crc32"
	"io"
	"math"

	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/softsim/trajan/box"
	"github.com/softsim/trajan/frame"
)

const (
	formatVersion = 1

	// headerSize is magic (4) + version, compression, flags, dims (4) +
	// box (48) + particle count (4).
	headerSize = 60

	// maxSectionSize bounds section allocations against corrupt headers.
	maxSectionSize = 1 << 30

	flagOrientations = 1 << 0
	flagTypes        = 1 << 1
)

var magic = [4]byte{'T', 'R', 'J', 'S'}

// Options configures snapshot encoding.
type Options struct {
	// Compression selects the section codec. Decoding reads whatever the
	// stream was written with.
	Compression Compression
}

// DefaultOptions holds the default encoding options.
var DefaultOptions = Options{
	Compression: CompressionZSTD,
}

// Write encodes a frame to w.
//
// Format:
//
//	[Magic "TRJS": 4] [Version: 1] [Compression: 1] [Flags: 1] [Dims: 1]
//	[Box Lx Ly Lz XY XZ YZ: 6*8] [Count: 4]
//	[Positions section] [Orientations section?] [Types section?]
//
// Each section is [RawSize: 4] [StoredSize: 4] [CRC32: 4] [Payload], where a
// zero StoredSize marks a verbatim payload of RawSize bytes and the CRC is
// taken over the stored payload.
func Write(w io.Writer, f *frame.Frame, optFns ...func(o *Options)) error {
	opts := DefaultOptions
	for _, fn := range optFns {
		fn(&opts)
	}

	if !opts.Compression.valid() {
		return fmt.Errorf("%w: %d", ErrUnknownCompression, uint8(opts.Compression))
	}
	if err := f.Validate(); err != nil {
		return err
	}

	var flags byte
	if f.HasOrientations() {
		flags |= flagOrientations
	}
	if f.HasTypes() {
		flags |= flagTypes
	}
	dims := byte(3)
	if f.Box.Is2D() {
		dims = 2
	}

	hdr := make([]byte, headerSize)
	copy(hdr[0:4], magic[:])
	hdr[4] = formatVersion
	hdr[5] = byte(opts.Compression)
	hdr[6] = flags
	hdr[7] = dims
	cell := [6]float64{
		f.Box.Lx(), f.Box.Ly(), f.Box.Lz(),
		f.Box.TiltXY(), f.Box.TiltXZ(), f.Box.TiltYZ(),
	}
	for i, v := range cell {
		binary.LittleEndian.PutUint64(hdr[8+8*i:], math.Float64bits(v))
	}
	binary.LittleEndian.PutUint32(hdr[56:], uint32(f.Len()))

	if _, err := w.Write(hdr); err != nil {
		return err
	}

	if err := writeSection(w, marshalVecs(f.Positions), opts.Compression); err != nil {
		return err
	}
	if f.HasOrientations() {
		if err := writeSection(w, marshalQuats(f.Orientations), opts.Compression); err != nil {
			return err
		}
	}
	if f.HasTypes() {
		if err := writeSection(w, marshalTypes(f.TypeIDs), opts.Compression); err != nil {
			return err
		}
	}
	return nil
}

// Read decodes a frame from w's counterpart stream. The returned frame is
// validated and independent of the reader's buffers.
func Read(r io.Reader) (*frame.Frame, error) {
	hdr := make([]byte, headerSize)
	if _, err := io.ReadFull(r, hdr); err != nil {
		return nil, sectionReadErr(err)
	}

	if !bytes.Equal(hdr[0:4], magic[:]) {
		return nil, ErrBadMagic
	}
	if hdr[4] != formatVersion {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, hdr[4])
	}
	comp := Compression(hdr[5])
	if !comp.valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownCompression, hdr[5])
	}
	flags := hdr[6]
	dims := hdr[7]
	if dims != 2 && dims != 3 {
		return nil, fmt.Errorf("%w: dimensionality %d", ErrBadHeader, dims)
	}

	var cell [6]float64
	for i := range cell {
		cell[i] = math.Float64frombits(binary.LittleEndian.Uint64(hdr[8+8*i:]))
	}
	count := int(binary.LittleEndian.Uint32(hdr[56:]))

	var (
		bx  box.Box
		err error
	)
	if dims == 2 {
		bx, err = box.NewPlanar(cell[0], cell[1], func(o *box.Options) {
			o.XY = cell[3]
		})
	} else {
		bx, err = box.New(cell[0], cell[1], cell[2], func(o *box.Options) {
			o.XY = cell[3]
			o.XZ = cell[4]
			o.YZ = cell[5]
		})
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadHeader, err)
	}

	raw, err := readSection(r, comp)
	if err != nil {
		return nil, err
	}
	positions, err := unmarshalVecs(raw, count)
	if err != nil {
		return nil, err
	}

	f := &frame.Frame{Box: bx, Positions: positions}
	if flags&flagOrientations != 0 {
		raw, err := readSection(r, comp)
		if err != nil {
			return nil, err
		}
		if f.Orientations, err = unmarshalQuats(raw, count); err != nil {
			return nil, err
		}
	}
	if flags&flagTypes != 0 {
		raw, err := readSection(r, comp)
		if err != nil {
			return nil, err
		}
		if f.TypeIDs, err = unmarshalTypes(raw, count); err != nil {
			return nil, err
		}
	}

	if err := f.Validate(); err != nil {
		return nil, err
	}
	return f, nil
}

func writeSection(w io.Writer, raw []byte, c Compression) error {
	stored, storedSize, err := compress(raw, c)
	if err != nil {
		return err
	}

	var hdr [12]byte
	binary.LittleEndian.PutUint32(hdr[0:], uint32(len(raw)))
	binary.LittleEndian.PutUint32(hdr[4:], storedSize)
	binary.LittleEndian.PutUint32(hdr[8:], crc32.ChecksumIEEE(stored))
	if _, err := w.Write(hdr[:]); err != nil {
		return err
	}
	_, err = w.Write(stored)
	return err
}

func readSection(r io.Reader, c Compression) ([]byte, error) {
	var hdr [12]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return nil, sectionReadErr(err)
	}

	rawSize := binary.LittleEndian.Uint32(hdr[0:])
	storedSize := binary.LittleEndian.Uint32(hdr[4:])
	sum := binary.LittleEndian.Uint32(hdr[8:])
	if rawSize > maxSectionSize || storedSize > maxSectionSize {
		return nil, ErrSectionTooLarge
	}

	n := storedSize
	if n == 0 {
		n = rawSize
	}
	stored := make([]byte, n)
	if _, err := io.ReadFull(r, stored); err != nil {
		return nil, sectionReadErr(err)
	}
	if crc32.ChecksumIEEE(stored) != sum {
		return nil, ErrChecksum
	}

	return decompress(stored, storedSize, rawSize, c)
}

func sectionReadErr(err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return ErrTruncated
	}
	return err
}

func marshalVecs(pts []r3.Vec) []byte {
	buf := make([]byte, len(pts)*24)
	for i, p := range pts {
		off := i * 24
		binary.LittleEndian.PutUint64(buf[off:], math.Float64bits(p.X))
		binary.LittleEndian.PutUint64(buf[off+8:], math.Float64bits(p.Y))
		binary.LittleEndian.PutUint64(buf[off+16:], math.Float64bits(p.Z))
	}
	return buf
}

func unmarshalVecs(raw []byte, n int) ([]r3.Vec, error) {
	if len(raw) != n*24 {
		return nil, ErrTruncated
	}
	pts := make([]r3.Vec, n)
	for i := range pts {
		off := i * 24
		pts[i] = r3.Vec{
			X: math.Float64frombits(binary.LittleEndian.Uint64(raw[off:])),
			Y: math.Float64frombits(binary.LittleEndian.Uint64(raw[off+8:])),
			Z: math.Float64frombits(binary.LittleEndian.Uint64(raw[off+16:])),
		}
	}
	return pts, nil
}

func marshalQuats(qs []quat.Number) []byte {
	buf := make([]byte, len(qs)*32)
	for i, q := range qs {
		off := i * 32
		binary.LittleEndian.PutUint64(buf[off:], math.Float64bits(q.Real))
		binary.LittleEndian.PutUint64(buf[off+8:], math.Float64bits(q.Imag))
		binary.LittleEndian.PutUint64(buf[off+16:], math.Float64bits(q.Jmag))
		binary.LittleEndian.PutUint64(buf[off+24:], math.Float64bits(q.Kmag))
	}
	return buf
}

func unmarshalQuats(raw []byte, n int) ([]quat.Number, error) {
	if len(raw) != n*32 {
		return nil, ErrTruncated
	}
	qs := make([]quat.Number, n)
	for i := range qs {
		off := i * 32
		qs[i] = quat.Number{
			Real: math.Float64frombits(binary.LittleEndian.Uint64(raw[off:])),
			Imag: math.Float64frombits(binary.LittleEndian.Uint64(raw[off+8:])),
			Jmag: math.Float64frombits(binary.LittleEndian.Uint64(raw[off+16:])),
			Kmag: math.Float64frombits(binary.LittleEndian.Uint64(raw[off+24:])),
		}
	}
	return qs, nil
}

func marshalTypes(ids []uint32) []byte {
	buf := make([]byte, len(ids)*4)
	for i, id := range ids {
		binary.LittleEndian.PutUint32(buf[i*4:], id)
	}
	return buf
}

func unmarshalTypes(raw []byte, n int) ([]uint32, error) {
	if len(raw) != n*4 {
		return nil, ErrTruncated
	}
	ids := make([]uint32, n)
	for i := range ids {
		ids[i] = binary.LittleEndian.Uint32(raw[i*4:])
	}
	return ids, nil
}

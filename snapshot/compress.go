package snapshot

import (
	"fmt"
	"sync"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Compression selects the block codec for section payloads.
type Compression uint8

const (
	// CompressionNone stores sections verbatim.
	CompressionNone Compression = 0
	// CompressionLZ4 uses LZ4 block compression (fast, moderate ratio).
	CompressionLZ4 Compression = 1
	// CompressionZSTD uses ZSTD block compression (slower, better ratio).
	CompressionZSTD Compression = 2
)

func (c Compression) valid() bool {
	switch c {
	case CompressionNone, CompressionLZ4, CompressionZSTD:
		return true
	}
	return false
}

func (c Compression) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionLZ4:
		return "lz4"
	case CompressionZSTD:
		return "zstd"
	default:
		return fmt.Sprintf("compression(%d)", uint8(c))
	}
}

var (
	zstdEncoderPool sync.Pool
	zstdDecoderPool sync.Pool
)

func getZstdEncoder() *zstd.Encoder {
	if v := zstdEncoderPool.Get(); v != nil {
		return v.(*zstd.Encoder)
	}
	enc, _ := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	return enc
}

func putZstdEncoder(enc *zstd.Encoder) {
	zstdEncoderPool.Put(enc)
}

func getZstdDecoder() *zstd.Decoder {
	if v := zstdDecoderPool.Get(); v != nil {
		return v.(*zstd.Decoder)
	}
	dec, _ := zstd.NewReader(nil)
	return dec
}

func putZstdDecoder(dec *zstd.Decoder) {
	zstdDecoderPool.Put(dec)
}

// compress encodes raw with the requested codec. A zero stored size signals
// that the payload is kept verbatim, either by choice or because compression
// did not shrink it.
func compress(raw []byte, c Compression) (stored []byte, storedSize uint32, err error) {
	if c == CompressionNone || len(raw) == 0 {
		return raw, 0, nil
	}

	var compressed []byte
	switch c {
	case CompressionLZ4:
		buf := make([]byte, lz4.CompressBlockBound(len(raw)))
		n, err := lz4.CompressBlock(raw, buf, nil)
		if err != nil {
			return nil, 0, err
		}
		if n == 0 {
			// Incompressible.
			return raw, 0, nil
		}
		compressed = buf[:n]
	case CompressionZSTD:
		enc := getZstdEncoder()
		defer putZstdEncoder(enc)
		compressed = enc.EncodeAll(raw, nil)
	default:
		return nil, 0, fmt.Errorf("%w: %d", ErrUnknownCompression, uint8(c))
	}

	if len(compressed) >= len(raw) {
		return raw, 0, nil
	}
	return compressed, uint32(len(compressed)), nil
}

// decompress reverses compress. storedSize zero means the payload is
// verbatim regardless of the codec.
func decompress(stored []byte, storedSize, rawSize uint32, c Compression) ([]byte, error) {
	if storedSize == 0 {
		return stored, nil
	}

	switch c {
	case CompressionLZ4:
		raw := make([]byte, rawSize)
		n, err := lz4.UncompressBlock(stored, raw)
		if err != nil {
			return nil, err
		}
		if uint32(n) != rawSize {
			return nil, ErrTruncated
		}
		return raw, nil
	case CompressionZSTD:
		dec := getZstdDecoder()
		defer putZstdDecoder(dec)
		raw, err := dec.DecodeAll(stored, make([]byte, 0, rawSize))
		if err != nil {
			return nil, err
		}
		if uint32(len(raw)) != rawSize {
			return nil, ErrTruncated
		}
		return raw, nil
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownCompression, uint8(c))
	}
}

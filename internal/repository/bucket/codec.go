package bucket

import (
	"encoding/binary"
	"errors"
	"fmt"
	"sync"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Compression selects how bucket payloads are stored.
type Compression uint8

// Compression tags. The tag is the first byte of every stored payload so a
// reader never needs the writer's configuration.
const (
	CompressionNone Compression = 0
	CompressionZSTD Compression = 1
	CompressionLZ4  Compression = 2
)

// ErrCorruptPayload is returned when a stored payload cannot be decoded.
var ErrCorruptPayload = errors.New("corrupt bucket payload")

// ParseCompression maps a config value to a Compression.
func ParseCompression(s string) (Compression, error) {
	switch s {
	case "", "none":
		return CompressionNone, nil
	case "zstd":
		return CompressionZSTD, nil
	case "lz4":
		return CompressionLZ4, nil
	default:
		return 0, fmt.Errorf("unknown compression %q", s)
	}
}

func (c Compression) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionZSTD:
		return "zstd"
	case CompressionLZ4:
		return "lz4"
	default:
		return "invalid"
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

func getZstdDecoder() *zstd.Decoder {
	if v := zstdDecoderPool.Get(); v != nil {
		return v.(*zstd.Decoder)
	}
	dec, _ := zstd.NewReader(nil)
	return dec
}

// lz4 payloads carry the raw size after the tag:
// [tag][rawSize uint32 BE][block...]
const lz4HeaderSize = 1 + 4

// lz4MaxRatio is the largest expansion an lz4 block can encode. A header
// claiming more than block*lz4MaxRatio bytes is corrupt.
const lz4MaxRatio = 255

// encodePayload frames raw with a compression tag. LZ4 falls back to an
// uncompressed frame when the block does not shrink.
func encodePayload(raw []byte, c Compression) ([]byte, error) {
	switch c {
	case CompressionNone:
		return frameNone(raw), nil

	case CompressionZSTD:
		enc := getZstdEncoder()
		defer zstdEncoderPool.Put(enc)
		out := make([]byte, 1, 1+len(raw)/2)
		out[0] = byte(CompressionZSTD)
		return enc.EncodeAll(raw, out), nil

	case CompressionLZ4:
		out := make([]byte, lz4HeaderSize+lz4.CompressBlockBound(len(raw)))
		n, err := lz4.CompressBlock(raw, out[lz4HeaderSize:], nil)
		if err != nil {
			return nil, fmt.Errorf("lz4 compress: %w", err)
		}
		if n == 0 {
			return frameNone(raw), nil
		}
		out[0] = byte(CompressionLZ4)
		binary.BigEndian.PutUint32(out[1:lz4HeaderSize], uint32(len(raw)))
		return out[:lz4HeaderSize+n], nil

	default:
		return nil, fmt.Errorf("unknown compression %d", c)
	}
}

func frameNone(raw []byte) []byte {
	out := make([]byte, 1+len(raw))
	out[0] = byte(CompressionNone)
	copy(out[1:], raw)
	return out
}

// decodePayload strips the tag and decompresses.
func decodePayload(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty", ErrCorruptPayload)
	}

	switch Compression(data[0]) {
	case CompressionNone:
		return data[1:], nil

	case CompressionZSTD:
		dec := getZstdDecoder()
		defer zstdDecoderPool.Put(dec)
		raw, err := dec.DecodeAll(data[1:], nil)
		if err != nil {
			return nil, fmt.Errorf("%w: zstd: %w", ErrCorruptPayload, err)
		}
		return raw, nil

	case CompressionLZ4:
		if len(data) < lz4HeaderSize {
			return nil, fmt.Errorf("%w: lz4 header too short", ErrCorruptPayload)
		}
		size := binary.BigEndian.Uint32(data[1:lz4HeaderSize])
		block := data[lz4HeaderSize:]
		if uint64(size) > uint64(len(block))*lz4MaxRatio {
			return nil, fmt.Errorf("%w: lz4 size %d exceeds block of %d bytes", ErrCorruptPayload, size, len(block))
		}
		raw := make([]byte, size)
		n, err := lz4.UncompressBlock(block, raw)
		if err != nil {
			return nil, fmt.Errorf("%w: lz4: %w", ErrCorruptPayload, err)
		}
		if uint32(n) != size {
			return nil, fmt.Errorf("%w: lz4 size mismatch", ErrCorruptPayload)
		}
		return raw, nil

	default:
		return nil, fmt.Errorf("%w: unknown tag %#x", ErrCorruptPayload, data[0])
	}
}

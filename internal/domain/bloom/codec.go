package bloom

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

var (
	// ErrMalformedDescriptors signals a descriptor blob that is not a whole number of records.
	ErrMalformedDescriptors = errors.New("bloom: malformed descriptor data")
	// ErrSerialOverflow signals a serial that does not fit the record serial width.
	ErrSerialOverflow = errors.New("bloom: serial overflows record width")
	// ErrInvalidWidth signals an unsupported serial width.
	ErrInvalidWidth = errors.New("bloom: serial width must be 4 or 8")
)

// SerialWidth is the byte width of the serial field in a descriptor record.
type SerialWidth int

// Supported serial widths.
const (
	Width32 SerialWidth = 4
	Width64 SerialWidth = 8
)

// IsValid reports whether w is a supported width.
func (w SerialWidth) IsValid() bool {
	return w == Width32 || w == Width64
}

// RecordSize returns the byte size of one record: serial + 2 bytes of bloom bits.
func (w SerialWidth) RecordSize() int {
	return int(w) + 2
}

// MarshalDescriptors encodes descriptors as contiguous fixed-width records.
// Record: [serial big-endian, w bytes][bloom bits big-endian, 2 bytes].
func MarshalDescriptors(ds []Descriptor, w SerialWidth) ([]byte, error) {
	if !w.IsValid() {
		return nil, ErrInvalidWidth
	}

	size := w.RecordSize()
	out := make([]byte, len(ds)*size)
	for i, d := range ds {
		rec := out[i*size : (i+1)*size]
		switch w {
		case Width32:
			if d.serial > math.MaxUint32 {
				return nil, fmt.Errorf("%w: serial %d", ErrSerialOverflow, d.serial)
			}
			binary.BigEndian.PutUint32(rec, uint32(d.serial))
		case Width64:
			binary.BigEndian.PutUint64(rec, uint64(d.serial))
		}
		binary.BigEndian.PutUint16(rec[w:], uint16(d.bits))
	}
	return out, nil
}

// UnmarshalDescriptors decodes fixed-width records, preserving their order.
func UnmarshalDescriptors(data []byte, w SerialWidth) ([]Descriptor, error) {
	if !w.IsValid() {
		return nil, ErrInvalidWidth
	}

	size := w.RecordSize()
	if len(data)%size != 0 {
		return nil, fmt.Errorf("%w: %d bytes is not a multiple of %d", ErrMalformedDescriptors, len(data), size)
	}

	ds := make([]Descriptor, len(data)/size)
	for i := range ds {
		rec := data[i*size : (i+1)*size]
		var serial Serial
		if w == Width32 {
			serial = Serial(binary.BigEndian.Uint32(rec))
		} else {
			serial = Serial(binary.BigEndian.Uint64(rec))
		}
		ds[i] = NewDescriptor(serial, Bits(binary.BigEndian.Uint16(rec[w:])))
	}
	return ds, nil
}

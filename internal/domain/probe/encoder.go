package probe

import (
	"errors"
	"fmt"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/transform"
)

// Encoder writes as much of text as fits into buf.
// read is the number of bytes of text consumed, written the number of bytes
// stored in buf. read < len(text) means the encoding was cut short.
// Running out of room is not an error.
type Encoder interface {
	EncodeInto(text string, buf []byte) (read, written int, err error)
}

// UTF8Encoder copies text as UTF-8, stopping before the first rune that does
// not fit. A rune is never split.
type UTF8Encoder struct{}

// EncodeInto implements Encoder.
func (UTF8Encoder) EncodeInto(text string, buf []byte) (read, written int, err error) {
	for read < len(text) {
		_, size := utf8.DecodeRuneInString(text[read:])
		if written+size > len(buf) {
			break
		}
		copy(buf[written:], text[read:read+size])
		read += size
		written += size
	}
	return read, written, nil
}

// CharsetEncoder encodes text into a single-byte or multi-byte charset.
// Runes the charset cannot represent are replaced with its substitute byte.
type CharsetEncoder struct {
	enc encoding.Encoding
}

// NewCharsetEncoder wraps an x/text encoding, e.g. charmap.ISO8859_1.
func NewCharsetEncoder(enc encoding.Encoding) CharsetEncoder {
	return CharsetEncoder{enc: enc}
}

// EncodeInto implements Encoder.
func (c CharsetEncoder) EncodeInto(text string, buf []byte) (read, written int, err error) {
	t := encoding.ReplaceUnsupported(c.enc.NewEncoder())
	written, read, err = t.Transform(buf, []byte(text), true)
	// ErrShortDst still reports the bytes that fit.
	if err != nil && !errors.Is(err, transform.ErrShortDst) {
		return read, written, fmt.Errorf("encode: %w", err)
	}
	return read, written, nil
}

// EncoderFor resolves an IANA charset name. Empty and UTF-8 select
// UTF8Encoder; any other charset known to x/text selects a CharsetEncoder.
func EncoderFor(charset string) (Encoder, error) {
	if charset == "" {
		return UTF8Encoder{}, nil
	}
	e, err := ianaindex.IANA.Encoding(charset)
	if err != nil {
		return nil, fmt.Errorf("charset %q: %w", charset, err)
	}
	if e == nil {
		return nil, fmt.Errorf("charset %q is not supported", charset)
	}
	if name, _ := ianaindex.IANA.Name(e); name == "UTF-8" {
		return UTF8Encoder{}, nil
	}
	return NewCharsetEncoder(e), nil
}

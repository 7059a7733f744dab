// Package probe reduces filter keys to the 16-bit probes tested against
// bucket Bloom summaries.
//
// A key is serialized into a caller-owned scratch buffer, digested with a
// 256-bit digest and folded down to 16 bits. Each of the four nibbles of the
// probe acts as one Bloom hash, so a single digest stands in for four hash
// functions.
package probe

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"fmt"

	"github.com/kailas-cloud/bloomprobe/internal/deferred"
	"github.com/kailas-cloud/bloomprobe/internal/domain"
)

// DigestSize is the digest length in bytes.
const DigestSize = 32

// KeySize is the scratch size needed for an int64 key.
const KeySize = 8

// MaxTextSize is the largest scratch buffer used for text keys.
const MaxTextSize = 256

// DigestFunc computes a fixed 256-bit digest.
type DigestFunc func(data []byte) ([DigestSize]byte, error)

// SHA256 is the default digest.
func SHA256(data []byte) ([DigestSize]byte, error) {
	return sha256.Sum256(data), nil
}

// FoldDigest folds a 32-byte digest into a 16-bit probe. The digest is read as
// four big-endian uint64 words; even and odd words are XORed together, then
// the result is halved twice by XORing its upper and lower halves.
func FoldDigest(d [DigestSize]byte) uint16 {
	w0 := binary.BigEndian.Uint64(d[0:8])
	w1 := binary.BigEndian.Uint64(d[8:16])
	w2 := binary.BigEndian.Uint64(d[16:24])
	w3 := binary.BigEndian.Uint64(d[24:32])

	x := (w0 ^ w2) ^ (w1 ^ w3)
	h32 := uint32(x>>32) ^ uint32(x)
	return uint16(h32>>16) ^ uint16(h32)
}

// KeyToProbe derives the probe of an int64 key. The key is written big-endian
// into scratch when the IO runs, so scratch must not be shared with another
// derivation in flight.
func KeyToProbe(key int64, scratch *[KeySize]byte, digest DigestFunc) deferred.IO[uint16] {
	if digest == nil {
		digest = SHA256
	}
	return func(context.Context) (uint16, error) {
		binary.BigEndian.PutUint64(scratch[:], uint64(key))
		return digestAndFold(digest, scratch[:])
	}
}

// TextProbe is the probe of a text key together with how much of the key
// actually went into it.
type TextProbe struct {
	Probe     uint16
	Written   int
	Truncated bool
}

// TextToProbe derives the probe of a text key. Only the prefix of scratch the
// encoder reports as written is digested; unused capacity is ignored. A key
// that does not fit is hashed as its encoded prefix and reported as
// Truncated. scratch is capped at MaxTextSize bytes.
func TextToProbe(text string, enc Encoder, scratch []byte, digest DigestFunc) deferred.IO[TextProbe] {
	if digest == nil {
		digest = SHA256
	}
	if len(scratch) > MaxTextSize {
		scratch = scratch[:MaxTextSize]
	}
	return func(context.Context) (TextProbe, error) {
		read, written, err := enc.EncodeInto(text, scratch)
		if err != nil {
			return TextProbe{}, fmt.Errorf("%w: %w", domain.ErrEncodingFailure, err)
		}

		p, err := digestAndFold(digest, scratch[:written])
		if err != nil {
			return TextProbe{}, err
		}
		return TextProbe{
			Probe:     p,
			Written:   written,
			Truncated: read < len(text),
		}, nil
	}
}

// Strict rejects truncated text probes with domain.ErrEncodingTruncation.
func Strict(tp TextProbe) deferred.IO[uint16] {
	if tp.Truncated {
		return deferred.Fail[uint16](fmt.Errorf(
			"%w: only %d bytes fit the scratch buffer", domain.ErrEncodingTruncation, tp.Written,
		))
	}
	return deferred.Of(tp.Probe)
}

func digestAndFold(digest DigestFunc, data []byte) (uint16, error) {
	d, err := digest(data)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", domain.ErrDigestFailure, err)
	}
	return FoldDigest(d), nil
}

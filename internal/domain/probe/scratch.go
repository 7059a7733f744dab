package probe

import (
	"context"
	"sync"

	"github.com/kailas-cloud/bloomprobe/internal/deferred"
)

// Scratch buffers are checked out for the duration of one derivation and
// returned when it completes, so concurrent derivations never share one.
var (
	keyScratch  = sync.Pool{New: func() any { return new([KeySize]byte) }}
	textScratch = sync.Pool{New: func() any { return new([MaxTextSize]byte) }}
)

// KeyProber returns a deriver for int64 keys backed by pooled scratch buffers.
func KeyProber(digest DigestFunc) func(key int64) deferred.IO[uint16] {
	return func(key int64) deferred.IO[uint16] {
		return func(ctx context.Context) (uint16, error) {
			buf := keyScratch.Get().(*[KeySize]byte)
			defer keyScratch.Put(buf)

			return KeyToProbe(key, buf, digest)(ctx)
		}
	}
}

// TextProber returns a deriver for text keys backed by pooled scratch buffers.
// With strict set, keys that do not fit MaxTextSize encoded bytes fail with
// domain.ErrEncodingTruncation instead of being hashed as a prefix.
func TextProber(enc Encoder, digest DigestFunc, strict bool) func(text string) deferred.IO[uint16] {
	return func(text string) deferred.IO[uint16] {
		return func(ctx context.Context) (uint16, error) {
			buf := textScratch.Get().(*[MaxTextSize]byte)
			defer textScratch.Put(buf)

			tp, err := TextToProbe(text, enc, buf[:], digest)(ctx)
			if err != nil {
				return 0, err
			}
			if strict {
				return Strict(tp)(ctx)
			}
			return tp.Probe, nil
		}
	}
}

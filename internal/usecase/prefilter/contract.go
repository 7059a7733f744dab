package prefilter

import (
	"github.com/kailas-cloud/bloomprobe/internal/deferred"
	"github.com/kailas-cloud/bloomprobe/internal/domain/bloom"
)

// ProbeFunc derives the probe of a filter criterion.
type ProbeFunc[F, H any] func(info F) deferred.IO[H]

// MembershipFunc tests a probe against a bucket summary.
type MembershipFunc[H any] func(probe H, summary bloom.Bits) bloom.Result

// FetchFunc retrieves a bucket by serial.
type FetchFunc[B any] func(serial bloom.Serial) deferred.IO[B]

// ExtractFunc lists the items of a fetched bucket.
type ExtractFunc[B, I any] func(bucket B) deferred.IO[[]I]

// ExactFunc is the exact predicate; only Found keeps an item.
type ExactFunc[F, I any] func(info F, item I) bloom.Result

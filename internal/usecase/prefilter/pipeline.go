// Package prefilter selects candidate buckets through their Bloom summaries
// and retrieves the items that survive an exact predicate.
package prefilter

import (
	"context"

	"github.com/kailas-cloud/bloomprobe/internal/deferred"
	"github.com/kailas-cloud/bloomprobe/internal/domain/bloom"
)

// DefaultMaxBuckets caps the number of candidate buckets fetched per call.
const DefaultMaxBuckets = 256

// Outcome is the result of a retrieval together with what the bucket cap
// left out.
type Outcome[I any] struct {
	// Items are the confirmed matches in candidate order, then bucket order.
	Items []I
	// Candidates are all serials that passed the Bloom test, in filtering order.
	Candidates []bloom.Serial
	// Fetched is the number of leading candidates that were fetched.
	Fetched int
}

// Truncated reports whether the bucket cap dropped any candidate.
func (o Outcome[I]) Truncated() bool { return len(o.Candidates) > o.Fetched }

// Dropped returns the candidates that were not fetched.
func (o Outcome[I]) Dropped() []bloom.Serial { return o.Candidates[o.Fetched:] }

// Pipeline bundles the collaborators of a retrieval.
type Pipeline[F, H, B, I any] struct {
	Probe   ProbeFunc[F, H]
	Test    MembershipFunc[H]
	Fetch   FetchFunc[B]
	Extract ExtractFunc[B, I]
	Exact   ExactFunc[F, I]

	// MaxBuckets caps fetched candidates; non-positive means DefaultMaxBuckets.
	MaxBuckets int
	// Concurrency bounds fetches and extractions in flight; zero is unbounded.
	Concurrency int
}

// Serials returns the candidate serials for info.
func (p *Pipeline[F, H, B, I]) Serials(info F, descriptors []bloom.Descriptor) deferred.IO[[]bloom.Serial] {
	return FilterSerials(info, p.Probe, descriptors, p.Test)
}

// Retrieve filters descriptors, fetches the first MaxBuckets candidates,
// extracts their items and keeps the exact matches. The first fetch or
// extraction failure fails the whole call.
func (p *Pipeline[F, H, B, I]) Retrieve(info F, descriptors []bloom.Descriptor) deferred.IO[Outcome[I]] {
	return deferred.Bind(p.Serials(info, descriptors), func(candidates []bloom.Serial) deferred.IO[Outcome[I]] {
		taken := Take(candidates, p.MaxBuckets)

		fetches := make([]deferred.IO[B], len(taken))
		for i, serial := range taken {
			fetches[i] = p.Fetch(serial)
		}

		extracted := deferred.Bind(deferred.All(fetches, p.Concurrency), func(buckets []B) deferred.IO[[][]I] {
			extracts := make([]deferred.IO[[]I], len(buckets))
			for i, b := range buckets {
				extracts[i] = p.Extract(b)
			}
			return deferred.All(extracts, p.Concurrency)
		})

		return deferred.Map(extracted, func(lists [][]I) Outcome[I] {
			items := make([]I, 0)
			for _, list := range lists {
				for _, item := range list {
					if p.Exact(info, item) == bloom.Found {
						items = append(items, item)
					}
				}
			}
			return Outcome[I]{Items: items, Candidates: candidates, Fetched: len(taken)}
		})
	})
}

// FilterSerials derives the probe of info once and returns, in descriptor
// order, the serials whose summaries may contain it. Nothing is fetched.
func FilterSerials[F, H any](
	info F, derive ProbeFunc[F, H], descriptors []bloom.Descriptor, test MembershipFunc[H],
) deferred.IO[[]bloom.Serial] {
	return deferred.Bind(derive(info), deferred.Lift(func(_ context.Context, probe H) ([]bloom.Serial, error) {
		serials := make([]bloom.Serial, 0, len(descriptors))
		for _, d := range descriptors {
			if test(probe, d.Bits()) == bloom.MayExist {
				serials = append(serials, d.Serial())
			}
		}
		return serials, nil
	}))
}

// GetItems runs a full retrieval and returns only the matched items.
// maxBuckets keeps the first N candidates; non-positive means DefaultMaxBuckets,
// so 0 cannot ask for no fetches and a negative cap never drops from the end.
// Use FilterSerials to list candidates without fetching.
func GetItems[F, H, B, I any](
	info F,
	derive ProbeFunc[F, H],
	descriptors []bloom.Descriptor,
	test MembershipFunc[H],
	fetch FetchFunc[B],
	extract ExtractFunc[B, I],
	exact ExactFunc[F, I],
	maxBuckets int,
) deferred.IO[[]I] {
	p := &Pipeline[F, H, B, I]{
		Probe:      derive,
		Test:       test,
		Fetch:      fetch,
		Extract:    extract,
		Exact:      exact,
		MaxBuckets: maxBuckets,
	}
	return deferred.Map(p.Retrieve(info, descriptors), func(o Outcome[I]) []I { return o.Items })
}

// Take returns the first maxBuckets serials (first-N policy, no reordering).
// Non-positive maxBuckets means DefaultMaxBuckets.
func Take(serials []bloom.Serial, maxBuckets int) []bloom.Serial {
	if maxBuckets <= 0 {
		maxBuckets = DefaultMaxBuckets
	}
	if len(serials) > maxBuckets {
		return serials[:maxBuckets]
	}
	return serials
}

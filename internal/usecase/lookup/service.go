// Package lookup answers order queries through the Bloom pre-filter.
package lookup

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/bloomprobe/internal/deferred"
	"github.com/kailas-cloud/bloomprobe/internal/domain"
	"github.com/kailas-cloud/bloomprobe/internal/domain/bloom"
	"github.com/kailas-cloud/bloomprobe/internal/domain/order"
	"github.com/kailas-cloud/bloomprobe/internal/domain/probe"
	"github.com/kailas-cloud/bloomprobe/internal/logger"
	"github.com/kailas-cloud/bloomprobe/internal/metrics"
	"github.com/kailas-cloud/bloomprobe/internal/usecase/prefilter"
)

// KeyKind selects how a criterion is turned into digest input.
type KeyKind string

// Key kinds.
const (
	// KeyInt digests the user id as 8 big-endian bytes.
	KeyInt KeyKind = "int"
	// KeyText digests the decimal user id in the configured charset.
	KeyText KeyKind = "text"
)

// Options configures the pipeline built by the service.
type Options struct {
	MaxBuckets  int
	Concurrency int
	KeyKind     KeyKind
	Charset     string
	StrictText  bool
}

// Result is the outcome of an order lookup.
type Result struct {
	Orders     []order.Order
	Candidates []bloom.Serial
	Fetched    int
	Truncated  bool
}

// ProbeInfo describes the probe derived for a criterion.
type ProbeInfo struct {
	Probe   uint16
	Nibbles [4]uint8
}

type pipeline = prefilter.Pipeline[order.Criterion, uint16, order.Bucket, order.Order]

// Service runs order lookups.
type Service struct {
	descriptors DescriptorRepository
	pipeline    *pipeline
	logger      *zap.Logger
}

// New creates a lookup service.
func New(buckets BucketRepository, descriptors DescriptorRepository, opts Options, l *zap.Logger) (*Service, error) {
	derive, err := newProber(opts)
	if err != nil {
		return nil, err
	}
	if l == nil {
		l = zap.NewNop()
	}
	return &Service{
		descriptors: descriptors,
		pipeline: &pipeline{
			Probe:       derive,
			Test:        bloom.Test,
			Fetch:       buckets.Fetch,
			Extract:     buckets.Extract,
			Exact:       order.Match,
			MaxBuckets:  opts.MaxBuckets,
			Concurrency: opts.Concurrency,
		},
		logger: l,
	}, nil
}

func newProber(opts Options) (prefilter.ProbeFunc[order.Criterion, uint16], error) {
	switch opts.KeyKind {
	case KeyInt, "":
		derive := probe.KeyProber(nil)
		return func(c order.Criterion) deferred.IO[uint16] { return derive(c.UserID()) }, nil
	case KeyText:
		enc, err := probe.EncoderFor(opts.Charset)
		if err != nil {
			return nil, fmt.Errorf("text prober: %w", err)
		}
		derive := probe.TextProber(enc, nil, opts.StrictText)
		return func(c order.Criterion) deferred.IO[uint16] { return derive(c.Key()) }, nil
	default:
		return nil, fmt.Errorf("unknown key kind %q", opts.KeyKind)
	}
}

// Orders returns the orders of the selected user found in the first
// MaxBuckets candidate buckets. Descriptors are loaded on every call.
func (s *Service) Orders(ctx context.Context, c order.Criterion) (Result, error) {
	start := time.Now()
	log := s.log(ctx)

	ds, err := s.descriptors.Load(ctx)
	if err != nil {
		s.record("orders", err, start)
		return Result{}, fmt.Errorf("load descriptors: %w", err)
	}

	out, err := s.pipeline.Retrieve(c, ds).Run(ctx)
	if err != nil {
		s.record("orders", err, start)
		log.Error("Lookup failed", zap.Int64("user_id", c.UserID()), zap.Error(err))
		return Result{}, fmt.Errorf("retrieve: %w", err)
	}

	metrics.CandidateBuckets.Observe(float64(len(out.Candidates)))
	metrics.MatchedItemsTotal.Add(float64(len(out.Items)))
	if out.Truncated() {
		metrics.TruncatedLookupsTotal.Inc()
		log.Warn("Candidate buckets truncated",
			zap.Int64("user_id", c.UserID()),
			zap.Int("candidates", len(out.Candidates)),
			zap.Int("fetched", out.Fetched),
		)
	}
	s.record("orders", nil, start)

	log.Debug("Lookup done",
		zap.Int64("user_id", c.UserID()),
		zap.Int("descriptors", len(ds)),
		zap.Int("candidates", len(out.Candidates)),
		zap.Int("fetched", out.Fetched),
		zap.Int("matched", len(out.Items)),
	)

	return Result{
		Orders:     out.Items,
		Candidates: out.Candidates,
		Fetched:    out.Fetched,
		Truncated:  out.Truncated(),
	}, nil
}

// Candidates returns the serials whose summaries may contain the criterion.
// No bucket is fetched.
func (s *Service) Candidates(ctx context.Context, c order.Criterion) ([]bloom.Serial, error) {
	start := time.Now()

	ds, err := s.descriptors.Load(ctx)
	if err != nil {
		s.record("candidates", err, start)
		return nil, fmt.Errorf("load descriptors: %w", err)
	}

	serials, err := s.pipeline.Serials(c, ds).Run(ctx)
	s.record("candidates", err, start)
	if err != nil {
		return nil, fmt.Errorf("filter serials: %w", err)
	}
	return serials, nil
}

// Probe returns the probe derived for the criterion and its four nibbles.
func (s *Service) Probe(ctx context.Context, c order.Criterion) (ProbeInfo, error) {
	p, err := s.pipeline.Probe(c).Run(ctx)
	if err != nil {
		return ProbeInfo{}, fmt.Errorf("derive probe: %w", err)
	}
	return ProbeInfo{Probe: p, Nibbles: bloom.Nibbles(p)}, nil
}

func (s *Service) record(op string, err error, start time.Time) {
	metrics.LookupDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	metrics.LookupsTotal.WithLabelValues(op, status(err)).Inc()
}

func (s *Service) log(ctx context.Context) *zap.Logger {
	return logger.FromContextOr(ctx, s.logger)
}

func status(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrBucketNotFound):
		return "bucket_not_found"
	case errors.Is(err, domain.ErrDescriptorsUnavailable):
		return "descriptors_unavailable"
	case errors.Is(err, domain.ErrEncodingTruncation):
		return "truncated_key"
	default:
		return "error"
	}
}


package lookup

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/kailas-cloud/bloomprobe/internal/deferred"
	"github.com/kailas-cloud/bloomprobe/internal/domain"
	"github.com/kailas-cloud/bloomprobe/internal/domain/bloom"
	"github.com/kailas-cloud/bloomprobe/internal/domain/order"
	"github.com/kailas-cloud/bloomprobe/internal/domain/probe"
	"github.com/kailas-cloud/bloomprobe/internal/metrics"
)

// --- mocks ---

type mockBuckets struct {
	mu      sync.Mutex
	buckets map[bloom.Serial]order.Bucket
	fetched []bloom.Serial
}

func newMockBuckets() *mockBuckets {
	m := &mockBuckets{buckets: map[bloom.Serial]order.Bucket{}}
	for _, b := range order.SampleBuckets() {
		m.buckets[b.Serial()] = b
	}
	return m
}

func (m *mockBuckets) Fetch(serial bloom.Serial) deferred.IO[order.Bucket] {
	return func(context.Context) (order.Bucket, error) {
		m.mu.Lock()
		defer m.mu.Unlock()
		m.fetched = append(m.fetched, serial)
		b, ok := m.buckets[serial]
		if !ok {
			return order.Bucket{}, domain.NewBucketNotFound(uint64(serial))
		}
		return b, nil
	}
}

func (m *mockBuckets) Extract(b order.Bucket) deferred.IO[[]order.Order] {
	return deferred.Of(b.Orders())
}

type mockDescriptors struct {
	ds  []bloom.Descriptor
	err error
}

func (m *mockDescriptors) Load(context.Context) ([]bloom.Descriptor, error) {
	return m.ds, m.err
}

func newTestService(t *testing.T, opts Options) (*Service, *mockBuckets, *mockDescriptors) {
	t.Helper()
	mb := newMockBuckets()
	md := &mockDescriptors{ds: order.SampleDescriptors()}
	svc, err := New(mb, md, opts, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return svc, mb, md
}

// --- Orders ---

func TestOrders_Sample(t *testing.T) {
	svc, mb, _ := newTestService(t, Options{})

	res, err := svc.Orders(context.Background(), order.SampleCriterion())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Orders) != 1 || res.Orders[0].OrderID() != 333 {
		t.Errorf("expected order 333, got %+v", res.Orders)
	}
	if len(res.Candidates) != 2 || res.Fetched != 2 || res.Truncated {
		t.Errorf("unexpected result: %+v", res)
	}
	if len(mb.fetched) != 2 {
		t.Errorf("expected 2 fetches, got %v", mb.fetched)
	}
}

func TestOrders_NoCandidates(t *testing.T) {
	svc, mb, _ := newTestService(t, Options{})

	res, err := svc.Orders(context.Background(), order.ByUser(599))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Orders) != 0 || len(res.Candidates) != 0 {
		t.Errorf("expected empty result, got %+v", res)
	}
	if res.Orders == nil {
		t.Error("expected empty, non-nil orders")
	}
	if len(mb.fetched) != 0 {
		t.Errorf("expected no fetches, got %v", mb.fetched)
	}
}

func TestOrders_Truncated(t *testing.T) {
	svc, mb, _ := newTestService(t, Options{MaxBuckets: 1})
	before := testutil.ToFloat64(metrics.TruncatedLookupsTotal)

	res, err := svc.Orders(context.Background(), order.SampleCriterion())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Truncated || res.Fetched != 1 || len(res.Candidates) != 2 {
		t.Errorf("unexpected result: %+v", res)
	}
	if len(mb.fetched) != 1 || mb.fetched[0] != 0x42 {
		t.Errorf("expected only 0x42 fetched, got %v", mb.fetched)
	}
	if got := testutil.ToFloat64(metrics.TruncatedLookupsTotal); got != before+1 {
		t.Errorf("truncated_lookups_total = %f, want %f", got, before+1)
	}
}

func TestOrders_DescriptorsUnavailable(t *testing.T) {
	svc, mb, md := newTestService(t, Options{})
	md.err = domain.ErrDescriptorsUnavailable

	_, err := svc.Orders(context.Background(), order.SampleCriterion())
	if !errors.Is(err, domain.ErrDescriptorsUnavailable) {
		t.Errorf("expected ErrDescriptorsUnavailable, got %v", err)
	}
	if len(mb.fetched) != 0 {
		t.Errorf("expected no fetches, got %v", mb.fetched)
	}
}

func TestOrders_MissingBucket(t *testing.T) {
	svc, mb, _ := newTestService(t, Options{Concurrency: 1})
	delete(mb.buckets, 0x43)

	_, err := svc.Orders(context.Background(), order.SampleCriterion())
	var nf *domain.BucketNotFoundError
	if !errors.As(err, &nf) || nf.Serial != 0x43 {
		t.Errorf("expected missing bucket 0x43, got %v", err)
	}
}

// --- Candidates / Probe ---

func TestCandidates(t *testing.T) {
	svc, mb, _ := newTestService(t, Options{})

	got, err := svc.Candidates(context.Background(), order.SampleCriterion())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 || got[0] != 0x42 || got[1] != 0x43 {
		t.Errorf("expected [0x42 0x43], got %v", got)
	}
	if len(mb.fetched) != 0 {
		t.Errorf("Candidates must not fetch, got %v", mb.fetched)
	}
}

func TestProbe_IntKey(t *testing.T) {
	svc, _, _ := newTestService(t, Options{KeyKind: KeyInt})

	got, err := svc.Probe(context.Background(), order.SampleCriterion())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Probe != 0xA1CC || got.Nibbles != [4]uint8{0xA, 0x1, 0xC, 0xC} {
		t.Errorf("unexpected probe: %+v", got)
	}
}

func TestProbe_TextKey(t *testing.T) {
	svc, _, _ := newTestService(t, Options{KeyKind: KeyText, Charset: "utf-8"})

	got, err := svc.Probe(context.Background(), order.SampleCriterion())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want, _ := probe.TextProber(probe.UTF8Encoder{}, nil, false)("3776").Run(context.Background())
	if got.Probe != want {
		t.Errorf("probe = %#04x, want %#04x", got.Probe, want)
	}
}

func TestNew_InvalidOptions(t *testing.T) {
	tests := []struct {
		name string
		opts Options
	}{
		{"unknown key kind", Options{KeyKind: "uuid"}},
		{"unknown charset", Options{KeyKind: KeyText, Charset: "no-such-charset"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := New(newMockBuckets(), &mockDescriptors{}, tc.opts, nil); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestStatus(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, "ok"},
		{domain.NewBucketNotFound(1), "bucket_not_found"},
		{domain.ErrDescriptorsUnavailable, "descriptors_unavailable"},
		{domain.ErrEncodingTruncation, "truncated_key"},
		{errors.New("boom"), "error"},
	}
	for _, tc := range tests {
		if got := status(tc.err); got != tc.want {
			t.Errorf("status(%v) = %q, want %q", tc.err, got, tc.want)
		}
	}
}

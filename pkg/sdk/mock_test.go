package bloomprobe

import (
	"context"

	"github.com/kailas-cloud/bloomprobe/internal/domain/bloom"
	"github.com/kailas-cloud/bloomprobe/internal/domain/order"
	healthuc "github.com/kailas-cloud/bloomprobe/internal/usecase/health"
	lookupuc "github.com/kailas-cloud/bloomprobe/internal/usecase/lookup"
)

type mockLookupUC struct {
	ordersFn     func(ctx context.Context, c order.Criterion) (lookupuc.Result, error)
	candidatesFn func(ctx context.Context, c order.Criterion) ([]bloom.Serial, error)
	probeFn      func(ctx context.Context, c order.Criterion) (lookupuc.ProbeInfo, error)
}

func (m *mockLookupUC) Orders(ctx context.Context, c order.Criterion) (lookupuc.Result, error) {
	return m.ordersFn(ctx, c)
}

func (m *mockLookupUC) Candidates(ctx context.Context, c order.Criterion) ([]bloom.Serial, error) {
	return m.candidatesFn(ctx, c)
}

func (m *mockLookupUC) Probe(ctx context.Context, c order.Criterion) (lookupuc.ProbeInfo, error) {
	return m.probeFn(ctx, c)
}

type mockBucketWriter struct {
	put     []order.Bucket
	deleted []bloom.Serial
	err     error
}

func (m *mockBucketWriter) Put(_ context.Context, b order.Bucket) error {
	m.put = append(m.put, b)
	return m.err
}

func (m *mockBucketWriter) Delete(_ context.Context, serial bloom.Serial) error {
	m.deleted = append(m.deleted, serial)
	return m.err
}

type mockDescriptorWriter struct {
	saved []bloom.Descriptor
	err   error
}

func (m *mockDescriptorWriter) Save(_ context.Context, ds []bloom.Descriptor) error {
	m.saved = ds
	return m.err
}

type mockHealthUC struct {
	report healthuc.Report
}

func (m *mockHealthUC) Check(context.Context) healthuc.Report { return m.report }

package order

import (
	"testing"

	"github.com/kailas-cloud/bloomprobe/internal/domain/bloom"
)

func TestMatch(t *testing.T) {
	c := ByUser(3776)

	if got := Match(c, New(3776, 1, 0)); got != bloom.Found {
		t.Errorf("same user: got %s, want found", got)
	}
	if got := Match(c, New(599, 1, 0)); got != bloom.NotFound {
		t.Errorf("other user: got %s, want not_found", got)
	}
}

func TestCriterion_Key(t *testing.T) {
	if got := ByUser(-42).Key(); got != "-42" {
		t.Errorf("Key() = %q, want %q", got, "-42")
	}
}

func TestSampleFixture(t *testing.T) {
	buckets := SampleBuckets()
	descs := SampleDescriptors()
	if len(buckets) != len(descs) {
		t.Fatalf("expected one descriptor per bucket, got %d/%d", len(descs), len(buckets))
	}
	for i := range buckets {
		if buckets[i].Serial() != descs[i].Serial() {
			t.Errorf("bucket %d serial %#x, descriptor serial %#x", i, buckets[i].Serial(), descs[i].Serial())
		}
	}

	var matched []int64
	for _, b := range buckets {
		for _, o := range b.Orders() {
			if Match(SampleCriterion(), o) == bloom.Found {
				matched = append(matched, o.OrderID())
			}
		}
	}
	if len(matched) != 1 || matched[0] != 333 {
		t.Errorf("expected only order 333 to match, got %v", matched)
	}
}

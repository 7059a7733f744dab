package order

import "github.com/kailas-cloud/bloomprobe/internal/domain/bloom"

// SampleBloom is the summary shared by both sample buckets.
const SampleBloom bloom.Bits = 0x1402

// SampleCriterion selects the user whose probe (0xA1CC) passes SampleBloom.
func SampleCriterion() Criterion { return ByUser(3776) }

// SampleDescriptors returns the descriptors of the sample buckets.
func SampleDescriptors() []bloom.Descriptor {
	return []bloom.Descriptor{
		bloom.NewDescriptor(0x42, SampleBloom),
		bloom.NewDescriptor(0x43, SampleBloom),
	}
}

// SampleBuckets returns two buckets of orders; only order 333 belongs to
// user 3776.
func SampleBuckets() []Bucket {
	return []Bucket{
		NewBucket(0x42, []Order{
			New(3776, 333, 1749430561879),
			New(599, 334, 1749430562879),
		}),
		NewBucket(0x43, []Order{
			New(599, 634, 1749430563879),
			New(599, 635, 1749430564879),
		}),
	}
}

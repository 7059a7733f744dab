package bloomprobe

import (
	"github.com/kailas-cloud/bloomprobe/internal/domain"
	"github.com/kailas-cloud/bloomprobe/internal/repository/bucket"
)

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrBucketNotFound         = domain.ErrBucketNotFound
	ErrDescriptorsUnavailable = domain.ErrDescriptorsUnavailable
	ErrEncodingTruncation     = domain.ErrEncodingTruncation
	ErrDigestFailure          = domain.ErrDigestFailure
	ErrCorruptPayload         = bucket.ErrCorruptPayload
)

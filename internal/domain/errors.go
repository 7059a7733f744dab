package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrBucketNotFound signals a fetch for an unknown or missing bucket serial.
	ErrBucketNotFound = errors.New("bucket not found")
	// ErrDigestFailure signals an error from the digest primitive.
	ErrDigestFailure = errors.New("digest failure")
	// ErrEncodingTruncation signals a text key whose encoding did not fit the scratch buffer.
	ErrEncodingTruncation = errors.New("encoding truncated")
	// ErrEncodingFailure signals a charset encoder error other than running out of room.
	ErrEncodingFailure = errors.New("encoding failure")
	// ErrInvalidCriterion signals a malformed filter criterion.
	ErrInvalidCriterion = errors.New("invalid criterion")
	// ErrDescriptorsUnavailable signals that bucket bloom descriptors could not be loaded.
	ErrDescriptorsUnavailable = errors.New("descriptors unavailable")
)

// BucketNotFoundError wraps ErrBucketNotFound with the missing serial.
type BucketNotFoundError struct {
	Serial uint64
}

func (e *BucketNotFoundError) Error() string {
	return fmt.Sprintf("bucket %d not found", e.Serial)
}

func (e *BucketNotFoundError) Unwrap() error { return ErrBucketNotFound }

// NewBucketNotFound creates a bucket not found error.
func NewBucketNotFound(serial uint64) error {
	return &BucketNotFoundError{Serial: serial}
}

package storage

import (
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
)

// Sentinel errors for storage operations.
var (
	ErrInvalidLocation = errors.New("storage: invalid location")
	ErrNotFound        = errors.New("storage: file not found")
	ErrAccessDenied    = errors.New("storage: access denied")
	ErrReadFailed      = errors.New("storage: read failed")
	ErrTooLarge        = errors.New("storage: file exceeds size limit")
)

// wrapS3Error wraps S3 errors with appropriate sentinel errors.
// Uses %v for the original error so callers match sentinels with errors.Is
// instead of depending on AWS types.
func wrapS3Error(err error, fallback error) error {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NoSuchKey", "NoSuchBucket", "NotFound":
			return fmt.Errorf("%w: %v", ErrNotFound, err)
		case "AccessDenied", "Forbidden":
			return fmt.Errorf("%w: %v", ErrAccessDenied, err)
		}
	}

	var notFound *types.NoSuchKey
	if errors.As(err, &notFound) {
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	}

	return fmt.Errorf("%w: %v", fallback, err)
}

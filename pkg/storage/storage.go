package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/url"
	"os"
	"strings"
)

// DefaultMaxReadSize caps ReadAll when Config.MaxReadSize is unset.
const DefaultMaxReadSize int64 = 10 << 20

// Config holds S3-compatible storage configuration. Only needed for s3://
// locations; local paths work with the zero value.
type Config struct {
	// AccessKey and SecretKey sign requests. When both are empty requests
	// are sent anonymously, which works for public buckets.
	AccessKey string
	SecretKey string

	// Endpoint is the custom S3 endpoint URL (optional, for MinIO or other S3-compatible services).
	Endpoint string

	// Region is the AWS region (default: us-east-1).
	Region string

	// PathStyle enables path-style URLs (required for MinIO).
	PathStyle bool

	// MaxReadSize limits ReadAll (default: 10MB).
	MaxReadSize int64
}

// Location identifies an input resource: a local path or an S3 object.
type Location struct {
	Path   string // local file path, empty for S3
	Bucket string
	Key    string
}

// IsS3 reports whether the location names an S3 object.
func (l Location) IsS3() bool { return l.Bucket != "" }

func (l Location) String() string {
	if l.IsS3() {
		return "s3://" + l.Bucket + "/" + l.Key
	}
	return l.Path
}

// ParseLocation accepts "s3://bucket/key" or a local file path.
func ParseLocation(raw string) (Location, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Location{}, fmt.Errorf("%w: empty", ErrInvalidLocation)
	}
	if !strings.HasPrefix(strings.ToLower(raw), "s3://") {
		return Location{Path: raw}, nil
	}

	u, err := url.Parse(raw)
	if err != nil {
		return Location{}, fmt.Errorf("%w: %v", ErrInvalidLocation, err)
	}
	key := strings.TrimPrefix(u.Path, "/")
	if u.Host == "" || key == "" {
		return Location{}, fmt.Errorf("%w: %q needs a bucket and a key", ErrInvalidLocation, raw)
	}
	return Location{Bucket: u.Host, Key: key}, nil
}

// Storage opens input resources from the local filesystem or S3.
type Storage struct {
	cfg Config
	s3  *s3Reader
}

// New creates a Storage. The S3 client is built on first use.
func New(cfg Config) *Storage {
	if cfg.Region == "" {
		cfg.Region = "us-east-1"
	}
	if cfg.MaxReadSize <= 0 {
		cfg.MaxReadSize = DefaultMaxReadSize
	}
	return &Storage{cfg: cfg, s3: newS3Reader(cfg)}
}

// Open returns a reader over the resource at raw. The caller closes it.
func (s *Storage) Open(ctx context.Context, raw string) (io.ReadCloser, error) {
	loc, err := ParseLocation(raw)
	if err != nil {
		return nil, err
	}
	if loc.IsS3() {
		return s.s3.get(ctx, loc.Bucket, loc.Key)
	}

	f, err := os.Open(loc.Path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return nil, fmt.Errorf("%w: %s", ErrNotFound, loc.Path)
	case errors.Is(err, fs.ErrPermission):
		return nil, fmt.Errorf("%w: %s", ErrAccessDenied, loc.Path)
	case err != nil:
		return nil, fmt.Errorf("%w: %v", ErrReadFailed, err)
	}
	return f, nil
}

// ReadAll reads a whole resource as text, refusing anything over
// Config.MaxReadSize.
func (s *Storage) ReadAll(ctx context.Context, raw string) (string, error) {
	rc, err := s.Open(ctx, raw)
	if err != nil {
		return "", err
	}
	defer rc.Close()

	data, err := io.ReadAll(io.LimitReader(rc, s.cfg.MaxReadSize+1))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrReadFailed, err)
	}
	if int64(len(data)) > s.cfg.MaxReadSize {
		return "", fmt.Errorf("%w: %s", ErrTooLarge, raw)
	}
	return string(data), nil
}

// Opener binds a location for deferred opening, matching the shape
// recipient sources expect.
func (s *Storage) Opener(raw string) func(context.Context) (io.ReadCloser, error) {
	return func(ctx context.Context) (io.ReadCloser, error) {
		return s.Open(ctx, raw)
	}
}

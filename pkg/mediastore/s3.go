package mediastore

import (
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/google/uuid"
)

// Config holds S3 media store settings.
type Config struct {
	Region string
	Bucket string
	// URLPrefix, when set, is prepended to the object key to build the
	// returned URL (a CDN distribution in front of the bucket).
	// Otherwise the uploader's reported object location is returned.
	URLPrefix string
}

// S3Store stores media in an S3 bucket and serves it publicly.
type S3Store struct {
	bucket    string
	urlPrefix string
	uploader  *s3manager.Uploader
}

// NewS3Store creates a new S3Store.
func NewS3Store(cfg Config) (*S3Store, error) {
	sess, err := session.NewSession(&aws.Config{
		Region: aws.String(cfg.Region),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS session: %w", err)
	}

	prefix := cfg.URLPrefix
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}

	return &S3Store{
		bucket:    cfg.Bucket,
		urlPrefix: prefix,
		uploader:  s3manager.NewUploader(sess),
	}, nil
}

// Upload stores the payload under a fresh key in the given namespace
// and returns its public URL.
func (s *S3Store) Upload(r io.Reader, contentType, namespace string) (string, error) {
	key := namespace + "/" + uuid.New().String() + extForContentType(contentType)

	out, err := s.uploader.Upload(&s3manager.UploadInput{
		ACL:         aws.String("public-read"),
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        r,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to s3://%s/%s: %w", s.bucket, key, err)
	}

	if s.urlPrefix != "" {
		return s.urlPrefix + key, nil
	}
	return out.Location, nil
}

func extForContentType(contentType string) string {
	switch contentType {
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	default:
		return ""
	}
}

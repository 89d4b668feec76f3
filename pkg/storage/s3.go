package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/google/uuid"

	"github.com/simonbalanoff/SigEpRush-API/config"
)

var (
	ErrObjectNotFound     = errors.New("object not found")
	ErrInvalidContentType = errors.New("content type must be image/*")
	ErrNotConfigured      = errors.New("object storage not configured")
)

// PresignedUpload is everything a browser needs to POST a file straight to the bucket.
type PresignedUpload struct {
	Key       string            `json:"key"`
	UploadURL string            `json:"upload_url"`
	Fields    map[string]string `json:"fields"`
	PublicURL string            `json:"public_url"`
	ExpiresIn int               `json:"expires_in"` // seconds
}

// S3Store issues presigned POST uploads and deletes objects.
type S3Store struct {
	client        *s3.Client
	presigner     *s3.PresignClient
	bucket        string
	publicURLBase string
	maxBytes      int64
	ttl           time.Duration
	now           func() time.Time
}

// NewS3Store builds a client from static credentials.
// Endpoint is optional and switches to path-style addressing for S3-compatible stores.
func NewS3Store(cfg *config.StorageConfig) (*S3Store, error) {
	if cfg.Bucket == "" {
		return nil, ErrNotConfigured
	}

	opts := s3.Options{
		Region: cfg.Region,
	}
	if cfg.AccessKey != "" {
		opts.Credentials = credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")
	}
	if cfg.Endpoint != "" {
		opts.BaseEndpoint = aws.String(cfg.Endpoint)
		opts.UsePathStyle = true
	}

	client := s3.New(opts)

	base := strings.TrimRight(cfg.PublicURLBase, "/")
	if base == "" {
		base = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.Bucket, cfg.Region)
	}

	return &S3Store{
		client:        client,
		presigner:     s3.NewPresignClient(client),
		bucket:        cfg.Bucket,
		publicURLBase: base,
		maxBytes:      cfg.MaxUploadBytes,
		ttl:           cfg.PresignTTL,
		now:           time.Now,
	}, nil
}

// Presign creates a short-lived POST policy for one object under prefix.
// maxBytes <= 0 or above the configured cap falls back to the cap.
func (s *S3Store) Presign(ctx context.Context, contentType, prefix string, maxBytes int64) (*PresignedUpload, error) {
	if !strings.HasPrefix(contentType, "image/") {
		return nil, ErrInvalidContentType
	}
	if maxBytes <= 0 || maxBytes > s.maxBytes {
		maxBytes = s.maxBytes
	}

	key := s.newKey(prefix)

	req, err := s.presigner.PresignPostObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
	}, func(o *s3.PresignPostOptions) {
		o.Expires = s.ttl
		o.Conditions = []interface{}{
			[]interface{}{"content-length-range", 1, maxBytes},
			map[string]string{"Content-Type": contentType},
		}
	})
	if err != nil {
		return nil, fmt.Errorf("presign post %s: %w", key, err)
	}

	fields := make(map[string]string, len(req.Values)+1)
	for k, v := range req.Values {
		fields[k] = v
	}
	fields["Content-Type"] = contentType

	return &PresignedUpload{
		Key:       key,
		UploadURL: req.URL,
		Fields:    fields,
		PublicURL: s.PublicURL(key),
		ExpiresIn: int(s.ttl.Seconds()),
	}, nil
}

// PublicURL is the address the object is served from after upload.
func (s *S3Store) PublicURL(key string) string {
	return s.publicURLBase + "/" + key
}

// KeyFromURL reverses PublicURL; ok is false for URLs outside this bucket.
func (s *S3Store) KeyFromURL(url string) (string, bool) {
	prefix := s.publicURLBase + "/"
	if !strings.HasPrefix(url, prefix) {
		return "", false
	}
	return strings.TrimPrefix(url, prefix), true
}

// Delete removes an object.
func (s *S3Store) Delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var noKey *types.NoSuchKey
		var notFound *types.NotFound
		if errors.As(err, &noKey) || errors.As(err, &notFound) {
			return ErrObjectNotFound
		}
		return fmt.Errorf("delete object %s: %w", key, err)
	}
	return nil
}

func (s *S3Store) newKey(prefix string) string {
	prefix = strings.Trim(prefix, "/")
	name := fmt.Sprintf("%d-%s", s.now().UnixMilli(), uuid.NewString())
	if prefix == "" {
		return name
	}
	return prefix + "/" + name
}

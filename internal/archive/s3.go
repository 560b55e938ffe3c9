package archive

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"path"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog"

	"github.com/edvin/flowplane/internal/config"
	"github.com/edvin/flowplane/internal/model"
)

type objectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Archiver stores the final definition of retired workflows in a bucket.
type S3Archiver struct {
	client objectPutter
	bucket string
	logger zerolog.Logger
}

// document is what lands in the bucket for one retired workflow.
type document struct {
	Workflow  model.TenantWorkflow `json:"workflow"`
	RetiredAt time.Time            `json:"retired_at"`
}

// NewS3Archiver returns nil when archiving is not configured.
func NewS3Archiver(cfg *config.Config, logger zerolog.Logger) *S3Archiver {
	if !cfg.ArchiveEnabled() {
		return nil
	}
	opts := s3.Options{
		Region:       cfg.ArchiveS3Region,
		Credentials:  credentials.NewStaticCredentialsProvider(cfg.ArchiveS3AccessKey, cfg.ArchiveS3SecretKey, ""),
		UsePathStyle: cfg.ArchiveS3Endpoint != "",
	}
	if cfg.ArchiveS3Endpoint != "" {
		opts.BaseEndpoint = aws.String(cfg.ArchiveS3Endpoint)
	}
	return &S3Archiver{
		client: s3.New(opts),
		bucket: cfg.ArchiveS3Bucket,
		logger: logger.With().Str("component", "archive").Logger(),
	}
}

// ObjectKey is the bucket key for a retired workflow.
func ObjectKey(w *model.TenantWorkflow) string {
	return path.Join("retired", w.TenantID, w.ID+".json")
}

func (a *S3Archiver) Archive(ctx context.Context, w *model.TenantWorkflow) error {
	body, err := json.Marshal(document{Workflow: *w, RetiredAt: time.Now().UTC()})
	if err != nil {
		return fmt.Errorf("marshal workflow %s: %w", w.ID, err)
	}

	key := ObjectKey(w)
	_, err = a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("put s3://%s/%s: %w", a.bucket, key, err)
	}

	a.logger.Debug().Str("key", key).Msg("archived retired workflow")
	return nil
}

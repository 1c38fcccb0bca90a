// Package backup copies container files to an object store before they are
// rewritten.
package backup

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strconv"
	"time"

	"github.com/MKhiriev/go-psafe-cache/internal/config"
	"github.com/MKhiriev/go-psafe-cache/internal/logger"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

var ErrBackupFailed = errors.New("container backup failed")

// Backuper stores a copy of the container file at filePath.
type Backuper interface {
	Backup(ctx context.Context, containerID int64, filePath string) error
}

// ObjectUploader is the part of *minio.Client used for backups.
type ObjectUploader interface {
	FPutObject(ctx context.Context, bucketName, objectName, filePath string, opts minio.PutObjectOptions) (minio.UploadInfo, error)
}

// NewBackuper returns a Backuper writing to the configured bucket, or a no-op
// one when no endpoint is configured.
func NewBackuper(ctx context.Context, cfg config.Backup, log *logger.Logger) (Backuper, error) {
	if cfg.Endpoint == "" {
		log.Info().Msg("container backups disabled")
		return Nop(), nil
	}

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("error initializing object storage client: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("error checking bucket %q: %w", cfg.Bucket, err)
	}
	if !exists {
		log.Info().Str("bucket", cfg.Bucket).Msg("creating backup bucket")
		if err = client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{Region: cfg.Region}); err != nil {
			return nil, fmt.Errorf("error creating bucket %q: %w", cfg.Bucket, err)
		}
	}

	return NewObjectBackuper(client, cfg.Bucket, log), nil
}

type objectBackuper struct {
	uploader ObjectUploader
	bucket   string
	now      func() time.Time
	logger   *logger.Logger
}

// NewObjectBackuper wraps an uploader. Objects are keyed
// "<containerID>/<unix nanos>.<ext>".
func NewObjectBackuper(uploader ObjectUploader, bucket string, log *logger.Logger) Backuper {
	return &objectBackuper{
		uploader: uploader,
		bucket:   bucket,
		now:      time.Now,
		logger:   log,
	}
}

func (b *objectBackuper) Backup(ctx context.Context, containerID int64, filePath string) error {
	log := logger.FromContext(ctx)

	key := ObjectKey(containerID, b.now(), path.Ext(filePath))
	info, err := b.uploader.FPutObject(ctx, b.bucket, key, filePath, minio.PutObjectOptions{
		ContentType: "application/octet-stream",
	})
	if err != nil {
		log.Err(err).Str("func", "*objectBackuper.Backup").Int64("container_id", containerID).
			Str("key", key).Msg("error uploading container backup")
		return fmt.Errorf("%w: %w", ErrBackupFailed, err)
	}

	log.Debug().Int64("container_id", containerID).Str("key", key).Int64("size", info.Size).Msg("container backed up")
	return nil
}

// ObjectKey names the backup object of one container save.
func ObjectKey(containerID int64, at time.Time, ext string) string {
	return strconv.FormatInt(containerID, 10) + "/" + strconv.FormatInt(at.UnixNano(), 10) + ext
}

type nopBackuper struct{}

// Nop returns a Backuper that does nothing.
func Nop() Backuper {
	return nopBackuper{}
}

func (nopBackuper) Backup(context.Context, int64, string) error { return nil }

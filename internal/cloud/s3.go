package cloud

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"path"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/ANIKETSHETTY47/tank-level-monitoring-system/internal/domain"
)

const archivePrefix = "archive"

// s3API is the part of *s3.Client the archive needs.
type s3API interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	s3.ListObjectsV2APIClient
}

// S3Client archives readings as JSON documents in a bucket.
type S3Client struct {
	svc    s3API
	bucket string
	now    func() time.Time
}

// ReadingArchive is the document stored for one prune.
type ReadingArchive struct {
	TankID     int64                `json:"tank_id"`
	ArchivedAt time.Time            `json:"archived_at"`
	Readings   []domain.TankReading `json:"readings"`
}

// NewS3Client creates a new S3 client instance
func NewS3Client(ctx context.Context, region, bucket string) (*S3Client, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("unable to load SDK config: %w", err)
	}
	return newS3Client(s3.NewFromConfig(cfg), bucket), nil
}

func newS3Client(svc s3API, bucket string) *S3Client {
	return &S3Client{svc: svc, bucket: bucket, now: domain.Now}
}

// ArchiveReadings uploads readings under archive/tank-<id>/.
func (c *S3Client) ArchiveReadings(ctx context.Context, tankID int64, readings []domain.TankReading) error {
	archivedAt := c.now().UTC()
	data, err := json.Marshal(ReadingArchive{TankID: tankID, ArchivedAt: archivedAt, Readings: readings})
	if err != nil {
		return fmt.Errorf("encode archive: %w", err)
	}

	key := path.Join(tankPrefix(tankID), fmt.Sprintf("%s-%s.json", archivedAt.Format("20060102T150405Z"), uuid.NewString()))
	_, err = c.svc.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(c.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/json"),
		Metadata: map[string]string{
			"tank-id":       fmt.Sprint(tankID),
			"reading-count": fmt.Sprint(len(readings)),
		},
	})
	if err != nil {
		return fmt.Errorf("failed to upload archive to S3: %w", err)
	}
	return nil
}

// ListArchives returns the archive keys of one tank.
func (c *S3Client) ListArchives(ctx context.Context, tankID int64) ([]string, error) {
	paginator := s3.NewListObjectsV2Paginator(c.svc, &s3.ListObjectsV2Input{
		Bucket: aws.String(c.bucket),
		Prefix: aws.String(tankPrefix(tankID) + "/"),
	})

	keys := []string{}
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list archives: %w", err)
		}
		for _, obj := range page.Contents {
			keys = append(keys, aws.ToString(obj.Key))
		}
	}
	return keys, nil
}

// FetchArchive downloads and decodes one archive document.
func (c *S3Client) FetchArchive(ctx context.Context, key string) (*ReadingArchive, error) {
	result, err := c.svc.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to download from S3: %w", err)
	}
	defer result.Body.Close()

	var archive ReadingArchive
	if err := json.NewDecoder(result.Body).Decode(&archive); err != nil {
		return nil, fmt.Errorf("decode archive %s: %w", key, err)
	}
	return &archive, nil
}

func tankPrefix(tankID int64) string {
	return fmt.Sprintf("%s/tank-%d", archivePrefix, tankID)
}

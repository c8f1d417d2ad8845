// Package export publishes finished reports to object storage for
// consumption by the dashboard/reporting layer.
package export

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog"

	"github.com/dynconv/analyzer/internal/modules/analysis"
)

// S3Publisher uploads report JSON to an S3 bucket, one object per run plus a
// rolling "latest" object.
type S3Publisher struct {
	uploader *manager.Uploader
	bucket   string
	prefix   string
	log      zerolog.Logger
}

// NewS3Publisher creates a publisher using the default AWS credential chain.
func NewS3Publisher(ctx context.Context, bucket, prefix string, log zerolog.Logger) (*S3Publisher, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS configuration: %w", err)
	}

	client := s3.NewFromConfig(awsCfg)
	return &S3Publisher{
		uploader: manager.NewUploader(client),
		bucket:   bucket,
		prefix:   prefix,
		log:      log.With().Str("component", "s3-export").Logger(),
	}, nil
}

// Publish uploads the report under its run ID and refreshes latest.json.
func (p *S3Publisher) Publish(ctx context.Context, report *analysis.Report) error {
	body, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}

	for _, key := range []string{
		path.Join(p.prefix, report.RunID+".json"),
		path.Join(p.prefix, "latest.json"),
	} {
		_, err := p.uploader.Upload(ctx, &s3.PutObjectInput{
			Bucket:      aws.String(p.bucket),
			Key:         aws.String(key),
			Body:        bytes.NewReader(body),
			ContentType: aws.String("application/json"),
		})
		if err != nil {
			return fmt.Errorf("failed to upload %s: %w", key, err)
		}
	}

	p.log.Info().
		Str("run_id", report.RunID).
		Str("bucket", p.bucket).
		Msg("Report published to S3")
	return nil
}

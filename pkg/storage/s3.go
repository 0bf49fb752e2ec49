package storage

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/Thinura66/VehicleRental-Backend/internal/config"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
)

// S3Store stores images in an S3 bucket. Objects are served through
// the bucket policy, so uploads carry no ACL.
type S3Store struct {
	client   *s3.S3
	uploader *s3manager.Uploader
	bucket   string
	region   string
}

// NewS3Store builds an S3-backed media store from AWS configuration.
func NewS3Store(cfg config.AWSConfig) (*S3Store, error) {
	if cfg.Region == "" || cfg.AccessKeyID == "" || cfg.SecretAccessKey == "" || cfg.Bucket == "" {
		return nil, fmt.Errorf("incomplete AWS configuration")
	}

	sess, err := session.NewSession(&aws.Config{
		Region:      aws.String(cfg.Region),
		Credentials: credentials.NewStaticCredentials(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS session: %w", err)
	}

	return &S3Store{
		client:   s3.New(sess),
		uploader: s3manager.NewUploader(sess),
		bucket:   cfg.Bucket,
		region:   cfg.Region,
	}, nil
}

// Upload streams a multipart file into the bucket under the given
// folder and returns its public URL.
func (s *S3Store) Upload(file *multipart.FileHeader, folder string) (ImageRef, error) {
	src, err := file.Open()
	if err != nil {
		return ImageRef{}, fmt.Errorf("failed to open file: %w", err)
	}
	defer src.Close()

	buffer := bytes.NewBuffer(nil)
	if _, err := io.Copy(buffer, src); err != nil {
		return ImageRef{}, fmt.Errorf("failed to read file: %w", err)
	}

	contentType := http.DetectContentType(buffer.Bytes())

	fileName := uniqueFilename(file.Filename)
	key := fmt.Sprintf("%s/%s", folder, fileName)

	_, err = s.uploader.Upload(&s3manager.UploadInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(buffer.Bytes()),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return ImageRef{}, fmt.Errorf("failed to upload to S3: %w", err)
	}

	return ImageRef{
		URL:      fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, key),
		Filename: fileName,
	}, nil
}

// Delete removes the object behind a public URL from the bucket.
func (s *S3Store) Delete(imageURL string) error {
	key, err := s.keyFromURL(imageURL)
	if err != nil {
		return err
	}

	_, err = s.client.DeleteObject(&s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	return err
}

// keyFromURL extracts the object key from a bucket URL.
func (s *S3Store) keyFromURL(imageURL string) (string, error) {
	parsed, err := url.Parse(imageURL)
	if err != nil {
		return "", fmt.Errorf("invalid image URL %q: %w", imageURL, err)
	}
	return strings.TrimPrefix(parsed.Path, "/"), nil
}

// uniqueFilename keeps the original extension but replaces the name
// with a nanosecond timestamp so concurrent uploads never collide.
func uniqueFilename(original string) string {
	return fmt.Sprintf("%d%s", time.Now().UnixNano(), filepath.Ext(original))
}

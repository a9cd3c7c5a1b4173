package storage

import (
	"bytes"
	"errors"
	"fmt"
	"mime"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"

	"webshot/internal/config"
	"webshot/internal/logging"
)

// SpacesMirror copies artifacts to a DigitalOcean Spaces bucket
type SpacesMirror struct {
	client     s3iface.S3API
	bucketName string
	bucketURL  string
	cdnURL     string
	region     string
	prefix     string
	logger     logging.Logger
}

// NewSpacesMirror creates a mirror from the DigitalOcean Spaces configuration
func NewSpacesMirror(cfg *config.Config, logger logging.Logger) (*SpacesMirror, error) {
	if logger == nil {
		logger = logging.GetGlobalLogger()
	}
	spaces := cfg.DigitalOcean.Spaces

	if spaces.AccessKeyID == "" || spaces.AccessKeySecret == "" {
		return nil, errors.New("DigitalOcean Spaces credentials are required")
	}
	if spaces.BucketName == "" {
		return nil, errors.New("DigitalOcean Spaces bucket name is required")
	}

	// Spaces uses the region endpoint with virtual-hosted-style bucket addressing
	endpoint := fmt.Sprintf("https://%s.digitaloceanspaces.com", spaces.Region)

	sess, err := session.NewSession(&aws.Config{
		Credentials: credentials.NewStaticCredentials(
			spaces.AccessKeyID,
			spaces.AccessKeySecret,
			"",
		),
		Endpoint:         aws.String(endpoint),
		Region:           aws.String(spaces.Region),
		S3ForcePathStyle: aws.Bool(false),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create DigitalOcean Spaces session: %w", err)
	}

	logger.Info("DigitalOcean Spaces mirror initialized", map[string]interface{}{
		"bucket_name": spaces.BucketName,
		"region":      spaces.Region,
		"endpoint":    endpoint,
	})

	return newSpacesMirror(s3.New(sess), cfg, logger), nil
}

func newSpacesMirror(client s3iface.S3API, cfg *config.Config, logger logging.Logger) *SpacesMirror {
	spaces := cfg.DigitalOcean.Spaces
	return &SpacesMirror{
		client:     client,
		bucketName: spaces.BucketName,
		bucketURL:  spaces.BucketURL,
		cdnURL:     spaces.CDNEndpoint,
		region:     spaces.Region,
		prefix:     strings.Trim(spaces.Prefix, "/"),
		logger:     logger,
	}
}

func (m *SpacesMirror) objectKey(name string) string {
	if m.prefix == "" {
		return "artifacts/" + name
	}
	return m.prefix + "/artifacts/" + name
}

// Upload stores data publicly readable and returns its public URL
func (m *SpacesMirror) Upload(name string, data []byte) (string, error) {
	key := m.objectKey(name)

	contentType := mime.TypeByExtension(filepath.Ext(name))
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	_, err := m.client.PutObject(&s3.PutObjectInput{
		Bucket:      aws.String(m.bucketName),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
		ACL:         aws.String("public-read"),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload artifact: %w", err)
	}

	return m.PublicURL(name), nil
}

// Delete removes the mirrored object
func (m *SpacesMirror) Delete(name string) error {
	_, err := m.client.DeleteObject(&s3.DeleteObjectInput{
		Bucket: aws.String(m.bucketName),
		Key:    aws.String(m.objectKey(name)),
	})
	if err != nil {
		return fmt.Errorf("failed to delete mirrored artifact: %w", err)
	}
	return nil
}

// List returns the names of mirrored artifacts
func (m *SpacesMirror) List() ([]string, error) {
	prefix := m.objectKey("")
	var names []string

	err := m.client.ListObjectsV2Pages(&s3.ListObjectsV2Input{
		Bucket: aws.String(m.bucketName),
		Prefix: aws.String(prefix),
	}, func(page *s3.ListObjectsV2Output, lastPage bool) bool {
		for _, obj := range page.Contents {
			if obj.Key == nil {
				continue
			}
			names = append(names, strings.TrimPrefix(*obj.Key, prefix))
		}
		return true
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list mirrored artifacts: %w", err)
	}
	return names, nil
}

// PublicURL prefers the CDN endpoint, then the bucket URL, then the regional host
func (m *SpacesMirror) PublicURL(name string) string {
	key := m.objectKey(name)

	if m.cdnURL != "" {
		return fmt.Sprintf("%s/%s", strings.TrimRight(m.cdnURL, "/"), key)
	}
	if m.bucketURL != "" {
		base := strings.TrimRight(m.bucketURL, "/")
		if !strings.HasPrefix(base, "https://") && !strings.HasPrefix(base, "http://") {
			base = "https://" + base
		}
		return fmt.Sprintf("%s/%s", base, key)
	}
	return fmt.Sprintf("https://%s.%s.digitaloceanspaces.com/%s", m.bucketName, m.region, key)
}

// Healthy checks that the bucket is reachable
func (m *SpacesMirror) Healthy() error {
	_, err := m.client.HeadBucket(&s3.HeadBucketInput{
		Bucket: aws.String(m.bucketName),
	})
	if err != nil {
		m.logger.Error("DigitalOcean Spaces health check failed", map[string]interface{}{
			"bucket_name": m.bucketName,
			"error":       err.Error(),
		})
		return fmt.Errorf("spaces bucket unreachable: %w", err)
	}
	return nil
}

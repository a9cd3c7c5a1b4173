package storage

import (
	"errors"
	"io"
	"testing"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"

	"webshot/internal/config"
	"webshot/internal/logging"
)

// fakeS3 implements the calls the mirror makes; any other call panics on the nil embed
type fakeS3 struct {
	s3iface.S3API
	objects map[string][]byte
	types   map[string]string
	headErr error
}

func newFakeS3() *fakeS3 {
	return &fakeS3{objects: map[string][]byte{}, types: map[string]string{}}
}

func (f *fakeS3) PutObject(in *s3.PutObjectInput) (*s3.PutObjectOutput, error) {
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.objects[*in.Key] = data
	f.types[*in.Key] = aws.StringValue(in.ContentType)
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) DeleteObject(in *s3.DeleteObjectInput) (*s3.DeleteObjectOutput, error) {
	delete(f.objects, *in.Key)
	return &s3.DeleteObjectOutput{}, nil
}

func (f *fakeS3) ListObjectsV2Pages(in *s3.ListObjectsV2Input, fn func(*s3.ListObjectsV2Output, bool) bool) error {
	page := &s3.ListObjectsV2Output{}
	for key := range f.objects {
		page.Contents = append(page.Contents, &s3.Object{Key: aws.String(key)})
	}
	fn(page, true)
	return nil
}

func (f *fakeS3) HeadBucket(in *s3.HeadBucketInput) (*s3.HeadBucketOutput, error) {
	return &s3.HeadBucketOutput{}, f.headErr
}

func spacesConfig() *config.Config {
	cfg := config.Default()
	cfg.DigitalOcean.Spaces.BucketName = "captures"
	cfg.DigitalOcean.Spaces.Region = "blr1"
	cfg.DigitalOcean.Spaces.Prefix = "webshot"
	return cfg
}

func TestSpacesMirror_UploadListDelete(t *testing.T) {
	fake := newFakeS3()
	m := newSpacesMirror(fake, spacesConfig(), logging.Nop())

	url, err := m.Upload("example.com__1.pdf", []byte("%PDF"))
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if url != "https://captures.blr1.digitaloceanspaces.com/webshot/artifacts/example.com__1.pdf" {
		t.Errorf("url = %s", url)
	}
	if fake.types["webshot/artifacts/example.com__1.pdf"] != "application/pdf" {
		t.Errorf("content type = %q", fake.types["webshot/artifacts/example.com__1.pdf"])
	}

	names, err := m.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(names) != 1 || names[0] != "example.com__1.pdf" {
		t.Errorf("names = %v", names)
	}

	if err := m.Delete("example.com__1.pdf"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if len(fake.objects) != 0 {
		t.Errorf("object not removed: %v", fake.objects)
	}
}

func TestSpacesMirror_PublicURLPrecedence(t *testing.T) {
	cfg := spacesConfig()
	cfg.DigitalOcean.Spaces.BucketURL = "captures.blr1.digitaloceanspaces.com/"
	m := newSpacesMirror(newFakeS3(), cfg, logging.Nop())
	if got := m.PublicURL("a.png"); got != "https://captures.blr1.digitaloceanspaces.com/webshot/artifacts/a.png" {
		t.Errorf("bucket URL form = %s", got)
	}

	cfg.DigitalOcean.Spaces.CDNEndpoint = "https://cdn.example.com/"
	m = newSpacesMirror(newFakeS3(), cfg, logging.Nop())
	if got := m.PublicURL("a.png"); got != "https://cdn.example.com/webshot/artifacts/a.png" {
		t.Errorf("CDN form = %s", got)
	}
}

func TestSpacesMirror_Healthy(t *testing.T) {
	fake := newFakeS3()
	m := newSpacesMirror(fake, spacesConfig(), logging.Nop())
	if err := m.Healthy(); err != nil {
		t.Fatalf("Healthy: %v", err)
	}
	fake.headErr = errors.New("forbidden")
	if err := m.Healthy(); err == nil {
		t.Fatal("expected health error")
	}
}

func TestNewSpacesMirror_RequiresCredentials(t *testing.T) {
	if _, err := NewSpacesMirror(spacesConfig(), logging.Nop()); err == nil {
		t.Fatal("expected error without credentials")
	}
}

package blob

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erazemk/kns/internal/db"
)

func TestCleanPath(t *testing.T) {
	p, err := CleanPath("/items/LAP-0001.jpg")
	require.NoError(t, err)
	assert.Equal(t, "items/LAP-0001.jpg", p)

	_, err = CleanPath("../secret")
	assert.Error(t, err)

	_, err = CleanPath("  ")
	assert.Error(t, err)
}

func TestDBStorageRoundTrip(t *testing.T) {
	s := NewDBStorage(db.NewTestDB(t), "/api/blobs/")
	ctx := context.Background()

	require.NoError(t, s.Upload(ctx, BucketAvatars, "u1/avatar.jpg", bytes.NewReader([]byte("one")), "image/jpeg"))
	require.NoError(t, s.Upload(ctx, BucketAvatars, "u1/avatar.jpg", bytes.NewReader([]byte("two")), "image/jpeg"))

	data, ct, err := s.Get(ctx, BucketAvatars, "u1/avatar.jpg")
	require.NoError(t, err)
	assert.Equal(t, "two", string(data))
	assert.Equal(t, "image/jpeg", ct)

	missing, _, err := s.Get(ctx, BucketAvatars, "nobody.jpg")
	require.NoError(t, err)
	assert.Nil(t, missing)

	assert.Equal(t, "/api/blobs/avatars/u1/avatar.jpg", s.PublicURL(BucketAvatars, "u1/avatar.jpg"))
}

type fakeS3 struct {
	in   *s3.PutObjectInput
	body []byte
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.in = in
	f.body, _ = io.ReadAll(in.Body)
	return &s3.PutObjectOutput{}, nil
}

func TestS3StorageUpload(t *testing.T) {
	fake := &fakeS3{}
	s := &S3Storage{Client: fake, Bucket: "kns-assets", Region: "eu-central-1"}

	err := s.Upload(context.Background(), BucketItems, "LAP-0001/photo.jpg", bytes.NewReader([]byte("jpeg")), "image/jpeg")
	require.NoError(t, err)

	assert.Equal(t, "kns-assets", aws.ToString(fake.in.Bucket))
	assert.Equal(t, "item-images/LAP-0001/photo.jpg", aws.ToString(fake.in.Key))
	assert.Equal(t, "image/jpeg", aws.ToString(fake.in.ContentType))
	assert.Equal(t, "jpeg", string(fake.body))
}

func TestS3PublicURL(t *testing.T) {
	s := &S3Storage{Bucket: "kns-assets", Region: "eu-central-1"}
	assert.Equal(t, "https://kns-assets.s3.eu-central-1.amazonaws.com/avatars/u1.jpg", s.PublicURL(BucketAvatars, "u1.jpg"))

	s.CloudFrontDomain = "cdn.example.com"
	assert.Equal(t, "https://cdn.example.com/avatars/u1.jpg", s.PublicURL(BucketAvatars, "u1.jpg"))
}

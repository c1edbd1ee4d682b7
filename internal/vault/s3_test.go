package vault

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeObject struct {
	data     []byte
	metadata map[string]string
}

// fakeS3 is an in-memory S3Client. Multipart calls are unsupported.
type fakeS3 struct {
	mu      sync.Mutex
	objects map[string]fakeObject
	bucket  string
}

func newFakeS3(bucket string) *fakeS3 {
	return &fakeS3{objects: make(map[string]fakeObject), bucket: bucket}
}

func (f *fakeS3) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[*in.Key] = fakeObject{data: data, metadata: in.Metadata}
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) GetObject(ctx context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	obj, ok := f.objects[*in.Key]
	if !ok {
		return nil, &types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(obj.data)), Metadata: obj.metadata}, nil
}

func (f *fakeS3) HeadObject(ctx context.Context, in *s3.HeadObjectInput, _ ...func(*s3.Options)) (*s3.HeadObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	obj, ok := f.objects[*in.Key]
	if !ok {
		return nil, &types.NotFound{}
	}
	return &s3.HeadObjectOutput{Metadata: obj.metadata}, nil
}

func (f *fakeS3) HeadBucket(ctx context.Context, in *s3.HeadBucketInput, _ ...func(*s3.Options)) (*s3.HeadBucketOutput, error) {
	if *in.Bucket != f.bucket {
		return nil, &types.NotFound{}
	}
	return &s3.HeadBucketOutput{}, nil
}

func (f *fakeS3) UploadPart(context.Context, *s3.UploadPartInput, ...func(*s3.Options)) (*s3.UploadPartOutput, error) {
	return nil, errors.New("multipart not supported")
}

func (f *fakeS3) CreateMultipartUpload(context.Context, *s3.CreateMultipartUploadInput, ...func(*s3.Options)) (*s3.CreateMultipartUploadOutput, error) {
	return nil, errors.New("multipart not supported")
}

func (f *fakeS3) CompleteMultipartUpload(context.Context, *s3.CompleteMultipartUploadInput, ...func(*s3.Options)) (*s3.CompleteMultipartUploadOutput, error) {
	return nil, errors.New("multipart not supported")
}

func (f *fakeS3) AbortMultipartUpload(context.Context, *s3.AbortMultipartUploadInput, ...func(*s3.Options)) (*s3.AbortMultipartUploadOutput, error) {
	return nil, errors.New("multipart not supported")
}

func TestS3Vault_RoundTrip(t *testing.T) {
	ctx := context.Background()
	client := newFakeS3("health")
	v := NewS3Vault("cloud", "health", "hg/", client)

	content := "sealed"
	require.NoError(t, v.PutSnapshot(ctx, "u1", strings.NewReader(content), int64(len(content)), 42))

	_, stored := client.objects["hg/snapshots/u1.age"]
	assert.True(t, stored, "object stored under prefixed key")

	version, err := v.SnapshotVersion(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(42), version)

	var buf bytes.Buffer
	require.NoError(t, v.GetSnapshot(ctx, "u1", &buf))
	assert.Equal(t, content, buf.String())
}

func TestS3Vault_Missing(t *testing.T) {
	ctx := context.Background()
	v := NewS3Vault("cloud", "health", "", newFakeS3("health"))

	version, err := v.SnapshotVersion(ctx, "nobody")
	require.NoError(t, err)
	assert.Zero(t, version)

	var buf bytes.Buffer
	assert.ErrorIs(t, v.GetSnapshot(ctx, "nobody", &buf), ErrSnapshotNotFound)
}

func TestS3Vault_MissingVersionMetadata(t *testing.T) {
	ctx := context.Background()
	client := newFakeS3("health")
	client.objects["snapshots/u1.age"] = fakeObject{data: []byte("x")}
	v := NewS3Vault("cloud", "health", "", client)

	_, err := v.SnapshotVersion(ctx, "u1")
	assert.Error(t, err)
}

func TestS3Vault_ValidateSetup(t *testing.T) {
	ctx := context.Background()
	assert.NoError(t, NewS3Vault("a", "health", "", newFakeS3("health")).ValidateSetup(ctx))
	assert.Error(t, NewS3Vault("b", "other", "", newFakeS3("health")).ValidateSetup(ctx))
}

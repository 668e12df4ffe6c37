package blob

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeS3 struct {
	mu      sync.Mutex
	objects map[string]string
	lastKey string
	failPut error
}

func newFakeS3() *fakeS3 {
	return &fakeS3{objects: make(map[string]string)}
}

func (f *fakeS3) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastKey = *in.Key
	v, ok := f.objects[*in.Bucket+"/"+*in.Key]
	if !ok {
		return nil, &types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(strings.NewReader(v))}, nil
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.failPut != nil {
		return nil, f.failPut
	}
	b, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastKey = *in.Key
	f.objects[*in.Bucket+"/"+*in.Key] = string(b)
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) DeleteObject(_ context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objects, *in.Bucket+"/"+*in.Key)
	return &s3.DeleteObjectOutput{}, nil
}

func (f *fakeS3) HeadObject(_ context.Context, in *s3.HeadObjectInput, _ ...func(*s3.Options)) (*s3.HeadObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.objects[*in.Bucket+"/"+*in.Key]; !ok {
		return nil, &types.NotFound{}
	}
	return &s3.HeadObjectOutput{}, nil
}

func TestS3Storage_Contract(t *testing.T) {
	exerciseStorage(t, newS3Storage(newFakeS3(), "vault", ""))
}

func TestS3Storage_Prefix(t *testing.T) {
	fake := newFakeS3()
	s := newS3Storage(fake, "vault", "/identity")

	require.NoError(t, s.WriteText(context.Background(), "users.json", "[]"))
	assert.Equal(t, "identity/users.json", fake.lastKey)
	assert.Contains(t, fake.objects, "vault/identity/users.json")
}

func TestS3Storage_PutErrorWrapped(t *testing.T) {
	fake := newFakeS3()
	fake.failPut = errors.New("access denied")
	s := newS3Storage(fake, "vault", "")

	err := s.WriteText(context.Background(), "users.json", "[]")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "s3 put users.json")
	assert.Contains(t, err.Error(), "access denied")
}

func TestNewS3Storage_UsesSeams(t *testing.T) {
	origLoad, origNew := loadDefaultAWSConfig, newS3ClientFromConfig
	t.Cleanup(func() { loadDefaultAWSConfig, newS3ClientFromConfig = origLoad, origNew })

	var gotOpts s3.Options
	fake := newFakeS3()
	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*config.LoadOptions) error) (aws.Config, error) {
		var lo config.LoadOptions
		for _, fn := range optFns {
			require.NoError(t, fn(&lo))
		}
		assert.Equal(t, "eu-west-1", lo.Region)
		assert.NotNil(t, lo.Credentials)
		return aws.Config{Region: lo.Region}, nil
	}
	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) s3API {
		for _, fn := range optFns {
			fn(&gotOpts)
		}
		return fake
	}

	s, err := NewS3Storage(context.Background(), S3Options{
		Bucket: "vault", Region: "eu-west-1", Endpoint: "http://127.0.0.1:9000",
		AccessKey: "admin", SecretKey: "secret",
	})
	require.NoError(t, err)
	require.NotNil(t, s)

	require.NotNil(t, gotOpts.BaseEndpoint)
	assert.Equal(t, "http://127.0.0.1:9000", *gotOpts.BaseEndpoint)
	assert.True(t, gotOpts.UsePathStyle)
}

func TestNewS3Storage_Errors(t *testing.T) {
	_, err := NewS3Storage(context.Background(), S3Options{})
	require.Error(t, err, "bucket is required")

	origLoad := loadDefaultAWSConfig
	t.Cleanup(func() { loadDefaultAWSConfig = origLoad })
	loadDefaultAWSConfig = func(context.Context, ...func(*config.LoadOptions) error) (aws.Config, error) {
		return aws.Config{}, errors.New("no config")
	}
	_, err = NewS3Storage(context.Background(), S3Options{Bucket: "vault"})
	require.ErrorContains(t, err, "no config")
}

package storage

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockS3 struct{ mock.Mock }

func (m *mockS3) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	args := m.Called(ctx, in)
	return &s3.PutObjectOutput{}, args.Error(0)
}
func (m *mockS3) GetObject(ctx context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	args := m.Called(ctx, in)
	if out, ok := args.Get(0).(*s3.GetObjectOutput); ok {
		return out, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockS3) DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	args := m.Called(ctx, in)
	return &s3.DeleteObjectOutput{}, args.Error(0)
}
func (m *mockS3) ListObjectsV2(ctx context.Context, in *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	args := m.Called(ctx, in)
	if out, ok := args.Get(0).(*s3.ListObjectsV2Output); ok {
		return out, args.Error(1)
	}
	return nil, args.Error(1)
}

var _ S3API = (*mockS3)(nil)

func TestS3Store_Save(t *testing.T) {
	m := new(mockS3)
	s := NewS3StoreWithClient(m, "media")

	m.On("PutObject", mock.Anything, mock.MatchedBy(func(in *s3.PutObjectInput) bool {
		return aws.ToString(in.Bucket) == "media" &&
			aws.ToString(in.ContentType) == "video/mp4" &&
			in.Metadata[filenameMetaKey] == "abc.mp4" &&
			aws.ToInt64(in.ContentLength) == 3
	})).Return(nil).Once()

	id, err := s.Save(context.Background(), FileInfo{Filename: "abc.mp4", ContentType: "video/mp4", Size: 3}, strings.NewReader("mp4"))
	require.NoError(t, err)
	assert.NotEmpty(t, id)
	m.AssertExpectations(t)
}

func TestS3Store_OpenNotFound(t *testing.T) {
	m := new(mockS3)
	s := NewS3StoreWithClient(m, "media")
	m.On("GetObject", mock.Anything, mock.Anything).Return(nil, &types.NoSuchKey{}).Once()

	_, err := s.Open(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestS3Store_Open(t *testing.T) {
	m := new(mockS3)
	s := NewS3StoreWithClient(m, "media")
	m.On("GetObject", mock.Anything, mock.MatchedBy(func(in *s3.GetObjectInput) bool {
		return aws.ToString(in.Key) == "k1"
	})).Return(&s3.GetObjectOutput{
		Body:          io.NopCloser(strings.NewReader("img")),
		ContentType:   aws.String("image/webp"),
		ContentLength: aws.Int64(3),
		Metadata:      map[string]string{filenameMetaKey: "f.webp"},
	}, nil).Once()

	f, err := s.Open(context.Background(), "k1")
	require.NoError(t, err)
	defer f.Body.Close()
	assert.Equal(t, "image/webp", f.ContentType)
	assert.Equal(t, "f.webp", f.Filename)
	assert.Equal(t, int64(3), f.Size)
}

func TestS3Store_ListPaginates(t *testing.T) {
	m := new(mockS3)
	s := NewS3StoreWithClient(m, "media")
	now := time.Now()

	m.On("ListObjectsV2", mock.Anything, mock.MatchedBy(func(in *s3.ListObjectsV2Input) bool {
		return in.ContinuationToken == nil
	})).Return(&s3.ListObjectsV2Output{
		Contents:              []types.Object{{Key: aws.String("a"), Size: aws.Int64(1), LastModified: &now}},
		IsTruncated:           aws.Bool(true),
		NextContinuationToken: aws.String("next"),
	}, nil).Once()
	m.On("ListObjectsV2", mock.Anything, mock.MatchedBy(func(in *s3.ListObjectsV2Input) bool {
		return aws.ToString(in.ContinuationToken) == "next"
	})).Return(&s3.ListObjectsV2Output{
		Contents:    []types.Object{{Key: aws.String("b"), Size: aws.Int64(2), LastModified: &now}},
		IsTruncated: aws.Bool(false),
	}, nil).Once()

	list, err := s.List(context.Background())
	require.NoError(t, err)
	if assert.Len(t, list, 2) {
		assert.Equal(t, "a", list[0].ID)
		assert.Equal(t, "b", list[1].ID)
	}
	m.AssertExpectations(t)
}

func TestS3Store_DeleteError(t *testing.T) {
	m := new(mockS3)
	s := NewS3StoreWithClient(m, "media")
	m.On("DeleteObject", mock.Anything, mock.Anything).Return(errors.New("boom")).Once()
	assert.Error(t, s.Delete(context.Background(), "x"))
}

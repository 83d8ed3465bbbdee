package storage

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/google/uuid"
)

// S3API — используемое подмножество клиента S3.
type S3API interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
	ListObjectsV2(ctx context.Context, in *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
}

const filenameMetaKey = "filename"

// S3Store хранит файлы как объекты S3; ключ объекта — id файла.
type S3Store struct {
	client S3API
	bucket string
}

// NewS3Store создаёт клиент из стандартной цепочки учётных данных AWS.
func NewS3Store(ctx context.Context, region, bucket string) (*S3Store, error) {
	if bucket == "" || region == "" {
		return nil, fmt.Errorf("s3 store requires bucket and region")
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return NewS3StoreWithClient(s3.NewFromConfig(cfg), bucket), nil
}

func NewS3StoreWithClient(client S3API, bucket string) *S3Store {
	return &S3Store{client: client, bucket: bucket}
}

func (s *S3Store) Save(ctx context.Context, info FileInfo, r io.Reader) (string, error) {
	id := uuid.NewString()
	in := &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(id),
		Body:        r,
		ContentType: aws.String(info.ContentType),
		Metadata:    map[string]string{filenameMetaKey: info.Filename},
		ACL:         types.ObjectCannedACLPrivate,
	}
	if info.Size > 0 {
		in.ContentLength = aws.Int64(info.Size)
	}
	if _, err := s.client.PutObject(ctx, in); err != nil {
		return "", fmt.Errorf("s3 put %s: %w", id, err)
	}
	return id, nil
}

func (s *S3Store) Open(ctx context.Context, id string) (*File, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(id),
	})
	if err != nil {
		var nsk *types.NoSuchKey
		if errors.As(err, &nsk) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("s3 get %s: %w", id, err)
	}
	return &File{
		FileInfo: FileInfo{
			ID:          id,
			Filename:    out.Metadata[filenameMetaKey],
			ContentType: aws.ToString(out.ContentType),
			Size:        aws.ToInt64(out.ContentLength),
			CreatedAt:   aws.ToTime(out.LastModified),
		},
		Body: out.Body,
	}, nil
}

func (s *S3Store) Delete(ctx context.Context, id string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(id),
	})
	if err != nil {
		return fmt.Errorf("s3 delete %s: %w", id, err)
	}
	return nil
}

func (s *S3Store) List(ctx context.Context) ([]FileInfo, error) {
	var (
		out   []FileInfo
		token *string
	)
	for {
		page, err := s.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
			Bucket:            aws.String(s.bucket),
			ContinuationToken: token,
		})
		if err != nil {
			return nil, fmt.Errorf("s3 list: %w", err)
		}
		for _, obj := range page.Contents {
			out = append(out, FileInfo{
				ID:        aws.ToString(obj.Key),
				Size:      aws.ToInt64(obj.Size),
				CreatedAt: aws.ToTime(obj.LastModified),
			})
		}
		if !aws.ToBool(page.IsTruncated) || page.NextContinuationToken == nil {
			return out, nil
		}
		token = page.NextContinuationToken
	}
}

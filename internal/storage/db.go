package storage

import (
	"BlogHub/internal/model"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DBStore хранит файлы целиком в таблице blobs, помечая их бакетом.
type DBStore struct {
	db     *gorm.DB
	bucket string
}

func NewDBStore(db *gorm.DB, bucket string) *DBStore {
	return &DBStore{db: db, bucket: bucket}
}

func (s *DBStore) Save(ctx context.Context, info FileInfo, r io.Reader) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("read upload: %w", err)
	}
	b := &model.Blob{
		ID:          uuid.NewString(),
		Filename:    info.Filename,
		Bucket:      s.bucket,
		ContentType: info.ContentType,
		Size:        int64(len(data)),
		Data:        data,
	}
	if err := s.db.WithContext(ctx).Create(b).Error; err != nil {
		return "", err
	}
	return b.ID, nil
}

func (s *DBStore) Open(ctx context.Context, id string) (*File, error) {
	var b model.Blob
	err := s.db.WithContext(ctx).Where("id = ? AND bucket = ?", id, s.bucket).First(&b).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &File{
		FileInfo: blobInfo(&b),
		Body:     io.NopCloser(bytes.NewReader(b.Data)),
	}, nil
}

func (s *DBStore) Delete(ctx context.Context, id string) error {
	tx := s.db.WithContext(ctx).Where("id = ? AND bucket = ?", id, s.bucket).Delete(&model.Blob{})
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *DBStore) List(ctx context.Context) ([]FileInfo, error) {
	var blobs []model.Blob
	err := s.db.WithContext(ctx).
		Select("id", "filename", "bucket", "content_type", "size", "created_at").
		Where("bucket = ?", s.bucket).
		Order("created_at ASC").
		Find(&blobs).Error
	if err != nil {
		return nil, err
	}
	out := make([]FileInfo, 0, len(blobs))
	for i := range blobs {
		out = append(out, blobInfo(&blobs[i]))
	}
	return out, nil
}

func blobInfo(b *model.Blob) FileInfo {
	return FileInfo{
		ID:          b.ID,
		Filename:    b.Filename,
		ContentType: b.ContentType,
		Size:        b.Size,
		CreatedAt:   b.CreatedAt,
	}
}

// Package storage хранит загруженные медиафайлы записей блога.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"gorm.io/gorm"
)

// ErrNotFound файла с таким id нет в хранилище.
var ErrNotFound = errors.New("blob not found")

// FileInfo — метаданные сохранённого файла.
type FileInfo struct {
	ID          string
	Filename    string
	ContentType string
	Size        int64
	CreatedAt   time.Time
}

// File — открытый на чтение файл. Body закрывает вызывающий.
type File struct {
	FileInfo
	Body io.ReadCloser
}

// Store — хранилище blob'ов в именованном бакете.
type Store interface {
	// Save сохраняет содержимое и возвращает новый id.
	Save(ctx context.Context, info FileInfo, r io.Reader) (string, error)
	Open(ctx context.Context, id string) (*File, error)
	Delete(ctx context.Context, id string) error
	// List перечисляет метаданные всех файлов бакета.
	List(ctx context.Context) ([]FileInfo, error)
}

// NewStore выбирает реализацию по имени бэкенда: "s3" или "db".
func NewStore(ctx context.Context, backend, bucket, region string, db *gorm.DB) (Store, error) {
	switch backend {
	case "s3":
		s3, err := NewS3Store(ctx, region, bucket)
		if err != nil {
			return nil, err
		}
		return s3, nil
	case "db", "":
		return NewDBStore(db, bucket), nil
	default:
		return nil, fmt.Errorf("unknown blob backend %q", backend)
	}
}

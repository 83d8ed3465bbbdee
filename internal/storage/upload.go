package storage

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

var (
	ErrTooManyFiles    = errors.New("only one file may be uploaded")
	ErrUnexpectedField = errors.New("unexpected file field")
	ErrTooLarge        = errors.New("file too large")
	ErrUnsupportedType = errors.New("only image and video files are allowed")
)

// Uploaded — результат приёма файла; ID используется как ссылка на медиа в записи.
type Uploaded struct {
	ID          string
	Filename    string
	ContentType string
	Size        int64
}

// Uploader принимает ровно один файл изображения или видео и сохраняет его в Store.
type Uploader struct {
	store   Store
	maxSize int64
}

func NewUploader(store Store, maxSize int64) *Uploader {
	return &Uploader{store: store, maxSize: maxSize}
}

// Accept проверяет файлы формы и сохраняет файл из поля field.
// Если файлов нет, возвращает (nil, nil).
func (u *Uploader) Accept(ctx context.Context, form *multipart.Form, field string) (*Uploaded, error) {
	if form == nil || len(form.File) == 0 {
		return nil, nil
	}

	total := 0
	for _, fhs := range form.File {
		total += len(fhs)
	}
	if total > 1 {
		return nil, ErrTooManyFiles
	}
	fhs, ok := form.File[field]
	if !ok || len(fhs) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrUnexpectedField, firstKey(form.File))
	}
	fh := fhs[0]

	if fh.Size > u.maxSize {
		return nil, fmt.Errorf("%w: %d bytes, limit %d", ErrTooLarge, fh.Size, u.maxSize)
	}

	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("open upload: %w", err)
	}
	defer f.Close()

	ctype, err := detectType(fh, f)
	if err != nil {
		return nil, err
	}
	if !allowedType(ctype) {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedType, ctype)
	}

	name, err := randomName(fh.Filename)
	if err != nil {
		return nil, err
	}

	id, err := u.store.Save(ctx, FileInfo{Filename: name, ContentType: ctype, Size: fh.Size}, f)
	if err != nil {
		return nil, fmt.Errorf("save upload: %w", err)
	}
	return &Uploaded{ID: id, Filename: name, ContentType: ctype, Size: fh.Size}, nil
}

// detectType берёт тип из заголовка части; если его нет или он общий — определяет по содержимому.
func detectType(fh *multipart.FileHeader, f multipart.File) (string, error) {
	declared := fh.Header.Get("Content-Type")
	if declared != "" {
		if mt, _, err := mime.ParseMediaType(declared); err == nil {
			declared = mt
		}
	}
	if declared != "" && declared != "application/octet-stream" {
		return strings.ToLower(declared), nil
	}

	mt, err := mimetype.DetectReader(f)
	if err != nil {
		return "", fmt.Errorf("detect type: %w", err)
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("rewind upload: %w", err)
	}
	sniffed, _, _ := mime.ParseMediaType(mt.String())
	return sniffed, nil
}

func allowedType(ctype string) bool {
	return strings.HasPrefix(ctype, "image/") || strings.HasPrefix(ctype, "video/")
}

// randomName — 16 случайных байт в hex плюс исходное расширение.
func randomName(original string) (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("random name: %w", err)
	}
	return hex.EncodeToString(buf) + strings.ToLower(filepath.Ext(original)), nil
}

func firstKey(m map[string][]*multipart.FileHeader) string {
	for k := range m {
		return k
	}
	return ""
}

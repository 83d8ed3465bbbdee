package model

import "time"

// Blob — загруженный файл (изображение или видео) в хранилище на базе БД.
type Blob struct {
	ID          string `gorm:"primaryKey;size:64"`
	Filename    string `gorm:"not null"`
	Bucket      string `gorm:"not null;index;size:64"`
	ContentType string `gorm:"not null;size:128"`
	Size        int64  `gorm:"not null"`

	Data []byte `gorm:"not null"`

	CreatedAt time.Time `gorm:"autoCreateTime"`
}

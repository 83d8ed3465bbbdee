package model

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Blog — запись в блоге.
type Blog struct {
	ID      int64                       `gorm:"primaryKey" json:"id"`
	Title   string                      `gorm:"not null" json:"title"`
	Content string                      `gorm:"type:text;not null" json:"content"`
	Tags    datatypes.JSONSlice[string] `gorm:"not null" json:"tags"`

	// Автор задаётся при создании и дальше не меняется
	AuthorID int64 `gorm:"not null;index" json:"author_id"`
	Author   *User `gorm:"foreignKey:AuthorID" json:"author,omitempty"`

	// MediaID — ссылка на файл в хранилище blob'ов
	MediaID   *string `gorm:"size:64;index" json:"media_id"`
	MediaType string  `gorm:"size:128" json:"media_type,omitempty"`

	LikeRecords []BlogLike `gorm:"foreignKey:BlogID" json:"-"`
	Likes       []int64    `gorm:"-" json:"likes"`

	// Вычисляется при чтении одной записи
	ContentHTML string `gorm:"-" json:"content_html,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// BeforeCreate не даёт записать NULL в колонку тегов.
func (b *Blog) BeforeCreate(tx *gorm.DB) error {
	if b.Tags == nil {
		b.Tags = datatypes.JSONSlice[string]{}
	}
	return nil
}

// FillLikes переносит предзагруженные BlogLike в список id пользователей.
func (b *Blog) FillLikes() {
	b.Likes = make([]int64, 0, len(b.LikeRecords))
	for _, l := range b.LikeRecords {
		b.Likes = append(b.Likes, l.UserID)
	}
}

// LikedBy проверяет, есть ли пользователь среди лайкнувших.
func (b *Blog) LikedBy(userID int64) bool {
	for _, id := range b.Likes {
		if id == userID {
			return true
		}
	}
	return false
}

// BlogLike — лайк. Составной первичный ключ исключает дубли.
type BlogLike struct {
	BlogID    int64     `gorm:"primaryKey;autoIncrement:false"`
	UserID    int64     `gorm:"primaryKey;autoIncrement:false;index"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

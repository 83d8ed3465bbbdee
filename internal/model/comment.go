package model

import "time"

// DeletedUserName подпись комментария, автор которого удалён.
const DeletedUserName = "Deleted User"

// Comment — комментарий к записи. UserID обнуляется при удалении автора.
type Comment struct {
	ID     int64 `gorm:"primaryKey" json:"id"`
	BlogID int64 `gorm:"not null;index" json:"blog_id"`

	UserID *int64 `gorm:"index" json:"user_id"`
	User   *User  `gorm:"foreignKey:UserID" json:"user"`

	Text       string `gorm:"type:text;not null" json:"text"`
	AuthorName string `gorm:"not null;default:Deleted User" json:"author_name"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// DisplayName имя для показа: пользователь, если он ещё существует, иначе подпись.
func (c *Comment) DisplayName() string {
	if c.User != nil && c.User.Name != "" {
		return c.User.Name
	}
	if c.AuthorName != "" {
		return c.AuthorName
	}
	return DeletedUserName
}

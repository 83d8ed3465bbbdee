package model

import "time"

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User — учётная запись. Пароль хранится только в виде bcrypt-хеша и никогда не сериализуется.
type User struct {
	ID       int64  `gorm:"primaryKey" json:"id"`
	Name     string `gorm:"not null" json:"name"`
	Email    string `gorm:"uniqueIndex;not null;size:255" json:"email"`
	Password string `gorm:"not null" json:"-"`
	Role     string `gorm:"not null;default:user;size:16" json:"role"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// ValidRole проверяет, что роль из допустимого набора.
func ValidRole(role string) bool {
	return role == RoleUser || role == RoleAdmin
}

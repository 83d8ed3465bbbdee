package repo

import (
	"BlogHub/internal/model"
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CommentRepository контракт доступа к комментариям.
type CommentRepository interface {
	Create(ctx context.Context, c *model.Comment) error
	GetByID(ctx context.Context, id int64) (*model.Comment, error)
	// ListByBlog возвращает комментарии записи в порядке создания, с автором если он существует.
	ListByBlog(ctx context.Context, blogID int64) ([]model.Comment, error)
	CountByBlog(ctx context.Context, blogID int64) (int64, error)
}

type commentRepo struct {
	db *gorm.DB
}

func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepo{db: db}
}

func (r *commentRepo) Create(ctx context.Context, c *model.Comment) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(c).Error
}

func (r *commentRepo) GetByID(ctx context.Context, id int64) (*model.Comment, error) {
	var c model.Comment
	if err := r.db.WithContext(ctx).Preload("User").First(&c, id).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *commentRepo) ListByBlog(ctx context.Context, blogID int64) ([]model.Comment, error) {
	var list []model.Comment
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("blog_id = ?", blogID).
		Order("created_at ASC, id ASC").
		Find(&list).Error
	return list, err
}

func (r *commentRepo) CountByBlog(ctx context.Context, blogID int64) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Comment{}).Where("blog_id = ?", blogID).Count(&n).Error
	return n, err
}

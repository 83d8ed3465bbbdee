package repo

import (
	"BlogHub/internal/model"
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// BlogRepository контракт доступа к записям блога и их лайкам.
type BlogRepository interface {
	Create(ctx context.Context, b *model.Blog) error
	GetByID(ctx context.Context, id int64) (*model.Blog, error)
	// List возвращает все записи, новые первыми, с автором и лайками.
	List(ctx context.Context) ([]model.Blog, error)
	// Update применяет только переданные поля (ключи — имена колонок).
	Update(ctx context.Context, id int64, fields map[string]any) error
	// DeleteCascade удаляет запись вместе с комментариями и лайками.
	DeleteCascade(ctx context.Context, id int64) error
	// ToggleLike ставит лайк, если его нет, иначе снимает. Возвращает итоговое состояние.
	ToggleLike(ctx context.Context, blogID, userID int64) (liked bool, err error)
	// MediaIDs — id всех файлов, на которые ссылаются записи.
	MediaIDs(ctx context.Context) ([]string, error)
}

type blogRepo struct {
	db *gorm.DB
}

// NewBlogRepository создаёт реализацию репозитория записей.
func NewBlogRepository(db *gorm.DB) BlogRepository {
	return &blogRepo{db: db}
}

func (r *blogRepo) Create(ctx context.Context, b *model.Blog) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(b).Error
}

func (r *blogRepo) withRelations(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Preload("Author").Preload("LikeRecords", func(db *gorm.DB) *gorm.DB {
		return db.Order("created_at ASC")
	})
}

func (r *blogRepo) GetByID(ctx context.Context, id int64) (*model.Blog, error) {
	var b model.Blog
	if err := r.withRelations(ctx).First(&b, id).Error; err != nil {
		return nil, err
	}
	b.FillLikes()
	return &b, nil
}

func (r *blogRepo) List(ctx context.Context) ([]model.Blog, error) {
	var blogs []model.Blog
	if err := r.withRelations(ctx).Order("created_at DESC, id DESC").Find(&blogs).Error; err != nil {
		return nil, err
	}
	for i := range blogs {
		blogs[i].FillLikes()
	}
	return blogs, nil
}

func (r *blogRepo) Update(ctx context.Context, id int64, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Model(&model.Blog{ID: id}).Updates(fields).Error
}

func (r *blogRepo) DeleteCascade(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("blog_id = ?", id).Delete(&model.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("blog_id = ?", id).Delete(&model.BlogLike{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&model.Blog{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

func (r *blogRepo) ToggleLike(ctx context.Context, blogID, userID int64) (bool, error) {
	liked := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("blog_id = ? AND user_id = ?", blogID, userID).Delete(&model.BlogLike{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected > 0 {
			return nil
		}
		liked = true
		return tx.Clauses(clause.OnConflict{DoNothing: true}).
			Create(&model.BlogLike{BlogID: blogID, UserID: userID}).Error
	})
	return liked, err
}

func (r *blogRepo) MediaIDs(ctx context.Context) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).Model(&model.Blog{}).
		Where("media_id IS NOT NULL").
		Pluck("media_id", &ids).Error
	return ids, err
}

package service

import (
	"BlogHub/internal/cache"
	"BlogHub/internal/model"
	"BlogHub/internal/repo"
	"BlogHub/internal/storage"
	"bytes"
	"context"
	"errors"
	"fmt"
	"html"
	"mime/multipart"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

// MediaField — имя поля формы с файлом записи.
const MediaField = "image"

const blogListKey = "blogs:list"

var (
	stripPolicy = bluemonday.StrictPolicy()
	htmlPolicy  = bluemonday.UGCPolicy()
)

// BlogInput — поля записи из запроса. nil означает «не передано».
type BlogInput struct {
	Title   *string
	Content *string
	Tags    []string
	Form    *multipart.Form
}

// BlogService — записи блога, лайки и комментарии.
type BlogService struct {
	blogs    repo.BlogRepository
	comments repo.CommentRepository
	store    storage.Store
	uploader *storage.Uploader
	cache    cache.Cache
	cacheTTL time.Duration
	logger   *zap.SugaredLogger
	runAsync func(func())
}

type BlogOption func(*BlogService)

// WithCache включает кэширование общего списка записей.
func WithCache(c cache.Cache, ttl time.Duration) BlogOption {
	return func(s *BlogService) {
		if c != nil {
			s.cache = c
			s.cacheTTL = ttl
		}
	}
}

// WithAsyncRunner задаёт запуск фоновых удалений файлов (в тестах — синхронно).
func WithAsyncRunner(run func(func())) BlogOption {
	return func(s *BlogService) {
		if run != nil {
			s.runAsync = run
		}
	}
}

func NewBlogService(blogs repo.BlogRepository, comments repo.CommentRepository, store storage.Store, uploader *storage.Uploader, logger *zap.SugaredLogger, opts ...BlogOption) *BlogService {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	s := &BlogService{
		blogs:    blogs,
		comments: comments,
		store:    store,
		uploader: uploader,
		cache:    cache.Noop{},
		logger:   logger,
		runAsync: func(fn func()) { go fn() },
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// ParseTags принимает либо одну строку через запятую, либо массив значений.
// Пустые теги отбрасываются, дубли схлопываются.
func ParseTags(values ...string) []string {
	tags := make([]string, 0, len(values))
	seen := make(map[string]struct{})
	for _, v := range values {
		for _, t := range strings.Split(v, ",") {
			t = cleanText(t)
			if t == "" {
				continue
			}
			if _, ok := seen[t]; ok {
				continue
			}
			seen[t] = struct{}{}
			tags = append(tags, t)
		}
	}
	return tags
}

// cleanText вырезает разметку из однострочных полей. Сущности раскрываются до
// санитайзера, в базу попадает его экранированный вывод.
func cleanText(s string) string {
	return strings.TrimSpace(stripPolicy.Sanitize(html.UnescapeString(s)))
}

// RenderContent переводит markdown в безопасный HTML.
func RenderContent(content string) (string, error) {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(content), &buf); err != nil {
		return "", err
	}
	return htmlPolicy.Sanitize(buf.String()), nil
}

func (s *BlogService) Create(ctx context.Context, actor Actor, in BlogInput) (*model.Blog, error) {
	var title, content string
	if in.Title != nil {
		title = cleanText(*in.Title)
	}
	if in.Content != nil {
		content = strings.TrimSpace(*in.Content)
	}
	if title == "" || content == "" {
		return nil, invalid("title and content are required")
	}

	blog := &model.Blog{
		Title:    title,
		Content:  content,
		Tags:     datatypes.JSONSlice[string](ParseTags(in.Tags...)),
		AuthorID: actor.ID,
	}

	media, err := s.acceptMedia(ctx, in.Form)
	if err != nil {
		return nil, err
	}
	if media != nil {
		blog.MediaID = &media.ID
		blog.MediaType = media.ContentType
	}

	if err := s.blogs.Create(ctx, blog); err != nil {
		if media != nil {
			s.deleteMediaAsync(media.ID)
		}
		return nil, err
	}
	s.invalidate(ctx)
	s.logger.Infow("blog created", "blog_id", blog.ID, "author_id", actor.ID, "with_media", media != nil)

	return s.reload(ctx, blog.ID)
}

// List отдаёт все записи, новые первыми. Результат кэшируется.
func (s *BlogService) List(ctx context.Context) ([]model.Blog, error) {
	var cached []model.Blog
	found, err := s.cache.Get(ctx, blogListKey, &cached)
	if err != nil {
		s.logger.Warnw("cache read failed", "key", blogListKey, "error", err)
	}
	if found {
		return cached, nil
	}

	blogs, err := s.blogs.List(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.cache.Set(ctx, blogListKey, blogs, s.cacheTTL); err != nil {
		s.logger.Warnw("cache write failed", "key", blogListKey, "error", err)
	}
	return blogs, nil
}

// Get отдаёт запись с отрендеренным content_html.
func (s *BlogService) Get(ctx context.Context, id int64) (*model.Blog, error) {
	blog, err := s.reload(ctx, id)
	if err != nil {
		return nil, err
	}
	rendered, err := RenderContent(blog.Content)
	if err != nil {
		s.logger.Warnw("render markdown failed", "blog_id", id, "error", err)
	} else {
		blog.ContentHTML = rendered
	}
	return blog, nil
}

// OpenMedia открывает файл по id из media_id записи. Body закрывает вызывающий.
func (s *BlogService) OpenMedia(ctx context.Context, mediaID string) (*storage.File, error) {
	f, err := s.store.Open(ctx, mediaID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, &notFoundError{what: "File", err: err}
	}
	return f, err
}

// Update меняет только title, content, tags и медиа; править может только автор.
func (s *BlogService) Update(ctx context.Context, actor Actor, id int64, in BlogInput) (*model.Blog, error) {
	blog, err := s.reload(ctx, id)
	if err != nil {
		return nil, err
	}
	if blog.AuthorID != actor.ID {
		return nil, fmt.Errorf("%w: only the author can edit this blog", ErrForbidden)
	}

	fields := make(map[string]any)
	if in.Title != nil {
		title := cleanText(*in.Title)
		if title == "" {
			return nil, invalid("title must not be empty")
		}
		fields["title"] = title
	}
	if in.Content != nil {
		content := strings.TrimSpace(*in.Content)
		if content == "" {
			return nil, invalid("content must not be empty")
		}
		fields["content"] = content
	}
	if in.Tags != nil {
		fields["tags"] = datatypes.JSONSlice[string](ParseTags(in.Tags...))
	}

	media, err := s.acceptMedia(ctx, in.Form)
	if err != nil {
		return nil, err
	}
	if media != nil {
		fields["media_id"] = media.ID
		fields["media_type"] = media.ContentType
	}

	if err := s.blogs.Update(ctx, id, fields); err != nil {
		if media != nil {
			s.deleteMediaAsync(media.ID)
		}
		return nil, err
	}
	if media != nil && blog.MediaID != nil {
		s.deleteMediaAsync(*blog.MediaID)
	}
	s.invalidate(ctx)

	return s.reload(ctx, id)
}

// Delete удаляет запись с комментариями и лайками; файл удаляется в фоне.
func (s *BlogService) Delete(ctx context.Context, actor Actor, id int64) error {
	blog, err := s.reload(ctx, id)
	if err != nil {
		return err
	}
	if blog.AuthorID != actor.ID && !actor.Admin {
		return fmt.Errorf("%w: only the author or an admin can delete this blog", ErrForbidden)
	}
	if err := s.blogs.DeleteCascade(ctx, id); err != nil {
		return notFound(err, "Blog")
	}
	if blog.MediaID != nil {
		s.deleteMediaAsync(*blog.MediaID)
	}
	s.invalidate(ctx)
	s.logger.Infow("blog deleted", "blog_id", id, "by", actor.ID)
	return nil
}

// ToggleLike ставит или снимает лайк и возвращает обновлённую запись.
func (s *BlogService) ToggleLike(ctx context.Context, actor Actor, id int64) (*model.Blog, error) {
	if _, err := s.reload(ctx, id); err != nil {
		return nil, err
	}
	if _, err := s.blogs.ToggleLike(ctx, id, actor.ID); err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return s.reload(ctx, id)
}

func (s *BlogService) AddComment(ctx context.Context, actor Actor, blogID int64, text string) (*model.Comment, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, invalid("comment text is required")
	}
	if _, err := s.reload(ctx, blogID); err != nil {
		return nil, err
	}

	uid := actor.ID
	c := &model.Comment{
		BlogID:     blogID,
		UserID:     &uid,
		Text:       text,
		AuthorName: actor.Name,
	}
	if c.AuthorName == "" {
		c.AuthorName = model.DeletedUserName
	}
	if err := s.comments.Create(ctx, c); err != nil {
		return nil, err
	}

	created, err := s.comments.GetByID(ctx, c.ID)
	if err != nil {
		return nil, notFound(err, "Comment")
	}
	return created, nil
}

func (s *BlogService) ListComments(ctx context.Context, blogID int64) ([]model.Comment, error) {
	if _, err := s.reload(ctx, blogID); err != nil {
		return nil, err
	}
	return s.comments.ListByBlog(ctx, blogID)
}

func (s *BlogService) reload(ctx context.Context, id int64) (*model.Blog, error) {
	blog, err := s.blogs.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "Blog")
	}
	return blog, nil
}

func (s *BlogService) acceptMedia(ctx context.Context, form *multipart.Form) (*storage.Uploaded, error) {
	up, err := s.uploader.Accept(ctx, form, MediaField)
	switch {
	case err == nil:
		return up, nil
	case errors.Is(err, storage.ErrUnsupportedType):
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedMedia, err)
	case errors.Is(err, storage.ErrTooLarge):
		return nil, fmt.Errorf("%w: %v", ErrTooLarge, err)
	case errors.Is(err, storage.ErrTooManyFiles), errors.Is(err, storage.ErrUnexpectedField):
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	default:
		return nil, err
	}
}

func (s *BlogService) deleteMediaAsync(id string) {
	s.runAsync(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := s.store.Delete(ctx, id); err != nil && !errors.Is(err, storage.ErrNotFound) {
			s.logger.Errorw("failed to delete media", "media_id", id, "error", err)
			return
		}
		s.logger.Infow("media deleted", "media_id", id)
	})
}

func (s *BlogService) invalidate(ctx context.Context) {
	if err := s.cache.Delete(ctx, blogListKey); err != nil {
		s.logger.Warnw("cache invalidation failed", "key", blogListKey, "error", err)
	}
}

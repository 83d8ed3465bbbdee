package service

import (
	"BlogHub/internal/cache"
	"BlogHub/internal/model"
	"BlogHub/internal/repo"
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// UserService — регистрация, вход и администрирование пользователей.
type UserService struct {
	repo   repo.UserRepository
	cache  cache.Cache
	logger *zap.SugaredLogger
}

func NewUserService(r repo.UserRepository, c cache.Cache, logger *zap.SugaredLogger) *UserService {
	if c == nil {
		c = cache.Noop{}
	}
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &UserService{repo: r, cache: c, logger: logger}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register создаёт пользователя с ролью user.
func (s *UserService) Register(ctx context.Context, name, email, password string) (*model.User, error) {
	name = strings.TrimSpace(name)
	email = normalizeEmail(email)
	if name == "" || email == "" || password == "" {
		return nil, invalid("name, email and password are required")
	}
	// "Bob <bob@x.com>" тоже разбирается, но хранить можно только голый адрес
	if addr, err := mail.ParseAddress(email); err != nil || addr.Address != email {
		return nil, invalid("email is not valid")
	}

	existing, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.repo.CreateUser(ctx, &model.User{
		Name:     name,
		Email:    email,
		Password: string(hash),
		Role:     model.RoleUser,
	})
	if err != nil {
		if s.emailTaken(ctx, email, err) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}
	s.logger.Infow("user registered", "user_id", user.ID)
	return user, nil
}

// emailTaken распознаёт срабатывание уникального индекса при параллельной регистрации.
// Не все драйверы переводят ошибку в gorm.ErrDuplicatedKey, поэтому адрес перепроверяется.
func (s *UserService) emailTaken(ctx context.Context, email string, createErr error) bool {
	if errors.Is(createErr, gorm.ErrDuplicatedKey) {
		return true
	}
	u, err := s.repo.GetUserByEmail(ctx, email)
	return err == nil && u != nil
}

// Login проверяет пару email/пароль. Неизвестный email и неверный пароль неразличимы.
func (s *UserService) Login(ctx context.Context, email, password string) (*model.User, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, invalid("email and password are required")
	}
	user, err := s.repo.GetUserByEmail(ctx, email)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

func (s *UserService) Get(ctx context.Context, id int64) (*model.User, error) {
	u, err := s.repo.GetUserByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "User")
	}
	return u, nil
}

func (s *UserService) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	u, err := s.repo.GetUserByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return nil, notFound(err, "User")
	}
	return u, nil
}

func (s *UserService) List(ctx context.Context) ([]model.User, error) {
	return s.repo.ListUsers(ctx)
}

// Delete удаляет пользователя: может сам пользователь или администратор.
// Комментарии обезличиваются, лайки снимаются.
func (s *UserService) Delete(ctx context.Context, actor Actor, id int64) error {
	if !actor.Admin && actor.ID != id {
		return ErrForbidden
	}
	if err := s.repo.DeleteUserCascade(ctx, id); err != nil {
		return notFound(err, "User")
	}
	// лайки пользователя входят в закэшированный список записей
	if err := s.cache.Delete(ctx, blogListKey); err != nil {
		s.logger.Warnw("cache invalidation failed", "key", blogListKey, "error", err)
	}
	s.logger.Infow("user deleted", "user_id", id, "by", actor.ID)
	return nil
}

// SetRole меняет роль пользователя по email.
func (s *UserService) SetRole(ctx context.Context, email, role string) (*model.User, error) {
	if !model.ValidRole(role) {
		return nil, invalid("unknown role " + role)
	}
	u, err := s.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if err := s.repo.SetRole(ctx, u.ID, role); err != nil {
		return nil, notFound(err, "User")
	}
	u.Role = role
	return u, nil
}

// EnsureAdmin создаёт администратора при первом запуске или повышает существующего пользователя.
func (s *UserService) EnsureAdmin(ctx context.Context, email, password string) error {
	email = normalizeEmail(email)
	if email == "" {
		return nil
	}
	u, err := s.repo.GetUserByEmail(ctx, email)
	switch {
	case err == nil:
		if u.IsAdmin() {
			return nil
		}
		s.logger.Infow("promoting configured admin", "user_id", u.ID)
		return s.repo.SetRole(ctx, u.ID, model.RoleAdmin)
	case errors.Is(err, gorm.ErrRecordNotFound):
		if password == "" {
			return invalid("admin password is required to create the admin account")
		}
		u, err = s.Register(ctx, "Admin", email, password)
		if err != nil {
			return err
		}
		s.logger.Infow("admin account created", "user_id", u.ID)
		return s.repo.SetRole(ctx, u.ID, model.RoleAdmin)
	default:
		return err
	}
}

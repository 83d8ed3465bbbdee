package handlers_test

import (
	"BlogHub/internal/chatbot"
	"BlogHub/internal/config"
	"BlogHub/internal/handlers"
	"BlogHub/internal/model"
	"BlogHub/internal/repo"
	"BlogHub/internal/service"
	"BlogHub/internal/storage"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strconv"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type testEnv struct {
	router http.Handler
	cfg    *config.Config
	users  *service.UserService
}

type envSetup struct {
	cfg      *config.Config
	provider chatbot.Provider
}

type envOption func(*envSetup)

func withProvider(p chatbot.Provider) envOption {
	return func(s *envSetup) { s.provider = p }
}

func withStaticDir(dir string) envOption {
	return func(s *envSetup) { s.cfg.StaticDir = dir }
}

func withRateLimit(rps float64, burst int) envOption {
	return func(s *envSetup) {
		s.cfg.RateLimitRPS = rps
		s.cfg.RateLimitBurst = burst
	}
}

func withTrustProxy() envOption {
	return func(s *envSetup) { s.cfg.TrustProxy = true }
}

// newTestEnv собирает роутер на in-memory SQLite; удаление файлов синхронное
func newTestEnv(t *testing.T, opts ...envOption) *testEnv {
	t.Helper()
	cfg := &config.Config{
		AuthSecret:    "test-secret",
		TokenTTL:      time.Hour,
		BlobMaxSizeMB: 1,
		StaticDir:     t.TempDir(),
	}
	setup := &envSetup{cfg: cfg}
	for _, o := range opts {
		o(setup)
	}

	db, err := repo.InitDB("sqlite", "file:"+uuid.NewString()+"?mode=memory&cache=shared")
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	logger := zap.NewNop().Sugar()
	store := storage.NewDBStore(db, "uploads")
	users := service.NewUserService(repo.NewUserRepository(db), nil, logger)
	blogs := service.NewBlogService(
		repo.NewBlogRepository(db),
		repo.NewCommentRepository(db),
		store,
		storage.NewUploader(store, cfg.BlobMaxBytes()),
		logger,
		service.WithAsyncRunner(func(fn func()) { fn() }),
	)
	bot := chatbot.NewBot(chatbot.DefaultRules, setup.provider, logger)

	h := handlers.NewHandler(users, blogs, bot, sqlDB.PingContext, logger, cfg)
	return &testEnv{router: h.Router, cfg: cfg, users: users}
}

func (e *testEnv) do(t *testing.T, method, path, token string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	e.router.ServeHTTP(rr, req)
	return rr
}

func (e *testEnv) doJSON(t *testing.T, method, path, token string, payload any) *httptest.ResponseRecorder {
	t.Helper()
	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(b)
	}
	return e.do(t, method, path, token, body, "application/json")
}

// signup регистрирует пользователя и возвращает его вместе с токеном
func (e *testEnv) signup(t *testing.T, name string, admin bool) (model.User, string) {
	t.Helper()
	email := name + "@x.com"
	rr := e.doJSON(t, http.MethodPost, "/api/auth/register", "", map[string]string{"name": name, "email": email, "password": "p"})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	if admin {
		_, err := e.users.SetRole(context.Background(), email, model.RoleAdmin)
		require.NoError(t, err)
	}

	rr = e.doJSON(t, http.MethodPost, "/api/auth/login", "", map[string]string{"email": email, "password": "p"})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var resp struct {
		User  model.User `json:"user"`
		Token string     `json:"token"`
	}
	decode(t, rr, &resp)
	require.NotEmpty(t, resp.Token)
	return resp.User, resp.Token
}

type filePart struct {
	field, filename, ctype string
	data                   []byte
}

func multipartBody(t *testing.T, fields map[string]string, files ...filePart) (io.Reader, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	for _, f := range files {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="`+f.field+`"; filename="`+f.filename+`"`)
		h.Set("Content-Type", f.ctype)
		pw, err := w.CreatePart(h)
		require.NoError(t, err)
		_, _ = pw.Write(f.data)
	}
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func decode(t *testing.T, rr *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), v), rr.Body.String())
}

func message(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()
	var m struct {
		Message string `json:"message"`
	}
	decode(t, rr, &m)
	return m.Message
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}

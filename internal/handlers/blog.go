package handlers

import (
	"BlogHub/internal/config"
	"BlogHub/internal/service"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// multipartMemory — сколько формы держать в памяти, остальное уходит во временные файлы.
const multipartMemory = 8 << 20

// BlogHandler — записи, медиа, лайки и комментарии.
type BlogHandler struct {
	BlogService *service.BlogService
	Logger      *zap.SugaredLogger
	Config      *config.Config
}

func NewBlogHandler(blogService *service.BlogService, logger *zap.SugaredLogger, cfg *config.Config) *BlogHandler {
	return &BlogHandler{BlogService: blogService, Logger: logger, Config: cfg}
}

type blogJSONRequest struct {
	Title   *string         `json:"title"`
	Content *string         `json:"content"`
	Tags    json.RawMessage `json:"tags"`
}

type commentRequest struct {
	Text string `json:"text"`
}

// readBlogInput разбирает multipart/form-data (с файлом) или JSON.
// Вызывающий должен выполнить cleanup.
func (h *BlogHandler) readBlogInput(w http.ResponseWriter, r *http.Request) (in service.BlogInput, cleanup func(), err error) {
	cleanup = func() {}

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		// запас на остальные поля формы
		r.Body = http.MaxBytesReader(w, r.Body, h.Config.BlobMaxBytes()+1<<20)
		if err := r.ParseMultipartForm(multipartMemory); err != nil {
			var tooBig *http.MaxBytesError
			if errors.As(err, &tooBig) {
				return in, cleanup, service.ErrTooLarge
			}
			return in, cleanup, fmt.Errorf("%w: malformed multipart form", service.ErrValidation)
		}
		form := r.MultipartForm
		cleanup = func() { _ = form.RemoveAll() }

		if v, ok := form.Value["title"]; ok && len(v) > 0 {
			in.Title = &v[0]
		}
		if v, ok := form.Value["content"]; ok && len(v) > 0 {
			in.Content = &v[0]
		}
		tags, hasTags := form.Value["tags"]
		if arr, ok := form.Value["tags[]"]; ok {
			tags, hasTags = append(tags, arr...), true
		}
		if hasTags {
			in.Tags = tags
		}
		in.Form = form
		return in, cleanup, nil
	}

	var req blogJSONRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		return in, cleanup, fmt.Errorf("%w: invalid request body", service.ErrValidation)
	}
	in.Title, in.Content = req.Title, req.Content
	if len(req.Tags) > 0 && string(req.Tags) != "null" {
		tags, err := decodeTags(req.Tags)
		if err != nil {
			return in, cleanup, err
		}
		in.Tags = tags
	}
	return in, cleanup, nil
}

// decodeTags — теги приходят строкой через запятую или массивом строк.
// Разбор и очистка остаются сервису.
func decodeTags(raw json.RawMessage) ([]string, error) {
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		if list == nil {
			list = []string{}
		}
		return list, nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return []string{s}, nil
	}
	return nil, fmt.Errorf("%w: tags must be a string or an array of strings", service.ErrValidation)
}

func (h *BlogHandler) List(w http.ResponseWriter, r *http.Request) {
	blogs, err := h.BlogService.List(r.Context())
	if err != nil {
		writeServiceError(w, r, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, blogs)
}

func (h *BlogHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeMessage(w, http.StatusBadRequest, "Invalid blog id")
		return
	}
	blog, err := h.BlogService.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, blog)
}

func (h *BlogHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(r)
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	in, cleanup, err := h.readBlogInput(w, r)
	defer cleanup()
	if err != nil {
		writeServiceError(w, r, h.Logger, err)
		return
	}

	blog, err := h.BlogService.Create(r.Context(), actor, in)
	if err != nil {
		writeServiceError(w, r, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, blog)
}

func (h *BlogHandler) Update(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(r)
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	id, ok := pathID(r)
	if !ok {
		writeMessage(w, http.StatusBadRequest, "Invalid blog id")
		return
	}
	in, cleanup, err := h.readBlogInput(w, r)
	defer cleanup()
	if err != nil {
		writeServiceError(w, r, h.Logger, err)
		return
	}

	blog, err := h.BlogService.Update(r.Context(), actor, id, in)
	if err != nil {
		writeServiceError(w, r, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, blog)
}

func (h *BlogHandler) Delete(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(r)
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	id, ok := pathID(r)
	if !ok {
		writeMessage(w, http.StatusBadRequest, "Invalid blog id")
		return
	}
	if err := h.BlogService.Delete(r.Context(), actor, id); err != nil {
		writeServiceError(w, r, h.Logger, err)
		return
	}
	writeMessage(w, http.StatusOK, "Blog deleted successfully")
}

// File отдаёт медиа записи по id файла
func (h *BlogHandler) File(w http.ResponseWriter, r *http.Request) {
	f, err := h.BlogService.OpenMedia(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, h.Logger, err)
		return
	}
	defer f.Body.Close()

	w.Header().Set("Content-Type", f.ContentType)
	if f.Size > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(f.Size, 10))
	}
	disposition := "inline"
	// svg может нести скрипты, в браузере открывается только скачиванием
	if strings.HasPrefix(f.ContentType, "image/svg") {
		disposition = "attachment"
	}
	w.Header().Set("Content-Disposition", mime.FormatMediaType(disposition, map[string]string{"filename": f.Filename}))
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.Header().Set("Content-Security-Policy", "sandbox")
	w.Header().Set("Cache-Control", "public, max-age=86400")
	w.WriteHeader(http.StatusOK)

	if _, err := io.Copy(w, f.Body); err != nil {
		h.Logger.Warnw("media stream interrupted", "media_id", f.ID, "error", err)
	}
}

// Like переключает лайк текущего пользователя
func (h *BlogHandler) Like(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(r)
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	id, ok := pathID(r)
	if !ok {
		writeMessage(w, http.StatusBadRequest, "Invalid blog id")
		return
	}
	blog, err := h.BlogService.ToggleLike(r.Context(), actor, id)
	if err != nil {
		writeServiceError(w, r, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, blog)
}

func (h *BlogHandler) ListComments(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeMessage(w, http.StatusBadRequest, "Invalid blog id")
		return
	}
	comments, err := h.BlogService.ListComments(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, comments)
}

func (h *BlogHandler) AddComment(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(r)
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	id, ok := pathID(r)
	if !ok {
		writeMessage(w, http.StatusBadRequest, "Invalid blog id")
		return
	}
	var req commentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	comment, err := h.BlogService.AddComment(r.Context(), actor, id, req.Text)
	if err != nil {
		writeServiceError(w, r, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, comment)
}

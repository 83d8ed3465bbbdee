package handlers_test

import (
	"BlogHub/internal/model"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createBlog(t *testing.T, env *testEnv, token, title string, files ...filePart) model.Blog {
	t.Helper()
	body, ctype := multipartBody(t, map[string]string{"title": title, "content": "Some *content*", "tags": "go, web"}, files...)
	rr := env.do(t, http.MethodPost, "/api/blogs", token, body, ctype)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	var b model.Blog
	decode(t, rr, &b)
	return b
}

func TestBlogs_CreateListGet(t *testing.T) {
	env := newTestEnv(t)
	ann, token := env.signup(t, "ann", false)

	b := createBlog(t, env, token, "First", filePart{"image", "cat.jpg", "image/jpeg", []byte("jpeg-data")})
	assert.Equal(t, ann.ID, b.AuthorID)
	assert.Equal(t, []string{"go", "web"}, []string(b.Tags))
	require.NotNil(t, b.MediaID)
	assert.Equal(t, "image/jpeg", b.MediaType)
	assert.Empty(t, b.Likes)

	createBlog(t, env, token, "Second")

	rr := env.do(t, http.MethodGet, "/api/blogs", "", nil, "")
	require.Equal(t, http.StatusOK, rr.Code)
	var list []model.Blog
	decode(t, rr, &list)
	if assert.Len(t, list, 2) {
		assert.Equal(t, "Second", list[0].Title, "newest first")
		if assert.NotNil(t, list[0].Author) {
			assert.Equal(t, "ann", list[0].Author.Name)
			assert.Equal(t, "ann@x.com", list[0].Author.Email)
		}
	}

	rr = env.do(t, http.MethodGet, "/api/blogs/"+itoa(b.ID), "", nil, "")
	require.Equal(t, http.StatusOK, rr.Code)
	var got model.Blog
	decode(t, rr, &got)
	assert.Contains(t, got.ContentHTML, "<em>content</em>")

	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodGet, "/api/blogs/999", "", nil, "").Code)
	assert.Equal(t, http.StatusBadRequest, env.do(t, http.MethodGet, "/api/blogs/abc", "", nil, "").Code)
}

func TestBlogs_CreateJSONAndValidation(t *testing.T) {
	env := newTestEnv(t)
	_, token := env.signup(t, "ann", false)

	rr := env.doJSON(t, http.MethodPost, "/api/blogs", token, map[string]any{"title": "J", "content": "c", "tags": []string{"a", "b"}})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	var b model.Blog
	decode(t, rr, &b)
	assert.Equal(t, []string{"a", "b"}, []string(b.Tags))
	assert.Nil(t, b.MediaID)

	rr = env.doJSON(t, http.MethodPost, "/api/blogs", token, map[string]any{"title": "only title"})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "Title and content are required", message(t, rr))

	rr = env.doJSON(t, http.MethodPost, "/api/blogs", token, map[string]any{"title": "t", "content": "c", "tags": 5})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestBlogs_UploadRejections(t *testing.T) {
	env := newTestEnv(t)
	_, token := env.signup(t, "ann", false)
	fields := map[string]string{"title": "t", "content": "c"}

	body, ctype := multipartBody(t, fields, filePart{"image", "x.txt", "text/plain", []byte("hello")})
	rr := env.do(t, http.MethodPost, "/api/blogs", token, body, ctype)
	assert.Equal(t, http.StatusUnsupportedMediaType, rr.Code)

	body, ctype = multipartBody(t, fields,
		filePart{"image", "a.png", "image/png", []byte("a")},
		filePart{"image", "b.png", "image/png", []byte("b")},
	)
	rr = env.do(t, http.MethodPost, "/api/blogs", token, body, ctype)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	big := make([]byte, env.cfg.BlobMaxBytes()+1)
	body, ctype = multipartBody(t, fields, filePart{"image", "big.png", "image/png", big})
	rr = env.do(t, http.MethodPost, "/api/blogs", token, body, ctype)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rr.Code)

	rr = env.do(t, http.MethodGet, "/api/blogs", "", nil, "")
	assert.JSONEq(t, "[]", rr.Body.String())
}

func TestBlogs_UpdateScenario(t *testing.T) {
	env := newTestEnv(t)
	_, tokenA := env.signup(t, "ann", false)
	_, tokenB := env.signup(t, "bob", false)
	b := createBlog(t, env, tokenA, "Original")

	rr := env.doJSON(t, http.MethodPut, "/api/blogs/"+itoa(b.ID), tokenB, map[string]string{"title": "Hijacked"})
	assert.Equal(t, http.StatusForbidden, rr.Code)

	rr = env.do(t, http.MethodGet, "/api/blogs/"+itoa(b.ID), "", nil, "")
	var unchanged model.Blog
	decode(t, rr, &unchanged)
	assert.Equal(t, "Original", unchanged.Title)

	// author_id в теле игнорируется
	rr = env.doJSON(t, http.MethodPut, "/api/blogs/"+itoa(b.ID), tokenA, map[string]any{"title": "Renamed", "author_id": 999})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var updated model.Blog
	decode(t, rr, &updated)
	assert.Equal(t, "Renamed", updated.Title)
	assert.Equal(t, b.AuthorID, updated.AuthorID)

	rr = env.do(t, http.MethodGet, "/api/blogs/"+itoa(b.ID), "", nil, "")
	var persisted model.Blog
	decode(t, rr, &persisted)
	assert.Equal(t, "Renamed", persisted.Title)
}

func TestBlogs_UpdateMediaAndStream(t *testing.T) {
	env := newTestEnv(t)
	_, token := env.signup(t, "ann", false)
	b := createBlog(t, env, token, "Pic", filePart{"image", "a.png", "image/png", []byte("old-bytes")})
	oldID := *b.MediaID

	rr := env.do(t, http.MethodGet, "/api/blogs/file/"+oldID, "", nil, "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "image/png", rr.Header().Get("Content-Type"))
	assert.Equal(t, "old-bytes", rr.Body.String())

	body, ctype := multipartBody(t, map[string]string{"title": "Clip"}, filePart{"image", "v.mp4", "video/mp4", []byte("new-bytes")})
	rr = env.do(t, http.MethodPut, "/api/blogs/"+itoa(b.ID), token, body, ctype)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var updated model.Blog
	decode(t, rr, &updated)
	require.NotNil(t, updated.MediaID)
	assert.Equal(t, "video/mp4", updated.MediaType)
	assert.Equal(t, "Some *content*", updated.Content)

	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodGet, "/api/blogs/file/"+oldID, "", nil, "").Code)
	rr = env.do(t, http.MethodGet, "/api/blogs/file/"+*updated.MediaID, "", nil, "")
	assert.Equal(t, "new-bytes", rr.Body.String())
	assert.Equal(t, "video/mp4", rr.Header().Get("Content-Type"))
}

func TestBlogs_FileIsolationHeaders(t *testing.T) {
	env := newTestEnv(t)
	_, token := env.signup(t, "ann", false)
	png := createBlog(t, env, token, "Png", filePart{"image", "a.png", "image/png", []byte("p")})
	svg := createBlog(t, env, token, "Svg", filePart{"image", "x.svg", "image/svg+xml", []byte(`<svg onload="alert(1)"/>`)})

	rr := env.do(t, http.MethodGet, "/api/blogs/file/"+*png.MediaID, "", nil, "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "nosniff", rr.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "sandbox", rr.Header().Get("Content-Security-Policy"))
	assert.True(t, strings.HasPrefix(rr.Header().Get("Content-Disposition"), "inline"))

	rr = env.do(t, http.MethodGet, "/api/blogs/file/"+*svg.MediaID, "", nil, "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "image/svg+xml", rr.Header().Get("Content-Type"))
	assert.Equal(t, "nosniff", rr.Header().Get("X-Content-Type-Options"))
	assert.True(t, strings.HasPrefix(rr.Header().Get("Content-Disposition"), "attachment"))
}

func TestBlogs_DeletePermissionsAndCascade(t *testing.T) {
	env := newTestEnv(t)
	_, tokenA := env.signup(t, "ann", false)
	_, tokenB := env.signup(t, "bob", false)
	_, tokenAdmin := env.signup(t, "root", true)

	b := createBlog(t, env, tokenA, "Doomed", filePart{"image", "a.png", "image/png", []byte("x")})
	rr := env.doJSON(t, http.MethodPost, "/api/blogs/"+itoa(b.ID)+"/comment", tokenB, map[string]string{"text": "first!"})
	require.Equal(t, http.StatusCreated, rr.Code)

	rr = env.do(t, http.MethodDelete, "/api/blogs/"+itoa(b.ID), tokenB, nil, "")
	assert.Equal(t, http.StatusForbidden, rr.Code)
	assert.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/api/blogs/"+itoa(b.ID), "", nil, "").Code)

	rr = env.do(t, http.MethodDelete, "/api/blogs/"+itoa(b.ID), tokenAdmin, nil, "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "Blog deleted successfully", message(t, rr))

	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodGet, "/api/blogs/"+itoa(b.ID), "", nil, "").Code)
	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodGet, "/api/blogs/"+itoa(b.ID)+"/comments", "", nil, "").Code)
	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodGet, "/api/blogs/file/"+*b.MediaID, "", nil, "").Code)

	own := createBlog(t, env, tokenA, "Mine")
	assert.Equal(t, http.StatusOK, env.do(t, http.MethodDelete, "/api/blogs/"+itoa(own.ID), tokenA, nil, "").Code)
}

func TestBlogs_ToggleLike(t *testing.T) {
	env := newTestEnv(t)
	_, tokenA := env.signup(t, "ann", false)
	bob, tokenB := env.signup(t, "bob", false)
	b := createBlog(t, env, tokenA, "Likeable")

	like := func() model.Blog {
		rr := env.do(t, http.MethodPost, "/api/blogs/"+itoa(b.ID)+"/like", tokenB, nil, "")
		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
		var out model.Blog
		decode(t, rr, &out)
		return out
	}

	assert.Equal(t, []int64{bob.ID}, like().Likes)
	assert.Empty(t, like().Likes)
	assert.Equal(t, []int64{bob.ID}, like().Likes)

	assert.Equal(t, http.StatusUnauthorized, env.do(t, http.MethodPost, "/api/blogs/"+itoa(b.ID)+"/like", "", nil, "").Code)
	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodPost, "/api/blogs/999/like", tokenB, nil, "").Code)
}

func TestBlogs_Comments(t *testing.T) {
	env := newTestEnv(t)
	ann, tokenA := env.signup(t, "ann", false)
	b := createBlog(t, env, tokenA, "Chatty")

	rr := env.doJSON(t, http.MethodPost, "/api/blogs/"+itoa(b.ID)+"/comment", tokenA, map[string]string{"text": "hello"})
	require.Equal(t, http.StatusCreated, rr.Code)
	rr = env.doJSON(t, http.MethodPost, "/api/blogs/"+itoa(b.ID)+"/comments", tokenA, map[string]string{"text": "again"})
	require.Equal(t, http.StatusCreated, rr.Code)

	rr = env.doJSON(t, http.MethodPost, "/api/blogs/"+itoa(b.ID)+"/comment", tokenA, map[string]string{"text": " "})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	rr = env.doJSON(t, http.MethodPost, "/api/blogs/999/comment", tokenA, map[string]string{"text": "x"})
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, "Blog not found", message(t, rr))
	rr = env.doJSON(t, http.MethodPost, "/api/blogs/"+itoa(b.ID)+"/comment", "", map[string]string{"text": "x"})
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = env.do(t, http.MethodGet, "/api/blogs/"+itoa(b.ID)+"/comments", "", nil, "")
	require.Equal(t, http.StatusOK, rr.Code)
	var list []model.Comment
	decode(t, rr, &list)
	if assert.Len(t, list, 2) {
		assert.Equal(t, "hello", list[0].Text)
		if assert.NotNil(t, list[0].User) {
			assert.Equal(t, ann.Email, list[0].User.Email)
		}
	}
	assert.False(t, strings.Contains(rr.Body.String(), "password"))
}

package server

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"livefeed/internal/models"
	"livefeed/internal/repository"
)

// postForm builds a multipart body with the given fields and an optional
// image part.
func postForm(t *testing.T, fields map[string]string, imageType string) (*bytes.Buffer, string) {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for k, v := range fields {
		require.NoError(t, writer.WriteField(k, v))
	}

	if imageType != "" {
		header := textproto.MIMEHeader{}
		header.Set("Content-Disposition", `form-data; name="image"; filename="upload.bin"`)
		header.Set("Content-Type", imageType)
		part, err := writer.CreatePart(header)
		require.NoError(t, err)
		_, err = part.Write([]byte("image-bytes"))
		require.NoError(t, err)
	}

	require.NoError(t, writer.Close())
	return body, writer.FormDataContentType()
}

func decodeBody(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &out))
	return out
}

func TestGetPosts(t *testing.T) {
	t.Run("requires authentication", func(t *testing.T) {
		env := newTestEnv(t)

		req := httptest.NewRequest(http.MethodGet, "/api/feed/posts", nil)
		resp, err := env.app.Test(req)
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()

		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		body := decodeBody(t, resp)
		assert.Equal(t, "Not authenticated.", body["message"])
	})

	t.Run("returns page and total", func(t *testing.T) {
		env := newTestEnv(t)
		env.postRepo.On("ListPage", mock.Anything, 2, 2).Return(&repository.PostPage{
			Items: []models.Post{
				{ID: 3, Title: "Third", Creator: models.User{ID: 1, Name: "Jane"}},
				{ID: 2, Title: "Second", Creator: models.User{ID: 2, Name: "Max"}},
			},
			TotalItems: 5,
		}, nil)

		req := httptest.NewRequest(http.MethodGet, "/api/feed/posts?page=2", nil)
		req.Header.Set("Authorization", env.token(t, 1))
		resp, err := env.app.Test(req)
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		body := decodeBody(t, resp)
		assert.Equal(t, "Fetched posts successfully.", body["message"])
		assert.Equal(t, float64(5), body["totalItems"])

		posts := body["posts"].([]interface{})
		require.Len(t, posts, 2)
		first := posts[0].(map[string]interface{})
		assert.Equal(t, "Third", first["title"])
		assert.Equal(t, "Jane", first["creator"].(map[string]interface{})["name"])
	})
}

func TestCreatePostHandler(t *testing.T) {
	t.Run("valid form creates the post", func(t *testing.T) {
		env := newTestEnv(t)
		env.postRepo.On("Create", mock.Anything, mock.AnythingOfType("*models.Post")).
			Run(func(args mock.Arguments) {
				args.Get(1).(*models.Post).ID = 7
			}).Return(nil)
		env.postRepo.On("GetByIDWithCreator", mock.Anything, uint(7)).Return(&models.Post{
			ID:        7,
			Title:     "A fine title",
			Content:   "Some fine content",
			ImageURL:  "images/x.png",
			CreatorID: 1,
			Creator:   models.User{ID: 1, Name: "Jane"},
		}, nil)

		body, contentType := postForm(t, map[string]string{
			"title":   "A fine title",
			"content": "Some fine content",
		}, "image/png")

		req := httptest.NewRequest(http.MethodPost, "/api/feed/post", body)
		req.Header.Set("Content-Type", contentType)
		req.Header.Set("Authorization", env.token(t, 1))
		resp, err := env.app.Test(req)
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()

		assert.Equal(t, http.StatusCreated, resp.StatusCode)
		respBody := decodeBody(t, resp)
		assert.Equal(t, "Post created successfully!", respBody["message"])
		assert.Equal(t, "Jane", respBody["creator"].(map[string]interface{})["name"])
	})

	t.Run("short fields produce violations", func(t *testing.T) {
		env := newTestEnv(t)

		body, contentType := postForm(t, map[string]string{
			"title":   "ab",
			"content": "cd",
		}, "image/png")

		req := httptest.NewRequest(http.MethodPost, "/api/feed/post", body)
		req.Header.Set("Content-Type", contentType)
		req.Header.Set("Authorization", env.token(t, 1))
		resp, err := env.app.Test(req)
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()

		assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
		respBody := decodeBody(t, resp)
		violations := respBody["data"].([]interface{})
		assert.Len(t, violations, 2)
		env.postRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("missing image is rejected", func(t *testing.T) {
		env := newTestEnv(t)

		body, contentType := postForm(t, map[string]string{
			"title":   "A fine title",
			"content": "Some fine content",
		}, "")

		req := httptest.NewRequest(http.MethodPost, "/api/feed/post", body)
		req.Header.Set("Content-Type", contentType)
		req.Header.Set("Authorization", env.token(t, 1))
		resp, err := env.app.Test(req)
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()

		assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
		respBody := decodeBody(t, resp)
		violations := respBody["data"].([]interface{})
		require.Len(t, violations, 1)
		assert.Equal(t, "image", violations[0].(map[string]interface{})["field"])
	})

	t.Run("unsupported image type is rejected", func(t *testing.T) {
		env := newTestEnv(t)

		body, contentType := postForm(t, map[string]string{
			"title":   "A fine title",
			"content": "Some fine content",
		}, "image/gif")

		req := httptest.NewRequest(http.MethodPost, "/api/feed/post", body)
		req.Header.Set("Content-Type", contentType)
		req.Header.Set("Authorization", env.token(t, 1))
		resp, err := env.app.Test(req)
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()

		assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
		env.postRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})
}

func TestGetPostHandler(t *testing.T) {
	t.Run("unknown post is 404", func(t *testing.T) {
		env := newTestEnv(t)
		env.postRepo.On("GetByIDWithCreator", mock.Anything, uint(42)).
			Return(nil, models.NewNotFoundError("post", uint(42)))

		req := httptest.NewRequest(http.MethodGet, "/api/feed/post/42", nil)
		req.Header.Set("Authorization", env.token(t, 1))
		resp, err := env.app.Test(req)
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		body := decodeBody(t, resp)
		assert.Equal(t, "Could not find post 42.", body["message"])
	})

	t.Run("bad id is rejected before the repository", func(t *testing.T) {
		env := newTestEnv(t)

		req := httptest.NewRequest(http.MethodGet, "/api/feed/post/abc", nil)
		req.Header.Set("Authorization", env.token(t, 1))
		resp, err := env.app.Test(req)
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()

		assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
		env.postRepo.AssertNotCalled(t, "GetByIDWithCreator", mock.Anything, mock.Anything)
	})
}

func TestUpdatePostHandler(t *testing.T) {
	t.Run("non-owner gets 403", func(t *testing.T) {
		env := newTestEnv(t)
		env.postRepo.On("GetByID", mock.Anything, uint(5)).Return(&models.Post{
			ID:        5,
			CreatorID: 99,
			Version:   0,
		}, nil)

		body, contentType := postForm(t, map[string]string{
			"title":   "A fine title",
			"content": "Some fine content",
			"version": "0",
		}, "")

		req := httptest.NewRequest(http.MethodPut, "/api/feed/post/5", body)
		req.Header.Set("Content-Type", contentType)
		req.Header.Set("Authorization", env.token(t, 1))
		resp, err := env.app.Test(req)
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()

		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
		respBody := decodeBody(t, resp)
		assert.Equal(t, "Not authorized!", respBody["message"])
		env.postRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("stale version gets 409", func(t *testing.T) {
		env := newTestEnv(t)
		env.postRepo.On("GetByID", mock.Anything, uint(5)).Return(&models.Post{
			ID:        5,
			ImageURL:  "images/old.png",
			CreatorID: 1,
			Version:   3,
		}, nil)
		env.postRepo.On("Update", mock.Anything, uint(5), mock.AnythingOfType("repository.PostUpdate")).
			Return(models.NewConflictError("Post was modified concurrently."))

		body, contentType := postForm(t, map[string]string{
			"title":   "A fine title",
			"content": "Some fine content",
			"version": "2",
		}, "")

		req := httptest.NewRequest(http.MethodPut, "/api/feed/post/5", body)
		req.Header.Set("Content-Type", contentType)
		req.Header.Set("Authorization", env.token(t, 1))
		resp, err := env.app.Test(req)
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()

		assert.Equal(t, http.StatusConflict, resp.StatusCode)
	})

	t.Run("missing version is a validation failure", func(t *testing.T) {
		env := newTestEnv(t)

		body, contentType := postForm(t, map[string]string{
			"title":   "A fine title",
			"content": "Some fine content",
		}, "")

		req := httptest.NewRequest(http.MethodPut, "/api/feed/post/5", body)
		req.Header.Set("Content-Type", contentType)
		req.Header.Set("Authorization", env.token(t, 1))
		resp, err := env.app.Test(req)
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()

		assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
		env.postRepo.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
	})
}

func TestDeletePostHandler(t *testing.T) {
	t.Run("owner deletes and clients hear about it", func(t *testing.T) {
		env := newTestEnv(t)
		env.postRepo.On("GetByID", mock.Anything, uint(5)).Return(&models.Post{
			ID:        5,
			CreatorID: 1,
		}, nil)
		env.postRepo.On("Delete", mock.Anything, uint(5)).Return(nil)

		client, err := env.hub.Register(2, nil)
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodDelete, "/api/feed/post/5", nil)
		req.Header.Set("Authorization", env.token(t, 1))
		resp, err := env.app.Test(req)
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		body := decodeBody(t, resp)
		assert.Equal(t, "Deleted post.", body["message"])

		select {
		case msg := <-client.Send:
			assert.JSONEq(t, `{"type":"posts","payload":{"action":"delete","post_id":5}}`, string(msg))
		default:
			t.Fatal("expected a delete event on the hub")
		}
	})

	t.Run("non-owner gets 403", func(t *testing.T) {
		env := newTestEnv(t)
		env.postRepo.On("GetByID", mock.Anything, uint(5)).Return(&models.Post{
			ID:        5,
			CreatorID: 99,
		}, nil)

		req := httptest.NewRequest(http.MethodDelete, "/api/feed/post/5", nil)
		req.Header.Set("Authorization", env.token(t, 1))
		resp, err := env.app.Test(req)
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()

		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
		env.postRepo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})
}

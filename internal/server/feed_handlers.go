package server

import (
	"io"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"livefeed/internal/models"
	"livefeed/internal/notifications"
	"livefeed/internal/service"
)

// GetPosts returns one page of the feed plus the total post count.
func (s *Server) GetPosts(c *fiber.Ctx) error {
	page := c.QueryInt("page", 1)

	result, err := s.feedService.ListPosts(c.Context(), page)
	if err != nil {
		return models.RespondWithError(c, err)
	}

	posts := make([]*notifications.PostSnapshot, 0, len(result.Items))
	for i := range result.Items {
		posts = append(posts, notifications.SnapshotPost(&result.Items[i]))
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message":    "Fetched posts successfully.",
		"posts":      posts,
		"totalItems": result.TotalItems,
	})
}

// GetPost returns a single post.
func (s *Server) GetPost(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	post, err := s.feedService.GetPost(c.Context(), id)
	if err != nil {
		return models.RespondWithError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "Post fetched.",
		"post":    notifications.SnapshotPost(post),
	})
}

// CreatePost creates a feed entry from a multipart form with title, content
// and an image file.
func (s *Server) CreatePost(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	upload, err := s.readImageUpload(c)
	if err != nil {
		return models.RespondWithError(c, err)
	}

	post, err := s.feedService.CreatePost(c.Context(), service.CreatePostInput{
		UserID:  userID,
		Title:   c.FormValue("title"),
		Content: c.FormValue("content"),
		Image:   upload,
	})
	if err != nil {
		return models.RespondWithError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Post created successfully!",
		"post":    notifications.SnapshotPost(post),
		"creator": post.Creator.Summary(),
	})
}

// UpdatePost edits a post. The form carries the version the client last
// saw; a missing image file keeps the stored one.
func (s *Server) UpdatePost(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	version, err := s.parseVersion(c)
	if err != nil {
		return nil
	}

	upload, err := s.readImageUpload(c)
	if err != nil {
		return models.RespondWithError(c, err)
	}

	post, err := s.feedService.UpdatePost(c.Context(), service.UpdatePostInput{
		UserID:  userID,
		PostID:  id,
		Title:   c.FormValue("title"),
		Content: c.FormValue("content"),
		Version: version,
		Image:   upload,
	})
	if err != nil {
		return models.RespondWithError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "Post updated!",
		"post":    notifications.SnapshotPost(post),
	})
}

// DeletePost removes a post the caller owns.
func (s *Server) DeletePost(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.feedService.DeletePost(c.Context(), service.DeletePostInput{
		UserID: userID,
		PostID: id,
	}); err != nil {
		return models.RespondWithError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "Deleted post.",
	})
}

// readImageUpload pulls the optional "image" file out of the multipart
// form. Absence is not an error here, the service decides whether an image
// is required.
func (s *Server) readImageUpload(c *fiber.Ctx) (*service.ImageUpload, error) {
	fileHeader, err := c.FormFile("image")
	if err != nil {
		return nil, nil
	}

	file, err := fileHeader.Open()
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	defer func() { _ = file.Close() }()

	content, err := io.ReadAll(file)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	contentType := fileHeader.Header.Get("Content-Type")
	if contentType == "" {
		contentType = http.DetectContentType(content)
	}

	return &service.ImageUpload{Content: content, ContentType: contentType}, nil
}

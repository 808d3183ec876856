package service

import (
	"context"

	"livefeed/internal/models"
	"livefeed/internal/notifications"
	"livefeed/internal/repository"
	"livefeed/internal/validation"
)

// PageSize is the fixed number of posts per feed page.
const PageSize = 2

// AssetStore persists uploaded images and removes stale ones.
type AssetStore interface {
	Save(content []byte, contentType string) (string, error)
	Remove(ref string)
}

// FeedPublisher pushes feed events to connected clients. Delivery is best
// effort and never fails the mutation that triggered it.
type FeedPublisher interface {
	Publish(ctx context.Context, ev notifications.FeedEvent)
}

type FeedService struct {
	postRepo  repository.PostRepository
	assets    AssetStore
	publisher FeedPublisher
}

// ImageUpload is the raw uploaded file as received by the handler. A nil
// upload means the client did not pick a new file.
type ImageUpload struct {
	Content     []byte
	ContentType string
}

type CreatePostInput struct {
	UserID  uint
	Title   string
	Content string
	Image   *ImageUpload
}

type UpdatePostInput struct {
	UserID  uint
	PostID  uint
	Title   string
	Content string
	Version int
	// Image is the replacement upload, nil keeps the current image.
	Image *ImageUpload
}

type DeletePostInput struct {
	UserID uint
	PostID uint
}

func NewFeedService(
	postRepo repository.PostRepository,
	assets AssetStore,
	publisher FeedPublisher,
) *FeedService {
	return &FeedService{
		postRepo:  postRepo,
		assets:    assets,
		publisher: publisher,
	}
}

// ListPosts returns one page of the shared feed, newest first.
func (s *FeedService) ListPosts(ctx context.Context, page int) (*repository.PostPage, error) {
	return s.postRepo.ListPage(ctx, page, PageSize)
}

// GetPost returns a single post with its creator loaded.
func (s *FeedService) GetPost(ctx context.Context, id uint) (*models.Post, error) {
	return s.postRepo.GetByIDWithCreator(ctx, id)
}

func (s *FeedService) CreatePost(ctx context.Context, in CreatePostInput) (*models.Post, error) {
	violations := validation.PostFields(in.Title, in.Content)
	if in.Image == nil {
		violations = append(violations, models.FieldViolation{
			Field:   "image",
			Message: "No image provided.",
		})
	}
	if len(violations) > 0 {
		return nil, models.NewValidationError("Validation failed, entered data is incorrect.", violations...)
	}

	imageURL, err := s.assets.Save(in.Image.Content, in.Image.ContentType)
	if err != nil {
		return nil, err
	}

	post := &models.Post{
		Title:     in.Title,
		Content:   in.Content,
		ImageURL:  imageURL,
		CreatorID: in.UserID,
	}
	if err := s.postRepo.Create(ctx, post); err != nil {
		s.assets.Remove(imageURL)
		return nil, err
	}

	created, err := s.postRepo.GetByIDWithCreator(ctx, post.ID)
	if err != nil {
		return nil, err
	}

	s.publisher.Publish(ctx, notifications.FeedEvent{
		Action: notifications.ActionCreate,
		Post:   notifications.SnapshotPost(created),
	})

	return created, nil
}

// UpdatePost edits a post the caller owns. Checks run in a fixed order:
// existence, ownership, field validation, then the versioned write. The
// previous image is only removed once the new row is committed.
func (s *FeedService) UpdatePost(ctx context.Context, in UpdatePostInput) (*models.Post, error) {
	post, err := s.postRepo.GetByID(ctx, in.PostID)
	if err != nil {
		return nil, err
	}

	if post.CreatorID != in.UserID {
		return nil, models.NewForbiddenError("Not authorized!")
	}

	if violations := validation.PostFields(in.Title, in.Content); len(violations) > 0 {
		return nil, models.NewValidationError("Validation failed, entered data is incorrect.", violations...)
	}

	imageURL := post.ImageURL
	if in.Image != nil {
		imageURL, err = s.assets.Save(in.Image.Content, in.Image.ContentType)
		if err != nil {
			return nil, err
		}
	}

	update := repository.PostUpdate{
		Title:    in.Title,
		Content:  in.Content,
		ImageURL: imageURL,
		Version:  in.Version,
	}
	if err := s.postRepo.Update(ctx, in.PostID, update); err != nil {
		if in.Image != nil {
			s.assets.Remove(imageURL)
		}
		return nil, err
	}

	if in.Image != nil && post.ImageURL != "" && post.ImageURL != imageURL {
		s.assets.Remove(post.ImageURL)
	}

	updated, err := s.postRepo.GetByIDWithCreator(ctx, in.PostID)
	if err != nil {
		return nil, err
	}

	s.publisher.Publish(ctx, notifications.FeedEvent{
		Action: notifications.ActionUpdate,
		Post:   notifications.SnapshotPost(updated),
	})

	return updated, nil
}

// DeletePost removes a post the caller owns, its image file, and announces
// the removal to connected clients.
func (s *FeedService) DeletePost(ctx context.Context, in DeletePostInput) error {
	post, err := s.postRepo.GetByID(ctx, in.PostID)
	if err != nil {
		return err
	}

	if post.CreatorID != in.UserID {
		return models.NewForbiddenError("Not authorized!")
	}

	if err := s.postRepo.Delete(ctx, in.PostID); err != nil {
		return err
	}

	if post.ImageURL != "" {
		s.assets.Remove(post.ImageURL)
	}

	s.publisher.Publish(ctx, notifications.FeedEvent{
		Action: notifications.ActionDelete,
		PostID: in.PostID,
	})

	return nil
}

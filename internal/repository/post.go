package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"livefeed/internal/models"
)

// PostPage is one page of posts along with the total count across all pages.
type PostPage struct {
	Items      []models.Post
	TotalItems int64
}

// PostUpdate carries the mutable fields of a post plus the version the
// caller read. The update only lands when the stored version still matches.
type PostUpdate struct {
	Title    string
	Content  string
	ImageURL string
	Version  int
}

// PostRepository defines the interface for post data operations
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id uint) (*models.Post, error)
	GetByIDWithCreator(ctx context.Context, id uint) (*models.Post, error)
	Update(ctx context.Context, id uint, update PostUpdate) error
	Delete(ctx context.Context, id uint) error
	ListPage(ctx context.Context, page, pageSize int) (*PostPage, error)
}

// postRepository implements PostRepository
type postRepository struct {
	db *gorm.DB
}

// NewPostRepository creates a new post repository
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	return r.db.WithContext(ctx).Create(post).Error
}

func (r *postRepository) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	err := r.db.WithContext(ctx).First(&post, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("post", id)
		}
		return nil, err
	}
	return &post, nil
}

func (r *postRepository) GetByIDWithCreator(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	err := r.db.WithContext(ctx).Preload("Creator").First(&post, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("post", id)
		}
		return nil, err
	}
	return &post, nil
}

// Update applies the mutation only when the stored version still equals the
// one the caller read, bumping the version in the same statement. A stale
// version surfaces as a conflict, a vanished row as not found.
func (r *postRepository) Update(ctx context.Context, id uint, update PostUpdate) error {
	res := r.db.WithContext(ctx).
		Model(&models.Post{}).
		Where("id = ? AND version = ?", id, update.Version).
		Updates(map[string]interface{}{
			"title":     update.Title,
			"content":   update.Content,
			"image_url": update.ImageURL,
			"version":   update.Version + 1,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		var count int64
		if err := r.db.WithContext(ctx).Model(&models.Post{}).Where("id = ?", id).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return models.NewNotFoundError("post", id)
		}
		return models.NewConflictError("Post was modified concurrently.")
	}
	return nil
}

func (r *postRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&models.Post{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("post", id)
	}
	return nil
}

// ListPage returns the requested page of posts, newest first, together with
// the total post count. Pages below 1 are clamped to the first page.
func (r *postRepository) ListPage(ctx context.Context, page, pageSize int) (*PostPage, error) {
	if page < 1 {
		page = 1
	}

	var total int64
	if err := r.db.WithContext(ctx).Model(&models.Post{}).Count(&total).Error; err != nil {
		return nil, err
	}

	var posts []models.Post
	err := r.db.WithContext(ctx).
		Preload("Creator").
		Order("created_at DESC, id DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&posts).Error
	if err != nil {
		return nil, err
	}

	return &PostPage{Items: posts, TotalItems: total}, nil
}

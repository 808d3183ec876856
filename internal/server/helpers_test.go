package server

import (
	"context"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"livefeed/internal/assets"
	"livefeed/internal/auth"
	"livefeed/internal/config"
	"livefeed/internal/middleware"
	"livefeed/internal/models"
	"livefeed/internal/notifications"
	"livefeed/internal/repository"
	"livefeed/internal/service"
)

// MockPostRepository is a mock of the PostRepository interface
type MockPostRepository struct {
	mock.Mock
}

func (m *MockPostRepository) Create(ctx context.Context, post *models.Post) error {
	args := m.Called(ctx, post)
	return args.Error(0)
}

func (m *MockPostRepository) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Post), args.Error(1)
}

func (m *MockPostRepository) GetByIDWithCreator(ctx context.Context, id uint) (*models.Post, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Post), args.Error(1)
}

func (m *MockPostRepository) Update(ctx context.Context, id uint, update repository.PostUpdate) error {
	args := m.Called(ctx, id, update)
	return args.Error(0)
}

func (m *MockPostRepository) Delete(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockPostRepository) ListPage(ctx context.Context, page, pageSize int) (*repository.PostPage, error) {
	args := m.Called(ctx, page, pageSize)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.PostPage), args.Error(1)
}

// MockUserRepository is a mock of the UserRepository interface
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) UpdateStatus(ctx context.Context, id uint, status string) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *MockUserRepository) GetPostIDs(ctx context.Context, id uint) ([]uint, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]uint), args.Error(1)
}

// testEnv bundles the server under test with its mocked edges.
type testEnv struct {
	app      *fiber.App
	server   *Server
	postRepo *MockPostRepository
	userRepo *MockUserRepository
	hub      *notifications.Hub
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	cfg := &config.Config{
		JWTSecret: "handler-test-secret",
		TokenTTL:  time.Hour,
		ImageDir:  t.TempDir(),
	}

	store, err := assets.NewStore(cfg.ImageDir, middleware.Logger)
	require.NoError(t, err)

	postRepo := new(MockPostRepository)
	userRepo := new(MockUserRepository)
	hub := notifications.NewHub()
	notifier := notifications.NewNotifier(nil)
	broadcaster := notifications.NewFeedBroadcaster(hub, notifier, middleware.Logger)
	guard := auth.NewGuard(cfg.JWTSecret, cfg.TokenTTL)

	s := &Server{
		config:      cfg,
		guard:       guard,
		assets:      store,
		postRepo:    postRepo,
		userRepo:    userRepo,
		hub:         hub,
		notifier:    notifier,
		broadcaster: broadcaster,
	}
	s.feedService = service.NewFeedService(postRepo, store, broadcaster)
	s.userService = service.NewUserService(userRepo, guard)

	app := fiber.New()
	s.SetupRoutes(app)

	return &testEnv{app: app, server: s, postRepo: postRepo, userRepo: userRepo, hub: hub}
}

// token returns a valid bearer token for the given user.
func (e *testEnv) token(t *testing.T, userID uint) string {
	t.Helper()
	token, err := e.server.guard.Issue(userID, "user@example.com")
	require.NoError(t, err)
	return "Bearer " + token
}

// Package seed provides helpers to create test and demo data for the
// application database. These helpers are intended for development and
// testing only.
package seed

import (
	"fmt"
	"log"
	"math/rand"
	"time"

	"livefeed/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Options controls how much data the seeder creates.
type Options struct {
	NumUsers    int
	NumPosts    int
	ShouldClean bool
	// SkipBcrypt stores a plain password instead of hashing it. Much
	// faster when seeding hundreds of users for local development.
	SkipBcrypt bool
}

// Seeder builds domain entities and persists them to the database.
type Seeder struct {
	db   *gorm.DB
	opts Options
	rng  *rand.Rand
}

// NewSeeder creates a new Seeder bound to the provided Gorm DB.
func NewSeeder(db *gorm.DB, opts Options) *Seeder {
	gofakeit.Seed(time.Now().UnixNano())
	return &Seeder{
		db:   db,
		opts: opts,
		rng:  rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Run populates the database according to the seeder options.
func (s *Seeder) Run() error {
	log.Printf("Seeding %d users and %d posts...", s.opts.NumUsers, s.opts.NumPosts)

	if s.opts.ShouldClean {
		if err := s.ClearAll(); err != nil {
			return fmt.Errorf("failed to clear existing data: %w", err)
		}
	}

	users, err := s.createUsers(s.opts.NumUsers)
	if err != nil {
		return fmt.Errorf("failed to create users: %w", err)
	}
	log.Printf("Created %d users", len(users))

	posts, err := s.createPosts(users, s.opts.NumPosts)
	if err != nil {
		return fmt.Errorf("failed to create posts: %w", err)
	}
	log.Printf("Created %d posts", len(posts))

	return nil
}

// ClearAll removes all seeded rows. Posts go first to satisfy the
// creator foreign key.
func (s *Seeder) ClearAll() error {
	if err := s.db.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&models.Post{}).Error; err != nil {
		return err
	}
	return s.db.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&models.User{}).Error
}

// BuildUser constructs a sample user without persisting it. Optional
// override functions may modify the generated user.
func (s *Seeder) BuildUser(overrides ...func(*models.User)) *models.User {
	user := &models.User{
		Email:  gofakeit.Email(),
		Name:   gofakeit.Name(),
		Status: gofakeit.Sentence(gofakeit.Number(3, 8)),
	}

	if s.opts.SkipBcrypt {
		user.Password = "password123"
	} else {
		hashed, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
		user.Password = string(hashed)
	}

	for _, override := range overrides {
		override(user)
	}
	return user
}

// BuildPost constructs a sample post owned by the given user without
// persisting it.
func (s *Seeder) BuildPost(creator *models.User, overrides ...func(*models.Post)) *models.Post {
	post := &models.Post{
		Title:     gofakeit.Sentence(gofakeit.Number(2, 5)),
		Content:   gofakeit.Paragraph(1, 3, 5, "\n"),
		ImageURL:  fmt.Sprintf("https://picsum.photos/seed/%s/800/600", gofakeit.UUID()),
		CreatorID: creator.ID,
	}

	// realistic created_at spread over the last 90 days
	daysBack := s.rng.Intn(90)
	hoursBack := s.rng.Intn(24)
	post.CreatedAt = time.Now().Add(-time.Duration(daysBack)*24*time.Hour - time.Duration(hoursBack)*time.Hour)

	for _, override := range overrides {
		override(post)
	}
	return post
}

func (s *Seeder) createUsers(count int) ([]*models.User, error) {
	users := make([]*models.User, 0, count)
	for i := 0; i < count; i++ {
		users = append(users, s.BuildUser())
	}
	// deterministic login account for manual testing
	users = append(users, s.BuildUser(func(u *models.User) {
		u.Email = "demo@example.com"
		u.Name = "Demo User"
		u.Status = models.DefaultUserStatus
	}))

	if err := s.db.Create(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (s *Seeder) createPosts(users []*models.User, count int) ([]*models.Post, error) {
	if len(users) == 0 {
		return nil, fmt.Errorf("cannot create posts without users")
	}

	posts := make([]*models.Post, 0, count)
	for i := 0; i < count; i++ {
		creator := users[s.rng.Intn(len(users))]
		posts = append(posts, s.BuildPost(creator))
	}

	if err := s.db.CreateInBatches(&posts, 50).Error; err != nil {
		return nil, err
	}
	return posts, nil
}

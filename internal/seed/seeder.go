package seed

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/snapgrove/backend/internal/logger"
	"github.com/snapgrove/backend/internal/models"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Categories photos can be browsed by
var photoCategories = []string{
	"nature", "urban", "portrait", "travel", "food",
	"architecture", "wildlife", "abstract", "street", "macro",
}

// Seeder handles database seeding operations
type Seeder struct {
	db *gorm.DB
}

// NewSeeder creates a new seeder instance
func NewSeeder(db *gorm.DB) *Seeder {
	_ = gofakeit.Seed(time.Now().UnixNano())
	return &Seeder{db: db}
}

// SeedDev seeds the development database with realistic data
func (s *Seeder) SeedDev() error {
	log := func(msg string) {
		logger.Log.Info(msg)
	}

	log("Creating users...")
	users, err := s.seedUsers(50)
	if err != nil {
		return fmt.Errorf("failed to seed users: %w", err)
	}

	log("Creating photos...")
	photos, err := s.seedPhotos(users, 300)
	if err != nil {
		return fmt.Errorf("failed to seed photos: %w", err)
	}

	log("Creating favorites...")
	if err := s.seedFavorites(users, photos, 800); err != nil {
		return fmt.Errorf("failed to seed favorites: %w", err)
	}

	log("Creating follows...")
	if err := s.seedFollows(users, 200); err != nil {
		return fmt.Errorf("failed to seed follows: %w", err)
	}

	log("Creating collections...")
	if err := s.seedCollections(users, photos, 40); err != nil {
		return fmt.Errorf("failed to seed collections: %w", err)
	}

	return nil
}

// SeedTest seeds the test database with a fixed set of accounts
func (s *Seeder) SeedTest() error {
	testUserSpecs := []struct {
		username    string
		email       string
		displayName string
	}{
		{"alice", "alice@example.com", "Alice Smith"},
		{"bob", "bob@example.com", "Bob Johnson"},
		{"charlie", "charlie@example.com", "Charlie Brown"},
	}

	var users []models.User
	for _, spec := range testUserSpecs {
		var user models.User
		err := s.db.Where("username = ? OR email = ?", spec.username, spec.email).First(&user).Error
		if err == nil {
			users = append(users, user)
			continue
		}

		hashedPassword, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("failed to hash password: %w", err)
		}
		hashStr := string(hashedPassword)

		user = models.User{
			Email:        spec.email,
			Username:     spec.username,
			DisplayName:  spec.displayName,
			PasswordHash: &hashStr,
			AvatarURL:    fmt.Sprintf("https://api.dicebear.com/7.x/avataaars/png?seed=%s", spec.username),
		}
		if err := s.db.Create(&user).Error; err != nil {
			return fmt.Errorf("failed to create test user %s: %w", spec.username, err)
		}
		users = append(users, user)
	}

	if _, err := s.seedPhotos(users, 9); err != nil {
		return fmt.Errorf("failed to seed photos: %w", err)
	}

	return nil
}

// Clean removes all seed data (use with caution!)
func (s *Seeder) Clean() error {
	// Delete in reverse order of dependencies
	tables := []string{
		"notifications",
		"reports",
		"collection_photos",
		"collections",
		"favorites",
		"follows",
		"photos",
		"users",
	}
	for _, table := range tables {
		if err := s.db.Exec("DELETE FROM " + table).Error; err != nil {
			return fmt.Errorf("failed to clean %s: %w", table, err)
		}
	}
	return nil
}

// seedUsers creates users with realistic data
func (s *Seeder) seedUsers(count int) ([]models.User, error) {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	hashStr := string(hashedPassword)

	var users []models.User
	for i := 0; i < count; i++ {
		username := fmt.Sprintf("%s%d", gofakeit.Username(), i)
		user := models.User{
			Email:        fmt.Sprintf("%d_%s", i, gofakeit.Email()),
			Username:     username,
			DisplayName:  gofakeit.Name(),
			Bio:          gofakeit.Sentence(12),
			PasswordHash: &hashStr,
			AvatarURL:    fmt.Sprintf("https://api.dicebear.com/7.x/avataaars/png?seed=%s", username),
		}
		if err := s.db.Create(&user).Error; err != nil {
			return nil, fmt.Errorf("failed to create user: %w", err)
		}
		users = append(users, user)
	}

	return users, nil
}

// seedPhotos creates photos spread across users and categories
func (s *Seeder) seedPhotos(users []models.User, count int) ([]models.Photo, error) {
	if len(users) == 0 {
		return nil, fmt.Errorf("no users to own photos")
	}

	var photos []models.Photo
	for i := 0; i < count; i++ {
		owner := users[rand.Intn(len(users))]
		category := photoCategories[rand.Intn(len(photoCategories))]

		key := fmt.Sprintf("photos/2026/%02d/%s/%s.jpg",
			rand.Intn(12)+1, owner.ID, gofakeit.UUID())

		photo := models.Photo{
			UserID:           owner.ID,
			Title:            gofakeit.Sentence(4),
			Description:      gofakeit.Paragraph(1, 2, 10, " "),
			ImageURL:         fmt.Sprintf("https://cdn.snapgrove.example/%s", key),
			StorageKey:       key,
			OriginalFilename: fmt.Sprintf("%s.jpg", gofakeit.Word()),
			FileSize:         int64(rand.Intn(4_000_000) + 200_000),
			Width:            1920,
			Height:           1080,
			Category:         category,
			Tags:             models.StringArray{category, gofakeit.Word(), gofakeit.Word()},
			IsPublic:         rand.Intn(10) > 0,
			ModerationStatus: models.PhotoStatusActive,
		}
		if err := s.db.Create(&photo).Error; err != nil {
			return nil, fmt.Errorf("failed to create photo: %w", err)
		}
		photos = append(photos, photo)
	}

	// Keep the denormalized counters consistent
	for _, user := range users {
		var n int64
		s.db.Model(&models.Photo{}).Where("user_id = ?", user.ID).Count(&n)
		s.db.Model(&models.User{}).Where("id = ?", user.ID).Update("photo_count", n)
	}

	return photos, nil
}

// seedFavorites creates random favorites, skipping duplicates
func (s *Seeder) seedFavorites(users []models.User, photos []models.Photo, count int) error {
	if len(users) == 0 || len(photos) == 0 {
		return nil
	}

	created := 0
	for i := 0; i < count; i++ {
		user := users[rand.Intn(len(users))]
		photo := photos[rand.Intn(len(photos))]

		var existing models.Favorite
		err := s.db.Where("user_id = ? AND photo_id = ?", user.ID, photo.ID).First(&existing).Error
		if err == nil {
			continue
		}

		favorite := models.Favorite{UserID: user.ID, PhotoID: photo.ID}
		if err := s.db.Create(&favorite).Error; err != nil {
			return fmt.Errorf("failed to create favorite: %w", err)
		}
		s.db.Model(&models.Photo{}).Where("id = ?", photo.ID).
			UpdateColumn("favorite_count", gorm.Expr("favorite_count + 1"))
		created++
	}

	logger.Log.Info(fmt.Sprintf("Created %d favorites", created))
	return nil
}

// seedFollows creates random follow edges, skipping self-follows and duplicates
func (s *Seeder) seedFollows(users []models.User, count int) error {
	if len(users) < 2 {
		return nil
	}

	for i := 0; i < count; i++ {
		follower := users[rand.Intn(len(users))]
		followee := users[rand.Intn(len(users))]
		if follower.ID == followee.ID {
			continue
		}

		var existing models.Follow
		err := s.db.Where("follower_id = ? AND followee_id = ?", follower.ID, followee.ID).First(&existing).Error
		if err == nil {
			continue
		}

		follow := models.Follow{FollowerID: follower.ID, FolloweeID: followee.ID}
		if err := s.db.Create(&follow).Error; err != nil {
			return fmt.Errorf("failed to create follow: %w", err)
		}
		s.db.Model(&models.User{}).Where("id = ?", follower.ID).
			UpdateColumn("following_count", gorm.Expr("following_count + 1"))
		s.db.Model(&models.User{}).Where("id = ?", followee.ID).
			UpdateColumn("follower_count", gorm.Expr("follower_count + 1"))
	}

	return nil
}

// seedCollections creates collections with a handful of photos each
func (s *Seeder) seedCollections(users []models.User, photos []models.Photo, count int) error {
	if len(users) == 0 || len(photos) == 0 {
		return nil
	}

	for i := 0; i < count; i++ {
		owner := users[rand.Intn(len(users))]

		collection := models.Collection{
			UserID:      owner.ID,
			Title:       gofakeit.Sentence(3),
			Description: gofakeit.Sentence(10),
			IsPublic:    rand.Intn(4) > 0,
		}
		if err := s.db.Create(&collection).Error; err != nil {
			return fmt.Errorf("failed to create collection: %w", err)
		}

		size := rand.Intn(8) + 2
		added := 0
		for j := 0; j < size; j++ {
			photo := photos[rand.Intn(len(photos))]

			var existing models.CollectionPhoto
			err := s.db.Where("collection_id = ? AND photo_id = ?", collection.ID, photo.ID).First(&existing).Error
			if err == nil {
				continue
			}

			entry := models.CollectionPhoto{
				CollectionID: collection.ID,
				PhotoID:      photo.ID,
				SortOrder:    added,
			}
			if err := s.db.Create(&entry).Error; err != nil {
				return fmt.Errorf("failed to add photo to collection: %w", err)
			}
			if added == 0 {
				s.db.Model(&models.Collection{}).Where("id = ?", collection.ID).
					Update("cover_photo_id", photo.ID)
			}
			added++
		}
		s.db.Model(&models.Collection{}).Where("id = ?", collection.ID).
			Update("photo_count", added)
	}

	return nil
}

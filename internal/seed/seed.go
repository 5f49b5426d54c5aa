// Package seed populates a database with demo accounts and friend requests
// for development environments.
package seed

import (
	"fmt"
	"log"
	"strings"
	"time"

	"friendnet/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// DefaultPassword is the plaintext password shared by all seeded accounts.
const DefaultPassword = "password123"

// Seeder generates fake data into the given database.
type Seeder struct {
	db    *gorm.DB
	faker *gofakeit.Faker
}

// NewSeeder creates a seeder with a fixed fake-data source so repeated runs
// produce the same mesh.
func NewSeeder(db *gorm.DB) *Seeder {
	return &Seeder{
		db:    db,
		faker: gofakeit.New(42),
	}
}

// ClearAll removes seeded rows. Friend requests go first to satisfy the
// foreign keys.
func (s *Seeder) ClearAll() error {
	if err := s.db.Session(&gorm.Session{AllowGlobalUpdate: true}).
		Delete(&models.FriendRequest{}).Error; err != nil {
		return fmt.Errorf("clear friend requests: %w", err)
	}
	if err := s.db.Session(&gorm.Session{AllowGlobalUpdate: true}).
		Delete(&models.User{}).Error; err != nil {
		return fmt.Errorf("clear users: %w", err)
	}
	return nil
}

// SeedUsers creates n accounts with realistic profiles. Every account gets
// DefaultPassword so seeded environments are easy to log into.
func (s *Seeder) SeedUsers(n int) ([]models.User, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(DefaultPassword), bcrypt.MinCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	users := make([]models.User, 0, n)
	for i := 0; i < n; i++ {
		first := s.faker.FirstName()
		last := s.faker.LastName()
		dob := s.faker.DateRange(
			time.Date(1960, 1, 1, 0, 0, 0, 0, time.UTC),
			time.Date(2005, 12, 31, 0, 0, 0, 0, time.UTC),
		)

		user := models.User{
			Username:    fmt.Sprintf("%s%s%d", strings.ToLower(first), strings.ToLower(last), i),
			FirstName:   first,
			LastName:    last,
			Email:       fmt.Sprintf("%s.%s.%d@example.com", strings.ToLower(first), strings.ToLower(last), i),
			Password:    string(hashed),
			MobileNo:    s.faker.Phone(),
			Gender:      s.faker.Gender(),
			Nationality: s.faker.Country(),
			DOB:         &dob,
			CurrentCity: s.faker.City(),
		}
		if err := s.db.Create(&user).Error; err != nil {
			return nil, fmt.Errorf("create user %q: %w", user.Email, err)
		}
		users = append(users, user)
	}

	log.Printf("seeded %d users", len(users))
	return users, nil
}

// SeedFriendships creates up to perUser outgoing requests for each user with
// a mix of statuses. The directed unique constraint and the no-self rule are
// respected.
func (s *Seeder) SeedFriendships(users []models.User, perUser int) (int, error) {
	if len(users) < 2 {
		return 0, nil
	}

	seen := make(map[[2]uint]bool)
	created := 0
	for _, from := range users {
		for i := 0; i < perUser; i++ {
			to := users[s.faker.Number(0, len(users)-1)]
			if to.ID == from.ID {
				continue
			}
			pair := [2]uint{from.ID, to.ID}
			if seen[pair] {
				continue
			}
			seen[pair] = true

			request := models.FriendRequest{
				FromUserID: from.ID,
				ToUserID:   to.ID,
				Status:     s.randomStatus(),
			}
			if err := s.db.Create(&request).Error; err != nil {
				return created, fmt.Errorf("create friend request %d->%d: %w", from.ID, to.ID, err)
			}
			created++
		}
	}

	log.Printf("seeded %d friend requests", created)
	return created, nil
}

func (s *Seeder) randomStatus() models.FriendRequestStatus {
	switch n := s.faker.Number(0, 99); {
	case n < 50:
		return models.FriendRequestStatusPending
	case n < 85:
		return models.FriendRequestStatusAccepted
	default:
		return models.FriendRequestStatusRejected
	}
}

// Run clears the database when asked and seeds users plus a friendship mesh.
func Run(db *gorm.DB, numUsers int, clean bool) error {
	s := NewSeeder(db)

	if clean {
		if err := s.ClearAll(); err != nil {
			return err
		}
	}

	users, err := s.SeedUsers(numUsers)
	if err != nil {
		return err
	}

	_, err = s.SeedFriendships(users, 3)
	return err
}

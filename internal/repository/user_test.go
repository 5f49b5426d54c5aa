package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"friendnet/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn: db,
	}), &gorm.Config{})
	require.NoError(t, err)

	return gormDB, mock
}

func TestUserRepository_GetByID(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	tests := []struct {
		name          string
		userID        uint
		mockBehavior  func()
		expectedUser  *models.User
		expectedError bool
	}{
		{
			name:   "Success",
			userID: 1,
			mockBehavior: func() {
				rows := sqlmock.NewRows([]string{"id", "username", "email"}).
					AddRow(1, "testuser", "test@example.com")
				mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "users" WHERE "users"."id" = $1 ORDER BY "users"."id" LIMIT $2`)).
					WithArgs(1, 1).
					WillReturnRows(rows)
			},
			expectedUser: &models.User{ID: 1, Username: "testuser", Email: "test@example.com"},
		},
		{
			name:   "Not Found",
			userID: 99,
			mockBehavior: func() {
				mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "users" WHERE "users"."id" = $1 ORDER BY "users"."id" LIMIT $2`)).
					WithArgs(99, 1).
					WillReturnError(gorm.ErrRecordNotFound)
			},
			expectedError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.mockBehavior()
			user, err := repo.GetByID(ctx, tt.userID)

			if tt.expectedError {
				assert.Error(t, err)
			} else if assert.NotNil(t, user) {
				assert.Equal(t, tt.expectedUser.Username, user.Username)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestUserRepository_GetByID_DatabaseError(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "users" WHERE "users"."id" = $1`)).
		WithArgs(1, 1).
		WillReturnError(errors.New("connection timeout"))

	user, err := repo.GetByID(ctx, 1)
	assert.Error(t, err)
	assert.Nil(t, user)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_GetByEmail(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	t.Run("Success lowercases the lookup", func(t *testing.T) {
		rows := sqlmock.NewRows([]string{"id", "email"}).AddRow(1, "test@example.com")
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "users" WHERE email = $1 ORDER BY "users"."id" LIMIT $2`)).
			WithArgs("test@example.com", 1).
			WillReturnRows(rows)

		user, err := repo.GetByEmail(ctx, "Test@Example.COM")
		assert.NoError(t, err)
		assert.NotNil(t, user)
		assert.Equal(t, "test@example.com", user.Email)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Not Found", func(t *testing.T) {
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "users" WHERE email = $1`)).
			WithArgs("ghost@example.com", 1).
			WillReturnError(gorm.ErrRecordNotFound)

		user, err := repo.GetByEmail(ctx, "ghost@example.com")
		assert.NoError(t, err) // absence is reported as nil, nil
		assert.Nil(t, user)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestUserRepository_Create(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	t.Run("lowercases email and assigns slug", func(t *testing.T) {
		user := &models.User{Username: "alfred", FirstName: "Alfred", Email: "Alfred@Example.com", Password: "x"}
		require.NoError(t, repo.Create(ctx, user))
		assert.Equal(t, "alfred@example.com", user.Email)
		assert.Equal(t, "alfred", user.Slug)
	})

	t.Run("slug collision gets a suffix", func(t *testing.T) {
		user := &models.User{Username: "alfred2", FirstName: "Alfred", Email: "other@example.com", Password: "x"}
		require.NoError(t, repo.Create(ctx, user))
		assert.NotEqual(t, "alfred", user.Slug)
		assert.Regexp(t, `^alfred-[a-z0-9]{4}$`, user.Slug)
	})

	t.Run("duplicate email rejected", func(t *testing.T) {
		user := &models.User{Username: "impostor", FirstName: "Impostor", Email: "alfred@example.com", Password: "x"}
		err := repo.Create(ctx, user)
		require.Error(t, err)

		var appErr *models.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, models.CodeValidation, appErr.Code)
		assert.Equal(t, "User with this email already exists.", appErr.Message)
	})
}

func TestUserRepository_Search(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	alice := createTestUser(t, db, "alice", "alice@example.com")
	bob := createTestUser(t, db, "bobby", "bob@example.com")
	carol := createTestUser(t, db, "carol", "carol@example.com")

	t.Run("empty query returns everyone newest first", func(t *testing.T) {
		users, err := repo.Search(ctx, "", 10, 0)
		require.NoError(t, err)
		require.Len(t, users, 3)
		assert.Equal(t, carol.ID, users[0].ID)
		assert.Equal(t, bob.ID, users[1].ID)
		assert.Equal(t, alice.ID, users[2].ID)
	})

	t.Run("query with @ is an exact email match", func(t *testing.T) {
		users, err := repo.Search(ctx, "ALICE@example.com", 10, 0)
		require.NoError(t, err)
		require.Len(t, users, 1)
		assert.Equal(t, alice.ID, users[0].ID)
	})

	t.Run("query with @ does not substring-match", func(t *testing.T) {
		users, err := repo.Search(ctx, "@example.com", 10, 0)
		require.NoError(t, err)
		assert.Empty(t, users)
	})

	t.Run("plain query substring-matches username", func(t *testing.T) {
		users, err := repo.Search(ctx, "BOB", 10, 0)
		require.NoError(t, err)
		require.Len(t, users, 1)
		assert.Equal(t, bob.ID, users[0].ID)
	})

	t.Run("pagination", func(t *testing.T) {
		users, err := repo.Search(ctx, "", 2, 0)
		require.NoError(t, err)
		assert.Len(t, users, 2)

		users, err = repo.Search(ctx, "", 2, 2)
		require.NoError(t, err)
		assert.Len(t, users, 1)
	})
}

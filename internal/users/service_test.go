package users

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/dukahub/dukahub-backend/pkg/db/models"
	"github.com/dukahub/dukahub-backend/pkg/enums"
	pkgerrors "github.com/dukahub/dukahub-backend/pkg/errors"
)

type stubUserRepo struct {
	users map[uuid.UUID]*models.User
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[uuid.UUID]*models.User)}
}

func (s *stubUserRepo) WithTx(tx *gorm.DB) UserRepository { return s }

func (s *stubUserRepo) Create(ctx context.Context, user *models.User) (*models.User, error) {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	stored := *user
	s.users[user.ID] = &stored
	return user, nil
}

func (s *stubUserRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, ok := s.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	out := *user
	return &out, nil
}

func (s *stubUserRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	for _, user := range s.users {
		if user.Email == email {
			out := *user
			return &out, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubUserRepo) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	if user, ok := s.users[id]; ok {
		user.IsActive = active
	}
	return nil
}

func (s *stubUserRepo) UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	if user, ok := s.users[id]; ok {
		user.LastLoginAt = &at
	}
	return nil
}

func seedUser(t *testing.T, repo *stubUserRepo) *models.User {
	t.Helper()
	user, err := repo.Create(context.Background(), &models.User{
		Email:     "jane@example.com",
		FirstName: "Jane",
		LastName:  "Wanjiru",
		Role:      enums.UserRoleCustomer,
		IsActive:  true,
	})
	require.NoError(t, err)
	return user
}

func TestGetUserStripsCredentials(t *testing.T) {
	repo := newStubUserRepo()
	seeded := seedUser(t, repo)

	svc, err := NewService(repo)
	require.NoError(t, err)

	dto, err := svc.GetUser(context.Background(), seeded.ID)
	require.NoError(t, err)
	assert.Equal(t, seeded.Email, dto.Email)
	assert.Equal(t, enums.UserRoleCustomer, dto.Role)
}

func TestGetUserNotFound(t *testing.T) {
	svc, err := NewService(newStubUserRepo())
	require.NoError(t, err)

	_, err = svc.GetUser(context.Background(), uuid.New())
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeNotFound, typed.Code())
}

func TestGetUserRequiresID(t *testing.T) {
	svc, err := NewService(newStubUserRepo())
	require.NoError(t, err)

	_, err = svc.GetUser(context.Background(), uuid.Nil)
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
}

func TestSetActiveDeactivatesAccount(t *testing.T) {
	repo := newStubUserRepo()
	seeded := seedUser(t, repo)

	svc, err := NewService(repo)
	require.NoError(t, err)

	dto, err := svc.SetActive(context.Background(), seeded.ID, false)
	require.NoError(t, err)
	assert.False(t, dto.IsActive)

	stored, err := repo.FindByID(context.Background(), seeded.ID)
	require.NoError(t, err)
	assert.False(t, stored.IsActive)
}

func TestSetActiveUnknownUser(t *testing.T) {
	svc, err := NewService(newStubUserRepo())
	require.NoError(t, err)

	_, err = svc.SetActive(context.Background(), uuid.New(), true)
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeNotFound, typed.Code())
}

func TestNewServiceRequiresRepository(t *testing.T) {
	_, err := NewService(nil)
	require.Error(t, err)
}

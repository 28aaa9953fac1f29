package service

import (
	"context"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/sweetshop/backend/internal/models"
	"github.com/sweetshop/backend/internal/repo"
)

func newAuth(t *testing.T) (*AuthService, *gorm.DB) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("failed to connect to in-memory db: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}, &models.Sweet{}); err != nil {
		t.Fatalf("failed to migrate tables: %v", err)
	}
	return &AuthService{Users: repo.NewGormStore(db)}, db
}

func TestRegisterHashesPassword(t *testing.T) {
	svc, db := newAuth(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, "alice", "pw123456")
	require.NoError(t, err)
	require.Equal(t, models.RoleUser, user.Role)

	var stored models.User
	require.NoError(t, db.First(&stored, user.ID).Error)
	require.NotEqual(t, "pw123456", stored.PasswordHash)
	require.Greater(t, len(stored.PasswordHash), len("pw123456"))
}

func TestRegisterDuplicate(t *testing.T) {
	svc, db := newAuth(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "alice", "pw123456")
	require.NoError(t, err)

	_, err = svc.Register(ctx, "alice", "other_password")
	require.ErrorIs(t, err, repo.ErrDuplicateUser)

	var count int64
	require.NoError(t, db.Model(&models.User{}).Count(&count).Error)
	require.Equal(t, int64(1), count)
}

func TestRegisterValidation(t *testing.T) {
	svc, _ := newAuth(t)
	ctx := context.Background()

	var ve *ValidationError
	_, err := svc.Register(ctx, "", "pw123456")
	require.ErrorAs(t, err, &ve)

	_, err = svc.Register(ctx, "alice", "")
	require.ErrorAs(t, err, &ve)
}

func TestLoginIndistinguishableFailures(t *testing.T) {
	svc, _ := newAuth(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "alice", "pw123456")
	require.NoError(t, err)

	user, err := svc.Login(ctx, "alice", "pw123456")
	require.NoError(t, err)
	require.Equal(t, "alice", user.Username)

	_, wrongPw := svc.Login(ctx, "alice", "wrong_password")
	require.ErrorIs(t, wrongPw, ErrInvalidCredentials)

	_, unknown := svc.Login(ctx, "nobody", "pw123456")
	require.ErrorIs(t, unknown, ErrInvalidCredentials)

	// the two failures must be indistinguishable to the caller
	require.Equal(t, wrongPw.Error(), unknown.Error())
}

package service

import (
	"testing"
	"time"

	"go-retail-pos/internal/model"
	"go-retail-pos/pkg/clock"
	"go-retail-pos/pkg/logger"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestUserService(t *testing.T) (UserService, *fakeUserRepo) {
	t.Helper()
	users := newFakeUserRepo()
	activity := NewActivityService(&fakeActivityLogRepo{}, clock.NewMockClock(time.Date(2025, 3, 15, 10, 0, 0, 0, time.UTC)), logger.Nop())
	return NewUserService(users, activity), users
}

func TestCreateUser(t *testing.T) {
	svc, users := newTestUserService(t)
	admin := uuid.New()

	t.Run("success", func(t *testing.T) {
		resp, err := svc.CreateUser(&CreateUserRequest{
			Username: "newcashier",
			Password: "secret123",
			Name:     "New Cashier",
			Role:     model.RoleCashier,
		}, admin)
		require.NoError(t, err)
		assert.Equal(t, "newcashier", resp.Username)
		assert.True(t, resp.Active)

		stored, err := users.FindByUsername("newcashier")
		require.NoError(t, err)
		assert.True(t, stored.CheckPassword("secret123"))
		assert.NotEqual(t, "secret123", stored.Password)
	})

	t.Run("duplicate username", func(t *testing.T) {
		_, err := svc.CreateUser(&CreateUserRequest{
			Username: "newcashier",
			Password: "other1234",
			Name:     "Impostor",
			Role:     model.RoleCashier,
		}, admin)
		require.ErrorIs(t, err, ErrUsernameExists)
	})

	t.Run("short password", func(t *testing.T) {
		_, err := svc.CreateUser(&CreateUserRequest{
			Username: "shorty",
			Password: "abc",
			Name:     "Short",
			Role:     model.RoleCashier,
		}, admin)
		require.Error(t, err)
		assert.True(t, IsValidationError(err))
	})

	t.Run("bad role", func(t *testing.T) {
		_, err := svc.CreateUser(&CreateUserRequest{
			Username: "manager",
			Password: "secret123",
			Name:     "Manager",
			Role:     "manager",
		}, admin)
		require.Error(t, err)
		assert.True(t, IsValidationError(err))
	})
}

func TestUpdateUser(t *testing.T) {
	svc, users := newTestUserService(t)
	admin := uuid.New()
	id := seedUser(t, users, "worker", "secret123", model.RoleCashier, true)

	t.Run("partial update", func(t *testing.T) {
		newName := "Renamed Worker"
		role := model.RoleAdmin
		resp, err := svc.UpdateUser(id, &UpdateUserRequest{Name: &newName, Role: &role}, admin)
		require.NoError(t, err)
		assert.Equal(t, "Renamed Worker", resp.Name)
		assert.Equal(t, model.RoleAdmin, resp.Role)
		// Unset fields keep their values.
		assert.Equal(t, "worker", resp.Username)
		assert.True(t, resp.Active)
	})

	t.Run("deactivate", func(t *testing.T) {
		inactive := false
		resp, err := svc.UpdateUser(id, &UpdateUserRequest{Active: &inactive}, admin)
		require.NoError(t, err)
		assert.False(t, resp.Active)
	})

	t.Run("password change", func(t *testing.T) {
		pw := "newsecret"
		_, err := svc.UpdateUser(id, &UpdateUserRequest{Password: &pw}, admin)
		require.NoError(t, err)
		stored, err := users.FindByID(id)
		require.NoError(t, err)
		assert.True(t, stored.CheckPassword("newsecret"))
	})

	t.Run("short password rejected", func(t *testing.T) {
		pw := "abc"
		_, err := svc.UpdateUser(id, &UpdateUserRequest{Password: &pw}, admin)
		require.Error(t, err)
	})

	t.Run("invalid role rejected", func(t *testing.T) {
		role := "owner"
		_, err := svc.UpdateUser(id, &UpdateUserRequest{Role: &role}, admin)
		require.Error(t, err)
	})

	t.Run("unknown user", func(t *testing.T) {
		_, err := svc.UpdateUser(uuid.New(), &UpdateUserRequest{}, admin)
		require.ErrorIs(t, err, ErrUserNotFound)
	})
}

func TestGetUsers(t *testing.T) {
	svc, users := newTestUserService(t)
	seedUser(t, users, "alpha", "secret123", model.RoleAdmin, true)
	seedUser(t, users, "beta", "secret123", model.RoleCashier, true)

	list, err := svc.GetUsers()
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "alpha", list[0].Username)
	assert.Equal(t, "beta", list[1].Username)
}

package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qs3c/gym_go_server/config"
	"github.com/qs3c/gym_go_server/internal/model"
	"github.com/qs3c/gym_go_server/internal/model/dto"
	"github.com/qs3c/gym_go_server/internal/pkg/jwt"
	"github.com/qs3c/gym_go_server/internal/repository"
	"github.com/qs3c/gym_go_server/internal/testutil"
)

func authConfig() *config.Config {
	cfg := testConfig()
	cfg.JWT = config.JWTConfig{
		Secret:      "test-secret-key",
		ExpireHours: 24,
	}
	return cfg
}

func TestAuthService_Register(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	cfg := authConfig()
	svc := NewAuthService(repository.NewUserRepository(db), cfg)

	resp, err := svc.Register(&dto.RegisterRequest{
		Username: "zhangsan",
		Email:    "zhangsan@example.com",
		Password: "password123",
		FullName: "张三",
	})
	require.NoError(t, err)
	assert.NotZero(t, resp.UserID)
	assert.NotEmpty(t, resp.Token)

	// token 带着用户 ID 和角色
	claims, err := jwt.ParseToken(resp.Token, cfg.JWT.Secret)
	require.NoError(t, err)
	assert.Equal(t, resp.UserID, claims.UserID)
	assert.Equal(t, model.RoleMember, claims.Role)

	// 密码以 bcrypt 哈希存储
	user, err := repository.NewUserRepository(db).GetByID(resp.UserID)
	require.NoError(t, err)
	require.NotNil(t, user.PasswordHash)
	assert.NotEqual(t, "password123", *user.PasswordHash)
}

func TestAuthService_Register_DuplicateEmail(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	svc := NewAuthService(repository.NewUserRepository(db), authConfig())

	req := &dto.RegisterRequest{
		Username: "zhangsan",
		Email:    "zhangsan@example.com",
		Password: "password123",
	}
	_, err := svc.Register(req)
	require.NoError(t, err)

	req.Username = "lisi"
	_, err = svc.Register(req)
	assert.ErrorIs(t, err, ErrEmailExists)
}

func TestAuthService_Register_DuplicateUsername(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	svc := NewAuthService(repository.NewUserRepository(db), authConfig())

	_, err := svc.Register(&dto.RegisterRequest{
		Username: "zhangsan",
		Email:    "zhangsan@example.com",
		Password: "password123",
	})
	require.NoError(t, err)

	_, err = svc.Register(&dto.RegisterRequest{
		Username: "zhangsan",
		Email:    "other@example.com",
		Password: "password123",
	})
	assert.ErrorIs(t, err, ErrUsernameExists)
}

func TestAuthService_Login(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	svc := NewAuthService(repository.NewUserRepository(db), authConfig())

	_, err := svc.Register(&dto.RegisterRequest{
		Username: "zhangsan",
		Email:    "zhangsan@example.com",
		Password: "password123",
	})
	require.NoError(t, err)

	resp, err := svc.Login(&dto.LoginRequest{
		Email:    "zhangsan@example.com",
		Password: "password123",
	})
	require.NoError(t, err)
	assert.Equal(t, "zhangsan", resp.Username)
	assert.Equal(t, model.RoleMember, resp.Role)
	assert.NotEmpty(t, resp.Token)
}

func TestAuthService_Login_WrongPassword(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	svc := NewAuthService(repository.NewUserRepository(db), authConfig())

	_, err := svc.Register(&dto.RegisterRequest{
		Username: "zhangsan",
		Email:    "zhangsan@example.com",
		Password: "password123",
	})
	require.NoError(t, err)

	_, err = svc.Login(&dto.LoginRequest{
		Email:    "zhangsan@example.com",
		Password: "wrong-password",
	})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(&dto.LoginRequest{
		Email:    "nobody@example.com",
		Password: "password123",
	})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

package auth

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"

	"github.com/joinup-app/joinup/internal/user"
	"github.com/joinup-app/joinup/pkg/clock"
)

type memUsers struct {
	items map[primitive.ObjectID]*user.User
}

func newMemUsers(users ...*user.User) *memUsers {
	m := &memUsers{items: map[primitive.ObjectID]*user.User{}}
	for _, u := range users {
		m.items[u.ID] = u
	}
	return m
}

func (m *memUsers) GetByLogin(_ context.Context, login string) (*user.User, error) {
	for _, u := range m.items {
		if u.Username == login || u.Email == login {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *memUsers) FindConflict(_ context.Context, username, email string) (*user.User, error) {
	for _, u := range m.items {
		if u.Username == username || u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *memUsers) Create(_ context.Context, u *user.User) (*user.User, error) {
	u.ID = primitive.NewObjectID()
	cp := *u
	m.items[u.ID] = &cp
	return u, nil
}

const testSecret = "test-secret"

func newTestService(users *memUsers) (*Service, *clock.Fixed) {
	clk := clock.NewFixed(time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC))
	return NewService(users, testSecret, time.Hour, clk), clk
}

func existingUser(password string) *user.User {
	hash, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	return &user.User{
		ID:       primitive.NewObjectID(),
		Username: "carlos",
		Email:    "carlos@example.com",
		Password: string(hash),
		IsActive: true,
	}
}

func TestRegister(t *testing.T) {
	ctx := context.Background()

	t.Run("success applies defaults and hashes the password", func(t *testing.T) {
		users := newMemUsers()
		svc, _ := newTestService(users)

		u, err := svc.Register(ctx, &RegisterRequest{
			Username: "lucia",
			Email:    "lucia@example.com",
			Password: "s3cretpass",
		})
		require.NoError(t, err)

		assert.NotEqual(t, "s3cretpass", u.Password)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.Password), []byte("s3cretpass")))
		assert.Equal(t, user.DefaultAboutMe, u.AboutMe)
		assert.Equal(t, user.DefaultAvatarURL, u.Avatar.URL)
		assert.True(t, u.IsActive)
		assert.False(t, u.IsAdmin)
	})

	t.Run("username taken", func(t *testing.T) {
		users := newMemUsers(existingUser("whatever"))
		svc, _ := newTestService(users)

		_, err := svc.Register(ctx, &RegisterRequest{
			Username: "carlos",
			Email:    "new@example.com",
			Password: "s3cretpass",
		})
		assert.ErrorIs(t, err, ErrUsernameTaken)
	})

	t.Run("email taken", func(t *testing.T) {
		users := newMemUsers(existingUser("whatever"))
		svc, _ := newTestService(users)

		_, err := svc.Register(ctx, &RegisterRequest{
			Username: "newname",
			Email:    "carlos@example.com",
			Password: "s3cretpass",
		})
		assert.ErrorIs(t, err, ErrEmailTaken)
	})
}

func TestLogin(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown user", func(t *testing.T) {
		svc, _ := newTestService(newMemUsers())
		_, _, err := svc.Login(ctx, &LoginRequest{Username: "ghost", Password: "whatever"})
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("wrong password", func(t *testing.T) {
		svc, _ := newTestService(newMemUsers(existingUser("rightpass")))
		_, _, err := svc.Login(ctx, &LoginRequest{Username: "carlos", Password: "wrongpass"})
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("suspended account", func(t *testing.T) {
		u := existingUser("rightpass")
		u.IsActive = false
		svc, _ := newTestService(newMemUsers(u))
		_, _, err := svc.Login(ctx, &LoginRequest{Username: "carlos", Password: "rightpass"})
		assert.ErrorIs(t, err, ErrUserSuspended)
	})

	t.Run("email works as login", func(t *testing.T) {
		svc, _ := newTestService(newMemUsers(existingUser("rightpass")))
		u, token, err := svc.Login(ctx, &LoginRequest{Username: "carlos@example.com", Password: "rightpass"})
		require.NoError(t, err)
		assert.Equal(t, "carlos", u.Username)
		assert.NotEmpty(t, token)
	})

	t.Run("token carries the user and expiry", func(t *testing.T) {
		stored := existingUser("rightpass")
		svc, clk := newTestService(newMemUsers(stored))

		_, signed, err := svc.Login(ctx, &LoginRequest{Username: "carlos", Password: "rightpass"})
		require.NoError(t, err)

		parsed, err := jwt.Parse(signed, func(_ *jwt.Token) (interface{}, error) {
			return []byte(testSecret), nil
		}, jwt.WithValidMethods([]string{"HS256"}), jwt.WithTimeFunc(clk.Now))
		require.NoError(t, err)

		claims, ok := parsed.Claims.(jwt.MapClaims)
		require.True(t, ok)
		assert.Equal(t, stored.ID.Hex(), claims["user_id"])

		exp, err := claims.GetExpirationTime()
		require.NoError(t, err)
		assert.Equal(t, clk.Now().Add(time.Hour).Unix(), exp.Unix())
	})
}

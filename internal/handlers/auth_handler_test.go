package handlers_test

import (
	"context"
	"net/http"
	"sync"
	"testing"
	"time"

	"catalog/internal/handlers"
	"catalog/internal/middleware"
	"catalog/internal/models"
	"catalog/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memoryUserRepository keeps users in a map.
type memoryUserRepository struct {
	mu    sync.Mutex
	users []models.User
}

func (r *memoryUserRepository) Create(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users = append(r.users, *user)
	return nil
}

func (r *memoryUserRepository) find(match func(models.User) bool) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if match(u) {
			u := u
			return &u, nil
		}
	}
	return nil, models.ErrUserNotFound
}

func (r *memoryUserRepository) GetByUsername(_ context.Context, username string) (*models.User, error) {
	return r.find(func(u models.User) bool { return u.Username == username })
}

func (r *memoryUserRepository) GetByEmail(_ context.Context, email string) (*models.User, error) {
	return r.find(func(u models.User) bool { return u.Email == email })
}

func (r *memoryUserRepository) GetByID(_ context.Context, id string) (*models.User, error) {
	return r.find(func(u models.User) bool { return u.ID == id })
}

func setupAuthApp(t *testing.T) *fiber.App {
	t.Helper()

	app := fiber.New()
	authService := services.NewAuthService(&memoryUserRepository{}, "handler_test_secret", time.Hour)
	handlers.NewAuthHandler(authService, middleware.NewValidator(), zerolog.Nop()).RegisterRoutes(app)
	return app
}

func TestAuthHandler_Register(t *testing.T) {
	app := setupAuthApp(t)

	status, body := send(t, app, http.MethodPost, "/auth/register", `{"username":"  bob  ","email":"bob@example.com","password":"password123"}`)
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, "User registered successfully", body["message"])
	user := body["user"].(map[string]interface{})
	assert.Equal(t, "bob", user["username"])
	assert.NotContains(t, user, "password")

	status, body = send(t, app, http.MethodPost, "/auth/register", `{"username":"bobby","email":"bob@example.com","password":"password123"}`)
	assert.Equal(t, http.StatusConflict, status)
	assert.Contains(t, body["error"], "email already registered")
}

func TestAuthHandler_RegisterValidation(t *testing.T) {
	app := setupAuthApp(t)

	status, body := send(t, app, http.MethodPost, "/auth/register", `{"username":"bo","email":"not-an-email","password":"short"}`)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, map[string]interface{}{
		"username": "The username field must be at least 3 characters.",
		"email":    "The email field must be a valid email address.",
		"password": "The password field must be at least 8 characters.",
	}, body["errors"])
}

func TestAuthHandler_Login(t *testing.T) {
	app := setupAuthApp(t)

	status, _ := send(t, app, http.MethodPost, "/auth/register", `{"username":"carol","email":"carol@example.com","password":"password123"}`)
	require.Equal(t, http.StatusCreated, status)

	status, body := send(t, app, http.MethodPost, "/auth/login", `{"username":"carol","password":"password123"}`)
	require.Equal(t, http.StatusOK, status)
	assert.NotEmpty(t, body["token"])

	status, body = send(t, app, http.MethodPost, "/auth/login", `{"username":"carol","password":"nope"}`)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "Authentication failed", body["message"])

	status, _ = send(t, app, http.MethodPost, "/auth/login", `{"username":"carol"}`)
	assert.Equal(t, http.StatusBadRequest, status)
}

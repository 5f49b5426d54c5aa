package server

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"friendnet/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignup_Validation(t *testing.T) {
	_, app := newTestServer(t)

	valid := func() fiber.Map {
		return fiber.Map{
			"username":         "alice",
			"email":            "alice@example.com",
			"password":         "secret-pass",
			"confirm_password": "secret-pass",
		}
	}

	tests := []struct {
		name    string
		mutate  func(fiber.Map)
		message string
	}{
		{
			name:    "Missing Username",
			mutate:  func(m fiber.Map) { delete(m, "username") },
			message: "Username, email, password and confirm_password are required",
		},
		{
			name:    "Missing Confirm",
			mutate:  func(m fiber.Map) { delete(m, "confirm_password") },
			message: "Username, email, password and confirm_password are required",
		},
		{
			name:    "Bad Email",
			mutate:  func(m fiber.Map) { m["email"] = "not-an-email" },
			message: "invalid email format",
		},
		{
			name:    "Bad Username",
			mutate:  func(m fiber.Map) { m["username"] = "a" },
			message: "username must be at least 3 characters long",
		},
		{
			name:    "Password Mismatch",
			mutate:  func(m fiber.Map) { m["confirm_password"] = "different" },
			message: "Passwords do not match.",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			body := valid()
			tt.mutate(body)
			status, env := doJSON(t, app, http.MethodPost, "/api/auth/signup", "", body)
			assert.Equal(t, http.StatusBadRequest, status)
			assert.Equal(t, tt.message, env.Message)
		})
	}
}

func TestSignup_Success(t *testing.T) {
	_, app := newTestServer(t)

	status, env := doJSON(t, app, http.MethodPost, "/api/auth/signup", "", fiber.Map{
		"username":         "alice",
		"email":            "Alice@Example.COM",
		"password":         "secret-pass",
		"confirm_password": "secret-pass",
		"first_name":       "Alice",
	})
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, "User created successfully.", env.Message)

	var user models.User
	require.NoError(t, json.Unmarshal(env.Detail, &user))
	assert.NotZero(t, user.ID)
	assert.Equal(t, "alice@example.com", user.Email)
	assert.Equal(t, "alice", user.Slug)
	// The hash must never leave the server.
	assert.NotContains(t, string(env.Detail), "secret-pass")
	assert.NotContains(t, strings.ToLower(string(env.Detail)), `"password"`)
}

func TestSignup_DuplicateEmail(t *testing.T) {
	_, app := newTestServer(t)

	body := fiber.Map{
		"username":         "alice",
		"email":            "alice@example.com",
		"password":         "secret-pass",
		"confirm_password": "secret-pass",
	}
	status, _ := doJSON(t, app, http.MethodPost, "/api/auth/signup", "", body)
	require.Equal(t, http.StatusCreated, status)

	body["username"] = "alice2"
	status, env := doJSON(t, app, http.MethodPost, "/api/auth/signup", "", body)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "User with this email already exists.", env.Message)
}

func TestLogin(t *testing.T) {
	_, app := newTestServer(t)
	signupAndLogin(t, app, "alice", "alice@example.com")

	t.Run("Unknown Email", func(t *testing.T) {
		status, env := doJSON(t, app, http.MethodPost, "/api/auth/login", "", fiber.Map{
			"email":    "nobody@example.com",
			"password": "secret-pass",
		})
		assert.Equal(t, http.StatusBadRequest, status)
		assert.Equal(t, "Invalid Credentials", env.Message)
	})

	t.Run("Wrong Password", func(t *testing.T) {
		status, env := doJSON(t, app, http.MethodPost, "/api/auth/login", "", fiber.Map{
			"email":    "alice@example.com",
			"password": "wrong",
		})
		assert.Equal(t, http.StatusBadRequest, status)
		assert.Equal(t, "Invalid Credentials", env.Message)
	})

	t.Run("Success Issues Token Pair", func(t *testing.T) {
		status, env := doJSON(t, app, http.MethodPost, "/api/auth/login", "", fiber.Map{
			"email":    "Alice@Example.com",
			"password": "secret-pass",
		})
		require.Equal(t, http.StatusOK, status)
		assert.True(t, env.IsAuthenticated)

		var pair tokenPair
		require.NoError(t, json.Unmarshal(env.Detail, &pair))
		assert.NotEmpty(t, pair.Access)
		assert.NotEmpty(t, pair.Refresh)
		assert.NotEqual(t, pair.Access, pair.Refresh)
	})
}

func TestRefresh(t *testing.T) {
	_, app := newTestServer(t)
	signupAndLogin(t, app, "alice", "alice@example.com")

	status, env := doJSON(t, app, http.MethodPost, "/api/auth/login", "", fiber.Map{
		"email":    "alice@example.com",
		"password": "secret-pass",
	})
	require.Equal(t, http.StatusOK, status)
	var pair tokenPair
	require.NoError(t, json.Unmarshal(env.Detail, &pair))

	t.Run("Valid Refresh Token", func(t *testing.T) {
		status, env := doJSON(t, app, http.MethodPost, "/api/auth/refresh", "", fiber.Map{
			"refresh": pair.Refresh,
		})
		require.Equal(t, http.StatusOK, status)

		var detail struct {
			Access string `json:"access"`
		}
		require.NoError(t, json.Unmarshal(env.Detail, &detail))
		assert.NotEmpty(t, detail.Access)

		// The new access token must work on protected routes.
		status, _ = doJSON(t, app, http.MethodGet, "/api/users/me", detail.Access, nil)
		assert.Equal(t, http.StatusOK, status)
	})

	t.Run("Access Token Rejected", func(t *testing.T) {
		status, _ := doJSON(t, app, http.MethodPost, "/api/auth/refresh", "", fiber.Map{
			"refresh": pair.Access,
		})
		assert.Equal(t, http.StatusUnauthorized, status)
	})

	t.Run("Garbage Rejected", func(t *testing.T) {
		status, _ := doJSON(t, app, http.MethodPost, "/api/auth/refresh", "", fiber.Map{
			"refresh": "not.a.token",
		})
		assert.Equal(t, http.StatusUnauthorized, status)
	})

	t.Run("Missing Body", func(t *testing.T) {
		status, _ := doJSON(t, app, http.MethodPost, "/api/auth/refresh", "", fiber.Map{})
		assert.Equal(t, http.StatusUnauthorized, status)
	})
}

func TestLogout_RevokesToken(t *testing.T) {
	_, app := newTestServer(t)
	_, access := signupAndLogin(t, app, "alice", "alice@example.com")

	status, _ := doJSON(t, app, http.MethodGet, "/api/users/me", access, nil)
	require.Equal(t, http.StatusOK, status)

	status, env := doJSON(t, app, http.MethodPost, "/api/auth/logout", access, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Logged out.", env.Message)

	// The revoked jti must be rejected by the auth middleware.
	status, _ = doJSON(t, app, http.MethodGet, "/api/users/me", access, nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestLogout_RequiresToken(t *testing.T) {
	_, app := newTestServer(t)

	status, _ := doJSON(t, app, http.MethodPost, "/api/auth/logout", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}

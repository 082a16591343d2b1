package server

import (
	"net/http"
	"testing"

	"terrascore/internal/config"
	"terrascore/internal/database"
	"terrascore/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestServerWithRedis wires a real (in-process) Redis so the token
// blacklist path is exercised.
func newTestServerWithRedis(t *testing.T) (*Server, *fiber.App, *gorm.DB, *miniredis.Miniredis) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	cfg := &config.Config{
		Port:           "8460",
		Env:            "test",
		JWTSecret:      "test-secret-for-handler-tests",
		JWTExpiryHours: 1,
		UploadDir:      t.TempDir(),
	}
	srv, err := NewServerWithDeps(cfg, db, rdb)
	require.NoError(t, err)

	app := fiber.New()
	srv.SetupRoutes(app)

	return srv, app, db, mr
}

func TestLogin(t *testing.T) {
	_, app, db := newTestServer(t)
	createUser(t, db, "andes_ops", "ops@andescopper.cl", "correct-horse", models.RoleUser)

	// Success returns a token and the user without its password hash.
	resp, err := app.Test(jsonRequest(t, http.MethodPost, "/api/auth/login", map[string]string{
		"username": "andes_ops", "password": "correct-horse",
	}, ""))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Token string `json:"token"`
		User  struct {
			Username string `json:"username"`
			Password string `json:"password"`
		} `json:"user"`
	}
	decodeBody(t, resp, &body)
	assert.NotEmpty(t, body.Token)
	assert.Equal(t, "andes_ops", body.User.Username)
	assert.Empty(t, body.User.Password)

	// Wrong password and unknown username yield the same error.
	resp, err = app.Test(jsonRequest(t, http.MethodPost, "/api/auth/login", map[string]string{
		"username": "andes_ops", "password": "wrong",
	}, ""))
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, err = app.Test(jsonRequest(t, http.MethodPost, "/api/auth/login", map[string]string{
		"username": "nobody", "password": "whatever",
	}, ""))
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestMe(t *testing.T) {
	srv, app, db := newTestServer(t)
	user := createUser(t, db, "andes_ops", "ops@andescopper.cl", "correct-horse", models.RoleUser)
	token := tokenFor(t, srv, user)

	resp, err := app.Test(jsonRequest(t, http.MethodGet, "/api/auth/me", nil, token))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		User struct {
			Email string `json:"email"`
			Role  string `json:"role"`
		} `json:"user"`
	}
	decodeBody(t, resp, &body)
	assert.Equal(t, "ops@andescopper.cl", body.User.Email)
	assert.Equal(t, "user", body.User.Role)

	// Garbage tokens are rejected.
	resp, err = app.Test(jsonRequest(t, http.MethodGet, "/api/auth/me", nil, "not-a-token"))
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestLogoutRevokesToken(t *testing.T) {
	srv, app, db, _ := newTestServerWithRedis(t)
	user := createUser(t, db, "andes_ops", "ops@andescopper.cl", "correct-horse", models.RoleUser)
	token := tokenFor(t, srv, user)

	resp, err := app.Test(jsonRequest(t, http.MethodPost, "/api/auth/logout", nil, token))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// The revoked token no longer authenticates.
	resp, err = app.Test(jsonRequest(t, http.MethodGet, "/api/auth/me", nil, token))
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestLogoutReportsFailedRevocation(t *testing.T) {
	srv, app, db, mr := newTestServerWithRedis(t)
	user := createUser(t, db, "andes_ops", "ops@andescopper.cl", "correct-horse", models.RoleUser)
	token := tokenFor(t, srv, user)

	// With Redis down the blacklist write fails; the client must not be told
	// the token was revoked.
	mr.Close()

	// The Redis client retries the dial several times before giving up, which
	// can exceed app.Test's default 1s timeout; allow the handler to finish.
	resp, err := app.Test(jsonRequest(t, http.MethodPost, "/api/auth/logout", nil, token), 15000)
	require.NoError(t, err)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
}

func TestTokenSignedWithDifferentSecretRejected(t *testing.T) {
	srvA, _, dbA := newTestServer(t)
	userA := createUser(t, dbA, "andes_ops", "ops@andescopper.cl", "correct-horse", models.RoleUser)
	foreignToken := tokenFor(t, srvA, userA)

	// A second deployment with its own secret must reject the token.
	_, appB, dbB := newTestServerWithSecret(t, "a-completely-different-secret")
	createUser(t, dbB, "andes_ops", "ops@andescopper.cl", "correct-horse", models.RoleUser)

	resp, err := appB.Test(jsonRequest(t, http.MethodGet, "/api/auth/me", nil, foreignToken))
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

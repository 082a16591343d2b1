package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"terrascore/internal/config"
	"terrascore/internal/database"
	"terrascore/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Port:           "8460",
		Env:            "test",
		JWTSecret:      "test-secret-for-handler-tests",
		JWTExpiryHours: 1,
		UploadDir:      t.TempDir(),
	}
}

// newTestServer builds a Server on an in-memory SQLite database and a Fiber
// app with the route stack registered.
func newTestServer(t *testing.T) (*Server, *fiber.App, *gorm.DB) {
	t.Helper()
	return newTestServerWithSecret(t, "test-secret-for-handler-tests")
}

func newTestServerWithSecret(t *testing.T, secret string) (*Server, *fiber.App, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	cfg := testConfig(t)
	cfg.JWTSecret = secret
	srv, err := NewServerWithDeps(cfg, db, nil)
	require.NoError(t, err)

	app := fiber.New()
	srv.SetupRoutes(app)

	return srv, app, db
}

func createUser(t *testing.T, db *gorm.DB, username, email, password string, role models.Role) *models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	user := &models.User{
		Username: username,
		Email:    email,
		Password: string(hash),
		Role:     role,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func tokenFor(t *testing.T, srv *Server, user *models.User) string {
	t.Helper()
	token, err := srv.generateToken(user)
	require.NoError(t, err)
	return token
}

func jsonRequest(t *testing.T, method, target string, body any, token string) *http.Request {
	t.Helper()
	var buf io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		buf = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, target, buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req
}

func decodeBody(t *testing.T, resp *http.Response, dest any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(dest))
}

package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"sync/atomic"
	"testing"

	"socialblog/internal/handlers"
	"socialblog/internal/middleware"
	"socialblog/internal/models"
	"socialblog/internal/repositories"
	"socialblog/internal/services"
	"socialblog/pkg/mediastore"

	"github.com/gofiber/fiber/v2"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var dbCounter int64

// setupApp builds the full Fiber app on an in-memory SQLite database
// with a mock media store, wired exactly like main.
func setupApp(t *testing.T) *fiber.App {
	t.Helper()

	viper.SetDefault("JWT_SECRET", "test_jwt_secret")
	viper.AutomaticEnv()
	jwtSecret := viper.GetString("JWT_SECRET")

	// Each call gets its own named in-memory database so tests do not
	// share state.
	dsn := fmt.Sprintf("file:memdb%d?mode=memory&cache=shared", atomic.AddInt64(&dbCounter, 1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Post{}, &models.Like{}))

	userRepo := repositories.NewGORMUserRepository(db)
	postRepo := repositories.NewGORMPostRepository(db)
	media := mediastore.NewMockStore()

	authService := services.NewAuthService(userRepo, jwtSecret)
	postService := services.NewPostService(postRepo, userRepo, media, nil) // nil event client
	userService := services.NewUserService(userRepo, media)
	adminService := services.NewAdminService(postRepo, userRepo, nil)

	authHandler := handlers.NewAuthHandler(authService)
	postHandler := handlers.NewPostHandler(postService)
	userHandler := handlers.NewUserHandler(userService)
	adminHandler := handlers.NewAdminHandler(adminService)

	app := fiber.New()
	api := app.Group("/api")

	authHandler.RegisterRoutes(api)
	postHandler.RegisterPublicRoutes(api)

	protected := api.Group("", middleware.AuthRequired(authService))
	postHandler.RegisterProtectedRoutes(protected)
	userHandler.RegisterRoutes(protected)

	adminRoutes := protected.Group("/admin", middleware.AdminRequired())
	adminHandler.RegisterRoutes(adminRoutes)

	seedAdminForTest(t, userRepo)

	return app
}

// seedAdminForTest creates the moderation account the admin tests log
// in as.
func seedAdminForTest(t *testing.T, repo repositories.UserRepository) {
	t.Helper()
	hashed, err := bcrypt.GenerateFromPassword([]byte("adminpass"), bcrypt.DefaultCost)
	require.NoError(t, err)
	admin := &models.User{
		Name:     "Admin",
		Email:    "admin@example.com",
		Password: string(hashed),
		Role:     models.RoleAdmin,
	}
	require.NoError(t, repo.Create(admin))
}

// TestMain runs setup and teardown for all tests
func TestMain(m *testing.M) {
	log.SetOutput(io.Discard)
	code := m.Run()
	os.Exit(code)
}

func doJSON(t *testing.T, app *fiber.App, method, path string, body interface{}, token string) (*http.Response, map[string]interface{}) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(jsonBody)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	var decoded map[string]interface{}
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	resp.Body.Close()
	if len(raw) > 0 && raw[0] == '{' {
		require.NoError(t, json.Unmarshal(raw, &decoded))
	}
	return resp, decoded
}

func doList(t *testing.T, app *fiber.App, path, token string) (*http.Response, []map[string]interface{}) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	var list []map[string]interface{}
	err = json.NewDecoder(resp.Body).Decode(&list)
	resp.Body.Close()
	require.NoError(t, err)
	return resp, list
}

func signupAndLogin(t *testing.T, app *fiber.App, name, email, password string) string {
	t.Helper()
	resp, _ := doJSON(t, app, http.MethodPost, "/api/auth/signup", map[string]string{
		"name": name, "email": email, "password": password,
	}, "")
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, body := doJSON(t, app, http.MethodPost, "/api/auth/login", map[string]string{
		"email": email, "password": password,
	}, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	token, _ := body["token"].(string)
	require.NotEmpty(t, token)
	return token
}

// multipartRequest builds a multipart form request for the post and
// profile endpoints.
func multipartRequest(t *testing.T, method, path string, fields map[string]string, tags []string, withImage bool, token string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	for _, tag := range tags {
		require.NoError(t, w.WriteField("tags", tag))
	}
	if withImage {
		fw, err := w.CreateFormFile("image", "photo.png")
		require.NoError(t, err)
		_, err = fw.Write([]byte("fake png bytes"))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req
}

func TestSignupAndLogin(t *testing.T) {
	app := setupApp(t)

	// Signup returns the public projection and a token, no secrets
	resp, body := doJSON(t, app, http.MethodPost, "/api/auth/signup", map[string]string{
		"name": "alice", "email": "alice@example.com", "password": "password123",
	}, "")
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.NotEmpty(t, body["token"])
	user := body["user"].(map[string]interface{})
	assert.Equal(t, "alice", user["name"])
	assert.Equal(t, models.RoleMember, user["role"])
	assert.NotContains(t, user, "password")

	// A second signup with the same email fails with a conflict
	resp, _ = doJSON(t, app, http.MethodPost, "/api/auth/signup", map[string]string{
		"name": "alice again", "email": "alice@example.com", "password": "password456",
	}, "")
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	// Missing fields fail validation
	resp, _ = doJSON(t, app, http.MethodPost, "/api/auth/signup", map[string]string{
		"email": "incomplete@example.com",
	}, "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// Wrong password and unknown email fail identically
	resp, wrongPass := doJSON(t, app, http.MethodPost, "/api/auth/login", map[string]string{
		"email": "alice@example.com", "password": "wrong",
	}, "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, unknown := doJSON(t, app, http.MethodPost, "/api/auth/login", map[string]string{
		"email": "nobody@example.com", "password": "anything",
	}, "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, wrongPass["message"], unknown["message"])
}

func TestPostLifecycle(t *testing.T) {
	app := setupApp(t)
	aliceToken := signupAndLogin(t, app, "alice", "alice@example.com", "password123")
	bobToken := signupAndLogin(t, app, "bob", "bob@example.com", "password123")

	// Creating without a token is rejected
	req := multipartRequest(t, http.MethodPost, "/api/posts", map[string]string{"title": "Nope"}, nil, true, "")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()

	// Creating without an image fails validation and persists nothing
	req = multipartRequest(t, http.MethodPost, "/api/posts", map[string]string{"title": "No image"}, nil, false, aliceToken)
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	resp, list := doList(t, app, "/api/posts", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, list)

	// Successful creation
	req = multipartRequest(t, http.MethodPost, "/api/posts", map[string]string{
		"title":       "Sunset in Paris",
		"description": "Golden hour",
		"city":        "Paris",
	}, []string{"travel, sunset"}, true, aliceToken)
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var created models.Post
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
	resp.Body.Close()
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, []string{"travel", "sunset"}, created.Tags)
	assert.NotEmpty(t, created.Image)

	// Public listing decorates the author projection
	resp, list = doList(t, app, "/api/posts", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, list, 1)
	author := list[0]["author"].(map[string]interface{})
	assert.Equal(t, "alice", author["name"])
	assert.NotContains(t, author, "email")

	// Own posts listing
	resp, list = doList(t, app, "/api/posts/my", aliceToken)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, list, 1)
	resp, list = doList(t, app, "/api/posts/my", bobToken)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, list)

	// Partial update: only the description changes
	req = multipartRequest(t, http.MethodPut, "/api/posts/"+created.ID, map[string]string{
		"description": "Blue hour",
	}, nil, false, aliceToken)
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var updated models.Post
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&updated))
	resp.Body.Close()
	assert.Equal(t, "Sunset in Paris", updated.Title)
	assert.Equal(t, "Blue hour", updated.Description)

	// A non-owner cannot update or delete
	req = multipartRequest(t, http.MethodPut, "/api/posts/"+created.ID, map[string]string{"title": "Hijacked"}, nil, false, bobToken)
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp.Body.Close()

	resp, _ = doJSON(t, app, http.MethodDelete, "/api/posts/"+created.ID, nil, bobToken)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	// A missing post is 404 before any ownership verdict
	resp, _ = doJSON(t, app, http.MethodDelete, "/api/posts/does-not-exist", nil, bobToken)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	// Like toggling: on, then off; a second account counts separately
	resp, body := doJSON(t, app, http.MethodPatch, "/api/posts/"+created.ID+"/like", nil, bobToken)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["liked"])
	assert.EqualValues(t, 1, body["likesCount"])

	resp, body = doJSON(t, app, http.MethodPatch, "/api/posts/"+created.ID+"/like", nil, aliceToken)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["liked"])
	assert.EqualValues(t, 2, body["likesCount"])

	resp, body = doJSON(t, app, http.MethodPatch, "/api/posts/"+created.ID+"/like", nil, bobToken)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, false, body["liked"])
	assert.EqualValues(t, 1, body["likesCount"])

	// Owner delete
	resp, body = doJSON(t, app, http.MethodDelete, "/api/posts/"+created.ID, nil, aliceToken)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Post deleted", body["message"])

	resp, list = doList(t, app, "/api/posts", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, list)
}

func TestSearchAndFilter(t *testing.T) {
	app := setupApp(t)
	token := signupAndLogin(t, app, "alice", "alice@example.com", "password123")

	seed := []map[string]string{
		{"title": "Sunset in Paris", "city": "Paris"},
		{"title": "Morning in Oslo", "city": "PARIS"},
		{"title": "Paradise found", "city": "Paris2"},
	}
	for _, fields := range seed {
		req := multipartRequest(t, http.MethodPost, "/api/posts", fields, nil, true, token)
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		require.Equal(t, http.StatusCreated, resp.StatusCode)
		resp.Body.Close()
	}

	// Empty queries return empty lists, never the full corpus
	resp, list := doList(t, app, "/api/posts/search", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, list)
	resp, list = doList(t, app, "/api/posts/filter", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, list)

	// Substring, case-insensitive title search
	resp, list = doList(t, app, "/api/posts/search?title=par", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, list, 2)

	// Exact, case-insensitive city filter: "Paris2" stays out
	resp, list = doList(t, app, "/api/posts/filter?city=paris", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, list, 2)
	for _, post := range list {
		assert.NotEqual(t, "Paris2", post["city"])
	}
}

func TestProfile(t *testing.T) {
	app := setupApp(t)
	token := signupAndLogin(t, app, "alice", "alice@example.com", "password123")

	resp, body := doJSON(t, app, http.MethodGet, "/api/users/profile", nil, token)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "alice", body["name"])
	assert.NotContains(t, body, "password")

	// Partial profile update keeps the untouched fields
	req := multipartRequest(t, http.MethodPut, "/api/users/profile", map[string]string{
		"bio": "Street photographer",
	}, nil, false, token)
	resp2, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp2.StatusCode)
	var updated map[string]interface{}
	require.NoError(t, json.NewDecoder(resp2.Body).Decode(&updated))
	resp2.Body.Close()
	assert.Equal(t, "alice", updated["name"])
	assert.Equal(t, "Street photographer", updated["bio"])
}

func TestAdminEndpoints(t *testing.T) {
	app := setupApp(t)
	memberToken := signupAndLogin(t, app, "alice", "alice@example.com", "password123")

	req := multipartRequest(t, http.MethodPost, "/api/posts", map[string]string{"title": "Sunset in Paris"}, nil, true, memberToken)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var created models.Post
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
	resp.Body.Close()

	// Members are kept out of the admin surface
	resp, _ = doJSON(t, app, http.MethodGet, "/api/admin/users", nil, memberToken)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, adminLogin := doJSON(t, app, http.MethodPost, "/api/auth/login", map[string]string{
		"email": "admin@example.com", "password": "adminpass",
	}, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	adminToken := adminLogin["token"].(string)

	// Admin listings carry the fuller author projection
	resp, posts := doList(t, app, "/api/admin/posts", adminToken)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, posts, 1)
	author := posts[0]["author"].(map[string]interface{})
	assert.Equal(t, "alice@example.com", author["email"])
	assert.Equal(t, models.RoleMember, author["role"])

	// Account rollup never exposes credential hashes
	resp, accounts := doList(t, app, "/api/admin/users", adminToken)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.GreaterOrEqual(t, len(accounts), 2)
	for _, account := range accounts {
		assert.NotContains(t, account, "password")
	}

	// Moderation delete bypasses ownership
	resp, body := doJSON(t, app, http.MethodDelete, "/api/admin/posts/"+created.ID, nil, adminToken)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Post deleted by admin", body["message"])

	resp, _ = doJSON(t, app, http.MethodDelete, "/api/admin/posts/"+created.ID, nil, adminToken)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

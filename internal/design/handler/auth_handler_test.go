package handler

import (
	"net/http"
	"testing"
	"time"

	"github.com/axelgear/design-integration/internal/config"
	"github.com/axelgear/design-integration/internal/design/entity"
	"github.com/axelgear/design-integration/internal/design/repository"
	"github.com/axelgear/design-integration/internal/design/service"
	"github.com/axelgear/design-integration/internal/design/testutil"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupAuthTest(t *testing.T) (*gorm.DB, *gin.Engine) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	router := testutil.SetupRouter()

	repos := repository.NewRepositories(db)
	cfg := &config.Config{}
	cfg.JWT.Secret = testutil.JWTSecret
	cfg.JWT.Issuer = "design-integration"
	cfg.JWT.AccessTokenExpire = time.Hour
	cfg.JWT.RefreshTokenExpire = 24 * time.Hour
	services := service.NewServices(db, repos, nil, cfg, zap.NewNop())
	h := NewAuthHandler(services.Auth)

	router.POST("/api/v1/auth/login", h.Login)
	router.POST("/api/v1/auth/refresh", h.RefreshToken)
	api := testutil.AuthGroup(router, "/api/v1")
	api.GET("/auth/me", h.GetCurrentUser)
	api.GET("/users", h.ListUsers)

	return db, router
}

func seedLoginUser(t *testing.T, db *gorm.DB, email, password string, roles []string) *entity.User {
	t.Helper()
	hash, err := service.HashPassword(password)
	if err != nil {
		t.Fatalf("Failed to hash password: %v", err)
	}
	user := &entity.User{
		ID:           "u-login-001",
		Username:     "design.lead",
		Name:         "Design Lead",
		Email:        email,
		PasswordHash: hash,
		Roles:        roles,
		Status:       "active",
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("Failed to seed login user: %v", err)
	}
	return user
}

func TestLoginAndMe(t *testing.T) {
	db, router := setupAuthTest(t)
	seedLoginUser(t, db, "lead@test.com", "s3cret", []string{"Design Manager"})

	w := testutil.DoRequest(router, "POST", "/api/v1/auth/login",
		map[string]interface{}{"email": "lead@test.com", "password": "wrong"}, "")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("Expected 401 for bad password, got %d: %s", w.Code, w.Body.String())
	}

	w = testutil.DoRequest(router, "POST", "/api/v1/auth/login",
		map[string]interface{}{"email": "lead@test.com", "password": "s3cret"}, "")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}
	resp := testutil.ParseResponse(w)
	data := resp["data"].(map[string]interface{})
	tokens := data["tokens"].(map[string]interface{})
	access := tokens["access_token"].(string)
	if access == "" || tokens["refresh_token"].(string) == "" {
		t.Fatal("Expected a token pair")
	}
	user := data["user"].(map[string]interface{})
	if _, leaked := user["password_hash"]; leaked {
		t.Error("Password hash must not serialize")
	}

	// The issued token authenticates against protected routes
	w = testutil.DoRequest(router, "GET", "/api/v1/auth/me", nil, access)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}
	resp = testutil.ParseResponse(w)
	me := resp["data"].(map[string]interface{})
	if me["email"] != "lead@test.com" {
		t.Errorf("Expected lead@test.com, got %v", me["email"])
	}
	if me["last_login_at"] == nil {
		t.Error("Expected login to be recorded")
	}

	// Refresh rotates the pair
	w = testutil.DoRequest(router, "POST", "/api/v1/auth/refresh",
		map[string]interface{}{"refresh_token": tokens["refresh_token"].(string)}, "")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}
	resp = testutil.ParseResponse(w)
	rotated := resp["data"].(map[string]interface{})
	if rotated["access_token"].(string) == "" {
		t.Error("Expected a fresh access token")
	}
}

func TestLoginDisabledAccount(t *testing.T) {
	db, router := setupAuthTest(t)
	user := seedLoginUser(t, db, "gone@test.com", "s3cret", nil)
	db.Model(user).Update("status", "disabled")

	w := testutil.DoRequest(router, "POST", "/api/v1/auth/login",
		map[string]interface{}{"email": "gone@test.com", "password": "s3cret"}, "")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("Expected 401 for disabled account, got %d: %s", w.Code, w.Body.String())
	}
}

func TestListUsersForAssignment(t *testing.T) {
	db, router := setupAuthTest(t)
	testutil.SeedTestUser(t, db, "u-a", "Active A", []string{"Design User"})
	inactive := testutil.SeedTestUser(t, db, "u-b", "Inactive B", nil)
	db.Model(inactive).Update("status", "disabled")

	w := testutil.DoRequest(router, "GET", "/api/v1/users", nil, testutil.DefaultTestToken())
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}
	resp := testutil.ParseResponse(w)
	users := resp["data"].(map[string]interface{})["items"].([]interface{})
	if len(users) != 1 {
		t.Fatalf("Expected only active users, got %d", len(users))
	}
	if users[0].(map[string]interface{})["id"] != "u-a" {
		t.Errorf("Expected u-a, got %v", users[0])
	}
}

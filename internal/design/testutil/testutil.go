package testutil

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/axelgear/design-integration/internal/design/entity"
	"github.com/axelgear/design-integration/internal/middleware"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	TestSchema = "test_design"
	JWTSecret  = "design-integration-jwt-secret-2025"
)

// projectRoot returns the project root directory by looking for go.mod
func projectRoot() string {
	_, filename, _, _ := runtime.Caller(0)
	dir := filepath.Dir(filename)
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return ""
}

// loadEnv loads .env from the project root
func loadEnv() {
	root := projectRoot()
	if root != "" {
		godotenv.Load(filepath.Join(root, ".env"))
	}
}

// SetupTestDB creates a test database connection using a dedicated test schema.
// Each test gets an isolated schema that is cleaned up after the test.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	loadEnv()

	host := getEnv("DB_HOST", "127.0.0.1")
	port := getEnv("DB_PORT", "5432")
	user := getEnv("DB_USER", "design")
	password := getEnv("DB_PASSWORD", "design123")
	dbname := getEnv("DB_NAME", "design_integration")

	baseDSN := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		host, port, user, password, dbname)

	schemaName := fmt.Sprintf("%s_%d", TestSchema, time.Now().UnixNano()%1000000)

	// First: create schema using a temporary connection
	setupDB, err := gorm.Open(postgres.Open(baseDSN), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("Failed to connect to database for schema setup: %v", err)
	}
	setupDB.Exec(fmt.Sprintf("CREATE SCHEMA IF NOT EXISTS %s", schemaName))
	sqlSetup, _ := setupDB.DB()
	sqlSetup.Close()

	// Second: open connection with search_path in DSN so ALL pooled connections use test schema
	testDSN := fmt.Sprintf("%s search_path=%s", baseDSN, schemaName)
	db, err := gorm.Open(postgres.Open(testDSN), &gorm.Config{
		Logger:                                   logger.Default.LogMode(logger.Silent),
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}

	err = db.AutoMigrate(
		&entity.User{},
		&entity.SalesOrder{},
		&entity.SalesOrderItem{},
		&entity.Item{},
		&entity.BOM{},
		&entity.DesignRequest{},
		&entity.DesignRequestItem{},
		&entity.DesignVersion{},
		&entity.StageTransition{},
		&entity.Comment{},
	)
	if err != nil {
		t.Fatalf("Failed to migrate test tables: %v", err)
	}

	t.Cleanup(func() {
		sqlDB, _ := db.DB()
		if sqlDB != nil {
			sqlDB.Close()
		}
		cleanDB, cleanErr := gorm.Open(postgres.Open(baseDSN), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		})
		if cleanErr == nil {
			cleanDB.Exec(fmt.Sprintf("DROP SCHEMA IF EXISTS %s CASCADE", schemaName))
			sqlClean, _ := cleanDB.DB()
			if sqlClean != nil {
				sqlClean.Close()
			}
		}
	})

	return db
}

// SetupRouter creates a gin test router
func SetupRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(gin.Recovery())
	return r
}

// AuthGroup creates an API group with JWT auth middleware for testing
func AuthGroup(r *gin.Engine, path string) *gin.RouterGroup {
	return r.Group(path, middleware.JWTAuth(JWTSecret))
}

// GenerateTestToken creates a valid JWT token for testing
func GenerateTestToken(userID, name, email string, roles []string) string {
	if roles == nil {
		roles = []string{}
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"sub":   userID,
		"uid":   userID,
		"name":  name,
		"email": email,
		"roles": roles,
		"iss":   "design-integration",
		"iat":   now.Unix(),
		"exp":   now.Add(24 * time.Hour).Unix(),
		"jti":   fmt.Sprintf("test-jti-%d", now.UnixNano()),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, _ := token.SignedString([]byte(JWTSecret))
	return tokenString
}

// DefaultTestToken returns a token for an admin test user
func DefaultTestToken() string {
	return GenerateTestToken(
		"test-user-001",
		"Test Admin",
		"admin@test.com",
		[]string{"System Manager"},
	)
}

// DoRequest executes an HTTP request against the test router
func DoRequest(r *gin.Engine, method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	var reqBody *bytes.Buffer
	if body != nil {
		jsonBytes, _ := json.Marshal(body)
		reqBody = bytes.NewBuffer(jsonBytes)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req, _ := http.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// ParseResponse parses the JSON response body into a handler.Response-like map
func ParseResponse(w *httptest.ResponseRecorder) map[string]interface{} {
	var result map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &result)
	return result
}

// SeedTestUser creates a user with the given workflow roles
func SeedTestUser(t *testing.T, db *gorm.DB, id, name string, roles []string) *entity.User {
	t.Helper()
	user := &entity.User{
		ID:           id,
		Username:     "user_" + id,
		Name:         name,
		Email:        id + "@test.com",
		PasswordHash: "x",
		Roles:        roles,
		Status:       "active",
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("Failed to seed test user: %v", err)
	}
	return user
}

// SeedSalesOrder creates a submitted sales order with fabricated equipment
// lines and matching item masters.
func SeedSalesOrder(t *testing.T, db *gorm.DB, orderID string, lines int) *entity.SalesOrder {
	t.Helper()
	now := time.Now()
	order := &entity.SalesOrder{
		ID:           orderID,
		Customer:     "CUST-001",
		CustomerName: "Test Customer",
		DocStatus:    entity.DocStatusSubmitted,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := db.Create(order).Error; err != nil {
		t.Fatalf("Failed to seed sales order: %v", err)
	}

	for i := 1; i <= lines; i++ {
		code := fmt.Sprintf("FAB-%s-%02d", orderID, i)
		master := &entity.Item{
			Code:      code,
			Name:      "Fabricated Item " + code,
			ItemGroup: entity.FabricatedEquipmentGroup,
			StockUOM:  "Nos",
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := db.Create(master).Error; err != nil {
			t.Fatalf("Failed to seed item master: %v", err)
		}

		line := &entity.SalesOrderItem{
			ID:       fmt.Sprintf("%s-row-%d", orderID, i),
			OrderID:  orderID,
			Idx:      i,
			ItemCode: code,
			ItemName: master.Name,
			Qty:      5,
			UOM:      "Nos",
		}
		if err := db.Create(line).Error; err != nil {
			t.Fatalf("Failed to seed sales order item: %v", err)
		}
	}

	return order
}

// SeedRequestWithItem creates a design request with one workflow item.
func SeedRequestWithItem(t *testing.T, db *gorm.DB, requestID, itemID string) (*entity.DesignRequest, *entity.DesignRequestItem) {
	t.Helper()
	now := time.Now()
	request := &entity.DesignRequest{
		ID:           requestID,
		SalesOrderID: "SO-TEST",
		Customer:     "CUST-001",
		CustomerName: "Test Customer",
		Status:       entity.RequestStatusOpen,
		RequestDate:  &now,
		CreatedBy:    "test-user-001",
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := db.Create(request).Error; err != nil {
		t.Fatalf("Failed to seed design request: %v", err)
	}

	item := &entity.DesignRequestItem{
		ID:             itemID,
		RequestID:      requestID,
		SalesOrderID:   "SO-TEST",
		ItemCode:       "FAB-TEST-01",
		ItemName:       "Fabricated Item",
		Qty:            1,
		UOM:            "Nos",
		DesignStatus:   "Pending",
		ApprovalStatus: "Pending",
		RequestDate:    &now,
		CreatedBy:      "test-user-001",
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := db.Create(item).Error; err != nil {
		t.Fatalf("Failed to seed design request item: %v", err)
	}

	return request, item
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

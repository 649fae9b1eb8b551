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

func setupDashboardTest(t *testing.T) (*gorm.DB, *gin.Engine) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	router := testutil.SetupRouter()

	repos := repository.NewRepositories(db)
	cfg := &config.Config{}
	cfg.JWT.Secret = testutil.JWTSecret
	services := service.NewServices(db, repos, nil, cfg, zap.NewNop())
	h := NewDashboardHandler(services.Dashboard)

	api := testutil.AuthGroup(router, "/api/v1")
	api.GET("/dashboard", h.Get)
	api.GET("/dashboard/overdue", h.Overdue)

	return db, router
}

func TestDashboardStats(t *testing.T) {
	db, router := setupDashboardTest(t)
	testutil.SeedRequestWithItem(t, db, "SO-TEST-1", "DES-IT-000001")
	request2, item2 := testutil.SeedRequestWithItem(t, db, "SO-TEST-2", "DES-IT-000002")
	db.Model(&entity.DesignRequest{}).Where("id = ?", request2.ID).Updates(map[string]interface{}{
		"status":      entity.RequestStatusClosed,
		"assigned_to": "test-user-001",
	})
	db.Model(item2).Update("design_status", "Completed")

	token := testutil.DefaultTestToken()
	w := testutil.DoRequest(router, "GET", "/api/v1/dashboard", nil, token)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}
	resp := testutil.ParseResponse(w)
	data := resp["data"].(map[string]interface{})
	stats := data["stats"].(map[string]interface{})

	if stats["total_requests"].(float64) != 2 {
		t.Errorf("Expected 2 total requests, got %v", stats["total_requests"])
	}
	if stats["open_requests"].(float64) != 1 || stats["closed_requests"].(float64) != 1 {
		t.Errorf("Expected 1 open / 1 closed, got %v/%v", stats["open_requests"], stats["closed_requests"])
	}
	if stats["my_requests"].(float64) != 1 {
		t.Errorf("Expected 1 assigned to caller, got %v", stats["my_requests"])
	}
	if stats["total_items"].(float64) != 2 {
		t.Errorf("Expected 2 items, got %v", stats["total_items"])
	}
	if stats["pending_items"].(float64) != 1 || stats["completed_items"].(float64) != 1 {
		t.Errorf("Expected 1 pending / 1 completed, got %v/%v", stats["pending_items"], stats["completed_items"])
	}

	recent := data["recent_items"].([]interface{})
	if len(recent) != 2 {
		t.Errorf("Expected 2 recent items, got %d", len(recent))
	}
	stageChart := data["stage_chart"].([]interface{})
	if len(stageChart) != 2 {
		t.Errorf("Expected 2 stage buckets, got %d", len(stageChart))
	}
}

func TestDashboardOverdue(t *testing.T) {
	db, router := setupDashboardTest(t)
	_, item := testutil.SeedRequestWithItem(t, db, "SO-TEST-1", "DES-IT-000001")

	// Backdate past the threshold
	old := time.Now().AddDate(0, 0, -(service.OverdueAfterDays + 3))
	db.Model(item).Update("created_at", old)

	// A fresh item on the same request stays off the list
	testutil.SeedRequestWithItem(t, db, "SO-TEST-2", "DES-IT-000002")

	token := testutil.DefaultTestToken()
	w := testutil.DoRequest(router, "GET", "/api/v1/dashboard/overdue", nil, token)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}
	resp := testutil.ParseResponse(w)
	items := resp["data"].(map[string]interface{})["items"].([]interface{})
	if len(items) != 1 {
		t.Fatalf("Expected 1 overdue item, got %d", len(items))
	}
	row := items[0].(map[string]interface{})
	if row["item_id"] != item.ID {
		t.Errorf("Expected %s, got %v", item.ID, row["item_id"])
	}
	if row["days_open"].(float64) < float64(service.OverdueAfterDays) {
		t.Errorf("Expected days open past threshold, got %v", row["days_open"])
	}
}

package handler

import (
	"net/http"
	"testing"

	"github.com/axelgear/design-integration/internal/config"
	"github.com/axelgear/design-integration/internal/design/entity"
	"github.com/axelgear/design-integration/internal/design/repository"
	"github.com/axelgear/design-integration/internal/design/service"
	"github.com/axelgear/design-integration/internal/design/testutil"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupRequestTest(t *testing.T) (*gorm.DB, *gin.Engine) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	router := testutil.SetupRouter()

	repos := repository.NewRepositories(db)
	cfg := &config.Config{}
	cfg.JWT.Secret = testutil.JWTSecret
	services := service.NewServices(db, repos, nil, cfg, zap.NewNop())
	h := NewRequestHandler(services.Request)

	api := testutil.AuthGroup(router, "/api/v1")
	api.GET("/sales-orders/:orderId/eligible-items", h.EligibleItems)
	api.POST("/sales-orders/:orderId/design-requests", h.CreateFromOrder)
	api.GET("/design-requests", h.List)
	api.GET("/design-requests/:id", h.Get)
	api.POST("/design-requests/:id/close", h.Close)
	api.POST("/design-requests/:id/reopen", h.Reopen)
	api.POST("/design-requests/:id/assign", h.Assign)
	api.POST("/design-requests/:id/comments", h.AddComment)

	return db, router
}

func firstLineID(t *testing.T, db *gorm.DB, orderID string) string {
	t.Helper()
	var line entity.SalesOrderItem
	if err := db.Where("order_id = ?", orderID).Order("idx").First(&line).Error; err != nil {
		t.Fatalf("Failed to load order line: %v", err)
	}
	return line.ID
}

func TestEligibleItemsAndQuantityTracking(t *testing.T) {
	db, router := setupRequestTest(t)
	testutil.SeedSalesOrder(t, db, "SO-00042", 2)
	token := testutil.DefaultTestToken()

	w := testutil.DoRequest(router, "GET", "/api/v1/sales-orders/SO-00042/eligible-items", nil, token)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}
	resp := testutil.ParseResponse(w)
	items := resp["data"].(map[string]interface{})["items"].([]interface{})
	if len(items) != 2 {
		t.Fatalf("Expected 2 eligible lines, got %d", len(items))
	}
	line := items[0].(map[string]interface{})
	if line["remaining_qty"].(float64) != 5 {
		t.Errorf("Expected remaining 5, got %v", line["remaining_qty"])
	}

	// Consume 2 of the first line, remaining drops to 3
	lineID := firstLineID(t, db, "SO-00042")
	w = testutil.DoRequest(router, "POST", "/api/v1/sales-orders/SO-00042/design-requests",
		map[string]interface{}{"items": []map[string]interface{}{
			{"sales_order_item": lineID, "qty": 2},
		}}, token)
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", w.Code, w.Body.String())
	}

	w = testutil.DoRequest(router, "GET", "/api/v1/sales-orders/SO-00042/eligible-items", nil, token)
	resp = testutil.ParseResponse(w)
	items = resp["data"].(map[string]interface{})["items"].([]interface{})
	for _, raw := range items {
		l := raw.(map[string]interface{})
		if l["sales_order_item"] == lineID && l["remaining_qty"].(float64) != 3 {
			t.Errorf("Expected remaining 3 after consumption, got %v", l["remaining_qty"])
		}
	}

	// Over-asking rejects
	w = testutil.DoRequest(router, "POST", "/api/v1/sales-orders/SO-00042/design-requests",
		map[string]interface{}{"items": []map[string]interface{}{
			{"sales_order_item": lineID, "qty": 10},
		}}, token)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400 for excess qty, got %d: %s", w.Code, w.Body.String())
	}
}

func TestCreateFromOrderNaming(t *testing.T) {
	db, router := setupRequestTest(t)
	testutil.SeedSalesOrder(t, db, "SO-00042", 1)
	token := testutil.DefaultTestToken()
	lineID := firstLineID(t, db, "SO-00042")

	w := testutil.DoRequest(router, "POST", "/api/v1/sales-orders/SO-00042/design-requests",
		map[string]interface{}{"items": []map[string]interface{}{
			{"sales_order_item": lineID, "qty": 1},
		}}, token)
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", w.Code, w.Body.String())
	}
	resp := testutil.ParseResponse(w)
	data := resp["data"].(map[string]interface{})
	if data["id"] != "SO-00042-1" {
		t.Errorf("Expected request id SO-00042-1, got %v", data["id"])
	}
	items := data["items"].([]interface{})
	if len(items) != 1 {
		t.Fatalf("Expected 1 request item, got %d", len(items))
	}
	item := items[0].(map[string]interface{})
	if item["id"] != "DES-IT-000001" {
		t.Errorf("Expected item id DES-IT-000001, got %v", item["id"])
	}
	if item["design_status"] != "Pending" || item["approval_status"] != "Pending" {
		t.Errorf("Expected Pending statuses, got %v/%v", item["design_status"], item["approval_status"])
	}

	// Second request against the same order takes the next suffix
	w = testutil.DoRequest(router, "POST", "/api/v1/sales-orders/SO-00042/design-requests",
		map[string]interface{}{"items": []map[string]interface{}{
			{"sales_order_item": lineID, "qty": 1},
		}}, token)
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", w.Code, w.Body.String())
	}
	resp = testutil.ParseResponse(w)
	if resp["data"].(map[string]interface{})["id"] != "SO-00042-2" {
		t.Errorf("Expected SO-00042-2, got %v", resp["data"].(map[string]interface{})["id"])
	}
}

func TestCreateRejectsDraftOrder(t *testing.T) {
	db, router := setupRequestTest(t)
	testutil.SeedSalesOrder(t, db, "SO-00099", 1)
	db.Model(&entity.SalesOrder{}).Where("id = ?", "SO-00099").
		Update("doc_status", entity.DocStatusDraft)
	token := testutil.DefaultTestToken()
	lineID := firstLineID(t, db, "SO-00099")

	w := testutil.DoRequest(router, "GET", "/api/v1/sales-orders/SO-00099/eligible-items", nil, token)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400 for unsubmitted order, got %d: %s", w.Code, w.Body.String())
	}

	w = testutil.DoRequest(router, "POST", "/api/v1/sales-orders/SO-00099/design-requests",
		map[string]interface{}{"items": []map[string]interface{}{
			{"sales_order_item": lineID, "qty": 1},
		}}, token)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400 for unsubmitted order, got %d: %s", w.Code, w.Body.String())
	}
}

func TestRequestCloseReopen(t *testing.T) {
	db, router := setupRequestTest(t)
	request, _ := testutil.SeedRequestWithItem(t, db, "SO-TEST-1", "DES-IT-000001")
	token := testutil.DefaultTestToken()

	// Remark is mandatory
	w := testutil.DoRequest(router, "POST", "/api/v1/design-requests/"+request.ID+"/close",
		map[string]interface{}{}, token)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400 without remark, got %d: %s", w.Code, w.Body.String())
	}

	// Read-only roles cannot close
	viewer := testutil.GenerateTestToken("u-view", "Viewer", "view@test.com", []string{"Sales User"})
	w = testutil.DoRequest(router, "POST", "/api/v1/design-requests/"+request.ID+"/close",
		map[string]interface{}{"remark": "done early"}, viewer)
	if w.Code != http.StatusForbidden {
		t.Fatalf("Expected 403 for viewer, got %d: %s", w.Code, w.Body.String())
	}

	w = testutil.DoRequest(router, "POST", "/api/v1/design-requests/"+request.ID+"/close",
		map[string]interface{}{"remark": "done early"}, token)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var stored entity.DesignRequest
	db.First(&stored, "id = ?", request.ID)
	if stored.Status != entity.RequestStatusClosed || stored.ActualCompletion == nil {
		t.Errorf("Expected closed with completion stamp, got %s/%v", stored.Status, stored.ActualCompletion)
	}

	// The remark lands in the comment stream
	var comments int64
	db.Model(&entity.Comment{}).Where("request_id = ?", request.ID).Count(&comments)
	if comments != 1 {
		t.Errorf("Expected 1 comment, got %d", comments)
	}

	// Reopen clears the completion stamp
	w = testutil.DoRequest(router, "POST", "/api/v1/design-requests/"+request.ID+"/reopen",
		map[string]interface{}{"remark": "customer change"}, token)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}
	db.First(&stored, "id = ?", request.ID)
	if stored.Status != entity.RequestStatusOpen || stored.ActualCompletion != nil {
		t.Errorf("Expected reopened without completion stamp, got %s/%v", stored.Status, stored.ActualCompletion)
	}
}

func TestRequestActionsBlockedAfterSubmit(t *testing.T) {
	db, router := setupRequestTest(t)
	request, _ := testutil.SeedRequestWithItem(t, db, "SO-TEST-1", "DES-IT-000001")
	db.Model(&entity.DesignRequest{}).Where("id = ?", request.ID).
		Update("doc_status", entity.DocStatusSubmitted)
	token := testutil.DefaultTestToken()

	w := testutil.DoRequest(router, "POST", "/api/v1/design-requests/"+request.ID+"/close",
		map[string]interface{}{"remark": "late"}, token)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400 for submitted request, got %d: %s", w.Code, w.Body.String())
	}

	w = testutil.DoRequest(router, "POST", "/api/v1/design-requests/"+request.ID+"/comments",
		map[string]interface{}{"content": "note"}, token)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400 for submitted request, got %d: %s", w.Code, w.Body.String())
	}
}

func TestRequestAssignAndDetails(t *testing.T) {
	db, router := setupRequestTest(t)
	request, _ := testutil.SeedRequestWithItem(t, db, "SO-TEST-1", "DES-IT-000001")
	testutil.SeedTestUser(t, db, "u-designer", "Designer", []string{"Design User"})
	token := testutil.DefaultTestToken()

	w := testutil.DoRequest(router, "POST", "/api/v1/design-requests/"+request.ID+"/assign",
		map[string]interface{}{"user_id": "u-designer"}, token)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var stored entity.DesignRequest
	db.First(&stored, "id = ?", request.ID)
	if stored.AssignedTo != "u-designer" || stored.AssignedDate == nil {
		t.Errorf("Expected assignment fields, got %s/%v", stored.AssignedTo, stored.AssignedDate)
	}

	w = testutil.DoRequest(router, "POST", "/api/v1/design-requests/"+request.ID+"/comments",
		map[string]interface{}{"content": "kickoff on monday"}, token)
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", w.Code, w.Body.String())
	}

	w = testutil.DoRequest(router, "GET", "/api/v1/design-requests/"+request.ID, nil, token)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}
	resp := testutil.ParseResponse(w)
	data := resp["data"].(map[string]interface{})
	req := data["request"].(map[string]interface{})
	if req["id"] != request.ID {
		t.Errorf("Expected request %s, got %v", request.ID, req["id"])
	}
	items := req["items"].([]interface{})
	if len(items) != 1 {
		t.Errorf("Expected preloaded items, got %d", len(items))
	}
	comments := data["comments"].([]interface{})
	if len(comments) != 1 {
		t.Errorf("Expected 1 comment, got %d", len(comments))
	}
}

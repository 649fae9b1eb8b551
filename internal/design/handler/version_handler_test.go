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

func setupVersionTest(t *testing.T) (*gorm.DB, *gin.Engine) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	router := testutil.SetupRouter()

	repos := repository.NewRepositories(db)
	cfg := &config.Config{}
	cfg.JWT.Secret = testutil.JWTSecret
	services := service.NewServices(db, repos, nil, cfg, zap.NewNop())
	h := NewVersionHandler(services.Version)

	api := testutil.AuthGroup(router, "/api/v1")
	api.GET("/design-versions/meta", h.Meta)
	api.GET("/design-items/:id/versions", h.List)
	api.POST("/design-items/:id/versions", h.Create)
	api.GET("/design-items/:id/versions/next-tag", h.NextTag)
	api.DELETE("/design-items/:id/versions/:versionId", h.Delete)

	return db, router
}

func TestVersionCreateDefaults(t *testing.T) {
	db, router := setupVersionTest(t)
	_, item := testutil.SeedRequestWithItem(t, db, "SO-TEST-1", "DES-IT-000001")
	db.Model(item).Update("revision_reason", "weld seam moved")
	token := testutil.DefaultTestToken()

	// Empty submission: tag and description are derived
	w := testutil.DoRequest(router, "POST", "/api/v1/design-items/"+item.ID+"/versions",
		map[string]interface{}{}, token)
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", w.Code, w.Body.String())
	}
	resp := testutil.ParseResponse(w)
	data := resp["data"].(map[string]interface{})
	if data["version_tag"] != "V1" {
		t.Errorf("Expected V1, got %v", data["version_tag"])
	}
	if data["description"] != "weld seam moved" {
		t.Errorf("Expected description from revision reason, got %v", data["description"])
	}
	if data["posting_date"] == nil {
		t.Error("Expected posting date to default")
	}

	// The pending revision reason is consumed by the new version
	var stored entity.DesignRequestItem
	db.First(&stored, "id = ?", item.ID)
	if stored.RevisionReason != "" {
		t.Errorf("Expected revision reason cleared, got %q", stored.RevisionReason)
	}

	// Parent is forced from the path, payload cannot override it
	var version entity.DesignVersion
	db.First(&version, "id = ?", data["id"])
	if version.ItemID != item.ID {
		t.Errorf("Expected parent %s, got %s", item.ID, version.ItemID)
	}
}

func TestVersionTagSequenceSurvivesDeletion(t *testing.T) {
	db, router := setupVersionTest(t)
	_, item := testutil.SeedRequestWithItem(t, db, "SO-TEST-1", "DES-IT-000001")
	token := testutil.DefaultTestToken()
	base := "/api/v1/design-items/" + item.ID + "/versions"

	testutil.DoRequest(router, "POST", base, map[string]interface{}{}, token)
	w := testutil.DoRequest(router, "POST", base, map[string]interface{}{}, token)
	resp := testutil.ParseResponse(w)
	v2 := resp["data"].(map[string]interface{})
	if v2["version_tag"] != "V2" {
		t.Fatalf("Expected V2, got %v", v2["version_tag"])
	}

	// Explicit duplicate tag conflicts
	w = testutil.DoRequest(router, "POST", base,
		map[string]interface{}{"version_tag": "V2"}, token)
	if w.Code != http.StatusConflict {
		t.Fatalf("Expected 409 for duplicate tag, got %d: %s", w.Code, w.Body.String())
	}

	// Deleting V2 must not recycle its tag
	w = testutil.DoRequest(router, "DELETE", base+"/"+v2["id"].(string), nil, token)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}
	w = testutil.DoRequest(router, "GET", base+"/next-tag", nil, token)
	resp = testutil.ParseResponse(w)
	// V2 existed, so the next free tag stays V2 after deletion only if derived
	// from the max surviving tag; with V1 left the max is 1
	if tag := resp["data"].(map[string]interface{})["version_tag"]; tag != "V2" {
		t.Errorf("Expected next tag V2 after deleting V2, got %v", tag)
	}
}

func TestVersionTimelineOrderAndLabels(t *testing.T) {
	db, router := setupVersionTest(t)
	_, item := testutil.SeedRequestWithItem(t, db, "SO-TEST-1", "DES-IT-000001")
	token := testutil.DefaultTestToken()
	base := "/api/v1/design-items/" + item.ID + "/versions"

	testutil.DoRequest(router, "POST", base,
		map[string]interface{}{"file_url": "/files/layout.pdf", "file_name": "layout.pdf"}, token)
	testutil.DoRequest(router, "POST", base,
		map[string]interface{}{"file_url": "/files/render.png", "file_name": "render.png"}, token)
	testutil.DoRequest(router, "POST", base,
		map[string]interface{}{"file_url": "/files/profile.dxf", "file_name": "profile.dxf"}, token)

	w := testutil.DoRequest(router, "GET", base, nil, token)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}
	resp := testutil.ParseResponse(w)
	cards := resp["data"].(map[string]interface{})["items"].([]interface{})
	if len(cards) != 3 {
		t.Fatalf("Expected 3 timeline cards, got %d", len(cards))
	}

	first := cards[0].(map[string]interface{})
	if first["display_label"] != "V1" {
		t.Errorf("Expected oldest card labelled V1, got %v", first["display_label"])
	}
	if first["file_kind"] != "pdf" {
		t.Errorf("Expected pdf kind, got %v", first["file_kind"])
	}
	second := cards[1].(map[string]interface{})
	if second["file_kind"] != "image" {
		t.Errorf("Expected image kind, got %v", second["file_kind"])
	}
	third := cards[2].(map[string]interface{})
	if third["file_kind"] != "design-file" {
		t.Errorf("Expected design-file kind, got %v", third["file_kind"])
	}
}

func TestVersionDeleteOwnership(t *testing.T) {
	db, router := setupVersionTest(t)
	_, itemA := testutil.SeedRequestWithItem(t, db, "SO-TEST-1", "DES-IT-000001")
	itemB := &entity.DesignRequestItem{
		ID: "DES-IT-000002", RequestID: "SO-TEST-1-1", ItemCode: "FAB-B",
		DesignStatus: "Pending", ApprovalStatus: "Pending",
	}
	db.Create(itemB)
	token := testutil.DefaultTestToken()

	w := testutil.DoRequest(router, "POST", "/api/v1/design-items/"+itemA.ID+"/versions",
		map[string]interface{}{}, token)
	resp := testutil.ParseResponse(w)
	versionID := resp["data"].(map[string]interface{})["id"].(string)

	// A version cannot be deleted through another item's path
	w = testutil.DoRequest(router, "DELETE",
		"/api/v1/design-items/"+itemB.ID+"/versions/"+versionID, nil, token)
	if w.Code != http.StatusNotFound {
		t.Fatalf("Expected 404 for foreign version, got %d: %s", w.Code, w.Body.String())
	}

	var count int64
	db.Model(&entity.DesignVersion{}).Where("design_request_item_id = ?", itemA.ID).Count(&count)
	if count != 1 {
		t.Errorf("Expected version to survive, count %d", count)
	}
}

func TestVersionMetaOmitsParentField(t *testing.T) {
	_, router := setupVersionTest(t)
	token := testutil.DefaultTestToken()

	w := testutil.DoRequest(router, "GET", "/api/v1/design-versions/meta", nil, token)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}
	resp := testutil.ParseResponse(w)
	fields := resp["data"].(map[string]interface{})["fields"].([]interface{})
	for _, f := range fields {
		field := f.(map[string]interface{})
		if field["fieldname"] == "design_request_item" {
			t.Error("Parent reference must not appear in the dialog schema")
		}
	}
	first := fields[0].(map[string]interface{})
	if first["fieldname"] != "version_tag" || first["read_only"] != true {
		t.Errorf("Expected read-only version_tag first, got %v", first)
	}
}

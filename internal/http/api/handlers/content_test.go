package handlers

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sreejitadass/ContentCrafter/internal/models"
	"gorm.io/gorm"
)

func newContentRouter(db *gorm.DB) *gin.Engine {
	engine := gin.New()
	handler := NewContentHandler(db)
	engine.POST("/api/save-generated-content", handler.Save)
	engine.GET("/api/get-generated-content-history", handler.History)
	return engine
}

func TestSave_PersistsRow(t *testing.T) {
	db := openTestDB(t)
	engine := newContentRouter(db)

	rec := performJSON(t, engine, http.MethodPost, "/api/save-generated-content", gin.H{
		"userId":      "user-1",
		"contentType": "blog",
		"prompt":      "weekend hiking",
		"content":     "# Hiking\n\nSome *markdown* body.",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	out := decodeJSON(t, rec)
	if out["contentType"] != "blog" || out["userId"] != "user-1" {
		t.Fatalf("unexpected response %v", out)
	}

	var row models.GeneratedContent
	if errFind := db.First(&row).Error; errFind != nil {
		t.Fatalf("find row: %v", errFind)
	}
	if row.Content != "# Hiking\n\nSome *markdown* body." {
		t.Fatalf("content must be stored verbatim, got %q", row.Content)
	}
}

func TestSave_InvalidPayload(t *testing.T) {
	db := openTestDB(t)
	engine := newContentRouter(db)

	cases := []gin.H{
		{"userId": "", "contentType": "blog", "prompt": "p", "content": "c"},
		{"userId": "u", "contentType": "", "prompt": "p", "content": "c"},
		{"userId": "u", "contentType": "blog", "prompt": "", "content": "c"},
		{"userId": "u", "contentType": "blog", "prompt": "p", "content": "   "},
	}
	for _, body := range cases {
		rec := performJSON(t, engine, http.MethodPost, "/api/save-generated-content", body)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400 for %v, got %d", body, rec.Code)
		}
	}

	var count int64
	if errCount := db.Model(&models.GeneratedContent{}).Count(&count).Error; errCount != nil {
		t.Fatalf("count: %v", errCount)
	}
	if count != 0 {
		t.Fatalf("rejected requests must not create rows, got %d", count)
	}
}

func TestHistory_NewestFirst(t *testing.T) {
	db := openTestDB(t)
	engine := newContentRouter(db)

	base := time.Now().UTC().Add(-time.Hour)
	rows := []models.GeneratedContent{
		{UserID: "user-1", ContentType: "blog", Prompt: "first", Content: "c1", CreatedAt: base},
		{UserID: "user-1", ContentType: "news", Prompt: "second", Content: "c2", CreatedAt: base.Add(time.Minute)},
		{UserID: "user-2", ContentType: "blog", Prompt: "other", Content: "c3", CreatedAt: base.Add(2 * time.Minute)},
	}
	for i := range rows {
		if errCreate := db.Create(&rows[i]).Error; errCreate != nil {
			t.Fatalf("seed row: %v", errCreate)
		}
	}

	rec := performJSON(t, engine, http.MethodGet, "/api/get-generated-content-history?userId=user-1", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var out []map[string]any
	if errDecode := json.Unmarshal(rec.Body.Bytes(), &out); errDecode != nil {
		t.Fatalf("decode: %v", errDecode)
	}
	if len(out) != 2 {
		t.Fatalf("expected 2 rows for user-1, got %d", len(out))
	}
	if out[0]["prompt"] != "second" || out[1]["prompt"] != "first" {
		t.Fatalf("expected newest first, got %v", out)
	}
}

func TestHistory_EmptyIsArray(t *testing.T) {
	db := openTestDB(t)
	engine := newContentRouter(db)

	rec := performJSON(t, engine, http.MethodGet, "/api/get-generated-content-history?userId=nobody", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var out []map[string]any
	if errDecode := json.Unmarshal(rec.Body.Bytes(), &out); errDecode != nil {
		t.Fatalf("expected a JSON array, got %q", rec.Body.String())
	}
	if len(out) != 0 {
		t.Fatalf("expected empty history, got %v", out)
	}
}

func TestHistory_MissingUserID(t *testing.T) {
	db := openTestDB(t)
	engine := newContentRouter(db)

	rec := performJSON(t, engine, http.MethodGet, "/api/get-generated-content-history", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

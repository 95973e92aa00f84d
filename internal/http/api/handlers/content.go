package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/sreejitadass/ContentCrafter/internal/models"
)

// ContentHandler manages generated content persistence endpoints.
type ContentHandler struct {
	db *gorm.DB // Database handle.
}

// NewContentHandler constructs a ContentHandler.
func NewContentHandler(db *gorm.DB) *ContentHandler {
	return &ContentHandler{db: db}
}

// saveContentRequest defines the request body for saving generated content.
type saveContentRequest struct {
	UserID      string `json:"userId"`
	ContentType string `json:"contentType"`
	Prompt      string `json:"prompt"`
	Content     string `json:"content"`
}

// Save appends one generated content row to the user's history.
// The content text is stored verbatim, markdown and all.
func (h *ContentHandler) Save(c *gin.Context) {
	var body saveContentRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload"})
		return
	}
	userID := strings.TrimSpace(body.UserID)
	contentType := strings.TrimSpace(body.ContentType)
	prompt := strings.TrimSpace(body.Prompt)
	content := body.Content
	if userID == "" || contentType == "" || prompt == "" || strings.TrimSpace(content) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload"})
		return
	}
	if !requireSubject(c, userID) {
		return
	}

	row := models.GeneratedContent{
		UserID:      userID,
		ContentType: contentType,
		Prompt:      prompt,
		Content:     content,
		CreatedAt:   time.Now().UTC(),
	}
	if errCreate := h.db.WithContext(c.Request.Context()).Create(&row).Error; errCreate != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal Server Error"})
		return
	}
	c.JSON(http.StatusOK, contentJSON(row))
}

// History returns the user's generated content, newest first.
func (h *ContentHandler) History(c *gin.Context) {
	userID := strings.TrimSpace(c.Query("userId"))
	if userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return
	}
	if !requireSubject(c, userID) {
		return
	}

	var rows []models.GeneratedContent
	if errFind := h.db.WithContext(c.Request.Context()).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Find(&rows).Error; errFind != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal Server Error"})
		return
	}

	out := make([]gin.H, 0, len(rows))
	for _, row := range rows {
		out = append(out, contentJSON(row))
	}
	c.JSON(http.StatusOK, out)
}

// contentJSON shapes a content row for responses.
func contentJSON(row models.GeneratedContent) gin.H {
	return gin.H{
		"id":          row.ID,
		"userId":      row.UserID,
		"contentType": row.ContentType,
		"prompt":      row.Prompt,
		"content":     row.Content,
		"createdAt":   row.CreatedAt,
	}
}

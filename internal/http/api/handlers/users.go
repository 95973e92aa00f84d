package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/sreejitadass/ContentCrafter/internal/models"
	"github.com/sreejitadass/ContentCrafter/internal/points"
)

// SessionSubjectKey is the gin context key holding the verified session subject.
const SessionSubjectKey = "sessionSubject"

// UserHandler manages user account and point balance endpoints.
type UserHandler struct {
	db            *gorm.DB // Database handle.
	initialPoints int64    // Points granted on first creation.
}

// NewUserHandler constructs a UserHandler.
func NewUserHandler(db *gorm.DB, initialPoints int64) *UserHandler {
	return &UserHandler{db: db, initialPoints: initialPoints}
}

// upsertUserRequest defines the request body for user provisioning.
type upsertUserRequest struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
	Name   string `json:"name"`
}

// CreateOrUpdate provisions a user row, creating it with the initial point
// grant or refreshing profile fields on repeat sign-in. The balance is never
// reset once the row exists.
func (h *UserHandler) CreateOrUpdate(c *gin.Context) {
	var body upsertUserRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload"})
		return
	}
	userID := strings.TrimSpace(body.UserID)
	email := strings.TrimSpace(body.Email)
	name := strings.TrimSpace(body.Name)
	if userID == "" || email == "" || name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload"})
		return
	}
	if !requireSubject(c, userID) {
		return
	}

	now := time.Now().UTC()
	user := models.User{
		ExternalID: userID,
		Email:      email,
		Name:       name,
		Points:     h.initialPoints,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	errUpsert := h.db.WithContext(c.Request.Context()).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "external_id"}},
			DoUpdates: clause.Assignments(map[string]any{
				"email":      email,
				"name":       name,
				"updated_at": now,
			}),
		}).
		Create(&user).Error
	if errUpsert != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal Server Error"})
		return
	}

	var saved models.User
	if errFind := h.db.WithContext(c.Request.Context()).
		Where("external_id = ?", userID).
		First(&saved).Error; errFind != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal Server Error"})
		return
	}
	c.JSON(http.StatusOK, userJSON(saved))
}

// GetPoints returns the point balance for a user. Unknown users read as a
// zero balance so first sign-in clients can bootstrap before provisioning.
func (h *UserHandler) GetPoints(c *gin.Context) {
	userID := strings.TrimSpace(c.Query("userId"))
	if userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return
	}
	if !requireSubject(c, userID) {
		return
	}

	balance, errBalance := points.Balance(c.Request.Context(), h.db, userID)
	if errBalance != nil {
		if errors.Is(errBalance, points.ErrUserNotFound) {
			c.JSON(http.StatusOK, gin.H{"points": 0})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal Server Error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"points": balance})
}

// updatePointsRequest defines the request body for balance adjustments.
type updatePointsRequest struct {
	UserID string `json:"userId"`
	Points *int64 `json:"points"`
}

// UpdatePoints applies a signed delta to a user's balance and returns the
// updated account. The delta is applied as-is; negative results are allowed.
func (h *UserHandler) UpdatePoints(c *gin.Context) {
	var body updatePointsRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload"})
		return
	}
	userID := strings.TrimSpace(body.UserID)
	if userID == "" || body.Points == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload"})
		return
	}
	if !requireSubject(c, userID) {
		return
	}

	user, errAdjust := points.Adjust(c.Request.Context(), h.db, userID, *body.Points)
	if errAdjust != nil {
		if errors.Is(errAdjust, points.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal Server Error"})
		return
	}
	c.JSON(http.StatusOK, userJSON(user))
}

// userJSON shapes a user row for responses.
func userJSON(user models.User) gin.H {
	return gin.H{
		"id":        user.ID,
		"userId":    user.ExternalID,
		"email":     user.Email,
		"name":      user.Name,
		"points":    user.Points,
		"createdAt": user.CreatedAt,
		"updatedAt": user.UpdatedAt,
	}
}

// requireSubject rejects the request when a verified session subject is
// present and does not match the user the request operates on.
func requireSubject(c *gin.Context, userID string) bool {
	subject, exists := c.Get(SessionSubjectKey)
	if !exists {
		return true
	}
	if sub, ok := subject.(string); ok && sub == userID {
		return true
	}
	c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
	return false
}

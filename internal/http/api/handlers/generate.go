package handlers

import (
	"encoding/base64"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/sreejitadass/ContentCrafter/internal/gemini"
	"github.com/sreejitadass/ContentCrafter/internal/models"
	"github.com/sreejitadass/ContentCrafter/internal/points"
	"github.com/sreejitadass/ContentCrafter/internal/ratelimit"
	"github.com/sreejitadass/ContentCrafter/internal/workflow"
)

// GenerateHandler runs the generate-and-charge endpoint.
type GenerateHandler struct {
	orchestrator *workflow.Orchestrator // Generation workflow.
	limiter      *ratelimit.Manager     // Per-user rate limiter, may be nil.
}

// NewGenerateHandler constructs a GenerateHandler.
func NewGenerateHandler(orchestrator *workflow.Orchestrator, limiter *ratelimit.Manager) *GenerateHandler {
	return &GenerateHandler{orchestrator: orchestrator, limiter: limiter}
}

// generateImagePayload carries an inline image as base64 data.
type generateImagePayload struct {
	MIMEType string `json:"mimeType"`
	Data     string `json:"data"`
}

// generateRequest defines the request body for content generation.
type generateRequest struct {
	UserID      string                `json:"userId"`
	ContentType string                `json:"contentType"`
	Prompt      string                `json:"prompt"`
	Image       *generateImagePayload `json:"image"`
}

// Generate produces content for the prompt, charges the user, and stores the
// result. Generation and charging succeed or fail together.
func (h *GenerateHandler) Generate(c *gin.Context) {
	var body generateRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload"})
		return
	}
	userID := strings.TrimSpace(body.UserID)
	prompt := strings.TrimSpace(body.Prompt)
	contentType := strings.TrimSpace(body.ContentType)
	if userID == "" || prompt == "" || !models.KnownContentType(contentType) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload"})
		return
	}
	if !requireSubject(c, userID) {
		return
	}

	var image *gemini.InlineImage
	if body.Image != nil {
		mimeType := strings.TrimSpace(body.Image.MIMEType)
		data, errDecode := base64.StdEncoding.DecodeString(strings.TrimSpace(body.Image.Data))
		if mimeType == "" || errDecode != nil || len(data) == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid image payload"})
			return
		}
		image = &gemini.InlineImage{MIMEType: mimeType, Data: data}
	}

	if h.limiter != nil {
		result, errAllow := h.limiter.Allow(c.Request.Context(), ratelimit.KeyForUser(userID))
		if errAllow == nil && !result.Allowed {
			c.JSON(http.StatusTooManyRequests, gin.H{"error": "Too many requests"})
			return
		}
	}

	outcome, errRun := h.orchestrator.Run(c.Request.Context(), workflow.Request{
		UserID:      userID,
		ContentType: contentType,
		Prompt:      prompt,
		Image:       image,
	})
	if errRun != nil {
		switch {
		case errors.Is(errRun, points.ErrInsufficientPoints):
			c.JSON(http.StatusPaymentRequired, gin.H{"error": "Insufficient points", "points": outcome.Points})
		case errors.Is(errRun, workflow.ErrProvider):
			c.JSON(http.StatusBadGateway, gin.H{"error": "Content generation failed", "content": workflow.FailurePlaceholder})
		case errors.Is(errRun, points.ErrUserNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		case errors.Is(errRun, workflow.ErrInvalidRequest):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload"})
		default:
			log.WithError(errRun).WithField("user_id", userID).Error("generate content failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal Server Error"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"content": outcome.Record.Content,
		"points":  outcome.Points,
		"record":  contentJSON(outcome.Record),
	})
}

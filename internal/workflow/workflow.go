// Package workflow sequences a content generation attempt: provider call
// first with no mutation, then debit and history insert in one transaction.
// A failure at any step leaves no partial state behind.
package workflow

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sreejitadass/ContentCrafter/internal/gemini"
	"github.com/sreejitadass/ContentCrafter/internal/models"
	"github.com/sreejitadass/ContentCrafter/internal/points"

	log "github.com/sirupsen/logrus"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// FailurePlaceholder is the fixed text clients display when generation fails.
const FailurePlaceholder = "An error occurred while generating content."

// ErrProvider reports a failed generative provider call.
var ErrProvider = errors.New("workflow: generation failed")

// ErrInvalidRequest reports a request that fails validation.
var ErrInvalidRequest = errors.New("workflow: invalid request")

// Generator produces text for a composed prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string, image *gemini.InlineImage) (gemini.Result, error)
}

// Request describes one generation attempt.
type Request struct {
	UserID      string
	ContentType string
	Prompt      string
	Image       *gemini.InlineImage
}

// Outcome carries the persisted record and the balance after debit.
type Outcome struct {
	Record models.GeneratedContent
	Points int64
}

// Orchestrator runs the generate-and-charge operation.
type Orchestrator struct {
	db        *gorm.DB
	generator Generator
	cost      int64
}

// New constructs an Orchestrator charging cost points per generation.
func New(conn *gorm.DB, generator Generator, cost int64) *Orchestrator {
	return &Orchestrator{db: conn, generator: generator, cost: cost}
}

// Cost returns the points charged per generation.
func (o *Orchestrator) Cost() int64 { return o.cost }

// Run executes the generation workflow. The balance pre-check is advisory;
// the conditional debit inside the transaction is the authoritative one.
func (o *Orchestrator) Run(ctx context.Context, req Request) (Outcome, error) {
	userID := strings.TrimSpace(req.UserID)
	prompt := strings.TrimSpace(req.Prompt)
	contentType := strings.TrimSpace(req.ContentType)
	if userID == "" || prompt == "" {
		return Outcome{}, fmt.Errorf("%w: missing user id or prompt", ErrInvalidRequest)
	}
	if !models.KnownContentType(contentType) {
		return Outcome{}, fmt.Errorf("%w: unknown content type %q", ErrInvalidRequest, contentType)
	}
	image := req.Image
	if contentType != models.ContentTypeProductMarketing {
		image = nil
	}

	balance, errBalance := points.Balance(ctx, o.db, userID)
	if errBalance != nil && !errors.Is(errBalance, points.ErrUserNotFound) {
		return Outcome{}, errBalance
	}
	if balance < o.cost {
		return Outcome{Points: balance}, points.ErrInsufficientPoints
	}

	promptText := gemini.ComposePrompt(contentType, prompt, image != nil)
	result, errGenerate := o.generator.Generate(ctx, promptText, image)
	if errGenerate != nil {
		log.WithError(errGenerate).WithField("user_id", userID).Warn("workflow: provider call failed")
		return Outcome{Points: balance}, fmt.Errorf("%w: %v", ErrProvider, errGenerate)
	}

	meta := providerMeta(result)

	var outcome Outcome
	errTx := o.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		remaining, errDebit := points.Debit(ctx, tx, userID, o.cost)
		if errDebit != nil {
			outcome.Points = remaining
			return errDebit
		}
		row := models.GeneratedContent{
			UserID:       userID,
			ContentType:  contentType,
			Prompt:       prompt,
			Content:      result.Text,
			ProviderMeta: meta,
			CreatedAt:    time.Now().UTC(),
		}
		if errCreate := tx.Create(&row).Error; errCreate != nil {
			return fmt.Errorf("workflow: save content: %w", errCreate)
		}
		outcome = Outcome{Record: row, Points: remaining}
		return nil
	})
	if errTx != nil {
		return Outcome{Points: outcome.Points}, errTx
	}
	return outcome, nil
}

// providerMeta serializes provider model and token usage for the history row.
func providerMeta(result gemini.Result) datatypes.JSON {
	payload, errMarshal := json.Marshal(map[string]any{
		"model":           result.Model,
		"promptTokens":    result.Usage.PromptTokenCount,
		"candidateTokens": result.Usage.CandidatesTokenCount,
		"totalTokens":     result.Usage.TotalTokenCount,
	})
	if errMarshal != nil {
		return nil
	}
	return datatypes.JSON(payload)
}

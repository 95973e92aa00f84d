package workflow

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/sreejitadass/ContentCrafter/internal/gemini"
	"github.com/sreejitadass/ContentCrafter/internal/models"
	"github.com/sreejitadass/ContentCrafter/internal/points"
	"gorm.io/gorm"
)

// fakeGenerator records calls and returns a canned result or error.
type fakeGenerator struct {
	calls  int
	result gemini.Result
	err    error
}

func (f *fakeGenerator) Generate(_ context.Context, _ string, _ *gemini.InlineImage) (gemini.Result, error) {
	f.calls++
	if f.err != nil {
		return gemini.Result{}, f.err
	}
	return f.result, nil
}

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if errMigrate := db.AutoMigrate(&models.User{}, &models.GeneratedContent{}); errMigrate != nil {
		t.Fatalf("migrate: %v", errMigrate)
	}
	return db
}

func seedUser(t *testing.T, db *gorm.DB, externalID string, balance int64) {
	t.Helper()
	user := models.User{ExternalID: externalID, Email: externalID + "@test", Name: externalID, Points: balance}
	if errCreate := db.Create(&user).Error; errCreate != nil {
		t.Fatalf("seed user: %v", errCreate)
	}
}

func TestRun_Success(t *testing.T) {
	db := openTestDB(t)
	seedUser(t, db, "user-1", 10)

	generator := &fakeGenerator{result: gemini.Result{
		Text:  "generated text",
		Model: "gemini-1.5-pro-002",
		Usage: gemini.Usage{PromptTokenCount: 3, CandidatesTokenCount: 9, TotalTokenCount: 12},
	}}
	orchestrator := New(db, generator, 5)

	outcome, errRun := orchestrator.Run(context.Background(), Request{
		UserID:      "user-1",
		ContentType: models.ContentTypeBlog,
		Prompt:      "weekend hiking",
	})
	if errRun != nil {
		t.Fatalf("run: %v", errRun)
	}
	if generator.calls != 1 {
		t.Fatalf("expected one provider call, got %d", generator.calls)
	}
	if outcome.Points != 5 {
		t.Fatalf("expected remaining 5 points, got %d", outcome.Points)
	}
	if outcome.Record.Content != "generated text" {
		t.Fatalf("unexpected record content %q", outcome.Record.Content)
	}
	if outcome.Record.ID == 0 {
		t.Fatalf("expected persisted record")
	}

	var rows []models.GeneratedContent
	if errFind := db.Where("user_id = ?", "user-1").Find(&rows).Error; errFind != nil {
		t.Fatalf("find rows: %v", errFind)
	}
	if len(rows) != 1 {
		t.Fatalf("expected 1 history row, got %d", len(rows))
	}
	if len(rows[0].ProviderMeta) == 0 {
		t.Fatalf("expected provider metadata on the row")
	}
}

func TestRun_InsufficientPointsSkipsProvider(t *testing.T) {
	db := openTestDB(t)
	seedUser(t, db, "user-1", 3)

	generator := &fakeGenerator{result: gemini.Result{Text: "unused"}}
	orchestrator := New(db, generator, 5)

	outcome, errRun := orchestrator.Run(context.Background(), Request{
		UserID:      "user-1",
		ContentType: models.ContentTypeBlog,
		Prompt:      "weekend hiking",
	})
	if !errors.Is(errRun, points.ErrInsufficientPoints) {
		t.Fatalf("expected ErrInsufficientPoints, got %v", errRun)
	}
	if generator.calls != 0 {
		t.Fatalf("provider must not be called when points are short, got %d calls", generator.calls)
	}
	if outcome.Points != 3 {
		t.Fatalf("expected untouched balance 3, got %d", outcome.Points)
	}
}

func TestRun_ProviderFailureLeavesNoState(t *testing.T) {
	db := openTestDB(t)
	seedUser(t, db, "user-1", 10)

	generator := &fakeGenerator{err: errors.New("upstream 500")}
	orchestrator := New(db, generator, 5)

	_, errRun := orchestrator.Run(context.Background(), Request{
		UserID:      "user-1",
		ContentType: models.ContentTypeNews,
		Prompt:      "city elections",
	})
	if !errors.Is(errRun, ErrProvider) {
		t.Fatalf("expected ErrProvider, got %v", errRun)
	}

	balance, errBalance := points.Balance(context.Background(), db, "user-1")
	if errBalance != nil {
		t.Fatalf("balance: %v", errBalance)
	}
	if balance != 10 {
		t.Fatalf("failed generation must not charge, got balance %d", balance)
	}

	var count int64
	if errCount := db.Model(&models.GeneratedContent{}).Count(&count).Error; errCount != nil {
		t.Fatalf("count: %v", errCount)
	}
	if count != 0 {
		t.Fatalf("failed generation must not save history, got %d rows", count)
	}
}

func TestRun_UnknownUser(t *testing.T) {
	db := openTestDB(t)

	generator := &fakeGenerator{result: gemini.Result{Text: "unused"}}
	orchestrator := New(db, generator, 5)

	_, errRun := orchestrator.Run(context.Background(), Request{
		UserID:      "nobody",
		ContentType: models.ContentTypeBlog,
		Prompt:      "anything",
	})
	if !errors.Is(errRun, points.ErrInsufficientPoints) {
		t.Fatalf("expected ErrInsufficientPoints for unknown user, got %v", errRun)
	}
	if generator.calls != 0 {
		t.Fatalf("provider must not be called for unknown user")
	}
}

func TestRun_Validation(t *testing.T) {
	db := openTestDB(t)
	generator := &fakeGenerator{}
	orchestrator := New(db, generator, 5)

	cases := []Request{
		{UserID: "", ContentType: models.ContentTypeBlog, Prompt: "p"},
		{UserID: "u", ContentType: models.ContentTypeBlog, Prompt: "   "},
		{UserID: "u", ContentType: "poetry", Prompt: "p"},
	}
	for _, req := range cases {
		if _, errRun := orchestrator.Run(context.Background(), req); !errors.Is(errRun, ErrInvalidRequest) {
			t.Fatalf("expected ErrInvalidRequest for %+v, got %v", req, errRun)
		}
	}
	if generator.calls != 0 {
		t.Fatalf("provider must not be called for invalid requests")
	}
}

func TestRun_ImageDroppedForNonMarketing(t *testing.T) {
	db := openTestDB(t)
	seedUser(t, db, "user-1", 10)

	var sawImage bool
	generator := &capturingGenerator{onGenerate: func(prompt string, image *gemini.InlineImage) {
		sawImage = image != nil
	}}
	orchestrator := New(db, generator, 5)

	_, errRun := orchestrator.Run(context.Background(), Request{
		UserID:      "user-1",
		ContentType: models.ContentTypeBlog,
		Prompt:      "weekend hiking",
		Image:       &gemini.InlineImage{MIMEType: "image/png", Data: []byte{1}},
	})
	if errRun != nil {
		t.Fatalf("run: %v", errRun)
	}
	if sawImage {
		t.Fatalf("image must be dropped for non product-marketing content")
	}
}

// capturingGenerator invokes a callback with the provider inputs.
type capturingGenerator struct {
	onGenerate func(prompt string, image *gemini.InlineImage)
}

func (g *capturingGenerator) Generate(_ context.Context, prompt string, image *gemini.InlineImage) (gemini.Result, error) {
	if g.onGenerate != nil {
		g.onGenerate(prompt, image)
	}
	return gemini.Result{Text: "ok"}, nil
}

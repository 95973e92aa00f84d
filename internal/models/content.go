package models

import (
	"time"

	"gorm.io/datatypes"
)

// Content type values accepted by the generation surface.
const (
	// ContentTypeBlog requests long-form article content.
	ContentTypeBlog = "blog"
	// ContentTypeNews requests news campaign content.
	ContentTypeNews = "news"
	// ContentTypeProductMarketing requests product marketing content.
	ContentTypeProductMarketing = "product-marketing"
)

// KnownContentType reports whether the value is a supported content type.
func KnownContentType(v string) bool {
	switch v {
	case ContentTypeBlog, ContentTypeNews, ContentTypeProductMarketing:
		return true
	}
	return false
}

// GeneratedContent records one generated artifact for a user.
// Rows are immutable once created.
type GeneratedContent struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Sequence identifier.

	UserID      string `gorm:"type:text;not null;index"` // Owning user external ID.
	ContentType string `gorm:"type:text;not null"`       // One of the ContentType constants.
	Prompt      string `gorm:"type:text;not null"`       // User prompt text.
	Content     string `gorm:"type:text;not null"`       // Generated text, stored verbatim.

	ProviderMeta datatypes.JSON // Provider model name and token usage, when reported.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
}

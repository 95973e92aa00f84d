package gemini

import (
	"fmt"

	"github.com/sreejitadass/ContentCrafter/internal/models"
)

// Per-type instruction templates appended to the base prompt. The wording is
// part of the product contract; do not reflow.
const (
	blogTemplate      = " Write a detailed blog post that includes an engaging introduction, several informative sections, and a conclusion."
	newsTemplate      = " Create a compelling news campaign with a headline, subheading, and a well-structured narrative that captures attention."
	marketingTemplate = " Develop a persuasive product marketing piece with key selling points, target audience, and a call to action."
	imageTemplate     = " Describe the image and incorporate it into the caption."
)

// ComposePrompt builds the provider instruction for a content type and user
// prompt. The image clause is only meaningful for product-marketing content.
func ComposePrompt(contentType, prompt string, withImage bool) string {
	text := fmt.Sprintf(`Generate %s content about "%s".`, contentType, prompt)
	switch contentType {
	case models.ContentTypeBlog:
		text += blogTemplate
	case models.ContentTypeNews:
		text += newsTemplate
	case models.ContentTypeProductMarketing:
		text += marketingTemplate
	}
	if withImage && contentType == models.ContentTypeProductMarketing {
		text += imageTemplate
	}
	return text
}

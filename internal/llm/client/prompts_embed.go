package client

import (
	"bytes"
	"embed"
	"fmt"
	"strings"
	"text/template"
)

// embeddedPrompts holds the built-in prompt templates so packaged executables
// can load them without needing access to the source tree.
//
//go:embed prompts/*.txt
var embeddedPrompts embed.FS

var draftUserTemplate = template.Must(template.ParseFS(embeddedPrompts, "prompts/draft_user.txt"))

// DraftPrompt is the data rendered into the user message of a draft request.
type DraftPrompt struct {
	IssueTitle string
	UserPrompt string
}

// RenderDraftPrompt builds the user message sent alongside the system prompt.
func RenderDraftPrompt(p DraftPrompt) (string, error) {
	var buf bytes.Buffer
	if err := draftUserTemplate.Execute(&buf, p); err != nil {
		return "", fmt.Errorf("render draft prompt: %w", err)
	}
	return strings.TrimSpace(buf.String()), nil
}

package lifecycle

import (
	"errors"
	"strings"
)

// IDPlaceholder is substituted with a draft id in the update and apply URL templates.
const IDPlaceholder = "CONTENT_ID_PLACEHOLDER"

// Text holds the user-facing labels for each control and state.
type Text struct {
	GenerateContent string `json:"generateContent"`
	Generating      string `json:"generating"`
	Agree           string `json:"agree"`
	Retry           string `json:"retry"`
	Edit            string `json:"edit"`
	Save            string `json:"save"`
}

// DefaultText returns the English labels.
func DefaultText() Text {
	return Text{
		GenerateContent: "Generate Content",
		Generating:      "Generating...",
		Agree:           "Agree",
		Retry:           "Retry",
		Edit:            "Edit",
		Save:            "Save",
	}
}

// Config is supplied once when the controller is built and never mutated.
// IssueRef is copied onto every draft the controller holds.
type Config struct {
	ButtonID          string `json:"buttonId"`
	ResultContainerID string `json:"resultContainerId"`
	PromptFieldID     string `json:"promptFieldId"`
	PageTitleSelector string `json:"pageTitleSelector"`
	GenerateURL       string `json:"generateUrl"`
	UpdateURLTemplate string `json:"updateUrlTemplate"`
	ApplyURLTemplate  string `json:"applyUrlTemplate"`
	CSRFToken         string `json:"csrfToken"`
	IssueRef          string `json:"issueRef,omitempty"`
	Text              Text   `json:"text"`
}

// Validate checks that every anchor and URL the controller depends on is set.
func (c Config) Validate() error {
	var missing []string
	check := func(name, v string) {
		if strings.TrimSpace(v) == "" {
			missing = append(missing, name)
		}
	}
	check("buttonId", c.ButtonID)
	check("resultContainerId", c.ResultContainerID)
	check("promptFieldId", c.PromptFieldID)
	check("pageTitleSelector", c.PageTitleSelector)
	check("generateUrl", c.GenerateURL)
	check("updateUrlTemplate", c.UpdateURLTemplate)
	check("applyUrlTemplate", c.ApplyURLTemplate)
	if len(missing) > 0 {
		return errors.New("lifecycle config missing: " + strings.Join(missing, ", "))
	}
	if !strings.Contains(c.UpdateURLTemplate, IDPlaceholder) || !strings.Contains(c.ApplyURLTemplate, IDPlaceholder) {
		return errors.New("update and apply url templates must contain " + IDPlaceholder)
	}
	return nil
}

// withDefaults fills empty labels from DefaultText.
func (c Config) withDefaults() Config {
	def := DefaultText()
	fill := func(dst *string, v string) {
		if strings.TrimSpace(*dst) == "" {
			*dst = v
		}
	}
	fill(&c.Text.GenerateContent, def.GenerateContent)
	fill(&c.Text.Generating, def.Generating)
	fill(&c.Text.Agree, def.Agree)
	fill(&c.Text.Retry, def.Retry)
	fill(&c.Text.Edit, def.Edit)
	fill(&c.Text.Save, def.Save)
	return c
}

// ExpandURL substitutes id into a URL template.
func ExpandURL(template string, id DraftID) string {
	return strings.ReplaceAll(template, IDPlaceholder, string(id))
}

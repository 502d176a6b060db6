package ai

import (
	_ "embed"
	"strings"
)

//go:embed prompts/cover_letter.md
var coverLetterPrompt string

// SystemPrompt returns the cover-letter system prompt. A non-empty style is
// appended as its own section.
func SystemPrompt(style string) string {
	style = strings.TrimSpace(style)
	if style == "" {
		return coverLetterPrompt
	}
	var b strings.Builder
	b.WriteString(coverLetterPrompt)
	b.WriteString("\n[action:applicant_style]\n")
	b.WriteString("Write in the applicant's own voice as described below. It overrides tone guidance but never the output schema.\n\n")
	b.WriteString(style)
	b.WriteString("\n[/action]\n")
	return b.String()
}

package prompt

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"voice-coach-be/internal/constant"
	"voice-coach-be/pkg/store"
)

// Renderer supplies all prompt text. Implementations must be free of side effects.
type Renderer interface {
	Instructions(hasDocument bool) (string, error)
	Welcome(hasDocument bool) (string, error)
	Discovery(utterance string) (string, error)
	DocumentBlock(doc *store.DocumentContext) (string, error)
	Reminder(excerpt string) (string, error)
	RefreshNotice(doc *store.DocumentContext) (string, error)
	RefreshAcknowledgment(doc *store.DocumentContext) (string, error)
}

// CoachRenderer renders the built-in coaching prompts.
type CoachRenderer struct{}

var _ Renderer = CoachRenderer{}

func NewCoachRenderer() CoachRenderer {
	return CoachRenderer{}
}

func (CoachRenderer) Instructions(hasDocument bool) (string, error) {
	if !hasDocument {
		return constant.CoachInstructionsV1, nil
	}
	return constant.CoachInstructionsV1 + "\n\n" + constant.CoachDocumentHandlerV1, nil
}

func (CoachRenderer) Welcome(hasDocument bool) (string, error) {
	if hasDocument {
		return constant.CoachWelcomeWithDocumentV1, nil
	}
	return constant.CoachWelcomeV1, nil
}

func (CoachRenderer) Discovery(utterance string) (string, error) {
	return fmt.Sprintf(constant.CoachDiscoveryPromptV1, utterance), nil
}

func (CoachRenderer) DocumentBlock(doc *store.DocumentContext) (string, error) {
	if doc == nil {
		return "", fmt.Errorf("document block: no document")
	}
	truncated := ""
	if doc.Metadata.Truncated {
		truncated = constant.CoachDocumentTruncatedNote
	}
	return fmt.Sprintf(constant.CoachDocumentBlockV1,
		filenameOrUnknown(doc),
		doc.Metadata.PageCount,
		utf8.RuneCountInString(doc.Text),
		truncated,
		doc.Text,
	), nil
}

func (CoachRenderer) Reminder(excerpt string) (string, error) {
	return fmt.Sprintf(constant.CoachReminderV1, excerpt), nil
}

func (r CoachRenderer) RefreshNotice(doc *store.DocumentContext) (string, error) {
	block, err := r.DocumentBlock(doc)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf(constant.CoachRefreshNoticeV1, block), nil
}

func (CoachRenderer) RefreshAcknowledgment(doc *store.DocumentContext) (string, error) {
	if doc == nil {
		return "", fmt.Errorf("refresh acknowledgment: no document")
	}
	return fmt.Sprintf(constant.CoachRefreshAcknowledgmentV1, filenameOrUnknown(doc)), nil
}

// Excerpt returns at most limit runes from the start of text, trimmed.
func Excerpt(text string, limit int) string {
	text = strings.TrimSpace(text)
	if limit <= 0 || utf8.RuneCountInString(text) <= limit {
		return text
	}
	runes := []rune(text)
	return strings.TrimSpace(string(runes[:limit]))
}

func filenameOrUnknown(doc *store.DocumentContext) string {
	if doc.Metadata.Filename == "" {
		return "Unknown"
	}
	return doc.Metadata.Filename
}

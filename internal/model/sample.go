package model

import (
	"fmt"
	"strings"
	"time"
)

// Language is the closed set of transcript languages accepted by the dataset.
type Language string

const (
	LanguageBengali Language = "Bengali"
	LanguageEnglish Language = "English"
	LanguageMixed   Language = "Mixed"
)

// Environment is the closed set of recording conditions accepted by the dataset.
type Environment string

const (
	EnvironmentNoisy Environment = "Noisy"
	EnvironmentQuiet Environment = "Quiet"
)

// ParseLanguage matches the input case-insensitively against the fixed
// language set and returns the canonical value. Out-of-set values are
// rejected, never coerced.
func ParseLanguage(s string) (Language, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "bengali":
		return LanguageBengali, nil
	case "english":
		return LanguageEnglish, nil
	case "mixed":
		return LanguageMixed, nil
	default:
		return "", fmt.Errorf("invalid language %q: must be one of Bengali, English, Mixed", s)
	}
}

// ParseEnvironment matches the input case-insensitively against the fixed
// environment set and returns the canonical value.
func ParseEnvironment(s string) (Environment, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "noisy":
		return EnvironmentNoisy, nil
	case "quiet":
		return EnvironmentQuiet, nil
	default:
		return "", fmt.Errorf("invalid environment %q: must be one of Noisy, Quiet", s)
	}
}

// Sample represents one contributed recording: the stored audio filename plus
// its labels. This is a pure domain model with no persistence-specific tags
// beyond JSON; it is shared across the handler, service, and repository layers.
type Sample struct {
	Filename    string      `json:"filename"`
	Text        string      `json:"text"`
	Language    Language    `json:"language"`
	Environment Environment `json:"environment"`
	CreatedAt   time.Time   `json:"created_at"`
}

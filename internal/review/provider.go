// Package review implements the optional advisory LLM review of correlated
// disappearance→death pairs. The reviewer reads the narratives of both
// records and offers a second opinion on whether they describe the same
// person. Verdicts are annotations only: they never feed back into match
// scores, confidence labels or correlation strengths.
package review

import (
	"context"
	"fmt"
	"strings"

	"nexo/internal/model"
	"nexo/internal/store"
)

// Provider defines the interface for LLM providers.
type Provider interface {
	// Name returns the provider name
	Name() string

	// Review asks the model for a verdict on one correlated pair
	Review(ctx context.Context, req Request) (*Response, error)

	// IsAvailable checks if the provider is properly configured and accessible
	IsAvailable(ctx context.Context) bool
}

// Request contains the input for one pair review.
type Request struct {
	// Pair is the correlated pair under review, including both narratives
	Pair store.Pair

	// Prompt is an optional custom prompt (if empty, use the default)
	Prompt string

	// Model is the specific model to use (provider-specific)
	Model string

	// MaxTokens limits the response length
	MaxTokens int
}

// Response contains the provider's raw output plus the parsed verdict.
type Response struct {
	// Verdict parsed from the response text
	Verdict model.Verdict

	// Reasoning is the free-text justification that followed the verdict
	Reasoning string

	// Model is the model that generated the response
	Model string

	// TokensUsed tracks token consumption
	TokensUsed int
}

// Config holds LLM provider configuration.
type Config struct {
	// Provider name: "openai", "ollama", ""
	Provider string

	// Model name (provider-specific)
	Model string

	// APIKey for OpenAI-compatible endpoints
	APIKey string

	// BaseURL for custom endpoints (e.g., Ollama)
	BaseURL string

	// Timeout for API requests, in seconds
	Timeout int

	// MaxTokens for response generation
	MaxTokens int
}

// ConfigFromModel converts the review section of the runtime configuration.
func ConfigFromModel(rc model.ReviewConfig) Config {
	return Config{
		Provider:  rc.Provider,
		Model:     rc.Model,
		APIKey:    rc.APIKey,
		BaseURL:   rc.BaseURL,
		Timeout:   int(rc.Timeout.Seconds()),
		MaxTokens: rc.MaxTokens,
	}
}

const systemPrompt = "You are assisting a record-linkage analyst. You compare a missing-person " +
	"report with a later death report and judge whether the free-text narratives are consistent " +
	"with describing the same person. You never assert identity as fact; you only state whether " +
	"the narratives corroborate, refute, or say nothing about the link."

// BuildPrompt constructs the default prompt for one pair.
func BuildPrompt(pair store.Pair) string {
	var b strings.Builder

	fmt.Fprintf(&b, "A deterministic matching engine linked these two records to the same person (%s).\n\n", pair.PersonName)
	fmt.Fprintf(&b, "DISAPPEARANCE (record %s, reported %s):\n%s\n\n",
		pair.Source.RecordID, pair.Source.Date.Format("2006-01-02"), narrativeOrPlaceholder(pair.SourceNarrative))
	fmt.Fprintf(&b, "DEATH (%s, record %s, dated %s, %d days later):\n%s\n\n",
		pair.Death.Type, pair.Death.RecordID, pair.Death.Date.Format("2006-01-02"),
		pair.ElapsedDays, narrativeOrPlaceholder(pair.DeathNarrative))
	if pair.Intervening {
		b.WriteString("Note: another recorded event for this person falls between the two dates.\n\n")
	}

	b.WriteString("Based ONLY on the narratives above, answer on the first line with exactly one of:\n")
	b.WriteString("VERDICT: corroborated\nVERDICT: refuted\nVERDICT: inconclusive\n\n")
	b.WriteString("Then give a 2-3 sentence justification. Do not speculate beyond the text. " +
		"If either narrative is missing or uninformative, the verdict is inconclusive.")

	return b.String()
}

func narrativeOrPlaceholder(narrative string) string {
	narrative = strings.TrimSpace(narrative)
	if narrative == "" {
		return "(no narrative recorded)"
	}
	return narrative
}

// ParseVerdict extracts the verdict and trailing reasoning from a provider
// response. Responses without a recognizable verdict parse as inconclusive so
// a rambling model can never upgrade a pair.
func ParseVerdict(text string) (model.Verdict, string) {
	lines := strings.Split(strings.TrimSpace(text), "\n")
	for i, line := range lines {
		lowered := strings.ToLower(strings.TrimSpace(line))
		if !strings.Contains(lowered, "verdict") {
			continue
		}
		reasoning := strings.TrimSpace(strings.Join(lines[i+1:], "\n"))
		switch {
		case strings.Contains(lowered, string(model.VerdictCorroborated)):
			return model.VerdictCorroborated, reasoning
		case strings.Contains(lowered, string(model.VerdictRefuted)):
			return model.VerdictRefuted, reasoning
		case strings.Contains(lowered, string(model.VerdictInconclusive)):
			return model.VerdictInconclusive, reasoning
		}
	}
	return model.VerdictInconclusive, strings.TrimSpace(text)
}

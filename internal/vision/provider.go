// Package vision sends board screenshots to a multimodal model and
// turns the reply into raw listing records.
package vision

import (
	"context"
	"time"
)

// Image is one screenshot to submit, already verified decodable.
type Image struct {
	MIME string
	Data []byte
}

// ExtractRequest is one atomic extraction call: the fixed instruction
// plus every screenshot of one board. There is no sub-batch splitting.
type ExtractRequest struct {
	Prompt string
	Images []Image
	Model  string
}

// Provider defines the interface for multimodal model backends.
type Provider interface {
	// Name returns the provider name.
	Name() string

	// Extract submits the request and returns the model's raw text reply.
	Extract(ctx context.Context, req ExtractRequest) (string, error)

	// IsAvailable checks if the provider is properly configured and accessible.
	IsAvailable(ctx context.Context) bool
}

// Config holds provider configuration.
type Config struct {
	// Provider name: "gemini" or "openai"
	Provider string

	// Model name (provider-specific)
	Model string

	// APIKey for the provider
	APIKey string

	// BaseURL for custom endpoints (tests, proxies)
	BaseURL string

	// Timeout per API request
	Timeout time.Duration
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		Provider: "gemini",
		Timeout:  2 * time.Minute,
	}
}

// BuildPrompt returns the fixed extraction instruction. The field rules
// mirror the card layout of the ranking screenshots: the brand is the
// prefix of the listing name, the sub-board sits one token right of the
// location, the price follows the currency sign.
func BuildPrompt() string {
	return `These screenshots show ranked restaurant listing cards from a review app.
For every card, extract:
- board: the highlighted board title shown directly under the app's board header
- rank: the grey number at the top-left of the card, as an integer (1, 2, 3, ...)
- name: the full listing name
- brand: the part of the name before the first "·" separator; if there is no "·", the part before the first "("
- score: the rating, a number with one decimal place
- location: the neighborhood label on the card
- sub_board: the label one space to the right of the location
- price: the integer after the "¥" sign and before the per-person suffix, without the currency sign

Return the result as a JSON array of objects with exactly the keys
board, rank, name, brand, score, location, sub_board, price. Return only the array.`
}

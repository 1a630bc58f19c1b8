package domain

import "time"

// ==== WebSocket Constants ====

// MaxMessageSize is the maximum allowed WebSocket frame size in bytes.
// File trees travel in a single frame, so this is larger than a chat line.
const MaxMessageSize = 1 << 20

// SendBufferSize is the number of outbound frames queued per connection
const SendBufferSize = 256

// ==== AI Constants ====

// TriggerToken activates the AI command interceptor when present in chat text
const TriggerToken = "@ai"

const (
	// PromptRequiredText is sent when the trigger token carries no prompt
	PromptRequiredText = "Please provide a prompt after @ai (e.g., '@ai create a hello world function')"

	// AIUnavailableText replaces any failed generation
	AIUnavailableText = "🤖 AI is temporarily unavailable. Please try again in a few moments."
)

// ==== Timing Constants ====

const (
	// GenerationTimeout bounds one call to the generation backend
	GenerationTimeout = 30 * time.Second

	// StoreTimeout bounds one persistence call
	StoreTimeout = 5 * time.Second

	// TokenTTL is the default lifetime of issued access tokens
	TokenTTL = 24 * time.Hour
)

// ==== Rate Limit Constants ====

const (
	// DefaultRateLimitAPI is the default rate limit for API endpoints (requests/sec)
	DefaultRateLimitAPI = 10

	// DefaultRateLimitWS is the default rate limit for WebSocket connections (req/sec)
	DefaultRateLimitWS = 5

	// DefaultRateLimitMessages is the per-participant inbound event rate (events/sec)
	DefaultRateLimitMessages = 10
)

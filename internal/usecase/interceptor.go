package usecase

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/mmuslimabdulj/goat-collab/internal/domain"
)

// Interceptor relays chat messages and answers the ones that carry the
// @ai trigger token.
type Interceptor struct {
	generator   Generator
	broadcaster Broadcaster
	timeout     time.Duration
	log         *slog.Logger

	// pending tracks generations still running
	pending sync.WaitGroup
}

// NewInterceptor creates the chat interceptor. timeout bounds each generation.
func NewInterceptor(generator Generator, broadcaster Broadcaster, timeout time.Duration, log *slog.Logger) *Interceptor {
	if timeout <= 0 {
		timeout = domain.GenerationTimeout
	}
	return &Interceptor{
		generator:   generator,
		broadcaster: broadcaster,
		timeout:     timeout,
		log:         log,
	}
}

// HandleChat relays text to everyone else in the participant's room. When
// text contains the trigger token, the assistant's reply (or a fixed
// fallback) is then broadcast to the whole room. The generator is called
// at most once per message and never blocks the caller.
func (i *Interceptor) HandleChat(ctx context.Context, p domain.Participant, text string) error {
	relay, err := domain.MessageEnvelope(domain.UserMessage{
		Text:        text,
		SenderID:    p.User.ID,
		SenderEmail: p.User.Email,
	})
	if err != nil {
		return err
	}
	i.broadcaster.Broadcast(p.RoomID, relay, p.ConnID)

	prompt, ok := ExtractPrompt(text)
	if !ok {
		return nil
	}
	if prompt == "" {
		i.reply(p.RoomID, domain.PromptRequiredText)
		return nil
	}

	// The reply outlives the connection that asked for it
	genCtx := context.WithoutCancel(ctx)

	i.pending.Add(1)
	go func() {
		defer i.pending.Done()
		i.generate(genCtx, p, prompt)
	}()
	return nil
}

func (i *Interceptor) generate(ctx context.Context, p domain.Participant, prompt string) {
	ctx, cancel := context.WithTimeout(ctx, i.timeout)
	defer cancel()

	started := time.Now()
	text, err := i.generator.Generate(ctx, prompt)
	if err == nil && strings.TrimSpace(text) == "" {
		err = errEmptyGeneration
	}
	if err != nil {
		i.log.Warn("Generation failed",
			"project_id", p.RoomID,
			"user_id", p.User.ID,
			"elapsed", time.Since(started),
			"error", err,
		)
		text = domain.AIUnavailableText
	} else {
		i.log.Debug("Generation done", "project_id", p.RoomID, "elapsed", time.Since(started), "chars", len(text))
	}

	if !i.reply(p.RoomID, text) {
		i.log.Debug("Room closed before reply", "project_id", p.RoomID)
	}
}

func (i *Interceptor) reply(roomID, text string) bool {
	env, err := domain.MessageEnvelope(domain.AIMessage{Text: text})
	if err != nil {
		i.log.Error("Encode AI reply", "error", err)
		return false
	}
	return i.broadcaster.Broadcast(roomID, env, "")
}

// Wait blocks until every started generation has broadcast its reply
func (i *Interceptor) Wait() {
	i.pending.Wait()
}

// ExtractPrompt reports whether text invokes the assistant and returns the
// prompt: text with the first trigger token removed, trimmed.
func ExtractPrompt(text string) (string, bool) {
	if !strings.Contains(text, domain.TriggerToken) {
		return "", false
	}
	return strings.TrimSpace(strings.Replace(text, domain.TriggerToken, "", 1)), true
}

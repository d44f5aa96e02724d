package chat

// Package chat composes the bounded message list for each conversational
// turn and commits turns to the conversation store.
//
// Responsibilities:
//   - Resolve or create the session (supplied ids are honored even when
//     unknown, modeling "resume with a remembered id")
//   - Classify the query onto a prompt template
//   - Inject best-effort telemetry context (failures degrade, never abort)
//   - Window history read-only, then commit the user turn afterwards
//   - Accumulate streamed replies and commit exactly one assistant turn,
//     distinguishing completed, cancelled, and errored streams

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kohanfikr/netai/internal/conversation"
	"github.com/kohanfikr/netai/internal/llm"
	"github.com/kohanfikr/netai/internal/prompt"
	"github.com/kohanfikr/netai/internal/telemetry"
)

// Composition is the result of composing one turn.
type Composition struct {
	ConversationID string        `json:"conversation_id"`
	Template       string        `json:"template"`
	Messages       []llm.Message `json:"messages"`
}

// Composer orchestrates prompt engine, telemetry processor, and store.
type Composer struct {
	store            *conversation.Store
	engine           *prompt.Engine
	telemetry        *telemetry.Processor
	windowSize       int
	telemetryTimeout time.Duration
	log              *zap.Logger
}

// NewComposer wires the composer. windowSize bounds the history slice sent
// per turn; telemetryTimeout bounds the context fetch.
func NewComposer(store *conversation.Store, engine *prompt.Engine, proc *telemetry.Processor, windowSize int, telemetryTimeout time.Duration, log *zap.Logger) *Composer {
	return &Composer{
		store:            store,
		engine:           engine,
		telemetry:        proc,
		windowSize:       windowSize,
		telemetryTimeout: telemetryTimeout,
		log:              log,
	}
}

// Compose builds the ordered message list for one user turn. The fresh
// user turn is committed to permanent history after the window is taken,
// so it is excluded from this call's window but visible to the next.
func (c *Composer) Compose(ctx context.Context, conversationID, userText, source, destination string) (*Composition, error) {
	var conv *conversation.Conversation
	if conversationID == "" {
		conv = c.store.Create()
	} else if existing, ok := c.store.Get(conversationID); ok {
		conv = existing
	} else {
		// Resume with a remembered id: re-key a fresh session under it.
		conv = c.store.CreateWithID(conversationID)
	}

	templateKey := c.engine.Classify(userText)

	// Telemetry context is best effort: a fetch failure must not abort the
	// conversational turn.
	telemetryContext := ""
	fetchCtx, cancel := context.WithTimeout(ctx, c.telemetryTimeout)
	block, err := c.telemetry.FormatContext(fetchCtx, source, destination)
	cancel()
	if err != nil {
		c.log.Warn("telemetry context failed",
			zap.String("conversation_id", conv.ID),
			zap.Error(err),
		)
	} else {
		telemetryContext = block
	}

	history := make([]llm.Message, 0, c.windowSize)
	for _, m := range c.store.Window(conv.ID, c.windowSize) {
		history = append(history, m.AsLLM())
	}

	messages := c.engine.BuildMessages(userText, history, templateKey, telemetryContext)

	c.store.Append(conv.ID, llm.RoleUser, userText, nil)

	return &Composition{
		ConversationID: conv.ID,
		Template:       templateKey,
		Messages:       messages,
	}, nil
}

// CommitAssistant records a completed assistant reply. Returns false if the
// conversation no longer exists.
func (c *Composer) CommitAssistant(conversationID, content string) bool {
	return c.store.Append(conversationID, llm.RoleAssistant, content, nil)
}

// StreamOutcome says how a streamed reply ended.
type StreamOutcome string

const (
	StreamCompleted StreamOutcome = "completed"
	StreamCancelled StreamOutcome = "cancelled"
	StreamErrored   StreamOutcome = "errored"
)

// AccumulateStream consumes a fragment stream and commits exactly one
// assistant turn when it ends. A normally ended stream commits the full
// text; a cancelled or errored stream commits whatever arrived, marked
// partial, so a truncated answer is never recorded as complete. Returns
// the accumulated text and the outcome.
func (c *Composer) AccumulateStream(ctx context.Context, conversationID string, fragments <-chan string, errc <-chan error) (string, StreamOutcome, error) {
	var b strings.Builder

	for {
		select {
		case <-ctx.Done():
			c.commitPartial(conversationID, b.String(), StreamCancelled)
			return b.String(), StreamCancelled, ctx.Err()

		case frag, ok := <-fragments:
			if !ok {
				if err := <-errc; err != nil {
					c.commitPartial(conversationID, b.String(), StreamErrored)
					return b.String(), StreamErrored, err
				}
				// Producers exit silently on cancellation, so a closed
				// stream with a cancelled context is a truncated reply.
				if err := ctx.Err(); err != nil {
					c.commitPartial(conversationID, b.String(), StreamCancelled)
					return b.String(), StreamCancelled, err
				}
				c.CommitAssistant(conversationID, b.String())
				return b.String(), StreamCompleted, nil
			}
			b.WriteString(frag)
		}
	}
}

func (c *Composer) commitPartial(conversationID, content string, outcome StreamOutcome) {
	if content == "" {
		return
	}
	c.store.Append(conversationID, llm.RoleAssistant, content, map[string]string{
		"partial": "true",
		"outcome": string(outcome),
	})
}

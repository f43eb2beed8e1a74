package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"fintrack/internal/advisor"
	"fintrack/internal/core"
	applog "fintrack/internal/log"
	"fintrack/internal/session"
	"fintrack/internal/state"
)

// DefaultTypingDelay is how long the advisor appears to type.
const DefaultTypingDelay = 1500 * time.Millisecond

// ChatService runs the advisor conversation.
type ChatService struct {
	delay  time.Duration
	now    func() time.Time
	logger *applog.Logger
}

// NewChatService creates the service. A negative delay is treated as zero.
func NewChatService(typingDelay time.Duration, logger *applog.Logger) *ChatService {
	if logger == nil {
		logger = discardLogger(applog.ComponentChat)
	}
	return &ChatService{
		delay:  max(typingDelay, 0),
		now:    time.Now,
		logger: logger,
	}
}

// Transcript returns the chat history in insertion order.
func (s *ChatService) Transcript(sess *session.Session) ([]core.ChatMessage, error) {
	st, err := authenticated(sess)
	if err != nil {
		return nil, err
	}
	return st.ChatHistory, nil
}

// Ask appends text as a user message, waits for the typing delay and then
// appends the advisor's reply. If ctx ends during the wait the reply is
// dropped and ctx.Err() is returned; the user message stays.
func (s *ChatService) Ask(ctx context.Context, sess *session.Session, text string) (core.ChatMessage, error) {
	if _, err := authenticated(sess); err != nil {
		return core.ChatMessage{}, err
	}
	question := s.message(core.SenderUser, strings.TrimSpace(text))
	if err := question.Validate(); err != nil {
		return core.ChatMessage{}, invalid(err)
	}
	if _, err := dispatch(sess, state.AddChatMessage{Message: question}); err != nil {
		return core.ChatMessage{}, err
	}

	if err := s.wait(ctx); err != nil {
		s.logger.InfoContext(ctx, "Advisor reply dropped",
			applog.FieldSessionID, sess.ID,
			applog.FieldError, err)
		return core.ChatMessage{}, err
	}

	// The advice reflects the state at reply time, not at question time.
	st, err := authenticated(sess)
	if err != nil {
		return core.ChatMessage{}, err
	}
	answer, rule := advisor.Answer(question.Text, advisor.Snapshot{User: st.User, Expenses: st.Expenses})
	reply := s.message(core.SenderAdvisor, answer)
	if _, err := dispatch(sess, state.AddChatMessage{Message: reply}); err != nil {
		return core.ChatMessage{}, err
	}

	s.logger.DebugContext(ctx, "Advisor replied",
		applog.FieldSessionID, sess.ID,
		applog.FieldRule, rule)
	return reply, nil
}

func (s *ChatService) wait(ctx context.Context) error {
	if s.delay == 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(s.delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (s *ChatService) message(sender core.Sender, text string) core.ChatMessage {
	return core.ChatMessage{
		ID:        uuid.NewString(),
		Sender:    sender,
		Text:      text,
		Timestamp: s.now().UTC(),
	}
}

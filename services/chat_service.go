//go:generate go run go.uber.org/mock/mockgen -source=chat_service.go -destination=../mocks/mock_chat_service.go -package=mocks
package services

import (
	"context"
	"direct-chat/contract"
	"direct-chat/domain"
	"direct-chat/domain/event"
	"direct-chat/errors"
	"direct-chat/moderation"
	"direct-chat/repositories"
	"direct-chat/runtime"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

type IChatService interface {
	Connect(username string, sink contract.EventSink) error
	Disconnect(ctx context.Context, username string)
	AnnouncePresence(ctx context.Context)
	Send(ctx context.Context, sender, recipient, content string) error
	History(username, other string) ([]domain.HistoryEntry, error)
	Directory() (domain.Directory, error)
}

// ChatService ties the session registry to the message log.
type ChatService struct {
	log              *slog.Logger
	users            repositories.IUserRepository
	messages         repositories.IMessageRepository
	registry         contract.IRegistry
	fanout           *runtime.Fanout
	moderator        *moderation.Moderator
	maxContentLength int
	telemetry        *runtime.Telemetry

	// presenceMu orders announcements: each snapshot reaches every sink
	// before the next one is taken.
	presenceMu sync.Mutex
}

func NewChatService(
	log *slog.Logger,
	users repositories.IUserRepository,
	messages repositories.IMessageRepository,
	registry contract.IRegistry,
	fanout *runtime.Fanout,
	moderator *moderation.Moderator,
	maxContentLength int,
) *ChatService {
	return &ChatService{
		log:              log,
		users:            users,
		messages:         messages,
		registry:         registry,
		fanout:           fanout,
		moderator:        moderator,
		maxContentLength: maxContentLength,
	}
}

// WithTelemetry reports sent messages and censorship hits to t.
func (s *ChatService) WithTelemetry(t *runtime.Telemetry) *ChatService {
	s.telemetry = t
	return s
}

// Connect binds username to sink. It fails with ErrAlreadyOnline when
// another connection holds the name.
func (s *ChatService) Connect(username string, sink contract.EventSink) error {
	if err := s.registry.TryAdd(username, sink); err != nil {
		return err
	}
	s.log.Info("User online", "username", username)
	return nil
}

// Disconnect is safe to call for a user that is not online.
func (s *ChatService) Disconnect(ctx context.Context, username string) {
	if _, ok := s.registry.Lookup(username); !ok {
		return
	}
	s.registry.Remove(username)
	s.log.Info("User offline", "username", username)
	s.AnnouncePresence(ctx)
}

// AnnouncePresence pushes the current online set to every session.
// Announcements are serialised, so a sink never receives an older snapshot
// after a newer one; each sink call stays bounded by the fan-out timeout.
func (s *ChatService) AnnouncePresence(ctx context.Context) {
	s.presenceMu.Lock()
	defer s.presenceMu.Unlock()

	version, online := s.registry.Presence()
	s.fanout.Broadcast(ctx, event.PresenceChanged{Version: version, Online: online})
}

// Send persists the message then forwards it to the recipient if online.
// Persistence is the commitment point: an offline recipient only sees the
// message through History.
func (s *ChatService) Send(ctx context.Context, sender, recipient, content string) error {
	if err := s.validateContent(content); err != nil {
		return err
	}

	from, err := s.users.GetUserByUsername(sender)
	if err != nil {
		return fmt.Errorf("resolve sender %q: %w", sender, err)
	}
	to, err := s.resolveRecipient(recipient)
	if err != nil {
		return err
	}

	content, censored := s.moderator.Censor(content)
	if len(censored) > 0 {
		s.telemetry.Emit(event.CensorshipHitType, event.Censored{Words: censored})
	}

	message := domain.Message{
		ID:         uuid.New(),
		SenderID:   from.ID,
		ReceiverID: to.ID,
		Sender:     from.Username,
		Receiver:   to.Username,
		Content:    content,
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.messages.StoreMessage(message); err != nil {
		return fmt.Errorf("store message: %w", err)
	}

	delivered := s.fanout.Deliver(ctx, to.Username, event.MessageDelivered{
		Sender:  message.Sender,
		Content: message.Content,
		At:      message.CreatedAt,
	})
	s.telemetry.Emit(event.MessageSentType, event.MessageSent{Sender: sender, Recipient: recipient, Delivered: delivered})
	s.log.Debug("Message stored", "sender", sender, "recipient", recipient, "delivered", delivered)
	return nil
}

// History returns the conversation between username and other, oldest first.
func (s *ChatService) History(username, other string) ([]domain.HistoryEntry, error) {
	self, err := s.users.GetUserByUsername(username)
	if err != nil {
		return nil, fmt.Errorf("resolve user %q: %w", username, err)
	}
	peer, err := s.resolveRecipient(other)
	if err != nil {
		return nil, err
	}

	messages, err := s.messages.GetConversation(self.ID, peer.ID)
	if err != nil {
		return nil, fmt.Errorf("read conversation: %w", err)
	}
	// The log is keyed by IDs; names come from the two resolved accounts.
	names := map[uuid.UUID]string{self.ID: self.Username, peer.ID: peer.Username}
	return lo.Map(messages, func(m domain.Message, _ int) domain.HistoryEntry {
		return domain.HistoryEntry{Sender: names[m.SenderID], Content: m.Content, At: m.CreatedAt}
	}), nil
}

// Directory lists every registered user and the online subset.
func (s *ChatService) Directory() (domain.Directory, error) {
	all, err := s.users.ListUsernames()
	if err != nil {
		return domain.Directory{}, fmt.Errorf("list users: %w", err)
	}
	return domain.Directory{All: all, Online: s.registry.Snapshot()}, nil
}

func (s *ChatService) resolveRecipient(username string) (domain.User, error) {
	user, err := s.users.GetUserByUsername(username)
	if errors.Is(err, errors.ErrUserNotFound) {
		return domain.User{}, errors.RecipientError{Username: username}
	}
	return user, err
}

// validateContent rejects text that cannot be rendered back on one
// HISTORY line, where '|' separates entries.
func (s *ChatService) validateContent(content string) error {
	switch {
	case strings.TrimSpace(content) == "":
		return fmt.Errorf("%w: empty", errors.ErrInvalidContent)
	case s.maxContentLength > 0 && utf8.RuneCountInString(content) > s.maxContentLength:
		return fmt.Errorf("%w: longer than %d characters", errors.ErrInvalidContent, s.maxContentLength)
	case strings.ContainsAny(content, "|\n\r"):
		return fmt.Errorf("%w: forbidden character", errors.ErrInvalidContent)
	}
	return nil
}

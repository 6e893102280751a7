// Package services – ChatService
//
// This file implements the ChatService, which manages peer-to-peer
// encrypted conversations. A chat's participants are canonicalized
// (lexicographically smaller address first) so the pair registry resolves
// (A,B) and (B,A) to the same conversation, and starting an existing chat
// is an idempotent no-op. Message payloads arrive as opaque ciphertext
// with an externally produced integrity hash; this service stores and
// returns them without ever decrypting or verifying.
//
// Observability: SendMessage is OpenTelemetry-instrumented; spans carry
// the chat identifier and payload size.
package services

import (
	"context"

	"gorm.io/gorm"

	"github.com/tbourn/go-suits-backend/internal/domain"
	"github.com/tbourn/go-suits-backend/internal/events"
	"github.com/tbourn/go-suits-backend/internal/repo"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// ChatService implements the messaging store.
type ChatService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
	// Events records outbox notifications inside each transaction.
	Events events.Recorder
}

// NewChatService constructs a ChatService on the given handle.
func NewChatService(db *gorm.DB) *ChatService {
	return &ChatService{DB: db}
}

// otherParticipant returns the chat participant that is not user.
func otherParticipant(c *domain.Chat, user string) string {
	if c.Participant1 == user {
		return c.Participant2
	}
	return c.Participant1
}

// isParticipant reports whether user is one of the chat's two parties.
func isParticipant(c *domain.Chat, user string) bool {
	return c.Participant1 == user || c.Participant2 == user
}

// StartChat opens (or returns) the conversation between caller and other.
//
// Semantics and validation:
//   - other must differ from caller; otherwise ErrSelfChat.
//   - If the canonical pair already has a chat, that chat is returned with
//     created=false and nothing is written: duplicate starts are absorbed,
//     not rejected.
//
// On first creation the pair key is registered, the empty chat persisted,
// and a ChatCreated event recorded, all in one transaction.
func (s *ChatService) StartChat(ctx context.Context, caller, other string) (*domain.Chat, bool, error) {
	if other == caller {
		return nil, false, ErrSelfChat
	}

	first, second := domain.CanonicalPair(caller, other)
	pairKey := domain.PairKey(caller, other)

	var (
		out     *domain.Chat
		created bool
	)
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := repo.GetChatByPairKey(ctx, tx, pairKey)
		if err == nil {
			out = existing
			return nil
		}
		if !repo.IsNotFound(err) {
			return err
		}

		c, err := repo.CreateChat(ctx, tx, pairKey, first, second)
		if err != nil {
			// A concurrent starter for the same pair won the registry;
			// absorb it exactly like a pre-existing chat.
			if isDuplicate(err) {
				out, err = repo.GetChatByPairKey(ctx, tx, pairKey)
				return err
			}
			return err
		}
		out = c
		created = true

		return s.Events.Record(ctx, tx, events.TypeChatCreated, caller, c.ID, events.ChatCreated{
			ChatID:       c.ID,
			Participant1: first,
			Participant2: second,
		})
	})
	if err != nil {
		return nil, false, err
	}
	return out, created, nil
}

// SendMessage appends ciphertext to a chat's log and returns the stored
// message, whose Seq is the new log index (length-1).
//
// Semantics and validation:
//   - the chat must exist; otherwise ErrChatNotFound.
//   - caller must be a participant; otherwise ErrNotParticipant.
//   - ciphertext must be non-empty; otherwise ErrEmptyMessage.
//
// The append and the MessageSent event (addressed to the other
// participant) commit together; the (chat, seq) unique index rejects the
// loser of two concurrent appends.
func (s *ChatService) SendMessage(ctx context.Context, caller, chatID string, ciphertext, hash []byte) (*domain.Message, error) {
	tr := otel.Tracer("services/ChatService")
	ctx, span := tr.Start(ctx, "SendMessage",
		trace.WithAttributes(
			attribute.String("chat.id", chatID),
			attribute.Int("message.bytes", len(ciphertext)),
		),
	)
	defer span.End()

	var sent *domain.Message
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		c, err := repo.GetChat(ctx, tx, chatID)
		if err != nil {
			if repo.IsNotFound(err) {
				return ErrChatNotFound
			}
			return err
		}
		if !isParticipant(c, caller) {
			return ErrNotParticipant
		}
		if len(ciphertext) == 0 {
			return ErrEmptyMessage
		}

		length, err := repo.CountMessages(ctx, tx, chatID)
		if err != nil {
			return err
		}

		m, err := repo.CreateMessage(ctx, tx, chatID, length, caller, ciphertext, hash)
		if err != nil {
			return err
		}
		sent = m

		return s.Events.Record(ctx, tx, events.TypeMessageSent, caller, chatID, events.MessageSent{
			ChatID:    chatID,
			Seq:       m.Seq,
			Sender:    caller,
			Recipient: otherParticipant(c, caller),
		})
	})
	if err != nil {
		return nil, err
	}
	return sent, nil
}

// MarkAsRead flips the read flag of the message at index in the chat.
//
// Semantics and validation:
//   - the chat must exist; otherwise ErrChatNotFound.
//   - caller must be a participant; otherwise ErrNotParticipant.
//   - index must be inside the log; otherwise ErrMessageIndexOutOfRange.
//   - caller must not be the message's sender (a sender cannot receipt
//     their own message); this also surfaces as ErrNotParticipant.
//   - the flag must still be false; otherwise ErrAlreadyRead.
//
// On success a MessageRead event carrying the original sender is recorded
// in the same transaction.
func (s *ChatService) MarkAsRead(ctx context.Context, caller, chatID string, index int64) (*domain.Message, error) {
	var read *domain.Message
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		c, err := repo.GetChat(ctx, tx, chatID)
		if err != nil {
			if repo.IsNotFound(err) {
				return ErrChatNotFound
			}
			return err
		}
		if !isParticipant(c, caller) {
			return ErrNotParticipant
		}

		length, err := repo.CountMessages(ctx, tx, chatID)
		if err != nil {
			return err
		}
		if index < 0 || index >= length {
			return ErrMessageIndexOutOfRange
		}

		m, err := repo.GetMessageBySeq(ctx, tx, chatID, index)
		if err != nil {
			if repo.IsNotFound(err) {
				return ErrMessageIndexOutOfRange
			}
			return err
		}
		if m.Sender == caller {
			return ErrNotParticipant
		}
		if m.Read {
			return ErrAlreadyRead
		}

		if err := repo.MarkMessageRead(ctx, tx, m.ID); err != nil {
			if repo.IsNotFound(err) {
				return ErrAlreadyRead
			}
			return err
		}
		m.Read = true
		read = m

		return s.Events.Record(ctx, tx, events.TypeMessageRead, caller, chatID, events.MessageRead{
			ChatID: chatID,
			Seq:    m.Seq,
			Sender: m.Sender,
			Reader: caller,
		})
	})
	if err != nil {
		return nil, err
	}
	return read, nil
}

// GetMessages returns a chat's full history in log order. No pagination:
// clients consume the complete log and slice locally.
func (s *ChatService) GetMessages(ctx context.Context, chatID string) ([]domain.Message, error) {
	if _, err := repo.GetChat(ctx, s.DB, chatID); err != nil {
		if repo.IsNotFound(err) {
			return nil, ErrChatNotFound
		}
		return nil, err
	}
	return repo.ListMessages(ctx, s.DB, chatID)
}

// GetUnreadCount returns how many messages addressed to user (sent by the
// other participant) remain unread. Linear in conversation length.
func (s *ChatService) GetUnreadCount(ctx context.Context, chatID, user string) (int64, error) {
	if _, err := repo.GetChat(ctx, s.DB, chatID); err != nil {
		if repo.IsNotFound(err) {
			return 0, ErrChatNotFound
		}
		return 0, err
	}
	return repo.CountUnread(ctx, s.DB, chatID, user)
}

// ListChats returns every chat the user participates in, newest first.
func (s *ChatService) ListChats(ctx context.Context, user string) ([]domain.Chat, error) {
	return repo.ListChatsForUser(ctx, s.DB, user)
}

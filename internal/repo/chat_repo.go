// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file covers chats and their append-only encrypted
// message logs.
//
// The pair-key unique index on chats is the conversation registry: one chat
// per unordered participant pair. Messages carry a dense per-chat sequence
// number assigned under the chat's transaction, so the log is strictly
// ordered and gap-free.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tbourn/go-suits-backend/internal/domain"
)

// CreateChat inserts a chat for the canonical pair (participant1 <
// participant2, pairKey derived from them). A concurrent insert for the
// same pair violates ux_chat_pair and surfaces as a raw unique-constraint
// error.
func CreateChat(ctx context.Context, db *gorm.DB, pairKey, participant1, participant2 string) (*domain.Chat, error) {
	c := &domain.Chat{
		ID:           uuid.NewString(),
		PairKey:      pairKey,
		Participant1: participant1,
		Participant2: participant2,
		CreatedAt:    time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(c).Error; err != nil {
		return nil, err
	}
	return c, nil
}

// GetChat fetches a chat by ID, or ErrNotFound if missing.
func GetChat(ctx context.Context, db *gorm.DB, id string) (*domain.Chat, error) {
	var c domain.Chat
	if err := db.WithContext(ctx).Where("id = ?", id).First(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

// GetChatByPairKey resolves the conversation registry for a canonical pair
// key, or ErrNotFound when the pair has no chat yet.
func GetChatByPairKey(ctx context.Context, db *gorm.DB, pairKey string) (*domain.Chat, error) {
	var c domain.Chat
	if err := db.WithContext(ctx).Where("pair_key = ?", pairKey).First(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

// ListChatsForUser returns every chat the address participates in, most
// recently created first.
func ListChatsForUser(ctx context.Context, db *gorm.DB, user string) ([]domain.Chat, error) {
	var out []domain.Chat
	err := db.WithContext(ctx).
		Where("participant1 = ? OR participant2 = ?", user, user).
		Order("created_at DESC").
		Find(&out).Error
	return out, err
}

// CountMessages returns the current length of a chat's log, which is also
// the sequence number the next appended message will take.
func CountMessages(ctx context.Context, db *gorm.DB, chatID string) (int64, error) {
	var total int64
	err := db.WithContext(ctx).
		Model(&domain.Message{}).
		Where("chat_id = ?", chatID).
		Count(&total).Error
	return total, err
}

// CreateMessage appends a message at position seq in the chat's log with
// read=false. (chat_id, seq) is unique, so two concurrent appends computed
// against the same length cannot both commit.
func CreateMessage(ctx context.Context, db *gorm.DB, chatID string, seq int64, sender string, ciphertext, hash []byte) (*domain.Message, error) {
	if hash == nil {
		hash = []byte{}
	}
	m := &domain.Message{
		ID:         uuid.NewString(),
		ChatID:     chatID,
		Seq:        seq,
		Sender:     sender,
		Ciphertext: ciphertext,
		Hash:       hash,
		CreatedAt:  time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(m).Error; err != nil {
		return nil, err
	}
	return m, nil
}

// GetMessageBySeq fetches the message at a given position in a chat's log,
// or ErrNotFound when the index is out of range.
func GetMessageBySeq(ctx context.Context, db *gorm.DB, chatID string, seq int64) (*domain.Message, error) {
	var m domain.Message
	err := db.WithContext(ctx).
		Where("chat_id = ? AND seq = ?", chatID, seq).
		First(&m).Error
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// GetMessageByID fetches a message row by primary key.
func GetMessageByID(ctx context.Context, db *gorm.DB, id string) (*domain.Message, error) {
	var m domain.Message
	if err := db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

// MarkMessageRead flips the write-once read flag on a message. Returns
// ErrNotFound when the flag was already set (or the row is missing), so
// the caller can distinguish a repeated receipt from a first read.
func MarkMessageRead(ctx context.Context, db *gorm.DB, id string) error {
	res := db.WithContext(ctx).
		Model(&domain.Message{}).
		Where("id = ? AND read = ?", id, false).
		Update("read", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ListMessages returns a chat's full history in log order (Seq ASC).
// Pagination is deliberately absent: clients consume the whole log and
// slice locally.
func ListMessages(ctx context.Context, db *gorm.DB, chatID string) ([]domain.Message, error) {
	var out []domain.Message
	err := db.WithContext(ctx).
		Where("chat_id = ?", chatID).
		Order("seq ASC").
		Find(&out).Error
	return out, err
}

// CountUnread returns how many messages in the chat were sent by someone
// other than user and are still unread. Linear in conversation length.
func CountUnread(ctx context.Context, db *gorm.DB, chatID, user string) (int64, error) {
	var total int64
	err := db.WithContext(ctx).
		Model(&domain.Message{}).
		Where("chat_id = ? AND sender <> ? AND read = ?", chatID, user, false).
		Count(&total).Error
	return total, err
}

// Package events defines the notification events emitted by successful
// operations and the transactional recorder that appends them to the
// outbox. Events exist for off-chain style indexers: owned objects
// (comments, likes, messages) are not centrally indexed, so consumers
// rebuild query indexes from this log.
//
// Emission is always the last write of an operation's transaction. A
// committed operation therefore has exactly one event; an aborted one has
// none.
package events

import (
	"context"
	"encoding/json"

	"gorm.io/gorm"

	"github.com/tbourn/go-suits-backend/internal/repo"
)

// Event type names, as consumed by indexers.
const (
	TypeProfileCreated = "ProfileCreated"
	TypePostCreated    = "PostCreated"
	TypeLikeCreated    = "LikeCreated"
	TypeCommentCreated = "CommentCreated"
	TypeRetweetCreated = "RetweetCreated"
	TypeTipSent        = "TipSent"
	TypeFundsWithdrawn = "FundsWithdrawn"
	TypeChatCreated    = "ChatCreated"
	TypeMessageSent    = "MessageSent"
	TypeMessageRead    = "MessageRead"
)

// ProfileCreated announces a new identity.
type ProfileCreated struct {
	ProfileID string `json:"profile_id"`
	Owner     string `json:"owner"`
	Username  string `json:"username"`
}

// PostCreated announces a new suit. Preview carries at most the first 100
// runes of the content.
type PostCreated struct {
	PostID  string `json:"post_id"`
	Creator string `json:"creator"`
	Preview string `json:"preview"`
}

// LikeCreated announces a like on a post.
type LikeCreated struct {
	PostID string `json:"post_id"`
	Liker  string `json:"liker"`
}

// CommentCreated announces a comment on a post.
type CommentCreated struct {
	CommentID string `json:"comment_id"`
	PostID    string `json:"post_id"`
	Commenter string `json:"commenter"`
}

// RetweetCreated announces a retweet of a post.
type RetweetCreated struct {
	PostID    string `json:"post_id"`
	Retweeter string `json:"retweeter"`
}

// TipSent announces a tip credited to a creator's escrow.
type TipSent struct {
	PostID    string `json:"post_id"`
	Tipper    string `json:"tipper"`
	Recipient string `json:"recipient"`
	Amount    int64  `json:"amount"`
}

// FundsWithdrawn announces an escrow withdrawal by its owner.
type FundsWithdrawn struct {
	BalanceID string `json:"balance_id"`
	Owner     string `json:"owner"`
	Amount    int64  `json:"amount"`
}

// ChatCreated announces a new conversation between a canonical pair.
type ChatCreated struct {
	ChatID       string `json:"chat_id"`
	Participant1 string `json:"participant_1"`
	Participant2 string `json:"participant_2"`
}

// MessageSent announces a message appended to a chat, addressed to the
// other participant.
type MessageSent struct {
	ChatID    string `json:"chat_id"`
	Seq       int64  `json:"seq"`
	Sender    string `json:"sender"`
	Recipient string `json:"recipient"`
}

// MessageRead is the read receipt, carrying the original sender so their
// client can surface it.
type MessageRead struct {
	ChatID string `json:"chat_id"`
	Seq    int64  `json:"seq"`
	Sender string `json:"sender"`
	Reader string `json:"reader"`
}

// Recorder appends events to the outbox table. The zero value is usable;
// the struct exists so services can depend on a narrow emission seam and
// tests can substitute their own.
type Recorder struct{}

// Record marshals payload and appends it to the outbox on the given handle,
// which must be the operation's transaction handle. actor is the caller
// address; subject identifies the touched entity (post, chat, balance, or
// profile ID).
func (Recorder) Record(ctx context.Context, tx *gorm.DB, eventType, actor, subject string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	if _, err := repo.AppendEvent(ctx, tx, eventType, actor, subject, string(body)); err != nil {
		return err
	}
	emittedTotal.WithLabelValues(eventType).Inc()
	return nil
}

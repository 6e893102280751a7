// Package domain defines the persistence models for the Suits social
// platform: profiles, posts ("suits"), interaction markers, tip balances,
// and encrypted chats. These types are mapped with GORM and form the core
// data layer of the application.
//
// Registry invariants from the on-chain design are expressed as unique
// indexes: one username per profile, one profile per address, one like and
// one retweet per (post, user) pair, one tip balance per owner, and one
// chat per canonical participant pair. Every mutation that touches a
// registry row runs inside a single transaction at the service layer, so a
// registry entry and its backing object can never diverge.
package domain

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

// StringList is a JSON-serialized list of strings stored in a TEXT column.
// It backs the optional media URL list on posts.
type StringList []string

// Value implements driver.Valuer, serializing the list as JSON.
func (l StringList) Value() (driver.Value, error) {
	if len(l) == 0 {
		return "[]", nil
	}
	b, err := json.Marshal(l)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner, deserializing a JSON TEXT column.
func (l *StringList) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*l = nil
		return nil
	case string:
		return json.Unmarshal([]byte(v), l)
	case []byte:
		return json.Unmarshal(v, l)
	default:
		return errors.New("domain: unsupported source type for StringList")
	}
}

// Profile represents a user identity. A profile is created at most once per
// address, its username is globally unique, and it is never deleted.
//
// Fields:
//   - ID: stable UUID primary key (char(36)).
//   - Owner: address that controls the profile; unique (one profile each).
//   - Username: global handle, 3–20 runes, unique across all profiles.
//   - Bio / AvatarURL: free-form, mutable by the owner only.
//   - Followers / Following: denormalized counters. No operation currently
//     maintains them; they are reserved for a follow graph and stay zero.
//   - CreatedAt / UpdatedAt: timestamps managed by the repo layer / GORM.
type Profile struct {
	ID        string    `json:"id"         gorm:"type:char(36);primaryKey"`
	Owner     string    `json:"owner"      gorm:"type:varchar(128);not null;uniqueIndex:ux_profile_owner"`
	Username  string    `json:"username"   gorm:"type:varchar(20);not null;uniqueIndex:ux_profile_username"`
	Bio       string    `json:"bio"        gorm:"type:text;not null;default:''"`
	AvatarURL string    `json:"avatar_url" gorm:"type:text;not null;default:''"`
	Followers int64     `json:"followers"  gorm:"not null;default:0"`
	Following int64     `json:"following"  gorm:"not null;default:0"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the database table name for Profile.
func (Profile) TableName() string { return "profiles" }

// Post represents a suit: a short piece of content with denormalized
// interaction counters. Posts are created once, never deleted, and their
// counters are mutated only through the interaction and tipping services.
//
// Fields:
//   - ID: UUID primary key (char(36)).
//   - Creator: address of the author; deliberately unindexed (listing by
//     creator is a full scan, accepted as a scalability limit).
//   - Content: 1–280 runes of text.
//   - MediaURLs: optional attachment URLs, stored as JSON.
//   - LikeCount / CommentCount / RetweetCount: non-negative counters.
//   - TipTotal: lifetime tips received by this post, in minor currency units.
//   - CreatedAt: creation time; indexed for reverse-chronological paging.
type Post struct {
	ID           string     `json:"id"            gorm:"type:char(36);primaryKey"`
	Creator      string     `json:"creator"       gorm:"type:varchar(128);not null"`
	Content      string     `json:"content"       gorm:"type:text;not null"`
	MediaURLs    StringList `json:"media_urls"    gorm:"type:text;not null;default:'[]'"`
	LikeCount    int64      `json:"like_count"    gorm:"not null;default:0"`
	CommentCount int64      `json:"comment_count" gorm:"not null;default:0"`
	RetweetCount int64      `json:"retweet_count" gorm:"not null;default:0"`
	TipTotal     int64      `json:"tip_total"     gorm:"not null;default:0"`
	CreatedAt    time.Time  `json:"created_at"    gorm:"index:idx_posts_created"`
}

// TableName returns the database table name for Post.
func (Post) TableName() string { return "posts" }

// Like is a per-(post, user) marker. The unique index is the dedup
// registry: at most one live like per pair. Undoing a like hard-deletes
// the row so the registry key is freed for a later re-like.
type Like struct {
	ID        string    `json:"id"         gorm:"type:char(36);primaryKey"`
	PostID    string    `json:"post_id"    gorm:"type:char(36);not null;uniqueIndex:ux_like_post_user,priority:1"`
	UserID    string    `json:"user_id"    gorm:"type:varchar(128);not null;uniqueIndex:ux_like_post_user,priority:2"`
	CreatedAt time.Time `json:"created_at"`

	// Post is the liked suit. Markers are cascade-deleted with their post.
	Post Post `json:"-" gorm:"foreignKey:PostID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for Like.
func (Like) TableName() string { return "likes" }

// Retweet is a per-(post, user) marker, deduplicated exactly like Like but
// tracked independently: a user may both like and retweet the same post.
type Retweet struct {
	ID        string    `json:"id"         gorm:"type:char(36);primaryKey"`
	PostID    string    `json:"post_id"    gorm:"type:char(36);not null;uniqueIndex:ux_retweet_post_user,priority:1"`
	UserID    string    `json:"user_id"    gorm:"type:varchar(128);not null;uniqueIndex:ux_retweet_post_user,priority:2"`
	CreatedAt time.Time `json:"created_at"`

	Post Post `json:"-" gorm:"foreignKey:PostID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for Retweet.
func (Retweet) TableName() string { return "retweets" }

// Comment is a reply to a post. Comments are not deduplicated, may target
// the commenter's own post, and are never deleted through this system, so
// the post's comment counter only ever grows.
type Comment struct {
	ID        string    `json:"id"         gorm:"type:char(36);primaryKey"`
	PostID    string    `json:"post_id"    gorm:"type:char(36);not null;index:idx_comment_post"`
	UserID    string    `json:"user_id"    gorm:"type:varchar(128);not null"`
	Content   string    `json:"content"    gorm:"type:text;not null"`
	CreatedAt time.Time `json:"created_at"`

	Post Post `json:"-" gorm:"foreignKey:PostID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for Comment.
func (Comment) TableName() string { return "comments" }

// TipBalance is a per-recipient escrow, created lazily on the first tip.
// Any tipper may credit it; only the owner may withdraw.
//
// Invariant: Balance == TotalReceived - TotalWithdrawn at every commit.
type TipBalance struct {
	ID             string    `json:"id"              gorm:"type:char(36);primaryKey"`
	Owner          string    `json:"owner"           gorm:"type:varchar(128);not null;uniqueIndex:ux_balance_owner"`
	Balance        int64     `json:"balance"         gorm:"not null;default:0"`
	TotalReceived  int64     `json:"total_received"  gorm:"not null;default:0"`
	TotalWithdrawn int64     `json:"total_withdrawn" gorm:"not null;default:0"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// TableName returns the database table name for TipBalance.
func (TipBalance) TableName() string { return "tip_balances" }

// Chat is a conversation between exactly two participants. Participants are
// stored in canonical order (Participant1 < Participant2) and PairKey is the
// registry key derived from that order, so (A,B) and (B,A) always resolve to
// the same row regardless of who started the chat.
type Chat struct {
	ID           string    `json:"id"            gorm:"type:char(36);primaryKey"`
	PairKey      string    `json:"-"             gorm:"type:varchar(260);not null;uniqueIndex:ux_chat_pair"`
	Participant1 string    `json:"participant_1" gorm:"type:varchar(128);not null"`
	Participant2 string    `json:"participant_2" gorm:"type:varchar(128);not null"`
	CreatedAt    time.Time `json:"created_at"`
}

// TableName returns the database table name for Chat.
func (Chat) TableName() string { return "chats" }

// Message is one entry in a chat's append-only log. The payload is opaque
// ciphertext produced by the client before it reaches this system; the
// integrity hash is stored verbatim and never verified here.
//
// Seq is the dense 0-based position within the chat; (ChatID, Seq) is
// unique so the log admits no gaps or duplicates. Read is a write-once
// false→true flag flipped by the receiving participant.
type Message struct {
	ID         string    `json:"id"         gorm:"type:char(36);primaryKey"`
	ChatID     string    `json:"chat_id"    gorm:"type:char(36);not null;uniqueIndex:ux_message_chat_seq,priority:1"`
	Seq        int64     `json:"seq"        gorm:"not null;uniqueIndex:ux_message_chat_seq,priority:2"`
	Sender     string    `json:"sender"     gorm:"type:varchar(128);not null"`
	Ciphertext []byte    `json:"ciphertext" gorm:"type:blob;not null"`
	Hash       []byte    `json:"hash"       gorm:"type:blob;not null"`
	Read       bool      `json:"read"       gorm:"not null;default:false"`
	CreatedAt  time.Time `json:"created_at"`

	Chat Chat `json:"-" gorm:"foreignKey:ChatID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for Message.
func (Message) TableName() string { return "messages" }

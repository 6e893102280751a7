// Package services defines the business logic for profiles, posts,
// interactions, tipping, and chats. This file centralizes common
// service-level error values so that they can be consistently returned by
// service methods and checked by callers.
//
// These errors are intended for internal use by the service layer and
// translation into user-facing messages or HTTP status codes should be
// performed at the handler/controller layer. Every validation failure
// aborts the whole operation: services run each mutation inside one
// transaction, so a returned error implies no partial state change.
package services

import "errors"

// Identity errors.
var (
	// ErrInvalidUsername is returned when a username's rune length falls
	// outside the allowed [3, 20] range.
	ErrInvalidUsername = errors.New("username must be 3-20 characters")

	// ErrUsernameTaken is returned when the requested username is already
	// registered to a profile.
	ErrUsernameTaken = errors.New("username already taken")

	// ErrProfileExists is returned when an address that already holds a
	// profile attempts to create another.
	ErrProfileExists = errors.New("profile already exists for this address")

	// ErrProfileNotFound indicates that the requested profile or username
	// does not exist.
	ErrProfileNotFound = errors.New("profile not found")
)

// Post errors.
var (
	// ErrEmptyContent is returned when a post is created with no content.
	ErrEmptyContent = errors.New("content is empty")

	// ErrContentTooLong is returned when post content exceeds the maximum
	// rune length.
	ErrContentTooLong = errors.New("content too long")

	// ErrPostNotFound indicates that the referenced post does not exist.
	ErrPostNotFound = errors.New("post not found")
)

// Interaction errors.
var (
	// ErrOwnInteraction is returned when a creator tries to like or retweet
	// their own post.
	ErrOwnInteraction = errors.New("cannot act on own post")

	// ErrAlreadyLiked is returned when a user likes a post they already like.
	ErrAlreadyLiked = errors.New("already liked")

	// ErrAlreadyRetweeted is returned when a user retweets a post they
	// already retweeted.
	ErrAlreadyRetweeted = errors.New("already retweeted")

	// ErrLikeNotFound is returned when undoing a like that does not exist
	// for this (post, user) pair.
	ErrLikeNotFound = errors.New("like not found")

	// ErrRetweetNotFound is returned when undoing a retweet that does not
	// exist for this (post, user) pair.
	ErrRetweetNotFound = errors.New("retweet not found")

	// ErrEmptyComment is returned when a comment has no content.
	ErrEmptyComment = errors.New("comment is empty")
)

// Tipping errors.
var (
	// ErrBelowMinimumTip is returned when a tip is below the configured
	// minimum amount in minor units.
	ErrBelowMinimumTip = errors.New("tip below minimum amount")

	// ErrSelfTip is returned when a creator tips their own post.
	ErrSelfTip = errors.New("cannot tip own post")

	// ErrBalanceOwnerMismatch is returned when the supplied balance does
	// not belong to the post's creator.
	ErrBalanceOwnerMismatch = errors.New("balance owner does not match post creator")

	// ErrBalanceNotFound indicates that the referenced balance does not exist.
	ErrBalanceNotFound = errors.New("balance not found")

	// ErrZeroBalance is returned when withdrawing from an empty escrow.
	ErrZeroBalance = errors.New("balance is zero")

	// ErrInsufficientBalance is returned when a withdrawal exceeds the
	// current balance.
	ErrInsufficientBalance = errors.New("insufficient balance")

	// ErrInvalidAmount is returned when an amount is zero or negative.
	ErrInvalidAmount = errors.New("amount must be positive")
)

// Messaging errors.
var (
	// ErrSelfChat is returned when a user starts a chat with themselves.
	ErrSelfChat = errors.New("cannot chat with yourself")

	// ErrChatNotFound indicates that the referenced chat does not exist.
	ErrChatNotFound = errors.New("chat not found")

	// ErrNotParticipant is returned when the caller is not part of the
	// chat, and also when a sender tries to mark their own message read.
	ErrNotParticipant = errors.New("not a chat participant")

	// ErrEmptyMessage is returned when a message carries no ciphertext.
	ErrEmptyMessage = errors.New("message is empty")

	// ErrMessageIndexOutOfRange is returned when a message index is at or
	// beyond the chat's log length.
	ErrMessageIndexOutOfRange = errors.New("message index out of range")

	// ErrAlreadyRead is returned when marking a message that is already read.
	ErrAlreadyRead = errors.New("message already read")
)

// Shared errors.
var (
	// ErrNotOwner is returned when the caller does not own the object they
	// are trying to mutate.
	ErrNotOwner = errors.New("not the owner")
)

// Package handlers provides HTTP handler implementations for the public
// API. Handler wiring lives here: the Handlers struct groups endpoints for
// profiles, posts, interactions, tipping, chats, search, and the event feed, and
// depends on abstract service interfaces (declared next to the handlers
// that consume them) to keep transport concerns separate from business
// logic.
package handlers

import (
	"time"

	"gorm.io/gorm"
)

// Handlers groups the HTTP endpoints for every component of the platform.
type Handlers struct {
	identitySvc    IdentityService
	postSvc        PostService
	interactionSvc InteractionService
	tipSvc         TipService
	chatSvc        ChatService
	eventSvc       EventService
	searchSvc      SearchService

	// idemDB and idemTTL back Idempotency-Key replay on unsafe endpoints.
	// Both stay zero when WithIdempotency is not called, which disables
	// recording and replay entirely.
	idemDB  *gorm.DB
	idemTTL time.Duration
}

// New constructs a Handlers instance bound to the given services.
func New(identitySvc IdentityService, postSvc PostService, interactionSvc InteractionService, tipSvc TipService, chatSvc ChatService, eventSvc EventService, searchSvc SearchService) *Handlers {
	return &Handlers{
		identitySvc:    identitySvc,
		postSvc:        postSvc,
		interactionSvc: interactionSvc,
		tipSvc:         tipSvc,
		chatSvc:        chatSvc,
		eventSvc:       eventSvc,
		searchSvc:      searchSvc,
	}
}

// WithIdempotency enables Idempotency-Key recording and replay for the
// unsafe endpoints, storing outcome records in db for ttl. Returns the
// receiver for chaining at wiring time.
func (h *Handlers) WithIdempotency(db *gorm.DB, ttl time.Duration) *Handlers {
	h.idemDB = db
	h.idemTTL = ttl
	return h
}

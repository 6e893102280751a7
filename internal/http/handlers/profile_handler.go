// Profile HTTP handlers.
//
// This file exposes REST endpoints for the identity registry:
//   - POST /profiles                      (create)
//   - PUT  /profiles/{id}                 (update)
//   - GET  /profiles/{id}                 (fetch by ID)
//   - GET  /me/profile                    (fetch caller's profile)
//   - GET  /usernames/{name}              (resolve owner)
//   - GET  /usernames/{name}/available    (availability check)
//
// Handlers are transport-thin: they validate input, call application
// services, and translate results into HTTP responses.
package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-suits-backend/internal/domain"
)

// IdentityService defines the identity-registry operations consumed by
// HTTP handlers.
//
// Implementations should be safe for concurrent use and must honor the
// provided context for cancellation and timeouts.
type IdentityService interface {
	// CreateProfile registers a new identity for the caller address.
	CreateProfile(ctx context.Context, owner, username, bio, avatarURL string) (*domain.Profile, error)
	// UpdateProfile mutates username/bio/avatar, enforcing ownership.
	UpdateProfile(ctx context.Context, caller, profileID, username, bio, avatarURL string) (*domain.Profile, error)
	// CheckUsernameAvailable reports whether a username is free.
	CheckUsernameAvailable(ctx context.Context, username string) (bool, error)
	// GetOwnerByUsername resolves a registered username to its owner.
	GetOwnerByUsername(ctx context.Context, username string) (string, error)
	// GetProfile fetches a profile by ID.
	GetProfile(ctx context.Context, id string) (*domain.Profile, error)
	// GetProfileByOwner fetches the profile held by an address.
	GetProfileByOwner(ctx context.Context, owner string) (*domain.Profile, error)
}

// CreateProfileRequest is the JSON payload for creating a profile.
type CreateProfileRequest struct {
	// Username is the global handle, 3–20 characters.
	Username string `json:"username" binding:"required" example:"suitmaker"`
	// Bio is free-form profile text.
	Bio string `json:"bio" example:"tailor of fine suits"`
	// AvatarURL points at the profile image.
	AvatarURL string `json:"avatar_url" example:"https://cdn.example.com/a.png"`
}

// UpdateProfileRequest is the JSON payload for updating a profile.
type UpdateProfileRequest struct {
	Username  string `json:"username" binding:"required" example:"suitmaker"`
	Bio       string `json:"bio" example:"tailor of fine suits"`
	AvatarURL string `json:"avatar_url" example:"https://cdn.example.com/a.png"`
}

// UsernameAvailableResponse reports availability of a handle.
type UsernameAvailableResponse struct {
	Username  string `json:"username"`
	Available bool   `json:"available"`
}

// UsernameOwnerResponse resolves a handle to its owner address.
type UsernameOwnerResponse struct {
	Username string `json:"username"`
	Owner    string `json:"owner"`
}

// CreateProfile godoc
// @ID          createProfile
// @Summary     Create a profile
// @Description Registers a unique username for the caller address and creates the profile atomically.
// @Tags        Profiles
// @Accept      json
// @Produce     json
//
// @Param       X-User-ID  header  string  false "Caller address (demo header)"  example(0xa11ce)
// @Param       body       body    handlers.CreateProfileRequest  true  "Create profile payload"
//
// @Success     201  {object}  domain.Profile
// @Failure     400  {object}  handlers.ErrorResponse  "Invalid username"
// @Failure     409  {object}  handlers.ErrorResponse  "Username taken or profile exists"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /profiles [post]
func (h *Handlers) CreateProfile(c *gin.Context) {
	var req CreateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	p, err := h.identitySvc.CreateProfile(c.Request.Context(), callerAddress(c), req.Username, req.Bio, req.AvatarURL)
	if err != nil {
		failService(c, err)
		return
	}
	ok(c, http.StatusCreated, p)
}

// UpdateProfile godoc
// @ID          updateProfile
// @Summary     Update a profile
// @Description Updates bio/avatar, and atomically swaps the username registration when the handle changes.
// @Tags        Profiles
// @Accept      json
// @Produce     json
//
// @Param       X-User-ID  header  string  false "Caller address (demo header)"  example(0xa11ce)
// @Param       id         path    string  true  "Profile ID"
// @Param       body       body    handlers.UpdateProfileRequest  true  "Update payload"
//
// @Success     200  {object}  domain.Profile
// @Failure     400  {object}  handlers.ErrorResponse  "Invalid username"
// @Failure     403  {object}  handlers.ErrorResponse  "Not the owner"
// @Failure     404  {object}  handlers.ErrorResponse  "Profile not found"
// @Failure     409  {object}  handlers.ErrorResponse  "Username taken"
// @Router      /profiles/{id} [put]
func (h *Handlers) UpdateProfile(c *gin.Context) {
	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	p, err := h.identitySvc.UpdateProfile(c.Request.Context(), callerAddress(c), c.Param("id"), req.Username, req.Bio, req.AvatarURL)
	if err != nil {
		failService(c, err)
		return
	}
	ok(c, http.StatusOK, p)
}

// GetProfile godoc
// @ID          getProfile
// @Summary     Fetch a profile by ID
// @Tags        Profiles
// @Produce     json
// @Param       id  path  string  true  "Profile ID"
// @Success     200  {object}  domain.Profile
// @Failure     404  {object}  handlers.ErrorResponse  "Profile not found"
// @Router      /profiles/{id} [get]
func (h *Handlers) GetProfile(c *gin.Context) {
	p, err := h.identitySvc.GetProfile(c.Request.Context(), c.Param("id"))
	if err != nil {
		failService(c, err)
		return
	}
	ok(c, http.StatusOK, p)
}

// GetMyProfile godoc
// @ID          getMyProfile
// @Summary     Fetch the caller's profile
// @Tags        Profiles
// @Produce     json
// @Param       X-User-ID  header  string  false "Caller address (demo header)"  example(0xa11ce)
// @Success     200  {object}  domain.Profile
// @Failure     404  {object}  handlers.ErrorResponse  "Profile not found"
// @Router      /me/profile [get]
func (h *Handlers) GetMyProfile(c *gin.Context) {
	p, err := h.identitySvc.GetProfileByOwner(c.Request.Context(), callerAddress(c))
	if err != nil {
		failService(c, err)
		return
	}
	ok(c, http.StatusOK, p)
}

// GetUsernameOwner godoc
// @ID          getUsernameOwner
// @Summary     Resolve a username to its owner address
// @Tags        Profiles
// @Produce     json
// @Param       name  path  string  true  "Username"
// @Success     200  {object}  handlers.UsernameOwnerResponse
// @Failure     404  {object}  handlers.ErrorResponse  "Unknown username"
// @Router      /usernames/{name} [get]
func (h *Handlers) GetUsernameOwner(c *gin.Context) {
	name := c.Param("name")
	owner, err := h.identitySvc.GetOwnerByUsername(c.Request.Context(), name)
	if err != nil {
		failService(c, err)
		return
	}
	ok(c, http.StatusOK, UsernameOwnerResponse{Username: name, Owner: owner})
}

// CheckUsername godoc
// @ID          checkUsername
// @Summary     Check whether a username is available
// @Tags        Profiles
// @Produce     json
// @Param       name  path  string  true  "Username"
// @Success     200  {object}  handlers.UsernameAvailableResponse
// @Router      /usernames/{name}/available [get]
func (h *Handlers) CheckUsername(c *gin.Context) {
	name := c.Param("name")
	available, err := h.identitySvc.CheckUsernameAvailable(c.Request.Context(), name)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, UsernameAvailableResponse{Username: name, Available: available})
}

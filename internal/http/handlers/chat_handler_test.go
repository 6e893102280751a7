package handlers

import (
	"encoding/base64"
	"fmt"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-suits-backend/internal/domain"
)

// startChatHTTP opens (or reopens) a chat between caller and other.
func startChatHTTP(t *testing.T, r *gin.Engine, caller, other string) StartChatResponse {
	t.Helper()
	w := doJSON(t, r, http.MethodPost, "/api/v1/chats", caller,
		fmt.Sprintf(`{"participant":%q}`, other))
	if w.Code != http.StatusCreated && w.Code != http.StatusOK {
		t.Fatalf("start chat -> %d: %s", w.Code, w.Body.String())
	}
	var resp StartChatResponse
	decodeBody(t, w, &resp)
	return resp
}

func b64(s string) string { return base64.StdEncoding.EncodeToString([]byte(s)) }

func TestStartChat_Endpoint(t *testing.T) {
	r, _ := newHandlerEnv(t)

	// Self-chat -> 403.
	w := doJSON(t, r, http.MethodPost, "/api/v1/chats", "0xa", `{"participant":"0xa"}`)
	if w.Code != http.StatusForbidden {
		t.Fatalf("self chat -> %d", w.Code)
	}

	// First open -> 201; reopening from the other side -> 200, same chat.
	w = doJSON(t, r, http.MethodPost, "/api/v1/chats", "0xa", `{"participant":"0xb"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("first open -> %d: %s", w.Code, w.Body.String())
	}
	var first StartChatResponse
	decodeBody(t, w, &first)
	if !first.Created {
		t.Fatal("first open must report created")
	}

	w = doJSON(t, r, http.MethodPost, "/api/v1/chats", "0xb", `{"participant":"0xa"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("reopen -> %d", w.Code)
	}
	var again StartChatResponse
	decodeBody(t, w, &again)
	if again.Created || again.Chat.ID != first.Chat.ID {
		t.Fatalf("reopen: created=%v id=%s want id=%s", again.Created, again.Chat.ID, first.Chat.ID)
	}

	// Both sides see the chat in their listing.
	for _, who := range []string{"0xa", "0xb"} {
		w = doJSON(t, r, http.MethodGet, "/api/v1/chats", who, "")
		if w.Code != http.StatusOK {
			t.Fatalf("list(%s) -> %d", who, w.Code)
		}
		var chats []domain.Chat
		decodeBody(t, w, &chats)
		if len(chats) != 1 {
			t.Fatalf("list(%s) = %d chats, want 1", who, len(chats))
		}
	}
}

func TestSendMessage_Endpoint(t *testing.T) {
	r, _ := newHandlerEnv(t)
	chat := startChatHTTP(t, r, "0xa", "0xb").Chat

	// Ciphertext must be valid base64.
	w := doJSON(t, r, http.MethodPost, "/api/v1/chats/"+chat.ID+"/messages", "0xa",
		`{"ciphertext":"not base64!!"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("bad base64 -> %d", w.Code)
	}

	// Outsiders cannot post.
	w = doJSON(t, r, http.MethodPost, "/api/v1/chats/"+chat.ID+"/messages", "0xeve",
		fmt.Sprintf(`{"ciphertext":%q}`, b64("intrusion")))
	if w.Code != http.StatusForbidden {
		t.Fatalf("outsider -> %d", w.Code)
	}

	// Messages take consecutive sequence numbers from zero.
	for i := 0; i < 3; i++ {
		w = doJSON(t, r, http.MethodPost, "/api/v1/chats/"+chat.ID+"/messages", "0xa",
			fmt.Sprintf(`{"ciphertext":%q,"hash":%q}`, b64(fmt.Sprintf("m%d", i)), b64("h")))
		if w.Code != http.StatusCreated {
			t.Fatalf("send %d -> %d: %s", i, w.Code, w.Body.String())
		}
		var m domain.Message
		decodeBody(t, w, &m)
		if m.Seq != int64(i) {
			t.Fatalf("seq = %d, want %d", m.Seq, i)
		}
	}

	w = doJSON(t, r, http.MethodGet, "/api/v1/chats/"+chat.ID+"/messages", "0xb", "")
	if w.Code != http.StatusOK {
		t.Fatalf("list -> %d", w.Code)
	}
	var msgs []domain.Message
	decodeBody(t, w, &msgs)
	if len(msgs) != 3 {
		t.Fatalf("len = %d, want 3", len(msgs))
	}

	// Missing chat -> 404.
	w = doJSON(t, r, http.MethodPost, "/api/v1/chats/missing/messages", "0xa",
		fmt.Sprintf(`{"ciphertext":%q}`, b64("hello")))
	if w.Code != http.StatusNotFound {
		t.Fatalf("missing chat -> %d", w.Code)
	}
}

func TestMarkMessageRead_Endpoint(t *testing.T) {
	r, _ := newHandlerEnv(t)
	chat := startChatHTTP(t, r, "0xa", "0xb").Chat

	w := doJSON(t, r, http.MethodPost, "/api/v1/chats/"+chat.ID+"/messages", "0xa",
		fmt.Sprintf(`{"ciphertext":%q}`, b64("hello")))
	if w.Code != http.StatusCreated {
		t.Fatalf("send -> %d", w.Code)
	}

	// Malformed and negative sequence segments are rejected up front.
	w = doJSON(t, r, http.MethodPost, "/api/v1/chats/"+chat.ID+"/messages/abc/read", "0xb", "")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("non-numeric seq -> %d", w.Code)
	}
	w = doJSON(t, r, http.MethodPost, "/api/v1/chats/"+chat.ID+"/messages/-1/read", "0xb", "")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("negative seq -> %d", w.Code)
	}

	// Out of range -> 404; sender receipting own message -> 403.
	w = doJSON(t, r, http.MethodPost, "/api/v1/chats/"+chat.ID+"/messages/9/read", "0xb", "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("out of range -> %d", w.Code)
	}
	w = doJSON(t, r, http.MethodPost, "/api/v1/chats/"+chat.ID+"/messages/0/read", "0xa", "")
	if w.Code != http.StatusForbidden {
		t.Fatalf("sender receipt -> %d", w.Code)
	}

	// Recipient receipt -> 200; replay -> 409.
	w = doJSON(t, r, http.MethodPost, "/api/v1/chats/"+chat.ID+"/messages/0/read", "0xb", "")
	if w.Code != http.StatusOK {
		t.Fatalf("receipt -> %d: %s", w.Code, w.Body.String())
	}
	var m domain.Message
	decodeBody(t, w, &m)
	if !m.Read {
		t.Fatal("message not flagged read")
	}
	w = doJSON(t, r, http.MethodPost, "/api/v1/chats/"+chat.ID+"/messages/0/read", "0xb", "")
	if w.Code != http.StatusConflict {
		t.Fatalf("replay -> %d", w.Code)
	}
}

func TestGetUnreadCount_Endpoint(t *testing.T) {
	r, _ := newHandlerEnv(t)
	chat := startChatHTTP(t, r, "0xa", "0xb").Chat

	for i := 0; i < 2; i++ {
		w := doJSON(t, r, http.MethodPost, "/api/v1/chats/"+chat.ID+"/messages", "0xa",
			fmt.Sprintf(`{"ciphertext":%q}`, b64("ping")))
		if w.Code != http.StatusCreated {
			t.Fatalf("send -> %d", w.Code)
		}
	}

	w := doJSON(t, r, http.MethodGet, "/api/v1/chats/"+chat.ID+"/unread", "0xb", "")
	if w.Code != http.StatusOK {
		t.Fatalf("unread -> %d", w.Code)
	}
	var resp UnreadCountResponse
	decodeBody(t, w, &resp)
	if resp.Unread != 2 {
		t.Fatalf("unread = %d, want 2", resp.Unread)
	}

	// The sender has nothing inbound.
	w = doJSON(t, r, http.MethodGet, "/api/v1/chats/"+chat.ID+"/unread", "0xa", "")
	decodeBody(t, w, &resp)
	if resp.Unread != 0 {
		t.Fatalf("sender unread = %d, want 0", resp.Unread)
	}
}

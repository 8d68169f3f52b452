package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dmitrymomot/foundation/core/cookie"
)

const flashKey = "messages"

// FlashCookie holds one-time user messages shown on the next page render.
const FlashCookie = "__flash_" + flashKey

const (
	FlashLevelError   = "error"
	FlashLevelWarning = "warning"
	FlashLevelInfo    = "info"
)

// FlashMessage is a single queued message.
type FlashMessage struct {
	Level   string `json:"level"`
	Message string `json:"message"`
}

// Flasher queues messages in an encrypted flash cookie.
type Flasher struct {
	cookies *cookie.Manager
}

func NewFlasher(cookies *cookie.Manager) *Flasher {
	return &Flasher{cookies: cookies}
}

// Add appends a message, keeping the ones already queued on the request.
func (f *Flasher) Add(w http.ResponseWriter, r *http.Request, level, message string) error {
	var messages []FlashMessage
	if data, err := f.cookies.GetEncrypted(r, FlashCookie); err == nil {
		_ = json.Unmarshal([]byte(data), &messages)
	}
	messages = append(messages, FlashMessage{Level: level, Message: message})

	return f.cookies.SetFlash(w, r, flashKey, messages)
}

// Pop returns the queued messages and deletes the cookie. No cookie means
// no messages.
func (f *Flasher) Pop(w http.ResponseWriter, r *http.Request) ([]FlashMessage, error) {
	var messages []FlashMessage
	err := f.cookies.GetFlash(w, r, flashKey, &messages)
	if errors.Is(err, cookie.ErrCookieNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return messages, nil
}

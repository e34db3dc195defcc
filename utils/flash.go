package utils

import (
	"crypto/sha256"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/sessions"
)

// SessionName is the name of the signed session cookie carrying flashes.
const SessionName = "artcopy-session"

// Flash categories understood by the templates.
const (
	FlashError   = "error"
	FlashSuccess = "success"
)

// Flash is one message queued for the next rendered page.
type Flash struct {
	Category string
	Message  string
}

// Flasher queues and pops one-shot messages in a cookie session.
type Flasher struct {
	store *sessions.CookieStore
}

// NewFlasher builds a cookie store signed with a key derived from secret.
// The secret must be stable across restarts and instances.
func NewFlasher(secret string, secure bool) *Flasher {
	key := sha256.Sum256([]byte(secret))
	store := sessions.NewCookieStore(key[:])
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   86400,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
	return &Flasher{store: store}
}

// Add queues message under category. A session that cannot be decoded (for
// example after a secret rotation) is replaced by a fresh one.
func (f *Flasher) Add(c *gin.Context, category, message string) error {
	session, _ := f.store.Get(c.Request, SessionName)
	session.AddFlash(message, category)
	return session.Save(c.Request, c.Writer)
}

// Pop returns and clears every queued message, errors first.
func (f *Flasher) Pop(c *gin.Context) []Flash {
	session, _ := f.store.Get(c.Request, SessionName)
	var out []Flash
	for _, category := range []string{FlashError, FlashSuccess} {
		for _, v := range session.Flashes(category) {
			if msg, ok := v.(string); ok {
				out = append(out, Flash{Category: category, Message: msg})
			}
		}
	}
	if len(out) > 0 {
		_ = session.Save(c.Request, c.Writer)
	}
	return out
}

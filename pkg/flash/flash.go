// Package flash carries one-shot user messages across a redirect. Messages
// are stored in Redis under a random id held in a short-lived cookie and are
// removed on first read.
package flash

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/angelmondragon/parkinglot-manager/pkg/config"
	redisclient "github.com/angelmondragon/parkinglot-manager/pkg/redis"
	"github.com/google/uuid"
)

type Kind string

const (
	KindSuccess Kind = "success"
	KindError   Kind = "error"
)

type Message struct {
	Kind Kind   `json:"kind"`
	Text string `json:"text"`
}

func Success(text string) Message { return Message{Kind: KindSuccess, Text: text} }

func Error(text string) Message { return Message{Kind: KindError, Text: text} }

// Flasher is the surface used by handlers and the view renderer.
type Flasher interface {
	Add(w http.ResponseWriter, r *http.Request, msgs ...Message) error
	Pop(w http.ResponseWriter, r *http.Request) ([]Message, error)
}

type flashStore interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	GetDel(ctx context.Context, key string) (string, error)
}

type flashKeyer interface {
	FlashKey(id string) string
}

type Manager struct {
	store      flashStore
	keyer      flashKeyer
	cookieName string
	secure     bool
	ttl        time.Duration
}

func NewManager(client *redisclient.Client, cfg config.SessionConfig) (*Manager, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client is required")
	}
	if cfg.FlashCookie == "" {
		return nil, fmt.Errorf("flash cookie name is required")
	}
	ttl := cfg.FlashTTL
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &Manager{
		store:      client,
		keyer:      client,
		cookieName: cfg.FlashCookie,
		secure:     cfg.CookieSecure,
		ttl:        ttl,
	}, nil
}

// Add queues msgs for the next rendered page.
func (m *Manager) Add(w http.ResponseWriter, r *http.Request, msgs ...Message) error {
	if len(msgs) == 0 {
		return nil
	}
	payload, err := json.Marshal(msgs)
	if err != nil {
		return fmt.Errorf("encoding flash: %w", err)
	}
	id := uuid.NewString()
	if err := m.store.Set(r.Context(), m.keyer.FlashKey(id), payload, m.ttl); err != nil {
		return fmt.Errorf("storing flash: %w", err)
	}
	http.SetCookie(w, &http.Cookie{
		Name:     m.cookieName,
		Value:    id,
		Path:     "/",
		MaxAge:   int(m.ttl.Seconds()),
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// Pop returns and clears pending messages. A missing or expired flash is not an error.
func (m *Manager) Pop(w http.ResponseWriter, r *http.Request) ([]Message, error) {
	cookie, err := r.Cookie(m.cookieName)
	if err != nil || cookie.Value == "" {
		return nil, nil
	}
	m.clearCookie(w)

	raw, err := m.store.GetDel(r.Context(), m.keyer.FlashKey(cookie.Value))
	if err != nil {
		if redisclient.IsNil(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading flash: %w", err)
	}

	var msgs []Message
	if err := json.Unmarshal([]byte(raw), &msgs); err != nil {
		return nil, errors.Join(ErrCorrupt, err)
	}
	return msgs, nil
}

var ErrCorrupt = errors.New("flash payload is corrupt")

func (m *Manager) clearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     m.cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

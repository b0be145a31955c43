package session

import (
	"fmt"
	"hash/fnv"
	"log/slog"
	"sync"
	"time"

	"github.com/qudus4l/portfolio-chat/pkg/models"
)

// Config holds session cache configuration.
type Config struct {
	MaxMessages int           // turns kept per session
	Timeout     time.Duration // idle time before a session expires
}

// Cache keeps short conversation histories in memory, keyed by a
// client fingerprint. Histories are bounded and expire after idle
// timeout; everything is lost on restart.
type Cache struct {
	mu       sync.Mutex
	sessions map[string]*entry
	config   Config
	now      func() time.Time
}

type entry struct {
	messages []models.ChatMessage
}

// newest returns the timestamp of the latest turn.
func (e *entry) newest() time.Time {
	if len(e.messages) == 0 {
		return time.Time{}
	}
	return e.messages[len(e.messages)-1].Timestamp
}

// New creates a session cache.
func New(config Config) *Cache {
	if config.MaxMessages <= 0 {
		config.MaxMessages = 10
	}
	if config.Timeout <= 0 {
		config.Timeout = 30 * time.Minute
	}
	return &Cache{
		sessions: make(map[string]*entry),
		config:   config,
		now:      time.Now,
	}
}

// Fingerprint derives a session key from client address and user
// agent. It only needs to tell concurrent visitors apart, not resist
// spoofing.
func Fingerprint(ip, userAgent string) string {
	h := fnv.New32a()
	h.Write([]byte(userAgent))
	return fmt.Sprintf("%s-%d", ip, h.Sum32())
}

// Append records a conversation turn for the session, evicting the
// oldest turns beyond the message cap.
func (c *Cache) Append(fingerprint, role, content string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	e, ok := c.sessions[fingerprint]
	if !ok {
		e = &entry{}
		c.sessions[fingerprint] = e
	}

	e.messages = append(e.messages, models.ChatMessage{
		Role:      role,
		Content:   content,
		Timestamp: now,
	})
	if excess := len(e.messages) - c.config.MaxMessages; excess > 0 {
		e.messages = e.messages[excess:]
	}
}

// History returns a copy of the session's conversation turns. Sessions
// whose newest turn is older than the timeout are swept across the
// whole cache on each read.
func (c *Cache) History(fingerprint string) []models.ChatMessage {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.sweep()

	e, ok := c.sessions[fingerprint]
	if !ok {
		return nil
	}

	history := make([]models.ChatMessage, len(e.messages))
	copy(history, e.messages)
	return history
}

// Reset drops the session's history.
func (c *Cache) Reset(fingerprint string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.sessions, fingerprint)
}

// Len returns the number of live sessions.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.sessions)
}

// sweep removes idle sessions. Caller must hold the lock.
func (c *Cache) sweep() {
	cutoff := c.now().Add(-c.config.Timeout)
	for fp, e := range c.sessions {
		if e.newest().Before(cutoff) {
			delete(c.sessions, fp)
			slog.Debug("expired session", "fingerprint", fp)
		}
	}
}

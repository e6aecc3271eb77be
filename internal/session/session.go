// Package session keeps per-visitor state on the server: the cart, the
// star ratings, the anonymous visitor number used on community pages, the
// logged-in back-office user and one-shot flash messages.
//
// The browser only holds a signed cookie naming the session. Where the data
// lives is decided by a Store (FileStore in production, MemoryStore in
// tests). Sessions idle for longer than the configured TTL are gone.
package session

import (
	"context"
	"errors"
	"slices"
	"sync"
	"time"
)

// ErrNotFound is returned by Store.Load for unknown or idle-expired sessions.
var ErrNotFound = errors.New("session: not found")

// errCorrupt marks a stored session that no longer decodes.
var errCorrupt = errors.New("corrupt session")

// Data is the persisted part of a session.
type Data struct {
	Cart      []int64       `json:"cart,omitempty"`
	Ratings   map[int64]int `json:"ratings,omitempty"`
	VisitorID *int          `json:"visitorId,omitempty"`
	UserID    int64         `json:"userId,omitempty"`
	Flashes   []string      `json:"flashes,omitempty"`
	LastSeen  time.Time     `json:"lastSeen"`
}

// Store persists session data by id.
type Store interface {
	Load(ctx context.Context, id string) (*Data, error)
	Save(ctx context.Context, id string, data *Data) error
	Delete(ctx context.Context, id string) error
}

// Session is the request-scoped handle on one visitor's Data. Handlers get
// it with FromContext; Manager.Middleware saves it once the handler is done.
type Session struct {
	mu    sync.Mutex
	id    string
	data  *Data
	dirty bool
	fresh bool
}

// NewSession wraps data (nil means empty) under id.
func NewSession(id string, data *Data) *Session {
	if data == nil {
		data = &Data{}
	}
	return &Session{id: id, data: data}
}

func (s *Session) ID() string { return s.id }

// Modified reports whether anything changed since the session was loaded.
func (s *Session) Modified() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dirty
}

// Cart returns a copy of the game ids in the cart, in the order added.
func (s *Session) Cart() []int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.data.Cart)
}

// AddToCart appends gameID unless it is already present and reports
// whether the cart changed.
func (s *Session) AddToCart(gameID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if slices.Contains(s.data.Cart, gameID) {
		return false
	}
	s.data.Cart = append(s.data.Cart, gameID)
	s.dirty = true
	return true
}

// RemoveFromCart drops gameID. Removing an absent id is a no-op.
func (s *Session) RemoveFromCart(gameID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.data.Cart[:0:0]
	for _, id := range s.data.Cart {
		if id != gameID {
			kept = append(kept, id)
		}
	}
	if len(kept) != len(s.data.Cart) {
		s.data.Cart = kept
		s.dirty = true
	}
}

// Rating returns the visitor's stars for gameID and whether one was set.
func (s *Session) Rating(gameID int64) (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.data.Ratings[gameID]
	return v, ok
}

// EnsureRating returns the stored rating, recording 0 first when absent.
func (s *Session) EnsureRating(gameID int64) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if v, ok := s.data.Ratings[gameID]; ok {
		return v
	}
	s.setRatingLocked(gameID, 0)
	return 0
}

// SetRating overwrites the rating for gameID. Any value is accepted.
func (s *Session) SetRating(gameID int64, stars int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setRatingLocked(gameID, stars)
}

func (s *Session) setRatingLocked(gameID int64, stars int) {
	if s.data.Ratings == nil {
		s.data.Ratings = make(map[int64]int)
	}
	s.data.Ratings[gameID] = stars
	s.dirty = true
}

// Visitor returns the anonymous visitor number, drawing one from newID on
// first use.
func (s *Session) Visitor(newID func() int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.data.VisitorID == nil {
		id := newID()
		s.data.VisitorID = &id
		s.dirty = true
	}
	return *s.data.VisitorID
}

// UserID returns the logged-in back-office user, or 0.
func (s *Session) UserID() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.UserID
}

func (s *Session) Login(userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.UserID = userID
	s.dirty = true
}

func (s *Session) Logout() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.data.UserID != 0 {
		s.data.UserID = 0
		s.dirty = true
	}
}

// AddFlash queues a message for the next rendered page.
func (s *Session) AddFlash(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.Flashes = append(s.data.Flashes, msg)
	s.dirty = true
}

// PopFlashes returns and clears the queued flash messages.
func (s *Session) PopFlashes() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.data.Flashes) == 0 {
		return nil
	}
	out := s.data.Flashes
	s.data.Flashes = nil
	s.dirty = true
	return out
}

type contextKey struct{}

// NewContext returns ctx carrying s.
func NewContext(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, contextKey{}, s)
}

// FromContext returns the session stored by Manager.Middleware, or nil.
func FromContext(ctx context.Context) *Session {
	s, _ := ctx.Value(contextKey{}).(*Session)
	return s
}

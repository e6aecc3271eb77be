package service

import (
	"context"
	"log/slog"
	"maps"
	"os"
	"slices"
	"strings"
	"testing"

	"github.com/sakif/game-store/internal/apperror"
	"github.com/sakif/game-store/internal/auth"
	"github.com/sakif/game-store/internal/model"
)

// mockStore is an in-memory stand-in for sqlite.DB. It implements every
// repository interface so one value can back all services in a test.
type mockStore struct {
	games    map[int64]model.Game
	users    map[int64]model.User
	news     map[int64]model.News
	messages map[int64]model.Message
	nextID   int64
}

func newMockStore() *mockStore {
	return &mockStore{
		games:    make(map[int64]model.Game),
		users:    make(map[int64]model.User),
		news:     make(map[int64]model.News),
		messages: make(map[int64]model.Message),
	}
}

func (m *mockStore) id() int64 {
	m.nextID++
	return m.nextID
}

func sortedValues[T any](items map[int64]T) []T {
	out := make([]T, 0, len(items))
	for _, k := range slices.Sorted(maps.Keys(items)) {
		out = append(out, items[k])
	}
	return out
}

func (m *mockStore) CreateGame(_ context.Context, g *model.Game) error {
	g.ID = m.id()
	m.games[g.ID] = *g
	return nil
}

func (m *mockStore) GetGame(_ context.Context, id int64) (*model.Game, error) {
	g, ok := m.games[id]
	if !ok {
		return nil, apperror.NotFound("game", id)
	}
	return &g, nil
}

func (m *mockStore) ListGames(context.Context) ([]model.Game, error) {
	return sortedValues(m.games), nil
}

func (m *mockStore) SearchGames(_ context.Context, query string) ([]model.Game, error) {
	out := []model.Game{}
	for _, g := range sortedValues(m.games) {
		if strings.Contains(strings.ToLower(g.Name), strings.ToLower(query)) {
			out = append(out, g)
		}
	}
	return out, nil
}

func (m *mockStore) UpdateGame(_ context.Context, g *model.Game) error {
	if _, ok := m.games[g.ID]; !ok {
		return apperror.NotFound("game", g.ID)
	}
	m.games[g.ID] = *g
	return nil
}

func (m *mockStore) DeleteGame(_ context.Context, id int64) error {
	if _, ok := m.games[id]; !ok {
		return apperror.NotFound("game", id)
	}
	delete(m.games, id)
	return nil
}

func (m *mockStore) CreateUser(_ context.Context, u *model.User) error {
	for _, existing := range m.users {
		if existing.Username == u.Username {
			return apperror.Conflict("user", u.Username)
		}
	}
	u.ID = m.id()
	m.users[u.ID] = *u
	return nil
}

func (m *mockStore) GetUser(_ context.Context, id int64) (*model.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, apperror.NotFound("user", id)
	}
	return &u, nil
}

func (m *mockStore) GetUserByUsername(_ context.Context, username string) (*model.User, error) {
	for _, u := range m.users {
		if u.Username == username {
			return &u, nil
		}
	}
	return nil, apperror.NotFound("user", username)
}

func (m *mockStore) ListUsers(context.Context) ([]model.User, error) {
	return sortedValues(m.users), nil
}

func (m *mockStore) UpdateUser(_ context.Context, u *model.User) error {
	if _, ok := m.users[u.ID]; !ok {
		return apperror.NotFound("user", u.ID)
	}
	m.users[u.ID] = *u
	return nil
}

func (m *mockStore) DeleteUser(_ context.Context, id int64) error {
	if _, ok := m.users[id]; !ok {
		return apperror.NotFound("user", id)
	}
	delete(m.users, id)
	return nil
}

func (m *mockStore) CreateNews(_ context.Context, n *model.News) error {
	n.ID = m.id()
	m.news[n.ID] = *n
	return nil
}

func (m *mockStore) GetNews(_ context.Context, id int64) (*model.News, error) {
	n, ok := m.news[id]
	if !ok {
		return nil, apperror.NotFound("news", id)
	}
	return &n, nil
}

func (m *mockStore) ListNews(context.Context) ([]model.News, error) {
	return sortedValues(m.news), nil
}

func (m *mockStore) UpdateNews(_ context.Context, n *model.News) error {
	if _, ok := m.news[n.ID]; !ok {
		return apperror.NotFound("news", n.ID)
	}
	m.news[n.ID] = *n
	return nil
}

func (m *mockStore) DeleteNews(_ context.Context, id int64) error {
	if _, ok := m.news[id]; !ok {
		return apperror.NotFound("news", id)
	}
	delete(m.news, id)
	return nil
}

func (m *mockStore) CreateMessage(_ context.Context, msg *model.Message) error {
	if _, ok := m.games[msg.GameID]; !ok {
		return apperror.NotFound("game", msg.GameID)
	}
	msg.ID = m.id()
	m.messages[msg.ID] = *msg
	return nil
}

func (m *mockStore) GetMessage(_ context.Context, id int64) (*model.Message, error) {
	msg, ok := m.messages[id]
	if !ok {
		return nil, apperror.NotFound("message", id)
	}
	return &msg, nil
}

func (m *mockStore) ListMessages(context.Context) ([]model.Message, error) {
	return sortedValues(m.messages), nil
}

func (m *mockStore) ListMessagesByGame(_ context.Context, gameID int64) ([]model.Message, error) {
	out := []model.Message{}
	for _, msg := range sortedValues(m.messages) {
		if msg.GameID == gameID {
			out = append(out, msg)
		}
	}
	return out, nil
}

func (m *mockStore) UpdateMessage(_ context.Context, msg *model.Message) error {
	if _, ok := m.messages[msg.ID]; !ok {
		return apperror.NotFound("message", msg.ID)
	}
	if _, ok := m.games[msg.GameID]; !ok {
		return apperror.NotFound("game", msg.GameID)
	}
	m.messages[msg.ID] = *msg
	return nil
}

func (m *mockStore) DeleteMessage(_ context.Context, id int64) error {
	if _, ok := m.messages[id]; !ok {
		return apperror.NotFound("message", id)
	}
	delete(m.messages, id)
	return nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

// testPasswords uses the minimum bcrypt cost so tests stay fast.
func testPasswords() *auth.PasswordService {
	return auth.NewPasswordServiceForTest(4)
}

// addGame stores a game with a price and photo directory and returns it.
func addGame(t *testing.T, m *mockStore, name string, price int, dir string) model.Game {
	t.Helper()
	g := &model.Game{Name: name, Price: price, Author: "Studio", PhotoDir: dir}
	if err := m.CreateGame(context.Background(), g); err != nil {
		t.Fatalf("setup: CreateGame() error = %v", err)
	}
	return *g
}

package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/sakif/game-store/internal/apperror"
	"github.com/sakif/game-store/internal/auth"
	"github.com/sakif/game-store/internal/model"
	"github.com/sakif/game-store/internal/repository"
)

// FieldKind tells the admin form how to render and parse a field.
type FieldKind int

const (
	FieldText FieldKind = iota
	FieldTextArea
	FieldNumber
	FieldPassword
	FieldGame // id of an existing game, rendered as a select
)

func (k FieldKind) String() string {
	switch k {
	case FieldTextArea:
		return "textarea"
	case FieldNumber:
		return "number"
	case FieldPassword:
		return "password"
	case FieldGame:
		return "game"
	default:
		return "text"
	}
}

// Field describes one editable column of a record.
type Field struct {
	Name     string
	Label    string
	Kind     FieldKind
	Required bool
}

// Values carries form input and stored values, keyed by Field.Name.
type Values map[string]string

// Row is one line of an admin list; Cells line up with Resource.Columns.
type Row struct {
	ID    int64
	Cells []string
}

// Option is one choice of a FieldGame select.
type Option struct {
	Value string
	Label string
}

// Resource is a record type managed through the back office.
type Resource interface {
	Name() string
	Title() string
	Fields() []Field
	Columns() []string
	List(ctx context.Context) ([]Row, error)
	Get(ctx context.Context, id int64) (Values, error)
	// Save creates a record when id is 0 and updates it otherwise. It
	// returns the record id.
	Save(ctx context.Context, id int64, v Values) (int64, error)
	Delete(ctx context.Context, id int64) error
}

// AdminService exposes generic CRUD over every stored record type.
type AdminService struct {
	resources []Resource
	games     repository.GameRepository
	logger    *slog.Logger
}

func NewAdminService(
	games repository.GameRepository,
	users repository.UserRepository,
	news repository.NewsRepository,
	messages repository.MessageRepository,
	passwords *auth.PasswordService,
	logger *slog.Logger,
) *AdminService {
	return &AdminService{
		resources: []Resource{
			&gameResource{repo: games},
			&userResource{repo: users, passwords: passwords},
			&newsResource{repo: news},
			&messageResource{repo: messages, games: games},
		},
		games:  games,
		logger: logger,
	}
}

// Resources returns the managed record types in menu order.
func (s *AdminService) Resources() []Resource {
	return s.resources
}

// Resource looks a record type up by its URL name.
func (s *AdminService) Resource(name string) (Resource, error) {
	for _, r := range s.resources {
		if r.Name() == name {
			return r, nil
		}
	}
	return nil, &apperror.AppError{
		Err:     apperror.ErrNotFound,
		Message: fmt.Sprintf("unknown admin resource %q", name),
	}
}

// GameOptions lists the games for FieldGame selects.
func (s *AdminService) GameOptions(ctx context.Context) ([]Option, error) {
	games, err := s.games.ListGames(ctx)
	if err != nil {
		return nil, fmt.Errorf("service/admin: listing games: %w", err)
	}
	opts := make([]Option, 0, len(games))
	for _, g := range games {
		opts = append(opts, Option{Value: strconv.FormatInt(g.ID, 10), Label: g.Name})
	}
	return opts, nil
}

// Save validates and stores v through the named resource.
func (s *AdminService) Save(ctx context.Context, res Resource, id int64, v Values) (int64, error) {
	for _, f := range res.Fields() {
		if f.Required && strings.TrimSpace(v[f.Name]) == "" {
			// a blank password on edit keeps the stored one
			if f.Kind == FieldPassword && id != 0 {
				continue
			}
			return 0, apperror.ValidationFailed(f.Name, f.Label+" is required")
		}
	}

	savedID, err := res.Save(ctx, id, v)
	if err != nil {
		return 0, err
	}
	s.logger.Info("admin record saved",
		slog.String("resource", res.Name()),
		slog.Int64("id", savedID),
		slog.Bool("created", id == 0),
	)
	return savedID, nil
}

// Delete removes a record through the named resource.
func (s *AdminService) Delete(ctx context.Context, res Resource, id int64) error {
	if err := res.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("admin record deleted",
		slog.String("resource", res.Name()),
		slog.Int64("id", id),
	)
	return nil
}

func parseInt(v Values, f Field) (int, error) {
	raw := strings.TrimSpace(v[f.Name])
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperror.ValidationFailed(f.Name, f.Label+" must be a whole number")
	}
	return n, nil
}

func parseID(v Values, f Field) (int64, error) {
	n, err := strconv.ParseInt(strings.TrimSpace(v[f.Name]), 10, 64)
	if err != nil {
		return 0, apperror.ValidationFailed(f.Name, f.Label+" must be a record id")
	}
	return n, nil
}

type gameResource struct {
	repo repository.GameRepository
}

var gameFields = []Field{
	{Name: "name", Label: "Name", Kind: FieldText, Required: true},
	{Name: "price", Label: "Price", Kind: FieldNumber},
	{Name: "description", Label: "Description", Kind: FieldTextArea},
	{Name: "genre", Label: "Genre", Kind: FieldText},
	{Name: "date", Label: "Date", Kind: FieldText},
	{Name: "platform", Label: "Platform", Kind: FieldText},
	{Name: "author", Label: "Author", Kind: FieldText, Required: true},
	{Name: "rating", Label: "Rating", Kind: FieldNumber},
	{Name: "dir_photo", Label: "Photo directory", Kind: FieldText},
}

func (r *gameResource) Name() string      { return "games" }
func (r *gameResource) Title() string     { return "Games" }
func (r *gameResource) Fields() []Field   { return gameFields }
func (r *gameResource) Columns() []string { return []string{"Name", "Price", "Platform", "Author", "Rating"} }

func (r *gameResource) List(ctx context.Context) ([]Row, error) {
	games, err := r.repo.ListGames(ctx)
	if err != nil {
		return nil, err
	}
	rows := make([]Row, 0, len(games))
	for _, g := range games {
		rows = append(rows, Row{ID: g.ID, Cells: []string{
			g.Name, strconv.Itoa(g.Price), g.Platform, g.Author, strconv.Itoa(g.Rating),
		}})
	}
	return rows, nil
}

func (r *gameResource) Get(ctx context.Context, id int64) (Values, error) {
	g, err := r.repo.GetGame(ctx, id)
	if err != nil {
		return nil, err
	}
	return Values{
		"name":        g.Name,
		"price":       strconv.Itoa(g.Price),
		"description": g.Description,
		"genre":       g.Genre,
		"date":        g.Date,
		"platform":    g.Platform,
		"author":      g.Author,
		"rating":      strconv.Itoa(g.Rating),
		"dir_photo":   g.PhotoDir,
	}, nil
}

func (r *gameResource) Save(ctx context.Context, id int64, v Values) (int64, error) {
	price, err := parseInt(v, gameFields[1])
	if err != nil {
		return 0, err
	}
	rating, err := parseInt(v, gameFields[7])
	if err != nil {
		return 0, err
	}
	g := &model.Game{
		ID:          id,
		Name:        strings.TrimSpace(v["name"]),
		Price:       price,
		Description: v["description"],
		Genre:       v["genre"],
		Date:        v["date"],
		Platform:    v["platform"],
		Author:      strings.TrimSpace(v["author"]),
		Rating:      rating,
		PhotoDir:    strings.TrimSpace(v["dir_photo"]),
	}
	if id == 0 {
		err = r.repo.CreateGame(ctx, g)
	} else {
		err = r.repo.UpdateGame(ctx, g)
	}
	return g.ID, err
}

func (r *gameResource) Delete(ctx context.Context, id int64) error {
	return r.repo.DeleteGame(ctx, id)
}

type userResource struct {
	repo      repository.UserRepository
	passwords *auth.PasswordService
}

var userFields = []Field{
	{Name: "username", Label: "Username", Kind: FieldText, Required: true},
	{Name: "password", Label: "Password", Kind: FieldPassword, Required: true},
}

func (r *userResource) Name() string      { return "users" }
func (r *userResource) Title() string     { return "Users" }
func (r *userResource) Fields() []Field   { return userFields }
func (r *userResource) Columns() []string { return []string{"Username"} }

func (r *userResource) List(ctx context.Context) ([]Row, error) {
	users, err := r.repo.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	rows := make([]Row, 0, len(users))
	for _, u := range users {
		rows = append(rows, Row{ID: u.ID, Cells: []string{u.Username}})
	}
	return rows, nil
}

// Get never returns the password hash; the form shows an empty password.
func (r *userResource) Get(ctx context.Context, id int64) (Values, error) {
	u, err := r.repo.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}
	return Values{"username": u.Username}, nil
}

func (r *userResource) Save(ctx context.Context, id int64, v Values) (int64, error) {
	u := &model.User{ID: id, Username: strings.TrimSpace(v["username"])}

	if id != 0 {
		existing, err := r.repo.GetUser(ctx, id)
		if err != nil {
			return 0, err
		}
		u.PasswordHash = existing.PasswordHash
	}
	if pw := v["password"]; pw != "" {
		hash, err := r.passwords.Hash(pw)
		if err != nil {
			return 0, apperror.ValidationFailed("password", "password must be 72 bytes or fewer")
		}
		u.PasswordHash = hash
	}

	var err error
	if id == 0 {
		err = r.repo.CreateUser(ctx, u)
	} else {
		err = r.repo.UpdateUser(ctx, u)
	}
	return u.ID, err
}

func (r *userResource) Delete(ctx context.Context, id int64) error {
	return r.repo.DeleteUser(ctx, id)
}

type newsResource struct {
	repo repository.NewsRepository
}

var newsFields = []Field{
	{Name: "title", Label: "Title", Kind: FieldText, Required: true},
	{Name: "content", Label: "Content", Kind: FieldTextArea, Required: true},
}

func (r *newsResource) Name() string      { return "news" }
func (r *newsResource) Title() string     { return "News" }
func (r *newsResource) Fields() []Field   { return newsFields }
func (r *newsResource) Columns() []string { return []string{"Title"} }

func (r *newsResource) List(ctx context.Context) ([]Row, error) {
	news, err := r.repo.ListNews(ctx)
	if err != nil {
		return nil, err
	}
	rows := make([]Row, 0, len(news))
	for _, n := range news {
		rows = append(rows, Row{ID: n.ID, Cells: []string{n.Title}})
	}
	return rows, nil
}

func (r *newsResource) Get(ctx context.Context, id int64) (Values, error) {
	n, err := r.repo.GetNews(ctx, id)
	if err != nil {
		return nil, err
	}
	return Values{"title": n.Title, "content": n.Content}, nil
}

func (r *newsResource) Save(ctx context.Context, id int64, v Values) (int64, error) {
	n := &model.News{ID: id, Title: strings.TrimSpace(v["title"]), Content: v["content"]}
	var err error
	if id == 0 {
		err = r.repo.CreateNews(ctx, n)
	} else {
		err = r.repo.UpdateNews(ctx, n)
	}
	return n.ID, err
}

func (r *newsResource) Delete(ctx context.Context, id int64) error {
	return r.repo.DeleteNews(ctx, id)
}

type messageResource struct {
	repo  repository.MessageRepository
	games repository.GameRepository
}

var messageFields = []Field{
	{Name: "name", Label: "Name", Kind: FieldText, Required: true},
	{Name: "text", Label: "Text", Kind: FieldTextArea, Required: true},
	{Name: "game_id", Label: "Game", Kind: FieldGame, Required: true},
}

func (r *messageResource) Name() string      { return "messages" }
func (r *messageResource) Title() string     { return "Messages" }
func (r *messageResource) Fields() []Field   { return messageFields }
func (r *messageResource) Columns() []string { return []string{"Name", "Text", "Game"} }

func (r *messageResource) List(ctx context.Context) ([]Row, error) {
	msgs, err := r.repo.ListMessages(ctx)
	if err != nil {
		return nil, err
	}
	rows := make([]Row, 0, len(msgs))
	for _, m := range msgs {
		rows = append(rows, Row{ID: m.ID, Cells: []string{
			m.Name, m.Text, strconv.FormatInt(m.GameID, 10),
		}})
	}
	return rows, nil
}

func (r *messageResource) Get(ctx context.Context, id int64) (Values, error) {
	m, err := r.repo.GetMessage(ctx, id)
	if err != nil {
		return nil, err
	}
	return Values{"name": m.Name, "text": m.Text, "game_id": strconv.FormatInt(m.GameID, 10)}, nil
}

// Save rejects a game id that names no game as invalid input, so a
// NotFound from here always means the message itself is gone.
func (r *messageResource) Save(ctx context.Context, id int64, v Values) (int64, error) {
	gameID, err := parseID(v, messageFields[2])
	if err != nil {
		return 0, err
	}
	if _, err := r.games.GetGame(ctx, gameID); err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return 0, apperror.ValidationFailed("game_id", fmt.Sprintf("no game with id %d", gameID))
		}
		return 0, err
	}
	m := &model.Message{ID: id, Name: strings.TrimSpace(v["name"]), Text: v["text"], GameID: gameID}
	if id == 0 {
		err = r.repo.CreateMessage(ctx, m)
	} else {
		err = r.repo.UpdateMessage(ctx, m)
	}
	return m.ID, err
}

func (r *messageResource) Delete(ctx context.Context, id int64) error {
	return r.repo.DeleteMessage(ctx, id)
}

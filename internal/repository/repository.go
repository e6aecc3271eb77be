// Package repository declares the persistence contracts used by the service
// layer. Implementations live in subpackages (see repository/sqlite).
//
// Lookups of a missing row return an error wrapping apperror.ErrNotFound.
package repository

import (
	"context"

	"github.com/sakif/game-store/internal/model"
)

type GameRepository interface {
	CreateGame(ctx context.Context, game *model.Game) error
	GetGame(ctx context.Context, id int64) (*model.Game, error)
	ListGames(ctx context.Context) ([]model.Game, error)
	// SearchGames returns games whose name contains query as a substring.
	SearchGames(ctx context.Context, query string) ([]model.Game, error)
	UpdateGame(ctx context.Context, game *model.Game) error
	DeleteGame(ctx context.Context, id int64) error
}

type UserRepository interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUser(ctx context.Context, id int64) (*model.User, error)
	GetUserByUsername(ctx context.Context, username string) (*model.User, error)
	ListUsers(ctx context.Context) ([]model.User, error)
	UpdateUser(ctx context.Context, user *model.User) error
	DeleteUser(ctx context.Context, id int64) error
}

type NewsRepository interface {
	CreateNews(ctx context.Context, news *model.News) error
	GetNews(ctx context.Context, id int64) (*model.News, error)
	ListNews(ctx context.Context) ([]model.News, error)
	UpdateNews(ctx context.Context, news *model.News) error
	DeleteNews(ctx context.Context, id int64) error
}

type MessageRepository interface {
	CreateMessage(ctx context.Context, msg *model.Message) error
	GetMessage(ctx context.Context, id int64) (*model.Message, error)
	ListMessages(ctx context.Context) ([]model.Message, error)
	// ListMessagesByGame returns one game's messages in insertion order.
	ListMessagesByGame(ctx context.Context, gameID int64) ([]model.Message, error)
	UpdateMessage(ctx context.Context, msg *model.Message) error
	DeleteMessage(ctx context.Context, id int64) error
}

package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/sakif/game-store/internal/apperror"
	"github.com/sakif/game-store/internal/model"
	"github.com/sakif/game-store/internal/repository"
)

var _ repository.GameRepository = (*DB)(nil)

const gameColumns = `id, name, price, description, genre, date, platform, author, rating, dir_photo`

// CreateGame inserts game and sets game.ID to the assigned row id.
func (db *DB) CreateGame(ctx context.Context, game *model.Game) error {
	result, err := db.conn.ExecContext(ctx,
		`INSERT INTO games (name, price, description, genre, date, platform, author, rating, dir_photo)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		game.Name,
		game.Price,
		game.Description,
		game.Genre,
		game.Date,
		game.Platform,
		game.Author,
		game.Rating,
		game.PhotoDir,
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating game: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("sqlite: reading game id: %w", err)
	}
	game.ID = id
	return nil
}

// GetGame returns apperror.ErrNotFound when no game has the given id.
func (db *DB) GetGame(ctx context.Context, id int64) (*model.Game, error) {
	var game model.Game
	err := db.conn.GetContext(ctx, &game,
		`SELECT `+gameColumns+` FROM games WHERE id = ?`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("game", id)
		}
		return nil, fmt.Errorf("sqlite: getting game %d: %w", id, err)
	}
	return &game, nil
}

// ListGames returns the whole catalog in id order.
func (db *DB) ListGames(ctx context.Context) ([]model.Game, error) {
	games := []model.Game{}
	if err := db.conn.SelectContext(ctx, &games,
		`SELECT `+gameColumns+` FROM games ORDER BY id`); err != nil {
		return nil, fmt.Errorf("sqlite: listing games: %w", err)
	}
	return games, nil
}

// SearchGames matches query anywhere in the game name. LIKE is
// case-insensitive for ASCII letters only, which is SQLite's default.
func (db *DB) SearchGames(ctx context.Context, query string) ([]model.Game, error) {
	games := []model.Game{}
	pattern := "%" + escapeLike(query) + "%"
	if err := db.conn.SelectContext(ctx, &games,
		`SELECT `+gameColumns+` FROM games WHERE name LIKE ? ESCAPE '\' ORDER BY id`,
		pattern); err != nil {
		return nil, fmt.Errorf("sqlite: searching games for %q: %w", query, err)
	}
	return games, nil
}

func (db *DB) UpdateGame(ctx context.Context, game *model.Game) error {
	result, err := db.conn.ExecContext(ctx,
		`UPDATE games
		 SET name = ?, price = ?, description = ?, genre = ?, date = ?,
		     platform = ?, author = ?, rating = ?, dir_photo = ?
		 WHERE id = ?`,
		game.Name,
		game.Price,
		game.Description,
		game.Genre,
		game.Date,
		game.Platform,
		game.Author,
		game.Rating,
		game.PhotoDir,
		game.ID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating game %d: %w", game.ID, err)
	}
	return checkAffected(result, "game", game.ID)
}

// DeleteGame removes the game and, through the foreign key, its messages.
func (db *DB) DeleteGame(ctx context.Context, id int64) error {
	result, err := db.conn.ExecContext(ctx, `DELETE FROM games WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: deleting game %d: %w", id, err)
	}
	return checkAffected(result, "game", id)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

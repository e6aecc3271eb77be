package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/sakif/game-store/internal/apperror"
	"github.com/sakif/game-store/internal/model"
	"github.com/sakif/game-store/internal/repository"
)

var (
	_ repository.NewsRepository    = (*DB)(nil)
	_ repository.MessageRepository = (*DB)(nil)
)

func (db *DB) CreateNews(ctx context.Context, news *model.News) error {
	result, err := db.conn.ExecContext(ctx,
		`INSERT INTO news (title, content) VALUES (?, ?)`,
		news.Title,
		news.Content,
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating news: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("sqlite: reading news id: %w", err)
	}
	news.ID = id
	return nil
}

func (db *DB) GetNews(ctx context.Context, id int64) (*model.News, error) {
	var n model.News
	err := db.conn.GetContext(ctx, &n, `SELECT id, title, content FROM news WHERE id = ?`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("news", id)
		}
		return nil, fmt.Errorf("sqlite: getting news %d: %w", id, err)
	}
	return &n, nil
}

func (db *DB) ListNews(ctx context.Context) ([]model.News, error) {
	news := []model.News{}
	if err := db.conn.SelectContext(ctx, &news,
		`SELECT id, title, content FROM news ORDER BY id`); err != nil {
		return nil, fmt.Errorf("sqlite: listing news: %w", err)
	}
	return news, nil
}

func (db *DB) UpdateNews(ctx context.Context, news *model.News) error {
	result, err := db.conn.ExecContext(ctx,
		`UPDATE news SET title = ?, content = ? WHERE id = ?`,
		news.Title,
		news.Content,
		news.ID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating news %d: %w", news.ID, err)
	}
	return checkAffected(result, "news", news.ID)
}

func (db *DB) DeleteNews(ctx context.Context, id int64) error {
	result, err := db.conn.ExecContext(ctx, `DELETE FROM news WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: deleting news %d: %w", id, err)
	}
	return checkAffected(result, "news", id)
}

// CreateMessage inserts msg. A GameID with no matching game yields
// apperror.ErrNotFound.
func (db *DB) CreateMessage(ctx context.Context, msg *model.Message) error {
	result, err := db.conn.ExecContext(ctx,
		`INSERT INTO messages (name, text, game_id) VALUES (?, ?, ?)`,
		msg.Name,
		msg.Text,
		msg.GameID,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return apperror.NotFound("game", msg.GameID)
		}
		return fmt.Errorf("sqlite: creating message for game %d: %w", msg.GameID, err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("sqlite: reading message id: %w", err)
	}
	msg.ID = id
	return nil
}

func (db *DB) GetMessage(ctx context.Context, id int64) (*model.Message, error) {
	var m model.Message
	err := db.conn.GetContext(ctx, &m,
		`SELECT id, name, text, game_id FROM messages WHERE id = ?`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("message", id)
		}
		return nil, fmt.Errorf("sqlite: getting message %d: %w", id, err)
	}
	return &m, nil
}

func (db *DB) ListMessages(ctx context.Context) ([]model.Message, error) {
	msgs := []model.Message{}
	if err := db.conn.SelectContext(ctx, &msgs,
		`SELECT id, name, text, game_id FROM messages ORDER BY id`); err != nil {
		return nil, fmt.Errorf("sqlite: listing messages: %w", err)
	}
	return msgs, nil
}

func (db *DB) ListMessagesByGame(ctx context.Context, gameID int64) ([]model.Message, error) {
	msgs := []model.Message{}
	if err := db.conn.SelectContext(ctx, &msgs,
		`SELECT id, name, text, game_id FROM messages WHERE game_id = ? ORDER BY id`,
		gameID); err != nil {
		return nil, fmt.Errorf("sqlite: listing messages for game %d: %w", gameID, err)
	}
	return msgs, nil
}

func (db *DB) UpdateMessage(ctx context.Context, msg *model.Message) error {
	result, err := db.conn.ExecContext(ctx,
		`UPDATE messages SET name = ?, text = ?, game_id = ? WHERE id = ?`,
		msg.Name,
		msg.Text,
		msg.GameID,
		msg.ID,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return apperror.NotFound("game", msg.GameID)
		}
		return fmt.Errorf("sqlite: updating message %d: %w", msg.ID, err)
	}
	return checkAffected(result, "message", msg.ID)
}

func (db *DB) DeleteMessage(ctx context.Context, id int64) error {
	result, err := db.conn.ExecContext(ctx, `DELETE FROM messages WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: deleting message %d: %w", id, err)
	}
	return checkAffected(result, "message", id)
}

package service

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strconv"

	"github.com/sakif/game-store/internal/model"
	"github.com/sakif/game-store/internal/repository"
	"github.com/sakif/game-store/internal/session"
)

// MaxVisitorID bounds the anonymous visitor numbers (inclusive).
const MaxVisitorID = 65528

// Thread is one game's community page.
type Thread struct {
	Game     model.Game
	Messages []model.Message
	Visitor  int
}

// CommunityService handles the per-game message boards. Posters are
// identified only by a random number kept in their session.
type CommunityService struct {
	games      repository.GameRepository
	messages   repository.MessageRepository
	logger     *slog.Logger
	newVisitor func() int
}

func NewCommunityService(
	games repository.GameRepository,
	messages repository.MessageRepository,
	logger *slog.Logger,
) *CommunityService {
	return &CommunityService{
		games:      games,
		messages:   messages,
		logger:     logger,
		newVisitor: func() int { return rand.IntN(MaxVisitorID + 1) },
	}
}

// Thread loads the messages of gameID and the visitor's number, assigning
// one on first visit.
func (s *CommunityService) Thread(ctx context.Context, sess *session.Session, gameID int64) (*Thread, error) {
	game, err := s.games.GetGame(ctx, gameID)
	if err != nil {
		return nil, err
	}
	msgs, err := s.messages.ListMessagesByGame(ctx, gameID)
	if err != nil {
		return nil, fmt.Errorf("service: loading messages for game %d: %w", gameID, err)
	}
	return &Thread{
		Game:     *game,
		Messages: msgs,
		Visitor:  sess.Visitor(s.newVisitor),
	}, nil
}

// Post appends a message to gameID's board under the visitor's number.
// The text is stored as given.
func (s *CommunityService) Post(ctx context.Context, sess *session.Session, gameID int64, text string) (*model.Message, error) {
	if _, err := s.games.GetGame(ctx, gameID); err != nil {
		return nil, err
	}

	msg := &model.Message{
		Name:   strconv.Itoa(sess.Visitor(s.newVisitor)),
		Text:   text,
		GameID: gameID,
	}
	if err := s.messages.CreateMessage(ctx, msg); err != nil {
		return nil, fmt.Errorf("service: posting message: %w", err)
	}

	s.logger.Info("message posted",
		slog.Int64("id", msg.ID),
		slog.Int64("gameID", gameID),
		slog.String("name", msg.Name),
	)
	return msg, nil
}

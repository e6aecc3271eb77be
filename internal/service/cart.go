package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/sakif/game-store/internal/apperror"
	"github.com/sakif/game-store/internal/model"
	"github.com/sakif/game-store/internal/repository"
	"github.com/sakif/game-store/internal/session"
)

// CartService manages the session cart. The session only stores game ids;
// records and prices are read from the catalog on every view.
type CartService struct {
	games  repository.GameRepository
	logger *slog.Logger
}

func NewCartService(games repository.GameRepository, logger *slog.Logger) *CartService {
	return &CartService{games: games, logger: logger}
}

// Add puts game id in the cart. Adding a game already there is a no-op;
// adding an unknown game is apperror.ErrNotFound.
func (s *CartService) Add(ctx context.Context, sess *session.Session, id int64) error {
	game, err := s.games.GetGame(ctx, id)
	if err != nil {
		return err
	}
	if sess.AddToCart(game.ID) {
		s.logger.Info("added to cart",
			slog.String("session", sess.ID()),
			slog.Int64("gameID", game.ID),
		)
	}
	return nil
}

// Remove takes id out of the cart. Removing an absent id is a no-op.
func (s *CartService) Remove(sess *session.Session, id int64) {
	sess.RemoveFromCart(id)
}

// View resolves the cart against the catalog and totals current prices.
// Games deleted since they were added are skipped.
func (s *CartService) View(ctx context.Context, sess *session.Session) (*model.CartView, error) {
	view := &model.CartView{Games: []model.Game{}}
	for _, id := range sess.Cart() {
		game, err := s.games.GetGame(ctx, id)
		if err != nil {
			if errors.Is(err, apperror.ErrNotFound) {
				continue
			}
			return nil, fmt.Errorf("service: loading cart: %w", err)
		}
		view.Games = append(view.Games, *game)
		view.Total += game.Price
	}
	return view, nil
}

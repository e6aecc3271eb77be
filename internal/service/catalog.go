// Package service contains the storefront's business logic. Services take
// repository interfaces and the visitor's *session.Session and know nothing
// about HTTP; handlers translate their apperror results into responses.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"os"
	"path/filepath"
	"slices"

	"github.com/sakif/game-store/internal/model"
	"github.com/sakif/game-store/internal/repository"
	"github.com/sakif/game-store/internal/session"
)

// HomeSampleSize is how many games the home page shows.
const HomeSampleSize = 10

// CatalogService serves the customer-facing catalog pages.
type CatalogService struct {
	games     repository.GameRepository
	news      repository.NewsRepository
	photoRoot string
	logger    *slog.Logger
	shuffle   func(n int, swap func(i, j int))
}

// NewCatalogService returns a CatalogService reading game photo
// directories under photoRoot.
func NewCatalogService(
	games repository.GameRepository,
	news repository.NewsRepository,
	photoRoot string,
	logger *slog.Logger,
) *CatalogService {
	return &CatalogService{
		games:     games,
		news:      news,
		photoRoot: photoRoot,
		logger:    logger,
		shuffle:   rand.Shuffle,
	}
}

// Home returns HomeSampleSize distinct games chosen at random. A catalog
// smaller than that is returned whole, in random order.
func (s *CatalogService) Home(ctx context.Context) ([]model.Game, error) {
	games, err := s.games.ListGames(ctx)
	if err != nil {
		return nil, fmt.Errorf("service: sampling home games: %w", err)
	}
	s.shuffle(len(games), func(i, j int) { games[i], games[j] = games[j], games[i] })
	if len(games) > HomeSampleSize {
		games = games[:HomeSampleSize]
	}
	return games, nil
}

// List returns the full catalog.
func (s *CatalogService) List(ctx context.Context) ([]model.Game, error) {
	games, err := s.games.ListGames(ctx)
	if err != nil {
		return nil, fmt.Errorf("service: listing games: %w", err)
	}
	return games, nil
}

// Detail loads one game with its gallery and the visitor's rating, which is
// recorded as 0 in the session on first view.
func (s *CatalogService) Detail(ctx context.Context, sess *session.Session, id int64) (*model.GameDetail, error) {
	game, err := s.games.GetGame(ctx, id)
	if err != nil {
		return nil, err
	}
	photos, err := s.Photos(game.PhotoDir)
	if err != nil {
		return nil, err
	}
	return &model.GameDetail{
		Game:   *game,
		Photos: photos,
		Rating: sess.EnsureRating(game.ID),
	}, nil
}

// SearchResult holds either a single hit, shown as a detail page, or the
// list of matches (possibly empty).
type SearchResult struct {
	Query  string
	Games  []model.Game
	Single *model.GameDetail
}

// Search matches query against game names. A single hit is expanded into a
// detail view; the visitor's rating is read but, unlike Detail, not
// initialised in the session.
func (s *CatalogService) Search(ctx context.Context, sess *session.Session, query string) (*SearchResult, error) {
	games, err := s.games.SearchGames(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("service: searching games: %w", err)
	}

	result := &SearchResult{Query: query, Games: games}
	if len(games) != 1 {
		return result, nil
	}

	photos, err := s.Photos(games[0].PhotoDir)
	if err != nil {
		return nil, err
	}
	rating, _ := sess.Rating(games[0].ID)
	result.Single = &model.GameDetail{Game: games[0], Photos: photos, Rating: rating}
	return result, nil
}

// Photos lists the gallery files of a game photo directory, sorted by
// name, without model.MainPhoto. A missing directory is an error.
func (s *CatalogService) Photos(dir string) ([]string, error) {
	if !filepath.IsLocal(dir) {
		return nil, fmt.Errorf("service: photo directory %q is not under the photo root", dir)
	}

	entries, err := os.ReadDir(filepath.Join(s.photoRoot, dir))
	if err != nil {
		s.logger.Error("photo directory unreadable",
			slog.String("dir", dir),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("service: listing photos in %q: %w", dir, err)
	}

	photos := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || e.Name() == model.MainPhoto {
			continue
		}
		photos = append(photos, e.Name())
	}
	slices.Sort(photos)
	return photos, nil
}

// Rate overwrites the visitor's rating for gameID. The value is not
// validated and never reaches the Game record.
func (s *CatalogService) Rate(sess *session.Session, gameID int64, stars int) {
	sess.SetRating(gameID, stars)
	s.logger.Debug("game rated",
		slog.String("session", sess.ID()),
		slog.Int64("gameID", gameID),
		slog.Int("stars", stars),
	)
}

// News returns every news item.
func (s *CatalogService) News(ctx context.Context) ([]model.News, error) {
	news, err := s.news.ListNews(ctx)
	if err != nil {
		return nil, fmt.Errorf("service: listing news: %w", err)
	}
	return news, nil
}

package application

import (
	"context"
	"strconv"
	"strings"
	"time"

	"gitlab.com/timkado/api/game-catalog-service/internal/domain"
)

// Cache namespaces used by the catalog.
const (
	RecordCacheNamespace   = "recordCache"
	CategoryCacheNamespace = "categoryCache"
	AllItemsCacheNamespace = "allItemsCache"

	// AllItemsKey is the sentinel key holding the full collection.
	AllItemsKey = "ALL"
)

// DefaultCacheTTL is the lifetime of every catalog cache entry.
const DefaultCacheTTL = 600 * time.Second

// CatalogService serves games from the cache when present and invalidates the
// affected entries after every mutation. Cached copies may be stale for up to one TTL.
type CatalogService struct {
	repo       domain.GameRepository
	records    Namespace[domain.Game]
	categories Namespace[[]domain.Game]
	all        Namespace[[]domain.Game]
	logger     domain.Logger
}

// NewCatalogService creates a new CatalogService.
func NewCatalogService(repo domain.GameRepository, store *CacheAsideStore, ttl time.Duration, logger domain.Logger) *CatalogService {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &CatalogService{
		repo:       repo,
		records:    NewNamespace[domain.Game](store, RecordCacheNamespace, ttl),
		categories: NewNamespace[[]domain.Game](store, CategoryCacheNamespace, ttl),
		all:        NewNamespace[[]domain.Game](store, AllItemsCacheNamespace, ttl),
		logger:     logger,
	}
}

func recordKey(id int64) string { return strconv.FormatInt(id, 10) }

// categoryKey normalizes category names, matching the case-insensitive lookup.
func categoryKey(category string) string { return strings.ToLower(strings.TrimSpace(category)) }

// GetAll returns every game.
func (s *CatalogService) GetAll(ctx context.Context) ([]domain.Game, error) {
	if games, ok := s.all.Get(ctx, AllItemsKey); ok {
		return games, nil
	}

	games, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	if games == nil {
		games = []domain.Game{}
	}
	s.all.Put(ctx, AllItemsKey, games)
	return games, nil
}

// GetByID returns the game with id, or an error wrapping domain.ErrNotFound.
func (s *CatalogService) GetByID(ctx context.Context, id int64) (*domain.Game, error) {
	key := recordKey(id)
	if game, ok := s.records.Get(ctx, key); ok {
		return &game, nil
	}

	game, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.records.Put(ctx, key, *game)
	return game, nil
}

// GetByCategory returns the games of category, matched case-insensitively.
// Empty results are not cached so that later additions are seen immediately.
func (s *CatalogService) GetByCategory(ctx context.Context, category string) ([]domain.Game, error) {
	key := categoryKey(category)
	if games, ok := s.categories.Get(ctx, key); ok {
		return games, nil
	}

	games, err := s.repo.FindByCategory(ctx, category)
	if err != nil {
		return nil, err
	}
	if len(games) > 0 {
		s.categories.Put(ctx, key, games)
	}
	return games, nil
}

// Create persists a new game and invalidates its category and the full collection.
func (s *CatalogService) Create(ctx context.Context, game domain.Game) (*domain.Game, error) {
	game.ID = 0
	saved, err := s.repo.Save(ctx, &game)
	if err != nil {
		return nil, err
	}

	s.categories.Evict(ctx, categoryKey(saved.Category))
	s.all.Evict(ctx, AllItemsKey)

	s.logger.Info(ctx, "Game created", "game_id", saved.ID, "category", saved.Category)
	return saved, nil
}

// Update replaces every field of game id with update. Both the previous and the new
// category entries are invalidated since the category may have changed.
func (s *CatalogService) Update(ctx context.Context, id int64, update domain.Game) (*domain.Game, error) {
	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	oldCategory := existing.Category

	update.ID = id
	saved, err := s.repo.Save(ctx, &update)
	if err != nil {
		return nil, err
	}

	s.records.Evict(ctx, recordKey(id))
	s.categories.Evict(ctx, categoryKey(oldCategory))
	if categoryKey(saved.Category) != categoryKey(oldCategory) {
		s.categories.Evict(ctx, categoryKey(saved.Category))
	}
	s.all.Evict(ctx, AllItemsKey)

	s.logger.Info(ctx, "Game updated", "game_id", id, "old_category", oldCategory, "category", saved.Category)
	return saved, nil
}

// Delete removes game id and invalidates its record, category and the full collection.
func (s *CatalogService) Delete(ctx context.Context, id int64) error {
	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.repo.DeleteByID(ctx, id); err != nil {
		return err
	}

	s.records.Evict(ctx, recordKey(id))
	s.categories.Evict(ctx, categoryKey(existing.Category))
	s.all.Evict(ctx, AllItemsKey)

	s.logger.Info(ctx, "Game deleted", "game_id", id)
	return nil
}

// InvalidateAll clears every catalog namespace.
func (s *CatalogService) InvalidateAll(ctx context.Context) {
	s.records.EvictAll(ctx)
	s.categories.EvictAll(ctx)
	s.all.EvictAll(ctx)
}

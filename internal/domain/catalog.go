package domain

import (
	"context"
	"strings"
	"unicode/utf8"
)

// Game is a catalog record. Persistence owns it; the cache only holds copies.
type Game struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
	Price       float64 `json:"price"`
	URL         string  `json:"url"`
}

// Validate checks the payload constraints and returns a field -> message map,
// or nil when the game is acceptable.
func (g *Game) Validate() map[string]string {
	errs := make(map[string]string)

	name := strings.TrimSpace(g.Name)
	switch n := utf8.RuneCountInString(name); {
	case n == 0:
		errs["name"] = "Name is required"
	case n < 6 || n > 30:
		errs["name"] = "Name must be between 6 and 30 characters"
	}

	desc := strings.TrimSpace(g.Description)
	switch n := utf8.RuneCountInString(desc); {
	case n == 0:
		errs["description"] = "Description is required"
	case n < 20 || n > 200:
		errs["description"] = "Description must be between 20 and 200 characters"
	}

	if strings.TrimSpace(g.Category) == "" {
		errs["category"] = "Category is required"
	}
	if g.Price < 5.00 {
		errs["price"] = "Price must be at least 5.00"
	}
	if strings.TrimSpace(g.URL) == "" {
		errs["url"] = "URL is required"
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}

// GameRepository is the persistence contract consumed by the catalog service.
// FindByID returns ErrNotFound when no row matches.
type GameRepository interface {
	FindByID(ctx context.Context, id int64) (*Game, error)
	FindAll(ctx context.Context) ([]Game, error)
	// FindByCategory matches category case-insensitively.
	FindByCategory(ctx context.Context, category string) ([]Game, error)
	// Save inserts when ID is zero and updates otherwise.
	Save(ctx context.Context, game *Game) (*Game, error)
	DeleteByID(ctx context.Context, id int64) error
	ExistsByID(ctx context.Context, id int64) (bool, error)
}

// Package api exposes the query engine over HTTP. Routing uses Chi; the
// handlers translate between the wire shapes and the catalog package, which
// owns all filtering semantics.
package api

import (
	"context"
	"time"

	"github.com/ppetrovna/povarenok/internal/catalog"
	"github.com/ppetrovna/povarenok/internal/config"
	"github.com/ppetrovna/povarenok/internal/models"
)

// Engine is the catalogue surface the handlers serve. *catalog.Engine
// satisfies it; tests substitute a fake.
type Engine interface {
	RandomRecipe(ctx context.Context) (*models.Recipe, error)
	RecipeByID(ctx context.Context, id int64) (*models.Recipe, error)
	DailyMenu(ctx context.Context) (*models.DailyMenu, error)
	AllCategories(ctx context.Context) ([]models.Category, error)
	IngredientsByInitialLetter(ctx context.Context, letter string) ([]models.Ingredient, error)
	RecipesByCategoriesAny(ctx context.Context, ids []int64) ([]models.RecipeRef, error)
	RecipesByCategoriesAll(ctx context.Context, ids []int64) ([]models.RecipeRef, error)
	RecipesByIngredientsAny(ctx context.Context, ids []int64) ([]models.RecipeRef, error)
	RecipesByIngredientsOnly(ctx context.Context, ids []int64) ([]models.RecipeRef, error)
}

var _ Engine = (*catalog.Engine)(nil)

// Pinger reports whether the backing store is reachable. Used by the
// readiness probe; nil means always ready.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handler carries the handler dependencies.
type Handler struct {
	engine    Engine
	store     Pinger
	config    *config.Config
	startTime time.Time
}

// NewHandler creates the API handler.
func NewHandler(engine Engine, store Pinger, cfg *config.Config) *Handler {
	return &Handler{
		engine:    engine,
		store:     store,
		config:    cfg,
		startTime: time.Now(),
	}
}

package catalog

import (
	"context"

	"github.com/ppetrovna/povarenok/internal/models"
)

// RecipeCategorySet is a candidate recipe together with its full category-id
// set, as returned by a union match over categories.
type RecipeCategorySet struct {
	Ref         models.RecipeRef
	CategoryIDs []int64
}

// IngredientLineRow is one ingredient line of a candidate recipe, carrying
// the two flags the exact-match filter needs.
type IngredientLineRow struct {
	IngredientID    int64
	Optional        bool
	AlwaysAvailable bool
}

// RecipeIngredientSet is a candidate recipe together with all of its
// ingredient lines.
type RecipeIngredientSet struct {
	Ref   models.RecipeRef
	Lines []IngredientLineRow
}

// Store is the data-access port the engine reads through. Implementations
// return raw candidate rows; all set-membership filtering happens in the
// engine.
type Store interface {
	// RecipeIDs returns the ids of every recipe in the store.
	RecipeIDs(ctx context.Context) ([]int64, error)

	// RecipeByID returns a fully hydrated recipe, or ErrNotFound.
	RecipeByID(ctx context.Context, id int64) (*models.Recipe, error)

	// RecipeIDsByCategoryName returns the ids of recipes in the named
	// category. Name matching is case-sensitive. An unknown category
	// yields an empty slice, not an error.
	RecipeIDsByCategoryName(ctx context.Context, name string) ([]int64, error)

	// Categories returns all categories ordered by name.
	Categories(ctx context.Context) ([]models.Category, error)

	// IngredientsByInitial returns ingredients whose name starts with the
	// given letter, ordered by name.
	IngredientsByInitial(ctx context.Context, letter string) ([]models.Ingredient, error)

	// RecipesByAnyCategory returns the distinct recipes belonging to at
	// least one of the given categories, each with its full category set.
	RecipesByAnyCategory(ctx context.Context, categoryIDs []int64) ([]RecipeCategorySet, error)

	// RecipesByAnyIngredient returns the distinct recipes containing at
	// least one of the given ingredients, each with all of its lines.
	RecipesByAnyIngredient(ctx context.Context, ingredientIDs []int64) ([]RecipeIngredientSet, error)
}

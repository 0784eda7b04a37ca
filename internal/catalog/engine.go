// Package catalog implements the query engine: the read operations the REST
// API exposes over the recipe store. The set-membership filters live here as
// pure functions over candidate rows fetched through the Store port, which
// keeps them unit-testable without a database.
package catalog

import (
	"context"
	"fmt"
	"math/rand/v2"
	"unicode/utf8"

	"github.com/ppetrovna/povarenok/internal/models"
)

// MenuSlots maps the four daily-menu slots to category names in the store.
type MenuSlots struct {
	Breakfast string
	Lunch     string
	Snack     string
	Dinner    string
}

// DefaultMenuSlots are the catalogue's stock category names.
func DefaultMenuSlots() MenuSlots {
	return MenuSlots{
		Breakfast: "завтрак",
		Lunch:     "обед",
		Snack:     "перекус",
		Dinner:    "ужин",
	}
}

// Engine answers recipe queries over a Store. It is stateless; every
// operation is a pure function of the store contents plus its arguments.
type Engine struct {
	store Store
	menu  MenuSlots
}

// NewEngine creates an engine over the given store.
func NewEngine(store Store, menu MenuSlots) *Engine {
	if menu == (MenuSlots{}) {
		menu = DefaultMenuSlots()
	}
	return &Engine{store: store, menu: menu}
}

// RandomRecipe returns one recipe chosen uniformly from the whole store.
func (e *Engine) RandomRecipe(ctx context.Context) (*models.Recipe, error) {
	ids, err := e.store.RecipeIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("list recipe ids: %w", err)
	}
	if len(ids) == 0 {
		return nil, fmt.Errorf("%w: the store holds no recipes", ErrNotFound)
	}
	return e.store.RecipeByID(ctx, ids[rand.IntN(len(ids))])
}

// RecipeByID returns the fully hydrated recipe with the given id.
func (e *Engine) RecipeByID(ctx context.Context, id int64) (*models.Recipe, error) {
	return e.store.RecipeByID(ctx, id)
}

// DailyMenu picks one recipe per meal slot, each uniformly at random from
// its slot category. A slot category with zero recipes fails the whole
// request with ErrNotFound; no substitution is attempted.
func (e *Engine) DailyMenu(ctx context.Context) (*models.DailyMenu, error) {
	menu := &models.DailyMenu{}
	slots := []struct {
		category string
		target   **models.Recipe
	}{
		{e.menu.Breakfast, &menu.Breakfast},
		{e.menu.Lunch, &menu.Lunch},
		{e.menu.Snack, &menu.Snack},
		{e.menu.Dinner, &menu.Dinner},
	}

	for _, slot := range slots {
		recipe, err := e.randomFromCategory(ctx, slot.category)
		if err != nil {
			return nil, err
		}
		*slot.target = recipe
	}
	return menu, nil
}

func (e *Engine) randomFromCategory(ctx context.Context, category string) (*models.Recipe, error) {
	ids, err := e.store.RecipeIDsByCategoryName(ctx, category)
	if err != nil {
		return nil, fmt.Errorf("list recipes in %q: %w", category, err)
	}
	if len(ids) == 0 {
		return nil, fmt.Errorf("%w: no recipes in category %q", ErrNotFound, category)
	}
	return e.store.RecipeByID(ctx, ids[rand.IntN(len(ids))])
}

// AllCategories returns every category, ordered by name.
func (e *Engine) AllCategories(ctx context.Context) ([]models.Category, error) {
	return e.store.Categories(ctx)
}

// IngredientsByInitialLetter returns all ingredients whose name starts with
// the given single letter, ordered by name.
func (e *Engine) IngredientsByInitialLetter(ctx context.Context, letter string) ([]models.Ingredient, error) {
	if utf8.RuneCountInString(letter) != 1 {
		return nil, fmt.Errorf("%w: startswith must be exactly one letter", ErrInvalidArgument)
	}
	return e.store.IngredientsByInitial(ctx, letter)
}

// RecipesByCategoriesAny returns recipes belonging to at least one of the
// given categories, without duplicates.
func (e *Engine) RecipesByCategoriesAny(ctx context.Context, categoryIDs []int64) ([]models.RecipeRef, error) {
	ids, err := normalizeIDs(categoryIDs)
	if err != nil {
		return nil, err
	}
	candidates, err := e.store.RecipesByAnyCategory(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("match categories: %w", err)
	}
	refs := make([]models.RecipeRef, 0, len(candidates))
	for _, c := range candidates {
		refs = append(refs, c.Ref)
	}
	return refs, nil
}

// RecipesByCategoriesAll returns recipes whose category set is a superset of
// the given ids: the union-matching candidates, filtered to those that hold
// every requested category.
func (e *Engine) RecipesByCategoriesAll(ctx context.Context, categoryIDs []int64) ([]models.RecipeRef, error) {
	ids, err := normalizeIDs(categoryIDs)
	if err != nil {
		return nil, err
	}
	candidates, err := e.store.RecipesByAnyCategory(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("match categories: %w", err)
	}
	refs := make([]models.RecipeRef, 0, len(candidates))
	for _, c := range candidates {
		if containsAll(toSet(c.CategoryIDs), ids) {
			refs = append(refs, c.Ref)
		}
	}
	return refs, nil
}

// RecipesByIngredientsAny returns recipes containing every requested
// ingredient. Despite the "any" in the name the semantics are a superset
// match: candidates are recipes with any overlapping line, filtered to those
// whose full ingredient set holds the whole request. Optional lines and
// pantry staples count here; they only drop out of the exact match below.
func (e *Engine) RecipesByIngredientsAny(ctx context.Context, ingredientIDs []int64) ([]models.RecipeRef, error) {
	ids, err := normalizeIDs(ingredientIDs)
	if err != nil {
		return nil, err
	}
	candidates, err := e.store.RecipesByAnyIngredient(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("match ingredients: %w", err)
	}
	refs := make([]models.RecipeRef, 0, len(candidates))
	for _, c := range candidates {
		all := make(map[int64]struct{}, len(c.Lines))
		for _, line := range c.Lines {
			all[line.IngredientID] = struct{}{}
		}
		if containsAll(all, ids) {
			refs = append(refs, c.Ref)
		}
	}
	return refs, nil
}

// RecipesByIngredientsOnly returns recipes whose essential ingredient set is
// exactly the requested set. Essential means lines that are not optional and
// whose ingredient is not a pantry staple (always_available).
func (e *Engine) RecipesByIngredientsOnly(ctx context.Context, ingredientIDs []int64) ([]models.RecipeRef, error) {
	ids, err := normalizeIDs(ingredientIDs)
	if err != nil {
		return nil, err
	}
	candidates, err := e.store.RecipesByAnyIngredient(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("match ingredients: %w", err)
	}
	want := toSet(ids)
	refs := make([]models.RecipeRef, 0, len(candidates))
	for _, c := range candidates {
		essential := make(map[int64]struct{})
		for _, line := range c.Lines {
			if !line.Optional && !line.AlwaysAvailable {
				essential[line.IngredientID] = struct{}{}
			}
		}
		if setsEqual(essential, want) {
			refs = append(refs, c.Ref)
		}
	}
	return refs, nil
}

// normalizeIDs deduplicates a caller-supplied id list, preserving first-seen
// order, and rejects an empty request.
func normalizeIDs(ids []int64) ([]int64, error) {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: empty id list", ErrInvalidArgument)
	}
	return out, nil
}

func toSet(ids []int64) map[int64]struct{} {
	set := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

func containsAll(set map[int64]struct{}, ids []int64) bool {
	for _, id := range ids {
		if _, ok := set[id]; !ok {
			return false
		}
	}
	return true
}

func setsEqual(a, b map[int64]struct{}) bool {
	if len(a) != len(b) {
		return false
	}
	for id := range a {
		if _, ok := b[id]; !ok {
			return false
		}
	}
	return true
}

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ppetrovna/povarenok/internal/catalog"
	"github.com/ppetrovna/povarenok/internal/metrics"
	"github.com/ppetrovna/povarenok/internal/models"
)

// The methods below implement catalog.Store.
var _ catalog.Store = (*DB)(nil)

// RecipeIDs returns the ids of every recipe in the catalogue.
func (db *DB) RecipeIDs(ctx context.Context) ([]int64, error) {
	ctx, cancel := queryContext(ctx)
	defer cancel()

	start := time.Now()
	rows, err := db.conn.QueryContext(ctx, `SELECT id FROM recipes ORDER BY id`)
	metrics.RecordDBQuery("recipe_ids", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("failed to query recipe ids: %w", err)
	}
	defer closeQuietly(rows)

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan recipe id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// RecipeByID returns the fully hydrated recipe: its ingredient lines in
// authored order and its category memberships.
func (db *DB) RecipeByID(ctx context.Context, id int64) (*models.Recipe, error) {
	ctx, cancel := queryContext(ctx)
	defer cancel()

	start := time.Now()
	recipe, err := db.recipeRow(ctx, id)
	metrics.RecordDBQuery("recipe_by_id", time.Since(start), err)
	if err != nil {
		return nil, err
	}

	if recipe.Ingredients, err = db.recipeLines(ctx, id); err != nil {
		return nil, err
	}
	if recipe.Categories, err = db.recipeCategories(ctx, id); err != nil {
		return nil, err
	}
	return recipe, nil
}

func (db *DB) recipeRow(ctx context.Context, id int64) (*models.Recipe, error) {
	var (
		recipe models.Recipe
		image  sql.NullString
	)
	err := db.conn.QueryRowContext(ctx,
		`SELECT id, name, cooking_time, description, image FROM recipes WHERE id = ?`, id).
		Scan(&recipe.ID, &recipe.Name, &recipe.CookingTime, &recipe.Description, &image)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: recipe %d", catalog.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query recipe %d: %w", id, err)
	}
	if image.Valid {
		recipe.Image = &image.String
	}
	return &recipe, nil
}

func (db *DB) recipeLines(ctx context.Context, id int64) ([]models.IngredientLine, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT ri.count_text, i.name, ri.optional
		FROM recipe_ingredients ri
		JOIN ingredients i ON i.id = ri.ingredient_id
		WHERE ri.recipe_id = ?
		ORDER BY ri.position, i.name`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query ingredient lines for recipe %d: %w", id, err)
	}
	defer closeQuietly(rows)

	lines := []models.IngredientLine{}
	for rows.Next() {
		var line models.IngredientLine
		if err := rows.Scan(&line.Count, &line.Ingredient.Name, &line.Optional); err != nil {
			return nil, fmt.Errorf("failed to scan ingredient line: %w", err)
		}
		lines = append(lines, line)
	}
	return lines, rows.Err()
}

func (db *DB) recipeCategories(ctx context.Context, id int64) ([]models.Category, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT c.id, c.name
		FROM recipe_categories rc
		JOIN categories c ON c.id = rc.category_id
		WHERE rc.recipe_id = ?
		ORDER BY c.name`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query categories for recipe %d: %w", id, err)
	}
	defer closeQuietly(rows)

	var cats []models.Category
	for rows.Next() {
		var c models.Category
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		cats = append(cats, c)
	}
	return cats, rows.Err()
}

// RecipeIDsByCategoryName returns the ids of recipes in the named category.
// Matching is exact and case-sensitive. An unknown name yields an empty list,
// not an error; the daily-menu sampler treats that as an empty slot.
func (db *DB) RecipeIDsByCategoryName(ctx context.Context, name string) ([]int64, error) {
	ctx, cancel := queryContext(ctx)
	defer cancel()

	start := time.Now()
	rows, err := db.conn.QueryContext(ctx, `
		SELECT rc.recipe_id
		FROM recipe_categories rc
		JOIN categories c ON c.id = rc.category_id
		WHERE c.name = ?
		ORDER BY rc.recipe_id`, name)
	metrics.RecordDBQuery("recipe_ids_by_category_name", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("failed to query recipes for category %q: %w", name, err)
	}
	defer closeQuietly(rows)

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan recipe id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Categories returns every category, name-ordered.
func (db *DB) Categories(ctx context.Context) ([]models.Category, error) {
	ctx, cancel := queryContext(ctx)
	defer cancel()

	start := time.Now()
	rows, err := db.conn.QueryContext(ctx, `SELECT id, name FROM categories ORDER BY name`)
	metrics.RecordDBQuery("categories", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer closeQuietly(rows)

	var cats []models.Category
	for rows.Next() {
		var c models.Category
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		cats = append(cats, c)
	}
	return cats, rows.Err()
}

// IngredientsByInitial returns ingredients whose name starts with the given
// letter, name-ordered. The letter is matched as-is; callers normalize case.
func (db *DB) IngredientsByInitial(ctx context.Context, letter string) ([]models.Ingredient, error) {
	ctx, cancel := queryContext(ctx)
	defer cancel()

	start := time.Now()
	rows, err := db.conn.QueryContext(ctx, `
		SELECT id, name, always_available
		FROM ingredients
		WHERE starts_with(name, ?)
		ORDER BY name`, letter)
	metrics.RecordDBQuery("ingredients_by_initial", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("failed to query ingredients for letter %q: %w", letter, err)
	}
	defer closeQuietly(rows)

	var ingredients []models.Ingredient
	for rows.Next() {
		var ing models.Ingredient
		if err := rows.Scan(&ing.ID, &ing.Name, &ing.AlwaysAvailable); err != nil {
			return nil, fmt.Errorf("failed to scan ingredient: %w", err)
		}
		ingredients = append(ingredients, ing)
	}
	return ingredients, rows.Err()
}

// RecipesByAnyCategory returns every recipe belonging to at least one of the
// given categories, each with its complete category id set. The engine does
// the any/all filtering; the store only fetches candidates.
func (db *DB) RecipesByAnyCategory(ctx context.Context, categoryIDs []int64) ([]catalog.RecipeCategorySet, error) {
	ctx, cancel := queryContext(ctx)
	defer cancel()

	query := fmt.Sprintf(`
		SELECT r.id, r.name, rc.category_id
		FROM recipes r
		JOIN recipe_categories rc ON rc.recipe_id = r.id
		WHERE r.id IN (
			SELECT recipe_id FROM recipe_categories WHERE category_id IN (%s)
		)
		ORDER BY r.id, rc.category_id`, placeholders(len(categoryIDs)))

	start := time.Now()
	rows, err := db.conn.QueryContext(ctx, query, int64Args(categoryIDs)...)
	metrics.RecordDBQuery("recipes_by_any_category", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("failed to query recipes by categories: %w", err)
	}
	defer closeQuietly(rows)

	var out []catalog.RecipeCategorySet
	for rows.Next() {
		var (
			ref        models.RecipeRef
			categoryID int64
		)
		if err := rows.Scan(&ref.ID, &ref.Name, &categoryID); err != nil {
			return nil, fmt.Errorf("failed to scan recipe category row: %w", err)
		}
		if n := len(out); n > 0 && out[n-1].Ref.ID == ref.ID {
			out[n-1].CategoryIDs = append(out[n-1].CategoryIDs, categoryID)
			continue
		}
		out = append(out, catalog.RecipeCategorySet{Ref: ref, CategoryIDs: []int64{categoryID}})
	}
	return out, rows.Err()
}

// RecipesByAnyIngredient returns every recipe containing at least one of the
// given ingredients, each with its complete set of ingredient lines.
func (db *DB) RecipesByAnyIngredient(ctx context.Context, ingredientIDs []int64) ([]catalog.RecipeIngredientSet, error) {
	ctx, cancel := queryContext(ctx)
	defer cancel()

	query := fmt.Sprintf(`
		SELECT r.id, r.name, ri.ingredient_id, ri.optional, i.always_available
		FROM recipes r
		JOIN recipe_ingredients ri ON ri.recipe_id = r.id
		JOIN ingredients i ON i.id = ri.ingredient_id
		WHERE r.id IN (
			SELECT recipe_id FROM recipe_ingredients WHERE ingredient_id IN (%s)
		)
		ORDER BY r.id, ri.ingredient_id`, placeholders(len(ingredientIDs)))

	start := time.Now()
	rows, err := db.conn.QueryContext(ctx, query, int64Args(ingredientIDs)...)
	metrics.RecordDBQuery("recipes_by_any_ingredient", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("failed to query recipes by ingredients: %w", err)
	}
	defer closeQuietly(rows)

	var out []catalog.RecipeIngredientSet
	for rows.Next() {
		var (
			ref  models.RecipeRef
			line catalog.IngredientLineRow
		)
		if err := rows.Scan(&ref.ID, &ref.Name, &line.IngredientID, &line.Optional, &line.AlwaysAvailable); err != nil {
			return nil, fmt.Errorf("failed to scan recipe ingredient row: %w", err)
		}
		if n := len(out); n > 0 && out[n-1].Ref.ID == ref.ID {
			out[n-1].Lines = append(out[n-1].Lines, line)
			continue
		}
		out = append(out, catalog.RecipeIngredientSet{Ref: ref, Lines: []catalog.IngredientLineRow{line}})
	}
	return out, rows.Err()
}

// placeholders returns "?, ?, ..." with n placeholders.
func placeholders(n int) string {
	if n <= 0 {
		return "NULL"
	}
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

func int64Args(ids []int64) []any {
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return args
}

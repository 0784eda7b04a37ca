package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ppetrovna/povarenok/internal/logging"
)

// RecipeInput describes one recipe to insert, with its category memberships
// and ingredient lines.
type RecipeInput struct {
	Name        string
	CookingTime int
	Description string
	Image       *string
	Categories  []string
	Lines       []LineInput
}

// LineInput is one ingredient line of a RecipeInput. Ingredient references
// the ingredient by name; insertion resolves it to an id.
type LineInput struct {
	Ingredient string
	Count      string
	Optional   bool
}

// IngredientInput describes one ingredient to insert.
type IngredientInput struct {
	Name            string
	AlwaysAvailable bool
}

// querier is the subset of *sql.DB and *sql.Tx the upsert helpers need.
type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// InsertCategory inserts a category and returns its id. Inserting an
// existing name returns the stored id.
func (db *DB) InsertCategory(ctx context.Context, name string) (int64, error) {
	return insertCategory(ctx, db.conn, name)
}

func insertCategory(ctx context.Context, q querier, name string) (int64, error) {
	var id int64
	err := q.QueryRowContext(ctx, `
		INSERT INTO categories (name) VALUES (?)
		ON CONFLICT (name) DO UPDATE SET name = excluded.name
		RETURNING id`, name).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to insert category %q: %w", name, err)
	}
	return id, nil
}

// InsertIngredient inserts an ingredient and returns its id. Inserting an
// existing name updates its always_available flag and returns the stored id.
func (db *DB) InsertIngredient(ctx context.Context, input IngredientInput) (int64, error) {
	return insertIngredient(ctx, db.conn, input)
}

func insertIngredient(ctx context.Context, q querier, input IngredientInput) (int64, error) {
	var id int64
	err := q.QueryRowContext(ctx, `
		INSERT INTO ingredients (name, always_available) VALUES (?, ?)
		ON CONFLICT (name) DO UPDATE SET always_available = excluded.always_available
		RETURNING id`, input.Name, input.AlwaysAvailable).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to insert ingredient %q: %w", input.Name, err)
	}
	return id, nil
}

// resolveIngredient returns the id for the named ingredient, creating it if
// missing. Unlike insertIngredient it never touches the always_available
// flag of an existing row.
func resolveIngredient(ctx context.Context, q querier, name string) (int64, error) {
	var id int64
	err := q.QueryRowContext(ctx, `
		INSERT INTO ingredients (name) VALUES (?)
		ON CONFLICT (name) DO UPDATE SET name = excluded.name
		RETURNING id`, name).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to resolve ingredient %q: %w", name, err)
	}
	return id, nil
}

// InsertRecipe inserts a recipe with its category memberships and ingredient
// lines, creating referenced categories and ingredients as needed. Returns
// the new recipe id.
func (db *DB) InsertRecipe(ctx context.Context, input RecipeInput) (int64, error) {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var recipeID int64
	err = tx.QueryRowContext(ctx, `
		INSERT INTO recipes (name, cooking_time, description, image)
		VALUES (?, ?, ?, ?)
		RETURNING id`,
		input.Name, input.CookingTime, input.Description, input.Image).Scan(&recipeID)
	if err != nil {
		return 0, fmt.Errorf("failed to insert recipe %q: %w", input.Name, err)
	}

	for _, category := range input.Categories {
		categoryID, err := insertCategory(ctx, tx, category)
		if err != nil {
			return 0, err
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO recipe_categories (recipe_id, category_id) VALUES (?, ?)
			ON CONFLICT DO NOTHING`, recipeID, categoryID); err != nil {
			return 0, fmt.Errorf("failed to link recipe %q to category %q: %w", input.Name, category, err)
		}
	}

	for position, line := range input.Lines {
		ingredientID, err := resolveIngredient(ctx, tx, line.Ingredient)
		if err != nil {
			return 0, err
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO recipe_ingredients (recipe_id, ingredient_id, count_text, optional, position)
			VALUES (?, ?, ?, ?, ?)
			ON CONFLICT DO NOTHING`,
			recipeID, ingredientID, line.Count, line.Optional, position); err != nil {
			return 0, fmt.Errorf("failed to add line %q to recipe %q: %w", line.Ingredient, input.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit recipe %q: %w", input.Name, err)
	}
	return recipeID, nil
}

// SeedDemoData loads a small demo catalogue when the store is empty. It is
// a no-op on a populated store, so restarts are safe.
func (db *DB) SeedDemoData(ctx context.Context) error {
	var count int
	if err := db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM recipes`).Scan(&count); err != nil {
		return fmt.Errorf("failed to count recipes: %w", err)
	}
	if count > 0 {
		logging.Debug().Int("recipes", count).Msg("Store already populated, skipping demo seed")
		return nil
	}

	logging.Info().Msg("Seeding demo catalogue")

	for _, ing := range []IngredientInput{
		{Name: "соль", AlwaysAvailable: true},
		{Name: "перец чёрный", AlwaysAvailable: true},
		{Name: "масло растительное", AlwaysAvailable: true},
		{Name: "сахар", AlwaysAvailable: true},
	} {
		if _, err := db.InsertIngredient(ctx, ing); err != nil {
			return err
		}
	}

	for _, recipe := range demoRecipes() {
		if _, err := db.InsertRecipe(ctx, recipe); err != nil {
			return err
		}
	}
	return nil
}

func demoRecipes() []RecipeInput {
	return []RecipeInput{
		{
			Name:        "Овсяная каша с яблоком",
			CookingTime: 15,
			Description: "Залить хлопья молоком, варить 10 минут на слабом огне, добавить тёртое яблоко и сахар.",
			Categories:  []string{"завтрак"},
			Lines: []LineInput{
				{Ingredient: "овсяные хлопья", Count: "100 гр."},
				{Ingredient: "молоко", Count: "300 мл."},
				{Ingredient: "яблоко", Count: "1 шт."},
				{Ingredient: "сахар", Count: "по вкусу", Optional: true},
			},
		},
		{
			Name:        "Сырники",
			CookingTime: 25,
			Description: "Смешать творог с яйцом и мукой, сформировать сырники, обжарить с двух сторон до золотистой корочки.",
			Categories:  []string{"завтрак", "десерт"},
			Lines: []LineInput{
				{Ingredient: "творог", Count: "400 гр."},
				{Ingredient: "яйцо", Count: "1 шт."},
				{Ingredient: "мука", Count: "3 ст.л."},
				{Ingredient: "сахар", Count: "2 ст.л."},
				{Ingredient: "изюм", Count: "50 гр.", Optional: true},
			},
		},
		{
			Name:        "Борщ",
			CookingTime: 90,
			Description: "Сварить бульон, добавить свёклу, капусту и картофель, заправить зажаркой из лука и моркови.",
			Categories:  []string{"обед", "суп"},
			Lines: []LineInput{
				{Ingredient: "говядина", Count: "500 гр."},
				{Ingredient: "свёкла", Count: "2 шт."},
				{Ingredient: "капуста", Count: "300 гр."},
				{Ingredient: "картофель", Count: "3 шт."},
				{Ingredient: "лук репчатый", Count: "1 шт."},
				{Ingredient: "морковь", Count: "1 шт."},
				{Ingredient: "соль", Count: "по вкусу"},
				{Ingredient: "сметана", Count: "для подачи", Optional: true},
			},
		},
		{
			Name:        "Куриный суп с лапшой",
			CookingTime: 60,
			Description: "Сварить курицу, добавить картофель, морковь и лапшу, посолить.",
			Categories:  []string{"обед", "суп"},
			Lines: []LineInput{
				{Ingredient: "курица", Count: "600 гр."},
				{Ingredient: "лапша", Count: "100 гр."},
				{Ingredient: "картофель", Count: "2 шт."},
				{Ingredient: "морковь", Count: "1 шт."},
				{Ingredient: "соль", Count: "по вкусу"},
			},
		},
		{
			Name:        "Гречка с грибами",
			CookingTime: 40,
			Description: "Обжарить грибы с луком, добавить гречку и воду, тушить до готовности.",
			Categories:  []string{"обед", "ужин"},
			Lines: []LineInput{
				{Ingredient: "гречка", Count: "200 гр."},
				{Ingredient: "шампиньоны", Count: "300 гр."},
				{Ingredient: "лук репчатый", Count: "1 шт."},
				{Ingredient: "масло растительное", Count: "2 ст.л."},
				{Ingredient: "соль", Count: "по вкусу"},
			},
		},
		{
			Name:        "Запечённая курица с картофелем",
			CookingTime: 75,
			Description: "Натереть курицу специями, выложить на противень с картофелем, запекать при 180 градусах.",
			Categories:  []string{"ужин"},
			Lines: []LineInput{
				{Ingredient: "курица", Count: "1 кг."},
				{Ingredient: "картофель", Count: "6 шт."},
				{Ingredient: "масло растительное", Count: "2 ст.л."},
				{Ingredient: "соль", Count: "по вкусу"},
				{Ingredient: "перец чёрный", Count: "по вкусу"},
				{Ingredient: "розмарин", Count: "2 веточки", Optional: true},
			},
		},
		{
			Name:        "Бутерброд с сыром",
			CookingTime: 5,
			Description: "Положить сыр на хлеб. Подавать немедленно.",
			Categories:  []string{"перекус"},
			Lines: []LineInput{
				{Ingredient: "хлеб", Count: "2 ломтика"},
				{Ingredient: "сыр", Count: "50 гр."},
				{Ingredient: "масло сливочное", Count: "10 гр.", Optional: true},
			},
		},
		{
			Name:        "Яблоки запечённые с мёдом",
			CookingTime: 30,
			Description: "Удалить сердцевину, заполнить мёдом, запекать 25 минут.",
			Categories:  []string{"перекус", "десерт"},
			Lines: []LineInput{
				{Ingredient: "яблоко", Count: "4 шт."},
				{Ingredient: "мёд", Count: "4 ч.л."},
				{Ingredient: "корица", Count: "щепотка", Optional: true},
			},
		},
		{
			Name:        "Шарлотка",
			CookingTime: 50,
			Description: "Взбить яйца с сахаром, добавить муку и яблоки, выпекать 40 минут при 180 градусах.",
			Categories:  []string{"десерт", "выпечка"},
			Lines: []LineInput{
				{Ingredient: "яблоко", Count: "4 шт."},
				{Ingredient: "яйцо", Count: "4 шт."},
				{Ingredient: "мука", Count: "200 гр."},
				{Ingredient: "сахар", Count: "200 гр."},
			},
		},
		{
			Name:        "Овощной салат",
			CookingTime: 10,
			Description: "Нарезать овощи, заправить маслом, посолить.",
			Categories:  []string{"ужин", "перекус"},
			Lines: []LineInput{
				{Ingredient: "огурец", Count: "2 шт."},
				{Ingredient: "помидор", Count: "2 шт."},
				{Ingredient: "лук репчатый", Count: "половина"},
				{Ingredient: "масло растительное", Count: "1 ст.л."},
				{Ingredient: "соль", Count: "по вкусу"},
			},
		},
	}
}

package database

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/ppetrovna/povarenok/internal/catalog"
	"github.com/ppetrovna/povarenok/internal/config"
)

func testDB(t *testing.T) *DB {
	t.Helper()

	cfg := &config.DatabaseConfig{
		Path:      filepath.Join(t.TempDir(), "test.duckdb"),
		MaxMemory: "256MB",
		Threads:   2,
	}
	db, err := New(cfg)
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Errorf("Failed to close database: %v", err)
		}
	})
	return db
}

func seededDB(t *testing.T) *DB {
	t.Helper()

	db := testDB(t)
	if err := db.SeedDemoData(context.Background()); err != nil {
		t.Fatalf("Failed to seed demo data: %v", err)
	}
	return db
}

func TestNewCreatesParentDirectory(t *testing.T) {
	cfg := &config.DatabaseConfig{
		Path: filepath.Join(t.TempDir(), "nested", "dir", "test.duckdb"),
	}
	db, err := New(cfg)
	if err != nil {
		t.Fatalf("Expected parent directories to be created, got: %v", err)
	}
	defer db.Close()

	if err := db.Ping(context.Background()); err != nil {
		t.Errorf("Ping failed: %v", err)
	}
}

func TestSchemaIsIdempotent(t *testing.T) {
	db := testDB(t)

	// Re-running DDL against an initialized store must not fail.
	if err := db.createSchema(); err != nil {
		t.Fatalf("Second schema creation failed: %v", err)
	}
}

func TestSeedDemoDataIsIdempotent(t *testing.T) {
	db := seededDB(t)
	ctx := context.Background()

	firstIDs, err := db.RecipeIDs(ctx)
	if err != nil {
		t.Fatalf("RecipeIDs failed: %v", err)
	}
	if len(firstIDs) == 0 {
		t.Fatal("Expected seeded recipes")
	}

	if err := db.SeedDemoData(ctx); err != nil {
		t.Fatalf("Second seed failed: %v", err)
	}
	secondIDs, err := db.RecipeIDs(ctx)
	if err != nil {
		t.Fatalf("RecipeIDs failed: %v", err)
	}
	if len(secondIDs) != len(firstIDs) {
		t.Errorf("Second seed changed recipe count: %d -> %d", len(firstIDs), len(secondIDs))
	}
}

func TestRecipeByIDHydration(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	image := "https://example.com/soup.jpg"
	id, err := db.InsertRecipe(ctx, RecipeInput{
		Name:        "суп",
		CookingTime: 45,
		Description: "варить",
		Image:       &image,
		Categories:  []string{"обед", "суп"},
		Lines: []LineInput{
			{Ingredient: "курица", Count: "500 гр."},
			{Ingredient: "соль", Count: "по вкусу"},
			{Ingredient: "зелень", Count: "пучок", Optional: true},
		},
	})
	if err != nil {
		t.Fatalf("InsertRecipe failed: %v", err)
	}

	recipe, err := db.RecipeByID(ctx, id)
	if err != nil {
		t.Fatalf("RecipeByID failed: %v", err)
	}
	if recipe.Name != "суп" || recipe.CookingTime != 45 {
		t.Errorf("Unexpected recipe fields: %+v", recipe)
	}
	if recipe.Image == nil || *recipe.Image != image {
		t.Errorf("Expected image %q, got %v", image, recipe.Image)
	}
	if len(recipe.Ingredients) != 3 {
		t.Fatalf("Expected 3 ingredient lines, got %d", len(recipe.Ingredients))
	}
	// Lines come back in authored order.
	if recipe.Ingredients[0].Ingredient.Name != "курица" {
		t.Errorf("Expected first line курица, got %q", recipe.Ingredients[0].Ingredient.Name)
	}
	if !recipe.Ingredients[2].Optional {
		t.Error("Expected зелень line to be optional")
	}
	if len(recipe.Categories) != 2 {
		t.Errorf("Expected 2 categories, got %d", len(recipe.Categories))
	}
}

func TestRecipeByIDNotFound(t *testing.T) {
	db := testDB(t)

	if _, err := db.RecipeByID(context.Background(), 404); !errors.Is(err, catalog.ErrNotFound) {
		t.Errorf("Expected catalog.ErrNotFound, got %v", err)
	}
}

func TestRecipeIDsByCategoryName(t *testing.T) {
	db := seededDB(t)
	ctx := context.Background()

	ids, err := db.RecipeIDsByCategoryName(ctx, "завтрак")
	if err != nil {
		t.Fatalf("RecipeIDsByCategoryName failed: %v", err)
	}
	if len(ids) == 0 {
		t.Error("Expected recipes in завтрак")
	}

	// Unknown name yields an empty list, not an error.
	ids, err = db.RecipeIDsByCategoryName(ctx, "полдник")
	if err != nil {
		t.Fatalf("RecipeIDsByCategoryName for unknown name failed: %v", err)
	}
	if len(ids) != 0 {
		t.Errorf("Expected no recipes for unknown category, got %v", ids)
	}
}

func TestCategoriesNameOrdered(t *testing.T) {
	db := seededDB(t)

	cats, err := db.Categories(context.Background())
	if err != nil {
		t.Fatalf("Categories failed: %v", err)
	}
	if len(cats) == 0 {
		t.Fatal("Expected seeded categories")
	}
	for i := 1; i < len(cats); i++ {
		if cats[i-1].Name > cats[i].Name {
			t.Errorf("Categories not name-ordered: %q before %q", cats[i-1].Name, cats[i].Name)
		}
	}
}

func TestIngredientsByInitial(t *testing.T) {
	db := seededDB(t)
	ctx := context.Background()

	ingredients, err := db.IngredientsByInitial(ctx, "к")
	if err != nil {
		t.Fatalf("IngredientsByInitial failed: %v", err)
	}
	if len(ingredients) == 0 {
		t.Fatal("Expected ingredients starting with к")
	}
	for _, ing := range ingredients {
		if []rune(ing.Name)[0] != 'к' {
			t.Errorf("Ingredient %q does not start with к", ing.Name)
		}
	}

	none, err := db.IngredientsByInitial(ctx, "ъ")
	if err != nil {
		t.Fatalf("IngredientsByInitial failed: %v", err)
	}
	if len(none) != 0 {
		t.Errorf("Expected no ingredients for ъ, got %v", none)
	}
}

func TestRecipesByAnyCategoryReturnsFullSets(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	id, err := db.InsertRecipe(ctx, RecipeInput{
		Name:       "пирог",
		Categories: []string{"выпечка", "десерт", "перекус"},
	})
	if err != nil {
		t.Fatalf("InsertRecipe failed: %v", err)
	}
	dessertID, err := db.InsertCategory(ctx, "десерт")
	if err != nil {
		t.Fatalf("InsertCategory failed: %v", err)
	}

	sets, err := db.RecipesByAnyCategory(ctx, []int64{dessertID})
	if err != nil {
		t.Fatalf("RecipesByAnyCategory failed: %v", err)
	}
	if len(sets) != 1 {
		t.Fatalf("Expected 1 candidate recipe, got %d", len(sets))
	}
	if sets[0].Ref.ID != id {
		t.Errorf("Expected recipe %d, got %d", id, sets[0].Ref.ID)
	}
	// The candidate carries its COMPLETE category set, not just matches.
	if len(sets[0].CategoryIDs) != 3 {
		t.Errorf("Expected complete category set of 3, got %v", sets[0].CategoryIDs)
	}
}

func TestRecipesByAnyIngredientCarriesLineFlags(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	if _, err := db.InsertIngredient(ctx, IngredientInput{Name: "соль", AlwaysAvailable: true}); err != nil {
		t.Fatalf("InsertIngredient failed: %v", err)
	}
	id, err := db.InsertRecipe(ctx, RecipeInput{
		Name: "картошка",
		Lines: []LineInput{
			{Ingredient: "картофель", Count: "5 шт."},
			{Ingredient: "соль", Count: "по вкусу"},
			{Ingredient: "укроп", Count: "пучок", Optional: true},
		},
	})
	if err != nil {
		t.Fatalf("InsertRecipe failed: %v", err)
	}

	potato, err := db.IngredientsByInitial(ctx, "картофель")
	if err != nil || len(potato) != 1 {
		t.Fatalf("Failed to look up картофель: %v (%d rows)", err, len(potato))
	}

	sets, err := db.RecipesByAnyIngredient(ctx, []int64{potato[0].ID})
	if err != nil {
		t.Fatalf("RecipesByAnyIngredient failed: %v", err)
	}
	if len(sets) != 1 || sets[0].Ref.ID != id {
		t.Fatalf("Expected the one inserted recipe, got %+v", sets)
	}
	if len(sets[0].Lines) != 3 {
		t.Fatalf("Expected complete line set of 3, got %d", len(sets[0].Lines))
	}

	var sawPantry, sawOptional bool
	for _, line := range sets[0].Lines {
		if line.AlwaysAvailable {
			sawPantry = true
		}
		if line.Optional {
			sawOptional = true
		}
	}
	if !sawPantry {
		t.Error("Expected соль line to carry always_available")
	}
	if !sawOptional {
		t.Error("Expected укроп line to carry optional")
	}
}

func TestLineResolutionKeepsPantryFlag(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	if _, err := db.InsertIngredient(ctx, IngredientInput{Name: "соль", AlwaysAvailable: true}); err != nil {
		t.Fatalf("InsertIngredient failed: %v", err)
	}
	if _, err := db.InsertRecipe(ctx, RecipeInput{
		Name:  "каша",
		Lines: []LineInput{{Ingredient: "соль", Count: "щепотка"}},
	}); err != nil {
		t.Fatalf("InsertRecipe failed: %v", err)
	}

	salt, err := db.IngredientsByInitial(ctx, "соль")
	if err != nil || len(salt) != 1 {
		t.Fatalf("Failed to look up соль: %v (%d rows)", err, len(salt))
	}
	if !salt[0].AlwaysAvailable {
		t.Error("Recipe insertion must not clear always_available on existing ingredients")
	}
}

func TestEngineOverDuckDB(t *testing.T) {
	db := seededDB(t)
	ctx := context.Background()

	engine := catalog.NewEngine(db, catalog.DefaultMenuSlots())

	menu, err := engine.DailyMenu(ctx)
	if err != nil {
		t.Fatalf("DailyMenu over seeded store failed: %v", err)
	}
	if menu.Breakfast == nil || menu.Lunch == nil || menu.Snack == nil || menu.Dinner == nil {
		t.Error("Expected every menu slot filled from the demo catalogue")
	}

	if _, err := engine.RandomRecipe(ctx); err != nil {
		t.Errorf("RandomRecipe over seeded store failed: %v", err)
	}
}

// Package models defines the domain types shared by the query engine API
// and the bot: recipes, categories, ingredients and their wire shapes.
package models

// Category is a dish category ("завтрак", "суп", ...).
type Category struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Ingredient is a single ingredient. AlwaysAvailable marks pantry staples
// (salt, pepper, ...) that never constrain an exact-match search.
type Ingredient struct {
	ID              int64  `json:"id"`
	Name            string `json:"name"`
	AlwaysAvailable bool   `json:"always_available,omitempty"`
}

// IngredientName is the nested ingredient shape inside a recipe's lines.
type IngredientName struct {
	Name string `json:"name"`
}

// IngredientLine is one line of a recipe's ingredient list. Count is a
// free-text quantity ("500 гр."), not a number. Optional marks non-essential
// lines (garnish and the like).
type IngredientLine struct {
	Count      string         `json:"count"`
	Ingredient IngredientName `json:"ingredient"`
	Optional   bool           `json:"-"`
}

// Recipe is a fully hydrated recipe as served by GET /recipes/{id}.
type Recipe struct {
	ID          int64            `json:"-"`
	Name        string           `json:"name"`
	CookingTime int              `json:"cooking_time"`
	Description string           `json:"description"`
	Image       *string          `json:"image"`
	Ingredients []IngredientLine `json:"ingredients"`
	Categories  []Category       `json:"-"`
}

// RecipeRef is the short list-item shape used by all filter endpoints.
type RecipeRef struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// DailyMenu holds one recipe per meal slot.
type DailyMenu struct {
	Breakfast *Recipe `json:"breakfast"`
	Lunch     *Recipe `json:"lunch"`
	Snack     *Recipe `json:"snack"`
	Dinner    *Recipe `json:"dinner"`
}

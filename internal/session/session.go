// Package session stores per-conversation selection state for the bot: the
// categories and ingredients a user has checked so far. The two tracks are
// independent; opening a recipe clears both.
package session

import (
	"context"
	"strings"
)

// IngredientPick is one checked ingredient. The name is kept so the bot can
// show "Выбранные ингредиенты: ..." without a round trip per ingredient.
type IngredientPick struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Selection is one conversation's accumulated choices, in insertion order.
type Selection struct {
	Categories  []int64          `json:"categories,omitempty"`
	Ingredients []IngredientPick `json:"ingredients,omitempty"`
}

// ToggleCategory flips the category's checked state and reports whether it
// is selected afterwards.
func (s *Selection) ToggleCategory(id int64) bool {
	for i, existing := range s.Categories {
		if existing == id {
			s.Categories = append(s.Categories[:i], s.Categories[i+1:]...)
			return false
		}
	}
	s.Categories = append(s.Categories, id)
	return true
}

// HasCategory reports whether the category is checked.
func (s *Selection) HasCategory(id int64) bool {
	for _, existing := range s.Categories {
		if existing == id {
			return true
		}
	}
	return false
}

// ToggleIngredient flips the ingredient's checked state and reports whether
// it is selected afterwards.
func (s *Selection) ToggleIngredient(id int64, name string) bool {
	for i, existing := range s.Ingredients {
		if existing.ID == id {
			s.Ingredients = append(s.Ingredients[:i], s.Ingredients[i+1:]...)
			return false
		}
	}
	s.Ingredients = append(s.Ingredients, IngredientPick{ID: id, Name: name})
	return true
}

// HasIngredient reports whether the ingredient is checked.
func (s *Selection) HasIngredient(id int64) bool {
	for _, existing := range s.Ingredients {
		if existing.ID == id {
			return true
		}
	}
	return false
}

// IngredientIDs returns the checked ingredient ids in insertion order.
func (s *Selection) IngredientIDs() []int64 {
	ids := make([]int64, 0, len(s.Ingredients))
	for _, pick := range s.Ingredients {
		ids = append(ids, pick.ID)
	}
	return ids
}

// IngredientNames returns the checked ingredient names joined for display.
func (s *Selection) IngredientNames() string {
	names := make([]string, 0, len(s.Ingredients))
	for _, pick := range s.Ingredients {
		names = append(names, pick.Name)
	}
	return strings.Join(names, ", ")
}

// ClearCategories unchecks every category.
func (s *Selection) ClearCategories() {
	s.Categories = nil
}

// ClearIngredients unchecks every ingredient.
func (s *Selection) ClearIngredients() {
	s.Ingredients = nil
}

// clone returns an independent copy.
func (s *Selection) clone() *Selection {
	out := &Selection{}
	if len(s.Categories) > 0 {
		out.Categories = append([]int64(nil), s.Categories...)
	}
	if len(s.Ingredients) > 0 {
		out.Ingredients = append([]IngredientPick(nil), s.Ingredients...)
	}
	return out
}

// Store is the conversation state port. Get returns a private copy;
// mutations go through Update, which applies fn under per-conversation
// mutual exclusion so concurrent button presses cannot lose toggles.
type Store interface {
	Get(ctx context.Context, chatID int64) (*Selection, error)
	Update(ctx context.Context, chatID int64, fn func(*Selection)) (*Selection, error)
	Clear(ctx context.Context, chatID int64) error
	Close() error
}

package bot

import (
	"strings"
	"testing"

	"github.com/ppetrovna/povarenok/internal/models"
	"github.com/ppetrovna/povarenok/internal/session"
)

func TestMainMenuKeyboard(t *testing.T) {
	k := mainMenuKeyboard()
	if len(k) != 4 {
		t.Fatalf("got %d rows, want 4", len(k))
	}
	for i, row := range k {
		if len(row) != 1 {
			t.Errorf("row %d has %d buttons, want 1", i, len(row))
		}
	}
	if k[0][0].Data != "m|rand" {
		t.Errorf("first button data = %q", k[0][0].Data)
	}
}

func TestCategoriesKeyboardLayout(t *testing.T) {
	categories := []models.Category{
		{ID: 1, Name: "завтрак"}, {ID: 2, Name: "обед"}, {ID: 3, Name: "суп"},
		{ID: 4, Name: "ужин"}, {ID: 5, Name: "десерт"},
	}

	k := categoriesKeyboard(categories, &session.Selection{})
	// Two checkbox rows (3+2) plus the two submit rows; no clear row while
	// nothing is checked.
	if len(k) != 4 {
		t.Fatalf("got %d rows, want 4", len(k))
	}
	if len(k[0]) != 3 || len(k[1]) != 2 {
		t.Errorf("checkbox rows have %d and %d buttons", len(k[0]), len(k[1]))
	}
	if !strings.HasPrefix(k[0][0].Text, markUnchecked) {
		t.Errorf("unchecked button text = %q", k[0][0].Text)
	}
	if k[2][0].Data != "cs|any" || k[3][0].Data != "cs|all" {
		t.Errorf("submit rows = %q, %q", k[2][0].Data, k[3][0].Data)
	}
}

func TestCategoriesKeyboardChecked(t *testing.T) {
	categories := []models.Category{{ID: 1, Name: "завтрак"}, {ID: 2, Name: "обед"}}
	sel := &session.Selection{}
	sel.ToggleCategory(2)

	k := categoriesKeyboard(categories, sel)
	// One checkbox row, the clear row, two submit rows.
	if len(k) != 4 {
		t.Fatalf("got %d rows, want 4", len(k))
	}
	if !strings.HasPrefix(k[0][0].Text, markUnchecked) {
		t.Errorf("category 1 text = %q", k[0][0].Text)
	}
	if !strings.HasPrefix(k[0][1].Text, markChecked) {
		t.Errorf("category 2 text = %q", k[0][1].Text)
	}
	if k[1][0].Text != "Очистить выбор" {
		t.Errorf("second row = %q, want the clear row", k[1][0].Text)
	}
}

func TestLettersKeyboard(t *testing.T) {
	k := lettersKeyboard(&session.Selection{})
	// 28 letters, four per row.
	if len(k) != 7 {
		t.Fatalf("got %d rows, want 7", len(k))
	}
	if k[0][0].Text != "а..." || k[0][0].Data != "l|а" {
		t.Errorf("first letter button = %+v", k[0][0])
	}

	sel := &session.Selection{}
	sel.ToggleIngredient(1, "соль")
	k = lettersKeyboard(sel)
	if len(k) != 9 {
		t.Fatalf("got %d rows with a selection, want 9", len(k))
	}
	if k[7][0].Data != "ic" || k[8][0].Data != "is" {
		t.Errorf("tail rows = %q, %q", k[7][0].Data, k[8][0].Data)
	}
}

func TestIngredientsKeyboard(t *testing.T) {
	ingredients := []models.Ingredient{
		{ID: 1, Name: "картофель"}, {ID: 2, Name: "капуста"}, {ID: 3, Name: "курица"},
	}
	sel := &session.Selection{}
	sel.ToggleIngredient(3, "курица")

	k := ingredientsKeyboard("к", ingredients, sel)
	// Two checkbox rows (2+1), the submit row, the back row.
	if len(k) != 4 {
		t.Fatalf("got %d rows, want 4", len(k))
	}
	if !strings.HasPrefix(k[1][0].Text, markChecked) {
		t.Errorf("курица button text = %q", k[1][0].Text)
	}
	if k[2][0].Data != "is" {
		t.Errorf("submit row data = %q", k[2][0].Data)
	}
	if k[3][0].Data != "ia" {
		t.Errorf("back row data = %q", k[3][0].Data)
	}

	// Without a selection the submit row disappears but the back row stays.
	k = ingredientsKeyboard("к", ingredients, &session.Selection{})
	if len(k) != 3 {
		t.Fatalf("got %d rows without a selection, want 3", len(k))
	}
	if k[2][0].Data != "ia" {
		t.Errorf("back row data = %q", k[2][0].Data)
	}
}

func TestRecipesKeyboard(t *testing.T) {
	refs := []models.RecipeRef{
		{ID: 1, Name: "борщ"}, {ID: 2, Name: "окрошка"}, {ID: 3, Name: "ЩИ"},
	}
	k := recipesKeyboard(refs)
	if len(k) != 2 {
		t.Fatalf("got %d rows, want 2", len(k))
	}
	if k[0][0].Text != "Борщ" {
		t.Errorf("first button text = %q", k[0][0].Text)
	}
	if k[1][0].Text != "Щи" {
		t.Errorf("upper-case name rendered as %q", k[1][0].Text)
	}
	if k[0][1].Data != "r|2" {
		t.Errorf("second button data = %q", k[0][1].Data)
	}
}

func TestCapitalize(t *testing.T) {
	tests := []struct{ in, want string }{
		{"", ""},
		{"борщ", "Борщ"},
		{"ЩИ ЗЕЛЁНЫЕ", "Щи зелёные"},
		{"pasta", "Pasta"},
	}
	for _, tt := range tests {
		if got := capitalize(tt.in); got != tt.want {
			t.Errorf("capitalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

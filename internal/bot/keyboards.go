package bot

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/ppetrovna/povarenok/internal/chat"
	"github.com/ppetrovna/povarenok/internal/models"
	"github.com/ppetrovna/povarenok/internal/session"
)

// alphabet is the ingredient initial-letter index. Letters with no
// ingredients simply produce an empty list.
const alphabet = "абвгдежзиклмнопрстуфхцчшщэюя"

// Checkbox marks.
const (
	markChecked   = "✅ "
	markUnchecked = "🟩 "
)

// mainMenuKeyboard is the four-entry main menu.
func mainMenuKeyboard() chat.Keyboard {
	return chat.Column([]chat.Button{
		{Text: "Случайный рецепт", Data: tokMainRandom},
		{Text: "Меню на день", Data: tokMainMenu},
		{Text: "Поиск по категориям", Data: tokMainCategories},
		{Text: "Поиск по ингредиентам", Data: tokMainIngredients},
	})
}

// categoriesKeyboard renders the category checkboxes, three per row, with
// the clear row (only when something is checked) and the two submit rows.
func categoriesKeyboard(categories []models.Category, sel *session.Selection) chat.Keyboard {
	buttons := make([]chat.Button, 0, len(categories))
	for _, category := range categories {
		mark := markUnchecked
		if sel.HasCategory(category.ID) {
			mark = markChecked
		}
		buttons = append(buttons, chat.Button{
			Text: mark + category.Name,
			Data: EncodeToggleCategory(category.ID),
		})
	}
	k := chat.Rows(buttons, 3)

	if len(sel.Categories) > 0 {
		k = k.Row(chat.Button{Text: "Очистить выбор", Data: tokClearCategories})
	}
	k = k.Row(chat.Button{
		Text: "Найти рецепты из каждой категории",
		Data: EncodeSubmitCategories("any"),
	})
	k = k.Row(chat.Button{
		Text: "Найти рецепты с полным совпадением",
		Data: EncodeSubmitCategories("all"),
	})
	return k
}

// lettersKeyboard renders the alphabet index, four letters per row. When
// the selection is non-empty, clear and submit rows are appended.
func lettersKeyboard(sel *session.Selection) chat.Keyboard {
	buttons := make([]chat.Button, 0, utf8.RuneCountInString(alphabet))
	for _, letter := range alphabet {
		buttons = append(buttons, chat.Button{
			Text: string(letter) + "...",
			Data: EncodeLetter(string(letter)),
		})
	}
	k := chat.Rows(buttons, 4)

	if len(sel.Ingredients) > 0 {
		k = k.Row(chat.Button{Text: "Очистить ингредиенты", Data: tokClearIngredients})
		k = k.Row(chat.Button{Text: "Найти рецепты", Data: tokSubmitIngredients})
	}
	return k
}

// ingredientsKeyboard renders the checkbox list for one letter, two per
// row, with the back-to-alphabet row and, when something is checked, the
// submit row.
func ingredientsKeyboard(letter string, ingredients []models.Ingredient, sel *session.Selection) chat.Keyboard {
	buttons := make([]chat.Button, 0, len(ingredients))
	for _, ing := range ingredients {
		mark := markUnchecked
		if sel.HasIngredient(ing.ID) {
			mark = markChecked
		}
		buttons = append(buttons, chat.Button{
			Text: mark + ing.Name,
			Data: EncodeToggleIngredient(letter, ing.ID, ing.Name),
		})
	}
	k := chat.Rows(buttons, 2)

	if len(sel.Ingredients) > 0 {
		k = k.Row(chat.Button{Text: "Найти рецепты", Data: tokSubmitIngredients})
	}
	k = k.Row(chat.Button{Text: "<<< Добавить другие ингредиенты", Data: tokAddIngredients})
	return k
}

// ingredientModeKeyboard offers the two ingredient search modes.
func ingredientModeKeyboard() chat.Keyboard {
	return chat.Keyboard{}.
		Row(chat.Button{Text: "с содержанием ингредиентов", Data: EncodeIngredientMode("any")}).
		Row(chat.Button{Text: "с ограничением по ингредиентам", Data: EncodeIngredientMode("only")})
}

// recipesKeyboard renders search results, two per row.
func recipesKeyboard(refs []models.RecipeRef) chat.Keyboard {
	buttons := make([]chat.Button, 0, len(refs))
	for _, ref := range refs {
		buttons = append(buttons, chat.Button{
			Text: capitalize(ref.Name),
			Data: EncodeOpenRecipe(ref.ID),
		})
	}
	return chat.Rows(buttons, 2)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + strings.ToLower(s[size:])
}

package bot

import (
	"fmt"
	"html"
	"strings"

	"github.com/ppetrovna/povarenok/internal/models"
)

// User-facing strings.
const (
	msgGreeting          = "Привет!"
	msgWhatToSearch      = "Что будем искать?"
	msgChooseCategories  = "Выберите категории:"
	msgChooseIngredients = "Выберите ингредиенты:"
	msgChosenIngredients = "Выбранные ингредиенты: "
	msgSearchingRecipes  = "Поиск рецептов..."
	msgRecipesFound      = "Блюда:"
	msgRecipesNotFound   = "Блюда не найдены"
	msgNothingSelected   = "Сначала отметьте хотя бы один пункт"
	msgNotFound          = "Ничего не нашлось, попробуйте другой запрос"
	msgBackendDown       = "Сервис рецептов сейчас недоступен, попробуйте позже"
)

// menuSlotTitles maps daily-menu slots to their display headers, in serving
// order.
var menuSlotTitles = []struct {
	Title  string
	Recipe func(*models.DailyMenu) *models.Recipe
}{
	{"ЗАВТРАК", func(m *models.DailyMenu) *models.Recipe { return m.Breakfast }},
	{"ОБЕД", func(m *models.DailyMenu) *models.Recipe { return m.Lunch }},
	{"ПЕРЕКУС", func(m *models.DailyMenu) *models.Recipe { return m.Snack }},
	{"УЖИН", func(m *models.DailyMenu) *models.Recipe { return m.Dinner }},
}

// renderRecipe formats a recipe as the HTML message the bot sends: name,
// cooking time, the ingredient lines, then the instructions.
func renderRecipe(recipe *models.Recipe) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "<b>%s</b>\n", html.EscapeString(strings.ToUpper(recipe.Name)))
	fmt.Fprintf(&sb, "<b><i>Время приготовления:</i></b> %d мин.\n", recipe.CookingTime)
	sb.WriteString("<b><i>Ингредиенты:</i></b>\n")
	for _, line := range recipe.Ingredients {
		fmt.Fprintf(&sb, "  %s: %s\n",
			html.EscapeString(line.Ingredient.Name),
			html.EscapeString(line.Count))
	}
	fmt.Fprintf(&sb, "<b><i>Приготовление:</i></b>\n%s", html.EscapeString(recipe.Description))

	return sb.String()
}

// renderMenuSlot prefixes a recipe message with its meal header.
func renderMenuSlot(title string, recipe *models.Recipe) string {
	return fmt.Sprintf("<b>%s:</b> %s", title, renderRecipe(recipe))
}

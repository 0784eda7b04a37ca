package bot

import (
	"context"
	"errors"
	"time"

	"github.com/ppetrovna/povarenok/internal/cache"
	"github.com/ppetrovna/povarenok/internal/catalog"
	"github.com/ppetrovna/povarenok/internal/chat"
	"github.com/ppetrovna/povarenok/internal/client"
	"github.com/ppetrovna/povarenok/internal/logging"
	"github.com/ppetrovna/povarenok/internal/metrics"
	"github.com/ppetrovna/povarenok/internal/models"
	"github.com/ppetrovna/povarenok/internal/session"
)

// Query is the query engine surface the manager consumes. Both
// client.Client and client.BreakerClient satisfy it.
type Query interface {
	RandomRecipe(ctx context.Context) (*models.Recipe, error)
	RecipeByID(ctx context.Context, id int64) (*models.Recipe, error)
	DailyMenu(ctx context.Context) (*models.DailyMenu, error)
	Categories(ctx context.Context) ([]models.Category, error)
	IngredientsByLetter(ctx context.Context, letter string) ([]models.Ingredient, error)
	RecipesByCategories(ctx context.Context, mode string, ids []int64) ([]models.RecipeRef, error)
	RecipesByIngredients(ctx context.Context, mode string, ids []int64) ([]models.RecipeRef, error)
}

var _ Query = (*client.BreakerClient)(nil)

// Cache keys for the keyboard source lists.
const (
	cacheKeyCategories  = "categories"
	cacheKeyIngredients = "ingredients:" // + letter
)

// Manager drives conversations: it decodes updates, mutates the session
// through the store, and answers through the transport. One Manager serves
// every conversation; per-chat serialization is the poller's job.
type Manager struct {
	query     Query
	store     session.Store
	transport chat.Transport
	cache     *cache.Cache
}

// NewManager creates the conversation manager. cacheTTL bounds how long
// category and ingredient lists are reused between keyboard renders.
func NewManager(query Query, store session.Store, transport chat.Transport, cacheTTL time.Duration) *Manager {
	return &Manager{
		query:     query,
		store:     store,
		transport: transport,
		cache:     cache.New(cacheTTL),
	}
}

// Commands returns the command menu the bot publishes at startup.
func Commands() []chat.Command {
	return []chat.Command{
		{Name: "start", Description: "Начни работу с ботом"},
		{Name: "random", Description: "Случайный рецепт"},
		{Name: "menu_day", Description: "Меню на день"},
		{Name: "search_by_categories", Description: "Поиск по категориям"},
		{Name: "search_by_ingredients", Description: "Поиск по ингредиентам"},
	}
}

// Description returns the bot description published at startup.
func Description() string {
	return "Ищите интересные и необычные рецепты по категориям и ингредиентам."
}

// HandleUpdate processes one inbound event. Errors are logged, answered
// with a friendly message where possible, and never propagated: no failure
// here is fatal to the process.
func (m *Manager) HandleUpdate(ctx context.Context, update chat.Update) {
	switch {
	case update.Message != nil:
		m.handleMessage(ctx, *update.Message)
	case update.Callback != nil:
		m.handleCallback(ctx, *update.Callback)
	}
}

func (m *Manager) handleMessage(ctx context.Context, msg chat.Message) {
	metrics.BotUpdatesTotal.WithLabelValues("command").Inc()

	switch msg.Command() {
	case "start":
		m.sendText(ctx, msg.ChatID, msgGreeting)
		m.sendMainMenu(ctx, msg.ChatID)
	case "random":
		m.sendRandomRecipe(ctx, msg.ChatID)
	case "menu_day":
		m.sendDailyMenu(ctx, msg.ChatID)
	case "search_by_categories":
		m.sendCategories(ctx, msg.ChatID)
	case "search_by_ingredients":
		m.sendLetters(ctx, msg.ChatID)
	default:
		// Any other text gets the main menu, same as the original /start.
		m.sendMainMenu(ctx, msg.ChatID)
	}
}

func (m *Manager) handleCallback(ctx context.Context, cb chat.Callback) {
	metrics.BotUpdatesTotal.WithLabelValues("callback").Inc()

	if err := m.transport.AnswerCallback(ctx, cb.ID); err != nil {
		logging.Warn().Err(err).Int64("chat_id", cb.ChatID).Msg("Failed to answer callback")
	}

	action, err := DecodeAction(cb.Data)
	if err != nil {
		logging.Warn().Err(err).Int64("chat_id", cb.ChatID).Msg("Dropping unknown callback")
		return
	}

	switch action.Kind {
	case ActionMainRandom:
		m.sendRandomRecipe(ctx, cb.ChatID)
	case ActionMainMenu:
		m.sendDailyMenu(ctx, cb.ChatID)
	case ActionMainCategories:
		m.sendCategories(ctx, cb.ChatID)
	case ActionMainIngredients:
		m.sendLetters(ctx, cb.ChatID)

	case ActionToggleCategory:
		m.toggleCategory(ctx, cb, action.CategoryID)
	case ActionSubmitCategories:
		m.submitCategories(ctx, cb.ChatID, action.Mode)
	case ActionClearCategories:
		m.clearCategories(ctx, cb)

	case ActionLetter:
		m.showIngredients(ctx, cb, action.Letter)
	case ActionToggleIngredient:
		m.toggleIngredient(ctx, cb, action)
	case ActionSubmitIngredients:
		m.offerIngredientModes(ctx, cb.ChatID)
	case ActionIngredientMode:
		m.submitIngredients(ctx, cb.ChatID, action.Mode)
	case ActionClearIngredients:
		m.clearIngredients(ctx, cb)
	case ActionAddIngredients:
		m.editLetters(ctx, cb)

	case ActionOpenRecipe:
		m.openRecipe(ctx, cb.ChatID, action.RecipeID)
	}
}

// --- main menu and simple sends ---

func (m *Manager) sendMainMenu(ctx context.Context, chatID int64) {
	m.send(ctx, chat.SendOptions{
		ChatID:   chatID,
		Text:     msgWhatToSearch,
		Keyboard: mainMenuKeyboard(),
	})
}

func (m *Manager) sendRandomRecipe(ctx context.Context, chatID int64) {
	recipe, err := m.query.RandomRecipe(ctx)
	if err != nil {
		m.sendFailure(ctx, chatID, err)
		return
	}
	m.sendRecipe(ctx, chatID, recipe, "")
}

func (m *Manager) sendDailyMenu(ctx context.Context, chatID int64) {
	menu, err := m.query.DailyMenu(ctx)
	if err != nil {
		m.sendFailure(ctx, chatID, err)
		return
	}
	for _, slot := range menuSlotTitles {
		recipe := slot.Recipe(menu)
		if recipe == nil {
			continue
		}
		m.sendRecipe(ctx, chatID, recipe, slot.Title)
	}
}

// sendRecipe sends the photo (best effort) then the formatted message.
func (m *Manager) sendRecipe(ctx context.Context, chatID int64, recipe *models.Recipe, slotTitle string) {
	if recipe.Image != nil && *recipe.Image != "" {
		if err := m.transport.SendPhoto(ctx, chatID, *recipe.Image); err != nil {
			logging.Warn().Err(err).Int64("chat_id", chatID).Msg("Failed to send recipe photo")
		}
	}

	text := renderRecipe(recipe)
	if slotTitle != "" {
		text = renderMenuSlot(slotTitle, recipe)
	}
	m.send(ctx, chat.SendOptions{ChatID: chatID, Text: text, HTML: true})
}

// --- category track ---

func (m *Manager) sendCategories(ctx context.Context, chatID int64) {
	categories, err := m.categories(ctx)
	if err != nil {
		m.sendFailure(ctx, chatID, err)
		return
	}
	sel, err := m.store.Get(ctx, chatID)
	if err != nil {
		m.sendFailure(ctx, chatID, err)
		return
	}
	m.send(ctx, chat.SendOptions{
		ChatID:   chatID,
		Text:     msgChooseCategories,
		Keyboard: categoriesKeyboard(categories, sel),
	})
}

func (m *Manager) toggleCategory(ctx context.Context, cb chat.Callback, categoryID int64) {
	sel, err := m.store.Update(ctx, cb.ChatID, func(s *session.Selection) {
		s.ToggleCategory(categoryID)
	})
	if err != nil {
		m.sendFailure(ctx, cb.ChatID, err)
		return
	}
	m.editCategories(ctx, cb, sel)
}

func (m *Manager) clearCategories(ctx context.Context, cb chat.Callback) {
	sel, err := m.store.Update(ctx, cb.ChatID, func(s *session.Selection) {
		s.ClearCategories()
	})
	if err != nil {
		m.sendFailure(ctx, cb.ChatID, err)
		return
	}
	m.editCategories(ctx, cb, sel)
}

func (m *Manager) editCategories(ctx context.Context, cb chat.Callback, sel *session.Selection) {
	categories, err := m.categories(ctx)
	if err != nil {
		m.sendFailure(ctx, cb.ChatID, err)
		return
	}
	err = m.transport.EditMessage(ctx, chat.EditOptions{
		ChatID:    cb.ChatID,
		MessageID: cb.MessageID,
		Text:      msgChooseCategories,
		Keyboard:  categoriesKeyboard(categories, sel),
	})
	if err != nil {
		logging.Warn().Err(err).Int64("chat_id", cb.ChatID).Msg("Failed to edit category keyboard")
	}
}

func (m *Manager) submitCategories(ctx context.Context, chatID int64, mode string) {
	sel, err := m.store.Get(ctx, chatID)
	if err != nil {
		m.sendFailure(ctx, chatID, err)
		return
	}
	if len(sel.Categories) == 0 {
		m.sendText(ctx, chatID, msgNothingSelected)
		return
	}

	refs, err := m.query.RecipesByCategories(ctx, mode, sel.Categories)
	if err != nil {
		m.sendFailure(ctx, chatID, err)
		return
	}
	m.sendResults(ctx, chatID, refs)
}

// --- ingredient track ---

func (m *Manager) sendLetters(ctx context.Context, chatID int64) {
	sel, err := m.store.Get(ctx, chatID)
	if err != nil {
		m.sendFailure(ctx, chatID, err)
		return
	}

	text := msgChooseIngredients
	if len(sel.Ingredients) > 0 {
		text = msgChosenIngredients + sel.IngredientNames()
	}
	m.send(ctx, chat.SendOptions{
		ChatID:   chatID,
		Text:     text,
		Keyboard: lettersKeyboard(sel),
	})
}

// editLetters swaps the current keyboard back to the alphabet, keeping the
// selection summary in the text.
func (m *Manager) editLetters(ctx context.Context, cb chat.Callback) {
	sel, err := m.store.Get(ctx, cb.ChatID)
	if err != nil {
		m.sendFailure(ctx, cb.ChatID, err)
		return
	}

	text := msgChooseIngredients
	if len(sel.Ingredients) > 0 {
		text = msgChosenIngredients + sel.IngredientNames()
	}
	err = m.transport.EditMessage(ctx, chat.EditOptions{
		ChatID:    cb.ChatID,
		MessageID: cb.MessageID,
		Text:      text,
		Keyboard:  lettersKeyboard(sel),
	})
	if err != nil {
		logging.Warn().Err(err).Int64("chat_id", cb.ChatID).Msg("Failed to edit letter keyboard")
	}
}

func (m *Manager) showIngredients(ctx context.Context, cb chat.Callback, letter string) {
	sel, err := m.store.Get(ctx, cb.ChatID)
	if err != nil {
		m.sendFailure(ctx, cb.ChatID, err)
		return
	}
	m.editIngredients(ctx, cb, letter, sel)
}

func (m *Manager) toggleIngredient(ctx context.Context, cb chat.Callback, action Action) {
	sel, err := m.store.Update(ctx, cb.ChatID, func(s *session.Selection) {
		s.ToggleIngredient(action.IngredientID, action.IngredientName)
	})
	if err != nil {
		m.sendFailure(ctx, cb.ChatID, err)
		return
	}
	m.editIngredients(ctx, cb, action.Letter, sel)
}

func (m *Manager) clearIngredients(ctx context.Context, cb chat.Callback) {
	sel, err := m.store.Update(ctx, cb.ChatID, func(s *session.Selection) {
		s.ClearIngredients()
	})
	if err != nil {
		m.sendFailure(ctx, cb.ChatID, err)
		return
	}
	err = m.transport.EditMessage(ctx, chat.EditOptions{
		ChatID:    cb.ChatID,
		MessageID: cb.MessageID,
		Text:      msgChooseIngredients,
		Keyboard:  lettersKeyboard(sel),
	})
	if err != nil {
		logging.Warn().Err(err).Int64("chat_id", cb.ChatID).Msg("Failed to edit letter keyboard")
	}
}

func (m *Manager) editIngredients(ctx context.Context, cb chat.Callback, letter string, sel *session.Selection) {
	ingredients, err := m.ingredients(ctx, letter)
	if err != nil {
		m.sendFailure(ctx, cb.ChatID, err)
		return
	}

	text := msgChooseIngredients
	if len(sel.Ingredients) > 0 {
		text = msgChosenIngredients + sel.IngredientNames()
	}
	err = m.transport.EditMessage(ctx, chat.EditOptions{
		ChatID:    cb.ChatID,
		MessageID: cb.MessageID,
		Text:      text,
		Keyboard:  ingredientsKeyboard(letter, ingredients, sel),
	})
	if err != nil {
		logging.Warn().Err(err).Int64("chat_id", cb.ChatID).Msg("Failed to edit ingredient keyboard")
	}
}

func (m *Manager) offerIngredientModes(ctx context.Context, chatID int64) {
	sel, err := m.store.Get(ctx, chatID)
	if err != nil {
		m.sendFailure(ctx, chatID, err)
		return
	}
	if len(sel.Ingredients) == 0 {
		m.sendText(ctx, chatID, msgNothingSelected)
		return
	}

	m.sendText(ctx, chatID, msgChosenIngredients+sel.IngredientNames())
	m.send(ctx, chat.SendOptions{
		ChatID:   chatID,
		Text:     msgSearchingRecipes,
		Keyboard: ingredientModeKeyboard(),
	})
}

func (m *Manager) submitIngredients(ctx context.Context, chatID int64, mode string) {
	sel, err := m.store.Get(ctx, chatID)
	if err != nil {
		m.sendFailure(ctx, chatID, err)
		return
	}
	if len(sel.Ingredients) == 0 {
		m.sendText(ctx, chatID, msgNothingSelected)
		return
	}

	refs, err := m.query.RecipesByIngredients(ctx, mode, sel.IngredientIDs())
	if err != nil {
		m.sendFailure(ctx, chatID, err)
		return
	}
	m.sendResults(ctx, chatID, refs)
}

// --- recipe opening ---

// openRecipe sends the full recipe and then clears BOTH selection tracks:
// opening a result ends the whole search, not just the track it came from.
func (m *Manager) openRecipe(ctx context.Context, chatID, recipeID int64) {
	recipe, err := m.query.RecipeByID(ctx, recipeID)
	if err != nil {
		m.sendFailure(ctx, chatID, err)
		return
	}
	m.sendRecipe(ctx, chatID, recipe, "")

	if err := m.store.Clear(ctx, chatID); err != nil {
		logging.Warn().Err(err).Int64("chat_id", chatID).Msg("Failed to clear session")
	}
}

// --- shared helpers ---

// sendResults sends the result keyboard, or the not-found message when the
// search matched nothing. The selection is kept either way; only opening a
// recipe clears it.
func (m *Manager) sendResults(ctx context.Context, chatID int64, refs []models.RecipeRef) {
	if len(refs) == 0 {
		m.sendText(ctx, chatID, msgRecipesNotFound)
		return
	}
	m.send(ctx, chat.SendOptions{
		ChatID:   chatID,
		Text:     msgRecipesFound,
		Keyboard: recipesKeyboard(refs),
	})
}

// sendFailure translates an error into the user-facing message for its
// taxonomy class. The conversation state is left untouched.
func (m *Manager) sendFailure(ctx context.Context, chatID int64, err error) {
	var te *client.TransportError
	switch {
	case errors.Is(err, catalog.ErrNotFound):
		m.sendText(ctx, chatID, msgNotFound)
	case errors.Is(err, catalog.ErrInvalidArgument):
		m.sendText(ctx, chatID, msgNothingSelected)
	case errors.As(err, &te):
		logging.Error().Err(err).Int64("chat_id", chatID).Msg("Query engine unreachable")
		m.sendText(ctx, chatID, msgBackendDown)
	default:
		logging.Error().Err(err).Int64("chat_id", chatID).Msg("Conversation step failed")
		m.sendText(ctx, chatID, msgBackendDown)
	}
}

func (m *Manager) sendText(ctx context.Context, chatID int64, text string) {
	m.send(ctx, chat.SendOptions{ChatID: chatID, Text: text})
}

func (m *Manager) send(ctx context.Context, opts chat.SendOptions) {
	if _, err := m.transport.SendMessage(ctx, opts); err != nil {
		logging.Error().Err(err).Int64("chat_id", opts.ChatID).Msg("Failed to send message")
	}
}

// categories returns the category list, cached.
func (m *Manager) categories(ctx context.Context) ([]models.Category, error) {
	if cached, ok := m.cache.Get(cacheKeyCategories); ok {
		return cached.([]models.Category), nil
	}
	categories, err := m.query.Categories(ctx)
	if err != nil {
		return nil, err
	}
	m.cache.Set(cacheKeyCategories, categories)
	return categories, nil
}

// ingredients returns one letter's ingredient list, cached per letter.
func (m *Manager) ingredients(ctx context.Context, letter string) ([]models.Ingredient, error) {
	key := cacheKeyIngredients + letter
	if cached, ok := m.cache.Get(key); ok {
		return cached.([]models.Ingredient), nil
	}
	ingredients, err := m.query.IngredientsByLetter(ctx, letter)
	if err != nil {
		return nil, err
	}
	m.cache.Set(key, ingredients)
	return ingredients, nil
}

// Package bot implements the conversation logic: command handling, the
// checkbox keyboards for category and ingredient selection, and rendering
// recipes into chat messages. State lives in a session.Store; recipe data
// comes from the query engine client.
package bot

import (
	"fmt"
	"strconv"
	"strings"
)

// ActionKind enumerates the button actions the bot understands.
type ActionKind int

const (
	ActionUnknown ActionKind = iota
	ActionMainRandom
	ActionMainMenu
	ActionMainCategories
	ActionMainIngredients
	ActionToggleCategory
	ActionSubmitCategories
	ActionClearCategories
	ActionLetter
	ActionToggleIngredient
	ActionSubmitIngredients
	ActionIngredientMode
	ActionClearIngredients
	ActionAddIngredients
	ActionOpenRecipe
)

// Action is one decoded button press. Exactly the fields relevant to the
// Kind are set.
type Action struct {
	Kind ActionKind

	CategoryID     int64
	IngredientID   int64
	IngredientName string
	// Letter is the alphabet letter whose ingredient list is on screen.
	Letter string
	// Mode is "any"/"all" for categories, "any"/"only" for ingredients.
	Mode string
	RecipeID int64
}

// Callback tokens are compact "kind|field|..." strings: Telegram caps
// callback data at 64 bytes, and ingredient names ride along in the token.
const (
	tokMainRandom      = "m|rand"
	tokMainMenu        = "m|menu"
	tokMainCategories  = "m|cats"
	tokMainIngredients = "m|ings"

	tokToggleCategory   = "c"  // c|<id>
	tokSubmitCategories = "cs" // cs|any, cs|all
	tokClearCategories  = "cc"

	tokLetter            = "l" // l|<letter>
	tokToggleIngredient  = "i" // i|<letter>|<id>|<name>
	tokSubmitIngredients = "is"
	tokIngredientMode    = "im" // im|any, im|only
	tokClearIngredients  = "ic"
	tokAddIngredients    = "ia"

	tokOpenRecipe = "r" // r|<id>
)

// EncodeToggleCategory builds the token for a category checkbox.
func EncodeToggleCategory(id int64) string {
	return fmt.Sprintf("%s|%d", tokToggleCategory, id)
}

// EncodeSubmitCategories builds the token for a category search submit.
func EncodeSubmitCategories(mode string) string {
	return tokSubmitCategories + "|" + mode
}

// EncodeLetter builds the token for an alphabet letter.
func EncodeLetter(letter string) string {
	return tokLetter + "|" + letter
}

// EncodeToggleIngredient builds the token for an ingredient checkbox. The
// name is truncated if the token would blow the transport's 64-byte cap;
// the id is what identifies the ingredient, the name is display-only.
func EncodeToggleIngredient(letter string, id int64, name string) string {
	token := fmt.Sprintf("%s|%s|%d|%s", tokToggleIngredient, letter, id, name)
	for len(token) > 64 {
		runes := []rune(name)
		name = string(runes[:len(runes)-1])
		token = fmt.Sprintf("%s|%s|%d|%s", tokToggleIngredient, letter, id, name)
	}
	return token
}

// EncodeIngredientMode builds the token for an ingredient search mode pick.
func EncodeIngredientMode(mode string) string {
	return tokIngredientMode + "|" + mode
}

// EncodeOpenRecipe builds the token for a recipe button.
func EncodeOpenRecipe(id int64) string {
	return fmt.Sprintf("%s|%d", tokOpenRecipe, id)
}

// DecodeAction parses a callback token. Unknown or malformed tokens yield
// an error; the caller drops the press.
func DecodeAction(data string) (Action, error) {
	switch data {
	case tokMainRandom:
		return Action{Kind: ActionMainRandom}, nil
	case tokMainMenu:
		return Action{Kind: ActionMainMenu}, nil
	case tokMainCategories:
		return Action{Kind: ActionMainCategories}, nil
	case tokMainIngredients:
		return Action{Kind: ActionMainIngredients}, nil
	case tokClearCategories:
		return Action{Kind: ActionClearCategories}, nil
	case tokSubmitIngredients:
		return Action{Kind: ActionSubmitIngredients}, nil
	case tokClearIngredients:
		return Action{Kind: ActionClearIngredients}, nil
	case tokAddIngredients:
		return Action{Kind: ActionAddIngredients}, nil
	}

	parts := strings.Split(data, "|")
	switch parts[0] {
	case tokToggleCategory:
		if len(parts) != 2 {
			return Action{}, fmt.Errorf("malformed category token %q", data)
		}
		id, err := strconv.ParseInt(parts[1], 10, 64)
		if err != nil {
			return Action{}, fmt.Errorf("malformed category token %q", data)
		}
		return Action{Kind: ActionToggleCategory, CategoryID: id}, nil

	case tokSubmitCategories:
		if len(parts) != 2 || (parts[1] != "any" && parts[1] != "all") {
			return Action{}, fmt.Errorf("malformed category submit token %q", data)
		}
		return Action{Kind: ActionSubmitCategories, Mode: parts[1]}, nil

	case tokLetter:
		if len(parts) != 2 || parts[1] == "" {
			return Action{}, fmt.Errorf("malformed letter token %q", data)
		}
		return Action{Kind: ActionLetter, Letter: parts[1]}, nil

	case tokToggleIngredient:
		if len(parts) < 4 {
			return Action{}, fmt.Errorf("malformed ingredient token %q", data)
		}
		id, err := strconv.ParseInt(parts[2], 10, 64)
		if err != nil {
			return Action{}, fmt.Errorf("malformed ingredient token %q", data)
		}
		// The name may itself contain '|'; rejoin the tail.
		return Action{
			Kind:           ActionToggleIngredient,
			Letter:         parts[1],
			IngredientID:   id,
			IngredientName: strings.Join(parts[3:], "|"),
		}, nil

	case tokIngredientMode:
		if len(parts) != 2 || (parts[1] != "any" && parts[1] != "only") {
			return Action{}, fmt.Errorf("malformed ingredient mode token %q", data)
		}
		return Action{Kind: ActionIngredientMode, Mode: parts[1]}, nil

	case tokOpenRecipe:
		if len(parts) != 2 {
			return Action{}, fmt.Errorf("malformed recipe token %q", data)
		}
		id, err := strconv.ParseInt(parts[1], 10, 64)
		if err != nil {
			return Action{}, fmt.Errorf("malformed recipe token %q", data)
		}
		return Action{Kind: ActionOpenRecipe, RecipeID: id}, nil
	}

	return Action{}, fmt.Errorf("unknown callback token %q", data)
}

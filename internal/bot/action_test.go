package bot

import (
	"strings"
	"testing"
)

func TestDecodeFixedTokens(t *testing.T) {
	tests := []struct {
		data string
		kind ActionKind
	}{
		{"m|rand", ActionMainRandom},
		{"m|menu", ActionMainMenu},
		{"m|cats", ActionMainCategories},
		{"m|ings", ActionMainIngredients},
		{"cc", ActionClearCategories},
		{"is", ActionSubmitIngredients},
		{"ic", ActionClearIngredients},
		{"ia", ActionAddIngredients},
	}
	for _, tt := range tests {
		action, err := DecodeAction(tt.data)
		if err != nil {
			t.Fatalf("DecodeAction(%q): %v", tt.data, err)
		}
		if action.Kind != tt.kind {
			t.Errorf("DecodeAction(%q) kind = %d, want %d", tt.data, action.Kind, tt.kind)
		}
	}
}

func TestCategoryTokenRoundTrip(t *testing.T) {
	action, err := DecodeAction(EncodeToggleCategory(42))
	if err != nil {
		t.Fatal(err)
	}
	if action.Kind != ActionToggleCategory || action.CategoryID != 42 {
		t.Errorf("got %+v", action)
	}

	for _, mode := range []string{"any", "all"} {
		action, err := DecodeAction(EncodeSubmitCategories(mode))
		if err != nil {
			t.Fatal(err)
		}
		if action.Kind != ActionSubmitCategories || action.Mode != mode {
			t.Errorf("mode %s: got %+v", mode, action)
		}
	}
}

func TestIngredientTokenRoundTrip(t *testing.T) {
	token := EncodeToggleIngredient("к", 7, "картофель")
	action, err := DecodeAction(token)
	if err != nil {
		t.Fatal(err)
	}
	if action.Kind != ActionToggleIngredient {
		t.Fatalf("kind = %d", action.Kind)
	}
	if action.Letter != "к" || action.IngredientID != 7 || action.IngredientName != "картофель" {
		t.Errorf("got %+v", action)
	}
}

func TestIngredientNameWithSeparator(t *testing.T) {
	// A '|' inside the name must survive the round trip.
	action, err := DecodeAction(EncodeToggleIngredient("п", 3, "перец|чили"))
	if err != nil {
		t.Fatal(err)
	}
	if action.IngredientName != "перец|чили" {
		t.Errorf("name = %q", action.IngredientName)
	}
}

func TestIngredientTokenCappedAt64Bytes(t *testing.T) {
	// Cyrillic runs two bytes per rune, so a long name overflows fast.
	long := strings.Repeat("картофель", 10)
	token := EncodeToggleIngredient("к", 123456789, long)
	if len(token) > 64 {
		t.Fatalf("token is %d bytes: %q", len(token), token)
	}

	action, err := DecodeAction(token)
	if err != nil {
		t.Fatal(err)
	}
	if action.IngredientID != 123456789 {
		t.Errorf("id = %d", action.IngredientID)
	}
	if action.IngredientName == "" || !strings.HasPrefix(long, action.IngredientName) {
		t.Errorf("truncated name %q is not a prefix of the original", action.IngredientName)
	}
}

func TestRecipeAndLetterTokens(t *testing.T) {
	action, err := DecodeAction(EncodeOpenRecipe(99))
	if err != nil {
		t.Fatal(err)
	}
	if action.Kind != ActionOpenRecipe || action.RecipeID != 99 {
		t.Errorf("got %+v", action)
	}

	action, err = DecodeAction(EncodeLetter("щ"))
	if err != nil {
		t.Fatal(err)
	}
	if action.Kind != ActionLetter || action.Letter != "щ" {
		t.Errorf("got %+v", action)
	}

	for _, mode := range []string{"any", "only"} {
		action, err := DecodeAction(EncodeIngredientMode(mode))
		if err != nil {
			t.Fatal(err)
		}
		if action.Kind != ActionIngredientMode || action.Mode != mode {
			t.Errorf("mode %s: got %+v", mode, action)
		}
	}
}

func TestDecodeRejectsMalformedTokens(t *testing.T) {
	malformed := []string{
		"",
		"zzz",
		"c",
		"c|abc",
		"c|1|2",
		"cs|maybe",
		"l",
		"l|",
		"i|к",
		"i|к|abc|соль",
		"im|all",
		"r|",
		"r|1|2",
		"m|nope",
	}
	for _, data := range malformed {
		if _, err := DecodeAction(data); err == nil {
			t.Errorf("DecodeAction(%q) accepted a malformed token", data)
		}
	}
}

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ppetrovna/povarenok/internal/models"
)

// RandomRecipe serves GET /api/v1/recipes/random.
func (h *Handler) RandomRecipe(w http.ResponseWriter, r *http.Request) {
	recipe, err := h.engine.RandomRecipe(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, recipe)
}

// RecipeByID serves GET /api/v1/recipes/{id}.
func (h *Handler) RecipeByID(w http.ResponseWriter, r *http.Request) {
	id, err := parsePathID(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	recipe, err := h.engine.RecipeByID(r.Context(), id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, recipe)
}

// DailyMenu serves GET /api/v1/menu/day.
func (h *Handler) DailyMenu(w http.ResponseWriter, r *http.Request) {
	menu, err := h.engine.DailyMenu(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, menu)
}

// Categories serves GET /api/v1/categories.
func (h *Handler) Categories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.engine.AllCategories(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	if categories == nil {
		categories = []models.Category{}
	}
	respondJSON(w, r, http.StatusOK, categories)
}

// Ingredients serves GET /api/v1/ingredients?startswith=<letter>.
func (h *Handler) Ingredients(w http.ResponseWriter, r *http.Request) {
	ingredients, err := h.engine.IngredientsByInitialLetter(r.Context(), r.URL.Query().Get("startswith"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	if ingredients == nil {
		ingredients = []models.Ingredient{}
	}
	respondJSON(w, r, http.StatusOK, ingredients)
}

// RecipesByCategoriesAny serves GET /api/v1/recipes/categories/any?categories=1,2.
func (h *Handler) RecipesByCategoriesAny(w http.ResponseWriter, r *http.Request) {
	ids, err := parseIDList(r, "categories")
	if err != nil {
		respondError(w, r, err)
		return
	}
	refs, err := h.engine.RecipesByCategoriesAny(r.Context(), ids)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, refs)
}

// RecipesByCategoriesAll serves GET /api/v1/recipes/categories/all?categories=1,2.
func (h *Handler) RecipesByCategoriesAll(w http.ResponseWriter, r *http.Request) {
	ids, err := parseIDList(r, "categories")
	if err != nil {
		respondError(w, r, err)
		return
	}
	refs, err := h.engine.RecipesByCategoriesAll(r.Context(), ids)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, refs)
}

// RecipesByIngredientsAny serves GET /api/v1/recipes/ingredients/any?ingredients=1,2.
func (h *Handler) RecipesByIngredientsAny(w http.ResponseWriter, r *http.Request) {
	ids, err := parseIDList(r, "ingredients")
	if err != nil {
		respondError(w, r, err)
		return
	}
	refs, err := h.engine.RecipesByIngredientsAny(r.Context(), ids)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, refs)
}

// RecipesByIngredientsOnly serves GET /api/v1/recipes/ingredients/only?ingredients=1,2.
func (h *Handler) RecipesByIngredientsOnly(w http.ResponseWriter, r *http.Request) {
	ids, err := parseIDList(r, "ingredients")
	if err != nil {
		respondError(w, r, err)
		return
	}
	refs, err := h.engine.RecipesByIngredientsOnly(r.Context(), ids)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, refs)
}
